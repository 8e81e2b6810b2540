// internal/eeprom/clear.go
package eeprom

import (
	"fmt"

	"go.uber.org/zap"
)

// ClearPage marks page empty and bumps its write counter.
// Only the header is rewritten; payload bytes stay on the chip.
func (s *Store) ClearPage(page int) error {
	dev, off, err := s.locate(page)
	if err != nil {
		return err
	}

	if _, err := s.writeHeader(page, dev, off, Header{
		MessageLength: 0,
		Checksum:      Checksum(nil),
	}); err != nil {
		return err
	}

	PageWritesTotal.WithLabelValues("clear").Inc()
	return nil
}

// ClearPageCheck clears page and reads the length back.
// ok is false, with a nil error, when the page still reports a message.
func (s *Store) ClearPageCheck(page int) (bool, error) {
	if err := s.ClearPage(page); err != nil {
		return false, err
	}

	n, err := s.MessageLength(page)
	if err != nil {
		return false, err
	}

	if n != 0 {
		IntegrityFailuresTotal.WithLabelValues("clear").Inc()
		s.log.Warn("cleared page still reports a message",
			zap.Int("page", page),
			zap.Int("length", n),
		)
		return false, nil
	}
	return true, nil
}

// ClearAllPages clears every page in ascending order.
// It is not atomic: a failure or power loss leaves a prefix cleared.
// Running it again is safe.
func (s *Store) ClearAllPages() error {
	for page := 0; page < PageCount; page++ {
		if err := s.ClearPage(page); err != nil {
			return fmt.Errorf("eeprom: clear all stopped at page %d: %w", page, err)
		}
	}
	s.log.Info("all pages cleared", zap.Int("pages", PageCount))
	return nil
}

// SmashPage overwrites everything after the write counter with zeros:
// length, checksum and payload. The counter is neither read nor bumped, so
// the page keeps its wear history and reads length=0 afterwards.
func (s *Store) SmashPage(page int) error {
	dev, off, err := s.locate(page)
	if err != nil {
		return err
	}

	if err := s.writeBytes(dev, off+offLength, make([]byte, PageSize-offLength)); err != nil {
		return err
	}

	PageSmashesTotal.Inc()
	return nil
}

// SmashAllPages smashes every page in ascending order.
func (s *Store) SmashAllPages() error {
	for page := 0; page < PageCount; page++ {
		if err := s.SmashPage(page); err != nil {
			return fmt.Errorf("eeprom: smash all stopped at page %d: %w", page, err)
		}
	}
	s.log.Warn("all pages smashed", zap.Int("pages", PageCount))
	return nil
}
