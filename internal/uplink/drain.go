// internal/uplink/drain.go
package uplink

import (
	"context"
	"fmt"

	"github.com/tamzrod/mstore/internal/eeprom"
	"go.uber.org/zap"
)

// Store is the store surface a drain needs.
// *eeprom.Store satisfies it.
type Store interface {
	MessageLength(page int) (int, error)
	VerifyPage(page int) (bool, error)
	RetrieveMessage(page int, buf []byte) (int, error)
	ClearPageCheck(page int) (bool, error)
}

// Uploader sends one batch of messages.
type Uploader interface {
	Upload(ctx context.Context, lines [][]byte) error
}

// Result summarizes one drain.
type Result struct {
	Uploaded int   // messages acknowledged by the server
	Cleared  int   // pages cleared afterwards
	Skipped  []int // pages left in place: bad checksum or not line safe
}

// Drain uploads every stored message in page order as one batch and,
// once the server acknowledges it, clears the uploaded pages.
// Pages that fail verification, or whose message would not arrive as one
// unaltered line, are skipped and left for inspection.
// Nothing is cleared when the upload fails.
func Drain(ctx context.Context, s Store, up Uploader, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "uplink"))

	var (
		res   Result
		pages []int
		lines [][]byte
	)

	buf := make([]byte, eeprom.MaxMessageLength)
	for page := 0; page < eeprom.PageCount; page++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		n, err := s.MessageLength(page)
		if err != nil {
			return res, fmt.Errorf("uplink: page %d: %w", page, err)
		}
		if n == 0 {
			continue
		}

		ok, err := s.VerifyPage(page)
		if err != nil {
			return res, fmt.Errorf("uplink: page %d: %w", page, err)
		}
		if !ok {
			log.Warn("skipping page with bad checksum", zap.Int("page", page))
			res.Skipped = append(res.Skipped, page)
			continue
		}

		n, err = s.RetrieveMessage(page, buf)
		if err != nil {
			return res, fmt.Errorf("uplink: page %d: %w", page, err)
		}
		if !LineSafe(buf[:n]) {
			log.Warn("skipping message that is not a single clean line", zap.Int("page", page))
			res.Skipped = append(res.Skipped, page)
			continue
		}
		pages = append(pages, page)
		lines = append(lines, append([]byte(nil), buf[:n]...))
	}

	if len(lines) == 0 {
		log.Debug("nothing to upload")
		return res, nil
	}

	if err := up.Upload(ctx, lines); err != nil {
		return res, err
	}
	res.Uploaded = len(lines)
	log.Info("uploaded messages", zap.Int("count", res.Uploaded))

	for _, page := range pages {
		ok, err := s.ClearPageCheck(page)
		if err != nil {
			return res, fmt.Errorf("uplink: clear page %d: %w", page, err)
		}
		if !ok {
			log.Warn("clear did not verify", zap.Int("page", page))
			continue
		}
		res.Cleared++
	}

	return res, nil
}
