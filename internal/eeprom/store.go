// internal/eeprom/store.go
package eeprom

import (
	"encoding/binary"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tamzrod/mstore/internal/bus"
)

// Options tune a Store. The zero value is usable.
type Options struct {
	// Rotate starts the free-page scan after the last stored page
	// instead of at page 0. The scan is ascending and wraps.
	Rotate bool

	Logger *zap.Logger
}

// Store manages the pages of one chip.
// It is not safe for concurrent use: the bus carries one transfer at a time
// and a write must fully complete before another call touches the chip.
type Store struct {
	bus          bus.Bus
	storeAddress uint8
	rotate       bool
	cursor       int
	log          *zap.Logger
}

// New creates a store for the chip whose lower block answers storeAddress.
func New(b bus.Bus, storeAddress uint8, opts Options) (*Store, error) {
	if b == nil {
		return nil, fmt.Errorf("eeprom: bus required")
	}
	if storeAddress > 0x7F || storeAddress&BlockSelectBit != 0 {
		return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidAddress, storeAddress)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Store{
		bus:          b,
		storeAddress: storeAddress,
		rotate:       opts.Rotate,
		log:          log.With(zap.String("component", "eeprom")),
	}, nil
}

// Address returns the configured base address.
func (s *Store) Address() uint8 { return s.storeAddress }

// ---- addressing ----

func (s *Store) getTwiAddress(page int) (uint8, error) {
	return TwiAddress(s.storeAddress, page)
}

func (s *Store) getPageStartAddress(page int) (uint16, error) {
	return PageStartAddress(page)
}

func (s *Store) locate(page int) (uint8, uint16, error) {
	dev, err := s.getTwiAddress(page)
	if err != nil {
		return 0, 0, err
	}
	off, err := s.getPageStartAddress(page)
	if err != nil {
		return 0, 0, err
	}
	return dev, off, nil
}

// ---- transport contract ----

// writeBytes selects dev and writes data at offset in bursts of at most
// MaxChunkSize bytes. A burst never crosses a chip write page.
func (s *Store) writeBytes(dev uint8, offset uint16, data []byte) error {
	for len(data) > 0 {
		n := len(data)
		if n > MaxChunkSize {
			n = MaxChunkSize
		}
		if room := WritePageSize - int(offset%WritePageSize); n > room {
			n = room
		}

		w := make([]byte, 2+n)
		w[0] = byte(offset >> 8)
		w[1] = byte(offset)
		copy(w[2:], data[:n])

		if err := s.bus.Tx(uint16(dev), w, nil); err != nil {
			TransportErrorsTotal.Inc()
			return fmt.Errorf("eeprom: write dev=0x%02x offset=%d len=%d: %w", dev, offset, n, err)
		}
		ChunksWrittenTotal.Inc()
		BytesWrittenTotal.Add(float64(n))

		offset += uint16(n)
		data = data[n:]
	}
	return nil
}

// readBytes selects dev and fills buf from offset in bursts of at most
// MaxChunkSize bytes.
func (s *Store) readBytes(dev uint8, offset uint16, buf []byte) error {
	for len(buf) > 0 {
		n := len(buf)
		if n > MaxChunkSize {
			n = MaxChunkSize
		}

		if err := s.bus.Tx(uint16(dev), []byte{byte(offset >> 8), byte(offset)}, buf[:n]); err != nil {
			TransportErrorsTotal.Inc()
			return fmt.Errorf("eeprom: read dev=0x%02x offset=%d len=%d: %w", dev, offset, n, err)
		}

		offset += uint16(n)
		buf = buf[n:]
	}
	return nil
}

func (s *Store) readHeader(dev uint8, off uint16) (Header, error) {
	b := make([]byte, HeaderSize)
	if err := s.readBytes(dev, off, b); err != nil {
		return Header{}, err
	}
	return decodeHeader(b), nil
}

func (s *Store) readWriteCount(dev uint8, off uint16) (uint32, error) {
	b := make([]byte, 4)
	if err := s.readBytes(dev, off+offWriteCount, b); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// writeHeader bumps the write counter and writes h in one burst.
func (s *Store) writeHeader(page int, dev uint8, off uint16, h Header) (Header, error) {
	cur, err := s.readWriteCount(dev, off)
	if err != nil {
		return Header{}, err
	}
	h.WriteCount = nextWriteCount(cur)

	if err := s.writeBytes(dev, off, h.encode()); err != nil {
		return Header{}, err
	}

	if h.WriteCount >= MaxWritesPerPage {
		WornPageWritesTotal.Inc()
		s.log.Warn("page at rated write endurance",
			zap.Int("page", page),
			zap.Uint32("writes", h.WriteCount),
			zap.Int("rated", MaxWritesPerPage),
		)
	}
	return h, nil
}

// ---- write path ----

// WriteMessage stores msg in page, replacing whatever was there.
// The payload goes out first and the header last, so a torn write leaves
// a checksum mismatch rather than a plausible short message.
// The page's write counter grows by exactly one.
func (s *Store) WriteMessage(page int, msg []byte) error {
	dev, off, err := s.locate(page)
	if err != nil {
		return err
	}
	if len(msg) > MaxMessageLength {
		return fmt.Errorf("%w: %d bytes, page holds %d", ErrCapacityExceeded, len(msg), MaxMessageLength)
	}

	if err := s.writeBytes(dev, off+HeaderSize, msg); err != nil {
		return err
	}

	h, err := s.writeHeader(page, dev, off, Header{
		MessageLength: uint8(len(msg)),
		Checksum:      Checksum(msg),
	})
	if err != nil {
		return err
	}

	PageWritesTotal.WithLabelValues("message").Inc()
	s.log.Debug("message written",
		zap.Int("page", page),
		zap.Int("length", len(msg)),
		zap.Uint32("writes", h.WriteCount),
	)
	return nil
}

// StoreMessage writes msg to the first free page and returns its index.
// Occupied pages are never overwritten; -1 and ErrNoFreePage mean the chip is full.
func (s *Store) StoreMessage(msg []byte) (int, error) {
	if len(msg) > MaxMessageLength {
		return -1, fmt.Errorf("%w: %d bytes, page holds %d", ErrCapacityExceeded, len(msg), MaxMessageLength)
	}

	page, err := s.findFreePage()
	if err != nil {
		return -1, err
	}

	if err := s.WriteMessage(page, msg); err != nil {
		return -1, err
	}

	if s.rotate {
		s.cursor = (page + 1) % PageCount
	}
	return page, nil
}

// StoreMessageCheck stores msg, then reads the page back and verifies it.
// ok is false, with a nil error, when the read-back does not match: the
// write landed but cannot be trusted. The page index is returned either way
// so the caller can clear it or try again.
func (s *Store) StoreMessageCheck(msg []byte) (page int, ok bool, err error) {
	page, err = s.StoreMessage(msg)
	if err != nil {
		return page, false, err
	}

	p, err := s.ReadPage(page)
	if err != nil {
		return page, false, err
	}

	ok = p.LengthValid() &&
		int(p.MessageLength) == len(msg) &&
		p.ChecksumValid() &&
		p.Checksum == Checksum(msg)

	if !ok {
		IntegrityFailuresTotal.WithLabelValues("store").Inc()
		s.log.Warn("stored message failed verification",
			zap.Int("page", page),
			zap.Int("length", len(msg)),
			zap.Uint8("stored_length", p.MessageLength),
		)
	}
	return page, ok, nil
}

func (s *Store) findFreePage() (int, error) {
	start := 0
	if s.rotate {
		start = s.cursor
	}

	for i := 0; i < PageCount; i++ {
		page := (start + i) % PageCount
		n, err := s.MessageLength(page)
		if err != nil {
			return -1, err
		}
		if n == 0 {
			return page, nil
		}
	}
	return -1, ErrNoFreePage
}

// ---- read / query path ----

// MessagesCount counts pages with a non-zero length.
// Only the length byte of each page is read.
func (s *Store) MessagesCount() (int, error) {
	count := 0
	for page := 0; page < PageCount; page++ {
		n, err := s.MessageLength(page)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			count++
		}
	}
	return count, nil
}

// WritesCount returns the page's wear counter. An erased counter reads 0.
func (s *Store) WritesCount(page int) (uint32, error) {
	dev, off, err := s.locate(page)
	if err != nil {
		return 0, err
	}

	c, err := s.readWriteCount(dev, off)
	if err != nil {
		return 0, err
	}
	return Page{Header: Header{WriteCount: c}}.Writes(), nil
}

// MessageLength returns the stored length; 0 means the page is free.
// A never-written page reads as free.
func (s *Store) MessageLength(page int) (int, error) {
	dev, off, err := s.locate(page)
	if err != nil {
		return 0, err
	}

	b := make([]byte, 1)
	if err := s.readBytes(dev, off+offLength, b); err != nil {
		return 0, err
	}
	if (Header{MessageLength: b[0]}).Empty() {
		return 0, nil
	}
	return int(b[0]), nil
}

// RetrieveMessage copies the page's message into buf and returns its length.
// buf should hold MaxMessageLength bytes; a shorter buf fails with
// io.ErrShortBuffer when the message does not fit.
func (s *Store) RetrieveMessage(page int, buf []byte) (int, error) {
	dev, off, err := s.locate(page)
	if err != nil {
		return 0, err
	}

	n, err := s.MessageLength(page)
	if err != nil {
		return 0, err
	}
	if n > MaxMessageLength {
		return 0, fmt.Errorf("%w: page %d length %d", ErrCorruptPage, page, n)
	}
	if n > len(buf) {
		return 0, fmt.Errorf("eeprom: page %d holds %d bytes: %w", page, n, io.ErrShortBuffer)
	}

	if err := s.readBytes(dev, off+HeaderSize, buf[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// ReadPage returns the header and payload of page.
func (s *Store) ReadPage(page int) (Page, error) {
	dev, off, err := s.locate(page)
	if err != nil {
		return Page{}, err
	}

	h, err := s.readHeader(dev, off)
	if err != nil {
		return Page{}, err
	}

	p := Page{Index: page, Device: dev, Offset: off, Header: h}
	if !p.LengthValid() {
		return p, nil
	}

	p.Message = make([]byte, h.MessageLength)
	if err := s.readBytes(dev, off+HeaderSize, p.Message); err != nil {
		return Page{}, err
	}
	return p, nil
}

// VerifyPage recomputes the checksum of the stored message.
func (s *Store) VerifyPage(page int) (bool, error) {
	p, err := s.ReadPage(page)
	if err != nil {
		return false, err
	}
	return p.ChecksumValid(), nil
}

// Stats summarizes the chip from page headers only.
type Stats struct {
	Messages      int
	FreePages     int
	CorruptPages  int // stored length out of range
	WornPages     int // at or past MaxWritesPerPage
	MaxWriteCount uint32
	MaxWritePage  int
}

// Stats scans every page header.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	b := make([]byte, HeaderSize)

	for page := 0; page < PageCount; page++ {
		dev, off, err := s.locate(page)
		if err != nil {
			return Stats{}, err
		}
		// counter and length only
		if err := s.readBytes(dev, off, b[:offLength+1]); err != nil {
			return Stats{}, err
		}

		h := decodeHeader(b)
		p := Page{Header: h}

		switch {
		case h.Empty():
			st.FreePages++
		case !p.LengthValid():
			st.CorruptPages++
			st.Messages++
		default:
			st.Messages++
		}

		w := p.Writes()
		if w >= MaxWritesPerPage {
			st.WornPages++
		}
		if w > st.MaxWriteCount {
			st.MaxWriteCount = w
			st.MaxWritePage = page
		}
	}
	return st, nil
}
