// internal/eeprom/dump.go
package eeprom

import (
	"fmt"
	"io"
	"strings"
)

// DumpPageHex writes the raw bytes of page, 16 per line, prefixed with the
// absolute chip address. Read-only.
func (s *Store) DumpPageHex(w io.Writer, page int) error {
	dev, off, err := s.locate(page)
	if err != nil {
		return err
	}

	raw := make([]byte, PageSize)
	if err := s.readBytes(dev, off, raw); err != nil {
		return err
	}

	base := int(off)
	if dev&BlockSelectBit != 0 {
		base += BlockSize
	}

	if _, err := fmt.Fprintf(w, "page %d dev=0x%02x offset=0x%04x\n", page, dev, off); err != nil {
		return err
	}

	for i := 0; i < len(raw); i += 16 {
		line := raw[i : i+16]
		if _, err := fmt.Fprintf(w, "%05x  % x  |%s|\n", base+i, line, printable(line)); err != nil {
			return err
		}
	}
	return nil
}

// DumpPageHuman writes the decoded header and payload of page. Read-only.
func (s *Store) DumpPageHuman(w io.Writer, page int) error {
	p, err := s.ReadPage(page)
	if err != nil {
		return err
	}

	wear := float64(p.Writes()) * 100 / MaxWritesPerPage

	checksum := "ok"
	switch {
	case !p.LengthValid():
		checksum = "n/a (length out of range)"
	case !p.ChecksumValid():
		checksum = "MISMATCH"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "page:      %d\n", p.Index)
	fmt.Fprintf(&b, "device:    0x%02x\n", p.Device)
	fmt.Fprintf(&b, "offset:    0x%04x\n", p.Offset)
	fmt.Fprintf(&b, "writes:    %d (%.2f%% of %d)\n", p.Writes(), wear, MaxWritesPerPage)
	fmt.Fprintf(&b, "length:    %d\n", p.MessageLength)
	fmt.Fprintf(&b, "checksum:  0x%08x %s\n", p.Checksum, checksum)
	if p.Message != nil {
		fmt.Fprintf(&b, "message:   %q\n", p.Message)
	}

	_, err = io.WriteString(w, b.String())
	return err
}

func printable(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c < 0x20 || c > 0x7E {
			c = '.'
		}
		out[i] = c
	}
	return string(out)
}
