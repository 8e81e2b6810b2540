// internal/eeprom/page_test.go
package eeprom

import "testing"

func TestHeader_EncodeDecode(t *testing.T) {
	h := Header{WriteCount: 0x01020304, MessageLength: 42, Checksum: 0xA1B2C3D4}
	b := h.encode()

	if len(b) != HeaderSize {
		t.Fatalf("header size=%d want=%d", len(b), HeaderSize)
	}
	// little-endian counter
	if b[0] != 0x04 || b[3] != 0x01 {
		t.Fatalf("unexpected counter bytes % x", b[:4])
	}
	if b[offLength] != 42 {
		t.Fatalf("length byte=%d", b[offLength])
	}
	if got := decodeHeader(b); got != h {
		t.Fatalf("decode mismatch: got=%+v want=%+v", got, h)
	}
}

func TestChecksum_CoversLength(t *testing.T) {
	// same bytes, different stored length
	if Checksum([]byte{0}) == Checksum(nil) {
		t.Fatalf("checksum must depend on the length byte")
	}
	if Checksum([]byte("abc")) != Checksum([]byte("abc")) {
		t.Fatalf("checksum not deterministic")
	}
}

func TestNextWriteCount(t *testing.T) {
	cases := []struct {
		in, want uint32
	}{
		{0, 1},
		{41, 42},
		{erasedWord, 1},
		{erasedWord - 2, erasedWord - 1},
		{erasedWord - 1, erasedWord - 1},
	}

	for _, c := range cases {
		if got := nextWriteCount(c.in); got != c.want {
			t.Fatalf("nextWriteCount(%d)=%d want=%d", c.in, got, c.want)
		}
	}
}

func TestPage_Validity(t *testing.T) {
	msg := []byte("hello")
	p := Page{
		Header:  Header{MessageLength: uint8(len(msg)), Checksum: Checksum(msg)},
		Message: msg,
	}
	if !p.ChecksumValid() {
		t.Fatalf("expected valid page")
	}

	p.Message = []byte("hellO")
	if p.ChecksumValid() {
		t.Fatalf("expected checksum mismatch")
	}

	p.MessageLength = MaxMessageLength + 1
	if p.LengthValid() || p.ChecksumValid() {
		t.Fatalf("out-of-range length must be invalid")
	}

	if (Page{Header: Header{WriteCount: erasedWord}}).Writes() != 0 {
		t.Fatalf("erased counter must read as zero")
	}
}

func TestHeaderEmpty(t *testing.T) {
	cases := map[uint8]bool{0: true, erasedLength: true, 1: false, MaxMessageLength: false, 0xF0: false}
	for length, want := range cases {
		if got := (Header{MessageLength: length}).Empty(); got != want {
			t.Fatalf("length %d: Empty()=%v want %v", length, got, want)
		}
	}
}
