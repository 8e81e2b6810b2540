// internal/eeprom/page.go
package eeprom

import (
	"encoding/binary"
	"hash/crc32"
)

// Page layout (LOCKED, this is the on-chip format):
//
// 0–3  writeCount     uint32 little-endian
// 4    messageLength  uint8, 0 = cleared
// 5–8  checksum       CRC-32 IEEE over length byte + payload, little-endian
// 9+   payload        up to MaxMessageLength bytes

const (
	offWriteCount = 0
	offLength     = 4
	offChecksum   = 5

	// HeaderSize is the metadata overhead of every page.
	HeaderSize = 9

	// MaxMessageLength is the usable payload of one page.
	MaxMessageLength = PageSize - HeaderSize

	// erasedWord is what a factory-fresh or smashed-to-0xFF counter reads.
	erasedWord uint32 = 0xFFFFFFFF

	// erasedLength is an erased length byte. It exceeds MaxMessageLength,
	// so it can only mean the page was never written.
	erasedLength uint8 = 0xFF
)

// Header is the per-page metadata record.
type Header struct {
	WriteCount    uint32
	MessageLength uint8
	Checksum      uint32
}

// Empty reports whether the page is logically cleared or never written.
func (h Header) Empty() bool {
	return h.MessageLength == 0 || h.MessageLength == erasedLength
}

func (h Header) encode() []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[offWriteCount:], h.WriteCount)
	b[offLength] = h.MessageLength
	binary.LittleEndian.PutUint32(b[offChecksum:], h.Checksum)
	return b
}

func decodeHeader(b []byte) Header {
	return Header{
		WriteCount:    binary.LittleEndian.Uint32(b[offWriteCount:]),
		MessageLength: b[offLength],
		Checksum:      binary.LittleEndian.Uint32(b[offChecksum:]),
	}
}

// Checksum is the integrity value stored with msg.
// The length byte is covered too, so a damaged length is caught.
func Checksum(msg []byte) uint32 {
	crc := crc32.NewIEEE()
	_, _ = crc.Write([]byte{byte(len(msg))})
	_, _ = crc.Write(msg)
	return crc.Sum32()
}

// nextWriteCount returns the counter after one more write.
// An erased counter counts as zero; the counter saturates below erasedWord
// so it can never read back as erased.
func nextWriteCount(c uint32) uint32 {
	if c == erasedWord {
		return 1
	}
	if c >= erasedWord-1 {
		return erasedWord - 1
	}
	return c + 1
}

// Page is one page as read back from the chip.
type Page struct {
	Index  int
	Device uint8
	Offset uint16

	Header
	Message []byte // nil when the length is out of range
}

// LengthValid reports whether the stored length fits the page.
func (p Page) LengthValid() bool {
	return int(p.MessageLength) <= MaxMessageLength
}

// ChecksumValid recomputes the checksum over the stored payload.
func (p Page) ChecksumValid() bool {
	if !p.LengthValid() {
		return false
	}
	return Checksum(p.Message) == p.Checksum
}

// Writes returns the wear counter with an erased value read as zero.
func (p Page) Writes() uint32 {
	if p.WriteCount == erasedWord {
		return 0
	}
	return p.WriteCount
}
