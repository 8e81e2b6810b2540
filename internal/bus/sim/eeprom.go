// internal/bus/sim/eeprom.go
package sim

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// 24LC1025 datasheet geometry.
// The emulator keeps its own copy so it never agrees with the store by accident.
const (
	chipBlockSize   = 64 * 1024
	chipBlocks      = 2
	chipSize        = chipBlockSize * chipBlocks
	chipWritePage   = 128
	chipBlockSelect = 0x04
	erasedByte      = 0xFF
)

var (
	// ErrBurstTooLong is returned for a write burst larger than the write buffer.
	ErrBurstTooLong = errors.New("sim: write burst exceeds page buffer")

	// ErrShortAddress is returned when a transfer carries one address byte.
	ErrShortAddress = errors.New("sim: incomplete word address")
)

// Chip emulates a 24LC1025: two 64 KiB blocks behind base and base|0x04,
// 128-byte write pages with in-page rollover, and sequential reads that
// wrap inside the addressed block.
type Chip struct {
	mu      sync.Mutex
	base    uint16
	mem     []byte
	pointer [chipBlocks]uint16

	corrupt map[int]byte

	// Bursts counts write bursts that carried data.
	Bursts int
	// MaxBurst is the largest data burst seen.
	MaxBurst int
	// Rollovers counts bursts that wrapped inside a write page.
	// A correct driver never causes one.
	Rollovers int
}

// NewChip returns a factory-fresh chip (all cells 0xFF) at the given base.
func NewChip(base uint16) *Chip {
	mem := make([]byte, chipSize)
	for i := range mem {
		mem[i] = erasedByte
	}
	return &Chip{
		base:    base &^ chipBlockSelect,
		mem:     mem,
		corrupt: make(map[int]byte),
	}
}

// Attach registers both block addresses on b.
func (c *Chip) Attach(b *Bus) {
	b.Attach(c.base, c)
	b.Attach(c.base|chipBlockSelect, c)
}

// Tx implements Device.
func (c *Chip) Tx(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	block := 0
	if addr&chipBlockSelect != 0 {
		block = 1
	}

	switch {
	case len(w) == 1:
		return ErrShortAddress
	case len(w) >= 2:
		ptr := uint16(w[0])<<8 | uint16(w[1])
		data := w[2:]
		if len(data) > chipWritePage {
			return fmt.Errorf("%w: %d bytes", ErrBurstTooLong, len(data))
		}
		if len(data) > 0 {
			ptr = c.writePage(block, ptr, data)
		}
		c.pointer[block] = ptr
	}

	if len(r) > 0 {
		c.read(block, r)
	}
	return nil
}

// writePage stores data at ptr; the address counter wraps inside the
// 128-byte write page exactly as the part does.
func (c *Chip) writePage(block int, ptr uint16, data []byte) uint16 {
	pageStart := ptr &^ (chipWritePage - 1)
	col := int(ptr - pageStart)

	if col+len(data) > chipWritePage {
		c.Rollovers++
	}

	for _, v := range data {
		c.mem[block*chipBlockSize+int(pageStart)+col] = v
		col = (col + 1) % chipWritePage
	}

	c.Bursts++
	if len(data) > c.MaxBurst {
		c.MaxBurst = len(data)
	}
	return pageStart + uint16(col)
}

func (c *Chip) read(block int, r []byte) {
	ptr := c.pointer[block]
	for i := range r {
		abs := block*chipBlockSize + int(ptr)
		r[i] = c.mem[abs] ^ c.corrupt[abs]
		ptr++ // wraps at the block boundary
	}
	c.pointer[block] = ptr
}

// ResetCounters zeroes the burst statistics.
func (c *Chip) ResetCounters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Bursts, c.MaxBurst, c.Rollovers = 0, 0, 0
}

// FlipBit flips one stored bit at an absolute chip address.
func (c *Chip) FlipBit(abs int, bit uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem[abs] ^= 1 << (bit & 7)
}

// CorruptReads XORs mask into every read of abs without touching the
// stored byte, like a noisy bus. A zero mask removes the fault.
func (c *Chip) CorruptReads(abs int, mask byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mask == 0 {
		delete(c.corrupt, abs)
		return
	}
	c.corrupt[abs] = mask
}

// Peek returns a copy of n stored bytes from abs.
func (c *Chip) Peek(abs, n int) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.mem[abs:abs+n]...)
}

// Image returns a copy of the whole chip.
func (c *Chip) Image() []byte {
	return c.Peek(0, chipSize)
}

// Load replaces the chip content with an image file.
// A missing file leaves the chip factory-fresh.
func (c *Chip) Load(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sim: load image: %w", err)
	}
	if len(b) != chipSize {
		return fmt.Errorf("sim: image %s is %d bytes, want %d", path, len(b), chipSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.mem, b)
	return nil
}

// Save writes the chip content to an image file.
func (c *Chip) Save(path string) error {
	if err := os.WriteFile(path, c.Image(), 0o644); err != nil {
		return fmt.Errorf("sim: save image: %w", err)
	}
	return nil
}
