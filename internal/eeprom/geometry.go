// internal/eeprom/geometry.go
package eeprom

import "fmt"

// 24LC1025 geometry.
// These values describe the part and MUST NOT be configurable.

// ---- CHIP ----

// BlockSize is the size of one independently addressed block.
const BlockSize = 64 * 1024

// BlockCount is the number of blocks behind one chip.
const BlockCount = 2

// ChipSize is the total addressable size.
const ChipSize = BlockSize * BlockCount

// BlockSelectBit is the bus address bit selecting the upper block.
const BlockSelectBit uint8 = 0x04

// WritePageSize is the chip's internal write buffer.
// A single write burst must stay inside one write page.
const WritePageSize = 128

// ---- TRANSFER LIMITS ----

// MaxChunkSize bounds every burst on the bus, read or write.
const MaxChunkSize = 16

// MaxWritesPerPage is the rated write endurance. Advisory only.
const MaxWritesPerPage = 100000

// ---- STORE PAGES ----

// PageSize is the logical page size. It equals the physical write page,
// so a page never straddles a write page or a block.
const PageSize = WritePageSize

// PagesPerBlock is the number of pages in one block.
const PagesPerBlock = BlockSize / PageSize

// PageCount is the number of pages on the chip.
const PageCount = PagesPerBlock * BlockCount

// TwiAddress returns the bus address serving page.
// Pages [0, PagesPerBlock) live behind base, the rest behind base|BlockSelectBit.
func TwiAddress(base uint8, page int) (uint8, error) {
	if err := checkPage(page); err != nil {
		return 0, err
	}
	if page < PagesPerBlock {
		return base, nil
	}
	return base | BlockSelectBit, nil
}

// PageStartAddress returns the byte offset of page inside its block.
func PageStartAddress(page int) (uint16, error) {
	if err := checkPage(page); err != nil {
		return 0, err
	}
	return uint16((page % PagesPerBlock) * PageSize), nil
}

func checkPage(page int) error {
	if page < 0 || page >= PageCount {
		return fmt.Errorf("%w: %d (pages 0-%d)", ErrPageOutOfRange, page, PageCount-1)
	}
	return nil
}
