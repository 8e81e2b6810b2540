// internal/eeprom/errors.go
package eeprom

import "errors"

var (
	// ErrPageOutOfRange is returned for a page index outside the chip.
	ErrPageOutOfRange = errors.New("eeprom: page index out of range")

	// ErrCapacityExceeded is returned before any bus transfer when a message
	// does not fit in one page.
	ErrCapacityExceeded = errors.New("eeprom: message exceeds page capacity")

	// ErrNoFreePage is returned by StoreMessage when every page holds a message.
	ErrNoFreePage = errors.New("eeprom: no free page")

	// ErrCorruptPage is returned when a stored length cannot be valid.
	ErrCorruptPage = errors.New("eeprom: corrupt page header")

	// ErrInvalidAddress is returned for a base address that is not 7-bit
	// or that has the block select bit set.
	ErrInvalidAddress = errors.New("eeprom: invalid store address")
)
