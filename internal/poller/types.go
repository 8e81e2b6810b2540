// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/mstore/internal/eeprom"
)

// Source is the store surface the poller reads.
// *eeprom.Store satisfies it.
type Source interface {
	Stats() (eeprom.Stats, error)
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	UnitID uint8
	At     time.Time

	Stats eeprom.Stats
	Err   error // non-nil means the poll cycle failed
}
