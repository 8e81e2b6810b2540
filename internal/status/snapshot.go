// internal/status/snapshot.go
package status

import "github.com/tamzrod/mstore/internal/eeprom"

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16

	Messages     uint16
	FreePages    uint16
	MaxWrites    uint32
	WornPages    uint16
	CorruptPages uint16
}

// FromStats copies store figures into s and derives the health of a
// readable store. Error state is owned by the caller.
func (s *Snapshot) FromStats(st eeprom.Stats) {
	s.Messages = uint16(st.Messages)
	s.FreePages = uint16(st.FreePages)
	s.MaxWrites = st.MaxWriteCount
	s.WornPages = uint16(st.WornPages)
	s.CorruptPages = uint16(st.CorruptPages)

	switch {
	case st.WornPages > 0:
		s.Health = HealthWorn
	case st.FreePages == 0:
		s.Health = HealthFull
	default:
		s.Health = HealthOK
	}
}
