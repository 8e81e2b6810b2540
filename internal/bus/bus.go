// internal/bus/bus.go
package bus

import (
	"sync"
	"time"
)

// Bus is the two-wire transport used by the store and the meter.
// Tx addresses one 7-bit device, writes w, then reads len(r) bytes.
// Either side may be empty. A transfer fully succeeds or returns an error;
// partial transfers are not reported.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// Closer is a Bus that owns an OS handle.
type Closer interface {
	Bus
	Close() error
}

// DefaultSettle is the 24LC1025 worst-case write cycle time.
const DefaultSettle = 5 * time.Millisecond

// Settler holds back the transfer that follows a write burst until the
// device has finished its internal write cycle.
// A write burst is a Tx with no read side and data beyond the two offset bytes.
type Settler struct {
	bus   Bus
	delay time.Duration

	mu      sync.Mutex
	readyAt time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewSettler wraps b. A zero or negative delay disables settling.
func NewSettler(b Bus, delay time.Duration) *Settler {
	return &Settler{
		bus:   b,
		delay: delay,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Tx waits for any pending write cycle, then forwards the transfer.
func (s *Settler) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.readyAt.IsZero() {
		if wait := s.readyAt.Sub(s.now()); wait > 0 {
			s.sleep(wait)
		}
		s.readyAt = time.Time{}
	}

	err := s.bus.Tx(addr, w, r)

	if err == nil && s.delay > 0 && len(r) == 0 && len(w) > 2 {
		s.readyAt = s.now().Add(s.delay)
	}
	return err
}

// Close closes the wrapped bus when it owns a handle.
func (s *Settler) Close() error {
	if c, ok := s.bus.(Closer); ok {
		return c.Close()
	}
	return nil
}
