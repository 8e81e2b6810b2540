// internal/bus/sim/sim.go
package sim

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoDevice is returned when no device acknowledges the address.
var ErrNoDevice = errors.New("sim: no device acknowledged")

// Device is one or more bus addresses served by an emulated part.
// addr is passed through so a part answering several addresses
// can tell them apart.
type Device interface {
	Tx(addr uint16, w, r []byte) error
}

// Bus is an in-memory two-wire bus.
// One transfer at a time, like the real thing.
type Bus struct {
	mu       sync.Mutex
	devices  map[uint16]Device
	failNext []error

	// Transfers counts every Tx, failed or not.
	Transfers int
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{devices: make(map[uint16]Device)}
}

// Attach binds a device to a 7-bit address.
func (b *Bus) Attach(addr uint16, d Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices[addr] = d
}

// FailNext makes the next len(errs) transfers fail with the given errors,
// in order, without reaching any device.
func (b *Bus) FailNext(errs ...error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = append(b.failNext, errs...)
}

// Tx implements bus.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Transfers++

	if len(b.failNext) > 0 {
		err := b.failNext[0]
		b.failNext = b.failNext[1:]
		return err
	}

	if addr > 0x7F {
		return fmt.Errorf("sim: address 0x%x is not 7-bit", addr)
	}

	d, ok := b.devices[addr]
	if !ok {
		return fmt.Errorf("%w: 0x%02x", ErrNoDevice, addr)
	}
	return d.Tx(addr, w, r)
}

// Close implements bus.Closer.
func (b *Bus) Close() error { return nil }

// Static is a read-only device that always returns the same bytes,
// e.g. a sensor report.
type Static struct {
	mu   sync.Mutex
	data []byte
}

// NewStatic returns a device answering every read with data.
func NewStatic(data []byte) *Static {
	return &Static{data: append([]byte(nil), data...)}
}

// Set replaces the answer.
func (s *Static) Set(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data[:0], data...)
}

// Tx copies the stored bytes into r; short data leaves the rest zeroed.
func (s *Static) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(r, s.data)
	for i := n; i < len(r); i++ {
		r[i] = 0
	}
	return nil
}
