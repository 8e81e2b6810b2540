// internal/bus/bus_test.go
package bus

import (
	"errors"
	"testing"
	"time"
)

type recordingBus struct {
	calls int
	err   error
}

func (r *recordingBus) Tx(addr uint16, w, rd []byte) error {
	r.calls++
	return r.err
}

func newTestSettler(b Bus, delay time.Duration) (*Settler, *time.Time, *[]time.Duration) {
	clock := time.Unix(1000, 0)
	var slept []time.Duration

	s := NewSettler(b, delay)
	s.now = func() time.Time { return clock }
	s.sleep = func(d time.Duration) {
		slept = append(slept, d)
		clock = clock.Add(d)
	}
	return s, &clock, &slept
}

func TestSettler_WaitsAfterWrite(t *testing.T) {
	rb := &recordingBus{}
	s, _, slept := newTestSettler(rb, 5*time.Millisecond)

	// write burst: 2 offset bytes + data
	if err := s.Tx(0x50, []byte{0x00, 0x10, 0xAA}, nil); err != nil {
		t.Fatalf("write err=%v", err)
	}
	if err := s.Tx(0x50, []byte{0x00, 0x10}, make([]byte, 1)); err != nil {
		t.Fatalf("read err=%v", err)
	}

	if len(*slept) != 1 || (*slept)[0] != 5*time.Millisecond {
		t.Fatalf("expected one 5ms settle, got %v", *slept)
	}
	if rb.calls != 2 {
		t.Fatalf("expected 2 transfers, got %d", rb.calls)
	}
}

func TestSettler_NoWaitAfterRead(t *testing.T) {
	rb := &recordingBus{}
	s, _, slept := newTestSettler(rb, 5*time.Millisecond)

	_ = s.Tx(0x50, []byte{0x00, 0x00}, make([]byte, 4))
	_ = s.Tx(0x50, []byte{0x00, 0x04}, make([]byte, 4))

	if len(*slept) != 0 {
		t.Fatalf("reads must not arm the settle delay, slept %v", *slept)
	}
}

func TestSettler_ElapsedTimeCounts(t *testing.T) {
	rb := &recordingBus{}
	s, clock, slept := newTestSettler(rb, 5*time.Millisecond)

	_ = s.Tx(0x50, []byte{0x00, 0x00, 0x01}, nil)
	*clock = clock.Add(3 * time.Millisecond)
	_ = s.Tx(0x50, []byte{0x00, 0x00}, make([]byte, 1))

	if len(*slept) != 1 || (*slept)[0] != 2*time.Millisecond {
		t.Fatalf("expected remaining 2ms, got %v", *slept)
	}
}

func TestSettler_FailedWriteDoesNotArm(t *testing.T) {
	rb := &recordingBus{err: errors.New("nack")}
	s, _, slept := newTestSettler(rb, 5*time.Millisecond)

	if err := s.Tx(0x50, []byte{0x00, 0x00, 0x01}, nil); err == nil {
		t.Fatalf("expected error")
	}
	rb.err = nil
	_ = s.Tx(0x50, []byte{0x00, 0x00}, make([]byte, 1))

	if len(*slept) != 0 {
		t.Fatalf("failed write must not arm settle, slept %v", *slept)
	}
}
