// internal/writer/writer.go
package writer

import (
	"context"
	"errors"
	"time"

	"github.com/tamzrod/mstore/internal/poller"
	"github.com/tamzrod/mstore/internal/status"
	"go.uber.org/zap"
)

// Mirror owns the status snapshot of one store and pushes every
// transition through a StatusWriter.
// It is driven by poll results and a 1 Hz tick; it is not safe for
// concurrent use, Run serializes both.
type Mirror struct {
	sw   StatusWriter
	snap status.Snapshot
	log  *zap.Logger
}

// NewMirror starts from the boot state (health unknown).
func NewMirror(sw StatusWriter, log *zap.Logger) *Mirror {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mirror{
		sw:   sw,
		snap: status.Snapshot{Health: status.HealthUnknown},
		log:  log.With(zap.String("component", "mirror")),
	}
}

// Snapshot returns the current state.
func (m *Mirror) Snapshot() status.Snapshot { return m.snap }

// Start writes the boot state (identity re-assert).
func (m *Mirror) Start() {
	m.write("status write failed on start")
}

// Apply folds one poll result into the snapshot and writes it if anything
// changed.
func (m *Mirror) Apply(res poller.PollResult) {
	next := m.snap

	if res.Err == nil {
		next.FromStats(res.Stats)
		// Reset error state on recovery.
		next.LastErrorCode = 0
		next.SecondsInError = 0
	} else {
		// Figures stay as last seen; only health moves.
		next.Health = status.HealthError
		next.LastErrorCode = errorCode(res.Err)
		// NOTE: seconds_in_error increments on the 1Hz ticker only.
	}

	if next == m.snap {
		return
	}
	m.snap = next
	m.write("status write failed")
}

// Tick advances seconds_in_error while the store is in error.
// HARD INVARIANT: seconds_in_error MUST NOT wrap.
func (m *Mirror) Tick() {
	if m.snap.Health != status.HealthError {
		return
	}
	if m.snap.SecondsInError == 65535 {
		return
	}
	m.snap.SecondsInError++
	m.write("status seconds tick write failed")
}

// Run consumes poll results until ctx is done or in is closed.
func (m *Mirror) Run(ctx context.Context, in <-chan poller.PollResult) {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	m.Start()

	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-in:
			if !ok {
				return
			}
			m.Apply(res)
		case <-secTicker.C:
			m.Tick()
		}
	}
}

func (m *Mirror) write(msg string) {
	if err := m.sw.WriteStatus(m.snap); err != nil {
		m.log.Warn(msg, zap.Error(err))
	}
}

// errorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns 1 (generic error).
func errorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}

	return 1
}
