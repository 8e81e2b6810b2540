// internal/poller/poller.go
package poller

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID   uint8
	Interval time.Duration
}

// Poller is a dumb, clock-driven reader.
// A full statistics sweep reads every page header, so the store is
// guarded for the duration of one cycle.
type Poller struct {
	cfg Config
	src Source
	mu  sync.Locker
	log *zap.Logger

	now func() time.Time
}

// New creates a poller with immutable config.
// mu, when non-nil, is held around each sweep so other store users can
// share the bus.
func New(cfg Config, src Source, mu sync.Locker, log *zap.Logger) (*Poller, error) {
	if src == nil {
		return nil, errors.New("poller: source required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		cfg: cfg,
		src: src,
		mu:  mu,
		log: log.With(zap.String("component", "poller")),
		now: time.Now,
	}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: a failed sweep carries no figures.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		UnitID: p.cfg.UnitID,
		At:     p.now(),
	}

	if p.mu != nil {
		p.mu.Lock()
		defer p.mu.Unlock()
	}

	st, err := p.src.Stats()
	if err != nil {
		p.log.Warn("store sweep failed", zap.Error(err))
		res.Err = err
		return res
	}

	p.log.Debug("store sweep",
		zap.Int("messages", st.Messages),
		zap.Int("free", st.FreePages),
		zap.Uint32("max_writes", st.MaxWriteCount),
	)

	// Commit only if the sweep succeeded
	res.Stats = st
	return res
}
