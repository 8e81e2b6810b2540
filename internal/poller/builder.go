// internal/poller/builder.go
package poller

import (
	"errors"
	"sync"
	"time"

	cfg "github.com/tamzrod/mstore/internal/config"
	"go.uber.org/zap"
)

// Build constructs a Poller for the status mirror of one store.
// Assumes config has already been validated and normalized.
func Build(sc *cfg.StatusConfig, src Source, mu sync.Locker, log *zap.Logger) (*Poller, error) {
	if sc == nil {
		return nil, errors.New("poller: status mirror not configured")
	}
	return New(
		Config{
			UnitID:   sc.UnitID,
			Interval: time.Duration(sc.IntervalMs) * time.Millisecond,
		},
		src,
		mu,
		log,
	)
}
