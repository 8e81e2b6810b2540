// cmd/mstore/station.go
package main

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/mstore/internal/bus"
	"github.com/tamzrod/mstore/internal/bus/periph"
	"github.com/tamzrod/mstore/internal/bus/sim"
	"github.com/tamzrod/mstore/internal/config"
	"github.com/tamzrod/mstore/internal/eeprom"
	"github.com/tamzrod/mstore/internal/windrain"
)

const simPrefix = "sim:"

// station is one opened bus with the store and meter bound to it.
type station struct {
	bus   bus.Bus
	store *eeprom.Store
	meter *windrain.Meter
	close func() error
}

func (s *station) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func openStation(rt *runtime) (*station, error) {
	b, closeFn, err := openBus(rt.cfg, rt.log)
	if err != nil {
		return nil, err
	}

	st, err := eeprom.New(b, rt.cfg.Store.Address, eeprom.Options{
		Rotate: rt.cfg.Store.Rotate,
		Logger: rt.log,
	})
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	return &station{
		bus:   b,
		store: st,
		meter: windrain.NewMeter(b, uint16(rt.cfg.Meter.Address), rt.cfg.Meter.RainDivisor),
		close: closeFn,
	}, nil
}

// openBus resolves store.bus into a transport.
// "sim" is an in-memory chip, "sim:<path>" persists the chip image on close.
// Anything else is a host I2C bus, wrapped to honor the write cycle time.
func openBus(cfg *config.Config, log *zap.Logger) (bus.Bus, func() error, error) {
	name := cfg.Store.Bus

	if name == "sim" || strings.HasPrefix(name, simPrefix) {
		b := sim.New()
		chip := sim.NewChip(uint16(cfg.Store.Address))
		chip.Attach(b)

		// a calm meter so the meter path works on the bench
		b.Attach(uint16(cfg.Meter.Address), sim.NewStatic(make([]byte, windrain.ReportSize)))

		path := strings.TrimPrefix(name, simPrefix)
		if name == "sim" {
			return b, b.Close, nil
		}
		if err := chip.Load(path); err != nil {
			return nil, nil, err
		}
		log.Debug("simulated chip", zap.String("image", path))
		return b, func() error {
			if err := chip.Save(path); err != nil {
				return fmt.Errorf("save chip image: %w", err)
			}
			return b.Close()
		}, nil
	}

	pb, err := periph.Open(periph.Config{Name: name, Speed: cfg.Store.SpeedHz})
	if err != nil {
		return nil, nil, err
	}
	s := bus.NewSettler(pb, time.Duration(cfg.Store.SettleMs)*time.Millisecond)
	return s, s.Close, nil
}
