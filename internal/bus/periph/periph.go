// internal/bus/periph/periph.go
package periph

import (
	"errors"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Config is minimal host bus config.
type Config struct {
	// Name is a periph bus name ("I2C1"), a bus number ("1")
	// or a Linux device path ("/dev/i2c-1").
	Name string

	// Speed in Hz. Zero keeps the driver default.
	Speed int64
}

// Open initializes the host drivers and opens one I2C bus.
// The returned bus satisfies bus.Closer.
func Open(cfg Config) (i2c.BusCloser, error) {
	if cfg.Name == "" {
		return nil, errors.New("periph: bus name required")
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph: host init: %w", err)
	}

	name := busName(cfg.Name)

	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("periph: open %s: %w", name, err)
	}

	if cfg.Speed > 0 {
		if err := b.SetSpeed(physic.Frequency(cfg.Speed) * physic.Hertz); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("periph: set speed %dHz: %w", cfg.Speed, err)
		}
	}

	return b, nil
}

// busName maps a Linux device path onto the bus number periph registers.
func busName(name string) string {
	return strings.TrimPrefix(name, "/dev/i2c-")
}
