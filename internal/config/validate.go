// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Config validation errors
var (
	ErrMissingBus         = errors.New("store.bus cannot be empty")
	ErrInvalidAddress     = errors.New("address must be a 7-bit bus address")
	ErrBlockSelectAddress = errors.New("store.address must have the block select bit (0x04) clear")
	ErrAddressCollision   = errors.New("meter.address collides with a store block address")
	ErrInvalidSettle      = errors.New("store.settle_ms cannot be negative")
	ErrInvalidDivisor     = errors.New("meter.rain_divisor cannot be negative")
	ErrInvalidStatus      = errors.New("invalid status mirror")
	ErrInvalidUplink      = errors.New("invalid uplink")
	ErrInvalidLogFormat   = errors.New("log.format must be 'json' or 'console'")
	ErrInvalidLogLevel    = errors.New("log.level must be debug, info, warn, or error")
)

const blockSelectBit = 0x04

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration. Zero values mean "default".
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	// ------------------------------------------------------------
	// STORE
	// ------------------------------------------------------------

	if cfg.Store.Bus == "" {
		return ErrMissingBus
	}
	if cfg.Store.Address > 0x7F {
		return fmt.Errorf("store.address 0x%02x: %w", cfg.Store.Address, ErrInvalidAddress)
	}
	if cfg.Store.Address&blockSelectBit != 0 {
		return fmt.Errorf("store.address 0x%02x: %w", cfg.Store.Address, ErrBlockSelectAddress)
	}
	if cfg.Store.SettleMs < 0 {
		return ErrInvalidSettle
	}

	// ------------------------------------------------------------
	// METER (must not answer on either store block)
	// ------------------------------------------------------------

	if cfg.Meter.Address > 0x7F {
		return fmt.Errorf("meter.address 0x%02x: %w", cfg.Meter.Address, ErrInvalidAddress)
	}
	if cfg.Meter.RainDivisor < 0 {
		return ErrInvalidDivisor
	}

	storeAddr := cfg.Store.Address
	if storeAddr == 0 {
		storeAddr = DefaultStoreAddress
	}
	meterAddr := cfg.Meter.Address
	if meterAddr == 0 {
		meterAddr = DefaultMeterAddress
	}
	if meterAddr == storeAddr || meterAddr == storeAddr|blockSelectBit {
		return fmt.Errorf("meter.address 0x%02x: %w", meterAddr, ErrAddressCollision)
	}

	// ------------------------------------------------------------
	// STATUS MIRROR (OPT-IN)
	// ------------------------------------------------------------

	if s := cfg.Status; s != nil {
		if s.Endpoint == "" {
			return fmt.Errorf("%w: endpoint required", ErrInvalidStatus)
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(s.DeviceName); i++ {
			if s.DeviceName[i] > 0x7F {
				return fmt.Errorf("%w: device_name must contain ASCII characters only", ErrInvalidStatus)
			}
		}

		// the block must fit in the 16-bit register space
		if end := (int(s.BaseSlot) + 1) * StatusSlotsPerDevice; end > 0x10000 {
			return fmt.Errorf("%w: base_slot %d exceeds register space", ErrInvalidStatus, s.BaseSlot)
		}

		if s.TimeoutMs < 0 || s.IntervalMs < 0 {
			return fmt.Errorf("%w: timeout_ms and interval_ms cannot be negative", ErrInvalidStatus)
		}
	}

	// ------------------------------------------------------------
	// UPLINK (OPT-IN)
	// ------------------------------------------------------------

	if u := cfg.Uplink; u != nil {
		parsed, err := url.Parse(u.URL)
		if err != nil || u.URL == "" {
			return fmt.Errorf("%w: url %q", ErrInvalidUplink, u.URL)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%w: url scheme must be http or https", ErrInvalidUplink)
		}
		if u.TimeoutMs < 0 {
			return fmt.Errorf("%w: timeout_ms cannot be negative", ErrInvalidUplink)
		}
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		return ErrInvalidLogFormat
	}
	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}
