// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultStoreAddress     uint8 = 0x50
	DefaultMeterAddress     uint8 = 0x04
	DefaultRainDivisor            = 100
	DefaultSettleMs               = 5
	DefaultStatusTimeoutMs        = 1000
	DefaultStatusIntervalMs       = 10000
	DefaultUplinkTimeoutMs        = 10000
	DefaultLogFormat              = "console"
	DefaultLogLevel               = "info"

	// StatusSlotsPerDevice mirrors the status block size; checked by tests.
	StatusSlotsPerDevice = 20

	deviceNameMaxChars = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Store.Address == 0 {
		cfg.Store.Address = DefaultStoreAddress
	}
	if cfg.Store.SettleMs == 0 {
		cfg.Store.SettleMs = DefaultSettleMs
	}

	if cfg.Meter.Address == 0 {
		cfg.Meter.Address = DefaultMeterAddress
	}
	if cfg.Meter.RainDivisor == 0 {
		cfg.Meter.RainDivisor = DefaultRainDivisor
	}

	if s := cfg.Status; s != nil {
		if s.TimeoutMs == 0 {
			s.TimeoutMs = DefaultStatusTimeoutMs
		}
		if s.IntervalMs == 0 {
			s.IntervalMs = DefaultStatusIntervalMs
		}
		// ASCII already validated
		if len(s.DeviceName) > deviceNameMaxChars {
			s.DeviceName = s.DeviceName[:deviceNameMaxChars]
		}
	}

	if u := cfg.Uplink; u != nil && u.TimeoutMs == 0 {
		u.TimeoutMs = DefaultUplinkTimeoutMs
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}
