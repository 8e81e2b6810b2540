// internal/config/config.go
package config

type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Meter   MeterConfig   `yaml:"meter"`
	Status  *StatusConfig `yaml:"status"` // optional Modbus mirror
	Uplink  *UplinkConfig `yaml:"uplink"` // optional
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ---- STORE ----

type StoreConfig struct {
	// Bus is a host I2C bus ("/dev/i2c-1", "I2C1", "1"),
	// "sim" for an in-memory chip, or "sim:<path>" for a chip image file.
	Bus      string `yaml:"bus"`
	Address  uint8  `yaml:"address"` // base address, lower block
	Rotate   bool   `yaml:"rotate"`
	SettleMs int    `yaml:"settle_ms"`
	SpeedHz  int64  `yaml:"speed_hz"`
}

// ---- METER ----

type MeterConfig struct {
	Address     uint8   `yaml:"address"`
	RainDivisor float64 `yaml:"rain_divisor"`
}

// ---- STATUS MIRROR ----

type StatusConfig struct {
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	BaseSlot   uint16 `yaml:"base_slot"`
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	IntervalMs int    `yaml:"interval_ms"`
}

// ---- UPLINK ----

type UplinkConfig struct {
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- AMBIENT ----

type LogConfig struct {
	Format string `yaml:"format"` // json | console
	Level  string `yaml:"level"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables /metrics
}
