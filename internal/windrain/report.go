// internal/windrain/report.go
package windrain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tamzrod/mstore/internal/bus"
)

// Report layout (LOCKED, produced by the meter firmware):
//
// 0      report id
// 1–2    elapsed seconds since last report   int16 LE
// 3–4    accumulated rainfall (mm)           int16 LE / rain divisor
// 5–6    current wind speed (m/s)            int16 LE / 10
// 7–8    current wind direction (deg)        int16 LE / 10
// 9–10   mean wind speed (m/s)               int16 LE / 10
// 11–12  mean wind direction (deg)           int16 LE / 10
// 13–14  max wind speed (m/s)                int16 LE / 10

// Address is the meter's bus address.
const Address = 0x04

// ReportSize is the fixed burst read.
const ReportSize = 15

// LegacyRainDivisor is the rainfall scale of early meter firmware.
const LegacyRainDivisor = 10

// RainDivisor is the rainfall scale of current meter firmware.
const RainDivisor = 100

const windDivisor = 10

// Report is one decoded meter report.
type Report struct {
	ID             uint8
	ElapsedSeconds int16

	RainfallMM float64

	WindSpeed         float64 // m/s
	WindDirection     float64 // decimal degrees
	MeanWindSpeed     float64
	MeanWindDirection float64
	MaxWindSpeed      float64
}

// Combine rebuilds a signed 16-bit value from its little-endian bytes.
func Combine(lo, hi byte) int16 {
	return int16(uint16(lo) | uint16(hi)<<8)
}

// Decode converts a raw report. rainDivisor selects the firmware scale.
func Decode(raw []byte, rainDivisor float64) (Report, error) {
	if len(raw) < ReportSize {
		return Report{}, fmt.Errorf("windrain: short report: %d bytes, want %d", len(raw), ReportSize)
	}
	if rainDivisor <= 0 {
		return Report{}, errors.New("windrain: rain divisor must be > 0")
	}

	field := func(i int) float64 {
		return float64(Combine(raw[i], raw[i+1]))
	}

	return Report{
		ID:                raw[0],
		ElapsedSeconds:    Combine(raw[1], raw[2]),
		RainfallMM:        field(3) / rainDivisor,
		WindSpeed:         field(5) / windDivisor,
		WindDirection:     field(7) / windDivisor,
		MeanWindSpeed:     field(9) / windDivisor,
		MeanWindDirection: field(11) / windDivisor,
		MaxWindSpeed:      field(13) / windDivisor,
	}, nil
}

// Message renders the report as one storable text line:
// id;elapsed;rain;wind;dir;mean_wind;mean_dir;max_wind
func (r Report) Message() []byte {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	return []byte(strings.Join([]string{
		strconv.Itoa(int(r.ID)),
		strconv.Itoa(int(r.ElapsedSeconds)),
		f(r.RainfallMM),
		f(r.WindSpeed),
		f(r.WindDirection),
		f(r.MeanWindSpeed),
		f(r.MeanWindDirection),
		f(r.MaxWindSpeed),
	}, ";"))
}

// Meter reads reports from the wind/rain meter.
type Meter struct {
	bus         bus.Bus
	addr        uint16
	rainDivisor float64
}

// NewMeter binds a meter at addr. A zero divisor selects RainDivisor.
func NewMeter(b bus.Bus, addr uint16, rainDivisor float64) *Meter {
	if rainDivisor == 0 {
		rainDivisor = RainDivisor
	}
	return &Meter{bus: b, addr: addr, rainDivisor: rainDivisor}
}

// Read performs one report burst read and decodes it.
func (m *Meter) Read() (Report, error) {
	raw := make([]byte, ReportSize)
	if err := m.bus.Tx(m.addr, nil, raw); err != nil {
		return Report{}, fmt.Errorf("windrain: read 0x%02x: %w", m.addr, err)
	}
	return Decode(raw, m.rainDivisor)
}
