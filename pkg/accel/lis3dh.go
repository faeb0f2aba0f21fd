package accel

import (
	"fmt"

	"github.com/chewxy/math32"
)

// LIS3DH registers.
const (
	regWhoAmI   = 0x0F
	regCtrl1    = 0x20
	regCtrl4    = 0x23
	regOutXLow  = 0x28
	whoAmIValue = 0x33

	// Set on the sub-address to auto-increment through the output registers.
	autoIncrement = 0x80

	// CTRL_REG1 low nibble: normal mode, X/Y/Z enabled.
	ctrl1AxesOn = 0x07
	// CTRL_REG4: high-resolution mode (12-bit output).
	ctrl4HighRes = 0x08

	gravity = 9.80665 // m/s² per g
)

// odrCodes maps supported output datarates (Hz) to CTRL_REG1 ODR codes.
// 1620 and 5376 Hz are the low-power-mode rates.
var odrCodes = map[int]byte{
	1:    0x1,
	10:   0x2,
	25:   0x3,
	50:   0x4,
	100:  0x5,
	200:  0x6,
	400:  0x7,
	1620: 0x8,
	5376: 0x9,
}

// rangeCodes maps full-scale ranges (g) to CTRL_REG4 FS codes.
var rangeCodes = map[int]byte{
	2:  0x0,
	4:  0x1,
	8:  0x2,
	16: 0x3,
}

// sensitivities is mg per digit for 12-bit high-resolution output, per range.
var sensitivities = map[int]float32{
	2:  1,
	4:  2,
	8:  4,
	16: 12,
}

// Sensor is one LIS3DH accelerometer. It assumes the multiplexer has already
// routed the bus to its channel; callers go through Array for that.
type Sensor struct {
	bus    Bus
	addr   uint16
	rangeG int
	rateHz int
}

// NewSensor creates a sensor handle at the given address (usually 0x18).
func NewSensor(bus Bus, addr uint16) *Sensor {
	return &Sensor{bus: bus, addr: addr, rangeG: 2, rateHz: 1}
}

// Detect probes the WHO_AM_I register. False means no LIS3DH answered.
func (s *Sensor) Detect() bool {
	var id [1]byte
	if err := s.bus.Tx(s.addr, []byte{regWhoAmI}, id[:]); err != nil {
		return false
	}
	return id[0] == whoAmIValue
}

// Configure applies the given range and datarate and enables all three axes
// in high-resolution mode.
func (s *Sensor) Configure(rangeG, rateHz int) error {
	if err := s.SetDataRate(rateHz); err != nil {
		return err
	}
	return s.SetRange(rangeG)
}

// SetDataRate sets the output datarate. An unsupported rate performs no
// register write and leaves the sensor at its previous rate; the stored rate
// still updates so the mismatch is observable downstream.
func (s *Sensor) SetDataRate(rateHz int) error {
	code, ok := odrCodes[rateHz]
	if !ok {
		s.rateHz = rateHz
		return nil
	}
	if err := s.writeReg(regCtrl1, code<<4|ctrl1AxesOn); err != nil {
		return fmt.Errorf("failed to set datarate to %d Hz: %w", rateHz, err)
	}
	s.rateHz = rateHz
	return nil
}

// SetRange sets the full-scale measurement range in g. An unsupported range
// is ignored.
func (s *Sensor) SetRange(rangeG int) error {
	code, ok := rangeCodes[rangeG]
	if !ok {
		return nil
	}
	if err := s.writeReg(regCtrl4, code<<4|ctrl4HighRes); err != nil {
		return fmt.Errorf("failed to set range to %d g: %w", rangeG, err)
	}
	s.rangeG = rangeG
	return nil
}

// Range returns the configured full-scale range in g.
func (s *Sensor) Range() int { return s.rangeG }

// DataRate returns the configured output datarate in Hz.
func (s *Sensor) DataRate() int { return s.rateHz }

// Read burst-reads the six output registers and returns acceleration in m/s².
func (s *Sensor) Read() (x, y, z float32, err error) {
	var out [6]byte
	if err = s.bus.Tx(s.addr, []byte{regOutXLow | autoIncrement}, out[:]); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read acceleration: %w", err)
	}

	sens := sensitivities[s.rangeG]
	x = countsToMS2(out[0], out[1], sens)
	y = countsToMS2(out[2], out[3], sens)
	z = countsToMS2(out[4], out[5], sens)
	return x, y, z, nil
}

func (s *Sensor) writeReg(reg, value byte) error {
	return s.bus.Tx(s.addr, []byte{reg, value}, nil)
}

// countsToMS2 converts a left-justified 12-bit two's-complement reading to
// m/s² using the sensitivity in mg per digit.
func countsToMS2(lo, hi byte, sensMg float32) float32 {
	raw := int16(uint16(hi)<<8|uint16(lo)) >> 4
	return float32(raw) * sensMg * gravity / 1000
}

// ms2ToCounts is the inverse of countsToMS2; the mock uses it to encode
// simulated readings.
func ms2ToCounts(a, sensMg float32) int16 {
	counts := math32.Round(a * 1000 / (sensMg * gravity))
	if counts > 2047 {
		counts = 2047
	} else if counts < -2048 {
		counts = -2048
	}
	return int16(counts)
}
