package accel

import (
	"fmt"
	"log"
	"sort"
)

// Array is the set of sensors found behind the multiplexer at boot. Slots are
// kept in a sparse map keyed by channel; a channel with no entry never had a
// sensor answer and stays absent for the whole session.
type Array struct {
	mux   *Mux
	slots map[int]*Sensor
}

// Scan probes every multiplexer channel once and configures each responding
// sensor with the given defaults. Channels that fail the probe are skipped
// silently. Scan never returns an error: an empty array is a valid (if
// useless) result and the daemon keeps serving.
func Scan(bus Bus, muxAddr, sensorAddr uint16, rangeG, rateHz int) *Array {
	a := &Array{
		mux:   NewMux(bus, muxAddr),
		slots: make(map[int]*Sensor),
	}

	for ch := 0; ch < NumChannels; ch++ {
		if err := a.mux.Select(ch); err != nil {
			continue
		}
		s := NewSensor(bus, sensorAddr)
		if !s.Detect() {
			continue
		}
		if err := s.Configure(rangeG, rateHz); err != nil {
			log.Printf("Sensor on channel %d failed to configure: %v", ch, err)
			continue
		}
		a.slots[ch] = s
	}

	return a
}

// Count returns the number of detected sensors.
func (a *Array) Count() int { return len(a.slots) }

// Detected returns the detected channel indices in ascending order. Sampling
// always walks channels in this fixed order so per-sensor timestamps stay
// non-decreasing.
func (a *Array) Detected() []int {
	chs := make([]int, 0, len(a.slots))
	for ch := range a.slots {
		chs = append(chs, ch)
	}
	sort.Ints(chs)
	return chs
}

// SetRange applies a range change to every detected sensor.
func (a *Array) SetRange(rangeG int) {
	a.apply(func(s *Sensor) error { return s.SetRange(rangeG) })
}

// SetDataRate applies a datarate change to every detected sensor.
func (a *Array) SetDataRate(rateHz int) {
	a.apply(func(s *Sensor) error { return s.SetDataRate(rateHz) })
}

func (a *Array) apply(f func(*Sensor) error) {
	for _, ch := range a.Detected() {
		if err := a.mux.Select(ch); err != nil {
			continue
		}
		if err := f(a.slots[ch]); err != nil {
			log.Printf("Sensor on channel %d: %v", ch, err)
		}
	}
}

// Read selects the channel and reads acceleration from the sensor there.
func (a *Array) Read(ch int) (x, y, z float32, err error) {
	s, ok := a.slots[ch]
	if !ok {
		return 0, 0, 0, fmt.Errorf("no sensor on channel %d", ch)
	}
	if err := a.mux.Select(ch); err != nil {
		return 0, 0, 0, err
	}
	return s.Read()
}
