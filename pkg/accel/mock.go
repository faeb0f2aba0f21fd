package accel

import (
	"fmt"
	"sync"
)

// MockBus simulates a TCA9548A with LIS3DH sensors on a chosen set of
// channels. It implements Bus, so Mux, Sensor and Array run against it
// unchanged. Used by tests and by the daemon's -mock mode.
type MockBus struct {
	mu sync.Mutex

	muxAddr    uint16
	sensorAddr uint16

	selected int                   // currently routed channel, -1 before first select
	present  map[int]bool
	regs     map[int]map[byte]byte // per-channel LIS3DH register file
	accel    map[int][3]float32    // per-channel simulated acceleration, m/s²
}

// NewMockBus creates a mock bus with sensors present on the given channels.
// Simulated sensors boot reading 0,0,+1g like a board lying flat.
func NewMockBus(muxAddr, sensorAddr uint16, channels ...int) *MockBus {
	b := &MockBus{
		muxAddr:    muxAddr,
		sensorAddr: sensorAddr,
		selected:   -1,
		present:    make(map[int]bool),
		regs:       make(map[int]map[byte]byte),
		accel:      make(map[int][3]float32),
	}
	for _, ch := range channels {
		b.present[ch] = true
		b.regs[ch] = map[byte]byte{regWhoAmI: whoAmIValue}
		b.accel[ch] = [3]float32{0, 0, gravity}
	}
	return b
}

// SetAcceleration sets the simulated reading for the sensor on channel ch.
func (b *MockBus) SetAcceleration(ch int, x, y, z float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accel[ch] = [3]float32{x, y, z}
}

// Selected returns the currently routed channel (-1 before the first select).
func (b *MockBus) Selected() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// Reg returns a register value from the sensor on channel ch.
func (b *MockBus) Reg(ch int, reg byte) byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.regs[ch][reg]
}

// Tx dispatches the transaction to the mux or to the sensor on the routed
// channel.
func (b *MockBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if addr == b.muxAddr {
		return b.muxTx(w, r)
	}
	if addr == b.sensorAddr {
		return b.sensorTx(w, r)
	}
	return fmt.Errorf("no device at address %#x", addr)
}

func (b *MockBus) muxTx(w, r []byte) error {
	if len(w) != 1 || len(r) != 0 {
		return fmt.Errorf("unexpected mux transaction: %d write, %d read", len(w), len(r))
	}
	mask := w[0]
	for ch := 0; ch < NumChannels; ch++ {
		if mask == 1<<uint(ch) {
			b.selected = ch
			return nil
		}
	}
	return fmt.Errorf("unexpected mux channel mask %#x", mask)
}

func (b *MockBus) sensorTx(w, r []byte) error {
	if b.selected < 0 || !b.present[b.selected] {
		// Nothing behind this channel answers; real hardware NACKs.
		return fmt.Errorf("no sensor on channel %d", b.selected)
	}
	regs := b.regs[b.selected]

	if len(w) == 0 {
		return fmt.Errorf("empty sensor transaction")
	}
	reg := w[0]

	// Register write: sub-address followed by one value.
	if len(w) == 2 && len(r) == 0 {
		regs[reg] = w[1]
		return nil
	}

	// Register read(s).
	if len(w) == 1 && len(r) > 0 {
		if reg&autoIncrement != 0 && reg&^autoIncrement == regOutXLow {
			return b.readOutput(r)
		}
		for i := range r {
			r[i] = regs[reg+byte(i)]
		}
		return nil
	}

	return fmt.Errorf("unexpected sensor transaction: %d write, %d read", len(w), len(r))
}

// readOutput encodes the simulated acceleration the same way the silicon
// does: 12-bit two's complement, left-justified, scaled by the sensitivity
// of the currently configured range.
func (b *MockBus) readOutput(r []byte) error {
	if len(r) != 6 {
		return fmt.Errorf("output read must be 6 bytes, got %d", len(r))
	}

	rangeG := 2
	for g, code := range rangeCodes {
		if b.regs[b.selected][regCtrl4]>>4&0x3 == code {
			rangeG = g
		}
	}
	sens := sensitivities[rangeG]

	a := b.accel[b.selected]
	for i := 0; i < 3; i++ {
		counts := ms2ToCounts(a[i], sens)
		left := uint16(counts) << 4
		r[2*i] = byte(left)
		r[2*i+1] = byte(left >> 8)
	}
	return nil
}
