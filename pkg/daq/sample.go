// Package daq contains the acquisition core: the shared runtime state, the
// bounded sample queue and the ticker-driven sampling worker. The network
// side only ever touches State (under its lock) and Queue; the sampler is
// the only code that talks to the sensor bus.
package daq

// Sample is one accelerometer reading.
type Sample struct {
	Sensor      int     // multiplexer channel the sensor sits on, 0..7
	TimestampMs uint64  // milliseconds since the sampler started, monotonic
	X           float32 // m/s²
	Y           float32
	Z           float32
}
