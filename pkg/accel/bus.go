// Package accel provides access to LIS3DH accelerometers multiplexed behind
// a TCA9548A channel multiplexer on a single I2C bus.
//
// The package is built around a small Bus transaction interface so the same
// driver code runs against real hardware (periph.io on Linux) and against the
// in-memory MockBus used for tests and the -mock daemon mode.
package accel

import "io"

// Bus performs one I2C transaction: write w to addr, then read len(r) bytes.
// Either slice may be empty. The signature matches periph.io's i2c.Bus so the
// real bus satisfies it directly.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// BusCloser is a Bus that owns an underlying handle.
type BusCloser interface {
	Bus
	io.Closer
}

// Ensure MockBus implements Bus.
var _ Bus = (*MockBus)(nil)
