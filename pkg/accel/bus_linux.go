//go:build linux

package accel

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

type periphBus struct {
	bus i2c.BusCloser
}

// OpenBus opens the named I2C bus through periph.io. The name is an i2creg
// reference such as "1" or "/dev/i2c-1".
func OpenBus(name string) (BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host drivers: %w", err)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", name, err)
	}

	return &periphBus{bus: bus}, nil
}

func (b *periphBus) Tx(addr uint16, w, r []byte) error {
	return b.bus.Tx(addr, w, r)
}

func (b *periphBus) Close() error {
	return b.bus.Close()
}
