//go:build !linux

package accel

import "fmt"

// OpenBus is only implemented on Linux. Other platforms must use the mock.
func OpenBus(name string) (BusCloser, error) {
	return nil, fmt.Errorf("I2C bus %s: not supported on this platform, use -mock", name)
}
