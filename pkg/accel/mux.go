package accel

// NumChannels is the number of downstream channels on the TCA9548A.
const NumChannels = 8

// Mux drives a TCA9548A channel multiplexer. Selecting a channel routes all
// subsequent bus transactions to the devices behind that channel.
type Mux struct {
	bus  Bus
	addr uint16
}

// NewMux creates a multiplexer handle at the given address (usually 0x70).
func NewMux(bus Bus, addr uint16) *Mux {
	return &Mux{bus: bus, addr: addr}
}

// Select routes the bus to channel ch. An out-of-range channel is a silent
// no-op; a bad channel mask must never reach the multiplexer.
func (m *Mux) Select(ch int) error {
	if ch < 0 || ch >= NumChannels {
		return nil
	}
	return m.bus.Tx(m.addr, []byte{1 << uint(ch)}, nil)
}
