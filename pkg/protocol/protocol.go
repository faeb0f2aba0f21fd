// Package protocol defines the line-oriented wire protocol between the
// daemon and its client: newline-terminated ASCII commands in, one CSV
// telemetry line per sample out.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/analogarnold/accelstream/pkg/daq"
)

// Kind identifies a parsed command.
type Kind int

const (
	// KindUnknown is anything that parses as neither a keyword nor an
	// integer. Unknown commands are ignored by the server.
	KindUnknown Kind = iota
	KindStart
	KindStop
	KindExit
	KindSetRange
	KindSetDatarate
)

// Command is one parsed client line. Value carries the integer for
// KindSetRange and KindSetDatarate.
type Command struct {
	Kind  Kind
	Value int
}

// ParseCommand parses one client line. Keyword commands are START, STOP and
// EXIT. An integer in {2,4,8,16} is a range request in g; any other integer
// is a datarate request in Hz and is deliberately not validated against the
// supported rates (the client detects a mismatch from its timestamp deltas).
func ParseCommand(line string) Command {
	token := strings.TrimSpace(line)

	switch token {
	case "START":
		return Command{Kind: KindStart}
	case "STOP":
		return Command{Kind: KindStop}
	case "EXIT":
		return Command{Kind: KindExit}
	}

	v, err := strconv.Atoi(token)
	if err != nil {
		return Command{Kind: KindUnknown}
	}

	switch v {
	case 2, 4, 8, 16:
		return Command{Kind: KindSetRange, Value: v}
	default:
		return Command{Kind: KindSetDatarate, Value: v}
	}
}

// FormatSample renders one telemetry line, newline included:
//
//	<sensor>,<timestampMs>,<x>,<y>,<z>\n
//
// Accelerations are fixed to two decimals, e.g. "2,104532,0.01,-0.02,9.78".
func FormatSample(s daq.Sample) string {
	return fmt.Sprintf("%d,%d,%.2f,%.2f,%.2f\n", s.Sensor, s.TimestampMs, s.X, s.Y, s.Z)
}
