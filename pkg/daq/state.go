package daq

import (
	"sync"

	"github.com/chewxy/math32"
)

// State is the configuration shared between the network session and the
// sampler. The network side sets the recording flag and files pending change
// requests; the sampler picks them up on its next wake, applies them to the
// hardware and commits the result. All access goes through lock-scoped
// methods; the lock is never held across bus or socket I/O.
type State struct {
	mu sync.Mutex

	recording       bool
	pendingRange    *int // requested range in g, nil when none pending
	pendingDatarate *int // requested datarate in Hz, nil when none pending
	datarate        int
	intervalMs      int
}

// Snapshot is a copy of the state taken under the lock.
type Snapshot struct {
	Recording       bool
	PendingRange    *int
	PendingDatarate *int
	Datarate        int
	IntervalMs      int
}

// NewState creates the shared state with recording off, no pending changes
// and the interval derived from the boot datarate.
func NewState(datarate int) *State {
	return &State{
		datarate:   datarate,
		intervalMs: IntervalMs(datarate),
	}
}

// Snapshot copies all fields out under the lock. The pending pointers in the
// returned value are private copies, so the caller can act on them without
// holding the lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Recording:  s.recording,
		Datarate:   s.datarate,
		IntervalMs: s.intervalMs,
	}
	if s.pendingRange != nil {
		v := *s.pendingRange
		snap.PendingRange = &v
	}
	if s.pendingDatarate != nil {
		v := *s.pendingDatarate
		snap.PendingDatarate = &v
	}
	return snap
}

// SetRecording turns recording on or off.
func (s *State) SetRecording(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = on
}

// Recording reports whether recording is active.
func (s *State) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// RequestRange files a range change for the sampler to apply. A second
// request before the first is applied replaces it.
func (s *State) RequestRange(g int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingRange = &g
}

// RequestDatarate files a datarate change for the sampler to apply. The
// value is not validated against the supported rates; see IntervalMs.
func (s *State) RequestDatarate(hz int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingDatarate = &hz
}

// CommitPending clears the pending requests and records the now-active
// datarate and interval. Only the sampler calls this, after the hardware
// writes are done.
func (s *State) CommitPending(datarate, intervalMs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingRange = nil
	s.pendingDatarate = nil
	s.datarate = datarate
	s.intervalMs = intervalMs
}

// IntervalMs derives the sampling tick interval from a datarate. The result
// is round(1000/hz); 5376 Hz legitimately rounds to 0 and the sampler clamps
// that to its 1 ms ticker floor at the point of use. Non-positive rates fall
// back to the 1 Hz default interval.
func IntervalMs(hz int) int {
	if hz <= 0 {
		return 1000
	}
	return int(math32.Round(1000 / float32(hz)))
}
