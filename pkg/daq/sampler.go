package daq

import (
	"context"
	"log"
	"time"

	"github.com/analogarnold/accelstream/pkg/accel"
)

// Sampler is the time-critical acquisition worker. A periodic ticker wakes
// it; on each wake it copies the shared state under the lock, applies any
// pending configuration change to the sensors (without the lock), then reads
// every detected sensor and pushes the samples into the queue.
type Sampler struct {
	array *accel.Array
	state *State
	queue *Queue
	start time.Time
}

// NewSampler creates a sampler over the given array, state and queue.
func NewSampler(array *accel.Array, state *State, queue *Queue) *Sampler {
	return &Sampler{
		array: array,
		state: state,
		queue: queue,
	}
}

// Run drives the sampling loop until the context is cancelled. The ticker is
// the scheduler: a payload-free wake that drops ticks rather than queueing
// them when the loop body overruns the period.
func (s *Sampler) Run(ctx context.Context) error {
	s.start = time.Now()

	interval := s.state.Snapshot().IntervalMs
	ticker := time.NewTicker(tickerPeriod(interval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		snap := s.state.Snapshot()
		if snap.PendingRange != nil || snap.PendingDatarate != nil {
			s.applyPending(snap, ticker)
		}
		if snap.Recording {
			s.sampleAll()
		}
	}
}

// applyPending pushes the requested configuration to every detected sensor,
// retunes the ticker if the datarate changed, then commits under the lock.
func (s *Sampler) applyPending(snap Snapshot, ticker *time.Ticker) {
	if snap.PendingRange != nil {
		s.array.SetRange(*snap.PendingRange)
		log.Printf("Applied range change: %d g", *snap.PendingRange)
	}

	datarate := snap.Datarate
	intervalMs := snap.IntervalMs
	if snap.PendingDatarate != nil {
		datarate = *snap.PendingDatarate
		intervalMs = IntervalMs(datarate)
		s.array.SetDataRate(datarate)
		ticker.Reset(tickerPeriod(intervalMs))
		log.Printf("Applied datarate change: %d Hz (interval %d ms)", datarate, intervalMs)
	}

	s.state.CommitPending(datarate, intervalMs)
}

// sampleAll reads every detected sensor in ascending channel order and
// enqueues the results. A full queue drops the incoming sample; a read error
// skips that sensor for this tick.
func (s *Sampler) sampleAll() {
	now := uint64(time.Since(s.start).Milliseconds())

	for _, ch := range s.array.Detected() {
		x, y, z, err := s.array.Read(ch)
		if err != nil {
			continue
		}
		s.queue.TryPush(Sample{
			Sensor:      ch,
			TimestampMs: now,
			X:           x,
			Y:           y,
			Z:           z,
		})
	}
}

// tickerPeriod clamps an interval to the 1 ms ticker floor; the highest
// datarates round below it.
func tickerPeriod(intervalMs int) time.Duration {
	if intervalMs < 1 {
		intervalMs = 1
	}
	return time.Duration(intervalMs) * time.Millisecond
}
