package daq

import "sync/atomic"

// DefaultQueueSize is the default capacity of the sample queue.
const DefaultQueueSize = 50

// Queue is a bounded FIFO decoupling the sampler from the network writer.
// Push never blocks: when the queue is full the incoming sample is discarded
// and counted, so a stalled client can never stall the sampling cadence.
type Queue struct {
	ch      chan Sample
	dropped atomic.Uint64
}

// NewQueue creates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &Queue{ch: make(chan Sample, capacity)}
}

// TryPush enqueues s without blocking. Returns false if the queue was full
// and the sample was discarded.
func (q *Queue) TryPush(s Sample) bool {
	select {
	case q.ch <- s:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// TryPop dequeues the oldest sample without blocking.
func (q *Queue) TryPop() (Sample, bool) {
	select {
	case s := <-q.ch:
		return s, true
	default:
		return Sample{}, false
	}
}

// Len returns the number of queued samples.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.ch) }

// Dropped returns the number of samples discarded because the queue was full.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }
