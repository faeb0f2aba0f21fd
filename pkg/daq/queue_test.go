package daq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(10)

	for i := 0; i < 5; i++ {
		assert.True(t, q.TryPush(Sample{Sensor: i}))
	}
	assert.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		s, ok := q.TryPop()
		require.True(t, ok)
		assert.Equal(t, i, s.Sensor)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_TryPop_Empty(t *testing.T) {
	q := NewQueue(10)

	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestQueue_FullDropsIncoming(t *testing.T) {
	q := NewQueue(50)

	for i := 0; i < 50; i++ {
		require.True(t, q.TryPush(Sample{TimestampMs: uint64(i)}))
	}
	assert.Equal(t, 50, q.Len())

	// The 51st push is discarded; the queue keeps the oldest 50.
	assert.False(t, q.TryPush(Sample{TimestampMs: 50}))
	assert.Equal(t, 50, q.Len())
	assert.Equal(t, uint64(1), q.Dropped())

	s, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, uint64(0), s.TimestampMs)
}

func TestQueue_DrainAndResume(t *testing.T) {
	q := NewQueue(50)

	for i := 0; i < 60; i++ {
		q.TryPush(Sample{TimestampMs: uint64(i)})
	}
	assert.Equal(t, 50, q.Len())
	assert.Equal(t, uint64(10), q.Dropped())

	// Drain completely, then pushes succeed again.
	for {
		if _, ok := q.TryPop(); !ok {
			break
		}
	}
	assert.Equal(t, 0, q.Len())
	assert.True(t, q.TryPush(Sample{TimestampMs: 100}))
	assert.Equal(t, 1, q.Len())
}

func TestNewQueue_DefaultCapacity(t *testing.T) {
	q := NewQueue(0)
	assert.Equal(t, DefaultQueueSize, q.Cap())
}
