package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analogarnold/accelstream/pkg/daq"
)

func startServer(t *testing.T) (*daq.State, *daq.Queue, string) {
	t.Helper()

	state := daq.NewState(1)
	queue := daq.NewQueue(50)
	srv := New("", state, queue)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Serve(ctx, ln)

	return state, queue, ln.Addr().String()
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
}

func TestServer_StartStop(t *testing.T) {
	state, _, addr := startServer(t)
	conn := dial(t, addr)

	send(t, conn, "START")
	require.Eventually(t, state.Recording, time.Second, time.Millisecond)

	send(t, conn, "STOP")
	require.Eventually(t, func() bool { return !state.Recording() }, time.Second, time.Millisecond)
}

func TestServer_ParameterRequests(t *testing.T) {
	state, _, addr := startServer(t)
	conn := dial(t, addr)

	send(t, conn, "16")
	require.Eventually(t, func() bool {
		snap := state.Snapshot()
		return snap.PendingRange != nil && *snap.PendingRange == 16
	}, time.Second, time.Millisecond)

	send(t, conn, "200")
	require.Eventually(t, func() bool {
		snap := state.Snapshot()
		return snap.PendingDatarate != nil && *snap.PendingDatarate == 200
	}, time.Second, time.Millisecond)
}

func TestServer_UnsupportedDatarateForwarded(t *testing.T) {
	state, _, addr := startServer(t)
	conn := dial(t, addr)

	send(t, conn, "7")
	require.Eventually(t, func() bool {
		snap := state.Snapshot()
		return snap.PendingDatarate != nil && *snap.PendingDatarate == 7
	}, time.Second, time.Millisecond)
}

func TestServer_StreamsQueuedSamples(t *testing.T) {
	_, queue, addr := startServer(t)
	conn := dial(t, addr)

	queue.TryPush(daq.Sample{Sensor: 2, TimestampMs: 104532, X: 0.01, Y: -0.02, Z: 9.78})
	queue.TryPush(daq.Sample{Sensor: 0, TimestampMs: 104533, X: 1, Y: 2, Z: 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(conn)

	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "2,104532,0.01,-0.02,9.78\n", line)

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "0,104533,1.00,2.00,3.00\n", line)
}

func TestServer_GarbageIgnored(t *testing.T) {
	state, _, addr := startServer(t)
	conn := dial(t, addr)

	send(t, conn, "BANANA")
	send(t, conn, "2.5")
	send(t, conn, "")

	// The session survives malformed input and keeps dispatching.
	send(t, conn, "START")
	require.Eventually(t, state.Recording, time.Second, time.Millisecond)
}

func TestServer_ExitEndsSession(t *testing.T) {
	_, _, addr := startServer(t)
	conn := dial(t, addr)

	send(t, conn, "EXIT")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	_, err := conn.Read(buf)
	assert.Error(t, err) // EOF once the server closes the session
}

func TestServer_ReconnectAfterAbruptDrop(t *testing.T) {
	state, _, addr := startServer(t)

	first := dial(t, addr)
	send(t, first, "START")
	require.Eventually(t, state.Recording, time.Second, time.Millisecond)

	// Peer vanishes mid-session.
	require.NoError(t, first.Close())

	// A new client is accepted without restarting anything, and the
	// recording flag keeps its last value.
	second := dial(t, addr)
	send(t, second, "100")
	require.Eventually(t, func() bool {
		snap := state.Snapshot()
		return snap.PendingDatarate != nil && *snap.PendingDatarate == 100
	}, 2*time.Second, time.Millisecond)
	assert.True(t, state.Recording())
}

func TestServer_SecondClientWaitsForFirst(t *testing.T) {
	state, _, addr := startServer(t)

	first := dial(t, addr)
	send(t, first, "START")
	require.Eventually(t, state.Recording, time.Second, time.Millisecond)

	// The second connection sits in the backlog; its commands are not
	// served while the first session is active.
	second := dial(t, addr)
	send(t, second, "STOP")

	time.Sleep(100 * time.Millisecond)
	assert.True(t, state.Recording())

	// Once the first session ends, the second one gets served.
	send(t, first, "EXIT")
	require.Eventually(t, func() bool { return !state.Recording() }, 2*time.Second, time.Millisecond)
}
