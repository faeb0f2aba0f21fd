// Package server hosts the single-client TCP listener. It parses command
// lines into shared-state mutations and drains the sample queue to the
// socket as telemetry lines. It never touches the sensor bus.
package server

import (
	"bufio"
	"context"
	"log"
	"net"
	"time"

	"github.com/analogarnold/accelstream/pkg/daq"
	"github.com/analogarnold/accelstream/pkg/protocol"
)

// DefaultYield is how long the serving loop sleeps after an iteration with
// nothing left to drain.
const DefaultYield = time.Millisecond

// Server accepts one client at a time and runs the serving loop for it.
type Server struct {
	addr  string
	state *daq.State
	queue *daq.Queue
	yield time.Duration
}

// New creates a server listening on addr once Run is called.
func New(addr string, state *daq.State, queue *daq.Queue) *Server {
	return &Server{
		addr:  addr,
		state: state,
		queue: queue,
		yield: DefaultYield,
	}
}

// Run listens on the configured address and serves until the context is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	log.Printf("Listening on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln sequentially: a second client is not
// accepted until the current session ends. It closes the listener when the
// context is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		log.Printf("Client connected: %s", conn.RemoteAddr())
		s.serve(ctx, conn)
		conn.Close()
		log.Printf("Client disconnected: %s", conn.RemoteAddr())
	}
}

// serve runs one session. It returns when the peer closes the connection, a
// telemetry write fails or the client sends EXIT. Recording state and sensor
// parameters deliberately survive the session; resetting them is the
// client's responsibility.
func (s *Server) serve(ctx context.Context, conn net.Conn) {
	lines := make(chan string, 16)
	done := make(chan struct{})
	defer close(done)
	go readLines(conn, lines, done)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				// Peer closed or the read failed.
				return
			}
			if exit := s.dispatch(line); exit {
				return
			}
			continue
		default:
		}

		if !s.drain(conn) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.yield):
		}
	}
}

// dispatch applies one command line to the shared state. Unknown commands
// are ignored. Returns true for EXIT.
func (s *Server) dispatch(line string) bool {
	cmd := protocol.ParseCommand(line)

	switch cmd.Kind {
	case protocol.KindStart:
		s.state.SetRecording(true)
		log.Printf("Recording started")
	case protocol.KindStop:
		s.state.SetRecording(false)
		log.Printf("Recording stopped")
	case protocol.KindExit:
		return true
	case protocol.KindSetRange:
		s.state.RequestRange(cmd.Value)
	case protocol.KindSetDatarate:
		s.state.RequestDatarate(cmd.Value)
	case protocol.KindUnknown:
		// Malformed input never disturbs the session.
	}
	return false
}

// drain writes every queued sample to the connection. Returns false when a
// write fails, which ends the session.
func (s *Server) drain(conn net.Conn) bool {
	for {
		smp, ok := s.queue.TryPop()
		if !ok {
			return true
		}
		if _, err := conn.Write([]byte(protocol.FormatSample(smp))); err != nil {
			log.Printf("Telemetry write failed: %v", err)
			return false
		}
	}
}

// readLines scans newline-terminated lines from the connection into the
// channel and closes it when the connection dies. The done channel unblocks
// a pending send when the session ends first.
func readLines(conn net.Conn, lines chan<- string, done <-chan struct{}) {
	defer close(lines)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-done:
			return
		}
	}
}
