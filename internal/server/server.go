// Package server exposes the book.Engine over two transports: a
// line-oriented TCP protocol for order entry (grounded on the teacher's
// server.go) and a WebSocket stream of output events and depth snapshots
// for remote depth viewers (SPEC_FULL.md §4.10). The TCP transport never
// calls the engine directly: it only pushes InputCommands onto a shared
// ring, so the engine's mutating operations keep exactly one caller
// regardless of how many TCP clients are connected. The WebSocket
// transport pushes no commands; it forwards bus events and renders depth
// frames from the engine's read-only queries.
package server

import (
	"bufio"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/dsouth/femtobook/internal/bus"
	"github.com/dsouth/femtobook/internal/ring"
)

// Server accepts order-entry TCP connections and forwards decoded
// commands onto Input. Use Hub for the WebSocket depth/event stream.
type Server struct {
	addr   string
	Input  *ring.Buffer[bus.InputCommand]
	Logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	sessions map[uuid.UUID]net.Conn

	// pushMu serializes Push across sessions: ring.Buffer allows only one
	// producer at a time.
	pushMu sync.Mutex
}

// New returns a Server that will listen on addr once Start is called.
func New(addr string, input *ring.Buffer[bus.InputCommand], logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{addr: addr, Input: input, Logger: logger, sessions: make(map[uuid.UUID]net.Conn)}
}

// Start binds the listener and begins accepting connections in a new
// goroutine. It returns once the listener is bound so callers can log or
// synchronize on "serving" before Start's internal accept loop runs.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go s.acceptLoop(ln)
	return nil
}

// Close stops accepting new connections and closes all active sessions.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for id, conn := range s.sessions {
		conn.Close()
		delete(s.sessions, id)
	}
	return err
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return // listener closed
		}
		id := s.addSession(conn)
		go s.handleConn(conn, id)
	}
}

func (s *Server) addSession(conn net.Conn) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = conn
	s.mu.Unlock()
	return id
}

func (s *Server) removeSession(id uuid.UUID, conn net.Conn) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) handleConn(conn net.Conn, id uuid.UUID) {
	defer s.removeSession(id, conn)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line == "QUIT" {
			return
		}

		cmd, err := parseCommand(line)
		if err != nil {
			s.Logger.Warn("rejected malformed command", "session", id, "err", err)
			continue
		}
		cmd.Trader = id
		s.pushMu.Lock()
		s.Input.Push(cmd)
		s.pushMu.Unlock()
	}
}
