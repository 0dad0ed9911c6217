// Package amcptest provides a loopback AMCP server for tests.
package amcptest

import (
	"bufio"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
)

// Handler answers one received command line. The returned text is written
// back verbatim, so tests control the exact framing. An empty string sends
// nothing.
type Handler func(cmd string) string

// Server is a minimal AMCP server on a loopback TCP port.
type Server struct {
	Host string
	Port int

	listener net.Listener
	handler  Handler

	mu          sync.Mutex
	connections []net.Conn
	accepted    int
	received    []string

	wg sync.WaitGroup
}

// Start listens on an ephemeral loopback port. A nil handler answers with
// DefaultHandler. The server is stopped when the test finishes.
func Start(t testing.TB, handler Handler) *Server {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	return Serve(t, listener, handler)
}

// Serve runs a server on an existing listener.
func Serve(t testing.TB, listener net.Listener, handler Handler) *Server {
	t.Helper()

	host, portStr, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		t.Fatalf("bad listener address: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	if handler == nil {
		handler = DefaultHandler
	}

	s := &Server{
		Host:     host,
		Port:     port,
		listener: listener,
		handler:  handler,
	}

	s.wg.Add(1)
	go s.acceptLoop()

	t.Cleanup(s.Stop)
	return s
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.connections = append(s.connections, conn)
		s.accepted++
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd := scanner.Text()

		s.mu.Lock()
		s.received = append(s.received, cmd)
		s.mu.Unlock()

		if response := s.handler(cmd); response != "" {
			io.WriteString(conn, response)
		}
	}
}

// DropConnections closes every open client connection but keeps listening.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.connections {
		conn.Close()
	}
	s.connections = nil
}

// Connections returns the client connections that are still open.
func (s *Server) Connections() []net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]net.Conn, len(s.connections))
	copy(out, s.connections)
	return out
}

// AcceptedCount returns how many connections were accepted so far.
func (s *Server) AcceptedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// ReceivedCommands returns a copy of every command line received.
func (s *Server) ReceivedCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.received))
	copy(out, s.received)
	return out
}

// Stop closes the listener and all connections and waits for the server's
// goroutines.
func (s *Server) Stop() {
	s.listener.Close()
	s.DropConnections()
	s.wg.Wait()
}

// DefaultHandler answers a few commands like a small playout server.
func DefaultHandler(cmd string) string {
	switch {
	case cmd == "VERSION":
		return "201 VERSION OK\r\n2.3.0 Stable\r\n"
	case cmd == "CLS":
		return "200 CLS OK\r\n\"AMB\" MOVIE 6445960 20170413141427 268 1/25\r\n\"GO1080P25\" MOVIE 16694084 20170413141427 445 1/25\r\n\r\n"
	case cmd == "INFO SYSTEM":
		return "201 INFO SYSTEM OK\r\n<system/>\r\n"
	case cmd == "HANG":
		return ""
	case strings.HasPrefix(cmd, "PLAY"):
		return "202 PLAY OK\r\n"
	default:
		return "400 ERROR\r\n" + cmd + "\r\n"
	}
}

// QuietLogger returns a logger entry that discards everything.
func QuietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
