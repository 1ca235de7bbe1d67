// Package tcpline serves the legacy rendering client: a line-oriented
// TCP push protocol with no passwords and no acknowledgements. Every
// accepted connection is placed into one configured room so legacy and
// event-protocol clients share the same coordinator and can meet on
// the same board.
package tcpline

import (
	"bufio"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"gomoku_relay/internal/logger"
	"gomoku_relay/internal/relay"
)

const (
	writeTimeout = 10 * time.Second

	sendDepth = 64
)

type Server struct {
	addr  string
	room  string
	coord *relay.Coordinator

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewServer(addr, room string, coord *relay.Coordinator) *Server {
	return &Server{
		addr:   addr,
		room:   room,
		coord:  coord,
		conns:  make(map[net.Conn]struct{}),
		closed: make(chan struct{}),
	}
}

// ListenAndServe accepts connections until Shutdown. Each connection
// gets its own goroutine for the receive side; the send side is driven
// by coordinator broadcasts through the connection's sink.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	logger.Info("legacy listener started", "addr", ln.Addr().String(), "room", s.room)

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.closed:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Addr returns the bound listener address, empty before ListenAndServe.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Shutdown stops accepting, closes every live connection so blocked
// reads unwind, and waits for per-connection goroutines.
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() { close(s.closed) })
	s.mu.Lock()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// track records a live connection so Shutdown can close it. Returns
// false when the server is already shutting down.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.closed:
		return false
	default:
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) handleConn(conn net.Conn) {
	if !s.track(conn) {
		_ = conn.Close()
		return
	}

	id := uuid.NewString()
	sink := newLineSink(conn, id)

	s.coord.Connect(id, sink)
	s.coord.Join(id, s.room)
	defer func() {
		s.coord.Disconnect(id)
		_ = conn.Close()
		sink.stop()
		s.untrack(conn)
	}()

	// Scanner splits on newlines, so concatenated frames from the
	// client side are handled for free.
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd, ok := parseLine(scanner.Text())
		if !ok {
			logger.Debug("dropping malformed line", "conn", id)
			continue
		}
		switch cmd.verb {
		case "MOVE":
			s.coord.Move(id, cmd.dx, cmd.dy)
		case "PLACE":
			s.coord.Place(id, nil)
		}
	}
	logger.Debug("legacy connection closed", "conn", id, "err", scanner.Err())
}

// lineSink delivers broadcasts to one legacy connection through a
// buffered channel drained by its own writer goroutine, so a stalled
// peer never holds up the room's broadcast loop. Frames that do not fit
// the buffer are dropped.
type lineSink struct {
	conn net.Conn
	id   string

	send    chan []byte
	done    chan struct{}
	stopped chan struct{}
}

func newLineSink(conn net.Conn, id string) *lineSink {
	l := &lineSink{
		conn:    conn,
		id:      id,
		send:    make(chan []byte, sendDepth),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.writePump()
	return l
}

func (l *lineSink) SendJoined(room, conn string) {
	// The legacy protocol has no join acknowledgement.
}

func (l *lineSink) SendState(view relay.StateView) {
	select {
	case l.send <- encodeState(view):
	default:
		relay.SendsDropped.WithLabelValues("tcpline").Inc()
		logger.Warn("send buffer full, dropping frame", "conn", l.id)
	}
}

func (l *lineSink) writePump() {
	defer close(l.stopped)
	for {
		select {
		case frame := <-l.send:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := l.conn.Write(frame); err != nil {
				relay.SendsDropped.WithLabelValues("tcpline").Inc()
				logger.Debug("legacy send failed", "conn", l.id, "err", err)
				return
			}
		case <-l.done:
			return
		}
	}
}

// stop ends the writer goroutine. The send channel is never closed: the
// coordinator may still hold this sink during a disconnect race, and a
// late SendState just drops the frame.
func (l *lineSink) stop() {
	close(l.done)
	<-l.stopped
}
