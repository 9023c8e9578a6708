package link

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// tcpLink serves the telemetry link to one TCP consumer at a time.
// The accept loop runs on its own goroutine; reads and writes happen
// on the bridge's polling goroutine with the active connection handed
// over under the mutex. A second consumer connecting while one is
// attached is turned away; a dropped consumer reverts the link to
// listening, with telemetry discarded in the meantime.
type tcpLink struct {
	ln     net.Listener
	logger *slog.Logger

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

func listenTCP(addr string, logger *slog.Logger) (Link, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	l := &tcpLink{ln: ln, logger: logger}
	logger.Info("tcp link listening", "addr", ln.Addr().String())
	go l.acceptLoop()
	return l, nil
}

func (l *tcpLink) acceptLoop() {
	for {
		c, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			l.logger.Warn("tcp link accept failed", "error", err)
			return
		}
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			c.Close()
			return
		}
		if l.conn != nil {
			l.mu.Unlock()
			l.logger.Info("rejecting second telemetry consumer", "remote", c.RemoteAddr().String())
			c.Close()
			continue
		}
		l.conn = c
		l.mu.Unlock()
		l.logger.Info("telemetry consumer attached", "remote", c.RemoteAddr().String())
	}
}

// Read drains bytes from the attached consumer. With no consumer, or
// no pending bytes, it reports a deadline error so the caller's poll
// ends quietly.
func (l *tcpLink) Read(p []byte) (int, error) {
	conn := l.current()
	if conn == nil {
		return 0, os.ErrDeadlineExceeded
	}
	_ = conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	n, err := conn.Read(p)
	if err != nil && !errors.Is(err, os.ErrDeadlineExceeded) {
		l.drop(conn)
		return n, os.ErrDeadlineExceeded
	}
	return n, err
}

// Write sends to the attached consumer; with nobody attached the bytes
// are discarded, keeping the bridge lossless on the pass-through side
// regardless of telemetry consumers coming and going.
func (l *tcpLink) Write(p []byte) (int, error) {
	conn := l.current()
	if conn == nil {
		return len(p), nil
	}
	n, err := conn.Write(p)
	if err != nil {
		l.drop(conn)
		return len(p), nil
	}
	return n, err
}

func (l *tcpLink) Close() error {
	l.mu.Lock()
	l.closed = true
	conn := l.conn
	l.conn = nil
	l.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	return l.ln.Close()
}

func (l *tcpLink) current() net.Conn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn
}

func (l *tcpLink) drop(conn net.Conn) {
	l.mu.Lock()
	if l.conn == conn {
		l.conn = nil
	}
	l.mu.Unlock()
	conn.Close()
	l.logger.Info("telemetry consumer detached", "remote", conn.RemoteAddr().String())
}
