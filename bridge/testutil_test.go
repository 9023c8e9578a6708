package bridge_test

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/steadyware/mousebridge/bridge"
)

// fakeLink is an in-memory stand-in for the serial/TCP link: commands
// are queued on In, telemetry accumulates in Out.
type fakeLink struct {
	In  bytes.Buffer
	Out bytes.Buffer
}

func (l *fakeLink) Read(p []byte) (int, error)  { return l.In.Read(p) }
func (l *fakeLink) Write(p []byte) (int, error) { return l.Out.Write(p) }

// recordingSink records every pass-through call in order.
type recordingSink struct {
	calls []string
	fail  error
}

func (s *recordingSink) Move(dx, dy, wheel int8) error {
	s.calls = append(s.calls, fmt.Sprintf("move(%d,%d,%d)", dx, dy, wheel))
	return s.fail
}

func (s *recordingSink) Press(b bridge.Button) error {
	s.calls = append(s.calls, "press("+b.String()+")")
	return s.fail
}

func (s *recordingSink) Release(b bridge.Button) error {
	s.calls = append(s.calls, "release("+b.String()+")")
	return s.fail
}

func (s *recordingSink) Close() error { return nil }

// scriptedSource replays a canned list of report callbacks, one batch
// per Poll, the way a HID poll drains whatever transactions are
// pending.
type scriptedSource struct {
	batches [][]func()
	active  bool
	closed  bool
	polls   int
}

func (s *scriptedSource) Poll() error {
	s.polls++
	if len(s.batches) == 0 {
		return nil
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	for _, fn := range batch {
		fn()
	}
	return nil
}

func (s *scriptedSource) Active() bool { return s.active }
func (s *scriptedSource) Close() error { s.closed = true; return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
