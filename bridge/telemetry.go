package bridge

import (
	"fmt"
	"io"
)

// Telemetry encodes events and protocol messages as newline-terminated
// comma records on the link. Encoding is total and synchronous: every
// event maps to exactly one line and the write completes before the
// caller returns, so line order on the wire equals event order.
//
// Record formats:
//
//	M,<dx>,<dy>   movement
//	L|R|N,<0|1>   button transition (1=down)
//	I,<text>      informational message or command reply
//	E,<text>      fatal error announcement
type Telemetry struct {
	w      io.Writer
	halted bool
}

// NewTelemetry returns a Telemetry writing to w.
func NewTelemetry(w io.Writer) *Telemetry {
	return &Telemetry{w: w}
}

// EmitEvent writes the single line encoding ev.
func (t *Telemetry) EmitEvent(ev Event) error {
	switch ev.Kind {
	case EventMove:
		return t.writeLine(fmt.Sprintf("M,%d,%d", ev.DX, ev.DY))
	case EventButton:
		v := 0
		if ev.Pressed {
			v = 1
		}
		return t.writeLine(fmt.Sprintf("%c,%d", ev.Button.Code(), v))
	}
	return nil
}

// Info writes an informational line: `I,<text>`.
func (t *Telemetry) Info(text string) error {
	return t.writeLine("I," + text)
}

// Fatal writes a single `E,<text>` line and latches the encoder shut:
// no line of any kind is ever written afterwards.
func (t *Telemetry) Fatal(text string) error {
	err := t.writeLine("E," + text)
	t.halted = true
	return err
}

// Halted reports whether Fatal has been called.
func (t *Telemetry) Halted() bool { return t.halted }

func (t *Telemetry) writeLine(line string) error {
	if t.halted {
		return nil
	}
	if _, err := io.WriteString(t.w, line+"\n"); err != nil {
		return fmt.Errorf("write telemetry line: %w", err)
	}
	return nil
}
