package bridge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// MaxCommandLine caps the accumulating command buffer. A line that
// grows past the cap before its terminator arrives is discarded whole
// once the terminator shows up, same as an unrecognized command.
const MaxCommandLine = 256

// Interpreter services the inbound half of the telemetry link: it
// accumulates bytes into a line buffer and answers the small command
// vocabulary. It is a two-state machine, idle (collecting) and
// dispatch (a complete line is available); dispatch happens at most
// once per Poll and immediately returns the machine to idle.
//
// Commands are matched case-sensitively on the full line:
//
//	STATUS   -> I,READY,<0|1>        (1 when the HID source is attached)
//	VERIFY   -> I,VERIFIED,<identity>
//	BUTTONS  -> I,BUTTONS,<l>,<r>,<m>
//
// Anything else is dropped without a reply.
type Interpreter struct {
	link         io.Reader
	tele         *Telemetry
	identity     string
	buttons      *ButtonState
	sourceActive func() bool
	logger       *slog.Logger

	pending  []byte
	oversize bool
}

// NewInterpreter builds an interpreter reading commands from link and
// replying through tele. sourceActive reports whether the HID report
// source is currently attached (the STATUS payload).
func NewInterpreter(link io.Reader, tele *Telemetry, identity string, buttons *ButtonState, sourceActive func() bool, logger *slog.Logger) *Interpreter {
	return &Interpreter{
		link:         link,
		tele:         tele,
		identity:     identity,
		buttons:      buttons,
		sourceActive: sourceActive,
		logger:       logger,
		pending:      make([]byte, 0, MaxCommandLine),
	}
}

// Poll consumes the bytes currently buffered on the link and processes
// at most one complete command line. It never blocks waiting for
// input: link reads that would block must instead return zero bytes, a
// timeout error or io.EOF, all of which end the poll quietly. Partial
// lines persist across polls.
func (in *Interpreter) Poll() error {
	// A complete line may already be buffered from an earlier chunk
	// that carried more than one.
	if in.dispatchBuffered() {
		return nil
	}
	var scratch [64]byte
	for {
		n, err := in.link.Read(scratch[:])
		if n > 0 {
			in.accumulate(scratch[:n])
			if in.dispatchBuffered() {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrDeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("read command link: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
}

// accumulate appends a chunk to the pending buffer, enforcing the
// per-line cap: once an unterminated line exceeds MaxCommandLine the
// excess bytes are no longer stored. The truncated prefix still ends
// in the default dispatch case (no command is that long), so an
// oversized line is discarded whole without special casing.
func (in *Interpreter) accumulate(chunk []byte) {
	for _, c := range chunk {
		if c == '\n' {
			in.oversize = false
			in.pending = append(in.pending, c)
			continue
		}
		if in.oversize {
			continue
		}
		if in.unterminatedLen() >= MaxCommandLine {
			in.oversize = true
			in.logger.Debug("command line exceeds cap, discarding until terminator")
			continue
		}
		in.pending = append(in.pending, c)
	}
}

// unterminatedLen returns the length of the trailing unterminated line
// in the pending buffer.
func (in *Interpreter) unterminatedLen() int {
	if i := bytes.LastIndexByte(in.pending, '\n'); i >= 0 {
		return len(in.pending) - i - 1
	}
	return len(in.pending)
}

// dispatchBuffered processes the first complete line in the pending
// buffer, if any. Later lines stay buffered for subsequent polls.
func (in *Interpreter) dispatchBuffered() bool {
	i := bytes.IndexByte(in.pending, '\n')
	if i < 0 {
		return false
	}
	line := string(in.pending[:i])
	in.pending = append(in.pending[:0], in.pending[i+1:]...)
	in.dispatch(line)
	return true
}

// dispatch matches one completed line against the command vocabulary.
func (in *Interpreter) dispatch(line string) {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	switch line {
	case "STATUS":
		active := "0"
		if in.sourceActive() {
			active = "1"
		}
		in.reply("READY," + active)
	case "VERIFY":
		in.reply("VERIFIED," + in.identity)
	case "BUTTONS":
		in.reply(fmt.Sprintf("BUTTONS,%d,%d,%d",
			b01(in.buttons.Left), b01(in.buttons.Right), b01(in.buttons.Middle)))
	default:
		// Unrecognized input is dropped silently; the cleared buffer
		// is the only observable effect.
	}
}

func (in *Interpreter) reply(text string) {
	if err := in.tele.Info(text); err != nil {
		in.logger.Warn("command reply failed", "error", err)
	}
}

func b01(v bool) int {
	if v {
		return 1
	}
	return 0
}
