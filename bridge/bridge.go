package bridge

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// DefaultIdentity is the device identity announced at startup and
// returned by the VERIFY command unless overridden by configuration.
const DefaultIdentity = "MOUSEBRIDGE-1.0"

// Source delivers decoded HID mouse reports. Poll processes the
// reports currently pending and invokes the callbacks registered at
// construction time; it must not block waiting for new reports.
type Source interface {
	Poll() error
	Active() bool
	Close() error
}

// Options configures a Bridge.
type Options struct {
	// Identity is the immutable device identity string. Empty means
	// DefaultIdentity.
	Identity string
	// PollInterval paces the Run loop. Zero means 1ms.
	PollInterval time.Duration
}

// Bridge is the runtime context object: it owns the button state, the
// decoder, the command interpreter and the telemetry encoder, and
// drives the cooperative polling loop. Everything runs on the single
// goroutine that calls Step/Run; that is the invariant that lets the
// decoder write ButtonState and the interpreter read it without locks.
type Bridge struct {
	identity string
	interval time.Duration
	buttons  ButtonState
	tele     *Telemetry
	dec      *Decoder
	interp   *Interpreter
	src      Source
	logger   *slog.Logger
	halted   bool
}

// New builds a bridge dispatching to ptr and speaking the telemetry
// and command protocol over link. The HID source is attached
// separately with AttachSource so a failed source initialization can
// still be announced through the bridge's own Fail path.
func New(ptr Pointer, link io.ReadWriter, opts Options, logger *slog.Logger) *Bridge {
	if opts.Identity == "" {
		opts.Identity = DefaultIdentity
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Millisecond
	}
	b := &Bridge{
		identity: opts.Identity,
		interval: opts.PollInterval,
		logger:   logger,
	}
	b.tele = NewTelemetry(link)
	b.dec = NewDecoder(ptr, b.tele, &b.buttons, logger)
	b.interp = NewInterpreter(link, b.tele, b.identity, &b.buttons, b.sourceActive, logger)
	return b
}

// Decoder returns the event decoder so the HID source callbacks can be
// wired to it.
func (b *Bridge) Decoder() *Decoder { return b.dec }

// Identity returns the configured device identity string.
func (b *Bridge) Identity() string { return b.identity }

// Buttons returns the current button state. Callers outside the
// polling goroutine must not use this while the bridge is running.
func (b *Bridge) Buttons() ButtonState { return b.buttons }

// AttachSource attaches the HID report source after its callbacks have
// been registered against Decoder.
func (b *Bridge) AttachSource(src Source) { b.src = src }

// Announce emits the startup banner: host activity confirmation
// followed by the device identity line.
func (b *Bridge) Announce() error {
	if err := b.tele.Info("USB host active"); err != nil {
		return err
	}
	return b.tele.Info("DEVICE_ID," + b.identity)
}

// Fail announces a fatal initialization failure and latches the bridge
// halted: no further telemetry of any kind is emitted and Step/Run
// become no-ops. This is the only fatal path; there is no retry.
func (b *Bridge) Fail(text string) {
	_ = b.tele.Fatal(text)
	b.halted = true
	b.logger.Error("bridge halted", "reason", text)
}

// Halted reports whether Fail has been called.
func (b *Bridge) Halted() bool { return b.halted }

// Step performs one cooperative poll iteration: process the HID
// reports currently pending, then process at most one buffered command
// line. Neither half blocks; with nothing to do Step is a no-op.
func (b *Bridge) Step() error {
	if b.halted {
		return nil
	}
	if b.src != nil {
		if err := b.src.Poll(); err != nil {
			b.logger.Warn("hid poll failed", "error", err)
		}
	}
	return b.interp.Poll()
}

// Run loops Step until ctx is done. Step errors are logged, not
// returned: a hiccup on the command link must not stop event
// pass-through.
func (b *Bridge) Run(ctx context.Context) error {
	t := time.NewTicker(b.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := b.Step(); err != nil {
				b.logger.Warn("poll step failed", "error", err)
			}
		}
	}
}

// Close releases the source and sink handles.
func (b *Bridge) Close() error {
	var first error
	if b.src != nil {
		if err := b.src.Close(); err != nil {
			first = err
		}
	}
	if err := b.dec.sink.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

func (b *Bridge) sourceActive() bool {
	return b.src != nil && b.src.Active()
}
