package bridge

import "log/slog"

// Pointer is the pass-through sink: it replays decoded events toward
// the downstream computer as a native pointing device. Implementations
// live under the sink package; the decoder only forwards arguments.
type Pointer interface {
	Move(dx, dy, wheel int8) error
	Press(b Button) error
	Release(b Button) error
	Close() error
}

// Decoder turns decoded HID report fields into events and fans each one
// out to the pass-through sink and the telemetry link. It performs no
// filtering, clamping, debouncing or validation: every callback yields
// exactly one event, one sink call and one telemetry line, in arrival
// order. Malformed reports are the source's problem, not ours.
type Decoder struct {
	sink    Pointer
	tele    *Telemetry
	buttons *ButtonState
	logger  *slog.Logger
}

// NewDecoder wires a decoder to its sink, telemetry encoder and button
// state store. All dependencies are explicit; the decoder holds no
// other state.
func NewDecoder(sink Pointer, tele *Telemetry, buttons *ButtonState, logger *slog.Logger) *Decoder {
	return &Decoder{sink: sink, tele: tele, buttons: buttons, logger: logger}
}

// HandleMove dispatches one relative-movement report. The deltas are
// forwarded verbatim, with a zero wheel delta on the sink side.
func (d *Decoder) HandleMove(dx, dy int8) {
	d.Dispatch(MoveEvent(dx, dy))
}

// HandleButton dispatches one button transition report.
func (d *Decoder) HandleButton(b Button, pressed bool) {
	d.Dispatch(ButtonEvent(b, pressed))
}

// Dispatch drives both sinks for one event. The two outputs are
// independent: a sink failure is logged and does not stop the
// telemetry line, and vice versa.
func (d *Decoder) Dispatch(ev Event) {
	switch ev.Kind {
	case EventMove:
		if err := d.sink.Move(ev.DX, ev.DY, 0); err != nil {
			d.logger.Warn("pass-through move failed", "dx", ev.DX, "dy", ev.DY, "error", err)
		}
	case EventButton:
		d.buttons.Set(ev.Button, ev.Pressed)
		var err error
		if ev.Pressed {
			err = d.sink.Press(ev.Button)
		} else {
			err = d.sink.Release(ev.Button)
		}
		if err != nil {
			d.logger.Warn("pass-through button failed", "button", ev.Button.String(), "pressed", ev.Pressed, "error", err)
		}
	}
	if err := d.tele.EmitEvent(ev); err != nil {
		d.logger.Warn("telemetry emit failed", "error", err)
	}
}
