// Package bridge implements the event-decoding and dual-sink dispatch
// runtime: it receives decoded HID mouse report fields from a Source,
// turns them into events, mirrors every event to a pass-through Pointer
// sink and to the telemetry link, and services the line-oriented command
// protocol arriving on that same link.
package bridge

import "fmt"

// Button identifies one of the three pointer buttons.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Code returns the single-letter code used for this button on the
// telemetry link. Middle is 'N' for historical reasons ('M' is taken
// by movement records).
func (b Button) Code() byte {
	switch b {
	case ButtonLeft:
		return 'L'
	case ButtonRight:
		return 'R'
	case ButtonMiddle:
		return 'N'
	}
	return '?'
}

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	}
	return fmt.Sprintf("button(%d)", uint8(b))
}

// EventKind discriminates the Event variant.
type EventKind uint8

const (
	EventMove EventKind = iota
	EventButton
)

// Event is a decoded mouse event. It is a closed tagged variant: Kind
// selects which of the remaining fields are meaningful (DX/DY for
// EventMove, Button/Pressed for EventButton). Events are transient;
// they are dispatched synchronously and never stored.
type Event struct {
	Kind    EventKind
	DX, DY  int8
	Button  Button
	Pressed bool
}

// MoveEvent builds a relative-movement event with the verbatim report deltas.
func MoveEvent(dx, dy int8) Event {
	return Event{Kind: EventMove, DX: dx, DY: dy}
}

// ButtonEvent builds a button transition event.
func ButtonEvent(b Button, pressed bool) Event {
	return Event{Kind: EventButton, Button: b, Pressed: pressed}
}

// ButtonState holds the last reported state of the three buttons.
// It is written only by the Decoder and read only by the Interpreter;
// both run on the bridge's single polling goroutine, so no locking is
// needed or used.
type ButtonState struct {
	Left, Right, Middle bool
}

// Set records the state of one button.
func (s *ButtonState) Set(b Button, pressed bool) {
	switch b {
	case ButtonLeft:
		s.Left = pressed
	case ButtonRight:
		s.Right = pressed
	case ButtonMiddle:
		s.Middle = pressed
	}
}

// Get reports whether the given button is currently pressed.
func (s *ButtonState) Get(b Button) bool {
	switch b {
	case ButtonLeft:
		return s.Left
	case ButtonRight:
		return s.Right
	case ButtonMiddle:
		return s.Middle
	}
	return false
}
