package bridge_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steadyware/mousebridge/bridge"
)

func TestDecoderMove(t *testing.T) {
	var out bytes.Buffer
	var state bridge.ButtonState
	sink := &recordingSink{}
	dec := bridge.NewDecoder(sink, bridge.NewTelemetry(&out), &state, discardLogger())

	dec.HandleMove(5, -3)

	assert.Equal(t, []string{"move(5,-3,0)"}, sink.calls)
	assert.Equal(t, "M,5,-3\n", out.String())
	assert.Equal(t, bridge.ButtonState{}, state)
}

func TestDecoderButtonTransitions(t *testing.T) {
	tests := []struct {
		name      string
		button    bridge.Button
		pressed   bool
		wantCall  string
		wantLine  string
		wantState bridge.ButtonState
	}{
		{name: "left down", button: bridge.ButtonLeft, pressed: true, wantCall: "press(left)", wantLine: "L,1\n", wantState: bridge.ButtonState{Left: true}},
		{name: "left up", button: bridge.ButtonLeft, pressed: false, wantCall: "release(left)", wantLine: "L,0\n", wantState: bridge.ButtonState{}},
		{name: "right down", button: bridge.ButtonRight, pressed: true, wantCall: "press(right)", wantLine: "R,1\n", wantState: bridge.ButtonState{Right: true}},
		{name: "middle down", button: bridge.ButtonMiddle, pressed: true, wantCall: "press(middle)", wantLine: "N,1\n", wantState: bridge.ButtonState{Middle: true}},
		{name: "middle up", button: bridge.ButtonMiddle, pressed: false, wantCall: "release(middle)", wantLine: "N,0\n", wantState: bridge.ButtonState{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			var state bridge.ButtonState
			sink := &recordingSink{}
			dec := bridge.NewDecoder(sink, bridge.NewTelemetry(&out), &state, discardLogger())

			dec.HandleButton(tt.button, tt.pressed)

			assert.Equal(t, []string{tt.wantCall}, sink.calls)
			assert.Equal(t, tt.wantLine, out.String())
			assert.Equal(t, tt.wantState, state)
		})
	}
}

func TestDecoderPreservesEventOrder(t *testing.T) {
	var out bytes.Buffer
	var state bridge.ButtonState
	sink := &recordingSink{}
	dec := bridge.NewDecoder(sink, bridge.NewTelemetry(&out), &state, discardLogger())

	dec.HandleMove(1, 0)
	dec.HandleButton(bridge.ButtonLeft, true)
	dec.HandleMove(0, -2)
	dec.HandleButton(bridge.ButtonLeft, false)
	dec.HandleButton(bridge.ButtonRight, true)

	assert.Equal(t, "M,1,0\nL,1\nM,0,-2\nL,0\nR,1\n", out.String())
	assert.Equal(t, []string{
		"move(1,0,0)",
		"press(left)",
		"move(0,-2,0)",
		"release(left)",
		"press(right)",
	}, sink.calls)
}

func TestDecoderSinkFailureDoesNotStopTelemetry(t *testing.T) {
	var out bytes.Buffer
	var state bridge.ButtonState
	sink := &recordingSink{fail: errors.New("uinput gone")}
	dec := bridge.NewDecoder(sink, bridge.NewTelemetry(&out), &state, discardLogger())

	dec.HandleMove(2, 2)
	dec.HandleButton(bridge.ButtonLeft, true)

	assert.Equal(t, "M,2,2\nL,1\n", out.String())
	assert.True(t, state.Left)
}
