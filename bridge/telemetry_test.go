package bridge_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steadyware/mousebridge/bridge"
)

func TestTelemetryEventEncoding(t *testing.T) {
	tests := []struct {
		name     string
		event    bridge.Event
		expected string
	}{
		{name: "move positive", event: bridge.MoveEvent(5, 3), expected: "M,5,3\n"},
		{name: "move mixed sign", event: bridge.MoveEvent(5, -3), expected: "M,5,-3\n"},
		{name: "move extremes", event: bridge.MoveEvent(-127, 127), expected: "M,-127,127\n"},
		{name: "move zero", event: bridge.MoveEvent(0, 0), expected: "M,0,0\n"},
		{name: "left down", event: bridge.ButtonEvent(bridge.ButtonLeft, true), expected: "L,1\n"},
		{name: "left up", event: bridge.ButtonEvent(bridge.ButtonLeft, false), expected: "L,0\n"},
		{name: "right down", event: bridge.ButtonEvent(bridge.ButtonRight, true), expected: "R,1\n"},
		{name: "middle down", event: bridge.ButtonEvent(bridge.ButtonMiddle, true), expected: "N,1\n"},
		{name: "middle up", event: bridge.ButtonEvent(bridge.ButtonMiddle, false), expected: "N,0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			tele := bridge.NewTelemetry(&out)
			assert.NoError(t, tele.EmitEvent(tt.event))
			assert.Equal(t, tt.expected, out.String())
		})
	}
}

func TestTelemetryInfo(t *testing.T) {
	var out bytes.Buffer
	tele := bridge.NewTelemetry(&out)
	assert.NoError(t, tele.Info("DEVICE_ID,MOUSEBRIDGE-1.0"))
	assert.Equal(t, "I,DEVICE_ID,MOUSEBRIDGE-1.0\n", out.String())
}

func TestTelemetryFatalLatches(t *testing.T) {
	var out bytes.Buffer
	tele := bridge.NewTelemetry(&out)

	assert.NoError(t, tele.Fatal("USB host init failed"))
	assert.True(t, tele.Halted())

	// Nothing may be emitted after the E line, whatever is attempted.
	assert.NoError(t, tele.EmitEvent(bridge.MoveEvent(1, 1)))
	assert.NoError(t, tele.Info("still here"))
	assert.NoError(t, tele.Fatal("again"))
	assert.Equal(t, "E,USB host init failed\n", out.String())
}
