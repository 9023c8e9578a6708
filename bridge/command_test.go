package bridge_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steadyware/mousebridge/bridge"
)

func newTestInterpreter(link *fakeLink, buttons *bridge.ButtonState, active bool) *bridge.Interpreter {
	return bridge.NewInterpreter(
		link,
		bridge.NewTelemetry(link),
		"MOUSEBRIDGE-1.0",
		buttons,
		func() bool { return active },
		discardLogger(),
	)
}

func TestInterpreterCommands(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		buttons  bridge.ButtonState
		active   bool
		expected string
	}{
		{name: "status active", input: "STATUS\n", active: true, expected: "I,READY,1\n"},
		{name: "status inactive", input: "STATUS\n", active: false, expected: "I,READY,0\n"},
		{name: "verify", input: "VERIFY\n", expected: "I,VERIFIED,MOUSEBRIDGE-1.0\n"},
		{name: "buttons all up", input: "BUTTONS\n", expected: "I,BUTTONS,0,0,0\n"},
		{name: "buttons left and middle", input: "BUTTONS\n", buttons: bridge.ButtonState{Left: true, Middle: true}, expected: "I,BUTTONS,1,0,1\n"},
		{name: "crlf terminator", input: "VERIFY\r\n", expected: "I,VERIFIED,MOUSEBRIDGE-1.0\n"},
		{name: "unknown command", input: "RESET\n", expected: ""},
		{name: "lowercase is not a command", input: "status\n", expected: ""},
		{name: "surrounding whitespace is not tolerated", input: " STATUS\n", expected: ""},
		{name: "empty line", input: "\n", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := &fakeLink{}
			in := newTestInterpreter(link, &tt.buttons, tt.active)
			link.In.WriteString(tt.input)
			require.NoError(t, in.Poll())
			assert.Equal(t, tt.expected, link.Out.String())
		})
	}
}

func TestInterpreterQueryIsIdempotent(t *testing.T) {
	link := &fakeLink{}
	buttons := bridge.ButtonState{Right: true}
	in := newTestInterpreter(link, &buttons, true)

	link.In.WriteString("BUTTONS\n")
	require.NoError(t, in.Poll())
	link.In.WriteString("BUTTONS\n")
	require.NoError(t, in.Poll())

	assert.Equal(t, "I,BUTTONS,0,1,0\nI,BUTTONS,0,1,0\n", link.Out.String())
}

func TestInterpreterPartialLinePersistsAcrossPolls(t *testing.T) {
	link := &fakeLink{}
	var buttons bridge.ButtonState
	in := newTestInterpreter(link, &buttons, true)

	link.In.WriteString("VER")
	require.NoError(t, in.Poll())
	assert.Empty(t, link.Out.String())

	link.In.WriteString("IFY\n")
	require.NoError(t, in.Poll())
	assert.Equal(t, "I,VERIFIED,MOUSEBRIDGE-1.0\n", link.Out.String())
}

func TestInterpreterOneLinePerPoll(t *testing.T) {
	link := &fakeLink{}
	var buttons bridge.ButtonState
	in := newTestInterpreter(link, &buttons, true)

	link.In.WriteString("STATUS\nBUTTONS\n")

	require.NoError(t, in.Poll())
	assert.Equal(t, "I,READY,1\n", link.Out.String())

	// The second line was already buffered; it is serviced by the next
	// poll without new link data.
	require.NoError(t, in.Poll())
	assert.Equal(t, "I,READY,1\nI,BUTTONS,0,0,0\n", link.Out.String())

	require.NoError(t, in.Poll())
	assert.Equal(t, "I,READY,1\nI,BUTTONS,0,0,0\n", link.Out.String())
}

func TestInterpreterOversizedLineDiscarded(t *testing.T) {
	link := &fakeLink{}
	var buttons bridge.ButtonState
	in := newTestInterpreter(link, &buttons, true)

	link.In.WriteString(strings.Repeat("X", bridge.MaxCommandLine*2))
	require.NoError(t, in.Poll())
	link.In.WriteString("\nSTATUS\n")

	require.NoError(t, in.Poll())
	require.NoError(t, in.Poll())
	assert.Equal(t, "I,READY,1\n", link.Out.String())
}
