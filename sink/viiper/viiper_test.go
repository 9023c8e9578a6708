package viiper_test

import (
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steadyware/mousebridge/bridge"
	"github.com/steadyware/mousebridge/sink"
	"github.com/steadyware/mousebridge/sink/viiper"
)

// acceptOne runs a minimal stand-in for the VIIPER API port: accept a
// single connection, capture the stream-open request and every frame
// that follows.
func acceptOne(t *testing.T) (addr string, got chan []byte) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got = make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		got <- data
	}()
	return ln.Addr().String(), got
}

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPointerStreamsFrames(t *testing.T) {
	addr, got := acceptOne(t)

	p, err := viiper.New(sink.Options{Addr: addr, Bus: 1, DeviceID: "3"}, logger())
	require.NoError(t, err)

	require.NoError(t, p.Move(5, -3, 0))
	require.NoError(t, p.Press(bridge.ButtonLeft))
	require.NoError(t, p.Move(1, 0, 0))
	require.NoError(t, p.Release(bridge.ButtonLeft))
	require.NoError(t, p.Close())

	data := <-got

	expected := []byte("bus/1/3\x00")
	// move(5,-3): no buttons, dx=5, dy=-3 little-endian
	expected = append(expected, 0x00, 0x05, 0x00, 0xFD, 0xFF, 0x00, 0x00, 0x00, 0x00)
	// press(left): zero-delta frame with bit 0 set
	expected = append(expected, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	// move(1,0) while held keeps the button bit
	expected = append(expected, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	// release(left)
	expected = append(expected, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	assert.Equal(t, expected, data)
}

func TestPointerButtonBitsAccumulate(t *testing.T) {
	addr, got := acceptOne(t)

	p, err := viiper.New(sink.Options{Addr: addr, Bus: 7, DeviceID: "1"}, logger())
	require.NoError(t, err)

	require.NoError(t, p.Press(bridge.ButtonLeft))
	require.NoError(t, p.Press(bridge.ButtonMiddle))
	require.NoError(t, p.Release(bridge.ButtonLeft))
	require.NoError(t, p.Close())

	data := <-got
	frames := data[len("bus/7/1\x00"):]
	require.Len(t, frames, 27)
	assert.Equal(t, byte(0x01), frames[0])  // left
	assert.Equal(t, byte(0x05), frames[9])  // left|middle
	assert.Equal(t, byte(0x04), frames[18]) // middle only
}

func TestNewRequiresAddressAndDevice(t *testing.T) {
	_, err := viiper.New(sink.Options{}, logger())
	assert.Error(t, err)

	_, err = viiper.New(sink.Options{Addr: "127.0.0.1:1"}, logger())
	assert.Error(t, err)
}
