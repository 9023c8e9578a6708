// Package viiper streams pointer events to a VIIPER virtual-mouse
// device, so the downstream computer sees a native USB mouse via its
// USB/IP attachment. The backend connects to the VIIPER API port,
// opens the device stream channel and then writes one input frame per
// event.
package viiper

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/steadyware/mousebridge/bridge"
	"github.com/steadyware/mousebridge/sink"
)

func init() {
	sink.Register("viiper", New)
}

const dialTimeout = 3 * time.Second

// Button bits in the input frame.
const (
	bitLeft   = 0x01
	bitRight  = 0x02
	bitMiddle = 0x04
)

// inputState is the 9-byte mouse input frame:
//
//	Byte 0:   button bitfield (bit 0=Left, 1=Right, 2=Middle)
//	Bytes 1-2: DX (int16 little-endian)
//	Bytes 3-4: DY
//	Bytes 5-6: Wheel
//	Bytes 7-8: Pan
//
// Deltas are one-shot: the server consumes them per poll cycle while
// buttons persist until changed, so each event is sent as one frame
// carrying that event's deltas and the current button bitfield.
type inputState struct {
	buttons            uint8
	dx, dy, wheel, pan int16
}

func (s inputState) marshal() []byte {
	b := make([]byte, 9)
	b[0] = s.buttons
	b[1] = byte(s.dx)
	b[2] = byte(s.dx >> 8)
	b[3] = byte(s.dy)
	b[4] = byte(s.dy >> 8)
	b[5] = byte(s.wheel)
	b[6] = byte(s.wheel >> 8)
	b[7] = byte(s.pan)
	b[8] = byte(s.pan >> 8)
	return b
}

// Pointer is the VIIPER-backed pass-through sink.
type Pointer struct {
	conn    net.Conn
	buttons uint8
	logger  *slog.Logger
}

// New dials the VIIPER server and opens the device stream channel for
// the configured bus/device. The device must already exist on the bus.
func New(o sink.Options, logger *slog.Logger) (bridge.Pointer, error) {
	if o.Addr == "" {
		return nil, fmt.Errorf("viiper sink requires a server address")
	}
	if o.DeviceID == "" {
		return nil, fmt.Errorf("viiper sink requires a device id")
	}
	d := &net.Dialer{Timeout: dialTimeout}
	conn, err := d.Dial("tcp", o.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial viiper server: %w", err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			logger.Warn("failed to set TCP_NODELAY", "error", err)
		}
	}

	// Stream channel request framing: `<path>\x00`, then raw frames.
	streamPath := fmt.Sprintf("bus/%d/%s\x00", o.Bus, o.DeviceID)
	if _, err := conn.Write([]byte(streamPath)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open device stream: %w", err)
	}
	logger.Info("viiper sink connected", "addr", o.Addr, "bus", o.Bus, "device", o.DeviceID)
	return &Pointer{conn: conn, logger: logger}, nil
}

// Move sends one frame carrying the event's deltas and the buttons as
// they currently stand.
func (p *Pointer) Move(dx, dy, wheel int8) error {
	st := inputState{
		buttons: p.buttons,
		dx:      int16(dx),
		dy:      int16(dy),
		wheel:   int16(wheel),
	}
	return p.send(st)
}

// Press sets the button bit and sends a zero-delta frame.
func (p *Pointer) Press(b bridge.Button) error {
	p.buttons |= buttonBit(b)
	return p.send(inputState{buttons: p.buttons})
}

// Release clears the button bit and sends a zero-delta frame.
func (p *Pointer) Release(b bridge.Button) error {
	p.buttons &^= buttonBit(b)
	return p.send(inputState{buttons: p.buttons})
}

// Close drops the stream connection; VIIPER detaches the device after
// its reconnect grace period.
func (p *Pointer) Close() error {
	return p.conn.Close()
}

func (p *Pointer) send(st inputState) error {
	if _, err := p.conn.Write(st.marshal()); err != nil {
		return fmt.Errorf("write input frame: %w", err)
	}
	return nil
}

func buttonBit(b bridge.Button) uint8 {
	switch b {
	case bridge.ButtonLeft:
		return bitLeft
	case bridge.ButtonRight:
		return bitRight
	case bridge.ButtonMiddle:
		return bitMiddle
	}
	return 0
}
