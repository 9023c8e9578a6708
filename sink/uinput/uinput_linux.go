//go:build linux

// Package uinput provides the Linux pass-through backend: it creates a
// virtual relative pointing device through /dev/uinput and injects one
// input event batch per decoded mouse event.
package uinput

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"

	"github.com/steadyware/mousebridge/bridge"
	"github.com/steadyware/mousebridge/sink"
)

func init() {
	sink.Register("uinput", New)
}

const devicePath = "/dev/uinput"
const deviceName = "mousebridge pointer"

// uinput ioctl requests and input event codes (linux/uinput.h,
// linux/input-event-codes.h).
const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetRelBit  = 0x40045566
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502

	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02

	synReport = 0x00

	relX     = 0x00
	relY     = 0x01
	relWheel = 0x08

	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
)

// Pointer injects events through a uinput virtual device.
type Pointer struct {
	f      *os.File
	logger *slog.Logger
}

// New creates the virtual pointing device.
func New(_ sink.Options, logger *slog.Logger) (bridge.Pointer, error) {
	f, err := os.OpenFile(devicePath, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", devicePath, err)
	}
	p := &Pointer{f: f, logger: logger}
	if err := p.setup(); err != nil {
		f.Close()
		return nil, err
	}
	logger.Info("uinput pointer created", "name", deviceName)
	return p, nil
}

func (p *Pointer) setup() error {
	fd := int(p.f.Fd())
	for _, ev := range []int{evKey, evRel, evSyn} {
		if err := unix.IoctlSetInt(fd, uiSetEvBit, ev); err != nil {
			return fmt.Errorf("enable event type %#x: %w", ev, err)
		}
	}
	for _, key := range []int{btnLeft, btnRight, btnMiddle} {
		if err := unix.IoctlSetInt(fd, uiSetKeyBit, key); err != nil {
			return fmt.Errorf("enable button %#x: %w", key, err)
		}
	}
	for _, rel := range []int{relX, relY, relWheel} {
		if err := unix.IoctlSetInt(fd, uiSetRelBit, rel); err != nil {
			return fmt.Errorf("enable relative axis %#x: %w", rel, err)
		}
	}
	if err := p.writeUserDev(); err != nil {
		return err
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("create uinput device: %w", err)
	}
	return nil
}

// writeUserDev writes the legacy uinput_user_dev setup block: the
// device name, an input_id and the (unused here) absolute-axis tables.
func (p *Pointer) writeUserDev() error {
	// name[80] + input_id{bus,vendor,product,version u16} +
	// ff_effects_max u32 + 4 * [64]int32 axis tables.
	buf := make([]byte, 80+8+4+4*64*4)
	copy(buf, deviceName)
	binary.LittleEndian.PutUint16(buf[80:], 0x03)   // BUS_USB
	binary.LittleEndian.PutUint16(buf[82:], 0x1209) // generic test VID
	binary.LittleEndian.PutUint16(buf[84:], 0x0001)
	binary.LittleEndian.PutUint16(buf[86:], 0x0100)
	if _, err := p.f.Write(buf); err != nil {
		return fmt.Errorf("write uinput device setup: %w", err)
	}
	return nil
}

// Move injects relative X/Y (and wheel, when nonzero) followed by a
// SYN_REPORT marker.
func (p *Pointer) Move(dx, dy, wheel int8) error {
	events := [][3]int32{
		{evRel, relX, int32(dx)},
		{evRel, relY, int32(dy)},
	}
	if wheel != 0 {
		events = append(events, [3]int32{evRel, relWheel, int32(wheel)})
	}
	return p.inject(events)
}

// Press injects a button-down transition.
func (p *Pointer) Press(b bridge.Button) error {
	return p.inject([][3]int32{{evKey, buttonCode(b), 1}})
}

// Release injects a button-up transition.
func (p *Pointer) Release(b bridge.Button) error {
	return p.inject([][3]int32{{evKey, buttonCode(b), 0}})
}

// Close destroys the virtual device.
func (p *Pointer) Close() error {
	if err := unix.IoctlSetInt(int(p.f.Fd()), uiDevDestroy, 0); err != nil {
		p.logger.Warn("destroy uinput device failed", "error", err)
	}
	return p.f.Close()
}

func (p *Pointer) inject(events [][3]int32) error {
	events = append(events, [3]int32{evSyn, synReport, 0})
	// input_event on 64-bit: timeval (16 bytes, kernel ignores it on
	// write) + type u16 + code u16 + value i32.
	buf := make([]byte, len(events)*24)
	for i, ev := range events {
		off := i * 24
		binary.LittleEndian.PutUint16(buf[off+16:], uint16(ev[0]))
		binary.LittleEndian.PutUint16(buf[off+18:], uint16(ev[1]))
		binary.LittleEndian.PutUint32(buf[off+20:], uint32(ev[2]))
	}
	if _, err := p.f.Write(buf); err != nil {
		return fmt.Errorf("inject input events: %w", err)
	}
	return nil
}

func buttonCode(b bridge.Button) int32 {
	switch b {
	case bridge.ButtonLeft:
		return btnLeft
	case bridge.ButtonRight:
		return btnRight
	case bridge.ButtonMiddle:
		return btnMiddle
	}
	return btnLeft
}
