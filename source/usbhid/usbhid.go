// Package usbhid implements the HID report source over hidapi: it
// attaches to a USB pointing device, drains its input reports without
// blocking and delivers decoded movement and button transitions to the
// callbacks registered at open time.
package usbhid

import (
	"errors"
	"fmt"
	"log/slog"

	hid "github.com/sstallion/go-hid"

	"github.com/steadyware/mousebridge/bridge"
	"github.com/steadyware/mousebridge/internal/log"
)

// Generic Desktop usage page, Mouse usage.
const (
	usagePageGenericDesktop = 0x01
	usageMouse              = 0x02
)

// Config selects the device to attach to. Zero VID/PID means attach to
// the first enumerated mouse-usage interface.
type Config struct {
	VID uint16
	PID uint16
	// ReportID is the numbered-report prefix some mice put in front of
	// the boot layout. Zero means reports carry no ID byte.
	ReportID byte
}

// Callbacks receive decoded report fields. Both are invoked
// synchronously from Poll, on the caller's goroutine.
type Callbacks struct {
	Move   func(dx, dy int8)
	Button func(b bridge.Button, pressed bool)
}

// Source is a bridge.Source reading one HID pointing device.
type Source struct {
	dev         *hid.Device
	cb          Callbacks
	cfg         Config
	prevButtons byte
	raw         log.RawLogger
	logger      *slog.Logger
}

// Open initializes hidapi, attaches to the configured device and puts
// it in non-blocking read mode. The callbacks are fixed for the life
// of the source.
func Open(cfg Config, cb Callbacks, raw log.RawLogger, logger *slog.Logger) (*Source, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("init hidapi: %w", err)
	}
	path, err := findDevice(cfg)
	if err != nil {
		return nil, err
	}
	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("open hid device %s: %w", path, err)
	}
	if err := dev.SetNonblock(true); err != nil {
		dev.Close()
		return nil, fmt.Errorf("set non-blocking mode: %w", err)
	}
	logger.Info("hid source attached", "path", path)
	return &Source{dev: dev, cb: cb, cfg: cfg, raw: raw, logger: logger}, nil
}

// findDevice picks the first interface with mouse usage, optionally
// narrowed by VID/PID.
func findDevice(cfg Config) (string, error) {
	var path string
	err := hid.Enumerate(cfg.VID, cfg.PID, func(info *hid.DeviceInfo) error {
		if path != "" {
			return nil
		}
		if info.UsagePage == usagePageGenericDesktop && info.Usage == usageMouse {
			path = info.Path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("enumerate hid devices: %w", err)
	}
	if path == "" {
		return "", errors.New("no pointing device found")
	}
	return path, nil
}

// Poll drains the reports currently pending and invokes the callbacks
// for each. It returns as soon as the device has nothing buffered.
func (s *Source) Poll() error {
	var buf [16]byte
	for {
		n, err := s.dev.Read(buf[:])
		if err != nil {
			return fmt.Errorf("read hid report: %w", err)
		}
		if n == 0 {
			return nil
		}
		s.raw.Log(log.DirHIDIn, buf[:n])
		s.handleReport(buf[:n])
	}
}

// handleReport decodes one boot-protocol mouse report: a button
// bitfield followed by signed X/Y deltas. Button bits are diffed
// against the previous report so the callbacks see only genuine
// transitions; movement is reported whenever a delta is nonzero.
func (s *Source) handleReport(r []byte) {
	if s.cfg.ReportID != 0 {
		if len(r) == 0 || r[0] != s.cfg.ReportID {
			return
		}
		r = r[1:]
	}
	if len(r) < 3 {
		s.logger.Debug("short hid report", "len", len(r))
		return
	}
	buttons := r[0]

	if s.cb.Button != nil {
		diff := buttons ^ s.prevButtons
		for bit, btn := range []bridge.Button{bridge.ButtonLeft, bridge.ButtonRight, bridge.ButtonMiddle} {
			mask := byte(1) << bit
			if diff&mask != 0 {
				s.cb.Button(btn, buttons&mask != 0)
			}
		}
	}
	s.prevButtons = buttons

	dx, dy := int8(r[1]), int8(r[2])
	if (dx != 0 || dy != 0) && s.cb.Move != nil {
		s.cb.Move(dx, dy)
	}
}

// Active reports whether the device handle is open.
func (s *Source) Active() bool { return s.dev != nil }

// Close releases the device handle.
func (s *Source) Close() error {
	if s.dev == nil {
		return nil
	}
	err := s.dev.Close()
	s.dev = nil
	return err
}
