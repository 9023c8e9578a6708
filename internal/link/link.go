// Package link provides the byte channel carrying telemetry out and
// commands in. Two transports are supported: a serial port (the
// classic deployment, with the tremor-filter application on the other
// end of a USB-serial cable) and a TCP listener for consumers that
// attach over the network. Both present non-blocking reads so the
// bridge's poll loop never stalls.
package link

import (
	"errors"
	"io"
	"log/slog"

	"github.com/steadyware/mousebridge/internal/log"
)

// Link is the telemetry/command byte channel. Read must not block
// indefinitely: with no data pending it returns promptly with zero
// bytes, io.EOF or a deadline error.
type Link interface {
	io.ReadWriteCloser
}

// Config selects and configures the transport. Exactly one of
// SerialPort and TCPAddr must be set.
type Config struct {
	SerialPort string `help:"Serial port device for the telemetry link (e.g. /dev/ttyACM0, COM3)" env:"MOUSEBRIDGE_SERIAL_PORT"`
	Baud       int    `help:"Serial baud rate" default:"115200" env:"MOUSEBRIDGE_BAUD"`
	TCPAddr    string `help:"TCP listen address for the telemetry link (alternative to a serial port)" env:"MOUSEBRIDGE_TCP_ADDR"`
}

// Open builds the configured transport.
func Open(cfg Config, logger *slog.Logger) (Link, error) {
	switch {
	case cfg.SerialPort != "" && cfg.TCPAddr != "":
		return nil, errors.New("serial port and tcp address are mutually exclusive")
	case cfg.SerialPort != "":
		return openSerial(cfg, logger)
	case cfg.TCPAddr != "":
		return listenTCP(cfg.TCPAddr, logger)
	default:
		return nil, errors.New("no link configured: set a serial port or a tcp address")
	}
}

// WithRaw wraps a link so all traffic is mirrored to the raw logger.
func WithRaw(l Link, raw log.RawLogger) Link {
	return &rawLink{Link: l, raw: raw}
}

type rawLink struct {
	Link
	raw log.RawLogger
}

func (l *rawLink) Read(p []byte) (int, error) {
	n, err := l.Link.Read(p)
	if n > 0 {
		l.raw.Log(log.DirLinkIn, p[:n])
	}
	return n, err
}

func (l *rawLink) Write(p []byte) (int, error) {
	n, err := l.Link.Write(p)
	if n > 0 {
		l.raw.Log(log.DirLinkOut, p[:n])
	}
	return n, err
}
