package link

import (
	"fmt"
	"log/slog"
	"time"

	"go.bug.st/serial"
)

// readTimeout keeps serial reads short so a poll with no pending bytes
// returns almost immediately instead of blocking the loop.
const readTimeout = 2 * time.Millisecond

type serialLink struct {
	port serial.Port
}

func openSerial(cfg Config, logger *slog.Logger) (Link, error) {
	mode := &serial.Mode{BaudRate: cfg.Baud}
	port, err := serial.Open(cfg.SerialPort, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.SerialPort, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set serial read timeout: %w", err)
	}
	logger.Info("serial link open", "port", cfg.SerialPort, "baud", cfg.Baud)
	return &serialLink{port: port}, nil
}

// Read returns the bytes currently buffered; on timeout it reports
// zero bytes and no error, which ends the caller's poll quietly.
func (l *serialLink) Read(p []byte) (int, error) {
	return l.port.Read(p)
}

func (l *serialLink) Write(p []byte) (int, error) {
	return l.port.Write(p)
}

func (l *serialLink) Close() error {
	return l.port.Close()
}

// ListPorts enumerates the serial ports present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
