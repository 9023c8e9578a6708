package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// Direction tags a raw traffic record with the channel it was captured on.
type Direction string

const (
	// DirHIDIn is an input report read from the attached mouse.
	DirHIDIn Direction = "HID<-"
	// DirLinkIn is command bytes arriving on the telemetry link.
	DirLinkIn Direction = "SER<-"
	// DirLinkOut is telemetry bytes written to the link.
	DirLinkOut Direction = "SER->"
)

// RawLogger handles raw traffic log with optional file output.
type RawLogger interface {
	Log(dir Direction, data []byte)
}

// rawLogger implements RawLogger with thread-safe log.
type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a new RawLogger. If writer is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log emits a single-line raw traffic log with timestamp and hex dump.
func (r *rawLogger) Log(dir Direction, data []byte) {
	if len(data) == 0 {
		return
	}
	if r.w == nil {
		return
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s chunk: %d bytes, hex: %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		dir,
		len(data),
		hexbuf.String())

	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}
