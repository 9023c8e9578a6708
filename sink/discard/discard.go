// Package discard provides a no-op pointer backend for telemetry-only
// deployments, where the downstream computer consumes the serial
// stream but no native pointing device should appear.
package discard

import (
	"log/slog"

	"github.com/steadyware/mousebridge/bridge"
	"github.com/steadyware/mousebridge/sink"
)

func init() {
	sink.Register("discard", New)
}

// Pointer swallows every pass-through call.
type Pointer struct{}

// New returns the no-op backend.
func New(_ sink.Options, _ *slog.Logger) (bridge.Pointer, error) {
	return Pointer{}, nil
}

func (Pointer) Move(dx, dy, wheel int8) error { return nil }
func (Pointer) Press(b bridge.Button) error   { return nil }
func (Pointer) Release(b bridge.Button) error { return nil }
func (Pointer) Close() error                  { return nil }
