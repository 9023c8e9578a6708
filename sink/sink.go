// Package sink hosts the pass-through pointer backends and the
// registry they announce themselves in. Backends register from their
// package init functions; importing internal/registry pulls in every
// backend compiled for the platform.
package sink

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/steadyware/mousebridge/bridge"
)

// Options carries backend construction parameters. Backends ignore the
// fields they do not use.
type Options struct {
	// Addr is the VIIPER server address for the viiper backend.
	Addr string
	// Bus and DeviceID select the virtual mouse device to stream to.
	Bus      uint32
	DeviceID string
}

// Factory builds a pointer backend.
type Factory func(o Options, logger *slog.Logger) (bridge.Pointer, error)

var (
	registry   = make(map[string]Factory)
	registryMu sync.RWMutex
)

// Register registers a backend factory under a name. It should be
// called from backend package init() functions; the name is
// case-sensitive and conventionally lowercase.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// New builds the named backend.
func New(name string, o Options, logger *slog.Logger) (bridge.Pointer, error) {
	registryMu.RLock()
	f := registry[name]
	registryMu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("unknown sink backend %q (available: %v)", name, Backends())
	}
	return f(o, logger)
}

// Backends returns the names of all registered backends, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
