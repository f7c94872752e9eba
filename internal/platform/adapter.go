package platform

import (
	"fmt"
	"log/slog"
)

// Adapter bundles the three capabilities a platform binding provides, plus
// teardown.
type Adapter interface {
	WindowSystem
	WindowManipulator
	HotkeyCapture
	Close() error
}

// Callbacks let the adapter deliver notifications into the daemon. Both are
// safe to call from any goroutine; the daemon serializes internally.
type Callbacks struct {
	Event  func(Event)
	Hotkey func(combo string)
}

var newAdapter func(cb Callbacks, log *slog.Logger) (Adapter, error)

// RegisterAdapter installs the platform binding. Called from an adapter
// package's init; at most one binding is compiled into a build.
func RegisterAdapter(fn func(cb Callbacks, log *slog.Logger) (Adapter, error)) {
	newAdapter = fn
}

// NewAdapter constructs the registered platform binding.
func NewAdapter(cb Callbacks, log *slog.Logger) (Adapter, error) {
	if newAdapter == nil {
		return nil, fmt.Errorf("no platform adapter compiled into this build")
	}
	return newAdapter(cb, log)
}
