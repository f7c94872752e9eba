package platform

import "github.com/tagtile/tagtile/internal/core"

// WindowSystem is the query side of the platform binding: a snapshot view of
// what is actually on screen. Implemented per OS; the daemon core never
// touches windowing primitives directly.
type WindowSystem interface {
	Windows() ([]core.WindowInfo, error)
	Displays() ([]core.DisplayInfo, error)
	// FocusedWindow reports the currently focused window; ok is false when
	// no window has focus.
	FocusedWindow() (id core.WindowID, ok bool, err error)
}

// WindowManipulator is the effect side: physical moves, focus and process
// spawning. Calls may block; they run only on the event-loop goroutine.
type WindowManipulator interface {
	// MoveWindows performs a batch of absolute moves (hide/show parking).
	MoveWindows(moves []core.WindowMove) error
	// ApplyLayout places windows at engine-computed geometry.
	ApplyLayout(moves []core.WindowMove) error
	MoveWindow(id core.WindowID, pid int, to core.Rect) error
	FocusWindow(id core.WindowID, pid int) error
	// Exec runs a shell command detached from the daemon.
	Exec(command string) error
}

// HotkeyCapture owns the global hotkey registration. Rebuild replaces the
// captured set wholesale; the capture layer reports presses as events, it
// never interprets them.
type HotkeyCapture interface {
	Rebuild(combos []string) error
	Release() error
}

// EventKind discriminates OS notifications delivered to the event loop.
type EventKind int

const (
	// EventWindowsChanged means the set or geometry of windows changed.
	EventWindowsChanged EventKind = iota
	// EventDisplaysChanged means displays were added, removed or resized.
	EventDisplaysChanged
	// EventFocusChanged means the focused window changed externally.
	EventFocusChanged
	// EventAppChanged means one application's windows changed; PID is set.
	EventAppChanged
)

// Event is one OS notification. Producers build Events on their own
// goroutines and hand them to the loop; they never touch daemon state.
type Event struct {
	Kind EventKind
	PID  int
}
