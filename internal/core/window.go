package core

// WindowID is an opaque window handle assigned by the window system.
// The zero value is never a valid id and doubles as "no window".
type WindowID uint32

// Window is a tracked top-level window. Owned exclusively by State; all
// mutation goes through State methods.
type Window struct {
	ID      WindowID
	PID     int
	AppName string
	Title   string
	Tags    Tag
	Display DisplayID
	Frame   Rect

	// SavedFrame is the sole hidden/visible discriminator: a hidden window
	// holds its pre-hide geometry here, a visible window holds nil.
	SavedFrame *Rect
}

// Hidden reports whether the window is parked off the visible area.
func (w *Window) Hidden() bool {
	return w.SavedFrame != nil
}

// WindowMove is one physical move the window system must perform. Produced
// by State transitions, executed by the effect executor.
type WindowMove struct {
	ID  WindowID
	PID int
	To  Rect
}

// hiddenShift parks hidden windows far below any plausible display
// arrangement so tag switches never leave them peeking onto another output.
const hiddenShift = 1 << 14

func parkedFrame(frame Rect) Rect {
	frame.Y += hiddenShift
	return frame
}
