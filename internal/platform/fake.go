package platform

import "github.com/tagtile/tagtile/internal/core"

// Fake is a deterministic in-memory window system used by the test suite.
// It implements all three capability interfaces and records every
// manipulation call in order.
type Fake struct {
	WindowList  []core.WindowInfo
	DisplayList []core.DisplayInfo
	Focused     core.WindowID

	// Calls records manipulations as compact strings for assertions.
	Calls []string

	Moved         map[core.WindowID]core.Rect
	ExecCommands  []string
	CapturedKeys  []string
	FocusedByCall []core.WindowID

	// Err, when set, is returned by every manipulation call.
	Err error
}

// NewFake returns an empty fake platform.
func NewFake() *Fake {
	return &Fake{Moved: make(map[core.WindowID]core.Rect)}
}

func (f *Fake) Windows() ([]core.WindowInfo, error) {
	return append([]core.WindowInfo(nil), f.WindowList...), nil
}

func (f *Fake) Displays() ([]core.DisplayInfo, error) {
	return append([]core.DisplayInfo(nil), f.DisplayList...), nil
}

func (f *Fake) FocusedWindow() (core.WindowID, bool, error) {
	return f.Focused, f.Focused != 0, nil
}

func (f *Fake) MoveWindows(moves []core.WindowMove) error {
	if f.Err != nil {
		return f.Err
	}
	f.Calls = append(f.Calls, "move-windows")
	for _, m := range moves {
		f.Moved[m.ID] = m.To
	}
	return nil
}

func (f *Fake) ApplyLayout(moves []core.WindowMove) error {
	if f.Err != nil {
		return f.Err
	}
	f.Calls = append(f.Calls, "apply-layout")
	for _, m := range moves {
		f.Moved[m.ID] = m.To
	}
	return nil
}

func (f *Fake) MoveWindow(id core.WindowID, pid int, to core.Rect) error {
	if f.Err != nil {
		return f.Err
	}
	f.Calls = append(f.Calls, "move-window")
	f.Moved[id] = to
	return nil
}

func (f *Fake) FocusWindow(id core.WindowID, pid int) error {
	if f.Err != nil {
		return f.Err
	}
	f.Calls = append(f.Calls, "focus-window")
	f.Focused = id
	f.FocusedByCall = append(f.FocusedByCall, id)
	return nil
}

func (f *Fake) Exec(command string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Calls = append(f.Calls, "exec")
	f.ExecCommands = append(f.ExecCommands, command)
	return nil
}

func (f *Fake) Rebuild(combos []string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Calls = append(f.Calls, "rebuild-hotkeys")
	f.CapturedKeys = append([]string(nil), combos...)
	return nil
}

func (f *Fake) Release() error {
	f.CapturedKeys = nil
	return nil
}
