package wm

import (
	"fmt"

	"github.com/tagtile/tagtile/internal/core"
	"github.com/tagtile/tagtile/internal/ipc"
)

// Effect is one required side effect produced by the pure command processor
// and carried out, in order, by the Executor. Effects describe; they never
// perform.
type Effect interface {
	effect()
}

// ApplyWindowMoves performs a batch of absolute moves (hide/show parking
// and geometry restores).
type ApplyWindowMoves struct {
	Moves []core.WindowMove
}

// RetileDisplays re-runs the active layout engine for each listed display
// and applies the resulting geometry.
type RetileDisplays struct {
	Displays []core.DisplayID
}

// FocusWindow gives a window input focus.
type FocusWindow struct {
	ID  core.WindowID
	PID int
}

// FocusVisibleWindowIfNeeded re-establishes the focus invariant: when the
// focused window is gone or hidden, focus falls to the first visible window
// on the focused display.
type FocusVisibleWindowIfNeeded struct{}

// SendLayoutCommand forwards a free-form command to the focused display's
// active layout engine. A needs_retile reply triggers one follow-up retile
// of that display.
type SendLayoutCommand struct {
	Cmd  string
	Args []string
}

// ExecCommand runs a shell command detached from the daemon.
type ExecCommand struct {
	Command string
}

// RebuildHotkeyCapture recreates the global hotkey capture from the current
// binding table.
type RebuildHotkeyCapture struct{}

// Shutdown terminates all layout engines and stops the event loop.
type Shutdown struct{}

func (ApplyWindowMoves) effect()           {}
func (RetileDisplays) effect()             {}
func (FocusWindow) effect()                {}
func (FocusVisibleWindowIfNeeded) effect() {}
func (SendLayoutCommand) effect()          {}
func (ExecCommand) effect()                {}
func (RebuildHotkeyCapture) effect()       {}
func (Shutdown) effect()                   {}

// CommandResult is the pure processor's complete answer to one request: the
// response to send back and the effects to execute.
type CommandResult struct {
	Response *ipc.Response
	Effects  []Effect
}

func okResult(effects ...Effect) CommandResult {
	resp, _ := ipc.NewOKResponse(nil)
	return CommandResult{Response: resp, Effects: effects}
}

func dataResult(data interface{}) CommandResult {
	resp, err := ipc.NewOKResponse(data)
	if err != nil {
		return errorResult("%v", err)
	}
	return CommandResult{Response: resp}
}

// errorResult short-circuits with a validation error and no effects.
func errorResult(format string, args ...interface{}) CommandResult {
	return CommandResult{Response: ipc.NewErrorResponse(fmt.Sprintf(format, args...))}
}
