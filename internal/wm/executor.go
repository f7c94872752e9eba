package wm

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tagtile/tagtile/internal/core"
	"github.com/tagtile/tagtile/internal/hotkeys"
	"github.com/tagtile/tagtile/internal/layoutengine"
	"github.com/tagtile/tagtile/internal/platform"
)

// EngineManager is the layout-engine surface the executor drives. Satisfied
// by layoutengine.Manager; faked in tests.
type EngineManager interface {
	Layout(name string, width, height int, windows []core.WindowID) ([]layoutengine.Placement, error)
	Command(name, cmd string, args []string) (needsRetile bool, err error)
	Configure(timeout time.Duration, commands map[string]string)
	Shutdown()
}

// Executor interprets an ordered effect list against the platform and the
// layout-engine manager. The only stage where blocking I/O happens. Effects
// run strictly in order; the first failure stops the batch and surfaces to
// the caller, with prior effects already applied (a later retile
// re-synchronizes state and reality).
type Executor struct {
	manip   platform.WindowManipulator
	capture platform.HotkeyCapture
	engines EngineManager
	log     *slog.Logger
}

// NewExecutor wires the executor to its collaborators.
func NewExecutor(manip platform.WindowManipulator, capture platform.HotkeyCapture, engines EngineManager, log *slog.Logger) *Executor {
	return &Executor{manip: manip, capture: capture, engines: engines, log: log}
}

// Execute runs every effect in order. Returns whether a Shutdown effect was
// executed and the first error encountered.
func (e *Executor) Execute(st *core.State, bindings *hotkeys.Bindings, effects []Effect) (shutdown bool, err error) {
	for _, eff := range effects {
		switch eff := eff.(type) {
		case ApplyWindowMoves:
			err = e.manip.MoveWindows(eff.Moves)
		case RetileDisplays:
			err = e.retile(st, eff.Displays)
		case FocusWindow:
			err = e.manip.FocusWindow(eff.ID, eff.PID)
		case FocusVisibleWindowIfNeeded:
			if w, changed := st.EnsureFocusVisible(); changed && w != nil {
				err = e.manip.FocusWindow(w.ID, w.PID)
			}
		case SendLayoutCommand:
			err = e.sendLayoutCommand(st, eff.Cmd, eff.Args)
		case ExecCommand:
			err = e.manip.Exec(eff.Command)
		case RebuildHotkeyCapture:
			err = e.capture.Rebuild(bindings.Combos())
		case Shutdown:
			e.engines.Shutdown()
			shutdown = true
		default:
			err = fmt.Errorf("unknown effect %T", eff)
		}
		if err != nil {
			return shutdown, err
		}
	}
	return shutdown, nil
}

// Retile runs the active layout engine for one display and applies the
// placements it returns.
func (e *Executor) Retile(st *core.State, id core.DisplayID) error {
	return e.retile(st, []core.DisplayID{id})
}

func (e *Executor) retile(st *core.State, displays []core.DisplayID) error {
	for _, id := range displays {
		d := st.Display(id)
		if d == nil {
			continue
		}
		visible := st.VisibleWindows(d)
		if len(visible) == 0 {
			continue
		}

		ids := make([]core.WindowID, len(visible))
		byID := make(map[core.WindowID]*core.Window, len(visible))
		for i, w := range visible {
			ids[i] = w.ID
			byID[w.ID] = w
		}

		name := st.DisplayLayout(d)
		placements, err := e.engines.Layout(name, d.Frame.Width, d.Frame.Height, ids)
		if err != nil {
			return fmt.Errorf("retile display %d: %w", id, err)
		}

		// Engine geometry is relative to the display's usable area.
		moves := make([]core.WindowMove, 0, len(placements))
		for _, pl := range placements {
			w, ok := byID[pl.ID]
			if !ok {
				e.log.Warn("layout engine placed an unknown window", "engine", name, "window", pl.ID)
				continue
			}
			to := core.Rect{
				X:      d.Frame.X + pl.X,
				Y:      d.Frame.Y + pl.Y,
				Width:  pl.Width,
				Height: pl.Height,
			}
			w.Frame = to
			moves = append(moves, core.WindowMove{ID: w.ID, PID: w.PID, To: to})
		}
		if err := e.manip.ApplyLayout(moves); err != nil {
			return fmt.Errorf("retile display %d: %w", id, err)
		}
	}
	return nil
}

// sendLayoutCommand forwards a command to the focused display's active
// engine; a needs_retile reply triggers exactly one follow-up retile of
// that display.
func (e *Executor) sendLayoutCommand(st *core.State, cmd string, args []string) error {
	d := st.Display(st.FocusedDisplay)
	if d == nil {
		return fmt.Errorf("no focused display")
	}
	name := st.DisplayLayout(d)
	needsRetile, err := e.engines.Command(name, cmd, args)
	if err != nil {
		return err
	}
	if needsRetile {
		return e.retile(st, []core.DisplayID{d.ID})
	}
	return nil
}

// NotifyFocusChanged tells the focused display's engine about a focus
// change and honors a needs_retile answer. Failures are logged, not
// surfaced: focus notifications are advisory.
func (e *Executor) NotifyFocusChanged(st *core.State, id core.WindowID) {
	if err := e.sendLayoutCommand(st, "focus-changed", []string{fmt.Sprintf("%d", id)}); err != nil {
		e.log.Warn("focus-changed notification failed", "window", id, "err", err)
	}
}
