package wm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tagtile/tagtile/internal/core"
	"github.com/tagtile/tagtile/internal/hotkeys"
	"github.com/tagtile/tagtile/internal/ipc"
	"github.com/tagtile/tagtile/internal/layoutengine"
	"github.com/tagtile/tagtile/internal/platform"
)

// Settings is the loop-relevant slice of daemon configuration, applied at
// startup and on reload.
type Settings struct {
	NumTags        uint
	DefaultLayout  string
	TagLayouts     map[uint]string
	EngineTimeout  time.Duration
	EngineCommands map[string]string
	Bindings       map[string]ipc.Request
}

// message is one item on the loop's single ordered queue. Exactly one of
// the fields is set.
type message struct {
	req      *ipc.Request
	reply    chan *ipc.Response
	event    *platform.Event
	combo    string
	settings *Settings
}

// Loop is the single writer: it exclusively owns State, the binding table
// and the engine manager, and drains one ordered queue fed by the IPC
// server, the hotkey capture and OS notifications. Producers never touch
// state; they only enqueue. No mutex is needed because there is exactly one
// mutator and it never overlaps itself.
type Loop struct {
	state    *core.State
	bindings *hotkeys.Bindings
	proc     Processor
	exec     *Executor
	winsys   platform.WindowSystem
	engines  EngineManager
	capture  platform.HotkeyCapture
	log      *slog.Logger

	messages chan message
	done     chan struct{}

	// lastFocusDispatch suppresses the automatic tag-switch rule for the
	// focus event echoing our own FocusWindow effect.
	lastFocusDispatch core.WindowID
}

// NewLoop assembles the loop and its executor around the platform
// collaborators.
func NewLoop(winsys platform.WindowSystem, manip platform.WindowManipulator, capture platform.HotkeyCapture, settings Settings, log *slog.Logger) *Loop {
	engines := layoutengine.NewManager(settings.EngineTimeout, settings.EngineCommands, log)
	st := core.NewState(settings.DefaultLayout)
	for idx, name := range settings.TagLayouts {
		st.TagLayouts[idx] = name
	}

	l := &Loop{
		state:    st,
		bindings: hotkeys.NewBindings(),
		proc:     Processor{NumTags: settings.NumTags},
		exec:     NewExecutor(manip, capture, engines, log),
		winsys:   winsys,
		engines:  engines,
		capture:  capture,
		log:      log,
		messages: make(chan message, 64),
		done:     make(chan struct{}),
	}
	l.applyBindings(settings.Bindings)
	return l
}

// Submit enqueues an IPC request and waits for its response. Safe to call
// from any goroutine.
func (l *Loop) Submit(req *ipc.Request) *ipc.Response {
	reply := make(chan *ipc.Response, 1)
	select {
	case l.messages <- message{req: req, reply: reply}:
	case <-l.done:
		return ipc.NewErrorResponse("daemon is shutting down")
	}
	select {
	case resp := <-reply:
		return resp
	case <-l.done:
		return ipc.NewErrorResponse("daemon is shutting down")
	}
}

// NotifyEvent enqueues an OS notification.
func (l *Loop) NotifyEvent(ev platform.Event) {
	select {
	case l.messages <- message{event: &ev}:
	case <-l.done:
	}
}

// TriggerHotkey enqueues a hotkey press by its combo.
func (l *Loop) TriggerHotkey(combo string) {
	select {
	case l.messages <- message{combo: combo}:
	case <-l.done:
	}
}

// Reload enqueues new settings so the swap serializes with everything else.
func (l *Loop) Reload(settings Settings) {
	select {
	case l.messages <- message{settings: &settings}:
	case <-l.done:
	}
}

// Run drains the queue until the context is cancelled or a Quit command is
// processed. Must be called exactly once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	defer l.engines.Shutdown()
	defer l.capture.Release()

	if err := l.initialSync(); err != nil {
		return err
	}
	if err := l.capture.Rebuild(l.bindings.Combos()); err != nil {
		return fmt.Errorf("failed to capture hotkeys: %w", err)
	}
	l.retileAll()
	l.log.Info("event loop running",
		"windows", len(l.state.Windows), "displays", len(l.state.Displays))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-l.messages:
			if l.dispatch(msg) {
				return nil
			}
		}
	}
}

// dispatch handles one queued message; reports whether the loop should
// stop.
func (l *Loop) dispatch(msg message) (stop bool) {
	switch {
	case msg.req != nil:
		resp, shutdown := l.handleRequest(msg.req)
		if msg.reply != nil {
			msg.reply <- resp
		}
		return shutdown
	case msg.combo != "":
		req, ok := l.bindings.Lookup(msg.combo)
		if !ok {
			l.log.Warn("hotkey press with no binding", "combo", msg.combo)
			return false
		}
		_, shutdown := l.handleRequest(&req)
		return shutdown
	case msg.event != nil:
		l.handleEvent(*msg.event)
		return false
	case msg.settings != nil:
		l.applySettings(*msg.settings)
		return false
	}
	return false
}

// handleRequest is the processor→executor pipeline for one command.
func (l *Loop) handleRequest(req *ipc.Request) (*ipc.Response, bool) {
	prevFocus := l.state.FocusedWindow

	result := l.proc.Process(l.state, l.bindings, req)
	shutdown, err := l.exec.Execute(l.state, l.bindings, result.Effects)
	resp := result.Response
	if err != nil {
		l.log.Warn("effect execution failed", "command", req.Command, "err", err)
		resp = ipc.NewErrorResponse(err.Error())
	}

	if !shutdown {
		l.notifyIfFocusChanged(prevFocus)
	}
	return resp, shutdown
}

// notifyIfFocusChanged sends focus-changed to the active engine after any
// focus movement the daemon caused.
func (l *Loop) notifyIfFocusChanged(prevFocus core.WindowID) {
	cur := l.state.FocusedWindow
	if cur == prevFocus || cur == 0 {
		return
	}
	l.lastFocusDispatch = cur
	l.exec.NotifyFocusChanged(l.state, cur)
}

func (l *Loop) handleEvent(ev platform.Event) {
	switch ev.Kind {
	case platform.EventWindowsChanged:
		infos, err := l.winsys.Windows()
		if err != nil {
			l.log.Warn("window query failed", "err", err)
			return
		}
		l.state.SyncAll(infos)
		l.retileAll()
		l.fixFocus()
	case platform.EventAppChanged:
		infos, err := l.winsys.Windows()
		if err != nil {
			l.log.Warn("window query failed", "err", err)
			return
		}
		l.state.SyncPID(infos, ev.PID)
		l.retileAll()
		l.fixFocus()
	case platform.EventDisplaysChanged:
		infos, err := l.winsys.Displays()
		if err != nil {
			l.log.Warn("display query failed", "err", err)
			return
		}
		l.state.SyncDisplays(infos)
		l.retileAll()
		l.fixFocus()
	case platform.EventFocusChanged:
		l.handleFocusEvent()
	}
}

// handleFocusEvent absorbs an external focus change: record it, apply the
// automatic tag switch when the newly focused window is hidden on the
// display that held focus, and notify the active engine. A window focused
// on another display only moves display focus. The event echoing our own
// focus dispatch skips the tag switch.
func (l *Loop) handleFocusEvent() {
	id, ok, err := l.winsys.FocusedWindow()
	if err != nil {
		l.log.Warn("focus query failed", "err", err)
		return
	}
	// SyncFocus moves FocusedDisplay to the window's display, so the
	// cross-display check needs the display that was focused before.
	prevDisplay := l.state.FocusedDisplay
	if !l.state.SyncFocus(id, ok) {
		return
	}
	echo := ok && id == l.lastFocusDispatch
	l.lastFocusDispatch = 0
	if !ok {
		return
	}

	sameDisplay := false
	if w := l.state.Windows[id]; w != nil {
		sameDisplay = w.Display == prevDisplay
	}
	if !echo && sameDisplay {
		if moves, fired := l.state.AutoViewFocused(); fired {
			effects := []Effect{
				RetileDisplays{Displays: []core.DisplayID{l.state.FocusedDisplay}},
			}
			if len(moves) > 0 {
				effects = append([]Effect{ApplyWindowMoves{Moves: moves}}, effects...)
			}
			if _, err := l.exec.Execute(l.state, l.bindings, effects); err != nil {
				l.log.Warn("tag switch on focus failed", "window", id, "err", err)
			}
		}
	}
	l.exec.NotifyFocusChanged(l.state, id)
}

// fixFocus re-establishes the focus invariant after a sync pass.
func (l *Loop) fixFocus() {
	if _, err := l.exec.Execute(l.state, l.bindings, []Effect{FocusVisibleWindowIfNeeded{}}); err != nil {
		l.log.Warn("focus fixup failed", "err", err)
	}
}

func (l *Loop) retileAll() {
	var displays []core.DisplayID
	for _, d := range l.state.Displays {
		if len(l.state.VisibleWindows(d)) > 0 {
			displays = append(displays, d.ID)
		}
	}
	if len(displays) == 0 {
		return
	}
	if _, err := l.exec.Execute(l.state, l.bindings, []Effect{RetileDisplays{Displays: displays}}); err != nil {
		l.log.Warn("retile failed", "err", err)
	}
}

func (l *Loop) initialSync() error {
	displays, err := l.winsys.Displays()
	if err != nil {
		return fmt.Errorf("failed to query displays: %w", err)
	}
	l.state.SyncDisplays(displays)

	windows, err := l.winsys.Windows()
	if err != nil {
		return fmt.Errorf("failed to query windows: %w", err)
	}
	l.state.SyncAll(windows)

	if id, ok, err := l.winsys.FocusedWindow(); err == nil {
		l.state.SyncFocus(id, ok)
	}
	return nil
}

func (l *Loop) applyBindings(specs map[string]ipc.Request) {
	l.bindings = hotkeys.NewBindings()
	for combo, req := range specs {
		if err := l.bindings.Bind(combo, req); err != nil {
			l.log.Warn("skipping invalid binding", "combo", combo, "err", err)
		}
	}
}

// applySettings swaps in reloaded configuration on the loop goroutine.
func (l *Loop) applySettings(s Settings) {
	l.proc.NumTags = s.NumTags
	l.state.DefaultLayout = s.DefaultLayout
	l.state.TagLayouts = make(map[uint]string, len(s.TagLayouts))
	for idx, name := range s.TagLayouts {
		l.state.TagLayouts[idx] = name
	}
	l.engines.Configure(s.EngineTimeout, s.EngineCommands)
	l.applyBindings(s.Bindings)
	if err := l.capture.Rebuild(l.bindings.Combos()); err != nil {
		l.log.Warn("hotkey rebuild after reload failed", "err", err)
	}
	l.log.Info("configuration reloaded", "bindings", len(l.bindings.Combos()))
}
