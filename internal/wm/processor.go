package wm

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/tagtile/tagtile/internal/core"
	"github.com/tagtile/tagtile/internal/hotkeys"
	"github.com/tagtile/tagtile/internal/ipc"
)

// Processor turns requests into state transitions and effect plans. Pure:
// it reads and mutates State through its methods, performs no I/O, and
// leaves State untouched when it rejects a request.
type Processor struct {
	// NumTags bounds valid tag indices (1..NumTags).
	NumTags uint
}

// Process handles one request against the state and binding table. Every
// command maps to exactly one deterministic effect sequence.
func (p *Processor) Process(st *core.State, bindings *hotkeys.Bindings, req *ipc.Request) CommandResult {
	switch req.Command {
	case ipc.CommandViewTag:
		return p.viewTag(st, req.Payload, false)
	case ipc.CommandToggleViewTag:
		return p.viewTag(st, req.Payload, true)
	case ipc.CommandViewTagLast:
		return p.viewTagLast(st)
	case ipc.CommandMoveToTag:
		return p.moveToTag(st, req.Payload, false)
	case ipc.CommandToggleWindowTag:
		return p.moveToTag(st, req.Payload, true)
	case ipc.CommandFocusWindow:
		return p.focusWindow(st, req.Payload)
	case ipc.CommandSwapWindow:
		return p.swapWindow(st, req.Payload)
	case ipc.CommandFocusOutput:
		return p.focusOutput(st, req.Payload)
	case ipc.CommandSendToOutput:
		return p.sendToOutput(st, req.Payload)
	case ipc.CommandRetile:
		return p.retile(st, req.Payload)
	case ipc.CommandSetDefaultLayout:
		return p.setDefaultLayout(st, req.Payload)
	case ipc.CommandSetLayout:
		return p.setLayout(st, req.Payload)
	case ipc.CommandGetLayout:
		return p.getLayout(st, req.Payload)
	case ipc.CommandLayoutCmd:
		return p.layoutCmd(req.Payload)
	case ipc.CommandBind:
		return p.bind(bindings, req.Payload)
	case ipc.CommandUnbind:
		return p.unbind(bindings, req.Payload)
	case ipc.CommandListBindings:
		return dataResult(ipc.BindingsData{Bindings: bindings.List()})
	case ipc.CommandListWindows:
		return dataResult(ipc.WindowsData{Windows: windowInfos(st)})
	case ipc.CommandListOutputs:
		return dataResult(ipc.OutputsData{Outputs: outputInfos(st)})
	case ipc.CommandGetState:
		return p.getState(st)
	case ipc.CommandFocusedWindow:
		return p.focusedWindow(st)
	case ipc.CommandExec:
		return p.exec(req.Payload)
	case ipc.CommandExecOrFocus:
		return p.execOrFocus(st, req.Payload)
	case ipc.CommandQuit:
		return okResult(Shutdown{})
	default:
		return errorResult("unknown command: %s", req.Command)
	}
}

// parseTag validates a 1-based tag index against the configured universe and
// passes through the optional output target.
func (p *Processor) parseTag(payload json.RawMessage) (core.Tag, *uint32, CommandResult, bool) {
	var tp ipc.TagPayload
	if err := json.Unmarshal(payload, &tp); err != nil {
		return 0, nil, errorResult("invalid tag payload: %v", err), false
	}
	if tp.Tag < 1 || tp.Tag > p.NumTags {
		return 0, nil, errorResult("tag %d out of range 1..%d", tp.Tag, p.NumTags), false
	}
	return core.TagFromIndex(tp.Tag), tp.Output, CommandResult{}, true
}

// resolveOutput maps an optional output id to its display; nil means the
// focused display.
func resolveOutput(st *core.State, output *uint32) (*core.Display, CommandResult, bool) {
	if output == nil {
		d := st.Display(st.FocusedDisplay)
		if d == nil {
			return nil, errorResult("no focused display"), false
		}
		return d, CommandResult{}, true
	}
	d := st.Display(core.DisplayID(*output))
	if d == nil {
		return nil, errorResult("unknown output %d", *output), false
	}
	return d, CommandResult{}, true
}

func parseDirection(payload json.RawMessage, allowed ...core.Direction) (core.Direction, CommandResult, bool) {
	var dp ipc.DirectionPayload
	if err := json.Unmarshal(payload, &dp); err != nil {
		return 0, errorResult("invalid direction payload: %v", err), false
	}
	var dir core.Direction
	switch dp.Direction {
	case "next":
		dir = core.DirNext
	case "prev":
		dir = core.DirPrev
	case "left":
		dir = core.DirLeft
	case "right":
		dir = core.DirRight
	case "up":
		dir = core.DirUp
	case "down":
		dir = core.DirDown
	default:
		return 0, errorResult("unknown direction: %q", dp.Direction), false
	}
	for _, a := range allowed {
		if dir == a {
			return dir, CommandResult{}, true
		}
	}
	return 0, errorResult("direction %q not valid for this command", dp.Direction), false
}

func (p *Processor) viewTag(st *core.State, payload json.RawMessage, toggle bool) CommandResult {
	tag, output, res, ok := p.parseTag(payload)
	if !ok {
		return res
	}
	d, res, ok := resolveOutput(st, output)
	if !ok {
		return res
	}
	var moves []core.WindowMove
	if toggle {
		moves = st.ToggleViewTagOn(d, tag)
	} else {
		moves = st.ViewTagOn(d, tag)
	}
	return okResult(visibilityEffects(st, d.ID, moves)...)
}

func (p *Processor) viewTagLast(st *core.State) CommandResult {
	moves := st.ViewTagLast()
	return okResult(visibilityEffects(st, st.FocusedDisplay, moves)...)
}

// visibilityEffects is the common plan after a visible-tag change: apply
// the hide/show moves and retile the affected display. The focus invariant
// only needs re-establishing when the focused display changed visibility.
func visibilityEffects(st *core.State, display core.DisplayID, moves []core.WindowMove) []Effect {
	var effects []Effect
	if len(moves) > 0 {
		effects = append(effects, ApplyWindowMoves{Moves: moves})
	}
	effects = append(effects, RetileDisplays{Displays: []core.DisplayID{display}})
	if display == st.FocusedDisplay {
		effects = append(effects, FocusVisibleWindowIfNeeded{})
	}
	return effects
}

func (p *Processor) moveToTag(st *core.State, payload json.RawMessage, toggle bool) CommandResult {
	tag, _, res, ok := p.parseTag(payload)
	if !ok {
		return res
	}
	if st.FocusedWindow == 0 {
		return errorResult("no focused window")
	}
	var moves []core.WindowMove
	var displays []core.DisplayID
	if toggle {
		w := st.Windows[st.FocusedWindow]
		if w != nil && w.Tags.Toggle(tag).IsEmpty() {
			return errorResult("cannot remove a window's last tag")
		}
		moves, displays = st.ToggleFocusedWindowTag(tag)
	} else {
		moves, displays = st.MoveFocusedToTag(tag)
	}
	var effects []Effect
	if len(moves) > 0 {
		effects = append(effects, ApplyWindowMoves{Moves: moves})
	}
	effects = append(effects,
		RetileDisplays{Displays: displays},
		FocusVisibleWindowIfNeeded{},
	)
	return CommandResult{Response: okResponse(), Effects: effects}
}

func (p *Processor) focusWindow(st *core.State, payload json.RawMessage) CommandResult {
	dir, res, ok := parseDirection(payload,
		core.DirNext, core.DirPrev, core.DirLeft, core.DirRight, core.DirUp, core.DirDown)
	if !ok {
		return res
	}
	w, changed := st.FocusWindow(dir)
	if !changed {
		return okResult()
	}
	return okResult(FocusWindow{ID: w.ID, PID: w.PID})
}

func (p *Processor) swapWindow(st *core.State, payload json.RawMessage) CommandResult {
	dir, res, ok := parseDirection(payload,
		core.DirNext, core.DirPrev, core.DirLeft, core.DirRight, core.DirUp, core.DirDown)
	if !ok {
		return res
	}
	display, swapped := st.SwapWindow(dir)
	if !swapped {
		return okResult()
	}
	return okResult(RetileDisplays{Displays: []core.DisplayID{display}})
}

func (p *Processor) focusOutput(st *core.State, payload json.RawMessage) CommandResult {
	dir, res, ok := parseDirection(payload, core.DirNext, core.DirPrev)
	if !ok {
		return res
	}
	w, focused := st.FocusOutput(dir)
	if !focused {
		return okResult()
	}
	return okResult(FocusWindow{ID: w.ID, PID: w.PID})
}

func (p *Processor) sendToOutput(st *core.State, payload json.RawMessage) CommandResult {
	dir, res, ok := parseDirection(payload, core.DirNext, core.DirPrev)
	if !ok {
		return res
	}
	w := st.Windows[st.FocusedWindow]
	if w == nil {
		return errorResult("no focused window")
	}
	moves, displays, sent := st.SendToOutput(dir)
	if !sent {
		return okResult()
	}
	var effects []Effect
	if len(moves) > 0 {
		effects = append(effects, ApplyWindowMoves{Moves: moves})
	}
	effects = append(effects,
		RetileDisplays{Displays: displays},
		FocusWindow{ID: w.ID, PID: w.PID},
	)
	return CommandResult{Response: okResponse(), Effects: effects}
}

func (p *Processor) retile(st *core.State, payload json.RawMessage) CommandResult {
	var rp ipc.RetilePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &rp); err != nil {
			return errorResult("invalid retile payload: %v", err)
		}
	}
	if rp.Output != nil {
		d, res, ok := resolveOutput(st, rp.Output)
		if !ok {
			return res
		}
		return okResult(RetileDisplays{Displays: []core.DisplayID{d.ID}})
	}

	var displays []core.DisplayID
	for _, d := range st.Displays {
		if len(st.VisibleWindows(d)) > 0 {
			displays = append(displays, d.ID)
		}
	}
	if len(displays) == 0 {
		return okResult()
	}
	return okResult(RetileDisplays{Displays: displays})
}

func (p *Processor) setDefaultLayout(st *core.State, payload json.RawMessage) CommandResult {
	var sp ipc.SetDefaultLayoutPayload
	if err := json.Unmarshal(payload, &sp); err != nil {
		return errorResult("invalid set-default-layout payload: %v", err)
	}
	if sp.Name == "" {
		return errorResult("layout name is required")
	}
	st.SetDefaultLayout(sp.Name)
	return okResult()
}

func (p *Processor) setLayout(st *core.State, payload json.RawMessage) CommandResult {
	var sp ipc.SetLayoutPayload
	if err := json.Unmarshal(payload, &sp); err != nil {
		return errorResult("invalid set-layout payload: %v", err)
	}
	if sp.Name == "" {
		return errorResult("layout name is required")
	}
	if sp.Tag != nil && (*sp.Tag < 1 || *sp.Tag > p.NumTags) {
		return errorResult("tag %d out of range 1..%d", *sp.Tag, p.NumTags)
	}
	if sp.Tag == nil && sp.Output != nil {
		d, res, ok := resolveOutput(st, sp.Output)
		if !ok {
			return res
		}
		display, _ := st.SetLayoutOn(d, sp.Name)
		return okResult(RetileDisplays{Displays: []core.DisplayID{display}})
	}
	display, retileNow := st.SetLayout(sp.Tag, sp.Name)
	if !retileNow {
		return okResult()
	}
	return okResult(RetileDisplays{Displays: []core.DisplayID{display}})
}

func (p *Processor) getLayout(st *core.State, payload json.RawMessage) CommandResult {
	var gp ipc.GetLayoutPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &gp); err != nil {
			return errorResult("invalid get-layout payload: %v", err)
		}
	}
	if gp.Tag != nil && (*gp.Tag < 1 || *gp.Tag > p.NumTags) {
		return errorResult("tag %d out of range 1..%d", *gp.Tag, p.NumTags)
	}
	if gp.Tag == nil && gp.Output != nil {
		d, res, ok := resolveOutput(st, gp.Output)
		if !ok {
			return res
		}
		return dataResult(ipc.LayoutData{Name: st.DisplayLayout(d)})
	}
	return dataResult(ipc.LayoutData{Name: st.GetLayout(gp.Tag)})
}

func (p *Processor) layoutCmd(payload json.RawMessage) CommandResult {
	var lp ipc.LayoutCmdPayload
	if err := json.Unmarshal(payload, &lp); err != nil {
		return errorResult("invalid layout-cmd payload: %v", err)
	}
	if lp.Cmd == "" {
		return errorResult("layout command is required")
	}
	return okResult(SendLayoutCommand{Cmd: lp.Cmd, Args: lp.Args})
}

func (p *Processor) bind(bindings *hotkeys.Bindings, payload json.RawMessage) CommandResult {
	var bp ipc.BindPayload
	if err := json.Unmarshal(payload, &bp); err != nil {
		return errorResult("invalid bind payload: %v", err)
	}
	if err := bindings.Bind(bp.Hotkey, bp.Command); err != nil {
		return errorResult("%v", err)
	}
	return okResult(RebuildHotkeyCapture{})
}

func (p *Processor) unbind(bindings *hotkeys.Bindings, payload json.RawMessage) CommandResult {
	var up ipc.UnbindPayload
	if err := json.Unmarshal(payload, &up); err != nil {
		return errorResult("invalid unbind payload: %v", err)
	}
	if err := bindings.Unbind(up.Hotkey); err != nil {
		return errorResult("%v", err)
	}
	return okResult(RebuildHotkeyCapture{})
}

func (p *Processor) getState(st *core.State) CommandResult {
	var tagLayouts map[string]string
	if len(st.TagLayouts) > 0 {
		tagLayouts = make(map[string]string, len(st.TagLayouts))
		for idx, name := range st.TagLayouts {
			tagLayouts[strconv.FormatUint(uint64(idx), 10)] = name
		}
	}
	return dataResult(ipc.StateData{
		Outputs:       outputInfos(st),
		Windows:       windowInfos(st),
		FocusedOutput: uint32(st.FocusedDisplay),
		FocusedWindow: uint32(st.FocusedWindow),
		DefaultLayout: st.DefaultLayout,
		TagLayouts:    tagLayouts,
	})
}

func (p *Processor) focusedWindow(st *core.State) CommandResult {
	if st.FocusedWindow == 0 {
		return errorResult("no focused window")
	}
	return dataResult(ipc.FocusedWindowData{ID: uint32(st.FocusedWindow)})
}

func (p *Processor) exec(payload json.RawMessage) CommandResult {
	var ep ipc.ExecPayload
	if err := json.Unmarshal(payload, &ep); err != nil {
		return errorResult("invalid exec payload: %v", err)
	}
	if ep.Command == "" {
		return errorResult("exec command is required")
	}
	return okResult(ExecCommand{Command: ep.Command})
}

func (p *Processor) execOrFocus(st *core.State, payload json.RawMessage) CommandResult {
	var ep ipc.ExecOrFocusPayload
	if err := json.Unmarshal(payload, &ep); err != nil {
		return errorResult("invalid exec-or-focus payload: %v", err)
	}
	if ep.App == "" || ep.Command == "" {
		return errorResult("exec-or-focus requires app and command")
	}

	// Lowest-id match wins, deterministically.
	var match *core.Window
	for _, w := range st.Windows {
		if !strings.EqualFold(w.AppName, ep.App) {
			continue
		}
		if match == nil || w.ID < match.ID {
			match = w
		}
	}
	if match == nil {
		return okResult(ExecCommand{Command: ep.Command})
	}
	st.FocusedWindow = match.ID
	if d := st.Display(match.Display); d != nil {
		st.FocusedDisplay = d.ID
	}
	// A hidden match must be revealed, or focus would point at an invisible
	// window: switch the display's view to the match's tag first.
	var effects []Effect
	if moves, fired := st.AutoViewFocused(); fired {
		if len(moves) > 0 {
			effects = append(effects, ApplyWindowMoves{Moves: moves})
		}
		effects = append(effects, RetileDisplays{Displays: []core.DisplayID{st.FocusedDisplay}})
	}
	effects = append(effects, FocusWindow{ID: match.ID, PID: match.PID})
	return okResult(effects...)
}

func okResponse() *ipc.Response {
	resp, _ := ipc.NewOKResponse(nil)
	return resp
}

func windowInfos(st *core.State) []ipc.WindowInfo {
	ids := make([]core.WindowID, 0, len(st.Windows))
	for id := range st.Windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]ipc.WindowInfo, 0, len(ids))
	for _, id := range ids {
		w := st.Windows[id]
		frame := w.Frame
		if w.Hidden() {
			frame = *w.SavedFrame
		}
		out = append(out, ipc.WindowInfo{
			ID:      uint32(w.ID),
			PID:     w.PID,
			AppName: w.AppName,
			Title:   w.Title,
			Tags:    uint32(w.Tags),
			Output:  uint32(w.Display),
			X:       frame.X,
			Y:       frame.Y,
			Width:   frame.Width,
			Height:  frame.Height,
			Hidden:  w.Hidden(),
			Focused: w.ID == st.FocusedWindow,
		})
	}
	return out
}

func outputInfos(st *core.State) []ipc.OutputInfo {
	out := make([]ipc.OutputInfo, 0, len(st.Displays))
	for _, d := range st.Displays {
		out = append(out, ipc.OutputInfo{
			ID:          uint32(d.ID),
			X:           d.Frame.X,
			Y:           d.Frame.Y,
			Width:       d.Frame.Width,
			Height:      d.Frame.Height,
			VisibleTags: uint32(d.VisibleTags),
			Layout:      st.DisplayLayout(d),
			Focused:     d.ID == st.FocusedDisplay,
		})
	}
	return out
}
