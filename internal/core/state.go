package core

import "sort"

// Direction selects a window or display relative to the focused one.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
	DirNext
	DirPrev
)

// WindowInfo is one window as reported by the window system.
type WindowInfo struct {
	ID      WindowID
	PID     int
	AppName string
	Title   string
	Frame   Rect
}

// DisplayInfo is one display as reported by the window system.
type DisplayInfo struct {
	ID    DisplayID
	Frame Rect
}

// State aggregates all windows, displays, focus pointers and the layout
// mapping. Every operation is a pure transition over in-memory data: it
// mutates State and returns the physical moves required, but never performs
// them. Out-of-range tags and unknown names are rejected at the command
// boundary, so State operations are total and cannot corrupt state.
type State struct {
	Windows  map[WindowID]*Window
	Displays []*Display // stable-sorted by id

	FocusedDisplay DisplayID
	FocusedWindow  WindowID // zero = none

	DefaultLayout string
	TagLayouts    map[uint]string // tag index -> layout engine name
}

// NewState creates an empty state using the given default layout.
func NewState(defaultLayout string) *State {
	return &State{
		Windows:       make(map[WindowID]*Window),
		DefaultLayout: defaultLayout,
		TagLayouts:    make(map[uint]string),
	}
}

// Display returns the display with the given id, or nil.
func (s *State) Display(id DisplayID) *Display {
	for _, d := range s.Displays {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (s *State) focusedDisplay() *Display {
	if d := s.Display(s.FocusedDisplay); d != nil {
		return d
	}
	if len(s.Displays) > 0 {
		return s.Displays[0]
	}
	return nil
}

func (s *State) focusedWindow() *Window {
	if s.FocusedWindow == 0 {
		return nil
	}
	return s.Windows[s.FocusedWindow]
}

// Visible reports whether w satisfies the visibility predicate on d.
func (s *State) Visible(w *Window, d *Display) bool {
	return !w.Hidden() && w.Display == d.ID && w.Tags.Intersects(d.VisibleTags)
}

// VisibleWindows returns the visible windows on d in the display's visual
// order, reconciling the stored order first: ids no longer on d drop out,
// newcomers join at the end by ascending id. Hidden windows keep their slot
// but are filtered from the result.
func (s *State) VisibleWindows(d *Display) []*Window {
	onDisplay := make(map[WindowID]*Window)
	for _, w := range s.Windows {
		if w.Display == d.ID {
			onDisplay[w.ID] = w
		}
	}

	order := make([]WindowID, 0, len(onDisplay))
	seen := make(map[WindowID]bool, len(onDisplay))
	for _, id := range d.WindowOrder {
		if _, ok := onDisplay[id]; ok && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	var rest []WindowID
	for id := range onDisplay {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	order = append(order, rest...)
	d.WindowOrder = order

	var out []*Window
	for _, id := range order {
		if w := onDisplay[id]; s.Visible(w, d) {
			out = append(out, w)
		}
	}
	return out
}

func (s *State) windowsOn(id DisplayID) []*Window {
	var out []*Window
	for _, w := range s.Windows {
		if w.Display == id {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// applyVisibility reconciles every window on d against d's visible tags and
// returns the hide/show moves required. Hiding snapshots the pre-hide
// geometry; showing restores it and clears the snapshot.
func (s *State) applyVisibility(d *Display) []WindowMove {
	var moves []WindowMove
	for _, w := range s.windowsOn(d.ID) {
		shouldShow := w.Tags.Intersects(d.VisibleTags)
		switch {
		case w.Hidden() && shouldShow:
			restored := *w.SavedFrame
			w.SavedFrame = nil
			w.Frame = restored
			moves = append(moves, WindowMove{ID: w.ID, PID: w.PID, To: restored})
		case !w.Hidden() && !shouldShow:
			saved := w.Frame
			w.SavedFrame = &saved
			parked := parkedFrame(saved)
			w.Frame = parked
			moves = append(moves, WindowMove{ID: w.ID, PID: w.PID, To: parked})
		}
	}
	return moves
}

// LayoutForTag resolves the layout engine name for a tag mask: the mapping
// for the lowest set tag when configured, the default layout otherwise.
func (s *State) LayoutForTag(tag Tag) string {
	if name, ok := s.TagLayouts[tag.FirstIndex()]; ok {
		return name
	}
	return s.DefaultLayout
}

// DisplayLayout resolves the layout engine driving d right now.
func (s *State) DisplayLayout(d *Display) string {
	if d != nil && d.CurrentLayout != "" {
		return d.CurrentLayout
	}
	return s.DefaultLayout
}

// ViewTag switches the focused display to exactly the given tags and to the
// layout configured for them.
func (s *State) ViewTag(tag Tag) []WindowMove {
	return s.ViewTagOn(s.focusedDisplay(), tag)
}

// ViewTagOn is ViewTag targeting an explicit display.
func (s *State) ViewTagOn(d *Display, tag Tag) []WindowMove {
	if d == nil {
		return nil
	}
	d.PreviousVisibleTags = d.VisibleTags
	d.VisibleTags = tag
	d.PreviousLayout = d.CurrentLayout
	d.CurrentLayout = s.LayoutForTag(tag)
	return s.applyVisibility(d)
}

// ToggleViewTag flips the given tags in the focused display's visible set.
// The layout is untouched: toggling is a visibility-only change.
func (s *State) ToggleViewTag(tag Tag) []WindowMove {
	return s.ToggleViewTagOn(s.focusedDisplay(), tag)
}

// ToggleViewTagOn is ToggleViewTag targeting an explicit display.
func (s *State) ToggleViewTagOn(d *Display, tag Tag) []WindowMove {
	if d == nil {
		return nil
	}
	d.PreviousVisibleTags = d.VisibleTags
	d.VisibleTags = d.VisibleTags.Toggle(tag)
	return s.applyVisibility(d)
}

// ViewTagLast swaps the focused display back to its previously viewed tags,
// restoring the layout that was paired with them.
func (s *State) ViewTagLast() []WindowMove {
	d := s.focusedDisplay()
	if d == nil {
		return nil
	}
	d.VisibleTags, d.PreviousVisibleTags = d.PreviousVisibleTags, d.VisibleTags
	d.CurrentLayout, d.PreviousLayout = d.PreviousLayout, d.CurrentLayout
	return s.applyVisibility(d)
}

// MoveFocusedToTag replaces the focused window's tag set and re-derives its
// visibility. Returns the moves plus the display needing a retile.
func (s *State) MoveFocusedToTag(tag Tag) ([]WindowMove, []DisplayID) {
	w := s.focusedWindow()
	if w == nil {
		return nil, nil
	}
	w.Tags = tag
	d := s.Display(w.Display)
	if d == nil {
		return nil, nil
	}
	return s.applyVisibility(d), []DisplayID{d.ID}
}

// ToggleFocusedWindowTag flips tags on the focused window. The caller
// guarantees the result is non-empty (validated at the command boundary).
func (s *State) ToggleFocusedWindowTag(tag Tag) ([]WindowMove, []DisplayID) {
	w := s.focusedWindow()
	if w == nil {
		return nil, nil
	}
	w.Tags = w.Tags.Toggle(tag)
	d := s.Display(w.Display)
	if d == nil {
		return nil, nil
	}
	return s.applyVisibility(d), []DisplayID{d.ID}
}

// FocusWindow selects a window among the visible windows of the focused
// display. next/prev cycle by window id; left/right/up/down pick the nearest
// window whose center lies strictly in that half-plane, tie-broken by
// Manhattan distance. Returns the newly focused window, or false on no-op.
func (s *State) FocusWindow(dir Direction) (*Window, bool) {
	d := s.focusedDisplay()
	if d == nil {
		return nil, false
	}
	visible := s.VisibleWindows(d)
	if len(visible) == 0 {
		return nil, false
	}

	switch dir {
	case DirNext, DirPrev:
		idx := -1
		for i, w := range visible {
			if w.ID == s.FocusedWindow {
				idx = i
				break
			}
		}
		var target *Window
		if idx < 0 {
			target = visible[0]
		} else if dir == DirNext {
			target = visible[(idx+1)%len(visible)]
		} else {
			target = visible[(idx-1+len(visible))%len(visible)]
		}
		s.FocusedWindow = target.ID
		return target, true
	}

	cur := s.focusedWindow()
	if cur == nil || !s.Visible(cur, d) {
		return nil, false
	}
	best := directionalNeighbor(cur, visible, dir)
	if best == nil {
		return nil, false
	}
	s.FocusedWindow = best.ID
	return best, true
}

// directionalNeighbor picks the candidate whose center lies strictly in the
// given half-plane relative to from, nearest by Manhattan distance,
// tie-broken by smallest id.
func directionalNeighbor(from *Window, candidates []*Window, dir Direction) *Window {
	origin := from.Frame.Center()
	var best *Window
	bestDist := 0
	for _, w := range candidates {
		if w.ID == from.ID {
			continue
		}
		c := w.Frame.Center()
		inHalfPlane := false
		switch dir {
		case DirLeft:
			inHalfPlane = c.X < origin.X
		case DirRight:
			inHalfPlane = c.X > origin.X
		case DirUp:
			inHalfPlane = c.Y < origin.Y
		case DirDown:
			inHalfPlane = c.Y > origin.Y
		}
		if !inHalfPlane {
			continue
		}
		dist := manhattan(origin, c)
		if best == nil || dist < bestDist || (dist == bestDist && w.ID < best.ID) {
			best = w
			bestDist = dist
		}
	}
	return best
}

// SwapWindow exchanges the focused window's slot in the display's visual
// order with its neighbor in the given direction. Focus stays on the same
// window; the next retile realizes the new arrangement. Returns the display
// needing a retile and whether a swap happened.
func (s *State) SwapWindow(dir Direction) (DisplayID, bool) {
	d := s.focusedDisplay()
	if d == nil {
		return 0, false
	}
	cur := s.focusedWindow()
	if cur == nil || !s.Visible(cur, d) {
		return 0, false
	}
	visible := s.VisibleWindows(d)
	if len(visible) < 2 {
		return 0, false
	}

	var target *Window
	switch dir {
	case DirNext, DirPrev:
		idx := -1
		for i, w := range visible {
			if w.ID == cur.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return 0, false
		}
		if dir == DirNext {
			target = visible[(idx+1)%len(visible)]
		} else {
			target = visible[(idx-1+len(visible))%len(visible)]
		}
	default:
		target = directionalNeighbor(cur, visible, dir)
	}
	if target == nil || target.ID == cur.ID {
		return 0, false
	}

	ci, ti := -1, -1
	for i, id := range d.WindowOrder {
		switch id {
		case cur.ID:
			ci = i
		case target.ID:
			ti = i
		}
	}
	if ci < 0 || ti < 0 {
		return 0, false
	}
	d.WindowOrder[ci], d.WindowOrder[ti] = d.WindowOrder[ti], d.WindowOrder[ci]
	return d.ID, true
}

// neighborDisplay returns the display next to the focused one in sorted-id
// order, wrapping at the ends.
func (s *State) neighborDisplay(dir Direction) *Display {
	n := len(s.Displays)
	if n == 0 {
		return nil
	}
	idx := 0
	for i, d := range s.Displays {
		if d.ID == s.FocusedDisplay {
			idx = i
			break
		}
	}
	if dir == DirPrev {
		return s.Displays[(idx-1+n)%n]
	}
	return s.Displays[(idx+1)%n]
}

// FocusOutput cycles display focus and focuses the first visible window on
// the newly focused display, if any.
func (s *State) FocusOutput(dir Direction) (*Window, bool) {
	d := s.neighborDisplay(dir)
	if d == nil {
		return nil, false
	}
	s.FocusedDisplay = d.ID
	visible := s.VisibleWindows(d)
	if len(visible) == 0 {
		s.FocusedWindow = 0
		return nil, false
	}
	s.FocusedWindow = visible[0].ID
	return visible[0], true
}

// SendToOutput reassigns the focused window to the neighboring display and
// moves display focus with it. Both displays need a retile afterwards.
func (s *State) SendToOutput(dir Direction) ([]WindowMove, []DisplayID, bool) {
	w := s.focusedWindow()
	if w == nil {
		return nil, nil, false
	}
	target := s.neighborDisplay(dir)
	if target == nil || target.ID == w.Display {
		return nil, nil, false
	}
	source := w.Display
	w.Display = target.ID
	s.FocusedDisplay = target.ID
	moves := s.applyVisibility(target)
	return moves, []DisplayID{source, target.ID}, true
}

// EnsureFocusVisible re-establishes the focus invariant after tag or focus
// mutations: if the focused window is gone or no longer visible, focus falls
// to the first visible window on the focused display (or to nothing).
// Returns the window to physically focus and whether focus changed.
func (s *State) EnsureFocusVisible() (*Window, bool) {
	d := s.focusedDisplay()
	if d == nil {
		return nil, false
	}
	if w := s.focusedWindow(); w != nil && s.Visible(w, d) {
		return nil, false
	}
	visible := s.VisibleWindows(d)
	if len(visible) == 0 {
		changed := s.FocusedWindow != 0
		s.FocusedWindow = 0
		return nil, changed
	}
	s.FocusedWindow = visible[0].ID
	return visible[0], true
}

// SetDefaultLayout replaces the default layout name.
func (s *State) SetDefaultLayout(name string) {
	s.DefaultLayout = name
}

// SetLayout updates the layout mapping. With a tag index it only rewrites
// the mapping, taking effect when that tag next becomes active. Without one
// it overrides the focused display's active layout directly and returns that
// display for an immediate retile.
func (s *State) SetLayout(tagIndex *uint, name string) (DisplayID, bool) {
	if tagIndex != nil {
		s.TagLayouts[*tagIndex] = name
		return 0, false
	}
	return s.SetLayoutOn(s.focusedDisplay(), name)
}

// SetLayoutOn overrides an explicit display's active layout.
func (s *State) SetLayoutOn(d *Display, name string) (DisplayID, bool) {
	if d == nil {
		return 0, false
	}
	d.PreviousLayout = d.CurrentLayout
	d.CurrentLayout = name
	return d.ID, true
}

// GetLayout resolves the layout for a tag index, or the focused display's
// active layout when no index is given.
func (s *State) GetLayout(tagIndex *uint) string {
	if tagIndex != nil {
		if name, ok := s.TagLayouts[*tagIndex]; ok {
			return name
		}
		return s.DefaultLayout
	}
	return s.DisplayLayout(s.focusedDisplay())
}

// SyncDisplays reconciles the display list against a snapshot, preserving
// workspace state for displays that persist across the sync.
func (s *State) SyncDisplays(infos []DisplayInfo) {
	prev := make(map[DisplayID]*Display, len(s.Displays))
	for _, d := range s.Displays {
		prev[d.ID] = d
	}
	displays := make([]*Display, 0, len(infos))
	for _, info := range infos {
		if d, ok := prev[info.ID]; ok {
			d.Frame = info.Frame
			displays = append(displays, d)
			continue
		}
		displays = append(displays, NewDisplay(info.ID, info.Frame))
	}
	sort.Slice(displays, func(i, j int) bool { return displays[i].ID < displays[j].ID })
	s.Displays = displays

	if s.Display(s.FocusedDisplay) == nil && len(displays) > 0 {
		s.FocusedDisplay = displays[0].ID
	}
	// Windows stranded on a removed display migrate to the focused one;
	// their next geometry observation reassigns them by center point.
	for _, w := range s.Windows {
		if s.Display(w.Display) == nil {
			w.Display = s.FocusedDisplay
		}
	}
}

// assignDisplay recomputes which display owns w: the one whose frame
// contains w's center. Parked (hidden) windows have off-screen centers and
// keep their current assignment.
func (s *State) assignDisplay(w *Window) {
	center := w.Frame.Center()
	for _, d := range s.Displays {
		if d.Frame.Contains(center) {
			w.Display = d.ID
			return
		}
	}
}

func (s *State) addWindow(info WindowInfo) *Window {
	w := &Window{
		ID:      info.ID,
		PID:     info.PID,
		AppName: info.AppName,
		Title:   info.Title,
		Frame:   info.Frame,
		Display: s.FocusedDisplay,
	}
	s.assignDisplay(w)
	tags := TagFromIndex(1)
	if d := s.Display(w.Display); d != nil && !d.VisibleTags.IsEmpty() {
		// New windows join the workspace they appeared on.
		tags = d.VisibleTags
	}
	w.Tags = tags
	s.Windows[w.ID] = w
	return w
}

func (s *State) updateWindow(w *Window, info WindowInfo) {
	w.Title = info.Title
	w.AppName = info.AppName
	if !w.Hidden() {
		w.Frame = info.Frame
		s.assignDisplay(w)
	}
}

func (s *State) removeWindow(id WindowID) {
	delete(s.Windows, id)
	if s.FocusedWindow == id {
		s.FocusedWindow = 0
	}
}

// SyncAll reconciles all windows against a full snapshot: removes vanished
// windows, adds new ones, and refreshes geometry on the rest.
func (s *State) SyncAll(infos []WindowInfo) {
	seen := make(map[WindowID]bool, len(infos))
	for _, info := range infos {
		seen[info.ID] = true
		if w, ok := s.Windows[info.ID]; ok {
			s.updateWindow(w, info)
		} else {
			s.addWindow(info)
		}
	}
	for id := range s.Windows {
		if !seen[id] {
			s.removeWindow(id)
		}
	}
}

// SyncPID reconciles only the windows belonging to one process, using the
// same full snapshot the window system reports.
func (s *State) SyncPID(infos []WindowInfo, pid int) {
	seen := make(map[WindowID]bool)
	for _, info := range infos {
		if info.PID != pid {
			continue
		}
		seen[info.ID] = true
		if w, ok := s.Windows[info.ID]; ok {
			s.updateWindow(w, info)
		} else {
			s.addWindow(info)
		}
	}
	for id, w := range s.Windows {
		if w.PID == pid && !seen[id] {
			s.removeWindow(id)
		}
	}
}

// SyncFocus records the externally reported focused window. Returns whether
// the focus pointer changed.
func (s *State) SyncFocus(id WindowID, ok bool) bool {
	var next WindowID
	if ok {
		if _, tracked := s.Windows[id]; tracked {
			next = id
		}
	}
	if next == s.FocusedWindow {
		return false
	}
	s.FocusedWindow = next
	if w := s.focusedWindow(); w != nil {
		if d := s.Display(w.Display); d != nil {
			s.FocusedDisplay = d.ID
		}
	}
	return true
}

// AutoViewFocused implements automatic tag switching on external focus: when
// the focused window is hidden on the focused display, the display switches
// its view to the window's first tag so the window becomes visible. Only
// fires for the focused display. Returns the resulting moves and whether the
// rule fired.
func (s *State) AutoViewFocused() ([]WindowMove, bool) {
	w := s.focusedWindow()
	if w == nil || w.Display != s.FocusedDisplay {
		return nil, false
	}
	d := s.Display(w.Display)
	if d == nil || s.Visible(w, d) {
		return nil, false
	}
	idx := w.Tags.FirstIndex()
	if idx == 0 {
		return nil, false
	}
	return s.ViewTag(TagFromIndex(idx)), true
}
