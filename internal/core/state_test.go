package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testState() *State {
	s := NewState("byobu")
	s.SyncDisplays([]DisplayInfo{
		{ID: 1, Frame: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
	})
	s.FocusedDisplay = 1
	return s
}

func addTestWindow(s *State, id WindowID, tags Tag, frame Rect) *Window {
	w := &Window{ID: id, PID: int(id) * 100, Tags: tags, Display: 1, Frame: frame}
	s.Windows[id] = w
	return w
}

func TestViewTagHidesAndShows(t *testing.T) {
	s := testState()
	a := addTestWindow(s, 1, TagFromIndex(1), Rect{X: 0, Y: 0, Width: 960, Height: 1080})
	b := addTestWindow(s, 2, TagFromIndex(2), Rect{X: 960, Y: 0, Width: 960, Height: 1080})

	moves := s.ViewTag(TagFromIndex(2))

	if !a.Hidden() {
		t.Fatal("window on tag 1 should be hidden after viewing tag 2")
	}
	if b.Hidden() {
		t.Fatal("window on tag 2 should stay visible")
	}
	want := []WindowMove{
		{ID: 1, PID: 100, To: Rect{X: 0, Y: 0 + hiddenShift, Width: 960, Height: 1080}},
	}
	if diff := cmp.Diff(want, moves); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestViewTagRoundTripRestoresGeometry(t *testing.T) {
	s := testState()
	orig := Rect{X: 12, Y: 34, Width: 800, Height: 600}
	a := addTestWindow(s, 1, TagFromIndex(1), orig)

	s.ViewTag(TagFromIndex(2))
	if !a.Hidden() {
		t.Fatal("expected window hidden")
	}
	moves := s.ViewTag(TagFromIndex(1))

	if a.Hidden() {
		t.Fatal("expected window restored")
	}
	if a.Frame != orig {
		t.Fatalf("frame = %+v, want %+v", a.Frame, orig)
	}
	want := []WindowMove{{ID: 1, PID: 100, To: orig}}
	if diff := cmp.Diff(want, moves); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestViewTagSwitchesLayout(t *testing.T) {
	s := testState()
	s.TagLayouts[3] = "tatami"

	s.ViewTag(TagFromIndex(3))
	d := s.Display(1)
	if d.CurrentLayout != "tatami" {
		t.Fatalf("layout = %q, want tatami", d.CurrentLayout)
	}

	s.ViewTag(TagFromIndex(1))
	if d.CurrentLayout != "byobu" {
		t.Fatalf("layout = %q, want byobu", d.CurrentLayout)
	}
}

func TestToggleViewTagKeepsLayout(t *testing.T) {
	s := testState()
	s.TagLayouts[2] = "tatami"
	d := s.Display(1)

	s.ToggleViewTag(TagFromIndex(2))
	if want := TagFromIndex(1).Union(TagFromIndex(2)); d.VisibleTags != want {
		t.Fatalf("visible = %b, want %b", d.VisibleTags, want)
	}
	if d.CurrentLayout != "" {
		t.Fatalf("toggle must not change the layout, got %q", d.CurrentLayout)
	}

	s.ToggleViewTag(TagFromIndex(2))
	if d.VisibleTags != TagFromIndex(1) {
		t.Fatalf("visible = %b after toggle round trip, want %b", d.VisibleTags, TagFromIndex(1))
	}
}

func TestViewTagLastSwapsTagsAndLayout(t *testing.T) {
	s := testState()
	s.TagLayouts[2] = "tatami"
	d := s.Display(1)

	s.ViewTag(TagFromIndex(2))
	s.ViewTagLast()
	if d.VisibleTags != TagFromIndex(1) {
		t.Fatalf("visible = %b, want tag 1", d.VisibleTags)
	}
	if d.CurrentLayout == "tatami" {
		t.Fatal("layout should have swapped back with the tags")
	}

	s.ViewTagLast()
	if d.VisibleTags != TagFromIndex(2) {
		t.Fatalf("visible = %b, want tag 2", d.VisibleTags)
	}
	if d.CurrentLayout != "tatami" {
		t.Fatalf("layout = %q, want tatami", d.CurrentLayout)
	}
}

func TestSetAndGetLayout(t *testing.T) {
	s := testState()

	tag := uint(2)
	if _, retile := s.SetLayout(&tag, "tatami"); retile {
		t.Fatal("tagged set-layout must not retile immediately")
	}
	if got := s.GetLayout(&tag); got != "tatami" {
		t.Fatalf("GetLayout(2) = %q, want tatami", got)
	}
	other := uint(5)
	if got := s.GetLayout(&other); got != "byobu" {
		t.Fatalf("GetLayout(5) = %q, want default byobu", got)
	}

	id, retile := s.SetLayout(nil, "tatami")
	if !retile || id != 1 {
		t.Fatalf("untagged set-layout = (%d, %v), want (1, true)", id, retile)
	}
	if got := s.GetLayout(nil); got != "tatami" {
		t.Fatalf("GetLayout() = %q, want tatami", got)
	}
}

func TestMoveFocusedToTag(t *testing.T) {
	s := testState()
	w := addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 100, Height: 100})
	s.FocusedWindow = 1

	moves, retile := s.MoveFocusedToTag(TagFromIndex(3))
	if w.Tags != TagFromIndex(3) {
		t.Fatalf("tags = %b, want tag 3", w.Tags)
	}
	if !w.Hidden() {
		t.Fatal("window moved off the visible tags should hide")
	}
	if len(moves) != 1 {
		t.Fatalf("got %d moves, want 1", len(moves))
	}
	if diff := cmp.Diff([]DisplayID{1}, retile); diff != "" {
		t.Fatalf("retile mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleFocusedWindowTag(t *testing.T) {
	s := testState()
	w := addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 100, Height: 100})
	s.FocusedWindow = 1

	s.ToggleFocusedWindowTag(TagFromIndex(2))
	if want := TagFromIndex(1).Union(TagFromIndex(2)); w.Tags != want {
		t.Fatalf("tags = %b, want %b", w.Tags, want)
	}
	if w.Hidden() {
		t.Fatal("window still on a visible tag must stay shown")
	}
}

func TestFocusWindowNextPrevCycle(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 100, Height: 100})
	addTestWindow(s, 2, TagFromIndex(1), Rect{X: 200, Width: 100, Height: 100})
	addTestWindow(s, 3, TagFromIndex(1), Rect{X: 400, Width: 100, Height: 100})
	s.FocusedWindow = 3

	w, ok := s.FocusWindow(DirNext)
	if !ok || w.ID != 1 {
		t.Fatalf("next from 3 = %v, want wrap to 1", w)
	}
	w, ok = s.FocusWindow(DirPrev)
	if !ok || w.ID != 3 {
		t.Fatalf("prev from 1 = %v, want wrap to 3", w)
	}
}

func TestFocusWindowDirectional(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(1), Rect{X: 0, Y: 0, Width: 600, Height: 500})
	addTestWindow(s, 2, TagFromIndex(1), Rect{X: 700, Y: 0, Width: 600, Height: 500})
	addTestWindow(s, 3, TagFromIndex(1), Rect{X: 0, Y: 540, Width: 600, Height: 500})
	s.FocusedWindow = 1

	w, ok := s.FocusWindow(DirRight)
	if !ok || w.ID != 2 {
		t.Fatalf("focus right = %v, want window 2", w)
	}
	s.FocusedWindow = 1
	w, ok = s.FocusWindow(DirDown)
	if !ok || w.ID != 3 {
		t.Fatalf("focus down = %v, want window 3", w)
	}
	if _, ok := s.FocusWindow(DirDown); ok {
		t.Fatal("no window below window 3, expected no-op")
	}
}

func TestFocusWindowSkipsHidden(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 100, Height: 100})
	addTestWindow(s, 2, TagFromIndex(2), Rect{X: 200, Width: 100, Height: 100})
	s.FocusedWindow = 1
	s.ViewTag(TagFromIndex(1))

	w, ok := s.FocusWindow(DirNext)
	if !ok || w.ID != 1 {
		t.Fatalf("next = %v, want to stay on lone visible window 1", w)
	}
}

func TestSendToOutput(t *testing.T) {
	s := NewState("byobu")
	s.SyncDisplays([]DisplayInfo{
		{ID: 1, Frame: Rect{Width: 1920, Height: 1080}},
		{ID: 2, Frame: Rect{X: 1920, Width: 1920, Height: 1080}},
	})
	s.FocusedDisplay = 1
	w := addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 960, Height: 1080})
	s.FocusedWindow = 1

	_, retile, ok := s.SendToOutput(DirNext)
	if !ok {
		t.Fatal("send should succeed with two displays")
	}
	if w.Display != 2 {
		t.Fatalf("window display = %d, want 2", w.Display)
	}
	if s.FocusedDisplay != 2 {
		t.Fatalf("focused display = %d, want 2", s.FocusedDisplay)
	}
	if diff := cmp.Diff([]DisplayID{1, 2}, retile); diff != "" {
		t.Fatalf("retile mismatch (-want +got):\n%s", diff)
	}
}

func TestSendToOutputSingleDisplayNoop(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 100, Height: 100})
	s.FocusedWindow = 1
	if _, _, ok := s.SendToOutput(DirNext); ok {
		t.Fatal("send with one display should be a no-op")
	}
}

func TestFocusOutputCycles(t *testing.T) {
	s := NewState("byobu")
	s.SyncDisplays([]DisplayInfo{
		{ID: 1, Frame: Rect{Width: 1920, Height: 1080}},
		{ID: 2, Frame: Rect{X: 1920, Width: 1920, Height: 1080}},
	})
	s.FocusedDisplay = 1
	addTestWindow(s, 5, TagFromIndex(1), Rect{X: 2000, Width: 100, Height: 100})
	s.Windows[5].Display = 2

	w, ok := s.FocusOutput(DirNext)
	if s.FocusedDisplay != 2 {
		t.Fatalf("focused display = %d, want 2", s.FocusedDisplay)
	}
	if !ok || w.ID != 5 {
		t.Fatalf("focus output should land on window 5, got %v", w)
	}

	s.FocusOutput(DirNext)
	if s.FocusedDisplay != 1 {
		t.Fatalf("focused display = %d, want wrap to 1", s.FocusedDisplay)
	}
}

func TestEnsureFocusVisible(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 100, Height: 100})
	addTestWindow(s, 2, TagFromIndex(2), Rect{X: 200, Width: 100, Height: 100})
	s.FocusedWindow = 2
	s.ViewTag(TagFromIndex(1))

	w, changed := s.EnsureFocusVisible()
	if !changed || w == nil || w.ID != 1 {
		t.Fatalf("focus should fall to window 1, got %v changed=%v", w, changed)
	}
	if s.FocusedWindow != 1 {
		t.Fatalf("focused window = %d, want 1", s.FocusedWindow)
	}

	if _, changed := s.EnsureFocusVisible(); changed {
		t.Fatal("second pass should be a no-op")
	}
}

func TestSyncAllAddsWithVisibleTags(t *testing.T) {
	s := testState()
	s.ViewTag(TagFromIndex(4))

	s.SyncAll([]WindowInfo{
		{ID: 7, PID: 700, AppName: "term", Title: "sh", Frame: Rect{X: 10, Y: 10, Width: 100, Height: 100}},
	})
	w := s.Windows[7]
	if w == nil {
		t.Fatal("window 7 not tracked after sync")
	}
	if w.Tags != TagFromIndex(4) {
		t.Fatalf("tags = %b, want the display's visible tag 4", w.Tags)
	}
	if w.Display != 1 {
		t.Fatalf("display = %d, want 1", w.Display)
	}
}

func TestSyncAllRemovesAndClearsFocus(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 100, Height: 100})
	s.FocusedWindow = 1

	s.SyncAll(nil)
	if len(s.Windows) != 0 {
		t.Fatalf("got %d windows, want 0", len(s.Windows))
	}
	if s.FocusedWindow != 0 {
		t.Fatalf("focused window = %d, want cleared", s.FocusedWindow)
	}
}

func TestSyncAllKeepsHiddenGeometry(t *testing.T) {
	s := testState()
	orig := Rect{X: 5, Y: 5, Width: 300, Height: 300}
	a := addTestWindow(s, 1, TagFromIndex(1), orig)
	s.ViewTag(TagFromIndex(2))

	// The parked frame comes back in the snapshot; it must not clobber the
	// saved geometry or reassign the display.
	s.SyncAll([]WindowInfo{{ID: 1, PID: 100, Frame: a.Frame}})
	if !a.Hidden() {
		t.Fatal("window should remain hidden across sync")
	}
	if *a.SavedFrame != orig {
		t.Fatalf("saved frame = %+v, want %+v", *a.SavedFrame, orig)
	}
	if a.Display != 1 {
		t.Fatalf("display = %d, want 1", a.Display)
	}
}

func TestSyncPIDScopesToProcess(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 100, Height: 100}) // pid 100
	addTestWindow(s, 2, TagFromIndex(1), Rect{X: 200, Width: 100, Height: 100}) // pid 200

	// pid 100 lost its window; pid 200's window is absent from the filtered
	// snapshot but must survive.
	s.SyncPID([]WindowInfo{{ID: 2, PID: 200, Frame: Rect{X: 200, Width: 100, Height: 100}}}, 100)
	if _, ok := s.Windows[1]; ok {
		t.Fatal("window 1 should be removed")
	}
	if _, ok := s.Windows[2]; !ok {
		t.Fatal("window 2 belongs to another pid and must survive")
	}
}

func TestSyncDisplaysPreservesWorkspace(t *testing.T) {
	s := NewState("byobu")
	s.SyncDisplays([]DisplayInfo{{ID: 1, Frame: Rect{Width: 1920, Height: 1080}}})
	s.FocusedDisplay = 1
	s.ViewTag(TagFromIndex(5))

	s.SyncDisplays([]DisplayInfo{
		{ID: 1, Frame: Rect{Width: 2560, Height: 1440}},
		{ID: 2, Frame: Rect{X: 2560, Width: 1920, Height: 1080}},
	})
	d1 := s.Display(1)
	if d1.VisibleTags != TagFromIndex(5) {
		t.Fatalf("display 1 visible = %b, want tag 5 preserved", d1.VisibleTags)
	}
	if d1.Frame.Width != 2560 {
		t.Fatalf("display 1 width = %d, want refreshed to 2560", d1.Frame.Width)
	}
	d2 := s.Display(2)
	if d2.VisibleTags != TagFromIndex(1) {
		t.Fatalf("new display visible = %b, want tag 1", d2.VisibleTags)
	}
}

func TestSyncDisplaysMigratesStrandedWindows(t *testing.T) {
	s := NewState("byobu")
	s.SyncDisplays([]DisplayInfo{
		{ID: 1, Frame: Rect{Width: 1920, Height: 1080}},
		{ID: 2, Frame: Rect{X: 1920, Width: 1920, Height: 1080}},
	})
	s.FocusedDisplay = 1
	w := addTestWindow(s, 1, TagFromIndex(1), Rect{X: 2000, Width: 100, Height: 100})
	w.Display = 2

	s.SyncDisplays([]DisplayInfo{{ID: 1, Frame: Rect{Width: 1920, Height: 1080}}})
	if w.Display != 1 {
		t.Fatalf("window display = %d, want migrated to 1", w.Display)
	}
}

func TestSyncFocusFollowsDisplay(t *testing.T) {
	s := NewState("byobu")
	s.SyncDisplays([]DisplayInfo{
		{ID: 1, Frame: Rect{Width: 1920, Height: 1080}},
		{ID: 2, Frame: Rect{X: 1920, Width: 1920, Height: 1080}},
	})
	s.FocusedDisplay = 1
	w := addTestWindow(s, 9, TagFromIndex(1), Rect{X: 2100, Width: 100, Height: 100})
	w.Display = 2

	if !s.SyncFocus(9, true) {
		t.Fatal("focus change should be reported")
	}
	if s.FocusedDisplay != 2 {
		t.Fatalf("focused display = %d, want 2", s.FocusedDisplay)
	}
	if s.SyncFocus(9, true) {
		t.Fatal("same focus again should not report a change")
	}
}

func TestAutoViewFocused(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(3), Rect{Width: 100, Height: 100})
	s.ViewTag(TagFromIndex(1))
	s.SyncFocus(1, true)

	moves, fired := s.AutoViewFocused()
	if !fired {
		t.Fatal("hidden focused window should trigger a tag switch")
	}
	d := s.Display(1)
	if d.VisibleTags != TagFromIndex(3) {
		t.Fatalf("visible = %b, want tag 3", d.VisibleTags)
	}
	if len(moves) != 1 {
		t.Fatalf("got %d moves, want the restore of window 1", len(moves))
	}

	if _, fired := s.AutoViewFocused(); fired {
		t.Fatal("already-visible focused window must not re-fire")
	}
}

func TestAutoViewFocusedOtherDisplayNoop(t *testing.T) {
	s := NewState("byobu")
	s.SyncDisplays([]DisplayInfo{
		{ID: 1, Frame: Rect{Width: 1920, Height: 1080}},
		{ID: 2, Frame: Rect{X: 1920, Width: 1920, Height: 1080}},
	})
	s.FocusedDisplay = 1
	w := addTestWindow(s, 1, TagFromIndex(3), Rect{X: 2000, Width: 100, Height: 100})
	w.Display = 2
	s.FocusedWindow = 1
	s.FocusedDisplay = 1

	if _, fired := s.AutoViewFocused(); fired {
		t.Fatal("rule must only fire on the focused display")
	}
}

func visibleIDs(s *State, d *Display) []WindowID {
	var ids []WindowID
	for _, w := range s.VisibleWindows(d) {
		ids = append(ids, w.ID)
	}
	return ids
}

func TestSwapWindowNextAndPrev(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 640, Height: 1080})
	addTestWindow(s, 2, TagFromIndex(1), Rect{X: 640, Width: 640, Height: 1080})
	addTestWindow(s, 3, TagFromIndex(1), Rect{X: 1280, Width: 640, Height: 1080})
	s.FocusedWindow = 1

	if _, ok := s.SwapWindow(DirNext); !ok {
		t.Fatal("swap next should succeed")
	}
	if diff := cmp.Diff([]WindowID{2, 1, 3}, visibleIDs(s, s.Display(1))); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if s.FocusedWindow != 1 {
		t.Fatalf("focus = %d, swapping must not move focus", s.FocusedWindow)
	}

	if _, ok := s.SwapWindow(DirPrev); !ok {
		t.Fatal("swap prev should succeed")
	}
	if diff := cmp.Diff([]WindowID{1, 2, 3}, visibleIDs(s, s.Display(1))); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSwapWindowDirectional(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 960, Height: 1080})
	addTestWindow(s, 2, TagFromIndex(1), Rect{X: 960, Width: 960, Height: 1080})
	s.FocusedWindow = 1

	if _, ok := s.SwapWindow(DirLeft); ok {
		t.Fatal("nothing to the left, swap must be a no-op")
	}
	if _, ok := s.SwapWindow(DirRight); !ok {
		t.Fatal("swap right should pick window 2")
	}
	if diff := cmp.Diff([]WindowID{2, 1}, visibleIDs(s, s.Display(1))); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSwapWindowOrderSurvivesTagRoundTrip(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 960, Height: 1080})
	addTestWindow(s, 2, TagFromIndex(1), Rect{X: 960, Width: 960, Height: 1080})
	s.FocusedWindow = 1
	s.SwapWindow(DirNext)

	s.ViewTag(TagFromIndex(2))
	s.ViewTag(TagFromIndex(1))

	if diff := cmp.Diff([]WindowID{2, 1}, visibleIDs(s, s.Display(1))); diff != "" {
		t.Fatalf("order mismatch after round trip (-want +got):\n%s", diff)
	}
}

func TestSwapWindowRequiresVisibleFocus(t *testing.T) {
	s := testState()
	addTestWindow(s, 1, TagFromIndex(1), Rect{Width: 960, Height: 1080})
	addTestWindow(s, 2, TagFromIndex(1), Rect{X: 960, Width: 960, Height: 1080})

	if _, ok := s.SwapWindow(DirNext); ok {
		t.Fatal("no focused window, swap must be a no-op")
	}

	s.FocusedWindow = 1
	s.ViewTag(TagFromIndex(2))
	if _, ok := s.SwapWindow(DirNext); ok {
		t.Fatal("hidden focused window, swap must be a no-op")
	}
}
