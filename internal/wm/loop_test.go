package wm

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/tagtile/tagtile/internal/core"
	"github.com/tagtile/tagtile/internal/ipc"
	"github.com/tagtile/tagtile/internal/platform"
)

func newTestLoop(t *testing.T, fake *platform.Fake, settings Settings) (*Loop, *fakeEngines, func()) {
	t.Helper()
	if settings.NumTags == 0 {
		settings.NumTags = 9
	}
	if settings.DefaultLayout == "" {
		settings.DefaultLayout = "byobu"
	}
	settings.EngineTimeout = time.Second

	l := NewLoop(fake, fake, fake, settings, testLogger())
	engines := &fakeEngines{}
	l.engines = engines
	l.exec = NewExecutor(fake, fake, engines, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	cleanup := func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("loop did not stop")
		}
	}
	return l, engines, cleanup
}

func getState(t *testing.T, l *Loop) ipc.StateData {
	t.Helper()
	req, _ := ipc.NewRequest(ipc.CommandGetState, nil)
	resp := l.Submit(req)
	if resp.Status != "OK" {
		t.Fatalf("GET_STATE failed: %+v", resp)
	}
	var data ipc.StateData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("state decode failed: %v", err)
	}
	return data
}

func twoWindowFake() *platform.Fake {
	fake := platform.NewFake()
	fake.DisplayList = []core.DisplayInfo{
		{ID: 1, Frame: core.Rect{Width: 1920, Height: 1080}},
	}
	fake.WindowList = []core.WindowInfo{
		{ID: 1, PID: 100, AppName: "term", Frame: core.Rect{X: 0, Y: 0, Width: 960, Height: 1080}},
		{ID: 2, PID: 200, AppName: "editor", Frame: core.Rect{X: 960, Y: 0, Width: 960, Height: 1080}},
	}
	fake.Focused = 1
	return fake
}

func TestLoopViewTagEndToEnd(t *testing.T) {
	fake := twoWindowFake()
	l, engines, cleanup := newTestLoop(t, fake, Settings{})
	defer cleanup()

	req, _ := ipc.NewRequest(ipc.CommandViewTag, ipc.TagPayload{Tag: 2})
	resp := l.Submit(req)
	if resp.Status != "OK" {
		t.Fatalf("VIEW_TAG failed: %+v", resp)
	}

	st := getState(t, l)
	if st.Outputs[0].VisibleTags != 2 {
		t.Fatalf("visible tags = %b, want tag 2", st.Outputs[0].VisibleTags)
	}
	for _, w := range st.Windows {
		if !w.Hidden {
			t.Fatalf("window %d should be hidden after viewing empty tag 2", w.ID)
		}
	}
	// Both initial-sync and post-command retiles happened on the loop
	// goroutine; the empty tag 2 view itself triggers no engine call.
	if len(engines.LayoutCalls) == 0 {
		t.Fatal("initial sync should have retiled display 1")
	}
}

func TestLoopQuitStops(t *testing.T) {
	fake := twoWindowFake()
	l, _, _ := newTestLoop(t, fake, Settings{})

	req, _ := ipc.NewRequest(ipc.CommandQuit, nil)
	resp := l.Submit(req)
	if resp.Status != "OK" {
		t.Fatalf("QUIT failed: %+v", resp)
	}

	select {
	case <-l.done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after QUIT")
	}

	resp = l.Submit(req)
	if resp.Status != "ERROR" {
		t.Fatal("requests after shutdown must be rejected")
	}
}

func TestLoopHotkeyDispatch(t *testing.T) {
	fake := twoWindowFake()
	viewTag2, _ := ipc.NewRequest(ipc.CommandViewTag, ipc.TagPayload{Tag: 2})
	l, _, cleanup := newTestLoop(t, fake, Settings{
		Bindings: map[string]ipc.Request{"alt-2": *viewTag2},
	})
	defer cleanup()

	l.TriggerHotkey("alt-2")

	st := getState(t, l)
	if st.Outputs[0].VisibleTags != 2 {
		t.Fatalf("visible tags = %b, want tag 2 after hotkey", st.Outputs[0].VisibleTags)
	}
	if len(fake.CapturedKeys) != 1 || fake.CapturedKeys[0] != "alt-2" {
		t.Fatalf("captured combos = %v", fake.CapturedKeys)
	}
}

func TestLoopAutoViewOnExternalFocus(t *testing.T) {
	fake := twoWindowFake()
	l, _, cleanup := newTestLoop(t, fake, Settings{})
	defer cleanup()

	// Hide both windows, then let the OS report window 1 focused.
	req, _ := ipc.NewRequest(ipc.CommandViewTag, ipc.TagPayload{Tag: 3})
	if resp := l.Submit(req); resp.Status != "OK" {
		t.Fatalf("VIEW_TAG failed: %+v", resp)
	}

	fake.Focused = 1
	l.NotifyEvent(platform.Event{Kind: platform.EventFocusChanged})

	st := getState(t, l)
	if st.Outputs[0].VisibleTags != 1 {
		t.Fatalf("visible tags = %b, want switch back to tag 1", st.Outputs[0].VisibleTags)
	}
	for _, w := range st.Windows {
		if w.ID == 1 && w.Hidden {
			t.Fatal("externally focused window must be visible again")
		}
	}
}

func TestLoopExternalFocusAcrossDisplaysKeepsTags(t *testing.T) {
	fake := platform.NewFake()
	fake.DisplayList = []core.DisplayInfo{
		{ID: 1, Frame: core.Rect{Width: 1920, Height: 1080}},
		{ID: 2, Frame: core.Rect{X: 1920, Width: 1920, Height: 1080}},
	}
	fake.WindowList = []core.WindowInfo{
		{ID: 1, PID: 100, AppName: "term", Frame: core.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{ID: 2, PID: 200, AppName: "editor", Frame: core.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}},
	}
	fake.Focused = 1
	l, _, cleanup := newTestLoop(t, fake, Settings{})
	defer cleanup()

	// Hide window 2 by switching display 2 to an empty tag; display 1 keeps
	// focus throughout.
	output := uint32(2)
	req, _ := ipc.NewRequest(ipc.CommandViewTag, ipc.TagPayload{Tag: 3, Output: &output})
	if resp := l.Submit(req); resp.Status != "OK" {
		t.Fatalf("VIEW_TAG failed: %+v", resp)
	}

	// The OS reports window 2 focused. Display focus follows the window, but
	// the automatic tag switch only covers the display that held focus:
	// display 2's view must stay on tag 3.
	fake.Focused = 2
	l.NotifyEvent(platform.Event{Kind: platform.EventFocusChanged})

	st := getState(t, l)
	if st.FocusedOutput != 2 {
		t.Fatalf("focused output = %d, want 2", st.FocusedOutput)
	}
	if st.Outputs[1].VisibleTags != 4 {
		t.Fatalf("display 2 visible tags = %b, want tag 3 untouched", st.Outputs[1].VisibleTags)
	}
}

func TestLoopWindowsChangedSync(t *testing.T) {
	fake := twoWindowFake()
	l, _, cleanup := newTestLoop(t, fake, Settings{})
	defer cleanup()

	fake.WindowList = append(fake.WindowList, core.WindowInfo{
		ID: 3, PID: 300, AppName: "browser",
		Frame: core.Rect{X: 100, Y: 100, Width: 800, Height: 600},
	})
	l.NotifyEvent(platform.Event{Kind: platform.EventWindowsChanged})

	st := getState(t, l)
	if len(st.Windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(st.Windows))
	}
	for _, w := range st.Windows {
		if w.ID == 3 && w.Tags != 1 {
			t.Fatalf("new window tags = %b, want the visible tag 1", w.Tags)
		}
	}
}

func TestLoopReloadAppliesSettings(t *testing.T) {
	fake := twoWindowFake()
	l, _, cleanup := newTestLoop(t, fake, Settings{})
	defer cleanup()

	l.Reload(Settings{
		NumTags:       4,
		DefaultLayout: "tatami",
		EngineTimeout: time.Second,
	})

	req, _ := ipc.NewRequest(ipc.CommandViewTag, ipc.TagPayload{Tag: 5})
	if resp := l.Submit(req); resp.Status != "ERROR" {
		t.Fatal("tag 5 must be rejected after num_tags dropped to 4")
	}

	st := getState(t, l)
	if st.DefaultLayout != "tatami" {
		t.Fatalf("default layout = %q, want tatami", st.DefaultLayout)
	}
}
