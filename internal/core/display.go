package core

// DisplayID identifies a physical display. Ids come from the window system
// and stay stable across sync passes.
type DisplayID uint32

// Display is a monitor's usable drawing area plus its workspace state.
type Display struct {
	ID    DisplayID
	Frame Rect // usable area, excludes system chrome

	VisibleTags         Tag
	PreviousVisibleTags Tag

	// CurrentLayout is the layout engine actually driving this display's
	// last retile; empty means the default layout applies. It changes only
	// through view-tag (tag's configured layout) or an explicit set-layout,
	// never through a visibility-only toggle.
	CurrentLayout  string
	PreviousLayout string

	// WindowOrder is the visual order layout engines see. Hidden windows
	// keep their slot so a tag round trip preserves arrangement; newcomers
	// join at the end. Swaps exchange slots here.
	WindowOrder []WindowID
}

// NewDisplay returns a display showing tag 1 with no layout override.
func NewDisplay(id DisplayID, frame Rect) *Display {
	return &Display{
		ID:                  id,
		Frame:               frame,
		VisibleTags:         TagFromIndex(1),
		PreviousVisibleTags: TagFromIndex(1),
	}
}
