package mcp

import "github.com/tagtile/tagtile/internal/ipc"

// ViewTagInput is the input for the view_tag tool.
type ViewTagInput struct {
	Tag    uint    `json:"tag" jsonschema:"required,1-based tag index to view"`
	Toggle bool    `json:"toggle,omitempty" jsonschema:"When true, toggle the tag in the visible set instead of replacing it"`
	Output *uint32 `json:"output,omitempty" jsonschema:"Optional display id; omitted targets the focused display"`
}

// MoveToTagInput is the input for the move_to_tag tool.
type MoveToTagInput struct {
	Tag    uint `json:"tag" jsonschema:"required,1-based tag index"`
	Toggle bool `json:"toggle,omitempty" jsonschema:"When true, toggle the tag on the focused window instead of replacing its tags"`
}

// FocusInput is the input for the focus_window, swap_window, focus_output
// and send_to_output tools.
type FocusInput struct {
	Direction string `json:"direction" jsonschema:"required,One of next/prev (plus left/right/up/down for focus_window and swap_window)"`
}

// OKOutput reports plain success for tools with no payload.
type OKOutput struct {
	OK bool `json:"ok"`
}

// LayoutInput is the input for the get_layout and set_layout tools.
type LayoutInput struct {
	Tag    *uint   `json:"tag,omitempty" jsonschema:"Optional 1-based tag index; omitted targets a display"`
	Output *uint32 `json:"output,omitempty" jsonschema:"Optional display id; omitted targets the focused display"`
	Name   string  `json:"name,omitempty" jsonschema:"Layout engine name (set_layout only)"`
}

// RetileInput is the input for the retile tool.
type RetileInput struct {
	Output *uint32 `json:"output,omitempty" jsonschema:"Optional display id; omitted retiles every display with windows"`
}

// LayoutOutput is the output for the get_layout tool.
type LayoutOutput struct {
	Name string `json:"name"`
}

// LayoutCmdInput is the input for the layout_cmd tool.
type LayoutCmdInput struct {
	Cmd  string   `json:"cmd" jsonschema:"required,Free-form command verb forwarded to the active layout engine"`
	Args []string `json:"args,omitempty" jsonschema:"String arguments for the command"`
}

// ExecOrFocusInput is the input for the exec_or_focus tool.
type ExecOrFocusInput struct {
	App     string `json:"app" jsonschema:"required,Application name to match against tracked windows"`
	Command string `json:"command" jsonschema:"required,Shell command to run when no window of the app exists"`
}

// EmptyInput is the input for tools that take no arguments.
type EmptyInput struct{}

// WindowsOutput is the output for the list_windows tool.
type WindowsOutput struct {
	Windows []ipc.WindowInfo `json:"windows"`
}

// OutputsOutput is the output for the list_outputs tool.
type OutputsOutput struct {
	Outputs []ipc.OutputInfo `json:"outputs"`
}

// StateOutput is the output for the get_state tool.
type StateOutput struct {
	State ipc.StateData `json:"state"`
}
