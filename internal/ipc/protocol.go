package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandViewTag          CommandType = "VIEW_TAG"
	CommandToggleViewTag    CommandType = "TOGGLE_VIEW_TAG"
	CommandViewTagLast      CommandType = "VIEW_TAG_LAST"
	CommandMoveToTag        CommandType = "MOVE_TO_TAG"
	CommandToggleWindowTag  CommandType = "TOGGLE_WINDOW_TAG"
	CommandFocusWindow      CommandType = "FOCUS_WINDOW"
	CommandSwapWindow       CommandType = "SWAP_WINDOW"
	CommandFocusOutput      CommandType = "FOCUS_OUTPUT"
	CommandSendToOutput     CommandType = "SEND_TO_OUTPUT"
	CommandRetile           CommandType = "RETILE"
	CommandSetDefaultLayout CommandType = "SET_DEFAULT_LAYOUT"
	CommandSetLayout        CommandType = "SET_LAYOUT"
	CommandGetLayout        CommandType = "GET_LAYOUT"
	CommandLayoutCmd        CommandType = "LAYOUT_CMD"
	CommandBind             CommandType = "BIND"
	CommandUnbind           CommandType = "UNBIND"
	CommandListBindings     CommandType = "LIST_BINDINGS"
	CommandListWindows      CommandType = "LIST_WINDOWS"
	CommandListOutputs      CommandType = "LIST_OUTPUTS"
	CommandGetState         CommandType = "GET_STATE"
	CommandFocusedWindow    CommandType = "FOCUSED_WINDOW"
	CommandExec             CommandType = "EXEC"
	CommandExecOrFocus      CommandType = "EXEC_OR_FOCUS"
	CommandQuit             CommandType = "QUIT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// TagPayload carries a 1-based tag index for the tag commands. Output
// targets an explicit display for the view commands; nil means the focused
// display.
type TagPayload struct {
	Tag    uint    `json:"tag"`
	Output *uint32 `json:"output,omitempty"`
}

// DirectionPayload carries next/prev/left/right/up/down.
type DirectionPayload struct {
	Direction string `json:"direction"`
}

type SetDefaultLayoutPayload struct {
	Name string `json:"name"`
}

// SetLayoutPayload targets one tag's mapping, an explicit display's active
// layout, or the focused display's when both Tag and Output are nil.
type SetLayoutPayload struct {
	Tag    *uint   `json:"tag,omitempty"`
	Output *uint32 `json:"output,omitempty"`
	Name   string  `json:"name"`
}

type GetLayoutPayload struct {
	Tag    *uint   `json:"tag,omitempty"`
	Output *uint32 `json:"output,omitempty"`
}

// RetilePayload optionally narrows a retile to one display.
type RetilePayload struct {
	Output *uint32 `json:"output,omitempty"`
}

// LayoutCmdPayload is a free-form verb forwarded to the active layout
// engine.
type LayoutCmdPayload struct {
	Cmd  string   `json:"cmd"`
	Args []string `json:"args,omitempty"`
}

// BindPayload attaches a full request to a hotkey combo.
type BindPayload struct {
	Hotkey  string  `json:"hotkey"`
	Command Request `json:"command"`
}

type UnbindPayload struct {
	Hotkey string `json:"hotkey"`
}

type ExecPayload struct {
	Command string `json:"command"`
}

// ExecOrFocusPayload focuses an existing window of the named application, or
// runs the command when none is tracked.
type ExecOrFocusPayload struct {
	App     string `json:"app"`
	Command string `json:"command"`
}

// WindowInfo is one window as reported by LIST_WINDOWS and GET_STATE.
type WindowInfo struct {
	ID      uint32 `json:"id"`
	PID     int    `json:"pid"`
	AppName string `json:"app_name,omitempty"`
	Title   string `json:"title,omitempty"`
	Tags    uint32 `json:"tags"`
	Output  uint32 `json:"output"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Hidden  bool   `json:"hidden,omitempty"`
	Focused bool   `json:"focused,omitempty"`
}

type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// OutputInfo is one display as reported by LIST_OUTPUTS and GET_STATE.
type OutputInfo struct {
	ID          uint32 `json:"id"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	VisibleTags uint32 `json:"visible_tags"`
	Layout      string `json:"layout"`
	Focused     bool   `json:"focused,omitempty"`
}

type OutputsData struct {
	Outputs []OutputInfo `json:"outputs"`
}

// BindingInfo is one hotkey binding as reported by LIST_BINDINGS.
type BindingInfo struct {
	Hotkey  string  `json:"hotkey"`
	Command Request `json:"command"`
}

type BindingsData struct {
	Bindings []BindingInfo `json:"bindings"`
}

type LayoutData struct {
	Name string `json:"name"`
}

type FocusedWindowData struct {
	ID uint32 `json:"id"`
}

// StateData is the full daemon snapshot returned by GET_STATE. Tag layout
// keys are decimal tag indices; JSON object keys are strings and downstream
// schema generators reject integer-keyed maps.
type StateData struct {
	Outputs       []OutputInfo      `json:"outputs"`
	Windows       []WindowInfo      `json:"windows"`
	FocusedOutput uint32            `json:"focused_output"`
	FocusedWindow uint32            `json:"focused_window,omitempty"`
	DefaultLayout string            `json:"default_layout"`
	TagLayouts    map[string]string `json:"tag_layouts,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// NewRequest builds a request with a marshalled payload.
func NewRequest(cmd CommandType, payload interface{}) (*Request, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
		req.Payload = data
	}
	return req, nil
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
