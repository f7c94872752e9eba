package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tagtile/tagtile/internal/ipc"
)

const (
	ServerName    = "tagtile"
	ServerVersion = "0.1.0"
)

// Daemon is the control surface the MCP tools drive. Satisfied by
// ipc.Client; faked in tests.
type Daemon interface {
	ViewTag(tag uint, output *uint32) error
	ToggleViewTag(tag uint, output *uint32) error
	ViewTagLast() error
	MoveToTag(tag uint) error
	ToggleWindowTag(tag uint) error
	FocusWindow(direction string) error
	SwapWindow(direction string) error
	FocusOutput(direction string) error
	SendToOutput(direction string) error
	Retile(output *uint32) error
	SetLayout(tag *uint, output *uint32, name string) error
	GetLayout(tag *uint, output *uint32) (string, error)
	LayoutCmd(cmd string, args []string) error
	ListWindows() (*ipc.WindowsData, error)
	ListOutputs() (*ipc.OutputsData, error)
	GetState() (*ipc.StateData, error)
	ExecOrFocus(app, command string) error
}

// Server exposes the daemon's control protocol as MCP tools over stdio.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server talking to the daemon over IPC.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "view_tag",
		Description: "Switch a display to a workspace tag. With toggle, flips the tag in the visible set instead of replacing it. Targets the focused display unless output names one.",
	}, s.handleViewTag)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "view_tag_last",
		Description: "Switch the focused display back to the previously viewed tags.",
	}, s.handleViewTagLast)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_to_tag",
		Description: "Move the focused window to a tag. With toggle, flips the tag on the window instead of replacing its tags.",
	}, s.handleMoveToTag)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Move window focus: next/prev cycle the visible windows, left/right/up/down pick by direction.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "swap_window",
		Description: "Swap the focused window's layout slot with a neighbor: next/prev by visual order, left/right/up/down by direction.",
	}, s.handleSwapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_output",
		Description: "Move display focus to the next or previous display.",
	}, s.handleFocusOutput)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "send_to_output",
		Description: "Send the focused window to the next or previous display.",
	}, s.handleSendToOutput)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "retile",
		Description: "Recompute and apply window layout on every display with windows, or on one explicit output.",
	}, s.handleRetile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_layout",
		Description: "Get the layout engine name for a tag, for an explicit output, or for the focused display when neither is given.",
	}, s.handleGetLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_layout",
		Description: "Set the layout engine for a tag (takes effect when the tag is next viewed), or for a display immediately when no tag is given.",
	}, s.handleSetLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "layout_cmd",
		Description: "Forward a free-form command (gaps, ratios, rotation) to the focused display's active layout engine.",
	}, s.handleLayoutCmd)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List all tracked windows with their tags, display, geometry and focus state.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_outputs",
		Description: "List all displays with their visible tags, active layout and focus state.",
	}, s.handleListOutputs)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_state",
		Description: "Fetch the full daemon state snapshot: displays, windows, focus pointers and layout mapping.",
	}, s.handleGetState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "exec_or_focus",
		Description: "Focus an existing window of the named application, or run the shell command to launch it.",
	}, s.handleExecOrFocus)
}
