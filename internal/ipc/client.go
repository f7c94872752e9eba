package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/tagtile/tagtile/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) send(cmd CommandType, payload interface{}) (*Response, error) {
	req, err := NewRequest(cmd, payload)
	if err != nil {
		return nil, err
	}
	return c.sendRequest(req)
}

// ViewTag switches an output to exactly the given tag; nil output means the
// focused one.
func (c *Client) ViewTag(tag uint, output *uint32) error {
	_, err := c.send(CommandViewTag, TagPayload{Tag: tag, Output: output})
	return err
}

// ToggleViewTag flips the given tag in an output's visible set; nil output
// means the focused one.
func (c *Client) ToggleViewTag(tag uint, output *uint32) error {
	_, err := c.send(CommandToggleViewTag, TagPayload{Tag: tag, Output: output})
	return err
}

// ViewTagLast switches back to the previously viewed tags.
func (c *Client) ViewTagLast() error {
	_, err := c.send(CommandViewTagLast, nil)
	return err
}

// MoveToTag moves the focused window to exactly the given tag.
func (c *Client) MoveToTag(tag uint) error {
	_, err := c.send(CommandMoveToTag, TagPayload{Tag: tag})
	return err
}

// ToggleWindowTag flips the given tag on the focused window.
func (c *Client) ToggleWindowTag(tag uint) error {
	_, err := c.send(CommandToggleWindowTag, TagPayload{Tag: tag})
	return err
}

// FocusWindow moves window focus in a direction (next/prev/left/right/up/down).
func (c *Client) FocusWindow(direction string) error {
	_, err := c.send(CommandFocusWindow, DirectionPayload{Direction: direction})
	return err
}

// SwapWindow exchanges the focused window's layout slot with its neighbor in
// a direction (next/prev/left/right/up/down).
func (c *Client) SwapWindow(direction string) error {
	_, err := c.send(CommandSwapWindow, DirectionPayload{Direction: direction})
	return err
}

// FocusOutput moves display focus (next/prev).
func (c *Client) FocusOutput(direction string) error {
	_, err := c.send(CommandFocusOutput, DirectionPayload{Direction: direction})
	return err
}

// SendToOutput sends the focused window to a neighboring display.
func (c *Client) SendToOutput(direction string) error {
	_, err := c.send(CommandSendToOutput, DirectionPayload{Direction: direction})
	return err
}

// Retile re-runs layout on every display with windows, or on one explicit
// output.
func (c *Client) Retile(output *uint32) error {
	_, err := c.send(CommandRetile, RetilePayload{Output: output})
	return err
}

// SetDefaultLayout replaces the default layout engine name.
func (c *Client) SetDefaultLayout(name string) error {
	_, err := c.send(CommandSetDefaultLayout, SetDefaultLayoutPayload{Name: name})
	return err
}

// SetLayout sets the layout for a tag, for an explicit output, or for the
// focused display when both are nil.
func (c *Client) SetLayout(tag *uint, output *uint32, name string) error {
	_, err := c.send(CommandSetLayout, SetLayoutPayload{Tag: tag, Output: output, Name: name})
	return err
}

// GetLayout resolves the layout for a tag, for an explicit output, or the
// focused display's active layout when both are nil.
func (c *Client) GetLayout(tag *uint, output *uint32) (string, error) {
	resp, err := c.send(CommandGetLayout, GetLayoutPayload{Tag: tag, Output: output})
	if err != nil {
		return "", err
	}
	var data LayoutData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", fmt.Errorf("failed to parse layout data: %w", err)
	}
	return data.Name, nil
}

// LayoutCmd forwards a free-form command to the active layout engine.
func (c *Client) LayoutCmd(cmd string, args []string) error {
	_, err := c.send(CommandLayoutCmd, LayoutCmdPayload{Cmd: cmd, Args: args})
	return err
}

// Bind attaches a command to a hotkey combo.
func (c *Client) Bind(hotkey string, command *Request) error {
	_, err := c.send(CommandBind, BindPayload{Hotkey: hotkey, Command: *command})
	return err
}

// Unbind removes a hotkey binding.
func (c *Client) Unbind(hotkey string) error {
	_, err := c.send(CommandUnbind, UnbindPayload{Hotkey: hotkey})
	return err
}

// ListBindings retrieves the current hotkey bindings.
func (c *Client) ListBindings() (*BindingsData, error) {
	resp, err := c.send(CommandListBindings, nil)
	if err != nil {
		return nil, err
	}
	var data BindingsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse bindings data: %w", err)
	}
	return &data, nil
}

// ListWindows retrieves all tracked windows.
func (c *Client) ListWindows() (*WindowsData, error) {
	resp, err := c.send(CommandListWindows, nil)
	if err != nil {
		return nil, err
	}
	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}
	return &data, nil
}

// ListOutputs retrieves all displays with their workspace state.
func (c *Client) ListOutputs() (*OutputsData, error) {
	resp, err := c.send(CommandListOutputs, nil)
	if err != nil {
		return nil, err
	}
	var data OutputsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse outputs data: %w", err)
	}
	return &data, nil
}

// GetState retrieves the full daemon state snapshot.
func (c *Client) GetState() (*StateData, error) {
	resp, err := c.send(CommandGetState, nil)
	if err != nil {
		return nil, err
	}
	var data StateData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse state data: %w", err)
	}
	return &data, nil
}

// FocusedWindow retrieves the focused window id; errors when none.
func (c *Client) FocusedWindow() (uint32, error) {
	resp, err := c.send(CommandFocusedWindow, nil)
	if err != nil {
		return 0, err
	}
	var data FocusedWindowData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return 0, fmt.Errorf("failed to parse focused-window data: %w", err)
	}
	return data.ID, nil
}

// Exec asks the daemon to run a shell command.
func (c *Client) Exec(command string) error {
	_, err := c.send(CommandExec, ExecPayload{Command: command})
	return err
}

// ExecOrFocus focuses an existing window of the app, or runs the command.
func (c *Client) ExecOrFocus(app, command string) error {
	_, err := c.send(CommandExecOrFocus, ExecOrFocusPayload{App: app, Command: command})
	return err
}

// Quit asks the daemon to shut down.
func (c *Client) Quit() error {
	_, err := c.send(CommandQuit, nil)
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetState()
	return err
}
