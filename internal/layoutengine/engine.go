package layoutengine

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/tagtile/tagtile/internal/core"
)

// Placement is one window's computed geometry, relative to the display's
// usable area origin.
type Placement struct {
	ID     core.WindowID `json:"id"`
	X      int           `json:"x"`
	Y      int           `json:"y"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
}

// Wire messages. One JSON object per line in each direction, discriminated
// by the "type" field.
type layoutRequest struct {
	Type    string          `json:"type"`
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	Windows []core.WindowID `json:"windows"`
}

type commandRequest struct {
	Type string   `json:"type"`
	Cmd  string   `json:"cmd"`
	Args []string `json:"args"`
}

type reply struct {
	Type    string      `json:"type"` // "layout", "ok", "needs_retile", "error"
	Windows []Placement `json:"windows,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Engine owns exactly one running layout-engine subprocess and its stdio
// pipes. All access happens on the event-loop goroutine: strict
// one-request-one-reply, no pipelining.
type Engine struct {
	name    string
	argv    []string
	timeout time.Duration
	log     *slog.Logger

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	replies <-chan []byte
	running bool
	failed  bool
}

// newEngine returns an unspawned engine handle; the first request spawns
// the subprocess.
func newEngine(name string, argv []string, timeout time.Duration, log *slog.Logger) *Engine {
	return &Engine{name: name, argv: argv, timeout: timeout, log: log}
}

// newPipeEngine wires an engine over raw pipes instead of a subprocess.
// Used by tests; a failed pipe engine cannot respawn.
func newPipeEngine(name string, stdin io.WriteCloser, stdout io.Reader, timeout time.Duration, log *slog.Logger) *Engine {
	return &Engine{
		name:    name,
		timeout: timeout,
		log:     log,
		stdin:   stdin,
		replies: readLines(stdout),
		running: true,
	}
}

// readLines pumps stdout lines into a channel so round trips can time out
// without leaking a blocked read. The buffer lets the goroutine park a reply
// that arrived after its deadline and move on to EOF instead of blocking on
// the send forever. The channel closes on EOF or read error.
func readLines(r io.Reader) <-chan []byte {
	ch := make(chan []byte, 1)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			ch <- line
		}
	}()
	return ch
}

func (e *Engine) ensureRunning() error {
	if e.running && !e.failed {
		return nil
	}
	e.terminate()
	if len(e.argv) == 0 {
		return fmt.Errorf("layout engine %q is not respawnable", e.name)
	}

	cmd := exec.Command(e.argv[0], e.argv[1:]...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("layout engine %q: %w", e.name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("layout engine %q: %w", e.name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn layout engine %q: %w", e.name, err)
	}

	e.cmd = cmd
	e.stdin = stdin
	e.replies = readLines(stdout)
	e.running = true
	e.failed = false
	e.log.Info("spawned layout engine", "name", e.name, "pid", cmd.Process.Pid)
	return nil
}

// markFailed kills the subprocess if any and flags the engine so the next
// request respawns it. Per-engine internal state is lost on respawn.
func (e *Engine) markFailed() {
	e.failed = true
	if e.cmd != nil && e.cmd.Process != nil {
		e.cmd.Process.Kill()
		go e.cmd.Wait()
		e.cmd = nil
	}
}

// terminate stops the subprocess for good (respawn still possible via
// ensureRunning).
func (e *Engine) terminate() {
	if e.stdin != nil {
		e.stdin.Close()
		e.stdin = nil
	}
	if e.cmd != nil && e.cmd.Process != nil {
		e.cmd.Process.Kill()
		go e.cmd.Wait()
		e.cmd = nil
	}
	e.running = false
}

// roundTrip writes one request line and reads exactly one reply line,
// bounded by the engine timeout. Any failure marks the engine failed.
func (e *Engine) roundTrip(req interface{}) (reply, error) {
	if err := e.ensureRunning(); err != nil {
		return reply{}, err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return reply{}, fmt.Errorf("layout engine %q request: %w", e.name, err)
	}
	data = append(data, '\n')
	if _, err := e.stdin.Write(data); err != nil {
		e.markFailed()
		return reply{}, fmt.Errorf("layout engine %q write: %w", e.name, err)
	}

	select {
	case line, ok := <-e.replies:
		if !ok {
			e.markFailed()
			return reply{}, fmt.Errorf("layout engine %q exited", e.name)
		}
		var rep reply
		if err := json.Unmarshal(line, &rep); err != nil {
			e.markFailed()
			return reply{}, fmt.Errorf("layout engine %q sent malformed reply: %w", e.name, err)
		}
		return rep, nil
	case <-time.After(e.timeout):
		e.markFailed()
		return reply{}, fmt.Errorf("layout engine %q timed out after %s", e.name, e.timeout)
	}
}

// Layout requests placement for the given windows within a width×height
// area. Placements come back in engine order, matched by window id.
func (e *Engine) Layout(width, height int, windows []core.WindowID) ([]Placement, error) {
	if windows == nil {
		windows = []core.WindowID{}
	}
	rep, err := e.roundTrip(layoutRequest{Type: "layout", Width: width, Height: height, Windows: windows})
	if err != nil {
		return nil, err
	}
	switch rep.Type {
	case "layout":
		return rep.Windows, nil
	case "error":
		return nil, errors.New(rep.Message)
	default:
		e.markFailed()
		return nil, fmt.Errorf("layout engine %q replied %q to a layout request", e.name, rep.Type)
	}
}

// Command forwards a free-form command. Reports whether the engine asked
// for a follow-up retile; an engine error reply comes back verbatim.
func (e *Engine) Command(cmd string, args []string) (needsRetile bool, err error) {
	if args == nil {
		args = []string{}
	}
	rep, err := e.roundTrip(commandRequest{Type: "command", Cmd: cmd, Args: args})
	if err != nil {
		return false, err
	}
	switch rep.Type {
	case "ok":
		return false, nil
	case "needs_retile":
		return true, nil
	case "error":
		return false, errors.New(rep.Message)
	default:
		e.markFailed()
		return false, fmt.Errorf("layout engine %q replied %q to a command", e.name, rep.Type)
	}
}
