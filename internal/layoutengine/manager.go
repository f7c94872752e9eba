package layoutengine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/tagtile/tagtile/internal/core"
)

// enginePrefix names engine binaries: layout "byobu" runs
// "tagtile-layout-byobu" from PATH unless overridden in config.
const enginePrefix = "tagtile-layout-"

// Manager holds one Engine per layout name, spawned lazily on first use.
// Owned by the event loop; never accessed concurrently.
type Manager struct {
	engines  map[string]*Engine
	commands map[string][]string // per-name argv override
	timeout  time.Duration
	log      *slog.Logger
}

// NewManager creates a manager. commands maps layout names to override
// command lines (whitespace-split); names without an override resolve to
// the conventional binary on PATH.
func NewManager(timeout time.Duration, commands map[string]string, log *slog.Logger) *Manager {
	m := &Manager{
		engines: make(map[string]*Engine),
		timeout: timeout,
		log:     log,
	}
	m.setCommands(commands)
	return m
}

func (m *Manager) setCommands(commands map[string]string) {
	m.commands = make(map[string][]string, len(commands))
	for name, cmdline := range commands {
		if argv := strings.Fields(cmdline); len(argv) > 0 {
			m.commands[name] = argv
		}
	}
}

// Configure applies new engine settings. Running engines keep their old
// command line until their next respawn.
func (m *Manager) Configure(timeout time.Duration, commands map[string]string) {
	m.timeout = timeout
	m.setCommands(commands)
	for name, e := range m.engines {
		e.timeout = timeout
		e.argv = m.argvFor(name)
	}
}

func (m *Manager) argvFor(name string) []string {
	if argv, ok := m.commands[name]; ok {
		return argv
	}
	return []string{enginePrefix + name}
}

func (m *Manager) engine(name string) *Engine {
	if e, ok := m.engines[name]; ok {
		return e
	}
	e := newEngine(name, m.argvFor(name), m.timeout, m.log)
	m.engines[name] = e
	return e
}

// Layout asks the named engine for placements within a width×height area.
func (m *Manager) Layout(name string, width, height int, windows []core.WindowID) ([]Placement, error) {
	return m.engine(name).Layout(width, height, windows)
}

// Command forwards a command to the named engine.
func (m *Manager) Command(name, cmd string, args []string) (needsRetile bool, err error) {
	return m.engine(name).Command(cmd, args)
}

// Shutdown terminates every spawned engine subprocess.
func (m *Manager) Shutdown() {
	for name, e := range m.engines {
		e.terminate()
		m.log.Info("terminated layout engine", "name", name)
	}
	m.engines = make(map[string]*Engine)
}
