package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tagtile/tagtile/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: tagtile daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: tagtile daemon")
			os.Exit(2)
		}
		runDaemon()
	case "tag":
		os.Exit(runTag(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "output":
		os.Exit(runOutput(os.Args[2:]))
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "retile":
		os.Exit(runRetile(os.Args[2:]))
	case "bind":
		os.Exit(runBind(os.Args[2:]))
	case "unbind":
		os.Exit(runUnbind(os.Args[2:]))
	case "bindings":
		os.Exit(runBindings(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "outputs":
		os.Exit(runOutputs(os.Args[2:]))
	case "state":
		os.Exit(runState(os.Args[2:]))
	case "exec":
		os.Exit(runExec(os.Args[2:]))
	case "exec-or-focus":
		os.Exit(runExecOrFocus(os.Args[2:]))
	case "quit":
		os.Exit(runQuit(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tagtile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the tagtile daemon (foreground)")
	fmt.Fprintln(w, "  retile              Re-run layout on every display with windows")
	fmt.Fprintln(w, "  quit                Shut the daemon down")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tag view            View exactly one tag on the focused display")
	fmt.Fprintln(w, "  tag toggle          Toggle a tag in the focused display's visible set")
	fmt.Fprintln(w, "  tag last            Switch back to the previously viewed tags")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window tag          Move the focused window to a tag")
	fmt.Fprintln(w, "  window toggle-tag   Toggle a tag on the focused window")
	fmt.Fprintln(w, "  window focus        Move window focus (next/prev/left/right/up/down)")
	fmt.Fprintln(w, "  window swap         Swap the focused window with a neighbor")
	fmt.Fprintln(w, "  window send         Send the focused window to another display")
	fmt.Fprintln(w, "  window focused      Print the focused window id")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  output focus        Move display focus (next/prev)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout get          Show the layout for a tag or the focused display")
	fmt.Fprintln(w, "  layout set          Set the layout for a tag or the focused display")
	fmt.Fprintln(w, "  layout default      Set the default layout engine")
	fmt.Fprintln(w, "  layout cmd          Forward a command to the active layout engine")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  bind                Bind a hotkey to a daemon command")
	fmt.Fprintln(w, "  unbind              Remove a hotkey binding")
	fmt.Fprintln(w, "  bindings            List hotkey bindings")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  windows             List tracked windows")
	fmt.Fprintln(w, "  outputs             List displays and their workspace state")
	fmt.Fprintln(w, "  state               Dump the full daemon state as JSON")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  exec                Run a shell command via the daemon")
	fmt.Fprintln(w, "  exec-or-focus       Focus an app's window, or launch it")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'tagtile <command> --help' for command-specific options.")
}

// parseTagArg parses a 1-based tag index argument.
func parseTagArg(arg string) (uint, error) {
	n, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid tag %q: expected a positive integer", arg)
	}
	return uint(n), nil
}

func printTagUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tagtile tag <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  view [--output N] <tag>      View exactly this tag on a display")
	fmt.Fprintln(w, "  toggle [--output N] <tag>    Toggle this tag in the visible set")
	fmt.Fprintln(w, "  last                         Switch back to the previously viewed tags")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Without --output, both commands act on the focused display.")
}

func runTag(args []string) int {
	if len(args) == 0 {
		printTagUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "view", "toggle":
		fs := flag.NewFlagSet("tag "+args[0], flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintf(os.Stderr, "Usage: tagtile tag %s [--output N] <tag>\n", args[0])
		}
		output := outputFlag(fs)
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fs.Usage()
			return 2
		}
		tag, err := parseTagArg(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		out, err := output()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		client := ipc.NewClient()
		if args[0] == "toggle" {
			err = client.ToggleViewTag(tag, out)
		} else {
			err = client.ViewTag(tag, out)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "last":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: tagtile tag last")
			return 2
		}
		if err := ipc.NewClient().ViewTagLast(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "help", "-h", "--help":
		printTagUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown tag command: %s\n\n", args[0])
		printTagUsage(os.Stderr)
		return 2
	}
}

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tagtile window <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tag <tag>            Move the focused window to exactly this tag")
	fmt.Fprintln(w, "  toggle-tag <tag>     Toggle this tag on the focused window")
	fmt.Fprintln(w, "  focus <direction>    Move focus: next, prev, left, right, up, down")
	fmt.Fprintln(w, "  swap <direction>     Swap the focused window with its neighbor")
	fmt.Fprintln(w, "  send <direction>     Send the focused window to the next/prev display")
	fmt.Fprintln(w, "  focused              Print the focused window id")
}

func runWindow(args []string) int {
	if len(args) == 0 {
		printWindowUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	switch args[0] {
	case "tag", "toggle-tag":
		if len(args) != 2 {
			fmt.Fprintf(os.Stderr, "Usage: tagtile window %s <tag>\n", args[0])
			return 2
		}
		tag, err := parseTagArg(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if args[0] == "toggle-tag" {
			err = client.ToggleWindowTag(tag)
		} else {
			err = client.MoveToTag(tag)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "focus":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: tagtile window focus <next|prev|left|right|up|down>")
			return 2
		}
		if err := client.FocusWindow(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "swap":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: tagtile window swap <next|prev|left|right|up|down>")
			return 2
		}
		if err := client.SwapWindow(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "send":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: tagtile window send <next|prev>")
			return 2
		}
		if err := client.SendToOutput(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "focused":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: tagtile window focused")
			return 2
		}
		id, err := client.FocusedWindow()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(id)
		return 0
	case "help", "-h", "--help":
		printWindowUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n\n", args[0])
		printWindowUsage(os.Stderr)
		return 2
	}
}

func runOutput(args []string) int {
	usage := func(w io.Writer) {
		fmt.Fprintln(w, "Usage: tagtile output <command>")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Commands:")
		fmt.Fprintln(w, "  focus <next|prev>    Move display focus")
	}
	if len(args) == 0 {
		usage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "focus":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: tagtile output focus <next|prev>")
			return 2
		}
		if err := ipc.NewClient().FocusOutput(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "help", "-h", "--help":
		usage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown output command: %s\n\n", args[0])
		usage(os.Stderr)
		return 2
	}
}

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tagtile layout <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  get [--tag N]           Show the layout for a tag, or the focused display")
	fmt.Fprintln(w, "  set [--tag N] <name>    Set the layout for a tag, or the focused display")
	fmt.Fprintln(w, "  default <name>          Set the default layout engine")
	fmt.Fprintln(w, "  cmd <cmd> [args...]     Forward a command to the active layout engine")
}

func runLayout(args []string) int {
	if len(args) == 0 {
		printLayoutUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "get":
		return runLayoutGet(args[1:])
	case "set":
		return runLayoutSet(args[1:])
	case "default":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: tagtile layout default <name>")
			return 2
		}
		if err := ipc.NewClient().SetDefaultLayout(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "cmd":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: tagtile layout cmd <cmd> [args...]")
			return 2
		}
		if err := ipc.NewClient().LayoutCmd(args[1], args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "help", "-h", "--help":
		printLayoutUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown layout command: %s\n\n", args[0])
		printLayoutUsage(os.Stderr)
		return 2
	}
}

// tagFlag parses --tag into a nil-able tag index so "unset" targets the
// focused display.
func tagFlag(fs *flag.FlagSet) func() (*uint, error) {
	raw := fs.Uint("tag", 0, "1-based tag index (default: the focused display)")
	return func() (*uint, error) {
		set := false
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "tag" {
				set = true
			}
		})
		if !set {
			return nil, nil
		}
		if *raw == 0 {
			return nil, fmt.Errorf("--tag must be a positive integer")
		}
		tag := *raw
		return &tag, nil
	}
}

// outputFlag parses --output into a nil-able display id so "unset" targets
// the focused display.
func outputFlag(fs *flag.FlagSet) func() (*uint32, error) {
	raw := fs.Uint("output", 0, "display id (default: the focused display)")
	return func() (*uint32, error) {
		set := false
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "output" {
				set = true
			}
		})
		if !set {
			return nil, nil
		}
		if uint64(*raw) > uint64(^uint32(0)) {
			return nil, fmt.Errorf("--output is out of range")
		}
		id := uint32(*raw)
		return &id, nil
	}
}

func runLayoutGet(args []string) int {
	fs := flag.NewFlagSet("layout get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tagtile layout get [--tag N | --output N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Without flags, shows the focused display's active layout.")
	}
	tag := tagFlag(fs)
	output := outputFlag(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "layout get takes no positional arguments")
		fs.Usage()
		return 2
	}

	t, err := tag()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	out, err := output()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	name, err := ipc.NewClient().GetLayout(t, out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(name)
	return 0
}

func runLayoutSet(args []string) int {
	fs := flag.NewFlagSet("layout set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tagtile layout set [--tag N | --output N] <name>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Without flags, changes the focused display's layout and retiles.")
	}
	tag := tagFlag(fs)
	output := outputFlag(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "layout set requires exactly one layout name")
		fs.Usage()
		return 2
	}

	t, err := tag()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	out, err := output()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := ipc.NewClient().SetLayout(t, out, fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runRetile(args []string) int {
	fs := flag.NewFlagSet("retile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tagtile retile [--output N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Without --output, retiles every display with visible windows.")
	}
	output := outputFlag(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "retile takes no positional arguments")
		fs.Usage()
		return 2
	}
	out, err := output()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := ipc.NewClient().Retile(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runBind(args []string) int {
	fs := flag.NewFlagSet("bind", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tagtile bind <hotkey> <command> [payload-json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Bind a hotkey combo to a daemon command.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  tagtile bind alt-2 VIEW_TAG '{\"tag\":2}'")
		fmt.Fprintln(os.Stderr, "  tagtile bind alt-shift-j FOCUS_WINDOW '{\"direction\":\"next\"}'")
		fmt.Fprintln(os.Stderr, "  tagtile bind alt-r RETILE")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() < 2 || fs.NArg() > 3 {
		fs.Usage()
		return 2
	}

	req := &ipc.Request{Command: ipc.CommandType(strings.ToUpper(fs.Arg(1)))}
	if fs.NArg() == 3 {
		payload := []byte(fs.Arg(2))
		if !json.Valid(payload) {
			fmt.Fprintf(os.Stderr, "invalid payload JSON: %s\n", fs.Arg(2))
			return 2
		}
		req.Payload = json.RawMessage(payload)
	}

	if err := ipc.NewClient().Bind(fs.Arg(0), req); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runUnbind(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: tagtile unbind <hotkey>")
		return 0
	}
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: tagtile unbind <hotkey>")
		return 2
	}
	if err := ipc.NewClient().Unbind(args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runBindings(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "bindings takes no arguments")
		return 2
	}
	data, err := ipc.NewClient().ListBindings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, b := range data.Bindings {
		if len(b.Command.Payload) > 0 {
			fmt.Printf("%-20s %s %s\n", b.Hotkey, b.Command.Command, b.Command.Payload)
		} else {
			fmt.Printf("%-20s %s\n", b.Hotkey, b.Command.Command)
		}
	}
	return 0
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tagtile windows [--json]")
	}
	asJSON := fs.Bool("json", false, "print as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}
	for _, w := range data.Windows {
		marker := " "
		if w.Focused {
			marker = "*"
		}
		hidden := ""
		if w.Hidden {
			hidden = " hidden"
		}
		fmt.Printf("%s %-6d %-16s tags=%s output=%d %dx%d+%d+%d%s\n",
			marker, w.ID, w.AppName, tagSetString(w.Tags), w.Output,
			w.Width, w.Height, w.X, w.Y, hidden)
	}
	return 0
}

func runOutputs(args []string) int {
	fs := flag.NewFlagSet("outputs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tagtile outputs [--json]")
	}
	asJSON := fs.Bool("json", false, "print as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := ipc.NewClient().ListOutputs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}
	for _, o := range data.Outputs {
		marker := " "
		if o.Focused {
			marker = "*"
		}
		fmt.Printf("%s %-4d tags=%s layout=%s %dx%d+%d+%d\n",
			marker, o.ID, tagSetString(o.VisibleTags), o.Layout,
			o.Width, o.Height, o.X, o.Y)
	}
	return 0
}

func runState(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "state takes no arguments")
		return 2
	}
	data, err := ipc.NewClient().GetState()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return printJSON(data)
}

func runExec(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: tagtile exec <command>")
		return 0
	}
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: tagtile exec <command>")
		return 2
	}
	if err := ipc.NewClient().Exec(args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runExecOrFocus(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: tagtile exec-or-focus <app> <command>")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Focus an existing window of <app>, or run <command> to launch it.")
		return 0
	}
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: tagtile exec-or-focus <app> <command>")
		return 2
	}
	if err := ipc.NewClient().ExecOrFocus(args[0], args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runQuit(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "quit takes no arguments")
		return 2
	}
	if err := ipc.NewClient().Quit(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printJSON(v interface{}) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// tagSetString renders a tag bitmask as a comma list of 1-based indices.
func tagSetString(mask uint32) string {
	var parts []string
	for i := uint(1); i <= 32; i++ {
		if mask&(1<<(i-1)) != 0 {
			parts = append(parts, strconv.FormatUint(uint64(i), 10))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
