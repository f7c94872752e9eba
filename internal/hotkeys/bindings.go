package hotkeys

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tagtile/tagtile/internal/ipc"
)

// knownModifiers in canonical order. Combos are normalized so that
// "shift+alt-h" and "alt-shift-h" name the same binding.
var knownModifiers = []string{"cmd", "ctrl", "alt", "shift"}

// NormalizeCombo canonicalizes a key combo like "alt-1" or "cmd+shift+h":
// lowercase, modifiers sorted into canonical order, "-" separators, the
// non-modifier key last. Exactly one non-modifier key is required.
func NormalizeCombo(combo string) (string, error) {
	parts := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(combo)), func(r rune) bool {
		return r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("empty key combo")
	}

	mods := make(map[string]bool)
	key := ""
	for _, p := range parts {
		if isModifier(p) {
			if mods[p] {
				return "", fmt.Errorf("duplicate modifier %q in combo %q", p, combo)
			}
			mods[p] = true
			continue
		}
		if key != "" {
			return "", fmt.Errorf("combo %q has more than one key", combo)
		}
		key = p
	}
	if key == "" {
		return "", fmt.Errorf("combo %q has no key", combo)
	}

	var out []string
	for _, m := range knownModifiers {
		if mods[m] {
			out = append(out, m)
		}
	}
	out = append(out, key)
	return strings.Join(out, "-"), nil
}

func isModifier(s string) bool {
	for _, m := range knownModifiers {
		if s == m {
			return true
		}
	}
	return false
}

// Bindings maps normalized key combos to the requests they dispatch. Owned
// by the event loop; never accessed concurrently.
type Bindings struct {
	byCombo map[string]ipc.Request
}

// NewBindings returns an empty binding table.
func NewBindings() *Bindings {
	return &Bindings{byCombo: make(map[string]ipc.Request)}
}

// Bind attaches a request to a combo, replacing any previous binding.
func (b *Bindings) Bind(combo string, req ipc.Request) error {
	normalized, err := NormalizeCombo(combo)
	if err != nil {
		return err
	}
	if req.Command == "" {
		return fmt.Errorf("binding for %q has no command", combo)
	}
	b.byCombo[normalized] = req
	return nil
}

// Unbind removes a combo's binding; errors when none exists.
func (b *Bindings) Unbind(combo string) error {
	normalized, err := NormalizeCombo(combo)
	if err != nil {
		return err
	}
	if _, ok := b.byCombo[normalized]; !ok {
		return fmt.Errorf("no binding for %q", normalized)
	}
	delete(b.byCombo, normalized)
	return nil
}

// Lookup resolves a pressed combo to its bound request.
func (b *Bindings) Lookup(combo string) (ipc.Request, bool) {
	normalized, err := NormalizeCombo(combo)
	if err != nil {
		return ipc.Request{}, false
	}
	req, ok := b.byCombo[normalized]
	return req, ok
}

// Combos returns every bound combo, sorted.
func (b *Bindings) Combos() []string {
	out := make([]string, 0, len(b.byCombo))
	for combo := range b.byCombo {
		out = append(out, combo)
	}
	sort.Strings(out)
	return out
}

// List returns the binding table for LIST_BINDINGS, sorted by combo.
func (b *Bindings) List() []ipc.BindingInfo {
	out := make([]ipc.BindingInfo, 0, len(b.byCombo))
	for _, combo := range b.Combos() {
		out = append(out, ipc.BindingInfo{Hotkey: combo, Command: b.byCombo[combo]})
	}
	return out
}
