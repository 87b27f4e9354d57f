package input

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModSuper, "Super"},
}

func (m Modifier) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m&mn.mod != 0 {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, "+")
}

// ParseModifier accepts a modifier name case-insensitively. "Meta" and "Cmd"
// are aliases for Super.
func ParseModifier(name string) (Modifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "shift":
		return ModShift, nil
	case "ctrl", "control":
		return ModCtrl, nil
	case "alt", "option":
		return ModAlt, nil
	case "super", "meta", "cmd":
		return ModSuper, nil
	}
	return 0, fmt.Errorf("unknown modifier: %s", name)
}

// ParseModifiers combines a list of modifier names into one set.
func ParseModifiers(names []string) (Modifier, error) {
	var m Modifier
	for _, n := range names {
		mod, err := ParseModifier(n)
		if err != nil {
			return 0, err
		}
		m |= mod
	}
	return m, nil
}

// namedKeys are the non-character keys a binding may use.
var namedKeys = map[string]bool{
	"Escape": true, "Enter": true, "Space": true, "Tab": true, "Backspace": true, "Delete": true,
	"Home": true, "End": true, "PageUp": true, "PageDown": true,
	"ArrowUp": true, "ArrowDown": true, "ArrowLeft": true, "ArrowRight": true,
	"F1": true, "F2": true, "F3": true, "F4": true, "F5": true, "F6": true,
	"F7": true, "F8": true, "F9": true, "F10": true, "F11": true, "F12": true,
}

// isCharKey reports whether key is a single printable character such as "+" or "s".
func isCharKey(key string) bool {
	if utf8.RuneCountInString(key) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(key)
	return r > ' ' && r != utf8.RuneError
}

// KeyCombination is a key with the modifiers that must be held with it.
type KeyCombination struct {
	Key       string
	Modifiers Modifier
}

// String renders the canonical "Ctrl+Alt+Shift+Super+Key" form.
func (kc KeyCombination) String() string {
	if kc.Modifiers == 0 {
		return kc.Key
	}
	return kc.Modifiers.String() + "+" + kc.Key
}

// ParseKeyString parses a binding like "Ctrl+s", "ArrowLeft" or "+".
// A trailing "+" after a separator is the plus key itself ("Ctrl++").
func ParseKeyString(keyStr string) (KeyCombination, error) {
	if keyStr == "" {
		return KeyCombination{}, fmt.Errorf("empty key string")
	}
	var parts []string
	if keyStr == "+" {
		parts = []string{"+"}
	} else if strings.HasSuffix(keyStr, "++") {
		parts = append(strings.Split(strings.TrimSuffix(keyStr, "++"), "+"), "+")
	} else {
		parts = strings.Split(keyStr, "+")
	}

	key := parts[len(parts)-1]
	if !namedKeys[key] && !isCharKey(key) {
		return KeyCombination{}, fmt.Errorf("unknown key: %s", key)
	}

	kc := KeyCombination{Key: key}
	for _, p := range parts[:len(parts)-1] {
		mod, err := ParseModifier(p)
		if err != nil {
			return KeyCombination{}, err
		}
		kc.Modifiers |= mod
	}
	return kc, nil
}

// normalize drops Shift from character keys, since the character already
// reflects it ("+" arrives without a modifier on most layouts).
func (kc KeyCombination) normalize() KeyCombination {
	if isCharKey(kc.Key) {
		kc.Modifiers &^= ModShift
	}
	return kc
}

// Keymap resolves key presses to action names.
type Keymap struct {
	bindings map[string][]string
	lookup   map[KeyCombination]string
}

// NewKeymap validates bindings and builds the reverse lookup.
// Actions must exist in the action table and no key may be bound twice.
func NewKeymap(bindings map[string][]string) (*Keymap, error) {
	if err := ValidateKeybindings(bindings); err != nil {
		return nil, err
	}
	km := &Keymap{bindings: bindings, lookup: make(map[KeyCombination]string)}
	for action, keys := range bindings {
		for _, k := range keys {
			kc, _ := ParseKeyString(k)
			km.lookup[kc.normalize()] = action
		}
	}
	return km, nil
}

// DefaultKeymap is the keymap built from the action table.
func DefaultKeymap() *Keymap {
	km, err := NewKeymap(DefaultKeybindings())
	if err != nil {
		panic(fmt.Sprintf("default keybindings invalid: %v", err))
	}
	return km
}

// Lookup returns the action bound to a key event. An exact binding wins;
// otherwise a held Shift is ignored, so Shift+ArrowLeft still reaches a plain
// ArrowLeft binding.
func (km *Keymap) Lookup(ev KeyEvent) (string, bool) {
	kc := KeyCombination{Key: ev.Key, Modifiers: ev.Modifiers}.normalize()
	if action, ok := km.lookup[kc]; ok {
		return action, true
	}
	if kc.Modifiers&ModShift == 0 {
		return "", false
	}
	kc.Modifiers &^= ModShift
	action, ok := km.lookup[kc]
	return action, ok
}

// Bindings returns the action to keys map the keymap was built from.
func (km *Keymap) Bindings() map[string][]string {
	return km.bindings
}

// ValidateKeybindings checks key syntax, action names and conflicts.
func ValidateKeybindings(bindings map[string][]string) error {
	owner := make(map[KeyCombination]string)

	// Sorted so conflicts are reported deterministically.
	actions := make([]string, 0, len(bindings))
	for a := range bindings {
		actions = append(actions, a)
	}
	sort.Strings(actions)

	for _, action := range actions {
		if _, ok := LookupAction(action); !ok {
			return fmt.Errorf("unknown action '%s'", action)
		}
		for _, keyStr := range bindings[action] {
			kc, err := ParseKeyString(keyStr)
			if err != nil {
				return fmt.Errorf("invalid key '%s' for action '%s': %v", keyStr, action, err)
			}
			kc = kc.normalize()
			if existing, exists := owner[kc]; exists && existing != action {
				return fmt.Errorf("key conflict: '%s' is bound to both '%s' and '%s'", keyStr, existing, action)
			}
			owner[kc] = action
		}
	}
	return nil
}

// MergeKeybindings overlays user bindings on the defaults. An action present
// in overrides replaces its default keys entirely.
func MergeKeybindings(overrides map[string][]string) map[string][]string {
	merged := DefaultKeybindings()
	for action, keys := range overrides {
		merged[action] = append([]string(nil), keys...)
	}
	return merged
}
