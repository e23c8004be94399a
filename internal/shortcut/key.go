package shortcut

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Key is a normalized key chord. Cmd and Meta are folded into Ctrl.
type Key struct {
	Code  string
	Ctrl  bool
	Shift bool
	Alt   bool
}

var codeAliases = map[string]string{
	"del":        "Delete",
	"delete":     "Delete",
	"backspace":  "Backspace",
	"esc":        "Escape",
	"escape":     "Escape",
	"left":       "ArrowLeft",
	"right":      "ArrowRight",
	"up":         "ArrowUp",
	"down":       "ArrowDown",
	"arrowleft":  "ArrowLeft",
	"arrowright": "ArrowRight",
	"arrowup":    "ArrowUp",
	"arrowdown":  "ArrowDown",
	"enter":      "Enter",
	"tab":        "Tab",
	"space":      "Space",
}

// ParseKey reads chords such as "Ctrl+Shift+Z", "shift+arrowup" or "3".
func ParseKey(s string) (Key, error) {
	var k Key
	parts := strings.Split(strings.TrimSpace(s), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == len(parts)-1 {
			code, err := normalizeCode(p)
			if err != nil {
				return Key{}, fmt.Errorf("parse key %q: %w", s, err)
			}
			k.Code = code
			break
		}
		switch strings.ToLower(p) {
		case "ctrl", "control", "cmd", "meta", "super":
			k.Ctrl = true
		case "shift":
			k.Shift = true
		case "alt", "option", "opt":
			k.Alt = true
		default:
			return Key{}, fmt.Errorf("parse key %q: unknown modifier %q", s, p)
		}
	}
	return k, nil
}

// MustParseKey is ParseKey for static bindings.
func MustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

func normalizeCode(p string) (string, error) {
	if p == "" {
		return "", errors.New("empty key")
	}
	if alias, ok := codeAliases[strings.ToLower(p)]; ok {
		return alias, nil
	}
	if len(p) == 1 {
		return strings.ToUpper(p), nil
	}
	if n, err := strconv.Atoi(p[1:]); err == nil && (p[0] == 'F' || p[0] == 'f') && n >= 1 && n <= 24 {
		return "F" + strconv.Itoa(n), nil
	}
	return "", fmt.Errorf("unknown key %q", p)
}

// String renders the chord in canonical form, e.g. "Ctrl+Shift+Z".
func (k Key) String() string {
	var b strings.Builder
	if k.Ctrl {
		b.WriteString("Ctrl+")
	}
	if k.Alt {
		b.WriteString("Alt+")
	}
	if k.Shift {
		b.WriteString("Shift+")
	}
	b.WriteString(k.Code)
	return b.String()
}
