// Package keymap resolves configured key names into injectable key codes.
package keymap

import (
	"fmt"
	"strings"

	"smbridge/internal/input"
)

// names maps lowercase key names to Windows virtual-key codes, the
// canonical representation used throughout the bridge. Platform injectors
// translate these to native codes.
var names = map[string]input.Key{
	"backspace": 0x08,
	"tab":       0x09,
	"enter":     0x0D,
	"shift":     0x10,
	"ctrl":      0x11,
	"alt":       0x12,
	"pause":     0x13,
	"caps_lock": 0x14,
	"esc":       0x1B,
	"escape":    0x1B,
	"space":     0x20,
	"page_up":   0x21,
	"page_down": 0x22,
	"end":       0x23,
	"home":      0x24,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
	"insert":    0x2D,
	"delete":    0x2E,
	"shift_l":   0xA0,
	"shift_r":   0xA1,
	"ctrl_l":    0xA2,
	"ctrl_r":    0xA3,
	"alt_l":     0xA4,
	"alt_r":     0xA5,
}

func init() {
	// Letters a-z map to VK_A..VK_Z, digits 0-9 to VK_0..VK_9, and
	// f1-f12 to VK_F1..VK_F12.
	for c := 'a'; c <= 'z'; c++ {
		names[string(c)] = input.Key(0x41 + c - 'a')
	}
	for c := '0'; c <= '9'; c++ {
		names[string(c)] = input.Key(0x30 + c - '0')
	}
	for i := 1; i <= 12; i++ {
		names[fmt.Sprintf("f%d", i)] = input.Key(0x70 + i - 1)
	}
}

// Resolve returns the key code for a configured name. Names are
// case-insensitive.
func Resolve(name string) (input.Key, error) {
	k, ok := names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown key name %q", name)
	}
	return k, nil
}

// ResolveSequence resolves a single name or a "+"-joined combo (e.g.
// "shift+space") into an ordered key sequence, modifiers first as
// written.
func ResolveSequence(spec string) ([]input.Key, error) {
	parts := strings.Split(spec, "+")
	keys := make([]input.Key, 0, len(parts))
	for _, p := range parts {
		k, err := Resolve(p)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
