package keymap

import "testing"

// TestResolveCommonNames checks the names the default bindings rely on.
func TestResolveCommonNames(t *testing.T) {
	cases := map[string]uint16{
		"a":         0x41,
		"W":         0x57,
		"page_up":   0x21,
		"page_down": 0x22,
		"delete":    0x2E,
		"end":       0x23,
		"shift_l":   0xA0,
		"caps_lock": 0x14,
		"f10":       0x79,
		"7":         0x37,
	}

	for name, want := range cases {
		k, err := Resolve(name)
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", name, err)
			continue
		}
		if uint16(k) != want {
			t.Errorf("Resolve(%q) = 0x%X, want 0x%X", name, uint16(k), want)
		}
	}
}

// TestResolveUnknownName checks unknown names surface an error.
func TestResolveUnknownName(t *testing.T) {
	if _, err := Resolve("hyper_quasi_key"); err == nil {
		t.Error("Expected error for unknown key name")
	}
}

// TestResolveSequenceCombo checks combo specs keep their written order.
func TestResolveSequenceCombo(t *testing.T) {
	keys, err := ResolveSequence("shift+space")
	if err != nil {
		t.Fatalf("ResolveSequence failed: %v", err)
	}
	if len(keys) != 2 || uint16(keys[0]) != 0x10 || uint16(keys[1]) != 0x20 {
		t.Errorf("Expected [shift space], got %v", keys)
	}
}
