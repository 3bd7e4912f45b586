package keymap

import (
	"testing"

	"github.com/modkb/hidengine/internal/engine/action"
	"github.com/modkb/hidengine/internal/engine/keystate"
	"github.com/modkb/hidengine/internal/engine/layer"
	"github.com/modkb/hidengine/internal/hid"
)

const sampleKeymap = `{
	"id": "QWR",
	"name": "QWERTY",
	"layers": {
		"base": {
			"rightHalf": [
				{"key": 0, "action": {"type": "keystroke", "scancode": "a", "modifiers": ["leftShift"]}},
				{"key": 1, "action": {"type": "keystroke", "scancode": "tab", "modifiers": ["leftAlt"], "secondaryRole": "mod"}},
				{"key": 2, "action": {"type": "mouse", "mouseAction": "moveRight"}},
				{"key": 3, "action": {"type": "switchLayer", "layer": "fn", "mode": "holdAndDoubleTapToggle"}},
				{"key": 4, "action": {"type": "playMacro", "macro": 2}},
				{"key": 5, "action": {"type": "switchKeymap", "keymap": "DVO"}}
			],
			"leftHalf": [
				{"key": 0, "action": {"type": "keystroke", "keystrokeType": "media", "scancode": 233}}
			]
		},
		"fn": {
			"rightHalf": [
				{"key": 0, "action": {"type": "keystroke", "scancode": "up"}}
			]
		}
	}
}`

func coordR(key uint8) keystate.Coord {
	return keystate.Coord{Slot: keystate.SlotRightHalf, Key: key}
}

func TestParse(t *testing.T) {
	k, err := Parse([]byte(sampleKeymap))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if k.ID != "QWR" || k.Name != "QWERTY" {
		t.Errorf("identity = %q/%q", k.ID, k.Name)
	}

	a := k.Action(layer.Base, coordR(0))
	if a.Type != action.TypeKeystroke || a.Keystroke.Scancode != uint16(hid.ScancodeA) || a.Keystroke.Modifiers != hid.ModLeftShift {
		t.Errorf("key 0 = %+v", a)
	}

	a = k.Action(layer.Base, coordR(1))
	if a.Keystroke.SecondaryRole != action.SecondaryRoleMod {
		t.Errorf("key 1 secondary role = %v", a.Keystroke.SecondaryRole)
	}

	a = k.Action(layer.Base, coordR(2))
	if a.Type != action.TypeMouse || a.Mouse != action.MouseMoveRight {
		t.Errorf("key 2 = %+v", a)
	}

	a = k.Action(layer.Base, coordR(3))
	if a.Type != action.TypeSwitchLayer || a.SwitchLayer.Layer != layer.Fn || a.SwitchLayer.Mode != action.ModeHoldAndDoubleTapToggle {
		t.Errorf("key 3 = %+v", a)
	}

	a = k.Action(layer.Base, coordR(4))
	if a.Type != action.TypePlayMacro || a.MacroID != 2 {
		t.Errorf("key 4 = %+v", a)
	}

	a = k.Action(layer.Base, coordR(5))
	if a.Type != action.TypeSwitchKeymap || a.KeymapID != "DVO" {
		t.Errorf("key 5 = %+v", a)
	}

	a = k.Action(layer.Base, keystate.Coord{Slot: keystate.SlotLeftHalf, Key: 0})
	if a.Keystroke.Type != action.KeystrokeMedia || a.Keystroke.Scancode != hid.MediaVolumeUp {
		t.Errorf("media key = %+v", a)
	}

	a = k.Action(layer.Fn, coordR(0))
	if a.Keystroke.Scancode != uint16(hid.ScancodeUpArrow) {
		t.Errorf("fn key 0 = %+v", a)
	}

	// Unbound key.
	if a := k.Action(layer.Mouse, coordR(0)); a.Type != action.TypeNone {
		t.Errorf("unbound key = %+v", a)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalidJSON", `{`},
		{"missingID", `{"name": "x"}`},
		{"unknownLayer", `{"id": "X", "layers": {"hyper": {}}}`},
		{"unknownSlot", `{"id": "X", "layers": {"base": {"middle": []}}}`},
		{"keyOutOfRange", `{"id": "X", "layers": {"base": {"rightHalf": [{"key": 64}]}}}`},
	}

	for _, tt := range tests {
		if _, err := Parse([]byte(tt.data)); err == nil {
			t.Errorf("%s: Parse() error = nil", tt.name)
		}
	}
}

func TestParseUnknownActionDegrades(t *testing.T) {
	data := `{"id": "X", "layers": {"base": {"rightHalf": [
		{"key": 0, "action": {"type": "teleport"}},
		{"key": 1, "action": {"type": "mouse", "mouseAction": "warp"}}
	]}}}`

	k, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	for key := uint8(0); key < 2; key++ {
		if a := k.Action(layer.Base, coordR(key)); a.Type != action.TypeNone {
			t.Errorf("key %d = %+v, want none", key, a)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	orig, err := Parse([]byte(sampleKeymap))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	data, err := Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	back, err := Parse(data)
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}

	orig.ForEachBinding(func(l layer.ID, c keystate.Coord, a action.KeyAction) {
		if got := back.Action(l, c); got != a {
			t.Errorf("%v %v: round trip %+v != %+v", l, c, got, a)
		}
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	qwerty := New("QWR", "QWERTY")
	dvorak := New("DVO", "Dvorak")
	r.Add(qwerty)
	r.Add(dvorak)

	if r.Current() != qwerty {
		t.Error("first added keymap is not current")
	}
	if err := r.Switch("DVO"); err != nil {
		t.Fatalf("Switch() error: %v", err)
	}
	if r.Current() != dvorak {
		t.Error("Switch did not change current")
	}
	if err := r.Switch("NOPE"); err == nil {
		t.Error("Switch to unknown id: error = nil")
	}
	if r.Current() != dvorak {
		t.Error("failed switch changed current")
	}
	if len(r.IDs()) != 2 {
		t.Errorf("IDs() = %v", r.IDs())
	}
}
