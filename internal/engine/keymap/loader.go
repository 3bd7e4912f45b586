package keymap

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/modkb/hidengine/internal/engine/action"
	"github.com/modkb/hidengine/internal/engine/keystate"
	"github.com/modkb/hidengine/internal/engine/layer"
	"github.com/modkb/hidengine/internal/hid"
)

// ParseError reports a malformed keymap document.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing keymap: %s", e.Message)
}

// Parse builds a keymap from its JSON form. The document carries an id, a
// name, and per-layer objects of per-slot binding arrays:
//
//	{
//	  "id": "QWR",
//	  "name": "QWERTY",
//	  "layers": {
//	    "base": {
//	      "rightHalf": [
//	        {"key": 0, "action": {"type": "keystroke", "scancode": "a"}}
//	      ]
//	    }
//	  }
//	}
//
// Bindings with an unknown action type, mouse action or target layer parse
// as unbound keys, and a keystroke ignores scancode, modifier and
// secondary-role names it does not recognize. Invalid JSON, a missing id, an
// unknown layer or slot name, or an out-of-range key index fails the parse.
func Parse(data []byte) (*Keymap, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Message: "invalid JSON"}
	}
	doc := gjson.ParseBytes(data)

	id := doc.Get("id").String()
	if id == "" {
		return nil, &ParseError{Message: "missing keymap id"}
	}

	k := New(id, doc.Get("name").String())

	var parseErr error
	doc.Get("layers").ForEach(func(layerName, slots gjson.Result) bool {
		l, ok := layer.FromName(layerName.String())
		if !ok {
			parseErr = &ParseError{Message: fmt.Sprintf("unknown layer %q", layerName.String())}
			return false
		}
		slots.ForEach(func(slotName, bindings gjson.Result) bool {
			slot, ok := keystate.SlotFromName(slotName.String())
			if !ok {
				parseErr = &ParseError{Message: fmt.Sprintf("unknown slot %q", slotName.String())}
				return false
			}
			bindings.ForEach(func(_, binding gjson.Result) bool {
				key := binding.Get("key").Int()
				if key < 0 || key >= keystate.MaxKeysPerSlot {
					parseErr = &ParseError{Message: fmt.Sprintf("key index %d out of range", key)}
					return false
				}
				c := keystate.Coord{Slot: slot, Key: uint8(key)}
				k.Bind(l, c, parseAction(binding.Get("action")))
				return true
			})
			return parseErr == nil
		})
		return parseErr == nil
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return k, nil
}

// parseAction decodes one action object. Unknown types and names decode as
// an unbound key; a malformed binding must not take the whole keymap down.
func parseAction(a gjson.Result) action.KeyAction {
	switch a.Get("type").String() {
	case "keystroke":
		return parseKeystroke(a)
	case "mouse":
		if ma, ok := action.MouseActionFromName(a.Get("mouseAction").String()); ok {
			return action.KeyAction{Type: action.TypeMouse, Mouse: ma}
		}
	case "switchLayer":
		if l, ok := layer.FromName(a.Get("layer").String()); ok {
			return action.KeyAction{
				Type:        action.TypeSwitchLayer,
				SwitchLayer: action.SwitchLayer{Layer: l, Mode: parseSwitchLayerMode(a.Get("mode").String())},
			}
		}
	case "switchKeymap":
		if id := a.Get("keymap").String(); id != "" {
			return action.KeyAction{Type: action.TypeSwitchKeymap, KeymapID: id}
		}
	case "playMacro":
		return action.KeyAction{Type: action.TypePlayMacro, MacroID: uint8(a.Get("macro").Uint())}
	}
	return action.KeyAction{}
}

func parseKeystroke(a gjson.Result) action.KeyAction {
	ks := action.Keystroke{}

	switch a.Get("keystrokeType").String() {
	case "media":
		ks.Type = action.KeystrokeMedia
	case "system":
		ks.Type = action.KeystrokeSystem
	default:
		ks.Type = action.KeystrokeBasic
	}

	sc := a.Get("scancode")
	switch {
	case sc.Type == gjson.Number:
		ks.Scancode = uint16(sc.Uint())
	case ks.Type == action.KeystrokeBasic:
		ks.Scancode = uint16(hid.ScancodeFromName(sc.String()))
	}

	a.Get("modifiers").ForEach(func(_, m gjson.Result) bool {
		ks.Modifiers |= hid.ModifierFromName(m.String())
		return true
	})

	if role := a.Get("secondaryRole").String(); role != "" {
		if r, ok := action.SecondaryRoleFromName(role); ok {
			ks.SecondaryRole = r
		}
	}

	return action.KeyAction{Type: action.TypeKeystroke, Keystroke: ks}
}

func parseSwitchLayerMode(name string) action.SwitchLayerMode {
	switch name {
	case "toggle":
		return action.ModeToggle
	case "holdAndDoubleTapToggle":
		return action.ModeHoldAndDoubleTapToggle
	default:
		return action.ModeHold
	}
}

// Marshal serializes a keymap to its JSON form. Only non-none bindings are
// written.
func Marshal(k *Keymap) ([]byte, error) {
	out := []byte(`{}`)
	var err error

	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		out, err = sjson.SetBytes(out, path, value)
	}

	set("id", k.ID)
	set("name", k.Name)

	counts := map[string]int{}
	k.ForEachBinding(func(l layer.ID, c keystate.Coord, a action.KeyAction) {
		base := fmt.Sprintf("layers.%s.%s", l, c.Slot)
		idx := counts[base]
		counts[base] = idx + 1

		prefix := fmt.Sprintf("%s.%d", base, idx)
		set(prefix+".key", int(c.Key))
		marshalAction(set, prefix+".action", a)
	})

	if err != nil {
		return nil, fmt.Errorf("serializing keymap %s: %w", k.ID, err)
	}
	return out, nil
}

func marshalAction(set func(path string, value interface{}), prefix string, a action.KeyAction) {
	switch a.Type {
	case action.TypeKeystroke:
		set(prefix+".type", "keystroke")
		set(prefix+".keystrokeType", a.Keystroke.Type.String())
		if a.Keystroke.Scancode != 0 {
			set(prefix+".scancode", int(a.Keystroke.Scancode))
		}
		for bit := uint8(0); bit < 8; bit++ {
			if a.Keystroke.Modifiers&(1<<bit) != 0 {
				set(prefix+".modifiers.-1", modifierName(1<<bit))
			}
		}
		if a.Keystroke.SecondaryRole != action.SecondaryRoleNone {
			set(prefix+".secondaryRole", a.Keystroke.SecondaryRole.String())
		}
	case action.TypeMouse:
		set(prefix+".type", "mouse")
		set(prefix+".mouseAction", a.Mouse.String())
	case action.TypeSwitchLayer:
		set(prefix+".type", "switchLayer")
		set(prefix+".layer", a.SwitchLayer.Layer.String())
		set(prefix+".mode", a.SwitchLayer.Mode.String())
	case action.TypeSwitchKeymap:
		set(prefix+".type", "switchKeymap")
		set(prefix+".keymap", a.KeymapID)
	case action.TypePlayMacro:
		set(prefix+".type", "playMacro")
		set(prefix+".macro", int(a.MacroID))
	}
}

func modifierName(bit uint8) string {
	switch bit {
	case hid.ModLeftCtrl:
		return "leftCtrl"
	case hid.ModLeftShift:
		return "leftShift"
	case hid.ModLeftAlt:
		return "leftAlt"
	case hid.ModLeftSuper:
		return "leftSuper"
	case hid.ModRightCtrl:
		return "rightCtrl"
	case hid.ModRightShift:
		return "rightShift"
	case hid.ModRightAlt:
		return "rightAlt"
	case hid.ModRightSuper:
		return "rightSuper"
	default:
		return ""
	}
}
