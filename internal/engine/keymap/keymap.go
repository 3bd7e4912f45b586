package keymap

import (
	"github.com/modkb/hidengine/internal/engine/action"
	"github.com/modkb/hidengine/internal/engine/keystate"
	"github.com/modkb/hidengine/internal/engine/layer"
)

// Keymap is a three-dimensional mapping from (layer, slot, key) to the
// action the key produces.
type Keymap struct {
	// ID is the keymap's short identifier, unique within a registry.
	ID string

	// Name is the human-readable keymap name.
	Name string

	layers [layer.Count][keystate.SlotCount][keystate.MaxKeysPerSlot]action.KeyAction
}

// New returns an empty keymap with the given id.
func New(id, name string) *Keymap {
	return &Keymap{ID: id, Name: name}
}

// Action returns the action bound at (layer, key). Unbound keys return a
// TypeNone action.
func (k *Keymap) Action(l layer.ID, c keystate.Coord) action.KeyAction {
	return k.layers[l][c.Slot][c.Key]
}

// Bind sets the action at (layer, key).
func (k *Keymap) Bind(l layer.ID, c keystate.Coord, a action.KeyAction) {
	k.layers[l][c.Slot][c.Key] = a
}

// ForEachBinding visits every non-none binding in layer, slot, key order.
func (k *Keymap) ForEachBinding(visit func(l layer.ID, c keystate.Coord, a action.KeyAction)) {
	for l := layer.ID(0); l < layer.Count; l++ {
		for slot := keystate.SlotID(0); slot < keystate.SlotCount; slot++ {
			for key := 0; key < keystate.MaxKeysPerSlot; key++ {
				a := k.layers[l][slot][key]
				if a.Type != action.TypeNone {
					visit(l, keystate.Coord{Slot: slot, Key: uint8(key)}, a)
				}
			}
		}
	}
}
