package action

import (
	"fmt"

	"github.com/modkb/hidengine/internal/engine/layer"
	"github.com/modkb/hidengine/internal/hid"
)

// SecondaryRole is the alternate behavior a dual-role keystroke takes when
// resolved as a hold: either a layer switcher or a modifier.
type SecondaryRole uint8

const (
	// SecondaryRoleNone marks a plain keystroke.
	SecondaryRoleNone SecondaryRole = iota

	// Layer-switcher roles, one per non-base layer.
	SecondaryRoleMod
	SecondaryRoleFn
	SecondaryRoleMouse

	// Modifier roles, in HID bit order.
	SecondaryRoleLeftCtrl
	SecondaryRoleLeftShift
	SecondaryRoleLeftAlt
	SecondaryRoleLeftSuper
	SecondaryRoleRightCtrl
	SecondaryRoleRightShift
	SecondaryRoleRightAlt
	SecondaryRoleRightSuper
)

// IsLayerSwitcher reports whether the role holds a layer.
func (r SecondaryRole) IsLayerSwitcher() bool {
	return r >= SecondaryRoleMod && r <= SecondaryRoleMouse
}

// IsModifier reports whether the role presses a modifier.
func (r SecondaryRole) IsModifier() bool {
	return r >= SecondaryRoleLeftCtrl && r <= SecondaryRoleRightSuper
}

// Layer returns the layer a layer-switcher role targets.
// Returns the base layer for non-layer roles.
func (r SecondaryRole) Layer() layer.ID {
	if !r.IsLayerSwitcher() {
		return layer.Base
	}
	return layer.ID(r - SecondaryRoleMod + 1)
}

// Modifier returns the HID modifier bit of a modifier role, or 0.
func (r SecondaryRole) Modifier() uint8 {
	if !r.IsModifier() {
		return 0
	}
	return 1 << (r - SecondaryRoleLeftCtrl)
}

// String returns the role name.
func (r SecondaryRole) String() string {
	switch {
	case r == SecondaryRoleNone:
		return "none"
	case r.IsLayerSwitcher():
		return r.Layer().String()
	case r == SecondaryRoleLeftCtrl:
		return "leftCtrl"
	case r == SecondaryRoleLeftShift:
		return "leftShift"
	case r == SecondaryRoleLeftAlt:
		return "leftAlt"
	case r == SecondaryRoleLeftSuper:
		return "leftSuper"
	case r == SecondaryRoleRightCtrl:
		return "rightCtrl"
	case r == SecondaryRoleRightShift:
		return "rightShift"
	case r == SecondaryRoleRightAlt:
		return "rightAlt"
	case r == SecondaryRoleRightSuper:
		return "rightSuper"
	default:
		return fmt.Sprintf("SecondaryRole(%d)", uint8(r))
	}
}

// SecondaryRoleFromName returns the role for a name and whether the name was
// recognized. Layer names and modifier names are both accepted.
func SecondaryRoleFromName(name string) (SecondaryRole, bool) {
	if id, ok := layer.FromName(name); ok && id != layer.Base {
		return SecondaryRoleMod + SecondaryRole(id-1), true
	}
	if bit := hid.ModifierFromName(name); bit != 0 {
		for r := SecondaryRoleLeftCtrl; r <= SecondaryRoleRightSuper; r++ {
			if r.Modifier() == bit {
				return r, true
			}
		}
	}
	return SecondaryRoleNone, false
}
