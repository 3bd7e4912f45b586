package action

import (
	"fmt"

	"github.com/modkb/hidengine/internal/engine/layer"
)

// Type discriminates the KeyAction variant.
type Type uint8

const (
	// TypeNone is an unbound key.
	TypeNone Type = iota
	// TypeKeystroke emits a scancode and/or modifiers.
	TypeKeystroke
	// TypeMouse drives the virtual mouse.
	TypeMouse
	// TypeSwitchLayer holds or toggles a layer.
	TypeSwitchLayer
	// TypeSwitchKeymap switches the whole keymap.
	TypeSwitchKeymap
	// TypePlayMacro starts a macro.
	TypePlayMacro
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeKeystroke:
		return "keystroke"
	case TypeMouse:
		return "mouse"
	case TypeSwitchLayer:
		return "switchLayer"
	case TypeSwitchKeymap:
		return "switchKeymap"
	case TypePlayMacro:
		return "playMacro"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// KeystrokeType selects the report a keystroke lands in.
type KeystrokeType uint8

const (
	// KeystrokeBasic targets the basic keyboard report.
	KeystrokeBasic KeystrokeType = iota
	// KeystrokeMedia targets the media (consumer) report.
	KeystrokeMedia
	// KeystrokeSystem targets the system report.
	KeystrokeSystem
)

// String returns the keystroke type name.
func (t KeystrokeType) String() string {
	switch t {
	case KeystrokeBasic:
		return "basic"
	case KeystrokeMedia:
		return "media"
	case KeystrokeSystem:
		return "system"
	default:
		return fmt.Sprintf("KeystrokeType(%d)", uint8(t))
	}
}

// Keystroke is the payload of a TypeKeystroke action.
type Keystroke struct {
	Type          KeystrokeType
	Scancode      uint16
	Modifiers     uint8
	SecondaryRole SecondaryRole
}

// SwitchLayerMode selects how a TypeSwitchLayer action drives its layer.
type SwitchLayerMode uint8

const (
	// ModeHold keeps the layer active while the key is pressed.
	ModeHold SwitchLayerMode = iota
	// ModeToggle latches the layer on press.
	ModeToggle
	// ModeHoldAndDoubleTapToggle holds on press and latches on double tap.
	ModeHoldAndDoubleTapToggle
)

// String returns the mode name.
func (m SwitchLayerMode) String() string {
	switch m {
	case ModeHold:
		return "hold"
	case ModeToggle:
		return "toggle"
	case ModeHoldAndDoubleTapToggle:
		return "holdAndDoubleTapToggle"
	default:
		return fmt.Sprintf("SwitchLayerMode(%d)", uint8(m))
	}
}

// SwitchLayer is the payload of a TypeSwitchLayer action.
type SwitchLayer struct {
	Layer layer.ID
	Mode  SwitchLayerMode
}

// KeyAction is the tagged variant of everything a key can do. Only the
// payload selected by Type is meaningful.
type KeyAction struct {
	Type Type

	Keystroke   Keystroke
	Mouse       MouseAction
	SwitchLayer SwitchLayer
	KeymapID    string
	MacroID     uint8
}

// IsNoop reports whether applying the action can have no effect.
func (a KeyAction) IsNoop() bool {
	return a.Type == TypeNone
}
