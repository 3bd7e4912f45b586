package module

import (
	"fmt"

	"github.com/modkb/hidengine/internal/engine/action"
	"github.com/modkb/hidengine/internal/hid"
)

// CaretAxis is the axis-lock state. Horizontal and Vertical double as array
// indices into per-axis tables.
type CaretAxis uint8

const (
	// CaretAxisHorizontal locks ticks to the horizontal axis.
	CaretAxisHorizontal CaretAxis = 0
	// CaretAxisVertical locks ticks to the vertical axis.
	CaretAxisVertical CaretAxis = 1

	caretAxisCount = 2

	// CaretAxisNone means no axis is engaged.
	CaretAxisNone CaretAxis = 2
	// CaretAxisInactive behaves like CaretAxisNone for locking purposes.
	CaretAxisInactive CaretAxis = 3
)

// String returns the axis name.
func (a CaretAxis) String() string {
	switch a {
	case CaretAxisHorizontal:
		return "horizontal"
	case CaretAxisVertical:
		return "vertical"
	case CaretAxisNone:
		return "none"
	case CaretAxisInactive:
		return "inactive"
	default:
		return fmt.Sprintf("CaretAxis(%d)", uint8(a))
	}
}

// other returns the opposite lockable axis.
func (a CaretAxis) other() CaretAxis {
	return 1 - a
}

// AxisActions is the pair of key actions a locked axis can emit.
type AxisActions struct {
	Positive action.KeyAction
	Negative action.KeyAction
}

// CaretConfiguration maps each axis of one (module, mode) pair to its tick
// actions.
type CaretConfiguration struct {
	Axes [caretAxisCount]AxisActions
}

// ActionHandle addresses one caret tick action inside the caret
// configuration tables. The kinematic state latches a handle rather than a
// pointer so reconfiguration cannot leave it dangling.
type ActionHandle struct {
	Module   ID
	Mode     NavigationMode
	Axis     CaretAxis
	Positive bool
}

func basicStroke(scancode uint8) action.KeyAction {
	return action.KeyAction{
		Type:      action.TypeKeystroke,
		Keystroke: action.Keystroke{Type: action.KeystrokeBasic, Scancode: uint16(scancode)},
	}
}

func mediaStroke(scancode uint16) action.KeyAction {
	return action.KeyAction{
		Type:      action.TypeKeystroke,
		Keystroke: action.Keystroke{Type: action.KeystrokeMedia, Scancode: scancode},
	}
}

// DefaultCaretConfiguration returns the stock tick actions for a navigation
// mode: arrows for caret mode, track and volume controls for media mode.
func DefaultCaretConfiguration(mode NavigationMode) CaretConfiguration {
	switch mode {
	case NavMedia:
		return CaretConfiguration{
			Axes: [caretAxisCount]AxisActions{
				CaretAxisHorizontal: {
					Positive: mediaStroke(hid.MediaScanNext),
					Negative: mediaStroke(hid.MediaScanPrev),
				},
				CaretAxisVertical: {
					Positive: mediaStroke(hid.MediaVolumeUp),
					Negative: mediaStroke(hid.MediaVolumeDown),
				},
			},
		}
	default:
		return CaretConfiguration{
			Axes: [caretAxisCount]AxisActions{
				CaretAxisHorizontal: {
					Positive: basicStroke(hid.ScancodeRightArrow),
					Negative: basicStroke(hid.ScancodeLeftArrow),
				},
				CaretAxisVertical: {
					Positive: basicStroke(hid.ScancodeUpArrow),
					Negative: basicStroke(hid.ScancodeDownArrow),
				},
			},
		}
	}
}

// Action resolves a handle against this configuration.
func (c *CaretConfiguration) Action(h ActionHandle) *action.KeyAction {
	dir := &c.Axes[h.Axis]
	if h.Positive {
		return &dir.Positive
	}
	return &dir.Negative
}
