package module

import (
	"fmt"
	"strings"

	"github.com/modkb/hidengine/internal/engine/layer"
)

// ID identifies an input module type.
type ID uint8

const (
	// Unavailable marks an empty module bay.
	Unavailable ID = iota
	// KeyClusterLeft is the left key cluster with its mini trackball.
	KeyClusterLeft
	// TrackballRight is the right trackball module.
	TrackballRight
	// TrackpointRight is the right trackpoint module.
	TrackpointRight
	// TouchpadRight is the right touchpad module.
	TouchpadRight

	// IDCount is the number of module ids.
	IDCount
)

// String returns the module name.
func (id ID) String() string {
	switch id {
	case Unavailable:
		return "unavailable"
	case KeyClusterLeft:
		return "keyClusterLeft"
	case TrackballRight:
		return "trackballRight"
	case TrackpointRight:
		return "trackpointRight"
	case TouchpadRight:
		return "touchpadRight"
	default:
		return fmt.Sprintf("ID(%d)", uint8(id))
	}
}

// YInversion returns the module's vertical sign convention: the key cluster
// and the touchpad report y growing away from the user.
func (id ID) YInversion() int16 {
	if id == KeyClusterLeft || id == TouchpadRight {
		return -1
	}
	return 1
}

// NavigationMode selects what a module's deltas drive on a given layer.
type NavigationMode uint8

const (
	// NavCursor moves the pointer.
	NavCursor NavigationMode = iota
	// NavScroll turns the wheel.
	NavScroll
	// NavCaret emits arrow-style key events through the axis lock.
	NavCaret
	// NavMedia emits media key events through the axis lock.
	NavMedia
	// NavNone ignores the module's deltas.
	NavNone
)

// String returns the mode name.
func (m NavigationMode) String() string {
	switch m {
	case NavCursor:
		return "cursor"
	case NavScroll:
		return "scroll"
	case NavCaret:
		return "caret"
	case NavMedia:
		return "media"
	case NavNone:
		return "none"
	default:
		return fmt.Sprintf("NavigationMode(%d)", uint8(m))
	}
}

// NavigationModeFromName returns the mode for a name (case-insensitive) and
// whether the name was recognized.
func NavigationModeFromName(name string) (NavigationMode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cursor":
		return NavCursor, true
	case "scroll":
		return NavScroll, true
	case "caret":
		return NavCaret, true
	case "media":
		return NavMedia, true
	case "none":
		return NavNone, true
	}
	return NavNone, false
}

// Configuration is the per-module kinematic tuning block.
type Configuration struct {
	BaseSpeed              float32
	Speed                  float32
	Acceleration           float32
	CaretSpeedDivisor      float32
	ScrollSpeedDivisor     float32
	CaretLockSkew          float32
	CaretLockSkewFirstTick float32
	CursorAxisLock         bool
	ScrollAxisLock         bool
	InvertAxis             bool

	// NavigationModes selects the module's function per active layer.
	NavigationModes [layer.Count]NavigationMode

	// CurrentSpeed is the measured pointer speed in px/ms, maintained by
	// the kinematic engine.
	CurrentSpeed float32
}

// DefaultConfiguration returns the stock tuning for a module.
func DefaultConfiguration(id ID) Configuration {
	cfg := Configuration{
		BaseSpeed:              0.5,
		Speed:                  1.0,
		Acceleration:           0.5,
		CaretSpeedDivisor:      16,
		ScrollSpeedDivisor:     8,
		CaretLockSkew:          0.5,
		CaretLockSkewFirstTick: 1.0,
		NavigationModes: [layer.Count]NavigationMode{
			layer.Base:  NavCursor,
			layer.Mod:   NavScroll,
			layer.Fn:    NavCaret,
			layer.Mouse: NavCursor,
		},
	}
	if id == KeyClusterLeft {
		cfg.NavigationModes[layer.Base] = NavScroll
	}
	return cfg
}
