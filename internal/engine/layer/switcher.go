package layer

import "github.com/modkb/hidengine/internal/engine/keystate"

// DefaultDoubleTapTimeout is the double-tap toggle window in milliseconds.
const DefaultDoubleTapTimeout = 400

// Switcher resolves the active layer once per cycle from the holds and
// toggles registered since the previous resolution.
type Switcher struct {
	// DoubleTapTimeout is the double-tap toggle window in milliseconds.
	DoubleTapTimeout uint32

	active ID
	held   bool

	// Hold registered during the current cycle; consumed by Update.
	heldLayer     ID
	holdRegistered bool

	toggledLayer ID
	toggled      bool

	// Double-tap tracking.
	lastTapKey   keystate.Coord
	lastTapTime  uint32
	lastTapValid bool
}

// NewSwitcher returns a switcher resting on the base layer.
func NewSwitcher() *Switcher {
	return &Switcher{DoubleTapTimeout: DefaultDoubleTapTimeout}
}

// Active returns the layer resolved by the last Update.
func (s *Switcher) Active() ID {
	return s.active
}

// Held reports whether a hold is the reason the active layer is active.
func (s *Switcher) Held() bool {
	return s.held
}

// HoldLayer registers a hold for this cycle. The first hold registered in a
// cycle wins; the hold takes effect at the next Update.
func (s *Switcher) HoldLayer(id ID) {
	if id == Base || s.holdRegistered {
		return
	}
	s.heldLayer = id
	s.holdRegistered = true
}

// ToggleLayer latches a layer until it is untoggled or replaced.
func (s *Switcher) ToggleLayer(id ID) {
	if id == Base {
		return
	}
	s.toggledLayer = id
	s.toggled = true
}

// UnToggleLayerOnly cancels a toggle of the given layer, leaving any hold
// untouched. A plain hold action uses this to dismiss a stale toggle.
func (s *Switcher) UnToggleLayerOnly(id ID) {
	if s.toggled && s.toggledLayer == id {
		s.toggled = false
	}
}

// DoubleTapToggle handles a transition of a hold-and-double-tap key: every
// press acts as a hold, and a second press of the same key within the
// double-tap window latches the layer as toggled.
func (s *Switcher) DoubleTapToggle(id ID, key keystate.Coord, k *keystate.KeyState, now uint32) {
	if k.ActivatedNow() {
		if s.lastTapValid && s.lastTapKey == key && now-s.lastTapTime <= s.DoubleTapTimeout {
			s.ToggleLayer(id)
			s.lastTapValid = false
		} else {
			s.lastTapKey = key
			s.lastTapTime = now
			s.lastTapValid = true
		}
	}
	if k.Active() {
		s.HoldLayer(id)
	}
}

// DoubleTapInterrupt cancels a pending double tap. Called when any other key
// activates between the two taps.
func (s *Switcher) DoubleTapInterrupt(key keystate.Coord) {
	if s.lastTapValid && s.lastTapKey != key {
		s.lastTapValid = false
	}
}

// Update resolves the active layer from the inputs registered since the last
// Update and clears the per-cycle hold. Returns true when the active layer
// changed.
func (s *Switcher) Update() bool {
	previous := s.active

	switch {
	case s.holdRegistered:
		s.active = s.heldLayer
		s.held = true
	case s.toggled:
		s.active = s.toggledLayer
		s.held = false
	default:
		s.active = Base
		s.held = false
	}

	s.holdRegistered = false
	return s.active != previous
}
