package engine

import (
	"github.com/modkb/hidengine/internal/engine/action"
	"github.com/modkb/hidengine/internal/engine/keystate"
	"github.com/modkb/hidengine/internal/engine/layer"
	"github.com/modkb/hidengine/internal/engine/mousekeys"
	"github.com/modkb/hidengine/internal/engine/secondary"
	"github.com/modkb/hidengine/internal/hid"
)

// applyLayerHolds registers layer holds. Holds always read the base-layer
// action so a layer change cannot strand the hold that caused it.
func (e *Engine) applyLayerHolds(ks *keystate.KeyState, base *action.KeyAction) {
	if base.Type == action.TypeSwitchLayer && ks.Active() {
		switch base.SwitchLayer.Mode {
		case action.ModeHold, action.ModeHoldAndDoubleTapToggle:
			e.layers.HoldLayer(base.SwitchLayer.Layer)
		case action.ModeToggle:
			// Toggling has no hold effect.
		}
	}

	// With a non-base layer active, a base-layer dual-role layer switcher
	// is assumed to be in its secondary role, so it behaves like a plain
	// layer hold.
	if e.layers.Active() != layer.Base &&
		base.Type == action.TypeKeystroke &&
		base.Keystroke.SecondaryRole.IsLayerSwitcher() &&
		ks.Active() {
		e.layers.HoldLayer(base.Keystroke.SecondaryRole.Layer())
	}
}

// applyKeyAction dispatches one key's cached action for this cycle.
func (e *Engine) applyKeyAction(ks *keystate.KeyState, c keystate.Coord, act, base *action.KeyAction) {
	switch act.Type {
	case action.TypeKeystroke:
		if ks.NonZero() {
			e.applyKeystroke(ks, c, act, base)
		}
	case action.TypeMouse:
		if ks.ActivatedNow() {
			e.sticky = 0
			mousekeys.ActivateDirectionSigns(&e.moveState, &e.scrollState, act.Mouse)
		}
		e.activeMouseStates.Activate(act.Mouse)
	case action.TypeSwitchLayer:
		if ks.Current != ks.Previous {
			e.applyToggleLayerAction(ks, c, act)
		}
	case action.TypeSwitchKeymap:
		if ks.ActivatedNow() {
			e.sticky = 0
			// A stale id degrades to a no-op; the current keymap stays.
			_ = e.keymaps.Switch(act.KeymapID)
		}
	case action.TypePlayMacro:
		if ks.ActivatedNow() {
			e.sticky = 0
			_ = e.macros.Start(act.MacroID)
		}
	}
}

// applyToggleLayerAction handles the toggle-flavored effects of a layer key
// on its press and release edges; holds are covered by applyLayerHolds.
func (e *Engine) applyToggleLayerAction(ks *keystate.KeyState, c keystate.Coord, act *action.KeyAction) {
	switch act.SwitchLayer.Mode {
	case action.ModeHoldAndDoubleTapToggle:
		e.layers.DoubleTapToggle(act.SwitchLayer.Layer, c, ks, e.now)
	case action.ModeToggle:
		if ks.ActivatedNow() {
			e.layers.ToggleLayer(act.SwitchLayer.Layer)
		}
	case action.ModeHold:
		if ks.ActivatedNow() {
			e.layers.UnToggleLayerOnly(act.SwitchLayer.Layer)
		}
	}
}

// applyKeystroke routes a keystroke through secondary-role resolution when
// the key is dual-role.
func (e *Engine) applyKeystroke(ks *keystate.KeyState, c keystate.Coord, act, base *action.KeyAction) {
	if act.Keystroke.SecondaryRole != action.SecondaryRoleNone {
		switch e.resolver.Resolve(c, &e.postponed, e.now) {
		case secondary.StatePrimary:
			e.applyKeystrokePrimary(ks, c, act)
		case secondary.StateSecondary:
			e.applyKeystrokeSecondary(ks, act, base)
		case secondary.StateDontKnowYet:
			// Keep the postponer holding the key stream until the
			// resolver decides.
			e.postponed.PostponeNCycles(1)
		}
		if ks.DeactivatedNow() {
			e.resolver.Forget(c)
		}
		return
	}
	e.applyKeystrokePrimary(ks, c, act)
}

// isStickyShortcut recognizes the chorded shortcuts whose modifiers may
// outlive their key: Alt/Super/Ctrl combined with Tab or an arrow.
func isStickyShortcut(act *action.KeyAction) bool {
	if act.Type != action.TypeKeystroke ||
		act.Keystroke.Type != action.KeystrokeBasic ||
		act.Keystroke.Modifiers == 0 {
		return false
	}

	const chordMods = hid.ModAltMask | hid.ModSuperMask | hid.ModCtrlMask

	switch uint8(act.Keystroke.Scancode) {
	case hid.ScancodeTab, hid.ScancodeLeftArrow, hid.ScancodeRightArrow,
		hid.ScancodeUpArrow, hid.ScancodeDownArrow:
		return act.Keystroke.Modifiers&chordMods != 0
	}
	return false
}

// activateStickyMods records a keystroke's action modifiers as the sticky
// set. With a held layer and a chorded shortcut the set outlives the key.
func (e *Engine) activateStickyMods(c keystate.Coord, act *action.KeyAction) {
	e.sticky = act.Keystroke.Modifiers
	e.stickyKey = c
	e.stickyHasKey = true
	e.stickyShouldStick = e.layers.Held() && isStickyShortcut(act)
}

// applyKeystrokePrimary emits a keystroke's scancode and manages the sticky
// modifier lifecycle.
func (e *Engine) applyKeystrokePrimary(ks *keystate.KeyState, c keystate.Coord, act *action.KeyAction) {
	stroke := &act.Keystroke

	if ks.Active() {
		stickyModifiersChanged := false
		if stroke.Scancode != 0 {
			// On keydown, replace the old sticky modifiers with this
			// action's.
			if ks.ActivatedNow() {
				stickyModifiersChanged = stroke.Modifiers != e.sticky
				e.activateStickyMods(c, act)
			}
		} else {
			e.activeBasic.Modifiers |= stroke.Modifiers
		}

		// When the modifiers changed, send them alone for one cycle and
		// start the scancode the next, so the host sees the chord, not a
		// bare keypress.
		if !stickyModifiersChanged || ks.ActivatedEarlier() {
			switch stroke.Type {
			case action.KeystrokeBasic:
				e.activeBasic.AddScancode(uint8(stroke.Scancode))
			case action.KeystrokeMedia:
				e.activeMedia.AddScancode(stroke.Scancode)
			case action.KeystrokeSystem:
				e.activeSystem.AddScancode(uint8(stroke.Scancode))
			}
		}
	} else if ks.DeactivatedNow() {
		if e.stickyHasKey && e.stickyKey == c && !e.stickyShouldStick {
			// One last modifier-only report, then the stickies drop.
			e.activeBasic.Modifiers |= e.sticky
			e.clearSticky()
		}
	}
}

// applyKeystrokeSecondary applies a resolved hold: a layer hold or a held
// modifier.
func (e *Engine) applyKeystrokeSecondary(ks *keystate.KeyState, act, base *action.KeyAction) {
	role := act.Keystroke.SecondaryRole
	if role.IsLayerSwitcher() {
		// Hold only while the cached action still matches the base
		// action; a keymap change mid-press suppresses the hold the way
		// a released key would.
		if base.Type == action.TypeKeystroke && base.Keystroke.SecondaryRole == role {
			if ks.Active() {
				e.layers.HoldLayer(role.Layer())
			}
		}
	} else if role.IsModifier() {
		if ks.Active() {
			e.activeBasic.Modifiers |= role.Modifier()
		}
	}
}
