package engine

import (
	"github.com/modkb/hidengine/internal/engine/action"
	"github.com/modkb/hidengine/internal/engine/keystate"
	"github.com/modkb/hidengine/internal/engine/module"
	"github.com/modkb/hidengine/internal/hid"
)

// processMouseActions runs the kinetic and kinematic engines and folds the
// discrete button states into the mouse report.
func (e *Engine) processMouseActions(now uint32) {
	elapsed := now - e.mouseUpdateTime
	e.mouseUpdateTime = now

	e.moveState.Step(elapsed, &e.activeMouseStates, e.cfg.CompensateDiagonalSpeed)
	e.activeMouse.X = e.moveState.XOut
	e.activeMouse.Y = e.moveState.YOut
	e.moveState.XOut = 0
	e.moveState.YOut = 0

	e.scrollState.Step(elapsed, &e.activeMouseStates, e.cfg.CompensateDiagonalSpeed)
	e.activeMouse.WheelX = e.scrollState.XOut
	e.activeMouse.WheelY = e.scrollState.YOut
	e.scrollState.XOut = 0
	e.scrollState.YOut = 0

	if e.touchpad.Connected {
		e.processTouchpadActions()
		cfg := &e.moduleConfigs[module.TouchpadRight]
		e.moduleState.ProcessModule(now, module.TouchpadRight,
			float32(e.touchpad.X), float32(e.touchpad.Y), cfg, e.layers.Active(), e)
		e.touchpad.X = 0
		e.touchpad.Y = 0
	}

	for i := range e.moduleSlots {
		slot := &e.moduleSlots[i]
		if slot.ModuleID == module.Unavailable || slot.PointerCount == 0 {
			continue
		}
		cfg := &e.moduleConfigs[slot.ModuleID]
		e.moduleState.ProcessModule(now, slot.ModuleID,
			float32(slot.DeltaX), float32(slot.DeltaY), cfg, e.layers.Active(), e)
		slot.DeltaX = 0
		slot.DeltaY = 0
	}

	e.applyMouseButtons()
}

// processTouchpadActions maps tap gestures to button bits. Taps act for one
// cycle; tap-and-hold keeps the left button down until the gesture ends.
func (e *Engine) processTouchpadActions() {
	if e.touchpad.SingleTap {
		e.activeMouse.Buttons |= hid.MouseButtonLeft
		e.touchpad.SingleTap = false
	}
	if e.touchpad.TwoFingerTap {
		e.activeMouse.Buttons |= hid.MouseButtonRight
		e.touchpad.TwoFingerTap = false
	}
	if e.touchpad.TapAndHold {
		e.activeMouse.Buttons |= hid.MouseButtonLeft
	}
}

var buttonBits = [...]struct {
	state action.MouseAction
	bit   uint8
}{
	{action.MouseLeftClick, hid.MouseButtonLeft},
	{action.MouseMiddleClick, hid.MouseButtonMiddle},
	{action.MouseRightClick, hid.MouseButtonRight},
	{action.MouseButton4, hid.MouseButton4},
	{action.MouseButton5, hid.MouseButton5},
	{action.MouseButton6, hid.MouseButton6},
	{action.MouseButton7, hid.MouseButton7},
	{action.MouseButton8, hid.MouseButton8},
}

func (e *Engine) applyMouseButtons() {
	for _, b := range buttonBits {
		if e.activeMouseStates.Active(b.state) {
			e.activeMouse.Buttons |= b.bit
		}
	}
}

// AddCursor implements module.Sink.
func (e *Engine) AddCursor(dx, dy int16) {
	e.activeMouse.X += dx
	e.activeMouse.Y += dy
}

// AddWheel implements module.Sink.
func (e *Engine) AddWheel(dx, dy int16) {
	e.activeMouse.WheelX += dx
	e.activeMouse.WheelY += dy
}

// CaretAction implements module.Sink by resolving the handle against the
// live caret configuration, so reconfiguration retargets even a latched
// action.
func (e *Engine) CaretAction(h module.ActionHandle) *action.KeyAction {
	return e.caretConfigs[h.Module][h.Mode].Action(h)
}

// ApplyCaretAction implements module.Sink: the synthetic key runs through
// the normal action pipeline, then its edge commits immediately so the next
// cycle sees the follow-up state.
func (e *Engine) ApplyCaretAction(fake *keystate.KeyState, act *action.KeyAction) {
	e.applyKeyAction(fake, caretFakeKey, act, act)
	fake.Previous = fake.Current
}
