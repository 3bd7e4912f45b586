package engine

import (
	"errors"

	"github.com/modkb/hidengine/internal/engine/action"
	"github.com/modkb/hidengine/internal/engine/keymap"
	"github.com/modkb/hidengine/internal/engine/keystate"
	"github.com/modkb/hidengine/internal/engine/layer"
	"github.com/modkb/hidengine/internal/engine/macro"
	"github.com/modkb/hidengine/internal/engine/module"
	"github.com/modkb/hidengine/internal/engine/mousekeys"
	"github.com/modkb/hidengine/internal/engine/postponer"
	"github.com/modkb/hidengine/internal/engine/secondary"
	"github.com/modkb/hidengine/internal/hid"
)

// ErrInFlight is returned by an asynchronous Transport that took ownership
// of a report and will acknowledge its delivery through AckReport later.
var ErrInFlight = errors.New("report in flight")

// Transport delivers reports to the host. A synchronous transport returns
// nil when the report is out; an asynchronous one returns ErrInFlight and
// calls Engine.AckReport on completion. Any other error makes the engine
// retry the report next cycle.
type Transport interface {
	SendBasicKeyboard(r *hid.BasicKeyboardReport) error
	SendMediaKeyboard(r *hid.MediaKeyboardReport) error
	SendSystemKeyboard(r *hid.SystemKeyboardReport) error
	SendMouse(r *hid.MouseReport) error
}

// ModuleSlotCount is the number of module bays that can report pointer
// deltas.
const ModuleSlotCount = 3

// ModuleSlotState is one module bay's input for the current cycle. The
// integration layer accumulates deltas into it; the engine consumes and
// zeroes them every cycle.
type ModuleSlotState struct {
	ModuleID     module.ID
	PointerCount uint8
	DeltaX       int16
	DeltaY       int16
}

// TouchpadState is the touchpad's input for the current cycle. Tap events
// are consumed by the engine; deltas are consumed and zeroed like module
// deltas.
type TouchpadState struct {
	Connected    bool
	X            int16
	Y            int16
	SingleTap    bool
	TwoFingerTap bool
	TapAndHold   bool
}

const navigationModeCount = 5

// Engine owns the whole input-report pipeline.
type Engine struct {
	cfg       Config
	transport Transport

	matrix  keystate.Matrix
	keymaps *keymap.Registry
	layers  *layer.Switcher
	postponed postponer.Core
	resolver  *secondary.Resolver
	macros    *macro.Engine

	// actionCache snapshots the action seen at key-down so a press is not
	// retargeted by layer or keymap changes mid-flight.
	actionCache [keystate.SlotCount][keystate.MaxKeysPerSlot]action.KeyAction

	moveState          mousekeys.KineticState
	scrollState        mousekeys.KineticState
	activeMouseStates  mousekeys.StateCounters
	toggledMouseStates mousekeys.StateCounters

	moduleState   *module.KineticState
	moduleConfigs [module.IDCount]module.Configuration
	caretConfigs  [module.IDCount][navigationModeCount]module.CaretConfiguration

	moduleSlots [ModuleSlotCount]ModuleSlotState
	touchpad    TouchpadState

	// Sticky modifiers: action modifiers of a composed shortcut, emitted
	// until the next activation and optionally outliving their key.
	sticky            uint8
	stickyKey         keystate.Coord
	stickyHasKey      bool
	stickyShouldStick bool

	now             uint32
	lastUpdateTime  uint32
	mouseUpdateTime uint32
	updateCounter   uint32

	semaphore    hid.Semaphore
	sendCounters [hid.InterfaceCount]uint32

	activeBasic, inactiveBasic   hid.BasicKeyboardReport
	activeMedia, inactiveMedia   hid.MediaKeyboardReport
	activeSystem, inactiveSystem hid.SystemKeyboardReport
	activeMouse, inactiveMouse   hid.MouseReport

	// wakeHost fires on any key activation, for sleep-mode integration.
	wakeHost func()
}

// caretFakeKey is the stable identity of the synthetic caret key.
var caretFakeKey = keystate.Coord{Slot: keystate.SlotID(0xFF), Key: 0xFF}

// New returns an engine with default module tuning and an empty keymap
// registry.
func New(cfg Config, transport Transport) *Engine {
	e := &Engine{
		cfg:         cfg,
		transport:   transport,
		keymaps:     keymap.NewRegistry(),
		layers:      layer.NewSwitcher(),
		resolver:    secondary.NewResolver(),
		moveState:   mousekeys.NewMoveState(),
		scrollState: mousekeys.NewScrollState(),
		moduleState: module.NewKineticState(),
	}
	e.macros = macro.NewEngine(e.ToggleMouseState)

	for id := module.ID(0); id < module.IDCount; id++ {
		e.moduleConfigs[id] = module.DefaultConfiguration(id)
		for mode := module.NavigationMode(0); mode < navigationModeCount; mode++ {
			e.caretConfigs[id][mode] = module.DefaultCaretConfiguration(mode)
		}
	}

	return e
}

// Keymaps returns the keymap registry.
func (e *Engine) Keymaps() *keymap.Registry {
	return e.keymaps
}

// Macros returns the macro engine.
func (e *Engine) Macros() *macro.Engine {
	return e.macros
}

// Layers returns the layer switcher.
func (e *Engine) Layers() *layer.Switcher {
	return e.layers
}

// SecondaryRoleResolver returns the dual-role resolver.
func (e *Engine) SecondaryRoleResolver() *secondary.Resolver {
	return e.resolver
}

// MouseMoveState returns the cursor kinetic state for tuning.
func (e *Engine) MouseMoveState() *mousekeys.KineticState {
	return &e.moveState
}

// MouseScrollState returns the scroll kinetic state for tuning.
func (e *Engine) MouseScrollState() *mousekeys.KineticState {
	return &e.scrollState
}

// ModuleConfiguration returns a module's tuning block.
func (e *Engine) ModuleConfiguration(id module.ID) *module.Configuration {
	return &e.moduleConfigs[id]
}

// CaretConfiguration returns the caret action table of a (module, mode)
// pair.
func (e *Engine) CaretConfiguration(id module.ID, mode module.NavigationMode) *module.CaretConfiguration {
	return &e.caretConfigs[id][mode]
}

// SetHardwareSwitchState stores one key's sampled matrix value.
func (e *Engine) SetHardwareSwitchState(c keystate.Coord, pressed bool) {
	e.matrix.SetHardware(c, pressed)
}

// KeyState exposes a key's state, for integration layers and tests.
func (e *Engine) KeyState(c keystate.Coord) *keystate.KeyState {
	return e.matrix.At(c)
}

// Touchpad returns the touchpad input record.
func (e *Engine) Touchpad() *TouchpadState {
	return &e.touchpad
}

// ModuleSlot returns one module bay's input record.
func (e *Engine) ModuleSlot(i int) *ModuleSlotState {
	return &e.moduleSlots[i]
}

// SetWakeHostFunc installs the callback fired on any key activation.
func (e *Engine) SetWakeHostFunc(fn func()) {
	e.wakeHost = fn
}

// UpdateCounter returns the number of completed update cycles.
func (e *Engine) UpdateCounter() uint32 {
	return e.updateCounter
}

// SendCounter returns the number of reports handed to the transport for one
// interface.
func (e *Engine) SendCounter(i hid.Interface) uint32 {
	return e.sendCounters[i]
}

// BasicReport returns this cycle's basic keyboard report.
func (e *Engine) BasicReport() *hid.BasicKeyboardReport { return &e.activeBasic }

// MediaReport returns this cycle's media keyboard report.
func (e *Engine) MediaReport() *hid.MediaKeyboardReport { return &e.activeMedia }

// SystemReport returns this cycle's system keyboard report.
func (e *Engine) SystemReport() *hid.SystemKeyboardReport { return &e.activeSystem }

// MouseReport returns this cycle's mouse report.
func (e *Engine) MouseReport() *hid.MouseReport { return &e.activeMouse }

// AckReport acknowledges an asynchronous transport's delivery of an
// interface's report.
func (e *Engine) AckReport(i hid.Interface) {
	e.semaphore.Clear(i)
}

// ToggleMouseState drives a persistent virtual-mouse state from outside the
// key pipeline, typically from a macro. Activation also bumps the per-cycle
// scratch so the toggle acts within the current cycle, and sets the
// direction sign so the first kinetic sample is not dropped.
func (e *Engine) ToggleMouseState(a action.MouseAction, activate bool) {
	if activate {
		e.toggledMouseStates.Activate(a)
		e.activeMouseStates.Activate(a)
		mousekeys.ActivateDirectionSigns(&e.moveState, &e.scrollState, a)
	} else {
		e.toggledMouseStates.Deactivate(a)
	}
}

// Update runs one engine cycle at the given millisecond time.
func (e *Engine) Update(now uint32) {
	e.now = now

	if e.semaphore.Any() {
		if now-e.lastUpdateTime < e.cfg.SemaphoreTimeout {
			return
		}
		e.semaphore = 0
	}

	e.lastUpdateTime = now
	e.updateCounter++

	e.activeBasic.Reset()
	e.activeMedia.Reset()
	e.activeSystem.Reset()
	e.activeMouse.Reset()

	e.updateActiveReports(now)

	if e.activeBasic != e.inactiveBasic {
		e.send(hid.InterfaceBasicKeyboard)
	}
	if e.activeMedia != e.inactiveMedia {
		e.send(hid.InterfaceMediaKeyboard)
	}
	if e.activeSystem != e.inactiveSystem {
		e.send(hid.InterfaceSystemKeyboard)
	}
	// Motion keeps streaming even when the report value repeats; buttons
	// alone only send on change.
	if e.activeMouse != e.inactiveMouse || e.activeMouse.HasMotion() {
		e.send(hid.InterfaceMouse)
	}
}

// send hands one interface's report to the transport, tracking the in-flight
// semaphore. A failed send clears the bit so the next cycle retries.
func (e *Engine) send(i hid.Interface) {
	e.semaphore.Set(i)

	var err error
	switch i {
	case hid.InterfaceBasicKeyboard:
		err = e.transport.SendBasicKeyboard(&e.activeBasic)
	case hid.InterfaceMediaKeyboard:
		err = e.transport.SendMediaKeyboard(&e.activeMedia)
	case hid.InterfaceSystemKeyboard:
		err = e.transport.SendSystemKeyboard(&e.activeSystem)
	case hid.InterfaceMouse:
		err = e.transport.SendMouse(&e.activeMouse)
	}

	switch {
	case err == nil:
		e.semaphore.Clear(i)
	case errors.Is(err, ErrInFlight):
		// Bit stays set until AckReport.
	default:
		e.semaphore.Clear(i)
		return
	}

	e.sendCounters[i]++

	switch i {
	case hid.InterfaceBasicKeyboard:
		e.inactiveBasic = e.activeBasic
	case hid.InterfaceMediaKeyboard:
		e.inactiveMedia = e.activeMedia
	case hid.InterfaceSystemKeyboard:
		e.inactiveSystem = e.activeSystem
	case hid.InterfaceMouse:
		e.inactiveMouse = e.activeMouse
	}
}

// updateActiveReports fills the four active reports for this cycle.
func (e *Engine) updateActiveReports(now uint32) {
	if e.macros.Playing() {
		e.macros.Continue(now)
		r := e.macros.Reports()
		e.activeBasic = r.Basic
		e.activeMedia = r.Media
		e.activeSystem = r.System
		e.activeMouse = r.Mouse
		return
	}

	// Persistent toggled states participate in this cycle's scratch.
	e.activeMouseStates.CopyFrom(&e.toggledMouseStates)

	if e.layers.Update() {
		e.clearSticky()
	}

	if e.postponed.IsActive() {
		e.postponed.RunPostponedEvents(func(c keystate.Coord, active bool) {
			e.matrix.At(c).Current = active
		})
	}

	e.matrix.ForEach(func(c keystate.Coord, ks *keystate.KeyState) {
		e.cfg.Debounce.Step(ks, now, func(active bool) {
			e.commitKeyState(c, ks, active)
		})

		if !ks.NonZero() {
			return
		}

		if ks.ActivatedNow() {
			if e.wakeHost != nil {
				e.wakeHost()
			}
			e.actionCache[c.Slot][c.Key] = e.keymapAction(e.layers.Active(), c)
			e.layers.DoubleTapInterrupt(c)
		}

		cached := &e.actionCache[c.Slot][c.Key]
		base := e.keymapAction(layer.Base, c)

		e.applyLayerHolds(ks, &base)
		e.applyKeyAction(ks, c, cached, &base)

		ks.Previous = ks.Current
	})

	e.processMouseActions(now)

	e.postponed.FinishCycle()

	// Sticky modifiers outlive their key until cleared.
	e.activeBasic.Modifiers |= e.sticky
}

// keymapAction reads the current keymap, degrading to an unbound key when no
// keymap is loaded.
func (e *Engine) keymapAction(l layer.ID, c keystate.Coord) action.KeyAction {
	km := e.keymaps.Current()
	if km == nil {
		return action.KeyAction{}
	}
	return km.Action(l, c)
}

// commitKeyState is the only path that changes a key's logical state. While
// the postponer is active the transition queues instead.
func (e *Engine) commitKeyState(c keystate.Coord, ks *keystate.KeyState, active bool) {
	if e.postponed.IsActive() {
		e.postponed.TrackKeyEvent(c, active)
	} else {
		ks.Current = active
	}
}

func (e *Engine) clearSticky() {
	e.sticky = 0
	e.stickyHasKey = false
}
