package engine

import (
	"errors"
	"testing"

	"github.com/modkb/hidengine/internal/engine/action"
	"github.com/modkb/hidengine/internal/engine/keymap"
	"github.com/modkb/hidengine/internal/engine/keystate"
	"github.com/modkb/hidengine/internal/engine/layer"
	"github.com/modkb/hidengine/internal/engine/module"
	"github.com/modkb/hidengine/internal/hid"
)

// recordTransport captures every sent report.
type recordTransport struct {
	basics  []hid.BasicKeyboardReport
	medias  []hid.MediaKeyboardReport
	systems []hid.SystemKeyboardReport
	mice    []hid.MouseReport
	err     error
}

func (t *recordTransport) SendBasicKeyboard(r *hid.BasicKeyboardReport) error {
	if t.err != nil {
		return t.err
	}
	t.basics = append(t.basics, *r)
	return nil
}

func (t *recordTransport) SendMediaKeyboard(r *hid.MediaKeyboardReport) error {
	if t.err != nil {
		return t.err
	}
	t.medias = append(t.medias, *r)
	return nil
}

func (t *recordTransport) SendSystemKeyboard(r *hid.SystemKeyboardReport) error {
	if t.err != nil {
		return t.err
	}
	t.systems = append(t.systems, *r)
	return nil
}

func (t *recordTransport) SendMouse(r *hid.MouseReport) error {
	if t.err != nil {
		return t.err
	}
	t.mice = append(t.mice, *r)
	return nil
}

func sends(t *recordTransport) int {
	return len(t.basics) + len(t.medias) + len(t.systems) + len(t.mice)
}

func testConfig() Config {
	cfg := DefaultConfig()
	// Instant edges keep the tests about the pipeline, not the gate.
	cfg.Debounce = keystate.Debouncer{PressTime: 0, ReleaseTime: 0}
	return cfg
}

func basicKey(scancode uint8, modifiers uint8) action.KeyAction {
	return action.KeyAction{
		Type: action.TypeKeystroke,
		Keystroke: action.Keystroke{
			Type:      action.KeystrokeBasic,
			Scancode:  uint16(scancode),
			Modifiers: modifiers,
		},
	}
}

var (
	keyA    = keystate.Coord{Slot: keystate.SlotRightHalf, Key: 0}
	keyTab  = keystate.Coord{Slot: keystate.SlotRightHalf, Key: 1}
	keyHold = keystate.Coord{Slot: keystate.SlotRightHalf, Key: 2}
	keyDual = keystate.Coord{Slot: keystate.SlotLeftHalf, Key: 0}
	keyB    = keystate.Coord{Slot: keystate.SlotLeftHalf, Key: 1}
)

// newTestEngine builds an engine with a small keymap:
//
//	base: keyA='a', keyHold=hold fn, keyDual='a'+mod-layer role, keyB='b'
//	fn:   keyTab=Alt+Tab
//	mod:  keyB='x'
func newTestEngine(t *testing.T) (*Engine, *recordTransport) {
	t.Helper()

	tr := &recordTransport{}
	e := New(testConfig(), tr)

	km := keymap.New("TST", "test")
	km.Bind(layer.Base, keyA, basicKey(hid.ScancodeA, 0))
	km.Bind(layer.Base, keyHold, action.KeyAction{
		Type:        action.TypeSwitchLayer,
		SwitchLayer: action.SwitchLayer{Layer: layer.Fn, Mode: action.ModeHold},
	})
	dual := basicKey(hid.ScancodeA, 0)
	dual.Keystroke.SecondaryRole = action.SecondaryRoleMod
	km.Bind(layer.Base, keyDual, dual)
	km.Bind(layer.Base, keyB, basicKey(hid.ScancodeB, 0))
	km.Bind(layer.Fn, keyTab, basicKey(hid.ScancodeTab, hid.ModLeftAlt))
	km.Bind(layer.Mod, keyB, basicKey(hid.ScancodeX, 0))
	e.Keymaps().Add(km)

	return e, tr
}

func TestIdleCycleSendsNothing(t *testing.T) {
	e, tr := newTestEngine(t)
	for now := uint32(1); now <= 5; now++ {
		e.Update(now)
	}
	if n := sends(tr); n != 0 {
		t.Errorf("%d reports sent with no input", n)
	}
	if e.UpdateCounter() != 5 {
		t.Errorf("UpdateCounter() = %d, want 5", e.UpdateCounter())
	}
}

func TestPlainKeystroke(t *testing.T) {
	e, tr := newTestEngine(t)

	e.SetHardwareSwitchState(keyA, true)
	e.Update(1)

	if !e.BasicReport().ContainsScancode(hid.ScancodeA) {
		t.Fatal("scancode missing after press cycle")
	}
	if len(tr.basics) != 1 {
		t.Fatalf("%d basic reports sent, want 1", len(tr.basics))
	}

	// Held: report unchanged, nothing new sent.
	e.Update(2)
	if len(tr.basics) != 1 {
		t.Errorf("%d basic reports sent while held, want 1", len(tr.basics))
	}

	e.SetHardwareSwitchState(keyA, false)
	e.Update(3)
	if e.BasicReport().ContainsScancode(hid.ScancodeA) {
		t.Error("scancode still present after release")
	}
	if len(tr.basics) != 2 {
		t.Errorf("%d basic reports sent after release, want 2", len(tr.basics))
	}
}

// Sticky Alt+Tab: with a held layer, the chord's modifiers go out alone for
// one cycle, then with the scancode, and survive the key's release until the
// layer drops.
func TestStickyAltTab(t *testing.T) {
	e, tr := newTestEngine(t)

	// Hold the fn layer key; the hold takes effect next cycle.
	e.SetHardwareSwitchState(keyHold, true)
	e.Update(1)
	e.Update(2)
	if e.Layers().Active() != layer.Fn {
		t.Fatalf("active layer = %v, want fn", e.Layers().Active())
	}

	// Press Alt+Tab on the fn layer.
	e.SetHardwareSwitchState(keyTab, true)
	e.Update(3)
	if mods := e.BasicReport().Modifiers; mods != hid.ModLeftAlt {
		t.Fatalf("press cycle modifiers = %#x, want alt only", mods)
	}
	if e.BasicReport().ContainsScancode(hid.ScancodeTab) {
		t.Fatal("scancode emitted on the modifier-only cycle")
	}

	e.Update(4)
	if !e.BasicReport().ContainsScancode(hid.ScancodeTab) {
		t.Fatal("scancode missing on the second cycle")
	}
	if e.BasicReport().Modifiers != hid.ModLeftAlt {
		t.Fatal("modifiers dropped on the second cycle")
	}

	// Release Tab, keep holding the layer: the modifiers stick.
	e.SetHardwareSwitchState(keyTab, false)
	e.Update(5)
	if e.BasicReport().Modifiers != hid.ModLeftAlt {
		t.Error("sticky modifiers dropped while layer held")
	}
	e.Update(6)
	if e.BasicReport().Modifiers != hid.ModLeftAlt {
		t.Error("sticky modifiers did not persist")
	}

	// Release the layer key: next cycle the layer drops and the stickies
	// clear with it.
	e.SetHardwareSwitchState(keyHold, false)
	e.Update(7)
	e.Update(8)
	if e.Layers().Active() != layer.Base {
		t.Fatalf("active layer = %v, want base", e.Layers().Active())
	}
	if e.BasicReport().Modifiers != 0 {
		t.Errorf("modifiers = %#x after layer release, want 0", e.BasicReport().Modifiers)
	}

	_ = tr
}

// A dual-role key tapped alone resolves primary: the scancode appears once
// the release enters the postponer queue.
func TestSecondaryRoleTapResolvesPrimary(t *testing.T) {
	e, _ := newTestEngine(t)

	e.SetHardwareSwitchState(keyDual, true)
	e.Update(1)
	if e.BasicReport().ContainsScancode(hid.ScancodeA) {
		t.Fatal("scancode emitted while undecided")
	}
	e.Update(2)
	if e.BasicReport().ContainsScancode(hid.ScancodeA) {
		t.Fatal("scancode emitted while undecided (second cycle)")
	}

	e.SetHardwareSwitchState(keyDual, false)
	e.Update(3)
	if !e.BasicReport().ContainsScancode(hid.ScancodeA) {
		t.Fatal("scancode missing after primary resolution")
	}

	e.Update(4)
	e.Update(5)
	if e.BasicReport().ContainsScancode(hid.ScancodeA) {
		t.Error("scancode still present after replayed release")
	}
}

// A dual-role key held while another key arrives resolves secondary: the
// other key types from the held layer.
func TestSecondaryRoleHoldResolvesSecondary(t *testing.T) {
	e, _ := newTestEngine(t)

	e.SetHardwareSwitchState(keyDual, true)
	e.Update(1)

	e.SetHardwareSwitchState(keyB, true)
	e.Update(2)
	e.Update(3)
	e.Update(4)
	e.Update(5)

	if e.Layers().Active() != layer.Mod {
		t.Fatalf("active layer = %v, want mod", e.Layers().Active())
	}
	if !e.BasicReport().ContainsScancode(hid.ScancodeX) {
		t.Error("other key did not type from the held layer")
	}
	if e.BasicReport().ContainsScancode(hid.ScancodeA) {
		t.Error("dual key's primary scancode leaked")
	}
}

func TestToggleMouseStateRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t)

	e.ToggleMouseState(action.MouseLeftClick, true)
	e.Update(1)
	if e.MouseReport().Buttons&hid.MouseButtonLeft == 0 {
		t.Error("left button missing after toggle on")
	}

	e.ToggleMouseState(action.MouseLeftClick, false)
	e.Update(2)
	if e.MouseReport().Buttons != 0 {
		t.Error("button still set after toggle off")
	}

	// Deactivating an inactive toggle stays at the floor.
	e.ToggleMouseState(action.MouseLeftClick, false)
	e.ToggleMouseState(action.MouseLeftClick, true)
	e.Update(3)
	if e.MouseReport().Buttons&hid.MouseButtonLeft == 0 {
		t.Error("toggle counter corrupted by extra deactivation")
	}
}

func TestSemaphoreSkipsCycles(t *testing.T) {
	tr := &recordTransport{err: ErrInFlight}
	e := New(testConfig(), tr)

	km := keymap.New("TST", "test")
	km.Bind(layer.Base, keyA, basicKey(hid.ScancodeA, 0))
	e.Keymaps().Add(km)

	e.SetHardwareSwitchState(keyA, true)
	e.Update(1)
	if e.UpdateCounter() != 1 {
		t.Fatalf("UpdateCounter() = %d", e.UpdateCounter())
	}

	// In-flight report: cycles are skipped until ack or timeout.
	e.Update(2)
	if e.UpdateCounter() != 1 {
		t.Error("cycle ran despite in-flight report")
	}

	e.AckReport(hid.InterfaceBasicKeyboard)
	e.Update(3)
	if e.UpdateCounter() != 2 {
		t.Error("cycle did not run after ack")
	}
}

func TestSemaphoreTimeoutUnwedges(t *testing.T) {
	tr := &recordTransport{err: ErrInFlight}
	e := New(testConfig(), tr)

	km := keymap.New("TST", "test")
	km.Bind(layer.Base, keyA, basicKey(hid.ScancodeA, 0))
	e.Keymaps().Add(km)

	e.SetHardwareSwitchState(keyA, true)
	e.Update(1)
	e.Update(50)
	if e.UpdateCounter() != 1 {
		t.Fatal("cycle ran inside the timeout window")
	}
	e.Update(1 + DefaultSemaphoreTimeout)
	if e.UpdateCounter() != 2 {
		t.Error("stale semaphore did not force-clear")
	}
}

func TestSendFailureRetries(t *testing.T) {
	tr := &recordTransport{err: errors.New("bus reset")}
	e := New(testConfig(), tr)

	km := keymap.New("TST", "test")
	km.Bind(layer.Base, keyA, basicKey(hid.ScancodeA, 0))
	e.Keymaps().Add(km)

	e.SetHardwareSwitchState(keyA, true)
	e.Update(1)
	if sends(tr) != 0 {
		t.Fatal("failed send recorded a report")
	}

	// The failure cleared the semaphore; the next cycle retries.
	tr.err = nil
	e.Update(2)
	if len(tr.basics) != 1 {
		t.Errorf("%d basic reports after retry, want 1", len(tr.basics))
	}
}

func TestMacroPlaybackOwnsReports(t *testing.T) {
	e, tr := newTestEngine(t)
	e.Macros().Define(3, `tap("q")`)

	macroKey := keystate.Coord{Slot: keystate.SlotRightHalf, Key: 9}
	e.Keymaps().Current().Bind(layer.Base, macroKey, action.KeyAction{
		Type: action.TypePlayMacro, MacroID: 3,
	})

	e.SetHardwareSwitchState(macroKey, true)
	e.Update(1)
	if !e.Macros().Playing() {
		t.Fatal("macro not playing after trigger")
	}

	// Next cycle: the macro's press step owns the basic report.
	e.Update(2)
	if !e.BasicReport().ContainsScancode(hid.ScancodeQ) {
		t.Error("macro scancode missing")
	}

	e.Update(3) // release step: macro ends
	if e.Macros().Playing() {
		t.Error("macro still playing after last step")
	}

	_ = tr
}

func TestModuleDeltasReachMouseReport(t *testing.T) {
	e, _ := newTestEngine(t)

	cfg := e.ModuleConfiguration(module.TrackballRight)
	cfg.BaseSpeed = 1
	cfg.Speed = 0

	slot := e.ModuleSlot(0)
	slot.ModuleID = module.TrackballRight
	slot.PointerCount = 1
	slot.DeltaX = 3
	slot.DeltaY = 2

	e.Update(1)
	if e.MouseReport().X != 3 {
		t.Errorf("mouse x = %d, want 3", e.MouseReport().X)
	}
	if e.MouseReport().Y != -2 {
		t.Errorf("mouse y = %d, want -2 (inverted)", e.MouseReport().Y)
	}
	if slot.DeltaX != 0 || slot.DeltaY != 0 {
		t.Error("deltas not consumed")
	}
}

func TestTouchpadTapsAndMotion(t *testing.T) {
	e, _ := newTestEngine(t)

	cfg := e.ModuleConfiguration(module.TouchpadRight)
	cfg.BaseSpeed = 1
	cfg.Speed = 0

	tp := e.Touchpad()
	tp.Connected = true
	tp.SingleTap = true
	tp.X = 5
	tp.Y = 5

	e.Update(1)
	if e.MouseReport().Buttons&hid.MouseButtonLeft == 0 {
		t.Error("single tap did not press the left button")
	}
	if e.MouseReport().X != 5 || e.MouseReport().Y != 5 {
		t.Errorf("(x, y) = (%d, %d), want (5, 5)", e.MouseReport().X, e.MouseReport().Y)
	}

	// The tap was consumed; tap-and-hold persists instead.
	tp.TapAndHold = true
	e.Update(2)
	if tp.SingleTap {
		t.Error("single tap not consumed")
	}
	if e.MouseReport().Buttons&hid.MouseButtonLeft == 0 {
		t.Error("tap-and-hold did not hold the left button")
	}
}

func TestMouseKeysThroughEngine(t *testing.T) {
	e, _ := newTestEngine(t)

	moveKey := keystate.Coord{Slot: keystate.SlotRightHalf, Key: 12}
	e.Keymaps().Current().Bind(layer.Base, moveKey, action.KeyAction{
		Type: action.TypeMouse, Mouse: action.MouseMoveRight,
	})

	e.SetHardwareSwitchState(moveKey, true)
	var total int
	for now := uint32(1); now <= 100; now++ {
		e.Update(now)
		total += int(e.MouseReport().X)
	}
	if total < 10 {
		t.Errorf("total x = %d, want sustained rightward motion", total)
	}

	e.SetHardwareSwitchState(moveKey, false)
	e.Update(101)
	e.Update(102)
	if e.MouseReport().X != 0 {
		t.Error("motion continued after release")
	}
}

func TestKeymapSwitchMidPressKeepsCachedAction(t *testing.T) {
	e, _ := newTestEngine(t)

	second := keymap.New("ALT", "alternate")
	second.Bind(layer.Base, keyA, basicKey(hid.ScancodeZ, 0))
	e.Keymaps().Add(second)

	e.SetHardwareSwitchState(keyA, true)
	e.Update(1)
	if !e.BasicReport().ContainsScancode(hid.ScancodeA) {
		t.Fatal("scancode missing")
	}

	// Switching keymaps mid-press must not retarget the press.
	if err := e.Keymaps().Switch("ALT"); err != nil {
		t.Fatalf("Switch() error: %v", err)
	}
	e.Update(2)
	if !e.BasicReport().ContainsScancode(hid.ScancodeA) {
		t.Error("cached action lost after keymap switch")
	}
	if e.BasicReport().ContainsScancode(hid.ScancodeZ) {
		t.Error("press retargeted to the new keymap")
	}
}
