package macro

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/modkb/hidengine/internal/engine/action"
	"github.com/modkb/hidengine/internal/hid"
)

// ReportSet is the report state a playing macro exposes to the host.
type ReportSet struct {
	Basic  hid.BasicKeyboardReport
	Media  hid.MediaKeyboardReport
	System hid.SystemKeyboardReport
	Mouse  hid.MouseReport
}

// Reset clears all four reports.
func (r *ReportSet) Reset() {
	r.Basic.Reset()
	r.Media.Reset()
	r.System.Reset()
	r.Mouse.Reset()
}

// MouseToggler toggles a persistent virtual-mouse state. The report engine
// provides its ToggleMouseState entry point.
type MouseToggler func(a action.MouseAction, activate bool)

type stepKind uint8

const (
	stepPress stepKind = iota
	stepRelease
	stepDelay
	stepMouse
)

type step struct {
	kind      stepKind
	scancode  uint8
	modifiers uint8
	delay     uint32
	mouse     action.MouseAction
	activate  bool
}

// Engine stores macro sources and replays at most one macro at a time.
type Engine struct {
	scripts     map[uint8]string
	toggleMouse MouseToggler

	steps      []step
	index      int
	playing    bool
	inDelay    bool
	delayUntil uint32

	reports ReportSet
}

// NewEngine returns an empty macro engine. The toggler may be nil if no
// macro uses mouse steps.
func NewEngine(toggleMouse MouseToggler) *Engine {
	return &Engine{
		scripts:     make(map[uint8]string),
		toggleMouse: toggleMouse,
	}
}

// Define registers a macro source under an id, replacing any previous one.
func (e *Engine) Define(id uint8, source string) {
	e.scripts[id] = source
}

// Playing reports whether a macro is replaying.
func (e *Engine) Playing() bool {
	return e.playing
}

// Reports returns the playing macro's report set.
func (e *Engine) Reports() *ReportSet {
	return &e.reports
}

// Start compiles a macro's step list and begins playback. Starting while
// another macro plays is an error; the running macro keeps playing.
func (e *Engine) Start(id uint8) error {
	if e.playing {
		return fmt.Errorf("macro %d: another macro is playing", id)
	}
	source, ok := e.scripts[id]
	if !ok {
		return fmt.Errorf("macro %d: not defined", id)
	}

	steps, err := compile(source)
	if err != nil {
		return fmt.Errorf("macro %d: %w", id, err)
	}

	e.steps = steps
	e.index = 0
	e.inDelay = false
	e.playing = len(steps) > 0
	e.reports.Reset()
	return nil
}

// Continue advances playback by one step (delays hold for their duration)
// and returns whether the macro is still playing afterward.
func (e *Engine) Continue(now uint32) bool {
	if !e.playing {
		return false
	}

	if e.inDelay {
		if now < e.delayUntil {
			return true
		}
		e.inDelay = false
		e.index++
	}

	for e.index < len(e.steps) {
		s := e.steps[e.index]
		switch s.kind {
		case stepPress:
			e.reports.Basic.Modifiers |= s.modifiers
			e.reports.Basic.AddScancode(s.scancode)
		case stepRelease:
			e.reports.Basic.Modifiers &^= s.modifiers
			e.reports.Basic.RemoveScancode(s.scancode)
		case stepMouse:
			if e.toggleMouse != nil {
				e.toggleMouse(s.mouse, s.activate)
			}
			e.index++
			continue
		case stepDelay:
			e.inDelay = true
			e.delayUntil = now + s.delay
			return true
		}
		e.index++
		if e.index >= len(e.steps) {
			break
		}
		return true
	}

	e.playing = false
	e.reports.Reset()
	return false
}

// compile evaluates the Lua chunk, collecting the step list its API calls
// describe.
func compile(source string) ([]step, error) {
	var steps []step

	L := lua.NewState()
	defer L.Close()

	keyArgs := func(L *lua.LState) (uint8, uint8) {
		name := L.CheckString(1)
		scancode := hid.ScancodeFromName(name)
		if scancode == 0 {
			L.RaiseError("unknown key %q", name)
		}
		var modifiers uint8
		for i := 2; i <= L.GetTop(); i++ {
			modName := L.CheckString(i)
			bit := hid.ModifierFromName(modName)
			if bit == 0 {
				L.RaiseError("unknown modifier %q", modName)
			}
			modifiers |= bit
		}
		return scancode, modifiers
	}

	L.SetGlobal("press", L.NewFunction(func(L *lua.LState) int {
		scancode, modifiers := keyArgs(L)
		steps = append(steps, step{kind: stepPress, scancode: scancode, modifiers: modifiers})
		return 0
	}))

	L.SetGlobal("release", L.NewFunction(func(L *lua.LState) int {
		scancode, modifiers := keyArgs(L)
		steps = append(steps, step{kind: stepRelease, scancode: scancode, modifiers: modifiers})
		return 0
	}))

	L.SetGlobal("tap", L.NewFunction(func(L *lua.LState) int {
		scancode, modifiers := keyArgs(L)
		steps = append(steps,
			step{kind: stepPress, scancode: scancode, modifiers: modifiers},
			step{kind: stepRelease, scancode: scancode, modifiers: modifiers})
		return 0
	}))

	L.SetGlobal("text", L.NewFunction(func(L *lua.LState) int {
		for _, r := range L.CheckString(1) {
			scancode, shift := hid.ScancodeFromRune(r)
			if scancode == 0 {
				L.RaiseError("untypeable rune %q", r)
			}
			var modifiers uint8
			if shift {
				modifiers = hid.ModLeftShift
			}
			steps = append(steps,
				step{kind: stepPress, scancode: scancode, modifiers: modifiers},
				step{kind: stepRelease, scancode: scancode, modifiers: modifiers})
		}
		return 0
	}))

	L.SetGlobal("delay", L.NewFunction(func(L *lua.LState) int {
		ms := L.CheckInt(1)
		if ms < 0 {
			L.RaiseError("negative delay")
		}
		steps = append(steps, step{kind: stepDelay, delay: uint32(ms)})
		return 0
	}))

	L.SetGlobal("mouse", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		a, ok := action.MouseActionFromName(name)
		if !ok {
			L.RaiseError("unknown mouse action %q", name)
		}
		steps = append(steps, step{kind: stepMouse, mouse: a, activate: L.CheckBool(2)})
		return 0
	}))

	if err := L.DoString(source); err != nil {
		return nil, fmt.Errorf("evaluating macro: %w", err)
	}

	return steps, nil
}
