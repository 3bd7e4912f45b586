package module

import (
	"math"

	"github.com/modkb/hidengine/internal/engine/action"
	"github.com/modkb/hidengine/internal/engine/keystate"
	"github.com/modkb/hidengine/internal/engine/layer"
)

// midSpeed is the pointer speed in px/ms at which the speed multiplier
// equals one.
const midSpeed = 3.0

// AxisLockTimeout is the idle time in milliseconds after which an engaged
// axis lock releases.
const AxisLockTimeout = 500

// Sink receives the kinematic engine's output. The report engine implements
// it: cursor and wheel deltas go into the mouse report, caret actions run
// through the normal key action pipeline on a synthetic key state.
type Sink interface {
	// AddCursor adds to the mouse report's x and y.
	AddCursor(dx, dy int16)

	// AddWheel adds to the mouse report's wheelX and wheelY.
	AddWheel(dx, dy int16)

	// CaretAction resolves a caret action handle against the current caret
	// configuration.
	CaretAction(h ActionHandle) *action.KeyAction

	// ApplyCaretAction runs an action through the key action pipeline on
	// the synthetic key state and commits the state's edge.
	ApplyCaretAction(fake *keystate.KeyState, act *action.KeyAction)
}

// KineticState is the shared kinematic state. Whichever module produces
// motion owns it; ownership changes reset the fractional remainders and the
// axis lock but never interrupt an in-flight caret key event.
type KineticState struct {
	CurrentModule ID
	CurrentMode   NavigationMode

	CaretAxis CaretAxis

	// FakeKey drives full press/release lifecycles for caret ticks.
	FakeKey keystate.KeyState

	// Action is the latched caret tick being emitted.
	Action    ActionHandle
	hasAction bool

	XFractionRemainder float32
	YFractionRemainder float32

	// LastUpdate is the time of the last non-zero motion, for the axis
	// lock timeout.
	LastUpdate uint32

	// speedLastUpdate is the speed tracker's clock. Survives ownership
	// resets.
	speedLastUpdate uint32
}

// NewKineticState returns an unowned kinematic state.
func NewKineticState() *KineticState {
	return &KineticState{CaretAxis: CaretAxisNone}
}

// reset clears ownership-scoped state. The fake key state and the latched
// action stay so an ongoing caret event completes properly.
func (ks *KineticState) reset() {
	ks.CurrentModule = Unavailable
	ks.CurrentMode = NavCursor
	ks.CaretAxis = CaretAxisNone
	ks.XFractionRemainder = 0
	ks.YFractionRemainder = 0
	ks.LastUpdate = 0
}

// ProcessModule feeds one module's delta for this cycle. The configuration's
// navigation mode for the active layer decides the routing; deltas of a
// module that does not own the state are dropped unless they take ownership.
func (ks *KineticState) ProcessModule(now uint32, id ID, x, y float32, cfg *Configuration, active layer.ID, sink Sink) {
	nav := cfg.NavigationModes[active]

	moduleIsActive := x != 0 || y != 0
	ownerDiffers := ks.CurrentModule != id || ks.CurrentMode != nav
	caretIdle := !ks.FakeKey.Current && !ks.FakeKey.Previous

	if moduleIsActive && ownerDiffers && caretIdle {
		ks.reset()
		ks.CurrentModule = id
		ks.CurrentMode = nav
	}

	if ks.CurrentModule != id || ks.CurrentMode != nav {
		return
	}

	if cfg.InvertAxis {
		x, y = y, x
	}

	// Process even a zero delta: an engaged axis lock or an in-flight fake
	// key event still needs its per-cycle step.
	ks.process(now, x, y, cfg, sink)
}

func (ks *KineticState) process(now uint32, x, y float32, cfg *Configuration, sink Sink) {
	yInversion := ks.CurrentModule.YInversion()

	var speed float32
	if ks.CurrentModule == KeyClusterLeft {
		// The key cluster's mini trackball reports coarse ticks; a flat
		// multiplier serves it better than the measured-speed curve.
		if ks.CurrentMode == NavCursor {
			speed = 5
		} else {
			speed = 1
		}
	} else {
		speed = ks.computeSpeed(now, x, y, cfg)
	}

	switch ks.CurrentMode {
	case NavCursor:
		if !cfg.CursorAxisLock {
			var xInt, yInt float32
			xInt, ks.XFractionRemainder = trunc32(ks.XFractionRemainder + x*speed)
			yInt, ks.YFractionRemainder = trunc32(ks.YFractionRemainder + y*speed)
			sink.AddCursor(int16(xInt), -yInversion*int16(yInt))
		} else {
			ks.axisLock(now, x, y, speed, yInversion, 1.0, cfg, sink)
		}
	case NavScroll:
		if !cfg.ScrollAxisLock {
			var xInt, yInt float32
			xInt, ks.XFractionRemainder = trunc32(ks.XFractionRemainder + x*speed/cfg.ScrollSpeedDivisor)
			yInt, ks.YFractionRemainder = trunc32(ks.YFractionRemainder + y*speed/cfg.ScrollSpeedDivisor)
			sink.AddWheel(int16(xInt), yInversion*int16(yInt))
		} else {
			ks.axisLock(now, x, y, speed, yInversion, cfg.ScrollSpeedDivisor, cfg, sink)
		}
	case NavCaret, NavMedia:
		ks.axisLock(now, x, y, speed, yInversion, cfg.CaretSpeedDivisor, cfg, sink)
	case NavNone:
	}
}

// computeSpeed maintains the module's measured speed and maps it through the
// acceleration curve.
func (ks *KineticState) computeSpeed(now uint32, x, y float32, cfg *Configuration) float32 {
	if x != 0 || y != 0 {
		elapsed := now - ks.speedLastUpdate
		distance := float32(math.Sqrt(float64(x*x + y*y)))
		cfg.CurrentSpeed = distance / float32(elapsed+1)
		ks.speedLastUpdate = now
	}

	normalized := cfg.CurrentSpeed / midSpeed
	return cfg.BaseSpeed + cfg.Speed*float32(math.Pow(float64(normalized), float64(cfg.Acceleration)))
}

// axisLock accumulates skewed remainders and emits at most one discrete tick
// per cycle, locked to one axis until the module goes idle.
func (ks *KineticState) axisLock(now uint32, x, y, speed float32, yInversion int16, speedDivisor float32, cfg *Configuration, sink Sink) {
	unlocked := ks.CaretAxis == CaretAxisNone || ks.CaretAxis == CaretAxisInactive

	if x == 0 && y == 0 && unlocked {
		return
	}

	if x != 0 || y != 0 {
		if now-ks.LastUpdate > AxisLockTimeout && !unlocked {
			ks.XFractionRemainder = 0
			ks.YFractionRemainder = 0
			ks.CaretAxis = CaretAxisNone
			unlocked = true
		}
		ks.LastUpdate = now
	}

	// The lock tries to stay on one axis, so the other one is skewed down.
	var xMult, yMult float32
	if unlocked {
		xMult = cfg.CaretLockSkewFirstTick
		yMult = cfg.CaretLockSkewFirstTick
	} else {
		xMult = cfg.CaretLockSkew
		yMult = cfg.CaretLockSkew
		if ks.CaretAxis == CaretAxisHorizontal {
			xMult = 1.0
		}
		if ks.CaretAxis == CaretAxisVertical {
			yMult = 1.0
		}
	}

	ks.XFractionRemainder += x * speed / speedDivisor * xMult
	ks.YFractionRemainder += y * speed / speedDivisor * yMult

	if ks.FakeKey.Current || ks.FakeKey.Previous {
		// An action is in flight; walk it through its lifecycle before
		// starting a new tick.
		ks.advanceRunningAction(sink)
		return
	}

	candidate := ks.CaretAxis
	if candidate != CaretAxisHorizontal && candidate != CaretAxisVertical {
		candidate = CaretAxisVertical
	}

	var ints [caretAxisCount]float32
	ints[CaretAxisHorizontal], _ = trunc32(ks.XFractionRemainder)
	ints[CaretAxisVertical], _ = trunc32(ks.YFractionRemainder)

	if ints[candidate] == 0 {
		if ints[candidate.other()] == 0 {
			return
		}
		candidate = candidate.other()
	}

	ks.CaretAxis = candidate

	sgn := float32(1)
	if ints[candidate] < 0 {
		sgn = -1
	}
	inversion := int16(1)
	if candidate == CaretAxisVertical {
		inversion = yInversion
	}

	remainders := [caretAxisCount]*float32{&ks.XFractionRemainder, &ks.YFractionRemainder}
	*remainders[candidate.other()] = 0
	*remainders[candidate] -= sgn

	ks.newTick(candidate, sgn*float32(inversion), int16(ints[candidate])*inversion, sink)
}

// newTick dispatches one discrete tick by navigation mode.
func (ks *KineticState) newTick(axis CaretAxis, resultSign float32, value int16, sink Sink) {
	switch ks.CurrentMode {
	case NavCursor:
		if axis == CaretAxisHorizontal {
			sink.AddCursor(value, 0)
		} else {
			sink.AddCursor(0, -value)
		}
	case NavScroll:
		if axis == CaretAxisHorizontal {
			sink.AddWheel(value, 0)
		} else {
			sink.AddWheel(0, value)
		}
	case NavCaret, NavMedia:
		ks.Action = ActionHandle{
			Module:   ks.CurrentModule,
			Mode:     ks.CurrentMode,
			Axis:     axis,
			Positive: resultSign > 0,
		}
		ks.hasAction = true
		ks.FakeKey.Current = true
		sink.ApplyCaretAction(&ks.FakeKey, sink.CaretAction(ks.Action))
	case NavNone:
	}
}

// advanceRunningAction walks the fake key through held/release edges,
// re-firing the latched action so it sees a full key lifecycle.
func (ks *KineticState) advanceRunningAction(sink Sink) {
	tmp := ks.FakeKey.Current
	ks.FakeKey.Current = !ks.FakeKey.Previous
	ks.FakeKey.Previous = tmp
	if ks.hasAction {
		sink.ApplyCaretAction(&ks.FakeKey, sink.CaretAction(ks.Action))
	}
}
