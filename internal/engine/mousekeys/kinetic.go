package mousekeys

import (
	"math"

	"github.com/modkb/hidengine/internal/engine/action"
)

// StateCounters counts how many sources currently drive each mouse action.
// Counters rather than booleans: a key and a toggled macro state may drive
// the same action at once, and a count above one upgrades the speed mode.
type StateCounters [action.MouseActionCount]uint8

// Reset zeroes all counters.
func (s *StateCounters) Reset() {
	*s = StateCounters{}
}

// CopyFrom overwrites the counters with src. Used at cycle start to seed the
// per-cycle scratch from the persistent toggled states.
func (s *StateCounters) CopyFrom(src *StateCounters) {
	*s = *src
}

// Activate increments an action's counter.
func (s *StateCounters) Activate(a action.MouseAction) {
	s[a]++
}

// Deactivate decrements an action's counter, stopping at zero.
func (s *StateCounters) Deactivate(a action.MouseAction) {
	if s[a] > 0 {
		s[a]--
	}
}

// Active reports whether any source drives the action.
func (s *StateCounters) Active(a action.MouseAction) bool {
	return s[a] > 0
}

// speedMode is the speed regime of a cycle.
type speedMode uint8

const (
	speedNormal speedMode = iota
	speedAccelerated
	speedDecelerated
)

// KineticState is the continuous state of one virtual-mouse axis pair,
// either cursor movement or scrolling.
type KineticState struct {
	// IsScroll selects scroll semantics: sum reset on engagement and the
	// guaranteed first tick.
	IsScroll bool

	// Direction keys feeding this state. For the scroll state the up and
	// down keys are swapped relative to their wheel sign.
	UpState    action.MouseAction
	DownState  action.MouseAction
	LeftState  action.MouseAction
	RightState action.MouseAction

	// Direction signs, stateful so the last pressed key of an opposing
	// pair wins.
	HorizontalSign int8
	VerticalSign   int8

	// Tuning.
	IntMultiplier    float32
	InitialSpeed     float32
	Acceleration     float32
	DeceleratedSpeed float32
	BaseSpeed        float32
	AcceleratedSpeed float32
	AxisSkew         float32

	// Continuous state.
	CurrentSpeed float32
	TargetSpeed  float32
	XSum         float32
	YSum         float32
	XOut         int16
	YOut         int16

	prevSpeedMode speedMode
	WasMoveAction bool
}

// NewMoveState returns the cursor kinetic state with stock tuning.
func NewMoveState() KineticState {
	return KineticState{
		IsScroll:         false,
		UpState:          action.MouseMoveUp,
		DownState:        action.MouseMoveDown,
		LeftState:        action.MouseMoveLeft,
		RightState:       action.MouseMoveRight,
		IntMultiplier:    25,
		InitialSpeed:     5,
		Acceleration:     35,
		DeceleratedSpeed: 10,
		BaseSpeed:        40,
		AcceleratedSpeed: 80,
		AxisSkew:         1.0,
	}
}

// NewScrollState returns the scroll kinetic state with stock tuning. Note
// the swapped up/down states: the wheel's positive direction is opposite the
// cursor's.
func NewScrollState() KineticState {
	return KineticState{
		IsScroll:         true,
		UpState:          action.MouseScrollDown,
		DownState:        action.MouseScrollUp,
		LeftState:        action.MouseScrollLeft,
		RightState:       action.MouseScrollRight,
		IntMultiplier:    1,
		InitialSpeed:     20,
		Acceleration:     20,
		DeceleratedSpeed: 10,
		BaseSpeed:        20,
		AcceleratedSpeed: 50,
		AxisSkew:         1.0,
	}
}

// ActivateDirectionSigns sets the direction sign for a just-pressed mouse
// action on the move and scroll states. Called on keydown so the sign is in
// place before the same cycle's kinetic step; the last pressed key of an
// opposing pair takes precedence.
func ActivateDirectionSigns(move, scroll *KineticState, a action.MouseAction) {
	switch a {
	case action.MouseMoveUp:
		move.VerticalSign = -1
	case action.MouseMoveDown:
		move.VerticalSign = 1
	case action.MouseMoveLeft:
		move.HorizontalSign = -1
	case action.MouseMoveRight:
		move.HorizontalSign = 1
	case action.MouseScrollUp:
		scroll.VerticalSign = 1
	case action.MouseScrollDown:
		scroll.VerticalSign = -1
	case action.MouseScrollLeft:
		scroll.HorizontalSign = -1
	case action.MouseScrollRight:
		scroll.HorizontalSign = 1
	}
}

// updateOneDirectionSign handles release of a direction key: if the key that
// owned the sign is gone, the sign flips to a still-held opposite key or
// drops to zero.
func updateOneDirectionSign(sign *int8, expectedSign int8, expected, other action.MouseAction, states *StateCounters) {
	if *sign == expectedSign && !states.Active(expected) {
		if states.Active(other) {
			*sign = -expectedSign
		} else {
			*sign = 0
		}
	}
}

func (k *KineticState) updateDirectionSigns(states *StateCounters) {
	updateOneDirectionSign(&k.HorizontalSign, -1, k.LeftState, k.RightState, states)
	updateOneDirectionSign(&k.HorizontalSign, 1, k.RightState, k.LeftState, states)
	updateOneDirectionSign(&k.VerticalSign, -1, k.UpState, k.DownState, states)
	updateOneDirectionSign(&k.VerticalSign, 1, k.DownState, k.UpState, states)
}

// trunc32 splits v into integer and fractional parts, truncating toward
// zero, in 32-bit precision.
func trunc32(v float32) (intPart float32, fracPart float32) {
	i, f := math.Modf(float64(v))
	return float32(i), float32(f)
}

// Step advances the kinetic state by elapsed milliseconds and leaves the
// integer travel of this cycle in XOut/YOut. The caller copies the outputs
// into the mouse report and zeroes them.
func (k *KineticState) Step(elapsed uint32, states *StateCounters, compensateDiagonal bool) {
	initialSpeed := k.IntMultiplier * k.InitialSpeed
	acceleration := k.IntMultiplier * k.Acceleration
	deceleratedSpeed := k.IntMultiplier * k.DeceleratedSpeed
	baseSpeed := k.IntMultiplier * k.BaseSpeed
	acceleratedSpeed := k.IntMultiplier * k.AcceleratedSpeed

	if !k.WasMoveAction && !states.Active(action.MouseDecelerate) {
		k.CurrentSpeed = initialSpeed
	}

	doublePressed := states[k.UpState] > 1 || states[k.DownState] > 1 ||
		states[k.LeftState] > 1 || states[k.RightState] > 1

	isMoveAction := states.Active(k.UpState) || states.Active(k.DownState) ||
		states.Active(k.LeftState) || states.Active(k.RightState)

	mode := speedNormal
	switch {
	case states.Active(action.MouseAccelerate) || doublePressed:
		k.TargetSpeed = acceleratedSpeed
		mode = speedAccelerated
	case states.Active(action.MouseDecelerate):
		k.TargetSpeed = deceleratedSpeed
		mode = speedDecelerated
	case isMoveAction:
		k.TargetSpeed = baseSpeed
	}

	if mode == speedAccelerated || (k.WasMoveAction && isMoveAction && k.prevSpeedMode != mode) {
		k.CurrentSpeed = k.TargetSpeed
	}

	// Runs on idle cycles too, so releasing the last direction key zeroes
	// its sign.
	k.updateDirectionSigns(states)

	if isMoveAction {
		ramp := acceleration * float32(elapsed) / 1000.0
		if k.CurrentSpeed < k.TargetSpeed {
			k.CurrentSpeed += ramp
			if k.CurrentSpeed > k.TargetSpeed {
				k.CurrentSpeed = k.TargetSpeed
			}
		} else {
			k.CurrentSpeed -= ramp
			if k.CurrentSpeed < k.TargetSpeed {
				k.CurrentSpeed = k.TargetSpeed
			}
		}

		distance := k.CurrentSpeed * float32(elapsed) / 1000.0

		if k.IsScroll && !k.WasMoveAction {
			k.XSum = 0
			k.YSum = 0
		}

		if k.HorizontalSign != 0 && k.VerticalSign != 0 && compensateDiagonal {
			distance /= 1.41
		}

		k.XSum += distance * float32(k.HorizontalSign) * k.AxisSkew
		k.YSum += distance * float32(k.VerticalSign) / k.AxisSkew

		horizontalMovement := k.HorizontalSign != 0

		xInt, xFrac := trunc32(k.XSum)
		k.XSum = xFrac
		k.XOut = int16(xInt)

		// Guarantee the first scroll tick.
		if k.IsScroll && !k.WasMoveAction && k.XOut == 0 && horizontalMovement {
			if states.Active(k.LeftState) {
				k.XOut = -1
			} else {
				k.XOut = 1
			}
			k.XSum = 0
		}

		verticalMovement := k.VerticalSign != 0

		yInt, yFrac := trunc32(k.YSum)
		k.YSum = yFrac
		k.YOut = int16(yInt)

		if k.IsScroll && !k.WasMoveAction && k.YOut == 0 && verticalMovement {
			if states.Active(k.UpState) {
				k.YOut = -1
			} else {
				k.YOut = 1
			}
			k.YSum = 0
		}
	} else {
		k.CurrentSpeed = 0
	}

	k.prevSpeedMode = mode
	k.WasMoveAction = isMoveAction
}
