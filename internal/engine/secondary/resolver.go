package secondary

import (
	"fmt"

	"github.com/qmuntal/stateless"

	"github.com/modkb/hidengine/internal/engine/keystate"
)

// State is the resolver's answer for a dual-role key.
type State uint8

const (
	// StateDontKnowYet means the hold-versus-tap question is still open.
	StateDontKnowYet State = iota
	// StatePrimary means the key resolved to its primary keystroke.
	StatePrimary
	// StateSecondary means the key resolved to its secondary role.
	StateSecondary
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDontKnowYet:
		return "dontKnowYet"
	case StatePrimary:
		return "primary"
	case StateSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Queue is the view of postponed key events the resolver decides from.
type Queue interface {
	// PendingReleaseOf reports whether a release of the key is buffered.
	PendingReleaseOf(key keystate.Coord) bool

	// PendingActivationOfOther reports whether another key's press is
	// buffered.
	PendingActivationOfOther(key keystate.Coord) bool
}

// DefaultTimeout is the hold timeout in milliseconds.
const DefaultTimeout = 350

// Triggers of the per-key resolution machine.
const (
	triggerOwnRelease   = "ownRelease"
	triggerOtherKeyDown = "otherKeyDown"
	triggerTimeout      = "timeout"
)

type resolution struct {
	machine   *stateless.StateMachine
	pressedAt uint32
}

func newResolution(now uint32) *resolution {
	machine := stateless.NewStateMachine(StateDontKnowYet)
	machine.Configure(StateDontKnowYet).
		Permit(triggerOwnRelease, StatePrimary).
		Permit(triggerOtherKeyDown, StateSecondary).
		Permit(triggerTimeout, StateSecondary)
	machine.Configure(StatePrimary)
	machine.Configure(StateSecondary)
	return &resolution{machine: machine, pressedAt: now}
}

func (r *resolution) state() State {
	return r.machine.MustState().(State)
}

// Resolver answers the hold-versus-tap question for dual-role keys. One
// resolution is tracked per pressed key and latched until the key is
// forgotten after its release.
type Resolver struct {
	// Timeout is the hold timeout in milliseconds.
	Timeout uint32

	pending map[keystate.Coord]*resolution
}

// NewResolver returns a resolver with the default hold timeout.
func NewResolver() *Resolver {
	return &Resolver{
		Timeout: DefaultTimeout,
		pending: make(map[keystate.Coord]*resolution),
	}
}

// Resolve returns the current answer for the key, advancing the key's state
// machine from the queue contents and the clock. The first call for a press
// opens the question.
func (r *Resolver) Resolve(key keystate.Coord, q Queue, now uint32) State {
	res := r.pending[key]
	if res == nil {
		res = newResolution(now)
		r.pending[key] = res
	}

	if res.state() == StateDontKnowYet {
		switch {
		case q.PendingActivationOfOther(key):
			_ = res.machine.Fire(triggerOtherKeyDown)
		case q.PendingReleaseOf(key):
			_ = res.machine.Fire(triggerOwnRelease)
		case now-res.pressedAt >= r.Timeout:
			_ = res.machine.Fire(triggerTimeout)
		}
	}

	return res.state()
}

// Forget drops the key's resolution. Called once the key's release has been
// fully processed.
func (r *Resolver) Forget(key keystate.Coord) {
	delete(r.pending, key)
}
