package keystate

// Debouncer time-gates raw switch samples. Press and release use distinct
// thresholds; a key in the gate ignores further chatter until the gate
// expires.
type Debouncer struct {
	// PressTime is the press gate in milliseconds.
	PressTime uint32

	// ReleaseTime is the release gate in milliseconds.
	ReleaseTime uint32
}

// DefaultDebouncer returns a debouncer with the stock thresholds.
func DefaultDebouncer() Debouncer {
	return Debouncer{PressTime: 10, ReleaseTime: 20}
}

// Step advances one key's debounce state for this cycle. When the debounced
// value flips, commit is called with the new value; the commit path decides
// whether the logical state changes immediately or is postponed.
func (d Debouncer) Step(k *KeyState, now uint32, commit func(active bool)) {
	gate := d.ReleaseTime
	if k.Previous {
		gate = d.PressTime
	}
	if k.Debouncing && now-k.Timestamp > gate {
		k.Debouncing = false
	}

	if !k.Debouncing && k.Debounced != k.Hardware {
		k.Timestamp = now
		k.Debouncing = true
		k.Debounced = k.Hardware
		commit(k.Debounced)
	}
}
