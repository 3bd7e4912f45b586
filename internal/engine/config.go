package engine

import (
	"github.com/modkb/hidengine/internal/engine/keystate"
)

// DefaultSemaphoreTimeout is how long a report may stay in flight before the
// engine force-clears its semaphore bit, in milliseconds.
const DefaultSemaphoreTimeout = 100

// Config carries the engine's tunables.
type Config struct {
	// Debounce is the per-key time gate.
	Debounce keystate.Debouncer

	// SemaphoreTimeout unwedges a stuck in-flight report, in milliseconds.
	SemaphoreTimeout uint32

	// CompensateDiagonalSpeed divides diagonal mouse-key travel by √2.
	CompensateDiagonalSpeed bool
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		Debounce:         keystate.DefaultDebouncer(),
		SemaphoreTimeout: DefaultSemaphoreTimeout,
	}
}
