package postponer

import "github.com/modkb/hidengine/internal/engine/keystate"

// Event is one buffered key transition.
type Event struct {
	Key    keystate.Coord
	Active bool
}

// Core is the postponer. The zero value is ready to use.
type Core struct {
	queue []Event

	// cyclesLeft holds the postponer active for that many more cycles even
	// with an empty queue. Kept alive by PostponeNCycles.
	cyclesLeft uint8
}

// IsActive reports whether new transitions must be routed into the FIFO.
func (c *Core) IsActive() bool {
	return c.cyclesLeft > 0 || len(c.queue) > 0
}

// TrackKeyEvent buffers a transition.
func (c *Core) TrackKeyEvent(key keystate.Coord, active bool) {
	c.queue = append(c.queue, Event{Key: key, Active: active})
}

// PostponeNCycles keeps the postponer active through the next n cycles.
// Callers with an undecided question invoke this every cycle as a keep-alive.
func (c *Core) PostponeNCycles(n uint8) {
	if n+1 > c.cyclesLeft {
		c.cyclesLeft = n + 1
	}
}

// RunPostponedEvents replays buffered transitions through apply. Nothing is
// replayed while a keep-alive is pending. At most one transition per key is
// released per run; a second transition of an already-replayed key stays
// queued for the next cycle.
func (c *Core) RunPostponedEvents(apply func(key keystate.Coord, active bool)) {
	if c.cyclesLeft > 0 || len(c.queue) == 0 {
		return
	}

	replayed := make(map[keystate.Coord]bool, len(c.queue))
	n := 0
	for _, ev := range c.queue {
		if replayed[ev.Key] {
			break
		}
		replayed[ev.Key] = true
		apply(ev.Key, ev.Active)
		n++
	}
	c.queue = c.queue[:copy(c.queue, c.queue[n:])]
}

// FinishCycle ends the cycle, consuming one keep-alive cycle.
func (c *Core) FinishCycle() {
	if c.cyclesLeft > 0 {
		c.cyclesLeft--
	}
}

// PendingReleaseOf reports whether a release of the key is queued.
func (c *Core) PendingReleaseOf(key keystate.Coord) bool {
	for _, ev := range c.queue {
		if ev.Key == key && !ev.Active {
			return true
		}
	}
	return false
}

// PendingActivationOfOther reports whether a press of any other key is
// queued.
func (c *Core) PendingActivationOfOther(key keystate.Coord) bool {
	for _, ev := range c.queue {
		if ev.Key != key && ev.Active {
			return true
		}
	}
	return false
}

// Len returns the number of buffered transitions.
func (c *Core) Len() int {
	return len(c.queue)
}
