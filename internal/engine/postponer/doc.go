// Package postponer buffers debounced key transitions while another
// subsystem needs time to decide what they mean, most notably while a
// dual-role key's hold-versus-tap question is open.
//
// While the postponer is active, the engine's commit path feeds transitions
// into a FIFO instead of flipping logical key state. Each cycle the engine
// offers the postponer a chance to replay buffered transitions; at most one
// transition per key is released per cycle so press and release edges of the
// same key land in distinct cycles, the way live typing would.
package postponer
