// Package keystate tracks the per-key switch state of the keyboard halves
// and module bays: the raw sampled value, the time-gated debounced value,
// and the logical pressed state the action engine consumes.
//
// A key is addressed by a Coord (slot plus key index). The logical Current
// field changes only through the engine's commit path so that postponed
// events stay ordered; everything else in this package is pure bookkeeping.
package keystate
