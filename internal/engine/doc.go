// Package engine is the HID input-report engine. Once per update cycle it
// turns the debounced key matrix, the attached modules' pointer deltas, and
// the virtual-mouse key states into four host-visible HID reports: basic
// keyboard, media keyboard, system keyboard, and mouse.
//
// The Engine value owns every piece of mutable state and is driven by a
// single caller from a cooperative tick loop; the only lock the per-cycle
// path takes is the keymap registry's read lock around each keymap lookup.
// Time enters exclusively through Update's
// millisecond argument, so identical input sequences produce byte-identical
// report sequences.
package engine
