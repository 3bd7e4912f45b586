// Package mousekeys drives the keystroke-powered virtual mouse: discrete
// direction keys accelerate and decelerate a continuous cursor or scroll
// velocity, and fractional travel is carried between cycles so slow speeds
// still add up to whole pixels.
//
// Two kinetic states exist, one for cursor movement and one for scrolling.
// Both read the same per-cycle action counters; a counter above one means
// two keys drive the same direction, which forces accelerated mode.
// All kinematic math is 32-bit float on purpose: changing the precision
// changes the tick cadence.
package mousekeys
