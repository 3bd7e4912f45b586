// Package module converts analog pointer deltas from attached input modules
// (touchpad, trackball, trackpoint, key cluster) into cursor motion, scroll
// ticks, or discrete directional key events.
//
// One kinematic state is shared by all modules; whichever module produces
// motion takes ownership of it, except that an in-flight caret key event is
// always allowed to finish first. Caret and media navigation run through an
// axis lock: once ticks start on one axis, the other axis is damped until
// the module goes quiet for half a second.
package module
