// Package macro plays key macros. A macro is a Lua chunk that is evaluated
// once when the macro starts; the chunk's calls to the small step API
// (press, release, tap, text, delay, mouse) compile into a step list the
// engine then replays one step per tick.
//
// While a macro plays, the report engine copies the macro's report set out
// verbatim instead of running the normal key pipeline, so a macro owns the
// host-visible state for its whole duration.
package macro
