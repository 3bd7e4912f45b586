// Package action defines the semantic actions a key can produce: keystrokes
// with optional secondary roles, virtual mouse actions, layer switches,
// keymap switches, and macro playback.
//
// KeyAction is a tagged variant: the Type field selects which of the payload
// fields is meaningful. Values are small and copied freely; the engine caches
// the action observed at key-down so a press is never retargeted mid-flight.
package action
