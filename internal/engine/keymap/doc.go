// Package keymap holds the layered key-to-action tables and the registry of
// keymaps the engine can switch between.
//
// Keymaps serialize as JSON, the format the desktop configurator exports.
// The loader is tolerant inside a binding: an unknown action type, mouse
// action or target layer degrades that binding to an unbound key, and a
// keystroke drops scancode, modifier and secondary-role names it does not
// recognize. An unknown layer or slot name, an out-of-range key index, or a
// missing id fails the whole map.
package keymap
