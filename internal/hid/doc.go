// Package hid defines the host-visible HID report structures produced by the
// report engine: the basic keyboard report, the media (consumer page) and
// system keyboard reports, and the mouse report.
//
// Reports are plain comparable values so a cycle's output can be diffed
// against the previously sent report with ==. The package also carries the
// usage-id constants the engine and the keymap loader share: keyboard-page
// scancodes, modifier bits, and mouse button bits.
package hid
