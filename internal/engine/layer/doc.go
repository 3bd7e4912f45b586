// Package layer computes the active keymap layer from held, toggled, and
// double-tap-toggled inputs.
//
// Holds are re-registered every cycle by whatever key action wants the layer
// held; a hold registered during one cycle selects the layer at the next
// cycle's Update. A held layer takes precedence over a toggled one, and a
// toggle survives until it is cancelled or another layer is toggled.
package layer
