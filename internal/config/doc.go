// Package config loads the engine's tunables from a TOML file: debounce
// thresholds, the USB semaphore timeout, mouse-key kinetic tuning, per-module
// kinematic blocks, and macro definitions.
//
// Loading is layered over a FileSystem abstraction so tests can feed
// in-memory documents, and a missing file is not an error: the stock tuning
// applies.
package config
