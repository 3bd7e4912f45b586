package config

import (
	"fmt"

	"github.com/modkb/hidengine/internal/engine"
	"github.com/modkb/hidengine/internal/engine/keystate"
	"github.com/modkb/hidengine/internal/engine/layer"
	"github.com/modkb/hidengine/internal/engine/module"
	"github.com/modkb/hidengine/internal/engine/mousekeys"
)

// File is the whole tunables document.
type File struct {
	Debounce  DebounceConfig           `toml:"debounce"`
	USB       USBConfig                `toml:"usb"`
	MouseKeys MouseKeysConfig          `toml:"mousekeys"`
	Modules   map[string]ModuleConfig  `toml:"modules"`
	Macros    map[string]string        `toml:"macros"`
}

// DebounceConfig carries the per-key time gates in milliseconds.
type DebounceConfig struct {
	Press   uint32 `toml:"press"`
	Release uint32 `toml:"release"`
}

// USBConfig carries the transport tunables.
type USBConfig struct {
	SemaphoreTimeout uint32 `toml:"semaphore_timeout"`
}

// MouseKeysConfig carries the keystroke-mouse tuning.
type MouseKeysConfig struct {
	CompensateDiagonalSpeed bool          `toml:"compensate_diagonal_speed"`
	Move                    KineticConfig `toml:"move"`
	Scroll                  KineticConfig `toml:"scroll"`
}

// KineticConfig is one kinetic state's tuning block.
type KineticConfig struct {
	IntMultiplier    float32 `toml:"int_multiplier"`
	InitialSpeed     float32 `toml:"initial_speed"`
	Acceleration     float32 `toml:"acceleration"`
	DeceleratedSpeed float32 `toml:"decelerated_speed"`
	BaseSpeed        float32 `toml:"base_speed"`
	AcceleratedSpeed float32 `toml:"accelerated_speed"`
	AxisSkew         float32 `toml:"axis_skew"`
}

// ModuleConfig is one module's kinematic block. Navigation modes are given
// per layer by name.
type ModuleConfig struct {
	BaseSpeed              float32           `toml:"base_speed"`
	Speed                  float32           `toml:"speed"`
	Acceleration           float32           `toml:"acceleration"`
	CaretSpeedDivisor      float32           `toml:"caret_speed_divisor"`
	ScrollSpeedDivisor     float32           `toml:"scroll_speed_divisor"`
	CaretLockSkew          float32           `toml:"caret_lock_skew"`
	CaretLockSkewFirstTick float32           `toml:"caret_lock_skew_first_tick"`
	CursorAxisLock         bool              `toml:"cursor_axis_lock"`
	ScrollAxisLock         bool              `toml:"scroll_axis_lock"`
	InvertAxis             bool              `toml:"invert_axis"`
	NavigationModes        map[string]string `toml:"navigation_modes"`
}

func kineticDefaults(k mousekeys.KineticState) KineticConfig {
	return KineticConfig{
		IntMultiplier:    k.IntMultiplier,
		InitialSpeed:     k.InitialSpeed,
		Acceleration:     k.Acceleration,
		DeceleratedSpeed: k.DeceleratedSpeed,
		BaseSpeed:        k.BaseSpeed,
		AcceleratedSpeed: k.AcceleratedSpeed,
		AxisSkew:         k.AxisSkew,
	}
}

// Default returns the document prefilled with stock tuning.
func Default() *File {
	d := keystate.DefaultDebouncer()
	return &File{
		Debounce: DebounceConfig{Press: d.PressTime, Release: d.ReleaseTime},
		USB:      USBConfig{SemaphoreTimeout: engine.DefaultSemaphoreTimeout},
		MouseKeys: MouseKeysConfig{
			Move:   kineticDefaults(mousekeys.NewMoveState()),
			Scroll: kineticDefaults(mousekeys.NewScrollState()),
		},
	}
}

// EngineConfig converts the document into the engine's config block.
func (f *File) EngineConfig() engine.Config {
	return engine.Config{
		Debounce: keystate.Debouncer{
			PressTime:   f.Debounce.Press,
			ReleaseTime: f.Debounce.Release,
		},
		SemaphoreTimeout:        f.USB.SemaphoreTimeout,
		CompensateDiagonalSpeed: f.MouseKeys.CompensateDiagonalSpeed,
	}
}

// Apply installs the document's kinetic tuning, module blocks, and macros
// onto an engine. Call before the first Update.
func (f *File) Apply(e *engine.Engine) error {
	applyKinetic(e.MouseMoveState(), f.MouseKeys.Move)
	applyKinetic(e.MouseScrollState(), f.MouseKeys.Scroll)

	for name, mc := range f.Modules {
		id, ok := moduleFromName(name)
		if !ok {
			return fmt.Errorf("applying config: unknown module %q", name)
		}
		if err := applyModule(e.ModuleConfiguration(id), mc); err != nil {
			return fmt.Errorf("applying config for module %s: %w", name, err)
		}
	}

	for id, source := range f.Macros {
		var n uint8
		if _, err := fmt.Sscanf(id, "%d", &n); err != nil {
			return fmt.Errorf("applying config: macro id %q is not a number", id)
		}
		e.Macros().Define(n, source)
	}

	return nil
}

func applyKinetic(k *mousekeys.KineticState, c KineticConfig) {
	k.IntMultiplier = c.IntMultiplier
	k.InitialSpeed = c.InitialSpeed
	k.Acceleration = c.Acceleration
	k.DeceleratedSpeed = c.DeceleratedSpeed
	k.BaseSpeed = c.BaseSpeed
	k.AcceleratedSpeed = c.AcceleratedSpeed
	k.AxisSkew = c.AxisSkew
}

func applyModule(dst *module.Configuration, c ModuleConfig) error {
	if c.BaseSpeed != 0 {
		dst.BaseSpeed = c.BaseSpeed
	}
	if c.Speed != 0 {
		dst.Speed = c.Speed
	}
	if c.Acceleration != 0 {
		dst.Acceleration = c.Acceleration
	}
	if c.CaretSpeedDivisor != 0 {
		dst.CaretSpeedDivisor = c.CaretSpeedDivisor
	}
	if c.ScrollSpeedDivisor != 0 {
		dst.ScrollSpeedDivisor = c.ScrollSpeedDivisor
	}
	if c.CaretLockSkew != 0 {
		dst.CaretLockSkew = c.CaretLockSkew
	}
	if c.CaretLockSkewFirstTick != 0 {
		dst.CaretLockSkewFirstTick = c.CaretLockSkewFirstTick
	}
	dst.CursorAxisLock = c.CursorAxisLock
	dst.ScrollAxisLock = c.ScrollAxisLock
	dst.InvertAxis = c.InvertAxis

	for layerName, modeName := range c.NavigationModes {
		l, ok := layer.FromName(layerName)
		if !ok {
			return fmt.Errorf("unknown layer %q", layerName)
		}
		mode, ok := module.NavigationModeFromName(modeName)
		if !ok {
			return fmt.Errorf("unknown navigation mode %q", modeName)
		}
		dst.NavigationModes[l] = mode
	}

	return nil
}

func moduleFromName(name string) (module.ID, bool) {
	for id := module.ID(1); id < module.IDCount; id++ {
		if id.String() == name {
			return id, true
		}
	}
	return module.Unavailable, false
}
