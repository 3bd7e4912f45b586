package config

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/modkb/hidengine/internal/engine"
	"github.com/modkb/hidengine/internal/engine/layer"
	"github.com/modkb/hidengine/internal/engine/module"
)

// mapFS adapts fstest.MapFS to the loader's FileSystem.
type mapFS struct {
	fstest.MapFS
}

func (m mapFS) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(m.MapFS, path)
}

func TestMissingFileYieldsDefaults(t *testing.T) {
	f, err := LoadFS(mapFS{fstest.MapFS{}}, "nope.toml")
	if err != nil {
		t.Fatalf("LoadFS() error: %v", err)
	}
	if f.Debounce.Press != 10 || f.Debounce.Release != 20 {
		t.Errorf("debounce defaults = %+v", f.Debounce)
	}
	if f.USB.SemaphoreTimeout != engine.DefaultSemaphoreTimeout {
		t.Errorf("semaphore timeout = %d", f.USB.SemaphoreTimeout)
	}
	if f.MouseKeys.Move.BaseSpeed != 40 || f.MouseKeys.Scroll.BaseSpeed != 20 {
		t.Errorf("kinetic defaults = %+v / %+v", f.MouseKeys.Move, f.MouseKeys.Scroll)
	}
}

func TestParsePartialOverride(t *testing.T) {
	doc := `
[debounce]
press = 3

[mousekeys]
compensate_diagonal_speed = true

[mousekeys.move]
int_multiplier = 25
initial_speed = 5
acceleration = 35
decelerated_speed = 10
base_speed = 64
accelerated_speed = 80
axis_skew = 1.0
`
	f, err := Parse("inline.toml", []byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if f.Debounce.Press != 3 {
		t.Errorf("press = %d, want 3", f.Debounce.Press)
	}
	if f.Debounce.Release != 20 {
		t.Errorf("release = %d, want default 20", f.Debounce.Release)
	}
	if f.MouseKeys.Move.BaseSpeed != 64 {
		t.Errorf("move base speed = %v, want 64", f.MouseKeys.Move.BaseSpeed)
	}
	if !f.MouseKeys.CompensateDiagonalSpeed {
		t.Error("diagonal compensation not set")
	}

	ec := f.EngineConfig()
	if ec.Debounce.PressTime != 3 || !ec.CompensateDiagonalSpeed {
		t.Errorf("EngineConfig() = %+v", ec)
	}
}

func TestParseError(t *testing.T) {
	if _, err := Parse("bad.toml", []byte("= garbage")); err == nil {
		t.Error("Parse() error = nil for garbage input")
	}
}

func TestApplyModulesAndMacros(t *testing.T) {
	doc := `
[modules.trackballRight]
base_speed = 2.0
navigation_modes = { base = "scroll", fn = "media" }

[macros]
1 = 'tap("a")'
`
	f, err := Parse("inline.toml", []byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	e := engine.New(f.EngineConfig(), nil)
	if err := f.Apply(e); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	mc := e.ModuleConfiguration(module.TrackballRight)
	if mc.BaseSpeed != 2.0 {
		t.Errorf("base speed = %v, want 2.0", mc.BaseSpeed)
	}
	if mc.NavigationModes[layer.Base] != module.NavScroll {
		t.Errorf("base mode = %v, want scroll", mc.NavigationModes[layer.Base])
	}
	if mc.NavigationModes[layer.Fn] != module.NavMedia {
		t.Errorf("fn mode = %v, want media", mc.NavigationModes[layer.Fn])
	}
	// Unmentioned layers keep their defaults.
	if mc.NavigationModes[layer.Mod] != module.NavScroll {
		t.Errorf("mod mode = %v, want default scroll", mc.NavigationModes[layer.Mod])
	}

	if err := e.Macros().Start(1); err != nil {
		t.Errorf("macro 1 not defined: %v", err)
	}
}

func TestApplyUnknownModule(t *testing.T) {
	f, err := Parse("inline.toml", []byte("[modules.warpdrive]\nbase_speed = 1.0\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if err := f.Apply(engine.New(f.EngineConfig(), nil)); err == nil {
		t.Error("Apply() error = nil for unknown module")
	}
}
