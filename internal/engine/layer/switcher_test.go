package layer

import (
	"testing"

	"github.com/modkb/hidengine/internal/engine/keystate"
)

func TestHoldTakesEffectNextUpdate(t *testing.T) {
	s := NewSwitcher()

	s.HoldLayer(Fn)
	if s.Active() != Base {
		t.Error("hold took effect before Update")
	}
	if !s.Update() {
		t.Error("Update() = false, want layer change")
	}
	if s.Active() != Fn || !s.Held() {
		t.Errorf("Active() = %v, Held() = %v; want fn held", s.Active(), s.Held())
	}

	// No hold registered this cycle: falls back to base.
	if !s.Update() {
		t.Error("Update() = false on hold release")
	}
	if s.Active() != Base || s.Held() {
		t.Errorf("Active() = %v after hold release, want base", s.Active())
	}
}

func TestFirstHoldWins(t *testing.T) {
	s := NewSwitcher()
	s.HoldLayer(Mod)
	s.HoldLayer(Fn)
	s.Update()
	if s.Active() != Mod {
		t.Errorf("Active() = %v, want mod (first hold registered)", s.Active())
	}
}

func TestToggleSurvivesUntilUntoggled(t *testing.T) {
	s := NewSwitcher()
	s.ToggleLayer(Mouse)
	s.Update()
	if s.Active() != Mouse || s.Held() {
		t.Fatalf("Active() = %v, Held() = %v; want mouse not held", s.Active(), s.Held())
	}

	s.Update()
	if s.Active() != Mouse {
		t.Error("toggle did not survive an idle cycle")
	}

	s.UnToggleLayerOnly(Mouse)
	s.Update()
	if s.Active() != Base {
		t.Errorf("Active() = %v after untoggle, want base", s.Active())
	}
}

func TestHoldOverridesToggle(t *testing.T) {
	s := NewSwitcher()
	s.ToggleLayer(Mouse)
	s.HoldLayer(Fn)
	s.Update()
	if s.Active() != Fn || !s.Held() {
		t.Errorf("Active() = %v, Held() = %v; want fn held", s.Active(), s.Held())
	}

	// Hold gone, toggle still latched.
	s.Update()
	if s.Active() != Mouse {
		t.Errorf("Active() = %v after hold release, want mouse", s.Active())
	}
}

func TestDoubleTapToggle(t *testing.T) {
	s := NewSwitcher()
	key := keystate.Coord{Slot: keystate.SlotLeftHalf, Key: 3}

	// First tap: hold only.
	k := &keystate.KeyState{Current: true}
	s.DoubleTapToggle(Fn, key, k, 100)
	s.Update()
	if s.Active() != Fn || !s.Held() {
		t.Fatal("first tap should hold")
	}

	// Release.
	k.Previous = true
	k.Current = false
	s.DoubleTapToggle(Fn, key, k, 150)
	s.Update()
	if s.Active() != Base {
		t.Fatal("layer held after release")
	}

	// Second tap inside the window: toggles.
	k.Previous = false
	k.Current = true
	s.DoubleTapToggle(Fn, key, k, 300)
	s.Update()
	k.Previous = true
	k.Current = false
	s.DoubleTapToggle(Fn, key, k, 350)
	s.Update()
	if s.Active() != Fn || s.Held() {
		t.Errorf("Active() = %v, Held() = %v; want fn toggled", s.Active(), s.Held())
	}
}

func TestDoubleTapOutsideWindow(t *testing.T) {
	s := NewSwitcher()
	key := keystate.Coord{Slot: keystate.SlotLeftHalf, Key: 3}

	k := &keystate.KeyState{Current: true}
	s.DoubleTapToggle(Fn, key, k, 100)
	k.Previous = true
	k.Current = false
	s.DoubleTapToggle(Fn, key, k, 120)

	k.Previous = false
	k.Current = true
	s.DoubleTapToggle(Fn, key, k, 100+DefaultDoubleTapTimeout+1)
	k.Previous = true
	k.Current = false
	s.DoubleTapToggle(Fn, key, k, 100+DefaultDoubleTapTimeout+40)
	s.Update()
	s.Update()
	if s.Active() != Base {
		t.Errorf("Active() = %v, want base (second tap outside window)", s.Active())
	}
}

func TestDoubleTapInterrupt(t *testing.T) {
	s := NewSwitcher()
	key := keystate.Coord{Slot: keystate.SlotLeftHalf, Key: 3}
	other := keystate.Coord{Slot: keystate.SlotRightHalf, Key: 9}

	k := &keystate.KeyState{Current: true}
	s.DoubleTapToggle(Fn, key, k, 100)
	k.Previous = true
	k.Current = false
	s.DoubleTapToggle(Fn, key, k, 120)

	s.DoubleTapInterrupt(other)

	k.Previous = false
	k.Current = true
	s.DoubleTapToggle(Fn, key, k, 200)
	k.Previous = true
	k.Current = false
	s.DoubleTapToggle(Fn, key, k, 220)
	s.Update()
	s.Update()
	if s.Active() != Base {
		t.Errorf("Active() = %v, want base (double tap interrupted)", s.Active())
	}
}

func TestBaseCannotBeHeldOrToggled(t *testing.T) {
	s := NewSwitcher()
	s.HoldLayer(Base)
	s.ToggleLayer(Base)
	s.Update()
	if s.Active() != Base || s.Held() {
		t.Errorf("Active() = %v, Held() = %v", s.Active(), s.Held())
	}
}
