// Package main is an interactive harness for the HID report engine: terminal
// keys drive a demo matrix, and the four reports the engine produces render
// live.
//
// Terminals report no key-up events, so every keypress is held for a short
// synthetic hold time and then released.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/modkb/hidengine/internal/config"
	"github.com/modkb/hidengine/internal/engine"
	"github.com/modkb/hidengine/internal/engine/action"
	"github.com/modkb/hidengine/internal/engine/keymap"
	"github.com/modkb/hidengine/internal/engine/keystate"
	"github.com/modkb/hidengine/internal/engine/layer"
	"github.com/modkb/hidengine/internal/hid"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

// syntheticHold is how long a terminal keypress stays "down", in engine
// milliseconds.
const syntheticHold = 40

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		keymapPath  string
		tick        int
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to tunables file (TOML)")
	flag.StringVar(&configPath, "c", "", "Path to tunables file (shorthand)")
	flag.StringVar(&keymapPath, "keymap", "", "Path to keymap file (JSON)")
	flag.IntVar(&tick, "tick", 1, "Engine tick in milliseconds")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("hidengine %s (%s)\n", version, commit)
		return 0
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	eng := engine.New(cfg.EngineConfig(), discardTransport{})
	if err := cfg.Apply(eng); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	keys, err := loadKeymap(eng, keymapPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()

	runLoop(screen, eng, keys, time.Duration(tick)*time.Millisecond)
	return 0
}

// discardTransport accepts every report; the harness renders the engine's
// active reports directly.
type discardTransport struct{}

func (discardTransport) SendBasicKeyboard(*hid.BasicKeyboardReport) error   { return nil }
func (discardTransport) SendMediaKeyboard(*hid.MediaKeyboardReport) error   { return nil }
func (discardTransport) SendSystemKeyboard(*hid.SystemKeyboardReport) error { return nil }
func (discardTransport) SendMouse(*hid.MouseReport) error                   { return nil }

// keyBindings maps terminal input to matrix coordinates.
type keyBindings struct {
	runes   map[rune]keystate.Coord
	special map[tcell.Key]keystate.Coord
}

// loadKeymap installs a keymap file, or the built-in demo keymap, and builds
// the terminal input mapping: letters type, arrows drive the virtual mouse,
// PgUp/PgDn scroll, and Tab holds the fn layer.
func loadKeymap(eng *engine.Engine, path string) (*keyBindings, error) {
	keys := &keyBindings{
		runes:   make(map[rune]keystate.Coord),
		special: make(map[tcell.Key]keystate.Coord),
	}

	km := keymap.New("DEMO", "demo")
	next := uint8(0)
	bind := func(a action.KeyAction) keystate.Coord {
		c := keystate.Coord{Slot: keystate.SlotRightHalf, Key: next}
		next++
		km.Bind(layer.Base, c, a)
		return c
	}

	for r := 'a'; r <= 'z'; r++ {
		scancode, _ := hid.ScancodeFromRune(r)
		keys.runes[r] = bind(action.KeyAction{
			Type:      action.TypeKeystroke,
			Keystroke: action.Keystroke{Type: action.KeystrokeBasic, Scancode: uint16(scancode)},
		})
	}

	mouse := func(m action.MouseAction) action.KeyAction {
		return action.KeyAction{Type: action.TypeMouse, Mouse: m}
	}
	keys.special[tcell.KeyUp] = bind(mouse(action.MouseMoveUp))
	keys.special[tcell.KeyDown] = bind(mouse(action.MouseMoveDown))
	keys.special[tcell.KeyLeft] = bind(mouse(action.MouseMoveLeft))
	keys.special[tcell.KeyRight] = bind(mouse(action.MouseMoveRight))
	keys.special[tcell.KeyPgUp] = bind(mouse(action.MouseScrollUp))
	keys.special[tcell.KeyPgDn] = bind(mouse(action.MouseScrollDown))
	keys.special[tcell.KeyTab] = bind(action.KeyAction{
		Type:        action.TypeSwitchLayer,
		SwitchLayer: action.SwitchLayer{Layer: layer.Fn, Mode: action.ModeHold},
	})

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading keymap %s: %w", path, err)
		}
		loaded, err := keymap.Parse(data)
		if err != nil {
			return nil, err
		}
		eng.Keymaps().Add(loaded)
		return keys, nil
	}

	eng.Keymaps().Add(km)
	return keys, nil
}

func runLoop(screen tcell.Screen, eng *engine.Engine, keys *keyBindings, tick time.Duration) {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	start := time.Now()
	releaseAt := make(map[keystate.Coord]uint32)

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return
				}
				now := uint32(time.Since(start).Milliseconds())
				var c keystate.Coord
				var ok bool
				if ev.Key() == tcell.KeyRune {
					c, ok = keys.runes[ev.Rune()]
				} else {
					c, ok = keys.special[ev.Key()]
				}
				if ok {
					eng.SetHardwareSwitchState(c, true)
					releaseAt[c] = now + syntheticHold
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.C:
			now := uint32(time.Since(start).Milliseconds())
			for c, at := range releaseAt {
				if now >= at {
					eng.SetHardwareSwitchState(c, false)
					delete(releaseAt, c)
				}
			}
			eng.Update(now)
			render(screen, eng)
		}
	}
}

func render(screen tcell.Screen, eng *engine.Engine) {
	screen.Clear()

	style := tcell.StyleDefault
	dim := style.Foreground(tcell.ColorGray)

	drawText(screen, 0, 0, style.Bold(true), "hidengine — Esc quits")
	drawText(screen, 0, 1, dim, "letters type · arrows move mouse · PgUp/PgDn scroll · Tab holds fn")

	basic := eng.BasicReport()
	drawText(screen, 0, 3, style, fmt.Sprintf("basic   mods=%08b keys=%v", basic.Modifiers, basic.Scancodes))
	drawText(screen, 0, 4, style, fmt.Sprintf("media   keys=%v", eng.MediaReport().Scancodes))
	drawText(screen, 0, 5, style, fmt.Sprintf("system  keys=%v", eng.SystemReport().Scancodes))
	mouse := eng.MouseReport()
	drawText(screen, 0, 6, style, fmt.Sprintf("mouse   btn=%08b x=%+d y=%+d wheel=(%+d,%+d)",
		mouse.Buttons, mouse.X, mouse.Y, mouse.WheelX, mouse.WheelY))

	drawText(screen, 0, 8, dim, fmt.Sprintf("layer=%s cycles=%d", eng.Layers().Active(), eng.UpdateCounter()))

	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
