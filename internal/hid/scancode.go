package hid

import "strings"

// Keyboard-page (0x07) usage ids. Only the usages the engine, the keymap
// loader, and the macro engine reference are named here; anything else can be
// supplied numerically.
const (
	ScancodeA uint8 = 0x04 + iota
	ScancodeB
	ScancodeC
	ScancodeD
	ScancodeE
	ScancodeF
	ScancodeG
	ScancodeH
	ScancodeI
	ScancodeJ
	ScancodeK
	ScancodeL
	ScancodeM
	ScancodeN
	ScancodeO
	ScancodeP
	ScancodeQ
	ScancodeR
	ScancodeS
	ScancodeT
	ScancodeU
	ScancodeV
	ScancodeW
	ScancodeX
	ScancodeY
	ScancodeZ
	Scancode1
	Scancode2
	Scancode3
	Scancode4
	Scancode5
	Scancode6
	Scancode7
	Scancode8
	Scancode9
	Scancode0
	ScancodeEnter
	ScancodeEscape
	ScancodeBackspace
	ScancodeTab
	ScancodeSpace
	ScancodeMinus
	ScancodeEqual
)

const (
	ScancodeRightArrow uint8 = 0x4F
	ScancodeLeftArrow  uint8 = 0x50
	ScancodeDownArrow  uint8 = 0x51
	ScancodeUpArrow    uint8 = 0x52
)

// Consumer-page usages carried by the media keyboard report.
const (
	MediaScanNext   uint16 = 0xB5
	MediaScanPrev   uint16 = 0xB6
	MediaStop       uint16 = 0xB7
	MediaPlayPause  uint16 = 0xCD
	MediaMute       uint16 = 0xE2
	MediaVolumeUp   uint16 = 0xE9
	MediaVolumeDown uint16 = 0xEA
)

// System control usages carried by the system keyboard report.
const (
	SystemPowerDown uint8 = 0x81
	SystemSleep     uint8 = 0x82
	SystemWakeUp    uint8 = 0x83
)

// scancodeNames maps lowercase names to keyboard-page usages. Runes a-z and
// 0-9 are handled arithmetically by ScancodeFromName.
var scancodeNames = map[string]uint8{
	"enter":     ScancodeEnter,
	"escape":    ScancodeEscape,
	"esc":       ScancodeEscape,
	"backspace": ScancodeBackspace,
	"tab":       ScancodeTab,
	"space":     ScancodeSpace,
	"minus":     ScancodeMinus,
	"equal":     ScancodeEqual,
	"right":     ScancodeRightArrow,
	"left":      ScancodeLeftArrow,
	"down":      ScancodeDownArrow,
	"up":        ScancodeUpArrow,
}

// ScancodeFromName returns the keyboard-page usage for a key name
// (case-insensitive). Returns 0 if the name is not recognized.
func ScancodeFromName(name string) uint8 {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return ScancodeA + c - 'a'
		case c >= '1' && c <= '9':
			return Scancode1 + c - '1'
		case c == '0':
			return Scancode0
		case c == ' ':
			return ScancodeSpace
		}
		return 0
	}
	return scancodeNames[name]
}

// ScancodeFromRune returns the keyboard-page usage and shift requirement for
// a printable rune, or 0 if the rune has no mapping. Uppercase letters map to
// their scancode with shift set.
func ScancodeFromRune(r rune) (scancode uint8, shift bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return ScancodeA + uint8(r-'a'), false
	case r >= 'A' && r <= 'Z':
		return ScancodeA + uint8(r-'A'), true
	case r >= '1' && r <= '9':
		return Scancode1 + uint8(r-'1'), false
	case r == '0':
		return Scancode0, false
	case r == ' ':
		return ScancodeSpace, false
	case r == '-':
		return ScancodeMinus, false
	case r == '=':
		return ScancodeEqual, false
	case r == '\n':
		return ScancodeEnter, false
	case r == '\t':
		return ScancodeTab, false
	}
	return 0, false
}
