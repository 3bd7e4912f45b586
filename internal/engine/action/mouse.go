package action

import (
	"fmt"
	"strings"
)

// MouseAction is a discrete virtual-mouse action a key can drive.
type MouseAction uint8

const (
	MouseLeftClick MouseAction = iota
	MouseMiddleClick
	MouseRightClick
	MouseMoveUp
	MouseMoveDown
	MouseMoveLeft
	MouseMoveRight
	MouseScrollUp
	MouseScrollDown
	MouseScrollLeft
	MouseScrollRight
	MouseAccelerate
	MouseDecelerate
	MouseButton4
	MouseButton5
	MouseButton6
	MouseButton7
	MouseButton8

	// MouseActionCount is the number of mouse actions.
	MouseActionCount
)

var mouseActionNames = [MouseActionCount]string{
	"leftClick", "middleClick", "rightClick",
	"moveUp", "moveDown", "moveLeft", "moveRight",
	"scrollUp", "scrollDown", "scrollLeft", "scrollRight",
	"accelerate", "decelerate",
	"button4", "button5", "button6", "button7", "button8",
}

// String returns the action name.
func (a MouseAction) String() string {
	if a < MouseActionCount {
		return mouseActionNames[a]
	}
	return fmt.Sprintf("MouseAction(%d)", uint8(a))
}

// MouseActionFromName returns the mouse action for a name (case-insensitive)
// and whether the name was recognized.
func MouseActionFromName(name string) (MouseAction, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range mouseActionNames {
		if strings.ToLower(n) == name {
			return MouseAction(i), true
		}
	}
	return 0, false
}
