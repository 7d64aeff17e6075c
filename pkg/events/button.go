package events

import (
	"fmt"
	"strings"
)

// Button identifies a mouse button.
type Button string

// Recognised mouse buttons.
const (
	ButtonLeft   Button = "left"
	ButtonMiddle Button = "middle"
	ButtonRight  Button = "right"
)

// ParseButton converts a textual button name into a Button. It accepts the
// canonical names case-insensitively plus "center" as an alias for middle.
func ParseButton(value string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left":
		return ButtonLeft, nil
	case "middle", "center":
		return ButtonMiddle, nil
	case "right":
		return ButtonRight, nil
	default:
		return "", fmt.Errorf("unrecognized mouse button %q", value)
	}
}

// Validate reports an error for button values outside the recognised set.
func (b Button) Validate() error {
	switch b {
	case ButtonLeft, ButtonMiddle, ButtonRight:
		return nil
	default:
		return fmt.Errorf("unrecognized mouse button %q", string(b))
	}
}

// Action describes what an input device did.
type Action string

// Device actions used across event variants.
const (
	ActionPress   Action = "press"
	ActionRelease Action = "release"
	ActionClick   Action = "click"
	ActionScroll  Action = "scroll"
	ActionWrite   Action = "write"
)
