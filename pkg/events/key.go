package events

import (
	"fmt"
	"unicode/utf8"
)

// Key is a single keyboard input: either a literal character (a one-rune
// string such as "a") or a named special key. Special keys always have
// multi-rune names, so the two forms never collide.
type Key string

// Named special keys.
const (
	KeyAlt       Key = "alt"
	KeyBackspace Key = "backspace"
	KeyCapsLock  Key = "caps_lock"
	KeyCmd       Key = "cmd"
	KeyCtrl      Key = "ctrl"
	KeyDelete    Key = "delete"
	KeyDown      Key = "down"
	KeyEnd       Key = "end"
	KeyEnter     Key = "enter"
	KeyEsc       Key = "esc"
	KeyHome      Key = "home"
	KeyLeft      Key = "left"
	KeyPageDown  Key = "page_down"
	KeyPageUp    Key = "page_up"
	KeyRight     Key = "right"
	KeyShift     Key = "shift"
	KeySpace     Key = "space"
	KeyTab       Key = "tab"
	KeyUp        Key = "up"
)

var specialKeys = map[Key]struct{}{
	KeyAlt: {}, KeyBackspace: {}, KeyCapsLock: {}, KeyCmd: {}, KeyCtrl: {},
	KeyDelete: {}, KeyDown: {}, KeyEnd: {}, KeyEnter: {}, KeyEsc: {},
	KeyHome: {}, KeyLeft: {}, KeyPageDown: {}, KeyPageUp: {}, KeyRight: {},
	KeyShift: {}, KeySpace: {}, KeyTab: {}, KeyUp: {},
}

// IsSpecial reports whether the key is a named special key rather than a
// literal character.
func (k Key) IsSpecial() bool {
	return utf8.RuneCountInString(string(k)) > 1
}

// Validate reports an error for empty keys and for multi-rune keys that do
// not name a known special key.
func (k Key) Validate() error {
	if k == "" {
		return fmt.Errorf("key must not be empty")
	}
	if !k.IsSpecial() {
		return nil
	}
	if _, ok := specialKeys[k]; !ok {
		return fmt.Errorf("unrecognized special key %q", string(k))
	}
	return nil
}

// KeysOf splits a string of literal characters into individual keys.
func KeysOf(text string) []Key {
	keys := make([]Key, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		keys = append(keys, Key(r))
	}
	return keys
}
