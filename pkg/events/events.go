package events

import (
	"errors"
	"fmt"
	"time"
)

// Devices an event can originate from.
const (
	DeviceState    = "state"
	DeviceMouse    = "mouse"
	DeviceKeyboard = "keyboard"
)

// Event is one discrete recorded occurrence. The variant set is closed:
// StateSnapshot, MouseButtonEvent, ClickEvent, ScrollEvent, KeyboardEvent,
// and WriteEvent. When returns the instant the event started; End returns
// the instant it finished, which differs from When only for merged events
// carrying a last timestamp.
type Event interface {
	When() time.Time
	End() time.Time

	event()
}

// Events is an ordered, finite sequence of events. Chronological order is
// assumed but not enforced.
type Events []Event

// StateSnapshot captures the general state of the screen: what it looks like
// and where the mouse is.
type StateSnapshot struct {
	Timestamp  time.Time   `json:"timestamp"`
	Screenshot *Screenshot `json:"screenshot"`
	Location   Point       `json:"location"`
}

// NewStateSnapshot builds a snapshot stamped with the current time. The
// screenshot is mandatory for this variant.
func NewStateSnapshot(shot *Screenshot, location Point) (*StateSnapshot, error) {
	evt := &StateSnapshot{Timestamp: time.Now(), Screenshot: shot, Location: location}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return evt, nil
}

// Validate checks the snapshot's required fields.
func (e *StateSnapshot) Validate() error {
	if e.Screenshot == nil {
		return errors.New("state snapshot requires a screenshot")
	}
	return nil
}

func (e *StateSnapshot) When() time.Time { return e.Timestamp }
func (e *StateSnapshot) End() time.Time  { return e.Timestamp }
func (e *StateSnapshot) event()          {}

// MouseButtonEvent records a press, release, or click of a mouse button.
type MouseButtonEvent struct {
	Timestamp  time.Time   `json:"timestamp"`
	Screenshot *Screenshot `json:"screenshot,omitempty"`
	Location   Point       `json:"location"`
	Action     Action      `json:"action"`
	Button     Button      `json:"button"`
}

// NewMouseButtonEvent builds a mouse button event stamped with the current
// time.
func NewMouseButtonEvent(action Action, button Button, location Point) (*MouseButtonEvent, error) {
	evt := &MouseButtonEvent{Timestamp: time.Now(), Location: location, Action: action, Button: button}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return evt, nil
}

// Validate checks the action and button values.
func (e *MouseButtonEvent) Validate() error {
	switch e.Action {
	case ActionPress, ActionRelease, ActionClick:
	default:
		return fmt.Errorf("mouse button action must be press, release, or click; got %q", string(e.Action))
	}
	return e.Button.Validate()
}

func (e *MouseButtonEvent) When() time.Time { return e.Timestamp }
func (e *MouseButtonEvent) End() time.Time  { return e.Timestamp }
func (e *MouseButtonEvent) event()          {}

// ClickEvent is a completed click, possibly aggregating several rapid clicks
// of the same button at the same spot. NClicks is always at least one. Last
// marks the end of a merged run; nil means the click is instantaneous.
type ClickEvent struct {
	Timestamp  time.Time   `json:"timestamp"`
	Screenshot *Screenshot `json:"screenshot,omitempty"`
	Location   Point       `json:"location"`
	Button     Button      `json:"button"`
	NClicks    int         `json:"n_clicks"`
	Last       *time.Time  `json:"last_timestamp,omitempty"`
}

// NewClickEvent builds a single click stamped with the current time.
func NewClickEvent(button Button, location Point) (*ClickEvent, error) {
	evt := &ClickEvent{Timestamp: time.Now(), Location: location, Button: button, NClicks: 1}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return evt, nil
}

// Validate checks the button and the click count.
func (e *ClickEvent) Validate() error {
	if e.NClicks < 1 {
		return fmt.Errorf("n_clicks must be at least 1; got %d", e.NClicks)
	}
	return e.Button.Validate()
}

func (e *ClickEvent) When() time.Time { return e.Timestamp }

// End returns the last timestamp when present, otherwise the start.
func (e *ClickEvent) End() time.Time {
	if e.Last != nil {
		return *e.Last
	}
	return e.Timestamp
}

func (e *ClickEvent) event() {}

// UpdateWith combines two clicks into a new one without mutating either
// input: click counts are summed, the start becomes the earlier of the two
// starts, and the last timestamp the latest instant covered by either event.
// Location, button, and screenshot are taken from the receiver.
func (e *ClickEvent) UpdateWith(other *ClickEvent) *ClickEvent {
	merged := *e
	merged.NClicks = e.NClicks + other.NClicks
	merged.Timestamp = earliest(e.Timestamp, other.Timestamp)
	end := latest(e.Timestamp, other.Timestamp, e.End(), other.End())
	merged.Last = &end
	return &merged
}

// AsClick converts an event into a ClickEvent. An existing click is copied
// unchanged; a mouse button event is accepted only when its action is
// "click". Anything else is a validation error.
func AsClick(evt Event) (*ClickEvent, error) {
	switch e := evt.(type) {
	case *ClickEvent:
		clone := *e
		return &clone, nil
	case *MouseButtonEvent:
		if e.Action != ActionClick {
			return nil, fmt.Errorf("cannot build a click from a mouse %s event", string(e.Action))
		}
		return &ClickEvent{
			Timestamp:  e.Timestamp,
			Screenshot: e.Screenshot,
			Location:   e.Location,
			Button:     e.Button,
			NClicks:    1,
		}, nil
	default:
		return nil, fmt.Errorf("cannot build a click from %T", evt)
	}
}

// ScrollEvent records mouse wheel movement. The delta accumulates when
// consecutive scrolls are merged.
type ScrollEvent struct {
	Timestamp  time.Time   `json:"timestamp"`
	Screenshot *Screenshot `json:"screenshot,omitempty"`
	Location   Point       `json:"location"`
	Scroll     Delta       `json:"scroll"`
	Last       *time.Time  `json:"last_timestamp,omitempty"`
}

// NewScrollEvent builds a scroll event stamped with the current time.
func NewScrollEvent(location Point, scroll Delta) *ScrollEvent {
	return &ScrollEvent{Timestamp: time.Now(), Location: location, Scroll: scroll}
}

func (e *ScrollEvent) When() time.Time { return e.Timestamp }

// End returns the last timestamp when present, otherwise the start.
func (e *ScrollEvent) End() time.Time {
	if e.Last != nil {
		return *e.Last
	}
	return e.Timestamp
}

func (e *ScrollEvent) event() {}

// UpdateWith combines two scrolls into a new one without mutating either
// input: deltas are summed and timestamps combined as for clicks.
func (e *ScrollEvent) UpdateWith(other *ScrollEvent) *ScrollEvent {
	merged := *e
	merged.Scroll = e.Scroll.Add(other.Scroll)
	merged.Timestamp = earliest(e.Timestamp, other.Timestamp)
	end := latest(e.Timestamp, other.Timestamp, e.End(), other.End())
	merged.Last = &end
	return &merged
}

// KeyboardEvent records a single key press or release.
type KeyboardEvent struct {
	Timestamp  time.Time   `json:"timestamp"`
	Screenshot *Screenshot `json:"screenshot,omitempty"`
	Action     Action      `json:"action"`
	Key        Key         `json:"key"`
}

// NewKeyboardEvent builds a keyboard event stamped with the current time.
func NewKeyboardEvent(action Action, key Key) (*KeyboardEvent, error) {
	evt := &KeyboardEvent{Timestamp: time.Now(), Action: action, Key: key}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return evt, nil
}

// Validate checks the action and key values.
func (e *KeyboardEvent) Validate() error {
	switch e.Action {
	case ActionPress, ActionRelease:
	default:
		return fmt.Errorf("keyboard action must be press or release; got %q", string(e.Action))
	}
	return e.Key.Validate()
}

func (e *KeyboardEvent) When() time.Time { return e.Timestamp }
func (e *KeyboardEvent) End() time.Time  { return e.Timestamp }
func (e *KeyboardEvent) event()          {}

// WriteEvent aggregates sustained typing: an ordered run of keys in the
// order they were typed.
type WriteEvent struct {
	Timestamp  time.Time   `json:"timestamp"`
	Screenshot *Screenshot `json:"screenshot,omitempty"`
	Keys       []Key       `json:"keys"`
	Last       *time.Time  `json:"last_timestamp,omitempty"`
}

// NewWriteEvent builds a write event stamped with the current time.
func NewWriteEvent(keys ...Key) (*WriteEvent, error) {
	evt := &WriteEvent{Timestamp: time.Now(), Keys: keys}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return evt, nil
}

// Validate checks every key in the run.
func (e *WriteEvent) Validate() error {
	for _, k := range e.Keys {
		if err := k.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e *WriteEvent) When() time.Time { return e.Timestamp }

// End returns the last timestamp when present, otherwise the start.
func (e *WriteEvent) End() time.Time {
	if e.Last != nil {
		return *e.Last
	}
	return e.Timestamp
}

func (e *WriteEvent) event() {}

// Append concatenates the other event's keys after the receiver's, returning
// a new event with timestamps combined as for clicks. Neither input is
// mutated.
func (e *WriteEvent) Append(other *WriteEvent) *WriteEvent {
	merged := *e
	keys := make([]Key, 0, len(e.Keys)+len(other.Keys))
	keys = append(keys, e.Keys...)
	keys = append(keys, other.Keys...)
	merged.Keys = keys
	merged.Timestamp = earliest(e.Timestamp, other.Timestamp)
	end := latest(e.Timestamp, other.Timestamp, e.End(), other.End())
	merged.Last = &end
	return &merged
}

// WriteFromKeyboard produces a single-key write event preserving the
// keyboard event's timestamp and screenshot.
func WriteFromKeyboard(evt *KeyboardEvent) *WriteEvent {
	return &WriteEvent{
		Timestamp:  evt.Timestamp,
		Screenshot: evt.Screenshot,
		Keys:       []Key{evt.Key},
	}
}

// Duration reports how long an event spans: zero unless the event carries a
// later last timestamp.
func Duration(evt Event) time.Duration {
	return evt.End().Sub(evt.When())
}

func earliest(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func latest(ts ...time.Time) time.Time {
	out := ts[0]
	for _, t := range ts[1:] {
		if t.After(out) {
			out = t
		}
	}
	return out
}
