package events

import (
	"encoding/json"
	"fmt"
)

// The wire form of every event carries a "device" discriminator and, for
// mouse and keyboard devices, an "action". Decoding dispatches on the pair,
// so merged variants stay round-trippable field for field.

// MarshalJSON tags the snapshot with its device.
func (e *StateSnapshot) MarshalJSON() ([]byte, error) {
	type alias StateSnapshot
	return json.Marshal(struct {
		Device string `json:"device"`
		*alias
	}{DeviceState, (*alias)(e)})
}

// MarshalJSON tags the event with its device.
func (e *MouseButtonEvent) MarshalJSON() ([]byte, error) {
	type alias MouseButtonEvent
	return json.Marshal(struct {
		Device string `json:"device"`
		*alias
	}{DeviceMouse, (*alias)(e)})
}

// MarshalJSON tags the click with its device and fixed action.
func (e *ClickEvent) MarshalJSON() ([]byte, error) {
	type alias ClickEvent
	return json.Marshal(struct {
		Device string `json:"device"`
		Action Action `json:"action"`
		*alias
	}{DeviceMouse, ActionClick, (*alias)(e)})
}

// MarshalJSON tags the scroll with its device and fixed action.
func (e *ScrollEvent) MarshalJSON() ([]byte, error) {
	type alias ScrollEvent
	return json.Marshal(struct {
		Device string `json:"device"`
		Action Action `json:"action"`
		*alias
	}{DeviceMouse, ActionScroll, (*alias)(e)})
}

// MarshalJSON tags the event with its device.
func (e *KeyboardEvent) MarshalJSON() ([]byte, error) {
	type alias KeyboardEvent
	return json.Marshal(struct {
		Device string `json:"device"`
		*alias
	}{DeviceKeyboard, (*alias)(e)})
}

// MarshalJSON tags the write with its device and fixed action.
func (e *WriteEvent) MarshalJSON() ([]byte, error) {
	type alias WriteEvent
	return json.Marshal(struct {
		Device string `json:"device"`
		Action Action `json:"action"`
		*alias
	}{DeviceKeyboard, ActionWrite, (*alias)(e)})
}

// Describe reports the wire discriminators for an event.
func Describe(evt Event) (device, action string) {
	switch e := evt.(type) {
	case *StateSnapshot:
		return DeviceState, ""
	case *MouseButtonEvent:
		return DeviceMouse, string(e.Action)
	case *ClickEvent:
		return DeviceMouse, string(ActionClick)
	case *ScrollEvent:
		return DeviceMouse, string(ActionScroll)
	case *KeyboardEvent:
		return DeviceKeyboard, string(e.Action)
	case *WriteEvent:
		return DeviceKeyboard, string(ActionWrite)
	default:
		return "", ""
	}
}

// MarshalEvent encodes a single event in its tagged wire form.
func MarshalEvent(evt Event) ([]byte, error) {
	return json.Marshal(evt)
}

// UnmarshalEvent decodes a single tagged event, selecting the variant from
// the device/action pair. Decoded events are validated before being
// returned.
func UnmarshalEvent(data []byte) (Event, error) {
	var head struct {
		Device string `json:"device"`
		Action Action `json:"action"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode event header: %w", err)
	}

	switch head.Device {
	case DeviceState:
		evt := &StateSnapshot{}
		if err := json.Unmarshal(data, evt); err != nil {
			return nil, err
		}
		if err := evt.Validate(); err != nil {
			return nil, err
		}
		return evt, nil
	case DeviceMouse:
		switch head.Action {
		case ActionPress, ActionRelease:
			evt := &MouseButtonEvent{}
			if err := json.Unmarshal(data, evt); err != nil {
				return nil, err
			}
			if err := evt.Validate(); err != nil {
				return nil, err
			}
			return evt, nil
		case ActionClick:
			evt := &ClickEvent{NClicks: 1}
			if err := json.Unmarshal(data, evt); err != nil {
				return nil, err
			}
			if err := evt.Validate(); err != nil {
				return nil, err
			}
			return evt, nil
		case ActionScroll:
			evt := &ScrollEvent{}
			if err := json.Unmarshal(data, evt); err != nil {
				return nil, err
			}
			return evt, nil
		default:
			return nil, fmt.Errorf("unrecognized mouse action %q", string(head.Action))
		}
	case DeviceKeyboard:
		switch head.Action {
		case ActionPress, ActionRelease:
			evt := &KeyboardEvent{}
			if err := json.Unmarshal(data, evt); err != nil {
				return nil, err
			}
			if err := evt.Validate(); err != nil {
				return nil, err
			}
			return evt, nil
		case ActionWrite:
			evt := &WriteEvent{}
			if err := json.Unmarshal(data, evt); err != nil {
				return nil, err
			}
			if err := evt.Validate(); err != nil {
				return nil, err
			}
			return evt, nil
		default:
			return nil, fmt.Errorf("unrecognized keyboard action %q", string(head.Action))
		}
	default:
		return nil, fmt.Errorf("unrecognized device %q", head.Device)
	}
}

// UnmarshalJSON decodes a JSON array of tagged events.
func (es *Events) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Events, 0, len(raw))
	for i, item := range raw {
		evt, err := UnmarshalEvent(item)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		out = append(out, evt)
	}
	*es = out
	return nil
}
