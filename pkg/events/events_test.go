package events

import (
	"strings"
	"testing"
	"time"
)

func ts(sec, ms int) time.Time {
	return time.Date(2024, 6, 3, 9, 15, sec, ms*1e6, time.UTC)
}

func TestParseButton(t *testing.T) {
	cases := []struct {
		in   string
		want Button
	}{
		{"left", ButtonLeft},
		{"LEFT", ButtonLeft},
		{"middle", ButtonMiddle},
		{"center", ButtonMiddle},
		{"Right", ButtonRight},
	}
	for _, tc := range cases {
		got, err := ParseButton(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %q want %q", tc.in, got, tc.want)
		}
	}

	if _, err := ParseButton("pinky"); err == nil {
		t.Fatalf("expected error for unknown button")
	}
}

func TestConstructorValidation(t *testing.T) {
	if _, err := NewMouseButtonEvent("hover", ButtonLeft, Point{X: 1, Y: 1}); err == nil {
		t.Fatalf("expected error for invalid mouse action")
	}
	if _, err := NewMouseButtonEvent(ActionPress, "pinky", Point{X: 1, Y: 1}); err == nil {
		t.Fatalf("expected error for invalid button")
	}
	if _, err := NewKeyboardEvent(ActionClick, Key("a")); err == nil {
		t.Fatalf("expected error for keyboard click action")
	}
	if _, err := NewKeyboardEvent(ActionPress, Key("warp")); err == nil {
		t.Fatalf("expected error for unknown special key")
	}
	if _, err := NewStateSnapshot(nil, Point{X: 1, Y: 1}); err == nil {
		t.Fatalf("expected error for snapshot without screenshot")
	}

	invalid := &ClickEvent{Timestamp: ts(0, 0), Location: Point{X: 1, Y: 1}, Button: ButtonLeft, NClicks: 0}
	if err := invalid.Validate(); err == nil {
		t.Fatalf("expected error for zero n_clicks")
	}
}

func TestKeyClassification(t *testing.T) {
	if Key("a").IsSpecial() {
		t.Fatalf("single character should not be special")
	}
	if !KeyEnter.IsSpecial() {
		t.Fatalf("enter should be special")
	}
	if err := Key("a").Validate(); err != nil {
		t.Fatalf("literal key: %v", err)
	}
	if err := KeyAlt.Validate(); err != nil {
		t.Fatalf("alt key: %v", err)
	}

	keys := KeysOf("hi!")
	if len(keys) != 3 || keys[0] != "h" || keys[2] != "!" {
		t.Fatalf("unexpected key split: %v", keys)
	}
}

func TestEndFallsBackToTimestamp(t *testing.T) {
	click := &ClickEvent{Timestamp: ts(1, 0), Location: Point{X: 1, Y: 1}, Button: ButtonLeft, NClicks: 1}
	if !click.End().Equal(ts(1, 0)) {
		t.Fatalf("expected End to equal the start for instantaneous clicks")
	}

	end := ts(2, 500)
	click.Last = &end
	if !click.End().Equal(end) {
		t.Fatalf("expected End to report the last timestamp")
	}
	if Duration(click) != 1500*time.Millisecond {
		t.Fatalf("unexpected duration: %v", Duration(click))
	}
}

func TestClickUpdateWithCombinesCountsAndTimestamps(t *testing.T) {
	firstEnd := ts(1, 0)
	first := &ClickEvent{Timestamp: ts(0, 0), Location: Point{X: 4, Y: 4}, Button: ButtonLeft, NClicks: 2, Last: &firstEnd}
	second := &ClickEvent{Timestamp: ts(2, 0), Location: Point{X: 5, Y: 5}, Button: ButtonLeft, NClicks: 3}

	merged := first.UpdateWith(second)

	if merged.NClicks != 5 {
		t.Fatalf("expected 5 clicks, got %d", merged.NClicks)
	}
	if !merged.Timestamp.Equal(ts(0, 0)) {
		t.Fatalf("expected earliest start, got %v", merged.Timestamp)
	}
	if merged.Last == nil || !merged.Last.Equal(ts(2, 0)) {
		t.Fatalf("expected latest end, got %v", merged.Last)
	}
	if merged.Location != first.Location {
		t.Fatalf("expected the receiver's location to win")
	}

	// Inputs must be left untouched.
	if first.NClicks != 2 || !first.Timestamp.Equal(ts(0, 0)) || !first.Last.Equal(firstEnd) {
		t.Fatalf("first input was mutated: %+v", first)
	}
	if second.NClicks != 3 || second.Last != nil {
		t.Fatalf("second input was mutated: %+v", second)
	}
}

func TestClickUpdateWithReversedOrder(t *testing.T) {
	early := &ClickEvent{Timestamp: ts(0, 0), Location: Point{X: 1, Y: 1}, Button: ButtonLeft, NClicks: 1}
	late := &ClickEvent{Timestamp: ts(0, 300), Location: Point{X: 1, Y: 1}, Button: ButtonLeft, NClicks: 1}

	merged := late.UpdateWith(early)

	if !merged.Timestamp.Equal(ts(0, 0)) {
		t.Fatalf("expected start to be the earlier input's timestamp")
	}
	if merged.Last == nil || !merged.Last.Equal(ts(0, 300)) {
		t.Fatalf("expected end to be the later input's timestamp")
	}
}

func TestScrollUpdateWithSumsDeltas(t *testing.T) {
	first := &ScrollEvent{Timestamp: ts(0, 0), Location: Point{X: 1, Y: 1}, Scroll: Delta{DX: -2, DY: 5}}
	second := &ScrollEvent{Timestamp: ts(1, 0), Location: Point{X: 1, Y: 1}, Scroll: Delta{DX: 1, DY: 2}}

	merged := first.UpdateWith(second)

	if merged.Scroll != (Delta{DX: -1, DY: 7}) {
		t.Fatalf("unexpected summed delta: %+v", merged.Scroll)
	}
	if first.Scroll != (Delta{DX: -2, DY: 5}) {
		t.Fatalf("first input was mutated")
	}
}

func TestWriteAppendConcatenatesKeys(t *testing.T) {
	first := &WriteEvent{Timestamp: ts(0, 0), Keys: KeysOf("he")}
	second := &WriteEvent{Timestamp: ts(0, 400), Keys: []Key{Key("y"), KeyEnter}}

	merged := first.Append(second)

	want := []Key{"h", "e", "y", KeyEnter}
	if len(merged.Keys) != len(want) {
		t.Fatalf("unexpected key run: %v", merged.Keys)
	}
	for i, k := range want {
		if merged.Keys[i] != k {
			t.Fatalf("key %d: got %q want %q", i, merged.Keys[i], k)
		}
	}
	if len(first.Keys) != 2 || len(second.Keys) != 2 {
		t.Fatalf("inputs were mutated")
	}

	// The merged run must not alias the receiver's backing array.
	merged.Keys[0] = "z"
	if first.Keys[0] != "h" {
		t.Fatalf("merged keys alias the receiver")
	}
}

func TestAsClick(t *testing.T) {
	click := &ClickEvent{Timestamp: ts(0, 0), Location: Point{X: 2, Y: 2}, Button: ButtonRight, NClicks: 4}
	got, err := AsClick(click)
	if err != nil {
		t.Fatalf("as click: %v", err)
	}
	if got == click {
		t.Fatalf("expected a copy, not the same pointer")
	}
	if got.NClicks != 4 || got.Button != ButtonRight {
		t.Fatalf("copy lost fields: %+v", got)
	}

	mb := &MouseButtonEvent{Timestamp: ts(1, 0), Location: Point{X: 3, Y: 3}, Action: ActionClick, Button: ButtonLeft}
	converted, err := AsClick(mb)
	if err != nil {
		t.Fatalf("as click from mouse button: %v", err)
	}
	if converted.NClicks != 1 || converted.Button != ButtonLeft || !converted.Timestamp.Equal(ts(1, 0)) {
		t.Fatalf("unexpected conversion: %+v", converted)
	}

	press := &MouseButtonEvent{Timestamp: ts(1, 0), Location: Point{X: 3, Y: 3}, Action: ActionPress, Button: ButtonLeft}
	if _, err := AsClick(press); err == nil || !strings.Contains(err.Error(), "press") {
		t.Fatalf("expected press conversion to fail, got %v", err)
	}

	if _, err := AsClick(&ScrollEvent{Timestamp: ts(0, 0)}); err == nil {
		t.Fatalf("expected scroll conversion to fail")
	}
}

func TestWriteFromKeyboard(t *testing.T) {
	shot := SavedScreenshot("shot.png")
	kb := &KeyboardEvent{Timestamp: ts(2, 0), Screenshot: shot, Action: ActionPress, Key: KeyTab}

	write := WriteFromKeyboard(kb)

	if len(write.Keys) != 1 || write.Keys[0] != KeyTab {
		t.Fatalf("unexpected keys: %v", write.Keys)
	}
	if !write.Timestamp.Equal(ts(2, 0)) || write.Screenshot != shot {
		t.Fatalf("timestamp or screenshot not preserved: %+v", write)
	}
}
