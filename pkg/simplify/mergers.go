package simplify

import (
	"time"

	"github.com/offlinefirst/mimic/pkg/events"
)

// A Merger decides whether two chronologically adjacent events collapse into
// one. It returns a single merged event when the rule applies, otherwise the
// pair unchanged. Results are always in chronological order, even when the
// inputs were not; mergers never mutate their inputs.
type Merger func(first, second events.Event) []events.Event

// Default thresholds for the pairwise merge rules.
const (
	DefaultClickGap      = 200 * time.Millisecond
	DefaultMultiClickGap = 400 * time.Millisecond
	DefaultKeyWriteGap   = 150 * time.Millisecond
	DefaultWriteGap      = time.Second
	DefaultScrollGap     = 3 * time.Second
	DefaultMaxPixels     = 5
)

// chronological orders a pair by start timestamp.
func chronological(a, b events.Event) (events.Event, events.Event) {
	if b.When().Before(a.When()) {
		return b, a
	}
	return a, b
}

// gap measures the idle time between the first event's end and the second
// event's start.
func gap(first, second events.Event) time.Duration {
	return second.When().Sub(first.End())
}

// DropConsecutiveSnapshots merges two adjacent state snapshots by keeping
// only the chronologically later one.
func DropConsecutiveSnapshots() Merger {
	return func(first, second events.Event) []events.Event {
		first, second = chronological(first, second)
		if _, ok := first.(*events.StateSnapshot); !ok {
			return []events.Event{first, second}
		}
		if _, ok := second.(*events.StateSnapshot); !ok {
			return []events.Event{first, second}
		}
		return []events.Event{second}
	}
}

// MousePressReleaseToClick converts a press directly followed by a release
// of the same button into a single click, provided the release happened
// within maxGap of the press and the pointer moved at most maxPixels.
func MousePressReleaseToClick(maxGap time.Duration, maxPixels float64) Merger {
	return func(first, second events.Event) []events.Event {
		first, second = chronological(first, second)
		pair := []events.Event{first, second}

		press, ok := first.(*events.MouseButtonEvent)
		if !ok || press.Action != events.ActionPress {
			return pair
		}
		release, ok := second.(*events.MouseButtonEvent)
		if !ok || release.Action != events.ActionRelease {
			return pair
		}
		if press.Button != release.Button {
			return pair
		}
		if gap(press, release) > maxGap {
			return pair
		}
		if press.Location.DistanceTo(release.Location) > maxPixels {
			return pair
		}

		return []events.Event{&events.ClickEvent{
			Timestamp:  press.Timestamp,
			Screenshot: press.Screenshot,
			Location:   press.Location,
			Button:     press.Button,
			NClicks:    1,
		}}
	}
}

// ClicksToMultiClick merges two adjacent clicks of the same button into one
// click with the counts summed, provided the second started within maxGap of
// the first ending and the pointer moved at most maxPixels. Mouse button
// events whose action is "click" participate as single clicks.
func ClicksToMultiClick(maxGap time.Duration, maxPixels float64) Merger {
	return func(first, second events.Event) []events.Event {
		first, second = chronological(first, second)
		pair := []events.Event{first, second}

		if !clickish(first) || !clickish(second) {
			return pair
		}
		a, err := events.AsClick(first)
		if err != nil {
			return pair
		}
		b, err := events.AsClick(second)
		if err != nil {
			return pair
		}
		if a.Button != b.Button {
			return pair
		}
		if gap(a, b) > maxGap {
			return pair
		}
		if a.Location.DistanceTo(b.Location) > maxPixels {
			return pair
		}

		return []events.Event{a.UpdateWith(b)}
	}
}

func clickish(evt events.Event) bool {
	switch e := evt.(type) {
	case *events.ClickEvent:
		return true
	case *events.MouseButtonEvent:
		return e.Action == events.ActionClick
	default:
		return false
	}
}

// KeyPressReleaseToWrite converts a key press directly followed by the
// release of the same key into a single-key write, provided the release
// happened within maxGap of the press.
func KeyPressReleaseToWrite(maxGap time.Duration) Merger {
	return func(first, second events.Event) []events.Event {
		first, second = chronological(first, second)
		pair := []events.Event{first, second}

		press, ok := first.(*events.KeyboardEvent)
		if !ok || press.Action != events.ActionPress {
			return pair
		}
		release, ok := second.(*events.KeyboardEvent)
		if !ok || release.Action != events.ActionRelease {
			return pair
		}
		if press.Key != release.Key {
			return pair
		}
		if gap(press, release) > maxGap {
			return pair
		}

		return []events.Event{events.WriteFromKeyboard(press)}
	}
}

// MergeConsecutiveWrites concatenates two adjacent writes when the second
// started within maxGap of the first ending.
func MergeConsecutiveWrites(maxGap time.Duration) Merger {
	return func(first, second events.Event) []events.Event {
		first, second = chronological(first, second)
		pair := []events.Event{first, second}

		a, ok := first.(*events.WriteEvent)
		if !ok {
			return pair
		}
		b, ok := second.(*events.WriteEvent)
		if !ok {
			return pair
		}
		if gap(a, b) > maxGap {
			return pair
		}

		return []events.Event{a.Append(b)}
	}
}

// MergeConsecutiveScrolls sums two adjacent scrolls when they happened close
// together in time and space and their directions are compatible: on each
// axis the deltas must share a sign unless one of them is zero. With
// mergeOpposite set, direction is ignored and opposing deltas may cancel.
func MergeConsecutiveScrolls(maxGap time.Duration, maxPixels float64, mergeOpposite bool) Merger {
	return func(first, second events.Event) []events.Event {
		first, second = chronological(first, second)
		pair := []events.Event{first, second}

		a, ok := first.(*events.ScrollEvent)
		if !ok {
			return pair
		}
		b, ok := second.(*events.ScrollEvent)
		if !ok {
			return pair
		}
		if gap(a, b) > maxGap {
			return pair
		}
		if a.Location.DistanceTo(b.Location) > maxPixels {
			return pair
		}
		if !mergeOpposite {
			if !sameDirection(a.Scroll.DX, b.Scroll.DX) || !sameDirection(a.Scroll.DY, b.Scroll.DY) {
				return pair
			}
		}

		return []events.Event{a.UpdateWith(b)}
	}
}

// sameDirection reports whether two deltas on one axis are compatible:
// either is zero, or both share a sign.
func sameDirection(a, b int) bool {
	if a == 0 || b == 0 {
		return true
	}
	return (a < 0) == (b < 0)
}
