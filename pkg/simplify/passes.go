package simplify

import (
	"time"

	"github.com/offlinefirst/mimic/pkg/events"
)

// A Pass is one full left-to-right fold of an event sequence.
type Pass func(events.Events) events.Events

// NewPass wraps a prioritized list of mergers into a pass over the whole
// sequence.
func NewPass(mergers ...Merger) Pass {
	return func(evts events.Events) events.Events {
		return MergeConsecutive(evts, mergers)
	}
}

// RunSimplifiers applies the passes strictly in order; each pass's full
// output becomes the next pass's full input.
func RunSimplifiers(evts events.Events, passes []Pass) events.Events {
	for _, pass := range passes {
		evts = pass(evts)
	}
	return evts
}

// DropConsecutiveStateSnapshots keeps only the last snapshot of every
// consecutive snapshot run.
func DropConsecutiveStateSnapshots(evts events.Events) events.Events {
	return MergeConsecutive(evts, []Merger{DropConsecutiveSnapshots()})
}

// Config carries the thresholds of every simplification pass.
type Config struct {
	PressClickGap    time.Duration
	PressClickPixels float64

	MultiClickGap    time.Duration
	MultiClickPixels float64

	KeyWriteGap time.Duration
	WriteGap    time.Duration

	ScrollGap           time.Duration
	ScrollPixels        float64
	MergeOppositeScroll bool
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		PressClickGap:    DefaultClickGap,
		PressClickPixels: DefaultMaxPixels,
		MultiClickGap:    DefaultMultiClickGap,
		MultiClickPixels: DefaultMaxPixels,
		KeyWriteGap:      DefaultKeyWriteGap,
		WriteGap:         DefaultWriteGap,
		ScrollGap:        DefaultScrollGap,
		ScrollPixels:     DefaultMaxPixels,
	}
}

// DefaultPasses builds the canonical ordered pipeline: snapshot dropping,
// press/release to click, clicks to multi-click, key press/release to write,
// write merging, scroll merging. The order is load-bearing: multi-click
// merging only sees clicks that the press/release pass has already formed,
// and write merging only sees writes formed from key activity.
func DefaultPasses(cfg Config) []Pass {
	return []Pass{
		NewPass(DropConsecutiveSnapshots()),
		NewPass(MousePressReleaseToClick(cfg.PressClickGap, cfg.PressClickPixels)),
		NewPass(ClicksToMultiClick(cfg.MultiClickGap, cfg.MultiClickPixels)),
		NewPass(KeyPressReleaseToWrite(cfg.KeyWriteGap)),
		NewPass(MergeConsecutiveWrites(cfg.WriteGap)),
		NewPass(MergeConsecutiveScrolls(cfg.ScrollGap, cfg.ScrollPixels, cfg.MergeOppositeScroll)),
	}
}
