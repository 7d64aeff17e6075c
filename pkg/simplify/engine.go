package simplify

import "github.com/offlinefirst/mimic/pkg/events"

// MergeConsecutive folds a sequence left to right using a prioritized list
// of mergers. Each incoming event is compared against the most recently
// accumulated event only; the first merger that reports a merge wins and a
// freshly merged event remains eligible to merge with the next input. A
// merge decision is never revisited, so one pass is O(n).
//
// Sequences of fewer than two events are returned unchanged without
// consulting any merger.
func MergeConsecutive(evts events.Events, mergers []Merger) events.Events {
	if len(evts) < 2 {
		return evts
	}

	out := make(events.Events, 1, len(evts))
	out[0] = evts[0]
	for _, evt := range evts[1:] {
		merged := false
		for _, merge := range mergers {
			result := merge(out[len(out)-1], evt)
			if len(result) == 1 {
				out[len(out)-1] = result[0]
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, evt)
		}
	}
	return out
}
