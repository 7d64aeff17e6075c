// Package events defines the timestamped input-device event model shared by
// the recorder, the simplification pipeline, and replay: state snapshots,
// mouse button activity, clicks, scrolls, key presses, and aggregated writes,
// together with their JSON wire encoding.
package events
