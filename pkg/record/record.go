// Package record collects input events and periodic state snapshots into an
// ordered recording.
package record

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/offlinefirst/mimic/pkg/events"
	"github.com/offlinefirst/mimic/pkg/simplify"
)

// Source streams raw input events. Stream blocks until the session ends,
// calling emit for every captured event in order. Returning a non-nil error
// from emit aborts the stream.
type Source interface {
	Stream(ctx context.Context, emit func(events.Event) error) error
}

// SourceFunc adapts a function literal to the Source interface.
type SourceFunc func(ctx context.Context, emit func(events.Event) error) error

// Stream calls the underlying function.
func (f SourceFunc) Stream(ctx context.Context, emit func(events.Event) error) error {
	return f(ctx, emit)
}

// SnapshotProvider supplies the screen image and cursor position behind a
// state snapshot.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (image.Image, events.Point, error)
}

// Options controls recorder behaviour.
type Options struct {
	// Source emits the raw input events. A synthetic source is used when nil.
	Source Source

	// Snapshots supplies screen state for periodic snapshots. A synthetic
	// provider is used when nil.
	Snapshots SnapshotProvider

	// SnapshotInterval is the time between state snapshots. Zero disables
	// periodic snapshots entirely.
	SnapshotInterval time.Duration

	// LiveMergers, when non-empty, are applied to each arriving event and
	// the current tail of the recording, folding rapid runs as they happen
	// instead of afterwards.
	LiveMergers []simplify.Merger

	// Control gates the event stream and the snapshot loop, allowing a
	// session to be paused, resumed, or stopped from outside.
	Control *Controller

	Clock   func() time.Time
	Sleeper func(context.Context, time.Duration) error
}

// Result reports what a recording session produced.
type Result struct {
	Events        events.Events
	RawCount      int
	SnapshotCount int
	Start         time.Time
	End           time.Time
}

// Recorder runs a capture session: one event source plus an optional
// snapshot loop feeding a shared recording.
type Recorder struct {
	source   Source
	snaps    SnapshotProvider
	interval time.Duration
	mergers  []simplify.Merger
	control  *Controller
	clock    func() time.Time
	sleeper  func(context.Context, time.Duration) error

	mu        sync.Mutex
	collected events.Events
	raw       int
	snapshots int
}

// NewRecorder validates options and constructs a recorder instance.
func NewRecorder(opts Options) (*Recorder, error) {
	if opts.SnapshotInterval < 0 {
		return nil, errors.New("snapshot interval must not be negative")
	}
	source := opts.Source
	if source == nil {
		source = defaultSource(opts.Clock)
	}
	snaps := opts.Snapshots
	if snaps == nil {
		snaps = defaultSnapshotProvider()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = defaultSleeper
	}
	return &Recorder{
		source:   source,
		snaps:    snaps,
		interval: opts.SnapshotInterval,
		mergers:  opts.LiveMergers,
		control:  opts.Control,
		clock:    clock,
		sleeper:  sleeper,
	}, nil
}

// Record captures events until the source finishes or the context ends. The
// returned events are ordered by start time.
func (r *Recorder) Record(ctx context.Context) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	r.mu.Lock()
	r.collected = nil
	r.raw = 0
	r.snapshots = 0
	r.mu.Unlock()

	start := r.clock().UTC()

	snapCtx, stopSnapshots := context.WithCancel(ctx)
	var wg sync.WaitGroup
	var snapErr error
	if r.interval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapErr = r.snapshotLoop(snapCtx)
		}()
	}

	streamErr := r.source.Stream(ctx, func(evt events.Event) error {
		if r.control != nil {
			if err := r.control.Wait(ctx); err != nil {
				return err
			}
		}
		return r.append(evt)
	})
	stopSnapshots()
	wg.Wait()

	r.mu.Lock()
	collected := make(events.Events, len(r.collected))
	copy(collected, r.collected)
	raw := r.raw
	snapshots := r.snapshots
	r.mu.Unlock()

	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].When().Before(collected[j].When())
	})

	end := start
	if n := len(collected); n > 0 {
		end = collected[n-1].End()
	}
	result := Result{
		Events:        collected,
		RawCount:      raw,
		SnapshotCount: snapshots,
		Start:         start,
		End:           end,
	}

	if streamErr != nil {
		// A cancelled or expired session keeps whatever was captured so
		// far; callers decide whether that counts as a failure.
		if errors.Is(streamErr, context.Canceled) || errors.Is(streamErr, context.DeadlineExceeded) {
			return result, streamErr
		}
		return Result{}, fmt.Errorf("stream events: %w", streamErr)
	}
	if snapErr != nil {
		return Result{}, fmt.Errorf("snapshot loop: %w", snapErr)
	}
	return result, nil
}

func (r *Recorder) snapshotLoop(ctx context.Context) error {
	for {
		if r.control != nil {
			if err := r.control.Wait(ctx); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return err
			}
		}
		if err := r.takeSnapshot(ctx); err != nil {
			return err
		}
		if err := r.sleeper(ctx, r.interval); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

func (r *Recorder) takeSnapshot(ctx context.Context) error {
	img, location, err := r.snaps.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return fmt.Errorf("capture snapshot: %w", err)
	}
	snapshot := &events.StateSnapshot{
		Timestamp:  r.clock(),
		Screenshot: events.NewScreenshot(img),
		Location:   location,
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.collected = append(r.collected, snapshot)
	r.snapshots++
	r.mu.Unlock()
	return nil
}

// append adds an event to the recording, first offering it to the live
// mergers against the current tail. The fold mirrors the offline engine:
// only the most recent event is a merge candidate, first matching merger
// wins.
func (r *Recorder) append(evt events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.raw++
	if n := len(r.collected); n > 0 {
		tail := r.collected[n-1]
		for _, merger := range r.mergers {
			if merged := merger(tail, evt); len(merged) == 1 {
				r.collected[n-1] = merged[0]
				return nil
			}
		}
	}
	r.collected = append(r.collected, evt)
	return nil
}

func defaultSleeper(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
