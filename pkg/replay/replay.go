// Package replay turns a recorded event sequence into timed actions and
// drives them against a performer.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/offlinefirst/mimic/pkg/events"
)

// Action pairs an event with its replay timing. WaitFor is the pause before
// the action starts; Duration is how long performing it should take, which
// is non-zero for cursor moves and merged runs.
type Action struct {
	Event    events.Event
	WaitFor  time.Duration
	Duration time.Duration
}

// Actions is an ordered replay script.
type Actions []Action

// FromEvents translates a chronological recording into actions, preserving
// the recorded pacing. The gap between an event and the end of its
// predecessor becomes the action's wait. State snapshots translate into
// cursor moves that consume their wait as travel time. Mouse button events
// whose action is "click" are normalised into click events; presses and
// releases replay as they were recorded.
func FromEvents(evts events.Events) Actions {
	actions := make(Actions, 0, len(evts))
	var lastEnd time.Time
	for i, evt := range evts {
		var wait time.Duration
		if i > 0 {
			wait = evt.When().Sub(lastEnd)
			if wait < 0 {
				wait = 0
			}
		}
		lastEnd = evt.End()

		switch e := evt.(type) {
		case *events.StateSnapshot:
			actions = append(actions, Action{Event: evt, Duration: wait})
		case *events.MouseButtonEvent:
			if e.Action == events.ActionClick {
				if click, err := events.AsClick(e); err == nil {
					evt = click
				}
			}
			actions = append(actions, Action{Event: evt, WaitFor: wait})
		default:
			actions = append(actions, Action{Event: evt, WaitFor: wait, Duration: events.Duration(evt)})
		}
	}
	return actions
}

// Performer carries out a single action against the host: moving the
// cursor, clicking, scrolling, or typing. Implementations that control real
// devices live outside this module; the log performer below covers dry runs.
type Performer interface {
	Perform(ctx context.Context, action Action) error
}

// PerformerFunc adapts a function literal to the Performer interface.
type PerformerFunc func(ctx context.Context, action Action) error

// Perform calls the underlying function.
func (f PerformerFunc) Perform(ctx context.Context, action Action) error {
	return f(ctx, action)
}

// NewLogPerformer returns a performer that only narrates each action. It is
// the default for dry runs.
func NewLogPerformer(logger *slog.Logger) Performer {
	return PerformerFunc(func(ctx context.Context, action Action) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		device, kind := events.Describe(action.Event)
		attrs := []any{"device", device, "action", kind, "wait", action.WaitFor, "duration", action.Duration}
		switch e := action.Event.(type) {
		case *events.StateSnapshot:
			attrs = append(attrs, "x", e.Location.X, "y", e.Location.Y)
		case *events.ClickEvent:
			attrs = append(attrs, "button", string(e.Button), "n_clicks", e.NClicks, "x", e.Location.X, "y", e.Location.Y)
		case *events.MouseButtonEvent:
			attrs = append(attrs, "button", string(e.Button), "x", e.Location.X, "y", e.Location.Y)
		case *events.ScrollEvent:
			attrs = append(attrs, "dx", e.Scroll.DX, "dy", e.Scroll.DY)
		case *events.WriteEvent:
			attrs = append(attrs, "keys", len(e.Keys))
		case *events.KeyboardEvent:
			attrs = append(attrs, "key", string(e.Key))
		}
		logger.Info("replay action", attrs...)
		return nil
	})
}

// Options controls replay execution.
type Options struct {
	Performer Performer
	Sleeper   func(context.Context, time.Duration) error
	Logger    *slog.Logger
}

// Runner executes a replay script while honouring its pacing.
type Runner struct {
	performer Performer
	sleeper   func(context.Context, time.Duration) error
}

// NewRunner validates options and returns a runner. Without an explicit
// performer the runner narrates actions through the provided logger.
func NewRunner(opts Options) (*Runner, error) {
	performer := opts.Performer
	if performer == nil {
		if opts.Logger == nil {
			return nil, errors.New("either a performer or a logger must be provided")
		}
		performer = NewLogPerformer(opts.Logger)
	}
	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = defaultSleeper
	}
	return &Runner{performer: performer, sleeper: sleeper}, nil
}

// Run performs the actions in order, sleeping through each action's wait
// first. The first performer or context error aborts the run.
func (r *Runner) Run(ctx context.Context, actions Actions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for i, action := range actions {
		if action.WaitFor > 0 {
			if err := r.sleeper(ctx, action.WaitFor); err != nil {
				return err
			}
		}
		if err := r.performer.Perform(ctx, action); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("perform action %d: %w", i, err)
		}
	}
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
