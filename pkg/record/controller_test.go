package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/offlinefirst/mimic/pkg/events"
)

func TestControllerPauseResume(t *testing.T) {
	controller := NewController()

	controller.Pause()
	done := make(chan error, 1)
	go func() {
		done <- controller.Wait(context.Background())
	}()

	select {
	case <-time.After(100 * time.Millisecond):
	case err := <-done:
		t.Fatalf("expected wait to block, got %v", err)
	}

	controller.Resume()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error after resume, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("controller wait did not resume")
	}
}

func TestControllerResumeWakesAllWaiters(t *testing.T) {
	controller := NewController()
	controller.Pause()

	// The recorder has two independent waiters while paused, the event
	// stream and the snapshot loop. A single Resume must release both.
	const waiters = 2
	done := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			done <- controller.Wait(context.Background())
		}()
	}

	select {
	case err := <-done:
		t.Fatalf("expected waiters to block while paused, got %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	controller.Resume()

	for i := 0; i < waiters; i++ {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("waiter %d: expected nil error after resume, got %v", i, err)
			}
		case <-time.After(time.Second):
			t.Fatalf("waiter %d still blocked after resume", i)
		}
	}
}

func TestControllerStopPropagatesError(t *testing.T) {
	controller := NewController()
	controller.Pause()
	customErr := errors.New("boom")

	done := make(chan error, 1)
	go func() {
		done <- controller.Wait(context.Background())
	}()

	controller.Stop(customErr)

	select {
	case err := <-done:
		if !errors.Is(err, customErr) {
			t.Fatalf("expected custom error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("controller wait did not unblock after stop")
	}
}

func TestControllerWaitRespectsContextCancellation(t *testing.T) {
	controller := NewController()
	controller.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- controller.Wait(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context cancellation, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("controller wait did not exit on cancellation")
	}
}

func TestRecorderStopsWhenControllerStops(t *testing.T) {
	controller := NewController()
	failure := errors.New("session aborted")

	emitted := 0
	source := SourceFunc(func(ctx context.Context, emit func(events.Event) error) error {
		for i := 0; ; i++ {
			if err := emit(&events.ScrollEvent{Timestamp: at(i * 100), Scroll: events.Delta{DY: 1}}); err != nil {
				return err
			}
			emitted++
			if emitted == 2 {
				controller.Stop(failure)
			}
		}
	})

	rec, err := NewRecorder(Options{Source: source, Control: controller})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	if _, err := rec.Record(context.Background()); !errors.Is(err, failure) {
		t.Fatalf("expected the controller's stop error, got %v", err)
	}
}

func TestRecorderKeepsEventsOnGracefulStop(t *testing.T) {
	controller := NewController()

	emitted := 0
	source := SourceFunc(func(ctx context.Context, emit func(events.Event) error) error {
		for i := 0; ; i++ {
			if err := emit(&events.ScrollEvent{Timestamp: at(i * 100), Scroll: events.Delta{DY: 1}}); err != nil {
				return err
			}
			emitted++
			if emitted == 2 {
				controller.Stop(nil)
			}
		}
	})

	rec, err := NewRecorder(Options{Source: source, Control: controller})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	res, err := rec.Record(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation after a graceful stop, got %v", err)
	}
	if len(res.Events) != 2 {
		t.Fatalf("expected the events captured before the stop, got %d", len(res.Events))
	}
}
