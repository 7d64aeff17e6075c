package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/offlinefirst/mimic/pkg/events"
)

var base = time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC)

func at(ms int) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }

func openTestStore(t *testing.T, clock func() time.Time) *Store {
	t.Helper()
	s, err := Open(Options{
		Path:  filepath.Join(t.TempDir(), "recordings.db"),
		Clock: clock,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleEvents() events.Events {
	last := at(700)
	return events.Events{
		&events.StateSnapshot{Timestamp: at(0), Screenshot: events.SavedScreenshot("shots/0001.png"), Location: events.Point{X: 3, Y: 4}},
		&events.ClickEvent{Timestamp: at(100), Button: events.ButtonLeft, NClicks: 2, Last: &last, Location: events.Point{X: 3, Y: 4}},
		&events.WriteEvent{Timestamp: at(900), Keys: []events.Key{"h", "i", events.KeyEnter}},
		&events.ScrollEvent{Timestamp: at(1500), Scroll: events.Delta{DX: 1, DY: -4}},
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Fatalf("expected error for empty database path")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t, func() time.Time { return base })
	ctx := context.Background()

	saved, err := s.Save(ctx, "morning session", sampleEvents())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "" || saved.Name != "morning session" || saved.EventCount != 4 {
		t.Fatalf("unexpected recording metadata: %+v", saved)
	}

	loaded, evts, err := s.Load(ctx, saved.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded, saved) {
		t.Fatalf("metadata changed on reload: %+v vs %+v", loaded, saved)
	}
	if !reflect.DeepEqual(evts, sampleEvents()) {
		t.Fatalf("events changed on reload:\n got %#v\nwant %#v", evts, sampleEvents())
	}
}

func TestSaveGeneratesNameWhenEmpty(t *testing.T) {
	s := openTestStore(t, func() time.Time { return base })

	saved, err := s.Save(context.Background(), "  ", nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Name != "recording-20240603-091500" {
		t.Fatalf("unexpected generated name %q", saved.Name)
	}
	if saved.EventCount != 0 {
		t.Fatalf("unexpected event count %d", saved.EventCount)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	s := openTestStore(t, clock)
	ctx := context.Background()

	older, err := s.Save(ctx, "older", nil)
	if err != nil {
		t.Fatalf("save older: %v", err)
	}
	newer, err := s.Save(ctx, "newer", nil)
	if err != nil {
		t.Fatalf("save newer: %v", err)
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recordings, got %d", len(recs))
	}
	if recs[0].ID != newer.ID || recs[1].ID != older.ID {
		t.Fatalf("unexpected order: %+v", recs)
	}
}

func TestLoadUnknownRecording(t *testing.T) {
	s := openTestStore(t, nil)

	if _, _, err := s.Load(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesRecordingAndEvents(t *testing.T) {
	s := openTestStore(t, nil)
	ctx := context.Background()

	saved, err := s.Save(ctx, "session", sampleEvents())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := s.Load(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected the recording gone, got %v", err)
	}
	if err := s.Delete(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected an empty store, got %+v", recs)
	}
}
