package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/offlinefirst/mimic/pkg/events"
	"github.com/offlinefirst/mimic/pkg/store"
)

func writeEventsFile(path string, evts events.Events) error {
	data, err := json.MarshalIndent(evts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write events file: %w", err)
	}
	return nil
}

func readEventsFile(path string) (events.Events, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events file: %w", err)
	}
	var evts events.Events
	if err := json.Unmarshal(data, &evts); err != nil {
		return nil, fmt.Errorf("parse events file %q: %w", path, err)
	}
	return evts, nil
}

func openStore(ctx *AppContext) (*store.Store, error) {
	s, err := store.Open(store.Options{Path: ctx.Config.Storage.DatabasePath})
	if err != nil {
		return nil, fmt.Errorf("open recording store: %w", err)
	}
	return s, nil
}

// loadEvents resolves the input flags shared by simplify and replay: a JSON
// file takes precedence, otherwise the id is looked up in the store.
func loadEvents(appCtx *AppContext, input, id string) (events.Events, string, error) {
	if input != "" {
		evts, err := readEventsFile(input)
		return evts, input, err
	}
	if id == "" {
		return nil, "", fmt.Errorf("either --input or --id must be provided")
	}
	s, err := openStore(appCtx)
	if err != nil {
		return nil, "", err
	}
	defer s.Close()
	rec, evts, err := s.Load(context.Background(), id)
	if err != nil {
		return nil, "", err
	}
	return evts, rec.Name, nil
}
