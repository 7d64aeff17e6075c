package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/offlinefirst/mimic/pkg/config"
	"github.com/offlinefirst/mimic/pkg/events"
	"github.com/offlinefirst/mimic/pkg/record"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestContext(t *testing.T) *AppContext {
	t.Helper()
	cfg := config.Default()
	cfg.Record.SnapshotFrequencyHz = 0
	cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "recordings.db")
	return &AppContext{Config: cfg, Logger: newTestLogger()}
}

func parseFlags(t *testing.T, cmd command, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	if cmd.configure != nil {
		cmd.configure(fs)
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func sampleEventsFile(t *testing.T) string {
	t.Helper()
	base := time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC)
	evts := events.Events{
		&events.MouseButtonEvent{Timestamp: base, Action: events.ActionPress, Button: events.ButtonLeft, Location: events.Point{X: 10, Y: 10}},
		&events.MouseButtonEvent{Timestamp: base.Add(100 * time.Millisecond), Action: events.ActionRelease, Button: events.ButtonLeft, Location: events.Point{X: 10, Y: 10}},
		&events.ScrollEvent{Timestamp: base.Add(2 * time.Second), Scroll: events.Delta{DY: -2}},
	}
	path := filepath.Join(t.TempDir(), "events.json")
	if err := writeEventsFile(path, evts); err != nil {
		t.Fatalf("write events file: %v", err)
	}
	return path
}

func TestRecordCommandWritesOutputFile(t *testing.T) {
	appCtx := newTestContext(t)
	output := filepath.Join(t.TempDir(), "session.json")
	fs := parseFlags(t, newRecordCommand(), "--output", output, "--simplify")

	var stdout bytes.Buffer
	if err := runRecord(fs, nil, appCtx, &stdout, io.Discard); err != nil {
		t.Fatalf("runRecord returned error: %v", err)
	}

	if !strings.Contains(stdout.String(), "Captured") {
		t.Fatalf("expected capture summary, got %q", stdout.String())
	}
	evts, err := readEventsFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(evts) == 0 {
		t.Fatalf("expected simplified events in the output file")
	}
}

func TestRecordCommandSavesToStore(t *testing.T) {
	appCtx := newTestContext(t)
	fs := parseFlags(t, newRecordCommand(), "--name", "smoke session")

	var stdout bytes.Buffer
	if err := runRecord(fs, nil, appCtx, &stdout, io.Discard); err != nil {
		t.Fatalf("runRecord returned error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Saved recording") {
		t.Fatalf("expected save confirmation, got %q", stdout.String())
	}

	var listOut bytes.Buffer
	listFS := parseFlags(t, newListCommand())
	if err := runList(listFS, nil, appCtx, &listOut, io.Discard); err != nil {
		t.Fatalf("runList returned error: %v", err)
	}
	if !strings.Contains(listOut.String(), "smoke session") {
		t.Fatalf("expected the recording listed, got %q", listOut.String())
	}
}

func TestRecordCommandStopsOnInterrupt(t *testing.T) {
	controller := record.NewController()
	cleanup := notifyStopSignals(controller, newTestLogger())
	defer cleanup()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("send interrupt: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for controller.State() != "stopping" {
		select {
		case <-deadline:
			t.Fatalf("controller still in state %q after interrupt", controller.State())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSimplifyCommandReportsPassReductions(t *testing.T) {
	appCtx := newTestContext(t)
	input := sampleEventsFile(t)
	output := filepath.Join(t.TempDir(), "simplified.json")
	fs := parseFlags(t, newSimplifyCommand(), "--input", input, "--output", output)

	var stdout bytes.Buffer
	if err := runSimplify(fs, nil, appCtx, &stdout, io.Discard); err != nil {
		t.Fatalf("runSimplify returned error: %v", err)
	}

	if !strings.Contains(stdout.String(), "press-release-to-click") {
		t.Fatalf("expected per-pass report, got %q", stdout.String())
	}
	evts, err := readEventsFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(evts) != 2 {
		t.Fatalf("expected click plus scroll after simplification, got %#v", evts)
	}
	if _, ok := evts[0].(*events.ClickEvent); !ok {
		t.Fatalf("expected the press/release pair folded into a click, got %T", evts[0])
	}
}

func TestSimplifyCommandRequiresInput(t *testing.T) {
	appCtx := newTestContext(t)
	fs := parseFlags(t, newSimplifyCommand())

	err := runSimplify(fs, nil, appCtx, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "--input or --id") {
		t.Fatalf("expected a missing-input error, got %v", err)
	}
}

func TestReplayCommandDryRun(t *testing.T) {
	appCtx := newTestContext(t)
	input := sampleEventsFile(t)
	fs := parseFlags(t, newReplayCommand(), "--input", input, "--skip-waits")

	var stdout bytes.Buffer
	if err := runReplay(fs, nil, appCtx, &stdout, io.Discard); err != nil {
		t.Fatalf("runReplay returned error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Replay finished (3 actions)") {
		t.Fatalf("expected replay summary, got %q", stdout.String())
	}
}

func TestVersionStringIncludesRuntime(t *testing.T) {
	origVersion := runtimeVersion
	origGOOS := runtimeGOOS
	runtimeVersion = func() string { return "1.23.0" }
	runtimeGOOS = func() string { return "linux" }
	defer func() {
		runtimeVersion = origVersion
		runtimeGOOS = origGOOS
	}()

	got := versionString()
	if !strings.Contains(got, "go1.23.0/linux") {
		t.Fatalf("unexpected version string %q", got)
	}
}

func TestSimplifyConfigConvertsSeconds(t *testing.T) {
	cfg := config.Default().Simplify
	converted := simplifyConfig(cfg)

	if converted.PressClickGap != 200*time.Millisecond {
		t.Fatalf("unexpected press/click gap %v", converted.PressClickGap)
	}
	if converted.ScrollGap != 3*time.Second {
		t.Fatalf("unexpected scroll gap %v", converted.ScrollGap)
	}
	if converted.MultiClickPixels != 5 {
		t.Fatalf("unexpected multi-click pixels %v", converted.MultiClickPixels)
	}
}
