package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/offlinefirst/mimic/pkg/permissions"
	"github.com/offlinefirst/mimic/pkg/replay"
)

func newReplayCommand() command {
	return command{
		name:        "replay",
		description: "Replay a recording against the dry-run performer",
		configure: func(fs *pflag.FlagSet) {
			fs.String("input", "", "JSON events file to replay")
			fs.String("id", "", "Recording id in the store to replay")
			fs.Bool("skip-waits", false, "Perform actions back to back, ignoring recorded pacing")
		},
		run: runReplay,
	}
}

func runReplay(fs *pflag.FlagSet, args []string, appCtx *AppContext, stdout io.Writer, stderr io.Writer) error {
	if appCtx == nil {
		return fmt.Errorf("application context unavailable")
	}

	input, _ := fs.GetString("input")
	id, _ := fs.GetString("id")
	skipWaits, _ := fs.GetBool("skip-waits")

	evts, source, err := loadEvents(appCtx, input, id)
	if err != nil {
		return err
	}

	// Replay runs against the logging performer, but surface the control
	// permission state so a future device performer is no surprise.
	if probe := permissions.ProbeControl(nil); probe.Status != permissions.StatusGranted {
		appCtx.Logger.Debug("device control not authorised; replay stays a dry run",
			"status", probe.StatusString(), "message", probe.Message)
	}

	actions := replay.FromEvents(evts)
	var total time.Duration
	for _, action := range actions {
		total += action.WaitFor + action.Duration
	}
	fmt.Fprintf(stdout, "Replaying %q: %d actions over %s\n", source, len(actions), total)

	opts := replay.Options{Logger: appCtx.Logger}
	if skipWaits {
		opts.Sleeper = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	}
	runner, err := replay.NewRunner(opts)
	if err != nil {
		return fmt.Errorf("initialise replay runner: %w", err)
	}

	if err := runner.Run(context.Background(), actions); err != nil {
		return fmt.Errorf("replay recording: %w", err)
	}
	fmt.Fprintf(stdout, "Replay finished (%d actions)\n", len(actions))
	return nil
}
