package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/offlinefirst/mimic/pkg/permissions"
	"github.com/offlinefirst/mimic/pkg/record"
	"github.com/offlinefirst/mimic/pkg/simplify"
)

func newRecordCommand() command {
	return command{
		name:        "record",
		description: "Capture a desk activity session",
		configure: func(fs *pflag.FlagSet) {
			fs.String("name", "", "Name for the stored recording")
			fs.Duration("duration", 0, "Stop capturing after this long (0 = until the source finishes)")
			fs.Bool("simplify", false, "Run the simplification passes before saving")
			fs.String("output", "", "Write the recording to a JSON file instead of the store")
		},
		run: runRecord,
	}
}

func runRecord(fs *pflag.FlagSet, args []string, appCtx *AppContext, stdout io.Writer, stderr io.Writer) error {
	if appCtx == nil {
		return fmt.Errorf("application context unavailable")
	}

	name, _ := fs.GetString("name")
	duration, _ := fs.GetDuration("duration")
	simplifyAfter, _ := fs.GetBool("simplify")
	output, _ := fs.GetString("output")

	probes := map[string]permissions.ProbeResult{
		"input_monitoring": permissions.ProbeInputMonitoring(nil),
		"screen_recording": permissions.ProbeScreenRecording(nil),
	}
	for surface, probe := range probes {
		if probe.Status == permissions.StatusDenied {
			return fmt.Errorf("%s permission denied: %s", surface, probe.Message)
		}
		appCtx.Logger.Debug("permission probe", "surface", surface, "status", probe.StatusString(), "message", probe.Message)
	}

	cfg := appCtx.Config
	passCfg := simplifyConfig(cfg.Simplify)

	controller := record.NewController()
	opts := record.Options{Control: controller}
	if cfg.Record.SnapshotFrequencyHz > 0 {
		opts.SnapshotInterval = time.Duration(float64(time.Second) / cfg.Record.SnapshotFrequencyHz)
	}
	if cfg.Record.LiveMerge {
		opts.LiveMergers = []simplify.Merger{
			simplify.ClicksToMultiClick(passCfg.MultiClickGap, passCfg.MultiClickPixels),
			simplify.MergeConsecutiveWrites(passCfg.WriteGap),
			simplify.MergeConsecutiveScrolls(passCfg.ScrollGap, passCfg.ScrollPixels, passCfg.MergeOppositeScroll),
		}
	}

	recorder, err := record.NewRecorder(opts)
	if err != nil {
		return fmt.Errorf("initialise recorder: %w", err)
	}

	ctx := context.Background()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	stopSignals := notifyStopSignals(controller, appCtx.Logger)
	defer stopSignals()

	appCtx.Logger.Info("recording started",
		"snapshot_interval", opts.SnapshotInterval,
		"live_merge", cfg.Record.LiveMerge,
		"duration", duration)

	res, err := recorder.Record(ctx)
	if err != nil {
		// A stop signal or an elapsed duration is the normal way a
		// session ends; everything captured so far is kept.
		timedOut := duration > 0 && errors.Is(err, context.DeadlineExceeded)
		if !timedOut && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("record session: %w", err)
		}
	}

	evts := res.Events
	if simplifyAfter {
		evts = simplify.RunSimplifiers(evts, simplify.DefaultPasses(passCfg))
		appCtx.Logger.Info("recording simplified", "before", len(res.Events), "after", len(evts))
	}

	fmt.Fprintf(stdout, "Captured %d events (%d raw, %d snapshots) between %s and %s\n",
		len(evts), res.RawCount, res.SnapshotCount,
		res.Start.Format(time.RFC3339), res.End.Format(time.RFC3339))

	if output != "" {
		if err := writeEventsFile(output, evts); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Events written to %s\n", output)
		return nil
	}

	s, err := openStore(appCtx)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Save(context.Background(), name, evts)
	if err != nil {
		return fmt.Errorf("save recording: %w", err)
	}
	fmt.Fprintf(stdout, "Saved recording %s (%q, %d events)\n", rec.ID, rec.Name, rec.EventCount)
	return nil
}

// notifyStopSignals ends the session gracefully on SIGINT or SIGTERM so the
// events captured so far still reach the output. The returned function
// removes the handler.
func notifyStopSignals(controller *record.Controller, logger *slog.Logger) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		logger.Info("stopping recording", "signal", sig.String())
		controller.Stop(nil)
	}()
	return func() {
		signal.Stop(sigCh)
		close(sigCh)
	}
}
