package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/offlinefirst/mimic/pkg/simplify"
)

func newSimplifyCommand() command {
	return command{
		name:        "simplify",
		description: "Run the simplification passes over a recording",
		configure: func(fs *pflag.FlagSet) {
			fs.String("input", "", "JSON events file to simplify")
			fs.String("id", "", "Recording id in the store to simplify")
			fs.String("output", "", "Write the simplified events to this JSON file")
		},
		run: runSimplify,
	}
}

var passNames = []string{
	"drop-snapshots",
	"press-release-to-click",
	"multi-click",
	"key-to-write",
	"merge-writes",
	"merge-scrolls",
}

func runSimplify(fs *pflag.FlagSet, args []string, appCtx *AppContext, stdout io.Writer, stderr io.Writer) error {
	if appCtx == nil {
		return fmt.Errorf("application context unavailable")
	}

	input, _ := fs.GetString("input")
	id, _ := fs.GetString("id")
	output, _ := fs.GetString("output")

	evts, source, err := loadEvents(appCtx, input, id)
	if err != nil {
		return err
	}

	passes := simplify.DefaultPasses(simplifyConfig(appCtx.Config.Simplify))
	fmt.Fprintf(stdout, "Simplifying %q (%d events)\n", source, len(evts))

	for i, pass := range passes {
		before := len(evts)
		evts = pass(evts)
		name := fmt.Sprintf("pass %d", i+1)
		if i < len(passNames) {
			name = passNames[i]
		}
		fmt.Fprintf(stdout, "  %-24s %4d -> %4d\n", name, before, len(evts))
	}
	fmt.Fprintf(stdout, "Simplified to %d events\n", len(evts))

	if output == "" {
		return nil
	}
	if err := writeEventsFile(output, evts); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Events written to %s\n", output)
	return nil
}
