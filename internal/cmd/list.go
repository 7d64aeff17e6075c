package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"
)

func newListCommand() command {
	return command{
		name:        "list",
		description: "List the recordings in the store",
		run:         runList,
	}
}

func runList(fs *pflag.FlagSet, args []string, appCtx *AppContext, stdout io.Writer, stderr io.Writer) error {
	if appCtx == nil {
		return fmt.Errorf("application context unavailable")
	}

	s, err := openStore(appCtx)
	if err != nil {
		return err
	}
	defer s.Close()

	recs, err := s.List(context.Background())
	if err != nil {
		return fmt.Errorf("list recordings: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintln(stdout, "No recordings stored yet")
		return nil
	}

	fmt.Fprintf(stdout, "%-36s  %-20s  %-7s  %s\n", "ID", "CREATED", "EVENTS", "NAME")
	for _, rec := range recs {
		fmt.Fprintf(stdout, "%-36s  %-20s  %-7d  %s\n",
			rec.ID, rec.CreatedAt.UTC().Format(time.RFC3339), rec.EventCount, rec.Name)
	}
	return nil
}
