package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

func newVersionCommand() command {
	return command{
		name:        "version",
		description: "Print the CLI version information",
		skipInit:    true,
		run: func(fs *pflag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
			_, err := fmt.Fprintln(stdout, versionString())
			return err
		},
	}
}
