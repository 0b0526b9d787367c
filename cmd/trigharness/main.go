// Command trigharness runs paste and accept-trigger detectors against
// annotated fixtures.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/trigharness/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	cmd.SilenceErrors = true

	err := cmd.Execute()
	if err == nil {
		os.Exit(cli.ExitSuccess)
	}

	// JSON output already carries ExitErrors; anything else is a usage
	// error from cobra itself.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
	if cmd.PersistentFlags().Lookup("format").Value.String() != "json" {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitErr.Code)
}
