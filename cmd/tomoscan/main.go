package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/8ryn/tomoscan/internal/cli"
	"github.com/8ryn/tomoscan/internal/display"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := cli.New()
	app.SetVersion(version, commit, date)

	if err := app.Execute(); err != nil {
		// The display tool's exit code passes through untouched so
		// wrapper scripts can tell a crashed screen from a bad flag
		var exitErr *display.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
