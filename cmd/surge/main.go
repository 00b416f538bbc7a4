// Package main is the entry point for the surge CLI.
//
// surge provisions compute clusters from declarative cluster files against
// a pluggable cloud driver. For detailed usage information, run:
//
//	surge --help
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/surgecloud/surge/internal/cli"
	"github.com/surgecloud/surge/internal/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := cli.Root().Execute(); err != nil {
		var exitErr *commands.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
