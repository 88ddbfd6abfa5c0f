// Package main provides the entry point for the beacon CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/beacon/internal/cli"
)

// Build information, set at build time via ldflags.
var (
	version = "" //nolint:gochecknoglobals // set via ldflags
	commit  = "" //nolint:gochecknoglobals // set via ldflags
	date    = "" //nolint:gochecknoglobals // set via ldflags
)

func main() {
	ctx := context.Background()
	os.Exit(cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}))
}
