package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/beacon/internal/errors"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
// Access is protected by globalLoggerMu for thread safety.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// This function MUST only be called after the root command's
// PersistentPreRunE has executed; before that it returns a zero-value
// logger that discards all output. Safe for concurrent use.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates and returns the root command for the beacon CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "beacon",
		Short: "beacon - CI failure reporting for pull requests",
		Long: `beacon aggregates build and test failures from a CI run, enriches them with
advisory-service explanations when available, and publishes exactly one
up-to-date status comment per build platform on the triggering pull request.

Subcommands:
  • report    render the failure report and reconcile the status comment
  • upload    publish failure signatures to the advisor instances
  • projects  compute the projects affected by a set of modified files`,
		Version: formatVersion(info),
		// Run displays help when the root command is invoked without
		// subcommands. This ensures PersistentPreRunE runs for flag validation.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			// Read the resolved values back so BEACON_* environment
			// overrides take effect when the flag was not set explicitly.
			flags.Output = v.GetString("output")
			flags.Verbose = v.GetBool("verbose")
			flags.Quiet = v.GetBool("quiet")

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			globalLoggerMu.Lock()
			globalLogger = InitLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Unlock()

			return nil
		},
		// SilenceUsage prevents printing usage on error
		// (we handle our own error messages)
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, flags)

	AddReportCommand(cmd, flags)
	AddUploadCommand(cmd)
	AddProjectsCommand(cmd)

	return cmd
}

// formatVersion renders the --version output.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		return "dev"
	}
	return fmt.Sprintf("%s (commit %s, built %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the given build info and returns the
// process exit code.
func Execute(ctx context.Context, info BuildInfo) int {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, info)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.IsExitCode2Error(err) {
			return ExitInvalidInput
		}
		return ExitError
	}
	return ExitSuccess
}
