// Package constants provides centralized constant values used throughout beacon.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory and file names used by beacon for configuration and logs.
const (
	// BeaconHome is the hidden directory name where beacon stores its data.
	// This directory is created in the user's home directory.
	BeaconHome = ".beacon"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// LogFileName is the rotating log file name.
	LogFileName = "beacon.log"

	// ConfigFileName is the YAML configuration file name.
	ConfigFileName = "config.yaml"

	// DefaultInstructionFile is the default path of the serialized upsert
	// instruction consumed by the out-of-band publishing step.
	DefaultInstructionFile = "comments.json"
)

// Advisor service defaults.
const (
	// DefaultAdvisorTimeout bounds the single advisor request per run.
	// The advisor is best-effort enrichment; a slow advisor must not
	// stall the report.
	DefaultAdvisorTimeout = 5 * time.Second
)

// Log parsing limits.
const (
	// NinjaLogSizeThreshold caps the number of lines captured for a single
	// failed build action. Matches the delimiting contract of ninja's output.
	NinjaLogSizeThreshold = 500
)

// Report rendering limits.
const (
	// MaxReportBytes is the size limit for a rendered report. Reports larger
	// than this are re-rendered without the failure enumeration.
	MaxReportBytes = 1024 * 1024

	// MaxCommentBytes is GitHub's hard limit for a comment body.
	MaxCommentBytes = 65536

	// CommentsPerPage is the page size used when listing issue comments.
	CommentsPerPage = 100
)

// Environment variable names consumed at the CLI boundary. Core packages
// never read these directly; values are passed in via explicit configuration.
const (
	// EnvGitHubToken is the env var holding the issue-tracker API token.
	EnvGitHubToken = "GITHUB_TOKEN" //nolint:gosec // env var name, not a credential

	// EnvGitHubActions is set by GitHub Actions; selects the pull_request
	// source type for advisor uploads.
	EnvGitHubActions = "GITHUB_ACTIONS"
)
