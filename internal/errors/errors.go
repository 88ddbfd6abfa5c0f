// Package errors provides centralized error handling for beacon.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrMissingCommitSHA indicates the base commit SHA was not provided.
	// This is fatal before any log parsing is attempted.
	ErrMissingCommitSHA = errors.New("base commit sha is required")

	// ErrMissingPRNumber indicates the pull request number was not provided.
	ErrMissingPRNumber = errors.New("pull request number is required")

	// ErrMissingToken indicates no issue-tracker authentication token was found.
	ErrMissingToken = errors.New("issue tracker token is required")

	// ErrMissingRepo indicates the target repository was not provided or is
	// not in owner/name form.
	ErrMissingRepo = errors.New("repository must be in owner/name form")

	// ErrAdvisorUnavailable indicates the advisory service could not be reached
	// or returned an unusable response. This is a soft failure: callers degrade
	// to an empty explanation list and continue.
	ErrAdvisorUnavailable = errors.New("advisor unavailable")

	// ErrGitHubOperation indicates a GitHub API operation (comment list, create
	// or update) failed. This is fatal: a report that cannot be published has
	// no value.
	ErrGitHubOperation = errors.New("github operation failed")

	// ErrGHAuthFailed indicates that GitHub authentication failed.
	ErrGHAuthFailed = errors.New("github authentication failed")

	// ErrGHRateLimited indicates that the GitHub API rate limit was exceeded.
	ErrGHRateLimited = errors.New("github api rate limited")

	// ErrCommentNotFound indicates an update was requested for a comment that
	// no longer exists.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidAdvisor indicates an invalid advisor configuration value.
	ErrConfigInvalidAdvisor = errors.New("invalid advisor configuration")

	// ErrConfigInvalidGitHub indicates an invalid GitHub configuration value.
	ErrConfigInvalidGitHub = errors.New("invalid GitHub configuration")

	// ErrConfigInvalidReport indicates an invalid report configuration value.
	ErrConfigInvalidReport = errors.New("invalid report configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInvalidExitCode indicates the build exit code argument is not a
	// valid process exit status.
	ErrInvalidExitCode = errors.New("invalid exit code")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrProjectMapInvalid indicates the project mapping file could not be
	// decoded or fails validation.
	ErrProjectMapInvalid = errors.New("invalid project mapping")

	// ErrInstructionWrite indicates the upsert instruction file could not be
	// written.
	ErrInstructionWrite = errors.New("instruction file write failed")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
