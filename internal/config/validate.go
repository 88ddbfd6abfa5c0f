package config

import (
	"fmt"
	"strings"

	"github.com/mrz1836/beacon/internal/errors"
)

// Validate checks a loaded configuration for structurally invalid values.
// Required run inputs (repo, token, commit, PR number) are validated at
// pipeline start instead, since config alone cannot know which command runs.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if cfg.Advisor.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", errors.ErrConfigInvalidAdvisor)
	}
	for _, endpoint := range cfg.Advisor.UploadEndpoints {
		if strings.TrimSpace(endpoint) == "" {
			return fmt.Errorf("%w: empty upload endpoint", errors.ErrConfigInvalidAdvisor)
		}
	}

	if cfg.GitHub.Repo != "" && !isRepoRef(cfg.GitHub.Repo) {
		return fmt.Errorf("%w: repo %q must be owner/name", errors.ErrConfigInvalidGitHub, cfg.GitHub.Repo)
	}

	if cfg.Report.MaxBytes <= 0 {
		return fmt.Errorf("%w: max_bytes must be positive", errors.ErrConfigInvalidReport)
	}
	if cfg.Report.InstructionFile == "" {
		return fmt.Errorf("%w: instruction_file must not be empty", errors.ErrConfigInvalidReport)
	}

	return nil
}

// isRepoRef reports whether s is a two-segment owner/name reference.
func isRepoRef(s string) bool {
	owner, name, ok := strings.Cut(s, "/")
	return ok && owner != "" && name != "" && !strings.Contains(name, "/")
}
