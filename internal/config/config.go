// Package config defines beacon's configuration model and loading logic.
//
// Configuration is resolved once at the CLI boundary and passed into the
// pipeline explicitly; core packages never perform ambient environment
// lookups.
package config

import "time"

// Config is the root configuration for beacon.
type Config struct {
	// Advisor configures the advisory-service client.
	Advisor AdvisorConfig `mapstructure:"advisor"`
	// GitHub configures the issue-tracker client.
	GitHub GitHubConfig `mapstructure:"github"`
	// Report configures rendering and the instruction file.
	Report ReportConfig `mapstructure:"report"`
	// Projects configures change-scope computation.
	Projects ProjectsConfig `mapstructure:"projects"`
}

// AdvisorConfig holds advisory-service settings.
type AdvisorConfig struct {
	// Enabled gates the explanation lookup. Uploads are controlled by the
	// upload endpoints list instead.
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the explanation query URL.
	Endpoint string `mapstructure:"endpoint"`
	// UploadEndpoints lists the advisor instances to publish failures to.
	UploadEndpoints []string `mapstructure:"upload_endpoints"`
	// Timeout bounds each advisor request.
	Timeout time.Duration `mapstructure:"timeout"`
}

// GitHubConfig holds issue-tracker settings.
type GitHubConfig struct {
	// Repo is the target repository in owner/name form.
	Repo string `mapstructure:"repo"`
	// Token is the API token. Resolved from the environment at load time;
	// never logged (see internal/logging).
	Token string `mapstructure:"token"`
	// APIBaseURL overrides the API endpoint (GitHub Enterprise, tests).
	APIBaseURL string `mapstructure:"api_base_url"`
}

// ReportConfig holds report rendering settings.
type ReportConfig struct {
	// MaxBytes is the rendered-report size limit before the failure
	// enumeration is dropped.
	MaxBytes int `mapstructure:"max_bytes"`
	// InstructionFile is where the upsert instruction is written.
	InstructionFile string `mapstructure:"instruction_file"`
	// Publish performs the create/update call directly instead of only
	// emitting the instruction file.
	Publish bool `mapstructure:"publish"`
}

// ProjectsConfig holds change-scope settings.
type ProjectsConfig struct {
	// MappingFile is the YAML project topology file. Empty means the
	// built-in empty mapping.
	MappingFile string `mapstructure:"mapping_file"`
}
