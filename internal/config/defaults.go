package config

import (
	"github.com/spf13/viper"

	"github.com/mrz1836/beacon/internal/constants"
)

// setDefaults registers the built-in defaults on a viper instance.
// These are the lowest-precedence configuration source.
func setDefaults(v *viper.Viper) {
	v.SetDefault("advisor.enabled", true)
	v.SetDefault("advisor.endpoint", "")
	v.SetDefault("advisor.upload_endpoints", []string{})
	v.SetDefault("advisor.timeout", constants.DefaultAdvisorTimeout)

	v.SetDefault("github.repo", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.api_base_url", "")

	v.SetDefault("report.max_bytes", constants.MaxReportBytes)
	v.SetDefault("report.instruction_file", constants.DefaultInstructionFile)
	v.SetDefault("report.publish", false)

	v.SetDefault("projects.mapping_file", "")
}
