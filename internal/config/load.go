package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/mrz1836/beacon/internal/constants"
	"github.com/mrz1836/beacon/internal/errors"
)

// newViperInstance creates a new Viper instance with standard beacon
// configuration: defaults, BEACON_ env prefix, key replacer and the
// GITHUB_TOKEN fallback binding.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("BEACON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The conventional CI token variable works without the prefix.
	_ = v.BindEnv("github.token", "BEACON_GITHUB_TOKEN", constants.EnvGitHubToken) //nolint:errcheck // key is non-empty
	return v
}

// viperDecoderOption enables duration-string decoding for timeout fields.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// isConfigNotFoundError returns true if the error is a viper config file not
// found error. Missing config files are expected in many scenarios.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// GlobalConfigPath returns the path of the user-wide config file.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, constants.BeaconHome, constants.ConfigFileName)
}

// ProjectConfigPath returns the path of the per-project config file relative
// to the current working directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.BeaconHome, constants.ConfigFileName)
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (BEACON_* prefix, plus GITHUB_TOKEN)
//  2. Project config (.beacon/config.yaml)
//  3. Global config (~/.beacon/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not an error. The context parameter is accepted
// for API consistency; config reads are fast local I/O.
func Load(ctx context.Context) (*Config, error) {
	return LoadFromPaths(ctx, ProjectConfigPath(), GlobalConfigPath())
}

// LoadFromPaths loads configuration from explicit file paths. Used by Load
// and directly by tests.
func LoadFromPaths(_ context.Context, projectPath, globalPath string) (*Config, error) {
	v := newViperInstance()

	if globalPath != "" {
		if err := mergeFile(v, globalPath); err != nil {
			return nil, err
		}
	}
	if projectPath != "" {
		if err := mergeFile(v, projectPath); err != nil {
			return nil, err
		}
	}

	return unmarshalAndValidate(v)
}

// mergeFile merges one YAML config file into the viper instance, tolerating
// its absence.
func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to stat config file %s", path)
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		if isConfigNotFoundError(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	return nil
}
