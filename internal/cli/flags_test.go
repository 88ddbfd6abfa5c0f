package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidOutputFormat(t *testing.T) {
	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
	assert.False(t, IsValidOutputFormat("TEXT"))
}

func TestValidOutputFormats(t *testing.T) {
	assert.Equal(t, []string{OutputText, OutputJSON}, ValidOutputFormats())
}

func TestAddGlobalFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	flags := &GlobalFlags{}
	AddGlobalFlags(cmd, flags)

	require.NotNil(t, cmd.PersistentFlags().Lookup("output"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("quiet"))

	assert.Equal(t, OutputText, cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestGlobalFlags_VerboseQuietMutuallyExclusive(t *testing.T) {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	flags := &GlobalFlags{}
	AddGlobalFlags(cmd, flags)

	cmd.SetArgs([]string{"--verbose", "--quiet"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestBindGlobalFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	flags := &GlobalFlags{}
	AddGlobalFlags(cmd, flags)

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))
	assert.Equal(t, OutputText, v.GetString("output"))
	assert.False(t, v.GetBool("verbose"))
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "dev", formatVersion(BuildInfo{}))
	assert.Equal(t, "1.2.3 (commit abc123, built 2026-01-02)",
		formatVersion(BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-02"}))
}
