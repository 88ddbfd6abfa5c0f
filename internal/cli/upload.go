package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/beacon/internal/advisor"
	"github.com/mrz1836/beacon/internal/collect"
	"github.com/mrz1836/beacon/internal/config"
	"github.com/mrz1836/beacon/internal/constants"
	beaconerrors "github.com/mrz1836/beacon/internal/errors"
	"github.com/mrz1836/beacon/internal/platform"
)

// uploadFlags holds the upload command's flag values.
type uploadFlags struct {
	commit    string
	sourceID  string
	endpoints []string
}

// AddUploadCommand registers the upload command on the root command.
func AddUploadCommand(root *cobra.Command) {
	flags := &uploadFlags{}

	cmd := &cobra.Command{
		Use:   "upload [log files...]",
		Short: "Publish failure signatures to the advisor instances",
		Long: `upload extracts the run's failures from the given log files using the same
fallback policy as the report (test failures supersede build failures) and
posts them to every configured advisor instance. Uploads are best-effort:
unreachable instances are logged and skipped, and the command always exits
successfully once the payload is prepared.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.commit, "commit", "", "base commit sha of the run (required)")
	cmd.Flags().StringVar(&flags.sourceID, "source-id", "", "workflow run identifier (required)")
	cmd.Flags().StringSliceVar(&flags.endpoints, "endpoints", nil, "advisor instance URLs (overrides config)")

	root.AddCommand(cmd)
}

// runUpload executes one advisor upload.
func runUpload(cmd *cobra.Command, args []string, flags *uploadFlags) error {
	ctx := cmd.Context()
	logger := GetLogger()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	endpoints := cfg.Advisor.UploadEndpoints
	if len(flags.endpoints) > 0 {
		endpoints = flags.endpoints
	}

	if flags.commit == "" {
		return beaconerrors.NewExitCode2Error(beaconerrors.ErrMissingCommitSHA)
	}
	if flags.sourceID == "" {
		return beaconerrors.NewExitCode2Error(beaconerrors.ErrEmptyValue)
	}
	if len(endpoints) == 0 {
		logger.Info().Msg("no advisor endpoints configured, nothing to upload")
		return nil
	}

	sourceType := advisor.SourceTypePostCommit
	if os.Getenv(constants.EnvGitHubActions) != "" {
		sourceType = advisor.SourceTypePullRequest
	}

	set := collect.Collect(args, logger)
	payload := advisor.PreparePayload(sourceType, flags.commit, flags.sourceID, platform.Tag(), set)

	uploader := advisor.NewUploader(endpoints,
		advisor.WithUploadLogger(logger),
		advisor.WithUploadTimeout(cfg.Advisor.Timeout),
	)
	accepted := uploader.Upload(ctx, payload)
	logger.Info().
		Int("accepted", accepted).
		Int("endpoints", len(endpoints)).
		Int("failures", len(payload.Failures)).
		Msg("advisor upload finished")

	return nil
}
