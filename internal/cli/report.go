package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/beacon/internal/advisor"
	"github.com/mrz1836/beacon/internal/config"
	beaconerrors "github.com/mrz1836/beacon/internal/errors"
	"github.com/mrz1836/beacon/internal/github"
	"github.com/mrz1836/beacon/internal/pipeline"
	"github.com/mrz1836/beacon/internal/reconcile"
)

// reportFlags holds the report command's flag values.
type reportFlags struct {
	exitCode        int
	commit          string
	prNumber        int
	repo            string
	advisorURL      string
	instructionFile string
	publish         bool
}

// AddReportCommand registers the report command on the root command.
func AddReportCommand(root *cobra.Command, global *GlobalFlags) {
	flags := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "report [log files...]",
		Short: "Render the failure report and reconcile the status comment",
		Long: `report parses the given test-result and build-log files, renders the
platform status report for the build's exit code, finds or creates the
platform's status comment on the pull request, and writes the upsert
instruction file. Missing log files are tolerated; runs that failed before
producing any logs still publish a report.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, flags, global)
		},
	}

	cmd.Flags().IntVar(&flags.exitCode, "exit-code", 0, "the build's exit code (required)")
	cmd.Flags().StringVar(&flags.commit, "commit", "", "base commit sha of the change request (required)")
	cmd.Flags().IntVar(&flags.prNumber, "pr", 0, "pull request number (required)")
	cmd.Flags().StringVar(&flags.repo, "repo", "", "target repository in owner/name form")
	cmd.Flags().StringVar(&flags.advisorURL, "advisor-url", "", "advisory service endpoint override")
	cmd.Flags().StringVar(&flags.instructionFile, "instruction-file", "", "upsert instruction output path override")
	cmd.Flags().BoolVar(&flags.publish, "publish", false, "perform the create/update call directly")
	_ = cmd.MarkFlagRequired("exit-code") //nolint:errcheck // flag exists

	root.AddCommand(cmd)
}

// runReport executes one reporting run.
func runReport(cmd *cobra.Command, args []string, flags *reportFlags, global *GlobalFlags) error {
	ctx := cmd.Context()
	logger := GetLogger()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	applyReportOverrides(cfg, flags)

	// Required identifiers are validated before any parsing is attempted.
	if flags.exitCode < 0 || flags.exitCode > 255 {
		return beaconerrors.NewExitCode2Error(
			fmt.Errorf("%w: %d is not a process exit status", beaconerrors.ErrInvalidExitCode, flags.exitCode))
	}
	if flags.commit == "" {
		return beaconerrors.NewExitCode2Error(beaconerrors.ErrMissingCommitSHA)
	}
	if flags.prNumber <= 0 {
		return beaconerrors.NewExitCode2Error(beaconerrors.ErrMissingPRNumber)
	}
	if cfg.GitHub.Repo == "" {
		return beaconerrors.NewExitCode2Error(beaconerrors.ErrMissingRepo)
	}
	if cfg.GitHub.Token == "" {
		return beaconerrors.NewExitCode2Error(beaconerrors.ErrMissingToken)
	}

	comments, err := newCommentClient(cfg, logger)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{}
	if explainer := newExplainer(cfg, logger); explainer != nil {
		opts = append(opts, pipeline.WithExplainer(explainer))
	}

	instruction, err := pipeline.New(cfg, comments, logger, opts...).Run(ctx, pipeline.Inputs{
		ExitCode:   flags.exitCode,
		LogPaths:   args,
		BaseCommit: flags.commit,
		PRNumber:   flags.prNumber,
	})
	if err != nil {
		return err
	}

	return printInstruction(cmd, global.Output, instruction)
}

// applyReportOverrides layers CLI flag values over the loaded configuration.
func applyReportOverrides(cfg *config.Config, flags *reportFlags) {
	if flags.repo != "" {
		cfg.GitHub.Repo = flags.repo
	}
	if flags.advisorURL != "" {
		cfg.Advisor.Endpoint = flags.advisorURL
	}
	if flags.instructionFile != "" {
		cfg.Report.InstructionFile = flags.instructionFile
	}
	if flags.publish {
		cfg.Report.Publish = true
	}
}

// newCommentClient builds the GitHub comment client from configuration.
func newCommentClient(cfg *config.Config, logger zerolog.Logger) (reconcile.CommentAPI, error) {
	clientOpts := []github.ClientOption{github.WithClientLogger(logger)}
	if cfg.GitHub.APIBaseURL != "" {
		clientOpts = append(clientOpts, github.WithBaseURL(cfg.GitHub.APIBaseURL))
	}
	return github.NewClient(cfg.GitHub.Repo, cfg.GitHub.Token, clientOpts...)
}

// newExplainer builds the advisor client, or nil when disabled/unconfigured.
func newExplainer(cfg *config.Config, logger zerolog.Logger) advisor.Explainer {
	if !cfg.Advisor.Enabled || cfg.Advisor.Endpoint == "" {
		return nil
	}
	return advisor.NewHTTPExplainer(cfg.Advisor.Endpoint,
		advisor.WithLogger(logger),
		advisor.WithTimeout(cfg.Advisor.Timeout),
	)
}

// printInstruction writes the run result to stdout in the selected format.
func printInstruction(cmd *cobra.Command, format string, instruction reconcile.Instruction) error {
	if format == OutputJSON {
		data, err := json.MarshalIndent(instruction, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	if instruction.ID != nil {
		cmd.Println(fmt.Sprintf("updating comment %d", *instruction.ID))
	} else {
		cmd.Println("creating new comment")
	}
	cmd.Println(instruction.Body)
	return nil
}
