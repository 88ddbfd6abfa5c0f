// Package pipeline drives a single reporting run: collect failures, query
// the advisor, render the report, reconcile the status comment, and emit the
// upsert instruction.
//
// A run is one sequential control thread. Log collection always completes
// before the advisor query, which always completes before reconciliation.
// No state is revisited; a failure during lookup or emit is fatal, not
// retried.
package pipeline

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/beacon/internal/advisor"
	"github.com/mrz1836/beacon/internal/collect"
	"github.com/mrz1836/beacon/internal/config"
	"github.com/mrz1836/beacon/internal/constants"
	beaconerrors "github.com/mrz1836/beacon/internal/errors"
	"github.com/mrz1836/beacon/internal/platform"
	"github.com/mrz1836/beacon/internal/reconcile"
	"github.com/mrz1836/beacon/internal/report"
)

// Inputs are the per-run values read from the CI environment at the CLI
// boundary. Core logic receives them explicitly; no ambient lookups.
type Inputs struct {
	// ExitCode is the build process exit code.
	ExitCode int
	// LogPaths lists candidate test-result and build-log files. Absent
	// files are tolerated.
	LogPaths []string
	// BaseCommit is the base commit SHA of the change request.
	BaseCommit string
	// PRNumber is the change request number.
	PRNumber int
}

// Pipeline wires the run's collaborators together.
type Pipeline struct {
	cfg           *config.Config
	explainer     advisor.Explainer
	comments      reconcile.CommentAPI
	platformTag   string
	platformTitle string
	logger        zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExplainer injects the advisor capability. A nil explainer disables
// explanation lookup entirely.
func WithExplainer(e advisor.Explainer) Option {
	return func(p *Pipeline) {
		p.explainer = e
	}
}

// WithPlatform overrides the computed platform identifiers. Used by tests.
func WithPlatform(tag, title string) Option {
	return func(p *Pipeline) {
		p.platformTag = tag
		p.platformTitle = title
	}
}

// New creates a Pipeline. The comment API is required; the explainer is
// optional (the advisor is a soft dependency).
func New(cfg *config.Config, comments reconcile.CommentAPI, logger zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:           cfg,
		comments:      comments,
		platformTag:   platform.Tag(),
		platformTitle: platform.Title(),
		logger:        logger.With().Str("run_id", uuid.NewString()).Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate rejects runs with missing required identifiers before any parsing
// is attempted.
func (p *Pipeline) Validate(in Inputs) error {
	if in.BaseCommit == "" {
		return beaconerrors.ErrMissingCommitSHA
	}
	if in.PRNumber <= 0 {
		return beaconerrors.ErrMissingPRNumber
	}
	if p.comments == nil {
		return beaconerrors.ErrMissingToken
	}
	return nil
}

// Run executes the linear state machine for one run and returns the emitted
// upsert instruction.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (reconcile.Instruction, error) {
	if err := p.Validate(in); err != nil {
		return reconcile.Instruction{}, err
	}

	body := p.renderBody(ctx, in)

	reconciler := reconcile.NewReconciler(p.comments, p.logger)
	instruction, err := reconciler.Reconcile(ctx, in.PRNumber, p.platformTag, body)
	if err != nil {
		return reconcile.Instruction{}, err
	}

	if p.cfg.Report.InstructionFile != "" {
		if err := reconcile.WriteInstruction(p.cfg.Report.InstructionFile, instruction); err != nil {
			return reconcile.Instruction{}, err
		}
		p.logger.Debug().Str("path", p.cfg.Report.InstructionFile).Msg("wrote upsert instruction")
	}

	if p.cfg.Report.Publish {
		if err := reconciler.Publish(ctx, in.PRNumber, instruction); err != nil {
			return reconcile.Instruction{}, err
		}
	}

	return instruction, nil
}

// renderBody produces the report body. A zero exit code short-circuits to
// the success acknowledgment without parsing logs or querying the advisor.
func (p *Pipeline) renderBody(ctx context.Context, in Inputs) string {
	limit := p.sizeLimit()

	if in.ExitCode == 0 {
		return report.New(nil, report.WithSizeLimit(limit)).
			Generate(p.platformTitle, 0, collect.Artifacts{})
	}

	artifacts := collect.Load(in.LogPaths, p.logger)
	set := artifacts.Collect()
	p.logger.Info().
		Int("exit_code", in.ExitCode).
		Int("failures", len(set.Records)).
		Str("origin", set.Origin.String()).
		Msg("collected failures")

	explanations := p.explain(ctx, in.BaseCommit, set)

	return report.New(explanations, report.WithSizeLimit(limit)).
		Generate(p.platformTitle, in.ExitCode, artifacts)
}

// sizeLimit returns the effective report size limit. When the run publishes
// the comment directly, the body must also fit the issue tracker's hard
// comment limit.
func (p *Pipeline) sizeLimit() int {
	limit := p.cfg.Report.MaxBytes
	if p.cfg.Report.Publish && limit > constants.MaxCommentBytes {
		limit = constants.MaxCommentBytes
	}
	return limit
}

// explain performs the single best-effort advisor query. Unavailability is
// transparent: the report is rendered as if the advisor returned no
// explanations.
func (p *Pipeline) explain(ctx context.Context, baseCommit string, set collect.Set) []advisor.Explanation {
	if p.explainer == nil || set.Empty() {
		return nil
	}

	explanations, err := p.explainer.Explain(ctx, baseCommit, p.platformTag, set.Records)
	if err != nil {
		if stderrors.Is(err, beaconerrors.ErrAdvisorUnavailable) {
			p.logger.Warn().Err(err).Msg("advisor unavailable, proceeding without explanations")
			return nil
		}
		// Any other error from an Explainer implementation is still soft.
		p.logger.Warn().Err(err).Msg("advisor query failed, proceeding without explanations")
		return nil
	}
	return explanations
}
