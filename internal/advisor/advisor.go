// Package advisor talks to the external advisory service that maps known
// failure signatures to human-readable explanations.
//
// The advisor is a soft dependency: a single bounded request is made per run,
// no retries, and every failure mode (connectivity, non-success status,
// malformed body) degrades to "no explanations available" without aborting
// the report.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/beacon/internal/collect"
	"github.com/mrz1836/beacon/internal/constants"
	beaconerrors "github.com/mrz1836/beacon/internal/errors"
)

// Explanation is one advisory entry for a failure, matched to the failure by
// name. Explained=false entries carry no usable reason and are rendered as
// plain failures.
type Explanation struct {
	Name      string `json:"name"`
	Explained bool   `json:"explained"`
	Reason    string `json:"reason,omitempty"`
}

// Explainer is the capability interface for failure explanation lookups.
// Production code uses the HTTP adapter; tests use a deterministic stub.
type Explainer interface {
	// Explain returns one explanation list for the given failures, or an
	// error wrapping ErrAdvisorUnavailable when no explanations can be
	// obtained. Callers treat that error as "proceed without explanations".
	Explain(ctx context.Context, baseCommit, platformTag string, failures []collect.Record) ([]Explanation, error)
}

// explainRequest is the advisory-service query payload.
type explainRequest struct {
	BaseCommitSHA string           `json:"base_commit_sha"`
	Platform      string           `json:"platform"`
	Failures      []collect.Record `json:"failures"`
}

// HTTPExplainer implements Explainer against a fixed advisory endpoint.
type HTTPExplainer struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// Compile-time interface check.
var _ Explainer = (*HTTPExplainer)(nil)

// HTTPExplainerOption configures an HTTPExplainer.
type HTTPExplainerOption func(*HTTPExplainer)

// WithLogger sets the logger for advisor operations.
func WithLogger(logger zerolog.Logger) HTTPExplainerOption {
	return func(e *HTTPExplainer) {
		e.logger = logger
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) HTTPExplainerOption {
	return func(e *HTTPExplainer) {
		e.client.Timeout = timeout
	}
}

// NewHTTPExplainer creates an HTTP advisor client for the given endpoint.
func NewHTTPExplainer(endpoint string, opts ...HTTPExplainerOption) *HTTPExplainer {
	e := &HTTPExplainer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: constants.DefaultAdvisorTimeout},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Explain issues the single outbound advisor request for this run.
func (e *HTTPExplainer) Explain(ctx context.Context, baseCommit, platformTag string, failures []collect.Record) ([]Explanation, error) {
	payload, err := json.Marshal(explainRequest{
		BaseCommitSHA: baseCommit,
		Platform:      platformTag,
		Failures:      failures,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode advisor query: %w", beaconerrors.ErrAdvisorUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build advisor request: %w", beaconerrors.ErrAdvisorUnavailable)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug().Err(err).Str("endpoint", e.endpoint).Msg("advisor request failed")
		return nil, fmt.Errorf("advisor request failed: %w", beaconerrors.ErrAdvisorUnavailable)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close is best-effort

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Debug().Int("status", resp.StatusCode).Str("endpoint", e.endpoint).Msg("advisor returned non-success status")
		return nil, fmt.Errorf("advisor returned status %d: %w", resp.StatusCode, beaconerrors.ErrAdvisorUnavailable)
	}

	var explanations []Explanation
	if err := json.NewDecoder(resp.Body).Decode(&explanations); err != nil {
		e.logger.Debug().Err(err).Str("endpoint", e.endpoint).Msg("advisor response malformed")
		return nil, fmt.Errorf("advisor response malformed: %w", beaconerrors.ErrAdvisorUnavailable)
	}

	return explanations, nil
}
