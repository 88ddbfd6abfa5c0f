package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/beacon/internal/collect"
	"github.com/mrz1836/beacon/internal/constants"
)

// Source type values for advisor uploads.
const (
	// SourceTypePullRequest marks results produced by a pull request run.
	SourceTypePullRequest = "pull_request"
	// SourceTypePostCommit marks results produced by a post-commit run.
	SourceTypePostCommit = "postcommit"
)

// UploadPayload is the failure dataset published to advisor instances so
// future runs can recognize already-failing signatures.
type UploadPayload struct {
	SourceType    string           `json:"source_type"`
	BaseCommitSHA string           `json:"base_commit_sha"`
	SourceID      string           `json:"source_id"`
	Platform      string           `json:"platform"`
	Failures      []collect.Record `json:"failures"`
}

// Uploader publishes failure payloads to every configured advisor instance.
// Uploads are best-effort: per-endpoint failures are logged and never fatal.
type Uploader struct {
	endpoints []string
	client    *http.Client
	logger    zerolog.Logger
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithUploadLogger sets the logger for upload operations.
func WithUploadLogger(logger zerolog.Logger) UploaderOption {
	return func(u *Uploader) {
		u.logger = logger
	}
}

// WithUploadTimeout overrides the per-request timeout.
func WithUploadTimeout(timeout time.Duration) UploaderOption {
	return func(u *Uploader) {
		u.client.Timeout = timeout
	}
}

// NewUploader creates an Uploader targeting the given endpoints.
func NewUploader(endpoints []string, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		endpoints: endpoints,
		client:    &http.Client{Timeout: constants.DefaultAdvisorTimeout},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload sends the payload to all instances concurrently. The returned count
// is the number of instances that accepted the payload.
func (u *Uploader) Upload(ctx context.Context, payload UploadPayload) int {
	body, err := json.Marshal(payload)
	if err != nil {
		u.logger.Warn().Err(err).Msg("failed to encode advisor upload payload")
		return 0
	}

	results := make([]bool, len(u.endpoints))
	g, ctx := errgroup.WithContext(ctx)
	for i, endpoint := range u.endpoints {
		g.Go(func() error {
			if err := u.uploadOne(ctx, endpoint, body); err != nil {
				u.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("advisor upload failed")
				return nil // best-effort: never abort the group
			}
			u.logger.Info().Str("endpoint", endpoint).Msg("advisor upload succeeded")
			results[i] = true
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines always return nil

	accepted := 0
	for _, ok := range results {
		if ok {
			accepted++
		}
	}
	return accepted
}

// uploadOne posts the payload to a single advisor instance.
func (u *Uploader) uploadOne(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close is best-effort

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload rejected with status %d", resp.StatusCode)
	}
	return nil
}

// PreparePayload assembles the upload payload from parsed artifacts using the
// same fallback policy as the report: test failures when any exist, otherwise
// build failures.
func PreparePayload(sourceType, baseCommit, sourceID, platformTag string, set collect.Set) UploadPayload {
	failures := set.Records
	if failures == nil {
		failures = []collect.Record{}
	}
	return UploadPayload{
		SourceType:    sourceType,
		BaseCommitSHA: baseCommit,
		SourceID:      sourceID,
		Platform:      platformTag,
		Failures:      failures,
	}
}
