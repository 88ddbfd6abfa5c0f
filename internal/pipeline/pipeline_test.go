package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/beacon/internal/advisor"
	"github.com/mrz1836/beacon/internal/collect"
	"github.com/mrz1836/beacon/internal/config"
	"github.com/mrz1836/beacon/internal/constants"
	beaconerrors "github.com/mrz1836/beacon/internal/errors"
	"github.com/mrz1836/beacon/internal/reconcile"
	"github.com/mrz1836/beacon/internal/report"
	"github.com/mrz1836/beacon/internal/testutil"
)

const junitOneFailure = `<testsuite name="Flang" tests="2" failures="1">
  <testcase classname="Flang/Unit" name="testA"><failure>assert x == 1</failure></testcase>
  <testcase classname="Flang/Unit" name="test_ok"/>
</testsuite>`

// fakeCommentAPI is the in-memory issue tracker used by pipeline tests.
type fakeCommentAPI struct {
	comments    []reconcile.Comment
	nextID      int64
	listErr     error
	createCalls int
	updateCalls int
}

func (f *fakeCommentAPI) ListComments(context.Context, int) ([]reconcile.Comment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]reconcile.Comment, len(f.comments))
	copy(out, f.comments)
	return out, nil
}

func (f *fakeCommentAPI) CreateComment(_ context.Context, _ int, body string) (int64, error) {
	f.createCalls++
	f.nextID++
	f.comments = append(f.comments, reconcile.Comment{ID: f.nextID, Body: body})
	return f.nextID, nil
}

func (f *fakeCommentAPI) UpdateComment(_ context.Context, commentID int64, body string) error {
	f.updateCalls++
	for i := range f.comments {
		if f.comments[i].ID == commentID {
			f.comments[i].Body = body
			return nil
		}
	}
	return testutil.ErrMockNotFound
}

// stubExplainer returns canned explanations and records whether it was called.
type stubExplainer struct {
	explanations []advisor.Explanation
	err          error
	calls        int
}

func (s *stubExplainer) Explain(context.Context, string, string, []collect.Record) ([]advisor.Explanation, error) {
	s.calls++
	return s.explanations, s.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Advisor: config.AdvisorConfig{Enabled: true},
		GitHub:  config.GitHubConfig{Repo: "llvm/llvm-project", Token: "tok"},
		Report: config.ReportConfig{
			MaxBytes:        1 << 20,
			InstructionFile: filepath.Join(t.TempDir(), "comments.json"),
			Publish:         true,
		},
	}
}

func testInputs(paths ...string) Inputs {
	return Inputs{ExitCode: 1, LogPaths: paths, BaseCommit: "abc123", PRNumber: 42}
}

func writeJUnit(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.xml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func newTestPipeline(cfg *config.Config, api reconcile.CommentAPI, opts ...Option) *Pipeline {
	opts = append([]Option{WithPlatform("linux-amd64", ":penguin: Linux x64 Test Results")}, opts...)
	return New(cfg, api, zerolog.Nop(), opts...)
}

func TestValidate(t *testing.T) {
	p := newTestPipeline(testConfig(t), &fakeCommentAPI{})

	tests := []struct {
		name     string
		inputs   Inputs
		expected error
	}{
		{"missing commit", Inputs{PRNumber: 42}, beaconerrors.ErrMissingCommitSHA},
		{"missing pr number", Inputs{BaseCommit: "abc"}, beaconerrors.ErrMissingPRNumber},
		{"negative pr number", Inputs{BaseCommit: "abc", PRNumber: -1}, beaconerrors.ErrMissingPRNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, p.Validate(tt.inputs), tt.expected)
		})
	}

	assert.NoError(t, p.Validate(Inputs{BaseCommit: "abc", PRNumber: 42}))

	noAPI := newTestPipeline(testConfig(t), nil)
	assert.ErrorIs(t, noAPI.Validate(Inputs{BaseCommit: "abc", PRNumber: 42}), beaconerrors.ErrMissingToken)
}

func TestRun_SuccessShortCircuit(t *testing.T) {
	// Exit code zero publishes the fixed acknowledgment and never queries the
	// advisor, even with failing logs on disk.
	cfg := testConfig(t)
	api := &fakeCommentAPI{}
	explainer := &stubExplainer{}
	p := newTestPipeline(cfg, api, WithExplainer(explainer))

	in := testInputs(writeJUnit(t, junitOneFailure))
	in.ExitCode = 0

	instruction, err := p.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Contains(t, instruction.Body, report.SuccessMessage)
	assert.NotContains(t, instruction.Body, "testA")
	assert.Zero(t, explainer.calls)
	assert.Equal(t, 1, api.createCalls)
}

func TestRun_FailureReportPublished(t *testing.T) {
	cfg := testConfig(t)
	api := &fakeCommentAPI{}
	explainer := &stubExplainer{explanations: []advisor.Explanation{
		{Name: "Flang/Unit/testA", Explained: true, Reason: "broken at HEAD"},
	}}
	p := newTestPipeline(cfg, api, WithExplainer(explainer))

	instruction, err := p.Run(context.Background(), testInputs(writeJUnit(t, junitOneFailure)))
	require.NoError(t, err)

	assert.Equal(t, 1, explainer.calls)
	assert.Contains(t, instruction.Body, reconcile.Marker("linux-amd64"))
	assert.Contains(t, instruction.Body, "Flang/Unit/testA (Likely Already Failing)")
	assert.Contains(t, instruction.Body, "broken at HEAD")

	require.Len(t, api.comments, 1)
	assert.Equal(t, instruction.Body, api.comments[0].Body)
}

func TestRun_AdvisorUnavailabilityIsTransparent(t *testing.T) {
	// The same inputs render to the same bytes whether the advisor errs or
	// returns nothing.
	path := writeJUnit(t, junitOneFailure)

	unavailable := &stubExplainer{err: beaconerrors.ErrAdvisorUnavailable}
	withErr := newTestPipeline(testConfig(t), &fakeCommentAPI{}, WithExplainer(unavailable))
	errInstruction, err := withErr.Run(context.Background(), testInputs(path))
	require.NoError(t, err)

	empty := &stubExplainer{}
	withEmpty := newTestPipeline(testConfig(t), &fakeCommentAPI{}, WithExplainer(empty))
	emptyInstruction, err := withEmpty.Run(context.Background(), testInputs(path))
	require.NoError(t, err)

	assert.Equal(t, emptyInstruction.Body, errInstruction.Body)
	assert.Equal(t, 1, unavailable.calls)
}

func TestRun_NoExplainerConfigured(t *testing.T) {
	p := newTestPipeline(testConfig(t), &fakeCommentAPI{})

	instruction, err := p.Run(context.Background(), testInputs(writeJUnit(t, junitOneFailure)))
	require.NoError(t, err)
	assert.Contains(t, instruction.Body, "Flang/Unit/testA")
	assert.NotContains(t, instruction.Body, "(Likely Already Failing)")
}

func TestRun_SecondRunUpdatesComment(t *testing.T) {
	cfg := testConfig(t)
	api := &fakeCommentAPI{}
	p := newTestPipeline(cfg, api)
	ctx := context.Background()

	first, err := p.Run(ctx, testInputs(writeJUnit(t, junitOneFailure)))
	require.NoError(t, err)
	assert.Nil(t, first.ID)

	second, err := p.Run(ctx, testInputs())
	require.NoError(t, err)
	require.NotNil(t, second.ID)

	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, 1, api.updateCalls)
	assert.Len(t, api.comments, 1)
}

func TestRun_WritesInstructionFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Publish = false
	api := &fakeCommentAPI{}
	p := newTestPipeline(cfg, api)

	instruction, err := p.Run(context.Background(), testInputs(writeJUnit(t, junitOneFailure)))
	require.NoError(t, err)
	assert.Zero(t, api.createCalls, "publish disabled, only the instruction file is written")

	data, readErr := os.ReadFile(cfg.Report.InstructionFile) //nolint:gosec // test-owned temp path
	require.NoError(t, readErr)

	var decoded []reconcile.Instruction
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, instruction.Body, decoded[0].Body)
}

func TestRun_ListFailureIsFatal(t *testing.T) {
	api := &fakeCommentAPI{listErr: testutil.ErrMockAPIError}
	p := newTestPipeline(testConfig(t), api)

	_, err := p.Run(context.Background(), testInputs())
	require.Error(t, err)
	assert.ErrorIs(t, err, testutil.ErrMockAPIError)
}

func TestRun_PublishRespectsCommentLimit(t *testing.T) {
	// A directly published body must fit the issue tracker's hard comment
	// limit even when the configured report limit is larger: the failure
	// enumeration is dropped, the summary survives.
	huge := strings.Repeat("x", constants.MaxCommentBytes+1024)
	path := writeJUnit(t, `<testsuite name="S" tests="1" failures="1">
  <testcase classname="S" name="huge"><failure>`+huge+`</failure></testcase>
</testsuite>`)

	cfg := testConfig(t)
	api := &fakeCommentAPI{}
	p := newTestPipeline(cfg, api)

	instruction, err := p.Run(context.Background(), testInputs(path))
	require.NoError(t, err)

	assert.Less(t, len(instruction.Body), constants.MaxCommentBytes)
	assert.NotContains(t, instruction.Body, "<details>")
	assert.Contains(t, instruction.Body, "too large to report")

	// Without direct publishing the configured limit alone applies and the
	// enumeration fits.
	cfg2 := testConfig(t)
	cfg2.Report.Publish = false
	p2 := newTestPipeline(cfg2, &fakeCommentAPI{})

	instruction, err = p2.Run(context.Background(), testInputs(path))
	require.NoError(t, err)
	assert.Contains(t, instruction.Body, "<details>")
}

func TestRun_MissingLogsStillPublishes(t *testing.T) {
	// All candidate log paths absent: the report degrades to the no-details
	// build failure message and still publishes.
	p := newTestPipeline(testConfig(t), &fakeCommentAPI{})

	instruction, err := p.Run(context.Background(), testInputs("/nonexistent/results.xml"))
	require.NoError(t, err)
	assert.Contains(t, instruction.Body, "could not be automatically obtained")
}
