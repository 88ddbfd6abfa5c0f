// Package github adapts the GitHub REST API to the narrow comment surface
// the reconciler needs. Failures here are fatal to the run (AuthOrAPIFailure
// class): they propagate to the caller and set the exit status.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v59/github"
	"github.com/rs/zerolog"

	"github.com/mrz1836/beacon/internal/constants"
	beaconerrors "github.com/mrz1836/beacon/internal/errors"
	"github.com/mrz1836/beacon/internal/reconcile"
)

// Client wraps the go-github client for issue comment operations on a single
// repository.
type Client struct {
	gh     *github.Client
	owner  string
	repo   string
	logger zerolog.Logger
}

// Compile-time interface check.
var _ reconcile.CommentAPI = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the logger for GitHub operations.
func WithClientLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBaseURL points the client at a non-default API endpoint. Used by tests
// against httptest servers. The URL must end with a trailing slash.
func WithBaseURL(raw string) ClientOption {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.gh.BaseURL = u
		}
	}
}

// NewClient creates a comment client for the "owner/name" repository using
// the given API token.
func NewClient(repo, token string, opts ...ClientOption) (*Client, error) {
	owner, name, ok := splitRepo(repo)
	if !ok {
		return nil, fmt.Errorf("%q: %w", repo, beaconerrors.ErrMissingRepo)
	}
	if token == "" {
		return nil, beaconerrors.ErrMissingToken
	}

	c := &Client{
		gh:     github.NewClient(nil).WithAuthToken(token),
		owner:  owner,
		repo:   name,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// splitRepo splits an "owner/name" repository reference.
func splitRepo(repo string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(repo, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}

// ListComments returns all comments on the pull request, following
// pagination.
func (c *Client) ListComments(ctx context.Context, prNumber int) ([]reconcile.Comment, error) {
	var all []reconcile.Comment
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: constants.CommentsPerPage},
	}

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, prNumber, opts)
		if err != nil {
			return nil, classify(err, "list comments")
		}

		for _, comment := range comments {
			all = append(all, reconcile.Comment{
				ID:   comment.GetID(),
				Body: comment.GetBody(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.logger.Debug().Int("pr", prNumber).Int("count", len(all)).Msg("listed issue comments")
	return all, nil
}

// CreateComment creates a new comment on the pull request.
func (c *Client) CreateComment(ctx context.Context, prNumber int, body string) (int64, error) {
	comment, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, prNumber, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return 0, classify(err, "create comment")
	}
	return comment.GetID(), nil
}

// UpdateComment replaces the body of an existing comment.
func (c *Client) UpdateComment(ctx context.Context, commentID int64, body string) error {
	_, _, err := c.gh.Issues.EditComment(ctx, c.owner, c.repo, commentID, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return classify(err, "update comment")
	}
	return nil
}

// classify maps a go-github error onto the sentinel taxonomy so callers can
// act on the category with errors.Is.
func classify(err error, op string) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			if strings.Contains(strings.ToLower(ghErr.Message), "rate limit") {
				return fmt.Errorf("%s: %v: %w", op, err, beaconerrors.ErrGHRateLimited)
			}
			return fmt.Errorf("%s: %v: %w", op, err, beaconerrors.ErrGHAuthFailed)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %v: %w", op, err, beaconerrors.ErrCommentNotFound)
		}
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%s: %v: %w", op, err, beaconerrors.ErrGHRateLimited)
	}

	return fmt.Errorf("%s: %v: %w", op, err, beaconerrors.ErrGitHubOperation)
}
