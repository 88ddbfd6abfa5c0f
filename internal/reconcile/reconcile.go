// Package reconcile finds or creates the single bot-owned status comment for
// a platform and emits the corresponding upsert instruction.
//
// Ownership is tracked with a sentinel marker embedded in the comment body as
// an HTML comment, invisible to readers. The marker is a fixed prefix
// concatenated with the platform tag and is never altered after first
// creation, which makes it the idempotency key across repeated runs.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	beaconerrors "github.com/mrz1836/beacon/internal/errors"
)

// markerPrefix is the single source of truth for the sentinel marker format.
// Do not duplicate this string elsewhere.
const markerPrefix = "<!--beacon-status:"

// Marker returns the sentinel marker for a platform tag.
func Marker(platformTag string) string {
	return markerPrefix + platformTag + "-->"
}

// EmbedMarker prepends the platform marker to a rendered report body.
func EmbedMarker(platformTag, body string) string {
	return Marker(platformTag) + "\n" + body
}

// Comment is the minimal view of an existing issue comment needed for
// reconciliation.
type Comment struct {
	ID   int64
	Body string
}

// CommentAPI is the narrow issue-tracker surface the reconciler depends on.
// The production implementation is github.Client; tests use a fake.
type CommentAPI interface {
	// ListComments returns all comments on the change request.
	ListComments(ctx context.Context, prNumber int) ([]Comment, error)
	// CreateComment creates a comment and returns its identifier.
	CreateComment(ctx context.Context, prNumber int, body string) (int64, error)
	// UpdateComment replaces the body of an existing comment.
	UpdateComment(ctx context.Context, commentID int64, body string) error
}

// Instruction is the upsert instruction consumed by the publish step. A nil
// ID signals "create new"; a present ID signals "update in place".
type Instruction struct {
	Body string `json:"body"`
	ID   *int64 `json:"id,omitempty"`
}

// FindExisting scans comments for the one bearing the platform's marker.
// Returns the comment identifier and true when found.
func FindExisting(comments []Comment, platformTag string) (int64, bool) {
	marker := Marker(platformTag)
	for _, comment := range comments {
		if strings.Contains(comment.Body, marker) {
			return comment.ID, true
		}
	}
	return 0, false
}

// Reconciler resolves the per-platform status comment against the live
// comment list and publishes the upsert.
type Reconciler struct {
	api    CommentAPI
	logger zerolog.Logger
}

// NewReconciler creates a Reconciler backed by the given comment API.
func NewReconciler(api CommentAPI, logger zerolog.Logger) *Reconciler {
	return &Reconciler{api: api, logger: logger}
}

// Reconcile looks up the existing comment for the platform tag and returns
// the upsert instruction with the marker embedded in the body. Lookup
// failures are fatal to the run: a report that cannot be published has no
// value.
//
// At most one comment should ever bear a platform's marker. This is
// best-effort, not transactionally enforced: two concurrent runs for the
// same platform can both observe "not found" and each create a comment.
func (r *Reconciler) Reconcile(ctx context.Context, prNumber int, platformTag, body string) (Instruction, error) {
	comments, err := r.api.ListComments(ctx, prNumber)
	if err != nil {
		return Instruction{}, beaconerrors.Wrap(err, "failed to list existing comments")
	}

	instruction := Instruction{Body: EmbedMarker(platformTag, body)}
	if id, found := FindExisting(comments, platformTag); found {
		instruction.ID = &id
		r.logger.Debug().Int64("comment_id", id).Str("platform", platformTag).Msg("found existing status comment")
	} else {
		r.logger.Debug().Str("platform", platformTag).Msg("no existing status comment, will create")
	}
	return instruction, nil
}

// Publish performs the create or update call the instruction describes.
func (r *Reconciler) Publish(ctx context.Context, prNumber int, instruction Instruction) error {
	if instruction.ID != nil {
		if err := r.api.UpdateComment(ctx, *instruction.ID, instruction.Body); err != nil {
			return beaconerrors.Wrapf(err, "failed to update comment %d", *instruction.ID)
		}
		r.logger.Info().Int64("comment_id", *instruction.ID).Msg("updated status comment")
		return nil
	}

	id, err := r.api.CreateComment(ctx, prNumber, instruction.Body)
	if err != nil {
		return beaconerrors.Wrap(err, "failed to create comment")
	}
	r.logger.Info().Int64("comment_id", id).Msg("created status comment")
	return nil
}

// WriteInstruction serializes the instruction as a single-element JSON list
// to the given path for the out-of-band publishing step.
func WriteInstruction(path string, instruction Instruction) error {
	data, err := json.MarshalIndent([]Instruction{instruction}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode instruction: %w", beaconerrors.ErrInstructionWrite)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, beaconerrors.ErrInstructionWrite)
	}
	return nil
}
