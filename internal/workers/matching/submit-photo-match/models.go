// internal/workers/matching/submit-photo-match/models.go
package submitphotomatch

import (
	"context"

	apperrors "petfinder/internal/common/errors"
	"petfinder/internal/models"
	classifyconfidence "petfinder/internal/workers/matching/classify-confidence"
	rankmatches "petfinder/internal/workers/matching/rank-matches"
)

type State string

const (
	StateIdle            State = "IDLE"
	StateAwaitingCapture State = "AWAITING_CAPTURE"
	StateSubmitting      State = "SUBMITTING"
	StateResultReady     State = "RESULT_READY"
	StateNoMatch         State = "NO_MATCH"
	StateFailed          State = "FAILED"
)

// Terminal reports whether s ends one submission attempt.
func (s State) Terminal() bool {
	return s == StateResultReady || s == StateNoMatch || s == StateFailed
}

// ComparisonService submits one image and returns the candidate set.
type ComparisonService interface {
	Submit(ctx context.Context, img models.Image) (*models.ComparisonResult, error)
}

// Notifier creates user-visible notification records.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Snapshot is an immutable view of the workflow for the UI layer.
//
// Result is the last successful comparison. It stays set on FAILED so the
// previous matches remain visible.
type Snapshot struct {
	State     State                             `json:"state"`
	Result    *models.ComparisonResult          `json:"result,omitempty"`
	Ranked    []rankmatches.RankedMatch         `json:"ranked,omitempty"`
	Summary   rankmatches.Summary               `json:"summary"`
	Overall   classifyconfidence.Classification `json:"overall"`
	Message   string                            `json:"message,omitempty"`
	ErrorCode apperrors.ErrorCode               `json:"errorCode,omitempty"`
	Queued    bool                              `json:"queued"`
	Attempts  int                               `json:"attempts"`
}

// Loading is bound one to one to SUBMITTING.
func (s Snapshot) Loading() bool {
	return s.State == StateSubmitting
}
