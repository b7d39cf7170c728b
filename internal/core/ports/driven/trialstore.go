package driven

import (
	"context"

	"github.com/orbislab/featsweep/internal/core/domain"
)

// TrialStore persists sweep runs and their per-trial outcomes.
type TrialStore interface {
	// SaveRun creates or updates a sweep run record.
	SaveRun(ctx context.Context, run *domain.SweepRun) error

	// GetRun retrieves a run by ID.
	// Returns domain.ErrNotFound if no such run exists.
	GetRun(ctx context.Context, runID string) (*domain.SweepRun, error)

	// ListRuns returns runs ordered most recent first, at most limit.
	ListRuns(ctx context.Context, limit int) ([]domain.SweepRun, error)

	// RecordTrial persists one trial outcome.
	RecordTrial(ctx context.Context, record *domain.TrialRecord) error

	// ListTrials returns a run's trials in sweep order.
	ListTrials(ctx context.Context, runID string) ([]domain.TrialRecord, error)
}
