package driving

import (
	"context"

	"github.com/orbislab/featsweep/internal/core/domain"
)

// SweepOrchestrator drives the full ordered set of trials across the
// cross-product of detectors and dataset variants.
type SweepOrchestrator interface {
	// Sweep runs every trial in plan order and returns the completed run
	// summary. Individual trial failures do not abort the sweep; only a
	// cancelled context or a store failure does.
	Sweep(ctx context.Context, plan domain.SweepPlan) (*domain.SweepRun, error)

	// Status returns progress for the sweep currently in flight,
	// or nil if none is running.
	Status(ctx context.Context) (*SweepStatus, error)
}

// SweepStatus represents the current state of a running sweep.
type SweepStatus struct {
	// RunID identifies the sweep run.
	RunID string

	// Running indicates if a sweep is currently in progress.
	Running bool

	// Current is the trial being executed, if any.
	Current *domain.Trial

	// Completed is the count of finished trials.
	Completed int

	// Planned is the total trial count.
	Planned int

	// Failed is the number of failed trials so far.
	Failed int
}
