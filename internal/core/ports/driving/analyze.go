package driving

import (
	"context"

	"github.com/orbislab/featsweep/internal/core/domain"
)

// Analyzer aggregates harvested track exports into a comparison report.
type Analyzer interface {
	// Analyze loads every available tracks export for the given
	// enumerations and returns the aggregated report.
	// Returns domain.ErrNoResults if nothing could be loaded.
	Analyze(ctx context.Context, detectors []domain.Detector, variants []domain.DatasetVariant) (*domain.ComparisonReport, error)
}
