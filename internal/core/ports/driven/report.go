package driven

import (
	"context"

	"github.com/orbislab/featsweep/internal/core/domain"
)

// ReportRenderer turns a comparison report into chart files on disk.
type ReportRenderer interface {
	// Render writes the comparison charts and returns the paths written.
	Render(ctx context.Context, report *domain.ComparisonReport) ([]string, error)
}
