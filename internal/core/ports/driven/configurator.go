package driven

import (
	"context"

	"github.com/orbislab/featsweep/internal/core/domain"
)

// SlamConfigurator rewrites the external program's configuration files to
// select the active detector and dataset. Implementations must parse,
// modify and serialise the files rather than substitute text, and must
// report a missing key as domain.ErrConfigKeyMissing.
type SlamConfigurator interface {
	// SetDetector binds the feature-tracker name key to the detector token.
	SetDetector(ctx context.Context, detector domain.Detector) error

	// SetDatasetPath binds the dataset base-path key to the given path.
	SetDatasetPath(ctx context.Context, path string) error
}
