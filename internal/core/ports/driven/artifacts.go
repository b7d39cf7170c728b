package driven

import (
	"context"

	"github.com/orbislab/featsweep/internal/core/domain"
)

// ArtifactHarvester relocates the external program's well-known output
// files into collision-free, trial-parameterised names.
type ArtifactHarvester interface {
	// Harvest renames each present output artifact to embed the trial's
	// detector and variant tokens, and returns the new filenames.
	// Missing artifacts are skipped without error; content must be
	// preserved byte for byte.
	Harvest(ctx context.Context, trial domain.Trial) ([]string, error)
}
