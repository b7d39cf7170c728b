// Package artifacts relocates the external program's output files into
// collision-free names so consecutive trials do not overwrite each other.
package artifacts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/orbislab/featsweep/internal/core/domain"
	"github.com/orbislab/featsweep/internal/core/ports/driven"
	"github.com/orbislab/featsweep/internal/logger"
)

// Mapping describes one well-known output and its parameterised target.
type Mapping struct {
	// Source is the fixed filename the program writes.
	Source string

	// Target is a pattern with one %s verb for the trial key.
	Target string
}

// DefaultMappings returns the two artifacts the program produces per run.
func DefaultMappings() []Mapping {
	return []Mapping{
		{Source: "track_longevity_04.png", Target: "track_longevity_%s.png"},
		{Source: "tracks_04.json", Target: "tracks_%s.json"},
	}
}

// Ensure FS implements the interface.
var _ driven.ArtifactHarvester = (*FS)(nil)

// FS harvests artifacts within a results directory on the local filesystem.
type FS struct {
	resultsDir string
	mappings   []Mapping
}

// NewFS creates a harvester over resultsDir. A nil mappings slice uses
// the default two outputs.
func NewFS(resultsDir string, mappings []Mapping) *FS {
	if mappings == nil {
		mappings = DefaultMappings()
	}
	return &FS{resultsDir: resultsDir, mappings: mappings}
}

// Harvest renames each present artifact to embed the trial key.
// A missing artifact is a benign skip. Returns the target filenames
// that now exist.
func (f *FS) Harvest(ctx context.Context, trial domain.Trial) ([]string, error) {
	var harvested []string
	for _, m := range f.mappings {
		if err := ctx.Err(); err != nil {
			return harvested, err
		}

		src := filepath.Join(f.resultsDir, m.Source)
		if _, err := os.Stat(src); err != nil {
			if os.IsNotExist(err) {
				logger.Debug("no %s for %s, skipping", m.Source, trial.Key())
				continue
			}
			return harvested, fmt.Errorf("stat %s: %w", src, err)
		}

		target := fmt.Sprintf(m.Target, trial.Key())
		dst := filepath.Join(f.resultsDir, target)
		if err := move(src, dst); err != nil {
			return harvested, fmt.Errorf("move %s: %w", m.Source, err)
		}
		harvested = append(harvested, target)
	}
	return harvested, nil
}

// move renames src to dst, falling back to a byte copy when rename is
// not possible (cross-device results directories).
func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
