package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"

	"github.com/orbislab/featsweep/internal/core/domain"
	"github.com/orbislab/featsweep/internal/core/ports/driving"
	"github.com/orbislab/featsweep/internal/logger"
)

// Ensure Analyzer implements the interface.
var _ driving.Analyzer = (*Analyzer)(nil)

// Analyzer aggregates harvested track exports from the results directory
// into a cross-detector comparison report.
type Analyzer struct {
	resultsDir string
}

// NewAnalyzer creates an analyzer reading exports from resultsDir.
func NewAnalyzer(resultsDir string) *Analyzer {
	return &Analyzer{resultsDir: resultsDir}
}

// Analyze loads every available tracks_{detector}_{variant}.json export.
// Combinations whose export is missing are listed in the report's Missing
// slice; if nothing at all could be loaded, returns domain.ErrNoResults.
func (a *Analyzer) Analyze(ctx context.Context, detectors []domain.Detector, variants []domain.DatasetVariant) (*domain.ComparisonReport, error) {
	report := &domain.ComparisonReport{
		Detectors: detectors,
		Variants:  variants,
		Stats:     make(map[domain.Detector]map[domain.DatasetVariant]domain.TrackStats),
	}

	loaded := 0
	for _, d := range detectors {
		for _, v := range variants {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			name := fmt.Sprintf("tracks_%s_%s.json", d, v)
			export, err := a.loadExport(name)
			if err != nil {
				if os.IsNotExist(err) {
					logger.Warn("missing %s", name)
					report.Missing = append(report.Missing, name)
					continue
				}
				return nil, fmt.Errorf("load %s: %w", name, err)
			}

			if report.Stats[d] == nil {
				report.Stats[d] = make(map[domain.DatasetVariant]domain.TrackStats)
			}
			report.Stats[d][v] = export.Statistics
			loaded++
		}
	}

	if loaded == 0 {
		return nil, fmt.Errorf("%w: in %s", domain.ErrNoResults, a.resultsDir)
	}

	logger.Info("loaded %d of %d track exports", loaded, len(detectors)*len(variants))
	return report, nil
}

// loadExport reads and decodes one tracks JSON file.
func (a *Analyzer) loadExport(name string) (*domain.TrackExport, error) {
	data, err := os.ReadFile(filepath.Join(a.resultsDir, name))
	if err != nil {
		return nil, err
	}

	var export domain.TrackExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &export, nil
}

// MostRobust returns the detector with the lowest mean degradation
// relative to the report's first (baseline) variant, considering only
// detectors with stats for every variant. The second return is that mean
// degradation in percent; ok is false when no detector qualifies.
func MostRobust(report *domain.ComparisonReport) (domain.Detector, float64, bool) {
	if len(report.Variants) < 2 {
		return "", 0, false
	}
	baseline := report.Variants[0]

	var best domain.Detector
	bestMean := 0.0
	found := false

	for _, d := range report.Detectors {
		if !report.Complete(d) {
			continue
		}

		base, _ := report.Lookup(d, baseline)
		if base.MeanTrackLength <= 0 {
			continue
		}

		degradations := make([]float64, 0, len(report.Variants)-1)
		for _, v := range report.Variants[1:] {
			s, _ := report.Lookup(d, v)
			degradations = append(degradations, domain.Degradation(base.MeanTrackLength, s.MeanTrackLength))
		}

		mean := stat.Mean(degradations, nil)
		if !found || mean < bestMean {
			best = d
			bestMean = mean
			found = true
		}
	}

	return best, bestMean, found
}
