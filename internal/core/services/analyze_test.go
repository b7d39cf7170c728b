package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbislab/featsweep/internal/core/domain"
)

// writeExport drops a minimal tracks export into dir.
func writeExport(t *testing.T, dir string, d domain.Detector, v domain.DatasetVariant, mean float64, maxLen int) {
	t.Helper()
	content := fmt.Sprintf(`{
		"tracks": {"1": {"age": 3, "first_frame": 0, "last_frame": 3, "num_observations": 4, "is_active": false}},
		"statistics": {
			"total_tracks": 120,
			"active_tracks": 30,
			"mean_track_length": %f,
			"median_track_length": %f,
			"std_track_length": 1.5,
			"max_track_length": %d,
			"min_track_length": 1,
			"mean_active_track_length": %f
		},
		"total_frames": 271
	}`, mean, mean, maxLen, mean)
	name := fmt.Sprintf("tracks_%s_%s.json", d, v)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func TestAnalyzer_Analyze(t *testing.T) {
	dir := t.TempDir()
	detectors := []domain.Detector{domain.DetectorORB, domain.DetectorSIFT}
	variants := []domain.DatasetVariant{domain.VariantClean, domain.VariantRain}

	writeExport(t, dir, domain.DetectorORB, domain.VariantClean, 8.0, 40)
	writeExport(t, dir, domain.DetectorORB, domain.VariantRain, 4.0, 20)
	writeExport(t, dir, domain.DetectorSIFT, domain.VariantClean, 10.0, 50)
	// SIFT rain deliberately absent.

	report, err := NewAnalyzer(dir).Analyze(context.Background(), detectors, variants)
	require.NoError(t, err)

	s, ok := report.Lookup(domain.DetectorORB, domain.VariantRain)
	require.True(t, ok)
	assert.InDelta(t, 4.0, s.MeanTrackLength, 1e-9)
	assert.Equal(t, 20, s.MaxTrackLength)
	assert.Equal(t, 120, s.TotalTracks)

	assert.True(t, report.Complete(domain.DetectorORB))
	assert.False(t, report.Complete(domain.DetectorSIFT))
	assert.Equal(t, []string{"tracks_SIFT_rain.json"}, report.Missing)
}

func TestAnalyzer_NoResults(t *testing.T) {
	_, err := NewAnalyzer(t.TempDir()).Analyze(
		context.Background(),
		[]domain.Detector{domain.DetectorORB},
		[]domain.DatasetVariant{domain.VariantClean},
	)
	assert.ErrorIs(t, err, domain.ErrNoResults)
}

func TestAnalyzer_MalformedExport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracks_ORB_clean.json"), []byte("{not json"), 0600))

	_, err := NewAnalyzer(dir).Analyze(
		context.Background(),
		[]domain.Detector{domain.DetectorORB},
		[]domain.DatasetVariant{domain.VariantClean},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracks_ORB_clean.json")
}

func TestMostRobust(t *testing.T) {
	report := &domain.ComparisonReport{
		Detectors: []domain.Detector{domain.DetectorORB, domain.DetectorSIFT, domain.DetectorBRISK},
		Variants:  []domain.DatasetVariant{domain.VariantClean, domain.VariantRain, domain.VariantFog},
		Stats: map[domain.Detector]map[domain.DatasetVariant]domain.TrackStats{
			// ORB degrades 50% and 75%: mean 62.5%.
			domain.DetectorORB: {
				domain.VariantClean: {MeanTrackLength: 8},
				domain.VariantRain:  {MeanTrackLength: 4},
				domain.VariantFog:   {MeanTrackLength: 2},
			},
			// SIFT degrades 10% and 20%: mean 15%.
			domain.DetectorSIFT: {
				domain.VariantClean: {MeanTrackLength: 10},
				domain.VariantRain:  {MeanTrackLength: 9},
				domain.VariantFog:   {MeanTrackLength: 8},
			},
			// BRISK is incomplete and must be ignored.
			domain.DetectorBRISK: {
				domain.VariantClean: {MeanTrackLength: 12},
			},
		},
	}

	detector, degradation, ok := MostRobust(report)
	require.True(t, ok)
	assert.Equal(t, domain.DetectorSIFT, detector)
	assert.InDelta(t, 15.0, degradation, 1e-9)
}

func TestMostRobust_NoCompleteDetector(t *testing.T) {
	report := &domain.ComparisonReport{
		Detectors: []domain.Detector{domain.DetectorORB},
		Variants:  []domain.DatasetVariant{domain.VariantClean, domain.VariantRain},
		Stats: map[domain.Detector]map[domain.DatasetVariant]domain.TrackStats{
			domain.DetectorORB: {domain.VariantClean: {MeanTrackLength: 8}},
		},
	}
	_, _, ok := MostRobust(report)
	assert.False(t, ok)
}
