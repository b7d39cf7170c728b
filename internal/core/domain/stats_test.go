package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDegradation(t *testing.T) {
	tests := []struct {
		name     string
		baseline float64
		degraded float64
		expected float64
	}{
		{name: "half as good", baseline: 10, degraded: 5, expected: 50},
		{name: "no drop", baseline: 10, degraded: 10, expected: 0},
		{name: "improvement is negative", baseline: 10, degraded: 12, expected: -20},
		{name: "zero baseline", baseline: 0, degraded: 5, expected: 0},
		{name: "negative baseline", baseline: -1, degraded: 5, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Degradation(tt.baseline, tt.degraded), 1e-9)
		})
	}
}

func newTestReport() *ComparisonReport {
	return &ComparisonReport{
		Detectors: []Detector{DetectorORB, DetectorSIFT},
		Variants:  []DatasetVariant{VariantClean, VariantRain},
		Stats: map[Detector]map[DatasetVariant]TrackStats{
			DetectorORB: {
				VariantClean: {MeanTrackLength: 8.5, MaxTrackLength: 40},
				VariantRain:  {MeanTrackLength: 4.2, MaxTrackLength: 22},
			},
			DetectorSIFT: {
				VariantClean: {MeanTrackLength: 11.1, MaxTrackLength: 55},
			},
		},
	}
}

func TestComparisonReport_Lookup(t *testing.T) {
	r := newTestReport()

	s, ok := r.Lookup(DetectorORB, VariantRain)
	assert.True(t, ok)
	assert.InDelta(t, 4.2, s.MeanTrackLength, 1e-9)

	_, ok = r.Lookup(DetectorSIFT, VariantRain)
	assert.False(t, ok)

	_, ok = r.Lookup(DetectorAKAZE, VariantClean)
	assert.False(t, ok)
}

func TestComparisonReport_Complete(t *testing.T) {
	r := newTestReport()
	assert.True(t, r.Complete(DetectorORB))
	assert.False(t, r.Complete(DetectorSIFT))
}

func TestComparisonReport_Best(t *testing.T) {
	r := newTestReport()

	best, ok := r.Best(VariantClean)
	assert.True(t, ok)
	assert.Equal(t, DetectorSIFT, best)

	// SIFT has no rain stats, so ORB wins rain by default.
	best, ok = r.Best(VariantRain)
	assert.True(t, ok)
	assert.Equal(t, DetectorORB, best)

	r.Stats = nil
	_, ok = r.Best(VariantClean)
	assert.False(t, ok)
}
