package domain

// TrackStats is the statistics block the external program writes into
// each tracks JSON export. Field names mirror that file format.
type TrackStats struct {
	TotalTracks           int     `json:"total_tracks"`
	ActiveTracks          int     `json:"active_tracks"`
	MeanTrackLength       float64 `json:"mean_track_length"`
	MedianTrackLength     float64 `json:"median_track_length"`
	StdTrackLength        float64 `json:"std_track_length"`
	MaxTrackLength        int     `json:"max_track_length"`
	MinTrackLength        int     `json:"min_track_length"`
	MeanActiveTrackLength float64 `json:"mean_active_track_length"`
}

// TrackExport is the subset of the tracks JSON file the analysis reads.
// The per-track map is ignored; only aggregate statistics matter here.
type TrackExport struct {
	Statistics  TrackStats `json:"statistics"`
	TotalFrames int        `json:"total_frames"`
}

// Degradation returns the relative performance drop, in percent, from a
// baseline value to a degraded value. Returns 0 when the baseline is not
// positive, matching how missing baselines are reported.
func Degradation(baseline, degraded float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return (baseline - degraded) / baseline * 100
}

// ComparisonReport aggregates track statistics across the sweep's
// detector and variant enumerations. Stats is keyed by detector then
// variant; combinations with no export on disk are absent.
type ComparisonReport struct {
	Detectors []Detector
	Variants  []DatasetVariant
	Stats     map[Detector]map[DatasetVariant]TrackStats

	// Missing lists the export filenames that were expected but absent.
	Missing []string
}

// Lookup returns the stats for a combination, if present.
func (r *ComparisonReport) Lookup(d Detector, v DatasetVariant) (TrackStats, bool) {
	byVariant, ok := r.Stats[d]
	if !ok {
		return TrackStats{}, false
	}
	s, ok := byVariant[v]
	return s, ok
}

// Complete returns true if the detector has stats for every variant.
func (r *ComparisonReport) Complete(d Detector) bool {
	for _, v := range r.Variants {
		if _, ok := r.Lookup(d, v); !ok {
			return false
		}
	}
	return true
}

// Best returns the detector with the highest mean track length under the
// given variant, and false if no detector has stats for it.
func (r *ComparisonReport) Best(v DatasetVariant) (Detector, bool) {
	var best Detector
	bestMean := -1.0
	for _, d := range r.Detectors {
		s, ok := r.Lookup(d, v)
		if !ok {
			continue
		}
		if s.MeanTrackLength > bestMean {
			best = d
			bestMean = s.MeanTrackLength
		}
	}
	return best, bestMean >= 0
}
