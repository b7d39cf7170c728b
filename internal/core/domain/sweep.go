package domain

import (
	"fmt"
	"strings"
)

// Detector is a feature-detector token understood by the external
// visual-odometry program (e.g. "ORB", "SIFT", "ROOT_SIFT").
type Detector string

// Detectors exercised by the default sweep.
const (
	DetectorORB      Detector = "ORB"
	DetectorSIFT     Detector = "SIFT"
	DetectorRootSIFT Detector = "ROOT_SIFT"
	DetectorAKAZE    Detector = "AKAZE"
	DetectorBRISK    Detector = "BRISK"
)

// DefaultDetectors returns the detector enumeration used when the sweep
// configuration does not override it.
func DefaultDetectors() []Detector {
	return []Detector{
		DetectorORB,
		DetectorSIFT,
		DetectorRootSIFT,
		DetectorAKAZE,
		DetectorBRISK,
	}
}

// IsValid returns true if the detector token can be embedded in artifact
// filenames: non-empty, uppercase letters, digits and underscores only.
func (d Detector) IsValid() bool {
	if d == "" {
		return false
	}
	for _, r := range d {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

// String returns the string representation.
func (d Detector) String() string {
	return string(d)
}

// DatasetVariant is a dataset condition token (e.g. "clean", "rain", "fog").
type DatasetVariant string

// Variants exercised by the default sweep.
const (
	VariantClean DatasetVariant = "clean"
	VariantRain  DatasetVariant = "rain"
	VariantFog   DatasetVariant = "fog"
)

// DefaultVariants returns the variant enumeration used when the sweep
// configuration does not override it.
func DefaultVariants() []DatasetVariant {
	return []DatasetVariant{VariantClean, VariantRain, VariantFog}
}

// IsValid returns true if the variant token can be embedded in artifact
// filenames: non-empty, lowercase letters, digits and underscores only.
func (v DatasetVariant) IsValid() bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

// String returns the string representation.
func (v DatasetVariant) String() string {
	return string(v)
}

// Dataset binds a variant token to the absolute base path the external
// program should read input frames from.
type Dataset struct {
	// Variant identifies the dataset condition.
	Variant DatasetVariant

	// BasePath is the absolute path of the dataset on disk.
	BasePath string
}

// Trial is one (detector, dataset) combination within a sweep.
type Trial struct {
	// Ordinal is the 1-based position of the trial in sweep order.
	Ordinal int

	// Detector selects the feature-extraction algorithm.
	Detector Detector

	// Dataset selects the input data the external program reads.
	Dataset Dataset
}

// Key returns the "{detector}_{variant}" token used to parameterise
// harvested artifact names.
func (t Trial) Key() string {
	return fmt.Sprintf("%s_%s", t.Detector, t.Dataset.Variant)
}

// SweepPlan is the ordered set of trials across the cross-product of
// detectors and dataset variants. Detector order is the outer loop,
// dataset order the inner loop.
type SweepPlan struct {
	Detectors []Detector
	Datasets  []Dataset
}

// NewSweepPlan validates the two enumerations and returns a plan.
// Both must be non-empty, every token valid, and free of duplicates.
func NewSweepPlan(detectors []Detector, datasets []Dataset) (SweepPlan, error) {
	if len(detectors) == 0 || len(datasets) == 0 {
		return SweepPlan{}, ErrEmptyPlan
	}

	seenDet := make(map[Detector]bool, len(detectors))
	for _, d := range detectors {
		if !d.IsValid() {
			return SweepPlan{}, fmt.Errorf("%w: detector %q", ErrInvalidInput, d)
		}
		if seenDet[d] {
			return SweepPlan{}, fmt.Errorf("%w: duplicate detector %q", ErrInvalidInput, d)
		}
		seenDet[d] = true
	}

	seenVar := make(map[DatasetVariant]bool, len(datasets))
	for _, ds := range datasets {
		if !ds.Variant.IsValid() {
			return SweepPlan{}, fmt.Errorf("%w: dataset variant %q", ErrInvalidInput, ds.Variant)
		}
		if strings.TrimSpace(ds.BasePath) == "" {
			return SweepPlan{}, fmt.Errorf("%w: dataset %q has no base path", ErrInvalidInput, ds.Variant)
		}
		if seenVar[ds.Variant] {
			return SweepPlan{}, fmt.Errorf("%w: duplicate dataset variant %q", ErrInvalidInput, ds.Variant)
		}
		seenVar[ds.Variant] = true
	}

	return SweepPlan{Detectors: detectors, Datasets: datasets}, nil
}

// Size returns the total trial count, |detectors| x |datasets|.
func (p SweepPlan) Size() int {
	return len(p.Detectors) * len(p.Datasets)
}

// Trials materialises the ordered trial list. The order is part of the
// contract: all datasets for the first detector, then the second, and so on.
func (p SweepPlan) Trials() []Trial {
	trials := make([]Trial, 0, p.Size())
	n := 0
	for _, d := range p.Detectors {
		for _, ds := range p.Datasets {
			n++
			trials = append(trials, Trial{Ordinal: n, Detector: d, Dataset: ds})
		}
	}
	return trials
}

// Variants returns the variant tokens in plan order.
func (p SweepPlan) Variants() []DatasetVariant {
	variants := make([]DatasetVariant, 0, len(p.Datasets))
	for _, ds := range p.Datasets {
		variants = append(variants, ds.Variant)
	}
	return variants
}
