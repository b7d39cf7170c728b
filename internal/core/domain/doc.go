// Package domain defines the core business entities for featsweep.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Detector: A feature-detector token the external program understands
//   - Dataset: A dataset variant bound to a filesystem path
//   - SweepPlan: The ordered cross-product of detectors and datasets
//   - TrialRecord: The persisted outcome of one trial
//   - TrackStats: Track statistics exported by the external program
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
