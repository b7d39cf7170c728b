package domain

import "time"

// TrialStatus is the recorded outcome of a trial.
type TrialStatus string

// Trial outcomes.
const (
	// TrialPassed means the external program exited zero within the timeout.
	TrialPassed TrialStatus = "passed"

	// TrialFailed means every attempt ended in a configuration-write error,
	// a non-zero exit, a start failure or a timeout.
	TrialFailed TrialStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s TrialStatus) IsValid() bool {
	return s == TrialPassed || s == TrialFailed
}

// String returns the string representation.
func (s TrialStatus) String() string {
	return string(s)
}

// TrialRecord is the persisted outcome of one trial.
type TrialRecord struct {
	// RunID identifies the sweep run this trial belongs to.
	RunID string

	// Ordinal is the 1-based position of the trial in sweep order.
	Ordinal int

	// Detector that was configured for this trial.
	Detector Detector

	// Variant of the dataset that was configured for this trial.
	Variant DatasetVariant

	// Status is the final outcome after all attempts.
	Status TrialStatus

	// Attempts is how many times the external program was launched
	// (zero when configuration failed before launch).
	Attempts int

	// ExitCode is the external program's exit code on the final attempt,
	// or -1 if it was never started or did not exit normally.
	ExitCode int

	// Error contains the failure cause if Status is TrialFailed.
	Error string

	// Artifacts lists the harvested artifact filenames, if any.
	Artifacts []string

	// StartedAt is when the trial began.
	StartedAt time.Time

	// EndedAt is when the trial finished, after all attempts.
	EndedAt time.Time
}

// Duration returns the wall-clock time the trial took.
func (r TrialRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SweepRun summarises one invocation of the sweep.
type SweepRun struct {
	// ID is the unique identifier for the run.
	ID string

	// ResultsDir is where harvested artifacts were placed.
	ResultsDir string

	// Planned is the total trial count, |detectors| x |datasets|.
	Planned int

	// Passed and Failed count trial outcomes. Passed+Failed equals
	// Planned for completed runs; less if the run was cancelled.
	Passed int
	Failed int

	// StartedAt is when the run began.
	StartedAt time.Time

	// EndedAt is when the run finished. Zero while in progress.
	EndedAt time.Time
}

// RetryPolicy controls how failed trial attempts are retried.
type RetryPolicy struct {
	// Retries is the number of additional attempts after a failure.
	// Zero means each trial is attempted exactly once.
	Retries int

	// Delay is the fixed pause between attempts.
	Delay time.Duration
}

// Attempts returns the maximum number of launches a trial may see.
func (p RetryPolicy) Attempts() int {
	if p.Retries < 0 {
		return 1
	}
	return p.Retries + 1
}
