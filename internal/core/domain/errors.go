package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyPlan indicates a sweep plan with no detectors or no datasets.
	ErrEmptyPlan = errors.New("sweep plan is empty")

	// Trial Errors.

	// ErrConfigWrite indicates the external program's configuration could
	// not be updated. The trial is failed before the program is launched.
	ErrConfigWrite = errors.New("configuration write failed")

	// ErrConfigKeyMissing indicates the expected key was not present in the
	// external program's configuration file.
	ErrConfigKeyMissing = errors.New("configuration key not found")

	// ErrProgramFailed indicates the external program exited non-zero
	// or could not be started.
	ErrProgramFailed = errors.New("external program failed")

	// ErrSweepInProgress indicates a sweep is already running.
	ErrSweepInProgress = errors.New("sweep in progress")

	// Analysis Errors.

	// ErrNoResults indicates the results directory held no track exports
	// for any configured (detector, variant) combination.
	ErrNoResults = errors.New("no track results found")
)
