package driven

import (
	"context"
	"time"
)

// RunResult reports one completed invocation of the external program.
type RunResult struct {
	// ExitCode is the program's exit code; -1 if it did not exit normally.
	ExitCode int

	// OutputTail holds the last portion of combined stdout/stderr,
	// kept for error reporting.
	OutputTail string

	// Duration is how long the invocation took.
	Duration time.Duration
}

// ProgramRunner launches the external visual-odometry program from its
// fixed working directory and blocks until it exits or ctx is done.
// A non-zero exit is returned as a RunResult with no error; errors are
// reserved for failure to start and for ctx cancellation/timeout.
type ProgramRunner interface {
	Run(ctx context.Context) (RunResult, error)
}
