// Package runner launches the external visual-odometry program and
// reports its outcome. The program is always invoked from its fixed
// working directory with no arguments beyond those configured.
package runner

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"

	"github.com/orbislab/featsweep/internal/core/ports/driven"
	"github.com/orbislab/featsweep/internal/logger"
)

// tailLimit bounds how much combined output is retained for reporting.
const tailLimit = 2048

// Ensure Exec implements the interface.
var _ driven.ProgramRunner = (*Exec)(nil)

// Exec runs the external program via os/exec.
type Exec struct {
	command  string
	args     []string
	workdir  string
	watchDir string
}

// NewExec creates a runner for the given command line, executed from
// workdir. If watchDir is non-empty, it is watched during each run and
// newly created files are logged in verbose mode.
func NewExec(command string, args []string, workdir, watchDir string) *Exec {
	return &Exec{
		command:  command,
		args:     args,
		workdir:  workdir,
		watchDir: watchDir,
	}
}

// Run launches the program and blocks until it exits or ctx is done.
// A non-zero exit is reported through RunResult, not as an error.
func (e *Exec) Run(ctx context.Context) (driven.RunResult, error) {
	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Dir = e.workdir

	tail := newTailBuffer(tailLimit)
	cmd.Stdout = tail
	cmd.Stderr = tail

	stop := e.watch()
	defer stop()

	logger.Debug("running %s (workdir %s)", e.command, e.workdir)
	start := time.Now()
	err := cmd.Run()
	result := driven.RunResult{
		ExitCode:   -1,
		OutputTail: tail.String(),
		Duration:   time.Since(start),
	}

	if err == nil {
		result.ExitCode = 0
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	// The program never started (bad path, permissions).
	return result, err
}

// tailBuffer retains only the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if len(b.buf) > b.limit {
		b.buf = b.buf[len(b.buf)-b.limit:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
