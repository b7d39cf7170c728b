package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orbislab/featsweep/internal/core/domain"
	"github.com/orbislab/featsweep/internal/core/ports/driven"
	"github.com/orbislab/featsweep/internal/core/ports/driving"
	"github.com/orbislab/featsweep/internal/logger"
)

// Ensure SweepOrchestrator implements the interface.
var _ driving.SweepOrchestrator = (*SweepOrchestrator)(nil)

// defaultTrialTimeout bounds one attempt of the external program.
const defaultTrialTimeout = 30 * time.Minute

// ProgressFunc receives human-readable progress lines during a sweep.
type ProgressFunc func(format string, args ...any)

// SweepOptions holds sweep execution policy.
type SweepOptions struct {
	// Policy controls retries of failed trial attempts.
	Policy domain.RetryPolicy

	// TrialTimeout bounds each attempt of the external program.
	// Defaults to 30 minutes when zero.
	TrialTimeout time.Duration

	// ResultsDir is where harvested artifacts land; reported in the
	// run summary.
	ResultsDir string

	// Progress, when set, receives the per-detector and per-trial
	// banner lines.
	Progress ProgressFunc
}

// SweepOrchestrator coordinates the sequential sweep: per trial it
// configures the external program, launches it, inspects the outcome,
// harvests artifacts and records the result.
type SweepOrchestrator struct {
	configurator driven.SlamConfigurator
	runner       driven.ProgramRunner
	harvester    driven.ArtifactHarvester
	store        driven.TrialStore // optional
	opts         SweepOptions

	// Status tracking
	mu     sync.RWMutex
	active *driving.SweepStatus
}

// NewSweepOrchestrator creates a new sweep orchestrator.
// The store is optional - if nil, trial history is not persisted.
func NewSweepOrchestrator(
	configurator driven.SlamConfigurator,
	runner driven.ProgramRunner,
	harvester driven.ArtifactHarvester,
	store driven.TrialStore,
	opts SweepOptions,
) *SweepOrchestrator {
	if opts.TrialTimeout <= 0 {
		opts.TrialTimeout = defaultTrialTimeout
	}
	return &SweepOrchestrator{
		configurator: configurator,
		runner:       runner,
		harvester:    harvester,
		store:        store,
		opts:         opts,
	}
}

// Sweep runs every trial in plan order. Trial failures are recorded and
// the sweep continues; only context cancellation aborts it early.
func (o *SweepOrchestrator) Sweep(ctx context.Context, plan domain.SweepPlan) (*domain.SweepRun, error) {
	trials := plan.Trials()
	if len(trials) == 0 {
		return nil, domain.ErrEmptyPlan
	}

	run := &domain.SweepRun{
		ID:         uuid.NewString(),
		ResultsDir: o.opts.ResultsDir,
		Planned:    plan.Size(),
		StartedAt:  time.Now(),
	}

	if err := o.begin(run); err != nil {
		return nil, err
	}
	defer o.clearStatus()

	if o.store != nil {
		if err := o.store.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
	}

	logger.Section("Sweep " + run.ID)

	var lastDetector domain.Detector
	for i := range trials {
		trial := trials[i]

		if err := ctx.Err(); err != nil {
			run.EndedAt = time.Now()
			o.saveRun(ctx, run)
			return run, fmt.Errorf("sweep cancelled: %w", err)
		}

		if trial.Detector != lastDetector {
			o.progress("========================================")
			o.progress("Detector: %s", trial.Detector)
			o.progress("========================================")
			lastDetector = trial.Detector
		}

		o.progress("[%d/%d] %s on %s dataset...", trial.Ordinal, run.Planned, trial.Detector, trial.Dataset.Variant)
		o.setCurrent(&trial)

		record := o.runTrial(ctx, run.ID, trial)

		if record.Status == domain.TrialPassed {
			run.Passed++
			o.progress("[%d/%d] %s_%s done (%s)", trial.Ordinal, run.Planned, trial.Detector, trial.Dataset.Variant, record.Duration().Round(time.Millisecond))
		} else {
			run.Failed++
			logger.Warn("trial %s failed: %s", trial.Key(), record.Error)
			o.progress("[%d/%d] %s_%s FAILED: %s", trial.Ordinal, run.Planned, trial.Detector, trial.Dataset.Variant, record.Error)
		}
		o.trialDone(record.Status)

		if o.store != nil {
			if err := o.store.RecordTrial(ctx, &record); err != nil {
				return run, fmt.Errorf("record trial %s: %w", trial.Key(), err)
			}
		}
	}

	run.EndedAt = time.Now()
	o.saveRun(ctx, run)

	o.progress("========================================")
	o.progress("Sweep complete: %d passed, %d failed of %d trials", run.Passed, run.Failed, run.Planned)
	o.progress("Results in: %s", run.ResultsDir)
	logger.Info("Sweep %s finished: %d/%d passed", run.ID, run.Passed, run.Planned)

	return run, nil
}

// Status returns progress for the sweep currently in flight.
func (o *SweepOrchestrator) Status(_ context.Context) (*driving.SweepStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.active == nil {
		return nil, nil
	}
	// Return a copy to avoid race conditions
	statusCopy := *o.active
	if o.active.Current != nil {
		trialCopy := *o.active.Current
		statusCopy.Current = &trialCopy
	}
	return &statusCopy, nil
}

// runTrial executes one trial: configure, launch with retries, harvest.
func (o *SweepOrchestrator) runTrial(ctx context.Context, runID string, trial domain.Trial) domain.TrialRecord {
	record := domain.TrialRecord{
		RunID:     runID,
		Ordinal:   trial.Ordinal,
		Detector:  trial.Detector,
		Variant:   trial.Dataset.Variant,
		ExitCode:  -1,
		StartedAt: time.Now(),
	}

	if err := o.configure(ctx, trial); err != nil {
		record.Status = domain.TrialFailed
		record.Error = err.Error()
		record.EndedAt = time.Now()
		return record
	}

	var lastErr error
	for attempt := 1; attempt <= o.opts.Policy.Attempts(); attempt++ {
		if attempt > 1 {
			logger.Info("retrying %s (attempt %d/%d)", trial.Key(), attempt, o.opts.Policy.Attempts())
			if err := sleepCtx(ctx, o.opts.Policy.Delay); err != nil {
				lastErr = err
				break
			}
		}
		record.Attempts = attempt

		result, err := o.launch(ctx)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		record.ExitCode = result.ExitCode
		if result.ExitCode == 0 {
			record.Status = domain.TrialPassed
			record.Artifacts = o.harvest(ctx, trial)
			record.EndedAt = time.Now()
			return record
		}

		lastErr = fmt.Errorf("%w: exit status %d", domain.ErrProgramFailed, result.ExitCode)
		if result.OutputTail != "" {
			lastErr = fmt.Errorf("%w: %s", lastErr, result.OutputTail)
		}
	}

	record.Status = domain.TrialFailed
	if lastErr != nil {
		record.Error = lastErr.Error()
	}
	record.EndedAt = time.Now()
	return record
}

// configure rewrites both external configuration files for the trial.
// Any failure here is a configuration-write error: the trial fails
// before the external program is launched.
func (o *SweepOrchestrator) configure(ctx context.Context, trial domain.Trial) error {
	logger.Debug("configuring detector %s", trial.Detector)
	if err := o.configurator.SetDetector(ctx, trial.Detector); err != nil {
		return fmt.Errorf("%w: set detector %s: %w", domain.ErrConfigWrite, trial.Detector, err)
	}

	logger.Debug("configuring dataset path %s", trial.Dataset.BasePath)
	if err := o.configurator.SetDatasetPath(ctx, trial.Dataset.BasePath); err != nil {
		return fmt.Errorf("%w: set dataset %s: %w", domain.ErrConfigWrite, trial.Dataset.Variant, err)
	}
	return nil
}

// launch runs one attempt of the external program under the trial timeout.
func (o *SweepOrchestrator) launch(ctx context.Context) (driven.RunResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.opts.TrialTimeout)
	defer cancel()

	result, err := o.runner.Run(attemptCtx)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return result, fmt.Errorf("%w: timed out after %s", domain.ErrProgramFailed, o.opts.TrialTimeout)
		}
		return result, fmt.Errorf("%w: %w", domain.ErrProgramFailed, err)
	}
	return result, nil
}

// harvest relocates output artifacts for a passed trial. Harvest problems
// are warned about, not fatal: artifact absence is benign by contract.
func (o *SweepOrchestrator) harvest(ctx context.Context, trial domain.Trial) []string {
	if o.harvester == nil {
		return nil
	}
	artifacts, err := o.harvester.Harvest(ctx, trial)
	if err != nil {
		logger.Warn("harvest %s: %v", trial.Key(), err)
	}
	for _, a := range artifacts {
		logger.Debug("harvested %s", a)
	}
	return artifacts
}

// begin registers the run as active; only one sweep may run at a time.
func (o *SweepOrchestrator) begin(run *domain.SweepRun) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active != nil && o.active.Running {
		return domain.ErrSweepInProgress
	}
	o.active = &driving.SweepStatus{
		RunID:   run.ID,
		Running: true,
		Planned: run.Planned,
	}
	return nil
}

func (o *SweepOrchestrator) setCurrent(trial *domain.Trial) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil {
		o.active.Current = trial
	}
}

func (o *SweepOrchestrator) trialDone(status domain.TrialStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return
	}
	o.active.Completed++
	o.active.Current = nil
	if status == domain.TrialFailed {
		o.active.Failed++
	}
}

func (o *SweepOrchestrator) clearStatus() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = nil
}

// saveRun persists the run summary, best effort.
func (o *SweepOrchestrator) saveRun(ctx context.Context, run *domain.SweepRun) {
	if o.store == nil {
		return
	}
	if err := o.store.SaveRun(ctx, run); err != nil {
		logger.Warn("save run %s: %v", run.ID, err)
	}
}

func (o *SweepOrchestrator) progress(format string, args ...any) {
	if o.opts.Progress != nil {
		o.opts.Progress(format, args...)
	}
}

// sleepCtx pauses for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
