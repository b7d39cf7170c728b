// Package memory provides in-memory driven-port implementations, used
// when persistence is disabled and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/orbislab/featsweep/internal/core/domain"
	"github.com/orbislab/featsweep/internal/core/ports/driven"
)

// Ensure TrialStore implements the interface.
var _ driven.TrialStore = (*TrialStore)(nil)

// TrialStore is an in-memory implementation of driven.TrialStore.
type TrialStore struct {
	mu     sync.RWMutex
	runs   map[string]domain.SweepRun
	trials map[string][]domain.TrialRecord
}

// NewTrialStore creates a new in-memory trial store.
func NewTrialStore() *TrialStore {
	return &TrialStore{
		runs:   make(map[string]domain.SweepRun),
		trials: make(map[string][]domain.TrialRecord),
	}
}

// SaveRun stores or updates a sweep run record.
func (s *TrialStore) SaveRun(_ context.Context, run *domain.SweepRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

// GetRun retrieves a run by ID.
func (s *TrialStore) GetRun(_ context.Context, runID string) (*domain.SweepRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns runs ordered most recent first, at most limit.
func (s *TrialStore) ListRuns(_ context.Context, limit int) ([]domain.SweepRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.SweepRun, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// RecordTrial persists one trial outcome, replacing any previous record
// with the same ordinal.
func (s *TrialStore) RecordTrial(_ context.Context, record *domain.TrialRecord) error {
	if record == nil || record.RunID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.trials[record.RunID]
	for i := range records {
		if records[i].Ordinal == record.Ordinal {
			records[i] = *record
			return nil
		}
	}
	s.trials[record.RunID] = append(records, *record)
	return nil
}

// ListTrials returns a run's trials in sweep order.
func (s *TrialStore) ListTrials(_ context.Context, runID string) ([]domain.TrialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.trials[runID]
	out := make([]domain.TrialRecord, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}
