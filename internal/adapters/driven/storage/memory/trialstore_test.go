package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbislab/featsweep/internal/core/domain"
)

func TestTrialStore_RunLifecycle(t *testing.T) {
	store := NewTrialStore()
	ctx := context.Background()

	_, err := store.GetRun(ctx, "run-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	run := &domain.SweepRun{ID: "run-1", Planned: 6, StartedAt: time.Now()}
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 6, got.Planned)

	// Mutating the returned copy must not affect the store.
	got.Planned = 99
	again, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 6, again.Planned)
}

func TestTrialStore_ListRunsOrderAndLimit(t *testing.T) {
	store := NewTrialStore()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, store.SaveRun(ctx, &domain.SweepRun{
			ID: id, StartedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)
}

func TestTrialStore_RecordAndListTrials(t *testing.T) {
	store := NewTrialStore()
	ctx := context.Background()

	// Recorded out of order, listed in sweep order.
	require.NoError(t, store.RecordTrial(ctx, &domain.TrialRecord{
		RunID: "run-1", Ordinal: 2, Detector: domain.DetectorORB, Variant: domain.VariantRain,
		Status: domain.TrialFailed,
	}))
	require.NoError(t, store.RecordTrial(ctx, &domain.TrialRecord{
		RunID: "run-1", Ordinal: 1, Detector: domain.DetectorORB, Variant: domain.VariantClean,
		Status: domain.TrialPassed,
	}))

	trials, err := store.ListTrials(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, trials, 2)
	assert.Equal(t, 1, trials[0].Ordinal)
	assert.Equal(t, 2, trials[1].Ordinal)
}

func TestTrialStore_RecordTrialUpsert(t *testing.T) {
	store := NewTrialStore()
	ctx := context.Background()

	record := domain.TrialRecord{RunID: "run-1", Ordinal: 1, Status: domain.TrialFailed}
	require.NoError(t, store.RecordTrial(ctx, &record))

	record.Status = domain.TrialPassed
	require.NoError(t, store.RecordTrial(ctx, &record))

	trials, err := store.ListTrials(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, trials, 1)
	assert.Equal(t, domain.TrialPassed, trials[0].Status)
}

func TestTrialStore_InvalidInput(t *testing.T) {
	store := NewTrialStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveRun(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.RecordTrial(ctx, &domain.TrialRecord{}), domain.ErrInvalidInput)
}
