package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbislab/featsweep/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_CreatesSchema(t *testing.T) {
	store := newTestStore(t)
	assert.NotEmpty(t, store.Path())

	// Migrations are idempotent: reopening the same directory works.
	again, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestTrialStore_RunRoundTrip(t *testing.T) {
	store := newTestStore(t)
	trials := store.TrialStore()
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Millisecond)
	run := &domain.SweepRun{
		ID:         "run-1",
		ResultsDir: "results",
		Planned:    15,
		StartedAt:  started,
	}
	require.NoError(t, trials.SaveRun(ctx, run))

	// Update in place on completion.
	run.Passed = 13
	run.Failed = 2
	run.EndedAt = started.Add(time.Hour)
	require.NoError(t, trials.SaveRun(ctx, run))

	got, err := trials.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 15, got.Planned)
	assert.Equal(t, 13, got.Passed)
	assert.Equal(t, 2, got.Failed)
	assert.True(t, got.StartedAt.Equal(started))
	assert.True(t, got.EndedAt.Equal(started.Add(time.Hour)))
}

func TestTrialStore_GetRun_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.TrialStore().GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTrialStore_SaveRun_InvalidInput(t *testing.T) {
	store := newTestStore(t)
	assert.ErrorIs(t, store.TrialStore().SaveRun(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.TrialStore().SaveRun(context.Background(), &domain.SweepRun{}), domain.ErrInvalidInput)
}

func TestTrialStore_ListRuns_MostRecentFirst(t *testing.T) {
	store := newTestStore(t)
	trials := store.TrialStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, trials.SaveRun(ctx, &domain.SweepRun{
			ID:        id,
			Planned:   1,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := trials.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)
}

func TestTrialStore_TrialRoundTrip(t *testing.T) {
	store := newTestStore(t)
	trials := store.TrialStore()
	ctx := context.Background()

	require.NoError(t, trials.SaveRun(ctx, &domain.SweepRun{
		ID: "run-1", Planned: 2, StartedAt: time.Now(),
	}))

	started := time.Now().UTC().Truncate(time.Millisecond)
	passed := &domain.TrialRecord{
		RunID:     "run-1",
		Ordinal:   1,
		Detector:  domain.DetectorORB,
		Variant:   domain.VariantClean,
		Status:    domain.TrialPassed,
		Attempts:  1,
		ExitCode:  0,
		Artifacts: []string{"tracks_ORB_clean.json", "track_longevity_ORB_clean.png"},
		StartedAt: started,
		EndedAt:   started.Add(90 * time.Second),
	}
	failed := &domain.TrialRecord{
		RunID:     "run-1",
		Ordinal:   2,
		Detector:  domain.DetectorORB,
		Variant:   domain.VariantRain,
		Status:    domain.TrialFailed,
		Attempts:  2,
		ExitCode:  1,
		Error:     "external program failed: exit status 1",
		StartedAt: started.Add(2 * time.Minute),
		EndedAt:   started.Add(3 * time.Minute),
	}
	require.NoError(t, trials.RecordTrial(ctx, passed))
	require.NoError(t, trials.RecordTrial(ctx, failed))

	got, err := trials.ListTrials(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.TrialPassed, got[0].Status)
	assert.Equal(t, passed.Artifacts, got[0].Artifacts)
	assert.True(t, got[0].StartedAt.Equal(started))

	assert.Equal(t, domain.TrialFailed, got[1].Status)
	assert.Equal(t, 2, got[1].Attempts)
	assert.Equal(t, 1, got[1].ExitCode)
	assert.Contains(t, got[1].Error, "exit status 1")
	assert.Empty(t, got[1].Artifacts)
}

func TestTrialStore_RecordTrial_Upsert(t *testing.T) {
	store := newTestStore(t)
	trials := store.TrialStore()
	ctx := context.Background()

	require.NoError(t, trials.SaveRun(ctx, &domain.SweepRun{
		ID: "run-1", Planned: 1, StartedAt: time.Now(),
	}))

	record := &domain.TrialRecord{
		RunID: "run-1", Ordinal: 1,
		Detector: domain.DetectorSIFT, Variant: domain.VariantFog,
		Status: domain.TrialFailed, Attempts: 1, ExitCode: 1,
		StartedAt: time.Now(), EndedAt: time.Now(),
	}
	require.NoError(t, trials.RecordTrial(ctx, record))

	record.Status = domain.TrialPassed
	record.ExitCode = 0
	record.Attempts = 2
	require.NoError(t, trials.RecordTrial(ctx, record))

	got, err := trials.ListTrials(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.TrialPassed, got[0].Status)
	assert.Equal(t, 2, got[0].Attempts)
}
