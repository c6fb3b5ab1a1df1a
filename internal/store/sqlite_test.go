package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omics-group/dynamics-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "observations.csv")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusFitting))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFitting, got.Status)
	assert.Equal(t, "observations.csv", got.Input)
	assert.Nil(t, got.Result)

	result := &model.RunResult{
		ConditionsRequested: 3,
		ConditionsFitted:    2,
		ConditionsFailed:    []model.ConditionID{"heat"},
		ParametersTotal:     48,
		ParametersConverged: 47,
		Estimates:           48,
		DurationMS:          1200,
	}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, result))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, result, got.Result)
}

func TestSQLiteStore_UpdateMissingRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	err := s.UpdateRunStatus(ctx, "no-such-run", model.RunStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = s.UpdateRunResult(ctx, "no-such-run", &model.RunResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "a.csv")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "b.csv")
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunStatus(ctx, a.ID, model.RunStatusComplete))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, a.ID, complete[0].ID)

	byInput, err := s.ListRuns(ctx, RunFilter{Input: "b.csv"})
	require.NoError(t, err)
	require.Len(t, byInput, 1)
	assert.Equal(t, "b.csv", byInput[0].Input)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
