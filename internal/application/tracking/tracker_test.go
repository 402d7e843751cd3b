package tracking

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fkid009/MLflow-study/internal/artifacts"
	domain "github.com/fkid009/MLflow-study/internal/domain/tracking"
	"github.com/fkid009/MLflow-study/internal/infrastructure/memory"
	"github.com/fkid009/MLflow-study/internal/metrics"
	"github.com/fkid009/MLflow-study/internal/mocks"
)

func newTracker(t *testing.T, opts ...Option) (*Tracker, *memory.RunStore) {
	t.Helper()
	store := memory.NewRunStore()
	arts, err := artifacts.NewLocalStore(filepath.Join(t.TempDir(), "mlruns"), store)
	require.NoError(t, err)
	return NewTracker(store, arts, opts...), store
}

func TestTracker_SetupExperiment_GetOrCreate(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	first, err := tr.SetupExperiment(ctx, "iris-tutorial")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, tr.Artifacts().ExperimentURI(first.ID), first.ArtifactLocation)

	again, err := tr.SetupExperiment(ctx, "iris-tutorial")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	_, err = tr.SetupExperiment(ctx, "  ")
	require.ErrorIs(t, err, domain.ErrEmptyName)
}

func TestTracker_GetExperiment_NotFound(t *testing.T) {
	tr, _ := newTracker(t)
	_, err := tr.GetExperiment(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrExperimentNotFound)
}

func TestTracker_ExperimentLookupsAreCached(t *testing.T) {
	store := mocks.NewMockRunStore(t)
	arts, err := artifacts.NewLocalStore(t.TempDir(), store)
	require.NoError(t, err)

	exp := &domain.Experiment{ID: "e1", Name: "iris"}
	store.EXPECT().GetExperimentByName(mock.Anything, "iris").Return(exp, nil).Once()

	tr := NewTracker(store, arts, WithExperimentCacheTTL(time.Minute))
	for i := 0; i < 3; i++ {
		got, err := tr.GetExperiment(context.Background(), "iris")
		require.NoError(t, err)
		require.Equal(t, "e1", got.ID)
	}
}

func TestTracker_MissingExperimentIsNotCached(t *testing.T) {
	store := mocks.NewMockRunStore(t)
	arts, err := artifacts.NewLocalStore(t.TempDir(), store)
	require.NoError(t, err)

	store.EXPECT().GetExperimentByName(mock.Anything, "iris").Return(nil, nil).Once()
	store.EXPECT().CreateExperiment(mock.Anything, mock.Anything).Return(nil).Once()
	store.EXPECT().GetExperimentByName(mock.Anything, "iris").Return(&domain.Experiment{ID: "e1", Name: "iris"}, nil).Once()

	tr := NewTracker(store, arts)
	created, err := tr.SetupExperiment(context.Background(), "iris")
	require.NoError(t, err)
	require.Equal(t, "iris", created.Name)

	got, err := tr.GetExperiment(context.Background(), "iris")
	require.NoError(t, err)
	require.Equal(t, "e1", got.ID)
}

func TestTracker_CacheDisabled(t *testing.T) {
	store := mocks.NewMockRunStore(t)
	arts, err := artifacts.NewLocalStore(t.TempDir(), store)
	require.NoError(t, err)
	store.EXPECT().GetExperimentByName(mock.Anything, "iris").Return(&domain.Experiment{ID: "e1"}, nil).Times(2)

	tr := NewTracker(store, arts, WithExperimentCacheTTL(0))
	for i := 0; i < 2; i++ {
		_, err := tr.GetExperiment(context.Background(), "iris")
		require.NoError(t, err)
	}
}

func TestTracker_StartRun(t *testing.T) {
	tr, store := newTracker(t)
	ctx := context.Background()
	exp, err := tr.SetupExperiment(ctx, "iris-tutorial")
	require.NoError(t, err)

	run, err := tr.StartRun(ctx, exp, RunOptions{Name: "baseline", Tags: map[string]string{"stage": "baseline"}})
	require.NoError(t, err)
	require.Len(t, run.ID(), 32)
	require.Equal(t, exp.ID, run.ExperimentID())

	got, err := store.GetRun(ctx, run.ID())
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusRunning, got.Status)
	require.Equal(t, "baseline", got.Tags[domain.TagRunName])
	require.Equal(t, "baseline", got.Tags["stage"])
	require.Equal(t, tr.Artifacts().RunRoot(exp.ID, run.ID()), got.ArtifactURI)
}

func TestTracker_StartRun_Nested(t *testing.T) {
	tr, store := newTracker(t)
	ctx := context.Background()
	exp, err := tr.SetupExperiment(ctx, "iris-tuning")
	require.NoError(t, err)

	parent, err := tr.StartRun(ctx, exp, RunOptions{Name: "optuna_tuning"})
	require.NoError(t, err)
	child, err := tr.StartRun(ctx, exp, RunOptions{Name: "trial-0", ParentRunID: parent.ID()})
	require.NoError(t, err)

	got, err := store.GetRun(ctx, child.ID())
	require.NoError(t, err)
	require.Equal(t, parent.ID(), got.ParentRunID())

	_, err = tr.StartRun(ctx, exp, RunOptions{ParentRunID: "missing"})
	require.ErrorIs(t, err, domain.ErrRunNotFound)

	other, err := tr.SetupExperiment(ctx, "other")
	require.NoError(t, err)
	_, err = tr.StartRun(ctx, other, RunOptions{ParentRunID: parent.ID()})
	require.ErrorContains(t, err, "another experiment")
}

func TestActiveRun_Logging(t *testing.T) {
	tr, store := newTracker(t)
	ctx := context.Background()
	exp, err := tr.SetupExperiment(ctx, "iris-tutorial")
	require.NoError(t, err)
	run, err := tr.StartRun(ctx, exp, RunOptions{Name: "logreg"})
	require.NoError(t, err)

	require.NoError(t, run.LogParams(ctx, map[string]string{"C": "1.0", "penalty": "l2"}))
	require.NoError(t, run.LogParam(ctx, "C", "1.0"), "re-logging the same value is allowed")
	require.ErrorIs(t, run.LogParam(ctx, "C", "2.0"), domain.ErrParamConflict)

	for step, loss := range []float64{0.9, 0.5, 0.3} {
		require.NoError(t, run.LogMetric(ctx, "loss", loss, int64(step)))
	}
	require.NoError(t, run.LogMetrics(ctx, map[string]float64{"accuracy": 0.96, "val_f1_macro": 0.95}, 0))
	require.NoError(t, run.SetTag(ctx, "model_type", "logreg"))
	require.ErrorIs(t, run.SetTag(ctx, "", "x"), domain.ErrEmptyName)

	got, err := run.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "l2", got.Params["penalty"])
	require.Equal(t, 0.3, got.Metrics["loss"])
	require.Equal(t, 0.96, got.Metrics["accuracy"])
	require.Equal(t, "logreg", got.Tags["model_type"])

	history, err := store.GetMetricHistory(ctx, run.ID(), "loss")
	require.NoError(t, err)
	require.Len(t, history, 3)
}

func TestActiveRun_Artifacts(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()
	exp, err := tr.SetupExperiment(ctx, "iris-tutorial")
	require.NoError(t, err)
	run, err := tr.StartRun(ctx, exp, RunOptions{})
	require.NoError(t, err)

	uri, err := run.LogText("hello", "notes/readme.txt")
	require.NoError(t, err)
	require.Equal(t, run.ArtifactURI("notes/readme.txt"), uri)

	_, err = run.LogDict(map[string]int{"n_estimators": 100}, "params.json")
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "plot.png")
	require.NoError(t, os.WriteFile(src, []byte("png"), 0o644))
	uri, err = run.LogFile(src, "plots")
	require.NoError(t, err)
	ok, err := tr.Artifacts().Exists(ctx, uri)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = tr.Artifacts().Exists(ctx, run.ModelURI("params.json"))
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, "runs:/"+run.ID()+"/model", run.ModelURI("model"))
}

func TestActiveRun_End(t *testing.T) {
	tr, store := newTracker(t)
	ctx := context.Background()
	exp, err := tr.SetupExperiment(ctx, "iris-tutorial")
	require.NoError(t, err)
	run, err := tr.StartRun(ctx, exp, RunOptions{})
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.RunsLogged.WithLabelValues("FINISHED"))

	require.Error(t, run.End(ctx, domain.RunStatusRunning))
	require.NoError(t, run.End(ctx, domain.RunStatusFinished))
	require.ErrorIs(t, run.End(ctx, domain.RunStatusFinished), domain.ErrRunNotActive)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RunsLogged.WithLabelValues("FINISHED")))

	got, err := store.GetRun(ctx, run.ID())
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusFinished, got.Status)
	require.NotNil(t, got.EndTime)

	require.ErrorIs(t, run.LogMetric(ctx, "loss", 1, 0), domain.ErrRunNotActive)
	require.ErrorIs(t, run.LogParam(ctx, "k", "v"), domain.ErrRunNotActive)
	_, err = run.LogText("x", "x.txt")
	require.ErrorIs(t, err, domain.ErrRunNotActive)
}

func TestTracker_WithRun(t *testing.T) {
	tr, store := newTracker(t)
	ctx := context.Background()
	exp, err := tr.SetupExperiment(ctx, "iris-tutorial")
	require.NoError(t, err)

	var okID string
	require.NoError(t, tr.WithRun(ctx, exp, RunOptions{Name: "ok"}, func(ctx context.Context, run *ActiveRun) error {
		okID = run.ID()
		return run.LogMetric(ctx, "accuracy", 0.9, 0)
	}))
	got, err := store.GetRun(ctx, okID)
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusFinished, got.Status)

	boom := errors.New("training diverged")
	var failedID string
	err = tr.WithRun(ctx, exp, RunOptions{Name: "bad"}, func(ctx context.Context, run *ActiveRun) error {
		failedID = run.ID()
		return boom
	})
	require.ErrorIs(t, err, boom)
	got, err = store.GetRun(ctx, failedID)
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusFailed, got.Status)
}

func TestTracker_LatestRunAndSearch(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()
	exp, err := tr.SetupExperiment(ctx, "iris-tutorial")
	require.NoError(t, err)

	_, err = tr.LatestRun(ctx, "iris-tutorial")
	require.ErrorIs(t, err, domain.ErrRunNotFound)

	var last string
	for _, acc := range []float64{0.7, 0.9, 0.8} {
		run, err := tr.StartRun(ctx, exp, RunOptions{Name: "run"})
		require.NoError(t, err)
		require.NoError(t, run.LogMetric(ctx, "accuracy", acc, 0))
		require.NoError(t, run.End(ctx, domain.RunStatusFinished))
		last = run.ID()
		time.Sleep(2 * time.Millisecond)
	}

	latest, err := tr.LatestRun(ctx, "iris-tutorial")
	require.NoError(t, err)
	require.Equal(t, last, latest.ID)

	runs, err := tr.SearchRuns(ctx, "iris-tutorial", "metrics.accuracy > 0.75", []string{"metrics.accuracy DESC"}, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, 0.9, runs[0].Metrics["accuracy"])

	_, err = tr.SearchRuns(ctx, "iris-tutorial", "metrics.accuracy >", nil, 0)
	require.ErrorIs(t, err, domain.ErrInvalidFilter)

	_, err = tr.LatestRun(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrExperimentNotFound)
}
