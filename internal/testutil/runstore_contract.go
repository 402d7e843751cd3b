package testutil

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
)

// RunStoreFactory returns an empty run store owned by t.
type RunStoreFactory func(t *testing.T) domaintrack.RunStore

// RunRunStoreContract exercises the behavior every RunStore must provide.
func RunRunStoreContract(t *testing.T, newStore RunStoreFactory) {
	t.Run("ExperimentLookup", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		got, err := store.GetExperimentByName(ctx, "absent")
		require.NoError(t, err)
		require.Nil(t, got)

		b := NewBuilder(t, store, "iris-tutorial")
		got, err = store.GetExperimentByName(ctx, "iris-tutorial")
		require.NoError(t, err)
		require.Equal(t, b.Experiment().ID, got.ID)
		require.Equal(t, b.Experiment().ArtifactLocation, got.ArtifactLocation)

		dup := &domaintrack.Experiment{ID: "other", Name: "iris-tutorial", CreatedAt: time.Now()}
		require.Error(t, store.CreateExperiment(ctx, dup))
	})

	t.Run("RunRoundTrip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		NewBuilder(t, store, "exp").
			WithRun("r1", Name("baseline"), Param("C", "0.5"), Tag("stage", "baseline"),
				MetricAt("loss", 0.9, 0), MetricAt("loss", 0.4, 1), Metric("accuracy", 0.8)).
			Build()

		run, err := store.GetRun(ctx, "r1")
		require.NoError(t, err)
		require.Equal(t, "baseline", run.Name)
		require.Equal(t, domaintrack.RunStatusFinished, run.Status)
		require.NotNil(t, run.EndTime)
		require.Equal(t, "0.5", run.Params["C"])
		require.Equal(t, "baseline", run.Tags["stage"])
		require.Equal(t, "baseline", run.Tags[domaintrack.TagRunName])
		require.InDelta(t, 0.4, run.Metrics["loss"], 1e-12, "latest step wins")
		require.InDelta(t, 0.8, run.Metrics["accuracy"], 1e-12)

		history, err := store.GetMetricHistory(ctx, "r1", "loss")
		require.NoError(t, err)
		require.Len(t, history, 2)
		require.Equal(t, int64(0), history[0].Step)
		require.Equal(t, int64(1), history[1].Step)

		_, err = store.GetRun(ctx, "missing")
		require.ErrorIs(t, err, domaintrack.ErrRunNotFound)
	})

	t.Run("CreateRunRequiresExperiment", func(t *testing.T) {
		store := newStore(t)
		err := store.CreateRun(context.Background(), &domaintrack.Run{
			ID: "orphan", ExperimentID: "nope", Status: domaintrack.RunStatusRunning, StartTime: time.Now(),
		})
		require.ErrorIs(t, err, domaintrack.ErrExperimentNotFound)
	})

	t.Run("ParamsAreImmutable", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		NewBuilder(t, store, "exp").WithRun("r1", Status(domaintrack.RunStatusRunning)).Build()

		require.NoError(t, store.LogParam(ctx, "r1", "lr", "0.01"))
		require.NoError(t, store.LogParam(ctx, "r1", "lr", "0.01"), "same value is a no-op")

		err := store.LogParam(ctx, "r1", "lr", "0.1")
		var conflict *domaintrack.ParamConflictError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, "0.01", conflict.Existing)
		require.ErrorIs(t, err, domaintrack.ErrParamConflict)

		require.ErrorIs(t, store.LogParam(ctx, "ghost", "lr", "1"), domaintrack.ErrRunNotFound)
	})

	t.Run("TagsAndStatus", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		NewBuilder(t, store, "exp").WithRun("r1", Status(domaintrack.RunStatusRunning)).Build()

		require.NoError(t, store.SetTag(ctx, "r1", "owner", "alice"))
		require.NoError(t, store.SetTag(ctx, "r1", "owner", "bob"))
		end := time.Now()
		require.NoError(t, store.UpdateRunStatus(ctx, "r1", domaintrack.RunStatusKilled, &end))

		run, err := store.GetRun(ctx, "r1")
		require.NoError(t, err)
		require.Equal(t, "bob", run.Tags["owner"])
		require.Equal(t, domaintrack.RunStatusKilled, run.Status)
		require.WithinDuration(t, end, *run.EndTime, time.Millisecond)

		require.ErrorIs(t, store.UpdateRunStatus(ctx, "ghost", domaintrack.RunStatusFailed, nil), domaintrack.ErrRunNotFound)
		require.ErrorIs(t, store.SetTag(ctx, "ghost", "k", "v"), domaintrack.ErrRunNotFound)
	})

	t.Run("NaNMetricIsUnusable", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		NewBuilder(t, store, "exp").WithRun("r1", Metric("f1", math.NaN())).Build()

		run, err := store.GetRun(ctx, "r1")
		require.NoError(t, err)
		_, ok := run.MetricValue("f1")
		require.False(t, ok)
	})

	t.Run("SearchParentAndChildren", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		b := NewBuilder(t, store, "tuning").WithTuningStudy("parent", "optuna_tuning", 0.71, 0.84, 0.79)
		b.WithRun("other-parent", Name("optuna_tuning"), Tag("stage", "tuning"), Status(domaintrack.RunStatusFailed))
		b.WithRun("unfinished-child", Name("trial"), ChildOf("parent"), Status(domaintrack.RunStatusRunning), Metric(TuningMetric, 0.99))
		b.Build()

		filter, err := domaintrack.ParseFilter("attributes.status = 'FINISHED' and tags.mlflow.runName = 'optuna_tuning' and tags.stage = 'tuning'")
		require.NoError(t, err)
		order, err := domaintrack.ParseOrderBy([]string{"attributes.start_time DESC"})
		require.NoError(t, err)
		parents, err := store.SearchRuns(ctx, domaintrack.SearchQuery{
			ExperimentIDs: []string{b.Experiment().ID},
			Filter:        filter,
			OrderBy:       order,
			MaxResults:    1,
		})
		require.NoError(t, err)
		require.Len(t, parents, 1)
		require.Equal(t, "parent", parents[0].ID)

		childFilter, err := domaintrack.ParseFilter("tags.mlflow.parentRunId = 'parent' and attributes.status = 'FINISHED'")
		require.NoError(t, err)
		byMetric, err := domaintrack.ParseOrderBy([]string{"metrics." + TuningMetric + " DESC"})
		require.NoError(t, err)
		children, err := store.SearchRuns(ctx, domaintrack.SearchQuery{
			ExperimentIDs: []string{b.Experiment().ID},
			Filter:        childFilter,
			OrderBy:       byMetric,
		})
		require.NoError(t, err)
		require.Len(t, children, 3)
		require.InDelta(t, 0.84, children[0].Metrics[TuningMetric], 1e-12)
		require.InDelta(t, 0.71, children[2].Metrics[TuningMetric], 1e-12)

		none, err := store.SearchRuns(ctx, domaintrack.SearchQuery{ExperimentIDs: []string{"unknown"}})
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("SearchDefaultOrderNewestFirst", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		b := NewBuilder(t, store, "exp").WithStandardRuns()
		b.Build()

		runs, err := store.SearchRuns(ctx, domaintrack.SearchQuery{ExperimentIDs: []string{b.Experiment().ID}})
		require.NoError(t, err)
		require.Len(t, runs, 4)
		require.Equal(t, "run-live", runs[0].ID)
		require.Equal(t, "run-old", runs[3].ID)

		filter, err := domaintrack.ParseFilter("metrics.accuracy > 0.8")
		require.NoError(t, err)
		runs, err = store.SearchRuns(ctx, domaintrack.SearchQuery{ExperimentIDs: []string{b.Experiment().ID}, Filter: filter})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		require.Equal(t, "run-mid", runs[0].ID)
	})
}
