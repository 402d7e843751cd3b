package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/fkid009/MLflow-study/internal/domain/registry"
	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
	"github.com/fkid009/MLflow-study/internal/infrastructure/memory"
	"github.com/fkid009/MLflow-study/internal/testutil"
)

type bestTrialFixture struct {
	runs      *memory.RunStore
	coord     *Coordinator
	registrar *BestTrialRegistrar
}

func newBestTrialFixture(t *testing.T) *bestTrialFixture {
	t.Helper()
	runs := memory.NewRunStore()
	coord := NewCoordinator(memory.NewRegistryRepository())
	return &bestTrialFixture{runs: runs, coord: coord, registrar: NewBestTrialRegistrar(runs, coord)}
}

func baseRequest() BestTrialRequest {
	return BestTrialRequest{
		Experiment:    "iris-tuning",
		ParentRunName: "optuna_tuning",
		ParentTags:    map[string]string{"stage": "tuning"},
		MetricKey:     testutil.TuningMetric,
		ModelName:     "iris-classifier",
	}
}

func TestBestTrialRegistrar_RegistersBestChild(t *testing.T) {
	f := newBestTrialFixture(t)
	testutil.NewBuilder(t, f.runs, "iris-tuning").
		WithTuningStudy("parent", "optuna_tuning", 0.81, 0.93, 0.88).
		Build()

	res, err := f.registrar.Register(context.Background(), baseRequest())
	require.NoError(t, err)

	require.Equal(t, "parent", res.ParentRun.ID)
	require.Equal(t, "parent-trial-b", res.BestRun.ID)
	require.InDelta(t, 0.93, res.MetricValue, 1e-12)
	require.True(t, res.ModelCreated)
	require.Nil(t, res.Transition)

	mv := res.Version
	require.Equal(t, 1, mv.Version())
	require.Equal(t, domain.StageNone, mv.Stage())
	require.Equal(t, "parent-trial-b", mv.RunID())
	require.Equal(t, res.BestRun.ArtifactURI+"/model", mv.Source())
	require.Equal(t, "Registered from best trial (metric=val_f1_macro) under parent parent", mv.Description())
}

func TestBestTrialRegistrar_PromotesAndAliases(t *testing.T) {
	f := newBestTrialFixture(t)
	testutil.NewBuilder(t, f.runs, "iris-tuning").
		WithTuningStudy("parent", "optuna_tuning", 0.7, 0.9).
		Build()
	ctx := context.Background()

	req := baseRequest()
	req.Stage = domain.StageProduction
	req.ArchiveExisting = true
	req.Alias = "champion"

	first, err := f.registrar.Register(ctx, req)
	require.NoError(t, err)
	require.Equal(t, domain.StageProduction, first.Version.Stage())
	require.Equal(t, []string{"champion"}, first.Version.Aliases())
	require.Equal(t, "champion", first.Alias)

	second, err := f.registrar.Register(ctx, req)
	require.NoError(t, err)
	require.False(t, second.ModelCreated)
	require.Equal(t, 2, second.Version.Version())
	require.Len(t, second.Transition.Archived, 1)
	require.Equal(t, 1, second.Transition.Archived[0].Version())

	v1, err := f.coord.GetModelVersion(ctx, req.ModelName, 1)
	require.NoError(t, err)
	require.Equal(t, domain.StageArchived, v1.Stage())
	require.Empty(t, v1.Aliases(), "alias follows the newest registration")
}

func TestBestTrialRegistrar_PicksLatestParent(t *testing.T) {
	f := newBestTrialFixture(t)
	testutil.NewBuilder(t, f.runs, "iris-tuning").
		WithTuningStudy("old", "optuna_tuning", 0.99).
		WithRun("new", testutil.Name("optuna_tuning"), testutil.Tag("stage", "tuning"), testutil.StartedAt(time.Now())).
		WithRun("new-trial", testutil.ChildOf("new"), testutil.Metric(testutil.TuningMetric, 0.5)).
		WithRun("new-running", testutil.ChildOf("new"), testutil.Status(domaintrack.RunStatusRunning), testutil.Metric(testutil.TuningMetric, 0.99)).
		Build()

	res, err := f.registrar.Register(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Equal(t, "new", res.ParentRun.ID)
	require.Equal(t, "new-trial", res.BestRun.ID, "unfinished children are not candidates")
}

func TestBestTrialRegistrar_Errors(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		f := newBestTrialFixture(t)
		_, err := f.registrar.Register(context.Background(), BestTrialRequest{Alias: "latest", Stage: "Shadow"})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		for _, field := range []string{"experiment", "parent_run_name", "metric", "model", "stage", "alias"} {
			require.Contains(t, verr.Fields, field)
		}
	})

	t.Run("unknown experiment", func(t *testing.T) {
		f := newBestTrialFixture(t)
		_, err := f.registrar.Register(context.Background(), baseRequest())
		require.ErrorIs(t, err, domaintrack.ErrExperimentNotFound)
	})

	t.Run("no parent", func(t *testing.T) {
		f := newBestTrialFixture(t)
		testutil.NewBuilder(t, f.runs, "iris-tuning").WithStandardRuns().Build()
		_, err := f.registrar.Register(context.Background(), baseRequest())
		require.ErrorIs(t, err, ErrParentRunNotFound)
	})

	t.Run("parent tag mismatch", func(t *testing.T) {
		f := newBestTrialFixture(t)
		testutil.NewBuilder(t, f.runs, "iris-tuning").WithTuningStudy("parent", "optuna_tuning", 0.9).Build()
		req := baseRequest()
		req.ParentTags = map[string]string{"stage": "final"}
		_, err := f.registrar.Register(context.Background(), req)
		require.ErrorIs(t, err, ErrParentRunNotFound)
	})

	t.Run("no children with metric", func(t *testing.T) {
		f := newBestTrialFixture(t)
		testutil.NewBuilder(t, f.runs, "iris-tuning").WithTuningStudy("parent", "optuna_tuning").Build()
		_, err := f.registrar.Register(context.Background(), baseRequest())
		require.ErrorIs(t, err, domain.ErrMetricNotFound)

		_, err = f.coord.GetRegisteredModel(context.Background(), "iris-classifier")
		require.True(t, errors.Is(err, domain.ErrNotFound), "nothing is registered when selection fails")
	})
}
