// Package testutil provides fixtures and shared contract suites for tests
// of registry and tracking stores.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
)

// Builder accumulates runs for one experiment and inserts them in order.
type Builder struct {
	t          *testing.T
	store      domaintrack.RunStore
	experiment *domaintrack.Experiment
	runs       []runData
}

// NewBuilder creates a builder that writes into store under a new experiment.
func NewBuilder(t *testing.T, store domaintrack.RunStore, experimentName string) *Builder {
	t.Helper()
	exp := &domaintrack.Experiment{
		ID:               "exp-" + experimentName,
		Name:             experimentName,
		ArtifactLocation: "file:///tmp/mlruns/" + experimentName,
		CreatedAt:        time.Now(),
	}
	require.NoError(t, store.CreateExperiment(context.Background(), exp))
	return &Builder{t: t, store: store, experiment: exp}
}

// Experiment returns the experiment the builder writes into.
func (b *Builder) Experiment() *domaintrack.Experiment {
	return b.experiment
}

// WithRun adds a run with optional configuration.
func (b *Builder) WithRun(id string, opts ...RunOption) *Builder {
	run := defaultRun(id)
	for _, opt := range opts {
		opt(&run)
	}
	b.runs = append(b.runs, run)
	return b
}

// Build inserts all accumulated runs. Parents must be added before children.
func (b *Builder) Build() {
	b.t.Helper()
	ctx := context.Background()
	for _, rd := range b.runs {
		tags := map[string]string{domaintrack.TagRunName: rd.name}
		for k, v := range rd.tags {
			tags[k] = v
		}
		if rd.parentID != "" {
			tags[domaintrack.TagParentRunID] = rd.parentID
		}

		run := &domaintrack.Run{
			ID:           rd.id,
			ExperimentID: b.experiment.ID,
			Name:         rd.name,
			Status:       rd.status,
			StartTime:    rd.startTime,
			ArtifactURI:  b.experiment.ArtifactLocation + "/" + rd.id + "/artifacts",
			Params:       rd.params,
			Tags:         tags,
		}
		if rd.status.IsTerminal() {
			end := rd.startTime.Add(time.Second)
			run.EndTime = &end
		}
		require.NoError(b.t, b.store.CreateRun(ctx, run))
		for _, m := range rd.metrics {
			require.NoError(b.t, b.store.LogMetric(ctx, rd.id, m))
		}
	}
}
