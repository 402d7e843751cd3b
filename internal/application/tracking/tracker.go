// Package tracking records experiments and runs for training code.
//
// A Tracker is the explicit tracking context: callers pass the experiment and
// run handles around instead of relying on a process-wide "current run".
package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fkid009/MLflow-study/internal/artifacts"
	"github.com/fkid009/MLflow-study/internal/cachemanager"
	domain "github.com/fkid009/MLflow-study/internal/domain/tracking"
	"github.com/fkid009/MLflow-study/internal/log"
	"github.com/fkid009/MLflow-study/internal/tracing"
)

const experimentCacheName = "experiments"

// RunOptions configures StartRun.
type RunOptions struct {
	Name string
	Tags map[string]string
	// ParentRunID nests the run under an existing run of the same experiment.
	ParentRunID string
}

// Tracker creates experiments and runs against a RunStore.
type Tracker struct {
	store       domain.RunStore
	artifacts   *artifacts.LocalStore
	experiments *cachemanager.ReadThroughCache[string, *domain.Experiment, string]
	cacheTTL    time.Duration
	tracer      trace.Tracer
}

// Option configures a Tracker.
type Option func(*trackerOptions)

type trackerOptions struct {
	cacheTTL time.Duration
	tracer   trace.Tracer
}

// WithExperimentCacheTTL sets how long experiment lookups by name are
// cached. Zero disables the cache.
func WithExperimentCacheTTL(ttl time.Duration) Option {
	return func(o *trackerOptions) { o.cacheTTL = ttl }
}

// WithTracer sets the tracer used for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *trackerOptions) {
		if t != nil {
			o.tracer = t
		}
	}
}

// NewTracker creates a Tracker writing records to store and files to arts.
func NewTracker(store domain.RunStore, arts *artifacts.LocalStore, opts ...Option) *Tracker {
	o := trackerOptions{
		cacheTTL: cachemanager.DefaultExpiration,
		tracer:   noop.NewTracerProvider().Tracer("tracking"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cache := cachemanager.NewInMemoryCacheManager[string, *domain.Experiment](
		experimentCacheName, o.cacheTTL, cachemanager.DefaultCleanupInterval)
	lookup := cachemanager.NewReadThroughCache(
		cachemanager.CacheManager[string, *domain.Experiment](cache),
		store.GetExperimentByName,
	).WithCacheable(func(exp *domain.Experiment) bool { return exp != nil }).
		WithBypass(o.cacheTTL == 0)

	return &Tracker{
		store:       store,
		artifacts:   arts,
		experiments: lookup,
		cacheTTL:    o.cacheTTL,
		tracer:      o.tracer,
	}
}

// Store returns the underlying run store.
func (t *Tracker) Store() domain.RunStore { return t.store }

// Artifacts returns the artifact store runs write into.
func (t *Tracker) Artifacts() *artifacts.LocalStore { return t.artifacts }

// SetupExperiment returns the experiment called name, creating it first if
// it does not exist.
func (t *Tracker) SetupExperiment(ctx context.Context, name string) (exp *domain.Experiment, err error) {
	ctx, _, finish := tracing.StartOperation(ctx, t.tracer, tracing.SpanPrefixTracking+"setup_experiment",
		attribute.String(tracing.AttrExperimentName, name))
	defer func() { finish(err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("experiment %w", domain.ErrEmptyName)
	}

	exp, err = t.lookup(ctx, name)
	if err != nil || exp != nil {
		return exp, err
	}

	id := uuid.NewString()
	exp = &domain.Experiment{
		ID:               id,
		Name:             name,
		ArtifactLocation: t.artifacts.ExperimentURI(id),
		CreatedAt:        time.Now(),
	}
	if err := t.store.CreateExperiment(ctx, exp); err != nil {
		// Lost a create race; the other writer's experiment wins.
		if existing, lerr := t.store.GetExperimentByName(ctx, name); lerr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create experiment %q: %w", name, err)
	}

	log.Info(log.CatTracking, "Experiment created", "experiment", name, "id", id)
	return exp, nil
}

// GetExperiment returns the experiment called name or ExperimentNotFoundError.
func (t *Tracker) GetExperiment(ctx context.Context, name string) (*domain.Experiment, error) {
	exp, err := t.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, &domain.ExperimentNotFoundError{Name: name}
	}
	return exp, nil
}

func (t *Tracker) lookup(ctx context.Context, name string) (*domain.Experiment, error) {
	exp, err := t.experiments.Get(ctx, name, name, t.cacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to look up experiment %q: %w", name, err)
	}
	return exp, nil
}

// StartRun creates a RUNNING run in exp.
func (t *Tracker) StartRun(ctx context.Context, exp *domain.Experiment, opts RunOptions) (r *ActiveRun, err error) {
	ctx, span, finish := tracing.StartOperation(ctx, t.tracer, tracing.SpanPrefixTracking+"start_run",
		attribute.String(tracing.AttrExperimentName, exp.Name))
	defer func() { finish(err) }()

	tags := make(map[string]string, len(opts.Tags)+2)
	for k, v := range opts.Tags {
		tags[k] = v
	}
	if opts.Name != "" {
		tags[domain.TagRunName] = opts.Name
	}
	if opts.ParentRunID != "" {
		parent, err := t.store.GetRun(ctx, opts.ParentRunID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent run: %w", err)
		}
		if parent.ExperimentID != exp.ID {
			return nil, fmt.Errorf("parent run %s belongs to another experiment", parent.ID)
		}
		tags[domain.TagParentRunID] = parent.ID
		span.SetAttributes(attribute.String(tracing.AttrParentRunID, parent.ID))
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	run := &domain.Run{
		ID:           id,
		ExperimentID: exp.ID,
		Name:         opts.Name,
		Status:       domain.RunStatusRunning,
		StartTime:    time.Now(),
		ArtifactURI:  t.artifacts.RunRoot(exp.ID, id),
		Params:       map[string]string{},
		Metrics:      map[string]float64{},
		Tags:         tags,
	}
	if err := t.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	span.SetAttributes(attribute.String(tracing.AttrRunID, id))

	log.Info(log.CatTracking, "Run started", "experiment", exp.Name, "run", id, "name", opts.Name, "parent", opts.ParentRunID)
	return &ActiveRun{tracker: t, run: run}, nil
}

// WithRun starts a run, calls fn, and ends the run FINISHED when fn returns
// nil or FAILED otherwise. fn's error is returned.
func (t *Tracker) WithRun(ctx context.Context, exp *domain.Experiment, opts RunOptions, fn func(ctx context.Context, run *ActiveRun) error) error {
	run, err := t.StartRun(ctx, exp, opts)
	if err != nil {
		return err
	}

	fnErr := fn(ctx, run)
	status := domain.RunStatusFinished
	if fnErr != nil {
		status = domain.RunStatusFailed
	}
	if err := run.End(ctx, status); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

// LatestRun returns the most recently started run of the named experiment.
func (t *Tracker) LatestRun(ctx context.Context, experiment string) (*domain.Run, error) {
	exp, err := t.GetExperiment(ctx, experiment)
	if err != nil {
		return nil, err
	}
	runs, err := t.store.SearchRuns(ctx, domain.SearchQuery{
		ExperimentIDs: []string{exp.ID},
		OrderBy:       []domain.OrderTerm{{Entity: domain.EntityAttribute, Key: "start_time", Desc: true}},
		MaxResults:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("experiment %q has no runs: %w", experiment, domain.ErrRunNotFound)
	}
	return runs[0], nil
}

// SearchRuns runs a filter-string query over the named experiment.
func (t *Tracker) SearchRuns(ctx context.Context, experiment, filter string, orderBy []string, maxResults int) ([]*domain.Run, error) {
	exp, err := t.GetExperiment(ctx, experiment)
	if err != nil {
		return nil, err
	}
	f, err := domain.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	order, err := domain.ParseOrderBy(orderBy)
	if err != nil {
		return nil, err
	}
	return t.store.SearchRuns(ctx, domain.SearchQuery{
		ExperimentIDs: []string{exp.ID},
		Filter:        f,
		OrderBy:       order,
		MaxResults:    maxResults,
	})
}
