// Package registry implements the model registry coordinator: the
// application service that validates requests, delegates the atomic
// mutations to a RegistryRepository, and reports every operation through
// tracing spans, Prometheus collectors and registry events.
package registry

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	domain "github.com/fkid009/MLflow-study/internal/domain/registry"
	"github.com/fkid009/MLflow-study/internal/log"
	"github.com/fkid009/MLflow-study/internal/metrics"
	"github.com/fkid009/MLflow-study/internal/pubsub"
	"github.com/fkid009/MLflow-study/internal/tracing"
	"github.com/fkid009/MLflow-study/internal/validation"
)

// Coordinator is the entry point for every registry operation.
type Coordinator struct {
	repo      domain.RegistryRepository
	tracer    trace.Tracer
	publisher pubsub.Publisher[domain.Event]
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTracer sets the tracer used for operation spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithPublisher sets where registry events are published after successful mutations.
func WithPublisher(p pubsub.Publisher[domain.Event]) Option {
	return func(c *Coordinator) { c.publisher = p }
}

// NewCoordinator creates a Coordinator over repo. Without options spans go to
// a no-op tracer and no events are published.
func NewCoordinator(repo domain.RegistryRepository, opts ...Option) *Coordinator {
	c := &Coordinator{
		repo:   repo,
		tracer: noop.NewTracerProvider().Tracer("registry"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// observe opens the span for op and returns a finisher that ends it and
// records the operation metric.
func (c *Coordinator) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, func(error)) {
	start := time.Now()
	ctx, span, end := tracing.StartOperation(ctx, c.tracer, tracing.SpanPrefixRegistry+op, attrs...)
	return ctx, span, func(err error) {
		end(err)
		metrics.RecordRegistryOperation(op, resultLabel(err), time.Since(start))
	}
}

func (c *Coordinator) publish(t pubsub.EventType, e domain.Event) {
	if c.publisher != nil {
		c.publisher.Publish(t, e)
	}
}

// resultLabel maps an operation error to its metric result label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return metrics.ResultAlreadyExists
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidAlias),
		errors.Is(err, domain.ErrInvalidStage):
		return metrics.ResultInvalid
	case errors.Is(err, domain.ErrMetricNotFound):
		return metrics.ResultMetricNotFound
	case errors.Is(err, domain.ErrTransientStore):
		return metrics.ResultTransient
	default:
		return metrics.ResultError
	}
}

// CreateRegisteredModel creates a new, empty model family.
// Returns AlreadyExistsError if the name is taken.
func (c *Coordinator) CreateRegisteredModel(ctx context.Context, name, description string) (m *domain.RegisteredModel, err error) {
	ctx, _, finish := c.observe(ctx, "create_registered_model", attribute.String(tracing.AttrModelName, name))
	defer func() { finish(err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"name": "name is required"}}
	}

	m = domain.NewRegisteredModel(name, description)
	if err := c.repo.CreateRegisteredModel(ctx, m); err != nil {
		return nil, err
	}
	log.Info(log.CatRegistry, "Registered model created", "model", name)
	return m, nil
}

// EnsureRegisteredModel creates the model unless it already exists.
// created reports whether this call made it.
func (c *Coordinator) EnsureRegisteredModel(ctx context.Context, name string) (created bool, err error) {
	_, err = c.CreateRegisteredModel(ctx, name, "")
	if errors.Is(err, domain.ErrAlreadyExists) {
		log.Debug(log.CatRegistry, "Registered model already exists", "model", name)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateModelVersion registers a new version in stage None. The repository
// assigns the next version number.
func (c *Coordinator) CreateModelVersion(ctx context.Context, in domain.CreateVersionInput) (mv *domain.ModelVersion, err error) {
	ctx, span, finish := c.observe(ctx, "create_model_version", attribute.String(tracing.AttrModelName, in.Name))
	defer func() { finish(err) }()

	in.Name = strings.TrimSpace(in.Name)
	in.Source = strings.TrimSpace(in.Source)
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, &domain.ValidationError{Fields: verr.Fields()}
	}

	mv = domain.NewModelVersion(in.Name, in.Source, in.RunID, in.Description)
	if err := c.repo.CreateModelVersion(ctx, mv); err != nil {
		return nil, err
	}

	span.AddEvent(tracing.EventVersionAssigned, trace.WithAttributes(attribute.Int(tracing.AttrModelVersion, mv.Version())))
	metrics.RecordVersionCreated(mv.Name())
	c.publish(pubsub.CreatedEvent, domain.VersionCreated(mv))
	log.Info(log.CatRegistry, "Model version created", "model", mv.Name(), "version", mv.Version(), "source", mv.Source())
	return mv, nil
}

// TransitionStage moves a version to stage. With archiveExisting set, a
// promotion into Staging or Production archives the other holders of that
// stage in the same atomic unit; the flag has no effect for None and Archived.
func (c *Coordinator) TransitionStage(ctx context.Context, name string, version int, stage domain.Stage, archiveExisting bool) (t *domain.StageTransition, err error) {
	ctx, span, finish := c.observe(ctx, "transition_stage",
		attribute.String(tracing.AttrModelName, name),
		attribute.Int(tracing.AttrModelVersion, version),
		attribute.String(tracing.AttrModelStage, stage.String()),
	)
	defer func() { finish(err) }()

	if !stage.IsValid() {
		parsed, perr := domain.ParseStage(stage.String())
		if perr != nil {
			return nil, perr
		}
		stage = parsed
	}

	current, err := c.repo.GetModelVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}

	archive := archiveExisting && stage.IsSingletonHeld()
	t, err = c.repo.TransitionStage(ctx, name, version, stage, archive)
	if err != nil {
		return nil, err
	}

	for _, a := range t.Archived {
		span.AddEvent(tracing.EventVersionArchived, trace.WithAttributes(attribute.Int(tracing.AttrModelVersion, a.Version())))
	}
	span.SetAttributes(attribute.Int(tracing.AttrArchived, len(t.Archived)))
	metrics.RecordStageTransition(stage.String(), len(t.Archived))
	c.publish(pubsub.UpdatedEvent, domain.StageTransitioned(current.Stage(), t))
	log.Info(log.CatRegistry, "Stage transitioned",
		"model", name, "version", version, "from", current.Stage(), "to", stage, "archived", len(t.Archived))
	return t, nil
}

// SetAlias binds alias to version, moving it off any other version of the model.
func (c *Coordinator) SetAlias(ctx context.Context, name, alias string, version int) (mv *domain.ModelVersion, err error) {
	ctx, span, finish := c.observe(ctx, "set_alias",
		attribute.String(tracing.AttrModelName, name),
		attribute.String(tracing.AttrModelAlias, alias),
		attribute.Int(tracing.AttrModelVersion, version),
	)
	defer func() { finish(err) }()

	if err := domain.ValidateAlias(alias); err != nil {
		return nil, err
	}

	mv, err = c.repo.SetAlias(ctx, name, alias, version)
	if err != nil {
		return nil, err
	}

	span.AddEvent(tracing.EventAliasRebound)
	c.publish(pubsub.UpdatedEvent, domain.AliasSet(mv, alias))
	log.Info(log.CatRegistry, "Alias set", "model", name, "alias", alias, "version", version)
	return mv, nil
}

// DeleteAlias removes an alias binding. Returns NotFoundError if it is not bound.
func (c *Coordinator) DeleteAlias(ctx context.Context, name, alias string) (err error) {
	ctx, _, finish := c.observe(ctx, "delete_alias",
		attribute.String(tracing.AttrModelName, name),
		attribute.String(tracing.AttrModelAlias, alias),
	)
	defer func() { finish(err) }()

	if err := c.repo.DeleteAlias(ctx, name, alias); err != nil {
		return err
	}
	c.publish(pubsub.DeletedEvent, domain.AliasDeleted(name, alias))
	log.Info(log.CatRegistry, "Alias deleted", "model", name, "alias", alias)
	return nil
}

// GetVersionByAlias resolves alias. The reserved alias "latest" resolves to
// the highest version.
func (c *Coordinator) GetVersionByAlias(ctx context.Context, name, alias string) (mv *domain.ModelVersion, err error) {
	if strings.EqualFold(alias, domain.ReservedAliasLatest) {
		return c.LatestVersion(ctx, name)
	}

	ctx, _, finish := c.observe(ctx, "get_version_by_alias",
		attribute.String(tracing.AttrModelName, name),
		attribute.String(tracing.AttrModelAlias, alias),
	)
	defer func() { finish(err) }()

	return c.repo.GetVersionByAlias(ctx, name, alias)
}

// SearchModelVersions lists every version of name in version-ascending order.
// Each call reads the store afresh.
func (c *Coordinator) SearchModelVersions(ctx context.Context, name string) (versions []*domain.ModelVersion, err error) {
	ctx, _, finish := c.observe(ctx, "search_model_versions", attribute.String(tracing.AttrModelName, name))
	defer func() { finish(err) }()

	versions, err = c.repo.ListModelVersions(ctx, name)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(versions, func(i, j int) bool { return versions[i].Version() < versions[j].Version() })
	return versions, nil
}

// GetModelVersion returns one version.
func (c *Coordinator) GetModelVersion(ctx context.Context, name string, version int) (mv *domain.ModelVersion, err error) {
	ctx, _, finish := c.observe(ctx, "get_model_version",
		attribute.String(tracing.AttrModelName, name),
		attribute.Int(tracing.AttrModelVersion, version),
	)
	defer func() { finish(err) }()

	return c.repo.GetModelVersion(ctx, name, version)
}

// GetRegisteredModel returns one model.
func (c *Coordinator) GetRegisteredModel(ctx context.Context, name string) (m *domain.RegisteredModel, err error) {
	ctx, _, finish := c.observe(ctx, "get_registered_model", attribute.String(tracing.AttrModelName, name))
	defer func() { finish(err) }()

	return c.repo.GetRegisteredModel(ctx, name)
}

// ListRegisteredModels returns every model ordered by name.
func (c *Coordinator) ListRegisteredModels(ctx context.Context) (models []*domain.RegisteredModel, err error) {
	ctx, _, finish := c.observe(ctx, "list_registered_models")
	defer func() { finish(err) }()

	return c.repo.ListRegisteredModels(ctx)
}

// LatestVersion returns the highest version of name. When stages are given
// only versions currently in one of them are considered.
func (c *Coordinator) LatestVersion(ctx context.Context, name string, stages ...domain.Stage) (mv *domain.ModelVersion, err error) {
	ctx, _, finish := c.observe(ctx, "latest_version", attribute.String(tracing.AttrModelName, name))
	defer func() { finish(err) }()

	versions, err := c.repo.ListModelVersions(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if len(stages) > 0 && !containsStage(stages, v.Stage()) {
			continue
		}
		if mv == nil || v.Version() > mv.Version() {
			mv = v
		}
	}
	if mv == nil {
		nf := &domain.NotFoundError{Name: name}
		if len(stages) > 0 {
			nf.Stage = stages[0]
		}
		return nil, nf
	}
	return mv, nil
}

// Resolve looks up the version a models:/ URI refers to.
func (c *Coordinator) Resolve(ctx context.Context, uri string) (*domain.ModelVersion, error) {
	ref, err := domain.ParseModelURI(uri)
	if err != nil {
		return nil, err
	}
	switch {
	case ref.Alias != "":
		return c.GetVersionByAlias(ctx, ref.Name, ref.Alias)
	case ref.Latest:
		return c.LatestVersion(ctx, ref.Name)
	case ref.Stage != "":
		return c.LatestVersion(ctx, ref.Name, ref.Stage)
	default:
		return c.GetModelVersion(ctx, ref.Name, ref.Version)
	}
}

func containsStage(stages []domain.Stage, s domain.Stage) bool {
	for _, st := range stages {
		if st == s {
			return true
		}
	}
	return false
}
