package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/fkid009/MLflow-study/internal/domain/registry"
	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
	"github.com/fkid009/MLflow-study/internal/log"
	"github.com/fkid009/MLflow-study/internal/tracing"
)

// DefaultArtifactPath is the run-relative path models are logged under.
const DefaultArtifactPath = "model"

// ErrParentRunNotFound is returned when no finished parent run matches a BestTrialRequest.
var ErrParentRunNotFound = errors.New("parent run not found")

// BestTrialRequest describes which tuning study to register from.
type BestTrialRequest struct {
	Experiment    string
	ParentRunName string
	// ParentTags further restrict the parent run, e.g. stage=tuning.
	ParentTags map[string]string
	MetricKey  string
	ModelName  string
	// ArtifactPath defaults to DefaultArtifactPath.
	ArtifactPath string

	// Stage, when set, promotes the new version after registration.
	Stage           domain.Stage
	ArchiveExisting bool
	// Alias, when set, is bound to the new version.
	Alias string
}

// BestTrialResult is what BestTrialRegistrar.Register did.
type BestTrialResult struct {
	ParentRun    *domaintrack.Run
	BestRun      *domaintrack.Run
	MetricKey    string
	MetricValue  float64
	ModelCreated bool
	Version      *domain.ModelVersion
	// Transition is nil unless a stage was requested.
	Transition *domain.StageTransition
	Alias      string
}

// BestTrialRegistrar registers the best child run of a hyperparameter
// tuning study as a new model version.
type BestTrialRegistrar struct {
	runs   domaintrack.RunStore
	coord  *Coordinator
	tracer trace.Tracer
}

// NewBestTrialRegistrar creates a registrar reading runs from runs and
// registering through coord.
func NewBestTrialRegistrar(runs domaintrack.RunStore, coord *Coordinator) *BestTrialRegistrar {
	return &BestTrialRegistrar{runs: runs, coord: coord, tracer: coord.tracer}
}

// Register runs the whole workflow. Nothing is written to the registry
// until a best run has been selected.
func (b *BestTrialRegistrar) Register(ctx context.Context, req BestTrialRequest) (res *BestTrialResult, err error) {
	ctx, span, finish := tracing.StartOperation(ctx, b.tracer, tracing.SpanPrefixRegistry+"register_best_trial",
		attribute.String(tracing.AttrExperimentName, req.Experiment),
		attribute.String(tracing.AttrMetricKey, req.MetricKey),
		attribute.String(tracing.AttrModelName, req.ModelName),
	)
	defer func() { finish(err) }()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.ArtifactPath == "" {
		req.ArtifactPath = DefaultArtifactPath
	}

	exp, err := b.runs.GetExperimentByName(ctx, req.Experiment)
	if err != nil {
		return nil, fmt.Errorf("failed to look up experiment %q: %w", req.Experiment, err)
	}
	if exp == nil {
		return nil, &domaintrack.ExperimentNotFoundError{Name: req.Experiment}
	}

	parent, err := b.latestParent(ctx, exp, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String(tracing.AttrParentRunID, parent.ID))

	children, err := b.runs.SearchRuns(ctx, domaintrack.SearchQuery{
		ExperimentIDs: []string{exp.ID},
		Filter: domaintrack.Filter{Clauses: []domaintrack.Clause{
			tagEquals(domaintrack.TagParentRunID, parent.ID),
			statusFinished(),
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search child runs of %s: %w", parent.ID, err)
	}

	best, err := domain.SelectBestRun(children, req.MetricKey)
	if err != nil {
		return nil, err
	}
	span.AddEvent(tracing.EventBestRunSelected, trace.WithAttributes(
		attribute.String(tracing.AttrRunID, best.Run.ID),
		attribute.Float64(tracing.AttrMetricKey+".value", best.Value),
	))
	log.Info(log.CatRegistry, "Best trial selected",
		"parent", parent.ID, "run", best.Run.ID, "metric", req.MetricKey, "value", best.Value, "candidates", len(children))

	res = &BestTrialResult{
		ParentRun:   parent,
		BestRun:     best.Run,
		MetricKey:   req.MetricKey,
		MetricValue: best.Value,
	}

	res.ModelCreated, err = b.coord.EnsureRegisteredModel(ctx, req.ModelName)
	if err != nil {
		return nil, err
	}

	res.Version, err = b.coord.CreateModelVersion(ctx, domain.CreateVersionInput{
		Name:        req.ModelName,
		Source:      strings.TrimSuffix(best.Run.ArtifactURI, "/") + "/" + req.ArtifactPath,
		RunID:       best.Run.ID,
		Description: fmt.Sprintf("Registered from best trial (metric=%s) under parent %s", req.MetricKey, parent.ID),
	})
	if err != nil {
		return nil, err
	}

	if req.Stage != "" && req.Stage != domain.StageNone {
		res.Transition, err = b.coord.TransitionStage(ctx, req.ModelName, res.Version.Version(), req.Stage, req.ArchiveExisting)
		if err != nil {
			return nil, fmt.Errorf("version %d registered but promotion failed: %w", res.Version.Version(), err)
		}
		res.Version = res.Transition.Version
	}

	if req.Alias != "" {
		mv, err := b.coord.SetAlias(ctx, req.ModelName, req.Alias, res.Version.Version())
		if err != nil {
			return nil, fmt.Errorf("version %d registered but alias failed: %w", res.Version.Version(), err)
		}
		res.Version = mv
		res.Alias = req.Alias
	}

	return res, nil
}

// latestParent returns the most recently started finished parent run.
func (b *BestTrialRegistrar) latestParent(ctx context.Context, exp *domaintrack.Experiment, req BestTrialRequest) (*domaintrack.Run, error) {
	clauses := []domaintrack.Clause{
		tagEquals(domaintrack.TagRunName, req.ParentRunName),
		statusFinished(),
	}
	keys := make([]string, 0, len(req.ParentTags))
	for k := range req.ParentTags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		clauses = append(clauses, tagEquals(k, req.ParentTags[k]))
	}

	parents, err := b.runs.SearchRuns(ctx, domaintrack.SearchQuery{
		ExperimentIDs: []string{exp.ID},
		Filter:        domaintrack.Filter{Clauses: clauses},
		OrderBy:       []domaintrack.OrderTerm{{Entity: domaintrack.EntityAttribute, Key: "start_time", Desc: true}},
		MaxResults:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search parent runs: %w", err)
	}
	if len(parents) == 0 {
		return nil, fmt.Errorf("%w: no finished run named %q in experiment %q", ErrParentRunNotFound, req.ParentRunName, req.Experiment)
	}
	return parents[0], nil
}

func validateRequest(req BestTrialRequest) error {
	fields := map[string]string{}
	if strings.TrimSpace(req.Experiment) == "" {
		fields["experiment"] = "experiment is required"
	}
	if strings.TrimSpace(req.ParentRunName) == "" {
		fields["parent_run_name"] = "parent_run_name is required"
	}
	if strings.TrimSpace(req.MetricKey) == "" {
		fields["metric"] = "metric is required"
	}
	if strings.TrimSpace(req.ModelName) == "" {
		fields["model"] = "model is required"
	}
	if req.Stage != "" && !req.Stage.IsValid() {
		fields["stage"] = fmt.Sprintf("unknown stage %q", req.Stage)
	}
	if req.Alias != "" {
		if err := domain.ValidateAlias(req.Alias); err != nil {
			fields["alias"] = err.Error()
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func tagEquals(key, value string) domaintrack.Clause {
	return domaintrack.Clause{Entity: domaintrack.EntityTag, Key: key, Comparator: domaintrack.CmpEqual, Value: value}
}

func statusFinished() domaintrack.Clause {
	return domaintrack.Clause{
		Entity:     domaintrack.EntityAttribute,
		Key:        "status",
		Comparator: domaintrack.CmpEqual,
		Value:      string(domaintrack.RunStatusFinished),
	}
}
