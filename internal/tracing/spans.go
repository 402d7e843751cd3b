package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	// Registry attributes
	AttrModelName    = "model.name"
	AttrModelVersion = "model.version"
	AttrModelStage   = "model.stage"
	AttrModelAlias   = "model.alias"
	AttrArchived     = "model.archived_count"
	AttrMetricKey    = "metric.key"

	// Tracking attributes
	AttrExperimentName = "experiment.name"
	AttrRunID          = "run.id"
	AttrParentRunID    = "run.parent_id"

	// HTTP attributes
	AttrHTTPMethod = "http.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.status_code"
)

// Span name prefixes for consistent naming.
const (
	SpanPrefixRegistry = "registry."
	SpanPrefixTracking = "tracking."
	SpanPrefixHTTP     = "http."
)

// Event names for span events.
const (
	EventVersionAssigned = "version.assigned"
	EventVersionArchived = "version.archived"
	EventAliasRebound    = "alias.rebound"
	EventBestRunSelected = "best_run.selected"
)

// StartOperation starts an internal span named prefix+op. The returned
// finish func records err on the span, if any, and ends it.
func StartOperation(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, func(err error)) {
	ctx, span := tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, span, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
