// Package tracing wires OpenTelemetry into the registry coordinator and the
// HTTP API. It owns the provider lifecycle, the exporter choice and the span
// attribute conventions.
package tracing

import (
	"cmp"
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fkid009/MLflow-study/internal/config"
	"github.com/fkid009/MLflow-study/internal/log"
)

// DefaultServiceName is used when tracing.service_name is empty.
const DefaultServiceName = "mlstudy"

const defaultOTLPEndpoint = "localhost:4317"

// Provider owns the tracer provider for one mlstudy process.
type Provider struct {
	sdk    *sdktrace.TracerProvider
	tracer trace.Tracer
}

// NewProvider builds a provider from the tracing section of the config.
// When tracing is disabled the tracer is a no-op and Shutdown does nothing.
func NewProvider(ctx context.Context, cfg config.TracingConfig) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer(DefaultServiceName)}, nil
	}

	processor, err := newProcessor(ctx, cfg)
	if err != nil {
		return nil, err
	}

	name := cmp.Or(cfg.ServiceName, DefaultServiceName)
	opts := []sdktrace.TracerProviderOption{
		// NewSchemaless avoids schema version conflicts with resource.Default().
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", name))),
		sdktrace.WithSampler(newSampler(cfg.SampleRate)),
	}
	if processor != nil {
		opts = append(opts, sdktrace.WithSpanProcessor(processor))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	log.Debug(log.CatTrace, "Tracing enabled", "exporter", cfg.Exporter, "service", name, "sample_rate", cfg.SampleRate)

	return &Provider{sdk: tp, tracer: tp.Tracer(name)}, nil
}

// newProcessor picks how spans leave the process. CLI commands exit as soon
// as their work is done, so local exporters write each span as it ends and
// only OTLP batches.
func newProcessor(ctx context.Context, cfg config.TracingConfig) (sdktrace.SpanProcessor, error) {
	switch cfg.Exporter {
	case "none", "":
		return nil, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file_path required for file exporter")
		}
		exp, err := OpenRecordFile(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("create file exporter: %w", err)
		}
		return sdktrace.NewSimpleSpanProcessor(exp), nil
	case "stdout":
		// stdout carries command output such as --json, so spans go to stderr.
		exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
		return sdktrace.NewSimpleSpanProcessor(exp), nil
	case "otlp":
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cmp.Or(cfg.OTLPEndpoint, defaultOTLPEndpoint)),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
		return sdktrace.NewBatchSpanProcessor(exp), nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.Exporter)
	}
}

// newSampler keeps every root span for rates outside (0, 1). Child spans
// follow their parent.
func newSampler(rate float64) sdktrace.Sampler {
	if rate <= 0 || rate >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// Tracer returns the process tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool {
	return p.sdk != nil
}

// Shutdown flushes pending spans and closes the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}
