package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// SpanRecord is one line of traces.jsonl. Registry, run and HTTP attributes
// are lifted into their own objects so a trace file can be filtered with
// jq '.model.name == "iris"' without knowing attribute keys. Anything else
// stays in Attributes.
type SpanRecord struct {
	TraceID    string         `json:"trace_id"`
	SpanID     string         `json:"span_id"`
	ParentID   string         `json:"parent_id,omitempty"`
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	Start      time.Time      `json:"start"`
	DurationMs float64        `json:"duration_ms"`
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
	Model      *ModelFields   `json:"model,omitempty"`
	Run        *RunFields     `json:"run,omitempty"`
	HTTP       *HTTPFields    `json:"http,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Events     []EventRecord  `json:"events,omitempty"`
}

// ModelFields carries the model.* attributes of a registry span.
type ModelFields struct {
	Name     string `json:"name,omitempty"`
	Version  int64  `json:"version,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Alias    string `json:"alias,omitempty"`
	Archived int64  `json:"archived,omitempty"`
}

// RunFields carries the experiment and run attributes of a span.
type RunFields struct {
	Experiment string `json:"experiment,omitempty"`
	ID         string `json:"id,omitempty"`
	ParentID   string `json:"parent_id,omitempty"`
	Metric     string `json:"metric,omitempty"`
}

// HTTPFields carries the request attributes of an API span.
type HTTPFields struct {
	Method string `json:"method,omitempty"`
	Route  string `json:"route,omitempty"`
	Status int64  `json:"status,omitempty"`
}

// EventRecord is a span event such as version.archived, projected the same
// way as its span.
type EventRecord struct {
	Name       string         `json:"name"`
	At         time.Time      `json:"at"`
	Model      *ModelFields   `json:"model,omitempty"`
	Run        *RunFields     `json:"run,omitempty"`
	HTTP       *HTTPFields    `json:"http,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// RecordExporter writes finished spans to w as SpanRecord lines.
type RecordExporter struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
}

var _ sdktrace.SpanExporter = (*RecordExporter)(nil)

// NewRecordExporter writes to w. w is not closed on Shutdown.
func NewRecordExporter(w io.Writer) *RecordExporter {
	return &RecordExporter{enc: json.NewEncoder(w)}
}

// OpenRecordFile appends records to the file at path, creating it and its
// parent directories. Shutdown closes the file.
func OpenRecordFile(path string) (*RecordExporter, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- path comes from config
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	e := NewRecordExporter(f)
	e.closer = f
	return e, nil
}

// ExportSpans writes one line per span. After Shutdown it is a no-op.
func (e *RecordExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.enc == nil {
		return nil
	}
	for _, span := range spans {
		if err := e.enc.Encode(NewSpanRecord(span)); err != nil {
			return fmt.Errorf("encode span %s: %w", span.Name(), err)
		}
	}
	return nil
}

// Shutdown closes the underlying file, if the exporter owns one.
func (e *RecordExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.enc = nil
	if e.closer == nil {
		return nil
	}
	err := e.closer.Close()
	e.closer = nil
	return err
}

// NewSpanRecord projects span onto a SpanRecord.
func NewSpanRecord(span sdktrace.ReadOnlySpan) SpanRecord {
	sc := span.SpanContext()
	rec := SpanRecord{
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		Name:       span.Name(),
		Kind:       span.SpanKind().String(),
		Start:      span.StartTime().UTC(),
		DurationMs: float64(span.EndTime().Sub(span.StartTime()).Microseconds()) / 1000.0,
		Status:     "unset",
	}
	if p := span.Parent(); p.IsValid() {
		rec.ParentID = p.SpanID().String()
	}
	switch st := span.Status(); st.Code {
	case codes.Ok:
		rec.Status = "ok"
	case codes.Error:
		rec.Status = "error"
		rec.Error = st.Description
	}

	var p projection
	for _, kv := range span.Attributes() {
		p.add(kv)
	}
	rec.Model, rec.Run, rec.HTTP, rec.Attributes = p.model, p.run, p.http, p.rest

	for _, ev := range span.Events() {
		var ep projection
		for _, kv := range ev.Attributes {
			ep.add(kv)
		}
		rec.Events = append(rec.Events, EventRecord{
			Name:       ev.Name,
			At:         ev.Time.UTC(),
			Model:      ep.model,
			Run:        ep.run,
			HTTP:       ep.http,
			Attributes: ep.rest,
		})
	}
	return rec
}

// projection sorts attributes into the typed record sections.
type projection struct {
	model *ModelFields
	run   *RunFields
	http  *HTTPFields
	rest  map[string]any
}

func (p *projection) add(kv attribute.KeyValue) {
	switch string(kv.Key) {
	case AttrModelName:
		p.modelFields().Name = kv.Value.Emit()
	case AttrModelVersion:
		p.modelFields().Version = kv.Value.AsInt64()
	case AttrModelStage:
		p.modelFields().Stage = kv.Value.Emit()
	case AttrModelAlias:
		p.modelFields().Alias = kv.Value.Emit()
	case AttrArchived:
		p.modelFields().Archived = kv.Value.AsInt64()
	case AttrExperimentName:
		p.runFields().Experiment = kv.Value.Emit()
	case AttrRunID:
		p.runFields().ID = kv.Value.Emit()
	case AttrParentRunID:
		p.runFields().ParentID = kv.Value.Emit()
	case AttrMetricKey:
		p.runFields().Metric = kv.Value.Emit()
	case AttrHTTPMethod:
		p.httpFields().Method = kv.Value.Emit()
	case AttrHTTPRoute:
		p.httpFields().Route = kv.Value.Emit()
	case AttrHTTPStatus:
		p.httpFields().Status = kv.Value.AsInt64()
	default:
		if p.rest == nil {
			p.rest = make(map[string]any)
		}
		p.rest[string(kv.Key)] = kv.Value.AsInterface()
	}
}

func (p *projection) modelFields() *ModelFields {
	if p.model == nil {
		p.model = &ModelFields{}
	}
	return p.model
}

func (p *projection) runFields() *RunFields {
	if p.run == nil {
		p.run = &RunFields{}
	}
	return p.run
}

func (p *projection) httpFields() *HTTPFields {
	if p.http == nil {
		p.http = &HTTPFields{}
	}
	return p.http
}
