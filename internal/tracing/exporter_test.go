package tracing

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func decodeRecords(t *testing.T, data []byte) []SpanRecord {
	t.Helper()
	var records []SpanRecord
	decoder := json.NewDecoder(bytes.NewReader(data))
	for {
		var record SpanRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}
	return records
}

func readRecordFile(t *testing.T, path string) []SpanRecord {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return decodeRecords(t, data)
}

func export(t *testing.T, e *RecordExporter, stubs ...tracetest.SpanStub) {
	t.Helper()
	spans := make([]sdktrace.ReadOnlySpan, 0, len(stubs))
	for _, s := range stubs {
		spans = append(spans, s.Snapshot())
	}
	require.NoError(t, e.ExportSpans(context.Background(), spans))
}

func TestOpenRecordFile_CreatesParentsAndAppends(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "nested", "traces.jsonl")
	require.NoError(t, os.MkdirAll(filepath.Dir(tracePath), 0o750))
	require.NoError(t, os.WriteFile(tracePath, []byte(`{"name":"earlier"}`+"\n"), 0o644))

	exporter, err := OpenRecordFile(tracePath)
	require.NoError(t, err)
	now := time.Now()
	export(t, exporter, tracetest.SpanStub{Name: "registry.create_model_version", StartTime: now, EndTime: now.Add(time.Millisecond)})
	require.NoError(t, exporter.Shutdown(context.Background()))

	records := readRecordFile(t, tracePath)
	require.Len(t, records, 2)
	require.Equal(t, "earlier", records[0].Name)
	require.Equal(t, "registry.create_model_version", records[1].Name)

	fresh := filepath.Join(t.TempDir(), "a", "b", "traces.jsonl")
	exporter, err = OpenRecordFile(fresh)
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))
	_, err = os.Stat(fresh)
	require.NoError(t, err)
}

func TestNewSpanRecord_ProjectsRegistryAttributes(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewRecordExporter(&buf)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	export(t, exporter, tracetest.SpanStub{
		Name:      "registry.transition_stage",
		SpanKind:  trace.SpanKindInternal,
		StartTime: start,
		EndTime:   start.Add(100 * time.Millisecond),
		Status:    sdktrace.Status{Code: codes.Ok},
		Attributes: []attribute.KeyValue{
			attribute.String(AttrModelName, "iris"),
			attribute.Int(AttrModelVersion, 3),
			attribute.String(AttrModelStage, "Production"),
			attribute.Int(AttrArchived, 1),
			attribute.String(AttrRunID, "r-42"),
			attribute.Bool("db.retry", true),
		},
		Events: []sdktrace.Event{{
			Name:       EventVersionArchived,
			Time:       start.Add(50 * time.Millisecond),
			Attributes: []attribute.KeyValue{attribute.Int(AttrModelVersion, 2)},
		}},
	})

	records := decodeRecords(t, buf.Bytes())
	require.Len(t, records, 1)
	rec := records[0]
	require.Equal(t, "internal", rec.Kind)
	require.Equal(t, "ok", rec.Status)
	require.Empty(t, rec.Error)
	require.True(t, rec.Start.Equal(start))
	require.InDelta(t, 100.0, rec.DurationMs, 0.001)

	require.Equal(t, &ModelFields{Name: "iris", Version: 3, Stage: "Production", Archived: 1}, rec.Model)
	require.Equal(t, &RunFields{ID: "r-42"}, rec.Run)
	require.Nil(t, rec.HTTP)
	require.Equal(t, map[string]any{"db.retry": true}, rec.Attributes, "unknown keys are kept as-is")

	require.Len(t, rec.Events, 1)
	require.Equal(t, EventVersionArchived, rec.Events[0].Name)
	require.Equal(t, int64(2), rec.Events[0].Model.Version)
	require.Nil(t, rec.Events[0].Attributes)
}

func TestNewSpanRecord_HTTPAndErrors(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewRecordExporter(&buf)
	now := time.Now()
	export(t, exporter, tracetest.SpanStub{
		Name:      "http.POST /model-versions/transition-stage",
		SpanKind:  trace.SpanKindServer,
		StartTime: now,
		EndTime:   now.Add(time.Millisecond),
		Status:    sdktrace.Status{Code: codes.Error, Description: "database is locked"},
		Attributes: []attribute.KeyValue{
			attribute.String(AttrHTTPMethod, "POST"),
			attribute.String(AttrHTTPRoute, "/model-versions/transition-stage"),
			attribute.Int(AttrHTTPStatus, 500),
		},
	})

	rec := decodeRecords(t, buf.Bytes())[0]
	require.Equal(t, "server", rec.Kind)
	require.Equal(t, "error", rec.Status)
	require.Equal(t, "database is locked", rec.Error)
	require.Equal(t, &HTTPFields{Method: "POST", Route: "/model-versions/transition-stage", Status: 500}, rec.HTTP)
	require.Nil(t, rec.Model)
	require.Nil(t, rec.Attributes)

	line := strings.TrimSpace(buf.String())
	require.NotContains(t, line, `"model"`, "empty sections are omitted")
}

func TestRecordExporter_ThreadSafe(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := OpenRecordFile(tracePath)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				stub := tracetest.SpanStub{
					Name:       "tracking.log_metric",
					StartTime:  time.Now(),
					EndTime:    time.Now().Add(time.Millisecond),
					Attributes: []attribute.KeyValue{attribute.Int("worker", worker)},
				}
				_ = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, exporter.Shutdown(context.Background()))

	require.Len(t, readRecordFile(t, tracePath), 400)
}

func TestRecordExporter_ShutdownStopsWrites(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewRecordExporter(&buf)
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	now := time.Now()
	export(t, exporter, tracetest.SpanStub{Name: "late", StartTime: now, EndTime: now})
	require.Zero(t, buf.Len())
}

func TestRecordExporter_ExportEmptySpans(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := OpenRecordFile(tracePath)
	require.NoError(t, err)

	require.NoError(t, exporter.ExportSpans(context.Background(), nil))
	require.NoError(t, exporter.Shutdown(context.Background()))

	info, err := os.Stat(tracePath)
	require.NoError(t, err)
	require.Zero(t, info.Size())
}
