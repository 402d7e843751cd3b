package tracking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/fkid009/MLflow-study/internal/domain/tracking"
	"github.com/fkid009/MLflow-study/internal/log"
	"github.com/fkid009/MLflow-study/internal/metrics"
)

// ActiveRun is the handle of a run started by StartRun. It is safe for
// concurrent use. After End every logging call returns ErrRunNotActive.
type ActiveRun struct {
	tracker *Tracker
	run     *domain.Run

	mu    sync.Mutex
	ended bool
}

// ID returns the run id.
func (r *ActiveRun) ID() string { return r.run.ID }

// ExperimentID returns the owning experiment id.
func (r *ActiveRun) ExperimentID() string { return r.run.ExperimentID }

// Refresh reads the run's current record from the store.
func (r *ActiveRun) Refresh(ctx context.Context) (*domain.Run, error) {
	return r.tracker.store.GetRun(ctx, r.run.ID)
}

func (r *ActiveRun) active() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ended {
		return fmt.Errorf("run %s: %w", r.run.ID, domain.ErrRunNotActive)
	}
	return nil
}

// LogParam records one param. Params are immutable once logged.
func (r *ActiveRun) LogParam(ctx context.Context, key, value string) error {
	if err := r.active(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("param key %w", domain.ErrEmptyName)
	}
	return r.tracker.store.LogParam(ctx, r.run.ID, key, value)
}

// LogParams records params in key order, stopping at the first failure.
func (r *ActiveRun) LogParams(ctx context.Context, params map[string]string) error {
	for _, k := range sortedKeys(params) {
		if err := r.LogParam(ctx, k, params[k]); err != nil {
			return err
		}
	}
	return nil
}

// LogMetric appends one point to the key's history.
func (r *ActiveRun) LogMetric(ctx context.Context, key string, value float64, step int64) error {
	if err := r.active(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("metric key %w", domain.ErrEmptyName)
	}
	return r.tracker.store.LogMetric(ctx, r.run.ID, domain.Metric{
		Key:       key,
		Value:     value,
		Step:      step,
		Timestamp: time.Now(),
	})
}

// LogMetrics logs every value at the same step.
func (r *ActiveRun) LogMetrics(ctx context.Context, values map[string]float64, step int64) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := r.LogMetric(ctx, k, values[k], step); err != nil {
			return err
		}
	}
	return nil
}

// SetTag upserts a tag.
func (r *ActiveRun) SetTag(ctx context.Context, key, value string) error {
	if err := r.active(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("tag key %w", domain.ErrEmptyName)
	}
	return r.tracker.store.SetTag(ctx, r.run.ID, key, value)
}

// LogText writes text as an artifact at path and returns its URI.
func (r *ActiveRun) LogText(text, path string) (string, error) {
	if err := r.active(); err != nil {
		return "", err
	}
	return r.tracker.artifacts.WriteText(r.run.ArtifactURI, path, text)
}

// LogDict writes v as a JSON artifact at path and returns its URI.
func (r *ActiveRun) LogDict(v any, path string) (string, error) {
	if err := r.active(); err != nil {
		return "", err
	}
	return r.tracker.artifacts.WriteJSON(r.run.ArtifactURI, path, v)
}

// LogFile copies a local file into dir under the run's artifacts.
func (r *ActiveRun) LogFile(src, dir string) (string, error) {
	if err := r.active(); err != nil {
		return "", err
	}
	return r.tracker.artifacts.CopyFile(r.run.ArtifactURI, src, dir)
}

// ArtifactURI returns the URI of path under the run's artifacts, or of the
// artifact root when path is empty.
func (r *ActiveRun) ArtifactURI(path string) string {
	if path == "" {
		return r.run.ArtifactURI
	}
	return strings.TrimSuffix(r.run.ArtifactURI, "/") + "/" + strings.TrimPrefix(path, "/")
}

// ModelURI returns the runs:/ reference to an artifact path of this run.
func (r *ActiveRun) ModelURI(path string) string {
	return r.run.ModelURI(path)
}

// End sets a terminal status and the end time.
func (r *ActiveRun) End(ctx context.Context, status domain.RunStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("cannot end run with non-terminal status %q", status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ended {
		return fmt.Errorf("run %s: %w", r.run.ID, domain.ErrRunNotActive)
	}

	end := time.Now()
	if err := r.tracker.store.UpdateRunStatus(ctx, r.run.ID, status, &end); err != nil {
		return fmt.Errorf("failed to end run %s: %w", r.run.ID, err)
	}
	r.ended = true

	metrics.RecordRunEnded(status.String())
	log.Info(log.CatTracking, "Run ended", "run", r.run.ID, "status", status, "duration", end.Sub(r.run.StartTime))
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
