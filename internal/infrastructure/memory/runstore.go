package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
)

type runEntry struct {
	run     *domaintrack.Run
	history []domaintrack.Metric
}

// RunStore is an in-memory domaintrack.RunStore.
type RunStore struct {
	mu          sync.RWMutex
	experiments map[string]*domaintrack.Experiment // by name
	runs        map[string]*runEntry
}

// Ensure RunStore implements domaintrack.RunStore.
var _ domaintrack.RunStore = (*RunStore)(nil)

// NewRunStore creates an empty store.
func NewRunStore() *RunStore {
	return &RunStore{
		experiments: make(map[string]*domaintrack.Experiment),
		runs:        make(map[string]*runEntry),
	}
}

// CreateExperiment stores exp. Names are unique.
func (s *RunStore) CreateExperiment(_ context.Context, exp *domaintrack.Experiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.experiments[exp.Name]; exists {
		return fmt.Errorf("experiment %q already exists", exp.Name)
	}
	c := *exp
	s.experiments[exp.Name] = &c
	return nil
}

// GetExperimentByName returns (nil, nil) when absent.
func (s *RunStore) GetExperimentByName(_ context.Context, name string) (*domaintrack.Experiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.experiments[name]
	if !ok {
		return nil, nil
	}
	c := *exp
	return &c, nil
}

// CreateRun stores run.
func (s *RunStore) CreateRun(_ context.Context, run *domaintrack.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, exp := range s.experiments {
		if exp.ID == run.ExperimentID {
			found = true
			break
		}
	}
	if !found {
		return &domaintrack.ExperimentNotFoundError{ID: run.ExperimentID}
	}
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %q already exists", run.ID)
	}
	c := cloneRun(run)
	c.Metrics = map[string]float64{}
	s.runs[run.ID] = &runEntry{run: c}
	return nil
}

// GetRun returns a copy of the run.
func (s *RunStore) GetRun(_ context.Context, runID string) (*domaintrack.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.runs[runID]
	if !ok {
		return nil, &domaintrack.RunNotFoundError{RunID: runID}
	}
	return cloneRun(e.run), nil
}

// UpdateRunStatus sets status and end time.
func (s *RunStore) UpdateRunStatus(_ context.Context, runID string, status domaintrack.RunStatus, endTime *time.Time) error {
	return s.update(runID, func(e *runEntry) error {
		e.run.Status = status
		if endTime != nil {
			end := *endTime
			e.run.EndTime = &end
		} else {
			e.run.EndTime = nil
		}
		return nil
	})
}

// LogParam records an immutable param.
func (s *RunStore) LogParam(_ context.Context, runID, key, value string) error {
	return s.update(runID, func(e *runEntry) error {
		if existing, ok := e.run.Params[key]; ok {
			if existing != value {
				return &domaintrack.ParamConflictError{RunID: runID, Key: key, Existing: existing, New: value}
			}
			return nil
		}
		e.run.Params[key] = value
		return nil
	})
}

// LogMetric appends to the history and refreshes the latest value.
func (s *RunStore) LogMetric(_ context.Context, runID string, m domaintrack.Metric) error {
	return s.update(runID, func(e *runEntry) error {
		if m.Timestamp.IsZero() {
			m.Timestamp = time.Now()
		}
		e.history = append(e.history, m)
		e.run.Metrics = domaintrack.LatestMetrics(e.history)
		return nil
	})
}

// SetTag upserts a tag.
func (s *RunStore) SetTag(_ context.Context, runID, key, value string) error {
	return s.update(runID, func(e *runEntry) error {
		e.run.Tags[key] = value
		return nil
	})
}

// GetMetricHistory returns the points for key ordered by step then timestamp.
func (s *RunStore) GetMetricHistory(_ context.Context, runID, key string) ([]domaintrack.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.runs[runID]
	if !ok {
		return nil, &domaintrack.RunNotFoundError{RunID: runID}
	}
	out := []domaintrack.Metric{}
	for _, m := range e.history {
		if m.Key == key {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Step != out[j].Step {
			return out[i].Step < out[j].Step
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// SearchRuns filters, orders and limits runs of the given experiments.
func (s *RunStore) SearchRuns(_ context.Context, q domaintrack.SearchQuery) ([]*domaintrack.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(q.ExperimentIDs))
	for _, id := range q.ExperimentIDs {
		wanted[id] = true
	}
	var candidates []*domaintrack.Run
	for _, e := range s.runs {
		if len(wanted) > 0 && !wanted[e.run.ExperimentID] {
			continue
		}
		candidates = append(candidates, cloneRun(e.run))
	}
	return domaintrack.ApplySearch(candidates, q), nil
}

func (s *RunStore) update(runID string, fn func(e *runEntry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.runs[runID]
	if !ok {
		return &domaintrack.RunNotFoundError{RunID: runID}
	}
	return fn(e)
}

func cloneRun(r *domaintrack.Run) *domaintrack.Run {
	c := *r
	c.Params = cloneMap(r.Params)
	c.Tags = cloneMap(r.Tags)
	c.Metrics = make(map[string]float64, len(r.Metrics))
	for k, v := range r.Metrics {
		c.Metrics[k] = v
	}
	if r.EndTime != nil {
		end := *r.EndTime
		c.EndTime = &end
	}
	return &c
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
