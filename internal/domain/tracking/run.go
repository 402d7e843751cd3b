// Package tracking provides the pure domain layer for experiment tracking.
//
// It defines the Experiment and Run entities recorded by a training execution,
// the RunStore persistence port, and the filter grammar used to query runs.
// Upstream tracking servers own these records; the registry only reads them
// through RunStore when picking a run to register.
package tracking

import (
	"math"
	"sort"
	"time"
)

// Reserved tag keys understood by the tracking store.
const (
	TagRunName     = "mlflow.runName"
	TagParentRunID = "mlflow.parentRunId"
)

// RunStatus represents the lifecycle status of a run.
type RunStatus string

const (
	// RunStatusRunning indicates the run is still executing.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusFinished indicates the run completed successfully.
	RunStatusFinished RunStatus = "FINISHED"

	// RunStatusFailed indicates the run ended with an error.
	RunStatusFailed RunStatus = "FAILED"

	// RunStatusKilled indicates the run was terminated externally.
	RunStatusKilled RunStatus = "KILLED"
)

// String returns the string representation of the run status.
func (s RunStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized run status.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusRunning, RunStatusFinished, RunStatusFailed, RunStatusKilled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further logging is expected for the run.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusFinished || s == RunStatusFailed || s == RunStatusKilled
}

// Experiment is a named grouping of runs.
type Experiment struct {
	ID               string
	Name             string
	ArtifactLocation string
	CreatedAt        time.Time
}

// Metric is a single logged point of a scalar time series.
type Metric struct {
	Key       string
	Value     float64
	Step      int64
	Timestamp time.Time
}

// Run is one recorded execution. Metrics hold the latest logged value per key;
// the full history is available through RunStore.GetMetricHistory.
type Run struct {
	ID           string
	ExperimentID string
	Name         string
	Status       RunStatus
	StartTime    time.Time
	EndTime      *time.Time
	ArtifactURI  string
	Params       map[string]string
	Metrics      map[string]float64
	Tags         map[string]string
}

// MetricValue returns the latest value logged for key. The second result is
// false when the key was never logged or holds NaN.
func (r *Run) MetricValue(key string) (float64, bool) {
	if r.Metrics == nil {
		return 0, false
	}
	v, ok := r.Metrics[key]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ParentRunID returns the parent run id for nested runs, or "".
func (r *Run) ParentRunID() string {
	return r.Tags[TagParentRunID]
}

// ModelURI returns the runs:/ URI of an artifact path logged under this run.
func (r *Run) ModelURI(artifactPath string) string {
	return "runs:/" + r.ID + "/" + artifactPath
}

// LatestMetrics reduces a metric history to the last value per key.
// The latest point is the one with the highest step; timestamps break ties.
func LatestMetrics(history []Metric) map[string]float64 {
	sorted := make([]Metric, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Step != sorted[j].Step {
			return sorted[i].Step < sorted[j].Step
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	latest := make(map[string]float64, len(sorted))
	for _, m := range sorted {
		latest[m.Key] = m.Value
	}
	return latest
}
