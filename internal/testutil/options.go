package testutil

import (
	"time"

	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
)

// runData holds all data for a run to be inserted.
type runData struct {
	id        string
	name      string
	status    domaintrack.RunStatus
	startTime time.Time
	params    map[string]string
	tags      map[string]string
	metrics   []domaintrack.Metric
	parentID  string
}

// defaultRun returns a FINISHED run started now.
func defaultRun(id string) runData {
	return runData{
		id:        id,
		name:      id, // Default name is the ID
		status:    domaintrack.RunStatusFinished,
		startTime: time.Now(),
		params:    map[string]string{},
		tags:      map[string]string{},
	}
}

// RunOption configures a run during builder setup.
type RunOption func(*runData)

// Name sets the run name (also recorded as the mlflow.runName tag).
func Name(name string) RunOption {
	return func(r *runData) { r.name = name }
}

// Status sets the run status.
func Status(s domaintrack.RunStatus) RunOption {
	return func(r *runData) { r.status = s }
}

// StartedAt sets the run start time.
func StartedAt(t time.Time) RunOption {
	return func(r *runData) { r.startTime = t }
}

// Param records a param.
func Param(key, value string) RunOption {
	return func(r *runData) { r.params[key] = value }
}

// Tag records a tag.
func Tag(key, value string) RunOption {
	return func(r *runData) { r.tags[key] = value }
}

// Metric logs value at step 0.
func Metric(key string, value float64) RunOption {
	return MetricAt(key, value, 0)
}

// MetricAt logs value at the given step.
func MetricAt(key string, value float64, step int64) RunOption {
	return func(r *runData) {
		r.metrics = append(r.metrics, domaintrack.Metric{Key: key, Value: value, Step: step, Timestamp: r.startTime.Add(time.Duration(step) * time.Millisecond)})
	}
}

// ChildOf nests the run under parentID.
func ChildOf(parentID string) RunOption {
	return func(r *runData) { r.parentID = parentID }
}
