package tracking

import (
	"context"
	"time"
)

// RunStore persists experiments, runs, params, metrics and tags.
type RunStore interface {
	// CreateExperiment persists a new experiment. ID is assigned by the caller.
	CreateExperiment(ctx context.Context, exp *Experiment) error

	// GetExperimentByName returns (nil, nil) when no experiment has that name.
	GetExperimentByName(ctx context.Context, name string) (*Experiment, error)

	CreateRun(ctx context.Context, run *Run) error

	// GetRun returns RunNotFoundError when the run does not exist.
	GetRun(ctx context.Context, runID string) (*Run, error)

	// UpdateRunStatus sets the status and, for terminal statuses, the end time.
	UpdateRunStatus(ctx context.Context, runID string, status RunStatus, endTime *time.Time) error

	// LogParam records a param. Params are immutable: logging the same key with a
	// different value returns ParamConflictError. Re-logging the same value is a no-op.
	LogParam(ctx context.Context, runID, key, value string) error

	LogMetric(ctx context.Context, runID string, m Metric) error

	SetTag(ctx context.Context, runID, key, value string) error

	// GetMetricHistory returns every logged value for key ordered by step then timestamp.
	GetMetricHistory(ctx context.Context, runID, key string) ([]Metric, error)

	SearchRuns(ctx context.Context, q SearchQuery) ([]*Run, error)
}

// ApplySearch filters, sorts and truncates runs per q. Stores load candidate runs
// by experiment and hand the rest of the query to this function.
func ApplySearch(runs []*Run, q SearchQuery) []*Run {
	out := make([]*Run, 0, len(runs))
	for _, r := range runs {
		if q.Filter.Matches(r) {
			out = append(out, r)
		}
	}
	SortRuns(out, q.OrderBy)
	if q.MaxResults > 0 && len(out) > q.MaxResults {
		out = out[:q.MaxResults]
	}
	return out
}
