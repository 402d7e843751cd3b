package testutil

import (
	"time"

	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
)

// TuningMetric is the metric key logged by WithTuningStudy.
const TuningMetric = "val_f1_macro"

// WithTuningStudy adds a finished tuning parent run and one finished child
// per value, each logging TuningMetric. Children start one minute apart.
func (b *Builder) WithTuningStudy(parentID, parentName string, values ...float64) *Builder {
	start := time.Now().Add(-time.Hour)
	b.WithRun(parentID, Name(parentName), Tag("stage", "tuning"), StartedAt(start))
	for i, v := range values {
		b.WithRun(parentID+"-trial-"+string(rune('a'+i)),
			Name("trial"),
			ChildOf(parentID),
			StartedAt(start.Add(time.Duration(i+1)*time.Minute)),
			Param("C", "1.0"),
			Metric(TuningMetric, v),
		)
	}
	return b
}

// WithStandardRuns adds a small mixed-status dataset.
func (b *Builder) WithStandardRuns() *Builder {
	now := time.Now()
	return b.
		WithRun("run-old", Name("baseline"), StartedAt(now.Add(-48*time.Hour)), Metric("accuracy", 0.71), Param("model", "logreg")).
		WithRun("run-mid", Name("tuned"), StartedAt(now.Add(-24*time.Hour)), Metric("accuracy", 0.84), Param("model", "rf")).
		WithRun("run-failed", Name("broken"), Status(domaintrack.RunStatusFailed), StartedAt(now.Add(-time.Hour))).
		WithRun("run-live", Name("in-progress"), Status(domaintrack.RunStatusRunning), StartedAt(now))
}
