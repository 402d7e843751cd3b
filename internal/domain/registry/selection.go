package registry

import (
	"math"

	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
)

// BestRun is the outcome of SelectBestRun.
type BestRun struct {
	Run   *domaintrack.Run
	Value float64
}

// SelectBestRun picks the candidate to register under a maximize-metric policy.
//
// Only FINISHED runs whose latest value for metricKey is present and finite
// qualify. The highest value wins. Equal values go to the most recently
// started run, then to the lexically smallest run id.
// Returns MetricNotFoundError when nothing qualifies.
func SelectBestRun(candidates []*domaintrack.Run, metricKey string) (*BestRun, error) {
	var (
		best     *domaintrack.Run
		bestVal  float64
		finished int
	)
	for _, r := range candidates {
		if r == nil || r.Status != domaintrack.RunStatusFinished {
			continue
		}
		finished++
		v, ok := r.MetricValue(metricKey)
		if !ok || math.IsInf(v, 0) {
			continue
		}
		if best == nil || better(r, v, best, bestVal) {
			best, bestVal = r, v
		}
	}
	if best == nil {
		return nil, &MetricNotFoundError{MetricKey: metricKey, Candidates: finished}
	}
	return &BestRun{Run: best, Value: bestVal}, nil
}

func better(r *domaintrack.Run, v float64, cur *domaintrack.Run, curVal float64) bool {
	if v != curVal {
		return v > curVal
	}
	if !r.StartTime.Equal(cur.StartTime) {
		return r.StartTime.After(cur.StartTime)
	}
	return r.ID < cur.ID
}
