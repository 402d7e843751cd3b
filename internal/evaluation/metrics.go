// Package evaluation computes classification metrics for tutorial runs.
package evaluation

import (
	"errors"
	"fmt"
	"sort"
)

// Average selects how per-class scores are combined.
type Average string

const (
	// Macro is the unweighted mean over classes.
	Macro Average = "macro"
	// Weighted weights each class by its support in yTrue.
	Weighted Average = "weighted"
	// Micro pools true/false positives over all classes.
	Micro Average = "micro"
)

// Errors
var (
	ErrEmptyInput     = errors.New("no samples")
	ErrLengthMismatch = errors.New("y_true and y_pred differ in length")
	ErrUnknownAverage = errors.New("unknown average")
)

// Metrics holds the scores logged by the tutorial commands.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Map returns the scores keyed by metric name, prefixed with prefix.
func (m Metrics) Map(prefix string) map[string]float64 {
	return map[string]float64{
		prefix + "accuracy":  m.Accuracy,
		prefix + "precision": m.Precision,
		prefix + "recall":    m.Recall,
		prefix + "f1":        m.F1,
	}
}

type classCounts struct {
	tp, fp, fn int
}

// ClassificationMetrics scores predictions with macro averaging.
func ClassificationMetrics(yTrue, yPred []int) (Metrics, error) {
	return Score(yTrue, yPred, Macro)
}

// Score computes accuracy and averaged precision, recall and F1. Labels are
// the union of classes in both inputs. A class with no predictions has
// precision 0, and one with no true samples has recall 0.
func Score(yTrue, yPred []int, avg Average) (Metrics, error) {
	if len(yTrue) == 0 {
		return Metrics{}, ErrEmptyInput
	}
	if len(yTrue) != len(yPred) {
		return Metrics{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(yTrue), len(yPred))
	}

	counts := map[int]*classCounts{}
	get := func(label int) *classCounts {
		c, ok := counts[label]
		if !ok {
			c = &classCounts{}
			counts[label] = c
		}
		return c
	}

	correct := 0
	for i, t := range yTrue {
		p := yPred[i]
		if t == p {
			correct++
			get(t).tp++
			continue
		}
		get(p).fp++
		get(t).fn++
	}

	labels := make([]int, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	m := Metrics{Accuracy: float64(correct) / float64(len(yTrue))}

	switch avg {
	case Macro, Weighted:
		var weightSum float64
		for _, l := range labels {
			c := counts[l]
			w := 1.0
			if avg == Weighted {
				w = float64(c.tp + c.fn)
			}
			p, r := ratio(c.tp, c.tp+c.fp), ratio(c.tp, c.tp+c.fn)
			m.Precision += w * p
			m.Recall += w * r
			m.F1 += w * f1(p, r)
			weightSum += w
		}
		if weightSum > 0 {
			m.Precision /= weightSum
			m.Recall /= weightSum
			m.F1 /= weightSum
		}
	case Micro:
		var tp, fp, fn int
		for _, c := range counts {
			tp += c.tp
			fp += c.fp
			fn += c.fn
		}
		m.Precision, m.Recall = ratio(tp, tp+fp), ratio(tp, tp+fn)
		m.F1 = f1(m.Precision, m.Recall)
	default:
		return Metrics{}, fmt.Errorf("%w %q (must be macro, weighted or micro)", ErrUnknownAverage, avg)
	}

	return m, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
