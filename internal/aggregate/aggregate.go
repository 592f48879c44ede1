// Package aggregate collapses one metric's per-model scores into a single
// number (§5), via a named strategy: AVERAGE, MIN, MAX, MEDIAN, or
// CONSENSUS (fails when max-min exceeds the tolerance, otherwise the mean).
package aggregate

import (
	"fmt"
	"sort"
)

// Strategy names one of the supported aggregation formulas.
type Strategy string

const (
	Average   Strategy = "average"
	Min       Strategy = "min"
	Max       Strategy = "max"
	Median    Strategy = "median"
	Consensus Strategy = "consensus"
)

// Aggregator reduces a set of per-model scores to one score, per a fixed
// strategy and (for CONSENSUS) tolerance.
type Aggregator struct {
	strategy  Strategy
	tolerance float64
}

// New constructs an Aggregator. tolerance is only consulted by CONSENSUS;
// pass 0 for the other strategies.
func New(strategy Strategy, tolerance float64) *Aggregator {
	return &Aggregator{strategy: strategy, tolerance: tolerance}
}

// Aggregate reduces scores to a single value. An empty input is an error.
// CONSENSUS additionally fails when the spread between the highest and
// lowest score exceeds the configured tolerance.
func (a *Aggregator) Aggregate(scores []float64) (float64, error) {
	if len(scores) == 0 {
		return 0, fmt.Errorf("aggregate: no scores to aggregate")
	}
	switch a.strategy {
	case Min:
		return minOf(scores), nil
	case Max:
		return maxOf(scores), nil
	case Median:
		return medianOf(scores), nil
	case Consensus:
		spread := maxOf(scores) - minOf(scores)
		if spread > a.tolerance {
			return 0, fmt.Errorf("aggregate: no consensus, spread %.4f exceeds tolerance %.4f", spread, a.tolerance)
		}
		return averageOf(scores), nil
	case Average, "":
		return averageOf(scores), nil
	default:
		return 0, fmt.Errorf("aggregate: unknown strategy %q", a.strategy)
	}
}

func averageOf(scores []float64) float64 {
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func minOf(scores []float64) float64 {
	m := scores[0]
	for _, s := range scores[1:] {
		if s < m {
			m = s
		}
	}
	return m
}

func maxOf(scores []float64) float64 {
	m := scores[0]
	for _, s := range scores[1:] {
		if s > m {
			m = s
		}
	}
	return m
}

func medianOf(scores []float64) float64 {
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
