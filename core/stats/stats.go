// Package stats summarizes how evenly hours are spread across assistants.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a distribution of assigned hours.
type Summary struct {
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Gini   float64 `json:"gini"`
	// Score is (1 - std/mean) * 100 clamped to [0, 100].
	Score float64 `json:"score"`
}

// Summarize computes population statistics over the values of hours.
// An empty map, or one where every value is zero, scores 100.
func Summarize(hours map[string]float64) Summary {
	if len(hours) == 0 {
		return Summary{Score: 100}
	}
	x := make([]float64, 0, len(hours))
	for _, h := range hours {
		x = append(x, h)
	}
	sort.Float64s(x)

	mean, std := stat.PopMeanStdDev(x, nil)
	s := Summary{
		Count:  len(x),
		Total:  floats.Sum(x),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(x),
		Max:    floats.Max(x),
		Gini:   gini(x),
		Score:  100,
	}
	if mean > 0 {
		s.Score = math.Max(0, math.Min(100, (1-std/mean)*100))
	}
	return s
}

// gini expects x sorted ascending.
func gini(x []float64) float64 {
	total := floats.Sum(x)
	if total <= 0 {
		return 0
	}
	n := float64(len(x))
	var acc float64
	for i, v := range x {
		acc += (2*float64(i+1) - n - 1) * v
	}
	return acc / (n * total)
}
