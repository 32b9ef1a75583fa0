package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeEven(t *testing.T) {
	s := Summarize(map[string]float64{"a": 6, "b": 6, "c": 6})
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 18, s.Total, 1e-9)
	assert.InDelta(t, 6, s.Mean, 1e-9)
	assert.InDelta(t, 0, s.StdDev, 1e-9)
	assert.InDelta(t, 0, s.Gini, 1e-9)
	assert.InDelta(t, 100, s.Score, 1e-9)
}

func TestSummarizeSpread(t *testing.T) {
	s := Summarize(map[string]float64{"a": 2, "b": 4})
	assert.InDelta(t, 3, s.Mean, 1e-9)
	assert.InDelta(t, 1, s.StdDev, 1e-9)
	assert.InDelta(t, 2, s.Min, 1e-9)
	assert.InDelta(t, 4, s.Max, 1e-9)
	// (1 - 1/3) * 100
	assert.InDelta(t, 66.6667, s.Score, 1e-3)
	// (-1*2 + 1*4) / (2*6)
	assert.InDelta(t, 1.0/6, s.Gini, 1e-9)
}

func TestSummarizeDegenerate(t *testing.T) {
	assert.Equal(t, 100.0, Summarize(nil).Score)
	assert.Equal(t, 100.0, Summarize(map[string]float64{"a": 0, "b": 0}).Score)

	s := Summarize(map[string]float64{"a": 0, "b": 0, "c": 9})
	assert.Equal(t, 0.0, s.Score)
	assert.InDelta(t, 2.0/3, s.Gini, 1e-9)
}
