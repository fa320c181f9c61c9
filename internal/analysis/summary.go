// Package analysis summarizes simulated price distributions and observed yield
// curves.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary describes a per-path distribution (e.g. zero-coupon prices across
// simulated paths). CILow/CIHigh bound the Monte Carlo mean at Confidence.
type Summary struct {
	Count int

	Mean float64
	Std  float64
	Min  float64
	Max  float64
	P05  float64
	P95  float64

	SpreadP95P05 float64

	Confidence float64
	CILow      float64
	CIHigh     float64
}

// DefaultConfidence is the two-sided level used by Summarize.
const DefaultConfidence = 0.95

func Summarize(xs []float64) (Summary, error) {
	return SummarizeAt(xs, DefaultConfidence)
}

// SummarizeAt is Summarize with a custom two-sided confidence level in (0, 1).
func SummarizeAt(xs []float64, confidence float64) (Summary, error) {
	s := Summary{}
	if len(xs) == 0 {
		return s, fmt.Errorf("summarize: no values")
	}
	if !(confidence > 0 && confidence < 1) {
		return s, fmt.Errorf("summarize: confidence must be in (0, 1), got %g", confidence)
	}
	for i, v := range xs {
		if math.IsNaN(v) {
			return s, fmt.Errorf("summarize: value %d is NaN", i)
		}
	}

	vals := append([]float64(nil), xs...)
	sort.Float64s(vals)

	s.Count = len(vals)
	s.Mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		s.Std = stat.StdDev(vals, nil)
	}
	s.Min = floats.Min(vals)
	s.Max = floats.Max(vals)
	s.P05 = stat.Quantile(0.05, stat.LinInterp, vals, nil)
	s.P95 = stat.Quantile(0.95, stat.LinInterp, vals, nil)
	s.SpreadP95P05 = s.P95 - s.P05

	z := distuv.UnitNormal.Quantile(0.5 + confidence/2)
	half := z * s.Std / math.Sqrt(float64(s.Count))
	s.Confidence = confidence
	s.CILow = s.Mean - half
	s.CIHigh = s.Mean + half
	return s, nil
}
