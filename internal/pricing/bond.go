// Package pricing values fixed-income instruments from pathwise discount factors.
package pricing

import (
	"fmt"
	"math"

	"shortrate-sim/internal/model"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ZeroCouponPrices returns the per-path price of a zero-coupon bond paying 1 at
// maturity, read from the discount-factor column at round(maturity/dt).
func ZeroCouponPrices(df mat.Matrix, dt, maturity float64) ([]float64, error) {
	if df == nil {
		return nil, model.Invalidf("discount factors are nil")
	}
	rows, cols := df.Dims()
	if rows == 0 || cols == 0 {
		return nil, model.Invalidf("discount factors are empty")
	}
	idx, err := StepIndex(maturity, dt, cols-1)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, idx, df), nil
}

// ZeroCouponPrice is the mean of ZeroCouponPrices across paths.
func ZeroCouponPrice(df mat.Matrix, dt, maturity float64) (float64, error) {
	prices, err := ZeroCouponPrices(df, dt, maturity)
	if err != nil {
		return 0, err
	}
	return stat.Mean(prices, nil), nil
}

// ForwardRate is the continuously compounded forward rate between t1 and t2,
// computed per path as (ln P(t1) - ln P(t2)) / (t2 - t1) and then averaged.
func ForwardRate(pT1, pT2 []float64, t1, t2 float64) (float64, error) {
	if !(t2 > t1) {
		return 0, model.Invalidf("forward needs t1 < t2, got %g and %g", t1, t2)
	}
	if len(pT1) == 0 || len(pT1) != len(pT2) {
		return 0, model.Invalidf("price vectors must be non-empty and equal length (%d vs %d)", len(pT1), len(pT2))
	}

	tau := t2 - t1
	fwd := make([]float64, len(pT1))
	for p := range pT1 {
		if !(pT1[p] > 0) {
			return 0, &model.DegeneracyError{Path: p, Maturity: t1, Price: pT1[p]}
		}
		if !(pT2[p] > 0) {
			return 0, &model.DegeneracyError{Path: p, Maturity: t2, Price: pT2[p]}
		}
		fwd[p] = (math.Log(pT1[p]) - math.Log(pT2[p])) / tau
	}
	return stat.Mean(fwd, nil), nil
}

// ForwardLabel formats a forward pair the way results are keyed, e.g. "1x2".
func ForwardLabel(t1, t2 float64) string {
	return fmt.Sprintf("%gx%g", t1, t2)
}
