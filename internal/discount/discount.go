// Package discount turns simulated short-rate paths into pathwise discount factors.
package discount

import (
	"math"

	"shortrate-sim/internal/model"

	"gonum.org/v1/gonum/mat"
)

// Build returns DF with the same shape as rates, where
//
//	DF[p, t] = exp(-sum_{i<t} rates[p, i] * dt)
//
// so DF[:, 0] == 1 and column t prices a zero-coupon bond maturing at t*dt.
func Build(rates mat.Matrix, dt float64) (*mat.Dense, error) {
	if rates == nil {
		return nil, model.Invalidf("rates matrix is nil")
	}
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return nil, model.Invalidf("dt must be > 0")
	}
	rows, cols := rates.Dims()
	if rows == 0 || cols == 0 {
		return nil, model.Invalidf("rates matrix is empty")
	}

	df := mat.NewDense(rows, cols, nil)
	for p := 0; p < rows; p++ {
		row := df.RawRowView(p)
		cum := 0.0
		row[0] = 1
		for t := 1; t < cols; t++ {
			cum += rates.At(p, t-1) * dt
			row[t] = math.Exp(-cum)
		}
	}
	return df, nil
}
