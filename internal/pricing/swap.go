package pricing

import (
	"fmt"
	"math"

	"shortrate-sim/internal/model"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ParSwapRate is the fixed rate that makes a payer swap worth zero at inception.
//
// Accrual fractions are the gaps of [0, paymentTimes...]. The fixed leg is the
// mean over paths of sum(alpha_i * DF(t_i)); the floating leg is the mean of
// 1 - DF(maturity). The rate is the ratio of those means.
func ParSwapRate(df mat.Matrix, paymentTimes []float64, maturity, dt float64) (float64, error) {
	if df == nil {
		return 0, model.Invalidf("discount factors are nil")
	}
	rows, cols := df.Dims()
	if rows == 0 || cols == 0 {
		return 0, model.Invalidf("discount factors are empty")
	}
	if err := validateSchedule(paymentTimes, maturity); err != nil {
		return 0, err
	}

	last := cols - 1
	idx := make([]int, len(paymentTimes))
	alpha := make([]float64, len(paymentTimes))
	prev := 0.0
	for i, t := range paymentTimes {
		k, err := StepIndex(t, dt, last)
		if err != nil {
			return 0, fmt.Errorf("payment %d: %w", i, err)
		}
		idx[i] = k
		alpha[i] = t - prev
		prev = t
	}
	end, err := StepIndex(maturity, dt, last)
	if err != nil {
		return 0, fmt.Errorf("swap maturity: %w", err)
	}

	fixed := make([]float64, rows)
	floating := make([]float64, rows)
	for p := 0; p < rows; p++ {
		for i, k := range idx {
			fixed[p] += alpha[i] * df.At(p, k)
		}
		floating[p] = 1 - df.At(p, end)
	}

	annuity := stat.Mean(fixed, nil)
	if !(annuity > 0) || math.IsInf(annuity, 0) {
		return 0, fmt.Errorf("%w: fixed leg annuity is %g", model.ErrNumericalDegeneracy, annuity)
	}
	return stat.Mean(floating, nil) / annuity, nil
}

func validateSchedule(paymentTimes []float64, maturity float64) error {
	if math.IsNaN(maturity) || maturity <= 0 {
		return model.Invalidf("swap maturity must be > 0")
	}
	if len(paymentTimes) == 0 {
		return model.Invalidf("swap needs at least one payment time")
	}
	if !(paymentTimes[0] > 0) {
		return model.Invalidf("first payment time must be > 0, got %g", paymentTimes[0])
	}
	prev := paymentTimes[0]
	for i, t := range paymentTimes {
		if math.IsNaN(t) || t < prev {
			return model.Invalidf("payment times must be non-decreasing (index %d: %g)", i, t)
		}
		prev = t
	}
	if prev > maturity+GridTolerance {
		return model.Invalidf("last payment %g is after swap maturity %g", prev, maturity)
	}
	return nil
}

// PaymentSchedule returns the regular schedule 1/f, 2/f, ..., maturity for
// frequency f payments per year. maturity must be a whole number of periods.
func PaymentSchedule(maturity float64, frequency int) ([]float64, error) {
	if frequency <= 0 {
		return nil, model.Invalidf("payment frequency must be > 0")
	}
	if math.IsNaN(maturity) || math.IsInf(maturity, 0) || maturity <= 0 {
		return nil, model.Invalidf("swap maturity must be > 0")
	}
	periods := maturity * float64(frequency)
	n := math.Round(periods)
	if n < 1 || math.Abs(periods-n) > GridTolerance {
		return nil, model.Invalidf("maturity %g is not a whole number of %d-per-year periods", maturity, frequency)
	}
	times := make([]float64, int(n))
	for i := range times {
		times[i] = float64(i+1) / float64(frequency)
	}
	return times, nil
}
