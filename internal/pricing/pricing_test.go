package pricing

import (
	"errors"
	"math"
	"testing"

	"shortrate-sim/internal/discount"
	"shortrate-sim/internal/model"
	"shortrate-sim/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const daily = 1.0 / 252

// flatDF returns discount factors for nPaths paths at constant rate r.
func flatDF(t *testing.T, r, dt float64, nPaths, nSteps int) *mat.Dense {
	t.Helper()
	rates := mat.NewDense(nPaths, nSteps+1, nil)
	for p := 0; p < nPaths; p++ {
		for i := 0; i <= nSteps; i++ {
			rates.Set(p, i, r)
		}
	}
	df, err := discount.Build(rates, dt)
	require.NoError(t, err)
	return df
}

func TestStepIndex(t *testing.T) {
	idx, err := StepIndex(1.0, daily, 504)
	require.NoError(t, err)
	assert.Equal(t, 252, idx)

	idx, err = StepIndex(0, daily, 504)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = StepIndex(1.3, daily, 504)
	require.ErrorIs(t, err, model.ErrGridAlignment)

	_, err = StepIndex(3, daily, 504)
	require.ErrorIs(t, err, model.ErrGridAlignment)

	_, err = StepIndex(-1, daily, 504)
	require.ErrorIs(t, err, model.ErrParameterValidation)

	idx, err = StepIndex(0.5, 1.0/12, 24)
	require.NoError(t, err)
	assert.Equal(t, 6, idx)
}

func TestZeroCouponPrices(t *testing.T) {
	df := flatDF(t, 0.04, daily, 5, 504)

	prices, err := ZeroCouponPrices(df, daily, 0)
	require.NoError(t, err)
	for _, p := range prices {
		assert.Equal(t, 1.0, p)
	}

	mean, err := ZeroCouponPrice(df, daily, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.04), mean, 1e-12)

	_, err = ZeroCouponPrices(df, daily, 1.3)
	require.ErrorIs(t, err, model.ErrGridAlignment)

	_, err = ZeroCouponPrices(nil, daily, 1)
	require.ErrorIs(t, err, model.ErrParameterValidation)
}

func TestForwardRateFlat(t *testing.T) {
	df := flatDF(t, 0.04, daily, 3, 504)
	p1, err := ZeroCouponPrices(df, daily, 1)
	require.NoError(t, err)
	p2, err := ZeroCouponPrices(df, daily, 2)
	require.NoError(t, err)

	f, err := ForwardRate(p1, p2, 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.04, f, 1e-10)
}

func TestForwardRateAveragesPerPath(t *testing.T) {
	p1 := []float64{math.Exp(-0.02), math.Exp(-0.04)}
	p2 := []float64{math.Exp(-0.05), math.Exp(-0.09)}
	f, err := ForwardRate(p1, p2, 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, (0.03+0.05)/2, f, 1e-12)
}

func TestForwardRateErrors(t *testing.T) {
	_, err := ForwardRate([]float64{0.9}, []float64{0.8}, 2, 1)
	require.ErrorIs(t, err, model.ErrParameterValidation)

	_, err = ForwardRate([]float64{0.9}, []float64{0.8, 0.7}, 1, 2)
	require.ErrorIs(t, err, model.ErrParameterValidation)

	_, err = ForwardRate([]float64{0.9, 0.95, 0.97}, []float64{0.8, 0, 0.9}, 1, 2)
	require.ErrorIs(t, err, model.ErrNumericalDegeneracy)
	var de *model.DegeneracyError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, de.Path)
	assert.Equal(t, 2.0, de.Maturity)
	assert.Equal(t, 0.0, de.Price)
}

func TestParSwapRateFlatMonthly(t *testing.T) {
	const r = 0.04
	df := flatDF(t, r, daily, 4, 504)
	times, err := PaymentSchedule(1, 12)
	require.NoError(t, err)

	rate, err := ParSwapRate(df, times, 1, daily)
	require.NoError(t, err)
	assert.InDelta(t, 12*(math.Exp(r/12)-1), rate, 1e-10)
	assert.InDelta(t, r, rate, 1e-4)
}

func TestParSwapRateIrregularAccruals(t *testing.T) {
	// One path, quarterly grid, explicit discount factors.
	df := mat.NewDense(1, 9, []float64{1, 0.99, 0.98, 0.97, 0.96, 0.95, 0.94, 0.93, 0.92})
	rate, err := ParSwapRate(df, []float64{0.5, 1.5, 2}, 2, 0.25)
	require.NoError(t, err)

	fixed := 0.5*0.98 + 1.0*0.94 + 0.5*0.92
	assert.InDelta(t, (1-0.92)/fixed, rate, 1e-12)
}

func TestParSwapRateErrors(t *testing.T) {
	df := flatDF(t, 0.04, 0.25, 2, 8)

	_, err := ParSwapRate(df, nil, 2, 0.25)
	require.ErrorIs(t, err, model.ErrParameterValidation)

	_, err = ParSwapRate(df, []float64{1, 0.5}, 2, 0.25)
	require.ErrorIs(t, err, model.ErrParameterValidation)

	_, err = ParSwapRate(df, []float64{1, 2.5}, 2, 0.25)
	require.ErrorIs(t, err, model.ErrParameterValidation)

	_, err = ParSwapRate(df, []float64{0.3, 1}, 1, 0.25)
	require.ErrorIs(t, err, model.ErrGridAlignment)

	_, err = ParSwapRate(df, []float64{1, 2, 3}, 3, 0.25)
	require.ErrorIs(t, err, model.ErrGridAlignment)

	zero := mat.NewDense(1, 5, []float64{1, 0, 0, 0, 0})
	_, err = ParSwapRate(zero, []float64{0.5, 1}, 1, 0.25)
	require.ErrorIs(t, err, model.ErrNumericalDegeneracy)
}

func TestPaymentSchedule(t *testing.T) {
	times, err := PaymentSchedule(2, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}, times)

	times, err = PaymentSchedule(1.5, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1, 1.5}, times)

	_, err = PaymentSchedule(1.3, 2)
	require.ErrorIs(t, err, model.ErrParameterValidation)
	_, err = PaymentSchedule(1, 0)
	require.ErrorIs(t, err, model.ErrParameterValidation)
	_, err = PaymentSchedule(0, 12)
	require.ErrorIs(t, err, model.ErrParameterValidation)
}

func flatRun(t *testing.T) *simulation.Result {
	t.Helper()
	seed := int64(42)
	p := model.VasicekParams{
		Common: model.Common{R0: 0.04, Sigma: 0, T: 2, Dt: daily, NPaths: 8, Seed: &seed},
		Kappa:  0.3,
		Theta:  0.04,
	}
	res, err := simulation.New(simulation.Options{}).Run("vasicek", p)
	require.NoError(t, err)
	return res
}

func TestPriceEndToEnd(t *testing.T) {
	res := flatRun(t)
	out, err := Price(res, Request{
		ZCBMaturities: []float64{0.5, 1},
		ForwardPairs:  [][2]float64{{1, 2}},
		Swaps:         []SwapRequest{{Maturity: 1, Frequency: 12}},
		Distributions: true,
	})
	require.NoError(t, err)

	assert.Equal(t, res.RunID(), out.RunID)
	assert.InDelta(t, math.Exp(-0.02), out.ZCB[0.5], 1e-12)
	assert.InDelta(t, math.Exp(-0.04), out.ZCB[1], 1e-12)
	assert.InDelta(t, 0.04, out.Forwards["1x2"], 1e-10)
	assert.InDelta(t, 0.04, out.Swaps["1Y"], 1e-4)

	d, ok := out.Distributions["1Y"]
	require.True(t, ok)
	assert.Equal(t, 8, d.Count)
	assert.InDelta(t, 0, d.Std, 1e-15)

	assert.Equal(t, []string{"fwd_1x2", "swap_1Y", "zcb_1Y", "zcb_6M"}, out.Labels())
	assert.InDelta(t, math.Exp(-0.04), out.Values()["zcb_1Y"], 1e-12)
}

func TestPriceRejectsWholeRequest(t *testing.T) {
	res := flatRun(t)

	out, err := Price(res, Request{ZCBMaturities: []float64{1, 1.3}})
	require.ErrorIs(t, err, model.ErrGridAlignment)
	assert.Nil(t, out)

	_, err = Price(res, Request{ForwardPairs: [][2]float64{{2, 1}}})
	require.ErrorIs(t, err, model.ErrParameterValidation)

	_, err = Price(res, Request{ForwardPairs: [][2]float64{{1, 3}}})
	require.ErrorIs(t, err, model.ErrGridAlignment)

	_, err = Price(res, Request{Swaps: []SwapRequest{{Maturity: 1}}})
	require.ErrorIs(t, err, model.ErrParameterValidation)

	_, err = Price(nil, Request{})
	require.ErrorIs(t, err, model.ErrParameterValidation)

	_, err = Price(res, Request{ZCBMaturities: []float64{0}})
	require.ErrorIs(t, err, model.ErrParameterValidation)
}

func TestPriceRejectsDuplicateLabels(t *testing.T) {
	res := flatRun(t)
	tests := map[string]Request{
		"swaps with one maturity": {Swaps: []SwapRequest{{Maturity: 2, Frequency: 1}, {Maturity: 2, Frequency: 12}}},
		"zcb same tenor":          {ZCBMaturities: []float64{0.5, 0.5 + 1e-12}},
		"forward pair twice":      {ForwardPairs: [][2]float64{{1, 2}, {1, 2}}},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := Price(res, req)
			require.ErrorIs(t, err, model.ErrParameterValidation)
			assert.Nil(t, out)
		})
	}
}

func TestParSwapRateRepeatedPaymentTime(t *testing.T) {
	df := mat.NewDense(1, 9, []float64{1, 0.99, 0.98, 0.97, 0.96, 0.95, 0.94, 0.93, 0.92})
	rate, err := ParSwapRate(df, []float64{1, 1, 2}, 2, 0.25)
	require.NoError(t, err)

	fixed := 1.0*0.96 + 0*0.96 + 1.0*0.92
	assert.InDelta(t, (1-0.92)/fixed, rate, 1e-12)

	_, err = ParSwapRate(df, []float64{0, 1, 2}, 2, 0.25)
	require.ErrorIs(t, err, model.ErrParameterValidation)
}

func TestPriceEmptyRequest(t *testing.T) {
	out, err := Price(flatRun(t), Request{})
	require.NoError(t, err)
	assert.Empty(t, out.Values())
	assert.Nil(t, out.Distributions)
	assert.True(t, Request{}.Empty())
}
