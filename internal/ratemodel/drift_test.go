package ratemodel

import (
	"math"
	"testing"

	"shortrate-sim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradientExactForQuadratic(t *testing.T) {
	x := []float64{0.25, 0.5, 1, 2, 3, 5, 7, 10}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = v * v
	}
	g := gradient(y, x)
	require.Len(t, g, len(x))

	for i := 1; i < len(x)-1; i++ {
		assert.InDelta(t, 2*x[i], g[i], 1e-9, "x=%g", x[i])
	}
	assert.InDelta(t, x[0]+x[1], g[0], 1e-12)
	n := len(x) - 1
	assert.InDelta(t, x[n]+x[n-1], g[n], 1e-12)
}

func TestDriftCurveForwardsOnLinearCurve(t *testing.T) {
	// z(m) = a + b*m gives f(m) = a + 2*b*m.
	const a, b = 0.03, 0.001
	m := []float64{0.5, 1, 2, 3, 5, 7, 10}
	z := make([]float64, len(m))
	for i := range m {
		z[i] = a + b*m[i]
	}
	dc, err := NewDriftCurve(model.ObservedCurve{Maturities: m, ZeroRates: z}, 0.1, 0.01)
	require.NoError(t, err)

	mats, fwd, theta := dc.Knots()
	assert.Equal(t, m, mats)
	for i := 1; i < len(m)-1; i++ {
		assert.InDelta(t, a+2*b*m[i], fwd[i], 1e-9)
	}
	for i := range m {
		assert.InDelta(t, theta[i], dc.Theta(m[i]), 1e-12)
	}
}

func TestDriftCurveFlatCurve(t *testing.T) {
	const kappa, sigma = 0.1, 0.01
	dc, err := NewDriftCurve(flatCurve(0.04), kappa, sigma)
	require.NoError(t, err)

	_, fwd, theta := dc.Knots()
	for i, m := range []float64{0.25, 0.5, 1, 2, 3, 5, 7, 10} {
		assert.InDelta(t, 0.04, fwd[i], 1e-12)
		want := kappa*0.04 + sigma*sigma*(1-math.Exp(-2*kappa*m))/(2*kappa)
		assert.InDelta(t, want, theta[i], 1e-12)
	}
}

func TestDriftCurveHoLeeConvexity(t *testing.T) {
	dc, err := NewDriftCurve(flatCurve(0.04), 0, 0.02)
	require.NoError(t, err)

	_, _, theta := dc.Knots()
	for i, m := range []float64{0.25, 0.5, 1, 2, 3, 5, 7, 10} {
		assert.InDelta(t, 0.0004*m, theta[i], 1e-12)
	}
}

// lagrange evaluates the polynomial through (xs, ys) at t.
func lagrange(xs, ys []float64, t float64) float64 {
	sum := 0.0
	for i := range xs {
		w := ys[i]
		for j := range xs {
			if j != i {
				w *= (t - xs[j]) / (xs[i] - xs[j])
			}
		}
		sum += w
	}
	return sum
}

func TestDriftCurveExtrapolatesEndPieces(t *testing.T) {
	dc, err := NewDriftCurve(testCurve(), 0.05, 0.1)
	require.NoError(t, err)

	// Outside the quotes theta is the end spline piece itself, sampled here at
	// nodes the curve does not use.
	tests := map[string]struct {
		nodes  []float64
		points []float64
	}{
		"before first maturity": {nodes: []float64{0.26, 0.3, 0.4, 0.49}, points: []float64{0, 0.05, 0.1, 0.2}},
		"after last maturity":   {nodes: []float64{21, 24, 27, 29}, points: []float64{31, 35, 40}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ys := make([]float64, len(tt.nodes))
			for i, x := range tt.nodes {
				ys[i] = dc.Theta(x)
			}
			for _, p := range tt.points {
				assert.InDelta(t, lagrange(tt.nodes, ys, p), dc.Theta(p), 1e-10, "t=%g", p)
			}
		})
	}

	// Fourth differences of a cubic vanish.
	var d [5]float64
	for i := range d {
		d[i] = dc.Theta(0.05 * float64(i))
	}
	assert.InDelta(t, 0, d[4]-4*d[3]+6*d[2]-4*d[1]+d[0], 1e-12)

	assert.InDelta(t, dc.Theta(0.25), dc.Theta(0.25-1e-9), 1e-9)
	assert.InDelta(t, dc.Theta(30), dc.Theta(30+1e-9), 1e-9)

	grid := TimeGrid(8, 0.25)
	vals := dc.OnGrid(grid)
	require.Len(t, vals, len(grid))
	for i, tm := range grid {
		assert.Equal(t, dc.Theta(tm), vals[i])
	}
}

func TestNewDriftCurveRejectsBadInput(t *testing.T) {
	_, err := NewDriftCurve(testCurve(), -0.1, 0.01)
	require.ErrorIs(t, err, model.ErrParameterValidation)

	short := model.ObservedCurve{Maturities: []float64{1, 2}, ZeroRates: []float64{0.04, 0.04}}
	_, err = NewDriftCurve(short, 0.1, 0.01)
	require.ErrorIs(t, err, model.ErrParameterValidation)
}
