package ratemodel

import (
	"fmt"
	"math"

	"shortrate-sim/internal/model"

	"gonum.org/v1/gonum/interp"
)

// DriftCurve is theta(t) for the curve-fitted models, derived once from an
// observed zero curve:
//
//	f(m)     = -d/dm ln P(0, m),  P(0, m) = exp(-z(m) m)
//	theta(m) = f'(m) + kappa*f(m) + sigma^2 * g(m)
//	g(m)     = (1 - exp(-2 kappa m)) / (2 kappa)   (kappa > 0)
//	g(m)     = m                                   (kappa == 0)
//
// Between observed maturities theta is a not-a-knot cubic spline; outside it the
// first and last spline pieces are continued as the cubics they are.
type DriftCurve struct {
	maturities []float64
	forwards   []float64
	theta      []float64

	spline interp.NotAKnotCubic

	lo, hi       float64
	first, final cubicPiece
}

// cubicPiece is one spline segment, held as four samples so it can be evaluated
// past its interval by Lagrange interpolation.
type cubicPiece struct {
	x, y [4]float64
}

func newCubicPiece(s *interp.NotAKnotCubic, a, b float64) cubicPiece {
	var c cubicPiece
	for k := range c.x {
		c.x[k] = a + (b-a)*float64(k)/3
		c.y[k] = s.Predict(c.x[k])
	}
	return c
}

func (c cubicPiece) at(t float64) float64 {
	sum := 0.0
	for i := range c.x {
		w := c.y[i]
		for j := range c.x {
			if j != i {
				w *= (t - c.x[j]) / (c.x[i] - c.x[j])
			}
		}
		sum += w
	}
	return sum
}

func NewDriftCurve(curve model.ObservedCurve, kappa, sigma float64) (*DriftCurve, error) {
	if err := curve.Validate(); err != nil {
		return nil, err
	}
	if kappa < 0 {
		return nil, model.Invalidf("kappa must be >= 0")
	}

	m := curve.Maturities
	logDF := make([]float64, len(m))
	for i := range m {
		logDF[i] = -curve.ZeroRates[i] * m[i]
	}

	fwd := gradient(logDF, m)
	for i := range fwd {
		fwd[i] = -fwd[i]
	}
	slope := gradient(fwd, m)

	theta := make([]float64, len(m))
	for i := range m {
		theta[i] = slope[i] + kappa*fwd[i] + sigma*sigma*convexity(kappa, m[i])
	}

	dc := &DriftCurve{
		maturities: append([]float64(nil), m...),
		forwards:   fwd,
		theta:      theta,
	}
	if err := dc.spline.Fit(dc.maturities, theta); err != nil {
		return nil, fmt.Errorf("fit drift spline: %w", err)
	}
	n := len(m)
	dc.lo, dc.hi = m[0], m[n-1]
	dc.first = newCubicPiece(&dc.spline, m[0], m[1])
	dc.final = newCubicPiece(&dc.spline, m[n-2], m[n-1])
	return dc, nil
}

func convexity(kappa, m float64) float64 {
	if kappa == 0 {
		return m
	}
	return (1 - math.Exp(-2*kappa*m)) / (2 * kappa)
}

// Theta evaluates theta at time t (years).
func (d *DriftCurve) Theta(t float64) float64 {
	switch {
	case t < d.lo:
		return d.first.at(t)
	case t > d.hi:
		return d.final.at(t)
	default:
		return d.spline.Predict(t)
	}
}

// OnGrid evaluates theta at every grid time.
func (d *DriftCurve) OnGrid(grid []float64) []float64 {
	out := make([]float64, len(grid))
	for i, t := range grid {
		out[i] = d.Theta(t)
	}
	return out
}

// Knots returns the observed maturities with the instantaneous forward rate and
// theta at each of them.
func (d *DriftCurve) Knots() (maturities, forwards, theta []float64) {
	return append([]float64(nil), d.maturities...),
		append([]float64(nil), d.forwards...),
		append([]float64(nil), d.theta...)
}

// gradient differentiates y with respect to a non-uniform x: second-order central
// differences in the interior, first-order one-sided differences at both ends.
// Requires len(x) >= 2.
func gradient(y, x []float64) []float64 {
	n := len(x)
	g := make([]float64, n)
	g[0] = (y[1] - y[0]) / (x[1] - x[0])
	g[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		hs := x[i] - x[i-1]
		hd := x[i+1] - x[i]
		g[i] = (hs*hs*y[i+1] + (hd*hd-hs*hs)*y[i] - hd*hd*y[i-1]) / (hs * hd * (hd + hs))
	}
	return g
}
