package ratemodel

import (
	"shortrate-sim/internal/model"
)

// HullWhiteSimulator: dr = (theta(t) - kappa*r)dt + sigma dW, with theta(t)
// fitted to the observed zero curve.
type HullWhiteSimulator struct {
	opts Options
}

func (s *HullWhiteSimulator) Name() model.Name { return model.HullWhite }

func (s *HullWhiteSimulator) Simulate(p model.Params) (*Paths, error) {
	v, ok := p.(model.HullWhiteParams)
	if !ok {
		return nil, mismatch(model.HullWhite, p)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return s.opts.curveFitted(model.HullWhite, v.Common, v.Kappa, v.Curve)
}

// HoLeeSimulator: dr = (theta(t) - kappa*r)dt + sigma dW with kappa usually zero,
// i.e. a pure additive curve-fitted drift.
type HoLeeSimulator struct {
	opts Options
}

func (s *HoLeeSimulator) Name() model.Name { return model.HoLee }

func (s *HoLeeSimulator) Simulate(p model.Params) (*Paths, error) {
	v, ok := p.(model.HoLeeParams)
	if !ok {
		return nil, mismatch(model.HoLee, p)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return s.opts.curveFitted(model.HoLee, v.Common, v.Kappa, v.Curve)
}

// curveFitted evaluates theta(t) on the grid once, then runs the shared Euler loop.
func (o Options) curveFitted(name model.Name, c model.Common, kappa float64, curve model.ObservedCurve) (*Paths, error) {
	drift, err := o.Cache.Get(name, curve, kappa, c.Sigma)
	if err != nil {
		return nil, err
	}
	theta := drift.OnGrid(TimeGrid(c.NSteps(), c.Dt))
	return euler(c, o, func(r float64, i int) (float64, float64) {
		return theta[i] - kappa*r, c.Sigma
	}), nil
}
