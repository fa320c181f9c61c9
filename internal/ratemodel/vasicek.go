package ratemodel

import (
	"math"

	"shortrate-sim/internal/model"
)

// VasicekSimulator: dr = kappa*(theta - r)dt + sigma dW.
type VasicekSimulator struct {
	opts Options
}

func (s *VasicekSimulator) Name() model.Name { return model.Vasicek }

func (s *VasicekSimulator) Simulate(p model.Params) (*Paths, error) {
	v, ok := p.(model.VasicekParams)
	if !ok {
		return nil, mismatch(model.Vasicek, p)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return euler(v.Common, s.opts, func(r float64, _ int) (float64, float64) {
		return v.Kappa * (v.Theta - r), v.Sigma
	}), nil
}

// CIRSimulator: dr = kappa*(theta - r)dt + sigma*sqrt(r) dW.
//
// The diffusion uses sqrt(max(r, 0)) so the update stays real when a path dips
// below zero. Rates are not floored: a negative excursion keeps drifting back
// under the mean-reversion term alone.
type CIRSimulator struct {
	opts Options
}

func (s *CIRSimulator) Name() model.Name { return model.CIR }

func (s *CIRSimulator) Simulate(p model.Params) (*Paths, error) {
	v, ok := p.(model.CIRParams)
	if !ok {
		return nil, mismatch(model.CIR, p)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return euler(v.Common, s.opts, func(r float64, _ int) (float64, float64) {
		return v.Kappa * (v.Theta - r), v.Sigma * math.Sqrt(math.Max(r, 0))
	}), nil
}
