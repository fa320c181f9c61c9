package model

import (
	"math"
)

// Common holds the parameters shared by every model family.
// Units:
// - R0, Theta, Sigma: annualized decimals (0.04 == 4%)
// - T, Dt: years
type Common struct {
	R0     float64
	Sigma  float64
	T      float64
	Dt     float64
	NPaths int
	// Seed makes the shock draw reproducible. Nil draws a fresh seed per run.
	Seed *int64
}

// NSteps is the number of Euler steps on the simulation grid.
func (c Common) NSteps() int {
	return int(math.Round(c.T / c.Dt))
}

func (c Common) Validate() error {
	if !finite(c.R0) {
		return Invalidf("r0 must be finite")
	}
	if !finite(c.Sigma) || c.Sigma < 0 {
		return Invalidf("sigma must be >= 0")
	}
	if !finite(c.T) || c.T <= 0 {
		return Invalidf("T must be > 0")
	}
	if !finite(c.Dt) || c.Dt <= 0 {
		return Invalidf("dt must be > 0")
	}
	if c.Dt > c.T {
		return Invalidf("dt (%g) must not exceed T (%g)", c.Dt, c.T)
	}
	if c.NPaths <= 0 {
		return Invalidf("n_paths must be > 0")
	}
	return nil
}

// Params is the closed set of model parameter variants.
// The unexported method keeps implementations inside this package, so a switch
// over the four concrete types is exhaustive.
type Params interface {
	Model() Name
	Base() Common
	Validate() error
	sealed()
}

// VasicekParams: mean reversion to a constant level with constant volatility.
type VasicekParams struct {
	Common
	Kappa float64
	Theta float64
}

func (VasicekParams) Model() Name       { return Vasicek }
func (p VasicekParams) Base() Common    { return p.Common }
func (VasicekParams) sealed()           {}
func (p VasicekParams) Validate() error { return validateMeanReverting(p.Common, p.Kappa, p.Theta) }

// CIRParams: square-root diffusion around a constant level.
type CIRParams struct {
	Common
	Kappa float64
	Theta float64
}

func (CIRParams) Model() Name       { return CIR }
func (p CIRParams) Base() Common    { return p.Common }
func (CIRParams) sealed()           {}
func (p CIRParams) Validate() error { return validateMeanReverting(p.Common, p.Kappa, p.Theta) }

// HullWhiteParams: mean reversion to a target implied by the observed zero curve.
type HullWhiteParams struct {
	Common
	Kappa float64
	Curve ObservedCurve
}

func (HullWhiteParams) Model() Name    { return HullWhite }
func (p HullWhiteParams) Base() Common { return p.Common }
func (HullWhiteParams) sealed()        {}

func (p HullWhiteParams) Validate() error {
	if err := p.Common.Validate(); err != nil {
		return err
	}
	if !finite(p.Kappa) || p.Kappa <= 0 {
		return Invalidf("kappa must be > 0 for %s", HullWhite)
	}
	return p.Curve.Validate()
}

// HoLeeParams: additive curve-fitted drift. Kappa defaults to zero (no mean reversion).
type HoLeeParams struct {
	Common
	Kappa float64
	Curve ObservedCurve
}

func (HoLeeParams) Model() Name    { return HoLee }
func (p HoLeeParams) Base() Common { return p.Common }
func (HoLeeParams) sealed()        {}

func (p HoLeeParams) Validate() error {
	if err := p.Common.Validate(); err != nil {
		return err
	}
	if !finite(p.Kappa) || p.Kappa < 0 {
		return Invalidf("kappa must be >= 0")
	}
	return p.Curve.Validate()
}

func validateMeanReverting(c Common, kappa, theta float64) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !finite(kappa) || kappa < 0 {
		return Invalidf("kappa must be >= 0")
	}
	if !finite(theta) {
		return Invalidf("theta must be finite")
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// WithSeed returns a copy of p whose shock draw uses seed.
func WithSeed(p Params, seed int64) Params {
	switch v := p.(type) {
	case VasicekParams:
		v.Seed = &seed
		return v
	case CIRParams:
		v.Seed = &seed
		return v
	case HullWhiteParams:
		v.Seed = &seed
		return v
	case HoLeeParams:
		v.Seed = &seed
		return v
	default:
		return p
	}
}
