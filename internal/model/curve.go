package model

import "time"

// MinCurvePoints is the fewest observed maturities a drift curve is derived from.
const MinCurvePoints = 6

// ObservedCurve is a zero curve handed over by the data-ingestion side.
// Maturities are in years, ZeroRates are continuously compounded decimals.
type ObservedCurve struct {
	AsOf       time.Time
	Maturities []float64
	ZeroRates  []float64
}

func (c ObservedCurve) Len() int { return len(c.Maturities) }

func (c ObservedCurve) Validate() error {
	if len(c.Maturities) != len(c.ZeroRates) {
		return Invalidf("curve has %d maturities but %d zero rates", len(c.Maturities), len(c.ZeroRates))
	}
	if len(c.Maturities) < MinCurvePoints {
		return Invalidf("curve needs at least %d points, got %d", MinCurvePoints, len(c.Maturities))
	}
	for i, m := range c.Maturities {
		if !finite(m) || m <= 0 {
			return Invalidf("curve maturity %d must be > 0", i)
		}
		if i > 0 && m <= c.Maturities[i-1] {
			return Invalidf("curve maturities must be strictly increasing (index %d)", i)
		}
		if !finite(c.ZeroRates[i]) {
			return Invalidf("curve zero rate %d must be finite", i)
		}
	}
	return nil
}

// RateAt returns the zero rate quoted at exactly maturity m, if present.
func (c ObservedCurve) RateAt(m float64) (float64, bool) {
	for i, x := range c.Maturities {
		if x == m {
			return c.ZeroRates[i], true
		}
	}
	return 0, false
}
