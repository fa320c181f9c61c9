package analysis

import (
	"fmt"
	"math"

	"shortrate-sim/internal/model"

	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDaysPerYear annualizes daily changes and sizes the theta window.
	TradingDaysPerYear = 252
	// DefaultKappa is the mean-reversion speed assumed when none is estimated.
	DefaultKappa = 0.3
)

// VasicekEstimate holds Vasicek inputs read off a yield history. All rates are
// decimals.
type VasicekEstimate struct {
	R0    float64
	Kappa float64
	Theta float64
	Sigma float64

	// ThetaWindow and SigmaSamples are how many observations fed each estimate.
	ThetaWindow  int
	SigmaSamples int
}

// EstimateVasicek derives starting parameters from a yield table:
//
//	r0    = latest fed funds
//	theta = mean 10Y yield over the last 252 observations
//	sigma = sample std of daily fed funds changes * sqrt(252)
//
// Kappa is not identified by these statistics; kappa <= 0 selects DefaultKappa.
// rows are sorted by date in place.
func EstimateVasicek(rows []model.YieldRecord, kappa float64) (VasicekEstimate, error) {
	est := VasicekEstimate{Kappa: kappa}
	if est.Kappa <= 0 {
		est.Kappa = DefaultKappa
	}
	if len(rows) == 0 {
		return est, fmt.Errorf("estimate vasicek: no observations")
	}
	model.SortRecords(rows)

	var tenY []float64
	for _, r := range rows {
		if v, ok := r.Yield(10); ok {
			tenY = append(tenY, v)
		}
	}
	if len(tenY) == 0 {
		return est, fmt.Errorf("estimate vasicek: no 10Y observations")
	}
	if len(tenY) > TradingDaysPerYear {
		tenY = tenY[len(tenY)-TradingDaysPerYear:]
	}
	est.Theta = stat.Mean(tenY, nil)
	est.ThetaWindow = len(tenY)

	var diffs []float64
	havePrev := false
	prev := 0.0
	for _, r := range rows {
		if !r.HasFedFunds {
			havePrev = false
			continue
		}
		if havePrev {
			diffs = append(diffs, r.FedFunds-prev)
		}
		prev, havePrev = r.FedFunds, true
		est.R0 = r.FedFunds
	}
	if len(diffs) < 2 {
		return est, fmt.Errorf("estimate vasicek: need at least 3 consecutive fed funds observations, got %d changes", len(diffs))
	}
	est.Sigma = stat.StdDev(diffs, nil) * math.Sqrt(TradingDaysPerYear)
	est.SigmaSamples = len(diffs)
	return est, nil
}

// Params builds Vasicek parameters from the estimate and the simulation settings.
func (e VasicekEstimate) Params(c model.Common) model.VasicekParams {
	c.R0 = e.R0
	c.Sigma = e.Sigma
	return model.VasicekParams{Common: c, Kappa: e.Kappa, Theta: e.Theta}
}
