package pricing

import (
	"fmt"
	"math"
	"sort"

	"shortrate-sim/internal/analysis"
	"shortrate-sim/internal/model"
	"shortrate-sim/internal/simulation"
)

// SwapRequest asks for a par swap rate. PaymentTimes, when empty, is built from
// Frequency with PaymentSchedule.
type SwapRequest struct {
	Maturity     float64
	PaymentTimes []float64
	Frequency    int
}

// Schedule resolves the payment times for the swap.
func (s SwapRequest) Schedule() ([]float64, error) {
	if len(s.PaymentTimes) > 0 {
		return s.PaymentTimes, nil
	}
	if s.Frequency == 0 {
		return nil, model.Invalidf("swap %g needs payment times or a frequency", s.Maturity)
	}
	return PaymentSchedule(s.Maturity, s.Frequency)
}

type Request struct {
	ZCBMaturities []float64
	ForwardPairs  [][2]float64
	Swaps         []SwapRequest
	// Distributions attaches per-path zero-coupon price summaries.
	Distributions bool
}

func (r Request) Empty() bool {
	return len(r.ZCBMaturities) == 0 && len(r.ForwardPairs) == 0 && len(r.Swaps) == 0
}

// Validate checks every requested maturity against a simulation with step dt
// and horizon lastStep*dt. Nothing is priced if any item is rejected, and two
// items that would report under the same label are rejected too.
func (r Request) Validate(dt float64, lastStep int) error {
	seen := map[string]bool{}
	unique := func(label string) error {
		if seen[label] {
			return model.Invalidf("%s is requested twice", label)
		}
		seen[label] = true
		return nil
	}

	for _, m := range r.ZCBMaturities {
		if !(m > 0) {
			return model.Invalidf("zcb maturity must be > 0, got %g", m)
		}
		if _, err := StepIndex(m, dt, lastStep); err != nil {
			return fmt.Errorf("zcb %g: %w", m, err)
		}
		if err := unique("zcb_" + model.FormatTenor(m)); err != nil {
			return err
		}
	}
	for _, pair := range r.ForwardPairs {
		t1, t2 := pair[0], pair[1]
		if !(t1 > 0 && t2 > t1) {
			return model.Invalidf("forward pair needs 0 < T1 < T2, got %g and %g", t1, t2)
		}
		if err := unique("fwd_" + ForwardLabel(t1, t2)); err != nil {
			return err
		}
		for _, m := range pair {
			if _, err := StepIndex(m, dt, lastStep); err != nil {
				return fmt.Errorf("forward %s: %w", ForwardLabel(t1, t2), err)
			}
		}
	}
	for _, s := range r.Swaps {
		times, err := s.Schedule()
		if err != nil {
			return err
		}
		if err := validateSchedule(times, s.Maturity); err != nil {
			return err
		}
		if err := unique("swap_" + model.FormatTenor(s.Maturity)); err != nil {
			return err
		}
		if _, err := StepIndex(s.Maturity, dt, lastStep); err != nil {
			return fmt.Errorf("swap %g: %w", s.Maturity, err)
		}
		for _, t := range times {
			if _, err := StepIndex(t, dt, lastStep); err != nil {
				return fmt.Errorf("swap %g payment %g: %w", s.Maturity, t, err)
			}
		}
	}
	return nil
}

type Result struct {
	RunID string

	ZCB map[float64]float64
	// Forwards is keyed "T1xT2", e.g. "1x2".
	Forwards map[string]float64
	// Swaps is keyed by maturity label, e.g. "5Y".
	Swaps         map[string]float64
	Distributions map[string]analysis.Summary
}

// Values flattens the result to label -> scalar, with labels "zcb_<tenor>",
// "fwd_<T1>x<T2>" and "swap_<tenor>".
func (r *Result) Values() map[string]float64 {
	out := make(map[string]float64, len(r.ZCB)+len(r.Forwards)+len(r.Swaps))
	for m, v := range r.ZCB {
		out["zcb_"+model.FormatTenor(m)] = v
	}
	for k, v := range r.Forwards {
		out["fwd_"+k] = v
	}
	for k, v := range r.Swaps {
		out["swap_"+k] = v
	}
	return out
}

// Labels returns the keys of Values in sorted order.
func (r *Result) Labels() []string {
	vals := r.Values()
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Price values every instrument in req against one simulation result.
func Price(res *simulation.Result, req Request) (*Result, error) {
	if res == nil {
		return nil, model.Invalidf("simulation result is nil")
	}
	dt := res.Dt()
	lastStep := res.NSteps()
	if err := req.Validate(dt, lastStep); err != nil {
		return nil, err
	}
	df := res.DiscountFactors()

	out := &Result{
		RunID:    res.RunID(),
		ZCB:      make(map[float64]float64, len(req.ZCBMaturities)),
		Forwards: make(map[string]float64, len(req.ForwardPairs)),
		Swaps:    make(map[string]float64, len(req.Swaps)),
	}
	if req.Distributions {
		out.Distributions = make(map[string]analysis.Summary, len(req.ZCBMaturities))
	}

	for _, m := range req.ZCBMaturities {
		prices, err := ZeroCouponPrices(df, dt, m)
		if err != nil {
			return nil, fmt.Errorf("zcb %g: %w", m, err)
		}
		s, err := analysis.Summarize(prices)
		if err != nil {
			return nil, fmt.Errorf("zcb %g: %w", m, err)
		}
		out.ZCB[m] = s.Mean
		if req.Distributions {
			out.Distributions[model.FormatTenor(m)] = s
		}
	}

	for _, pair := range req.ForwardPairs {
		t1, t2 := pair[0], pair[1]
		p1, err := ZeroCouponPrices(df, dt, t1)
		if err != nil {
			return nil, err
		}
		p2, err := ZeroCouponPrices(df, dt, t2)
		if err != nil {
			return nil, err
		}
		f, err := ForwardRate(p1, p2, t1, t2)
		if err != nil {
			return nil, fmt.Errorf("forward %s: %w", ForwardLabel(t1, t2), err)
		}
		out.Forwards[ForwardLabel(t1, t2)] = f
	}

	for _, s := range req.Swaps {
		times, err := s.Schedule()
		if err != nil {
			return nil, err
		}
		rate, err := ParSwapRate(df, times, s.Maturity, dt)
		if err != nil {
			return nil, fmt.Errorf("swap %g: %w", s.Maturity, err)
		}
		if math.IsNaN(rate) {
			return nil, fmt.Errorf("swap %g: %w: rate is NaN", s.Maturity, model.ErrNumericalDegeneracy)
		}
		out.Swaps[model.FormatTenor(s.Maturity)] = rate
	}
	return out, nil
}
