package pricing

import (
	"fmt"
	"math"

	"shortrate-sim/internal/model"
)

// GridTolerance is how far m/dt may sit from an integer and still count as a
// whole number of steps.
const GridTolerance = 1e-6

// StepIndex maps a maturity onto the simulation grid. lastStep is the index of
// the final grid column.
func StepIndex(maturity, dt float64, lastStep int) (int, error) {
	if math.IsNaN(maturity) || math.IsInf(maturity, 0) || maturity < 0 {
		return 0, model.Invalidf("maturity must be finite and >= 0, got %g", maturity)
	}
	if math.IsNaN(dt) || dt <= 0 {
		return 0, model.Invalidf("dt must be > 0")
	}
	steps := maturity / dt
	idx := math.Round(steps)
	if math.Abs(steps-idx) > GridTolerance {
		return 0, fmt.Errorf("%w: maturity %g is %.6f steps of %g", model.ErrGridAlignment, maturity, steps, dt)
	}
	if int(idx) > lastStep {
		return 0, fmt.Errorf("%w: maturity %g is beyond the simulated horizon %g", model.ErrGridAlignment, maturity, float64(lastStep)*dt)
	}
	return int(idx), nil
}
