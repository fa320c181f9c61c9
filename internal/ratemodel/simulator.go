// Package ratemodel simulates short-rate paths under the supported model families.
package ratemodel

import (
	"fmt"
	"math"
	"runtime"

	"shortrate-sim/internal/model"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Paths is the raw output of one simulation: rates indexed [path, step] and the
// matching time grid. Seed is the seed actually used for the shock draw.
type Paths struct {
	Rates    *mat.Dense
	TimeGrid []float64
	Seed     int64
}

// Options tune how a simulator runs. The zero value is usable.
type Options struct {
	// Workers bounds how many goroutines advance paths concurrently.
	// Zero means GOMAXPROCS.
	Workers int
	// Cache memoizes drift curves for the curve-fitted models. May be nil.
	Cache *DriftCache
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

type Simulator interface {
	Name() model.Name
	Simulate(p model.Params) (*Paths, error)
}

// New returns the simulator for a model family.
func New(name model.Name, opts Options) (Simulator, error) {
	switch name {
	case model.Vasicek:
		return &VasicekSimulator{opts: opts}, nil
	case model.CIR:
		return &CIRSimulator{opts: opts}, nil
	case model.HullWhite:
		return &HullWhiteSimulator{opts: opts}, nil
	case model.HoLee:
		return &HoLeeSimulator{opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownModel, name)
	}
}

// stepFunc returns the drift and the diffusion scale for rate r at grid step i.
type stepFunc func(r float64, i int) (drift, vol float64)

// euler advances every path with the explicit Euler-Maruyama update
//
//	r[i+1] = r[i] + drift(r[i], i)*dt + vol(r[i])*sqrt(dt)*z[i]
//
// Shocks for all paths are drawn from one stream before any path is advanced,
// so the output does not depend on how paths are spread over workers.
func euler(c model.Common, opts Options, step stepFunc) *Paths {
	n := c.NSteps()
	seed := resolveSeed(c.Seed)
	shocks := drawShocks(seed, c.NPaths, n)

	rates := mat.NewDense(c.NPaths, n+1, nil)
	sqdt := math.Sqrt(c.Dt)

	forEachPath(c.NPaths, opts.workers(), func(p int) {
		row := rates.RawRowView(p)
		z := shocks.RawRowView(p)
		row[0] = c.R0
		for i := 0; i < n; i++ {
			r := row[i]
			drift, vol := step(r, i)
			row[i+1] = r + drift*c.Dt + vol*sqdt*z[i]
		}
	})

	return &Paths{Rates: rates, TimeGrid: TimeGrid(n, c.Dt), Seed: seed}
}

// forEachPath runs fn for every path index, splitting the range into contiguous
// shards. Each shard owns its rows exclusively.
func forEachPath(nPaths, workers int, fn func(p int)) {
	if workers > nPaths {
		workers = nPaths
	}
	if workers <= 1 {
		for p := 0; p < nPaths; p++ {
			fn(p)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	shard := (nPaths + workers - 1) / workers
	for start := 0; start < nPaths; start += shard {
		start := start
		end := min(start+shard, nPaths)
		g.Go(func() error {
			for p := start; p < end; p++ {
				fn(p)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// TimeGrid returns the n+1 evenly spaced times 0, dt, ..., n*dt.
func TimeGrid(n int, dt float64) []float64 {
	grid := make([]float64, n+1)
	for i := range grid {
		grid[i] = float64(i) * dt
	}
	return grid
}

func mismatch(want model.Name, got model.Params) error {
	return model.Invalidf("%s simulator cannot run %T", want, got)
}
