// Package simulation runs a named rate model end to end: parameter checks,
// path simulation, discount factors, and the immutable Result bundle.
package simulation

import (
	"fmt"
	"log/slog"
	"time"

	"shortrate-sim/internal/discount"
	"shortrate-sim/internal/logger"
	"shortrate-sim/internal/metrics"
	"shortrate-sim/internal/model"
	"shortrate-sim/internal/ratemodel"

	"github.com/google/uuid"
)

type Options struct {
	// Workers bounds path-level parallelism. Zero means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Cache is shared by every run of this orchestrator. Nil gets a fresh one.
	Cache *ratemodel.DriftCache
}

type Orchestrator struct {
	sim     ratemodel.Options
	log     *slog.Logger
	metrics *metrics.Metrics
}

func New(opts Options) *Orchestrator {
	cache := opts.Cache
	if cache == nil {
		cache = ratemodel.NewDriftCache()
	}
	return &Orchestrator{
		sim:     ratemodel.Options{Workers: opts.Workers, Cache: cache},
		log:     logger.OrDiscard(opts.Logger),
		metrics: opts.Metrics,
	}
}

// Run simulates the model identified by name with params p.
func (o *Orchestrator) Run(name string, p model.Params) (*Result, error) {
	n, err := model.ParseName(name)
	if err != nil {
		o.log.Warn("simulation rejected", "model", name, "err", err)
		return nil, err
	}
	if p == nil {
		return nil, model.Invalidf("no parameters for model %s", n)
	}
	if p.Model() != n {
		return nil, model.Invalidf("parameters for %s passed to model %s", p.Model(), n)
	}

	sim, err := ratemodel.New(n, o.sim)
	if err != nil {
		return nil, err
	}

	c := p.Base()
	start := time.Now()
	res, err := o.run(sim, p)
	elapsed := time.Since(start)
	o.metrics.ObserveRun(string(n), c.NPaths, c.NSteps(), elapsed, err)
	if err != nil {
		o.log.Warn("simulation failed", "model", n, "err", err)
		return nil, err
	}
	hits, misses := o.sim.Cache.Stats()
	o.metrics.ObserveCache(hits, misses, o.sim.Cache.Len())

	o.log.Info("simulation complete",
		"run_id", res.RunID(),
		"model", n,
		"paths", c.NPaths,
		"steps", res.NSteps(),
		"dt", c.Dt,
		"seed", res.Seed(),
		"seeded", c.Seed != nil,
		"elapsed", elapsed,
	)
	return res, nil
}

func (o *Orchestrator) run(sim ratemodel.Simulator, p model.Params) (*Result, error) {
	paths, err := sim.Simulate(p)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", sim.Name(), err)
	}
	dt := p.Base().Dt
	df, err := discount.Build(paths.Rates, dt)
	if err != nil {
		return nil, fmt.Errorf("discount factors: %w", err)
	}
	return &Result{
		runID:  uuid.New(),
		model:  sim.Name(),
		params: p,
		rates:  paths.Rates,
		df:     df,
		grid:   paths.TimeGrid,
		dt:     dt,
		seed:   paths.Seed,
	}, nil
}

// RunSeeds runs the same model once per seed. It stops at the first failure.
func (o *Orchestrator) RunSeeds(name string, p model.Params, seeds []int64) ([]*Result, error) {
	if len(seeds) == 0 {
		return nil, model.Invalidf("no seeds given")
	}
	if p == nil {
		return nil, model.Invalidf("no parameters for model %s", name)
	}
	out := make([]*Result, 0, len(seeds))
	for _, s := range seeds {
		res, err := o.Run(name, model.WithSeed(p, s))
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", s, err)
		}
		out = append(out, res)
	}
	return out, nil
}
