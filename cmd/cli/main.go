package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"shortrate-sim/internal/analysis"
	"shortrate-sim/internal/config"
	"shortrate-sim/internal/data"
	"shortrate-sim/internal/logger"
	"shortrate-sim/internal/metrics"
	"shortrate-sim/internal/model"
	"shortrate-sim/internal/pricing"
	"shortrate-sim/internal/report"
	"shortrate-sim/internal/simulation"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "simulate":
		err = cmdSimulate(os.Args[2:])
	case "price":
		err = cmdPrice(os.Args[2:])
	case "curve":
		err = cmdCurve(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli simulate --config examples/scenarios/vasicek.yaml [--settings settings.yaml] [--out out/paths.csv]")
	fmt.Println("  cli price    --config examples/scenarios/hull_white.yaml [--settings settings.yaml] [--json -]")
	fmt.Println("  cli curve    --yields examples/data/treasury_yields.csv [--spread 2s10s] [--save-curve out/curve.json]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - runtime settings may also come from RATESIM_* env vars (e.g. RATESIM_LOGGING_LEVEL=debug)")
	fmt.Println("  - models: vasicek, cir, hull_white, ho_lee")
}

// app carries what every subcommand needs once settings are loaded.
type app struct {
	settings *config.Settings
	log      *slog.Logger
	metrics  *metrics.Metrics
	closeLog func() error
}

func setup(settingsPath string) (*app, error) {
	s, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logger.New(s.Logging.LoggerConfig(), os.Stderr)
	if err != nil {
		return nil, err
	}
	return &app{
		settings: s,
		log:      log,
		metrics:  metrics.New(s.Metrics.Namespace),
		closeLog: closeLog,
	}, nil
}

// finish flushes metrics and closes the log file. It keeps the first error.
func (a *app) finish(err error) error {
	if werr := a.metrics.WriteTextfile(a.settings.Metrics.Textfile); werr != nil {
		a.log.Error("metrics textfile", "err", werr)
		if err == nil {
			err = werr
		}
	}
	if cerr := a.closeLog(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (a *app) orchestrator() *simulation.Orchestrator {
	return simulation.New(simulation.Options{
		Workers: a.settings.Simulation.Workers,
		Logger:  a.log,
		Metrics: a.metrics,
	})
}

func (a *app) places() int32 {
	return int32(a.settings.Output.Places)
}

func (a *app) outPath(flagValue, name string) string {
	if flagValue != "" {
		return flagValue
	}
	return filepath.Join(a.settings.Output.Dir, name)
}

// runScenario simulates once, or once per seed when the scenario lists seeds.
func (a *app) runScenario(cfg *config.Config) ([]*simulation.Result, error) {
	p, err := cfg.ModelParams()
	if err != nil {
		return nil, err
	}
	orch := a.orchestrator()
	if len(cfg.Params.Seeds) > 0 {
		return orch.RunSeeds(cfg.Model, p, cfg.Params.Seeds)
	}
	res, err := orch.Run(cfg.Model, p)
	if err != nil {
		return nil, err
	}
	return []*simulation.Result{res}, nil
}

func cmdSimulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to scenario YAML")
	settingsPath := fs.String("settings", "", "Path to runtime settings YAML (optional)")
	outPath := fs.String("out", "", "Paths CSV (default <output.dir>/paths.csv)")
	cols := fs.Int("paths", -1, "Individual paths to include in the CSV (-1 = settings)")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	a, err := setup(*settingsPath)
	if err != nil {
		return err
	}
	return a.finish(a.simulate(cfg, *outPath, *cols))
}

func (a *app) simulate(cfg *config.Config, outPath string, cols int) error {
	if cols < 0 {
		cols = a.settings.Output.PathColumns
	}
	runs, err := a.runScenario(cfg)
	if err != nil {
		return err
	}
	base := a.outPath(outPath, "paths.csv")
	for _, res := range runs {
		path := base
		if len(runs) > 1 {
			path = withSeed(base, res.Seed())
		}
		if err := report.WritePathsCSV(path, res, report.PathsOptions{MaxPaths: cols, Places: a.places()}); err != nil {
			return err
		}
		fmt.Printf("Wrote %d steps x %d paths (%s, seed %d) to %s\n", res.NSteps()+1, res.NPaths(), res.Model(), res.Seed(), path)
	}
	return nil
}

func cmdPrice(args []string) error {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to scenario YAML")
	settingsPath := fs.String("settings", "", "Path to runtime settings YAML (optional)")
	outPath := fs.String("out", "", "Pricing CSV (default <output.dir>/pricing.csv)")
	jsonPath := fs.String("json", "", "Optional JSON report path, or - for stdout")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	req, err := cfg.PricingRequest()
	if err != nil {
		return err
	}
	if req.Empty() {
		return errors.New("scenario has nothing to price: add zcb_maturities, forward_pairs or swaps")
	}
	a, err := setup(*settingsPath)
	if err != nil {
		return err
	}
	return a.finish(a.price(cfg, req, *outPath, *jsonPath))
}

func (a *app) price(cfg *config.Config, req pricing.Request, outPath, jsonPath string) error {
	runs, err := a.runScenario(cfg)
	if err != nil {
		return err
	}
	base := a.outPath(outPath, "pricing.csv")
	for _, res := range runs {
		out, err := pricing.Price(res, req)
		if err != nil {
			a.metrics.ObservePricingError(errorKind(err))
			return err
		}
		a.metrics.ObservePricing("zcb", len(out.ZCB))
		a.metrics.ObservePricing("forward", len(out.Forwards))
		a.metrics.ObservePricing("swap", len(out.Swaps))

		path := base
		if len(runs) > 1 {
			path = withSeed(base, res.Seed())
		}
		if err := report.WritePricingCSV(path, out, a.places()); err != nil {
			return err
		}
		if len(out.Distributions) > 0 {
			dpath := strings.TrimSuffix(path, filepath.Ext(path)) + "_distributions.csv"
			if err := report.WriteDistributionsCSV(dpath, out.Distributions, a.places()); err != nil {
				return err
			}
		}
		a.log.Info("priced", "run_id", out.RunID, "instruments", len(out.Labels()), "out", path)

		if jsonPath != "" {
			doc, err := report.NewPricingDocument(res, out, a.places())
			if err != nil {
				return err
			}
			if err := writeJSONTo(jsonPath, len(runs) > 1, res.Seed(), doc); err != nil {
				return err
			}
		}

		if jsonPath == "-" {
			continue
		}
		fmt.Printf("%-14s %s\n", "instrument", "value")
		values := out.Values()
		for _, label := range out.Labels() {
			fmt.Printf("%-14s %.6f\n", label, values[label])
		}
	}
	return nil
}

func writeJSONTo(path string, perSeed bool, seed int64, doc *report.PricingDocument) error {
	if path == "-" {
		return report.WriteJSON(os.Stdout, doc)
	}
	if perSeed {
		path = withSeed(path, seed)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func cmdCurve(args []string) error {
	fs := flag.NewFlagSet("curve", flag.ExitOnError)
	yieldsPath := fs.String("yields", "", "Treasury yield table CSV")
	settingsPath := fs.String("settings", "", "Path to runtime settings YAML (optional)")
	percent := fs.Bool("percent", true, "Table values are quoted in percent")
	fill := fs.Bool("fill", true, "Forward-fill missing cells")
	outPath := fs.String("out", "", "Curve shapes CSV (default <output.dir>/curve_shapes.csv)")
	spread := fs.String("spread", "2s10s", "Spread to rank by inversion depth")
	top := fs.Int("top", 10, "Number of most inverted dates to print")
	kappa := fs.Float64("kappa", analysis.DefaultKappa, "Mean-reversion speed for the Vasicek estimate")
	saveCurve := fs.String("save-curve", "", "Optional path to write the latest observed curve (JSON or YAML)")
	simPaths := fs.Int("simulate", 0, "Paths for a Vasicek run from the estimate, compared with the latest curve (0 = off)")
	seed := fs.Int64("seed", 42, "Seed for --simulate")
	_ = fs.Parse(args)

	if *yieldsPath == "" {
		fmt.Println("--yields is required")
		os.Exit(2)
	}
	if !knownSpread(*spread) {
		return fmt.Errorf("unknown spread %q", *spread)
	}
	if *top < 0 {
		return errors.New("--top must be >= 0")
	}
	if *simPaths < 0 {
		return errors.New("--simulate must be >= 0")
	}
	rows, err := data.LoadYieldTable(*yieldsPath, data.YieldTableOptions{Percent: *percent, FillForward: *fill})
	if err != nil {
		return err
	}
	a, err := setup(*settingsPath)
	if err != nil {
		return err
	}
	if err := a.curve(rows, *outPath, *spread, *top, *kappa, *saveCurve); err != nil {
		return a.finish(err)
	}
	if *simPaths > 0 {
		return a.finish(a.compareVasicek(rows, *kappa, *simPaths, *seed))
	}
	return a.finish(nil)
}

func (a *app) curve(rows []model.YieldRecord, outPath, spread string, top int, kappa float64, saveCurve string) error {
	shapes := analysis.ComputeShapes(rows)
	path := a.outPath(outPath, "curve_shapes.csv")
	if err := report.WriteCurveShapesCSV(path, shapes, a.places()); err != nil {
		return err
	}
	fmt.Printf("Wrote %d dates to %s\n", len(shapes), path)

	share, n := analysis.InversionShare(shapes, spread)
	fmt.Printf("%s inverted on %.1f%% of %d dates\n", spread, share*100, n)
	ranked := analysis.RankByInversion(shapes, spread, top)
	if len(ranked) > 0 {
		fmt.Printf("%-4s %-12s %-10s %-9s\n", "rank", "date", spread, "inverted")
		for i, r := range ranked {
			fmt.Printf("%-4d %-12s %-10.4f %-9t\n", i+1, r.Date.Format("2006-01-02"), r.Spread.Value, r.Spread.Inverted)
		}
	}

	est, err := analysis.EstimateVasicek(rows, kappa)
	if err != nil {
		a.log.Warn("vasicek estimate unavailable", "err", err)
	} else {
		fmt.Printf("vasicek estimate: r0=%.4f kappa=%.2f theta=%.4f sigma=%.4f (theta window %d, sigma samples %d)\n",
			est.R0, est.Kappa, est.Theta, est.Sigma, est.ThetaWindow, est.SigmaSamples)
	}

	if saveCurve != "" {
		c, err := data.LatestCurve(rows)
		if err != nil {
			return err
		}
		if err := data.SaveCurve(c, saveCurve); err != nil {
			return err
		}
		a.log.Info("saved observed curve", "as_of", c.AsOf.Format("2006-01-02"), "points", c.Len(), "path", saveCurve)
	}
	return nil
}

// compareVasicekHorizon is how far the estimated model is simulated, in years.
const compareVasicekHorizon = 10

// compareVasicek simulates the historical Vasicek estimate and sets its implied
// zero yields next to the latest observed curve.
func (a *app) compareVasicek(rows []model.YieldRecord, kappa float64, paths int, seed int64) error {
	est, err := analysis.EstimateVasicek(rows, kappa)
	if err != nil {
		return err
	}
	observed, err := data.LatestCurve(rows)
	if err != nil {
		return err
	}
	p := est.Params(model.Common{
		T:      compareVasicekHorizon,
		Dt:     1.0 / analysis.TradingDaysPerYear,
		NPaths: paths,
		Seed:   &seed,
	})
	res, err := a.orchestrator().Run(string(model.Vasicek), p)
	if err != nil {
		return err
	}

	var req pricing.Request
	for _, m := range observed.Maturities {
		if _, err := pricing.StepIndex(m, res.Dt(), res.NSteps()); err == nil {
			req.ZCBMaturities = append(req.ZCBMaturities, m)
		}
	}
	out, err := pricing.Price(res, req)
	if err != nil {
		a.metrics.ObservePricingError(errorKind(err))
		return err
	}
	a.metrics.ObservePricing("zcb", len(out.ZCB))

	fmt.Printf("\nvasicek (seed %d, %d paths) vs curve of %s\n", res.Seed(), res.NPaths(), observed.AsOf.Format("2006-01-02"))
	fmt.Printf("%-6s %-10s %-10s %-10s\n", "tenor", "model", "observed", "diff")
	for _, m := range req.ZCBMaturities {
		implied := -math.Log(out.ZCB[m]) / m
		obs, _ := observed.RateAt(m)
		fmt.Printf("%-6s %-10.4f %-10.4f %-10.4f\n", model.FormatTenor(m), implied, obs, implied-obs)
	}
	return nil
}

func knownSpread(name string) bool {
	for _, def := range analysis.StandardSpreads {
		if def.Name == name {
			return true
		}
	}
	return false
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrGridAlignment):
		return "grid_alignment"
	case errors.Is(err, model.ErrNumericalDegeneracy):
		return "numerical_degeneracy"
	case errors.Is(err, model.ErrParameterValidation):
		return "parameter_validation"
	default:
		return "other"
	}
}

func withSeed(path string, seed int64) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_seed%d%s", strings.TrimSuffix(path, ext), seed, ext)
}
