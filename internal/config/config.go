package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"shortrate-sim/internal/data"
	"shortrate-sim/internal/model"
	"shortrate-sim/internal/pricing"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk scenario shape (YAML): which model to run, with what
// parameters, against which curve, and what to price.
type Config struct {
	Model  string       `yaml:"model"`
	Params ParamsConfig `yaml:"params"`

	// Optional: load the observed curve from a separate file (JSON or YAML).
	// Points given inline under curve override the file's points tenor by tenor.
	CurveFile string         `yaml:"curve_file"`
	Curve     data.CurveFile `yaml:"curve"`

	Pricing PricingConfig `yaml:"pricing"`
}

type ParamsConfig struct {
	R0    float64 `yaml:"r0"`
	Kappa float64 `yaml:"kappa"`
	Theta float64 `yaml:"theta"`
	Sigma float64 `yaml:"sigma"`

	HorizonYears float64 `yaml:"horizon_years"`
	// Exactly one of Dt or StepsPerYear.
	Dt           float64 `yaml:"dt"`
	StepsPerYear int     `yaml:"steps_per_year"`
	NPaths       int     `yaml:"n_paths"`

	Seed  *int64  `yaml:"seed"`
	Seeds []int64 `yaml:"seeds"`
}

type PricingConfig struct {
	ZCBMaturities []Tenor      `yaml:"zcb_maturities"`
	ForwardPairs  [][]Tenor    `yaml:"forward_pairs"`
	Swaps         []SwapConfig `yaml:"swaps"`
	Distributions bool         `yaml:"distributions"`
}

type SwapConfig struct {
	Maturity     Tenor   `yaml:"maturity"`
	Frequency    int     `yaml:"frequency"`
	PaymentTimes []Tenor `yaml:"payment_times"`
}

// Tenor is a maturity in years. YAML may give it as a number (1.5) or a label
// ("18M", "10Y").
type Tenor float64

func (t *Tenor) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: tenor must be a scalar", n.Line)
	}
	switch n.ShortTag() {
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		*t = Tenor(f)
		return nil
	}
	years, err := model.ParseTenor(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*t = Tenor(years)
	return nil
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	// If curve_file is set, load it and merge in any explicit overrides from c.Curve.
	if c.CurveFile != "" {
		curvePath := c.CurveFile
		if !filepath.IsAbs(curvePath) {
			// Prefer interpreting relative paths as relative to the config file directory,
			// but fall back to the provided path (relative to cwd) if that doesn't exist.
			cand := filepath.Join(filepath.Dir(path), curvePath)
			if _, err := os.Stat(cand); err == nil {
				curvePath = cand
			}
		}
		loaded, err := data.LoadCurveFile(curvePath)
		if err != nil {
			return nil, err
		}
		merged, err := data.MergeCurve(loaded, c.Curve)
		if err != nil {
			return nil, fmt.Errorf("curve_file %s: %w", c.CurveFile, err)
		}
		c.Curve = merged
	}
	return c, nil
}

// Parse decodes a scenario without resolving curve_file.
func Parse(raw []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Model == "" {
		return errors.New("model is required")
	}
	// Validate params and the pricing request by constructing them.
	p, err := c.ModelParams()
	if err != nil {
		return fmt.Errorf("params invalid: %w", err)
	}
	req, err := c.PricingRequest()
	if err != nil {
		return fmt.Errorf("pricing invalid: %w", err)
	}
	base := p.Base()
	if err := req.Validate(base.Dt, base.NSteps()); err != nil {
		return fmt.Errorf("pricing invalid: %w", err)
	}
	return nil
}

// Common resolves the shared simulation settings.
func (c *Config) Common() (model.Common, error) {
	p := c.Params
	dt := p.Dt
	switch {
	case p.Dt != 0 && p.StepsPerYear != 0:
		if math.Abs(p.Dt*float64(p.StepsPerYear)-1) > 1e-9 {
			return model.Common{}, model.Invalidf("dt %g and steps_per_year %d disagree", p.Dt, p.StepsPerYear)
		}
	case p.StepsPerYear > 0:
		dt = 1 / float64(p.StepsPerYear)
	case p.StepsPerYear < 0:
		return model.Common{}, model.Invalidf("steps_per_year must be > 0")
	case p.Dt == 0:
		return model.Common{}, model.Invalidf("one of dt or steps_per_year is required")
	}

	cm := model.Common{
		R0:     p.R0,
		Sigma:  p.Sigma,
		T:      p.HorizonYears,
		Dt:     dt,
		NPaths: p.NPaths,
		Seed:   p.Seed,
	}
	if err := cm.Validate(); err != nil {
		return model.Common{}, err
	}
	return cm, nil
}

// ModelParams builds the validated parameter variant for c.Model.
func (c *Config) ModelParams() (model.Params, error) {
	name, err := model.ParseName(c.Model)
	if err != nil {
		return nil, err
	}
	cm, err := c.Common()
	if err != nil {
		return nil, err
	}

	var p model.Params
	switch name {
	case model.Vasicek:
		p = model.VasicekParams{Common: cm, Kappa: c.Params.Kappa, Theta: c.Params.Theta}
	case model.CIR:
		p = model.CIRParams{Common: cm, Kappa: c.Params.Kappa, Theta: c.Params.Theta}
	case model.HullWhite, model.HoLee:
		if c.Curve.IsZero() {
			return nil, model.Invalidf("model %s needs curve or curve_file", name)
		}
		curve, err := c.Curve.ToCurve()
		if err != nil {
			return nil, err
		}
		if name == model.HullWhite {
			p = model.HullWhiteParams{Common: cm, Kappa: c.Params.Kappa, Curve: curve}
		} else {
			p = model.HoLeeParams{Common: cm, Kappa: c.Params.Kappa, Curve: curve}
		}
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownModel, c.Model)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// PricingRequest converts the pricing section. Horizon checks happen in Validate.
func (c *Config) PricingRequest() (pricing.Request, error) {
	pc := c.Pricing
	req := pricing.Request{Distributions: pc.Distributions}
	for _, m := range pc.ZCBMaturities {
		req.ZCBMaturities = append(req.ZCBMaturities, float64(m))
	}
	for i, pair := range pc.ForwardPairs {
		if len(pair) != 2 {
			return req, model.Invalidf("forward_pairs[%d] must have exactly two maturities", i)
		}
		req.ForwardPairs = append(req.ForwardPairs, [2]float64{float64(pair[0]), float64(pair[1])})
	}
	for i, s := range pc.Swaps {
		sr := pricing.SwapRequest{Maturity: float64(s.Maturity), Frequency: s.Frequency}
		for _, t := range s.PaymentTimes {
			sr.PaymentTimes = append(sr.PaymentTimes, float64(t))
		}
		if _, err := sr.Schedule(); err != nil {
			return req, fmt.Errorf("swaps[%d]: %w", i, err)
		}
		req.Swaps = append(req.Swaps, sr)
	}
	return req, nil
}
