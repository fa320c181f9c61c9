package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shortrate-sim/internal/model"

	"gopkg.in/yaml.v3"
)

// CurvePoint is one quoted tenor of an observed zero curve.
type CurvePoint struct {
	Tenor string  `json:"tenor" yaml:"tenor"`
	Rate  float64 `json:"rate" yaml:"rate"`
}

// CurveFile is the on-disk shape of an observed curve handed over by the data
// side. Either Points or the parallel Maturities/ZeroRates arrays may be used;
// when both are present they are combined. Percent marks rates quoted in
// percent (4.3) rather than decimals (0.043).
type CurveFile struct {
	AsOf       string       `json:"as_of,omitempty" yaml:"as_of,omitempty"`
	Percent    bool         `json:"percent,omitempty" yaml:"percent,omitempty"`
	Points     []CurvePoint `json:"points,omitempty" yaml:"points,omitempty"`
	Maturities []float64    `json:"maturities,omitempty" yaml:"maturities,omitempty"`
	ZeroRates  []float64    `json:"zero_rates,omitempty" yaml:"zero_rates,omitempty"`
}

func (f CurveFile) IsZero() bool {
	return f.AsOf == "" && len(f.Points) == 0 && len(f.Maturities) == 0 && len(f.ZeroRates) == 0
}

// ToCurve converts the file to an ObservedCurve sorted by maturity, in decimals.
// A tenor quoted twice is an error. The result is not validated.
func (f CurveFile) ToCurve() (model.ObservedCurve, error) {
	var c model.ObservedCurve
	if f.AsOf != "" {
		t, err := parseDate(f.AsOf)
		if err != nil {
			return c, fmt.Errorf("curve as_of: %w", err)
		}
		c.AsOf = t
	}
	if len(f.Maturities) != len(f.ZeroRates) {
		return c, model.Invalidf("curve has %d maturities but %d zero rates", len(f.Maturities), len(f.ZeroRates))
	}

	scale := 1.0
	if f.Percent {
		scale = 0.01
	}
	byMaturity := map[float64]float64{}
	add := func(m, z float64, label string) error {
		if _, dup := byMaturity[m]; dup {
			return model.Invalidf("curve quotes maturity %s twice", label)
		}
		byMaturity[m] = z * scale
		return nil
	}
	for _, p := range f.Points {
		m, err := model.ParseTenor(p.Tenor)
		if err != nil {
			return c, fmt.Errorf("%w: %v", model.ErrParameterValidation, err)
		}
		if err := add(m, p.Rate, p.Tenor); err != nil {
			return c, err
		}
	}
	for i, m := range f.Maturities {
		if err := add(m, f.ZeroRates[i], model.FormatTenor(m)); err != nil {
			return c, err
		}
	}

	for m := range byMaturity {
		c.Maturities = append(c.Maturities, m)
	}
	sort.Float64s(c.Maturities)
	for _, m := range c.Maturities {
		c.ZeroRates = append(c.ZeroRates, byMaturity[m])
	}
	return c, nil
}

// FromCurve renders a curve as tenor points in decimals.
func FromCurve(c model.ObservedCurve) CurveFile {
	f := CurveFile{}
	if !c.AsOf.IsZero() {
		f.AsOf = c.AsOf.Format(time.DateOnly)
	}
	for i, m := range c.Maturities {
		f.Points = append(f.Points, CurvePoint{Tenor: model.FormatTenor(m), Rate: c.ZeroRates[i]})
	}
	return f
}

// MergeCurve overlays override onto base: as_of is replaced when set, and each
// overriding point replaces the base point with the same maturity. Both sides
// are normalized to decimals first.
func MergeCurve(base, override CurveFile) (CurveFile, error) {
	if override.IsZero() {
		return base, nil
	}
	b, err := base.ToCurve()
	if err != nil {
		return CurveFile{}, fmt.Errorf("base curve: %w", err)
	}
	o, err := override.ToCurve()
	if err != nil {
		return CurveFile{}, fmt.Errorf("curve override: %w", err)
	}

	rates := map[float64]float64{}
	for i, m := range b.Maturities {
		rates[m] = b.ZeroRates[i]
	}
	for i, m := range o.Maturities {
		rates[m] = o.ZeroRates[i]
	}
	merged := model.ObservedCurve{AsOf: b.AsOf}
	if !o.AsOf.IsZero() {
		merged.AsOf = o.AsOf
	}
	for m := range rates {
		merged.Maturities = append(merged.Maturities, m)
	}
	sort.Float64s(merged.Maturities)
	for _, m := range merged.Maturities {
		merged.ZeroRates = append(merged.ZeroRates, rates[m])
	}
	return FromCurve(merged), nil
}

// DecodeCurveFile parses JSON or YAML (JSON being a subset of YAML).
func DecodeCurveFile(raw []byte) (CurveFile, error) {
	var f CurveFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return CurveFile{}, fmt.Errorf("failed to parse curve file: %w", err)
	}
	return f, nil
}

func LoadCurveFile(path string) (CurveFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return CurveFile{}, fmt.Errorf("failed to read curve file: %w", err)
	}
	return DecodeCurveFile(raw)
}

// LoadCurve reads and validates an observed curve.
func LoadCurve(path string) (model.ObservedCurve, error) {
	f, err := LoadCurveFile(path)
	if err != nil {
		return model.ObservedCurve{}, err
	}
	c, err := f.ToCurve()
	if err != nil {
		return model.ObservedCurve{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return model.ObservedCurve{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// SaveCurve writes c as JSON, or YAML when path ends in .yaml/.yml.
func SaveCurve(c model.ObservedCurve, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := FromCurve(c)
	var raw []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = yaml.Marshal(f)
	default:
		raw, err = json.MarshalIndent(f, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal curve: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write curve file: %w", err)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006/01/02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
