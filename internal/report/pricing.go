package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"shortrate-sim/internal/analysis"
	"shortrate-sim/internal/model"
	"shortrate-sim/internal/pricing"
	"shortrate-sim/internal/simulation"

	"github.com/shopspring/decimal"
)

// WritePricingCSV writes one row per priced instrument: label, kind, value.
func WritePricingCSV(path string, out *pricing.Result, places int32) error {
	if places <= 0 {
		places = DefaultPlaces
	}
	return writeCSVFile(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"label", "kind", "value"}); err != nil {
			return err
		}
		vals := out.Values()
		for _, label := range out.Labels() {
			if err := w.Write([]string{label, kindOf(label), fmtDecimal(vals[label], places)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteDistributionsCSV writes the per-maturity zero-coupon price summaries.
func WriteDistributionsCSV(path string, dists map[string]analysis.Summary, places int32) error {
	if places <= 0 {
		places = DefaultPlaces
	}
	return writeCSVFile(path, func(w *csv.Writer) error {
		header := []string{"maturity", "count", "mean", "std", "min", "max", "p05", "p95", "ci_low", "ci_high"}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, label := range sortedTenors(dists) {
			s := dists[label]
			row := []string{label, strconv.Itoa(s.Count)}
			for _, v := range []float64{s.Mean, s.Std, s.Min, s.Max, s.P05, s.P95, s.CILow, s.CIHigh} {
				row = append(row, fmtDecimal(v, places))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// PricingDocument is the JSON shape of a priced run. Numbers are rounded with
// decimal arithmetic and emitted as plain JSON numbers.
type PricingDocument struct {
	RunID   string `json:"run_id"`
	Model   string `json:"model"`
	Seed    int64  `json:"seed"`
	NPaths  int    `json:"n_paths"`
	Dt      string `json:"dt"`
	Horizon string `json:"horizon_years"`

	ZCB           map[string]json.Number            `json:"zcb,omitempty"`
	Forwards      map[string]json.Number            `json:"forwards,omitempty"`
	Swaps         map[string]json.Number            `json:"swaps,omitempty"`
	Distributions map[string]map[string]json.Number `json:"distributions,omitempty"`
}

// NewPricingDocument assembles the document for out priced against res.
func NewPricingDocument(res *simulation.Result, out *pricing.Result, places int32) (*PricingDocument, error) {
	if res == nil || out == nil {
		return nil, fmt.Errorf("pricing document needs both a simulation and a pricing result")
	}
	if places <= 0 {
		places = DefaultPlaces
	}
	num := func(x float64) (json.Number, error) {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", fmt.Errorf("%w: cannot encode %g", model.ErrNumericalDegeneracy, x)
		}
		return json.Number(decimal.NewFromFloat(x).Round(places).String()), nil
	}

	doc := &PricingDocument{
		RunID:   res.RunID(),
		Model:   string(res.Model()),
		Seed:    res.Seed(),
		NPaths:  res.NPaths(),
		Dt:      strconv.FormatFloat(res.Dt(), 'g', -1, 64),
		Horizon: strconv.FormatFloat(res.Horizon(), 'g', -1, 64),
	}

	var err error
	put := func(dst *map[string]json.Number, key string, v float64) {
		if err != nil {
			return
		}
		var n json.Number
		n, err = num(v)
		if *dst == nil {
			*dst = map[string]json.Number{}
		}
		(*dst)[key] = n
	}
	for m, v := range out.ZCB {
		put(&doc.ZCB, model.FormatTenor(m), v)
	}
	for k, v := range out.Forwards {
		put(&doc.Forwards, k, v)
	}
	for k, v := range out.Swaps {
		put(&doc.Swaps, k, v)
	}
	for label, s := range out.Distributions {
		if doc.Distributions == nil {
			doc.Distributions = map[string]map[string]json.Number{}
		}
		fields := map[string]json.Number{}
		for name, v := range map[string]float64{
			"mean": s.Mean, "std": s.Std, "min": s.Min, "max": s.Max,
			"p05": s.P05, "p95": s.P95, "ci_low": s.CILow, "ci_high": s.CIHigh,
		} {
			put(&fields, name, v)
		}
		doc.Distributions[label] = fields
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// WriteJSON encodes doc with two-space indentation.
func WriteJSON(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func kindOf(label string) string {
	kind, _, _ := strings.Cut(label, "_")
	return kind
}

// sortedTenors orders tenor labels by maturity, falling back to lexical order
// for labels that do not parse.
func sortedTenors[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := model.ParseTenor(keys[i])
		b, errB := model.ParseTenor(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	return keys
}
