package analysis

import (
	"time"

	"shortrate-sim/internal/model"
)

// SpreadDef is a long-minus-short yield spread between two tenors (years).
type SpreadDef struct {
	Name  string
	Short float64
	Long  float64
}

// StandardSpreads are the curve-slope measures tracked for every observation date.
var StandardSpreads = []SpreadDef{
	{Name: "2s10s", Short: 2, Long: 10},
	{Name: "3m10y", Short: 0.25, Long: 10},
	{Name: "5s30s", Short: 5, Long: 30},
}

type Spread struct {
	Name     string
	Value    float64
	Inverted bool
}

// CurveShape is the slope and curvature of one observed curve. Spreads whose
// tenors are missing from the row are left out.
type CurveShape struct {
	Date    time.Time
	Spreads []Spread

	// Curvature is (y2 + y10)/2 - y5, the butterfly around the 5Y point.
	Curvature    float64
	HasCurvature bool
}

// Spread returns the named spread, if it could be computed.
func (c CurveShape) Spread(name string) (Spread, bool) {
	for _, s := range c.Spreads {
		if s.Name == name {
			return s, true
		}
	}
	return Spread{}, false
}

// Inverted reports whether any computed spread is negative.
func (c CurveShape) Inverted() bool {
	for _, s := range c.Spreads {
		if s.Inverted {
			return true
		}
	}
	return false
}

func ComputeShape(r model.YieldRecord) CurveShape {
	out := CurveShape{Date: r.Date}
	for _, def := range StandardSpreads {
		short, ok1 := r.Yield(def.Short)
		long, ok2 := r.Yield(def.Long)
		if !ok1 || !ok2 {
			continue
		}
		v := long - short
		out.Spreads = append(out.Spreads, Spread{Name: def.Name, Value: v, Inverted: v < 0})
	}

	y2, ok2 := r.Yield(2)
	y5, ok5 := r.Yield(5)
	y10, ok10 := r.Yield(10)
	if ok2 && ok5 && ok10 {
		out.Curvature = (y2+y10)/2 - y5
		out.HasCurvature = true
	}
	return out
}

// ComputeShapes maps ComputeShape over a table, preserving row order.
func ComputeShapes(rows []model.YieldRecord) []CurveShape {
	out := make([]CurveShape, 0, len(rows))
	for _, r := range rows {
		out = append(out, ComputeShape(r))
	}
	return out
}
