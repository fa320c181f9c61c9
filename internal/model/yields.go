package model

import (
	"sort"
	"time"
)

// YieldRecord is one dated row of observed market yields.
// Yields are keyed by canonical tenor label (FormatTenor: "3M", "10Y") and,
// like FedFunds, stored as decimals.
type YieldRecord struct {
	Date     time.Time
	Yields   map[string]float64
	FedFunds float64
	// HasFedFunds is false when the row carried no policy rate.
	HasFedFunds bool
}

// Yield returns the yield at maturity years, if the row has it.
func (r YieldRecord) Yield(years float64) (float64, bool) {
	v, ok := r.Yields[FormatTenor(years)]
	return v, ok
}

// Curve turns the row into an ObservedCurve ordered by maturity.
func (r YieldRecord) Curve() ObservedCurve {
	type point struct{ m, z float64 }
	pts := make([]point, 0, len(r.Yields))
	for label, z := range r.Yields {
		m, err := ParseTenor(label)
		if err != nil {
			continue
		}
		pts = append(pts, point{m, z})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].m < pts[j].m })

	c := ObservedCurve{AsOf: r.Date}
	for _, p := range pts {
		c.Maturities = append(c.Maturities, p.m)
		c.ZeroRates = append(c.ZeroRates, p.z)
	}
	return c
}

// SortRecords orders rows by date, oldest first.
func SortRecords(rows []YieldRecord) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
}
