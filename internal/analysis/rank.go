package analysis

import (
	"sort"
)

// RankedSpread is one observation date ordered by how inverted a spread was.
type RankedSpread struct {
	CurveShape
	Spread Spread
}

// RankByInversion returns the dates with the most negative value of the named
// spread first. Dates without that spread are skipped; n <= 0 returns all.
func RankByInversion(shapes []CurveShape, name string, n int) []RankedSpread {
	out := make([]RankedSpread, 0, len(shapes))
	for _, sh := range shapes {
		s, ok := sh.Spread(name)
		if !ok {
			continue
		}
		out = append(out, RankedSpread{CurveShape: sh, Spread: s})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Spread.Value < out[j].Spread.Value
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// InversionShare is the fraction of dates on which the named spread was negative.
func InversionShare(shapes []CurveShape, name string) (share float64, count int) {
	inverted := 0
	for _, sh := range shapes {
		s, ok := sh.Spread(name)
		if !ok {
			continue
		}
		count++
		if s.Inverted {
			inverted++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return float64(inverted) / float64(count), count
}
