package report

import (
	"encoding/csv"
	"strconv"

	"shortrate-sim/internal/simulation"
)

type PathsOptions struct {
	// MaxPaths caps how many individual path columns are written. Zero writes
	// only the cross-path means.
	MaxPaths int
	Places   int32
}

// WritePathsCSV writes one row per grid step: step, t, the mean short rate and
// mean discount factor across all paths, then r_0..r_{k-1} for the first
// MaxPaths paths.
func WritePathsCSV(path string, res *simulation.Result, opts PathsOptions) error {
	places := opts.Places
	if places <= 0 {
		places = DefaultPlaces
	}
	k := min(max(opts.MaxPaths, 0), res.NPaths())

	rates := res.Rates()
	df := res.DiscountFactors()
	meanRate := res.MeanPath()
	grid := res.TimeGrid()
	nPaths := res.NPaths()

	return writeCSVFile(path, func(w *csv.Writer) error {
		header := []string{"step", "t", "mean_rate", "mean_df"}
		for p := 0; p < k; p++ {
			header = append(header, "r_"+strconv.Itoa(p))
		}
		if err := w.Write(header); err != nil {
			return err
		}

		row := make([]string, 0, len(header))
		for i, t := range grid {
			meanDF := 0.0
			for p := 0; p < nPaths; p++ {
				meanDF += df.At(p, i)
			}
			meanDF /= float64(nPaths)

			row = row[:0]
			row = append(row,
				strconv.Itoa(i),
				strconv.FormatFloat(t, 'f', -1, 64),
				fmtDecimal(meanRate[i], places),
				fmtDecimal(meanDF, places),
			)
			for p := 0; p < k; p++ {
				row = append(row, fmtDecimal(rates.At(p, i), places))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
