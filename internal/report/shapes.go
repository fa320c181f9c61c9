package report

import (
	"encoding/csv"
	"strconv"

	"shortrate-sim/internal/analysis"
)

// WriteCurveShapesCSV writes one row per observation date with every standard
// spread, its inversion flag and the curvature. Missing measures are left blank.
func WriteCurveShapesCSV(path string, shapes []analysis.CurveShape, places int32) error {
	if places <= 0 {
		places = DefaultPlaces
	}
	return writeCSVFile(path, func(w *csv.Writer) error {
		header := []string{"date"}
		for _, def := range analysis.StandardSpreads {
			header = append(header, def.Name, def.Name+"_inversion")
		}
		header = append(header, "curvature")
		if err := w.Write(header); err != nil {
			return err
		}

		for _, sh := range shapes {
			row := []string{fmtTime(sh.Date)}
			for _, def := range analysis.StandardSpreads {
				s, ok := sh.Spread(def.Name)
				if !ok {
					row = append(row, "", "")
					continue
				}
				row = append(row, fmtDecimal(s.Value, places), strconv.FormatBool(s.Inverted))
			}
			if sh.HasCurvature {
				row = append(row, fmtDecimal(sh.Curvature, places))
			} else {
				row = append(row, "")
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
