package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"shortrate-sim/internal/model"
)

// YieldTableColumns is the canonical header of a yield table, one column per
// Treasury tenor plus the effective fed funds rate. Files may carry a subset.
var YieldTableColumns = []string{
	"date", "y_1m", "y_3m", "y_6m", "y_1y", "y_2y", "y_3y", "y_5y", "y_7y", "y_10y", "y_20y", "y_30y", "fed_funds",
}

type YieldTableOptions struct {
	// Percent marks values quoted in percent (the usual Treasury convention).
	Percent bool
	// FillForward carries the last seen value into empty cells, per column.
	FillForward bool
}

// LoadYieldTable reads a yield table CSV into records, oldest first.
func LoadYieldTable(path string, opts YieldTableOptions) ([]model.YieldRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open yield table: %w", err)
	}
	defer f.Close()
	rows, err := ReadYieldTable(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func ReadYieldTable(r io.Reader, opts YieldTableOptions) ([]model.YieldRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("yield table is empty")
		}
		return nil, err
	}

	dateCol := -1
	fedCol := -1
	tenorCols := map[int]string{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case name == "date":
			dateCol = i
		case name == "fed_funds" || name == "fedfunds":
			fedCol = i
		case strings.HasPrefix(name, "y_"):
			years, err := model.ParseTenor(name)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", h, err)
			}
			tenorCols[i] = model.FormatTenor(years)
		}
	}
	if dateCol < 0 {
		return nil, errors.New("yield table has no date column")
	}
	if len(tenorCols) == 0 && fedCol < 0 {
		return nil, errors.New("yield table has no rate columns")
	}

	scale := 1.0
	if opts.Percent {
		scale = 0.01
	}
	last := map[int]float64{}

	var out []model.YieldRecord
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		date, err := parseDate(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		cell := func(col int) (float64, bool, error) {
			s := strings.TrimSpace(rec[col])
			if s == "" || s == "." || strings.EqualFold(s, "nan") {
				if v, ok := last[col]; ok && opts.FillForward {
					return v, true, nil
				}
				return 0, false, nil
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, false, fmt.Errorf("line %d column %q: %w", line, header[col], err)
			}
			v *= scale
			last[col] = v
			return v, true, nil
		}

		row := model.YieldRecord{Date: date, Yields: map[string]float64{}}
		for col, label := range tenorCols {
			v, ok, err := cell(col)
			if err != nil {
				return nil, err
			}
			if ok {
				row.Yields[label] = v
			}
		}
		if fedCol >= 0 {
			v, ok, err := cell(fedCol)
			if err != nil {
				return nil, err
			}
			row.FedFunds, row.HasFedFunds = v, ok
		}
		out = append(out, row)
	}
	model.SortRecords(out)
	return out, nil
}

// LatestCurve returns the observed curve of the most recent row that quotes at
// least model.MinCurvePoints tenors.
func LatestCurve(rows []model.YieldRecord) (model.ObservedCurve, error) {
	for i := len(rows) - 1; i >= 0; i-- {
		c := rows[i].Curve()
		if c.Len() >= model.MinCurvePoints {
			return c, nil
		}
	}
	return model.ObservedCurve{}, model.Invalidf("no row quotes %d or more tenors", model.MinCurvePoints)
}
