// Package report writes simulation and pricing output as CSV and JSON.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPlaces is the rounding applied to rates and prices in reports.
const DefaultPlaces = 8

func fmtDecimal(x float64, places int32) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return decimal.NewFromFloat(x).StringFixed(places)
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// writeCSVFile creates path (and its directory) and streams rows produced by fill.
func writeCSVFile(path string, fill func(w *csv.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := writeCSV(f, fill); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(out io.Writer, fill func(w *csv.Writer) error) error {
	w := csv.NewWriter(out)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
