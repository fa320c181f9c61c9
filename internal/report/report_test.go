package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shortrate-sim/internal/analysis"
	"shortrate-sim/internal/model"
	"shortrate-sim/internal/pricing"
	"shortrate-sim/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatRun(t *testing.T) *simulation.Result {
	t.Helper()
	seed := int64(7)
	p := model.VasicekParams{
		Common: model.Common{R0: 0.04, Sigma: 0, T: 1, Dt: 0.25, NPaths: 3, Seed: &seed},
		Kappa:  0.3,
		Theta:  0.04,
	}
	res, err := simulation.New(simulation.Options{}).Run("vasicek", p)
	require.NoError(t, err)
	return res
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWritePathsCSV(t *testing.T) {
	res := flatRun(t)
	path := filepath.Join(t.TempDir(), "out", "paths.csv")
	require.NoError(t, WritePathsCSV(path, res, PathsOptions{MaxPaths: 2, Places: 6}))

	rows := readCSV(t, path)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"step", "t", "mean_rate", "mean_df", "r_0", "r_1"}, rows[0])
	assert.Equal(t, []string{"0", "0", "0.040000", "1.000000", "0.040000", "0.040000"}, rows[1])
	assert.Equal(t, "4", rows[5][0])
	assert.Equal(t, "1", rows[5][1])
	assert.Equal(t, "0.960789", rows[5][3])
}

func TestWritePathsCSVMeansOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paths.csv")
	require.NoError(t, WritePathsCSV(path, flatRun(t), PathsOptions{MaxPaths: 50}))
	rows := readCSV(t, path)
	assert.Len(t, rows[0], 4+3, "capped at the number of simulated paths")
}

func priced(t *testing.T, res *simulation.Result) *pricing.Result {
	t.Helper()
	out, err := pricing.Price(res, pricing.Request{
		ZCBMaturities: []float64{0.5, 1},
		ForwardPairs:  [][2]float64{{0.5, 1}},
		Swaps:         []pricing.SwapRequest{{Maturity: 1, Frequency: 4}},
		Distributions: true,
	})
	require.NoError(t, err)
	return out
}

func TestWritePricingCSV(t *testing.T) {
	out := priced(t, flatRun(t))
	path := filepath.Join(t.TempDir(), "pricing.csv")
	require.NoError(t, WritePricingCSV(path, out, 6))

	rows := readCSV(t, path)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"label", "kind", "value"}, rows[0])
	assert.Equal(t, []string{"fwd_0.5x1", "fwd", "0.040000"}, rows[1])
	assert.Equal(t, "swap", rows[2][1])
	assert.Equal(t, []string{"zcb_1Y", "zcb", "0.960789"}, rows[3])
	assert.Equal(t, "zcb_6M", rows[4][0])
}

func TestWriteDistributionsCSV(t *testing.T) {
	out := priced(t, flatRun(t))
	path := filepath.Join(t.TempDir(), "dist.csv")
	require.NoError(t, WriteDistributionsCSV(path, out.Distributions, 0))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "6M", rows[1][0])
	assert.Equal(t, "1Y", rows[2][0])
	assert.Equal(t, "3", rows[2][1])
}

func TestPricingDocument(t *testing.T) {
	res := flatRun(t)
	doc, err := NewPricingDocument(res, priced(t, res), 6)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, doc))

	var back map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "vasicek", back["model"])
	assert.Equal(t, float64(7), back["seed"])
	assert.Equal(t, res.RunID(), back["run_id"])

	zcb := back["zcb"].(map[string]any)
	assert.Equal(t, 0.960789, zcb["1Y"])
	fwd := back["forwards"].(map[string]any)
	assert.Equal(t, 0.04, fwd["0.5x1"])
	dist := back["distributions"].(map[string]any)["6M"].(map[string]any)
	assert.Equal(t, 0.0, dist["std"])

	_, err = NewPricingDocument(nil, nil, 0)
	require.Error(t, err)
}

func TestPricingDocumentRejectsNaN(t *testing.T) {
	out := &pricing.Result{Swaps: map[string]float64{"1Y": math.NaN()}}
	_, err := NewPricingDocument(flatRun(t), out, 4)
	require.ErrorIs(t, err, model.ErrNumericalDegeneracy)
}

func TestWriteCurveShapesCSV(t *testing.T) {
	shapes := []analysis.CurveShape{
		analysis.ComputeShape(model.YieldRecord{
			Date:   time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC),
			Yields: map[string]float64{"3M": 0.0545, "2Y": 0.0494, "5Y": 0.0432, "10Y": 0.0405, "30Y": 0.0398},
		}),
		analysis.ComputeShape(model.YieldRecord{
			Date:   time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC),
			Yields: map[string]float64{"2Y": 0.03, "10Y": 0.035},
		}),
	}
	path := filepath.Join(t.TempDir(), "shapes.csv")
	require.NoError(t, WriteCurveShapesCSV(path, shapes, 5))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"date", "2s10s", "2s10s_inversion", "3m10y", "3m10y_inversion", "5s30s", "5s30s_inversion", "curvature"}, rows[0])
	assert.Equal(t, []string{"2023-07-03", "-0.00890", "true", "-0.01400", "true", "-0.00340", "true", "0.00175"}, rows[1])
	assert.Equal(t, []string{"2023-07-04", "0.00500", "false", "", "", "", "", ""}, rows[2])
}

func TestFmtDecimal(t *testing.T) {
	assert.Equal(t, "0.04000000", fmtDecimal(0.04, 8))
	assert.Equal(t, "-0.0001", fmtDecimal(-0.00005, 4))
	assert.Equal(t, "NaN", fmtDecimal(math.NaN(), 4))
}
