package simulation

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"shortrate-sim/internal/metrics"
	"shortrate-sim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func seed(s int64) *int64 { return &s }

func vasicek(sigma float64) model.VasicekParams {
	return model.VasicekParams{
		Common: model.Common{R0: 0.04, Sigma: sigma, T: 1, Dt: 1.0 / 12, NPaths: 10, Seed: seed(42)},
		Kappa:  0.3,
		Theta:  0.04,
	}
}

func curve() model.ObservedCurve {
	return model.ObservedCurve{
		Maturities: []float64{0.25, 0.5, 1, 2, 5, 10},
		ZeroRates:  []float64{0.043, 0.042, 0.040, 0.038, 0.037, 0.040},
	}
}

func TestRunDeterministicVasicek(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	o := New(Options{Logger: log, Metrics: metrics.New("")})

	res, err := o.Run("vasicek", vasicek(0))
	require.NoError(t, err)

	assert.Equal(t, model.Vasicek, res.Model())
	assert.Equal(t, 10, res.NPaths())
	assert.Equal(t, 12, res.NSteps())
	assert.Equal(t, int64(42), res.Seed())
	assert.InDelta(t, 1.0, res.Horizon(), 1e-12)
	assert.NotEmpty(t, res.RunID())

	rates := res.Rates()
	df := res.DiscountFactors()
	rr, rc := rates.Dims()
	dr, dc := df.Dims()
	assert.Equal(t, rr, dr)
	assert.Equal(t, rc, dc)
	for p := 0; p < rr; p++ {
		assert.Equal(t, 1.0, df.At(p, 0))
		for i := 0; i < rc; i++ {
			assert.InDelta(t, 0.04, rates.At(p, i), 1e-12)
		}
		assert.InDelta(t, math.Exp(-0.04), df.At(p, 12), 1e-12)
	}
	for _, v := range res.MeanPath() {
		assert.InDelta(t, 0.04, v, 1e-12)
	}

	assert.Contains(t, buf.String(), "simulation complete")
	assert.Contains(t, buf.String(), "model=vasicek")
}

func TestRunAllModels(t *testing.T) {
	c := model.Common{R0: 0.04, Sigma: 0.01, T: 2, Dt: 1.0 / 52, NPaths: 40, Seed: seed(9)}
	runs := map[string]model.Params{
		"vasicek":    model.VasicekParams{Common: c, Kappa: 0.3, Theta: 0.045},
		"cir":        model.CIRParams{Common: c, Kappa: 0.3, Theta: 0.045},
		"hull_white": model.HullWhiteParams{Common: c, Kappa: 0.05, Curve: curve()},
		"ho_lee":     model.HoLeeParams{Common: c, Curve: curve()},
	}
	o := New(Options{Workers: 3})
	for name, p := range runs {
		res, err := o.Run(name, p)
		require.NoError(t, err, name)
		rows, cols := res.DiscountFactors().Dims()
		assert.Equal(t, 40, rows)
		assert.Equal(t, 105, cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				require.Greater(t, res.DiscountFactors().At(i, j), 0.0)
			}
		}
	}
}

func TestRunPublishesDriftCacheSize(t *testing.T) {
	m := metrics.New("")
	o := New(Options{Metrics: m})
	c := model.Common{R0: 0.04, Sigma: 0.01, T: 1, Dt: 1.0 / 12, NPaths: 5, Seed: seed(3)}

	_, err := o.Run("hull_white", model.HullWhiteParams{Common: c, Kappa: 0.05, Curve: curve()})
	require.NoError(t, err)
	_, err = o.Run("hull_white", model.HullWhiteParams{Common: c, Kappa: 0.05, Curve: curve()})
	require.NoError(t, err)
	_, err = o.Run("ho_lee", model.HoLeeParams{Common: c, Curve: curve()})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ratesim.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "ratesim_drift_cache_hits 1")
	assert.Contains(t, out, "ratesim_drift_cache_misses 2")
	assert.Contains(t, out, "ratesim_drift_cache_entries 2")
}

func TestRunRejectsUnknownModel(t *testing.T) {
	o := New(Options{})
	_, err := o.Run("black_karasinski", vasicek(0.01))
	require.ErrorIs(t, err, model.ErrUnknownModel)
}

func TestRunRejectsMismatchedParams(t *testing.T) {
	o := New(Options{})
	_, err := o.Run("cir", vasicek(0.01))
	require.ErrorIs(t, err, model.ErrParameterValidation)

	_, err = o.Run("cir", nil)
	require.ErrorIs(t, err, model.ErrParameterValidation)
}

func TestRunPropagatesValidation(t *testing.T) {
	p := vasicek(0.01)
	p.Dt = 2
	_, err := New(Options{}).Run("vasicek", p)
	require.ErrorIs(t, err, model.ErrParameterValidation)
}

func TestRunSeededReproducibleAcrossWorkers(t *testing.T) {
	p := vasicek(0.02)
	a, err := New(Options{Workers: 1}).Run("vasicek", p)
	require.NoError(t, err)
	b, err := New(Options{Workers: 4}).Run("vasicek", p)
	require.NoError(t, err)

	assert.True(t, mat.Equal(a.Rates(), b.Rates()))
	assert.True(t, mat.Equal(a.DiscountFactors(), b.DiscountFactors()))
	assert.NotEqual(t, a.RunID(), b.RunID())
}

func TestRunSeeds(t *testing.T) {
	o := New(Options{})
	p := model.HullWhiteParams{
		Common: model.Common{R0: 0.04, Sigma: 0.01, T: 1, Dt: 1.0 / 12, NPaths: 5},
		Kappa:  0.1,
		Curve:  curve(),
	}
	results, err := o.RunSeeds("hull_white", p, []int64{1, 2, 1})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, int64(1), results[0].Seed())
	assert.Equal(t, int64(2), results[1].Seed())
	assert.True(t, mat.Equal(results[0].Rates(), results[2].Rates()))
	assert.False(t, mat.Equal(results[0].Rates(), results[1].Rates()))

	_, err = o.RunSeeds("hull_white", p, nil)
	require.ErrorIs(t, err, model.ErrParameterValidation)
}

func TestResultIsReadOnly(t *testing.T) {
	res, err := New(Options{}).Run("vasicek", vasicek(0.01))
	require.NoError(t, err)

	_, isDense := res.Rates().(*mat.Dense)
	assert.False(t, isDense)

	grid := res.TimeGrid()
	grid[1] = 99
	assert.InDelta(t, 1.0/12, res.TimeGrid()[1], 1e-15)

	rows, cols := res.Rates().T().Dims()
	assert.Equal(t, 13, rows)
	assert.Equal(t, 10, cols)
}
