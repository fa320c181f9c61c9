package simulation

import (
	"shortrate-sim/internal/model"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Result bundles one run: simulated short rates, their discount factors and the
// grid they live on. It is never mutated after Run returns; matrix accessors hand
// out read-only views and slices are copied.
type Result struct {
	runID  uuid.UUID
	model  model.Name
	params model.Params

	rates *mat.Dense
	df    *mat.Dense
	grid  []float64
	dt    float64
	seed  int64
}

func (r *Result) RunID() string        { return r.runID.String() }
func (r *Result) Model() model.Name    { return r.model }
func (r *Result) Params() model.Params { return r.params }
func (r *Result) Dt() float64          { return r.dt }
func (r *Result) Seed() int64          { return r.seed }

// Rates is the [path, step] short-rate matrix.
func (r *Result) Rates() mat.Matrix { return readOnly{r.rates} }

// DiscountFactors has the same shape as Rates; column 0 is all ones.
func (r *Result) DiscountFactors() mat.Matrix { return readOnly{r.df} }

// TimeGrid returns a copy of the grid times 0, dt, ..., NSteps*dt.
func (r *Result) TimeGrid() []float64 { return append([]float64(nil), r.grid...) }

func (r *Result) NPaths() int {
	n, _ := r.rates.Dims()
	return n
}

func (r *Result) NSteps() int { return len(r.grid) - 1 }

// Horizon is the last grid time.
func (r *Result) Horizon() float64 { return r.grid[len(r.grid)-1] }

// MeanPath averages the short rate across paths at every grid step.
func (r *Result) MeanPath() []float64 {
	rows, cols := r.rates.Dims()
	out := make([]float64, cols)
	for p := 0; p < rows; p++ {
		for i, v := range r.rates.RawRowView(p) {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(rows)
	}
	return out
}

// readOnly hides the concrete *mat.Dense so callers cannot type-assert their
// way to the backing array.
type readOnly struct {
	m *mat.Dense
}

func (v readOnly) Dims() (int, int)    { return v.m.Dims() }
func (v readOnly) At(i, j int) float64 { return v.m.At(i, j) }
func (v readOnly) T() mat.Matrix       { return mat.Transpose{Matrix: v} }
