package lp

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// feasibilityTolerance is the largest phase 1 objective still treated as
	// a feasible start.
	feasibilityTolerance = 1e-7
	// ratioTolerance groups ratio test ties for Bland's rule.
	ratioTolerance = 1e-12
	// ctxCheckInterval is how many pivots run between context checks.
	ctxCheckInterval = 64
	// degenerateLimit is how many pivots in a row may leave the objective
	// unchanged before pricing switches from Dantzig's rule to Bland's.
	degenerateLimit = 50
)

// tableau is a dense simplex tableau. Columns are laid out as structural
// variables, then slack/surplus variables, then artificial variables, with the
// right hand side in the final column. Each row is a view into one backing
// matrix.
type tableau struct {
	n        int // structural variables
	cols     int // all variables, excluding the rhs column
	artStart int
	data     *mat.Dense
	rows     []*mat.VecDense
	basis    []int
	cost     *mat.VecDense // reduced costs, with -objective in the rhs slot

	opts       Options
	pivots     int
	degenerate int
}

func newTableau(rows []row, n int, opts Options) *tableau {
	var nSlack, nArt int
	for i := range rows {
		if rows[i].rhs < 0 {
			rows[i] = negate(rows[i])
		}
		switch rows[i].sense {
		case LessEqual:
			nSlack++
		case GreaterEqual:
			nSlack++
			nArt++
		case Equal:
			nArt++
		}
	}

	cols := n + nSlack + nArt
	t := &tableau{
		n:        n,
		cols:     cols,
		artStart: n + nSlack,
		data:     mat.NewDense(len(rows), cols+1, nil),
		rows:     make([]*mat.VecDense, len(rows)),
		basis:    make([]int, len(rows)),
		opts:     opts,
	}

	slack, art := n, n+nSlack
	for i, r := range rows {
		for j, v := range r.coeffs {
			if v != 0 {
				t.data.Set(i, j, v)
			}
		}
		t.data.Set(i, cols, r.rhs)
		switch r.sense {
		case LessEqual:
			t.data.Set(i, slack, 1)
			t.basis[i] = slack
			slack++
		case GreaterEqual:
			t.data.Set(i, slack, -1)
			slack++
			t.data.Set(i, art, 1)
			t.basis[i] = art
			art++
		case Equal:
			t.data.Set(i, art, 1)
			t.basis[i] = art
			art++
		}
		t.rows[i] = t.data.RowView(i).(*mat.VecDense)
	}
	return t
}

func negate(r row) row {
	coeffs := make([]float64, len(r.coeffs))
	floats.ScaleTo(coeffs, -1, r.coeffs)
	sense := r.sense
	switch sense {
	case LessEqual:
		sense = GreaterEqual
	case GreaterEqual:
		sense = LessEqual
	}
	return row{coeffs: coeffs, sense: sense, rhs: -r.rhs}
}

// raw returns the backing slice of row i.
func (t *tableau) raw(i int) []float64 {
	return t.rows[i].RawVector().Data
}

// price recomputes the reduced cost row for the cost vector c, which has one
// entry per tableau column.
func (t *tableau) price(c []float64) {
	t.cost = mat.NewVecDense(t.cols+1, nil)
	for j, v := range c {
		t.cost.SetVec(j, v)
	}
	for i, b := range t.basis {
		if cb := c[b]; cb != 0 {
			t.cost.AddScaledVec(t.cost, -cb, t.rows[i])
		}
	}
}

func (t *tableau) pivot(r, c int) {
	pr := t.rows[r]
	pr.ScaleVec(1/pr.AtVec(c), pr)
	pr.SetVec(c, 1)
	for i, row := range t.rows {
		if i == r {
			continue
		}
		if f := row.AtVec(c); f != 0 {
			row.AddScaledVec(row, -f, pr)
			row.SetVec(c, 0)
			if rhs := row.AtVec(t.cols); rhs < 0 && rhs > -feasibilityTolerance {
				row.SetVec(t.cols, 0)
			}
		}
	}
	if f := t.cost.AtVec(c); f != 0 {
		t.cost.AddScaledVec(t.cost, -f, pr)
		t.cost.SetVec(c, 0)
	}
	t.basis[r] = c
	t.pivots++
}

// entering picks the column to bring into the basis, or -1 at optimality.
// It uses the most negative reduced cost, and the first negative one after a
// long run of degenerate pivots so that the method cannot cycle.
func (t *tableau) entering(limit int) int {
	cost := t.cost.RawVector().Data
	enter := -1
	if t.degenerate >= degenerateLimit {
		for j := 0; j < limit; j++ {
			if cost[j] < -t.opts.Tolerance {
				return j
			}
		}
		return -1
	}
	most := -t.opts.Tolerance
	for j := 0; j < limit; j++ {
		if cost[j] < most {
			enter, most = j, cost[j]
		}
	}
	return enter
}

// iterate runs simplex pivots until the current cost row is optimal.
// Artificial columns may only enter while allowArtificial is set.
func (t *tableau) iterate(ctx context.Context, allowArtificial bool) error {
	limit := t.cols
	if !allowArtificial {
		limit = t.artStart
	}
	t.degenerate = 0
	for {
		if t.opts.MaxPivots > 0 && t.pivots >= t.opts.MaxPivots {
			return ErrIterationLimit
		}
		if t.pivots%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, "lp: simplex interrupted")
			}
		}

		enter := t.entering(limit)
		if enter < 0 {
			return nil
		}

		leave := -1
		best := math.Inf(1)
		for i := range t.rows {
			row := t.raw(i)
			a := row[enter]
			if a <= t.opts.Tolerance {
				continue
			}
			ratio := row[t.cols] / a
			switch {
			case leave < 0 || ratio < best-ratioTolerance:
				leave, best = i, ratio
			case ratio <= best+ratioTolerance && t.basis[i] < t.basis[leave]:
				leave = i
			}
		}
		if leave < 0 {
			return ErrUnbounded
		}
		if best <= ratioTolerance {
			t.degenerate++
		} else {
			t.degenerate = 0
		}
		t.pivot(leave, enter)
	}
}

// phaseOne finds a basic feasible solution free of artificial variables.
// Rows that only an artificial variable can satisfy are redundant and are
// dropped.
func (t *tableau) phaseOne(ctx context.Context) error {
	if t.artStart == t.cols {
		return nil
	}
	c := make([]float64, t.cols)
	for j := t.artStart; j < t.cols; j++ {
		c[j] = 1
	}
	t.price(c)
	if err := t.iterate(ctx, true); err != nil {
		if errors.Is(err, ErrUnbounded) {
			// The phase 1 objective is bounded below by zero.
			return errors.Wrap(err, "lp: phase 1 diverged")
		}
		return err
	}
	if -t.cost.AtVec(t.cols) > feasibilityTolerance {
		return ErrInfeasible
	}

	for i := 0; i < len(t.rows); {
		if t.basis[i] < t.artStart {
			i++
			continue
		}
		enter := -1
		row := t.raw(i)
		for j := 0; j < t.artStart; j++ {
			if math.Abs(row[j]) > t.opts.Tolerance {
				enter = j
				break
			}
		}
		if enter < 0 {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			t.basis = append(t.basis[:i], t.basis[i+1:]...)
			continue
		}
		t.pivot(i, enter)
		i++
	}
	return nil
}

func (t *tableau) phaseTwo(ctx context.Context, objective []float64) error {
	c := make([]float64, t.cols)
	copy(c, objective)
	t.price(c)
	return t.iterate(ctx, false)
}

func (t *tableau) solution() []float64 {
	x := make([]float64, t.n)
	for i, b := range t.basis {
		if b < t.n {
			x[b] = t.rows[i].AtVec(t.cols)
		}
	}
	return x
}

// solveRows solves the relaxation described by rows.
func solveRows(ctx context.Context, objective []float64, rows []row, opts Options) ([]float64, error) {
	n := len(objective)
	if len(rows) == 0 {
		for j, c := range objective {
			if c < 0 {
				return nil, errors.Wrapf(ErrUnbounded, "variable %d has no constraint", j)
			}
		}
		return make([]float64, n), nil
	}

	t := newTableau(rows, n, opts)
	if err := t.phaseOne(ctx); err != nil {
		return nil, err
	}
	if err := t.phaseTwo(ctx, objective); err != nil {
		return nil, err
	}
	return t.solution(), nil
}

// SolveLP solves the continuous relaxation of p: integrality is ignored, the
// bounds implied by Binary and Upper are kept.
func SolveLP(ctx context.Context, p *Problem, opts Options) (*Solution, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	x, err := solveRows(ctx, p.Objective, p.rows(), opts)
	if err != nil {
		return nil, err
	}
	return &Solution{X: x, Objective: floats.Dot(p.Objective, x), Nodes: 1}, nil
}
