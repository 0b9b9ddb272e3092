// Package lp solves small mixed-integer linear programs: a dense two-phase
// simplex for the relaxation and best-bound branch and cut on top of it.
//
// Problems are always minimized and every variable is non-negative.
package lp

import (
	"fmt"
	"math"

	"lasercut/pkg/cfg"

	"github.com/pkg/errors"
)

type Sense int

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	}
	return fmt.Sprintf("Sense(%d)", int(s))
}

// Constraint is a single linear row: sum(Coeffs[j] * x[j]) Sense RHS.
// Coefficients of variables not present in the map are zero.
type Constraint struct {
	Coeffs map[int]float64
	Sense  Sense
	RHS    float64
	Name   string
}

// Problem is a linear program in the form
//
//	minimize   Objective · x
//	subject to Constraints
//	           x >= 0, x[j] <= Upper[j]
//	           x[j] in {0, 1} for j in Binary
//	           x[j] integral for j in Integer
type Problem struct {
	Objective   []float64
	Constraints []Constraint
	Binary      map[int]bool
	Integer     map[int]bool
	Upper       map[int]float64

	// Start is an optional feasible integral assignment. Solve uses it as
	// the first incumbent and returns it if nothing better exists.
	Start []float64
	// Cuts, when set, is called with every relaxation Solve computes. The
	// constraints it returns must hold for every feasible integral
	// assignment; they are added to the problem and the relaxation is
	// solved again.
	Cuts CutFunc
}

// CutFunc separates a relaxed assignment from the integral hull.
type CutFunc func(x []float64) []Constraint

func NewProblem(objective []float64) *Problem {
	return &Problem{
		Objective: objective,
		Binary:    map[int]bool{},
		Integer:   map[int]bool{},
		Upper:     map[int]float64{},
	}
}

func (p *Problem) NumVars() int {
	return len(p.Objective)
}

func (p *Problem) AddConstraint(coeffs map[int]float64, sense Sense, rhs float64, name string) {
	p.Constraints = append(p.Constraints, Constraint{Coeffs: coeffs, Sense: sense, RHS: rhs, Name: name})
}

func (p *Problem) SetBinary(j int) {
	p.Binary[j] = true
}

func (p *Problem) SetInteger(j int) {
	p.Integer[j] = true
}

func (p *Problem) SetUpper(j int, ub float64) {
	p.Upper[j] = ub
}

// integral reports whether x[j] must take an integer value.
func (p *Problem) integral(j int) bool {
	return p.Binary[j] || p.Integer[j]
}

func (p *Problem) validate() error {
	n := p.NumVars()
	if n == 0 {
		return errors.New("lp: problem has no variables")
	}
	for _, c := range p.Constraints {
		if err := p.validateConstraint(c); err != nil {
			return err
		}
	}
	for j := range p.Binary {
		if j < 0 || j >= n {
			return errors.Errorf("lp: binary variable %d out of range", j)
		}
	}
	for j := range p.Integer {
		if j < 0 || j >= n {
			return errors.Errorf("lp: integer variable %d out of range", j)
		}
	}
	for j, ub := range p.Upper {
		if j < 0 || j >= n {
			return errors.Errorf("lp: upper bound on variable %d out of range", j)
		}
		if ub < 0 {
			return errors.Errorf("lp: negative upper bound %g on variable %d", ub, j)
		}
	}
	if p.Start != nil && len(p.Start) != n {
		return errors.Errorf("lp: start assignment has %d values for %d variables", len(p.Start), n)
	}
	return nil
}

func (p *Problem) validateConstraint(c Constraint) error {
	n := p.NumVars()
	for j := range c.Coeffs {
		if j < 0 || j >= n {
			return errors.Errorf("lp: constraint %q references variable %d of %d", c.Name, j, n)
		}
	}
	return nil
}

// feasible checks x against every constraint, bound and integrality
// requirement of p.
func (p *Problem) feasible(x []float64, opts Options) error {
	for j, v := range x {
		if v < -opts.IntegralityTolerance {
			return errors.Errorf("variable %d is negative (%g)", j, v)
		}
		if p.integral(j) && math.Abs(v-math.Round(v)) > opts.IntegralityTolerance {
			return errors.Errorf("variable %d is not integral (%g)", j, v)
		}
		if p.Binary[j] && v > 1+opts.IntegralityTolerance {
			return errors.Errorf("binary variable %d is %g", j, v)
		}
		if ub, ok := p.Upper[j]; ok && v > ub+opts.IntegralityTolerance {
			return errors.Errorf("variable %d exceeds its bound %g (%g)", j, ub, v)
		}
	}
	for _, c := range p.Constraints {
		var lhs float64
		for j, v := range c.Coeffs {
			lhs += v * x[j]
		}
		var ok bool
		switch c.Sense {
		case LessEqual:
			ok = lhs <= c.RHS+opts.IntegralityTolerance
		case GreaterEqual:
			ok = lhs >= c.RHS-opts.IntegralityTolerance
		case Equal:
			ok = math.Abs(lhs-c.RHS) <= opts.IntegralityTolerance
		}
		if !ok {
			return errors.Errorf("constraint %q violated: %g %v %g", c.Name, lhs, c.Sense, c.RHS)
		}
	}
	return nil
}

// row is a constraint in dense form.
type row struct {
	coeffs []float64
	sense  Sense
	rhs    float64
}

// rows expands constraints and variable bounds into dense rows. Bounds
// already implied by a constraint are left out.
func (p *Problem) rows() []row {
	n := p.NumVars()
	implied := p.impliedUpper()
	rows := make([]row, 0, len(p.Constraints)+len(p.Binary)+len(p.Upper))
	for _, c := range p.Constraints {
		rows = append(rows, denseRow(n, c))
	}
	for j := 0; j < n; j++ {
		ub, hasUpper := p.Upper[j]
		if p.Binary[j] && (!hasUpper || ub > 1) {
			ub, hasUpper = 1, true
		}
		if hasUpper && implied[j] > ub {
			rows = append(rows, boundRow(n, j, LessEqual, ub))
		}
	}
	return rows
}

// impliedUpper returns, per variable, the tightest upper bound that follows
// from a single constraint with non-negative coefficients and x >= 0.
func (p *Problem) impliedUpper() []float64 {
	implied := make([]float64, p.NumVars())
	for j := range implied {
		implied[j] = math.Inf(1)
	}
	for _, c := range p.Constraints {
		if c.Sense == GreaterEqual || c.RHS < 0 {
			continue
		}
		nonNegative := true
		for _, v := range c.Coeffs {
			if v < 0 {
				nonNegative = false
				break
			}
		}
		if !nonNegative {
			continue
		}
		for j, v := range c.Coeffs {
			if v > 0 && c.RHS/v < implied[j] {
				implied[j] = c.RHS / v
			}
		}
	}
	return implied
}

func denseRow(n int, c Constraint) row {
	coeffs := make([]float64, n)
	for j, v := range c.Coeffs {
		coeffs[j] = v
	}
	return row{coeffs: coeffs, sense: c.Sense, rhs: c.RHS}
}

func boundRow(n, j int, sense Sense, value float64) row {
	coeffs := make([]float64, n)
	coeffs[j] = 1
	return row{coeffs: coeffs, sense: sense, rhs: value}
}

// Options tune the solver. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// Tolerance is the reduced-cost and pivot threshold.
	Tolerance float64
	// IntegralityTolerance is how close to an integer a value must be.
	IntegralityTolerance float64
	// MaxPivots caps simplex iterations per relaxation.
	MaxPivots int
	// MaxNodes caps the number of branch and bound nodes.
	MaxNodes int
	// MaxCutRounds caps how often one node is re-solved with new cuts.
	MaxCutRounds int
}

func DefaultOptions() Options {
	return Options{
		Tolerance:            cfg.SolverTolerance,
		IntegralityTolerance: cfg.IntegralityTolerance,
		MaxPivots:            cfg.SolverMaxPivots,
		MaxNodes:             cfg.SolverMaxNodes,
		MaxCutRounds:         cfg.SolverMaxCutRounds,
	}
}

// Solution is an optimal assignment.
type Solution struct {
	X         []float64
	Objective float64
	// Nodes is the number of branch and bound nodes explored.
	Nodes int
	// Cuts is the number of constraints added through Problem.Cuts.
	Cuts int
}
