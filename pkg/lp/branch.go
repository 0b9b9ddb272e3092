package lp

import (
	"container/heap"
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// branch is one bound added while descending the search tree.
type branch struct {
	variable int
	sense    Sense
	value    float64
}

type node struct {
	branches []branch
	// bound is the parent's relaxed objective, a lower bound for the node.
	bound float64
}

func (n node) child(b branch, bound float64) node {
	branches := make([]branch, len(n.branches), len(n.branches)+1)
	copy(branches, n.branches)
	return node{branches: append(branches, b), bound: bound}
}

// nodeQueue orders open nodes by bound, deeper nodes first on ties.
type nodeQueue []node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].bound != q[j].bound {
		return q[i].bound < q[j].bound
	}
	return len(q[i].branches) > len(q[j].branches)
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(node)) }

func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}

// Solve finds an optimal assignment honouring the Binary and Integer sets.
// It explores the branch and bound tree best bound first, starting from
// p.Start when one is given, and tightens every relaxation with p.Cuts.
//
// Solve returns ErrNoSolution when no integral assignment exists,
// ErrIterationLimit when the node or pivot budget runs out, and the context's
// error (wrapped) when ctx expires.
func Solve(ctx context.Context, p *Problem, opts Options) (*Solution, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	n := p.NumVars()
	base := p.rows()
	var best *Solution
	if p.Start != nil {
		if err := p.feasible(p.Start, opts); err != nil {
			return nil, errors.Wrap(err, "lp: infeasible start assignment")
		}
		x := make([]float64, n)
		copy(x, p.Start)
		best = &Solution{X: x, Objective: floats.Dot(p.Objective, x)}
	}
	nodes, cuts := 0, 0

	queue := &nodeQueue{{bound: math.Inf(-1)}}
	for queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "lp: branch and bound interrupted")
		}

		current := heap.Pop(queue).(node)
		if best != nil && current.bound >= best.Objective-opts.Tolerance {
			// Every other open node has a bound at least as large.
			break
		}
		if opts.MaxNodes > 0 && nodes >= opts.MaxNodes {
			return nil, errors.Wrapf(ErrIterationLimit, "explored %d nodes", nodes)
		}
		nodes++

		var x []float64
		for round := 0; ; round++ {
			rows := make([]row, len(base), len(base)+len(current.branches))
			copy(rows, base)
			for _, b := range current.branches {
				rows = append(rows, boundRow(n, b.variable, b.sense, b.value))
			}

			var err error
			x, err = solveRows(ctx, p.Objective, rows, opts)
			if err != nil {
				if errors.Is(err, ErrInfeasible) {
					x = nil
					break
				}
				return nil, err
			}
			if p.Cuts == nil || (opts.MaxCutRounds > 0 && round >= opts.MaxCutRounds) {
				break
			}
			if best != nil && floats.Dot(p.Objective, x) >= best.Objective-opts.Tolerance {
				break
			}
			added := p.Cuts(x)
			if len(added) == 0 {
				break
			}
			for _, c := range added {
				if err := p.validateConstraint(c); err != nil {
					return nil, err
				}
				base = append(base, denseRow(n, c))
			}
			cuts += len(added)
		}
		if x == nil {
			continue
		}

		objective := floats.Dot(p.Objective, x)
		if best != nil && objective >= best.Objective-opts.Tolerance {
			continue
		}

		j := p.mostFractional(x, opts.IntegralityTolerance)
		if j < 0 {
			for k := range x {
				if p.integral(k) {
					x[k] = math.Round(x[k])
				}
			}
			best = &Solution{X: x, Objective: objective}
			continue
		}

		heap.Push(queue, current.child(branch{variable: j, sense: LessEqual, value: math.Floor(x[j])}, objective))
		heap.Push(queue, current.child(branch{variable: j, sense: GreaterEqual, value: math.Ceil(x[j])}, objective))
	}

	if best == nil {
		return nil, ErrNoSolution
	}
	best.Nodes = nodes
	best.Cuts = cuts
	return best, nil
}

// mostFractional returns the integral variable furthest from an integer, or
// -1 if every integral variable is within tol of one. Binary variables are
// branched on before general integers.
func (p *Problem) mostFractional(x []float64, tol float64) int {
	bestIdx := -1
	bestDist := tol
	for _, binary := range []bool{true, false} {
		for j, v := range x {
			if !p.integral(j) || p.Binary[j] != binary {
				continue
			}
			dist := math.Abs(v - math.Round(v))
			if dist > bestDist {
				bestIdx, bestDist = j, dist
			}
		}
		if bestIdx >= 0 {
			return bestIdx
		}
	}
	return -1
}
