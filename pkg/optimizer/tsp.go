package optimizer

import (
	"context"
	"math"
	"time"

	"lasercut/pkg/geometry"
	"lasercut/pkg/lp"

	"github.com/pkg/errors"
)

// tspSorter finds the order with the least travel by solving a sequencing
// problem exactly. Every element contributes two cities, its start (2k) and
// its end (2k+1). The tour starts at city 0 and returns to it for free, so
// the optimum is the shortest open path beginning with the first element.
type tspSorter struct {
	maxElements int
	timeout     time.Duration
	solver      lp.Options
}

func (t *tspSorter) Sort(ctx context.Context, elements []*Element) ([]*Element, error) {
	if len(elements) <= 1 {
		return elements, nil
	}
	if t.maxElements > 0 && len(elements) > t.maxElements {
		Logger().Warn("too many elements for TSP, using nearest neighbour",
			"elements", len(elements), "max", t.maxElements)
		return nearestOrder(elements), nil
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	model := newTSPModel(elements)
	model.problem.Start = model.assignment(nearestTour(elements))
	model.problem.Cuts = model.subtourCuts
	Logger().Debug("solving TSP model",
		"elements", len(elements),
		"cities", model.cities,
		"variables", model.problem.NumVars(),
		"constraints", len(model.problem.Constraints))

	start := time.Now()
	solution, err := lp.Solve(ctx, model.problem, t.solver)
	if err != nil {
		return nil, errors.Wrapf(ErrSolverFailure, "%v", err)
	}
	Logger().Debug("TSP model solved",
		"nodes", solution.Nodes,
		"cuts", solution.Cuts,
		"travel", solution.Objective,
		"elapsed", time.Since(start))

	order, inverted, err := model.tour(solution.X)
	if err != nil {
		return nil, err
	}
	result := make([]*Element, len(order))
	for i, idx := range order {
		if inverted[i] {
			elements[idx].Invert()
		}
		result[i] = elements[idx]
	}
	return result, nil
}

type tspModel struct {
	cities  int
	problem *lp.Problem
}

// edge returns the variable index of X[i,j], i != j.
func (m *tspModel) edge(i, j int) int {
	if i < j {
		return i*(m.cities-1) + j - 1
	}
	return i*(m.cities-1) + j
}

// order returns the variable index of U[i], i >= 1.
func (m *tspModel) order(i int) int {
	return m.cities*(m.cities-1) + i - 1
}

// partner returns the other city of the same element.
func partner(city int) int {
	return city ^ 1
}

func newTSPModel(elements []*Element) *tspModel {
	n := 2 * len(elements)
	m := &tspModel{cities: n}
	points := make([]geometry.Point, n)
	for k, e := range elements {
		points[2*k] = e.Start
		points[2*k+1] = e.End()
	}

	nVars := n*(n-1) + n - 1
	objective := make([]float64, nVars)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			// Coming back to city 0 closes the tour and costs nothing.
			if i == j || j == 0 {
				continue
			}
			// Cutting a stroke is not travel.
			if partner(i) == j {
				continue
			}
			objective[m.edge(i, j)] = points[i].Distance(points[j])
		}
	}

	p := lp.NewProblem(objective)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				p.SetBinary(m.edge(i, j))
			}
		}
	}
	for i := 1; i < n; i++ {
		p.SetInteger(m.order(i))
		p.SetUpper(m.order(i), float64(n-1))
	}

	// The first element is cut first and forwards; every other stroke is
	// cut exactly once in either direction.
	p.AddConstraint(map[int]float64{m.edge(0, 1): 1}, lp.Equal, 1, "first cut")
	for k := 1; k < len(elements); k++ {
		s, e := 2*k, 2*k+1
		p.AddConstraint(map[int]float64{m.edge(s, e): 1, m.edge(e, s): 1}, lp.Equal, 1, "cut")
	}

	for i := 0; i < n; i++ {
		in := map[int]float64{}
		out := map[int]float64{}
		for j := 0; j < n; j++ {
			if i != j {
				in[m.edge(j, i)] = 1
				out[m.edge(i, j)] = 1
			}
		}
		p.AddConstraint(in, lp.Equal, 1, "one in")
		p.AddConstraint(out, lp.Equal, 1, "one out")
	}

	// Miller-Tucker-Zemlin subtour elimination.
	for i := 1; i < n; i++ {
		for j := 1; j < n; j++ {
			if i == j {
				continue
			}
			p.AddConstraint(map[int]float64{
				m.order(i):   1,
				m.order(j):   -1,
				m.edge(i, j): float64(n),
			}, lp.LessEqual, float64(n-1), "single tour")
		}
	}

	m.problem = p
	return m
}

// nearestTour is the nearest neighbour order of elements as indexes and
// inversion flags. elements are left untouched.
func nearestTour(elements []*Element) ([]int, []bool) {
	clones := CloneElements(elements)
	index := make(map[*Element]int, len(clones))
	for i, e := range clones {
		index[e] = i
	}
	sorted := nearestOrder(clones)
	order := make([]int, len(sorted))
	inverted := make([]bool, len(sorted))
	for i, e := range sorted {
		order[i] = index[e]
		inverted[i] = !e.Start.Equal(elements[order[i]].Start)
	}
	return order, inverted
}

// assignment encodes a tour as values for every model variable. U[c] is the
// position of city c in the tour, counting city 1 as position 0.
func (m *tspModel) assignment(order []int, inverted []bool) []float64 {
	x := make([]float64, m.problem.NumVars())
	seq := make([]int, 0, m.cities)
	for i, k := range order {
		entry := 2 * k
		if inverted[i] {
			entry++
		}
		seq = append(seq, entry, partner(entry))
	}
	for i, c := range seq {
		x[m.edge(c, seq[(i+1)%len(seq)])] = 1
		if c != 0 {
			x[m.order(c)] = float64(i - 1)
		}
	}
	return x
}

// subtourCuts returns, for every city the relaxation x cannot reach from
// city 0 with a flow of one, the constraint that at least one edge enters
// the cut separating them. Every single tour satisfies these.
func (m *tspModel) subtourCuts(x []float64) []lp.Constraint {
	capacity := make([][]float64, m.cities)
	for i := range capacity {
		capacity[i] = make([]float64, m.cities)
		for j := range capacity[i] {
			if i != j {
				capacity[i][j] = math.Max(0, x[m.edge(i, j)])
			}
		}
	}

	var cuts []lp.Constraint
	seen := map[string]bool{}
	for t := 1; t < m.cities; t++ {
		flow, reached := maxFlow(capacity, 0, t, 1)
		if flow >= 1-cutTolerance {
			continue
		}
		key := make([]byte, m.cities)
		for c, ok := range reached {
			if ok {
				key[c] = '1'
			} else {
				key[c] = '0'
			}
		}
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true

		coeffs := map[int]float64{}
		for i := 0; i < m.cities; i++ {
			for j := 0; j < m.cities; j++ {
				if reached[i] && !reached[j] {
					coeffs[m.edge(i, j)] = 1
				}
			}
		}
		cuts = append(cuts, lp.Constraint{Coeffs: coeffs, Sense: lp.GreaterEqual, RHS: 1, Name: "connected"})
	}
	return cuts
}

// cutTolerance is how far below one a flow may fall before a cut is added.
const cutTolerance = 1e-6

// maxFlow pushes flow from s to t along shortest augmenting paths until
// limit is reached or t is cut off. It returns the flow and the cities still
// reachable from s in the residual graph.
func maxFlow(capacity [][]float64, s, t int, limit float64) (float64, []bool) {
	n := len(capacity)
	residual := make([][]float64, n)
	for i := range capacity {
		residual[i] = append([]float64(nil), capacity[i]...)
	}

	var flow float64
	for {
		prev := make([]int, n)
		for i := range prev {
			prev[i] = -1
		}
		prev[s] = s
		queue := []int{s}
		for len(queue) > 0 && prev[t] < 0 {
			u := queue[0]
			queue = queue[1:]
			for v := 0; v < n; v++ {
				if prev[v] < 0 && residual[u][v] > cutTolerance {
					prev[v] = u
					queue = append(queue, v)
				}
			}
		}
		if prev[t] < 0 {
			reached := make([]bool, n)
			for v := range prev {
				reached[v] = prev[v] >= 0
			}
			return flow, reached
		}

		push := limit - flow
		for v := t; v != s; v = prev[v] {
			push = math.Min(push, residual[prev[v]][v])
		}
		for v := t; v != s; v = prev[v] {
			residual[prev[v]][v] -= push
			residual[v][prev[v]] += push
		}
		flow += push
		if flow >= limit-cutTolerance {
			return flow, nil
		}
	}
}

// tour walks the selected edges from city 0 and returns the element order
// and, per position, whether the element is entered through its end. It
// fails if the walk does not visit every city.
func (m *tspModel) tour(x []float64) ([]int, []bool, error) {
	visited := make([]bool, m.cities)
	visited[0], visited[1] = true, true
	order := []int{0}
	inverted := []bool{false}

	city := 1
	for {
		next := -1
		for j := 0; j < m.cities; j++ {
			if j != city && !visited[j] && x[m.edge(city, j)] > 0.5 {
				next = j
				break
			}
		}
		if next < 0 {
			break
		}
		order = append(order, next/2)
		inverted = append(inverted, next%2 == 1)
		visited[next] = true
		visited[partner(next)] = true
		city = partner(next)
	}

	for c, ok := range visited {
		if !ok {
			return nil, nil, errors.Wrapf(ErrSolverFailure, "tour does not reach city %d", c)
		}
	}
	return order, inverted, nil
}
