package optimizer

import (
	"math"
	"sort"

	"lasercut/pkg/geometry"
	"lasercut/pkg/job"
)

// JoinOptions tune JoinPaths. The zero value only extends chains forward
// from their end.
type JoinOptions struct {
	// Bidirectional also extends each chain backwards from its start.
	Bidirectional bool
	// SkipJunctions leaves strokes apart where three or more endpoints meet.
	SkipJunctions bool
	// Tolerance is the largest Manhattan distance between two endpoints
	// that still counts as touching. The gap is bridged by cutting straight
	// to the next stroke's first target, so the joined stroke may deviate
	// from the input by up to Tolerance. Zero only joins equal endpoints.
	Tolerance float64
}

// JoinPaths fuses strokes with equal settings that share an endpoint into
// longer strokes. Every input stroke ends up in exactly one output element,
// possibly reversed. The input elements are not modified. Output elements
// are ordered by the position of their first stroke in the input.
func JoinPaths(elements []*Element, opts JoinOptions) []*Element {
	type chain struct {
		head    int
		element *Element
	}
	var chains []chain

	for _, group := range partitionByProperty(elements) {
		members := make([]*Element, len(group))
		for i, idx := range group {
			members[i] = elements[idx]
		}
		j := newJoiner(members, opts)
		for i := range members {
			if e := j.chainFrom(i); e != nil {
				chains = append(chains, chain{head: group[i], element: e})
			}
		}
	}

	sort.SliceStable(chains, func(a, b int) bool {
		return chains[a].head < chains[b].head
	})
	result := make([]*Element, len(chains))
	for i, c := range chains {
		result[i] = c.element
	}
	Logger().Debug("joined paths", "before", len(elements), "after", len(result))
	return result
}

// partitionByProperty groups element indexes by equal settings, in order of
// first appearance.
func partitionByProperty(elements []*Element) [][]int {
	var (
		groups [][]int
		keys   []job.Property
	)
next:
	for i, e := range elements {
		for g, key := range keys {
			if job.PropertiesEqual(key, e.Property) {
				groups[g] = append(groups[g], i)
				continue next
			}
		}
		keys = append(keys, e.Property)
		groups = append(groups, []int{i})
	}
	return groups
}

// endpoint is one end of a member element. inverted is set for the end
// point: joining through it means traversing the element backwards.
type endpoint struct {
	index    int
	point    geometry.Point
	inverted bool
}

type joiner struct {
	members   []*Element
	endpoints []endpoint // sorted by point
	consumed  []bool
	opts      JoinOptions
}

func newJoiner(members []*Element, opts JoinOptions) *joiner {
	endpoints := make([]endpoint, 0, 2*len(members))
	for i, e := range members {
		endpoints = append(endpoints,
			endpoint{index: i, point: e.Start},
			endpoint{index: i, point: e.End(), inverted: true})
	}
	sort.SliceStable(endpoints, func(a, b int) bool {
		return endpoints[a].point.Less(endpoints[b].point)
	})
	return &joiner{
		members:   members,
		endpoints: endpoints,
		consumed:  make([]bool, len(members)),
		opts:      opts,
	}
}

// near returns the endpoints within the tolerance of p, in sorted order.
// Endpoints are sorted by x first, so the search finds the first one inside
// the x window, even among repeated points, and the scan stops past it.
func (j *joiner) near(p geometry.Point) []endpoint {
	tol := math.Max(0, j.opts.Tolerance)
	lo := sort.Search(len(j.endpoints), func(i int) bool {
		return j.endpoints[i].point.X >= p.X-tol
	})
	var result []endpoint
	for i := lo; i < len(j.endpoints) && j.endpoints[i].point.X <= p.X+tol; i++ {
		if manhattan(j.endpoints[i].point, p) <= tol {
			result = append(result, j.endpoints[i])
		}
	}
	return result
}

func manhattan(a, b geometry.Point) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

// chainFrom starts a chain at member i, or returns nil if i already belongs
// to a chain.
func (j *joiner) chainFrom(i int) *Element {
	if j.consumed[i] {
		return nil
	}
	j.consumed[i] = true
	chain := j.members[i].Clone()
	j.extend(chain)
	if j.opts.Bidirectional && !chain.IsClosedPath() {
		chain.Invert()
		j.extend(chain)
		chain.Invert()
	}
	return chain
}

// extend appends unconsumed members to chain for as long as one starts or
// ends where the chain ends. The closest candidate wins, the first in sorted
// order on ties.
func (j *joiner) extend(chain *Element) {
	for {
		end := chain.End()
		candidates := j.near(end)
		if j.opts.SkipJunctions && len(candidates) > 2 {
			return
		}
		best := -1
		for i, c := range candidates {
			if j.consumed[c.index] {
				continue
			}
			if best < 0 || manhattan(c.point, end) < manhattan(candidates[best].point, end) {
				best = i
			}
		}
		if best < 0 {
			return
		}
		c := candidates[best]
		next := j.members[c.index].Clone()
		if c.inverted {
			next.Invert()
		}
		j.consumed[c.index] = true
		chain.extend(next)
	}
}
