package optimizer

import (
	"math"

	"lasercut/pkg/geometry"

	"github.com/asim/quadtree"
)

var zeroPoint = quadtree.NewPoint(0, 0, nil)

// pathTree indexes element endpoints. Each quadtree point carries the set of
// elements starting or ending there.
type pathTree struct {
	quadTree *quadtree.QuadTree
	width    float64
	height   float64
	// rank breaks distance ties in favour of earlier elements.
	rank map[*Element]int
}

func newPathTree(bounds geometry.Rectangle) *pathTree {
	midX := (bounds.XMax() + bounds.XMin()) / 2
	midY := (bounds.YMax() + bounds.YMin()) / 2
	halfWidth := bounds.XMax() - midX
	halfHeight := bounds.YMax() - midY

	// Add a small margin to avoid dropping objects at the edges
	halfWidth += 10
	halfHeight += 10

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(midX, midY, nil),
		quadtree.NewPoint(halfWidth, halfHeight, nil))
	return &pathTree{
		quadTree: quadtree.New(aabb, 0, nil),
		width:    halfWidth * 2,
		height:   halfHeight * 2,
		rank:     map[*Element]int{},
	}
}

// lookup returns the tree point exactly at p, if any.
func (t *pathTree) lookup(p geometry.Point) *quadtree.Point {
	point := quadtree.NewPoint(p.X, p.Y, nil)
	points := t.quadTree.KNearest(quadtree.NewAABB(point, zeroPoint), 1, nil)
	if len(points) > 0 {
		x, y := points[0].Coordinates()
		if x == p.X && y == p.Y {
			return points[0]
		}
	}
	return nil
}

func (t *pathTree) add(e *Element) {
	if _, ok := t.rank[e]; !ok {
		t.rank[e] = len(t.rank)
	}
	addOne := func(p geometry.Point) {
		if existing := t.lookup(p); existing != nil {
			existing.Data().(map[*Element]struct{})[e] = struct{}{}
			return
		}
		elements := map[*Element]struct{}{e: {}}
		t.quadTree.Insert(quadtree.NewPoint(p.X, p.Y, elements))
	}
	addOne(e.Start)
	addOne(e.End())
}

func (t *pathTree) remove(e *Element) {
	removeOne := func(p geometry.Point) {
		if existing := t.lookup(p); existing != nil {
			elements := existing.Data().(map[*Element]struct{})
			delete(elements, e)
			if len(elements) == 0 {
				t.quadTree.Remove(existing)
			}
		}
	}
	removeOne(e.Start)
	removeOne(e.End())
}

// nearest returns the element with an endpoint closest to p, and whether
// that endpoint is its end. The search square grows until it hits a point;
// a second search with the best distance as radius then catches closer
// points that lay just outside the square's corners.
func (t *pathTree) nearest(p geometry.Point) (*Element, bool, bool) {
	center := quadtree.NewPoint(p.X, p.Y, nil)
	limit := 2 * math.Max(t.width, t.height)
	// Distances between p and the tree are at most limit + the offset of p.
	limit += math.Abs(p.X) + math.Abs(p.Y)

	radius := math.Max(1, math.Min(t.width, t.height)/64)
	for {
		points := t.quadTree.Search(quadtree.NewAABB(center, quadtree.NewPoint(radius, radius, nil)))
		if len(points) > 0 {
			best, viaEnd := t.closest(p, points)
			d := math.Min(p.Distance(best.Start), p.Distance(best.End()))
			d += d*1e-9 + 1e-9
			points = t.quadTree.Search(quadtree.NewAABB(center, quadtree.NewPoint(d, d, nil)))
			if len(points) > 0 {
				best, viaEnd = t.closest(p, points)
			}
			return best, viaEnd, true
		}
		if radius > limit {
			return nil, false, false
		}
		radius *= 2
	}
}

func (t *pathTree) closest(p geometry.Point, points []*quadtree.Point) (*Element, bool) {
	var (
		best    *Element
		bestEnd bool
		bestD   = math.Inf(1)
	)
	consider := func(e *Element, d float64, viaEnd bool) {
		switch {
		case d < bestD:
		case d == bestD && best != nil && t.rank[e] < t.rank[best]:
		default:
			return
		}
		best, bestEnd, bestD = e, viaEnd, d
	}
	for _, point := range points {
		for e := range point.Data().(map[*Element]struct{}) {
			consider(e, p.Distance(e.Start), false)
			consider(e, p.Distance(e.End()), true)
		}
	}
	return best, bestEnd
}
