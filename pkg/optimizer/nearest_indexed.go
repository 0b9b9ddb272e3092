package optimizer

import (
	"context"

	"lasercut/pkg/geometry"
)

// sortNearestIndexed is nearestOrder with the candidate scan replaced by a
// quadtree lookup. Equal distances are broken by input order as well, but
// only among endpoints the final search returns.
func sortNearestIndexed(ctx context.Context, elements []*Element) ([]*Element, error) {
	if len(elements) == 0 {
		return nil, nil
	}

	var bounds geometry.Rectangle
	for _, e := range elements {
		bounds.Add(e.Start)
		bounds.Add(e.End())
	}
	tree := newPathTree(bounds)
	for _, e := range elements[1:] {
		tree.add(e)
	}

	sorted := make([]*Element, 0, len(elements))
	sorted = append(sorted, elements[0])
	pos := elements[0].End()
	for len(sorted) < len(elements) {
		if len(sorted)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		nearest, viaEnd, ok := tree.nearest(pos)
		if !ok {
			break
		}
		tree.remove(nearest)
		if viaEnd {
			nearest.Invert()
		}
		pos = nearest.End()
		sorted = append(sorted, nearest)
	}
	Logger().Debug("indexed nearest sort", "elements", len(sorted))
	return sorted, nil
}
