package optimizer

import (
	"context"
	"sort"

	"lasercut/pkg/geometry"
)

// sortInnerFirst orders by bounding box so that nested geometry is cut
// before its container. Four stable sorts in a row, the last one dominant:
// -xMin, -yMin, xMax, yMax.
//
// This only looks at bounding boxes. Shapes with coinciding boxes (a circle
// in its square) keep their input order.
func sortInnerFirst(_ context.Context, elements []*Element) ([]*Element, error) {
	result := make([]*Element, len(elements))
	copy(result, elements)
	boxes := make(map[*Element]geometry.Rectangle, len(result))
	for _, e := range result {
		boxes[e] = e.BoundingBox()
	}

	keys := []func(r geometry.Rectangle) float64{
		func(r geometry.Rectangle) float64 { return -r.XMin() },
		func(r geometry.Rectangle) float64 { return -r.YMin() },
		func(r geometry.Rectangle) float64 { return r.XMax() },
		func(r geometry.Rectangle) float64 { return r.YMax() },
	}
	for _, key := range keys {
		sort.SliceStable(result, func(i, j int) bool {
			return key(boxes[result[i]]) < key(boxes[result[j]])
		})
	}
	return result, nil
}
