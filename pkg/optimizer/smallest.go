package optimizer

import (
	"context"
	"sort"
)

// sortSmallestFirst orders by bounding box area, keeping input order for
// equal areas.
func sortSmallestFirst(_ context.Context, elements []*Element) ([]*Element, error) {
	result := make([]*Element, len(elements))
	copy(result, elements)
	areas := make(map[*Element]float64, len(result))
	for _, e := range result {
		areas[e] = e.BoundingBox().Area()
	}
	sort.SliceStable(result, func(i, j int) bool {
		return areas[result[i]] < areas[result[j]]
	})
	return result, nil
}
