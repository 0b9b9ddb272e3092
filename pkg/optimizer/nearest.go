package optimizer

import (
	"context"
	"math"
)

func sortNearest(_ context.Context, elements []*Element) ([]*Element, error) {
	return nearestOrder(elements), nil
}

// nearestOrder builds a tour greedily: starting with the first element, it
// repeatedly appends the remaining element whose start or end is closest to
// the end of the tour, inverting it when its end is closer. Ties go to the
// earliest element, and to its start before its end.
func nearestOrder(elements []*Element) []*Element {
	if len(elements) == 0 {
		return nil
	}
	remaining := make([]*Element, len(elements)-1)
	copy(remaining, elements[1:])

	result := make([]*Element, 0, len(elements))
	result = append(result, elements[0])
	for len(remaining) > 0 {
		pos := result[len(result)-1].End()
		best := math.Inf(1)
		bestIdx := 0
		invert := false
		for i, e := range remaining {
			if d := pos.Distance(e.Start); d < best {
				best, bestIdx, invert = d, i, false
			}
			if d := pos.Distance(e.End()); d < best {
				best, bestIdx, invert = d, i, true
			}
		}
		next := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		if invert {
			next.Invert()
		}
		result = append(result, next)
	}
	return result
}
