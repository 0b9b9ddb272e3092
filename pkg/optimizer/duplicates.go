package optimizer

import "context"

// sortDeleteDuplicates drops every element that repeats an earlier one
// (same settings, start and moves) and orders the survivors by nearest
// neighbour.
func sortDeleteDuplicates(_ context.Context, elements []*Element) ([]*Element, error) {
	survivors := removeDuplicates(elements)
	if removed := len(elements) - len(survivors); removed > 0 {
		Logger().Debug("removed duplicate paths", "removed", removed, "remaining", len(survivors))
	}
	return nearestOrder(survivors), nil
}

func removeDuplicates(elements []*Element) []*Element {
	var survivors []*Element
	for _, e := range elements {
		duplicate := false
		for _, kept := range survivors {
			if kept.Equal(e) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			survivors = append(survivors, e)
		}
	}
	return survivors
}
