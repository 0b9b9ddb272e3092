package optimizer

// TravelDistance sums the gaps between consecutive elements, from each
// element's end to the next one's start.
func TravelDistance(elements []*Element) float64 {
	total := 0.0
	for i := 1; i < len(elements); i++ {
		total += elements[i-1].End().Distance(elements[i].Start)
	}
	return total
}

// CutLength sums the length of every element.
func CutLength(elements []*Element) float64 {
	total := 0.0
	for _, e := range elements {
		total += e.Length()
	}
	return total
}
