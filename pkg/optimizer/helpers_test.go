package optimizer_test

import (
	"sort"

	"lasercut/pkg/geometry"
	"lasercut/pkg/job"
	"lasercut/pkg/optimizer"
)

var (
	cutSettings  = job.PowerSpeedFocusFrequency{Power: 80, Speed: 20, Frequency: 5000}
	markSettings = job.PowerSpeedFocusFrequency{Power: 20, Speed: 100, Frequency: 5000}
)

func pt(x, y float64) geometry.Point {
	return geometry.Point{X: x, Y: y}
}

// stroke builds an element through the given points.
func stroke(prop job.Property, points ...geometry.Point) *optimizer.Element {
	return &optimizer.Element{Property: prop, Start: points[0], Moves: append([]geometry.Point(nil), points[1:]...)}
}

// segments lists every cut of the elements as an undirected segment, sorted.
func segments(elements []*optimizer.Element) []job.Segment {
	var result []job.Segment
	for _, e := range elements {
		prev := e.Start
		for _, p := range e.Moves {
			result = append(result, job.Segment{A: prev, B: p}.Undirected())
			prev = p
		}
	}
	sortSegments(result)
	return result
}

func partSegments(part *job.Part) []job.Segment {
	var result []job.Segment
	for _, s := range part.Segments() {
		result = append(result, s.Undirected())
	}
	sortSegments(result)
	return result
}

func sortSegments(s []job.Segment) {
	sort.Slice(s, func(i, j int) bool {
		if c := s[i].A.Compare(s[j].A); c != 0 {
			return c < 0
		}
		return s[i].B.Less(s[j].B)
	})
}

// sampleElements is a small job with two settings, nested and disjoint
// shapes, and strokes that are cheaper to cut backwards.
func sampleElements() []*optimizer.Element {
	return []*optimizer.Element{
		stroke(cutSettings, pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10), pt(0, 0)),
		stroke(cutSettings, pt(2, 2), pt(8, 2), pt(8, 8), pt(2, 8), pt(2, 2)),
		stroke(markSettings, pt(30, 0), pt(20, 0)),
		stroke(cutSettings, pt(20, 20), pt(30, 20), pt(30, 30)),
	}
}
