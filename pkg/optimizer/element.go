package optimizer

import (
	"fmt"

	"lasercut/pkg/geometry"
	"lasercut/pkg/job"

	"github.com/pkg/errors"
)

// Element is one stroke cut with constant settings: a start point followed by
// the points reached by straight cuts.
type Element struct {
	Property job.Property
	Start    geometry.Point
	Moves    []geometry.Point
}

// End returns the last point of the stroke.
func (e *Element) End() geometry.Point {
	if len(e.Moves) == 0 {
		return e.Start
	}
	return e.Moves[len(e.Moves)-1]
}

// Points returns the start followed by the moves.
func (e *Element) Points() geometry.Polyline {
	points := make(geometry.Polyline, 0, len(e.Moves)+1)
	points = append(points, e.Start)
	return append(points, e.Moves...)
}

func (e *Element) BoundingBox() geometry.Rectangle {
	return e.Points().Bounds()
}

// IsClosedPath reports whether the stroke ends where it started.
func (e *Element) IsClosedPath() bool {
	return len(e.Moves) > 0 && e.End().Equal(e.Start)
}

// Invert reverses the direction of travel in place.
func (e *Element) Invert() {
	if len(e.Moves) == 0 {
		return
	}
	points := e.Points()
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	e.Start = points[0]
	e.Moves = points[1:]
}

// Equal reports whether two elements cut the same stroke in the same
// direction with the same settings.
func (e *Element) Equal(other *Element) bool {
	if !job.PropertiesEqual(e.Property, other.Property) {
		return false
	}
	if !e.Start.Equal(other.Start) || len(e.Moves) != len(other.Moves) {
		return false
	}
	for i, p := range e.Moves {
		if !p.Equal(other.Moves[i]) {
			return false
		}
	}
	return true
}

func (e *Element) Clone() *Element {
	return &Element{
		Property: e.Property,
		Start:    e.Start,
		Moves:    append([]geometry.Point(nil), e.Moves...),
	}
}

// Length is the cut length of the stroke.
func (e *Element) Length() float64 {
	return e.Points().Length()
}

func (e *Element) String() string {
	return fmt.Sprintf("Element{%v %v -> %v (%d moves)}", e.Property, e.Start, e.End(), len(e.Moves))
}

// extend appends the moves of other to e. Both must carry equal settings;
// anything else is a bug in the caller's partitioning.
func (e *Element) extend(other *Element) {
	if !job.PropertiesEqual(e.Property, other.Property) {
		panic(errors.Errorf("optimizer: merging elements with different settings: %v and %v", e.Property, other.Property))
	}
	e.Moves = append(e.Moves, other.Moves...)
}

// CloneElements deep-copies a list so a strategy may invert freely.
func CloneElements(elements []*Element) []*Element {
	out := make([]*Element, len(elements))
	for i, e := range elements {
		out[i] = e.Clone()
	}
	return out
}
