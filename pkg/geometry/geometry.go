package geometry

import (
	"fmt"
	"math"
)

// Point is a position in device units (dots at the job's resolution).
type Point struct {
	X float64
	Y float64
}

// Distance returns the distance between two points.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

func (p Point) Equal(other Point) bool {
	return p.X == other.X && p.Y == other.Y
}

// Compare orders points by X, then by Y. It returns -1, 0 or 1.
func (p Point) Compare(other Point) int {
	switch {
	case p.X < other.X:
		return -1
	case p.X > other.X:
		return 1
	case p.Y < other.Y:
		return -1
	case p.Y > other.Y:
		return 1
	}
	return 0
}

func (p Point) Less(other Point) bool {
	return p.Compare(other) < 0
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Rectangle is an axis-aligned bounding box. The zero value is empty; it
// becomes defined once the first point is added.
type Rectangle struct {
	Min Point
	Max Point

	defined bool
}

// NewRectangle returns the degenerate rectangle covering only p.
func NewRectangle(p Point) Rectangle {
	return Rectangle{Min: p, Max: p, defined: true}
}

// Add grows the rectangle to include p.
func (r *Rectangle) Add(p Point) {
	if !r.defined {
		*r = NewRectangle(p)
		return
	}
	r.Min.X = math.Min(r.Min.X, p.X)
	r.Min.Y = math.Min(r.Min.Y, p.Y)
	r.Max.X = math.Max(r.Max.X, p.X)
	r.Max.Y = math.Max(r.Max.Y, p.Y)
}

func (r Rectangle) Empty() bool {
	return !r.defined
}

func (r Rectangle) XMin() float64 { return r.Min.X }
func (r Rectangle) YMin() float64 { return r.Min.Y }
func (r Rectangle) XMax() float64 { return r.Max.X }
func (r Rectangle) YMax() float64 { return r.Max.Y }

func (r Rectangle) Width() float64 {
	return r.Max.X - r.Min.X
}

func (r Rectangle) Height() float64 {
	return r.Max.Y - r.Min.Y
}

func (r Rectangle) Area() float64 {
	return r.Width() * r.Height()
}

func (r Rectangle) String() string {
	if r.Empty() {
		return "[empty]"
	}
	return fmt.Sprintf("[%v-%v]", r.Min, r.Max)
}

// Polyline is an ordered list of points connected by straight segments.
type Polyline []Point

// Length returns the summed length of all segments.
func (line Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += line[i-1].Distance(line[i])
	}
	return total
}

// Bounds returns the bounding box of all points in the polyline.
func (line Polyline) Bounds() Rectangle {
	var r Rectangle
	for _, p := range line {
		r.Add(p)
	}
	return r
}
