// Package job holds the vector instruction stream exchanged between the job
// layer, the path optimizer and the device encoders.
package job

import (
	"fmt"

	"lasercut/pkg/geometry"
)

type Kind int

const (
	Move Kind = iota
	Draw
	SetProperty
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "MOVE"
	case Draw:
		return "DRAW"
	case SetProperty:
		return "SETPROPERTY"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Instruction is one entry of a vector stream. X and Y are used by Move and
// Draw; Property is used by SetProperty.
type Instruction struct {
	Kind     Kind
	X        float64
	Y        float64
	Property Property
}

func MoveTo(x, y float64) Instruction {
	return Instruction{Kind: Move, X: x, Y: y}
}

func LineTo(x, y float64) Instruction {
	return Instruction{Kind: Draw, X: x, Y: y}
}

func Set(p Property) Instruction {
	return Instruction{Kind: SetProperty, Property: p}
}

func (in Instruction) Point() geometry.Point {
	return geometry.Point{X: in.X, Y: in.Y}
}

func (in Instruction) String() string {
	if in.Kind == SetProperty {
		return fmt.Sprintf("SETPROPERTY(%v)", in.Property)
	}
	return fmt.Sprintf("%s(%g,%g)", in.Kind, in.X, in.Y)
}

// Part is a vector job part: an ordered instruction stream plus the
// resolution its coordinates are expressed in.
type Part struct {
	Instructions []Instruction
	DPI          float64

	current Property
}

// NewPart starts a part whose first instruction selects initial.
func NewPart(initial Property, dpi float64) *Part {
	p := &Part{DPI: dpi}
	if initial != nil {
		p.SetProperty(initial)
	}
	return p
}

// FromInstructions wraps an existing stream. The current property is the
// last one the stream selects.
func FromInstructions(instructions []Instruction, dpi float64) *Part {
	p := &Part{DPI: dpi}
	for _, in := range instructions {
		p.Append(in)
	}
	return p
}

func (p *Part) Append(in Instruction) {
	if in.Kind == SetProperty {
		p.current = in.Property
	}
	p.Instructions = append(p.Instructions, in)
}

func (p *Part) MoveTo(x, y float64) {
	p.Append(MoveTo(x, y))
}

func (p *Part) LineTo(x, y float64) {
	p.Append(LineTo(x, y))
}

func (p *Part) SetProperty(prop Property) {
	p.Append(Set(prop))
}

// CurrentProperty returns the last selected settings record, or nil.
func (p *Part) CurrentProperty() Property {
	return p.current
}

// Segment is a single DRAW, from the previous position to the target.
type Segment struct {
	A geometry.Point
	B geometry.Point
}

// Undirected returns the segment with its endpoints in a canonical order, so
// that a segment and its reverse compare equal.
func (s Segment) Undirected() Segment {
	if s.B.Less(s.A) {
		return Segment{A: s.B, B: s.A}
	}
	return s
}

// Segments lists every DRAW in the stream as a directed segment. A DRAW with
// no preceding position starts at the origin.
func (p *Part) Segments() []Segment {
	var segments []Segment
	var pos geometry.Point
	for _, in := range p.Instructions {
		switch in.Kind {
		case Move:
			pos = in.Point()
		case Draw:
			segments = append(segments, Segment{A: pos, B: in.Point()})
			pos = in.Point()
		}
	}
	return segments
}

// TravelDistance sums the length of all MOVE instructions, starting from the
// origin. This is the distance the head covers with the laser off.
func (p *Part) TravelDistance() float64 {
	total := 0.0
	var pos geometry.Point
	for _, in := range p.Instructions {
		switch in.Kind {
		case Move:
			total += pos.Distance(in.Point())
			pos = in.Point()
		case Draw:
			pos = in.Point()
		}
	}
	return total
}
