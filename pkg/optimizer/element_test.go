package optimizer_test

import (
	"testing"

	"lasercut/pkg/geometry"
	"lasercut/pkg/optimizer"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestElementDerived(t *testing.T) {
	tests := []struct {
		Name   string
		Input  *optimizer.Element
		End    geometry.Point
		Box    geometry.Rectangle
		Closed bool
	}{
		{
			Name:  "line",
			Input: stroke(cutSettings, pt(0, 0), pt(5, 0)),
			End:   pt(5, 0),
			Box:   rect(0, 0, 5, 0),
		},
		{
			Name:   "square",
			Input:  stroke(cutSettings, pt(1, 1), pt(4, 1), pt(4, 3), pt(1, 3), pt(1, 1)),
			End:    pt(1, 1),
			Box:    rect(1, 1, 4, 3),
			Closed: true,
		},
		{
			Name:  "no moves",
			Input: &optimizer.Element{Property: cutSettings, Start: pt(2, 2)},
			End:   pt(2, 2),
			Box:   rect(2, 2, 2, 2),
		},
	}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			assert.Equal(t, test.End, test.Input.End())
			assert.Equal(t, test.Closed, test.Input.IsClosedPath())
			box := test.Input.BoundingBox()
			assert.Equal(t, test.Box.Min, box.Min)
			assert.Equal(t, test.Box.Max, box.Max)
		})
	}
}

func rect(x0, y0, x1, y1 float64) geometry.Rectangle {
	r := geometry.NewRectangle(pt(x0, y0))
	r.Add(pt(x1, y1))
	return r
}

func TestElementInvert(t *testing.T) {
	e := stroke(cutSettings, pt(0, 0), pt(1, 0), pt(1, 1), pt(2, 1))
	original := e.Clone()

	e.Invert()
	want := stroke(cutSettings, pt(2, 1), pt(1, 1), pt(1, 0), pt(0, 0))
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("inverted element mismatch (-want +got):\n%s", diff)
	}

	e.Invert()
	if diff := cmp.Diff(original, e); diff != "" {
		t.Errorf("double inversion mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, original.End(), e.End())
}

func TestElementEqual(t *testing.T) {
	a := stroke(cutSettings, pt(0, 0), pt(10, 0))
	assert.True(t, a.Equal(stroke(cutSettings, pt(0, 0), pt(10, 0))))
	assert.False(t, a.Equal(stroke(markSettings, pt(0, 0), pt(10, 0))))
	assert.False(t, a.Equal(stroke(cutSettings, pt(10, 0), pt(0, 0))))
	assert.False(t, a.Equal(stroke(cutSettings, pt(0, 0), pt(10, 0), pt(10, 1))))
	assert.False(t, a.Equal(stroke(nil, pt(0, 0), pt(10, 0))))
}

func TestElementLength(t *testing.T) {
	e := stroke(cutSettings, pt(0, 0), pt(3, 4), pt(3, 10))
	assert.InDelta(t, 11.0, e.Length(), 1e-12)
}

func TestCloneElements(t *testing.T) {
	in := []*optimizer.Element{stroke(cutSettings, pt(0, 0), pt(1, 0))}
	out := optimizer.CloneElements(in)
	out[0].Invert()
	assert.Equal(t, pt(0, 0), in[0].Start)
	assert.Equal(t, pt(1, 0), out[0].Start)
}
