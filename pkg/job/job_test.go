package job_test

import (
	"testing"

	"lasercut/pkg/geometry"
	"lasercut/pkg/job"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPropertiesEqual(t *testing.T) {
	a := job.PowerSpeedFocusFrequency{Power: 50, Speed: 20}
	b := job.PowerSpeedFocusFrequency{Power: 50, Speed: 20}
	c := job.PowerSpeedFocusFrequency{Power: 80, Speed: 20}

	assert.True(t, job.PropertiesEqual(a, b))
	assert.True(t, job.PropertiesEqual(a, &b))
	assert.False(t, job.PropertiesEqual(a, c))
	assert.False(t, job.PropertiesEqual(a, nil))
	assert.False(t, job.PropertiesEqual(nil, a))
	assert.True(t, job.PropertiesEqual(nil, nil))
}

func TestPartTracksCurrentProperty(t *testing.T) {
	initial := job.PowerSpeedFocusFrequency{Power: 10}
	next := job.PowerSpeedFocusFrequency{Power: 90}

	part := job.NewPart(initial, 500)
	assert.Equal(t, initial, part.CurrentProperty())
	part.MoveTo(0, 0)
	part.LineTo(1, 0)
	part.SetProperty(next)
	assert.Equal(t, next, part.CurrentProperty())

	want := []job.Instruction{
		job.Set(initial),
		job.MoveTo(0, 0),
		job.LineTo(1, 0),
		job.Set(next),
	}
	if diff := cmp.Diff(want, part.Instructions); diff != "" {
		t.Errorf("incorrect instructions: %s", diff)
	}
}

func TestSegmentsAndTravel(t *testing.T) {
	part := job.FromInstructions([]job.Instruction{
		job.MoveTo(3, 4),
		job.LineTo(10, 4),
		job.LineTo(10, 8),
		job.MoveTo(10, 0),
		job.LineTo(0, 0),
	}, 0)

	want := []job.Segment{
		{A: geometry.Point{X: 3, Y: 4}, B: geometry.Point{X: 10, Y: 4}},
		{A: geometry.Point{X: 10, Y: 4}, B: geometry.Point{X: 10, Y: 8}},
		{A: geometry.Point{X: 10, Y: 0}, B: geometry.Point{X: 0, Y: 0}},
	}
	if diff := cmp.Diff(want, part.Segments()); diff != "" {
		t.Errorf("incorrect segments: %s", diff)
	}

	// 5 from the origin to (3,4), then 8 from (10,8) down to (10,0).
	assert.InDelta(t, 13.0, part.TravelDistance(), 1e-12)
}

func TestUndirectedSegment(t *testing.T) {
	s := job.Segment{A: geometry.Point{X: 5, Y: 0}, B: geometry.Point{X: 0, Y: 0}}
	assert.Equal(t, s.Undirected(), job.Segment{A: s.B, B: s.A}.Undirected())
	assert.Equal(t, geometry.Point{X: 0, Y: 0}, s.Undirected().A)
}
