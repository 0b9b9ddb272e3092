package optimizer_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"lasercut/pkg/job"
	"lasercut/pkg/optimizer"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePart() *job.Part {
	part := job.NewPart(cutSettings, 500)
	for _, e := range sampleElements() {
		if !job.PropertiesEqual(e.Property, part.CurrentProperty()) {
			part.SetProperty(e.Property)
		}
		part.MoveTo(e.Start.X, e.Start.Y)
		for _, p := range e.Moves {
			part.LineTo(p.X, p.Y)
		}
	}
	return part
}

func optimize(t *testing.T, strategy optimizer.Strategy, part *job.Part, opts ...optimizer.Option) *job.Part {
	t.Helper()
	o, err := optimizer.New(strategy, opts...)
	require.NoError(t, err)
	got, err := o.Optimize(context.Background(), part)
	require.NoError(t, err)
	return got
}

func TestOptimizeFileIsIdentity(t *testing.T) {
	part := samplePart()
	got := optimize(t, optimizer.File, part)
	if diff := cmp.Diff(part.Instructions, got.Instructions); diff != "" {
		t.Errorf("FILE round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, part.DPI, got.DPI)
}

func TestOptimizeCollapsesRepeatedSettings(t *testing.T) {
	part := job.FromInstructions([]job.Instruction{
		job.Set(cutSettings),
		job.MoveTo(0, 0),
		job.LineTo(1, 0),
		job.Set(cutSettings),
		job.MoveTo(2, 0),
		job.LineTo(3, 0),
	}, 500)
	got := optimize(t, optimizer.File, part)
	want := []job.Instruction{
		job.Set(cutSettings),
		job.MoveTo(0, 0),
		job.LineTo(1, 0),
		job.MoveTo(2, 0),
		job.LineTo(3, 0),
	}
	if diff := cmp.Diff(want, got.Instructions); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOptimizeKeepsEverySegment(t *testing.T) {
	part := samplePart()
	want := partSegments(part)
	for _, strategy := range optimizer.Strategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			got := optimize(t, strategy, part)
			if diff := cmp.Diff(want, partSegments(got)); diff != "" {
				t.Errorf("segments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOptimizeDeletesDuplicates(t *testing.T) {
	part := job.FromInstructions([]job.Instruction{
		job.Set(cutSettings),
		job.MoveTo(0, 0),
		job.LineTo(10, 0),
		job.MoveTo(0, 0),
		job.LineTo(10, 0),
	}, 500)
	got := optimize(t, optimizer.DeleteDuplicatePaths, part)
	assert.Equal(t, []job.Segment{{A: pt(0, 0), B: pt(10, 0)}}, got.Segments())
}

func TestOptimizeMalformed(t *testing.T) {
	part := job.FromInstructions([]job.Instruction{job.LineTo(10, 0)}, 500)
	o, err := optimizer.New(optimizer.Nearest)
	require.NoError(t, err)

	got, err := o.Optimize(context.Background(), part)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, optimizer.ErrMalformedInstructionStream))
}

func TestOptimizeEmptyKeepsSettings(t *testing.T) {
	part := job.NewPart(markSettings, 250)
	got := optimize(t, optimizer.Nearest, part)
	assert.Equal(t, []job.Instruction{job.Set(markSettings)}, got.Instructions)
	assert.Equal(t, 250.0, got.DPI)
}

func TestOptimizeJoin(t *testing.T) {
	part := job.FromInstructions([]job.Instruction{
		job.Set(cutSettings),
		job.MoveTo(0, 0),
		job.LineTo(5, 0),
		job.MoveTo(5, 0),
		job.LineTo(5, 5),
	}, 500)
	got := optimize(t, optimizer.File, part, optimizer.WithJoin(optimizer.JoinOptions{}))
	want := []job.Instruction{
		job.Set(cutSettings),
		job.MoveTo(0, 0),
		job.LineTo(5, 0),
		job.LineTo(5, 5),
	}
	if diff := cmp.Diff(want, got.Instructions); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOptimizeFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	part := samplePart()

	o, err := optimizer.New(optimizer.TSP)
	require.NoError(t, err)
	_, err = o.Optimize(ctx, part)
	assert.ErrorIs(t, err, optimizer.ErrSolverFailure)

	var logs bytes.Buffer
	optimizer.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	defer optimizer.SetLogger(nil)

	o, err = optimizer.New(optimizer.TSP, optimizer.WithFallback(optimizer.Nearest))
	require.NoError(t, err)
	got, err := o.Optimize(ctx, part)
	require.NoError(t, err)
	want := optimize(t, optimizer.Nearest, part)
	if diff := cmp.Diff(want.Instructions, got.Instructions); diff != "" {
		t.Errorf("fallback mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, logs.String(), "falling back")
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	_, err := optimizer.New(optimizer.Strategy(42))
	assert.Error(t, err)
	_, err = optimizer.New(optimizer.File, optimizer.WithFallback(optimizer.Strategy(42)))
	assert.Error(t, err)
}

func TestEmit(t *testing.T) {
	elements := []*optimizer.Element{
		stroke(markSettings, pt(0, 0), pt(1, 0)),
		stroke(markSettings, pt(2, 0), pt(3, 0)),
		stroke(cutSettings, pt(4, 0), pt(5, 0), pt(5, 1)),
	}
	got := optimizer.Emit(elements, cutSettings, 1000)
	want := []job.Instruction{
		job.Set(markSettings),
		job.MoveTo(0, 0),
		job.LineTo(1, 0),
		job.MoveTo(2, 0),
		job.LineTo(3, 0),
		job.Set(cutSettings),
		job.MoveTo(4, 0),
		job.LineTo(5, 0),
		job.LineTo(5, 1),
	}
	if diff := cmp.Diff(want, got.Instructions); diff != "" {
		t.Errorf("Emit() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, job.PropertiesEqual(cutSettings, got.CurrentProperty()))
}

func TestTravelDistance(t *testing.T) {
	assert.Zero(t, optimizer.TravelDistance(nil))
	elements := []*optimizer.Element{
		stroke(cutSettings, pt(0, 0), pt(1, 0)),
		stroke(cutSettings, pt(4, 4), pt(4, 5)),
		stroke(cutSettings, pt(4, 5), pt(0, 0)),
	}
	assert.InDelta(t, 5.0, optimizer.TravelDistance(elements), 1e-12)
}

func TestCutLength(t *testing.T) {
	assert.Zero(t, optimizer.CutLength(nil))
	elements := []*optimizer.Element{
		stroke(cutSettings, pt(0, 0), pt(3, 0), pt(3, 4)),
		stroke(cutSettings, pt(0, 0), pt(3, 0), pt(3, 4)),
	}
	assert.InDelta(t, 14.0, optimizer.CutLength(elements), 1e-12)

	deduped := runSorter(t, optimizer.DeleteDuplicatePaths, elements)
	assert.InDelta(t, 7.0, optimizer.CutLength(deduped), 1e-12)
}
