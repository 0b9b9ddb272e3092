// Package optimizer reorders the strokes of a vector job to cut down on
// travel, duplicate cuts and parts falling out before they are finished.
//
// A job's instruction stream is divided into elements (one stroke with
// constant settings each), optionally joined, sorted by a strategy and
// emitted again as a new stream.
package optimizer

import (
	"context"

	"lasercut/pkg/job"

	"github.com/pkg/errors"
)

// Optimizer runs divide, join, sort and re-emission for one strategy.
// It holds no state between calls.
type Optimizer struct {
	strategy Strategy
	settings settings
}

// New returns an Optimizer for strategy.
func New(strategy Strategy, opts ...Option) (*Optimizer, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if _, err := newSorter(strategy, s); err != nil {
		return nil, err
	}
	if s.hasFallback {
		if _, err := newSorter(s.fallback, s); err != nil {
			return nil, errors.Wrap(err, "fallback")
		}
	}
	return &Optimizer{strategy: strategy, settings: s}, nil
}

func (o *Optimizer) Strategy() Strategy {
	return o.strategy
}

// Optimize returns a new part cutting the same strokes as part in the
// strategy's order. part is not modified.
func (o *Optimizer) Optimize(ctx context.Context, part *job.Part) (*job.Part, error) {
	elements, err := Divide(part.Instructions, nil)
	if err != nil {
		return nil, err
	}
	Logger().Debug("divided part",
		"elements", len(elements),
		"travel", TravelDistance(elements),
		"cut", CutLength(elements))

	if o.settings.join != nil {
		elements = JoinPaths(elements, *o.settings.join)
	}

	sorted, err := o.sort(ctx, o.strategy, elements)
	if err != nil && errors.Is(err, ErrSolverFailure) && o.settings.hasFallback {
		Logger().Warn("strategy failed, falling back",
			"strategy", o.strategy, "fallback", o.settings.fallback, "error", err)
		sorted, err = o.sort(ctx, o.settings.fallback, elements)
	}
	if err != nil {
		return nil, err
	}
	Logger().Debug("sorted part",
		"strategy", o.strategy,
		"elements", len(sorted),
		"travel", TravelDistance(sorted),
		"cut", CutLength(sorted))

	return Emit(sorted, part.CurrentProperty(), part.DPI), nil
}

// sort runs strategy on a copy of elements, so a failed attempt leaves them
// untouched for a fallback.
func (o *Optimizer) sort(ctx context.Context, strategy Strategy, elements []*Element) ([]*Element, error) {
	sorter, err := newSorter(strategy, o.settings)
	if err != nil {
		return nil, err
	}
	return sorter.Sort(ctx, CloneElements(elements))
}

// Emit turns elements back into a part. The part starts with the first
// element's settings (or fallback when there are no elements) and selects
// new settings only when they change.
func Emit(elements []*Element, fallback job.Property, dpi float64) *job.Part {
	current := fallback
	if len(elements) > 0 {
		current = elements[0].Property
	}
	result := job.NewPart(current, dpi)
	for _, e := range elements {
		if !job.PropertiesEqual(e.Property, current) {
			result.SetProperty(e.Property)
			current = e.Property
		}
		result.MoveTo(e.Start.X, e.Start.Y)
		for _, p := range e.Moves {
			result.LineTo(p.X, p.Y)
		}
	}
	return result
}
