package optimizer

import (
	"context"
	"strings"
	"time"

	"lasercut/pkg/cfg"
	"lasercut/pkg/lp"

	"github.com/pkg/errors"
)

// Strategy selects the ordering algorithm.
type Strategy int

const (
	File Strategy = iota
	Nearest
	InnerFirst
	SmallestFirst
	DeleteDuplicatePaths
	TSP
	// NearestIndexed is the greedy nearest ordering backed by a quadtree of
	// endpoints, for jobs too large for the quadratic scan.
	NearestIndexed
)

var strategyNames = map[Strategy]string{
	File:                 "FILE",
	Nearest:              "NEAREST",
	InnerFirst:           "INNER_FIRST",
	SmallestFirst:        "SMALLEST_FIRST",
	DeleteDuplicatePaths: "DELETE_DUPLICATE_PATHS",
	TSP:                  "TSP",
	NearestIndexed:       "NEAREST_INDEXED",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Strategies lists every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{File, Nearest, InnerFirst, SmallestFirst, DeleteDuplicatePaths, TSP, NearestIndexed}
}

// ParseStrategy accepts the upper case names, case-insensitively, with
// either '_' or '-' as the separator.
func ParseStrategy(name string) (Strategy, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for _, s := range Strategies() {
		if strategyNames[s] == normalized {
			return s, nil
		}
	}
	return 0, errors.Errorf("unknown strategy %q", name)
}

// Sorter reorders a list of elements. It may invert the elements it is
// given, so callers must not reuse the input list afterwards.
type Sorter interface {
	Sort(ctx context.Context, elements []*Element) ([]*Element, error)
}

// SorterFunc adapts a function to the Sorter interface.
type SorterFunc func(ctx context.Context, elements []*Element) ([]*Element, error)

func (f SorterFunc) Sort(ctx context.Context, elements []*Element) ([]*Element, error) {
	return f(ctx, elements)
}

type settings struct {
	tspMaxElements int
	tspTimeout     time.Duration
	solver         lp.Options

	join        *JoinOptions
	fallback    Strategy
	hasFallback bool
}

func defaultSettings() settings {
	return settings{
		tspMaxElements: cfg.TSPMaxElements,
		tspTimeout:     cfg.TSPTimeout,
		solver:         lp.DefaultOptions(),
	}
}

// Option configures a Sorter or an Optimizer.
type Option func(*settings)

// WithTSPMaxElements sets the element count above which TSP falls back to
// the nearest heuristic. Zero or less disables the ceiling.
func WithTSPMaxElements(n int) Option {
	return func(s *settings) {
		s.tspMaxElements = n
	}
}

// WithTSPTimeout bounds the solver run. Zero or less means no timeout
// beyond the caller's context.
func WithTSPTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.tspTimeout = d
	}
}

// WithSolverOptions replaces the linear program solver limits.
func WithSolverOptions(opts lp.Options) Option {
	return func(s *settings) {
		s.solver = opts
	}
}

// WithJoin makes the Optimizer join contiguous strokes before sorting.
func WithJoin(opts JoinOptions) Option {
	return func(s *settings) {
		s.join = &opts
	}
}

// WithFallback makes the Optimizer retry with strategy when the primary
// strategy reports ErrSolverFailure.
func WithFallback(strategy Strategy) Option {
	return func(s *settings) {
		s.fallback = strategy
		s.hasFallback = true
	}
}

// NewSorter returns the implementation of strategy.
func NewSorter(strategy Strategy, opts ...Option) (Sorter, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return newSorter(strategy, s)
}

func newSorter(strategy Strategy, s settings) (Sorter, error) {
	switch strategy {
	case File:
		return SorterFunc(sortFile), nil
	case Nearest:
		return SorterFunc(sortNearest), nil
	case InnerFirst:
		return SorterFunc(sortInnerFirst), nil
	case SmallestFirst:
		return SorterFunc(sortSmallestFirst), nil
	case DeleteDuplicatePaths:
		return SorterFunc(sortDeleteDuplicates), nil
	case TSP:
		return &tspSorter{
			maxElements: s.tspMaxElements,
			timeout:     s.tspTimeout,
			solver:      s.solver,
		}, nil
	case NearestIndexed:
		return SorterFunc(sortNearestIndexed), nil
	}
	return nil, errors.Errorf("unknown strategy %d", int(strategy))
}

// sortFile keeps the order of the input.
func sortFile(_ context.Context, elements []*Element) ([]*Element, error) {
	return elements, nil
}
