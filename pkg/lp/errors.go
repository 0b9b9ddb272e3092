package lp

import "github.com/pkg/errors"

var (
	ErrInfeasible     = errors.New("lp: problem is infeasible")
	ErrUnbounded      = errors.New("lp: problem is unbounded")
	ErrNoSolution     = errors.New("lp: no integral solution found")
	ErrIterationLimit = errors.New("lp: iteration limit reached")
)
