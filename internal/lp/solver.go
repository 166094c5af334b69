package lp

import (
	"context"
	"errors"
)

// Status classifies a solve attempt.
type Status int

const (
	StatusError Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "error"
	}
}

// Solver boundary failures. Infeasible and unbounded are statuses, not
// errors; these two are the exceptional cases and must never be conflated
// with infeasibility.
var (
	ErrSolverTimeout     = errors.New("lp: solve timed out")
	ErrSolverUnavailable = errors.New("lp: solver unavailable")
)

// Outcome is the result of one solve. Values holds one entry per
// formulation variable and is populated only when Status is StatusOptimal.
type Outcome struct {
	Status    Status
	Objective float64
	Values    []float64
}

// Value returns the solved value of v, or zero when no values are present.
func (o Outcome) Value(v Var) float64 {
	if int(v) < 0 || int(v) >= len(o.Values) {
		return 0
	}
	return o.Values[v]
}

// Solver is the external LP solving capability. Implementations must honor
// ctx deadlines by returning StatusError with ErrSolverTimeout.
type Solver interface {
	Solve(ctx context.Context, f *Formulation) (Outcome, error)
}
