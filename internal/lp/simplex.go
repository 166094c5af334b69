package lp

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	convexlp "gonum.org/v1/gonum/optimize/convex/lp"
)

// defaultTolerance is the simplex convergence tolerance used when the
// caller does not override it.
const defaultTolerance = 1e-7

// SimplexSolver solves formulations with gonum's dense simplex method. It
// is stateless and safe for concurrent use; every Solve call converts its
// formulation to standard form independently.
type SimplexSolver struct {
	tol float64
}

// NewSimplexSolver returns a solver with the given convergence tolerance;
// pass 0 for the default.
func NewSimplexSolver(tol float64) *SimplexSolver {
	if tol <= 0 {
		tol = defaultTolerance
	}
	return &SimplexSolver{tol: tol}
}

type simplexReply struct {
	objective float64
	values    []float64
	err       error
}

// Solve runs the simplex method on f. The solve itself is not
// interruptible, so deadline hits abandon the worker goroutine and report
// StatusError with ErrSolverTimeout.
func (s *SimplexSolver) Solve(ctx context.Context, f *Formulation) (Outcome, error) {
	if f == nil || f.NumVars() == 0 || f.NumConstraints() == 0 {
		return Outcome{}, fmt.Errorf("%w: empty formulation", ErrSolverUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, boundaryError(err)
	}

	c, a, b := standardForm(f)

	replies := make(chan simplexReply, 1)
	go func() {
		obj, x, err := convexlp.Simplex(c, a, b, s.tol, nil)
		replies <- simplexReply{objective: obj, values: x, err: err}
	}()

	select {
	case <-ctx.Done():
		return Outcome{}, boundaryError(ctx.Err())
	case r := <-replies:
		return interpret(f, r)
	}
}

func boundaryError(cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrSolverTimeout, cause)
	}
	return fmt.Errorf("lp: solve canceled: %w", cause)
}

func interpret(f *Formulation, r simplexReply) (Outcome, error) {
	switch {
	case r.err == nil:
		// The standard-form solution vector carries slack values past the
		// structural variables; callers only see the structural prefix.
		values := make([]float64, f.NumVars())
		copy(values, r.values[:f.NumVars()])
		return Outcome{Status: StatusOptimal, Objective: r.objective, Values: values}, nil
	case errors.Is(r.err, convexlp.ErrInfeasible):
		return Outcome{Status: StatusInfeasible}, nil
	case errors.Is(r.err, convexlp.ErrUnbounded):
		return Outcome{Status: StatusUnbounded}, nil
	default:
		return Outcome{}, fmt.Errorf("%w: simplex: %v", ErrSolverUnavailable, r.err)
	}
}

// standardForm rewrites the formulation as minimize c'^T x' subject to
// A x' = b, x' >= 0, by appending one slack variable per inequality row.
// Equality rows keep their shape; structural variables are non-negative by
// construction so no sign split is needed.
func standardForm(f *Formulation) ([]float64, *mat.Dense, []float64) {
	n := f.NumVars()
	rows := len(f.cons)

	slacks := 0
	for _, con := range f.cons {
		if con.sense == LessEq {
			slacks++
		}
	}

	c := make([]float64, n+slacks)
	copy(c, f.obj)

	a := mat.NewDense(rows, n+slacks, nil)
	b := make([]float64, rows)

	slack := 0
	for i, con := range f.cons {
		for t, v := range con.vars {
			a.Set(i, int(v), a.At(i, int(v))+con.coefs[t])
		}
		if con.sense == LessEq {
			a.Set(i, n+slack, 1)
			slack++
		}
		b[i] = con.rhs
	}

	return c, a, b
}
