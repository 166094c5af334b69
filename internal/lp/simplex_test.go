package lp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveOptimal(t *testing.T) {
	// minimize -2x - y
	// subject to x + y <= 10, x <= 4, x,y >= 0
	// Unique optimum at (4, 6) with objective -14.
	f := NewFormulation()
	x := f.NewVar("x")
	y := f.NewVar("y")
	f.AddObjectiveTerm(-2, x)
	f.AddObjectiveTerm(-1, y)
	f.NewConstraint(LessEq, 10).AddTerm(1, x).AddTerm(1, y)
	f.NewConstraint(LessEq, 4).AddTerm(1, x)

	out, err := NewSimplexSolver(0).Solve(context.Background(), f)

	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, out.Status)
	assert.InDelta(t, -14, out.Objective, 1e-9)
	assert.InDelta(t, 4, out.Value(x), 1e-9)
	assert.InDelta(t, 6, out.Value(y), 1e-9)
	assert.Len(t, out.Values, 2, "slack values must not leak to callers")
}

func TestSolveMixedSensesWithNegativeRHS(t *testing.T) {
	// minimize 2a + b
	// subject to a + b = 5, -a <= -1 (a >= 1)
	// Optimum at (1, 4) with objective 6. The negative right-hand side
	// exercises the phase-1 start.
	f := NewFormulation()
	a := f.NewVar("a")
	b := f.NewVar("b")
	f.AddObjectiveTerm(2, a)
	f.AddObjectiveTerm(1, b)
	f.NewConstraint(Equal, 5).AddTerm(1, a).AddTerm(1, b)
	f.NewConstraint(LessEq, -1).AddTerm(-1, a)

	out, err := NewSimplexSolver(0).Solve(context.Background(), f)

	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, out.Status)
	assert.InDelta(t, 6, out.Objective, 1e-9)
	assert.InDelta(t, 1, out.Value(a), 1e-9)
	assert.InDelta(t, 4, out.Value(b), 1e-9)
}

func TestSolveInfeasible(t *testing.T) {
	// x <= 1 and x >= 2 cannot hold together. Infeasibility is a status,
	// not an error.
	f := NewFormulation()
	x := f.NewVar("x")
	f.AddObjectiveTerm(1, x)
	f.NewConstraint(LessEq, 1).AddTerm(1, x)
	f.NewConstraint(LessEq, -2).AddTerm(-1, x)

	out, err := NewSimplexSolver(0).Solve(context.Background(), f)

	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, out.Status)
	assert.Empty(t, out.Values)
}

func TestSolveUnbounded(t *testing.T) {
	// minimize -x with x only bounded from below: the objective can be
	// pushed down forever.
	f := NewFormulation()
	x := f.NewVar("x")
	y := f.NewVar("y")
	f.AddObjectiveTerm(-1, x)
	f.NewConstraint(LessEq, 5).AddTerm(-1, x).AddTerm(1, y)

	out, err := NewSimplexSolver(0).Solve(context.Background(), f)

	require.NoError(t, err)
	assert.Equal(t, StatusUnbounded, out.Status)
}

func TestSolveExpiredDeadline(t *testing.T) {
	f := NewFormulation()
	x := f.NewVar("x")
	f.AddObjectiveTerm(1, x)
	f.NewConstraint(LessEq, 1).AddTerm(1, x)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	_, err := NewSimplexSolver(0).Solve(ctx, f)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSolverTimeout)
	assert.NotErrorIs(t, err, ErrSolverUnavailable)
}

func TestSolveCanceledContext(t *testing.T) {
	f := NewFormulation()
	x := f.NewVar("x")
	f.AddObjectiveTerm(1, x)
	f.NewConstraint(LessEq, 1).AddTerm(1, x)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimplexSolver(0).Solve(ctx, f)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrSolverTimeout, "cancellation must not masquerade as a timeout")
}

func TestSolveEmptyFormulation(t *testing.T) {
	_, err := NewSimplexSolver(0).Solve(context.Background(), NewFormulation())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSolverUnavailable)
}

func TestSolveDegenerateModelReportsUnavailable(t *testing.T) {
	// A variable that appears in no row makes the standard-form matrix
	// rank-deficient in a way the simplex backend rejects outright.
	f := NewFormulation()
	f.NewVar("orphan")
	y := f.NewVar("y")
	f.AddObjectiveTerm(1, y)
	f.NewConstraint(LessEq, 1).AddTerm(1, y)

	_, err := NewSimplexSolver(0).Solve(context.Background(), f)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSolverUnavailable)
}

func TestOutcomeValueOutOfRange(t *testing.T) {
	out := Outcome{Status: StatusOptimal, Values: []float64{1.5}}

	assert.Equal(t, 1.5, out.Value(Var(0)))
	assert.Equal(t, 0.0, out.Value(Var(3)))
	assert.Equal(t, 0.0, out.Value(Var(-1)))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
	assert.Equal(t, "unbounded", StatusUnbounded.String())
	assert.Equal(t, "error", StatusError.String())
}
