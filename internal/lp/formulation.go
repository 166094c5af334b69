// Package lp holds the linear programming layer: a small formulation
// builder for problems of the shape
//
//	minimize    c^T x
//	subject to  A_eq x  = b_eq
//	            A_le x <= b_le
//	            x >= 0
//
// and a Solver capability that turns a formulation into an outcome. All
// variables are continuous and non-negative; that is the only variable
// domain the planner needs, and it keeps the standard-form conversion to a
// plain slack extension.
package lp

import "fmt"

// Var is an opaque handle to one decision variable of a Formulation.
type Var int

// Sense distinguishes equality rows from upper-bound rows.
type Sense int

const (
	Equal Sense = iota
	LessEq
)

func (s Sense) String() string {
	if s == Equal {
		return "="
	}
	return "<="
}

// Constraint is one linear row, built up term by term.
type Constraint struct {
	sense Sense
	rhs   float64
	vars  []Var
	coefs []float64
}

// AddTerm appends coef*v to the row. Repeated variables accumulate.
func (c *Constraint) AddTerm(coef float64, v Var) *Constraint {
	c.vars = append(c.vars, v)
	c.coefs = append(c.coefs, coef)
	return c
}

// Terms reports how many terms the row carries.
func (c *Constraint) Terms() int { return len(c.vars) }

// Formulation is one LP instance under construction. It is built once,
// handed read-only to a Solver, and discarded after extraction.
type Formulation struct {
	names []string
	obj   []float64
	cons  []*Constraint
}

func NewFormulation() *Formulation {
	return &Formulation{}
}

// NewVar registers a fresh non-negative variable and returns its handle.
// The name is only used for diagnostics.
func (f *Formulation) NewVar(name string) Var {
	f.names = append(f.names, name)
	f.obj = append(f.obj, 0)
	return Var(len(f.names) - 1)
}

// AddObjectiveTerm adds coef*v to the minimization objective. Repeated
// calls for the same variable accumulate.
func (f *Formulation) AddObjectiveTerm(coef float64, v Var) {
	f.obj[v] += coef
}

// NewConstraint opens a new row with the given sense and right-hand side.
func (f *Formulation) NewConstraint(sense Sense, rhs float64) *Constraint {
	c := &Constraint{sense: sense, rhs: rhs}
	f.cons = append(f.cons, c)
	return c
}

// NumVars reports the number of registered variables.
func (f *Formulation) NumVars() int { return len(f.names) }

// NumConstraints reports the number of rows.
func (f *Formulation) NumConstraints() int { return len(f.cons) }

// Name returns the diagnostic name of v.
func (f *Formulation) Name(v Var) string {
	if int(v) < 0 || int(v) >= len(f.names) {
		return fmt.Sprintf("var(%d)", int(v))
	}
	return f.names[v]
}

// ObjectiveCoef returns the accumulated objective coefficient of v.
func (f *Formulation) ObjectiveCoef(v Var) float64 {
	return f.obj[v]
}
