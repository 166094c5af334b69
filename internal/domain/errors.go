package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a planning table has no records.
	ErrEmptyInput = errors.New("planning table has no records")

	// ErrInternalInconsistency is returned when the extractor's recomputed
	// total cost disagrees with the solver-reported objective. It signals a
	// modeling bug and is always surfaced.
	ErrInternalInconsistency = errors.New("recomputed cost disagrees with solver objective")

	// ErrUnboundedModel is returned when the solver proves the model
	// unbounded, which can only come from corrupt cost data.
	ErrUnboundedModel = errors.New("model is unbounded")
)

// SchemaError reports a malformed or incomplete planning table. Row is the
// 1-based line in the source file when known, zero otherwise; Field names the
// offending column when one can be singled out.
type SchemaError struct {
	Row    int
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Row > 0 && e.Field != "":
		return fmt.Sprintf("row %d: field %q: %s", e.Row, e.Field, e.Reason)
	case e.Row > 0:
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
	default:
		return e.Reason
	}
}

// NewSchemaError builds a SchemaError with positional context.
func NewSchemaError(row int, field, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Row: row, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsSchemaError reports whether err carries a SchemaError anywhere in its
// chain.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
