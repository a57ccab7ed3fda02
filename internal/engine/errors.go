package engine

import (
	"errors"
	"fmt"
)

// ErrCycle is returned in strict mode when a reference loop can only be closed
// through a non-nullable reference.
var ErrCycle = errors.New("unbreakable reference cycle")

// FieldError is a value that could not be produced for one record.
type FieldError struct {
	Entity string
	Field  string
	Record int // index within the entity's run
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s (record %d): %v", e.Entity, e.Field, e.Record, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// BatchError is a batch the writer rejected.
type BatchError struct {
	Entity string
	Offset int
	Size   int
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: batch %d-%d failed: %v", e.Entity, e.Offset, e.Offset+e.Size-1, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
