// Package apperr holds the error taxonomy shared by the fetch, transform and
// read paths.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySnapshot means the upstream answered correctly but nothing usable was left.
	ErrEmptySnapshot = errors.New("empty snapshot")

	// ErrNotReady means the store has no committed cycle yet.
	ErrNotReady = errors.New("data not yet available")

	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks a request the caller must correct.
	ErrInvalidInput = errors.New("invalid input")
)

// FetchError covers network failures, timeouts, bad status codes and
// undecodable bodies.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError reports a state row or field that does not have the expected shape.
type SchemaError struct {
	Row   int
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("schema: row %d field %s: %v", e.Row, e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// TransformError wraps a store failure during a cycle. The cycle was rolled back.
type TransformError struct {
	Step string
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s: %v", e.Step, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Fetch wraps err as a FetchError for op. A nil err stays nil.
func Fetch(op string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Op: op, Err: err}
}

// Transform wraps err as a TransformError for step. A nil err stays nil.
func Transform(step string, err error) error {
	if err == nil {
		return nil
	}
	return &TransformError{Step: step, Err: err}
}
