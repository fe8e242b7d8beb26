package dataset

import "fmt"

// SchemaError means an entire expected column is missing from a dataset.
// This is a configuration-level failure and aborts the operation, unlike a
// bad value in a single row.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset schema is missing column %q", e.Column)
}

// InputError marks a malformed row field. Rows with input errors are still
// ingested with a default value, never dropped silently.
type InputError struct {
	Row   int
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("row %d: bad %s value: %v", e.Row, e.Field, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }
