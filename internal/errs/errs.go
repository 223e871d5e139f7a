// Package errs defines the error kinds surfaced or recovered by the
// chunking pipeline, distinguished with errors.As rather than sentinel
// comparison so wrapped context survives.
package errs

import "fmt"

// ContainerError means the input package could not be opened: missing
// file, not a zip, or a corrupt archive. Fatal for the document.
type ContainerError struct {
	Path string
	Err  error
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("container: %s: %v", e.Path, e.Err)
}

func (e *ContainerError) Unwrap() error { return e.Err }

// NumberingParseError means the numbering part was malformed. Degrades
// to an empty index locally; never surfaced to the caller.
type NumberingParseError struct {
	Err error
}

func (e *NumberingParseError) Error() string {
	return fmt.Sprintf("numbering: %v", e.Err)
}

func (e *NumberingParseError) Unwrap() error { return e.Err }

// ElementError means classification of a single element failed. Logged
// and the element is skipped; the pipeline continues.
type ElementError struct {
	Index int
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %d: %v", e.Index, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

// TableShapeError means a table had inconsistent row widths. Recovered
// locally by padding short rows; never surfaced.
type TableShapeError struct {
	Err error
}

func (e *TableShapeError) Error() string {
	return fmt.Sprintf("table shape: %v", e.Err)
}

func (e *TableShapeError) Unwrap() error { return e.Err }
