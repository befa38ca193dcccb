// Package errors defines the coded error taxonomy shared by the
// ingestion and analysis pipeline. Validation failures are hard stops;
// cleaning-stage conditions are absorbed as step outcomes and never
// surface through this package.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for pipeline failures.
const (
	CodeUnreadableInput  = "UNREADABLE_INPUT"
	CodeEmptyDataset     = "EMPTY_DATASET"
	CodeSchemaValidation = "SCHEMA_VALIDATION"
	CodeInvalidParameter = "INVALID_PARAMETER"
)

// PipelineError is a structured error with a stable machine code and a
// user-facing message.
type PipelineError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches by code so sentinel comparisons survive wrapping.
func (e *PipelineError) Is(target error) bool {
	var pe *PipelineError
	if errors.As(target, &pe) {
		return pe.Code == e.Code
	}
	return false
}

// New creates a PipelineError with the given code and message.
func New(code, message string) *PipelineError {
	return &PipelineError{Code: code, Message: message}
}

// Wrap creates a PipelineError wrapping an underlying cause.
func Wrap(code, message string, err error) *PipelineError {
	return &PipelineError{Code: code, Message: message, Err: err}
}

// Sentinels for errors.Is checks.
var (
	ErrUnreadableInput  = New(CodeUnreadableInput, "file could not be decoded into a table")
	ErrEmptyDataset     = New(CodeEmptyDataset, "dataset is empty")
	ErrSchemaValidation = New(CodeSchemaValidation, "dataset schema validation failed")
)

// NewUnreadableInput reports a file that could not be parsed into a
// table. No partial result accompanies it.
func NewUnreadableInput(path string, err error) *PipelineError {
	return Wrap(CodeUnreadableInput, fmt.Sprintf("unable to read data file %q", path), err)
}

// NewEmptyDataset reports a dataset with zero rows presented to
// validation.
func NewEmptyDataset() *PipelineError {
	return New(CodeEmptyDataset, "Uploaded dataset is empty. Please upload a file with data.")
}

// NewSchemaValidation reports unresolved required columns or an
// entirely unparseable core column. The message is user-facing and
// names accepted header spellings.
func NewSchemaValidation(message string) *PipelineError {
	return New(CodeSchemaValidation, message)
}

// NewInvalidParameter reports a bad caller-supplied parameter such as
// an unknown period granularity.
func NewInvalidParameter(message string) *PipelineError {
	return New(CodeInvalidParameter, message)
}
