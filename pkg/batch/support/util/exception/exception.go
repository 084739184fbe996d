// Package exception provides the error types shared by the batch.
// Errors raised by a component are wrapped in a BatchError that names the module
// they came from; the sentinel errors classify them for callers using errors.Is.
package exception

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrSchema marks input that does not have the expected shape:
	// a missing column, an unparsable value, a negative count or a rejected duplicate key.
	ErrSchema = errors.New("schema error")
	// ErrSource marks a failure to fetch an input.
	ErrSource = errors.New("source error")
	// ErrSink marks a failure to encode or publish the output.
	ErrSink = errors.New("sink error")
	// ErrConfig marks an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// BatchError is an error raised by a batch component.
type BatchError struct {
	// Module is the component that raised the error (e.g. "reader", "writer", "config").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped cause.
	OriginalErr error
	kind        error
}

// NewBatchError creates a BatchError without a classification.
func NewBatchError(module, message string, originalErr error) *BatchError {
	return &BatchError{Module: module, Message: message, OriginalErr: originalErr}
}

// NewBatchErrorf creates a BatchError with a formatted message.
// If the last argument is an error it becomes OriginalErr and is not used for formatting.
func NewBatchErrorf(module, format string, a ...interface{}) *BatchError {
	var originalErr error
	if len(a) > 0 {
		if err, ok := a[len(a)-1].(error); ok {
			originalErr = err
			a = a[:len(a)-1]
		}
	}
	return NewBatchError(module, fmt.Sprintf(format, a...), originalErr)
}

// NewSchemaError creates a BatchError classified as ErrSchema.
func NewSchemaError(module, message string, originalErr error) *BatchError {
	return &BatchError{Module: module, Message: message, OriginalErr: originalErr, kind: ErrSchema}
}

// NewSourceError creates a BatchError classified as ErrSource.
func NewSourceError(module, message string, originalErr error) *BatchError {
	return &BatchError{Module: module, Message: message, OriginalErr: originalErr, kind: ErrSource}
}

// NewSinkError creates a BatchError classified as ErrSink.
func NewSinkError(module, message string, originalErr error) *BatchError {
	return &BatchError{Module: module, Message: message, OriginalErr: originalErr, kind: ErrSink}
}

// NewConfigError creates a BatchError classified as ErrConfig.
func NewConfigError(module, message string, originalErr error) *BatchError {
	return &BatchError{Module: module, Message: message, OriginalErr: originalErr, kind: ErrConfig}
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *BatchError) Unwrap() error {
	return e.OriginalErr
}

// Is matches the classification sentinel, so errors.Is(err, ErrSchema) works
// whatever the wrapped cause is.
func (e *BatchError) Is(target error) bool {
	return e.kind != nil && target == e.kind
}

// IsBatchError reports whether err is, or wraps, a BatchError.
func IsBatchError(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}

// ExtractErrorMessage returns the Message of a BatchError, or err.Error() otherwise.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

// Collector accumulates independent problems so they can be reported together.
type Collector struct {
	errs *multierror.Error
}

// Add records err. Nil errors are ignored.
func (c *Collector) Add(err error) {
	if err != nil {
		c.errs = multierror.Append(c.errs, err)
	}
}

// Addf records a formatted error.
func (c *Collector) Addf(format string, a ...interface{}) {
	c.Add(fmt.Errorf(format, a...))
}

// Len returns the number of recorded errors.
func (c *Collector) Len() int {
	if c.errs == nil {
		return 0
	}
	return c.errs.Len()
}

// ErrorOrNil returns the accumulated error, or nil if nothing was recorded.
func (c *Collector) ErrorOrNil() error {
	return c.errs.ErrorOrNil()
}
