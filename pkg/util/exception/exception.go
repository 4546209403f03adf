// Package exception provides the error type shared by the standlake pipeline
// stages. It standardizes errors raised during a stage run so the runner can
// attribute them to a module and decide whether the external trigger should
// retry the invocation.
package exception

import (
	"fmt"
	"runtime"
)

// StageError is the error type raised by pipeline components.
// It carries the module where the error occurred, a message, the wrapped
// original error, a retryable flag and the stack trace captured at creation.
type StageError struct {
	// Module indicates the component where the error occurred
	// (e.g., "fetcher", "converter", "transformer", "storage", "manifest").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// isRetryable indicates whether a re-triggered invocation could succeed.
	isRetryable bool
	// StackTrace is the stack trace at the time of the error.
	StackTrace string
}

// NewStageError creates a new StageError instance.
func NewStageError(module, message string, originalErr error, isRetryable bool) *StageError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &StageError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		StackTrace:  string(buf[:n]),
	}
}

// NewStageErrorf creates a non-retryable StageError with a formatted message.
func NewStageErrorf(module, format string, a ...interface{}) *StageError {
	return NewStageError(module, fmt.Sprintf(format, a...), nil, false)
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *StageError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns whether a re-triggered invocation could succeed.
func (e *StageError) IsRetryable() bool {
	return e.isRetryable
}

// IsStageError determines if the given error is of type StageError.
func IsStageError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*StageError)
	return ok
}

// ExtractErrorMessage extracts the message string from an error.
// For StageError it returns the cleaner Message field; otherwise the standard
// Error() string.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if se, ok := err.(*StageError); ok {
		return se.Message
	}
	return err.Error()
}
