// Package errors provides error types and handling for the endpoint statistics pipeline.
package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// ErrorKind categorizes errors for handling decisions.
type ErrorKind int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorKind = iota
	// Read represents input-read failures (missing, unreadable, permission denied).
	Read
	// Parse represents malformed input. The extractor never surfaces these,
	// but the HTML normalizer and config loader can.
	Parse
	// Write represents output-write failures.
	Write
	// Config represents invalid configuration.
	Config
	// Scope represents file selection failures (bad patterns, unreadable directory).
	Scope
	// Cancelled represents context cancellation.
	Cancelled
)

// String returns the string representation of ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case Read:
		return "read"
	case Parse:
		return "parse"
	case Write:
		return "write"
	case Config:
		return "config"
	case Scope:
		return "scope"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsFatal reports whether errors of this kind terminate a run.
// Read and Parse errors stay at the per-file boundary.
func (k ErrorKind) IsFatal() bool {
	switch k {
	case Read, Parse:
		return false
	default:
		return true
	}
}

// ScanError represents a categorized pipeline error.
type ScanError struct {
	Kind      ErrorKind
	File      string
	Operation string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error during %s on %s: %s (caused by: %v)",
			e.Kind.String(), e.Operation, e.File, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error during %s on %s: %s",
		e.Kind.String(), e.Operation, e.File, e.Message)
}

// Unwrap returns the underlying error.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target.
func (e *ScanError) Is(target error) bool {
	t, ok := target.(*ScanError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewScanError creates a new ScanError.
func NewScanError(kind ErrorKind, file, operation, message string, cause error) *ScanError {
	return &ScanError{
		Kind:      kind,
		File:      file,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// NewReadError creates an input-read error with a message derived from the cause.
func NewReadError(file string, cause error) *ScanError {
	return NewScanError(Read, file, "read", describeFS(cause), cause)
}

// NewParseError creates a parse error.
func NewParseError(file, operation string, cause error) *ScanError {
	return NewScanError(Parse, file, operation, "parsing failed", cause)
}

// NewWriteError creates an output-write error.
func NewWriteError(file string, cause error) *ScanError {
	return NewScanError(Write, file, "write", describeFS(cause), cause)
}

// NewConfigError creates a configuration error.
func NewConfigError(operation, message string, cause error) *ScanError {
	return NewScanError(Config, "", operation, message, cause)
}

// NewScopeError creates a file selection error.
func NewScopeError(dir, reason string, cause error) *ScanError {
	return NewScanError(Scope, dir, "select", reason, cause)
}

// NewCancelledError creates a cancelled error.
func NewCancelledError(file, operation string) *ScanError {
	return NewScanError(Cancelled, file, operation, "operation cancelled", nil)
}

// Categorize wraps a generic filesystem error as a read error.
func Categorize(err error, file string) *ScanError {
	if err == nil {
		return nil
	}

	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewCancelledError(file, "read")
	}

	return NewReadError(file, err)
}

func describeFS(err error) string {
	switch {
	case err == nil:
		return "failed"
	case errors.Is(err, fs.ErrNotExist):
		return "file does not exist"
	case errors.Is(err, fs.ErrPermission):
		return "permission denied"
	case errors.Is(err, fs.ErrInvalid):
		return "invalid argument"
	default:
		return err.Error()
	}
}

// IsFatal checks if an error should terminate the run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Kind.IsFatal()
	}
	return true
}

// GetKind extracts the error kind from an error.
func GetKind(err error) ErrorKind {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Kind
	}
	return Unknown
}
