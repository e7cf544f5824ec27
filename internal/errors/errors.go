package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrCommandFailed      ErrorType = "COMMAND_FAILED"
	ErrExecFailed         ErrorType = "EXEC_FAILED"
	ErrEncoding           ErrorType = "ENCODING_ERROR"
	ErrMalformedLogLine   ErrorType = "MALFORMED_LOG_LINE"
	ErrUnparsableDiffStat ErrorType = "UNPARSABLE_DIFF_STAT"
	ErrParseFailure       ErrorType = "PARSE_FAILURE"
	ErrDanglingReference  ErrorType = "DANGLING_REFERENCE"
	ErrNotFound           ErrorType = "NOT_FOUND"
	ErrInvalidInput       ErrorType = "INVALID_INPUT"
	ErrInternal           ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain.
// Errors outside the taxonomy report ErrInternal.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	var cmdErr *CommandFailedError
	if stderrors.As(err, &cmdErr) {
		return ErrCommandFailed
	}
	return ErrInternal
}

func hasType(err error, t ErrorType) bool {
	if err == nil {
		return false
	}
	return TypeOf(err) == t
}

// IsCommandFailed checks if the error is a failed external command
func IsCommandFailed(err error) bool {
	return hasType(err, ErrCommandFailed)
}

// IsExecFailed checks if git could not be started at all
func IsExecFailed(err error) bool {
	return hasType(err, ErrExecFailed)
}

// IsEncodingError checks if the error is an output encoding error
func IsEncodingError(err error) bool {
	return hasType(err, ErrEncoding)
}

// IsMalformedLogLine checks if the error is a malformed log line error
func IsMalformedLogLine(err error) bool {
	return hasType(err, ErrMalformedLogLine)
}

// IsUnparsableDiffStat checks if the error is a diff stat parse error
func IsUnparsableDiffStat(err error) bool {
	return hasType(err, ErrUnparsableDiffStat)
}

// IsParseFailure checks if the error is a generic parse failure
func IsParseFailure(err error) bool {
	return hasType(err, ErrParseFailure)
}

// IsDanglingReference checks if the error is a use of a released handle
func IsDanglingReference(err error) bool {
	return hasType(err, ErrDanglingReference)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return hasType(err, ErrNotFound)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return hasType(err, ErrInvalidInput)
}

// CommandFailedError represents a git invocation that exited non-zero
type CommandFailedError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandFailedError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("command %q exited with status %d", strings.Join(e.Args, " "), e.ExitCode)
	}
	return fmt.Sprintf("command %q exited with status %d: %s", strings.Join(e.Args, " "), e.ExitCode, stderr)
}

// NewCommandFailedError creates a new CommandFailedError
func NewCommandFailedError(args []string, exitCode int, stderr string) error {
	return &CommandFailedError{
		Args:     args,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}

// NewExecFailedError creates an error for a git invocation that could not run
func NewExecFailedError(args []string, cause error) *AppError {
	return New(ErrExecFailed, fmt.Sprintf("could not run git %s", strings.Join(args, " ")), cause)
}

// NewEncodingError creates a new encoding error
func NewEncodingError(message string) *AppError {
	return New(ErrEncoding, message, nil)
}

// NewMalformedLogLineError creates a new malformed log line error
func NewMalformedLogLineError(line string, fields int) *AppError {
	return New(ErrMalformedLogLine, fmt.Sprintf("expected 4 fields, got %d in %q", fields, line), nil)
}

// NewUnparsableDiffStatError creates a new diff stat parse error
func NewUnparsableDiffStatError(line string, cause error) *AppError {
	return New(ErrUnparsableDiffStat, fmt.Sprintf("unrecognised diff summary %q", line), cause)
}

// NewParseFailure creates a new generic parse failure
func NewParseFailure(message string, cause error) *AppError {
	return New(ErrParseFailure, message, cause)
}

// NewDanglingReferenceError creates a new dangling reference error
func NewDanglingReferenceError(message string) *AppError {
	return New(ErrDanglingReference, message, nil)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, err error) *AppError {
	return New(ErrNotFound, message, err)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, err error) *AppError {
	return New(ErrInvalidInput, message, err)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return New(ErrInternal, message, err)
}

// CommitFailure records why stats could not be fetched for one commit
type CommitFailure struct {
	Hash string
	Err  error
}

// FetchError represents a stats fetch in which git could not be run for
// any commit
type FetchError struct {
	Attempted int
	Failures  []CommitFailure
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("stats fetch failed for all %d commits", e.Attempted)
	if len(e.Failures) > 0 {
		msg += fmt.Sprintf(" (first: %s: %v)", e.Failures[0].Hash, e.Failures[0].Err)
	}
	return msg
}

// Unwrap exposes every per-commit failure to errors.Is/As
func (e *FetchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// NewFetchError creates a new FetchError
func NewFetchError(attempted int, failures []CommitFailure) error {
	return &FetchError{
		Attempted: attempted,
		Failures:  failures,
	}
}
