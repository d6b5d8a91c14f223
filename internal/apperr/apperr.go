// Package apperr defines the error taxonomy shared by the stores: validation
// errors raised before persistence, coded persistence errors, and the single
// current-error state every store exposes.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a persistence failure.
type Code string

// Persistence error codes.
const (
	CodeUnique      Code = "unique_violation"
	CodeForeignKey  Code = "foreign_key_violation"
	CodePermission  Code = "permission_denied"
	CodeNotFound    Code = "not_found"
	CodeMalformed   Code = "malformed_input"
	CodeUnavailable Code = "unavailable"
	CodeConflict    Code = "conflict"
	CodeInternal    Code = "internal"
)

// Sentinels for errors.Is checks against a code.
var (
	ErrUnique      = &Error{Code: CodeUnique}
	ErrForeignKey  = &Error{Code: CodeForeignKey}
	ErrPermission  = &Error{Code: CodePermission}
	ErrNotFound    = &Error{Code: CodeNotFound}
	ErrMalformed   = &Error{Code: CodeMalformed}
	ErrUnavailable = &Error{Code: CodeUnavailable}
	ErrConflict    = &Error{Code: CodeConflict}
)

// Error is a persistence error carrying a machine-readable code.
type Error struct {
	Code Code
	Op   string
	Err  error
}

// New returns a coded error for op wrapping err.
func New(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// Errorf returns a coded error with a formatted cause.
func Errorf(code Code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Message translates err into the message shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	var partial *PartialError
	if errors.As(err, &partial) {
		return partial.Error()
	}

	switch CodeOf(err) {
	case CodeUnique:
		return "A record with these details already exists."
	case CodeForeignKey:
		return "This record is in use by other records. Archive it instead of deleting it."
	case CodePermission:
		return "You do not have permission to perform this action."
	case CodeNotFound:
		return "The record was not found. It may have been deleted."
	case CodeMalformed:
		return "The submitted data is invalid."
	case CodeUnavailable:
		return "The database could not be reached. Please try again."
	case CodeConflict:
		var e *Error
		if errors.As(err, &e) && e.Err != nil {
			return "Stock changed in the meantime: " + e.Err.Error()
		}
		return "Stock changed in the meantime. Reload and try again."
	}
	return "Something went wrong: " + err.Error()
}
