package genealogy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes genealogy errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates an operation referenced an unknown strain.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeAlreadyExists indicates create was called with an id in use.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// ErrCodeRemoveStem indicates remove targeted the stem strain.
	ErrCodeRemoveStem ErrorCode = "REMOVE_STEM"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its code.
var (
	ErrNotFound      = errors.New("strain not found")
	ErrAlreadyExists = errors.New("strain already created")
	ErrRemoveStem    = errors.New("tried to remove stem strain")
)

// Error is returned by every failing Genealogy operation.
//
// Op names the method that failed ("create", "connect", ...) and ID is the
// identifier that caused the failure, formatted with %v.
type Error struct {
	Code ErrorCode
	Op   string
	ID   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.sentinel().Error()
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %s: %s", e.Op, e.ID, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

// Is reports whether target is the sentinel matching e.Code.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Code {
	case ErrCodeAlreadyExists:
		return ErrAlreadyExists
	case ErrCodeRemoveStem:
		return ErrRemoveStem
	default:
		return ErrNotFound
	}
}

func notFound[ID any](op string, id ID) *Error {
	return &Error{Code: ErrCodeNotFound, Op: op, ID: fmtID(id)}
}

func fmtID[ID any](id ID) string {
	return fmt.Sprint(id)
}

// IsNotFound returns true if err is (or wraps) a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists returns true if err is (or wraps) an already-exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsRemoveStem returns true if err is (or wraps) an attempt to remove the stem.
func IsRemoveStem(err error) bool {
	return errors.Is(err, ErrRemoveStem)
}

// CodeOf extracts the ErrorCode from err, or "" when err is not a genealogy error.
func CodeOf(err error) ErrorCode {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// InvariantError lists structural violations found by Validate.
type InvariantError struct {
	Violations []string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("genealogy invariants violated: %s", strings.Join(e.Violations, "; "))
}
