package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrForbidden        = errors.New("permission denied")
	ErrInvalidReference = errors.New("invalid reference")
	ErrOutOfRange       = errors.New("value out of range")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError lists field errors in the order they were encountered.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	if err == nil && len(flds) > 0 {
		err = fmt.Errorf("%s: %s", flds[0].Field, flds[0].Error)
	}
	return &ValidationError{err, flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FirstField returns the first offending field, if any.
func (err *ValidationError) FirstField() string {
	if len(err.Fields) == 0 {
		return ""
	}
	return err.Fields[0].Field
}

// ReferenceError reports a foreign key that is missing or points to the wrong kind of record.
type ReferenceError struct {
	Entity string
	ID     int
	Reason string
}

func NewReferenceError(entity string, id int, reason string) error {
	return &ReferenceError{Entity: entity, ID: id, Reason: reason}
}

func (err *ReferenceError) Error() string {
	return fmt.Sprintf("invalid %s reference %d: %s", err.Entity, err.ID, err.Reason)
}

func (err *ReferenceError) Is(target error) bool { return target == ErrInvalidReference }

type OutOfRangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func NewOutOfRangeError(field string, val, min, max float64) error {
	return &OutOfRangeError{Field: field, Value: val, Min: min, Max: max}
}

func (err *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %g is out of range [%g, %g]", err.Field, err.Value, err.Min, err.Max)
}

func (err *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// recoverable errors implement this to flag themselves as caller mistakes.
type domainError interface {
	DomainError() bool
}

// IsRecoverable reports whether err is a typed outcome the caller can act upon,
// as opposed to a storage fault.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	var (
		vErr *ValidationError
		dErr domainError
	)
	switch {
	case errors.As(err, &vErr), errors.As(err, &dErr):
		return true
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrInvalidReference), errors.Is(err, ErrOutOfRange):
		return true
	}
	return false
}

// DomainErr marks a sentinel error as recoverable.
type DomainErr string

func (e DomainErr) Error() string     { return string(e) }
func (e DomainErr) DomainError() bool { return true }
