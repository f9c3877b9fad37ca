package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Specific errors below wrap one of these so callers can
// classify with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrInvalidState = errors.New("invalid state")
	ErrInternal     = errors.New("internal error")
)

var (
	// ErrUserNotFound is returned for an unknown user id or email.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrCourseNotFound indicates the course could not be loaded.
	ErrCourseNotFound = fmt.Errorf("course %w", ErrNotFound)
	// ErrEnrollmentNotFound is returned when progress is reported against an unknown enrollment.
	ErrEnrollmentNotFound  = fmt.Errorf("enrollment %w", ErrNotFound)
	ErrCertificateNotFound = fmt.Errorf("certificate %w", ErrNotFound)
	ErrBadgeNotFound       = fmt.Errorf("badge %w", ErrNotFound)
	// ErrModuleNotFound is returned when a quiz is submitted for a module id the course does not have.
	ErrModuleNotFound = fmt.Errorf("module %w", ErrNotFound)

	ErrEmailTaken      = fmt.Errorf("user with this email %w", ErrConflict)
	ErrAlreadyEnrolled = fmt.Errorf("enrollment for this course %w", ErrConflict)
	// ErrAlreadyCertified means a certificate for the (user, course) pair exists.
	ErrAlreadyCertified = fmt.Errorf("certificate for this course %w", ErrConflict)
	// ErrCertificateCodeTaken means a generated code is already used by another pair.
	ErrCertificateCodeTaken = fmt.Errorf("certificate code %w", ErrConflict)
	// ErrBadgeAlreadyEarned means the (user, badge) pair is already recorded.
	ErrBadgeAlreadyEarned = fmt.Errorf("badge %w for user", ErrConflict)

	// ErrModuleNotInCourse is returned when a completion names a module the course does not contain.
	ErrModuleNotInCourse  = fmt.Errorf("%w: module is not part of the course", ErrInvalidState)
	ErrNotQuizModule      = fmt.Errorf("%w: module is not a quiz", ErrInvalidState)
	ErrCourseNotPublished = fmt.Errorf("%w: course is not published", ErrInvalidState)
)

// ValidationError carries field-level detail for malformed input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError from field/reason pairs.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add records a reason for field, keeping the first reason reported.
func (e *ValidationError) Add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = reason
	}
}

// OrNil returns nil when no field was reported.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
