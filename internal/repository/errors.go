package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
)

type constraintInfo struct {
	Field   string
	Message string
}

// uniqueConstraints maps the named unique constraints from the base schema to
// the client field they guard.
var uniqueConstraints = map[string]constraintInfo{
	"users_email_key":            {Field: "email", Message: "Email already exists"},
	"people_phone_key":           {Field: "phone", Message: "Phone number already exists"},
	"people_aadhar_number_key":   {Field: "aadharNumber", Message: "Aadhar number already exists"},
	"people_pan_number_key":      {Field: "panNumber", Message: "PAN number already exists"},
	"people_voter_id_number_key": {Field: "voterIdNumber", Message: "Voter ID already exists"},
}

// UniqueViolationError is returned when a write hits a unique constraint.
type UniqueViolationError struct {
	Constraint string
	Field      string // client field name, empty for unknown constraints
	Message    string
	Err        error
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique violation on %s: %s", e.Constraint, e.Message)
}

func (e *UniqueViolationError) Unwrap() error { return e.Err }

// CheckViolationError is returned when a write fails a CHECK constraint.
type CheckViolationError struct {
	Constraint string
	Err        error
}

func (e *CheckViolationError) Error() string {
	return fmt.Sprintf("check violation on %s", e.Constraint)
}

func (e *CheckViolationError) Unwrap() error { return e.Err }

// NewUniqueViolation builds the error for a known constraint name.
func NewUniqueViolation(constraint string) *UniqueViolationError {
	info, ok := uniqueConstraints[constraint]
	if !ok {
		info = constraintInfo{Message: "Duplicate value"}
	}
	return &UniqueViolationError{Constraint: constraint, Field: info.Field, Message: info.Message}
}

// AsUniqueViolation extracts a UniqueViolationError from err's chain.
func AsUniqueViolation(err error) (*UniqueViolationError, bool) {
	var uv *UniqueViolationError
	if errors.As(err, &uv) {
		return uv, true
	}
	return nil, false
}

// translateError converts constraint failures reported by the driver into
// typed errors. Anything else is returned unchanged.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		uv := NewUniqueViolation(pqErr.Constraint)
		uv.Err = err
		return uv
	case pqCheckViolation:
		return &CheckViolationError{Constraint: pqErr.Constraint, Err: err}
	}
	return err
}
