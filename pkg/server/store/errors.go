package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record doesn't exist
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write would violate a uniqueness constraint
var ErrConflict = errors.New("already exists")

// ErrInvalidCredentials is returned when an email/password pair doesn't match
var ErrInvalidCredentials = errors.New("invalid credentials")

// DataAccessError reports a storage failure (connection loss, timeout,
// malformed query). It is distinct from a negative answer.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access error: %s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// NewDataAccessError wraps err as a DataAccessError for operation op
func NewDataAccessError(op string, err error) error {
	return &DataAccessError{Op: op, Err: err}
}

// IsDataAccessError reports whether err is or wraps a DataAccessError
func IsDataAccessError(err error) bool {
	var dae *DataAccessError
	return errors.As(err, &dae)
}
