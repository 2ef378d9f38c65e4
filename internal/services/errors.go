package services

import (
	"fmt"
)

// ValidationError means a required field was missing or malformed; the
// call performed no mutation.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// NotFoundError means a referenced order, customer, or product is absent
// where presence was assumed.
type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string {
	return e.msg
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

// StoreError wraps an underlying persistence failure.
type StoreError struct {
	err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure: %v", e.err)
}

func (e *StoreError) Unwrap() error {
	return e.err
}

func NewStoreError(err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{err: err}
}
