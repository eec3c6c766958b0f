package errors

import "fmt"

// The engines surface exactly four error kinds. Controllers select the
// HTTP status from the kind; the structured fields (Field, Resource,
// Details) feed the response "details" object.

// ValidationError reports malformed input, tagged with the offending field.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(code, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Code     string
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFound(code, resource, message string) *NotFoundError {
	return &NotFoundError{Code: code, Resource: resource, Message: message}
}

// ConflictError reports a uniqueness or dependency rule violation.
type ConflictError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflict(code, message string, details map[string]interface{}) *ConflictError {
	return &ConflictError{Code: code, Message: message, Details: details}
}

// StorageError wraps an underlying store failure that is not otherwise
// classified. Surfaced as a 500; never retried by the engines.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
