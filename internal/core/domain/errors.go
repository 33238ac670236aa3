package domain

import "errors"

// Validation errors.
var (
	ErrMissingField    = errors.New("missing required field")
	ErrAlreadyBorrowed = errors.New("book is already borrowed")
	ErrNotBorrowed     = errors.New("book is not borrowed")
)

// Lookup errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrBookNotFound = errors.New("book not found")
)

// Conflict errors.
var (
	ErrDuplicateID       = errors.New("user id already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrStatusConflict is returned by a repository when a conditional status
// transition finds the book in a different state than expected.
var ErrStatusConflict = errors.New("book status changed concurrently")

// ErrPersistence wraps storage I/O failures.
var ErrPersistence = errors.New("persistence failure")

// FieldError carries a caller-facing message for a missing or invalid input.
// It matches ErrMissingField under errors.Is.
type FieldError struct {
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func (e *FieldError) Is(target error) bool { return target == ErrMissingField }

// MissingField returns a FieldError with the given message.
func MissingField(msg string) error {
	return &FieldError{Message: msg}
}
