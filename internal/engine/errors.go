package engine

import "errors"

var (
	// ErrNotFound is returned when an operation targets a missing
	// document.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated is returned when an operation requires a valid
	// identity context and none was supplied.
	ErrUnauthenticated = errors.New("caller is not authenticated")

	// ErrAlreadyMember is returned when an invite targets a user who is
	// already in the group.
	ErrAlreadyMember = errors.New("user is already a member of this group")

	// ErrInvalid is the sentinel matched by every ValidationError.
	ErrInvalid = errors.New("invalid input")
)

// ValidationError reports malformed input or a stored document that
// failed to decode. Matches ErrInvalid under errors.Is.
type ValidationError struct {
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }
