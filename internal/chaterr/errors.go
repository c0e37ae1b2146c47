package chaterr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for conditions that carry no payload.
var (
	// ErrDuplicate reports that a conditional insert lost a race. Callers
	// resolve it locally (re-fetch and return existing state); it is never
	// surfaced to API callers.
	ErrDuplicate = errors.New("record already exists")

	// ErrQueueUnavailable reports that the delivery queue rejected a publish.
	ErrQueueUnavailable = errors.New("delivery queue unavailable")

	// ErrNotAMember reports that the sender does not belong to the room.
	ErrNotAMember = errors.New("user is not a member of the room")

	// ErrMembershipNotFound reports a missing (room, user) membership row.
	ErrMembershipNotFound = errors.New("membership not found")
)

// ValidationError reports missing or malformed input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserNotFoundError names the identities that do not resolve to a User record.
type UserNotFoundError struct {
	Missing []string
}

func (e *UserNotFoundError) Error() string {
	return "unknown users: " + strings.Join(e.Missing, ", ")
}

// UserNotFound builds a UserNotFoundError for the given identities.
func UserNotFound(ids ...string) error {
	return &UserNotFoundError{Missing: ids}
}

// TooManyMembersError reports a group that exceeds the membership cap.
type TooManyMembersError struct {
	Count int
	Limit int
}

func (e *TooManyMembersError) Error() string {
	return fmt.Sprintf("group has %d members, limit is %d", e.Count, e.Limit)
}
