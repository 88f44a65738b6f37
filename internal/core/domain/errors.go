package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrVoteNotAllowed   = errors.New("voting is not allowed on this poll")
	ErrVoteInFlight     = errors.New("a vote on this poll is already in progress")
	ErrInvalidOption    = errors.New("invalid option for this poll")
	ErrStaleFeed        = errors.New("feed response superseded by a newer request")
	ErrTitleRequired    = errors.New("Poll title is required.")
	ErrTooFewOptions    = errors.New("At least 2 options are required.")
	ErrTooManyOptions   = errors.New("A poll can have at most 10 options.")
	ErrInvalidExpiry    = errors.New("invalid expiry date")

	ErrPollNotFound       = errors.New("poll not found")
	ErrPollInactive       = errors.New("This poll is not active.")
	ErrPollExpired        = errors.New("This poll has expired.")
	ErrAlreadyVoted       = errors.New("You have already voted in this poll.")
	ErrUsernameTaken      = errors.New("A user with that username already exists.")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrOptionNotFound     = errors.New("Invalid option ID.")
	ErrForeignOption      = errors.New("Option does not belong to this poll.")
	ErrOptionAlreadyVoted = errors.New("You have already voted for this option.")
	ErrExpiryInPast       = errors.New("Expiration date must be in the future.")
	ErrInvalidToken       = errors.New("Given token not valid for any token type")
	ErrTokenNotValid      = errors.New("Token is invalid or expired")
	ErrNotPollCreator     = errors.New("You don't have permission to delete this poll.")
)

const (
	GenericErrorMessage     = "Something went wrong"
	NonFieldErrorsKey       = "non_field_errors"
	FieldRequiredMessage    = "This field is required."
	PasswordMismatchMessage = "Passwords don't match."
)

// RequestError is a non-success response from the API. Message follows the
// fallback chain detail, error, GenericErrorMessage.
type RequestError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *RequestError) Error() string {
	return e.Message
}

// AuthError is a failed login. It carries a single human readable message.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ValidationErrors maps a field name to its messages, in server order.
// Errors that do not belong to a field live under NonFieldErrorsKey.
type ValidationErrors map[string][]string

func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

func (v ValidationErrors) Has(field string) bool {
	return len(v[field]) > 0
}

// First returns the first message for field, or "".
func (v ValidationErrors) First(field string) string {
	if msgs := v[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (v ValidationErrors) Empty() bool {
	for _, msgs := range v {
		if len(msgs) > 0 {
			return false
		}
	}
	return true
}

// Fields returns the field names in a stable order with the non-field
// bucket last.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for field := range v {
		if field != NonFieldErrorsKey {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	if v.Has(NonFieldErrorsKey) {
		fields = append(fields, NonFieldErrorsKey)
	}
	return fields
}

func (v ValidationErrors) Error() string {
	var parts []string
	for _, field := range v.Fields() {
		for _, msg := range v[field] {
			if field == NonFieldErrorsKey {
				parts = append(parts, msg)
				continue
			}
			parts = append(parts, field+": "+msg)
		}
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return strings.Join(parts, "; ")
}
