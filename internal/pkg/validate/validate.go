// Package validate holds field-level validation shared by the account
// flows. Messages follow the "<Field> <problem>" phrasing surfaced to
// API clients.
package validate

import (
	"regexp"
	"strings"
)

// MinPasswordLength is the password policy floor.
const MinPasswordLength = 6

var emailRe = regexp.MustCompile(`\A[^@\s]+@[^@\s]+\z`)

// Error carries one message per failed field check. It maps to a 422
// response and is always recoverable by the caller fixing the input.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// NewError builds an Error, or returns nil when no checks failed.
func NewError(messages ...string) *Error {
	if len(messages) == 0 {
		return nil
	}
	return &Error{Messages: messages}
}

// NormalizeEmail canonicalizes an address for storage and lookup;
// uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailFormat reports whether the address is plausibly deliverable.
func EmailFormat(email string) bool {
	return emailRe.MatchString(email)
}
