package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation is pure: it either normalizes the input or rejects it with the
// offending field, before anything reaches the database.

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 6

var (
	emailRe      = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	nameSingleRe = regexp.MustCompile(`^[A-Za-z]+$`)
	nameMultiRe  = regexp.MustCompile(`^[A-Za-z]+(?: [A-Za-z]+)*$`)
)

// ValidationError reports which field was rejected and why.  The reason is
// safe to echo back to the client.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NormalizeEmail lowercases and trims an email address.  Uniqueness is
// case-insensitive, so every read and write goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address against a standard grammar and returns
// the normalized form.
func ValidateEmail(email string) (string, *ValidationError) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", &ValidationError{Field: "email", Reason: "required"}
	}
	if len(email) > 254 || !emailRe.MatchString(email) {
		return "", &ValidationError{Field: "email", Reason: "not a valid email address"}
	}
	return email, nil
}

// ValidatePassword enforces the minimum length.
func ValidatePassword(password string) *ValidationError {
	if password == "" {
		return &ValidationError{Field: "password", Reason: "required"}
	}
	if len(password) < MinPasswordLen {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLen)}
	}
	return nil
}

// ValidateName checks the display name under the given policy
// (config.NamePolicySingle or config.NamePolicyMulti) and returns the
// trimmed form.  The policy is configuration because call sites of the
// system this replaces disagreed on whether multi-word names are allowed.
func ValidateName(name, policy string) (string, *ValidationError) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Reason: "required"}
	}
	switch policy {
	case "single":
		if !nameSingleRe.MatchString(name) {
			return "", &ValidationError{Field: "name", Reason: "must be a single word with letters only"}
		}
	default: // multi
		if !nameMultiRe.MatchString(name) {
			return "", &ValidationError{Field: "name", Reason: "must contain letters and single spaces only"}
		}
	}
	return name, nil
}
