// Package repository defines the storage contract for user identity records
// together with the sentinel errors callers branch on.  Higher layers never
// see driver errors: uniqueness violations, missing rows, lost reset-token
// races and timeouts each come back as a distinct sentinel so the service
// can translate them into its own taxonomy.
package repository

import "errors"

// ErrNotFound is returned when no record exists for the given email.
var ErrNotFound = errors.New("user not found")

// ErrEmailExists is returned when an insert loses the uniqueness race on
// the email column.  Concurrent signups for one address produce exactly one
// winner; everyone else gets this.
var ErrEmailExists = errors.New("email already exists")

// ErrNoResetMatch is returned by CompleteReset when the conditional update
// touched zero rows: the stored reset token was already consumed, replaced
// by a newer request, expired, or never existed.
var ErrNoResetMatch = errors.New("reset token does not match")

// ErrTransient wraps timeouts and connectivity failures.  Callers may retry;
// every other sentinel is terminal for the request.
var ErrTransient = errors.New("transient storage error")
