package model

import "time"

// User represents a row in the `users` table.  Email is the natural key and
// is stored lowercased; at most one record exists per address.
//
// PasswordHash is nil for accounts created by Google sign-in that never set
// a password: such accounts cannot password-login.  IsFederated flips to
// true the first time Google sign-in claims the address and is never
// reverted; a password hash from before federation may remain on the row
// but is not accepted for login while IsFederated is set.
//
// ResetTokenHash holds the SHA-256 of the outstanding reset token, if any.
// It is always set and cleared together with ResetTokenExpires, so a token
// that was consumed or superseded can no longer be replayed.
type User struct {
	ID               string     // users.id (UUID)
	DisplayName      string     // users.display_name
	Email            string     // users.email (unique, lowercased)
	PasswordHash     *string    // users.password_hash (nullable)
	IsFederated      bool       // users.is_federated
	ResetTokenHash   *string    // users.reset_token_hash (nullable)
	ResetTokenExpiry *time.Time // users.reset_token_expires (nullable)
	CreatedAt        time.Time  // users.created_at
	UpdatedAt        time.Time  // users.updated_at
}

// CanPasswordLogin reports whether the record is eligible for password
// authentication at all (federated accounts are refused even when a hash
// is still stored).
func (u User) CanPasswordLogin() bool {
	return !u.IsFederated && u.PasswordHash != nil
}
