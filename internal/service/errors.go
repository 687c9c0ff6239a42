package service

import "errors"

// Sentinel errors returned by AuthService.  Each maps to one distinct,
// non-leaking client-facing message in the handler layer.
var (
	// ErrDuplicateAccount: signup for an email that already has a record,
	// whether password-based or federated.
	ErrDuplicateAccount = errors.New("an account with this email already exists")

	// ErrAccountNotFound: no record for the email.  Suppressed when
	// REVEAL_ACCOUNT_EXISTENCE is off.
	ErrAccountNotFound = errors.New("account not found")

	// ErrFederatedAccountOnly: the account was claimed by Google sign-in;
	// password login is refused even when an old hash is still stored.
	ErrFederatedAccountOnly = errors.New("this account uses google sign-in")

	// ErrInvalidCredentials: password mismatch, or an account with no
	// usable password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOrExpiredToken deliberately covers bad signature, expiry
	// and already-consumed alike, so callers get no token-guessing oracle.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")

	// ErrNotification: the reset email could not be sent after the token
	// was already persisted.  The token remains valid; the failure is
	// surfaced rather than rolled back so operators can see it.
	ErrNotification = errors.New("could not send notification email")
)
