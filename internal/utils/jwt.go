package utils // package utils provides helpers for token creation, hashing and validation

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes carried in the "purpose" claim.  A session token is never
// accepted where a reset token is expected and vice versa.
const (
	PurposeSession = "session"
	PurposeReset   = "reset"
)

// ErrTokenExpired is returned when a token's signature is valid but its
// expiry has elapsed.  ErrTokenInvalid covers every other failure: bad
// signature, malformed token, wrong purpose.  Callers decide how much of
// that distinction to expose; the reset flow deliberately collapses both.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// SessionToken is a signed JWT a client presents as its bearer credential,
// together with its expiry for the response payload.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// SessionClaims is what a verified session token asserts.
type SessionClaims struct {
	UserID string
	Email  string
}

// ResetToken is a signed, single-purpose JWT embedded into the emailed
// reset link.  Only its SHA-256 hash is persisted server-side.
type ResetToken struct {
	Raw string
	Exp time.Time
}

// NewSessionToken builds and signs an HS256 JWT for an authenticated user.
// Claims: sub (user id), email, purpose, exp and iat.
func NewSessionToken(secret, userID, email string, ttlDays int) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":     userID,
		"email":   email,
		"purpose": PurposeSession,
		"exp":     exp.Unix(),
		"iat":     now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// NewResetToken builds and signs an HS256 JWT for the password-reset link.
// The subject is the account email. A non-positive ttl yields an already
// expired token, which is convenient for tests.
func NewResetToken(secret, email string, ttlMin int) (ResetToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":     email,
		"purpose": PurposeReset,
		"exp":     exp.Unix(),
		"iat":     now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return ResetToken{}, err
	}
	return ResetToken{Raw: signed, Exp: exp}, nil
}

// ParseSession verifies a session token and returns its claims.
func ParseSession(secret, raw string) (SessionClaims, error) {
	claims, err := parse(secret, raw, PurposeSession)
	if err != nil {
		return SessionClaims{}, err
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return SessionClaims{}, ErrTokenInvalid
	}
	return SessionClaims{UserID: sub, Email: email}, nil
}

// ParseReset verifies a reset token and returns the subject email.
func ParseReset(secret, raw string) (string, error) {
	claims, err := parse(secret, raw, PurposeReset)
	if err != nil {
		return "", err
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return "", ErrTokenInvalid
	}
	return email, nil
}

// parse validates signature, expiry and purpose, mapping library errors to
// the two sentinels above.
func parse(secret, raw, purpose string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; an attacker must not
		// be able to pick the verification algorithm.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, ErrTokenInvalid
	}
	if p, _ := claims["purpose"].(string); p != purpose {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// HashResetRaw returns the SHA-256 hash of a raw reset token as a hex
// string.  Only the hash is stored, so a leaked users table does not yield
// usable reset links.
func HashResetRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
