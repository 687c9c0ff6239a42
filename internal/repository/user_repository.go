package repository

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkorzh/identity-service/internal/model"
)

// UserStore is the contract the account state machine works against.  The
// production implementation is MySQL; tests substitute an in-memory fake.
// All mutating methods must uphold the email-uniqueness and reset-token
// invariants under concurrency, which the MySQL implementation delegates to
// the UNIQUE key and conditional UPDATEs rather than in-process locks.
type UserStore interface {
	// FindByEmail returns the record for the normalized email or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (model.User, error)

	// Create inserts a new record, assigning its ID. Returns ErrEmailExists
	// when another record already holds the email.
	Create(ctx context.Context, u *model.User) error

	// MarkFederated flips is_federated on and refreshes the display name,
	// returning the updated record. The password hash is left untouched.
	MarkFederated(ctx context.Context, email, displayName string) (model.User, error)

	// SetResetToken stores the hash and expiry of a newly issued reset
	// token, replacing any previous one.
	SetResetToken(ctx context.Context, email, tokenHash string, expires time.Time) error

	// CompleteReset atomically replaces the password hash and clears the
	// reset fields, but only while the stored token hash matches and has not
	// expired. Returns ErrNoResetMatch otherwise.
	CompleteReset(ctx context.Context, email, tokenHash, newPasswordHash string) error
}

// UserRepo is the MySQL-backed UserStore.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, display_name, email, password_hash, is_federated, reset_token_hash, reset_token_expires, created_at, updated_at"

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	email = normalizeEmail(email)
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.DisplayName, &u.Email, &u.PasswordHash, &u.IsFederated,
		&u.ResetTokenHash, &u.ResetTokenExpiry, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, storeErr(err)
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = normalizeEmail(u.Email)
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, display_name, email, password_hash, is_federated) VALUES (?,?,?,?,?)",
		u.ID, u.DisplayName, u.Email, u.PasswordHash, u.IsFederated)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return storeErr(err)
	}
	return nil
}

func (r *UserRepo) MarkFederated(ctx context.Context, email, displayName string) (model.User, error) {
	email = normalizeEmail(email)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_federated=1, display_name=? WHERE email=?",
		displayName, email)
	if err != nil {
		return model.User{}, storeErr(err)
	}
	return r.FindByEmail(ctx, email)
}

func (r *UserRepo) SetResetToken(ctx context.Context, email, tokenHash string, expires time.Time) error {
	email = normalizeEmail(email)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_token_expires=? WHERE email=?",
		tokenHash, expires.UTC(), email)
	if err != nil {
		return storeErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteReset conditions the update on the token hash still matching and
// being unexpired, so a second completion with the same token (or one made
// stale by a newer request) touches zero rows and loses cleanly.
func (r *UserRepo) CompleteReset(ctx context.Context, email, tokenHash, newPasswordHash string) error {
	email = normalizeEmail(email)
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users
		    SET password_hash=?, reset_token_hash=NULL, reset_token_expires=NULL
		  WHERE email=? AND reset_token_hash=? AND reset_token_expires > UTC_TIMESTAMP()`,
		newPasswordHash, email, tokenHash)
	if err != nil {
		return storeErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoResetMatch
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry for a unique key).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// storeErr classifies driver failures: deadline and network errors become
// ErrTransient so handlers can answer 503, everything else passes through.
func storeErr(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return errors.Join(ErrTransient, err)
	}
	return err
}
