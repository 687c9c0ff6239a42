// Package service implements the account state machine: the rules that
// decide, per email address, which transitions between no-account,
// password-authenticated, and federated states are legal, and what each
// operation does to the stored record.  It talks to storage through
// repository.UserStore only, so the whole machine runs unchanged against
// the in-memory fake in tests.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nkorzh/identity-service/internal/config"
	"github.com/nkorzh/identity-service/internal/mailer"
	"github.com/nkorzh/identity-service/internal/model"
	"github.com/nkorzh/identity-service/internal/queue"
	"github.com/nkorzh/identity-service/internal/repository"
	"github.com/nkorzh/identity-service/internal/utils"
)

// UserInfo is the safe projection of an account returned to clients.
// Never the hash, never the reset fields.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the result of a successful authentication.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// PublishFunc delivers an auth event to the broker.  A nil publisher
// disables events entirely.
type PublishFunc func(ctx context.Context, ev queue.AuthEvent) error

// AuthService is the account state machine.  All dependencies are injected;
// there is no ambient global state.
type AuthService struct {
	store   repository.UserStore
	mail    mailer.Mailer
	cfg     config.Config
	publish PublishFunc
}

// NewAuthService wires the state machine to its collaborators.
func NewAuthService(store repository.UserStore, mail mailer.Mailer, cfg config.Config, publish PublishFunc) *AuthService {
	return &AuthService{store: store, mail: mail, cfg: cfg, publish: publish}
}

// SignUp creates a password-authenticated account.  The email must have no
// existing record; the uniqueness race between concurrent signups is decided
// by the store, whose duplicate answer becomes ErrDuplicateAccount here.
// The returned Session is nil unless SIGNUP_ISSUES_TOKEN is on: by default
// signing up does not implicitly authenticate.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	name, vErr := utils.ValidateName(name, s.cfg.NamePolicy)
	if vErr != nil {
		return nil, vErr
	}
	email, vErr = utils.ValidateEmail(email)
	if vErr != nil {
		return nil, vErr
	}
	if vErr = utils.ValidatePassword(password); vErr != nil {
		return nil, vErr
	}

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{DisplayName: name, Email: email, PasswordHash: &hash}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.emit(queue.EventUserRegistered, u.ID, u.Email)

	if !s.cfg.SignupIssuesToken {
		return nil, nil
	}
	return s.newSession(*u)
}

// Login authenticates by password and issues a session token.  Accounts
// claimed by Google sign-in are refused outright, even when an old password
// hash is still stored: that hash stopped being a credential the moment the
// address was federated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email, vErr := utils.ValidateEmail(email)
	if vErr != nil {
		return nil, vErr
	}
	if password == "" {
		return nil, &utils.ValidationError{Field: "password", Reason: "required"}
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.cfg.RevealNotFound {
				return nil, ErrAccountNotFound
			}
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if u.IsFederated {
		return nil, ErrFederatedAccountOnly
	}
	if u.PasswordHash == nil || !utils.VerifyPassword(*u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(u)
}

// GoogleSignIn is an idempotent upsert for an identity the caller has
// already verified with Google.  A new address gets a federated record with
// no password; an existing record is upgraded to federated and its display
// name refreshed, keeping any stored password hash.  It always issues a
// session token: this path never rejects an existing account.
func (s *AuthService) GoogleSignIn(ctx context.Context, name, email string) (*Session, error) {
	email, vErr := utils.ValidateEmail(email)
	if vErr != nil {
		return nil, vErr
	}
	if name == "" {
		return nil, &utils.ValidationError{Field: "name", Reason: "required"}
	}

	u := &model.User{DisplayName: name, Email: email, IsFederated: true}
	err := s.store.Create(ctx, u)
	switch {
	case err == nil:
		// first sign-in for this address
	case errors.Is(err, repository.ErrEmailExists):
		existing, uErr := s.store.MarkFederated(ctx, email, name)
		if uErr != nil {
			return nil, fmt.Errorf("mark federated: %w", uErr)
		}
		u = &existing
	default:
		return nil, fmt.Errorf("create federated user: %w", err)
	}

	s.emit(queue.EventGoogleSignIn, u.ID, u.Email)
	return s.newSession(*u)
}

// RequestPasswordReset issues a reset token, persists its hash and expiry
// on the record, and emails the reset link.  When the mail send fails the
// token is already persisted and stays valid; the failure comes back as
// ErrNotification instead of being rolled back, so the anomaly is visible.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email, vErr := utils.ValidateEmail(email)
	if vErr != nil {
		return vErr
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.cfg.RevealNotFound {
				return ErrAccountNotFound
			}
			// Hardened mode: indistinguishable from success, no email sent.
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	tok, err := utils.NewResetToken(s.cfg.JWTSecret, email, s.cfg.ResetTTLMin)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.store.SetResetToken(ctx, email, utils.HashResetRaw(tok.Raw), tok.Exp); err != nil {
		return fmt.Errorf("persist reset token: %w", err)
	}

	s.emit(queue.EventResetRequested, u.ID, u.Email)

	link := mailer.ResetLink(s.cfg.FrontendBaseURL, tok.Raw)
	body := mailer.ResetBody(u.DisplayName, link, s.cfg.ResetTTLMin)
	if err := s.mail.Send(ctx, u.Email, mailer.ResetSubject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrNotification, err)
	}
	return nil
}

// CompletePasswordReset verifies the presented token and atomically swaps
// in the new password while clearing the reset fields.  Signature failure,
// expiry, and a consumed or superseded token all collapse into
// ErrInvalidOrExpiredToken: the caller learns nothing about which check
// failed.
func (s *AuthService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return &utils.ValidationError{Field: "token", Reason: "required"}
	}
	if vErr := utils.ValidatePassword(newPassword); vErr != nil {
		return vErr
	}

	email, err := utils.ParseReset(s.cfg.JWTSecret, token)
	if err != nil {
		return ErrInvalidOrExpiredToken
	}

	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.store.CompleteReset(ctx, email, utils.HashResetRaw(token), hash)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNoResetMatch), errors.Is(err, repository.ErrNotFound):
		return ErrInvalidOrExpiredToken
	default:
		return fmt.Errorf("complete reset: %w", err)
	}

	s.emit(queue.EventResetCompleted, "", email)
	return nil
}

// newSession issues a signed session token for the user.
func (s *AuthService) newSession(u model.User) (*Session, error) {
	tok, err := utils.NewSessionToken(s.cfg.JWTSecret, u.ID, u.Email, s.cfg.SessionTTLDays)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &Session{
		Token:     tok.Token,
		ExpiresAt: tok.Exp,
		User:      UserInfo{ID: u.ID, Name: u.DisplayName, Email: u.Email},
	}, nil
}

// emit publishes an auth event without blocking the request.  Delivery is
// best effort; a failed publish is logged and dropped.
func (s *AuthService) emit(evType, userID, email string) {
	if s.publish == nil {
		return
	}
	ev := queue.AuthEvent{
		Type:   evType,
		UserID: userID,
		Email:  email,
		At:     time.Now().UTC().Format(time.RFC3339),
	}
	publish := s.publish
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := publish(ctx, ev); err != nil {
			log.Printf("auth events: publish %s failed: %v", ev.Type, err)
		}
	}()
}
