package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkorzh/identity-service/internal/model"
)

// MemoryStore is an in-memory UserStore used by tests and local runs
// without a database.  It upholds the same invariants as the MySQL
// implementation — one winner per email under concurrent creates, reset
// completion conditioned on the stored token — via a mutex instead of a
// UNIQUE key and conditional UPDATEs.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]model.User // keyed by normalized email
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]model.User)}
}

func (m *MemoryStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[normalizeEmail(email)]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryStore) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := normalizeEmail(u.Email)
	if _, ok := m.users[email]; ok {
		return ErrEmailExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = email
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[email] = *u
	return nil
}

func (m *MemoryStore) MarkFederated(_ context.Context, email, displayName string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalizeEmail(email)
	u, ok := m.users[key]
	if !ok {
		return model.User{}, ErrNotFound
	}
	u.IsFederated = true
	u.DisplayName = displayName
	u.UpdatedAt = time.Now().UTC()
	m.users[key] = u
	return u, nil
}

func (m *MemoryStore) SetResetToken(_ context.Context, email, tokenHash string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalizeEmail(email)
	u, ok := m.users[key]
	if !ok {
		return ErrNotFound
	}
	exp := expires.UTC()
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpiry = &exp
	u.UpdatedAt = time.Now().UTC()
	m.users[key] = u
	return nil
}

func (m *MemoryStore) CompleteReset(_ context.Context, email, tokenHash, newPasswordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalizeEmail(email)
	u, ok := m.users[key]
	if !ok {
		return ErrNoResetMatch
	}
	if u.ResetTokenHash == nil || u.ResetTokenExpiry == nil ||
		*u.ResetTokenHash != tokenHash || !u.ResetTokenExpiry.After(time.Now().UTC()) {
		return ErrNoResetMatch
	}
	u.PasswordHash = &newPasswordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	u.UpdatedAt = time.Now().UTC()
	m.users[key] = u
	return nil
}
