package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkorzh/identity-service/internal/model"
)

func strPtr(s string) *string { return &s }

func TestMemoryStore_CreateAndFind(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u := &model.User{DisplayName: "Ana", Email: "A@X.com", PasswordHash: strPtr("hash")}
	require.NoError(t, s.Create(ctx, u))
	assert.NotEmpty(t, u.ID, "id assigned on insert")

	got, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "a@x.com", got.Email, "stored lowercased")

	_, err = s.FindByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CreateDuplicate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.User{DisplayName: "Ana", Email: "a@x.com"}))
	err := s.Create(ctx, &model.User{DisplayName: "Ana", Email: "A@x.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestMemoryStore_ConcurrentCreateOneWinner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Create(ctx, &model.User{DisplayName: "Ana", Email: "a@x.com"})
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrEmailExists)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestMemoryStore_MarkFederated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.User{DisplayName: "Ana", Email: "a@x.com", PasswordHash: strPtr("hash")}))

	u, err := s.MarkFederated(ctx, "a@x.com", "Ana Maria")
	require.NoError(t, err)
	assert.True(t, u.IsFederated)
	assert.Equal(t, "Ana Maria", u.DisplayName)
	assert.NotNil(t, u.PasswordHash, "hash untouched")

	_, err = s.MarkFederated(ctx, "ghost@x.com", "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CompleteReset(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.User{DisplayName: "Ana", Email: "a@x.com", PasswordHash: strPtr("old")}))
	require.NoError(t, s.SetResetToken(ctx, "a@x.com", "tokhash", time.Now().Add(time.Hour)))

	// Wrong hash loses.
	err := s.CompleteReset(ctx, "a@x.com", "otherhash", "new")
	assert.ErrorIs(t, err, ErrNoResetMatch)

	// Matching hash wins and clears the reset fields.
	require.NoError(t, s.CompleteReset(ctx, "a@x.com", "tokhash", "new"))
	u, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "new", *u.PasswordHash)
	assert.Nil(t, u.ResetTokenHash)
	assert.Nil(t, u.ResetTokenExpiry)

	// Second completion with the same hash loses.
	err = s.CompleteReset(ctx, "a@x.com", "tokhash", "newer")
	assert.ErrorIs(t, err, ErrNoResetMatch)
}

func TestMemoryStore_CompleteResetExpired(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.User{DisplayName: "Ana", Email: "a@x.com"}))
	require.NoError(t, s.SetResetToken(ctx, "a@x.com", "tokhash", time.Now().Add(-time.Second)))

	err := s.CompleteReset(ctx, "a@x.com", "tokhash", "new")
	assert.ErrorIs(t, err, ErrNoResetMatch)
}

func TestMemoryStore_ConcurrentCompleteResetSingleWinner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.User{DisplayName: "Ana", Email: "a@x.com"}))
	require.NoError(t, s.SetResetToken(ctx, "a@x.com", "tokhash", time.Now().Add(time.Hour)))

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.CompleteReset(ctx, "a@x.com", "tokhash", "new")
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.True(t, errors.Is(err, ErrNoResetMatch))
		}
	}
	assert.Equal(t, 1, wins, "a reset token is consumed exactly once")
}
