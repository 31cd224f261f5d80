// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authtest provides an in-process [auth.Store] for tests.

Constraint failures are reported with the same SQLSTATE codes PostgreSQL
uses, so code that classifies storage errors behaves identically against it.
*/
package authtest

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yomira-auth/internal/platform/apperr"
	"github.com/taibuivan/yomira-auth/internal/platform/dberr"
	"github.com/taibuivan/yomira-auth/internal/users/auth"
	"github.com/taibuivan/yomira-auth/pkg/uuid"
)

// # Store

// MemoryStore is an in-process [auth.Store].
//
// Every operation is serialized by one mutex. A transaction holds that mutex
// for its whole duration and works on a copy of the state, which replaces the
// live state only when fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

type memoryState struct {
	users     map[string]auth.User
	usernames map[string]string // username -> id
	tokens    map[string]auth.RefreshToken
}

func (state *memoryState) clone() *memoryState {
	return &memoryState{
		users:     maps.Clone(state.users),
		usernames: maps.Clone(state.usernames),
		tokens:    maps.Clone(state.tokens),
	}
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memoryState{
		users:     make(map[string]auth.User),
		usernames: make(map[string]string),
		tokens:    make(map[string]auth.RefreshToken),
	}}
}

// Users returns a repository that locks per call.
func (store *MemoryStore) Users() auth.UserRepository {
	return &userRepository{access: store.locked}
}

// RefreshTokens returns a repository that locks per call.
func (store *MemoryStore) RefreshTokens() auth.RefreshTokenRepository {
	return &refreshTokenRepository{access: store.locked}
}

// WithinTx runs fn with exclusive access to a private copy of the state.
func (store *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, uow auth.UnitOfWork) error) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	working := store.state.clone()
	direct := func(apply func(*memoryState) error) error { return apply(working) }

	if err := fn(ctx, unit{
		users:  &userRepository{access: direct},
		tokens: &refreshTokenRepository{access: direct},
	}); err != nil {
		return err
	}

	store.state = working
	return nil
}

// TokenCount reports how many refresh tokens are stored for userID.
func (store *MemoryStore) TokenCount(userID string) int {
	count := 0
	_ = store.locked(func(state *memoryState) error {
		for _, row := range state.tokens {
			if row.UserID == userID {
				count++
			}
		}
		return nil
	})
	return count
}

func (store *MemoryStore) locked(apply func(*memoryState) error) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	return apply(store.state)
}

type unit struct {
	users  *userRepository
	tokens *refreshTokenRepository
}

func (u unit) Users() auth.UserRepository                 { return u.users }
func (u unit) RefreshTokens() auth.RefreshTokenRepository { return u.tokens }

// # Repositories

type userRepository struct {
	access func(func(*memoryState) error) error
}

func (repository *userRepository) Create(_ context.Context, username, passwordHash string) (string, error) {
	id := uuid.New()
	err := repository.access(func(state *memoryState) error {
		if _, taken := state.usernames[username]; taken {
			return dberr.Wrap(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "users_username_key",
			}, "memory_user_repo_create_failed")
		}
		state.users[id] = auth.User{
			ID:           id,
			Username:     username,
			PasswordHash: passwordHash,
			CreatedAt:    time.Now().UTC(),
		}
		state.usernames[username] = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (repository *userRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	var found *auth.User
	_ = repository.access(func(state *memoryState) error {
		if user, ok := state.users[id]; ok {
			found = &user
		}
		return nil
	})
	if found == nil {
		return nil, apperr.NotFound("User")
	}
	return found, nil
}

func (repository *userRepository) FindCredentialMaterial(_ context.Context, username string) (*auth.CredentialMaterial, error) {
	var material *auth.CredentialMaterial
	_ = repository.access(func(state *memoryState) error {
		if id, ok := state.usernames[username]; ok {
			material = &auth.CredentialMaterial{UserID: id, PasswordHash: state.users[id].PasswordHash}
		}
		return nil
	})
	return material, nil
}

type refreshTokenRepository struct {
	access func(func(*memoryState) error) error
}

func (repository *refreshTokenRepository) Insert(_ context.Context, token, userID string) error {
	return repository.access(func(state *memoryState) error {
		if _, ok := state.users[userID]; !ok {
			return dberr.Wrap(&pgconn.PgError{
				Code:           pgerrcode.ForeignKeyViolation,
				ConstraintName: "refresh_tokens_user_id_fkey",
			}, "memory_refresh_repo_insert_failed")
		}
		state.tokens[token] = auth.RefreshToken{
			ID:        uuid.New(),
			Token:     token,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
		return nil
	})
}

func (repository *refreshTokenRepository) FindByToken(_ context.Context, token string) (*auth.RefreshToken, error) {
	var found *auth.RefreshToken
	_ = repository.access(func(state *memoryState) error {
		if row, ok := state.tokens[token]; ok {
			found = &row
		}
		return nil
	})
	return found, nil
}

func (repository *refreshTokenRepository) DeleteByToken(_ context.Context, token string) (bool, error) {
	var deleted bool
	_ = repository.access(func(state *memoryState) error {
		_, deleted = state.tokens[token]
		delete(state.tokens, token)
		return nil
	})
	return deleted, nil
}

func (repository *refreshTokenRepository) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	var count int64
	_ = repository.access(func(state *memoryState) error {
		for token, row := range state.tokens {
			if row.UserID == userID {
				delete(state.tokens, token)
				count++
			}
		}
		return nil
	})
	return count, nil
}
