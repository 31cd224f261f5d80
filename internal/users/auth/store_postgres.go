// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/yomira-auth/internal/platform/apperr"
	"github.com/taibuivan/yomira-auth/internal/platform/database"
	"github.com/taibuivan/yomira-auth/internal/platform/database/schema"
	"github.com/taibuivan/yomira-auth/internal/platform/dberr"
	"github.com/taibuivan/yomira-auth/pkg/uuid"
)

// # Statements

var (
	usersColumns         = strings.Join(schema.Users.Columns(), ", ")
	refreshTokensColumns = strings.Join(schema.RefreshTokens.Columns(), ", ")

	sqlUserInsert = fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4)`,
		schema.Users.Table, usersColumns)
	sqlUserByID = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		usersColumns, schema.Users.Table, schema.Users.ID)
	sqlUserCredentials = fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`,
		schema.Users.ID, schema.Users.PasswordHash, schema.Users.Table, schema.Users.Username)

	sqlRefreshInsert = fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4)`,
		schema.RefreshTokens.Table, refreshTokensColumns)
	sqlRefreshByToken = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		refreshTokensColumns, schema.RefreshTokens.Table, schema.RefreshTokens.Token)
	sqlRefreshDeleteByToken = fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.RefreshTokens.Table, schema.RefreshTokens.Token)
	sqlRefreshDeleteByUser = fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.RefreshTokens.Table, schema.RefreshTokens.UserID)
)

// # Store

// PostgresStore implements [Store] on top of a [database.Port].
//
// Storage errors are mapped to [apperr.AppError] values through [dberr.Wrap]
// so no driver detail leaks past this file.
type PostgresStore struct {
	port database.Port
	unit postgresUnit
}

// NewPostgresStore creates a [PostgresStore].
func NewPostgresStore(port database.Port) *PostgresStore {
	return &PostgresStore{
		port: port,
		unit: newPostgresUnit(port),
	}
}

// Users returns the pooled, non-transactional user repository.
func (store *PostgresStore) Users() UserRepository { return store.unit.users }

// RefreshTokens returns the pooled, non-transactional refresh token repository.
func (store *PostgresStore) RefreshTokens() RefreshTokenRepository { return store.unit.tokens }

/*
WithinTx runs fn against repositories bound to one PostgreSQL transaction.

Parameters:
  - ctx: context.Context
  - fn: func(ctx, UnitOfWork) error

Returns:
  - error: fn's error (already classified errors pass through), or DB_ERROR
    if begin/commit fails. Unclassified errors stay reachable via errors.Is.
*/
func (store *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error {
	err := database.WithTx(ctx, store.port, func(ctx context.Context, tx database.Transaction) error {
		return fn(ctx, newPostgresUnit(tx))
	})
	return dberr.Wrap(err, "postgres_store_tx_failed")
}

// postgresUnit pairs both repositories on the same querier.
type postgresUnit struct {
	users  *PostgresUserRepository
	tokens *PostgresRefreshTokenRepository
}

func newPostgresUnit(querier database.Querier) postgresUnit {
	return postgresUnit{
		users:  &PostgresUserRepository{querier: querier},
		tokens: &PostgresRefreshTokenRepository{querier: querier},
	}
}

func (unit postgresUnit) Users() UserRepository                 { return unit.users }
func (unit postgresUnit) RefreshTokens() RefreshTokenRepository { return unit.tokens }

// # User Repository

// PostgresUserRepository implements [UserRepository] against the users table.
type PostgresUserRepository struct {
	querier database.Querier
}

/*
Create inserts a new row into users.

Parameters:
  - context: context.Context
  - username: string
  - passwordHash: string

Returns:
  - string: New user ID (UUIDv7)
  - error: DB_ERROR on unique violation or connectivity fault
*/
func (repository *PostgresUserRepository) Create(context context.Context, username, passwordHash string) (string, error) {
	id := uuid.New()
	statement := database.NewStatement("users_create", sqlUserInsert, id, username, passwordHash, time.Now().UTC())

	if _, err := repository.querier.Execute(context, statement); err != nil {
		return "", dberr.Wrap(err, "postgres_user_repo_create_failed")
	}

	return id, nil
}

/*
FindByID fetches a user by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated entity
  - error: NOT_FOUND if absent, DB_ERROR otherwise
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	var user User
	found, err := repository.querier.FetchOptional(
		context,
		database.NewStatement("users_find_by_id", sqlUserByID, id),
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_id_failed")
	}
	if !found {
		return nil, apperr.NotFound("User")
	}

	return &user, nil
}

/*
FindCredentialMaterial returns the ID and hash stored for username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *CredentialMaterial: nil when no such user exists
  - error: DB_ERROR
*/
func (repository *PostgresUserRepository) FindCredentialMaterial(context context.Context, username string) (*CredentialMaterial, error) {
	var material CredentialMaterial
	found, err := repository.querier.FetchOptional(
		context,
		database.NewStatement("users_find_credential_material", sqlUserCredentials, username),
		&material.UserID, &material.PasswordHash,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_user_repo_find_credentials_failed")
	}
	if !found {
		return nil, nil
	}

	return &material, nil
}

// # Refresh Token Repository

// PostgresRefreshTokenRepository implements [RefreshTokenRepository] against the refresh_tokens table.
type PostgresRefreshTokenRepository struct {
	querier database.Querier
}

/*
Insert persists a refresh token row.

Parameters:
  - context: context.Context
  - token: string
  - userID: string

Returns:
  - error: DB_ERROR (including the foreign key failure when the user is gone)
*/
func (repository *PostgresRefreshTokenRepository) Insert(context context.Context, token, userID string) error {
	statement := database.NewStatement("refresh_tokens_insert", sqlRefreshInsert, uuid.New(), token, userID, time.Now().UTC())
	if _, err := repository.querier.Execute(context, statement); err != nil {
		return dberr.Wrap(err, "postgres_refresh_repo_insert_failed")
	}
	return nil
}

/*
FindByToken looks up the row holding token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *RefreshToken: nil when absent
  - error: DB_ERROR
*/
func (repository *PostgresRefreshTokenRepository) FindByToken(context context.Context, token string) (*RefreshToken, error) {
	var row RefreshToken
	found, err := repository.querier.FetchOptional(
		context,
		database.NewStatement("refresh_tokens_find_by_token", sqlRefreshByToken, token),
		&row.ID, &row.Token, &row.UserID, &row.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_refresh_repo_find_failed")
	}
	if !found {
		return nil, nil
	}

	return &row, nil
}

/*
DeleteByToken removes the row holding token.

Inside a transaction the row lock taken by DELETE makes this the arbiter
between concurrent rotations of the same token: exactly one caller sees true.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - bool: Whether a row was removed
  - error: DB_ERROR
*/
func (repository *PostgresRefreshTokenRepository) DeleteByToken(context context.Context, token string) (bool, error) {
	affected, err := repository.querier.Execute(context, database.NewStatement("refresh_tokens_delete_by_token", sqlRefreshDeleteByToken, token))
	if err != nil {
		return false, dberr.Wrap(err, "postgres_refresh_repo_delete_failed")
	}
	return affected > 0, nil
}

// DeleteAllForUser removes every refresh token owned by userID.
func (repository *PostgresRefreshTokenRepository) DeleteAllForUser(context context.Context, userID string) (int64, error) {
	affected, err := repository.querier.Execute(context, database.NewStatement("refresh_tokens_delete_all_for_user", sqlRefreshDeleteByUser, userID))
	if err != nil {
		return 0, dberr.Wrap(err, "postgres_refresh_repo_delete_all_failed")
	}
	return affected, nil
}
