// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-auth/internal/platform/apperr"
	"github.com/taibuivan/yomira-auth/internal/platform/database"
	"github.com/taibuivan/yomira-auth/internal/platform/dberr"
	"github.com/taibuivan/yomira-auth/internal/platform/postgres"
	"github.com/taibuivan/yomira-auth/internal/platform/sec"
	"github.com/taibuivan/yomira-auth/internal/platform/secret"
	"github.com/taibuivan/yomira-auth/internal/users/auth"
)

// events is an ordered trace shared by the recording decorators below.
type events []string

// recordingHasher returns a fixed hash so SQL arguments are predictable.
type recordingHasher struct {
	trace *events
}

func (hasher recordingHasher) Hash(context.Context, string) (string, error) {
	*hasher.trace = append(*hasher.trace, "hash")
	return "$argon2id$stub", nil
}
func (recordingHasher) Verify(context.Context, string, string) error { return nil }
func (recordingHasher) VerifyDummy(context.Context, string) error    { return sec.ErrInvalidCredentials }

// recordingPort notes when a transaction is opened.
type recordingPort struct {
	database.Port
	trace *events
}

func (port recordingPort) Begin(ctx context.Context) (database.Transaction, error) {
	*port.trace = append(*port.trace, "begin")
	return port.Port.Begin(ctx)
}

func newPostgresStore(t *testing.T) (pgxmock.PgxPoolIface, *auth.PostgresStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, auth.NewPostgresStore(postgres.NewPort(mock))
}

/*
TestPostgresStore_CreateUser verifies the insert arguments and the duplicate mapping.
*/
func TestPostgresStore_CreateUser(t *testing.T) {
	mock, store := newPostgresStore(t)
	ctx := context.Background()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "alice", "$argon2id$stub", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := store.Users().Create(ctx, "alice", "$argon2id$stub")
	require.NoError(t, err)
	assert.Len(t, id, 36)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "alice", "$argon2id$stub", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"})

	_, err = store.Users().Create(ctx, "alice", "$argon2id$stub")
	assert.True(t, apperr.Is(err, apperr.CodeDatabase))
	assert.True(t, dberr.IsUniqueViolation(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresStore_UserLookups verifies found and absent lookups.
*/
func TestPostgresStore_UserLookups(t *testing.T) {
	mock, store := newPostgresStore(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, username, password_hash, created_at").
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow("u-1", "alice", "hash", createdAt))

	user, err := store.Users().FindByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, createdAt, user.CreatedAt)

	mock.ExpectQuery("SELECT id, username, password_hash, created_at").
		WithArgs("u-2").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}))

	_, err = store.Users().FindByID(ctx, "u-2")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	mock.ExpectQuery("SELECT id, password_hash").
		WithArgs("mallory").
		WillReturnRows(pgxmock.NewRows([]string{"id", "password_hash"}))

	material, err := store.Users().FindCredentialMaterial(ctx, "mallory")
	require.NoError(t, err)
	assert.Nil(t, material)

	mock.ExpectQuery("SELECT id, password_hash").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "password_hash"}).AddRow("u-1", "hash"))

	material, err = store.Users().FindCredentialMaterial(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &auth.CredentialMaterial{UserID: "u-1", PasswordHash: "hash"}, material)

	require.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresStore_RefreshTokens verifies the refresh token statements.
*/
func TestPostgresStore_RefreshTokens(t *testing.T) {
	mock, store := newPostgresStore(t)
	ctx := context.Background()
	tokens := store.RefreshTokens()

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "tok", "u-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, tokens.Insert(ctx, "tok", "u-1"))

	mock.ExpectQuery("SELECT id, token, user_id, created_at").
		WithArgs("tok").
		WillReturnRows(pgxmock.NewRows([]string{"id", "token", "user_id", "created_at"}).
			AddRow("r-1", "tok", "u-1", time.Now()))
	row, err := tokens.FindByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u-1", row.UserID)

	mock.ExpectQuery("SELECT id, token, user_id, created_at").
		WithArgs("gone").
		WillReturnRows(pgxmock.NewRows([]string{"id", "token", "user_id", "created_at"}))
	row, err = tokens.FindByToken(ctx, "gone")
	require.NoError(t, err)
	assert.Nil(t, row)

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token").
		WithArgs("tok").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	deleted, err := tokens.DeleteByToken(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token").
		WithArgs("tok").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	deleted, err = tokens.DeleteByToken(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, deleted)

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE user_id").
		WithArgs("u-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	revoked, err := tokens.DeleteAllForUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), revoked)

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE user_id").
		WithArgs("u-1").
		WillReturnError(errors.New("connection reset by peer"))
	_, err = tokens.DeleteAllForUser(ctx, "u-1")
	assert.True(t, apperr.Is(err, apperr.CodeDatabase))

	require.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresStore_WithinTx verifies commit on success and rollback on failure.
*/
func TestPostgresStore_WithinTx(t *testing.T) {
	mock, store := newPostgresStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token").
		WithArgs("old").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "new", "u-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := store.WithinTx(ctx, func(ctx context.Context, uow auth.UnitOfWork) error {
		if _, err := uow.RefreshTokens().DeleteByToken(ctx, "old"); err != nil {
			return err
		}
		return uow.RefreshTokens().Insert(ctx, "new", "u-1")
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token").
		WithArgs("old").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	lost := errors.New("lost race")
	err = store.WithinTx(ctx, func(ctx context.Context, uow auth.UnitOfWork) error {
		deleted, err := uow.RefreshTokens().DeleteByToken(ctx, "old")
		if err != nil {
			return err
		}
		if !deleted {
			return lost
		}
		return nil
	})
	assert.ErrorIs(t, err, lost)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "new", "u-9", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "refresh_tokens_user_id_fkey"})
	mock.ExpectRollback()

	err = store.WithinTx(ctx, func(ctx context.Context, uow auth.UnitOfWork) error {
		return uow.RefreshTokens().Insert(ctx, "new", "u-9")
	})
	assert.True(t, apperr.Is(err, apperr.CodeDatabase))

	require.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresStore_RegisterHashesOutsideTx verifies the password is hashed
before a connection is pinned by BEGIN, and that the user and its first
refresh token commit together.
*/
func TestPostgresStore_RegisterHashesOutsideTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	var trace events
	store := auth.NewPostgresStore(recordingPort{Port: postgres.NewPort(mock), trace: &trace})

	codec, err := sec.NewTokenCodec("yomira-auth", "yomira-web",
		secret.New(strings.Repeat("a", 32)), secret.New(strings.Repeat("r", 32)))
	require.NoError(t, err)

	service := auth.NewService(store, recordingHasher{trace: &trace}, codec, auth.ServiceOptions{})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "alice", "$argon2id$stub", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	session, err := service.Register(context.Background(), "alice", "Secret123!")
	require.NoError(t, err)
	assert.NotEmpty(t, session.RefreshToken)

	assert.Equal(t, events{"hash", "begin"}, trace)
	require.NoError(t, mock.ExpectationsWereMet())
}
