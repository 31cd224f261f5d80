// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taibuivan/yomira-auth/internal/platform/apperr"
	"github.com/taibuivan/yomira-auth/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-auth/internal/platform/dberr"
	"github.com/taibuivan/yomira-auth/internal/platform/sec"
)

// errRotationLost means another request consumed the same refresh token first.
var errRotationLost = errors.New("auth: refresh token consumed concurrently")

// # Contracts & Types

// TokenProvider signs and verifies access and refresh tokens.
type TokenProvider interface {
	Issue(userID string, kind sec.TokenKind) (string, error)
	Verify(token string, kind sec.TokenKind) (*sec.AuthClaims, error)
}

// ServiceOptions tunes security trade-offs of [Service].
type ServiceOptions struct {
	// LoginTimingEqualization runs a dummy password verification when the
	// username is unknown, so both failures cost one argon2 computation.
	LoginTimingEqualization bool
}

// Session is the outcome of every use case that authenticates a caller.
type Session struct {
	UserID        string
	AccessToken   string
	RefreshToken  string
	RefreshCookie *http.Cookie
}

// Service implements the credential lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, rotation,
// or revocation logic must be reviewed by the security team.
type Service struct {
	store   Store
	hasher  sec.PasswordHasher
	tokens  TokenProvider
	options ServiceOptions
}

// NewService constructs a new [Service] with its dependencies.
func NewService(store Store, hasher sec.PasswordHasher, tokens TokenProvider, options ServiceOptions) *Service {
	return &Service{
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		options: options,
	}
}

// # Registration Flow

/*
Register validates the credentials, creates the user and opens its first session.

The password is hashed before the transaction opens, so no pooled connection
waits on the hasher. The user row and its first refresh token are then written
in one transaction, so a failure after the user is created leaves no account
behind.

Parameters:
  - ctx: context.Context
  - username: string
  - password: string

Returns:
  - *Session: Fresh token pair for the new user
  - error: VALIDATION_ERROR, DB_ERROR (duplicate username included) or UNEXPECTED_ERROR
*/
func (service *Service) Register(ctx context.Context, username, password string) (*Session, error) {
	credentials, err := ParseCredentials(username, password)
	if err != nil {
		return nil, err
	}

	passwordHash, err := service.hasher.Hash(ctx, credentials.Password())
	if err != nil {
		return nil, err
	}

	var session *Session
	err = service.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		userID, err := uow.Users().Create(ctx, credentials.Username(), passwordHash)
		if err != nil {
			return err
		}

		session, err = service.openSession(ctx, uow, userID)
		return err
	})
	if dberr.IsUniqueViolation(err) {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "register_username_conflict")
	}
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_registered", slog.String("user_id", session.UserID))
	return session, nil
}

// # Login Flow

/*
Login authenticates a username/password pair and opens a new session.

Unknown usernames and wrong passwords fail with the same error. When presented
is non-empty it is treated as the caller's previous session: its row is
deleted, and if no row exists every session of the authenticated user is
revoked, since an unknown token in a live cookie implies a replayed one.

Parameters:
  - ctx: context.Context
  - username: string
  - password: string
  - presented: string (refresh token from the request cookie, may be empty)

Returns:
  - *Session: Fresh token pair
  - error: VALIDATION_ERROR, UNAUTHORIZED, DB_ERROR or UNEXPECTED_ERROR
*/
func (service *Service) Login(ctx context.Context, username, password, presented string) (*Session, error) {
	credentials, err := ParseCredentials(username, password)
	if err != nil {
		return nil, err
	}

	userID, err := service.authenticate(ctx, credentials)
	if err != nil {
		return nil, err
	}

	var session *Session
	err = service.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		if presented != "" {
			if err := service.discardPresented(ctx, uow, userID, presented); err != nil {
				return err
			}
		}

		session, err = service.openSession(ctx, uow, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// authenticate resolves credentials to a user ID.
func (service *Service) authenticate(ctx context.Context, credentials Credentials) (string, error) {
	material, err := service.store.Users().FindCredentialMaterial(ctx, credentials.Username())
	if err != nil {
		return "", err
	}

	if material == nil {
		if !service.options.LoginTimingEqualization {
			return "", sec.ErrInvalidCredentials
		}
		if err := service.hasher.VerifyDummy(ctx, credentials.Password()); apperr.Is(err, apperr.CodeUnexpected) {
			return "", err
		}
		return "", sec.ErrInvalidCredentials
	}

	if err := service.hasher.Verify(ctx, credentials.Password(), material.PasswordHash); err != nil {
		return "", err
	}

	return material.UserID, nil
}

// discardPresented removes the refresh token a logging-in caller still held.
func (service *Service) discardPresented(ctx context.Context, uow UnitOfWork, userID, presented string) error {
	row, err := uow.RefreshTokens().FindByToken(ctx, presented)
	if err != nil {
		return err
	}

	if row == nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "login_presented_unknown_refresh_token",
			slog.String("user_id", userID),
		)
		if _, err := uow.RefreshTokens().DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
	}

	_, err = uow.RefreshTokens().DeleteByToken(ctx, presented)
	return err
}

// # Refresh Flow

/*
Refresh consumes a refresh token and issues its successor.

A token with no row has already been rotated or revoked. Presenting it again
is treated as theft and every refresh token of its subject is revoked. The
delete of the consumed row and the insert of its successor share one
transaction, and the delete's row count decides which of two concurrent
callers wins.

Parameters:
  - ctx: context.Context
  - presented: string

Returns:
  - *Session: Successor token pair
  - error: UNAUTHORIZED on any token problem, NOT_FOUND if the user is gone,
    DB_ERROR or UNEXPECTED_ERROR otherwise
*/
func (service *Service) Refresh(ctx context.Context, presented string) (*Session, error) {
	if presented == "" {
		return nil, apperr.Unauthorized(msgRefreshMissing)
	}

	row, err := service.store.RefreshTokens().FindByToken(ctx, presented)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, service.revokeReplayed(ctx, presented)
	}

	logger := ctxutil.GetLogger(ctx)

	claims, err := service.tokens.Verify(presented, sec.RefreshToken)
	switch {
	case errors.Is(err, sec.ErrTokenExpired):
		logger.WarnContext(ctx, "refresh_token_expired", slog.String("user_id", row.UserID))
		if _, err := service.store.RefreshTokens().DeleteByToken(ctx, presented); err != nil {
			return nil, err
		}
		return nil, apperr.Unauthorized(msgRefreshExpired)
	case err != nil:
		return nil, apperr.Unauthorized(msgRefreshInvalid).WithCause(err)
	}

	userID := claims.UserID()
	if row.UserID != userID {
		logger.WarnContext(ctx, "refresh_token_subject_mismatch",
			slog.String("row_user_id", row.UserID),
			slog.String("claimed_user_id", userID),
		)
		return nil, apperr.Unauthorized(msgRefreshInvalid)
	}

	var session *Session
	err = service.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		deleted, err := uow.RefreshTokens().DeleteByToken(ctx, presented)
		if err != nil {
			return err
		}
		if !deleted {
			return errRotationLost
		}

		if _, err := uow.Users().FindByID(ctx, userID); err != nil {
			return err
		}

		session, err = service.openSession(ctx, uow, userID)
		return err
	})

	if errors.Is(err, errRotationLost) {
		return nil, service.revokeSubject(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// revokeReplayed handles a refresh token that has no row.
//
// Only a token whose signature verifies names a subject worth revoking.
// Expired tokens still qualify.
func (service *Service) revokeReplayed(ctx context.Context, presented string) error {
	claims, err := service.tokens.Verify(presented, sec.RefreshToken)
	if err != nil && !errors.Is(err, sec.ErrTokenExpired) {
		return apperr.Unauthorized(msgRefreshInvalid).WithCause(err)
	}
	if claims == nil || claims.UserID() == "" {
		return apperr.Unauthorized(msgRefreshInvalid)
	}

	return service.revokeSubject(ctx, claims.UserID())
}

// revokeSubject deletes every refresh token of userID. It always returns
// UNAUTHORIZED, even when the revocation itself fails.
func (service *Service) revokeSubject(ctx context.Context, userID string) error {
	logger := ctxutil.GetLogger(ctx)
	logger.WarnContext(ctx, "refresh_token_reuse_detected", slog.String("user_id", userID))

	revoked, err := service.store.RefreshTokens().DeleteAllForUser(ctx, userID)
	if err != nil {
		logger.ErrorContext(ctx, "reuse_revocation_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return apperr.Unauthorized(msgRefreshReuse).WithCause(err)
	}

	logger.InfoContext(ctx, "refresh_tokens_revoked",
		slog.String("user_id", userID),
		slog.Int64("count", revoked),
	)
	return apperr.Unauthorized(msgRefreshReuse)
}

// # Logout Flow

/*
Logout revokes the presented refresh token.

Logging out without a token, or with one that is already gone, succeeds.

Parameters:
  - ctx: context.Context
  - presented: string (may be empty)

Returns:
  - *http.Cookie: Cleared refresh cookie
  - error: DB_ERROR only
*/
func (service *Service) Logout(ctx context.Context, presented string) (*http.Cookie, error) {
	if presented != "" {
		if _, err := service.store.RefreshTokens().DeleteByToken(ctx, presented); err != nil {
			return nil, err
		}
	}
	return ClearedRefreshCookie(), nil
}

// # Identity

// Me returns the user identified by an access token's subject.
func (service *Service) Me(ctx context.Context, userID string) (*User, error) {
	return service.store.Users().FindByID(ctx, userID)
}

// # Helpers

// openSession issues a token pair for userID and records the refresh token.
func (service *Service) openSession(ctx context.Context, uow UnitOfWork, userID string) (*Session, error) {
	accessToken, err := service.tokens.Issue(userID, sec.AccessToken)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("auth_service_issue_access_failed: %w", err))
	}

	refreshToken, err := service.tokens.Issue(userID, sec.RefreshToken)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("auth_service_issue_refresh_failed: %w", err))
	}

	if err := uow.RefreshTokens().Insert(ctx, refreshToken, userID); err != nil {
		return nil, err
	}

	return &Session{
		UserID:        userID,
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		RefreshCookie: RefreshCookie(refreshToken),
	}, nil
}
