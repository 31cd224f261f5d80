// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for identities.
type UserRepository interface {

	/*
		Create persists a brand-new user with an already computed password hash.

		Parameters:
		  - context: context.Context
		  - username: string (already normalized)
		  - passwordHash: string (PHC encoded)

		Returns:
		  - string: New time-ordered user ID
		  - error: DB_ERROR on duplicate username or connectivity fault
	*/
	Create(context context.Context, username, passwordHash string) (string, error)

	/*
		FindByID returns the user with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: NOT_FOUND if absent, DB_ERROR otherwise
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindCredentialMaterial returns the ID and password hash for username.

		Parameters:
		  - context: context.Context
		  - username: string (already normalized)

		Returns:
		  - *CredentialMaterial: nil when no such user exists
		  - error: DB_ERROR only
	*/
	FindCredentialMaterial(context context.Context, username string) (*CredentialMaterial, error)
}

// # Refresh Token Data Access

// RefreshTokenRepository defines the data access contract for renewal credentials.
type RefreshTokenRepository interface {

	/*
		Insert stores a newly issued refresh token for userID.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	Insert(context context.Context, token, userID string) error

	/*
		FindByToken returns the row holding token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *RefreshToken: nil when absent
		  - error: DB_ERROR only
	*/
	FindByToken(context context.Context, token string) (*RefreshToken, error)

	/*
		DeleteByToken removes the row holding token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - bool: Whether a row was removed (false is not an error)
		  - error: Persistence failures
	*/
	DeleteByToken(context context.Context, token string) (bool, error)

	/*
		DeleteAllForUser removes every refresh token belonging to userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int64: Number of rows removed
		  - error: Persistence failures
	*/
	DeleteAllForUser(context context.Context, userID string) (int64, error)
}

// # Unit of Work

// UnitOfWork exposes repositories bound to one connection or transaction.
type UnitOfWork interface {
	Users() UserRepository
	RefreshTokens() RefreshTokenRepository
}

// Store is the persistence entry point used by [Service].
type Store interface {
	UnitOfWork

	// WithinTx runs fn against repositories bound to a single transaction.
	// The transaction commits if fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
