// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer through narrow interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/yomira-auth/internal/platform/constants"
	"github.com/taibuivan/yomira-auth/internal/platform/secret"
	"github.com/taibuivan/yomira-auth/pkg/uuid"
)

// # Token Kinds

// TokenKind selects the signing secret and lifetime of a token.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

// String implements [fmt.Stringer].
func (kind TokenKind) String() string {
	switch kind {
	case AccessToken:
		return "access"
	case RefreshToken:
		return "refresh"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(kind))
	}
}

// # Verification Failures

// Verification failures are split so callers can tell a token that aged out
// from one that was tampered with or minted elsewhere.
var (
	ErrTokenExpired        = errors.New("sec: token expired")
	ErrTokenMalformed      = errors.New("sec: token malformed or signature invalid")
	ErrTokenClaimsMismatch = errors.New("sec: token claims mismatch")
)

// # Claims

// AuthClaims is the payload embedded in access and refresh tokens.
//
// Both kinds share this shape. They differ only in signing secret and expiry.
type AuthClaims struct {
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (claims *AuthClaims) UserID() string {
	return claims.Subject
}

// # Codec

// TokenCodec signs and verifies HS256 tokens with a secret per [TokenKind].
type TokenCodec struct {
	issuer        string
	audience      string
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

// NewTokenCodec constructs a [TokenCodec]. The two secrets must be non-empty and distinct.
func NewTokenCodec(issuer, audience string, accessSecret, refreshSecret secret.Secret) (*TokenCodec, error) {
	if issuer == "" || audience == "" {
		return nil, errors.New("sec: issuer and audience are required")
	}
	if accessSecret.IsEmpty() || refreshSecret.IsEmpty() {
		return nil, errors.New("sec: signing secrets are required")
	}
	if accessSecret.Equal(refreshSecret) {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}

	return &TokenCodec{
		issuer:        issuer,
		audience:      audience,
		accessSecret:  []byte(accessSecret.Expose()),
		refreshSecret: []byte(refreshSecret.Expose()),
		now:           time.Now,
	}, nil
}

// WithClock returns a copy of the codec that reads time from now.
func (codec *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	clone := *codec
	clone.now = now
	return &clone
}

func (codec *TokenCodec) material(kind TokenKind) ([]byte, time.Duration, error) {
	switch kind {
	case AccessToken:
		return codec.accessSecret, constants.AccessTokenTTL, nil
	case RefreshToken:
		return codec.refreshSecret, constants.RefreshTokenTTL, nil
	default:
		return nil, 0, fmt.Errorf("sec: unknown token kind %d", int(kind))
	}
}

/*
Issue signs a new token of the given kind for userID.

Parameters:
  - userID: string (becomes the 'sub' claim)
  - kind: TokenKind

Returns:
  - string: Compact JWS
  - error: Signing failures
*/
func (codec *TokenCodec) Issue(userID string, kind TokenKind) (string, error) {
	key, ttl, err := codec.material(kind)
	if err != nil {
		return "", err
	}

	issuedAt := codec.now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   userID,
			Issuer:    codec.issuer,
			Audience:  jwt.ClaimStrings{codec.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sec_token_sign_failed: %w", err)
	}

	return signed, nil
}

/*
Verify checks signature, issuer, audience, and expiry of a token of the given kind.

Parameters:
  - token: string
  - kind: TokenKind

Returns:
  - *AuthClaims: Decoded claims. Also returned alongside ErrTokenExpired,
    since the signature was verified before expiry was checked.
  - error: ErrTokenExpired, ErrTokenMalformed or ErrTokenClaimsMismatch
*/
func (codec *TokenCodec) Verify(token string, kind TokenKind) (*AuthClaims, error) {
	key, _, err := codec.material(kind)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(codec.issuer),
		jwt.WithAudience(codec.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(codec.now),
	)

	claims := &AuthClaims{}
	_, err = parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key, nil
	})

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience):
		return nil, fmt.Errorf("%w: %w", ErrTokenClaimsMismatch, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims, fmt.Errorf("%w: %w", ErrTokenExpired, err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenClaimsMismatch)
	}

	return claims, nil
}

// VerifyAccessToken verifies an access token. It satisfies the middleware's TokenVerifier.
func (codec *TokenCodec) VerifyAccessToken(token string) (*AuthClaims, error) {
	return codec.Verify(token, AccessToken)
}
