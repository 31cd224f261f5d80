// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/taibuivan/yomira-auth/internal/platform/apperr"
	"github.com/taibuivan/yomira-auth/internal/platform/workerpool"
)

// Argon2id cost parameters.
const (
	argon2Memory  = 15000 // KiB
	argon2Time    = 2
	argon2Threads = 1
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// dummyHash is a well-formed hash that no password matches. Verifying against
// it costs the same as verifying against a stored hash.
const dummyHash = "$argon2id$v=19$m=15000,t=2,p=1$c29tZXNhbHRzb21lc2FsdA$dGltaW5nLWVxdWFsaXphdGlvbi1wbGFjZWhvbGRlciE"

// ErrInvalidCredentials is the single failure returned for any password check
// that does not succeed. It never says why.
var ErrInvalidCredentials = apperr.Unauthorized("Invalid credentials")

// errMalformedHash marks an encoded hash that cannot be parsed.
var errMalformedHash = errors.New("sec: malformed password hash")

// PasswordHasher hashes and verifies passwords off the request goroutine.
type PasswordHasher interface {
	// Hash returns a self-describing PHC string for password.
	Hash(ctx context.Context, password string) (string, error)

	// Verify returns nil when password matches encoded, ErrInvalidCredentials otherwise.
	Verify(ctx context.Context, password, encoded string) error

	// VerifyDummy performs a full verification that always fails.
	VerifyDummy(ctx context.Context, password string) error
}

// # Argon2id Primitive

// Argon2Hasher computes argon2id hashes synchronously on the calling goroutine.
type Argon2Hasher struct{}

// HashPassword hashes password with a fresh random salt.
func (Argon2Hasher) HashPassword(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("sec_hash_salt_failed: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=15000,t=2,p=1$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// CheckPasswordHash reports whether password matches encoded. A malformed
// encoded string yields errMalformedHash.
func (Argon2Hasher) CheckPasswordHash(password, encoded string) (bool, error) {
	params, salt, expected, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

func decodeHash(encoded string) (argon2Params, []byte, []byte, error) {
	var params argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, errMalformedHash
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return params, nil, nil, errMalformedHash
	}
	if threads == 0 || threads > 255 || iterations == 0 {
		return params, nil, nil, errMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return params, nil, nil, errMalformedHash
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > 1024 {
		return params, nil, nil, errMalformedHash
	}

	params = argon2Params{memory: memory, time: iterations, threads: uint8(threads)}
	return params, salt, expected, nil
}

// # Pooled Hasher

// PooledHasher dispatches [Argon2Hasher] work onto a [workerpool.Pool].
type PooledHasher struct {
	pool   *workerpool.Pool
	hasher Argon2Hasher
}

// NewPooledHasher constructs a [PooledHasher] backed by pool.
func NewPooledHasher(pool *workerpool.Pool) *PooledHasher {
	return &PooledHasher{pool: pool}
}

/*
Hash produces an argon2id PHC string on a pool worker.

Parameters:
  - ctx: context.Context
  - password: string

Returns:
  - string: Encoded hash
  - error: apperr.Unexpected on dispatch or entropy failure
*/
func (hasher *PooledHasher) Hash(ctx context.Context, password string) (string, error) {
	encoded, err := workerpool.Do(ctx, hasher.pool, func() (string, error) {
		return hasher.hasher.HashPassword(password)
	})
	if err != nil {
		return "", apperr.Unexpected(fmt.Errorf("sec_hash_failed: %w", err))
	}
	return encoded, nil
}

/*
Verify checks password against encoded on a pool worker.

Parameters:
  - ctx: context.Context
  - password: string
  - encoded: string

Returns:
  - error: ErrInvalidCredentials on mismatch or malformed hash,
    apperr.Unexpected on dispatch failure
*/
func (hasher *PooledHasher) Verify(ctx context.Context, password, encoded string) error {
	matched, err := workerpool.Do(ctx, hasher.pool, func() (bool, error) {
		return hasher.hasher.CheckPasswordHash(password, encoded)
	})

	switch {
	case errors.Is(err, errMalformedHash):
		return ErrInvalidCredentials.WithCause(err)
	case err != nil:
		return apperr.Unexpected(fmt.Errorf("sec_verify_failed: %w", err))
	case !matched:
		return ErrInvalidCredentials
	}
	return nil
}

// VerifyDummy runs a verification against a hash no password matches.
func (hasher *PooledHasher) VerifyDummy(ctx context.Context, password string) error {
	if err := hasher.Verify(ctx, password, dummyHash); err != nil {
		return err
	}
	return ErrInvalidCredentials
}
