// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Credential Constraints

const (
	// MaxCredentialLength is the maximum number of grapheme clusters in a
	// username or password, measured after trimming surrounding whitespace.
	MaxCredentialLength = 12
)

// # Field Identifiers

// Field names reported in validation details.
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// # Client Messages

// Every refresh failure maps to one of these generic messages.
const (
	msgRefreshMissing = "Refresh token was not found"
	msgRefreshInvalid = "Invalid refresh token"
	msgRefreshExpired = "Refresh token expired"
	msgRefreshReuse   = "Refresh token reuse detected"
)
