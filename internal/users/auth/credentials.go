// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/yomira-auth/internal/platform/validate"
)

// Credentials is a validated username/password pair.
//
// The zero value is not valid. The only way to obtain one is [ParseCredentials].
type Credentials struct {
	username string
	password string
}

/*
ParseCredentials validates raw input into [Credentials].

Both fields must be non-empty after trimming and at most [MaxCredentialLength]
grapheme clusters long. The username is stored trimmed and NFC-normalized so
visually identical names collide. The password is kept exactly as typed.

Parameters:
  - username: string
  - password: string

Returns:
  - Credentials: Validated value
  - error: apperr VALIDATION_ERROR with per-field details
*/
func ParseCredentials(username, password string) (Credentials, error) {
	trimmedUsername := norm.NFC.String(strings.TrimSpace(username))
	trimmedPassword := strings.TrimSpace(password)

	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, trimmedUsername).
		MaxGraphemes(FieldUsername, trimmedUsername, MaxCredentialLength).
		Required(FieldPassword, trimmedPassword).
		MaxGraphemes(FieldPassword, trimmedPassword, MaxCredentialLength)

	if err := validator.Err(); err != nil {
		return Credentials{}, err
	}

	return Credentials{username: trimmedUsername, password: password}, nil
}

// Username returns the normalized username.
func (c Credentials) Username() string { return c.username }

// Password returns the password as typed.
func (c Credentials) Password() string { return c.password }

// String never reveals the password.
func (c Credentials) String() string { return "Credentials{username:" + c.username + "}" }

// GoString keeps %#v from printing the password.
func (c Credentials) GoString() string { return c.String() }
