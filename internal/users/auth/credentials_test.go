// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-auth/internal/platform/apperr"
	"github.com/taibuivan/yomira-auth/internal/users/auth"
)

/*
TestParseCredentials_Accepts verifies that 1 to 12 grapheme clusters pass in any script.
*/
func TestParseCredentials_Accepts(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"single character", "a", "b"},
		{"ascii at limit", strings.Repeat("u", 12), "Secret123!ab"},
		{"combining marks at limit", strings.Repeat("e\u0301", 12), "pa\u0308ssword"},
		{"devanagari clusters", "नमस्ते", "क्षत्रिय"},
		{"emoji zwj sequences", strings.Repeat("👩‍💻", 12), "🔑"},
		{"cjk", "山田太郎", "パスワード"},
		{"surrounding whitespace", "  alice  ", "\tSecret123!\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ParseCredentials(tt.username, tt.password)
			assert.NoError(t, err)
		})
	}
}

/*
TestParseCredentials_Rejects verifies empty and over-long values in both fields.
*/
func TestParseCredentials_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		fields   []string
	}{
		{"empty username", "", "Secret123!", []string{auth.FieldUsername}},
		{"blank password", "alice", "   ", []string{auth.FieldPassword}},
		{"ascii too long", strings.Repeat("u", 13), "x", []string{auth.FieldUsername}},
		{"combining marks too long", "alice", strings.Repeat("e\u0301", 13), []string{auth.FieldPassword}},
		{"both empty", " ", "", []string{auth.FieldUsername, auth.FieldPassword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ParseCredentials(tt.username, tt.password)
			require.Error(t, err)

			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperr.CodeValidation, appErr.Code)

			var fields []string
			for _, detail := range appErr.Details {
				if len(fields) == 0 || fields[len(fields)-1] != detail.Field {
					fields = append(fields, detail.Field)
				}
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

/*
TestParseCredentials_Normalization verifies the username is trimmed and NFC
normalized while the password is kept as typed.
*/
func TestParseCredentials_Normalization(t *testing.T) {
	credentials, err := auth.ParseCredentials("  Jose\u0301 ", " pass word ")
	require.NoError(t, err)

	assert.Equal(t, "Jos\u00e9", credentials.Username())
	assert.Equal(t, " pass word ", credentials.Password())
}

/*
TestCredentials_DoNotLeakPassword verifies formatting never prints the password.
*/
func TestCredentials_DoNotLeakPassword(t *testing.T) {
	credentials, err := auth.ParseCredentials("alice", "Secret123!")
	require.NoError(t, err)

	for _, format := range []string{"%v", "%+v", "%#v", "%s"} {
		assert.NotContains(t, fmt.Sprintf(format, credentials), "Secret123!", format)
	}
}
