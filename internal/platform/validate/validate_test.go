// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-auth/internal/platform/apperr"
	"github.com/taibuivan/yomira-auth/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "username", "alice", false},
		{"empty_string", "username", "", true},
		{"whitespace_only", "username", " \t\n ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_MaxGraphemes checks user-perceived length rather than bytes or runes.
*/
func TestValidator_MaxGraphemes(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"ascii_at_limit", "abcdefghijkl", true},
		{"ascii_over_limit", "abcdefghijklm", false},
		// 12 x ('e' + U+0301): 24 runes, 12 graphemes.
		{"combining_at_limit", strings.Repeat("e\u0301", 12), true},
		{"combining_over_limit", strings.Repeat("e\u0301", 13), false},
		// Devanagari conjuncts: many bytes per cluster.
		{"devanagari_short", "नमस्ते", true},
		// Family emoji is a single ZWJ sequence.
		{"zwj_sequence", "👨‍👩‍👧‍👦👨‍👩‍👧‍👦👨‍👩‍👧‍👦", true},
		{"cjk_over_limit", "一二三四五六七八九十一二三", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.MaxGraphemes("username", tt.value, 12)
			assert.Equal(t, tt.isValid, v.Err() == nil)
		})
	}
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("username", "").                             // Fails
		MaxGraphemes("username", "", 12).                     // Passes
		Required("password", "x").                            // Passes
		MaxGraphemes("password", "this-is-far-too-long", 12). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate both failures in order
	require.Len(t, ae.Details, 2)
	assert.Equal(t, "username", ae.Details[0].Field)
	assert.Equal(t, "password", ae.Details[1].Field)
}
