// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestToPgx5Scheme verifies DSN scheme rewriting for the pgx5 migrate driver.
*/
func TestToPgx5Scheme(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/auth", "pgx5://u:p@db:5432/auth"},
		{"postgresql://u:p@db:5432/auth?sslmode=disable", "pgx5://u:p@db:5432/auth?sslmode=disable"},
		{"pgx5://u:p@db:5432/auth", "pgx5://u:p@db:5432/auth"},
		{"host=db user=u", "host=db user=u"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, toPgx5Scheme(tt.in))
		})
	}
}
