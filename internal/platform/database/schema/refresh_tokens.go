// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// RefreshTokensTable represents the 'refresh_tokens' table
type RefreshTokensTable struct {
	Table     string
	ID        string
	Token     string
	UserID    string
	CreatedAt string
}

// RefreshTokens is the schema definition for refresh_tokens
var RefreshTokens = RefreshTokensTable{
	Table:     "refresh_tokens",
	ID:        "id",
	Token:     "token",
	UserID:    "user_id",
	CreatedAt: "created_at",
}

// Columns returns all standard column names
func (t RefreshTokensTable) Columns() []string {
	return []string{t.ID, t.Token, t.UserID, t.CreatedAt}
}
