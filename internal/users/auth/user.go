// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the credential lifecycle of yomira-auth.

It defines the identity entities (User, RefreshToken), the validated
Credentials value, the repositories behind them, and the Service that
sequences registration, login, refresh-token rotation and logout.

# Architecture

Entities defined here carry no storage or transport types. Repositories are
reached through the [Store] interface so the same Service runs against
PostgreSQL in production and the in-memory store of package authtest in tests.
*/
package auth

import "time"

// # Domain Entities

// User is a registered identity. It is never mutated after registration.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken is one outstanding renewal credential.
//
// Possessing Token and finding its row is the sole authorization for rotation.
// A deleted Token never matches a row again.
type RefreshToken struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CredentialMaterial is the minimum needed to authenticate a username.
type CredentialMaterial struct {
	UserID       string
	PasswordHash string
}
