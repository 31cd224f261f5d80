// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/yomira-auth/internal/platform/ctxkey"
	"github.com/taibuivan/yomira-auth/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Request Metadata

// RequestMeta carries facts learned while a request is served back out to the
// middleware that started it. Only the goroutine serving the request writes it.
type RequestMeta struct {
	UserID string
}

// WithRequestMeta returns a new context holding meta.
func WithRequestMeta(ctx context.Context, meta *RequestMeta) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestMeta, meta)
}

// GetRequestMeta retrieves the [*RequestMeta] or nil when no access log owns one.
func GetRequestMeta(ctx context.Context) *RequestMeta {
	meta, _ := ctx.Value(ctxkey.KeyRequestMeta).(*RequestMeta)
	return meta
}

// # Identity & Access

// WithAuthUser returns a new context with the provided auth claims attached.
//
// The subject is also recorded in the request metadata, if any, so the
// access log line names the caller.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	if meta := GetRequestMeta(ctx); meta != nil && user != nil {
		meta.UserID = user.UserID()
	}
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser retrieves the [*sec.AuthClaims] from the [context.Context].
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}
