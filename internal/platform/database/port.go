// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package database defines the narrow query interface the domain layer depends on.

Repositories never see a driver type. They issue parameterized [Statement]
values through a [Querier], which is either the pooled connection or an open
[Transaction].

Architecture:

  - Port: pooled, non-transactional access plus [Port.Begin].
  - Transaction: exclusive unit of work, invisible to others until Commit.
  - Adapters: internal/platform/postgres provides the pgx implementation.
*/
package database

import (
	"context"
	"errors"
)

// ErrTxClosed is returned by adapters when a finished transaction is reused.
var ErrTxClosed = errors.New("database: transaction already closed")

// Statement is a named, parameterized SQL statement.
//
// Name identifies the statement in logs and error tags. Args are always bound
// as parameters, never concatenated into SQL.
type Statement struct {
	Name string
	SQL  string
	Args []any
}

// NewStatement builds a [Statement].
func NewStatement(name, sql string, args ...any) Statement {
	return Statement{Name: name, SQL: sql, Args: args}
}

// Querier executes statements.
type Querier interface {
	// Execute runs a statement that returns no rows and reports rows affected.
	Execute(ctx context.Context, statement Statement) (int64, error)

	// FetchOptional scans at most one row into dest. It reports false, with a
	// nil error, when the statement matched nothing.
	FetchOptional(ctx context.Context, statement Statement, dest ...any) (bool, error)
}

// Transaction is a [Querier] whose effects become visible only on Commit.
type Transaction interface {
	Querier
	Commit(ctx context.Context) error
	// Rollback abandons the transaction. Calling it after Commit is a no-op.
	Rollback(ctx context.Context) error
}

// Port is the pooled entry point to the database.
type Port interface {
	Querier
	Begin(ctx context.Context) (Transaction, error)
}
