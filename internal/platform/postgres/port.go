// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yomira-auth/internal/platform/database"
	"github.com/taibuivan/yomira-auth/internal/platform/dberr"
)

// Conn is the subset of pgx shared by pools, connections and transactions.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxStarter is a [Conn] that can open transactions. Both [*pgxpool.Pool]
// and pgxmock pools satisfy it.
type TxStarter interface {
	Conn
	Begin(ctx context.Context) (pgx.Tx, error)
}

// # Port Adapter

// Port adapts a pgx pool to [database.Port].
type Port struct {
	querier
	pool TxStarter
}

var _ database.Port = (*Port)(nil)

// NewPort wraps pool.
func NewPort(pool TxStarter) *Port {
	return &Port{querier: querier{conn: pool}, pool: pool}
}

// Begin opens a transaction on a pooled connection.
func (port *Port) Begin(ctx context.Context) (database.Transaction, error) {
	tx, err := port.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_begin")
	}
	return &transaction{querier: querier{conn: tx}, tx: tx}, nil
}

type querier struct {
	conn Conn
}

// Execute implements [database.Querier].
func (q querier) Execute(ctx context.Context, statement database.Statement) (int64, error) {
	tag, err := q.conn.Exec(ctx, statement.SQL, statement.Args...)
	if err != nil {
		return 0, dberr.Wrap(err, statement.Name)
	}
	return tag.RowsAffected(), nil
}

// FetchOptional implements [database.Querier].
func (q querier) FetchOptional(ctx context.Context, statement database.Statement, dest ...any) (bool, error) {
	err := q.conn.QueryRow(ctx, statement.SQL, statement.Args...).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, dberr.Wrap(err, statement.Name)
	}
	return true, nil
}

// # Transaction Adapter

type transaction struct {
	querier
	tx pgx.Tx
}

// Commit implements [database.Transaction].
func (t *transaction) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return database.ErrTxClosed
		}
		return dberr.Wrap(err, "postgres_commit")
	}
	return nil
}

// Rollback implements [database.Transaction].
func (t *transaction) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return dberr.Wrap(err, "postgres_rollback")
	}
	return nil
}
