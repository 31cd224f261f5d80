// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package database

import (
	"context"
	"errors"
	"fmt"
)

/*
WithTx begins a transaction, runs fn with it, and then commits on success or
rolls back on error or panic. Panics are rethrown after the rollback.

Parameters:
  - ctx: context.Context
  - port: Port
  - fn: func(ctx, Transaction) error

Returns:
  - error: fn's error (joined with any rollback failure), or the begin/commit failure
*/
func WithTx(ctx context.Context, port Port, fn func(ctx context.Context, tx Transaction) error) (err error) {
	tx, err := port.Begin(ctx)
	if err != nil {
		return fmt.Errorf("database_begin_failed: %w", err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(recovered)
		}

		if err != nil {
			if rollbackErr := tx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
				err = errors.Join(err, fmt.Errorf("database_rollback_failed: %w", rollbackErr))
			}
			return
		}

		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("database_commit_failed: %w", commitErr)
		}
	}()

	return fn(ctx, tx)
}
