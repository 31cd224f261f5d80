// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-auth/internal/platform/database"
)

type recordingTx struct {
	committed   bool
	rolledBack  bool
	commitErr   error
	rollbackErr error
}

func (tx *recordingTx) Execute(context.Context, database.Statement) (int64, error) { return 1, nil }

func (tx *recordingTx) FetchOptional(context.Context, database.Statement, ...any) (bool, error) {
	return false, nil
}

func (tx *recordingTx) Commit(context.Context) error {
	tx.committed = true
	return tx.commitErr
}

func (tx *recordingTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return tx.rollbackErr
}

type recordingPort struct {
	recordingTx
	tx       *recordingTx
	beginErr error
}

func (port *recordingPort) Begin(context.Context) (database.Transaction, error) {
	if port.beginErr != nil {
		return nil, port.beginErr
	}
	return port.tx, nil
}

/*
TestWithTx_Commit verifies a successful function commits exactly once.
*/
func TestWithTx_Commit(t *testing.T) {
	port := &recordingPort{tx: &recordingTx{}}

	err := database.WithTx(context.Background(), port, func(ctx context.Context, tx database.Transaction) error {
		affected, err := tx.Execute(ctx, database.NewStatement("noop", "SELECT 1"))
		assert.Equal(t, int64(1), affected)
		return err
	})

	require.NoError(t, err)
	assert.True(t, port.tx.committed)
	assert.False(t, port.tx.rolledBack)
}

/*
TestWithTx_RollbackOnError verifies the function error is returned and nothing is committed.
*/
func TestWithTx_RollbackOnError(t *testing.T) {
	port := &recordingPort{tx: &recordingTx{rollbackErr: errors.New("conn reset")}}
	boom := errors.New("boom")

	err := database.WithTx(context.Background(), port, func(context.Context, database.Transaction) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "database_rollback_failed")
	assert.False(t, port.tx.committed)
	assert.True(t, port.tx.rolledBack)
}

/*
TestWithTx_RollbackOnPanic verifies panics roll back and propagate.
*/
func TestWithTx_RollbackOnPanic(t *testing.T) {
	port := &recordingPort{tx: &recordingTx{}}

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = database.WithTx(context.Background(), port, func(context.Context, database.Transaction) error {
			panic("kaboom")
		})
	})
	assert.True(t, port.tx.rolledBack)
	assert.False(t, port.tx.committed)
}

/*
TestWithTx_BeginAndCommitFailures verifies infrastructure failures are tagged.
*/
func TestWithTx_BeginAndCommitFailures(t *testing.T) {
	port := &recordingPort{beginErr: errors.New("pool closed")}
	err := database.WithTx(context.Background(), port, func(context.Context, database.Transaction) error {
		t.Fatal("fn must not run when Begin fails")
		return nil
	})
	assert.ErrorContains(t, err, "database_begin_failed")

	port = &recordingPort{tx: &recordingTx{commitErr: errors.New("serialization failure")}}
	err = database.WithTx(context.Background(), port, func(context.Context, database.Transaction) error {
		return nil
	})
	assert.ErrorContains(t, err, "database_commit_failed")
}
