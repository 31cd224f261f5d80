// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workerpool_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/taibuivan/yomira-auth/internal/platform/workerpool"
)

/*
TestDo_ReturnsResult verifies values and errors travel back to the caller.
*/
func TestDo_ReturnsResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := workerpool.New(2, 4)

	value, err := workerpool.Do(context.Background(), pool, func() (string, error) {
		return "hashed", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hashed", value)

	boom := errors.New("boom")
	_, err = workerpool.Do(context.Background(), pool, func() (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, pool.Close())
}

/*
TestDo_Exhausted verifies admission fails fast when no worker or slot is free.
*/
func TestDo_Exhausted(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := workerpool.New(1, 0)

	started := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		_, err := workerpool.Do(context.Background(), pool, func() (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		firstDone <- err
	}()

	<-started

	_, err := workerpool.Do(context.Background(), pool, func() (int, error) { return 2, nil })
	assert.ErrorIs(t, err, workerpool.ErrPoolExhausted)

	close(release)
	require.NoError(t, <-firstDone)
	require.NoError(t, pool.Close())
}

/*
TestDo_NoQueueAdmitsWhenIdle verifies a pool without a queue runs jobs while a worker is free.
*/
func TestDo_NoQueueAdmitsWhenIdle(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := workerpool.New(1, 0)

	for i := range 1000 {
		value, err := workerpool.Do(context.Background(), pool, func() (int, error) { return i, nil })
		require.NoError(t, err, "submission %d", i)
		assert.Equal(t, i, value)
	}

	require.NoError(t, pool.Close())
}

/*
TestDo_CallerCancellation verifies the caller is released while the job keeps running.
*/
func TestDo_CallerCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := workerpool.New(1, 1)

	var finished atomic.Bool
	release := make(chan struct{})
	started := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-started
		cancel()
	}()

	_, err := workerpool.Do(ctx, pool, func() (int, error) {
		close(started)
		<-release
		finished.Store(true)
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, finished.Load())

	close(release)
	require.NoError(t, pool.Close())
	assert.True(t, finished.Load())
}

/*
TestDo_RecoversPanics verifies a panicking job surfaces as an error.
*/
func TestDo_RecoversPanics(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := workerpool.New(1, 1)

	_, err := workerpool.Do(context.Background(), pool, func() (int, error) {
		panic("argon2 exploded")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argon2 exploded")

	require.NoError(t, pool.Close())
}

/*
TestClose_RejectsNewJobs verifies submissions after shutdown fail and Close is idempotent.
*/
func TestClose_RejectsNewJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := workerpool.New(1, 1)
	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := workerpool.Do(ctx, pool, func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, workerpool.ErrPoolClosed)
}
