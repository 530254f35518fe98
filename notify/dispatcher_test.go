/*
 * Copyright 2025 the libris authors.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleRunsTask(t *testing.T) {
	d := NewDispatcher(4)
	defer d.Stop()

	done := make(chan struct{})
	ok := d.Schedule(func(ctx context.Context) error {
		close(done)
		return nil
	})
	require.True(t, ok)
	<-done
}

func TestStopDrainsAcceptedTasks(t *testing.T) {
	d := NewDispatcher(16)

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.True(t, d.Schedule(func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}))
	}
	d.Stop()
	assert.Equal(t, int32(10), ran.Load())
}

func TestScheduleAfterStopIsRejected(t *testing.T) {
	d := NewDispatcher(4)
	d.Stop()

	ok := d.Schedule(func(ctx context.Context) error { return nil })
	assert.False(t, ok)

	// Stop twice is fine.
	d.Stop()
}

func TestFullQueueDropsInsteadOfBlocking(t *testing.T) {
	d := NewDispatcher(1)
	defer d.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	// Occupy the worker so queued tasks stay queued.
	require.True(t, d.Schedule(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	// One slot in the queue, then drops.
	require.True(t, d.Schedule(func(ctx context.Context) error { return nil }))
	assert.False(t, d.Schedule(func(ctx context.Context) error { return nil }))
	close(release)
}

func TestTaskErrorDoesNotStopWorker(t *testing.T) {
	d := NewDispatcher(4)
	defer d.Stop()

	done := make(chan struct{})
	require.True(t, d.Schedule(func(ctx context.Context) error {
		return errors.New("boom")
	}))
	require.True(t, d.Schedule(func(ctx context.Context) error {
		close(done)
		return nil
	}))
	<-done
}

func TestTaskPanicDoesNotStopWorker(t *testing.T) {
	d := NewDispatcher(4)
	defer d.Stop()

	done := make(chan struct{})
	require.True(t, d.Schedule(func(ctx context.Context) error {
		panic("boom")
	}))
	require.True(t, d.Schedule(func(ctx context.Context) error {
		close(done)
		return nil
	}))
	<-done
}

func TestNilTaskIsRejected(t *testing.T) {
	d := NewDispatcher(4)
	defer d.Stop()

	assert.False(t, d.Schedule(nil))
}
