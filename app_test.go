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

package libris

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/models"
)

// fakeBroker captures events like capturingPublisher and tracks the
// lifecycle the app is expected to drive.
type fakeBroker struct {
	capturingPublisher
	started bool
	stopped bool
}

func (b *fakeBroker) Start(ctx context.Context) error {
	b.started = true
	return nil
}

func (b *fakeBroker) Stop() error {
	b.stopped = true
	return nil
}

func newAppTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Database.ConnectionConfig.DBName = "file:" + filepath.Join(t.TempDir(), "app.db")
	cfg.Database.ConnectionConfig.HealthCheckInterval = 0
	return cfg
}

func TestAppStartStopLifecycle(t *testing.T) {
	fake := &fakeBroker{}
	app := NewAppWithBroker(newAppTestConfig(t), fake)
	ctx := context.Background()

	require.NoError(t, app.Start(ctx))
	assert.True(t, fake.started)

	created, err := app.Authors.Create(ctx, &models.Author{Name: "Ada"})
	require.NoError(t, err)
	require.NotNil(t, created)

	events := fake.captured()
	require.Len(t, events, 1)
	assert.Equal(t, "author_created", events[0].key)

	require.NoError(t, app.Stop())
	assert.True(t, fake.stopped)
	assert.False(t, app.Dispatcher().Schedule(func(ctx context.Context) error { return nil }))
}

func TestAppStartIsIdempotent(t *testing.T) {
	fake := &fakeBroker{}
	app := NewAppWithBroker(newAppTestConfig(t), fake)
	ctx := context.Background()

	require.NoError(t, app.Start(ctx))
	require.NoError(t, app.Start(ctx))
	require.NoError(t, app.Stop())
	// Stop on a stopped app is a no-op.
	require.NoError(t, app.Stop())
}

func TestAppWithBrokerKeepsInjectedInstance(t *testing.T) {
	fake := &fakeBroker{}
	injected := NewAppWithBroker(nil, fake)
	assert.Same(t, fake, injected.Publisher())
}
