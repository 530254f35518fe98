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

package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newSessionTestDB(t *testing.T) *SessionProvider {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "session.db")
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("CREATE TABLE scratch (id INTEGER PRIMARY KEY, value TEXT NOT NULL)")
	require.NoError(t, err)
	return NewSessionProvider(db)
}

func countScratch(t *testing.T, p *SessionProvider) int {
	t.Helper()
	var n int
	err := p.WithSession(context.Background(), func(ctx context.Context, db bun.IDB) error {
		return db.NewSelect().Table("scratch").ColumnExpr("count(*)").Scan(ctx, &n)
	})
	require.NoError(t, err)
	return n
}

func TestWithTxCommitsOnNil(t *testing.T) {
	p := newSessionTestDB(t)

	err := p.WithTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.Exec("INSERT INTO scratch (value) VALUES (?)", "kept")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countScratch(t, p))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	p := newSessionTestDB(t)
	boom := errors.New("boom")

	err := p.WithTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.Exec("INSERT INTO scratch (value) VALUES (?)", "discarded"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countScratch(t, p))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	p := newSessionTestDB(t)

	require.Panics(t, func() {
		_ = p.WithTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.Exec("INSERT INTO scratch (value) VALUES (?)", "discarded"); err != nil {
				return err
			}
			panic("boom")
		})
	})
	assert.Equal(t, 0, countScratch(t, p))
}

func TestWithSessionReleasesConnection(t *testing.T) {
	p := newSessionTestDB(t)
	p.DB().SetMaxOpenConns(1)

	// With a single-connection pool, any leak would deadlock the next call.
	for i := 0; i < 3; i++ {
		err := p.WithSession(context.Background(), func(ctx context.Context, db bun.IDB) error {
			var one int
			return db.NewSelect().ColumnExpr("1").Scan(ctx, &one)
		})
		require.NoError(t, err)
	}
}

func TestUninitializedProviderFails(t *testing.T) {
	var p SessionProvider
	err := p.WithSession(context.Background(), func(ctx context.Context, db bun.IDB) error { return nil })
	require.Error(t, err)
	err = p.WithTx(context.Background(), func(ctx context.Context, tx bun.Tx) error { return nil })
	require.Error(t, err)
}
