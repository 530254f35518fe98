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

package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"libris/database"
	"libris/models"
	"libris/store"
	"libris/types"
)

func newTestSessions(t *testing.T) *database.SessionProvider {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "store.db")
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Author)(nil),
		(*models.Book)(nil),
		(*models.AuthorBookLink)(nil),
		(*models.Task)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}
	return database.NewSessionProvider(db)
}

func TestCreateAssignsIdentifier(t *testing.T) {
	sessions := newTestSessions(t)
	authors := store.NewStore[models.Author, *models.Author](sessions)
	ctx := context.Background()

	created, err := authors.Create(ctx, &models.Author{Name: "Ada"})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Ada", created.Name)

	got, err := authors.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Ada", got.Name)
}

func TestGetAbsentReturnsNil(t *testing.T) {
	sessions := newTestSessions(t)
	authors := store.NewStore[models.Author, *models.Author](sessions)

	got, err := authors.Get(context.Background(), 424242)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateMergesPartialPayload(t *testing.T) {
	sessions := newTestSessions(t)
	books := store.NewStore[models.Book, *models.Book](sessions)
	ctx := context.Background()

	seed := &models.Book{ID: 7, Title: "Structure and Interpretation"}
	_, err := books.Create(ctx, seed)
	require.NoError(t, err)

	updated, err := books.Update(ctx, 7, map[string]interface{}{
		"description": "a classic",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, int64(7), updated.ID)
	assert.Equal(t, "Structure and Interpretation", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "a classic", *updated.Description)

	// Untouched fields survive a reload too.
	got, err := books.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Structure and Interpretation", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "a classic", *got.Description)
}

func TestUpdateEmptyPayloadIsNoOp(t *testing.T) {
	sessions := newTestSessions(t)
	books := store.NewStore[models.Book, *models.Book](sessions)
	ctx := context.Background()

	created, err := books.Create(ctx, &models.Book{Title: "Gödel, Escher, Bach"})
	require.NoError(t, err)

	updated, err := books.Update(ctx, created.ID, map[string]interface{}{})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Gödel, Escher, Bach", updated.Title)
	assert.Nil(t, updated.Description)
}

func TestUpdateAbsentReturnsNil(t *testing.T) {
	sessions := newTestSessions(t)
	books := store.NewStore[models.Book, *models.Book](sessions)

	updated, err := books.Update(context.Background(), 999, map[string]interface{}{
		"title": "nobody home",
	})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestUpdateRejectsUnknownField(t *testing.T) {
	sessions := newTestSessions(t)
	authors := store.NewStore[models.Author, *models.Author](sessions)
	ctx := context.Background()

	created, err := authors.Create(ctx, &models.Author{Name: "Grace"})
	require.NoError(t, err)

	_, err = authors.Update(ctx, created.ID, map[string]interface{}{"age": 42})
	require.Error(t, err)

	// The rejected update must not have committed anything.
	got, err := authors.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Grace", got.Name)
}

func TestDeleteIsIdempotent(t *testing.T) {
	sessions := newTestSessions(t)
	authors := store.NewStore[models.Author, *models.Author](sessions)
	ctx := context.Background()

	created, err := authors.Create(ctx, &models.Author{Name: "Edsger"})
	require.NoError(t, err)

	require.NoError(t, authors.Delete(ctx, created.ID))
	got, err := authors.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is not an error.
	require.NoError(t, authors.Delete(ctx, created.ID))
}

func TestListReturnsAllRecords(t *testing.T) {
	sessions := newTestSessions(t)
	authors := store.NewStore[models.Author, *models.Author](sessions)
	ctx := context.Background()

	for _, name := range []string{"Ada", "Grace", "Edsger"} {
		_, err := authors.Create(ctx, &models.Author{Name: name})
		require.NoError(t, err)
	}

	all, err := authors.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFindFiltersRecords(t *testing.T) {
	sessions := newTestSessions(t)
	books := store.NewStore[models.Book, *models.Book](sessions)
	ctx := context.Background()

	_, err := books.Create(ctx, &models.Book{Title: "The Go Programming Language"})
	require.NoError(t, err)
	_, err = books.Create(ctx, &models.Book{Title: "The C Programming Language"})
	require.NoError(t, err)

	found, err := books.Find(ctx, types.NewQueryFilter("title LIKE ?", "%Go%"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "The Go Programming Language", found[0].Title)
}

func TestFindRejectsEmptyFilter(t *testing.T) {
	sessions := newTestSessions(t)
	books := store.NewStore[models.Book, *models.Book](sessions)

	_, err := books.Find(context.Background(), nil)
	var iqe *store.InvalidQueryError
	require.ErrorAs(t, err, &iqe)
}
