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
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/database"
	"libris/models"
	"libris/store"
)

// seedLibrary loads two authors and three books. Book 2 is co-authored:
// author 1 has books {1, 2}, author 2 has books {2, 3}.
func seedLibrary(t *testing.T, sessions *database.SessionProvider) *store.Resolver {
	t.Helper()
	ctx := context.Background()
	authors := store.NewStore[models.Author, *models.Author](sessions)
	books := store.NewStore[models.Book, *models.Book](sessions)
	resolver := store.NewResolver(sessions)

	for id, name := range map[int64]string{1: "Ada", 2: "Grace"} {
		_, err := authors.Create(ctx, &models.Author{ID: id, Name: name})
		require.NoError(t, err)
	}
	for id, title := range map[int64]string{1: "Notes", 2: "Letters", 3: "Papers"} {
		_, err := books.Create(ctx, &models.Book{ID: id, Title: title})
		require.NoError(t, err)
	}
	for _, pair := range [][2]int64{{1, 1}, {1, 2}, {2, 2}, {2, 3}} {
		require.NoError(t, resolver.Link(ctx, pair[0], pair[1]))
	}
	return resolver
}

func bookIDs(books []*models.Book) []int64 {
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestBooksForSingleAuthor(t *testing.T) {
	sessions := newTestSessions(t)
	resolver := seedLibrary(t, sessions)

	id := int64(1)
	books, err := resolver.BooksForAuthors(context.Background(), store.BookQuery{AuthorID: &id})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, bookIDs(books))
}

func TestBooksForAuthorsDeduplicatesUnion(t *testing.T) {
	sessions := newTestSessions(t)
	resolver := seedLibrary(t, sessions)

	books, err := resolver.BooksForAuthors(context.Background(), store.BookQuery{AuthorIDs: []int64{1, 2}})
	require.NoError(t, err)
	// Book 2 matches both authors but appears once.
	assert.Equal(t, []int64{1, 2, 3}, bookIDs(books))
}

func TestBooksForUnknownAuthorIsEmpty(t *testing.T) {
	sessions := newTestSessions(t)
	resolver := seedLibrary(t, sessions)

	books, err := resolver.BooksForAuthors(context.Background(), store.BookQuery{AuthorIDs: []int64{99}})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBookQueryRequiresExactlyOneFilter(t *testing.T) {
	sessions := newTestSessions(t)
	resolver := seedLibrary(t, sessions)
	ctx := context.Background()

	var iqe *store.InvalidQueryError

	_, err := resolver.BooksForAuthors(ctx, store.BookQuery{})
	require.ErrorAs(t, err, &iqe)

	id := int64(1)
	_, err = resolver.BooksForAuthors(ctx, store.BookQuery{AuthorID: &id, AuthorIDs: []int64{2}})
	require.ErrorAs(t, err, &iqe)
}

func TestLinkDuplicatePairFails(t *testing.T) {
	sessions := newTestSessions(t)
	resolver := seedLibrary(t, sessions)

	err := resolver.Link(context.Background(), 1, 1)
	require.Error(t, err)
	var se *database.StorageError
	assert.ErrorAs(t, err, &se)
}

func TestUnlinkRemovesAssociation(t *testing.T) {
	sessions := newTestSessions(t)
	resolver := seedLibrary(t, sessions)
	ctx := context.Background()

	require.NoError(t, resolver.Unlink(ctx, 1, 2))

	id := int64(1)
	books, err := resolver.BooksForAuthors(ctx, store.BookQuery{AuthorID: &id})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, bookIDs(books))

	// Unlinking an absent pair is a no-op.
	require.NoError(t, resolver.Unlink(ctx, 1, 2))
}
