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

package store

import (
	"context"

	"github.com/uptrace/bun"

	"libris/database"
	"libris/models"
)

// Resolver materializes the author-book many-to-many relation. The join is
// always read through author_book_links and expressed as a single query
// regardless of how many author ids are supplied.
type Resolver struct {
	sessions *database.SessionProvider
}

func NewResolver(sessions *database.SessionProvider) *Resolver {
	return &Resolver{sessions: sessions}
}

// BookQuery filters books by author. Exactly one of AuthorID and AuthorIDs
// must be set; the two modes are mutually exclusive.
type BookQuery struct {
	AuthorID  *int64
	AuthorIDs []int64
}

func (q BookQuery) authorIDs() ([]int64, error) {
	switch {
	case q.AuthorID != nil && q.AuthorIDs != nil:
		return nil, &InvalidQueryError{Reason: "author_id and author_ids are mutually exclusive"}
	case q.AuthorID != nil:
		return []int64{*q.AuthorID}, nil
	case len(q.AuthorIDs) > 0:
		return q.AuthorIDs, nil
	default:
		return nil, &InvalidQueryError{Reason: "one of author_id or author_ids is required"}
	}
}

// BooksForAuthors returns the books joined to the supplied author id(s),
// deduplicated when a book matches more than one of them. Refusing an empty
// query keeps a caller from accidentally reading the full table.
func (r *Resolver) BooksForAuthors(ctx context.Context, q BookQuery) ([]*models.Book, error) {
	ids, err := q.authorIDs()
	if err != nil {
		return nil, err
	}

	var books []*models.Book
	err = r.sessions.WithSession(ctx, func(ctx context.Context, db bun.IDB) error {
		return db.NewSelect().
			Model(&books).
			Distinct().
			Join("JOIN author_book_links AS abl").
			JoinOn("abl.book_id = b.id").
			Where("abl.author_id IN (?)", bun.In(ids)).
			Scan(ctx)
	})
	if err != nil {
		return nil, database.WrapStorageError(err)
	}
	return books, nil
}

// Link records an author-book association. Linking the same pair twice
// violates the join table's natural key and surfaces as a StorageError.
func (r *Resolver) Link(ctx context.Context, authorID, bookID int64) error {
	return r.sessions.WithTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		link := &models.AuthorBookLink{AuthorID: authorID, BookID: bookID}
		if _, err := tx.NewInsert().Model(link).Exec(ctx); err != nil {
			return database.WrapStorageError(err)
		}
		return nil
	})
}

// Unlink removes an author-book association. Removing an absent pair is a
// no-op.
func (r *Resolver) Unlink(ctx context.Context, authorID, bookID int64) error {
	return r.sessions.WithTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var link models.AuthorBookLink
		_, err := tx.NewDelete().
			Model(&link).
			Where("author_id = ?", authorID).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return database.WrapStorageError(err)
		}
		return nil
	})
}
