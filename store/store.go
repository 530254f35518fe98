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
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"libris/database"
	"libris/types"
)

// Store is the entity-agnostic record store. Each public operation checks
// out its own session and releases it before returning; none of them hold a
// session across a wait on another subsystem.
type Store[T any, PT RecordOf[T]] struct {
	sessions *database.SessionProvider
}

// NewStore returns a generic store backed by the provided session provider.
func NewStore[T any, PT RecordOf[T]](sessions *database.SessionProvider) *Store[T, PT] {
	return &Store[T, PT]{sessions: sessions}
}

// Sessions exposes the session provider for collaborators such as the
// relationship resolver.
func (s *Store[T, PT]) Sessions() *database.SessionProvider { return s.sessions }

// Create inserts the record and returns the persisted representation with
// the database-assigned identifier. Constraint violations surface as a
// StorageError.
func (s *Store[T, PT]) Create(ctx context.Context, rec PT) (PT, error) {
	err := s.sessions.WithTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(rec).Exec(ctx); err != nil {
			return database.WrapStorageError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Get performs a point lookup. An absent id is a valid outcome and returns
// (nil, nil), not an error.
func (s *Store[T, PT]) Get(ctx context.Context, id int64) (PT, error) {
	var entity T
	err := s.sessions.WithSession(ctx, func(ctx context.Context, db bun.IDB) error {
		return db.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, database.WrapStorageError(err)
	}
	return PT(&entity), nil
}

// List returns an unordered snapshot of every record of the entity type.
// Pagination belongs to the layers above this one.
func (s *Store[T, PT]) List(ctx context.Context) ([]PT, error) {
	var entities []PT
	err := s.sessions.WithSession(ctx, func(ctx context.Context, db bun.IDB) error {
		return db.NewSelect().Model(&entities).Scan(ctx)
	})
	if err != nil {
		return nil, database.WrapStorageError(err)
	}
	return entities, nil
}

// Find returns the records matching the filter's WHERE clause.
func (s *Store[T, PT]) Find(ctx context.Context, filter *types.QueryFilter) ([]PT, error) {
	if filter == nil || filter.Schema == "" {
		return nil, &InvalidQueryError{Reason: "filter cannot be empty"}
	}
	var entities []PT
	err := s.sessions.WithSession(ctx, func(ctx context.Context, db bun.IDB) error {
		return db.NewSelect().Model(&entities).Where(filter.Schema, filter.Args...).Scan(ctx)
	})
	if err != nil {
		return nil, database.WrapStorageError(err)
	}
	return entities, nil
}

// Update merges the partial field payload into the current stored state
// inside one transaction and returns the merged record. An absent id
// returns (nil, nil); whether that is a 404-equivalent is the caller's
// call. Fields outside the payload are never touched.
func (s *Store[T, PT]) Update(ctx context.Context, id int64, fields map[string]interface{}) (PT, error) {
	var entity T
	found := false
	err := s.sessions.WithTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return database.WrapStorageError(err)
		}
		found = true
		rec := PT(&entity)
		if err := rec.Apply(fields); err != nil {
			return fmt.Errorf("apply update fields: %w", err)
		}
		if _, err := tx.NewUpdate().Model(rec).WherePK().Exec(ctx); err != nil {
			return database.WrapStorageError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return PT(&entity), nil
}

// Delete removes the record by id. Deleting an absent id is a no-op; the
// caller cannot distinguish "deleted" from "was already absent".
func (s *Store[T, PT]) Delete(ctx context.Context, id int64) error {
	return s.sessions.WithTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var entity T
		if _, err := tx.NewDelete().Model(&entity).Where("id = ?", id).Exec(ctx); err != nil {
			return database.WrapStorageError(err)
		}
		return nil
	})
}
