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
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSqlErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   bool
		kind SQLError
	}{
		{"no rows", sql.ErrNoRows, true, NoRowsErr},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), true, NoRowsErr},
		{"sqlite duplicate", errors.New("UNIQUE constraint failed: authors.id"), true, DuplicateKeyErr},
		{"postgres duplicate", errors.New("duplicate key value violates unique constraint (SQLSTATE 23505)"), true, DuplicateKeyErr},
		{"sqlite missing table", errors.New("no such table: books"), true, NoTableErr},
		{"postgres existing table", errors.New("relation \"authors\" already exists"), true, ExistTableErr},
		{"sqlite not null", errors.New("NOT NULL constraint failed: authors.name"), true, NotNullViolationErr},
		{"sqlite foreign key", errors.New("FOREIGN KEY constraint failed"), true, ForeignKeyViolationErr},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connection refused"), true, ConnectionErr},
		{"unclassified", errors.New("something else entirely"), false, UnknownErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is, kind := IsSqlError(tc.err)
			assert.Equal(t, tc.is, is)
			assert.Equal(t, tc.kind, kind)
		})
	}
}

func TestWrapStorageError(t *testing.T) {
	assert.NoError(t, WrapStorageError(nil))

	wrapped := WrapStorageError(errors.New("UNIQUE constraint failed: authors.id"))
	var se *StorageError
	require.ErrorAs(t, wrapped, &se)
	assert.Equal(t, DuplicateKeyErr, se.Kind)

	// Already wrapped errors pass through unchanged.
	assert.Equal(t, wrapped, WrapStorageError(wrapped))
	outer := fmt.Errorf("create author: %w", wrapped)
	assert.Equal(t, outer, WrapStorageError(outer))
}
