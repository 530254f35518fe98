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

package models

import (
	"github.com/uptrace/bun"

	"libris/database"
)

// AuthorBookLink joins authors and books. Both columns together form the
// natural key; rows have no lifecycle of their own and exist only as a side
// effect of explicit linking.
type AuthorBookLink struct {
	bun.BaseModel `bun:"table:author_book_links,alias:abl"`

	AuthorID int64 `bun:"author_id,pk" json:"author_id"`
	BookID   int64 `bun:"book_id,pk" json:"book_id"`
}

func init() {
	// Created after authors and books so the foreign keys can attach.
	database.RegisteredModel(database.NewModelAdapter((*AuthorBookLink)(nil), 30))
}
