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
	"fmt"

	"github.com/uptrace/bun"

	"libris/database"
)

const KindBook = "book"

// Book is owned by zero or more authors through the author_book_links table.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID          int64   `bun:"id,pk,autoincrement" json:"id"`
	Title       string  `bun:"title,notnull" json:"title"`
	Description *string `bun:"description" json:"description,omitempty"`
}

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Book)(nil), 10))
}

func (b *Book) Kind() string { return KindBook }

func (b *Book) PrimaryKey() int64 { return b.ID }

func (b *Book) SetPrimaryKey(id int64) { b.ID = id }

// Label returns the book title used in notifications and events.
func (b *Book) Label() string { return b.Title }

// Apply merges a partial update payload. Fields absent from the payload are
// left untouched; description accepts nil to clear the value.
func (b *Book) Apply(fields map[string]interface{}) error {
	for name, value := range fields {
		switch name {
		case "title":
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("book field %q expects a string, got %T", name, value)
			}
			b.Title = s
		case "description":
			switch v := value.(type) {
			case nil:
				b.Description = nil
			case string:
				b.Description = &v
			case *string:
				b.Description = v
			default:
				return fmt.Errorf("book field %q expects a string or nil, got %T", name, value)
			}
		default:
			return fmt.Errorf("book has no updatable field %q", name)
		}
	}
	return nil
}
