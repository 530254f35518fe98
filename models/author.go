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

const KindAuthor = "author"

// Author owns zero or more books through the author_book_links table. The
// relation is never duplicated onto this struct's stored representation.
type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Author)(nil), 10))
}

func (a *Author) Kind() string { return KindAuthor }

func (a *Author) PrimaryKey() int64 { return a.ID }

func (a *Author) SetPrimaryKey(id int64) { a.ID = id }

// Label returns the author's display name used in notifications and events.
func (a *Author) Label() string { return a.Name }

// Apply merges a partial update payload. Fields absent from the payload are
// left untouched.
func (a *Author) Apply(fields map[string]interface{}) error {
	for name, value := range fields {
		switch name {
		case "name":
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("author field %q expects a string, got %T", name, value)
			}
			a.Name = s
		default:
			return fmt.Errorf("author has no updatable field %q", name)
		}
	}
	return nil
}
