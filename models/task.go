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
	"time"

	"github.com/uptrace/bun"

	"libris/database"
)

const KindTask = "task"

// Task is a user-assigned task with a due date. Domain validation such as
// due-date-not-in-past happens in the layers above the store.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description,omitempty"`
	DueDate     time.Time `bun:"due_date,nullzero" json:"due_date"`
}

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Task)(nil), 40))
}

func (t *Task) Kind() string { return KindTask }

func (t *Task) PrimaryKey() int64 { return t.ID }

func (t *Task) SetPrimaryKey(id int64) { t.ID = id }

// Label returns the task title used in notifications and events.
func (t *Task) Label() string { return t.Title }

// Apply merges a partial update payload. Fields absent from the payload are
// left untouched.
func (t *Task) Apply(fields map[string]interface{}) error {
	for name, value := range fields {
		switch name {
		case "title":
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("task field %q expects a string, got %T", name, value)
			}
			t.Title = s
		case "description":
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("task field %q expects a string, got %T", name, value)
			}
			t.Description = s
		case "due_date":
			switch v := value.(type) {
			case time.Time:
				t.DueDate = v
			case string:
				parsed, err := time.Parse(time.RFC3339, v)
				if err != nil {
					return fmt.Errorf("task field %q expects an RFC 3339 time: %w", name, err)
				}
				t.DueDate = parsed
			default:
				return fmt.Errorf("task field %q expects a time, got %T", name, value)
			}
		default:
			return fmt.Errorf("task has no updatable field %q", name)
		}
	}
	return nil
}
