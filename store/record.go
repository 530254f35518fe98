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

// Record is the capability constraint every stored entity satisfies: an
// integer surrogate key assigned by the store, a display label, and a
// field-update mechanism for partial updates.
type Record interface {
	Kind() string
	PrimaryKey() int64
	SetPrimaryKey(int64)
	Label() string
	Apply(fields map[string]interface{}) error
}

// RecordOf ties the Record capabilities to the pointer type of a concrete
// entity struct so the store can allocate entities itself.
type RecordOf[T any] interface {
	*T
	Record
}
