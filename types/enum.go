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

package types

import "fmt"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Name() string
}

// Action identifies the mutation that produced a domain event.
type Action int

const (
	ActionCreated Action = iota
	ActionUpdated
)

func (a Action) IsValid() bool {
	return a == ActionCreated || a == ActionUpdated
}

func (a Action) Number() int {
	if !a.IsValid() {
		return IllegalValue
	}
	return int(a)
}

func (a Action) String() string { return a.Name() }

func (a Action) Name() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionUpdated:
		return "updated"
	default:
		return IllegalName
	}
}

// EventKey combines an entity kind with the action into the event key used
// for broker partition assignment, e.g. "author_created".
func (a Action) EventKey(kind string) string {
	return fmt.Sprintf("%s_%s", kind, a.Name())
}
