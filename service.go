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

package libris

import (
	"context"
	"errors"

	"libris/broker"
	"libris/notify"
	"libris/store"
	"libris/types"
)

// EventPublisher is the broker surface the service layer needs.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload types.JsonObject) error
}

// EntityService runs the full write pipeline for one entity type: commit
// first, then schedule the fire-and-forget notification, then publish the
// broker event and wait for its acknowledgement. Only the commit decides
// whether the operation succeeded.
type EntityService[T any, PT store.RecordOf[T]] struct {
	store      *store.Store[T, PT]
	dispatcher *notify.Dispatcher
	publisher  EventPublisher
}

// NewEntityService wires a service over its store and the shared side-effect
// components. Dispatcher and publisher may be nil, which disables the
// corresponding stage; that keeps read-mostly embeddings and tests simple.
func NewEntityService[T any, PT store.RecordOf[T]](
	s *store.Store[T, PT],
	d *notify.Dispatcher,
	p EventPublisher,
) *EntityService[T, PT] {
	return &EntityService[T, PT]{store: s, dispatcher: d, publisher: p}
}

// Store exposes the underlying record store.
func (s *EntityService[T, PT]) Store() *store.Store[T, PT] { return s.store }

// Create persists the record, schedules the created-notification, and
// publishes the created-event. When the commit succeeds but the publish
// does not, the created record is returned together with the publish
// error: the write stands, the caller decides how loudly to complain.
func (s *EntityService[T, PT]) Create(ctx context.Context, rec PT) (PT, error) {
	created, err := s.store.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		s.dispatcher.NotifyCreated(created.Kind(), created.Label(), created.PrimaryKey())
	}
	if err := s.publish(ctx, types.ActionCreated, created); err != nil {
		return created, err
	}
	return created, nil
}

// Update applies the partial field payload, then runs the same notify and
// publish stages as Create with the updated-action. An absent id returns
// (nil, nil) without side effects.
func (s *EntityService[T, PT]) Update(ctx context.Context, id int64, fields map[string]interface{}) (PT, error) {
	updated, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}
	if s.dispatcher != nil {
		s.dispatcher.NotifyUpdated(updated.Kind(), updated.Label(), updated.PrimaryKey())
	}
	if err := s.publish(ctx, types.ActionUpdated, updated); err != nil {
		return updated, err
	}
	return updated, nil
}

// Get is a pass-through point lookup; absence is (nil, nil).
func (s *EntityService[T, PT]) Get(ctx context.Context, id int64) (PT, error) {
	return s.store.Get(ctx, id)
}

// All returns every record of the entity type.
func (s *EntityService[T, PT]) All(ctx context.Context) ([]PT, error) {
	return s.store.List(ctx)
}

// Find returns the records matching the filter.
func (s *EntityService[T, PT]) Find(ctx context.Context, filter *types.QueryFilter) ([]PT, error) {
	return s.store.Find(ctx, filter)
}

// Delete removes the record. Reads and deletes have no notify or publish
// stage.
func (s *EntityService[T, PT]) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

func (s *EntityService[T, PT]) publish(ctx context.Context, action types.Action, rec PT) error {
	if s.publisher == nil {
		return nil
	}
	payload := types.JsonObject{
		"entity_kind": rec.Kind(),
		"id":          rec.PrimaryKey(),
		"name":        rec.Label(),
	}
	return s.publisher.Publish(ctx, action.EventKey(rec.Kind()), payload)
}

// PublishError reports whether err is a post-commit publish failure, i.e.
// an error that accompanies a successfully persisted record.
func PublishError(err error) (*broker.PublishError, bool) {
	var pe *broker.PublishError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
