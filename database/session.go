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
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// SessionProvider hands out scoped database sessions. Every session is
// released on every exit path; commit is explicit per operation via WithTx.
// Sessions must not be nested and must not be held across a wait on another
// subsystem.
type SessionProvider struct {
	db *bun.DB
}

func NewSessionProvider(db *bun.DB) *SessionProvider {
	return &SessionProvider{db: db}
}

// DB exposes the underlying Bun database for query building.
func (p *SessionProvider) DB() *bun.DB { return p.db }

// WithSession checks a single connection out of the pool, invokes fn with
// it, and returns the connection on every exit path. Intended for reads; no
// transaction is involved.
func (p *SessionProvider) WithSession(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if p.db == nil {
		return fmt.Errorf("database not initialized")
	}
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return WrapStorageError(err)
	}
	defer func() { _ = conn.Close() }()
	return fn(ctx, conn)
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise; the underlying connection is
// released on every exit path, including panics.
func (p *SessionProvider) WithTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	if p.db == nil {
		return fmt.Errorf("database not initialized")
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return WrapStorageError(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return WrapStorageError(err)
	}
	committed = true
	return nil
}
