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

// Package libris wires the record stores, the relationship resolver, the
// notification dispatcher, and the event publisher into one application.
package libris

import (
	"context"
	"fmt"

	"libris/broker"
	"libris/database"
	"libris/models"
	"libris/notify"
	"libris/store"
	"libris/utils"
)

// Broker is the event publisher lifecycle the application manages: started
// before the first write can publish, stopped after the dispatcher drains.
type Broker interface {
	EventPublisher
	Start(ctx context.Context) error
	Stop() error
}

// App is the composition root. Start brings the subsystems up in
// dependency order; Stop tears them down in reverse.
type App struct {
	cfg *Config
	log *utils.Logger

	sessions   *database.SessionProvider
	dispatcher *notify.Dispatcher
	publisher  Broker

	Authors  *EntityService[models.Author, *models.Author]
	Books    *EntityService[models.Book, *models.Book]
	Tasks    *EntityService[models.Task, *models.Task]
	Resolver *store.Resolver

	started bool
}

// NewApp builds an unstarted application from the configuration. A nil
// config uses the defaults.
func NewApp(cfg *Config) *App {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &App{
		cfg: cfg,
		log: utils.NewLogger("APP"),
	}
}

// NewAppWithBroker builds an application over a caller-supplied broker
// instead of the configured Kafka publisher. Intended for tests and
// embedded setups, mirroring NewPublisherWithWriter.
func NewAppWithBroker(cfg *Config, b Broker) *App {
	app := NewApp(cfg)
	app.publisher = b
	return app
}

// Start connects the database, runs migrations when configured, starts the
// broker publisher and the notification worker, and builds the entity
// services. A failed start leaves nothing running.
func (a *App) Start(ctx context.Context) error {
	if a.started {
		return nil
	}

	db, err := database.InitDB(&a.cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	a.sessions = database.NewSessionProvider(db)

	if a.publisher == nil {
		brokerCfg := a.cfg.Broker
		a.publisher = broker.NewPublisher(&brokerCfg)
	}
	if err := a.publisher.Start(ctx); err != nil {
		_ = database.CloseDB()
		return fmt.Errorf("start publisher: %w", err)
	}

	a.dispatcher = notify.NewDispatcher(a.cfg.Notify.QueueSize)
	a.buildServices()

	a.started = true
	a.log.Info("application started")
	return nil
}

// buildServices assembles the per-entity pipelines over the shared
// dispatcher and publisher.
func (a *App) buildServices() {
	a.Authors = NewEntityService[models.Author](
		store.NewStore[models.Author, *models.Author](a.sessions), a.dispatcher, a.publisher)
	a.Books = NewEntityService[models.Book](
		store.NewStore[models.Book, *models.Book](a.sessions), a.dispatcher, a.publisher)
	a.Tasks = NewEntityService[models.Task](
		store.NewStore[models.Task, *models.Task](a.sessions), a.dispatcher, a.publisher)
	a.Resolver = store.NewResolver(a.sessions)
}

// Sessions exposes the session provider, mainly for embedding callers that
// need raw queries.
func (a *App) Sessions() *database.SessionProvider { return a.sessions }

// Publisher exposes the event publisher.
func (a *App) Publisher() Broker { return a.publisher }

// Dispatcher exposes the notification dispatcher.
func (a *App) Dispatcher() *notify.Dispatcher { return a.dispatcher }

// Stop drains the dispatcher, stops the publisher, and closes the database.
// Errors during teardown are logged and the last one is returned; teardown
// always runs to completion.
func (a *App) Stop() error {
	if !a.started {
		return nil
	}
	a.started = false

	a.dispatcher.Stop()

	var last error
	if err := a.publisher.Stop(); err != nil {
		a.log.Errorf("stop publisher: %v", err)
		last = err
	}
	if err := database.CloseDB(); err != nil {
		a.log.Errorf("close database: %v", err)
		last = err
	}
	a.log.Info("application stopped")
	return last
}
