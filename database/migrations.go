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
	"os"

	"github.com/uptrace/bun"
)

// MigrationManager creates tables for every registered model and applies
// configured foreign key constraints. Schema evolution (column or index
// changes on existing tables) is out of scope.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
}

// NewMigrationManager constructs a MigrationManager using the provided Bun
// database and logger.
func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	return &MigrationManager{
		db:     db,
		logger: logger,
	}
}

// RunMigrations creates missing tables for all registered models in priority
// order, then adds foreign keys when enabled by configuration.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	// silent migration
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}

	for _, model := range GetRegisteredModels() {
		if err := mm.createTable(ctx, model.Instance()); err != nil {
			return err
		}
	}

	if globalConfig != nil && globalConfig.DataMigrateConfig.EnableForeignKey {
		if err := mm.applyForeignKeys(ctx); err != nil {
			return err
		}
	}

	if mm.logger != nil {
		mm.logger.Info("Database migrations completed!")
	}
	return nil
}

func (mm *MigrationManager) createTable(ctx context.Context, instance interface{}) error {
	_, err := mm.db.NewCreateTable().
		Model(instance).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		if is, kind := IsSqlError(err); is && kind == ExistTableErr {
			return nil
		}
		return fmt.Errorf("failed to create table for %T: %w", instance, err)
	}
	return nil
}

func (mm *MigrationManager) applyForeignKeys(ctx context.Context) error {
	var fkm *ForeignKeyManager
	if path := globalConfig.DataMigrateConfig.ForeignKeyFile; path != "" {
		configurable, err := NewConfigurableForeignKeyManager(mm.logger, path)
		if err != nil {
			return fmt.Errorf("failed to load foreign key configuration: %w", err)
		}
		fkm = configurable.ForeignKeyManager
	} else {
		fkm = NewForeignKeyManager(mm.logger)
	}

	if errs := fkm.ValidateConstraints(); len(errs) > 0 {
		return fmt.Errorf("invalid foreign key configuration: %v", errs[0])
	}
	return fkm.AddAllForeignKeys(ctx, mm.db)
}
