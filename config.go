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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"libris/broker"
	"libris/database"
	"libris/notify"
)

// NotifyConfig sizes the post-commit task queue.
type NotifyConfig struct {
	QueueSize int `json:"queue_size" yaml:"queue_size"`
}

// Config is the application configuration. Environment variables still win
// over file values inside each subsystem (DB_* for the database, KAFKA_*
// for the broker).
type Config struct {
	Database database.Config `json:"database" yaml:"database"`
	Broker   broker.Config   `json:"broker" yaml:"broker"`
	Notify   NotifyConfig    `json:"notify" yaml:"notify"`
}

// DefaultConfig returns a sqlite-backed configuration suitable for local
// runs: migrations on startup, default broker endpoints, default queue.
func DefaultConfig() *Config {
	conn := database.DefaultConnectionConfig()
	conn.Type = "sqlite"
	return &Config{
		Database: database.Config{
			ConnectionConfig: *conn,
			DataMigrateConfig: database.DataMigrateConfig{
				EnableMigrateOnStartup: true,
				EnableForeignKey:       true,
			},
		},
		Broker: *broker.DefaultConfig(),
		Notify: NotifyConfig{QueueSize: notify.DefaultQueueSize},
	}
}

// LoadConfig reads a YAML configuration file and overlays it on the
// defaults, so absent keys keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
