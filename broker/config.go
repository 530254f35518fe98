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

// Package broker publishes domain events to Kafka. Publishing is
// synchronous: a publish call returns only after the broker acknowledges
// the message or the attempt fails.
package broker

import (
	"os"
	"strings"
	"time"
)

const (
	DefaultBroker = "kafka:9092"
	DefaultTopic  = "author-book-events"

	defaultDialTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Config carries the broker connection settings.
type Config struct {
	Brokers      []string      `json:"brokers" yaml:"brokers"`
	Topic        string        `json:"topic" yaml:"topic"`
	ClientID     string        `json:"client_id" yaml:"client_id"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	BatchTimeout time.Duration `json:"batch_timeout" yaml:"batch_timeout"`
}

// DefaultConfig returns the stock single-broker configuration.
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{DefaultBroker},
		Topic:        DefaultTopic,
		ClientID:     "libris",
		DialTimeout:  defaultDialTimeout,
		WriteTimeout: defaultWriteTimeout,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// normalize fills zero values with defaults so a partially specified
// config still connects.
func (c *Config) normalize() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{DefaultBroker}
	}
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	if c.ClientID == "" {
		c.ClientID = "libris"
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 10 * time.Millisecond
	}
}

// overrideFromEnv applies KAFKA_BROKER and KAFKA_TOPIC, which win over the
// file-based configuration. KAFKA_BROKER accepts a comma-separated list.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("KAFKA_BROKER"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		if len(brokers) > 0 {
			c.Brokers = brokers
		}
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Topic = v
	}
}
