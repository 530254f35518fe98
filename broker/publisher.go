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

package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	"libris/types"
	"libris/utils"
)

// ErrNotStarted is returned by Publish when the publisher has not been
// started or has already been stopped.
var ErrNotStarted = errors.New("broker: publisher not started")

// PublishError wraps a failed or unacknowledged publish attempt with the
// topic and key it was addressed to.
type PublishError struct {
	Topic string
	Key   string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s (key=%s) failed: %v", e.Topic, e.Key, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// MessageWriter is the slice of kafka.Writer the publisher depends on.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends keyed JSON events to a single topic. The zero lifecycle
// state is stopped; Start must succeed before Publish accepts work, and
// Stop returns it to the stopped state. Start after Stop is allowed.
type Publisher struct {
	cfg *Config
	log *utils.Logger

	mu     sync.RWMutex
	writer MessageWriter
}

// NewPublisher builds a stopped publisher. Environment overrides are
// applied here so the effective endpoints are fixed at construction.
func NewPublisher(cfg *Config) *Publisher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.normalize()
	cfg.overrideFromEnv()
	return &Publisher{
		cfg: cfg,
		log: utils.NewLogger("BROKER"),
	}
}

// NewPublisherWithWriter builds a started publisher over a caller-supplied
// writer. Intended for tests and embedded setups.
func NewPublisherWithWriter(cfg *Config, w MessageWriter) *Publisher {
	p := NewPublisher(cfg)
	p.writer = w
	return p
}

// Start dials the first broker to verify reachability, then builds the
// writer. Calling Start on a started publisher is a no-op.
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer != nil {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.cfg.DialTimeout)
	defer cancel()
	conn, err := kafka.DialContext(dialCtx, "tcp", p.cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("broker: dial %s: %w", p.cfg.Brokers[0], err)
	}
	_ = conn.Close()

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(p.cfg.Brokers...),
		Topic:        p.cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: p.cfg.WriteTimeout,
		BatchTimeout: p.cfg.BatchTimeout,
	}
	p.log.Infof("publisher started: brokers=%v topic=%s", p.cfg.Brokers, p.cfg.Topic)
	return nil
}

// Publish JSON-encodes the payload and writes it under the given key,
// waiting for the broker acknowledgement. A stopped publisher returns
// ErrNotStarted without touching the network.
func (p *Publisher) Publish(ctx context.Context, key string, payload types.JsonObject) error {
	p.mu.RLock()
	w := p.writer
	p.mu.RUnlock()
	if w == nil {
		return ErrNotStarted
	}

	value, err := payload.Encode()
	if err != nil {
		return &PublishError{Topic: p.cfg.Topic, Key: key, Err: err}
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return &PublishError{Topic: p.cfg.Topic, Key: key, Err: err}
	}
	p.log.Debugf("published event: topic=%s key=%s", p.cfg.Topic, key)
	return nil
}

// Topic reports the destination topic after normalization and environment
// overrides.
func (p *Publisher) Topic() string { return p.cfg.Topic }

// Started reports whether Publish currently accepts work.
func (p *Publisher) Started() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.writer != nil
}

// Stop flushes and closes the writer. Stopping a publisher that was never
// started is a safe no-op.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	if err != nil {
		return fmt.Errorf("broker: close writer: %w", err)
	}
	p.log.Info("publisher stopped")
	return nil
}
