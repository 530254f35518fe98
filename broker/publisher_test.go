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
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/types"
)

type recordingWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	writeErr error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestPublishWritesKeyedJSON(t *testing.T) {
	w := &recordingWriter{}
	p := NewPublisherWithWriter(&Config{Topic: "author-book-events"}, w)

	err := p.Publish(context.Background(), "author_created", types.JsonObject{
		"entity_kind": "author",
		"id":          int64(1),
		"name":        "Ada",
	})
	require.NoError(t, err)

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "author_created", string(msg.Key))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "author", payload["entity_kind"])
	assert.Equal(t, "Ada", payload["name"])
}

func TestPublishBeforeStartReturnsErrNotStarted(t *testing.T) {
	p := NewPublisher(DefaultConfig())

	err := p.Publish(context.Background(), "author_created", types.JsonObject{})
	require.ErrorIs(t, err, ErrNotStarted)
	assert.False(t, p.Started())
}

func TestPublishAfterStopReturnsErrNotStarted(t *testing.T) {
	w := &recordingWriter{}
	p := NewPublisherWithWriter(nil, w)
	require.True(t, p.Started())

	require.NoError(t, p.Stop())
	assert.True(t, w.closed)
	assert.False(t, p.Started())

	err := p.Publish(context.Background(), "book_updated", types.JsonObject{})
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestStopWithoutStartIsNoOp(t *testing.T) {
	p := NewPublisher(nil)
	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())
}

func TestWriteFailureBecomesPublishError(t *testing.T) {
	broken := errors.New("broker unreachable")
	w := &recordingWriter{writeErr: broken}
	p := NewPublisherWithWriter(&Config{Topic: "author-book-events"}, w)

	err := p.Publish(context.Background(), "book_updated", types.JsonObject{"id": int64(7)})
	var pe *PublishError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "author-book-events", pe.Topic)
	assert.Equal(t, "book_updated", pe.Key)
	assert.ErrorIs(t, err, broken)
}

// withheldAckWriter never acknowledges a write; it blocks until the caller
// gives up via its context.
type withheldAckWriter struct{}

func (w *withheldAckWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func (w *withheldAckWriter) Close() error { return nil }

func TestWithheldAckDoesNotReturnSuccess(t *testing.T) {
	p := NewPublisherWithWriter(&Config{Topic: "author-book-events"}, &withheldAckWriter{})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Publish(ctx, "author_created", types.JsonObject{"id": int64(1)})
	var pe *PublishError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestConfigNormalizeFillsDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.normalize()
	assert.Equal(t, []string{DefaultBroker}, cfg.Brokers)
	assert.Equal(t, DefaultTopic, cfg.Topic)
	assert.Positive(t, cfg.DialTimeout)
	assert.Positive(t, cfg.WriteTimeout)
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "b1:9092, b2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-events")

	cfg := DefaultConfig()
	cfg.overrideFromEnv()
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Brokers)
	assert.Equal(t, "custom-events", cfg.Topic)
}
