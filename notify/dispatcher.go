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

// Package notify runs side-effect tasks after a write commits, off the
// caller's path. A task failure never propagates to the operation that
// scheduled it.
package notify

import (
	"context"
	"fmt"
	"sync"

	"libris/utils"
)

// DefaultQueueSize bounds how many tasks may wait for the worker before
// Schedule starts dropping.
const DefaultQueueSize = 64

// Task is one unit of post-commit work.
type Task func(ctx context.Context) error

// Dispatcher owns a single worker goroutine draining a bounded queue.
// Schedule never blocks the caller: when the queue is full the task is
// dropped and logged.
type Dispatcher struct {
	log   *utils.Logger
	tasks chan Task

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given queue capacity and
// starts its worker. A non-positive size falls back to DefaultQueueSize.
func NewDispatcher(queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		log:   utils.NewLogger("NOTIFY"),
		tasks: make(chan Task, queueSize),
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Schedule enqueues a task for the worker. It returns false when the task
// was not accepted, either because the dispatcher is stopped or the queue
// is full. The caller's operation succeeds either way.
func (d *Dispatcher) Schedule(task Task) bool {
	if task == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		d.log.Warn("task rejected: dispatcher stopped")
		return false
	}
	select {
	case d.tasks <- task:
		return true
	default:
		d.log.Warnf("task dropped: queue full (capacity %d)", cap(d.tasks))
		return false
	}
}

// NotifyCreated schedules the standard "entity created" announcement.
func (d *Dispatcher) NotifyCreated(kind, label string, id int64) {
	log := d.log
	d.Schedule(func(ctx context.Context) error {
		log.Infof("%s created: %s (id=%d)", kind, label, id)
		return nil
	})
}

// NotifyUpdated schedules the standard "entity updated" announcement.
func (d *Dispatcher) NotifyUpdated(kind, label string, id int64) {
	log := d.log
	d.Schedule(func(ctx context.Context) error {
		log.Infof("%s updated: %s (id=%d)", kind, label, id)
		return nil
	})
}

// Stop closes the queue, lets the worker drain what was already accepted,
// and waits for it to exit. Stop is idempotent.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.tasks)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for task := range d.tasks {
		d.run(task)
	}
}

// run isolates one task: errors are logged, panics are contained so a bad
// task cannot kill the worker.
func (d *Dispatcher) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("task panic: %v", r)
		}
	}()
	if err := task(context.Background()); err != nil {
		d.log.Errorf("task failed: %v", err)
	}
}

// String describes the dispatcher for debug logs.
func (d *Dispatcher) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	state := "running"
	if d.stopped {
		state = "stopped"
	}
	return fmt.Sprintf("Dispatcher{state=%s, queued=%d/%d}", state, len(d.tasks), cap(d.tasks))
}
