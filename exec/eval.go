// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package exec implements evaluation and execution of gridslice jobs.
// A Job's index range is expanded into Tasks, which an Executor
// dispatches onto workers; the evaluator waits for the tasks to
// complete, retries those that are lost or fail with temporary
// errors, and collects their values in index order.
package exec

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/retry"
	"github.com/grailbio/base/status"
	"github.com/grailbio/gridslice/metrics"
	"github.com/grailbio/gridslice/stats"
)

// DefaultMaxRetries is the default per-task retry budget for lost
// tasks and tasks failing with temporary errors.
const DefaultMaxRetries = 5

// retryPolicy is the backoff applied before a lost or temporarily
// failed task is resubmitted.
var retryPolicy = retry.Backoff(100*time.Millisecond, 5*time.Second, 1.5)

// Executor defines an interface used to provide implementations of
// task runners. An Executor is responsible for allocating workers to
// runnable tasks and running them.
type Executor interface {
	// Start starts the executor. It is called before evaluation has
	// started. The returned shutdown function tears down the
	// executor's resources.
	Start(*Session) (shutdown func())

	// Runnable marks the task as runnable. After a call to Runnable,
	// the task should have state >= TaskWaiting. The executor owns
	// the task after Runnable is called, and only the executor should
	// modify the task's state until it reaches TaskOk or beyond.
	Runnable(*Task)

	// Name returns a human-readable name for the executor.
	Name() string
}

// Eval evaluates the provided set of tasks using the provided
// executor, which must have been started. Eval dispatches every task
// and waits for all of them to complete; tasks that are lost or that
// fail with temporary errors are resubmitted (after a backoff) up to
// DefaultMaxRetries times each. Eval returns when all tasks are in
// state TaskOk, or else with the first permanent error, in which case
// outstanding work is abandoned.
func Eval(ctx context.Context, executor Executor, tasks []*Task, group *status.Group) error {
	return eval(ctx, executor, tasks, group, stats.NewMap(), DefaultMaxRetries)
}

func eval(ctx context.Context, executor Executor, tasks []*Task, group *status.Group, counters *stats.Map, maxRetries int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		// Both channels are buffered so that waiter goroutines do not
		// leak when evaluation returns early on error.
		donec = make(chan struct{}, len(tasks))
		errc  = make(chan error, len(tasks))
	)
	for _, task := range tasks {
		task.Status = group.Startf("%s", task.Name)
		executor.Runnable(task)
		counters.Int("tasks-run").Add(1)
		go func(task *Task) {
			for {
				state, err := task.WaitState(ctx, TaskOk)
				if err != nil {
					// Context errors only; evaluation is over.
					errc <- err
					return
				}
				if state == TaskOk {
					task.Status.Done()
					donec <- struct{}{}
					return
				}
				err = task.Err()
				if state == TaskLost {
					counters.Int("tasks-lost").Add(1)
				}
				if state == TaskErr && !errors.IsTemporary(err) {
					errc <- err
					return
				}
				n := task.retryCount()
				if n >= maxRetries {
					log.Error.Printf("eval: %s: retries exhausted", task)
					errc <- err
					return
				}
				log.Error.Printf("eval: %s; retrying", task)
				if err := retry.Wait(ctx, retryPolicy, n); err != nil {
					errc <- err
					return
				}
				task.Reset()
				counters.Int("tasks-retried").Add(1)
				executor.Runnable(task)
			}
		}(task)
	}
	for running := len(tasks); running > 0; {
		select {
		case <-donec:
			running--
		case err := <-errc:
			return err
		}
		var stateCounts [maxState]int
		for _, task := range tasks {
			stateCounts[task.State()]++
		}
		counts := make([]string, maxState)
		for state, count := range stateCounts {
			counts[state] = fmt.Sprintf("%s=%d", TaskState(state), count)
		}
		group.Printf("tasks: %s", strings.Join(counts, " "))
	}
	return nil
}

// retryCount returns the task's current resubmission count.
func (t *Task) retryCount() int {
	t.Lock()
	n := t.retries
	t.Unlock()
	return n
}

// run executes a single task on behalf of an executor: it marks the
// task running, gives it a fresh metrics scope through its context,
// invokes Do, and records the task's final state. Panics in Do are
// recovered and surfaced as fatal task errors.
func run(ctx context.Context, task *Task) {
	task.Set(TaskRunning)
	ctx = metrics.ScopedContext(ctx, &task.Scope)
	value, err := doTask(ctx, task)
	if err != nil {
		task.Error(err)
		return
	}
	task.Done(value)
}

func doTask(ctx context.Context, task *Task) (value interface{}, err error) {
	defer func() {
		if e := recover(); e != nil {
			stack := debug.Stack()
			err = fmt.Errorf("panic while computing index %d: %v\n%s", task.Name.Index, e, string(stack))
			err = errors.E(err, errors.Fatal)
		}
	}()
	return task.Do(ctx)
}
