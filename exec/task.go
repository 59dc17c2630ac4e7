// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/grailbio/base/status"
	"github.com/grailbio/gridslice/metrics"
)

// ErrTaskLost indicates that a Task was in TaskLost state.
var ErrTaskLost = errors.New("task was lost")

// TaskState represents the runtime state of a Task. TaskState values
// are defined so that their magnitudes correspond with task
// progression.
type TaskState int

const (
	// TaskInit is the initial state of a task. Tasks in state TaskInit
	// have not yet been seen by an executor.
	TaskInit TaskState = iota

	// TaskWaiting indicates that a task has been scheduled for
	// execution (it is runnable) but has not yet been allocated
	// resources by the executor.
	TaskWaiting
	// TaskRunning is the state of a task that's currently being run.
	// After a task is in state TaskRunning, it can only enter a
	// larger-valued state.
	TaskRunning

	// TaskOk indicates that a task has successfully completed; the
	// task's value is available to the driver.
	//
	// All TaskState values greater than TaskOk indicate task errors.
	TaskOk

	// TaskErr indicates that the task experienced a failure while
	// running.
	TaskErr
	// TaskLost indicates that the task was lost, usually because the
	// worker to which the task was assigned disappeared.
	TaskLost

	maxState
)

var states = [...]string{
	TaskInit:    "INIT",
	TaskWaiting: "WAITING",
	TaskRunning: "RUNNING",
	TaskOk:      "OK",
	TaskErr:     "ERROR",
	TaskLost:    "LOST",
}

// String returns the task's state as an upper-case string.
func (s TaskState) String() string {
	return states[s]
}

// A TaskName uniquely names a task within a session by its run and
// its position in the run's index range.
type TaskName struct {
	// Op is a unique string describing the run to which the task
	// belongs.
	Op string
	// Index and N describe the one-based index computed by this task
	// and the total number of indices in the run.
	Index, N int
}

// String returns a canonical representation of the task name,
// formatted as:
//
//	{n.Op}@{n.N}:{n.Index}
func (n TaskName) String() string {
	return fmt.Sprintf("%s@%d:%d", n.Op, n.N, n.Index)
}

// A Task represents a single index of a Job: the unit of work
// dispatched to executors. Tasks are used to coordinate execution
// between the evaluator and a single executor (which may be running
// many tasks concurrently), so they embed a mutex and provide a
// broadcast channel to coordinate runtime state changes.
type Task struct {
	// Name is the name of the task. Tasks are named uniquely inside
	// each session.
	Name TaskName
	// Do computes the task's value. It is invoked by the executor
	// once the task has been allocated a worker. Do must be pure: it
	// may be invoked multiple times (e.g., when a task is lost and
	// resubmitted) and concurrently with the Dos of other tasks.
	Do func(ctx context.Context) (interface{}, error)
	// Scope is the metrics scope for this task. It is populated with
	// the metrics produced during execution of this task.
	Scope metrics.Scope
	// Status is a status object to which task status is reported.
	Status *status.Task

	// The following coordinate runtime execution.

	sync.Mutex
	waitc chan struct{}

	// state is the task's state. It is protected by the task's lock;
	// state changes are broadcast on the task's wait channel.
	state TaskState
	// err is defined when state == TaskErr.
	err error
	// value is the task's computed value; defined when state ==
	// TaskOk.
	value interface{}
	// retries is the number of times this task has been resubmitted
	// after being lost or failing with a temporary error.
	retries int
}

// String returns a short, human-readable string describing the
// task's state.
func (t *Task) String() string {
	// We play fast-and-loose with concurrency here (we read state and
	// err without holding the task's mutex) so that it is safe to
	// call String even when the lock is held.
	var b bytes.Buffer
	fmt.Fprintf(&b, "task %s %s", t.Name, t.state)
	if t.err != nil {
		fmt.Fprintf(&b, ": %v", t.err)
	}
	return b.String()
}

// Set sets the task's state to the provided state and notifies any
// waiters.
func (t *Task) Set(state TaskState) {
	t.Lock()
	t.state = state
	t.Broadcast()
	t.Unlock()
}

// Done sets the task's value to the provided value, marks the task
// TaskOk, and notifies waiters.
func (t *Task) Done(value interface{}) {
	t.Lock()
	t.value = value
	t.state = TaskOk
	t.Broadcast()
	t.Unlock()
}

// Error sets the task's state to TaskErr and its error to the
// provided error. Waiters are notified.
func (t *Task) Error(err error) {
	t.Lock()
	t.state = TaskErr
	t.err = err
	t.Status.Printf(err.Error())
	t.Broadcast()
	t.Unlock()
}

// Errorf formats an error message using fmt.Errorf, sets the task's
// state to TaskErr and its err to the resulting error.
func (t *Task) Errorf(format string, v ...interface{}) {
	t.Error(fmt.Errorf(format, v...))
}

// Err returns an error if the task's state is >= TaskErr. When the
// state is TaskLost, Err returns ErrTaskLost; otherwise t.err is
// returned.
func (t *Task) Err() error {
	t.Lock()
	defer t.Unlock()
	switch t.state {
	case TaskErr:
		if t.err == nil {
			panic("TaskErr without an err")
		}
		return t.err
	case TaskLost:
		return ErrTaskLost
	}
	if t.state >= TaskErr {
		panic("unhandled state")
	}
	return nil
}

// State returns the task's current state.
func (t *Task) State() TaskState {
	t.Lock()
	state := t.state
	t.Unlock()
	return state
}

// Value returns the task's computed value. Value is valid only after
// the task has entered state TaskOk.
func (t *Task) Value() interface{} {
	t.Lock()
	value := t.value
	t.Unlock()
	return value
}

// Reset reinitializes the task so that it may be resubmitted to an
// executor, and returns the number of resubmissions so far, counting
// this one.
func (t *Task) Reset() int {
	t.Lock()
	t.state = TaskInit
	t.err = nil
	t.value = nil
	t.retries++
	n := t.retries
	t.Unlock()
	return n
}

// Broadcast notifies waiters of a state change. Broadcast must only
// be called while the task's lock is held.
func (t *Task) Broadcast() {
	if t.waitc != nil {
		close(t.waitc)
		t.waitc = nil
	}
}

// Wait returns after the next call to Broadcast, or if the context
// is complete. The task's lock must be held when calling Wait.
func (t *Task) Wait(ctx context.Context) error {
	if t.waitc == nil {
		t.waitc = make(chan struct{})
	}
	waitc := t.waitc
	t.Unlock()
	var err error
	select {
	case <-waitc:
	case <-ctx.Done():
		err = ctx.Err()
	}
	t.Lock()
	return err
}

// WaitState returns when the task's state is at least the provided
// state, or else when the context is done.
func (t *Task) WaitState(ctx context.Context, state TaskState) (TaskState, error) {
	t.Lock()
	defer t.Unlock()
	var err error
	for t.state < state && err == nil {
		err = t.Wait(ctx)
	}
	return t.state, err
}
