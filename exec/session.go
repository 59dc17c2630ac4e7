// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/grailbio/base/backgroundcontext"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/status"
	"github.com/grailbio/gridslice"
	"github.com/grailbio/gridslice/stats"
)

// Session represents a gridslice compute session: an executor
// together with its configuration. A session is started by the Start
// method and can run multiple jobs, allowing for iterative computing.
//
// A driver follows this form:
//
//	sess := exec.Start(exec.Pool)
//	defer sess.Shutdown()
//	res, err := sess.Run(ctx, job)
type Session struct {
	context.Context
	index      int32
	shutdown   func()
	p          int
	maxRetries int
	executor   Executor
	status     *status.Status
	counters   *stats.Map

	// nrun numbers the runs performed by this session; it is used to
	// name tasks uniquely.
	nrun int32
}

func newSession() *Session {
	return &Session{
		Context:    backgroundcontext.Get(),
		index:      atomic.AddInt32(&nextSessionIndex, 1) - 1,
		maxRetries: DefaultMaxRetries,
		counters:   stats.NewMap(),
	}
}

// An Option represents a session configuration parameter value.
type Option func(s *Session)

// Pool configures a session with the dynamic pool executor: tasks
// are scheduled onto workers in completion order.
var Pool Option = func(s *Session) {
	s.executor = newPoolExecutor()
}

// Static configures a session with the static executor: tasks are
// assigned to per-worker queues up front by the provided partitioner.
func Static(part Partitioner) Option {
	return func(s *Session) {
		s.executor = newStaticExecutor(part)
	}
}

// Parallelism configures the session with the provided number of
// workers.
func Parallelism(p int) Option {
	if p <= 0 {
		panic("exec.Parallelism: p <= 0")
	}
	return func(s *Session) {
		s.p = p
	}
}

// MaxRetries configures the session's per-task retry budget for lost
// tasks and tasks failing with temporary errors.
func MaxRetries(n int) Option {
	if n < 0 {
		panic("exec.MaxRetries: n < 0")
	}
	return func(s *Session) {
		s.maxRetries = n
	}
}

// Status configures the session with a status object to which run
// statuses are reported.
func Status(status *status.Status) Option {
	return func(s *Session) {
		s.status = status
	}
}

// nextSessionIndex is the index of the next session that will be
// started by Start. In general there should be only one session per
// process, but we violate this in tests.
var nextSessionIndex int32

// Start creates and starts a new gridslice session, configuring it
// according to the provided options. The returned session remains
// valid until Shutdown is called. If no executor is configured, the
// session uses the pool executor; if no parallelism is configured,
// the session uses one worker per available CPU.
func Start(options ...Option) *Session {
	s := newSession()
	for _, opt := range options {
		opt(s)
	}
	if s.p == 0 {
		s.p = runtime.GOMAXPROCS(0)
	}
	if s.executor == nil {
		s.executor = newPoolExecutor()
	}
	s.start()
	return s
}

func (s *Session) start() {
	s.shutdown = s.executor.Start(s)
	log.Debug.Printf("exec: session %d started: executor=%s parallelism=%d", s.index, s.executor.Name(), s.p)
}

// Run evaluates the provided job on the session's executor. Run
// returns when every index in the job's range has been computed, or
// else on error; it is safe to make concurrent calls to Run. The
// result's values are ordered by index regardless of the order in
// which tasks complete.
func (s *Session) Run(ctx context.Context, job gridslice.Job) (*Result, error) {
	n := job.N()
	if n < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("exec.Run: negative job size %d", n))
	}
	runIndex := atomic.AddInt32(&s.nrun, 1) - 1
	op := fmt.Sprintf("run%d", runIndex)
	tasks := make([]*Task, n)
	for i := range tasks {
		index := i + 1
		tasks[i] = &Task{
			Name: TaskName{Op: op, Index: index, N: n},
			Do: func(ctx context.Context) (interface{}, error) {
				return job.Do(ctx, index)
			},
		}
	}
	var group *status.Group
	if s.status != nil {
		group = s.status.Groupf("%s [%d] tasks", op, n)
	}
	if err := eval(ctx, s.executor, tasks, group, s.counters, s.maxRetries); err != nil {
		return nil, err
	}
	values := make([]interface{}, n)
	for i, task := range tasks {
		values[i] = task.Value()
	}
	return &Result{values: values, tasks: tasks}, nil
}

// Must is a version of Run that panics if the computation fails.
func (s *Session) Must(ctx context.Context, job gridslice.Job) *Result {
	res, err := s.Run(ctx, job)
	if err != nil {
		log.Panicf("exec.Run: %v", err)
	}
	return res
}

// Parallelism returns the session's number of workers.
func (s *Session) Parallelism() int {
	return s.p
}

// Counters returns a snapshot of the session's runtime counters.
func (s *Session) Counters() stats.Values {
	return s.counters.Snapshot()
}

// Status returns the session's status aggregator.
func (s *Session) Status() *status.Status {
	return s.status
}

// Shutdown tears down resources associated with this session. It
// should be called when the session is discarded.
func (s *Session) Shutdown() {
	if s.shutdown != nil {
		s.shutdown()
	}
}
