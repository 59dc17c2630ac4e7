// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"
	"fmt"

	"github.com/grailbio/base/backgroundcontext"
	"golang.org/x/sync/errgroup"
)

// staticExecutor runs tasks in-process on a fixed set of workers,
// each with its own queue. Tasks are assigned to workers at
// submission time by a Partitioner, so the index-to-worker mapping is
// decided up front rather than by completion order.
type staticExecutor struct {
	sess   *Session
	part   Partitioner
	queues []chan *Task
	ctx    context.Context
	cancel func()
	group  *errgroup.Group
}

func newStaticExecutor(part Partitioner) *staticExecutor {
	return &staticExecutor{part: part}
}

func (e *staticExecutor) Name() string {
	return fmt.Sprintf("static/%s", e.part)
}

func (e *staticExecutor) Start(sess *Session) (shutdown func()) {
	e.sess = sess
	e.ctx, e.cancel = context.WithCancel(backgroundcontext.Get())
	e.group, e.ctx = errgroup.WithContext(e.ctx)
	e.queues = make([]chan *Task, sess.p)
	for i := range e.queues {
		queue := make(chan *Task)
		e.queues[i] = queue
		e.group.Go(func() error {
			for {
				select {
				case task := <-queue:
					run(e.ctx, task)
				case <-e.ctx.Done():
					return e.ctx.Err()
				}
			}
		})
	}
	return func() {
		e.cancel()
		// Workers exit with context.Canceled; nothing to report.
		_ = e.group.Wait()
	}
}

func (e *staticExecutor) Runnable(task *Task) {
	task.Set(TaskWaiting)
	queue := e.queues[e.part.Partition(task.Name.Index, task.Name.N, len(e.queues))]
	// Hand off asynchronously so that submission never blocks on a
	// busy worker.
	go func() {
		select {
		case queue <- task:
		case <-e.ctx.Done():
			task.Error(e.ctx.Err())
		}
	}()
}
