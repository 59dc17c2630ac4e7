// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"

	"github.com/grailbio/base/backgroundcontext"
	"github.com/grailbio/base/limiter"
	"github.com/grailbio/base/log"
)

// poolExecutor runs tasks in-process on a dynamic pool of
// goroutines: every runnable task contends for one of
// Session.Parallelism() slots, so indices are scheduled onto workers
// in completion order rather than by a fixed assignment.
type poolExecutor struct {
	sess    *Session
	limiter *limiter.Limiter
	ctx     context.Context
}

func newPoolExecutor() *poolExecutor {
	return &poolExecutor{limiter: limiter.New()}
}

func (p *poolExecutor) Name() string { return "pool" }

func (p *poolExecutor) Start(sess *Session) (shutdown func()) {
	p.sess = sess
	p.limiter.Release(sess.p)
	ctx, cancel := context.WithCancel(backgroundcontext.Get())
	p.ctx = ctx
	return cancel
}

func (p *poolExecutor) Runnable(task *Task) {
	task.Set(TaskWaiting)
	go p.run(task)
}

func (p *poolExecutor) run(task *Task) {
	if err := p.limiter.Acquire(p.ctx, 1); err != nil {
		// The only errors we should encounter here are context
		// errors, indicating that the executor has been shut down.
		if err != context.Canceled && err != context.DeadlineExceeded {
			log.Panicf("exec.pool: unexpected error: %v", err)
		}
		task.Error(err)
		return
	}
	defer p.limiter.Release(1)
	run(p.ctx, task)
}
