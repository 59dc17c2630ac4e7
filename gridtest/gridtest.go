// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package gridtest provides utilities for testing gridslice user
// code. The utilities here are not optimized for performance; they
// are strictly intended for unit testing.
package gridtest

import (
	"context"
	"testing"

	"github.com/grailbio/gridslice"
	"github.com/grailbio/gridslice/exec"
)

// executors enumerates the executor configurations under which Run
// evaluates jobs.
var executors = map[string][]exec.Option{
	"pool":         {exec.Pool},
	"static/range": {exec.Static(exec.RangePartitioner{})},
	"static/hash":  {exec.Static(exec.HashPartitioner{})},
}

// Run evaluates the provided job once under every executor
// configuration, in-process, and returns the per-executor values,
// ordered by index. Errors are reported as fatal to the provided t
// instance. Run is intended for unit testing of job kernels.
func Run(t *testing.T, job gridslice.Job) map[string][]interface{} {
	t.Helper()
	out := make(map[string][]interface{})
	for name, options := range executors {
		res, err := run(job, options)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		out[name] = res.Values()
	}
	return out
}

// RunErr is like Run, but returns the per-executor evaluation errors
// instead of failing the test. It is intended for testing job error
// paths.
func RunErr(job gridslice.Job) map[string]error {
	out := make(map[string]error)
	for name, options := range executors {
		_, err := run(job, options)
		out[name] = err
	}
	return out
}

func run(job gridslice.Job, options []exec.Option) (*exec.Result, error) {
	sess := exec.Start(append([]exec.Option{exec.Parallelism(2)}, options...)...)
	defer sess.Shutdown()
	return sess.Run(context.Background(), job)
}
