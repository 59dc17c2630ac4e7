// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package metrics defines user metrics that flow from task
// invocations back to the driver. Metrics are declared globally (like
// flags) and updated through a Scope carried by the task's context;
// the evaluator merges the scopes of completed tasks into the
// result's scope, where the driver reads them.
//
// Metrics must be declared before a session is started, typically at
// package initialization:
//
//	var cellsRead = metrics.NewCounter()
//
//	... func(ctx context.Context, row []int) (interface{}, error) {
//		cellsRead.Incr(metrics.ContextScope(ctx), len(row))
//		...
//	}
package metrics

import "sync"

var (
	mu sync.Mutex
	// nmetric counts registered metrics; metric IDs 0..nmetric-1 index
	// into scope storage.
	nmetric int
)

// A Counter is a cumulative integer metric. Counters may be updated
// concurrently from any number of tasks; per-scope values are summed
// when scopes are merged.
type Counter struct {
	id int
}

// NewCounter declares and returns a new Counter.
func NewCounter() Counter {
	mu.Lock()
	defer mu.Unlock()
	c := Counter{id: nmetric}
	nmetric++
	return c
}

// Incr increments the counter by n in the provided scope.
func (c Counter) Incr(scope *Scope, n int) {
	scope.add(c.id, int64(n))
}

// Value returns the counter's value in the provided scope.
func (c Counter) Value(scope *Scope) int64 {
	return scope.value(c.id)
}
