// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package gridslice

import "context"

// A Job describes an indexed computation: a function of a single
// index evaluated for every index in the one-based range [1, N]. An
// evaluator may invoke Do any number of times, in any order, and
// concurrently on disjoint indices; implementations must therefore be
// pure with respect to their index, sharing no mutable state between
// invocations. The context passed to Do carries a metrics scope (see
// package metrics) for the task.
type Job interface {
	// N returns the number of indices in the job's range.
	N() int
	// Do computes the value for the given one-based index.
	Do(ctx context.Context, index int) (interface{}, error)
}

type funcJob struct {
	n  int
	do func(ctx context.Context, index int) (interface{}, error)
}

func (j funcJob) N() int { return j.n }

func (j funcJob) Do(ctx context.Context, index int) (interface{}, error) {
	return j.do(ctx, index)
}

// JobFunc returns a Job with the range [1, n] that computes each
// index with the function do.
func JobFunc(n int, do func(ctx context.Context, index int) (interface{}, error)) Job {
	return funcJob{n: n, do: do}
}

// RowJob returns a Job that applies reduce to every row of the
// matrix. Indices are translated to rows by Matrix.ProvideRow, so the
// job's range is [1, m.Rows()] and index i names row i-1. The row
// passed to reduce is a view of the matrix and must not be modified.
func RowJob(m Matrix, reduce func(ctx context.Context, row []int) (interface{}, error)) Job {
	return JobFunc(m.Rows(), func(ctx context.Context, index int) (interface{}, error) {
		row, err := m.ProvideRow(index)
		if err != nil {
			return nil, err
		}
		return reduce(ctx, row)
	})
}
