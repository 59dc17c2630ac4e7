// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
Package gridslice demonstrates explicit parallelism over a small,
deterministic data set. A Matrix is a rectangular integer grid whose
cell (i, j) holds i*cols+j; per-row computations (see package
rowstat) are distributed across workers by the executors in package
exec, and their results are collected back at the driver in row
order.

The computational core is deliberately tiny and pure: matrix
generation and row reduction are ordinary single-threaded
arithmetic. What the repository illustrates is the seam between
that core and an execution layer. A Job names an index range and a
function of a single index; the evaluator may invoke that function
any number of times, in any order, concurrently on disjoint
indices. Because the Matrix is read-only after construction and
each invocation reads only its own inputs, no locking is needed
anywhere in user code.

Drivers follow this form:

	m, err := gridslice.New(rows, cols)
	if err != nil {
		log.Fatal(err)
	}
	job := gridslice.RowJob(m, func(ctx context.Context, row []int) (interface{}, error) {
		return myReduce(row)
	})
	sess := exec.Start(exec.Pool)
	res, err := sess.Run(ctx, job)

Row indices handed to Jobs are one-based, following the convention
of range-parallelized drivers; Matrix.ProvideRow performs the
translation to the zero-based accessors.
*/
package gridslice
