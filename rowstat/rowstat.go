// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package rowstat computes per-row statistics for integer rows. The
// computations are pure and allocate nothing, so they may be invoked
// concurrently on disjoint rows without coordination.
package rowstat

import (
	"fmt"
	"math"

	"github.com/grailbio/base/errors"
)

// ErrEmptyRow is returned by Of for a zero-length row, for which sum
// and mean are undefined. Rows drawn from a Matrix are never empty
// (matrix construction requires positive dimensions), so this is a
// defensive invariant rather than an expected runtime path.
var ErrEmptyRow = errors.E(errors.Invalid, "rowstat: empty row")

// A Result holds the statistics of a single row. Results are derived
// deterministically from the row and carry no reference to it.
type Result struct {
	// Sum is the sum of the row's values.
	Sum int64
	// Mean is the integer mean Sum/n. The division is integer
	// division, matching the exercise this computation reproduces:
	// the mean of a row is deliberately truncated so that the result
	// stays integral.
	Mean int64
	// SumSquares is the sum of the squares of the row's values.
	SumSquares int64
	// StdDev is sqrt(SumSquares), computed in floating point. The
	// name follows the original exercise, which computes a
	// root-sum-of-squares rather than a conventional standard
	// deviation (it neither subtracts the mean nor divides by n); the
	// computation is preserved as-is rather than corrected.
	StdDev float64
}

// String returns a compact single-line rendering of the result.
func (r Result) String() string {
	return fmt.Sprintf("sum=%d mean=%d sumsq=%d stddev=%.2f", r.Sum, r.Mean, r.SumSquares, r.StdDev)
}

// Of returns the statistics of row, computed in a single pass. It
// fails with ErrEmptyRow if the row has no elements; there are no
// other error paths.
func Of(row []int) (Result, error) {
	if len(row) == 0 {
		return Result{}, ErrEmptyRow
	}
	var r Result
	for _, v := range row {
		r.Sum += int64(v)
		r.SumSquares += int64(v) * int64(v)
	}
	r.Mean = r.Sum / int64(len(row))
	r.StdDev = math.Sqrt(float64(r.SumSquares))
	return r, nil
}
