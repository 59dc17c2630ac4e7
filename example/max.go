// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package example contains a user-defined row kernel illustrating
// that the executors in package exec are decoupled from the
// arithmetic they run: any pure function over a row can be
// distributed the same way as the built-in statistics. See
// max_test.go for how such kernels are tested.
package example

import (
	"github.com/grailbio/base/errors"
)

// RowMax returns the largest value in row. It fails for an empty
// row, for which no maximum is defined.
func RowMax(row []int) (int, error) {
	if len(row) == 0 {
		return 0, errors.E(errors.Invalid, "example: empty row")
	}
	max := row[0]
	for _, v := range row[1:] {
		if v > max {
			max = v
		}
	}
	return max, nil
}
