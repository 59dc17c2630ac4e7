// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package gridslice

import (
	"github.com/grailbio/base/errors"
)

var (
	// ErrInvalidDimension is returned by New when either dimension is
	// not positive. No partial matrix is produced.
	ErrInvalidDimension = errors.E(errors.Invalid, "matrix dimensions must be positive")
	// ErrIndexOutOfRange is returned by the row and cell accessors
	// when an index falls outside the matrix.
	ErrIndexOutOfRange = errors.E(errors.Invalid, "matrix index out of range")
)

// A Matrix is an immutable rectangular array of integers with
// deterministic contents: cell (i, j) holds i*cols+j, its row-major
// linear index. Matrices are values; they are never mutated after
// construction and are therefore safe to share among any number of
// concurrent readers without locking.
type Matrix struct {
	rows, cols int
	cells      []int
}

// New returns the rows×cols matrix whose cell (i, j) holds i*cols+j.
// It fails with ErrInvalidDimension unless both dimensions are
// positive. New is a pure function: calling it twice with the same
// arguments yields Equal matrices.
func New(rows, cols int) (Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return Matrix{}, ErrInvalidDimension
	}
	cells := make([]int, rows*cols)
	// The cell formula i*cols+j is exactly the row-major linear index.
	for i := range cells {
		cells[i] = i
	}
	return Matrix{rows: rows, cols: cols, cells: cells}, nil
}

// Rows returns the number of rows in the matrix.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of columns in the matrix.
func (m Matrix) Cols() int { return m.cols }

// Row returns the i'th (zero-based) row of the matrix. It fails with
// ErrIndexOutOfRange if i is not in [0, Rows). The returned slice is
// a view of the matrix and must not be modified by the caller.
func (m Matrix) Row(i int) ([]int, error) {
	if i < 0 || i >= m.rows {
		return nil, ErrIndexOutOfRange
	}
	off := i * m.cols
	return m.cells[off : off+m.cols : off+m.cols], nil
}

// Cell returns the value at row i, column j (both zero-based). It
// fails with ErrIndexOutOfRange if either index is out of bounds.
func (m Matrix) Cell(i, j int) (int, error) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return 0, ErrIndexOutOfRange
	}
	return m.cells[i*m.cols+j], nil
}

// ProvideRow returns the row named by the one-based index, following
// the convention of range-parallelized drivers that distribute the
// indices 1, ..., Rows. ProvideRow(i) is equivalent to Row(i-1).
func (m Matrix) ProvideRow(index int) ([]int, error) {
	return m.Row(index - 1)
}

// Equal tells whether matrices m and n are structurally equal: same
// dimensions and the same cell values.
func (m Matrix) Equal(n Matrix) bool {
	if m.rows != n.rows || m.cols != n.cols {
		return false
	}
	for i, v := range m.cells {
		if n.cells[i] != v {
			return false
		}
	}
	return true
}
