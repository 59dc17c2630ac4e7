// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package gridslice

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// WriteFormatted writes a human-readable rendering of the matrix to
// w: every cell is padded on the right to the width of the largest
// possible cell value (rows*cols-1), columns are joined by ", ", and
// rows by a newline. The format is for inspection only; it is not a
// wire contract.
func (m Matrix) WriteFormatted(w io.Writer) error {
	width := len(strconv.Itoa(m.rows*m.cols - 1))
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			var sep string
			if j < m.cols-1 {
				sep = ", "
			}
			if _, err := fmt.Fprintf(w, "%-*d%s", width, m.cells[i*m.cols+j], sep); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// String returns the matrix formatted as by WriteFormatted.
func (m Matrix) String() string {
	var b bytes.Buffer
	m.WriteFormatted(&b) // error is impossible on a bytes.Buffer
	return b.String()
}
