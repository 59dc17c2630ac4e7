// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package gridslice_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/gridslice"
)

func TestFormat(t *testing.T) {
	for _, c := range []struct {
		rows, cols int
		want       string
	}{
		{1, 1, "0\n"},
		{2, 2, "0, 1\n2, 3\n"},
		// Width is that of the largest possible value, 11.
		{3, 4, "0 , 1 , 2 , 3 \n4 , 5 , 6 , 7 \n8 , 9 , 10, 11\n"},
	} {
		m, err := gridslice.New(c.rows, c.cols)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := m.String(), c.want; got != want {
			t.Errorf("%dx%d: got %q, want %q", c.rows, c.cols, got, want)
		}
		var b bytes.Buffer
		if err := m.WriteFormatted(&b); err != nil {
			t.Fatal(err)
		}
		if got, want := b.String(), c.want; got != want {
			t.Errorf("%dx%d: got %q, want %q", c.rows, c.cols, got, want)
		}
	}
}

func TestFormatShape(t *testing.T) {
	m, err := gridslice.New(5, 10)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(m.String(), "\n"), "\n")
	if got, want := len(lines), 5; got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, line := range lines {
		if got, want := len(strings.Split(line, ", ")), 10; got != want {
			t.Errorf("row %d: got %v columns, want %v", i, got, want)
		}
		// All cells are padded to the width of the largest value, 49.
		if got, want := len(line), 10*2+9*2; got != want {
			t.Errorf("row %d: got width %v, want %v", i, got, want)
		}
	}
}
