// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package gridio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/gridslice/rowstat"
)

// A Scanner reads per-row statistics in the line format produced by
// WriteResults. Scanning stops at the end of the input or on the
// first malformed line; the caller should inspect Err when Scan
// returns false.
type Scanner struct {
	scanner *bufio.Scanner
	err     error
	row     int
	res     rowstat.Result
}

// NewScanner returns a Scanner that reads results from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{scanner: bufio.NewScanner(r)}
}

// Scan parses the next line. It returns true while a row remains and
// no error has occurred.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if !s.scanner.Scan() {
		s.err = s.scanner.Err()
		return false
	}
	line := s.scanner.Text()
	fields := strings.Split(line, "\t")
	if len(fields) != 5 {
		s.err = errors.E(errors.Invalid, fmt.Sprintf("gridio: malformed line %q", line))
		return false
	}
	var res rowstat.Result
	row, err := strconv.Atoi(fields[0])
	if err == nil {
		res.Sum, err = strconv.ParseInt(fields[1], 10, 64)
	}
	if err == nil {
		res.Mean, err = strconv.ParseInt(fields[2], 10, 64)
	}
	if err == nil {
		res.SumSquares, err = strconv.ParseInt(fields[3], 10, 64)
	}
	if err == nil {
		res.StdDev, err = strconv.ParseFloat(fields[4], 64)
	}
	if err != nil {
		s.err = errors.E(errors.Invalid, fmt.Sprintf("gridio: malformed line %q: %v", line, err))
		return false
	}
	s.row, s.res = row, res
	return true
}

// Row returns the row number of the last line scanned.
func (s *Scanner) Row() int { return s.row }

// Result returns the statistics of the last line scanned.
func (s *Scanner) Result() rowstat.Result { return s.res }

// Err returns the error, if any, that stopped the scanner.
func (s *Scanner) Err() error { return s.err }
