// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-air/gini/z"
)

// Writer accumulates clauses and comments for output in DIMACS format.
type Writer struct {
	comments []string
	ms       []z.Lit // clause literals, each clause ended by z.LitNull
	nc       int
	max      z.Var
	open     bool
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{ms: make([]z.Lit, 0, 1024)}
}

// Add implements inter.Adder.
func (w *Writer) Add(m z.Lit) {
	w.ms = append(w.ms, m)
	if m == z.LitNull {
		w.nc++
		w.open = false
		return
	}
	w.open = true
	if v := m.Var(); v > w.max {
		w.max = v
	}
}

// MaxVar returns the largest variable added so far.
func (w *Writer) MaxVar() z.Var {
	return w.max
}

// Reserve makes the header declare at least v variables, even if some do
// not occur in any clause.
func (w *Writer) Reserve(v z.Var) {
	if v > w.max {
		w.max = v
	}
}

// Len returns the number of complete clauses.
func (w *Writer) Len() int {
	return w.nc
}

// Comment adds a comment line to the output header.  Line breaks in s are
// replaced by spaces.
func (w *Writer) Comment(format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	w.comments = append(w.comments, strings.ReplaceAll(s, "\n", " "))
}

// WriteTo writes the comments, the problem line and the clauses to dst.
// A clause left open by Add is terminated.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	if w.open {
		w.Add(z.LitNull)
	}
	bw := bufio.NewWriter(dst)
	var n int64
	put := func(format string, args ...interface{}) error {
		k, err := fmt.Fprintf(bw, format, args...)
		n += int64(k)
		return err
	}
	for _, c := range w.comments {
		if err := put("c %s\n", c); err != nil {
			return n, err
		}
	}
	if err := put("p cnf %d %d\n", w.max, w.nc); err != nil {
		return n, err
	}
	first := true
	for _, m := range w.ms {
		var err error
		switch {
		case m == z.LitNull && first:
			err = put("0\n")
		case m == z.LitNull:
			err = put(" 0\n")
			first = true
		case first:
			err = put("%d", m.Dimacs())
			first = false
		default:
			err = put(" %d", m.Dimacs())
		}
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}
