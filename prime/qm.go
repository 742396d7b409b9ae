// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package prime

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/go-air/regnet/expr"
)

const (
	// DefaultMaxSupport bounds the support size accepted by Of when the
	// caller passes a non positive limit.
	DefaultMaxSupport = 16

	// MaxSupport is the largest support Of can handle at all.
	MaxSupport = 62
)

// ErrSupportTooLarge is returned when a function depends on more
// components than the requested limit.
var ErrSupportTooLarge = errors.New("prime: support too large")

// cube is a partial assignment over the local support positions: bits set
// in care are fixed, to the corresponding bit in val.
type cube struct {
	care, val uint64
}

// Of returns all prime implicants of e.
//
// Of enumerates the minterms of e over its support and merges implicants
// which differ in exactly one literal until no merge is possible, in the
// manner of Quine and McCluskey.  The implicants which were never merged are
// prime.  The cost is exponential in the size of the support, which must not
// exceed maxSupport (DefaultMaxSupport if maxSupport <= 0).
//
// The result is sorted, its disjunction is equivalent to e, and no
// implicant subsumes another.
func Of(e *expr.Expr, maxSupport int) (Cover, error) {
	if maxSupport <= 0 {
		maxSupport = DefaultMaxSupport
	}
	if maxSupport > MaxSupport {
		maxSupport = MaxSupport
	}
	sup := e.Support()
	if len(sup) > maxSupport {
		return nil, fmt.Errorf("%w: %d components, limit %d", ErrSupportTooLarge, len(sup), maxSupport)
	}
	pos := make(map[expr.ID]uint, len(sup))
	for i, id := range sup {
		pos[id] = uint(i)
	}
	full := uint64(1)<<uint(len(sup)) - 1

	level := make(map[cube]bool)
	for m := uint64(0); m <= full; m++ {
		mm := m
		if e.Eval(func(id expr.ID) bool { return mm&(1<<pos[id]) != 0 }) {
			level[cube{care: full, val: m}] = false
		}
	}

	var primes []cube
	for len(level) != 0 {
		next := make(map[cube]bool)
		for c := range level {
			for rest := c.care; rest != 0; rest &= rest - 1 {
				bit := rest & -rest
				if c.val&bit != 0 {
					continue
				}
				o := cube{care: c.care, val: c.val | bit}
				if _, ok := level[o]; !ok {
					continue
				}
				level[c] = true
				level[o] = true
				next[cube{care: c.care &^ bit, val: c.val}] = false
			}
		}
		for c, merged := range level {
			if !merged {
				primes = append(primes, c)
			}
		}
		level = next
	}

	res := make(Cover, 0, len(primes))
	for _, c := range primes {
		res = append(res, c.implicant(sup))
	}
	res = dropSubsumed(res)
	res.sort()
	return res, nil
}

func (c cube) implicant(sup []expr.ID) Implicant {
	p := make(Implicant, 0, bits.OnesCount64(c.care))
	for i, id := range sup {
		bit := uint64(1) << uint(i)
		if c.care&bit == 0 {
			continue
		}
		p = append(p, Literal{ID: id, Value: c.val&bit != 0})
	}
	return p
}

// dropSubsumed removes from c every implicant which is entailed by another
// one.  Duplicates keep their first occurence.
func dropSubsumed(c Cover) Cover {
	res := make(Cover, 0, len(c))
	for i, p := range c {
		sub := false
		for j, q := range c {
			if i == j || !q.Subsumes(p) {
				continue
			}
			if len(q) < len(p) || j < i {
				sub = true
				break
			}
		}
		if !sub {
			res = append(res, p)
		}
	}
	return res
}

// IsImplicant returns whether p entails e, checking every assignment of the
// components of e which p leaves free.
func IsImplicant(p Implicant, e *expr.Expr) bool {
	var free []expr.ID
	for _, id := range e.Support() {
		if _, ok := p.Lookup(id); !ok {
			free = append(free, id)
		}
	}
	if len(free) > MaxSupport {
		panic("prime: too many free components")
	}
	for m := uint64(0); m < uint64(1)<<uint(len(free)); m++ {
		mm := m
		val := func(id expr.ID) bool {
			if v, ok := p.Lookup(id); ok {
				return v
			}
			for i, f := range free {
				if f == id {
					return mm&(1<<uint(i)) != 0
				}
			}
			return false
		}
		if !e.Eval(val) {
			return false
		}
	}
	return true
}

// IsPrime returns whether p is an implicant of e from which no literal can
// be removed.
func IsPrime(p Implicant, e *expr.Expr) bool {
	if !IsImplicant(p, e) {
		return false
	}
	for i := range p {
		if IsImplicant(p.Without(i), e) {
			return false
		}
	}
	return true
}
