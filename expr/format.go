// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package expr

import (
	"fmt"
	"strings"
)

// Namer gives display names to components.
type Namer func(ID) string

// DefaultNamer names component i "v<i>".
func DefaultNamer(id ID) string {
	return fmt.Sprintf("v%d", id)
}

// String formats e with DefaultNamer.
func (e *Expr) String() string {
	return e.Format(DefaultNamer)
}

// Format formats e using "&", "|" and "!" and the names given by namer,
// adding parentheses only where precedence requires them.
func (e *Expr) Format(namer Namer) string {
	if namer == nil {
		namer = DefaultNamer
	}
	var sb strings.Builder
	e.format(&sb, namer, 0)
	return sb.String()
}

func prec(k Kind) int {
	switch k {
	case KOr:
		return 1
	case KAnd:
		return 2
	}
	return 3
}

func (e *Expr) format(sb *strings.Builder, namer Namer, parent int) {
	switch e.kind {
	case KConst:
		if e.val {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KVar:
		sb.WriteString(namer(e.id))
	case KNot:
		sb.WriteByte('!')
		e.a.format(sb, namer, prec(KNot))
	case KAnd, KOr:
		p := prec(e.kind)
		op := " & "
		if e.kind == KOr {
			op = " | "
		}
		if p < parent {
			sb.WriteByte('(')
		}
		e.a.format(sb, namer, p)
		sb.WriteString(op)
		e.b.format(sb, namer, p)
		if p < parent {
			sb.WriteByte(')')
		}
	}
}
