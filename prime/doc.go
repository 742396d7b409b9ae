// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package prime computes prime implicants of Boolean expressions.
//
// An implicant of a function f is a conjunction of literals which entails
// f.  It is prime if no literal can be removed from it while remaining an
// implicant.  The disjunction of all prime implicants of f is equivalent to
// f.
//
// Computation is exponential in the number of components a function
// depends on.  Network rules typically depend on a handful of components,
// and larger supports are refused with ErrSupportTooLarge rather than
// running out of time or memory.
package prime
