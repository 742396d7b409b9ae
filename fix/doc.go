// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package fix enumerates the stable states and trap spaces of Boolean
// networks.
//
// A stable state (or fixpoint) assigns every component the value of its
// own rule under that same assignment.  The set of stable states is the set
// of models of the conjunction, over all components x with rule f, of
// x <=> f.
//
// Three procedures are provided.  Clauses, the default, follows the
// approach of computing for each component the prime implicants of
// !x & f and x & !f: each is a pattern no stable state may match, and
// so a clause.  The clauses go to a gini CDCL solver whose unit
// propagation does the pruning; all models are enumerated with blocking
// clauses.  Rules too wide for prime implicants are Tseitin-encoded into
// the same solver instead.  Circuit builds the same condition as a gini and-inverter
// circuit and lets logic.C Tseitin-encode it.  BDD builds a decision
// diagram with rudd and walks its satisfying paths.
//
// All procedures return the same set of states; they differ in which
// networks they handle well.
//
// TrapSpaces finds the subspaces no update leaves, with two solver
// variables per component stating whether it is fixed to 1 or to 0, and
// clauses again derived from prime implicants.
package fix
