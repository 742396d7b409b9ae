// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package expr provides immutable Boolean expressions over component
// identifiers.
//
// An expression is a tree of constants, variables, negations and binary
// conjunctions and disjunctions.  Nodes are never modified once built, so
// any node may be shared by many parents and by many goroutines.
//
// Transformations (Simplify, NNF, Substitute, Dissolve) follow a "maybe
// changed" convention: they return the resulting expression together with
// a boolean which is false exactly when the input was returned as is.  This
// lets callers keep an existing expression without comparing trees.
package expr
