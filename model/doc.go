// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package model provides Boolean network models of regulatory systems.
//
// A Model is a table of named components, each with a Boolean update rule
// (an expr.Expr) over the components of the model.  Rules reference
// components by id, so renaming never touches them.
//
// Besides editing (Add, SetRule, Rename, Fix), a model can be reduced by
// eliminating components (Eliminate), and analysed: prime implicants of the
// rules (Primes) and stable states (Fixpoints).
package model
