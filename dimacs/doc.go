// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package dimacs writes CNF formulas in the DIMACS format.
//
// A Writer is a clause sink (inter.Adder): clauses are added as sequences
// of literals terminated by z.LitNull, then written out with a header
// giving the number of variables and clauses.  Comment lines may be added
// to name variables.
package dimacs
