// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package gen contains generators for Boolean expressions and networks.
//
// Random generators draw from a package level source which may be seeded
// with Seed, so that tests are reproducible.
package gen
