// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package handle exposes expressions and models through opaque handles.
//
// A Registry is meant to sit behind a foreign function interface or any
// other boundary where the caller can not hold Go values.  Every object
// handed out gets a Handle which is released exactly once.  Misuse, such as
// releasing twice or using a released handle, is reported with ErrReleased.
//
// Transforms which may leave their argument unchanged (Simplify, NNF,
// Dissolve) report whether a new handle was created; when they did not, the
// caller keeps using the original handle.
//
// Strings are returned as buffers with their own handles, released with
// ReleaseString after copying their contents with String.
//
// The Registry counts created, released and live handles per kind, both
// through Live and as Prometheus metrics.
package handle
