// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataview provides uniform, column-addressable read access to a
// design matrix, dense or sparse, with the per-column mean/scale caches a
// penalized GLM solver needs to standardize without ever materializing a
// centered dense copy of X.
package dataview

import "errors"

// ErrShape is the panic value used when a caller-supplied vector does not
// match the number of rows in the view.
var ErrShape = errors.New("dataview: dimension mismatch")

// View is read-only access to an n×p design matrix. A View is created once
// per fit and never mutated; all state it exposes (dims, xm, xs) is fixed at
// construction.
type View interface {
	// Dims returns the number of rows (observations) and columns (features).
	Dims() (n, p int)

	// Standardized reports whether column operations on this View act on the
	// standardized column (X[:,j]-xm[j])/xs[j] rather than the raw column.
	// This is fixed at construction: a solver must never mix standardized
	// and raw calls against the same View.
	Standardized() bool

	// Dot returns the inner product of column j with v.
	Dot(j int, v []float64) float64

	// WeightedDot returns the inner product of column j with v, weighted
	// elementwise by w.
	WeightedDot(j int, v, w []float64) float64

	// ColNorm2 returns sum_i w[i]*X[i,j]^2 under the view's standardization
	// mode, i.e. the coordinate-descent denominator d_j from §4.2 before any
	// ridge term is added.
	ColNorm2(j int, w []float64) float64

	// AddScaledCol performs dst[i] += alpha*X[i,j] (standardized if the view
	// is in standardized mode) for all i, in place.
	AddScaledCol(dst []float64, j int, alpha float64)

	// Mean and Scale return the column j centering and scaling constants.
	// For an unstandardized view, Mean returns 0 and Scale returns 1.
	Mean(j int) float64
	Scale(j int) float64

	// ZeroVariance reports whether column j has (numerically) zero variance,
	// the condition that triggers the §4.5 zero-variance edge case.
	ZeroVariance(j int) bool
}
