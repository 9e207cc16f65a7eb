// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataview

// SparseView is a column-addressable View over a compressed-sparse-column
// design matrix. The pack this module was built from carries no CSC/CSR
// matrix type in any example repo, so this is written directly against the
// §4.1 centering formula using only plain Go slices.
//
// Column j's nonzero entries are rowIdx[colPtr[j]:colPtr[j+1]] /
// data[colPtr[j]:colPtr[j+1]], the conventional CSC layout.
type SparseView struct {
	n, p         int
	colPtr       []int
	rowIdx       []int
	data         []float64
	standardize  bool
	xm, xs       []float64
	zeroVariance []bool
}

// NewSparseView builds a SparseView from CSC arrays. xm and xs are the
// caller-precomputed per-column mean and scale (§6: "for sparse, precomputed
// column means xm[1..p] and scales xs[1..p]"); unlike DenseView, SparseView
// does not derive them itself, since the whole point of the sparse path is
// that the caller already has them and the solver must never materialize a
// dense centered column to recompute them.
func NewSparseView(n, p int, colPtr, rowIdx []int, data, xm, xs []float64, standardize bool) *SparseView {
	if len(colPtr) != p+1 {
		panic(ErrShape)
	}
	if len(xm) != p || len(xs) != p {
		panic(ErrShape)
	}
	zv := make([]bool, p)
	for j := 0; j < p; j++ {
		zv[j] = xs[j] < zeroVarianceEps
	}
	return &SparseView{
		n: n, p: p,
		colPtr: colPtr, rowIdx: rowIdx, data: data,
		standardize: standardize,
		xm:          xm, xs: xs,
		zeroVariance: zv,
	}
}

func (v *SparseView) Dims() (n, p int)        { return v.n, v.p }
func (v *SparseView) Standardized() bool      { return v.standardize }
func (v *SparseView) ZeroVariance(j int) bool { return v.zeroVariance[j] }

// RawMean and RawScale return the caller-supplied column mean/scale
// regardless of standardization mode, for callers doing their own
// unstandardization (SPEC_FULL.md §9 supplement).
func (v *SparseView) RawMean(j int) float64  { return v.xm[j] }
func (v *SparseView) RawScale(j int) float64 { return v.xs[j] }

func (v *SparseView) Mean(j int) float64 {
	if !v.standardize {
		return 0
	}
	return v.xm[j]
}

func (v *SparseView) Scale(j int) float64 {
	if !v.standardize {
		return 1
	}
	if v.xs[j] < zeroVarianceEps {
		return 1
	}
	return v.xs[j]
}

func (v *SparseView) nzRange(j int) (rows []int, vals []float64) {
	lo, hi := v.colPtr[j], v.colPtr[j+1]
	return v.rowIdx[lo:hi], v.data[lo:hi]
}

func (v *SparseView) checkLen(vec []float64) {
	if len(vec) != v.n {
		panic(ErrShape)
	}
}

// Dot implements dot_centered = sum_{i:nz} x_ij*v_i - xm[j]*sum_i v_i,
// divided by xs[j], exactly as specified in §4.1.
func (v *SparseView) Dot(j int, vec []float64) float64 {
	v.checkLen(vec)
	rows, vals := v.nzRange(j)
	var raw float64
	for k, i := range rows {
		raw += vals[k] * vec[i]
	}
	if !v.standardize {
		return raw
	}
	var total float64
	for _, x := range vec {
		total += x
	}
	return (raw - v.Mean(j)*total) / v.Scale(j)
}

func (v *SparseView) WeightedDot(j int, vec, w []float64) float64 {
	v.checkLen(vec)
	v.checkLen(w)
	rows, vals := v.nzRange(j)
	var raw float64
	for k, i := range rows {
		raw += vals[k] * vec[i] * w[i]
	}
	if !v.standardize {
		return raw
	}
	var total float64
	for i := range vec {
		total += vec[i] * w[i]
	}
	return (raw - v.Mean(j)*total) / v.Scale(j)
}

func (v *SparseView) ColNorm2(j int, w []float64) float64 {
	v.checkLen(w)
	if !v.standardize {
		rows, vals := v.nzRange(j)
		var sum float64
		for k, i := range rows {
			sum += w[i] * vals[k] * vals[k]
		}
		return sum
	}
	mean, scale := v.Mean(j), v.Scale(j)
	rows, vals := v.nzRange(j)
	nz := make(map[int]float64, len(rows))
	for k, i := range rows {
		nz[i] = vals[k]
	}
	var sum float64
	for i := 0; i < v.n; i++ {
		c := (nz[i] - mean) / scale
		sum += w[i] * c * c
	}
	return sum
}

// AddScaledCol applies dst[i] += alpha*(X[i,j]-mean)/scale for all i. Unlike
// the dense path, only the nonzero rows get the raw contribution; every row
// (including implicit zeros) gets the centering term when standardized.
func (v *SparseView) AddScaledCol(dst []float64, j int, alpha float64) {
	v.checkLen(dst)
	if alpha == 0 {
		return
	}
	rows, vals := v.nzRange(j)
	if !v.standardize {
		for k, i := range rows {
			dst[i] += alpha * vals[k]
		}
		return
	}
	mean, scale := v.Mean(j), v.Scale(j)
	centerTerm := -alpha * mean / scale
	if centerTerm != 0 {
		for i := range dst {
			dst[i] += centerTerm
		}
	}
	for k, i := range rows {
		dst[i] += alpha * vals[k] / scale
	}
}

// Nnz returns the number of stored nonzeros in column j.
func (v *SparseView) Nnz(j int) int { return v.colPtr[j+1] - v.colPtr[j] }

// Density returns the fraction of stored nonzero entries across the whole
// matrix. The solver's covariance-vs-naive selection does not consult it.
func (v *SparseView) Density() float64 {
	total := len(v.data)
	return float64(total) / (float64(v.n) * float64(v.p))
}
