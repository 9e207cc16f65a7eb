// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataview

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// zeroVarianceEps bounds the scale below which a column is flagged
// zero-variance (§4.5, §4.6 S3).
const zeroVarianceEps = 1e-12

// DenseView is a column-addressable View over a dense *mat.Dense design
// matrix. Column means and scales are computed once at construction using
// 1/n moments, per spec §3 ("Per-column standardization uses 1/n (not
// 1/(n-1)) moments"). gonum's stat.MeanVariance is a 1/(n-1) sample
// estimator and is deliberately not used here; the moments are accumulated
// directly instead.
type DenseView struct {
	x            *mat.Dense
	n, p         int
	standardize  bool
	xm, xs       []float64
	zeroVariance []bool
}

// NewDenseView builds a DenseView over x. If standardize is true, all
// column operations act on (X[:,j]-xm[j])/xs[j]; the mode is fixed for the
// life of the View.
func NewDenseView(x *mat.Dense, standardize bool) *DenseView {
	n, p := x.Dims()
	v := &DenseView{
		x:            x,
		n:            n,
		p:            p,
		standardize:  standardize,
		xm:           make([]float64, p),
		xs:           make([]float64, p),
		zeroVariance: make([]bool, p),
	}
	invN := 1 / float64(n)
	for j := 0; j < p; j++ {
		var sum, sumSq float64
		for i := 0; i < n; i++ {
			xij := x.At(i, j)
			sum += xij
			sumSq += xij * xij
		}
		mean := sum * invN
		variance := sumSq*invN - mean*mean
		if variance < 0 {
			variance = 0
		}
		scale := math.Sqrt(variance)
		v.zeroVariance[j] = scale < zeroVarianceEps
		if !standardize {
			// Unstandardized views still record the true mean/scale so
			// callers can recover them (SPEC_FULL.md §9 supplement), but
			// column operations below treat mean as 0, scale as 1.
			v.xm[j] = mean
			v.xs[j] = scale
			continue
		}
		v.xm[j] = mean
		if scale < zeroVarianceEps {
			// Degenerate column: standardizing would divide by ~0. Leave
			// xs at 1 so Dot/AddScaledCol don't blow up; the solver is
			// expected to exclude zero-variance columns before use.
			v.xs[j] = 1
		} else {
			v.xs[j] = scale
		}
	}
	return v
}

func (v *DenseView) Dims() (n, p int) { return v.n, v.p }

func (v *DenseView) Standardized() bool { return v.standardize }

func (v *DenseView) Mean(j int) float64 {
	if !v.standardize {
		return 0
	}
	return v.xm[j]
}

func (v *DenseView) Scale(j int) float64 {
	if !v.standardize {
		return 1
	}
	return v.xs[j]
}

func (v *DenseView) ZeroVariance(j int) bool { return v.zeroVariance[j] }

// RawMean and RawScale return the true column mean/scale regardless of
// standardization mode, for callers doing their own unstandardization. The
// one exception is a zero-variance column of a standardized view, whose
// RawScale is the stored placeholder 1.
func (v *DenseView) RawMean(j int) float64  { return v.xm[j] }
func (v *DenseView) RawScale(j int) float64 { return v.xs[j] }

func (v *DenseView) checkLen(vec []float64) {
	if len(vec) != v.n {
		panic(ErrShape)
	}
}

func (v *DenseView) Dot(j int, vec []float64) float64 {
	v.checkLen(vec)
	if !v.standardize {
		var sum float64
		for i := 0; i < v.n; i++ {
			sum += v.x.At(i, j) * vec[i]
		}
		return sum
	}
	mean, scale := v.xm[j], v.xs[j]
	var raw, total float64
	for i := 0; i < v.n; i++ {
		raw += v.x.At(i, j) * vec[i]
		total += vec[i]
	}
	return (raw - mean*total) / scale
}

func (v *DenseView) WeightedDot(j int, vec, w []float64) float64 {
	v.checkLen(vec)
	v.checkLen(w)
	if !v.standardize {
		var sum float64
		for i := 0; i < v.n; i++ {
			sum += v.x.At(i, j) * vec[i] * w[i]
		}
		return sum
	}
	mean, scale := v.xm[j], v.xs[j]
	var raw, total float64
	for i := 0; i < v.n; i++ {
		raw += v.x.At(i, j) * vec[i] * w[i]
		total += vec[i] * w[i]
	}
	return (raw - mean*total) / scale
}

func (v *DenseView) ColNorm2(j int, w []float64) float64 {
	v.checkLen(w)
	if !v.standardize {
		var sum float64
		for i := 0; i < v.n; i++ {
			xij := v.x.At(i, j)
			sum += w[i] * xij * xij
		}
		return sum
	}
	mean, scale := v.xm[j], v.xs[j]
	var sum float64
	for i := 0; i < v.n; i++ {
		c := (v.x.At(i, j) - mean) / scale
		sum += w[i] * c * c
	}
	return sum
}

func (v *DenseView) AddScaledCol(dst []float64, j int, alpha float64) {
	v.checkLen(dst)
	if alpha == 0 {
		return
	}
	if !v.standardize {
		for i := 0; i < v.n; i++ {
			dst[i] += alpha * v.x.At(i, j)
		}
		return
	}
	mean, scale := v.xm[j], v.xs[j]
	for i := 0; i < v.n; i++ {
		dst[i] += alpha * (v.x.At(i, j) - mean) / scale
	}
}
