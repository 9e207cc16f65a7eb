// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glmpath

import (
	"math"

	"github.com/num-lab/glmpath/dataview"
)

// Unstandardize rescales a coefficient vector fit on a standardized View
// back to the original predictor units: beta_raw[j] = beta[j] / scale[j],
// with the corresponding intercept shift intercept_raw = intercept -
// sum_j beta[j]*mean[j]/scale[j] (SPEC_FULL.md §9 supplement). view must
// expose RawMean/RawScale, as dataview.DenseView and dataview.SparseView
// both do.
type rawMoments interface {
	RawMean(j int) float64
	RawScale(j int) float64
}

func Unstandardize(view rawMoments, beta []float64, intercept float64) (rawBeta []float64, rawIntercept float64) {
	rawBeta = make([]float64, len(beta))
	rawIntercept = intercept
	for j, b := range beta {
		scale := view.RawScale(j)
		if scale == 0 {
			continue
		}
		rawBeta[j] = b / scale
		rawIntercept -= b * view.RawMean(j) / scale
	}
	return rawBeta, rawIntercept
}

// Standardize is Unstandardize's inverse: given a coefficient vector in
// original predictor units, it returns the equivalent vector on the
// standardized scale the solver itself works in (beta[j] =
// rawBeta[j]*scale[j], intercept adjusted the opposite direction).
// Useful for seeding a warm start from a caller-supplied raw-units guess.
func Standardize(view rawMoments, rawBeta []float64, rawIntercept float64) (beta []float64, intercept float64) {
	beta = make([]float64, len(rawBeta))
	intercept = rawIntercept
	for j, b := range rawBeta {
		scale := view.RawScale(j)
		beta[j] = b * scale
		intercept += b * view.RawMean(j)
	}
	return beta, intercept
}

// KKTResidual reports, for a fitted (intercept, beta) pair at a given
// lambda, the non-negative slack in the stationarity/subgradient condition
// from §8 invariant 1 for every non-excluded coordinate (excluded ones
// report 0): 0 for a satisfied condition, positive by the amount the KKT
// bound or stationarity equation is missed. It evaluates the
// gradient directly against y/w (the working response and weight at
// convergence for non-Gaussian families, or the raw response/weight for
// Gaussian) — it is a post-hoc auditing helper, not used by the solver
// itself.
func KKTResidual(view dataview.View, beta []float64, intercept float64, y, offset, w []float64, penalty Penalty, lambda float64) []float64 {
	n, p := view.Dims()
	if w == nil {
		w = uniformWeights(n)
	}
	eta := make([]float64, n)
	for i := range eta {
		eta[i] = intercept
		if offset != nil {
			eta[i] += offset[i]
		}
	}
	for j := 0; j < p; j++ {
		if beta[j] != 0 {
			view.AddScaledCol(eta, j, beta[j])
		}
	}

	resid := make([]float64, n)
	for i := range resid {
		resid[i] = y[i] - eta[i]
	}

	out := make([]float64, p)
	for j := 0; j < p; j++ {
		if penalty.Excluded[j] {
			continue
		}
		g := view.WeightedDot(j, resid, w)
		limit := lambda * penalty.Alpha * penalty.VP[j]
		if beta[j] == 0 {
			if v := math.Abs(g) - limit; v > 0 {
				out[j] = v
			}
			continue
		}
		stat := -g + lambda*(1-penalty.Alpha)*penalty.VP[j]*beta[j] + lambda*penalty.Alpha*penalty.VP[j]*signOf(beta[j])
		out[j] = math.Abs(stat)
	}
	return out
}

func signOf(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
