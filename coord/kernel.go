// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coord implements the single-coordinate soft-threshold+clip update
// primitive (§4.2) and the two gradient-bookkeeping shapes the coordinate
// descent inner loop needs (§4.3): a naive residual state and a covariance
// Gram-cache state.
package coord

import "math"

// Update applies the §4.2 coordinate update:
//
//	u = d*betaOld + g
//	betaNew = sign(u) * max(|u| - lambda*alpha*vp, 0) / (d + lambda*(1-alpha)*vp)
//	betaNew = clip(betaNew, lo, hi)
//
// It returns the new coefficient and delta = betaNew - betaOld. If the
// denominator d + lambda*(1-alpha)*vp is not positive — a zero-variance
// coordinate with no ridge term, the edge case in §4.5 — Update returns the
// unchanged betaOld and a zero delta; callers are expected to have already
// excluded such coordinates when alpha==1.
func Update(betaOld, g, d, lambda, alpha, vp, lo, hi float64) (betaNew, delta float64) {
	denom := d + lambda*(1-alpha)*vp
	if denom <= 0 {
		return betaOld, 0
	}
	u := d*betaOld + g
	thresh := lambda * alpha * vp
	betaNew = softThreshold(u, thresh) / denom
	if betaNew < lo {
		betaNew = lo
	}
	if betaNew > hi {
		betaNew = hi
	}
	return betaNew, betaNew - betaOld
}

// softThreshold is S(u,t) = sign(u)*max(|u|-t, 0), the operator named in
// the glossary.
func softThreshold(u, t float64) float64 {
	if u > t {
		return u - t
	}
	if u < -t {
		return u + t
	}
	return 0
}

// GroupUpdate applies the grouped-lasso coordinate update used by the
// multinomial-grouped family (§4.4): the class vector uOld/g (length K) is
// shrunk as a single block by its L2 norm rather than elementwise.
//
//	u_k = d*uOld_k + g_k
//	shrink = max(1 - lambda*alpha*vp/||u||_2, 0)
//	uNew_k = shrink * u_k / (d + lambda*(1-alpha)*vp)
func GroupUpdate(uOld, g []float64, d, lambda, alpha, vp float64, uNew []float64) (maxAbsDelta float64) {
	denom := d + lambda*(1-alpha)*vp
	if denom <= 0 {
		copy(uNew, uOld)
		return 0
	}
	K := len(uOld)
	u := make([]float64, K)
	var norm2 float64
	for k := 0; k < K; k++ {
		u[k] = d*uOld[k] + g[k]
		norm2 += u[k] * u[k]
	}
	norm := math.Sqrt(norm2)
	thresh := lambda * alpha * vp
	shrink := 0.0
	if norm > thresh {
		shrink = (norm - thresh) / norm
	}
	for k := 0; k < K; k++ {
		uNew[k] = shrink * u[k] / denom
		if diff := math.Abs(uNew[k] - uOld[k]); diff > maxAbsDelta {
			maxAbsDelta = diff
		}
	}
	return maxAbsDelta
}
