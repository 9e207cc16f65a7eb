// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coord

import "github.com/num-lab/glmpath/dataview"

// GradientState maintains whatever bookkeeping a coordinate-descent sweep
// needs to compute, for coordinate j, the gradient g_j and the denominator
// d_j from §4.2, and to apply a coordinate's delta afterward. The two
// concrete shapes are NaiveState (residual) and CovarianceState (Gram
// cache), per §4.3.
type GradientState interface {
	// Gradient returns g_j at the current β.
	Gradient(j int) float64

	// Denom returns d_j = sum_i w_i*X[i,j]^2 under standardization, the
	// coordinate-descent denominator.
	Denom(j int) float64

	// ApplyDelta updates internal state after coordinate j changes by
	// delta (delta may be 0, in which case ApplyDelta is a no-op).
	ApplyDelta(j int, delta float64)
}

// NaiveState is the residual-based GradientState (§4.3a): r =
// y_working - Xβ is stored directly, and a coordinate update performs
// r -= delta*X[:,j]. Cost per update is O(n) dense / O(nnz_j) sparse.
type NaiveState struct {
	view  dataview.View
	w     []float64
	resid []float64
}

// NewNaiveState builds a NaiveState for the given view, working weights w,
// and initial residual (yTilde - eta).
func NewNaiveState(view dataview.View, w, initialResid []float64) *NaiveState {
	n, _ := view.Dims()
	if len(w) != n || len(initialResid) != n {
		panic(dataview.ErrShape)
	}
	r := make([]float64, n)
	copy(r, initialResid)
	return &NaiveState{view: view, w: w, resid: r}
}

// Residual exposes the current residual vector (read-only use expected).
func (s *NaiveState) Residual() []float64 { return s.resid }

func (s *NaiveState) Gradient(j int) float64 {
	return s.view.WeightedDot(j, s.resid, s.w)
}

func (s *NaiveState) Denom(j int) float64 {
	return s.view.ColNorm2(j, s.w)
}

func (s *NaiveState) ApplyDelta(j int, delta float64) {
	if delta == 0 {
		return
	}
	s.view.AddScaledCol(s.resid, j, -delta)
}

// CovarianceState is the Gram-cache GradientState (§4.3b), Gaussian-only
// and dense-friendly: g = X^T(y-Xβ) is maintained directly, and Gram
// columns C[:,j] = X^T X[:,j] are materialized the first time coordinate j
// enters the active set, then cached. A coordinate update performs
// g -= delta*C[:,j], restricted to the active set; gradients for inactive
// coordinates are refreshed only at the KKT sweep (the caller's
// responsibility — see glmpath.PointSolver).
type CovarianceState struct {
	view dataview.View
	w    []float64
	g    []float64
	p    int
	gram map[int][]float64 // column j -> cached Gram column, keyed lazily
}

// NewCovarianceState builds a CovarianceState from the initial gradient
// g0 = X^T(yTilde - eta), weighted by w.
func NewCovarianceState(view dataview.View, w, g0 []float64) *CovarianceState {
	_, p := view.Dims()
	if len(g0) != p {
		panic(dataview.ErrShape)
	}
	g := make([]float64, p)
	copy(g, g0)
	return &CovarianceState{view: view, w: w, g: g, p: p, gram: make(map[int][]float64)}
}

func (s *CovarianceState) Gradient(j int) float64 { return s.g[j] }

func (s *CovarianceState) Denom(j int) float64 {
	return s.view.ColNorm2(j, s.w)
}

// gramColumn returns (materializing and caching on first use) C[:,j] =
// X^T diag(w) X[:,j], cost O(np) the first time a coordinate is touched,
// O(1) thereafter.
func (s *CovarianceState) gramColumn(j int) []float64 {
	if c, ok := s.gram[j]; ok {
		return c
	}
	n, _ := s.view.Dims()
	col := make([]float64, n)
	s.view.AddScaledCol(col, j, 1)
	for i := range col {
		col[i] *= s.w[i]
	}
	c := make([]float64, s.p)
	for k := 0; k < s.p; k++ {
		c[k] = s.view.Dot(k, col)
	}
	s.gram[j] = c
	return c
}

// ApplyDelta updates g -= delta*C[:,j] for every coordinate, the O(p) full
// update. CovarianceState has no notion of "active" itself; callers that
// want the O(|active|) update of §4.3b use ApplyDeltaActive with their
// active set.
func (s *CovarianceState) ApplyDelta(j int, delta float64) {
	s.ApplyDeltaActive(j, delta, nil)
}

// ApplyDeltaActive is ApplyDelta restricted to a specific active-set index
// list; passing nil updates every coordinate, which is what ApplyDelta does.
// The first update for a coordinate also materializes its Gram column, the
// O(np) case.
func (s *CovarianceState) ApplyDeltaActive(j int, delta float64, active []int) {
	if delta == 0 {
		return
	}
	c := s.gramColumn(j)
	if active == nil {
		for k := 0; k < s.p; k++ {
			s.g[k] -= delta * c[k]
		}
		return
	}
	for _, k := range active {
		s.g[k] -= delta * c[k]
	}
}

// RefreshGradient recomputes g_j directly from the view (used after an
// intercept shift, and by the KKT sweep over inactive coordinates, which
// CovarianceState does not keep current incrementally).
func (s *CovarianceState) RefreshGradient(j int, resid []float64) {
	s.g[j] = s.view.WeightedDot(j, resid, s.w)
}
