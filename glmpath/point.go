// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glmpath

import (
	"math"
	"sort"

	"github.com/num-lab/glmpath/coord"
	"github.com/num-lab/glmpath/dataview"
	"github.com/num-lab/glmpath/family"
)

// PointSolver fits a single point on the regularization path: it advances
// beta/intercept/active from their state at lambdaPrev to a point that
// satisfies KKT at lambdaCur (§4.5). It is reused, warm-started, across the
// whole path by PathSolver.
type PointSolver struct {
	View    dataview.View
	Fam     family.Model
	Penalty Penalty
	Params  Params
	Intr    bool

	// UseCovariance overrides the naive/covariance GradientState selection
	// (§4.3). Nil defers to useCovariance's heuristic.
	UseCovariance *bool
}

// covarianceMaxVars bounds the heuristic's "dense" side of §4.3's "p<500 and
// dense" covariance-selection rule.
const covarianceMaxVars = 500

// useCovariance decides, for one Solve call, whether the inner sweep should
// maintain a coord.CovarianceState instead of a coord.NaiveState. Covariance
// bookkeeping only pays for itself when the working weights are fixed across
// the whole sweep, which is only guaranteed for the Gaussian identity link
// (§4.3); IRLS families recompute working weights every outer iteration and
// always use NaiveState regardless of override.
func (ps *PointSolver) useCovariance(p int) bool {
	if !ps.Fam.Gaussian() {
		return false
	}
	if ps.UseCovariance != nil {
		return *ps.UseCovariance
	}
	if p >= covarianceMaxVars {
		return false
	}
	_, dense := ps.View.(*dataview.DenseView)
	return dense
}

// PointOutcome is what one Solve call reports back to PathSolver.
type PointOutcome struct {
	NullDev float64
	CurDev  float64
	Nlp     int
	Code    ErrorCode
}

// Solve runs the IRLS-wrapped coordinate descent described in §4.5. beta,
// intercept, and active are warm-started in place. y is the raw response
// (length n); offset may be nil.
func (ps *PointSolver) Solve(beta []float64, intercept *float64, active *ActiveSet, y, offset, w []float64, lambdaPrev, lambdaCur float64, maxit int) PointOutcome {
	n, p := ps.View.Dims()
	thresh := ps.Params.Thresh
	eta := make([]float64, n)
	prevEta := make([]float64, n)

	buildEta := func() {
		for i := range eta {
			eta[i] = *intercept
			if offset != nil {
				eta[i] += offset[i]
			}
		}
		for j := 0; j < p; j++ {
			if beta[j] != 0 {
				ps.View.AddScaledCol(eta, j, beta[j])
			}
		}
	}

	candidates := ps.strongRuleCandidates(active, y, offset, w, lambdaPrev, lambdaCur)

	irlsLimit := maxit
	if irlsLimit <= 0 {
		irlsLimit = ps.Params.Mxit
	}
	if irlsLimit <= 0 {
		irlsLimit = 100
	}

	var nlpTotal int
	var nullDev, curDev float64

	for irlsIter := 0; ; irlsIter++ {
		buildEta()
		working, err := ps.Fam.PrepareWorking(eta, y, w)
		if err != nil {
			return PointOutcome{Code: CodeSaturation, Nlp: nlpTotal}
		}
		nullDev, curDev = working.NullDev, working.CurDev
		if math.IsNaN(curDev) || math.IsInf(curDev, 1) {
			return PointOutcome{Code: CodeSaturation, Nlp: nlpTotal}
		}

		resid := make([]float64, n)
		for i := range resid {
			resid[i] = working.YTilde[i] - eta[i]
		}

		var nlp int
		var code ErrorCode
		if ps.useCovariance(p) {
			g0 := make([]float64, p)
			for j := 0; j < p; j++ {
				g0[j] = ps.View.WeightedDot(j, resid, working.WTilde)
			}
			state := coord.NewCovarianceState(ps.View, working.WTilde, g0)
			nlp, code = ps.innerSweepCovariance(state, resid, working.WTilde, beta, intercept, active, candidates, lambdaCur, nullDev)
		} else {
			state := coord.NewNaiveState(ps.View, working.WTilde, resid)
			nlp, code = ps.innerSweep(state, working.WTilde, beta, intercept, active, candidates, lambdaCur, nullDev)
		}
		nlpTotal += nlp
		if code != CodeOK {
			return PointOutcome{NullDev: nullDev, CurDev: curDev, Nlp: nlpTotal, Code: code}
		}
		candidates = active.Order()

		if ps.Fam.Gaussian() {
			break
		}

		buildEta()
		var maxEtaChange float64
		for i := range eta {
			if d := math.Abs(eta[i] - prevEta[i]); d > maxEtaChange {
				maxEtaChange = d
			}
		}
		copy(prevEta, eta)
		if maxEtaChange < thresh*math.Max(nullDev, 1e-12) {
			break
		}
		if irlsIter+1 >= irlsLimit {
			return PointOutcome{NullDev: nullDev, CurDev: curDev, Nlp: nlpTotal, Code: CodeMaxIterations}
		}
	}

	return PointOutcome{NullDev: nullDev, CurDev: curDev, Nlp: nlpTotal, Code: CodeOK}
}

// strongRuleCandidates implements the §4.5 strong-rules screen: all j with
// |g_j(beta_prev)| >= 2*lambdaCur - lambdaPrev, unioned with the current
// active set. The gradient is evaluated against the raw response minus the
// offset (no intercept or beta_prev term), a proxy for the true family
// gradient at beta_prev that the KKT sweep corrects for if it screens out
// wrongly.
func (ps *PointSolver) strongRuleCandidates(active *ActiveSet, y, offset, w []float64, lambdaPrev, lambdaCur float64) []int {
	_, p := ps.View.Dims()
	n := len(y)
	r := make([]float64, n)
	copy(r, y)
	if offset != nil {
		for i := range r {
			r[i] -= offset[i]
		}
	}
	set := map[int]bool{}
	for _, j := range active.Order() {
		set[j] = true
	}
	cutoff := 2*lambdaCur - lambdaPrev
	for j := 0; j < p; j++ {
		if ps.Penalty.Excluded[j] {
			continue
		}
		g := ps.View.WeightedDot(j, r, w)
		if math.Abs(g) >= cutoff*ps.Penalty.Alpha*ps.Penalty.VP[j] {
			set[j] = true
		}
	}
	out := make([]int, 0, len(set))
	for j := range set {
		out = append(out, j)
	}
	sort.Ints(out)
	return out
}

// innerSweep runs coordinate-descent full passes over candidates until
// max_change < thresh*nullDev, then performs a KKT sweep over every
// coordinate not already a candidate, resuming the inner loop on any
// violation, per §4.5.
func (ps *PointSolver) innerSweep(state *coord.NaiveState, w []float64, beta []float64, intercept *float64, active *ActiveSet, candidates []int, lambdaCur, nullDev float64) (nlp int, code ErrorCode) {
	_, p := ps.View.Dims()
	thresh := ps.Params.Thresh
	maxit := ps.Params.Mxit
	if maxit <= 0 {
		maxit = 100000
	}

	sumW := 0.0
	for _, wi := range w {
		sumW += wi
	}

	set := append([]int{}, candidates...)
	sort.Ints(set)

	for {
		for {
			nlp++
			var maxChange float64

			if ps.Intr && sumW > 0 {
				resid := state.Residual()
				var swr float64
				for i, r := range resid {
					swr += w[i] * r
				}
				delta0 := swr / sumW
				if delta0 != 0 {
					*intercept += delta0
					for i := range resid {
						resid[i] -= delta0
					}
					if change := sumW * delta0 * delta0; change > maxChange {
						maxChange = change
					}
				}
			}

			for _, j := range set {
				if ps.Penalty.Excluded[j] {
					continue
				}
				d := state.Denom(j)
				g := state.Gradient(j)
				betaNew, delta := coord.Update(beta[j], g, d, lambdaCur, ps.Penalty.Alpha, ps.Penalty.VP[j], ps.Penalty.Lo[j], ps.Penalty.Hi[j])
				if delta == 0 {
					continue
				}
				state.ApplyDelta(j, delta)
				beta[j] = betaNew
				active.Add(j)
				if change := d * delta * delta; change > maxChange {
					maxChange = change
				}
			}

			if maxChange < thresh*math.Max(nullDev, 1e-12) {
				break
			}
			if nlp > maxit {
				return nlp, CodeMaxIterations
			}
		}

		already := make(map[int]bool, len(set))
		for _, j := range set {
			already[j] = true
		}
		violated := false
		for j := 0; j < p; j++ {
			if ps.Penalty.Excluded[j] || already[j] {
				continue
			}
			g := state.Gradient(j)
			limit := lambdaCur * ps.Penalty.Alpha * ps.Penalty.VP[j]
			if math.Abs(g) > limit+ps.Params.Eps {
				active.Add(j)
				set = append(set, j)
				violated = true
			}
		}
		if !violated {
			break
		}
		sort.Ints(set)
	}
	return nlp, CodeOK
}

// innerSweepCovariance is innerSweep's counterpart for a coord.CovarianceState
// (§4.3b). CovarianceState has no intrinsic residual, so the intercept update
// and the KKT sweep's inactive-column gradients both need a resid vector
// maintained alongside it; resid is the caller's initial residual, updated in
// place by every coordinate and intercept step. Per-coordinate gradient
// maintenance calls ApplyDeltaActive directly (not the GradientState
// interface's ApplyDelta, which does the expensive nil-active full update)
// restricted to the current candidate set, keeping the O(|active|) cost
// §4.3b describes. Gradients are refreshed from resid only where the sweep
// actually needs them: for the candidate set after an intercept shift, and
// for inactive coordinates during the KKT sweep.
func (ps *PointSolver) innerSweepCovariance(state *coord.CovarianceState, resid, w []float64, beta []float64, intercept *float64, active *ActiveSet, candidates []int, lambdaCur, nullDev float64) (nlp int, code ErrorCode) {
	_, p := ps.View.Dims()
	thresh := ps.Params.Thresh
	maxit := ps.Params.Mxit
	if maxit <= 0 {
		maxit = 100000
	}

	sumW := 0.0
	for _, wi := range w {
		sumW += wi
	}

	set := append([]int{}, candidates...)
	sort.Ints(set)

	for {
		for {
			nlp++
			var maxChange float64

			if ps.Intr && sumW > 0 {
				var swr float64
				for i, r := range resid {
					swr += w[i] * r
				}
				delta0 := swr / sumW
				if delta0 != 0 {
					*intercept += delta0
					for i := range resid {
						resid[i] -= delta0
					}
					for _, j := range set {
						state.RefreshGradient(j, resid)
					}
					if change := sumW * delta0 * delta0; change > maxChange {
						maxChange = change
					}
				}
			}

			for _, j := range set {
				if ps.Penalty.Excluded[j] {
					continue
				}
				d := state.Denom(j)
				g := state.Gradient(j)
				betaNew, delta := coord.Update(beta[j], g, d, lambdaCur, ps.Penalty.Alpha, ps.Penalty.VP[j], ps.Penalty.Lo[j], ps.Penalty.Hi[j])
				if delta == 0 {
					continue
				}
				state.ApplyDeltaActive(j, delta, set)
				ps.View.AddScaledCol(resid, j, -delta)
				beta[j] = betaNew
				active.Add(j)
				if change := d * delta * delta; change > maxChange {
					maxChange = change
				}
			}

			if maxChange < thresh*math.Max(nullDev, 1e-12) {
				break
			}
			if nlp > maxit {
				return nlp, CodeMaxIterations
			}
		}

		already := make(map[int]bool, len(set))
		for _, j := range set {
			already[j] = true
		}
		violated := false
		for j := 0; j < p; j++ {
			if ps.Penalty.Excluded[j] || already[j] {
				continue
			}
			state.RefreshGradient(j, resid)
			g := state.Gradient(j)
			limit := lambdaCur * ps.Penalty.Alpha * ps.Penalty.VP[j]
			if math.Abs(g) > limit+ps.Params.Eps {
				active.Add(j)
				set = append(set, j)
				violated = true
			}
		}
		if !violated {
			break
		}
		sort.Ints(set)
	}
	return nlp, CodeOK
}
