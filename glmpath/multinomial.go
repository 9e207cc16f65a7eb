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

// MultinomialPointSolver is PointSolver's counterpart for the K-class
// multinomial family (§4.4's "Multinomial-grouped" row, §9's polymorphism
// note). It carries one coefficient per (variable, class), row-major per
// variable — beta[j*K : j*K+K] is variable j's class vector — so the
// grouped-lasso update can shrink it as a single block via
// coord.GroupUpdate. Grouped=false instead updates each class
// independently via coord.Update, sharing a single active set across
// classes (a variable is active if any class's coefficient is nonzero).
type MultinomialPointSolver struct {
	View    dataview.View
	Fam     family.Multinomial
	Grouped bool
	Penalty Penalty
	Params  Params
	Intr    bool
}

// Solve is MultinomialPointSolver's analogue of PointSolver.Solve. y,
// offset (may be nil), and the Working response/weights are all row-major
// flattened n*K; beta is row-major flattened p*K; intercept has length K.
func (ps *MultinomialPointSolver) Solve(beta []float64, intercept []float64, active *ActiveSet, y, offset []float64, w []float64, lambdaPrev, lambdaCur float64, maxit int) PointOutcome {
	n, p := ps.View.Dims()
	K := ps.Fam.K
	thresh := ps.Params.Thresh

	etaClass := make([][]float64, K)
	prevEtaClass := make([][]float64, K)
	for k := range etaClass {
		etaClass[k] = make([]float64, n)
		prevEtaClass[k] = make([]float64, n)
	}

	buildEta := func() {
		for k := 0; k < K; k++ {
			for i := 0; i < n; i++ {
				etaClass[k][i] = intercept[k]
				if offset != nil {
					etaClass[k][i] += offset[i*K+k]
				}
			}
		}
		for j := 0; j < p; j++ {
			for k := 0; k < K; k++ {
				if b := beta[j*K+k]; b != 0 {
					ps.View.AddScaledCol(etaClass[k], j, b)
				}
			}
		}
	}

	irlsLimit := maxit
	if irlsLimit <= 0 {
		irlsLimit = ps.Params.Mxit
	}
	if irlsLimit <= 0 {
		irlsLimit = 100
	}

	candidates := ps.strongRuleCandidates(active, y, offset, w, lambdaPrev, lambdaCur)

	var nlpTotal int
	var nullDev, curDev float64

	for irlsIter := 0; ; irlsIter++ {
		buildEta()
		etaFlat := interleave(etaClass, n, K)
		working, err := ps.Fam.PrepareWorking(etaFlat, y, w)
		if err != nil {
			return PointOutcome{Code: CodeSaturation, Nlp: nlpTotal}
		}
		nullDev, curDev = working.NullDev, working.CurDev
		if math.IsNaN(curDev) || math.IsInf(curDev, 1) {
			return PointOutcome{Code: CodeSaturation, Nlp: nlpTotal}
		}

		yTildeClass, wTildeClass := deinterleave(working.YTilde, n, K), deinterleave(working.WTilde, n, K)
		residClass := make([][]float64, K)
		states := make([]*coord.NaiveState, K)
		for k := 0; k < K; k++ {
			residClass[k] = make([]float64, n)
			for i := 0; i < n; i++ {
				residClass[k][i] = yTildeClass[k][i] - etaClass[k][i]
			}
			states[k] = coord.NewNaiveState(ps.View, wTildeClass[k], residClass[k])
		}

		nlp, code := ps.innerSweep(states, w, beta, intercept, active, candidates, lambdaCur, nullDev)
		nlpTotal += nlp
		if code != CodeOK {
			return PointOutcome{NullDev: nullDev, CurDev: curDev, Nlp: nlpTotal, Code: code}
		}
		candidates = active.Order()

		buildEta()
		var maxEtaChange float64
		for k := 0; k < K; k++ {
			for i := 0; i < n; i++ {
				if d := math.Abs(etaClass[k][i] - prevEtaClass[k][i]); d > maxEtaChange {
					maxEtaChange = d
				}
			}
			copy(prevEtaClass[k], etaClass[k])
		}
		if maxEtaChange < thresh*math.Max(nullDev, 1e-12) {
			break
		}
		if irlsIter+1 >= irlsLimit {
			return PointOutcome{NullDev: nullDev, CurDev: curDev, Nlp: nlpTotal, Code: CodeMaxIterations}
		}
	}

	return PointOutcome{NullDev: nullDev, CurDev: curDev, Nlp: nlpTotal, Code: CodeOK}
}

func (ps *MultinomialPointSolver) strongRuleCandidates(active *ActiveSet, y, offset, w []float64, lambdaPrev, lambdaCur float64) []int {
	_, p := ps.View.Dims()
	K := ps.Fam.K
	n := len(y) / K
	cutoff := 2*lambdaCur - lambdaPrev

	set := map[int]bool{}
	for _, j := range active.Order() {
		set[j] = true
	}
	for j := 0; j < p; j++ {
		if ps.Penalty.Excluded[j] {
			continue
		}
		var norm2 float64
		for k := 0; k < K; k++ {
			r := make([]float64, n)
			for i := 0; i < n; i++ {
				r[i] = y[i*K+k]
				if offset != nil {
					r[i] -= offset[i*K+k]
				}
			}
			g := ps.View.WeightedDot(j, r, w)
			norm2 += g * g
		}
		if math.Sqrt(norm2) >= cutoff*ps.Penalty.Alpha*ps.Penalty.VP[j] {
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

func (ps *MultinomialPointSolver) innerSweep(states []*coord.NaiveState, w []float64, beta []float64, intercept []float64, active *ActiveSet, candidates []int, lambdaCur, nullDev float64) (nlp int, code ErrorCode) {
	_, p := ps.View.Dims()
	K := ps.Fam.K
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

	uOld := make([]float64, K)
	g := make([]float64, K)
	uNew := make([]float64, K)

	for {
		for {
			nlp++
			var maxChange float64

			if ps.Intr && sumW > 0 {
				for k := 0; k < K; k++ {
					resid := states[k].Residual()
					var swr float64
					for i, r := range resid {
						swr += w[i] * r
					}
					delta0 := swr / sumW
					if delta0 == 0 {
						continue
					}
					intercept[k] += delta0
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
				if ps.Grouped {
					var d float64
					for k := 0; k < K; k++ {
						uOld[k] = beta[j*K+k]
						g[k] = states[k].Gradient(j)
						d += states[k].Denom(j)
					}
					d /= float64(K)
					maxDelta := coord.GroupUpdate(uOld, g, d, lambdaCur, ps.Penalty.Alpha, ps.Penalty.VP[j], uNew)
					if maxDelta == 0 {
						continue
					}
					for k := 0; k < K; k++ {
						delta := uNew[k] - uOld[k]
						if delta == 0 {
							continue
						}
						states[k].ApplyDelta(j, delta)
						beta[j*K+k] = uNew[k]
						if change := d * delta * delta; change > maxChange {
							maxChange = change
						}
					}
					if maxDelta > 0 {
						active.Add(j)
					}
				} else {
					for k := 0; k < K; k++ {
						d := states[k].Denom(j)
						g := states[k].Gradient(j)
						betaNew, delta := coord.Update(beta[j*K+k], g, d, lambdaCur, ps.Penalty.Alpha, ps.Penalty.VP[j], ps.Penalty.Lo[j], ps.Penalty.Hi[j])
						if delta == 0 {
							continue
						}
						states[k].ApplyDelta(j, delta)
						beta[j*K+k] = betaNew
						active.Add(j)
						if change := d * delta * delta; change > maxChange {
							maxChange = change
						}
					}
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
			var norm2 float64
			var maxAbs float64
			for k := 0; k < K; k++ {
				gk := states[k].Gradient(j)
				norm2 += gk * gk
				if math.Abs(gk) > maxAbs {
					maxAbs = math.Abs(gk)
				}
			}
			limit := lambdaCur * ps.Penalty.Alpha * ps.Penalty.VP[j]
			exceeded := false
			if ps.Grouped {
				exceeded = math.Sqrt(norm2) > limit+ps.Params.Eps
			} else {
				exceeded = maxAbs > limit+ps.Params.Eps
			}
			if exceeded {
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

func interleave(class [][]float64, n, K int) []float64 {
	out := make([]float64, n*K)
	for k := 0; k < K; k++ {
		for i := 0; i < n; i++ {
			out[i*K+k] = class[k][i]
		}
	}
	return out
}

func deinterleave(flat []float64, n, K int) [][]float64 {
	out := make([][]float64, K)
	for k := range out {
		out[k] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for k := 0; k < K; k++ {
			out[k][i] = flat[i*K+k]
		}
	}
	return out
}
