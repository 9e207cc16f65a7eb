// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glmpath

import (
	"math"
	"sort"

	"github.com/num-lab/glmpath/dataview"
	"github.com/num-lab/glmpath/family"
)

// MultinomialResult is Result's K-class counterpart: Ca rows hold one
// coefficient per (ever-active variable, class) pair, flattened the same
// way MultinomialPointSolver flattens beta — class varies fastest.
type MultinomialResult struct {
	Lmu int

	A0  [][]float64 // A0[m] has length K
	Ca  [][]float64 // Ca[k] is ever-active (variable,class) pair k across columns, length Lmu each
	Ia  []int       // variable index for each row-group of Ca (K consecutive rows share a variable)
	Nin []int
	Rsq []float64
	Alm []float64

	Nlp  int
	Jerr ErrorCode
}

// Unpack returns the dense p*K row-major coefficient vector for column m.
// Nin[m] counts ever-active variables, so Ca holds Nin[m]*K rows for that
// variable count; Ca[row*K+c][m] is variable Ia[row]'s class-c coefficient.
func (r MultinomialResult) Unpack(m, p, K int) []float64 {
	beta := make([]float64, p*K)
	for row := 0; row < r.Nin[m]; row++ {
		j := r.Ia[row]
		for c := 0; c < K; c++ {
			beta[j*K+c] = r.Ca[row*K+c][m]
		}
	}
	return beta
}

// MultinomialPathSolver is PathSolver's K-class counterpart, driving
// MultinomialPointSolver across the lambda grid with warm starts (§4.6,
// §9's multinomial-grouped polymorphism note).
type MultinomialPathSolver struct {
	View    dataview.View
	Fam     family.Multinomial
	Grouped bool
	Penalty Penalty
	Config  Config
}

// Fit runs the full multinomial path. y is row-major flattened n*K.
func (ps *MultinomialPathSolver) Fit(y, offset, w []float64) (MultinomialResult, error) {
	n, p := ps.View.Dims()
	K := ps.Fam.K
	if len(y) != n*K {
		panic(dataview.ErrShape)
	}
	if w == nil {
		w = uniformWeights(n)
	}

	if ps.Penalty.Alpha >= 1 {
		for j := 0; j < p; j++ {
			if ps.Penalty.Excluded[j] {
				continue
			}
			if ps.View.ZeroVariance(j) {
				return MultinomialResult{}, ZeroVarianceCode(j + 1)
			}
		}
	}

	lambdas := ps.buildGrid(y, offset, w)
	nlam := len(lambdas)

	nx := ps.Config.Nx
	if nx <= 0 {
		nx = p
	}
	ne := ps.Config.Ne
	if ne <= 0 {
		ne = p
	}

	point := &MultinomialPointSolver{
		View:    ps.View,
		Fam:     ps.Fam,
		Grouped: ps.Grouped,
		Penalty: ps.Penalty,
		Params:  ps.Config.Params,
		Intr:    ps.Config.Intr,
	}
	if ps.Config.Thresh > 0 {
		point.Params.Thresh = ps.Config.Thresh
	}
	maxit := ps.Config.effectiveMaxit()
	point.Params.Mxit = maxit

	beta := make([]float64, p*K)
	intercept := make([]float64, K)
	active := NewActiveSet()

	var a0s [][]float64
	var cas [][]float64
	var nins []int
	var rsqs []float64
	var alms []float64
	var nlpTotal int
	var prevRsq float64
	var lambdaPrev float64
	var terminal ErrorCode

	appendColumn := func(rsq, lambda float64) {
		row := make([]float64, K)
		copy(row, intercept)
		a0s = append(a0s, row)
		alms = append(alms, lambda)
		rsqs = append(rsqs, rsq)
		col := len(alms) - 1

		order := active.Order()
		for len(cas) < len(order)*K {
			// A variable entering for the first time at this column still
			// needs a value for every earlier column: it was exactly 0 then.
			cas = append(cas, make([]float64, col, nlam))
		}
		for k, j := range order {
			for c := 0; c < K; c++ {
				cas[k*K+c] = append(cas[k*K+c], beta[j*K+c])
			}
		}
		nins = append(nins, len(order))
	}

	for m := 0; m < nlam; m++ {
		if ps.Config.Context != nil {
			select {
			case <-ps.Config.Context.Done():
				terminal = CodeCancelled
			default:
			}
			if terminal != CodeOK {
				break
			}
		}

		lambdaCur := lambdas[m]
		outcome := point.Solve(beta, intercept, active, y, offset, w, lambdaPrev, lambdaCur, maxit)
		nlpTotal += outcome.Nlp

		rsq := 1.0
		if outcome.NullDev > 0 {
			rsq = 1 - outcome.CurDev/outcome.NullDev
		}
		appendColumn(rsq, lambdaCur)

		stop := false
		switch {
		case outcome.Code.Fatal():
			return MultinomialResult{}, outcome.Code
		case outcome.Code != CodeOK:
			terminal = outcome.Code
			stop = true
		case active.Len() > ne:
			terminal = CodeDfmaxReached
			stop = true
		case active.Len() > nx:
			terminal = CodePmaxReached
			stop = true
		case m > 0 && m+1 >= ps.Config.Params.Mnlam && (rsq-prevRsq) < ps.Config.Params.Fdev*math.Max(rsq, 1e-12):
			terminal = CodeOK
			stop = true
		case rsq > 1-ps.Config.Params.Devmax:
			terminal = CodeOK
			stop = true
		}

		prevRsq = rsq
		lambdaPrev = lambdaCur
		if stop {
			break
		}
	}

	denom := K
	if denom < 1 {
		denom = 1
	}
	ia := make([]int, 0, len(cas)/denom)
	for _, j := range active.Order() {
		ia = append(ia, j)
	}

	return MultinomialResult{
		Lmu:  len(alms),
		A0:   a0s,
		Ca:   cas,
		Ia:   ia,
		Nin:  nins,
		Rsq:  rsqs,
		Alm:  alms,
		Nlp:  nlpTotal,
		Jerr: terminal,
	}, nil
}

func (ps *MultinomialPathSolver) buildGrid(y, offset, w []float64) []float64 {
	if len(ps.Config.Ulam) > 0 {
		grid := make([]float64, len(ps.Config.Ulam))
		copy(grid, ps.Config.Ulam)
		sort.Sort(sort.Reverse(sort.Float64Slice(grid)))
		return grid
	}

	n, p := ps.View.Dims()
	K := ps.Fam.K
	nlam := ps.Config.Nlam
	if nlam <= 0 {
		nlam = 100
	}

	lambdaMax := ps.lambdaMax(y, offset, w)

	ratio := ps.Config.Flmin
	if ratio <= 0 {
		if n > p {
			ratio = 1e-4
		} else {
			ratio = 1e-2
		}
	}
	lambdaMin := ratio * lambdaMax

	grid := make([]float64, nlam)
	if nlam == 1 {
		grid[0] = lambdaMax
		return grid
	}
	logMax := math.Log(lambdaMax)
	logMin := math.Log(math.Max(lambdaMin, 1e-12))
	step := (logMax - logMin) / float64(nlam-1)
	for i := 0; i < nlam; i++ {
		grid[i] = math.Exp(logMax - step*float64(i))
	}
	return grid
}

func (ps *MultinomialPathSolver) lambdaMax(y, offset, w []float64) float64 {
	n, p := ps.View.Dims()
	K := ps.Fam.K

	intercept := make([]float64, K)
	if ps.Config.Intr {
		var sw float64
		swy := make([]float64, K)
		for i := 0; i < n; i++ {
			sw += w[i]
			for k := 0; k < K; k++ {
				yy := y[i*K+k]
				if offset != nil {
					yy -= offset[i*K+k]
				}
				swy[k] += w[i] * yy
			}
		}
		if sw > 0 {
			for k := range intercept {
				intercept[k] = swy[k] / sw
			}
		}
	}

	eta := make([]float64, n*K)
	for i := 0; i < n; i++ {
		for k := 0; k < K; k++ {
			eta[i*K+k] = intercept[k]
			if offset != nil {
				eta[i*K+k] += offset[i*K+k]
			}
		}
	}

	working, err := ps.Fam.PrepareWorking(eta, y, w)
	if err != nil {
		return 1
	}

	alpha := ps.Penalty.Alpha
	if alpha <= 0 {
		alpha = 1e-3
	}

	var lambdaMax float64
	for j := 0; j < p; j++ {
		if ps.Penalty.Excluded[j] || ps.Penalty.VP[j] <= 0 {
			continue
		}
		var norm2 float64
		var maxAbs float64
		for k := 0; k < K; k++ {
			r := make([]float64, n)
			wk := make([]float64, n)
			for i := 0; i < n; i++ {
				r[i] = working.YTilde[i*K+k] - eta[i*K+k]
				wk[i] = working.WTilde[i*K+k]
			}
			g := ps.View.WeightedDot(j, r, wk)
			norm2 += g * g
			if math.Abs(g) > maxAbs {
				maxAbs = math.Abs(g)
			}
		}
		v := maxAbs / (alpha * ps.Penalty.VP[j])
		if ps.Grouped {
			v = math.Sqrt(norm2) / (alpha * ps.Penalty.VP[j])
		}
		if v > lambdaMax {
			lambdaMax = v
		}
	}
	if lambdaMax <= 0 {
		lambdaMax = 1
	}
	return lambdaMax
}
