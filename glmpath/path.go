// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glmpath

import (
	"math"
	"sort"

	"github.com/num-lab/glmpath/dataview"
	"github.com/num-lab/glmpath/family"
	"gonum.org/v1/gonum/stat"
)

// PathSolver drives PointSolver across a lambda grid with warm starts,
// implementing §4.6: grid construction, early termination, and result
// accumulation.
type PathSolver struct {
	View    dataview.View
	Fam     family.Model
	Penalty Penalty
	Config  Config
}

// Fit runs the full path and returns a Result, truncated on any early stop
// or non-fatal error, per §4.6/§4.7. It returns a non-nil error only for
// fatal conditions (zero-variance predictor with alpha=1); every other
// outcome is reported through Result.Jerr with whatever columns converged.
func (ps *PathSolver) Fit(y, offset, w []float64) (Result, error) {
	n, p := ps.View.Dims()
	if len(y) != n {
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
				return Result{}, ZeroVarianceCode(j + 1)
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

	fdev := ps.Config.Params.Fdev
	devmax := ps.Config.Params.Devmax
	if anyZero(ps.Penalty.Lo) || anyZero(ps.Penalty.Hi) {
		fdev = 0
	}

	point := &PointSolver{
		View:          ps.View,
		Fam:           ps.Fam,
		Penalty:       ps.Penalty,
		Params:        ps.Config.Params,
		Intr:          ps.Config.Intr,
		UseCovariance: ps.Config.UseCovariance,
	}
	if ps.Config.Thresh > 0 {
		point.Params.Thresh = ps.Config.Thresh
	}
	maxit := ps.Config.effectiveMaxit()
	point.Params.Mxit = maxit

	beta := make([]float64, p)
	var intercept float64
	active := NewActiveSet()

	builder := newResultBuilder(nx, nlam)
	var prevRsq float64
	var lambdaPrev float64
	var terminal ErrorCode

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
		outcome := point.Solve(beta, &intercept, active, y, offset, w, lambdaPrev, lambdaCur, maxit)
		builder.nlp += outcome.Nlp

		if outcome.Code.Fatal() {
			return Result{}, outcome.Code
		}
		if outcome.Code != CodeOK {
			// This point did not converge, so its column is not recorded.
			terminal = outcome.Code
			break
		}

		rsq := 1.0
		if outcome.NullDev > 0 {
			rsq = 1 - outcome.CurDev/outcome.NullDev
		}
		builder.appendColumn(active, beta, intercept, lambdaCur, rsq)
		result := builder.build(CodeOK)
		if ps.Config.Progress != nil {
			ps.Config.Progress(m, result)
		}

		stop := false
		switch {
		case active.Len() > ne:
			terminal = CodeDfmaxReached
			stop = true
		case active.Len() > nx:
			terminal = CodePmaxReached
			stop = true
		case fdev > 0 && m > 0 && m+1 >= ps.Config.Params.Mnlam && (rsq-prevRsq) < fdev*math.Max(rsq, 1e-12):
			terminal = CodeOK
			stop = true
		case rsq > 1-devmax:
			terminal = CodeOK
			stop = true
		}

		prevRsq = rsq
		lambdaPrev = lambdaCur
		if stop {
			break
		}
	}

	return builder.build(terminal), nil
}

// buildGrid implements §4.6's lambda-grid construction: verbatim caller
// grid if supplied (sorted into decreasing order; duplicate values are
// kept), else a log-spaced grid
// from lambda_max down to lambda.min.ratio*lambda_max.
func (ps *PathSolver) buildGrid(y, offset, w []float64) []float64 {
	if len(ps.Config.Ulam) > 0 {
		grid := make([]float64, len(ps.Config.Ulam))
		copy(grid, ps.Config.Ulam)
		sort.Sort(sort.Reverse(sort.Float64Slice(grid)))
		return grid
	}

	n, p := ps.View.Dims()
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

// lambdaMax computes max_j |g_j(beta=0)| / (alpha*vp[j]) at the saturated
// intercept fit, per §4.6 step 1.
func (ps *PathSolver) lambdaMax(y, offset, w []float64) float64 {
	n, p := ps.View.Dims()

	eta := make([]float64, n)
	var intercept float64
	if ps.Config.Intr {
		var sw float64
		r := make([]float64, n)
		for i := 0; i < n; i++ {
			sw += w[i]
			r[i] = y[i]
			if offset != nil {
				r[i] -= offset[i]
			}
		}
		if sw > 0 {
			intercept = stat.Mean(r, w)
		}
	}
	for i := range eta {
		eta[i] = intercept
		if offset != nil {
			eta[i] += offset[i]
		}
	}

	working, err := ps.Fam.PrepareWorking(eta, y, w)
	if err != nil {
		return 1
	}
	resid := make([]float64, n)
	for i := range resid {
		resid[i] = working.YTilde[i] - eta[i]
	}

	alpha := ps.Penalty.Alpha
	if alpha <= 0 {
		alpha = 1e-3 // pure-ridge path still needs a finite lambda_max anchor
	}

	var lambdaMax float64
	for j := 0; j < p; j++ {
		if ps.Penalty.Excluded[j] || ps.Penalty.VP[j] <= 0 {
			continue
		}
		g := ps.View.WeightedDot(j, resid, working.WTilde)
		v := math.Abs(g) / (alpha * ps.Penalty.VP[j])
		if v > lambdaMax {
			lambdaMax = v
		}
	}
	if lambdaMax <= 0 {
		lambdaMax = 1
	}
	return lambdaMax
}

// uniformWeights returns the default observation weights when the caller
// supplies none: 1/n each, matching family.Model's contract that weights
// are pre-normalized to sum to 1.
func uniformWeights(n int) []float64 {
	w := make([]float64, n)
	inv := 1 / float64(n)
	for i := range w {
		w[i] = inv
	}
	return w
}

func anyZero(xs []float64) bool {
	for _, x := range xs {
		if x == 0 {
			return true
		}
	}
	return false
}
