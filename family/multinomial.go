// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package family

import "math"

// Multinomial implements K-class softmax deviance (§4.4). eta, y, and the
// returned Working are all row-major flattened n*K arrays: eta[i*K+k] is
// the linear predictor for observation i, class k.
type Multinomial struct {
	K    int
	PMin float64 // clipping guard band; 0 means use defaultPMin
}

func (m Multinomial) Gaussian() bool  { return false }
func (m Multinomial) NumClasses() int { return m.K }

func (m Multinomial) pmin() float64 {
	if m.PMin <= 0 {
		return defaultPMin
	}
	return m.PMin
}

// softmaxRow fills p[0:K] with the softmax of eta[0:K], clipped to
// [pmin, 1-pmin] and renormalized, mirroring the Binomial guard band.
func softmaxRow(eta []float64, pmin float64, p []float64) {
	K := len(eta)
	maxEta := eta[0]
	for _, e := range eta[1:] {
		if e > maxEta {
			maxEta = e
		}
	}
	var sum float64
	for k := 0; k < K; k++ {
		p[k] = math.Exp(eta[k] - maxEta)
		sum += p[k]
	}
	pmax := 1 - pmin
	var total float64
	for k := 0; k < K; k++ {
		p[k] = clip(p[k]/sum, pmin, pmax)
		total += p[k]
	}
	for k := 0; k < K; k++ {
		p[k] /= total
	}
}

func (m Multinomial) PrepareWorking(eta []float64, y, w []float64) (Working, error) {
	K := m.K
	n := len(eta) / K
	pmin := m.pmin()

	yTilde := make([]float64, n*K)
	wTilde := make([]float64, n*K)
	p := make([]float64, K)

	classMean := make([]float64, K)
	var totalW float64
	for i := 0; i < n; i++ {
		for k := 0; k < K; k++ {
			classMean[k] += w[i] * y[i*K+k]
		}
		totalW += w[i]
	}
	if totalW > 0 {
		for k := range classMean {
			classMean[k] /= totalW
		}
	}

	var nullDev, curDev float64
	var clipped int
	for i := 0; i < n; i++ {
		row := eta[i*K : i*K+K]
		softmaxRow(row, pmin, p)
		for k := 0; k < K; k++ {
			if p[k] == pmin || p[k] == 1-pmin {
				clipped++
			}
			wt := w[i] * p[k] * (1 - p[k])
			if wt < 1e-10 {
				wt = 1e-10
			}
			idx := i*K + k
			wTilde[idx] = wt
			yTilde[idx] = row[k] + (y[idx]-p[k])/wt

			if y[idx] > 0 {
				curDev += -2 * w[i] * y[idx] * math.Log(p[k])
				nullDev += -2 * w[i] * y[idx] * math.Log(clip(classMean[k], pmin, 1-pmin))
			}
		}
	}
	if float64(clipped)/float64(n*K) > maxClipFraction {
		return Working{}, ErrSaturation
	}
	return Working{YTilde: yTilde, WTilde: wTilde, NullDev: nullDev, CurDev: curDev}, nil
}

// MultinomialGrouped is semantically identical to Multinomial for the
// working-response computation. glmpath does not type-switch on it: the
// group-lasso coordinate update (the whole class vector β_{j,*} penalized
// by its L2 norm, §4.4) is selected by the Grouped field of
// glmpath.MultinomialPointSolver/MultinomialPathSolver, which take a plain
// Multinomial. See DESIGN.md for the open question this leaves about
// per-class `mp` scaling.
type MultinomialGrouped struct {
	Multinomial
}
