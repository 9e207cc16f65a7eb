// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package family

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// defaultPMin is the probability clipping guard band from §4.4 ("source
// uses configurable pmin"). It is the default for the PMin field, which a
// caller sets per model to override it; glmpath's Params.Pmin is not passed
// through to the family.
const defaultPMin = 1e-5

// maxClipFraction bounds how many observations may be pinned against the
// pmin/1-pmin guard before PrepareWorking reports ErrSaturation.
const maxClipFraction = 0.999

// Binomial implements logistic-regression deviance with the canonical
// logit link (§4.4). ModifiedNewton switches the working weight from the
// exact p(1-p) to the upper bound 1/4, the "modified Newton" mode the spec
// calls out.
type Binomial struct {
	PMin           float64 // clipping guard band; 0 means use defaultPMin
	ModifiedNewton bool
}

func (Binomial) Gaussian() bool  { return false }
func (Binomial) NumClasses() int { return 1 }

func sigmoid(eta float64) float64 {
	return 1 / (1 + math.Exp(-eta))
}

func (b Binomial) pmin() float64 {
	if b.PMin <= 0 {
		return defaultPMin
	}
	return b.PMin
}

func (b Binomial) PrepareWorking(eta []float64, y, w []float64) (Working, error) {
	n := len(eta)
	pmin := b.pmin()
	pmax := 1 - pmin

	yTilde := make([]float64, n)
	wTilde := make([]float64, n)

	var clipped int
	var nullDev, curDev float64

	nullP := clip(stat.Mean(y, w), pmin, pmax)

	for i := range eta {
		p := clip(sigmoid(eta[i]), pmin, pmax)
		if p == pmin || p == pmax {
			clipped++
		}
		var wt float64
		if b.ModifiedNewton {
			wt = w[i] * 0.25
		} else {
			wt = w[i] * p * (1 - p)
		}
		if wt < 1e-10 {
			wt = 1e-10
		}
		wTilde[i] = wt
		yTilde[i] = eta[i] + (y[i]-p)/wt

		curDev += w[i] * binomialDevianceTerm(y[i], p)
		nullDev += w[i] * binomialDevianceTerm(y[i], nullP)
	}

	if float64(clipped)/float64(n) > maxClipFraction {
		return Working{}, ErrSaturation
	}
	return Working{YTilde: yTilde, WTilde: wTilde, NullDev: nullDev, CurDev: curDev}, nil
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func binomialDevianceTerm(y, p float64) float64 {
	var t1, t2 float64
	if y > 0 {
		t1 = y * math.Log(y/p)
	}
	if y < 1 {
		t2 = (1 - y) * math.Log((1-y)/(1-p))
	}
	return 2 * (t1 + t2)
}
