// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package family

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// defaultBig bounds the canonical-link exponent; exceeding it is the
// "numerical overflow in Poisson exponent" error named in §6/§7.
const defaultBig = 9.0

// Poisson implements Poisson-deviance loss with the canonical log link
// (§4.4).
type Poisson struct {
	// Big overrides the exponent guard; 0 means use defaultBig.
	Big float64
}

func (Poisson) Gaussian() bool  { return false }
func (Poisson) NumClasses() int { return 1 }

func (p Poisson) big() float64 {
	if p.Big <= 0 {
		return defaultBig
	}
	return p.Big
}

func (p Poisson) PrepareWorking(eta []float64, y, w []float64) (Working, error) {
	big := p.big()
	n := len(eta)
	yTilde := make([]float64, n)
	wTilde := make([]float64, n)

	yMean := stat.Mean(y, w)
	if yMean <= 0 {
		yMean = 1e-10
	}

	var nullDev, curDev float64
	for i := range eta {
		e := eta[i]
		if e > big {
			return Working{}, ErrSaturation
		}
		mu := math.Exp(e)
		if mu < 1e-10 {
			mu = 1e-10
		}
		wTilde[i] = w[i] * mu
		yTilde[i] = e + (y[i]-mu)/mu

		curDev += w[i] * poissonDevianceTerm(y[i], mu)
		nullDev += w[i] * poissonDevianceTerm(y[i], yMean)
	}
	return Working{YTilde: yTilde, WTilde: wTilde, NullDev: nullDev, CurDev: curDev}, nil
}

func poissonDevianceTerm(y, mu float64) float64 {
	if y > 0 {
		return 2 * (y*math.Log(y/mu) - (y - mu))
	}
	return 2 * mu
}
