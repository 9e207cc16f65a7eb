// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package family

import "gonum.org/v1/gonum/stat"

// Gaussian implements squared-error loss. No IRLS outer loop is needed: the
// working response is the response itself and the working weights are the
// observation weights, unchanged at every λ (§4.4).
type Gaussian struct{}

func (Gaussian) Gaussian() bool  { return true }
func (Gaussian) NumClasses() int { return 1 }

func (Gaussian) PrepareWorking(eta []float64, y, w []float64) (Working, error) {
	yTilde := make([]float64, len(y))
	copy(yTilde, y)
	wTilde := make([]float64, len(w))
	copy(wTilde, w)

	var nullDev, curDev float64
	yMean := stat.Mean(y, w)
	for i, yi := range y {
		d := yi - yMean
		nullDev += w[i] * d * d
		r := yi - eta[i]
		curDev += w[i] * r * r
	}
	return Working{YTilde: yTilde, WTilde: wTilde, NullDev: nullDev, CurDev: curDev}, nil
}
