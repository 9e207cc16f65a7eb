// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package family implements the per-GLM-family local quadratic
// approximation (§4.4): given the current linear predictor eta = Xβ +
// offset, each Model produces a working response, working weights, and
// deviance figures that the coordinate-descent inner loop treats as an
// ordinary weighted-Gaussian problem (IRLS, §4.5).
package family

import "errors"

// ErrSaturation is returned when too many observations have had their
// fitted probability clipped against the family's numerical guard band, or,
// for Poisson, when any linear predictor exceeds the exponent guard, per
// §4.4 and the "Saturation" row of §7.
var ErrSaturation = errors.New("family: saturation: too many clipped observations")

// Working holds the outputs of one PrepareWorking call.
type Working struct {
	YTilde  []float64 // working response ỹ
	WTilde  []float64 // working weights w̃
	NullDev float64   // deviance of the intercept-only (or zero) model
	CurDev  float64   // deviance at the current eta
}

// Model computes the working response/weights and deviance for a GLM
// family, given the current linear predictor eta and the true response y
// and observation weights w (already normalized so sum(w)=1).
//
// PrepareWorking must not mutate y or w. It returns ErrSaturation (a
// non-fatal condition per §7) rather than panicking when numerical guard
// rails are hit too often to trust the fit.
type Model interface {
	// Gaussian reports whether this family needs no IRLS outer loop — the
	// working response is just y itself and PrepareWorking can be called
	// once per λ rather than once per IRLS step.
	Gaussian() bool

	// NumClasses returns 1 for every family except multinomial, where it
	// is the number of classes K.
	NumClasses() int

	PrepareWorking(eta []float64, y, w []float64) (Working, error)
}
