// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glmpath

import "context"

// Params is the process-wide "internal parameters" record from §6, turned
// into an explicit struct passed into every fit instead of an adjustable
// global — the "save, override around scoped fit, restore on exit" pattern
// from the DESIGN NOTES becomes, in Go, simply: construct one, override the
// fields you want, pass it by value.
type Params struct {
	Thresh float64 // inner-loop convergence threshold, relative to null deviance
	Fdev   float64 // fractional-deviance-gain early-stop threshold
	Devmax float64 // near-saturation early-stop threshold (1 - devmax)
	Big    float64 // Poisson exponent guard value; not read by the solver (set family.Poisson.Big)
	Pmin   float64 // probability clipping guard value; not read by the solver (set the family's PMin)
	Exmx   float64 // exponent clamp value; not read by the solver
	Eps    float64 // generic numerical-zero tolerance
	Mxit   int     // max IRLS outer iterations per lambda, and max coordinate-descent passes per inner sweep
	Epsnr  int     // (reserved) Newton-Raphson step cap inside IRLS, unused by Gaussian
	Mnlam  int     // minimum number of lambda values required before fdev stop applies
	Itrace bool    // not read by the solver; Progress is invoked only once per lambda
}

// DefaultParams returns the spec's documented default internal parameters.
func DefaultParams() Params {
	return Params{
		Thresh: 1e-7,
		Fdev:   1e-5,
		Devmax: 0.999,
		Big:    9.0,
		Pmin:   1e-5,
		Exmx:   250,
		Eps:    1e-6,
		Mxit:   100,
		Epsnr:  25,
		Mnlam:  5,
	}
}

// Penalty is the per-fit penalty state from §3: elastic-net mix, per-
// coordinate penalty factors, box constraints, and the exclusion list.
type Penalty struct {
	Alpha    float64   // elastic-net mix in [0,1]
	VP       []float64 // per-coordinate penalty factor, length p; rescaled so sum(VP)=p
	Lo, Hi   []float64 // per-coordinate box [lo,hi], lo<=0<=hi, length p
	Excluded []bool    // infinite-penalty coordinates, frozen at 0, length p
}

// NormalizeVP rescales p.VP in place so that sum(VP) == p (§3). Every entry
// is rescaled, including those of excluded coordinates (which the solver
// skips regardless of their VP).
func (p *Penalty) NormalizeVP() {
	var sum float64
	for _, v := range p.VP {
		sum += v
	}
	if sum <= 0 {
		return
	}
	scale := float64(len(p.VP)) / sum
	for i := range p.VP {
		p.VP[i] *= scale
	}
}

// Config bundles the path-level controls from §6's entry-point parameter
// list (ne, nx, nlam, flmin, ulam, thresh, isd, intr, maxit) plus the
// internal Params record and the §5 progress/cancellation hooks.
type Config struct {
	Ne     int       // dfmax: max active-set size before early stop
	Nx     int       // pmax: max ever-nonzero count before early stop
	Nlam   int       // number of lambda values to generate if Ulam is empty
	Flmin  float64   // lambda.min.ratio; 0 means use the spec's n>p default
	Ulam   []float64 // caller-supplied lambda grid; empty means compute one
	Thresh float64   // overrides Params.Thresh if nonzero
	Isd    bool      // standardize flag
	Intr   bool      // fit an intercept
	Maxit  int       // overrides Params.Mxit if nonzero

	Params Params

	// UseCovariance overrides the dense/covariance-vs-naive selection
	// heuristic from §4.3. Nil means "let PathSolver decide".
	UseCovariance *bool

	// Progress is invoked once per completed lambda step, between steps
	// only, never inside a coordinate sweep (§5). It may be nil.
	Progress func(m int, r Result)

	// Context is checked only between lambda steps (§5: "no operation
	// suspends or yields" mid-fit). A cancelled Context truncates the path
	// the same way a non-fatal early stop would.
	Context context.Context
}

func (c Config) effectiveThresh() float64 {
	if c.Thresh > 0 {
		return c.Thresh
	}
	return c.Params.Thresh
}

func (c Config) effectiveMaxit() int {
	if c.Maxit > 0 {
		return c.Maxit
	}
	return c.Params.Mxit
}
