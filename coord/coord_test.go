// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coord

import (
	"testing"

	"github.com/num-lab/glmpath/dataview"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestUpdateSoftThresholdsToZero(t *testing.T) {
	// g small relative to the lasso penalty: should shrink exactly to 0.
	betaNew, delta := Update(0.5, 0.1, 1.0, 10.0, 1.0, 1.0, -1e10, 1e10)
	if betaNew != 0 {
		t.Errorf("expected coordinate to be thresholded to 0, got %v", betaNew)
	}
	if delta != -0.5 {
		t.Errorf("expected delta -0.5, got %v", delta)
	}
}

func TestUpdateRespectsBoxConstraint(t *testing.T) {
	betaNew, _ := Update(0, 1000, 1.0, 0.0, 1.0, 1.0, 0, 5)
	if betaNew != 5 {
		t.Errorf("expected clip to upper bound 5, got %v", betaNew)
	}
}

func TestUpdateZeroDenomNoOp(t *testing.T) {
	betaNew, delta := Update(2.0, 100, 0, 10, 1, 1, -10, 10)
	if betaNew != 2.0 || delta != 0 {
		t.Errorf("zero-variance coordinate should be a no-op, got (%v, %v)", betaNew, delta)
	}
}

func TestGroupUpdateShrinksWholeVector(t *testing.T) {
	uOld := []float64{0, 0, 0}
	g := []float64{0.1, 0.1, 0.1}
	uNew := make([]float64, 3)
	// Norm of g is small relative to threshold: whole group goes to zero.
	GroupUpdate(uOld, g, 1.0, 10.0, 1.0, 1.0, uNew)
	for k, v := range uNew {
		if v != 0 {
			t.Errorf("class %d: expected group shrinkage to 0, got %v", k, v)
		}
	}
}

func TestNaiveCovarianceGradientAgree(t *testing.T) {
	data := []float64{
		1, 2,
		3, 1,
		0, 4,
		2, 2,
		5, 0,
	}
	x := mat.NewDense(5, 2, data)
	view := dataview.NewDenseView(x, true)
	w := []float64{0.2, 0.2, 0.2, 0.2, 0.2}
	y := []float64{1, 0, -1, 2, 0.5}

	naive := NewNaiveState(view, w, y)

	g0 := make([]float64, 2)
	for j := 0; j < 2; j++ {
		g0[j] = view.WeightedDot(j, y, w)
	}
	cov := NewCovarianceState(view, w, g0)

	for j := 0; j < 2; j++ {
		gn := naive.Gradient(j)
		gc := cov.Gradient(j)
		if !floats.EqualWithinAbsOrRel(gn, gc, 1e-9, 1e-9) {
			t.Errorf("column %d: naive gradient %v != covariance gradient %v", j, gn, gc)
		}
	}
}
