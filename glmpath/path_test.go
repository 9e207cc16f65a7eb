// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glmpath

import (
	"math"
	"testing"

	"github.com/num-lab/glmpath/dataview"
	"github.com/num-lab/glmpath/family"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func defaultPenalty(p int) Penalty {
	vp := make([]float64, p)
	lo := make([]float64, p)
	hi := make([]float64, p)
	excl := make([]bool, p)
	for j := range vp {
		vp[j] = 1
		lo[j] = math.Inf(-1)
		hi[j] = math.Inf(1)
	}
	return Penalty{Alpha: 1, VP: vp, Lo: lo, Hi: hi, Excluded: excl}
}

func baseConfig(nlam int) Config {
	return Config{
		Nlam:   nlam,
		Thresh: 1e-10,
		Intr:   true,
		Maxit:  1000,
		Params: DefaultParams(),
	}
}

// TestLassoTinyS1 is the spec's S1 scenario: n=5, p=3, X the first three
// columns of I5, y = (1,2,3,4,5), alpha=1, nlambda=3, intercept=true.
func TestLassoTinyS1(t *testing.T) {
	x := mat.NewDense(5, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		0, 0, 0,
		0, 0, 0,
	})
	y := []float64{1, 2, 3, 4, 5}
	view := dataview.NewDenseView(x, true)
	penalty := defaultPenalty(3)
	cfg := baseConfig(3)

	solver := &PathSolver{View: view, Fam: family.Gaussian{}, Penalty: penalty, Config: cfg}
	res, err := solver.Fit(y, nil, nil)
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	if res.Lmu == 0 {
		t.Fatal("expected at least one path column")
	}
	beta0 := res.Unpack(0, 3)
	for j, b := range beta0 {
		if math.Abs(b) > 1e-6 {
			t.Errorf("beta_1[%d] = %v, want 0 at lambda_max", j, b)
		}
	}
	for m := 1; m < res.Lmu; m++ {
		if res.Alm[m] >= res.Alm[m-1] {
			t.Errorf("lambda not strictly decreasing at column %d", m)
		}
	}
}

// TestRidgeCollinearS2 is the spec's S2 scenario: X[:,2] = X[:,1], alpha=0.
// The ridge penalty splits the coefficient equally between the two
// identical columns at every lambda.
func TestRidgeCollinearS2(t *testing.T) {
	n := 10
	col := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		col[i] = float64(i + 1)
		y[i] = float64(i+1) * 2
	}
	data := make([]float64, n*2)
	for i := 0; i < n; i++ {
		data[i*2] = col[i]
		data[i*2+1] = col[i]
	}
	x := mat.NewDense(n, 2, data)
	view := dataview.NewDenseView(x, true)
	penalty := defaultPenalty(2)
	penalty.Alpha = 0
	cfg := baseConfig(5)

	solver := &PathSolver{View: view, Fam: family.Gaussian{}, Penalty: penalty, Config: cfg}
	res, err := solver.Fit(y, nil, nil)
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	for m := 0; m < res.Lmu; m++ {
		beta := res.Unpack(m, 2)
		if !floats.EqualWithinAbsOrRel(beta[0], beta[1], 1e-6, 1e-6) {
			t.Errorf("column %d: beta[0]=%v beta[1]=%v, want equal under ridge collinearity", m, beta[0], beta[1])
		}
	}
}

// TestExcludeListS4 is the spec's S4 scenario: same as S1 but with column 2
// (0-based index 1) excluded. Expect beta[1,:] identically 0 and the rsq
// path identical to the fit with that column dropped entirely.
func TestExcludeListS4(t *testing.T) {
	x := mat.NewDense(5, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		0, 0, 0,
		0, 0, 0,
	})
	y := []float64{1, 2, 3, 4, 5}
	view := dataview.NewDenseView(x, true)
	penalty := defaultPenalty(3)
	penalty.Excluded[1] = true
	cfg := baseConfig(4)

	solver := &PathSolver{View: view, Fam: family.Gaussian{}, Penalty: penalty, Config: cfg}
	res, err := solver.Fit(y, nil, nil)
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	for m := 0; m < res.Lmu; m++ {
		beta := res.Unpack(m, 3)
		if beta[1] != 0 {
			t.Errorf("column %d: beta[1] = %v, want exactly 0 (excluded)", m, beta[1])
		}
	}

	xReduced := mat.NewDense(5, 2, []float64{
		1, 0,
		0, 0,
		0, 1,
		0, 0,
		0, 0,
	})
	viewReduced := dataview.NewDenseView(xReduced, true)
	penaltyReduced := defaultPenalty(2)
	cfg2 := baseConfig(4)
	solverReduced := &PathSolver{View: viewReduced, Fam: family.Gaussian{}, Penalty: penaltyReduced, Config: cfg2}
	resReduced, err := solverReduced.Fit(y, nil, nil)
	if err != nil {
		t.Fatalf("Fit (reduced) returned error: %v", err)
	}
	if res.Lmu != resReduced.Lmu {
		t.Fatalf("lmu mismatch: excluded=%d reduced=%d", res.Lmu, resReduced.Lmu)
	}
	for m := 0; m < res.Lmu; m++ {
		if !floats.EqualWithinAbsOrRel(res.Rsq[m], resReduced.Rsq[m], 1e-6, 1e-6) {
			t.Errorf("column %d: rsq=%v reduced rsq=%v", m, res.Rsq[m], resReduced.Rsq[m])
		}
	}
}

// TestMonotoneDeviance verifies invariant 2 from the spec's testable
// properties: rsq is non-decreasing along the path.
func TestMonotoneDeviance(t *testing.T) {
	n, p := 30, 6
	data := make([]float64, n*p)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			data[i*p+j] = math.Sin(float64(i*p+j+1) * 0.37)
		}
		y[i] = data[i*p+0]*2 - data[i*p+1] + 0.5*float64(i%3)
	}
	x := mat.NewDense(n, p, data)
	view := dataview.NewDenseView(x, true)
	penalty := defaultPenalty(p)
	cfg := baseConfig(20)

	solver := &PathSolver{View: view, Fam: family.Gaussian{}, Penalty: penalty, Config: cfg}
	res, err := solver.Fit(y, nil, nil)
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	for m := 1; m < res.Lmu; m++ {
		if res.Rsq[m] < res.Rsq[m-1]-1e-6 {
			t.Errorf("rsq decreased at column %d: %v -> %v", m, res.Rsq[m-1], res.Rsq[m])
		}
	}
}

// TestBoxRespect verifies invariant 6: every coefficient stays within its
// configured box at every path column.
func TestBoxRespect(t *testing.T) {
	n, p := 20, 4
	data := make([]float64, n*p)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			data[i*p+j] = float64((i*p+j)%7) - 3
		}
		y[i] = data[i*p+0] - 2*data[i*p+1]
	}
	x := mat.NewDense(n, p, data)
	view := dataview.NewDenseView(x, true)
	penalty := defaultPenalty(p)
	for j := range penalty.Lo {
		penalty.Lo[j] = -0.5
		penalty.Hi[j] = 0.5
	}
	cfg := baseConfig(10)

	solver := &PathSolver{View: view, Fam: family.Gaussian{}, Penalty: penalty, Config: cfg}
	res, err := solver.Fit(y, nil, nil)
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	for m := 0; m < res.Lmu; m++ {
		beta := res.Unpack(m, p)
		for j, b := range beta {
			if b < penalty.Lo[j]-1e-9 || b > penalty.Hi[j]+1e-9 {
				t.Errorf("column %d: beta[%d]=%v out of box [%v,%v]", m, j, b, penalty.Lo[j], penalty.Hi[j])
			}
		}
	}
}

// TestNaiveCovarianceFitAgree checks §8 invariant 9 at the path level: for a
// Gaussian fit, forcing Config.UseCovariance to true or false must produce
// the same path, since the two GradientState implementations differ only in
// how they maintain the same gradient, never in the coordinate update rule
// itself.
func TestNaiveCovarianceFitAgree(t *testing.T) {
	n, p := 30, 6
	data := make([]float64, n*p)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			data[i*p+j] = math.Sin(float64(i)) + float64(j)*math.Cos(float64(i+j))
		}
		y[i] = 2*data[i*p+0] - data[i*p+1] + 0.5*data[i*p+2]
	}
	x := mat.NewDense(n, p, data)
	view := dataview.NewDenseView(x, true)
	penalty := defaultPenalty(p)

	runWith := func(useCovariance bool) Result {
		cfg := baseConfig(8)
		cfg.UseCovariance = &useCovariance
		solver := &PathSolver{View: view, Fam: family.Gaussian{}, Penalty: penalty, Config: cfg}
		res, err := solver.Fit(y, nil, nil)
		if err != nil {
			t.Fatalf("Fit(useCovariance=%v) returned error: %v", useCovariance, err)
		}
		return res
	}

	naive := runWith(false)
	covariance := runWith(true)

	if naive.Lmu != covariance.Lmu {
		t.Fatalf("path length mismatch: naive Lmu=%d, covariance Lmu=%d", naive.Lmu, covariance.Lmu)
	}
	for m := 0; m < naive.Lmu; m++ {
		if !floats.EqualWithinAbsOrRel(naive.Alm[m], covariance.Alm[m], 1e-8, 1e-8) {
			t.Errorf("column %d: lambda mismatch naive=%v covariance=%v", m, naive.Alm[m], covariance.Alm[m])
		}
		if !floats.EqualWithinAbsOrRel(naive.Rsq[m], covariance.Rsq[m], 1e-6, 1e-6) {
			t.Errorf("column %d: rsq mismatch naive=%v covariance=%v", m, naive.Rsq[m], covariance.Rsq[m])
		}
		naiveBeta := naive.Unpack(m, p)
		covarianceBeta := covariance.Unpack(m, p)
		for j := range naiveBeta {
			if !floats.EqualWithinAbsOrRel(naiveBeta[j], covarianceBeta[j], 1e-6, 1e-6) {
				t.Errorf("column %d: beta[%d] mismatch naive=%v covariance=%v", m, j, naiveBeta[j], covarianceBeta[j])
			}
		}
	}
}
