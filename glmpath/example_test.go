// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glmpath_test

import (
	"fmt"
	"math"

	"github.com/num-lab/glmpath"
	"github.com/num-lab/glmpath/dataview"
	"github.com/num-lab/glmpath/family"
	"gonum.org/v1/gonum/mat"
)

// This example fits a lasso regularization path to a small synthetic
// regression problem and reports how many path columns were fitted and the
// number of nonzero coefficients at the final (densest) column.
func Example_lassoPath() {
	n, p := 50, 4
	data := make([]float64, n*p)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			data[i*p+j] = math.Sin(float64(i+1)*0.2 + float64(j))
		}
		y[i] = 3*data[i*p+0] - 1.5*data[i*p+1]
	}
	x := mat.NewDense(n, p, data)
	view := dataview.NewDenseView(x, true)

	vp := []float64{1, 1, 1, 1}
	lo := []float64{math.Inf(-1), math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	hi := []float64{math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1)}
	penalty := glmpath.Penalty{Alpha: 1, VP: vp, Lo: lo, Hi: hi, Excluded: make([]bool, p)}

	cfg := glmpath.Config{
		Nlam:   15,
		Intr:   true,
		Params: glmpath.DefaultParams(),
	}

	solver := &glmpath.PathSolver{View: view, Fam: family.Gaussian{}, Penalty: penalty, Config: cfg}
	res, err := solver.Fit(y, nil, nil)
	if err != nil {
		fmt.Println("fit error:", err)
		return
	}

	beta := res.Unpack(res.Lmu-1, p)
	fmt.Printf("fitted %d columns, final active variables: %d\n", res.Lmu, len(nonzero(beta)))
}

func nonzero(beta []float64) []int {
	var idx []int
	for j, b := range beta {
		if b != 0 {
			idx = append(idx, j)
		}
	}
	return idx
}
