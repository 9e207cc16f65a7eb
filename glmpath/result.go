// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glmpath

// Result is the path-level output from §6: one column per lambda actually
// filled (Lmu of them), coefficients packed in compressed ia/ca form plus
// the dense-mapping helper Unpack, deviance fractions, iteration counters,
// and the terminal error code.
type Result struct {
	Lmu int // number of columns actually filled

	A0  []float64   // intercepts, length Lmu
	Ca  [][]float64 // Ca[k] is the k-th ever-active coefficient's values across columns, length Lmu each
	Ia  []int       // variable index for each row of Ca, 0-based, first-entry order
	Nin []int       // number of ever-active variables (rows of Ca in use) at each column, length Lmu; some may be 0 at that column
	Rsq []float64   // fraction of null deviance explained, length Lmu
	Alm []float64   // the lambda actually used at each column, length Lmu

	Nlp  int       // total inner coordinate-descent passes across the whole path
	Jerr ErrorCode // terminal error code; CodeOK unless the path was truncated or aborted
}

// Unpack returns the dense p-length coefficient vector for column m
// (0-based), per §6's "Coefficient packing": beta[Ia[k]] = Ca[k][m] for
// k < Nin[m], all other entries 0.
func (r Result) Unpack(m int, p int) []float64 {
	beta := make([]float64, p)
	for k := 0; k < r.Nin[m]; k++ {
		beta[r.Ia[k]] = r.Ca[k][m]
	}
	return beta
}

// resultBuilder accumulates path output column-by-column; on early
// termination (§4.6) the path driver simply stops appending columns.
type resultBuilder struct {
	nx, nlam int
	a0       []float64
	ca       [][]float64
	ia       []int
	nin      []int
	rsq      []float64
	alm      []float64
	nlp      int
}

func newResultBuilder(nx, nlam int) *resultBuilder {
	return &resultBuilder{nx: nx, nlam: nlam}
}

// appendColumn records one lambda step's output. beta is the dense
// coefficient vector, active the ActiveSet in first-entry order.
func (b *resultBuilder) appendColumn(active *ActiveSet, beta []float64, intercept, lambda, rsq float64) {
	b.a0 = append(b.a0, intercept)
	b.alm = append(b.alm, lambda)
	b.rsq = append(b.rsq, rsq)
	col := len(b.alm) - 1 // column index this call is filling, 0-based

	order := active.Order()
	for len(b.ca) < len(order) {
		// A variable entering for the first time at this column still
		// needs a value for every earlier column: it was exactly 0 then.
		row := make([]float64, col, b.nlam)
		b.ca = append(b.ca, row)
	}
	for k, j := range order {
		b.ca[k] = append(b.ca[k], beta[j])
	}
	b.ia = order
	b.nin = append(b.nin, len(order))
}

func (b *resultBuilder) build(jerr ErrorCode) Result {
	ia := make([]int, len(b.ia))
	copy(ia, b.ia)
	return Result{
		Lmu:  len(b.alm),
		A0:   b.a0,
		Ca:   b.ca,
		Ia:   ia,
		Nin:  b.nin,
		Rsq:  b.rsq,
		Alm:  b.alm,
		Nlp:  b.nlp,
		Jerr: jerr,
	}
}
