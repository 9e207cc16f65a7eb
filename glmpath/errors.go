// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glmpath

import "fmt"

// ErrorCode is the canonical error-code taxonomy from §6/§7: 0 is success,
// 1..99 are memory/allocation errors, 10000+j signals a zero-variance
// predictor at column j, and negative codes are non-fatal truncations. Every
// code of 10000 or more is read as zero-variance; numerical conditions such
// as saturation or overflow use the negative CodeSaturation.
type ErrorCode int

const (
	// CodeOK is the zero value: success, nothing to report.
	CodeOK ErrorCode = 0

	// CodeMaxIterations is a non-fatal algorithmic non-convergence: maxit
	// was reached at some lambda (§7 "Algorithmic non-convergence").
	CodeMaxIterations ErrorCode = -1

	// CodeDfmaxReached and CodePmaxReached are the non-fatal, no-warning
	// structural limits from §7.
	CodeDfmaxReached ErrorCode = -2
	CodePmaxReached  ErrorCode = -3

	// CodeSaturation is the non-fatal saturation/overflow condition
	// (binomial/multinomial clipping, Poisson exponent overflow, NaN
	// deviance) from §7.
	CodeSaturation ErrorCode = -4

	// CodeCancelled reports a caller-cancelled Context (§5 extension: no
	// atomic cancel point, so this is reported as the softest possible
	// non-fatal truncation).
	CodeCancelled ErrorCode = -5

	// zeroVarianceBase is added to the 1-based column index to form a
	// fatal zero-variance error code (§6: "10000+j").
	zeroVarianceBase ErrorCode = 10000
)

// ZeroVarianceCode returns the fatal error code for a zero-variance
// predictor at 1-based column j (§3 S3, §6, §7).
func ZeroVarianceCode(j int) ErrorCode {
	return zeroVarianceBase + ErrorCode(j)
}

// IsZeroVariance reports whether code encodes a zero-variance column, and
// if so, which 1-based column.
func (c ErrorCode) IsZeroVariance() (col int, ok bool) {
	if c >= zeroVarianceBase {
		return int(c - zeroVarianceBase), true
	}
	return 0, false
}

// Fatal reports whether code requires aborting the fit with no partial
// result, per the §7 propagation rule. Only zero-variance-with-alpha=1 is
// fatal; every other non-OK code is a non-fatal truncation.
func (c ErrorCode) Fatal() bool {
	_, isZV := c.IsZeroVariance()
	return isZV
}

// NonFatal reports whether code truncates the path but still returns
// whatever converged.
func (c ErrorCode) NonFatal() bool {
	return c != CodeOK && !c.Fatal()
}

func (c ErrorCode) Error() string {
	if col, ok := c.IsZeroVariance(); ok {
		return fmt.Sprintf("glmpath: zero-variance predictor at column %d (fatal with alpha=1, unpenalized)", col)
	}
	switch c {
	case CodeOK:
		return "glmpath: success"
	case CodeMaxIterations:
		return "glmpath: maximum iterations reached before convergence"
	case CodeDfmaxReached:
		return "glmpath: active-set size exceeded dfmax"
	case CodePmaxReached:
		return "glmpath: ever-nonzero count exceeded pmax"
	case CodeSaturation:
		return "glmpath: saturation or numerical overflow in family deviance"
	case CodeCancelled:
		return "glmpath: fit cancelled by caller context"
	default:
		return fmt.Sprintf("glmpath: error code %d", int(c))
	}
}
