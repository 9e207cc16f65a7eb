// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package glmpath fits regularization paths for generalized linear models
// by cyclic coordinate descent with elastic-net penalties, strong-rules
// screening, and KKT verification.
//
// PathSolver drives PointSolver across a lambda grid with warm starts;
// PointSolver fits a single lambda by IRLS-wrapped coordinate descent
// (directly, for Gaussian) over a dataview.View and a family.Model. Both
// dense and sparse (CSC) predictor matrices are supported through the
// dataview.View interface. The naive/covariance gradient-bookkeeping split
// from coord.GradientState is chosen per fit: non-Gaussian families always
// use the naive state; Gaussian fits use the covariance state for a dense
// view with fewer than 500 predictors, unless Config.UseCovariance says
// otherwise.
package glmpath
