// Copyright ©2026 The glmpath Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glmpath

// ActiveSet tracks the coordinates currently permitted to be nonzero,
// preserving first-entry order (§4.5 "Tie-breaking & ordering"): the order
// additions are appended in is also the order the path's ia[] output
// records them.
type ActiveSet struct {
	order  []int
	member map[int]bool
}

// NewActiveSet returns an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{member: make(map[int]bool)}
}

// Has reports whether j is currently in the active set.
func (a *ActiveSet) Has(j int) bool { return a.member[j] }

// Add appends j to the active set if it is not already present, preserving
// first-entry order. It reports whether j was newly added.
func (a *ActiveSet) Add(j int) bool {
	if a.member[j] {
		return false
	}
	a.member[j] = true
	a.order = append(a.order, j)
	return true
}

// Order returns the coordinates in first-entry order. The caller must not
// mutate the returned slice.
func (a *ActiveSet) Order() []int { return a.order }

// Len returns the number of active coordinates.
func (a *ActiveSet) Len() int { return len(a.order) }
