// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package trace observes the nodes visited while converting a program.
package trace

import "fmt"

// Sort of a node.
type Sort int

const (
	// Array is the sort of array computations.
	Array Sort = iota
	// Scalar is the sort of scalar expressions.
	Scalar
)

func (s Sort) String() string {
	if s == Array {
		return "array"
	}
	return "scalar"
}

// Visit describes a visit of a node by the occurrence counter.
type Visit struct {
	Sort Sort
	// ID is the identity of the visited node.
	ID uint64
	// First is true when the node is visited for the first time.
	// Children are only visited when First is true.
	First bool
}

func (v Visit) String() string {
	return fmt.Sprintf("%s #%d first=%v", v.Sort, v.ID, v.First)
}

// Callback is called for every node visited while counting occurrences.
type Callback interface {
	Visit(Visit)
}

// Counter is a callback counting visits.
type Counter struct {
	// Visits is the total number of visits.
	Visits int
	// Descents is the number of first visits,
	// that is the number of node instances traversed.
	Descents int
	// PerSort counts the visits per sort.
	PerSort [2]int
}

var _ Callback = (*Counter)(nil)

// Visit records a visit.
func (c *Counter) Visit(v Visit) {
	c.Visits++
	c.PerSort[v.Sort]++
	if v.First {
		c.Descents++
	}
}

// Func is a function implementing the Callback interface.
type Func func(Visit)

// Visit calls the function.
func (f Func) Visit(v Visit) {
	f(v)
}
