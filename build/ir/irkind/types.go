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

package irkind

import (
	"fmt"
	"strings"
)

type (
	// Elt is the type of a scalar-sort expression.
	Elt interface {
		elt()
		// Equal returns true if other is the same type.
		Equal(other Elt) bool
		String() string
	}

	// Scalar is a single value of a given kind.
	Scalar struct {
		Kind Kind
	}

	// Tuple groups several scalar types.
	// The empty tuple is the unit type.
	Tuple struct {
		Elems []Elt
	}

	// Shape is a multi-dimensional index of a given rank.
	Shape struct {
		Rank int
	}
)

var (
	_ Elt = Scalar{}
	_ Elt = Tuple{}
	_ Elt = Shape{}
)

// Int is the type of shape dimensions and sizes.
var Int = Scalar{Kind: DefaultInt}

// BoolType is the type of predicates.
var BoolType = Scalar{Kind: Bool}

func (Scalar) elt() {}

// Equal returns true if other is the same type.
func (t Scalar) Equal(other Elt) bool {
	o, ok := other.(Scalar)
	return ok && o.Kind == t.Kind
}

func (t Scalar) String() string {
	return t.Kind.String()
}

func (Tuple) elt() {}

// Equal returns true if other is the same type.
func (t Tuple) Equal(other Elt) bool {
	o, ok := other.(Tuple)
	if !ok || len(o.Elems) != len(t.Elems) {
		return false
	}
	for i, el := range t.Elems {
		if !el.Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

func (t Tuple) String() string {
	ss := make([]string, len(t.Elems))
	for i, el := range t.Elems {
		ss[i] = el.String()
	}
	return "(" + strings.Join(ss, ", ") + ")"
}

func (Shape) elt() {}

// Equal returns true if other is the same type.
func (t Shape) Equal(other Elt) bool {
	o, ok := other.(Shape)
	return ok && o.Rank == t.Rank
}

func (t Shape) String() string {
	return fmt.Sprintf("DIM%d", t.Rank)
}

type (
	// Arrays is the type of an array-sort expression.
	Arrays interface {
		arrays()
		// Equal returns true if other is the same type.
		Equal(other Arrays) bool
		String() string
	}

	// Array is a regular multi-dimensional array.
	Array struct {
		Rank int
		Elt  Elt
	}

	// ArraysTuple groups several arrays.
	ArraysTuple struct {
		Elems []Arrays
	}
)

var (
	_ Arrays = Array{}
	_ Arrays = ArraysTuple{}
)

func (Array) arrays() {}

// Equal returns true if other is the same type.
func (t Array) Equal(other Arrays) bool {
	o, ok := other.(Array)
	return ok && o.Rank == t.Rank && o.Elt.Equal(t.Elt)
}

func (t Array) String() string {
	return fmt.Sprintf("Array DIM%d %s", t.Rank, t.Elt.String())
}

func (ArraysTuple) arrays() {}

// Equal returns true if other is the same type.
func (t ArraysTuple) Equal(other Arrays) bool {
	o, ok := other.(ArraysTuple)
	if !ok || len(o.Elems) != len(t.Elems) {
		return false
	}
	for i, el := range t.Elems {
		if !el.Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

func (t ArraysTuple) String() string {
	ss := make([]string, len(t.Elems))
	for i, el := range t.Elems {
		ss[i] = el.String()
	}
	return "(" + strings.Join(ss, ", ") + ")"
}

// IsArray returns the array type if t is a regular array.
func IsArray(t Arrays) (Array, bool) {
	arr, ok := t.(Array)
	return arr, ok
}

// IsScalar returns the kind of t if t is a scalar type.
func IsScalar(t Elt) (Kind, bool) {
	sc, ok := t.(Scalar)
	if !ok {
		return Invalid, false
	}
	return sc.Kind, true
}
