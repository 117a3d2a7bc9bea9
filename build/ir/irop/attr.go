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

package irop

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/gx-org/backend/shape"
	"github.com/pkg/errors"
)

// MaxStencilWindow is the maximum number of elements read by a stencil
// around each element of an array.
const MaxStencilWindow = 1 << 12

type (
	// Data describes an external array injected into a computation.
	Data struct {
		// Name of the array, for debugging.
		Name string
		// Shape of the array: element data type and axis lengths.
		Shape *shape.Shape
		// Value is an opaque handle passed to the backend as-is.
		Value any
	}

	// ConstValue is the attribute of a scalar constant.
	ConstValue struct {
		Kind  irkind.Kind
		Value any
	}

	// Prim is a primitive scalar operation.
	// Operators of the host language are identified by their token.
	// Other functions (for example max or sqrt) are identified by name.
	Prim struct {
		Tok  token.Token
		Name string
		// To is the target kind of a conversion.
		To irkind.Kind
	}

	// Index selects a component of a tuple.
	Index int

	// SliceSpec describes, for each axis of the larger array,
	// whether the axis is kept entirely (true) or fixed to an index (false).
	SliceSpec []bool

	// BoundaryKind specifies how a stencil reads outside of an array.
	BoundaryKind int

	// Boundary condition of a stencil.
	Boundary struct {
		Kind BoundaryKind
		// Value used when Kind is Constant.
		Value ConstValue
	}

	// StencilSpec is the attribute of a stencil.
	StencilSpec struct {
		// Sizes of the stencil window along each axis. Sizes are odd.
		Sizes []int
		// Boundaries for each source array.
		Boundaries []Boundary
	}

	// TagInfo is the attribute of a placeholder for a scalar function parameter.
	TagInfo struct {
		Level int
		Type  irkind.Elt
	}

	// AtagInfo is the attribute of a placeholder for an array function parameter.
	AtagInfo struct {
		Level int
		Type  irkind.Arrays
	}
)

// Boundary conditions.
const (
	Clamp BoundaryKind = iota
	Mirror
	Wrap
	Constant
)

// Named primitive functions.
const (
	PrimMax  = "max"
	PrimMin  = "min"
	PrimAbs  = "abs"
	PrimSqrt = "sqrt"
	PrimNeg  = "neg"
	PrimCast = "cast"
)

func (d *Data) String() string {
	if d.Shape == nil {
		return d.Name
	}
	return fmt.Sprintf("%s%v", d.Name, d.Shape.AxisLengths)
}

func (c ConstValue) String() string {
	return fmt.Sprintf("%v:%s", c.Value, c.Kind)
}

func (p Prim) String() string {
	if p.Tok != token.ILLEGAL {
		return p.Tok.String()
	}
	if p.Name == PrimCast {
		return fmt.Sprintf("cast<%s>", p.To)
	}
	return p.Name
}

// NumArgs returns the number of arguments of a primitive.
func (p Prim) NumArgs() int {
	switch p.Tok {
	case token.NOT:
		return 1
	case token.ILLEGAL:
		switch p.Name {
		case PrimAbs, PrimSqrt, PrimNeg, PrimCast:
			return 1
		}
	}
	return 2
}

// Kept returns the number of axes kept entirely.
func (s SliceSpec) Kept() int {
	n := 0
	for _, all := range s {
		if all {
			n++
		}
	}
	return n
}

// Fixed returns the number of axes fixed to an index.
func (s SliceSpec) Fixed() int {
	return len(s) - s.Kept()
}

func (s SliceSpec) String() string {
	var b strings.Builder
	b.WriteString("Z")
	for _, all := range s {
		if all {
			b.WriteString(" :. All")
		} else {
			b.WriteString(" :. Int")
		}
	}
	return b.String()
}

func (k BoundaryKind) String() string {
	switch k {
	case Clamp:
		return "clamp"
	case Mirror:
		return "mirror"
	case Wrap:
		return "wrap"
	case Constant:
		return "constant"
	}
	return "invalid"
}

func (b Boundary) String() string {
	if b.Kind == Constant {
		return fmt.Sprintf("constant(%s)", b.Value)
	}
	return b.Kind.String()
}

// Check returns an error if the stencil cannot be applied to n arrays.
// Sizes must be positive and odd so that a window has a center.
func (s *StencilSpec) Check(n int) error {
	if len(s.Boundaries) != n {
		return errors.Errorf("%d boundaries for %d arrays", len(s.Boundaries), n)
	}
	window := 1
	for axis, size := range s.Sizes {
		if size <= 0 || size%2 == 0 {
			return errors.Errorf("stencil size %d on axis %d is not a positive odd number", size, axis)
		}
		window *= size
		if window > MaxStencilWindow {
			return errors.Errorf("stencil window %v reads more than %d elements", s.Sizes, MaxStencilWindow)
		}
	}
	return nil
}

// Window returns the number of elements read by the stencil.
func (s *StencilSpec) Window() int {
	n := 1
	for _, size := range s.Sizes {
		n *= size
	}
	return n
}

func (s *StencilSpec) String() string {
	bs := make([]string, len(s.Boundaries))
	for i, b := range s.Boundaries {
		bs[i] = b.String()
	}
	return fmt.Sprintf("%v %s", s.Sizes, strings.Join(bs, " "))
}
