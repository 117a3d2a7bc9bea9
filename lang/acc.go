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

package lang

import (
	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/gx-org/arrlang/build/ir/irop"
	"github.com/gx-org/backend/shape"
)

// Use injects external data into a computation.
// value is passed to the backend as-is.
func Use(name string, sh *shape.Shape, value any) *Acc {
	return newAcc(irop.Use, &irop.Data{Name: name, Shape: sh, Value: value})
}

// APlaceholder returns a placeholder for the parameter of an array function.
func APlaceholder(level int, typ irkind.Arrays) *Acc {
	return newAcc(irop.Atag, irop.AtagInfo{Level: level, Type: typ})
}

// Unit returns an array of rank 0 holding a single value.
func Unit(e *Exp) *Acc {
	return newAcc(irop.Unit, nil).withExps(e)
}

// Generate builds an array of a given shape by applying f to every index.
func Generate(sh *Exp, f Fun) *Acc {
	return newAcc(irop.Generate, nil).withExps(sh).withFuns(f)
}

// Map applies f to every element of an array.
func Map(f Fun, a *Acc) *Acc {
	return newAcc(irop.Map, nil).withAccs(a).withFuns(f)
}

// ZipWith combines the elements of two arrays with f.
func ZipWith(f Fun, a, b *Acc) *Acc {
	return newAcc(irop.ZipWith, nil).withAccs(a, b).withFuns(f)
}

// Fold reduces the innermost axis of an array with f, starting from z.
func Fold(f Fun, z *Exp, a *Acc) *Acc {
	return newAcc(irop.Fold, nil).withAccs(a).withExps(z).withFuns(f)
}

// Fold1 reduces the innermost axis of a non-empty array with f.
func Fold1(f Fun, a *Acc) *Acc {
	return newAcc(irop.Fold1, nil).withAccs(a).withFuns(f)
}

// FoldSeg reduces segments of the innermost axis of an array.
// segs is a vector with the length of each segment.
func FoldSeg(f Fun, z *Exp, a, segs *Acc) *Acc {
	return newAcc(irop.FoldSeg, nil).withAccs(a, segs).withExps(z).withFuns(f)
}

// Fold1Seg reduces non-empty segments of the innermost axis of an array.
func Fold1Seg(f Fun, a, segs *Acc) *Acc {
	return newAcc(irop.Fold1Seg, nil).withAccs(a, segs).withFuns(f)
}

func scan(op irop.AccOp, f Fun, z *Exp, a *Acc) *Acc {
	acc := newAcc(op, nil).withAccs(a).withFuns(f)
	if z != nil {
		acc.withExps(z)
	}
	return acc
}

// Scanl computes the prefix sums of the innermost axis from the left.
func Scanl(f Fun, z *Exp, a *Acc) *Acc {
	return scan(irop.Scanl, f, z, a)
}

// Scanl1 computes the inclusive prefix sums of the innermost axis from the left.
func Scanl1(f Fun, a *Acc) *Acc {
	return scan(irop.Scanl1, f, nil, a)
}

// ScanlPrime computes the exclusive prefix sums from the left
// and returns the final accumulators in a separate array.
func ScanlPrime(f Fun, z *Exp, a *Acc) *Acc {
	return scan(irop.ScanlPrime, f, z, a)
}

// Scanr computes the prefix sums of the innermost axis from the right.
func Scanr(f Fun, z *Exp, a *Acc) *Acc {
	return scan(irop.Scanr, f, z, a)
}

// Scanr1 computes the inclusive prefix sums of the innermost axis from the right.
func Scanr1(f Fun, a *Acc) *Acc {
	return scan(irop.Scanr1, f, nil, a)
}

// ScanrPrime computes the exclusive prefix sums from the right
// and returns the final accumulators in a separate array.
func ScanrPrime(f Fun, z *Exp, a *Acc) *Acc {
	return scan(irop.ScanrPrime, f, z, a)
}

// Reshape changes the shape of an array without changing its size.
func Reshape(sh *Exp, a *Acc) *Acc {
	return newAcc(irop.Reshape, nil).withAccs(a).withExps(sh)
}

// Replicate adds the fixed axes of spec to an array,
// replicating the array along them. slix gives the length of each new axis.
func Replicate(spec irop.SliceSpec, slix *Exp, a *Acc) *Acc {
	return newAcc(irop.Replicate, spec).withAccs(a).withExps(slix)
}

// Slice removes the fixed axes of spec from an array
// by indexing them with slix.
func Slice(spec irop.SliceSpec, a *Acc, slix *Exp) *Acc {
	return newAcc(irop.Slice, spec).withAccs(a).withExps(slix)
}

// Permute sends each element of src to the index given by perm in a copy of def.
// Elements sent to the same index are combined with comb.
func Permute(comb Fun, def *Acc, perm Fun, src *Acc) *Acc {
	return newAcc(irop.Permute, nil).withAccs(def, src).withFuns(comb, perm)
}

// Backpermute builds an array of shape sh where each element is read from a
// at the index given by perm.
func Backpermute(sh *Exp, perm Fun, a *Acc) *Acc {
	return newAcc(irop.Backpermute, nil).withAccs(a).withExps(sh).withFuns(perm)
}

// Stencil applies f to the neighbourhood of every element of an array.
// The neighbourhood is passed to f as a tuple in row-major order.
func Stencil(f Fun, sizes []int, b irop.Boundary, a *Acc) *Acc {
	spec := &irop.StencilSpec{Sizes: sizes, Boundaries: []irop.Boundary{b}}
	return newAcc(irop.Stencil, spec).withAccs(a).withFuns(f)
}

// Stencil2 applies f to the neighbourhoods of the elements of two arrays.
func Stencil2(f Fun, sizes []int, b1 irop.Boundary, a1 *Acc, b2 irop.Boundary, a2 *Acc) *Acc {
	spec := &irop.StencilSpec{Sizes: sizes, Boundaries: []irop.Boundary{b1, b2}}
	return newAcc(irop.Stencil2, spec).withAccs(a1, a2).withFuns(f)
}

// Atuple groups several arrays.
func Atuple(as ...*Acc) *Acc {
	return newAcc(irop.Atuple, nil).withAccs(as...)
}

// Aprj returns the i-th array of a tuple of arrays.
func Aprj(i int, a *Acc) *Acc {
	return newAcc(irop.Aprj, irop.Index(i)).withAccs(a)
}

// Acond selects one of two array computations.
func Acond(p *Exp, t, e *Acc) *Acc {
	return newAcc(irop.Acond, nil).withAccs(t, e).withExps(p)
}

// Pipe composes two array functions and applies the result to a.
// The stages are converted independently from the rest of the program:
// they do not share subcomputations with it.
func Pipe(f, g AFun, a *Acc) *Acc {
	acc := newAcc(irop.Pipe, nil).withAccs(a)
	acc.node.AFuns = []AFun{f, g}
	return acc
}

// Boundary conditions for stencils.
var (
	Clamp  = irop.Boundary{Kind: irop.Clamp}
	Mirror = irop.Boundary{Kind: irop.Mirror}
	Wrap   = irop.Boundary{Kind: irop.Wrap}
)

// ConstantBoundary returns a boundary reading a constant outside of an array.
func ConstantBoundary[T GoDataType](v T) irop.Boundary {
	return irop.Boundary{Kind: irop.Constant, Value: constValue(v)}
}
