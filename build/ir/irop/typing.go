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

	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/pkg/errors"
)

// AFunType is the type of an array function.
type AFunType struct {
	Param, Result irkind.Arrays
}

func arrayArg(op AccOp, i int, t irkind.Arrays) (irkind.Array, error) {
	arr, ok := irkind.IsArray(t)
	if !ok {
		return irkind.Array{}, errors.Errorf("%s: argument %d of type %s is not an array", op, i, t)
	}
	return arr, nil
}

func shapeArg(op fmt.Stringer, t irkind.Elt) (irkind.Shape, error) {
	sh, ok := t.(irkind.Shape)
	if !ok {
		return irkind.Shape{}, errors.Errorf("%s: expected a shape but got %s", op, t)
	}
	return sh, nil
}

func sameElt(op fmt.Stringer, what string, got, want irkind.Elt) error {
	if got.Equal(want) {
		return nil
	}
	return errors.Errorf("%s: %s has type %s but want %s", op, what, got, want)
}

func checkRank(op AccOp, arr irkind.Array, min int) error {
	if arr.Rank < min {
		return errors.Errorf("%s: array of rank %d but want at least rank %d", op, arr.Rank, min)
	}
	return nil
}

// FunParams returns the parameter types of every scalar function of an array node
// given the types of its array and expression children.
func FunParams(op AccOp, attr any, accs []irkind.Arrays, exps []irkind.Elt) ([][]irkind.Elt, error) {
	switch op {
	case Generate:
		sh, err := shapeArg(op, exps[0])
		if err != nil {
			return nil, err
		}
		return [][]irkind.Elt{{sh}}, nil
	case Map:
		arr, err := arrayArg(op, 0, accs[0])
		if err != nil {
			return nil, err
		}
		return [][]irkind.Elt{{arr.Elt}}, nil
	case ZipWith:
		x, err := arrayArg(op, 0, accs[0])
		if err != nil {
			return nil, err
		}
		y, err := arrayArg(op, 1, accs[1])
		if err != nil {
			return nil, err
		}
		return [][]irkind.Elt{{x.Elt, y.Elt}}, nil
	case Fold, Fold1, FoldSeg, Fold1Seg, Scanl, Scanl1, ScanlPrime, Scanr, Scanr1, ScanrPrime:
		arr, err := arrayArg(op, 0, accs[0])
		if err != nil {
			return nil, err
		}
		return [][]irkind.Elt{{arr.Elt, arr.Elt}}, nil
	case Permute:
		def, err := arrayArg(op, 0, accs[0])
		if err != nil {
			return nil, err
		}
		src, err := arrayArg(op, 1, accs[1])
		if err != nil {
			return nil, err
		}
		return [][]irkind.Elt{
			{def.Elt, def.Elt},
			{irkind.Shape{Rank: src.Rank}},
		}, nil
	case Backpermute:
		sh, err := shapeArg(op, exps[0])
		if err != nil {
			return nil, err
		}
		return [][]irkind.Elt{{sh}}, nil
	case Stencil, Stencil2:
		spec, ok := attr.(*StencilSpec)
		if !ok {
			return nil, errors.Errorf("%s: missing stencil specification", op)
		}
		if err := spec.Check(len(accs)); err != nil {
			return nil, errors.Wrapf(err, "%s", op)
		}
		params := make([]irkind.Elt, len(accs))
		for i, acc := range accs {
			arr, err := arrayArg(op, i, acc)
			if err != nil {
				return nil, err
			}
			if arr.Rank != len(spec.Sizes) {
				return nil, errors.Errorf("%s: stencil of rank %d applied to an array of rank %d", op, len(spec.Sizes), arr.Rank)
			}
			window := make([]irkind.Elt, spec.Window())
			for j := range window {
				window[j] = arr.Elt
			}
			params[i] = irkind.Tuple{Elems: window}
		}
		return [][]irkind.Elt{params}, nil
	}
	return nil, nil
}

// AccType returns the type of an array node given the types of its children.
// funs are the result types of the scalar functions.
func AccType(op AccOp, attr any, accs []irkind.Arrays, exps []irkind.Elt, funs []irkind.Elt, afuns []AFunType) (irkind.Arrays, error) {
	switch op {
	case Atag:
		info, ok := attr.(AtagInfo)
		if !ok {
			return nil, errors.Errorf("%s: missing placeholder information", op)
		}
		return info.Type, nil
	case Use:
		data, ok := attr.(*Data)
		if !ok || data.Shape == nil {
			return nil, errors.Errorf("%s: missing data shape", op)
		}
		kind := irkind.FromDType(data.Shape.DType)
		if kind == irkind.Invalid {
			return nil, errors.Errorf("%s: data type %v not supported", op, data.Shape.DType)
		}
		return irkind.Array{Rank: len(data.Shape.AxisLengths), Elt: irkind.Scalar{Kind: kind}}, nil
	case Unit:
		return irkind.Array{Rank: 0, Elt: exps[0]}, nil
	case Generate:
		sh, err := shapeArg(op, exps[0])
		if err != nil {
			return nil, err
		}
		return irkind.Array{Rank: sh.Rank, Elt: funs[0]}, nil
	case Map:
		arr, err := arrayArg(op, 0, accs[0])
		if err != nil {
			return nil, err
		}
		return irkind.Array{Rank: arr.Rank, Elt: funs[0]}, nil
	case ZipWith:
		x, err := arrayArg(op, 0, accs[0])
		if err != nil {
			return nil, err
		}
		y, err := arrayArg(op, 1, accs[1])
		if err != nil {
			return nil, err
		}
		if x.Rank != y.Rank {
			return nil, errors.Errorf("%s: arrays have different ranks %d and %d", op, x.Rank, y.Rank)
		}
		return irkind.Array{Rank: x.Rank, Elt: funs[0]}, nil
	case Fold, Fold1, FoldSeg, Fold1Seg, Scanl, Scanl1, ScanlPrime, Scanr, Scanr1, ScanrPrime:
		return reductionType(op, accs, exps, funs)
	case Reshape:
		arr, err := arrayArg(op, 0, accs[0])
		if err != nil {
			return nil, err
		}
		sh, err := shapeArg(op, exps[0])
		if err != nil {
			return nil, err
		}
		return irkind.Array{Rank: sh.Rank, Elt: arr.Elt}, nil
	case Replicate, Slice:
		return sliceType(op, attr, accs, exps)
	case Permute:
		def, err := arrayArg(op, 0, accs[0])
		if err != nil {
			return nil, err
		}
		src, err := arrayArg(op, 1, accs[1])
		if err != nil {
			return nil, err
		}
		if err := sameElt(op, "source element", src.Elt, def.Elt); err != nil {
			return nil, err
		}
		if err := sameElt(op, "combination result", funs[0], def.Elt); err != nil {
			return nil, err
		}
		if err := sameElt(op, "permutation result", funs[1], irkind.Shape{Rank: def.Rank}); err != nil {
			return nil, err
		}
		return def, nil
	case Backpermute:
		arr, err := arrayArg(op, 0, accs[0])
		if err != nil {
			return nil, err
		}
		sh, err := shapeArg(op, exps[0])
		if err != nil {
			return nil, err
		}
		if err := sameElt(op, "permutation result", funs[0], irkind.Shape{Rank: arr.Rank}); err != nil {
			return nil, err
		}
		return irkind.Array{Rank: sh.Rank, Elt: arr.Elt}, nil
	case Stencil, Stencil2:
		x, err := arrayArg(op, 0, accs[0])
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(accs); i++ {
			y, err := arrayArg(op, i, accs[i])
			if err != nil {
				return nil, err
			}
			if y.Rank != x.Rank {
				return nil, errors.Errorf("%s: arrays have different ranks %d and %d", op, x.Rank, y.Rank)
			}
		}
		return irkind.Array{Rank: x.Rank, Elt: funs[0]}, nil
	case Atuple:
		return irkind.ArraysTuple{Elems: append([]irkind.Arrays{}, accs...)}, nil
	case Aprj:
		tpl, ok := accs[0].(irkind.ArraysTuple)
		if !ok {
			return nil, errors.Errorf("%s: %s is not a tuple of arrays", op, accs[0])
		}
		idx, ok := attr.(Index)
		if !ok || int(idx) < 0 || int(idx) >= len(tpl.Elems) {
			return nil, errors.Errorf("%s: index %v out of range for %s", op, attr, tpl)
		}
		return tpl.Elems[idx], nil
	case Acond:
		if err := sameElt(op, "predicate", exps[0], irkind.BoolType); err != nil {
			return nil, err
		}
		if !accs[0].Equal(accs[1]) {
			return nil, errors.Errorf("%s: branches have different types %s and %s", op, accs[0], accs[1])
		}
		return accs[0], nil
	case Pipe:
		if !afuns[0].Param.Equal(accs[0]) {
			return nil, errors.Errorf("%s: first stage expects %s but got %s", op, afuns[0].Param, accs[0])
		}
		if !afuns[1].Param.Equal(afuns[0].Result) {
			return nil, errors.Errorf("%s: second stage expects %s but first stage returns %s", op, afuns[1].Param, afuns[0].Result)
		}
		return afuns[1].Result, nil
	}
	return nil, errors.Errorf("cannot type array operator %s", op)
}

func reductionType(op AccOp, accs []irkind.Arrays, exps []irkind.Elt, funs []irkind.Elt) (irkind.Arrays, error) {
	arr, err := arrayArg(op, 0, accs[0])
	if err != nil {
		return nil, err
	}
	if err := checkRank(op, arr, 1); err != nil {
		return nil, err
	}
	if err := sameElt(op, "combination result", funs[0], arr.Elt); err != nil {
		return nil, err
	}
	if len(exps) > 0 {
		if err := sameElt(op, "initial value", exps[0], arr.Elt); err != nil {
			return nil, err
		}
	}
	if op == FoldSeg || op == Fold1Seg {
		segs, err := arrayArg(op, 1, accs[1])
		if err != nil {
			return nil, err
		}
		kind, ok := irkind.IsScalar(segs.Elt)
		if segs.Rank != 1 || !ok || !irkind.IsIntegerKind(kind) {
			return nil, errors.Errorf("%s: segment descriptor of type %s is not a vector of integers", op, segs)
		}
	}
	switch op {
	case Fold, Fold1:
		return irkind.Array{Rank: arr.Rank - 1, Elt: arr.Elt}, nil
	case ScanlPrime, ScanrPrime:
		return irkind.ArraysTuple{Elems: []irkind.Arrays{
			arr,
			irkind.Array{Rank: arr.Rank - 1, Elt: arr.Elt},
		}}, nil
	}
	return arr, nil
}

func sliceType(op AccOp, attr any, accs []irkind.Arrays, exps []irkind.Elt) (irkind.Arrays, error) {
	spec, ok := attr.(SliceSpec)
	if !ok {
		return nil, errors.Errorf("%s: missing slice specification", op)
	}
	arr, err := arrayArg(op, 0, accs[0])
	if err != nil {
		return nil, err
	}
	if err := sameElt(op, "slice index", exps[0], irkind.Shape{Rank: spec.Fixed()}); err != nil {
		return nil, err
	}
	if op == Replicate {
		if arr.Rank != spec.Kept() {
			return nil, errors.Errorf("%s: specification %s keeps %d axes but array has rank %d", op, spec, spec.Kept(), arr.Rank)
		}
		return irkind.Array{Rank: len(spec), Elt: arr.Elt}, nil
	}
	if arr.Rank != len(spec) {
		return nil, errors.Errorf("%s: specification %s has %d axes but array has rank %d", op, spec, len(spec), arr.Rank)
	}
	return irkind.Array{Rank: spec.Kept(), Elt: arr.Elt}, nil
}

// ExpType returns the type of a scalar node given the types of its children.
func ExpType(op ExpOp, attr any, exps []irkind.Elt, accs []irkind.Arrays) (irkind.Elt, error) {
	switch op {
	case Tag:
		info, ok := attr.(TagInfo)
		if !ok {
			return nil, errors.Errorf("%s: missing placeholder information", op)
		}
		return info.Type, nil
	case Const:
		c, ok := attr.(ConstValue)
		if !ok || c.Kind == irkind.Invalid {
			return nil, errors.Errorf("%s: invalid constant %v", op, attr)
		}
		return irkind.Scalar{Kind: c.Kind}, nil
	case Tuple:
		return irkind.Tuple{Elems: append([]irkind.Elt{}, exps...)}, nil
	case Prj:
		tpl, ok := exps[0].(irkind.Tuple)
		if !ok {
			return nil, errors.Errorf("%s: %s is not a tuple", op, exps[0])
		}
		idx, ok := attr.(Index)
		if !ok || int(idx) < 0 || int(idx) >= len(tpl.Elems) {
			return nil, errors.Errorf("%s: index %v out of range for %s", op, attr, tpl)
		}
		return tpl.Elems[idx], nil
	case IndexNil:
		return irkind.Shape{}, nil
	case IndexCons:
		sh, err := shapeArg(op, exps[0])
		if err != nil {
			return nil, err
		}
		if err := sameElt(op, "dimension", exps[1], irkind.Int); err != nil {
			return nil, err
		}
		return irkind.Shape{Rank: sh.Rank + 1}, nil
	case IndexHead, IndexTail:
		sh, err := shapeArg(op, exps[0])
		if err != nil {
			return nil, err
		}
		if sh.Rank == 0 {
			return nil, errors.Errorf("%s: empty shape", op)
		}
		if op == IndexHead {
			return irkind.Int, nil
		}
		return irkind.Shape{Rank: sh.Rank - 1}, nil
	case Cond:
		if err := sameElt(op, "predicate", exps[0], irkind.BoolType); err != nil {
			return nil, err
		}
		if err := sameElt(op, "else branch", exps[2], exps[1]); err != nil {
			return nil, err
		}
		return exps[1], nil
	case PrimApp:
		prim, ok := attr.(Prim)
		if !ok {
			return nil, errors.Errorf("%s: missing primitive", op)
		}
		return primType(prim, exps)
	case IndexScalar:
		arr, err := arrayArg(InvalidAcc, 0, accs[0])
		if err != nil {
			return nil, errors.Wrap(err, op.String())
		}
		if err := sameElt(op, "index", exps[0], irkind.Shape{Rank: arr.Rank}); err != nil {
			return nil, err
		}
		return arr.Elt, nil
	case Shape:
		arr, err := arrayArg(InvalidAcc, 0, accs[0])
		if err != nil {
			return nil, errors.Wrap(err, op.String())
		}
		return irkind.Shape{Rank: arr.Rank}, nil
	case Size:
		if _, err := arrayArg(InvalidAcc, 0, accs[0]); err != nil {
			return nil, errors.Wrap(err, op.String())
		}
		return irkind.Int, nil
	}
	return nil, errors.Errorf("cannot type scalar operator %s", op)
}

func primType(prim Prim, args []irkind.Elt) (irkind.Elt, error) {
	if len(args) != prim.NumArgs() {
		return nil, errors.Errorf("%s: got %d arguments but want %d", prim, len(args), prim.NumArgs())
	}
	kind, ok := irkind.IsScalar(args[0])
	if !ok {
		return nil, errors.Errorf("%s: argument of type %s is not a scalar", prim, args[0])
	}
	for _, arg := range args[1:] {
		if err := sameElt(prim, "argument", arg, args[0]); err != nil {
			return nil, err
		}
	}
	switch prim.Tok {
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
		return irkind.BoolType, nil
	case token.LAND, token.LOR, token.NOT:
		if kind != irkind.Bool {
			return nil, errors.Errorf("%s: operand of type %s is not a boolean", prim, kind)
		}
		return irkind.BoolType, nil
	case token.ADD, token.SUB, token.MUL, token.QUO:
		if !irkind.IsNumericKind(kind) {
			return nil, errors.Errorf("%s: operand of type %s is not a number", prim, kind)
		}
		return args[0], nil
	case token.REM, token.AND, token.OR, token.XOR, token.SHL, token.SHR:
		if !irkind.IsIntegerKind(kind) {
			return nil, errors.Errorf("%s: operand of type %s is not an integer", prim, kind)
		}
		return args[0], nil
	case token.ILLEGAL:
	default:
		return nil, errors.Errorf("unsupported operator %s", prim.Tok)
	}
	switch prim.Name {
	case PrimMax, PrimMin, PrimAbs, PrimNeg:
		if !irkind.IsNumericKind(kind) {
			return nil, errors.Errorf("%s: operand of type %s is not a number", prim, kind)
		}
		return args[0], nil
	case PrimSqrt:
		if !irkind.IsFloatKind(kind) {
			return nil, errors.Errorf("%s: operand of type %s is not a float", prim, kind)
		}
		return args[0], nil
	case PrimCast:
		if !irkind.IsNumericKind(kind) || !irkind.IsNumericKind(prim.To) {
			return nil, errors.Errorf("%s: cannot convert %s", prim, kind)
		}
		return irkind.Scalar{Kind: prim.To}, nil
	}
	return nil, errors.Errorf("unknown primitive %q", prim.Name)
}
