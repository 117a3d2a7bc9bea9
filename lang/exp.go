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
	"go/token"

	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/gx-org/arrlang/build/ir/irop"
	"github.com/gx-org/backend/dtype"
)

// GoDataType is the set of Go types that can be used as constants.
type GoDataType = dtype.GoDataType

func constValue[T GoDataType](v T) irop.ConstValue {
	return irop.ConstValue{Kind: irkind.KindGeneric[T](), Value: v}
}

// Placeholder returns a placeholder for the parameter of a scalar function.
func Placeholder(level int, typ irkind.Elt) *Exp {
	return newExp(irop.Tag, irop.TagInfo{Level: level, Type: typ})
}

// Const returns a scalar constant.
func Const[T GoDataType](v T) *Exp {
	return newExp(irop.Const, constValue(v))
}

// ConstOf returns a scalar constant of a given kind.
func ConstOf(kind irkind.Kind, v any) *Exp {
	return newExp(irop.Const, irop.ConstValue{Kind: kind, Value: v})
}

// Tuple groups several scalar expressions.
func Tuple(es ...*Exp) *Exp {
	return newExp(irop.Tuple, nil, es...)
}

// Prj returns the i-th component of a tuple.
func Prj(i int, e *Exp) *Exp {
	return newExp(irop.Prj, irop.Index(i), e)
}

// IndexNil returns the index of rank 0.
func IndexNil() *Exp {
	return newExp(irop.IndexNil, nil)
}

// IndexCons appends a dimension to an index.
func IndexCons(sh, i *Exp) *Exp {
	return newExp(irop.IndexCons, nil, sh, i)
}

// IndexHead returns the innermost dimension of an index.
func IndexHead(sh *Exp) *Exp {
	return newExp(irop.IndexHead, nil, sh)
}

// IndexTail removes the innermost dimension of an index.
func IndexTail(sh *Exp) *Exp {
	return newExp(irop.IndexTail, nil, sh)
}

// Index builds an index from its dimensions, outermost first.
func Index(dims ...*Exp) *Exp {
	ix := IndexNil()
	for _, dim := range dims {
		ix = IndexCons(ix, dim)
	}
	return ix
}

// Cond selects one of two expressions.
func Cond(p, t, e *Exp) *Exp {
	return newExp(irop.Cond, nil, p, t, e)
}

// PrimApp applies a primitive to some arguments.
func PrimApp(prim irop.Prim, args ...*Exp) *Exp {
	return newExp(irop.PrimApp, prim, args...)
}

func binary(tok token.Token, x, y *Exp) *Exp {
	return PrimApp(irop.Prim{Tok: tok}, x, y)
}

func named(name string, args ...*Exp) *Exp {
	return PrimApp(irop.Prim{Name: name}, args...)
}

// Add returns x + y.
func Add(x, y *Exp) *Exp { return binary(token.ADD, x, y) }

// Sub returns x - y.
func Sub(x, y *Exp) *Exp { return binary(token.SUB, x, y) }

// Mul returns x * y.
func Mul(x, y *Exp) *Exp { return binary(token.MUL, x, y) }

// Quo returns x / y.
func Quo(x, y *Exp) *Exp { return binary(token.QUO, x, y) }

// Rem returns x % y.
func Rem(x, y *Exp) *Exp { return binary(token.REM, x, y) }

// Eq returns x == y.
func Eq(x, y *Exp) *Exp { return binary(token.EQL, x, y) }

// Neq returns x != y.
func Neq(x, y *Exp) *Exp { return binary(token.NEQ, x, y) }

// Lt returns x < y.
func Lt(x, y *Exp) *Exp { return binary(token.LSS, x, y) }

// Le returns x <= y.
func Le(x, y *Exp) *Exp { return binary(token.LEQ, x, y) }

// Gt returns x > y.
func Gt(x, y *Exp) *Exp { return binary(token.GTR, x, y) }

// Ge returns x >= y.
func Ge(x, y *Exp) *Exp { return binary(token.GEQ, x, y) }

// And returns x && y.
func And(x, y *Exp) *Exp { return binary(token.LAND, x, y) }

// Or returns x || y.
func Or(x, y *Exp) *Exp { return binary(token.LOR, x, y) }

// Not returns !x.
func Not(x *Exp) *Exp { return PrimApp(irop.Prim{Tok: token.NOT}, x) }

// Max returns the maximum of x and y.
func Max(x, y *Exp) *Exp { return named(irop.PrimMax, x, y) }

// Min returns the minimum of x and y.
func Min(x, y *Exp) *Exp { return named(irop.PrimMin, x, y) }

// Abs returns the absolute value of x.
func Abs(x *Exp) *Exp { return named(irop.PrimAbs, x) }

// Neg returns -x.
func Neg(x *Exp) *Exp { return named(irop.PrimNeg, x) }

// Sqrt returns the square root of x.
func Sqrt(x *Exp) *Exp { return named(irop.PrimSqrt, x) }

// Cast converts x to another kind.
func Cast(to irkind.Kind, x *Exp) *Exp {
	return PrimApp(irop.Prim{Name: irop.PrimCast, To: to}, x)
}

func observe(op irop.ExpOp, a *Acc, exps ...*Exp) *Exp {
	e := newExp(op, nil, exps...)
	e.node.Accs = []*Acc{a}
	return e
}

// IndexScalar returns the element of an array at a given index.
func IndexScalar(a *Acc, ix *Exp) *Exp {
	return observe(irop.IndexScalar, a, ix)
}

// Shape returns the shape of an array.
func Shape(a *Acc) *Exp {
	return observe(irop.Shape, a)
}

// Size returns the number of elements of an array.
func Size(a *Acc) *Exp {
	return observe(irop.Size, a)
}
