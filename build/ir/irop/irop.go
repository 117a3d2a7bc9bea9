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

// Package irop defines the variant set shared by every representation
// of the array language: the surface tree, the annotated tree used while
// recovering sharing, and the final indexed IR.
//
// A node is a tagged variant: an operator, an optional static attribute,
// and ordered slots for array-sort children, embedded scalar-sort
// expressions, scalar functions and array functions. The slot types are
// type parameters so that each representation chooses its own children.
package irop

import (
	"fmt"

	"github.com/pkg/errors"
)

// Form of a node in a representation supporting explicit sharing.
type Form int

const (
	// Op is a concrete operator node.
	Op Form = iota
	// Ref refers to a definition bound by an enclosing Let.
	Ref
	// Let binds a definition in the scope of a body.
	Let
)

func (f Form) String() string {
	switch f {
	case Op:
		return "op"
	case Ref:
		return "ref"
	case Let:
		return "let"
	}
	return fmt.Sprintf("Form(%d)", int(f))
}

type (
	// PreAcc is the layout of an array-sort node.
	PreAcc[A, E, F, AF any] struct {
		Op    AccOp
		Attr  any
		Accs  []A
		Exps  []E
		Funs  []F
		AFuns []AF
	}

	// PreExp is the layout of a scalar-sort node.
	PreExp[A, E any] struct {
		Op   ExpOp
		Attr any
		Exps []E
		Accs []A
	}
)

// AccOp is an array-sort operator.
type AccOp int

// Array-sort operators.
const (
	InvalidAcc AccOp = iota
	// Atag is a placeholder for the parameter of an array function.
	Atag
	Use
	Unit
	Generate
	Map
	ZipWith
	Fold
	Fold1
	FoldSeg
	Fold1Seg
	Scanl
	Scanl1
	ScanlPrime
	Scanr
	Scanr1
	ScanrPrime
	Reshape
	Replicate
	Slice
	Permute
	Backpermute
	Stencil
	Stencil2
	Atuple
	Aprj
	Acond
	Pipe
	maxAccOp
)

// ExpOp is a scalar-sort operator.
type ExpOp int

// Scalar-sort operators.
const (
	InvalidExp ExpOp = iota
	// Tag is a placeholder for the parameter of a scalar function.
	Tag
	Const
	Tuple
	Prj
	IndexNil
	IndexCons
	IndexHead
	IndexTail
	Cond
	PrimApp
	IndexScalar
	Shape
	Size
	maxExpOp
)

// Arity gives the number of children in each slot of an operator.
// A negative value means any number of children.
type Arity struct {
	Accs, Exps, Funs, AFuns int
}

type accInfo struct {
	name  string
	arity Arity
}

var accInfos = [maxAccOp]accInfo{
	InvalidAcc:  {"invalid", Arity{}},
	Atag:        {"atag", Arity{}},
	Use:         {"use", Arity{}},
	Unit:        {"unit", Arity{Exps: 1}},
	Generate:    {"generate", Arity{Exps: 1, Funs: 1}},
	Map:         {"map", Arity{Accs: 1, Funs: 1}},
	ZipWith:     {"zipWith", Arity{Accs: 2, Funs: 1}},
	Fold:        {"fold", Arity{Accs: 1, Exps: 1, Funs: 1}},
	Fold1:       {"fold1", Arity{Accs: 1, Funs: 1}},
	FoldSeg:     {"foldSeg", Arity{Accs: 2, Exps: 1, Funs: 1}},
	Fold1Seg:    {"fold1Seg", Arity{Accs: 2, Funs: 1}},
	Scanl:       {"scanl", Arity{Accs: 1, Exps: 1, Funs: 1}},
	Scanl1:      {"scanl1", Arity{Accs: 1, Funs: 1}},
	ScanlPrime:  {"scanl'", Arity{Accs: 1, Exps: 1, Funs: 1}},
	Scanr:       {"scanr", Arity{Accs: 1, Exps: 1, Funs: 1}},
	Scanr1:      {"scanr1", Arity{Accs: 1, Funs: 1}},
	ScanrPrime:  {"scanr'", Arity{Accs: 1, Exps: 1, Funs: 1}},
	Reshape:     {"reshape", Arity{Accs: 1, Exps: 1}},
	Replicate:   {"replicate", Arity{Accs: 1, Exps: 1}},
	Slice:       {"slice", Arity{Accs: 1, Exps: 1}},
	Permute:     {"permute", Arity{Accs: 2, Funs: 2}},
	Backpermute: {"backpermute", Arity{Accs: 1, Exps: 1, Funs: 1}},
	Stencil:     {"stencil", Arity{Accs: 1, Funs: 1}},
	Stencil2:    {"stencil2", Arity{Accs: 2, Funs: 1}},
	Atuple:      {"atuple", Arity{Accs: -1}},
	Aprj:        {"aprj", Arity{Accs: 1}},
	Acond:       {"acond", Arity{Accs: 2, Exps: 1}},
	Pipe:        {"pipe", Arity{Accs: 1, AFuns: 2}},
}

type expInfo struct {
	name  string
	arity Arity
}

var expInfos = [maxExpOp]expInfo{
	InvalidExp:  {"invalid", Arity{}},
	Tag:         {"tag", Arity{}},
	Const:       {"const", Arity{}},
	Tuple:       {"tuple", Arity{Exps: -1}},
	Prj:         {"prj", Arity{Exps: 1}},
	IndexNil:    {"Z", Arity{}},
	IndexCons:   {":.", Arity{Exps: 2}},
	IndexHead:   {"indexHead", Arity{Exps: 1}},
	IndexTail:   {"indexTail", Arity{Exps: 1}},
	Cond:        {"cond", Arity{Exps: 3}},
	PrimApp:     {"prim", Arity{Exps: -1}},
	IndexScalar: {"!", Arity{Exps: 1, Accs: 1}},
	Shape:       {"shape", Arity{Accs: 1}},
	Size:        {"size", Arity{Accs: 1}},
}

func (op AccOp) String() string {
	if op < 0 || op >= maxAccOp {
		return fmt.Sprintf("AccOp(%d)", int(op))
	}
	return accInfos[op].name
}

// Arity returns the number of children expected in each slot.
func (op AccOp) Arity() Arity {
	if op < 0 || op >= maxAccOp {
		return Arity{}
	}
	return accInfos[op].arity
}

// IsLeaf returns true if the operator has no children at all.
func (op AccOp) IsLeaf() bool {
	return op == Atag || op == Use
}

func (op ExpOp) String() string {
	if op < 0 || op >= maxExpOp {
		return fmt.Sprintf("ExpOp(%d)", int(op))
	}
	return expInfos[op].name
}

// Arity returns the number of children expected in each slot.
func (op ExpOp) Arity() Arity {
	if op < 0 || op >= maxExpOp {
		return Arity{}
	}
	return expInfos[op].arity
}

// IsLeaf returns true if the operator has no children at all.
func (op ExpOp) IsLeaf() bool {
	return op == Tag || op == Const || op == IndexNil
}

func checkSlot(op fmt.Stringer, slot string, want, got int) error {
	if want < 0 || want == got {
		return nil
	}
	return errors.Errorf("%s: %s slot has %d children but want %d", op, slot, got, want)
}

// CheckArity checks that the number of children of a node matches its operator.
func (n *PreAcc[A, E, F, AF]) CheckArity() error {
	if n.Op <= InvalidAcc || n.Op >= maxAccOp {
		return errors.Errorf("invalid array operator %d", int(n.Op))
	}
	ar := n.Op.Arity()
	for _, err := range []error{
		checkSlot(n.Op, "array", ar.Accs, len(n.Accs)),
		checkSlot(n.Op, "expression", ar.Exps, len(n.Exps)),
		checkSlot(n.Op, "function", ar.Funs, len(n.Funs)),
		checkSlot(n.Op, "array function", ar.AFuns, len(n.AFuns)),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// CheckArity checks that the number of children of a node matches its operator.
func (n *PreExp[A, E]) CheckArity() error {
	if n.Op <= InvalidExp || n.Op >= maxExpOp {
		return errors.Errorf("invalid scalar operator %d", int(n.Op))
	}
	ar := n.Op.Arity()
	if err := checkSlot(n.Op, "expression", ar.Exps, len(n.Exps)); err != nil {
		return err
	}
	return checkSlot(n.Op, "array", ar.Accs, len(n.Accs))
}
