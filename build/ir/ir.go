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

// Package ir is the intermediate representation produced by a conversion.
//
// The tree is closed and contains no sharing: every computation used more
// than once is bound once by a let and referred to by variables.
// Variables are de Bruijn indices: the index of a variable is the number of
// binders between the variable and its own binder. Array and scalar binders
// live in separate environments:
//   - an array node evaluates its scalar arguments and functions in an
//     empty scalar environment, extended by the parameters of the functions;
//   - a scalar node evaluates its array arguments in the array environment
//     of its enclosing computation;
//   - an array function evaluates its body in an array environment
//     containing only its parameter.
package ir

import (
	"github.com/gx-org/arrlang/base/iter"
	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/gx-org/arrlang/build/ir/irop"
)

type (
	// AccNode is the operator layout of an array computation.
	AccNode = irop.PreAcc[*Acc, *Fun, *Fun, *AFun]

	// ExpNode is the operator layout of a scalar expression.
	ExpNode = irop.PreExp[*Acc, *Exp]

	// Acc is an array computation.
	Acc struct {
		Form irop.Form
		Type irkind.Arrays

		// Node is the operator applied when Form is irop.Op.
		// Scalar arguments are functions without parameters.
		Node *AccNode

		// Index of the variable when Form is irop.Ref.
		Index int

		// Bound is evaluated and bound in Body when Form is irop.Let.
		Bound, Body *Acc
	}

	// Exp is a scalar expression.
	Exp struct {
		Form irop.Form
		Type irkind.Elt

		Node *ExpNode

		Index int

		Bound, Body *Exp
	}

	// Fun is a scalar function.
	// Parameters are bound in order: the last parameter has the index 0 in the body.
	Fun struct {
		Params []irkind.Elt
		Body   *Exp
	}

	// AFun is an array function.
	AFun struct {
		Param irkind.Arrays
		Body  *Acc
	}

	// Program is a closed scalar computation.
	// Bindings are array computations evaluated before the function,
	// outermost first: the last binding has the index 0 in the function.
	Program struct {
		Bindings []*Acc
		Fun      *Fun
	}
)

// NewAccOp returns an array computation applying an operator.
func NewAccOp(node *AccNode, typ irkind.Arrays) *Acc {
	return &Acc{Form: irop.Op, Type: typ, Node: node}
}

// NewAccVar returns a reference to an array binder.
func NewAccVar(index int, typ irkind.Arrays) *Acc {
	return &Acc{Form: irop.Ref, Type: typ, Index: index}
}

// NewAccLet binds an array computation in the scope of a body.
func NewAccLet(bound, body *Acc) *Acc {
	return &Acc{Form: irop.Let, Type: body.Type, Bound: bound, Body: body}
}

// NewExpOp returns a scalar expression applying an operator.
func NewExpOp(node *ExpNode, typ irkind.Elt) *Exp {
	return &Exp{Form: irop.Op, Type: typ, Node: node}
}

// NewExpVar returns a reference to a scalar binder.
func NewExpVar(index int, typ irkind.Elt) *Exp {
	return &Exp{Form: irop.Ref, Type: typ, Index: index}
}

// NewExpLet binds a scalar expression in the scope of a body.
func NewExpLet(bound, body *Exp) *Exp {
	return &Exp{Form: irop.Let, Type: body.Type, Bound: bound, Body: body}
}

// Result returns the type of the function result.
func (f *Fun) Result() irkind.Elt {
	return f.Body.Type
}

// Type returns the type of the array function.
func (f *AFun) Type() irop.AFunType {
	return irop.AFunType{Param: f.Param, Result: f.Body.Type}
}

// Lets returns the number of let bindings in the tree.
func (a *Acc) Lets() int {
	n := 0
	a.Walk(func(a *Acc) { n += isLet(a.Form) }, func(e *Exp) { n += isLet(e.Form) })
	return n
}

// Lets returns the number of let bindings in the tree.
func (e *Exp) Lets() int {
	n := 0
	e.Walk(func(a *Acc) { n += isLet(a.Form) }, func(e *Exp) { n += isLet(e.Form) })
	return n
}

// Lets returns the number of let bindings in the program,
// including the bindings of the program itself.
func (p *Program) Lets() int {
	n := len(p.Bindings) + p.Fun.Body.Lets()
	for _, b := range p.Bindings {
		n += b.Lets()
	}
	return n
}

func isLet(f irop.Form) int {
	if f == irop.Let {
		return 1
	}
	return 0
}

// Walk calls accf and expf on every node of the tree, parents first.
func (a *Acc) Walk(accf func(*Acc), expf func(*Exp)) {
	accf(a)
	switch a.Form {
	case irop.Let:
		a.Bound.Walk(accf, expf)
		a.Body.Walk(accf, expf)
	case irop.Op:
		for _, child := range a.Node.Accs {
			child.Walk(accf, expf)
		}
		for f := range iter.All(a.Node.Exps, a.Node.Funs) {
			f.Body.Walk(accf, expf)
		}
		for _, f := range a.Node.AFuns {
			f.Body.Walk(accf, expf)
		}
	}
}

// Walk calls accf and expf on every node of the tree, parents first.
func (e *Exp) Walk(accf func(*Acc), expf func(*Exp)) {
	expf(e)
	switch e.Form {
	case irop.Let:
		e.Bound.Walk(accf, expf)
		e.Body.Walk(accf, expf)
	case irop.Op:
		for _, child := range e.Node.Exps {
			child.Walk(accf, expf)
		}
		for _, child := range e.Node.Accs {
			child.Walk(accf, expf)
		}
	}
}
