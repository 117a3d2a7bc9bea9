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

// Package lang is the surface representation of the array language.
//
// Programs are built by composing Go values: every constructor returns a new
// node stamped with a unique identity. Reusing a node (assigning it to a Go
// variable and passing it to several constructors) is how a program expresses
// sharing. Functions passed to constructors are plain Go functions from
// placeholder expressions to expressions; they are only called when the
// program is converted.
//
// The package does not check types: ill-typed programs are reported
// when they are converted.
package lang

import (
	"fmt"

	"github.com/gx-org/arrlang/build/ir/irop"
	"github.com/gx-org/arrlang/internal/stable"
)

type (
	// Acc is an array-sort expression.
	Acc struct {
		id   stable.ID
		node irop.PreAcc[*Acc, *Exp, Fun, AFun]
	}

	// Exp is a scalar-sort expression.
	Exp struct {
		id   stable.ID
		node irop.PreExp[*Acc, *Exp]
	}

	// Fun is a scalar function.
	// It is called with one placeholder expression per parameter.
	Fun func(args ...*Exp) *Exp

	// AFun is an array function.
	AFun func(*Acc) *Acc
)

func newAcc(op irop.AccOp, attr any) *Acc {
	return &Acc{
		id:   stable.NewID(),
		node: irop.PreAcc[*Acc, *Exp, Fun, AFun]{Op: op, Attr: attr},
	}
}

func (a *Acc) withAccs(accs ...*Acc) *Acc {
	a.node.Accs = accs
	return a
}

func (a *Acc) withExps(exps ...*Exp) *Acc {
	a.node.Exps = exps
	return a
}

func (a *Acc) withFuns(funs ...Fun) *Acc {
	a.node.Funs = funs
	return a
}

// ID returns the identity of the node.
func (a *Acc) ID() stable.ID {
	return a.id
}

// Node returns the operator and the children of the node.
// The returned structure must not be modified.
func (a *Acc) Node() *irop.PreAcc[*Acc, *Exp, Fun, AFun] {
	return &a.node
}

func (a *Acc) String() string {
	return fmt.Sprintf("%s#%d", a.node.Op, a.id)
}

func newExp(op irop.ExpOp, attr any, exps ...*Exp) *Exp {
	return &Exp{
		id:   stable.NewID(),
		node: irop.PreExp[*Acc, *Exp]{Op: op, Attr: attr, Exps: exps},
	}
}

// ID returns the identity of the node.
func (e *Exp) ID() stable.ID {
	return e.id
}

// Node returns the operator and the children of the node.
// The returned structure must not be modified.
func (e *Exp) Node() *irop.PreExp[*Acc, *Exp] {
	return &e.node
}

func (e *Exp) String() string {
	return fmt.Sprintf("%s#%d", e.node.Op, e.id)
}

// Fun1 returns a function with a single parameter.
func Fun1(f func(x *Exp) *Exp) Fun {
	return func(args ...*Exp) *Exp {
		if len(args) != 1 {
			return nil
		}
		return f(args[0])
	}
}

// Fun2 returns a function with two parameters.
func Fun2(f func(x, y *Exp) *Exp) Fun {
	return func(args ...*Exp) *Exp {
		if len(args) != 2 {
			return nil
		}
		return f(args[0], args[1])
	}
}
