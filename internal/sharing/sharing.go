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

// Package sharing is the tree in which the sharing of a program is made explicit.
//
// The occurrence counter builds it from a surface tree: every node carries
// the identity key of the surface node it comes from, and every occurrence of
// a node after the first is a reference. The scope resolver then rewrites it
// so that every shared node has a single definition bound by a Let.
package sharing

import (
	"fmt"
	"strings"

	"github.com/gx-org/arrlang/base/iter"
	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/gx-org/arrlang/build/ir/irop"
	"github.com/gx-org/arrlang/internal/stable"
)

type (
	// AccNode is the operator layout of an array node.
	AccNode = irop.PreAcc[*Acc, *Fun, *Fun, *AFun]

	// ExpNode is the operator layout of a scalar node.
	ExpNode = irop.PreExp[*Acc, *Exp]

	// Acc is an array-sort node.
	Acc struct {
		Form irop.Form
		// Key of the surface node. For a Let, key of the bound definition.
		Key  stable.Key
		Type irkind.Arrays

		// Node is set when Form is irop.Op.
		Node *AccNode

		// Bound and Body are set when Form is irop.Let.
		Bound, Body *Acc
	}

	// Exp is a scalar-sort node.
	Exp struct {
		Form irop.Form
		Key  stable.Key
		Type irkind.Elt

		Node *ExpNode

		Bound, Body *Exp
	}

	// Fun is the root of an embedded scalar expression.
	// Scalar arguments of array nodes are functions without parameters.
	Fun struct {
		// Params are the placeholders the function body has been built with.
		Params []*Exp
		Body   *Exp
		// Occ counts the occurrences of the scalar nodes of the body.
		Occ *stable.OccMap
	}

	// AFun is an array function.
	AFun struct {
		Param *Acc
		Body  *Acc
		// Occ counts the occurrences of the array nodes of the body.
		Occ *stable.OccMap
	}

	// Binding of an array definition at the top of a program.
	Binding struct {
		Key stable.Key
		Def *Acc
	}

	// Program is a closed scalar computation.
	Program struct {
		// Bindings floated out of the scalar function, outermost first.
		Bindings []Binding
		Fun      *Fun
	}
)

// Concrete returns the key of the operator a let-bound tree evaluates to.
func (a *Acc) Concrete() stable.Key {
	for a.Form == irop.Let {
		a = a.Body
	}
	return a.Key
}

// Concrete returns the key of the operator a let-bound tree evaluates to.
func (e *Exp) Concrete() stable.Key {
	for e.Form == irop.Let {
		e = e.Body
	}
	return e.Key
}

// NewAccRef returns a reference to an array definition.
func NewAccRef(key stable.Key, typ irkind.Arrays) *Acc {
	return &Acc{Form: irop.Ref, Key: key, Type: typ}
}

// NewAccLet binds a definition in the scope of a body.
func NewAccLet(key stable.Key, bound, body *Acc) *Acc {
	return &Acc{Form: irop.Let, Key: key, Type: body.Type, Bound: bound, Body: body}
}

// NewExpRef returns a reference to a scalar definition.
func NewExpRef(key stable.Key, typ irkind.Elt) *Exp {
	return &Exp{Form: irop.Ref, Key: key, Type: typ}
}

// NewExpLet binds a definition in the scope of a body.
func NewExpLet(key stable.Key, bound, body *Exp) *Exp {
	return &Exp{Form: irop.Let, Key: key, Type: body.Type, Bound: bound, Body: body}
}

// IsPlaceholder returns true if the node is the parameter of an array function.
func (a *Acc) IsPlaceholder() bool {
	return a.Form == irop.Op && a.Node.Op == irop.Atag
}

// IsPlaceholder returns true if the node is the parameter of a scalar function.
func (e *Exp) IsPlaceholder() bool {
	return e.Form == irop.Op && e.Node.Op == irop.Tag
}

// Result returns the type of the function body.
func (f *Fun) Result() irkind.Elt {
	return f.Body.Type
}

// Type returns the type of the array function.
func (f *AFun) Type() irop.AFunType {
	return irop.AFunType{Param: f.Param.Type, Result: f.Body.Type}
}

func (a *Acc) String() string {
	var b strings.Builder
	writeAcc(&b, a)
	return b.String()
}

func (e *Exp) String() string {
	var b strings.Builder
	writeExp(&b, e)
	return b.String()
}

func writeAcc(b *strings.Builder, a *Acc) {
	switch a.Form {
	case irop.Ref:
		fmt.Fprintf(b, "@%d", a.Key.ID)
	case irop.Let:
		fmt.Fprintf(b, "(let @%d = ", a.Key.ID)
		writeAcc(b, a.Bound)
		b.WriteString(" in ")
		writeAcc(b, a.Body)
		b.WriteString(")")
	default:
		writeNode(b, a.Node.Op, a.Key, a.Node.Attr)
		for _, child := range a.Node.Accs {
			b.WriteString(" ")
			writeAcc(b, child)
		}
		for fun := range iter.All(a.Node.Exps, a.Node.Funs) {
			b.WriteString(" {")
			for _, param := range fun.Params {
				fmt.Fprintf(b, "%%%d ", param.Key.ID)
			}
			writeExp(b, fun.Body)
			b.WriteString("}")
		}
		for _, fun := range a.Node.AFuns {
			fmt.Fprintf(b, " {%%%d ", fun.Param.Key.ID)
			writeAcc(b, fun.Body)
			b.WriteString("}")
		}
		b.WriteString(")")
	}
}

func writeExp(b *strings.Builder, e *Exp) {
	switch e.Form {
	case irop.Ref:
		fmt.Fprintf(b, "@%d", e.Key.ID)
	case irop.Let:
		fmt.Fprintf(b, "(let @%d = ", e.Key.ID)
		writeExp(b, e.Bound)
		b.WriteString(" in ")
		writeExp(b, e.Body)
		b.WriteString(")")
	default:
		if e.Node.Op == irop.Tag {
			fmt.Fprintf(b, "%%%d", e.Key.ID)
			return
		}
		writeNode(b, e.Node.Op, e.Key, e.Node.Attr)
		for _, child := range e.Node.Exps {
			b.WriteString(" ")
			writeExp(b, child)
		}
		for _, child := range e.Node.Accs {
			b.WriteString(" ")
			writeAcc(b, child)
		}
		b.WriteString(")")
	}
}

func writeNode(b *strings.Builder, op fmt.Stringer, key stable.Key, attr any) {
	fmt.Fprintf(b, "(%s#%d", op, key.ID)
	if attr != nil {
		fmt.Fprintf(b, "[%v]", attr)
	}
}
