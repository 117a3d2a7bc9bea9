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

package ir

import (
	"fmt"
	"go/token"
	"strings"

	irfmt "github.com/gx-org/arrlang/base/fmt"
	"github.com/gx-org/arrlang/base/iter"
	"github.com/gx-org/arrlang/base/uname"
	"github.com/gx-org/arrlang/build/ir/irop"
)

// Root names of the binders.
const (
	arrayName  = "a"
	scalarName = "x"
)

type printer struct {
	names *uname.Unique
	b     strings.Builder
}

func newPrinter() *printer {
	return &printer{names: uname.New()}
}

func (p *printer) empty() *uname.Binders {
	return p.names.Binders()
}

func (p *printer) variable(env *uname.Binders, index int) {
	name, ok := env.At(index)
	if !ok {
		fmt.Fprintf(&p.b, "?%d", index)
		return
	}
	p.b.WriteString(name)
}

func (p *printer) acc(a *Acc, arrays, scalars *uname.Binders) {
	switch a.Form {
	case irop.Ref:
		p.variable(arrays, a.Index)
	case irop.Let:
		name, inner := arrays.Push(arrayName)
		fmt.Fprintf(&p.b, "let %s = ", name)
		p.acc(a.Bound, arrays, scalars)
		p.b.WriteString(" in ")
		p.acc(a.Body, inner, scalars)
	default:
		p.op(a.Node.Op, a.Node.Attr)
		p.b.WriteString("(")
		sep := ""
		next := func() {
			p.b.WriteString(sep)
			sep = ", "
		}
		for _, child := range a.Node.Accs {
			next()
			p.acc(child, arrays, scalars)
		}
		for f := range iter.All(a.Node.Exps, a.Node.Funs) {
			next()
			p.fun(f, arrays)
		}
		for _, f := range a.Node.AFuns {
			next()
			p.afun(f)
		}
		p.b.WriteString(")")
	}
}

func (p *printer) op(op fmt.Stringer, attr any) {
	p.b.WriteString(op.String())
	if attr != nil {
		fmt.Fprintf(&p.b, "[%v]", attr)
	}
}

func (p *printer) fun(f *Fun, arrays *uname.Binders) {
	scalars := p.empty()
	if len(f.Params) > 0 {
		p.b.WriteString(`\`)
		for i := range f.Params {
			var name string
			name, scalars = scalars.Push(scalarName)
			if i > 0 {
				p.b.WriteString(" ")
			}
			p.b.WriteString(name)
		}
		p.b.WriteString(" -> ")
	}
	p.exp(f.Body, arrays, scalars)
}

func (p *printer) afun(f *AFun) {
	name, arrays := p.empty().Push(arrayName)
	fmt.Fprintf(&p.b, `\%s -> `, name)
	p.acc(f.Body, arrays, p.empty())
}

func (p *printer) exps(exps []*Exp, sep string, arrays, scalars *uname.Binders) {
	for i, e := range exps {
		if i > 0 {
			p.b.WriteString(sep)
		}
		p.exp(e, arrays, scalars)
	}
}

func (p *printer) exp(e *Exp, arrays, scalars *uname.Binders) {
	switch e.Form {
	case irop.Ref:
		p.variable(scalars, e.Index)
		return
	case irop.Let:
		name, inner := scalars.Push(scalarName)
		fmt.Fprintf(&p.b, "let %s = ", name)
		p.exp(e.Bound, arrays, scalars)
		p.b.WriteString(" in ")
		p.exp(e.Body, arrays, inner)
		return
	}
	node := e.Node
	switch node.Op {
	case irop.Const:
		if c, ok := node.Attr.(irop.ConstValue); ok {
			fmt.Fprintf(&p.b, "%v", c.Value)
			return
		}
	case irop.PrimApp:
		prim, ok := node.Attr.(irop.Prim)
		if !ok || prim.Tok == token.ILLEGAL {
			break
		}
		if len(node.Exps) == 1 {
			p.b.WriteString(prim.String())
			p.exp(node.Exps[0], arrays, scalars)
			return
		}
		p.b.WriteString("(")
		p.exps(node.Exps, " "+prim.String()+" ", arrays, scalars)
		p.b.WriteString(")")
		return
	}
	attr := node.Attr
	if node.Op == irop.PrimApp {
		attr = nil
		p.b.WriteString(fmt.Sprint(node.Attr))
	} else {
		p.op(node.Op, attr)
	}
	p.b.WriteString("(")
	p.exps(node.Exps, ", ", arrays, scalars)
	for i, child := range node.Accs {
		if i > 0 || len(node.Exps) > 0 {
			p.b.WriteString(", ")
		}
		p.acc(child, arrays, scalars)
	}
	p.b.WriteString(")")
}

// String representation of the computation.
// Binders are given unique names.
func (a *Acc) String() string {
	p := newPrinter()
	p.acc(a, p.empty(), p.empty())
	return p.b.String()
}

// String representation of the expression.
func (e *Exp) String() string {
	p := newPrinter()
	p.exp(e, p.empty(), p.empty())
	return p.b.String()
}

// String representation of the function.
func (f *Fun) String() string {
	p := newPrinter()
	p.fun(f, p.empty())
	return p.b.String()
}

// String representation of the array function.
func (f *AFun) String() string {
	p := newPrinter()
	p.afun(f)
	return p.b.String()
}

// String representation of the program.
// Each binding of the program is written on its own line.
func (prog *Program) String() string {
	p := newPrinter()
	arrays := p.empty()
	for _, binding := range prog.Bindings {
		name, next := arrays.Push(arrayName)
		fmt.Fprintf(&p.b, "let %s = ", name)
		p.acc(binding, arrays, p.empty())
		p.b.WriteString(" in\n")
		arrays = next
	}
	if len(prog.Bindings) == 0 {
		p.fun(prog.Fun, arrays)
		return p.b.String()
	}
	bindings := p.b.String()
	p.b.Reset()
	p.fun(prog.Fun, arrays)
	return bindings + irfmt.Indent(p.b.String())
}
