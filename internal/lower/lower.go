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

// Package lower replaces the identity-based references of a
// let-normalised program by de Bruijn indices.
//
// The lowerer maintains one binder environment per sort. Each binder is
// identified by the key of the node it binds, so that a reference finds
// its binder by identity. Types are validated again on the way: a type
// mismatch is a bug in an earlier pass. All mismatches found in a tree
// are reported together.
package lower

import (
	"github.com/gx-org/arrlang/build/fmterr"
	"github.com/gx-org/arrlang/build/ir"
	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/gx-org/arrlang/build/ir/irop"
	"github.com/gx-org/arrlang/internal/base/scope"
	"github.com/gx-org/arrlang/internal/sharing"
	"github.com/gx-org/arrlang/internal/stable"
	"go.uber.org/multierr"
)

type (
	accEnv = *scope.Env[stable.ID, irkind.Arrays]
	expEnv = *scope.Env[stable.ID, irkind.Elt]

	lowerer struct {
		trail fmterr.Trail
		// mismatches accumulates the type errors.
		mismatches error
	}
)

func (l *lowerer) done() error {
	return l.mismatches
}

// Acc lowers a closed array computation.
func Acc(a *sharing.Acc) (*ir.Acc, error) {
	l := &lowerer{}
	out, err := l.acc(a, nil)
	if err != nil {
		return nil, err
	}
	if err := l.done(); err != nil {
		return nil, err
	}
	return out, nil
}

// AFun lowers a closed array function.
func AFun(f *sharing.AFun) (*ir.AFun, error) {
	l := &lowerer{}
	out, err := l.afun(f)
	if err != nil {
		return nil, err
	}
	if err := l.done(); err != nil {
		return nil, err
	}
	return out, nil
}

// Program lowers a closed scalar program.
func Program(p *sharing.Program) (*ir.Program, error) {
	l := &lowerer{}
	out := &ir.Program{Bindings: make([]*ir.Acc, len(p.Bindings))}
	var arrays accEnv
	for i, binding := range p.Bindings {
		def, err := l.acc(binding.Def, arrays)
		if err != nil {
			return nil, err
		}
		out.Bindings[i] = def
		arrays = arrays.Push(binding.Key.ID, binding.Def.Type)
	}
	fun, err := l.fun(p.Fun, arrays)
	if err != nil {
		return nil, err
	}
	out.Fun = fun
	if err := l.done(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *lowerer) mismatch(format string, a ...any) {
	l.mismatches = multierr.Append(l.mismatches, l.trail.Internalf(format, a...))
}

// unbound returns the error for a reference without a binder.
func (l *lowerer) unbound(key stable.Key, n int) error {
	if n == 0 && l.trail.Depth() == 0 {
		return l.trail.Userf(fmterr.ErrCyclicDefinition, "reference %s to its own definition", key)
	}
	return l.trail.Internalf("reference %s not bound in an environment of %d binders", key, n)
}

func (l *lowerer) escaping(key stable.Key) error {
	return l.trail.Userf(fmterr.ErrEscapingVariable, "parameter %s used outside of its function", key)
}

func (l *lowerer) accVar(key stable.Key, typ irkind.Arrays, arrays accEnv) (int, error) {
	index, bound, ok := arrays.Find(key.ID)
	if !ok {
		return -1, l.unbound(key, arrays.Len())
	}
	if !bound.Equal(typ) {
		l.mismatch("array %s of type %s bound with type %s", key, typ, bound)
	}
	return index, nil
}

func (l *lowerer) expVar(key stable.Key, typ irkind.Elt, scalars expEnv) (int, error) {
	index, bound, ok := scalars.Find(key.ID)
	if !ok {
		return -1, l.unbound(key, scalars.Len())
	}
	if !bound.Equal(typ) {
		l.mismatch("scalar %s of type %s bound with type %s", key, typ, bound)
	}
	return index, nil
}

func (l *lowerer) acc(a *sharing.Acc, arrays accEnv) (*ir.Acc, error) {
	switch a.Form {
	case irop.Ref:
		index, err := l.accVar(a.Key, a.Type, arrays)
		if err != nil {
			return nil, err
		}
		return ir.NewAccVar(index, a.Type), nil
	case irop.Let:
		bound, err := l.acc(a.Bound, arrays)
		if err != nil {
			return nil, err
		}
		body, err := l.acc(a.Body, arrays.Push(a.Key.ID, a.Bound.Type))
		if err != nil {
			return nil, err
		}
		if !body.Type.Equal(a.Type) {
			l.mismatch("let of type %s with a body of type %s", a.Type, body.Type)
		}
		return ir.NewAccLet(bound, body), nil
	}
	if a.IsPlaceholder() {
		if _, _, ok := arrays.Find(a.Key.ID); !ok {
			return nil, l.escaping(a.Key)
		}
		index, err := l.accVar(a.Key, a.Type, arrays)
		if err != nil {
			return nil, err
		}
		return ir.NewAccVar(index, a.Type), nil
	}
	l.trail.Push("%s%s", a.Node.Op, a.Key)
	defer l.trail.Pop()
	if err := a.Node.CheckArity(); err != nil {
		return nil, fmterr.Internal(l.trail.Wrap(err))
	}
	node := &ir.AccNode{
		Op:    a.Node.Op,
		Attr:  a.Node.Attr,
		Accs:  make([]*ir.Acc, len(a.Node.Accs)),
		Exps:  make([]*ir.Fun, len(a.Node.Exps)),
		Funs:  make([]*ir.Fun, len(a.Node.Funs)),
		AFuns: make([]*ir.AFun, len(a.Node.AFuns)),
	}
	accTypes := make([]irkind.Arrays, len(node.Accs))
	for i, child := range a.Node.Accs {
		sub, err := l.acc(child, arrays)
		if err != nil {
			return nil, err
		}
		node.Accs[i] = sub
		accTypes[i] = sub.Type
	}
	expTypes := make([]irkind.Elt, len(node.Exps))
	for i, f := range a.Node.Exps {
		sub, err := l.fun(f, arrays)
		if err != nil {
			return nil, err
		}
		node.Exps[i] = sub
		expTypes[i] = sub.Result()
	}
	funTypes := make([]irkind.Elt, len(node.Funs))
	for i, f := range a.Node.Funs {
		sub, err := l.fun(f, arrays)
		if err != nil {
			return nil, err
		}
		node.Funs[i] = sub
		funTypes[i] = sub.Result()
	}
	afunTypes := make([]irop.AFunType, len(node.AFuns))
	for i, f := range a.Node.AFuns {
		sub, err := l.afun(f)
		if err != nil {
			return nil, err
		}
		node.AFuns[i] = sub
		afunTypes[i] = sub.Type()
	}
	l.checkParams(node, accTypes, expTypes)
	typ, err := irop.AccType(node.Op, node.Attr, accTypes, expTypes, funTypes, afunTypes)
	switch {
	case err != nil:
		l.mismatch("%v", err)
	case !typ.Equal(a.Type):
		l.mismatch("%s computes %s but was typed %s", node.Op, typ, a.Type)
	}
	return ir.NewAccOp(node, a.Type), nil
}

func (l *lowerer) checkParams(node *ir.AccNode, accTypes []irkind.Arrays, expTypes []irkind.Elt) {
	params, err := irop.FunParams(node.Op, node.Attr, accTypes, expTypes)
	if err != nil {
		l.mismatch("%v", err)
		return
	}
	if len(params) != len(node.Funs) {
		l.mismatch("%d parameter lists for %d functions", len(params), len(node.Funs))
		return
	}
	for i, f := range node.Funs {
		if len(f.Params) != len(params[i]) {
			l.mismatch("function %d has %d parameters but want %d", i, len(f.Params), len(params[i]))
			continue
		}
		for j, param := range f.Params {
			if !param.Equal(params[i][j]) {
				l.mismatch("parameter %d of function %d has type %s but want %s", j, i, param, params[i][j])
			}
		}
	}
}

func (l *lowerer) fun(f *sharing.Fun, arrays accEnv) (*ir.Fun, error) {
	var scalars expEnv
	out := &ir.Fun{Params: make([]irkind.Elt, len(f.Params))}
	for i, param := range f.Params {
		scalars = scalars.Push(param.Key.ID, param.Type)
		out.Params[i] = param.Type
	}
	body, err := l.exp(f.Body, arrays, scalars)
	if err != nil {
		return nil, err
	}
	out.Body = body
	return out, nil
}

func (l *lowerer) afun(f *sharing.AFun) (*ir.AFun, error) {
	var arrays accEnv
	arrays = arrays.Push(f.Param.Key.ID, f.Param.Type)
	body, err := l.acc(f.Body, arrays)
	if err != nil {
		return nil, err
	}
	return &ir.AFun{Param: f.Param.Type, Body: body}, nil
}

func (l *lowerer) exp(e *sharing.Exp, arrays accEnv, scalars expEnv) (*ir.Exp, error) {
	switch e.Form {
	case irop.Ref:
		index, err := l.expVar(e.Key, e.Type, scalars)
		if err != nil {
			return nil, err
		}
		return ir.NewExpVar(index, e.Type), nil
	case irop.Let:
		bound, err := l.exp(e.Bound, arrays, scalars)
		if err != nil {
			return nil, err
		}
		body, err := l.exp(e.Body, arrays, scalars.Push(e.Key.ID, e.Bound.Type))
		if err != nil {
			return nil, err
		}
		if !body.Type.Equal(e.Type) {
			l.mismatch("let of type %s with a body of type %s", e.Type, body.Type)
		}
		return ir.NewExpLet(bound, body), nil
	}
	if e.IsPlaceholder() {
		if _, _, ok := scalars.Find(e.Key.ID); !ok {
			return nil, l.escaping(e.Key)
		}
		index, err := l.expVar(e.Key, e.Type, scalars)
		if err != nil {
			return nil, err
		}
		return ir.NewExpVar(index, e.Type), nil
	}
	l.trail.Push("%s%s", e.Node.Op, e.Key)
	defer l.trail.Pop()
	if err := e.Node.CheckArity(); err != nil {
		return nil, fmterr.Internal(l.trail.Wrap(err))
	}
	node := &ir.ExpNode{
		Op:   e.Node.Op,
		Attr: e.Node.Attr,
		Exps: make([]*ir.Exp, len(e.Node.Exps)),
		Accs: make([]*ir.Acc, len(e.Node.Accs)),
	}
	expTypes := make([]irkind.Elt, len(node.Exps))
	for i, child := range e.Node.Exps {
		sub, err := l.exp(child, arrays, scalars)
		if err != nil {
			return nil, err
		}
		node.Exps[i] = sub
		expTypes[i] = sub.Type
	}
	accTypes := make([]irkind.Arrays, len(node.Accs))
	for i, child := range e.Node.Accs {
		sub, err := l.acc(child, arrays)
		if err != nil {
			return nil, err
		}
		node.Accs[i] = sub
		accTypes[i] = sub.Type
	}
	typ, err := irop.ExpType(node.Op, node.Attr, expTypes, accTypes)
	switch {
	case err != nil:
		l.mismatch("%v", err)
	case !typ.Equal(e.Type):
		l.mismatch("%s computes %s but was typed %s", node.Op, typ, e.Type)
	}
	return ir.NewExpOp(node, e.Type), nil
}
