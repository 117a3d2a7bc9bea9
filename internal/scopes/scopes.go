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

// Package scopes binds every shared node of an annotated program
// at the lowest node dominating all its occurrences.
//
// The resolution is a single bottom-up pass. Each node returns the list
// of the shared nodes found in its subtree that still need to be bound.
// A node found more than once is replaced by a reference and its definition
// is carried by the list until an ancestor has seen all its occurrences.
// Array and scalar nodes are bound in separate lists: array definitions
// are only bound by array nodes, scalar definitions only by scalar nodes
// of the same scalar root.
package scopes

import (
	"github.com/gx-org/arrlang/api/options"
	"github.com/gx-org/arrlang/build/fmterr"
	"github.com/gx-org/arrlang/build/ir/irop"
	"github.com/gx-org/arrlang/internal/sharing"
	"github.com/gx-org/arrlang/internal/stable"
)

type (
	accCandidates = candidates[*sharing.Acc]
	expCandidates = candidates[*sharing.Exp]

	resolver struct {
		opts  *options.Options
		trail fmterr.Trail
	}
)

// Acc resolves the scopes of a closed array computation.
func Acc(opts *options.Options, a *sharing.Acc, occ *stable.OccMap) (*sharing.Acc, error) {
	r := &resolver{opts: opts}
	root, cands, err := r.acc(occ, a)
	if err != nil {
		return nil, err
	}
	if len(cands) > 0 {
		return nil, fmterr.Internalf("array nodes %s not bound at the root", cands)
	}
	return root, nil
}

// AFun resolves the scopes of a closed array function.
func AFun(opts *options.Options, f *sharing.AFun) (*sharing.AFun, error) {
	r := &resolver{opts: opts}
	return r.afun(f)
}

// Fun resolves the scopes of a closed scalar function.
// Array computations used by the function are bound by the returned program.
func Fun(opts *options.Options, f *sharing.Fun, occ *stable.OccMap) (*sharing.Program, error) {
	r := &resolver{opts: opts}
	fun, accs, err := r.root(occ, f)
	if err != nil {
		return nil, err
	}
	run, rest, err := accs.extract(occ)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmterr.Internalf("array nodes %s not bound at the root", rest)
	}
	prog := &sharing.Program{
		Bindings: make([]sharing.Binding, len(run)),
		Fun:      fun,
	}
	for i, c := range run {
		prog.Bindings[len(run)-1-i] = sharing.Binding{Key: c.key, Def: c.def}
	}
	return prog, nil
}

func (r *resolver) afun(f *sharing.AFun) (*sharing.AFun, error) {
	body, cands, err := r.acc(f.Occ, f.Body)
	if err != nil {
		return nil, err
	}
	if len(cands) > 0 {
		return nil, r.trail.Internalf("array nodes %s not bound in array function", cands)
	}
	return &sharing.AFun{Param: f.Param, Body: body, Occ: f.Occ}, nil
}

func (r *resolver) acc(occ *stable.OccMap, a *sharing.Acc) (*sharing.Acc, accCandidates, error) {
	switch a.Form {
	case irop.Ref:
		return a, refCandidate[*sharing.Acc](a.Key), nil
	case irop.Let:
		return nil, nil, r.trail.Internalf("array node %s already bound", a.Key)
	}
	if a.IsPlaceholder() {
		return a, nil, nil
	}
	r.trail.Push("%s%s", a.Node.Op, a.Key)
	defer r.trail.Pop()
	node := &sharing.AccNode{
		Op:    a.Node.Op,
		Attr:  a.Node.Attr,
		Accs:  make([]*sharing.Acc, len(a.Node.Accs)),
		Exps:  make([]*sharing.Fun, len(a.Node.Exps)),
		Funs:  make([]*sharing.Fun, len(a.Node.Funs)),
		AFuns: make([]*sharing.AFun, len(a.Node.AFuns)),
	}
	var cands accCandidates
	for i, child := range a.Node.Accs {
		sub, cs, err := r.acc(occ, child)
		if err != nil {
			return nil, nil, err
		}
		node.Accs[i] = sub
		cands = merge(cands, cs)
	}
	for i, f := range a.Node.Exps {
		sub, cs, err := r.root(occ, f)
		if err != nil {
			return nil, nil, err
		}
		node.Exps[i] = sub
		cands = merge(cands, cs)
	}
	for i, f := range a.Node.Funs {
		sub, cs, err := r.root(occ, f)
		if err != nil {
			return nil, nil, err
		}
		node.Funs[i] = sub
		cands = merge(cands, cs)
	}
	for i, f := range a.Node.AFuns {
		sub, err := r.afun(f)
		if err != nil {
			return nil, nil, err
		}
		node.AFuns[i] = sub
	}
	out := &sharing.Acc{Form: irop.Op, Key: a.Key, Type: a.Type, Node: node}
	if occ.Count(a.Key.ID) > 1 {
		cands = merge(cands, defCandidate(a.Key, out))
		out = sharing.NewAccRef(a.Key, a.Type)
	}
	run, rest, err := cands.extract(occ)
	if err != nil {
		return nil, nil, r.trail.Wrap(err)
	}
	for _, c := range run {
		out = sharing.NewAccLet(c.key, c.def, out)
	}
	return out, rest, nil
}

// root resolves the scopes of a scalar root.
// All the scalar nodes are bound inside the root.
func (r *resolver) root(accOcc *stable.OccMap, f *sharing.Fun) (*sharing.Fun, accCandidates, error) {
	body, exps, accs, err := r.exp(accOcc, f.Occ, f.Body)
	if err != nil {
		return nil, nil, err
	}
	run, rest, err := exps.extract(f.Occ)
	if err != nil {
		return nil, nil, r.trail.Wrap(err)
	}
	if len(rest) > 0 {
		return nil, nil, r.trail.Internalf("scalar nodes %s not bound in function", rest)
	}
	for _, c := range run {
		body = sharing.NewExpLet(c.key, c.def, body)
	}
	return &sharing.Fun{Params: f.Params, Body: body, Occ: f.Occ}, accs, nil
}

// hoist replaces an array computation nested in a scalar node by a reference
// and returns the definition to bind outside of the scalar root.
func hoist(a *sharing.Acc) (*sharing.Acc, accCandidates) {
	if a.Form == irop.Ref || a.IsPlaceholder() {
		return a, nil
	}
	key := a.Concrete()
	return sharing.NewAccRef(key, a.Type), defCandidate(key, a)
}

func (r *resolver) exp(accOcc, expOcc *stable.OccMap, e *sharing.Exp) (*sharing.Exp, expCandidates, accCandidates, error) {
	switch e.Form {
	case irop.Ref:
		return e, refCandidate[*sharing.Exp](e.Key), nil, nil
	case irop.Let:
		return nil, nil, nil, r.trail.Internalf("scalar node %s already bound", e.Key)
	}
	if e.IsPlaceholder() {
		return e, nil, nil, nil
	}
	r.trail.Push("%s%s", e.Node.Op, e.Key)
	defer r.trail.Pop()
	node := &sharing.ExpNode{
		Op:   e.Node.Op,
		Attr: e.Node.Attr,
		Exps: make([]*sharing.Exp, len(e.Node.Exps)),
		Accs: make([]*sharing.Acc, len(e.Node.Accs)),
	}
	var exps expCandidates
	var accs accCandidates
	for i, child := range e.Node.Exps {
		sub, es, as, err := r.exp(accOcc, expOcc, child)
		if err != nil {
			return nil, nil, nil, err
		}
		node.Exps[i] = sub
		exps = merge(exps, es)
		accs = merge(accs, as)
	}
	for i, child := range e.Node.Accs {
		sub, as, err := r.acc(accOcc, child)
		if err != nil {
			return nil, nil, nil, err
		}
		if r.opts.Floating {
			var floated accCandidates
			sub, floated = hoist(sub)
			as = merge(as, floated)
		}
		node.Accs[i] = sub
		accs = merge(accs, as)
	}
	out := &sharing.Exp{Form: irop.Op, Key: e.Key, Type: e.Type, Node: node}
	if expOcc.Count(e.Key.ID) > 1 {
		exps = merge(exps, defCandidate(e.Key, out))
		out = sharing.NewExpRef(e.Key, e.Type)
	}
	run, rest, err := exps.extract(expOcc)
	if err != nil {
		return nil, nil, nil, r.trail.Wrap(err)
	}
	for _, c := range run {
		out = sharing.NewExpLet(c.key, c.def, out)
	}
	return out, rest, accs, nil
}
