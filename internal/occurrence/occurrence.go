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

// Package occurrence counts how many times each node instance of a program
// is used and annotates the program with identity keys.
//
// The traversal is depth-first and visits the children of a node instance
// only the first time the instance is found. Every further occurrence becomes
// a reference to the first one. The cost of the traversal is thus linear in
// the number of distinct node instances, even if the unfolded tree is
// exponentially larger.
//
// Functions embedded in array nodes are applied once, when their node is
// first visited, to fresh placeholders. The resulting bodies are stored in
// the annotated tree so that later passes never apply them again.
package occurrence

import (
	"slices"

	"github.com/gx-org/arrlang/api/options"
	"github.com/gx-org/arrlang/api/trace"
	"github.com/gx-org/arrlang/build/fmterr"
	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/gx-org/arrlang/build/ir/irop"
	"github.com/gx-org/arrlang/internal/sharing"
	"github.com/gx-org/arrlang/internal/stable"
	"github.com/gx-org/arrlang/lang"
	"golang.org/x/exp/maps"
)

type counter struct {
	opts *options.Options
	// accs counts array occurrences in the current context.
	accs *stable.Table[irkind.Arrays]
	// path contains the nodes being visited.
	path map[stable.ID]bool
	// level is the number of enclosing scalar parameters.
	level int
	// alevel is the number of enclosing array parameters.
	alevel int
	trail  fmterr.Trail
}

func newCounter(opts *options.Options) *counter {
	return &counter{
		opts: opts,
		accs: stable.NewTable[irkind.Arrays](opts.AccSharing),
		path: make(map[stable.ID]bool),
	}
}

// Acc counts the occurrences in a closed array computation.
// It returns the annotated tree and the occurrences of its array nodes.
func Acc(opts *options.Options, a *lang.Acc) (*sharing.Acc, *stable.OccMap, error) {
	c := newCounter(opts)
	root, err := c.acc(a)
	if err != nil {
		return nil, nil, err
	}
	return root, c.accs.Freeze(), nil
}

// AFun counts the occurrences in a closed array function.
// The occurrences of the array nodes are stored in the returned function.
func AFun(opts *options.Options, f lang.AFun, param irkind.Arrays) (*sharing.AFun, error) {
	return newCounter(opts).afun(f, param)
}

// Exp counts the occurrences in a closed scalar expression.
// It returns the expression as a function without parameters and
// the occurrences of the array nodes nested in the expression.
func Exp(opts *options.Options, e *lang.Exp) (*sharing.Fun, *stable.OccMap, error) {
	c := newCounter(opts)
	root, err := c.root(nil, e)
	if err != nil {
		return nil, nil, err
	}
	return root, c.accs.Freeze(), nil
}

// Fun counts the occurrences in a closed scalar function.
func Fun(opts *options.Options, f lang.Fun, params []irkind.Elt) (*sharing.Fun, *stable.OccMap, error) {
	c := newCounter(opts)
	root, err := c.fun(f, params)
	if err != nil {
		return nil, nil, err
	}
	return root, c.accs.Freeze(), nil
}

func (c *counter) visit(sort trace.Sort, id stable.ID, first bool) {
	if c.opts.Trace == nil {
		return
	}
	c.opts.Trace.Visit(trace.Visit{Sort: sort, ID: uint64(id), First: first})
}

func (c *counter) illTyped(err error) error {
	return fmterr.User(fmterr.ErrIllTyped, c.trail.Wrap(err))
}

// cyclic reports a node found again while its subtree is being visited.
// The nodes being visited are listed in the error.
func (c *counter) cyclic(node any) error {
	visiting := maps.Keys(c.path)
	slices.Sort(visiting)
	return c.trail.Userf(fmterr.ErrCyclicDefinition, "%v is defined in terms of itself (nodes being visited: %v)", node, visiting)
}

func (c *counter) enterPath(id stable.ID) bool {
	if c.path[id] {
		return false
	}
	c.path[id] = true
	return true
}

func (c *counter) acc(a *lang.Acc) (*sharing.Acc, error) {
	if a == nil {
		return nil, c.trail.Userf(fmterr.ErrIllTyped, "missing array expression")
	}
	node := a.Node()
	if node.Op == irop.Atag {
		c.visit(trace.Array, a.ID(), true)
		typ, err := irop.AccType(node.Op, node.Attr, nil, nil, nil, nil)
		if err != nil {
			return nil, c.illTyped(err)
		}
		return &sharing.Acc{
			Form: irop.Op,
			Key:  stable.Key{ID: a.ID(), Height: 1},
			Type: typ,
			Node: &sharing.AccNode{Op: node.Op, Attr: node.Attr},
		}, nil
	}
	if !c.enterPath(a.ID()) {
		return nil, c.cyclic(a)
	}
	defer delete(c.path, a.ID())
	key, state, typ := c.accs.Enter(a.ID())
	c.visit(trace.Array, a.ID(), state == stable.Unseen)
	switch state {
	case stable.Pending:
		return nil, c.cyclic(a)
	case stable.Seen:
		return sharing.NewAccRef(key, typ), nil
	}
	c.trail.Push("%s", node.Op)
	defer c.trail.Pop()
	if err := node.CheckArity(); err != nil {
		return nil, c.illTyped(err)
	}
	out := &sharing.AccNode{
		Op:    node.Op,
		Attr:  node.Attr,
		Accs:  make([]*sharing.Acc, len(node.Accs)),
		Exps:  make([]*sharing.Fun, len(node.Exps)),
		Funs:  make([]*sharing.Fun, len(node.Funs)),
		AFuns: make([]*sharing.AFun, len(node.AFuns)),
	}
	height := 0
	accTypes := make([]irkind.Arrays, len(node.Accs))
	for i, child := range node.Accs {
		sub, err := c.acc(child)
		if err != nil {
			return nil, err
		}
		out.Accs[i] = sub
		accTypes[i] = sub.Type
		height = max(height, sub.Key.Height)
	}
	expTypes := make([]irkind.Elt, len(node.Exps))
	for i, child := range node.Exps {
		sub, err := c.root(nil, child)
		if err != nil {
			return nil, err
		}
		out.Exps[i] = sub
		expTypes[i] = sub.Result()
		height = max(height, sub.Body.Key.Height)
	}
	params, err := irop.FunParams(node.Op, node.Attr, accTypes, expTypes)
	if err != nil {
		return nil, c.illTyped(err)
	}
	if len(params) != len(node.Funs) {
		return nil, c.trail.Internalf("%s: %d parameter lists for %d functions", node.Op, len(params), len(node.Funs))
	}
	funTypes := make([]irkind.Elt, len(node.Funs))
	for i, f := range node.Funs {
		sub, err := c.fun(f, params[i])
		if err != nil {
			return nil, err
		}
		out.Funs[i] = sub
		funTypes[i] = sub.Result()
		height = max(height, sub.Body.Key.Height)
	}
	afunTypes := make([]irop.AFunType, len(node.AFuns))
	for i, f := range node.AFuns {
		param := accTypes[0]
		if i > 0 {
			param = afunTypes[i-1].Result
		}
		sub, err := c.afun(f, param)
		if err != nil {
			return nil, err
		}
		out.AFuns[i] = sub
		afunTypes[i] = sub.Type()
		height = max(height, sub.Body.Key.Height)
	}
	typ, err = irop.AccType(node.Op, node.Attr, accTypes, expTypes, funTypes, afunTypes)
	if err != nil {
		return nil, c.illTyped(err)
	}
	key.Height = height + 1
	c.accs.Finish(key, typ)
	return &sharing.Acc{Form: irop.Op, Key: key, Type: typ, Node: out}, nil
}

// root counts the occurrences of an embedded scalar expression in a fresh table.
func (c *counter) root(params []*lang.Exp, body *lang.Exp) (*sharing.Fun, error) {
	tbl := stable.NewTable[irkind.Elt](c.opts.ExpSharing)
	fun := &sharing.Fun{Params: make([]*sharing.Exp, len(params))}
	for i, param := range params {
		sub, err := c.exp(tbl, param)
		if err != nil {
			return nil, err
		}
		fun.Params[i] = sub
	}
	sub, err := c.exp(tbl, body)
	if err != nil {
		return nil, err
	}
	fun.Body = sub
	fun.Occ = tbl.Freeze()
	return fun, nil
}

func (c *counter) fun(f lang.Fun, params []irkind.Elt) (*sharing.Fun, error) {
	if f == nil {
		return nil, c.trail.Userf(fmterr.ErrIllTyped, "missing scalar function")
	}
	args := make([]*lang.Exp, len(params))
	for i, param := range params {
		args[i] = lang.Placeholder(c.level+i, param)
	}
	c.level += len(params)
	defer func() { c.level -= len(params) }()
	body := f(args...)
	if body == nil {
		return nil, c.trail.Userf(fmterr.ErrIllTyped, "function with %d parameters returned no expression", len(params))
	}
	return c.root(args, body)
}

// afun counts the occurrences of an array function in a table isolated
// from the rest of the program.
func (c *counter) afun(f lang.AFun, param irkind.Arrays) (*sharing.AFun, error) {
	if f == nil {
		return nil, c.trail.Userf(fmterr.ErrIllTyped, "missing array function")
	}
	outer := c.accs
	c.accs = stable.NewTable[irkind.Arrays](c.opts.AccSharing)
	defer func() { c.accs = outer }()
	arg := lang.APlaceholder(c.alevel, param)
	c.alevel++
	defer func() { c.alevel-- }()
	body := f(arg)
	if body == nil {
		return nil, c.trail.Userf(fmterr.ErrIllTyped, "array function returned no expression")
	}
	sparam, err := c.acc(arg)
	if err != nil {
		return nil, err
	}
	sbody, err := c.acc(body)
	if err != nil {
		return nil, err
	}
	return &sharing.AFun{Param: sparam, Body: sbody, Occ: c.accs.Freeze()}, nil
}

func (c *counter) exp(tbl *stable.Table[irkind.Elt], e *lang.Exp) (*sharing.Exp, error) {
	if e == nil {
		return nil, c.trail.Userf(fmterr.ErrIllTyped, "missing scalar expression")
	}
	node := e.Node()
	if node.Op == irop.Tag {
		c.visit(trace.Scalar, e.ID(), true)
		typ, err := irop.ExpType(node.Op, node.Attr, nil, nil)
		if err != nil {
			return nil, c.illTyped(err)
		}
		return &sharing.Exp{
			Form: irop.Op,
			Key:  stable.Key{ID: e.ID(), Height: 1},
			Type: typ,
			Node: &sharing.ExpNode{Op: node.Op, Attr: node.Attr},
		}, nil
	}
	if !c.enterPath(e.ID()) {
		return nil, c.cyclic(e)
	}
	defer delete(c.path, e.ID())
	key, state, typ := tbl.Enter(e.ID())
	c.visit(trace.Scalar, e.ID(), state == stable.Unseen)
	switch state {
	case stable.Pending:
		return nil, c.cyclic(e)
	case stable.Seen:
		return sharing.NewExpRef(key, typ), nil
	}
	c.trail.Push("%s", node.Op)
	defer c.trail.Pop()
	if err := node.CheckArity(); err != nil {
		return nil, c.illTyped(err)
	}
	out := &sharing.ExpNode{
		Op:   node.Op,
		Attr: node.Attr,
		Exps: make([]*sharing.Exp, len(node.Exps)),
		Accs: make([]*sharing.Acc, len(node.Accs)),
	}
	height := 0
	expTypes := make([]irkind.Elt, len(node.Exps))
	for i, child := range node.Exps {
		sub, err := c.exp(tbl, child)
		if err != nil {
			return nil, err
		}
		out.Exps[i] = sub
		expTypes[i] = sub.Type
		height = max(height, sub.Key.Height)
	}
	accTypes := make([]irkind.Arrays, len(node.Accs))
	for i, child := range node.Accs {
		sub, err := c.acc(child)
		if err != nil {
			return nil, err
		}
		out.Accs[i] = sub
		accTypes[i] = sub.Type
		height = max(height, sub.Key.Height)
	}
	typ, err := irop.ExpType(node.Op, node.Attr, expTypes, accTypes)
	if err != nil {
		return nil, c.illTyped(err)
	}
	key.Height = height + 1
	tbl.Finish(key, typ)
	return &sharing.Exp{Form: irop.Op, Key: key, Type: typ, Node: out}, nil
}
