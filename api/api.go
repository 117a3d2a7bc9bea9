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

// Package api converts programs written with the lang package
// into the intermediate representation consumed by a backend.
//
// A conversion runs three passes:
//  1. occurrences of every node instance are counted,
//  2. shared nodes are bound at the lowest node dominating all their occurrences,
//  3. references are replaced by de Bruijn indices.
//
// Conversions are independent: they share no state.
package api

import (
	"github.com/gx-org/arrlang/api/options"
	"github.com/gx-org/arrlang/build/fmterr"
	"github.com/gx-org/arrlang/build/ir"
	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/gx-org/arrlang/internal/lower"
	"github.com/gx-org/arrlang/internal/occurrence"
	"github.com/gx-org/arrlang/internal/scopes"
	"github.com/gx-org/arrlang/internal/sharing"
	"github.com/gx-org/arrlang/internal/stable"
	"github.com/gx-org/arrlang/lang"
)

// Converter converts programs given a set of options.
type Converter struct {
	opts *options.Options
}

// New returns a converter with the default options modified by opts.
func New(opts ...options.Option) *Converter {
	return &Converter{opts: options.New(opts...)}
}

// Options returns the options used by the converter.
func (c *Converter) Options() *options.Options {
	return c.opts
}

func check(err error) error {
	if err == nil {
		return nil
	}
	return fmterr.Internal(err)
}

// Acc converts a closed array computation.
func (c *Converter) Acc(a *lang.Acc) (*ir.Acc, error) {
	annotated, occ, err := occurrence.Acc(c.opts, a)
	if err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	resolved, err := scopes.Acc(c.opts, annotated, occ)
	if err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	out, err := lower.Acc(resolved)
	if err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	if err := check(ir.Check(out)); err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	return out, nil
}

// AFun converts a closed array function given the type of its parameter.
func (c *Converter) AFun(f lang.AFun, param irkind.Arrays) (*ir.AFun, error) {
	annotated, err := occurrence.AFun(c.opts, f, param)
	if err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	resolved, err := scopes.AFun(c.opts, annotated)
	if err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	out, err := lower.AFun(resolved)
	if err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	if err := check(ir.CheckAFun(out)); err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	return out, nil
}

func (c *Converter) program(fun *sharing.Fun, occ *stable.OccMap) (*ir.Program, error) {
	resolved, err := scopes.Fun(c.opts, fun, occ)
	if err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	out, err := lower.Program(resolved)
	if err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	if err := check(ir.CheckProgram(out)); err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	return out, nil
}

// Exp converts a closed scalar expression.
// Array computations used by the expression are bound by the returned program.
func (c *Converter) Exp(e *lang.Exp) (*ir.Program, error) {
	fun, occ, err := occurrence.Exp(c.opts, e)
	if err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	return c.program(fun, occ)
}

// Fun converts a closed scalar function given the types of its parameters.
func (c *Converter) Fun(f lang.Fun, params []irkind.Elt) (*ir.Program, error) {
	fun, occ, err := occurrence.Fun(c.opts, f, params)
	if err != nil {
		return nil, fmterr.ToStackTraceError(err)
	}
	return c.program(fun, occ)
}

// ConvertAcc converts a closed array computation.
func ConvertAcc(a *lang.Acc, opts ...options.Option) (*ir.Acc, error) {
	return New(opts...).Acc(a)
}

// ConvertAfun converts a closed array function.
func ConvertAfun(f lang.AFun, param irkind.Arrays, opts ...options.Option) (*ir.AFun, error) {
	return New(opts...).AFun(f, param)
}

// ConvertExp converts a closed scalar expression.
func ConvertExp(e *lang.Exp, opts ...options.Option) (*ir.Program, error) {
	return New(opts...).Exp(e)
}

// ConvertFun converts a closed scalar function.
func ConvertFun(f lang.Fun, params []irkind.Elt, opts ...options.Option) (*ir.Program, error) {
	return New(opts...).Fun(f, params)
}
