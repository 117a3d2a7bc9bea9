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
	"github.com/gx-org/arrlang/base/iter"
	"github.com/gx-org/arrlang/build/ir/irop"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type checker struct {
	err error
}

func (c *checker) variable(sort string, index, n int) {
	if index < 0 || index >= n {
		c.err = multierr.Append(c.err, errors.Errorf("%s variable %d out of bounds: %d binders in scope", sort, index, n))
	}
}

func (c *checker) acc(a *Acc, arrays, scalars int) {
	switch a.Form {
	case irop.Ref:
		c.variable("array", a.Index, arrays)
	case irop.Let:
		c.acc(a.Bound, arrays, scalars)
		c.acc(a.Body, arrays+1, scalars)
	default:
		for _, child := range a.Node.Accs {
			c.acc(child, arrays, scalars)
		}
		for f := range iter.All(a.Node.Exps, a.Node.Funs) {
			c.fun(f, arrays)
		}
		for _, f := range a.Node.AFuns {
			c.acc(f.Body, 1, 0)
		}
	}
}

func (c *checker) fun(f *Fun, arrays int) {
	c.exp(f.Body, arrays, len(f.Params))
}

func (c *checker) exp(e *Exp, arrays, scalars int) {
	switch e.Form {
	case irop.Ref:
		c.variable("scalar", e.Index, scalars)
	case irop.Let:
		c.exp(e.Bound, arrays, scalars)
		c.exp(e.Body, arrays, scalars+1)
	default:
		for _, child := range e.Node.Exps {
			c.exp(child, arrays, scalars)
		}
		for _, child := range e.Node.Accs {
			c.acc(child, arrays, scalars)
		}
	}
}

// Check returns an error if a variable of a closed array computation
// does not refer to a binder.
func Check(a *Acc) error {
	var c checker
	c.acc(a, 0, 0)
	return c.err
}

// CheckAFun returns an error if a variable of an array function
// does not refer to a binder.
func CheckAFun(f *AFun) error {
	var c checker
	c.acc(f.Body, 1, 0)
	return c.err
}

// CheckProgram returns an error if a variable of a program
// does not refer to a binder.
func CheckProgram(p *Program) error {
	var c checker
	for i, binding := range p.Bindings {
		c.acc(binding, i, 0)
	}
	c.fun(p.Fun, len(p.Bindings))
	return c.err
}
