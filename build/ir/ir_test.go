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

package ir_test

import (
	"go/token"
	"testing"

	"github.com/google/go-cmp/cmp"
	irfmt "github.com/gx-org/arrlang/base/fmt"
	"github.com/gx-org/arrlang/build/ir"
	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/gx-org/arrlang/build/ir/irop"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"go.uber.org/multierr"
)

var (
	f32 = irkind.Scalar{Kind: irkind.Float32}
	vec = irkind.Array{Rank: 1, Elt: f32}
)

func use() *ir.Acc {
	return ir.NewAccOp(&ir.AccNode{
		Op: irop.Use,
		Attr: &irop.Data{
			Name:  "a",
			Shape: &shape.Shape{DType: dtype.Float32, AxisLengths: []int{4}},
		},
	}, vec)
}

func add(x, y *ir.Exp) *ir.Exp {
	return ir.NewExpOp(&ir.ExpNode{
		Op:   irop.PrimApp,
		Attr: irop.Prim{Tok: token.ADD},
		Exps: []*ir.Exp{x, y},
	}, x.Type)
}

func zipWith(x, y *ir.Acc) *ir.Acc {
	return ir.NewAccOp(&ir.AccNode{
		Op:   irop.ZipWith,
		Accs: []*ir.Acc{x, y},
		Funs: []*ir.Fun{{
			Params: []irkind.Elt{f32, f32},
			Body:   add(ir.NewExpVar(1, f32), ir.NewExpVar(0, f32)),
		}},
	}, vec)
}

func TestAccString(t *testing.T) {
	tests := []struct {
		acc  *ir.Acc
		want string
		lets int
	}{
		{
			acc:  use(),
			want: "use[a[4]]()",
		},
		{
			acc:  ir.NewAccLet(use(), zipWith(ir.NewAccVar(0, vec), ir.NewAccVar(0, vec))),
			want: `let a = use[a[4]]() in zipWith(a, a, \x x1 -> (x + x1))`,
			lets: 1,
		},
		{
			acc: ir.NewAccLet(use(),
				ir.NewAccLet(zipWith(ir.NewAccVar(0, vec), ir.NewAccVar(0, vec)),
					zipWith(ir.NewAccVar(0, vec), ir.NewAccVar(1, vec)))),
			want: `let a = use[a[4]]() in let a1 = zipWith(a, a, \x x1 -> (x + x1)) in zipWith(a1, a, \x2 x3 -> (x2 + x3))`,
			lets: 2,
		},
		{
			acc:  ir.NewAccVar(3, vec),
			want: "?3",
		},
	}
	for i, test := range tests {
		got := test.acc.String()
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("test %d: unexpected string:\n%s", i, diff)
		}
		if lets := test.acc.Lets(); lets != test.lets {
			t.Errorf("test %d: got %d lets but want %d", i, lets, test.lets)
		}
	}
}

func TestExpString(t *testing.T) {
	one := ir.NewExpOp(&ir.ExpNode{
		Op:   irop.Const,
		Attr: irop.ConstValue{Kind: irkind.Int32, Value: int32(1)},
	}, irkind.Scalar{Kind: irkind.Int32})
	i32 := one.Type
	x0 := ir.NewExpVar(0, i32)
	e := ir.NewExpLet(one, ir.NewExpLet(add(x0, x0), add(x0, x0)))
	want := "let x = 1 in let x1 = (x + x) in (x1 + x1)"
	if diff := cmp.Diff(want, e.String()); diff != "" {
		t.Errorf("unexpected string:\n%s", diff)
	}
	mx := ir.NewExpOp(&ir.ExpNode{
		Op:   irop.PrimApp,
		Attr: irop.Prim{Name: irop.PrimMax},
		Exps: []*ir.Exp{one, one},
	}, i32)
	if diff := cmp.Diff("max(1, 1)", mx.String()); diff != "" {
		t.Errorf("unexpected string:\n%s", diff)
	}
}

func TestProgramString(t *testing.T) {
	size := ir.NewExpOp(&ir.ExpNode{
		Op:   irop.Size,
		Accs: []*ir.Acc{ir.NewAccVar(0, vec)},
	}, irkind.Int)
	prog := &ir.Program{
		Bindings: []*ir.Acc{use()},
		Fun:      &ir.Fun{Body: add(size, size)},
	}
	want := "let a = use[a[4]]() in\n\t(size(a) + size(a))"
	got := prog.String()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected string:\n%s\ndiff:\n%s", irfmt.Number(got), diff)
	}
	if err := ir.CheckProgram(prog); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if lets := prog.Lets(); lets != 1 {
		t.Errorf("got %d lets but want 1", lets)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		acc    *ir.Acc
		errors int
	}{
		{
			acc: ir.NewAccLet(use(), zipWith(ir.NewAccVar(0, vec), ir.NewAccVar(0, vec))),
		},
		{
			acc:    ir.NewAccLet(use(), zipWith(ir.NewAccVar(1, vec), ir.NewAccVar(0, vec))),
			errors: 1,
		},
		{
			acc:    zipWith(ir.NewAccVar(0, vec), ir.NewAccVar(-1, vec)),
			errors: 2,
		},
		{
			acc: ir.NewAccOp(&ir.AccNode{
				Op:   irop.Map,
				Accs: []*ir.Acc{use()},
				Funs: []*ir.Fun{{
					Params: []irkind.Elt{f32},
					Body:   add(ir.NewExpVar(0, f32), ir.NewExpVar(1, f32)),
				}},
			}, vec),
			errors: 1,
		},
		{
			acc: ir.NewAccLet(use(), ir.NewAccOp(&ir.AccNode{
				Op:    irop.Pipe,
				Accs:  []*ir.Acc{ir.NewAccVar(0, vec)},
				AFuns: []*ir.AFun{{Param: vec, Body: ir.NewAccVar(0, vec)}, {Param: vec, Body: ir.NewAccVar(1, vec)}},
			}, vec)),
			errors: 1,
		},
	}
	for i, test := range tests {
		err := ir.Check(test.acc)
		got := 0
		if err != nil {
			got = len(multierr.Errors(err))
		}
		if got != test.errors {
			t.Errorf("test %d: got %d errors but want %d: %v", i, got, test.errors, err)
		}
	}
}
