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

package api_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/arrlang/api"
	"github.com/gx-org/arrlang/api/options"
	"github.com/gx-org/arrlang/api/trace"
	"github.com/gx-org/arrlang/build/fmterr"
	"github.com/gx-org/arrlang/build/ir"
	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/gx-org/arrlang/build/ir/irop"
	"github.com/gx-org/arrlang/lang"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/pkg/errors"
)

var (
	f32 = irkind.Scalar{Kind: irkind.Float32}
	vec = irkind.Array{Rank: 1, Elt: f32}
	add = lang.Fun2(lang.Add)
)

func vector(name string) *lang.Acc {
	return lang.Use(name, &shape.Shape{DType: dtype.Float32, AxisLengths: []int{4}}, nil)
}

func defaults(opts ...options.Option) []options.Option {
	return append([]options.Option{
		options.WithAccSharing(true),
		options.WithExpSharing(true),
		options.WithFloating(true),
	}, opts...)
}

type census struct {
	accOps map[irop.AccOp]int
	expOps map[irop.ExpOp]int
	vars   int
	lets   int
}

func count(a *ir.Acc) census {
	c := census{
		accOps: make(map[irop.AccOp]int),
		expOps: make(map[irop.ExpOp]int),
	}
	a.Walk(func(a *ir.Acc) {
		switch a.Form {
		case irop.Op:
			c.accOps[a.Node.Op]++
		case irop.Ref:
			c.vars++
		case irop.Let:
			c.lets++
		}
	}, func(e *ir.Exp) {
		if e.Form == irop.Op {
			c.expOps[e.Node.Op]++
		}
	})
	return c
}

func TestConvertExp(t *testing.T) {
	one := func() *lang.Exp { return lang.Const[int32](1) }
	a := one()
	b := lang.Add(a, a)
	arr := lang.Map(lang.Fun1(lang.Neg), vector("a"))
	tests := []struct {
		exp  *lang.Exp
		want string
		lets int
	}{
		{
			exp:  lang.Add(b, b),
			want: "let x = 1 in let x1 = (x + x) in (x1 + x1)",
			lets: 2,
		},
		{
			exp:  lang.Add(one(), one()),
			want: "(1 + 1)",
		},
		{
			exp:  lang.Add(lang.Size(arr), lang.Size(arr)),
			want: "let a = map(use[a[4]](), \\x -> neg(x)) in\n\t(size(a) + size(a))",
			lets: 1,
		},
	}
	for i, test := range tests {
		prog, err := api.ConvertExp(test.exp, defaults()...)
		if err != nil {
			t.Errorf("test %d: %+v", i, err)
			continue
		}
		if diff := cmp.Diff(test.want, prog.String()); diff != "" {
			t.Errorf("test %d: unexpected program:\n%s", i, diff)
		}
		if lets := prog.Lets(); lets != test.lets {
			t.Errorf("test %d: got %d lets but want %d", i, lets, test.lets)
		}
	}
}

func TestNoSharingIdempotence(t *testing.T) {
	root := lang.ZipWith(add,
		lang.Map(lang.Fun1(lang.Abs), vector("a")),
		lang.Fold(add, lang.Const[float32](0), lang.Generate(
			lang.Index(lang.Const[int64](4), lang.Const[int64](3)),
			lang.Fun1(func(ix *lang.Exp) *lang.Exp {
				return lang.Cast(irkind.Float32, lang.IndexHead(ix))
			}),
		)),
	)
	got, err := api.ConvertAcc(root, defaults()...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	c := count(got)
	if c.lets != 0 {
		t.Errorf("got %d lets but want 0:\n%s", c.lets, got)
	}
	want := map[irop.AccOp]int{
		irop.ZipWith:  1,
		irop.Map:      1,
		irop.Use:      1,
		irop.Fold:     1,
		irop.Generate: 1,
	}
	if diff := cmp.Diff(want, c.accOps); diff != "" {
		t.Errorf("unexpected array operators:\n%s", diff)
	}
}

func TestSharingCorrectness(t *testing.T) {
	a := vector("a")
	root := lang.ZipWith(add, lang.ZipWith(add, a, a), lang.Map(lang.Fun1(lang.Neg), a))
	got, err := api.ConvertAcc(root, defaults()...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	c := count(got)
	if c.accOps[irop.Use] != 1 {
		t.Errorf("got %d definitions of a but want 1:\n%s", c.accOps[irop.Use], got)
	}
	if c.lets != 1 || c.vars != 3 {
		t.Errorf("got %d lets and %d references but want 1 and 3:\n%s", c.lets, c.vars, got)
	}
	want := `let a = use[a[4]]() in zipWith(zipWith(a, a, \x x1 -> (x + x1)), map(a, \x2 -> neg(x2)), \x3 x4 -> (x3 + x4))`
	if diff := cmp.Diff(want, got.String()); diff != "" {
		t.Errorf("unexpected computation:\n%s", diff)
	}
}

func TestNoFalseSharing(t *testing.T) {
	got, err := api.ConvertAcc(lang.ZipWith(add, vector("a"), vector("a")), defaults()...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if c := count(got); c.accOps[irop.Use] != 2 || c.lets != 0 {
		t.Errorf("structurally equal arrays have been shared:\n%s", got)
	}
}

func TestDisabledSharing(t *testing.T) {
	a := vector("a")
	got, err := api.ConvertAcc(lang.ZipWith(add, a, a), defaults(options.WithAccSharing(false))...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if c := count(got); c.accOps[irop.Use] != 2 || c.lets != 0 {
		t.Errorf("sharing recovered while disabled:\n%s", got)
	}
	x := lang.Const[int32](1)
	y := lang.Add(x, x)
	prog, err := api.ConvertExp(lang.Add(y, y), defaults(options.WithExpSharing(false))...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff("((1 + 1) + (1 + 1))", prog.String()); diff != "" {
		t.Errorf("unexpected program:\n%s", diff)
	}
}

func TestSharingDisabledByEnvironment(t *testing.T) {
	t.Setenv(options.EnvNoAccSharing, "true")
	a := vector("a")
	got, err := api.ConvertAcc(lang.ZipWith(add, a, a))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if c := count(got); c.lets != 0 {
		t.Errorf("sharing recovered while disabled:\n%s", got)
	}
	opts := api.New(options.WithAccSharing(true)).Options()
	if !opts.AccSharing {
		t.Errorf("option does not override the environment")
	}
}

func TestFloatingInvariant(t *testing.T) {
	ys := vector("ys")
	zs := lang.Map(lang.Fun1(lang.Abs), vector("zs"))
	root := lang.Map(lang.Fun1(func(x *lang.Exp) *lang.Exp {
		ix := lang.Index(lang.Const[int64](0))
		return lang.Add(lang.Add(x, lang.IndexScalar(ys, ix)), lang.IndexScalar(zs, ix))
	}), vector("xs"))
	for _, floating := range []bool{true, false} {
		got, err := api.ConvertAcc(root, defaults(options.WithFloating(floating))...)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		nested := 0
		got.Walk(func(*ir.Acc) {}, func(e *ir.Exp) {
			if e.Form != irop.Op {
				return
			}
			for _, child := range e.Node.Accs {
				if child.Form != irop.Ref {
					nested++
				}
			}
		})
		if floating && nested != 0 {
			t.Errorf("%d array computations nested in scalar expressions:\n%s", nested, got)
		}
		if !floating && nested != 2 {
			t.Errorf("got %d nested array computations but want 2:\n%s", nested, got)
		}
	}
}

func TestLinearCost(t *testing.T) {
	const depth = 30
	x := vector("x")
	for range depth {
		x = lang.ZipWith(add, x, x)
	}
	counter := &trace.Counter{}
	got, err := api.ConvertAcc(x, defaults(options.WithTrace(counter))...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if visits := counter.PerSort[trace.Array]; visits != 2*depth+1 {
		t.Errorf("got %d array visits but want %d", visits, 2*depth+1)
	}
	if c := count(got); c.lets != depth || c.accOps[irop.ZipWith] != depth {
		t.Errorf("got %d lets and %d zipWith but want %d", c.lets, c.accOps[irop.ZipWith], depth)
	}
}

func TestLinearCostScalar(t *testing.T) {
	const depth = 40
	x := lang.Const[int32](1)
	for range depth {
		x = lang.Add(x, x)
	}
	counter := &trace.Counter{}
	prog, err := api.ConvertExp(x, defaults(options.WithTrace(counter))...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if visits := counter.PerSort[trace.Scalar]; visits != 2*depth+1 {
		t.Errorf("got %d scalar visits but want %d", visits, 2*depth+1)
	}
	if counter.Descents != depth+1 {
		t.Errorf("got %d nodes traversed but want %d", counter.Descents, depth+1)
	}
	if lets := prog.Lets(); lets != depth {
		t.Errorf("got %d lets but want %d", lets, depth)
	}
}

func TestCyclicDefinition(t *testing.T) {
	var a *lang.Acc
	a = lang.Map(lang.Fun1(func(x *lang.Exp) *lang.Exp {
		return lang.Add(x, lang.IndexScalar(a, lang.Index(lang.Const[int64](0))))
	}), vector("src"))
	_, err := api.ConvertAcc(a, defaults()...)
	if !errors.Is(err, fmterr.ErrCyclicDefinition) {
		t.Errorf("got error %v but want %v", err, fmterr.ErrCyclicDefinition)
	}
	if errors.Is(err, fmterr.ErrInternal) {
		t.Errorf("cyclic definition reported as an internal error: %v", err)
	}
}

func TestPipeIsolation(t *testing.T) {
	a := vector("a")
	stage := func(x *lang.Acc) *lang.Acc {
		return lang.ZipWith(add, x, a)
	}
	id := func(x *lang.Acc) *lang.Acc { return x }
	got, err := api.ConvertAcc(lang.Pipe(stage, id, a), defaults()...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := `pipe(use[a[4]](), \a -> zipWith(a, use[a[4]](), \x x1 -> (x + x1)), \a1 -> a1)`
	if diff := cmp.Diff(want, got.String()); diff != "" {
		t.Errorf("unexpected computation:\n%s", diff)
	}
}

func TestConvertAfun(t *testing.T) {
	f := func(x *lang.Acc) *lang.Acc {
		y := lang.Map(lang.Fun1(lang.Abs), x)
		return lang.ZipWith(add, y, y)
	}
	got, err := api.ConvertAfun(f, vec, defaults()...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := `\a -> let a1 = map(a, \x -> abs(x)) in zipWith(a1, a1, \x1 x2 -> (x1 + x2))`
	if diff := cmp.Diff(want, got.String()); diff != "" {
		t.Errorf("unexpected function:\n%s", diff)
	}
	if !got.Type().Result.Equal(vec) {
		t.Errorf("got result type %s but want %s", got.Type().Result, vec)
	}
}

func TestConvertFun(t *testing.T) {
	f := lang.Fun2(func(x, y *lang.Exp) *lang.Exp {
		s := lang.Mul(x, y)
		return lang.Add(s, s)
	})
	got, err := api.ConvertFun(f, []irkind.Elt{f32, f32}, defaults()...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := `\x x1 -> let x2 = (x * x1) in (x2 + x2)`
	if diff := cmp.Diff(want, got.String()); diff != "" {
		t.Errorf("unexpected function:\n%s", diff)
	}
	if _, err := api.ConvertFun(f, []irkind.Elt{f32}, defaults()...); !errors.Is(err, fmterr.ErrIllTyped) {
		t.Errorf("got error %v but want %v", err, fmterr.ErrIllTyped)
	}
}
