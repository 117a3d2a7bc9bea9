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

package irkind_test

import (
	"testing"

	"github.com/gx-org/arrlang/build/ir/irkind"
	"github.com/gx-org/backend/dtype"
)

func TestKindString(t *testing.T) {
	for _, kind := range []irkind.Kind{
		irkind.Bool,
		irkind.Int32,
		irkind.Int64,
		irkind.Uint32,
		irkind.Uint64,
		irkind.Bfloat16,
		irkind.Float32,
		irkind.Float64,
	} {
		if got := irkind.KindFromString(kind.String()); got != kind {
			t.Errorf("KindFromString(%q) = %s but want %s", kind.String(), got, kind)
		}
		if got := irkind.FromDType(kind.DType()); got != kind {
			t.Errorf("FromDType(%v) = %s but want %s", kind.DType(), got, kind)
		}
	}
	if got := irkind.KindFromString("complex64"); got != irkind.Invalid {
		t.Errorf("got kind %s for an unsupported type", got)
	}
}

func TestKindGeneric(t *testing.T) {
	tests := []struct {
		got, want irkind.Kind
	}{
		{got: irkind.KindGeneric[bool](), want: irkind.Bool},
		{got: irkind.KindGeneric[int32](), want: irkind.Int32},
		{got: irkind.KindGeneric[int64](), want: irkind.Int64},
		{got: irkind.KindGeneric[float32](), want: irkind.Float32},
		{got: irkind.KindGeneric[float64](), want: irkind.Float64},
	}
	for i, test := range tests {
		if test.got != test.want {
			t.Errorf("test %d: got %s but want %s", i, test.got, test.want)
		}
	}
	if irkind.Float32.DType() != dtype.Float32 {
		t.Errorf("float32 kind converted to %v", irkind.Float32.DType())
	}
}

func TestClasses(t *testing.T) {
	tests := []struct {
		kind                   irkind.Kind
		integer, float, number bool
	}{
		{kind: irkind.Bool},
		{kind: irkind.Int32, integer: true, number: true},
		{kind: irkind.Uint64, integer: true, number: true},
		{kind: irkind.Bfloat16, float: true, number: true},
		{kind: irkind.Float64, float: true, number: true},
	}
	for i, test := range tests {
		if got := irkind.IsIntegerKind(test.kind); got != test.integer {
			t.Errorf("test %d: IsIntegerKind(%s) = %v", i, test.kind, got)
		}
		if got := irkind.IsFloatKind(test.kind); got != test.float {
			t.Errorf("test %d: IsFloatKind(%s) = %v", i, test.kind, got)
		}
		if got := irkind.IsNumericKind(test.kind); got != test.number {
			t.Errorf("test %d: IsNumericKind(%s) = %v", i, test.kind, got)
		}
	}
}

func TestTypes(t *testing.T) {
	f32 := irkind.Scalar{Kind: irkind.Float32}
	pair := irkind.Tuple{Elems: []irkind.Elt{f32, irkind.Int}}
	tests := []struct {
		x, y  irkind.Arrays
		equal bool
		str   string
	}{
		{
			x:     irkind.Array{Rank: 2, Elt: f32},
			y:     irkind.Array{Rank: 2, Elt: f32},
			equal: true,
			str:   "Array DIM2 float32",
		},
		{
			x:   irkind.Array{Rank: 1, Elt: f32},
			y:   irkind.Array{Rank: 2, Elt: f32},
			str: "Array DIM1 float32",
		},
		{
			x:     irkind.Array{Rank: 0, Elt: pair},
			y:     irkind.Array{Rank: 0, Elt: irkind.Tuple{Elems: []irkind.Elt{f32, irkind.Int}}},
			equal: true,
			str:   "Array DIM0 (float32, int64)",
		},
		{
			x:   irkind.ArraysTuple{Elems: []irkind.Arrays{irkind.Array{Rank: 1, Elt: irkind.Shape{Rank: 2}}}},
			y:   irkind.ArraysTuple{},
			str: "(Array DIM1 DIM2)",
		},
	}
	for i, test := range tests {
		if got := test.x.Equal(test.y); got != test.equal {
			t.Errorf("test %d: %s.Equal(%s) = %v but want %v", i, test.x, test.y, got, test.equal)
		}
		if got := test.x.String(); got != test.str {
			t.Errorf("test %d: got %q but want %q", i, got, test.str)
		}
	}
}
