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

package uname_test

import (
	"testing"

	"github.com/gx-org/arrlang/base/uname"
)

func TestName(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{
			name: "a",
			want: "a",
		},
		{
			name: "a",
			want: "a1",
		},
		{
			name: "a",
			want: "a2",
		},
		{
			name: "b",
			want: "b",
		},
		{
			name: "b",
			want: "b1",
		},
		{
			name: "c",
			want: "c",
		},
	}
	unames := uname.New()
	for i, test := range tests {
		got := unames.Name(test.name)
		if got != test.want {
			t.Errorf("test %d: for name %s, got %s but want %s", i, test.name, got, test.want)
		}
	}
}

func TestBinders(t *testing.T) {
	unames := uname.New()
	root := unames.Binders()
	x, b1 := root.Push("x")
	y, b2 := b1.Push("x")
	z, b3 := b1.Push("a")
	if x != "x" || y != "x1" || z != "a" {
		t.Errorf("got names %s, %s, %s but want x, x1, a", x, y, z)
	}
	tests := []struct {
		binders *uname.Binders
		index   int
		want    string
		ok      bool
	}{
		{binders: root, index: 0, ok: false},
		{binders: b1, index: 0, want: "x", ok: true},
		{binders: b2, index: 0, want: "x1", ok: true},
		{binders: b2, index: 1, want: "x", ok: true},
		{binders: b3, index: 0, want: "a", ok: true},
		{binders: b3, index: 1, want: "x", ok: true},
		{binders: b3, index: 2, ok: false},
		{binders: b3, index: -1, ok: false},
	}
	for i, test := range tests {
		got, ok := test.binders.At(test.index)
		if got != test.want || ok != test.ok {
			t.Errorf("test %d: At(%d) = %q, %v but want %q, %v", i, test.index, got, ok, test.want, test.ok)
		}
	}
	if b3.Len() != 2 {
		t.Errorf("got %d binders but want 2", b3.Len())
	}
}
