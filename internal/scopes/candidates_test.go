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

package scopes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/arrlang/internal/stable"
)

func keys(cs candidates[string]) []string {
	var ss []string
	for _, c := range cs {
		ss = append(ss, c.String())
	}
	return ss
}

func TestMerge(t *testing.T) {
	k := func(id, height int) stable.Key {
		return stable.Key{ID: stable.ID(id), Height: height}
	}
	tests := []struct {
		x, y candidates[string]
		want []string
	}{
		{
			x:    refCandidate[string](k(1, 1)),
			want: []string{"#1^1:1"},
		},
		{
			x:    refCandidate[string](k(1, 1)),
			y:    defCandidate(k(1, 1), "a"),
			want: []string{"#1^1*:2"},
		},
		{
			x:    merge(refCandidate[string](k(3, 2)), refCandidate[string](k(1, 1))),
			y:    merge(defCandidate(k(2, 2), "b"), refCandidate[string](k(4, 1))),
			want: []string{"#3^2:1", "#2^2*:1", "#4^1:1", "#1^1:1"},
		},
		{
			x:    merge(defCandidate(k(5, 3), "c"), refCandidate[string](k(1, 1))),
			y:    merge(refCandidate[string](k(5, 3)), defCandidate(k(1, 1), "a")),
			want: []string{"#5^3*:2", "#1^1*:2"},
		},
	}
	for i, test := range tests {
		got := keys(merge(test.x, test.y))
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("test %d: unexpected merge:\n%s", i, diff)
		}
		got = keys(merge(test.y, test.x))
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("test %d: merge is not symmetric:\n%s", i, diff)
		}
	}
}

func TestExtract(t *testing.T) {
	tbl := stable.NewTable[string](true)
	enter := func(id stable.ID, height, count int) stable.Key {
		var key stable.Key
		for range count {
			key, _, _ = tbl.Enter(id)
		}
		key.Height = height
		return tbl.Finish(key, "")
	}
	a := enter(100, 1, 2)
	b := enter(101, 2, 2)
	c := enter(102, 3, 3)
	occ := tbl.Freeze()

	tests := []struct {
		cands     candidates[string]
		run, rest []string
		err       bool
	}{
		{
			cands: merge(defCandidate(b, "b"), merge(defCandidate(a, "a"), refCandidate[string](a))),
			run:   nil,
			rest:  []string{"#101^2*:1", "#100^1*:2"},
		},
		{
			cands: merge(
				merge(defCandidate(b, "b"), refCandidate[string](b)),
				merge(defCandidate(a, "a"), refCandidate[string](a)),
			),
			run:  []string{"#101^2*:2", "#100^1*:2"},
			rest: nil,
		},
		{
			cands: merge(
				merge(defCandidate(c, "c"), refCandidate[string](c)),
				merge(defCandidate(a, "a"), refCandidate[string](a)),
			),
			run:  nil,
			rest: []string{"#102^3*:2", "#100^1*:2"},
		},
		{
			cands: merge(refCandidate[string](a), refCandidate[string](a)),
			err:   true,
		},
		{
			cands: merge(defCandidate(b, "b"), merge(refCandidate[string](b), refCandidate[string](b))),
			err:   true,
		},
	}
	for i, test := range tests {
		run, rest, err := test.cands.extract(occ)
		if test.err {
			if err == nil {
				t.Errorf("test %d: expected an error but got none", i)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d: %v", i, err)
			continue
		}
		if diff := cmp.Diff(test.run, keys(run)); diff != "" {
			t.Errorf("test %d: unexpected run:\n%s", i, diff)
		}
		if diff := cmp.Diff(test.rest, keys(rest)); diff != "" {
			t.Errorf("test %d: unexpected rest:\n%s", i, diff)
		}
	}
}
