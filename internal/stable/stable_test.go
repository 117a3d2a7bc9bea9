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

package stable_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/arrlang/internal/stable"
)

func TestNewID(t *testing.T) {
	seen := make(map[stable.ID]bool)
	prev := stable.NewID()
	for range 100 {
		id := stable.NewID()
		if seen[id] || id <= prev {
			t.Fatalf("ID %d returned after %d", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestKeyOrder(t *testing.T) {
	tests := []struct {
		x, y stable.Key
		want bool
	}{
		{x: stable.Key{ID: 1, Height: 3}, y: stable.Key{ID: 2, Height: 2}, want: true},
		{x: stable.Key{ID: 2, Height: 2}, y: stable.Key{ID: 1, Height: 3}, want: false},
		{x: stable.Key{ID: 5, Height: 2}, y: stable.Key{ID: 4, Height: 2}, want: true},
		{x: stable.Key{ID: 4, Height: 2}, y: stable.Key{ID: 5, Height: 2}, want: false},
		{x: stable.Key{ID: 4, Height: 2}, y: stable.Key{ID: 4, Height: 2}, want: false},
	}
	for i, test := range tests {
		if got := test.x.Before(test.y); got != test.want {
			t.Errorf("test %d: %s.Before(%s) = %v but want %v", i, test.x, test.y, got, test.want)
		}
	}
}

func TestTable(t *testing.T) {
	tbl := stable.NewTable[string](true)
	a, b := stable.NewID(), stable.NewID()
	var states []stable.State
	enter := func(id stable.ID) stable.Key {
		key, state, _ := tbl.Enter(id)
		states = append(states, state)
		return key
	}
	ka := enter(a)
	enter(a)
	ka.Height = 1
	tbl.Finish(ka, "a")
	key, state, info := tbl.Enter(a)
	if state != stable.Seen || info != "a" || key.Height != 1 {
		t.Errorf("got %s, %d, %q but want a seen node of height 1", key, state, info)
	}
	kb := enter(b)
	kb.Height = 2
	tbl.Finish(kb, "b")
	if diff := cmp.Diff([]stable.State{stable.Unseen, stable.Pending, stable.Unseen}, states); diff != "" {
		t.Errorf("unexpected states:\n%s", diff)
	}
	occ := tbl.Freeze()
	if occ.Len() != 2 {
		t.Errorf("got %d instances but want 2", occ.Len())
	}
	if got, _ := occ.Lookup(a); got != (stable.Occ{Count: 3, Height: 1}) {
		t.Errorf("got occurrence %v for a", got)
	}
	if diff := cmp.Diff([]stable.ID{a}, occ.Shared()); diff != "" {
		t.Errorf("unexpected shared instances:\n%s", diff)
	}
	if count := occ.Count(stable.NewID()); count != 0 {
		t.Errorf("unknown instance counted %d times", count)
	}
}

func TestTableWithoutRecovery(t *testing.T) {
	tbl := stable.NewTable[int](false)
	id := stable.NewID()
	k1, s1, _ := tbl.Enter(id)
	k2, s2, _ := tbl.Enter(id)
	if s1 != stable.Unseen || s2 != stable.Unseen {
		t.Errorf("got states %d and %d but want unseen", s1, s2)
	}
	if k1.Same(k2) {
		t.Errorf("occurrences of the same instance share the key %s", k1)
	}
	if shared := tbl.Freeze().Shared(); len(shared) != 0 {
		t.Errorf("got shared instances %v", shared)
	}
}
