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

// Package scope provides persistent binder environments.
//
// An environment is a stack of binders. Pushing a binder returns a new
// environment and leaves the original one unchanged, so that an environment
// can be shared by all the subtrees in which it is valid.
package scope

import (
	"fmt"
	"iter"

	"github.com/gx-org/arrlang/base/stringseq"
)

// Env is a stack of binders identified by a key K and annotated by a value V.
// The nil environment is the empty environment.
type Env[K comparable, V any] struct {
	parent *Env[K, V]
	key    K
	value  V
	len    int
}

// Push returns a new environment with a binder on top of e.
func (e *Env[K, V]) Push(k K, v V) *Env[K, V] {
	return &Env[K, V]{parent: e, key: k, value: v, len: e.Len() + 1}
}

// Len returns the number of binders in the environment.
func (e *Env[K, V]) Len() int {
	if e == nil {
		return 0
	}
	return e.len
}

// Find returns the position of the nearest binder with the key k counted
// from the top of the stack (0 is the top) and its value.
func (e *Env[K, V]) Find(k K) (index int, value V, ok bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.key == k {
			return index, cur.value, true
		}
		index++
	}
	return -1, value, false
}

// At returns the binder at a position counted from the top of the stack.
func (e *Env[K, V]) At(index int) (k K, v V, ok bool) {
	if index < 0 {
		return
	}
	cur := e
	for ; cur != nil && index > 0; index-- {
		cur = cur.parent
	}
	if cur == nil {
		return
	}
	return cur.key, cur.value, true
}

// All iterates over the binders from the top of the stack.
func (e *Env[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for cur := e; cur != nil; cur = cur.parent {
			if !yield(cur.key, cur.value) {
				return
			}
		}
	}
}

// String representation of the environment, top of the stack first.
func (e *Env[K, V]) String() string {
	if e.Len() == 0 {
		return "empty"
	}
	return stringseq.JoinPairs(e.All(), "\n", func(k K, v V) string {
		return fmt.Sprintf("%v: %v", k, v)
	})
}
