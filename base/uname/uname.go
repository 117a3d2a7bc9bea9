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

// Package uname provides unique names.
package uname

import (
	"fmt"
	"slices"
)

// Unique generates unique names.
type Unique struct {
	names map[string]int
}

// New name generator.
func New() *Unique {
	return &Unique{names: make(map[string]int)}
}

// Name returns a unique name given a desired base name.
// If the base name is available, it is returned directly. Else, a unique suffix is appended.
func (n *Unique) Name(root string) string {
	nextIndex, ok := n.names[root]
	if !ok {
		n.names[root] = 1
		return root
	}
	name := fmt.Sprintf("%s%d", root, nextIndex)
	n.names[root] = nextIndex + 1
	return name
}

// Binders is an immutable stack of names given to binders.
// Binders are referred to by their position from the top of the stack.
type Binders struct {
	unique *Unique
	names  []string
}

// Binders returns an empty stack of binders
// whose names are unique for the generator.
func (n *Unique) Binders() *Binders {
	return &Binders{unique: n}
}

// Push a new binder with a unique name derived from root.
// The receiver is not modified.
func (b *Binders) Push(root string) (string, *Binders) {
	name := b.unique.Name(root)
	return name, &Binders{
		unique: b.unique,
		names:  append(slices.Clip(b.names), name),
	}
}

// At returns the name of the binder at a position from the top of the stack.
func (b *Binders) At(index int) (string, bool) {
	if index < 0 || index >= len(b.names) {
		return "", false
	}
	return b.names[len(b.names)-1-index], true
}

// Len returns the number of binders in the stack.
func (b *Binders) Len() int {
	return len(b.names)
}
