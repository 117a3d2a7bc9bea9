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

// Package stable observes the identity of expression nodes.
//
// Every node is stamped with an ID when it is constructed. Two nodes built
// separately never share an ID, even if they are structurally identical, so
// the ID can be used to detect that the same node instance is reachable
// through several paths.
package stable

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/gx-org/arrlang/base/ordered"
	"github.com/gx-org/arrlang/base/stringseq"
)

// ID identifies a node instance.
type ID uint64

var lastID atomic.Uint64

// NewID returns an identifier never returned before in this process.
func NewID() ID {
	return ID(lastID.Add(1))
}

// Key is the identity of a node instance observed during a traversal
// together with the height of its subtree.
// A node can never be a strict subterm of a node with a lesser or equal height.
type Key struct {
	ID     ID
	Height int
}

// Same returns true if both keys identify the same instance.
func (k Key) Same(other Key) bool {
	return k.ID == other.ID
}

// Before returns true if k is ordered before other in a list of pending bindings.
// Higher nodes come first. Nodes of the same height, which cannot be
// subterms of each other, are ordered by decreasing ID.
func (k Key) Before(other Key) bool {
	if k.Height != other.Height {
		return k.Height > other.Height
	}
	return k.ID > other.ID
}

func (k Key) String() string {
	return fmt.Sprintf("#%d^%d", k.ID, k.Height)
}

// Occ records how many times a node instance has been found
// in the unfolded tree and the height of its subtree.
type Occ struct {
	Count  int
	Height int
}

// OccMap is the immutable result of an occurrence count.
type OccMap struct {
	occs *ordered.Map[ID, Occ]
}

// Lookup returns the occurrence of a node instance.
func (m *OccMap) Lookup(id ID) (Occ, bool) {
	if m == nil {
		return Occ{}, false
	}
	return m.occs.Load(id)
}

// Count returns the number of times a node instance has been found.
// It returns 0 for an unknown instance.
func (m *OccMap) Count(id ID) int {
	occ, _ := m.Lookup(id)
	return occ.Count
}

// Len returns the number of distinct instances in the map.
func (m *OccMap) Len() int {
	if m == nil {
		return 0
	}
	return m.occs.Size()
}

// Shared returns the sorted IDs of all the instances found more than once.
func (m *OccMap) Shared() []ID {
	var ids []ID
	if m == nil {
		return ids
	}
	for id, occ := range m.occs.Iter() {
		if occ.Count > 1 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (m *OccMap) String() string {
	if m.Len() == 0 {
		return "{}"
	}
	occs := stringseq.JoinPairs(m.occs.Iter(), "\n", func(id ID, occ Occ) string {
		return fmt.Sprintf("#%d: count=%d height=%d", id, occ.Count, occ.Height)
	})
	return "{\n" + occs + "\n}"
}

// State of a node instance when it is entered in a table.
type State int

const (
	// Unseen is the first visit of an instance.
	Unseen State = iota
	// Seen means that the instance has been fully visited before.
	Seen
	// Pending means that the instance is being visited: the node refers to itself.
	Pending
)

type entry[T any] struct {
	occ     Occ
	pending bool
	info    T
}

// Table is the mutable working table of a traversal.
// It associates each node instance with its occurrence count
// and some information T computed when the instance is visited first.
type Table[T any] struct {
	entries *ordered.Map[ID, *entry[T]]
	recover bool
}

// NewTable returns a new empty table.
// If recover is false, every visit is considered as the first visit of
// a fresh instance: no sharing is recovered.
func NewTable[T any](recover bool) *Table[T] {
	return &Table[T]{
		entries: ordered.NewMap[ID, *entry[T]](),
		recover: recover,
	}
}

// Enter records a visit of a node instance.
// It returns the key under which the visit has been recorded and the state
// of the instance before the visit. For Seen instances, the information
// recorded when the instance was finished is also returned.
func (t *Table[T]) Enter(id ID) (Key, State, T) {
	if !t.recover {
		id = NewID()
	}
	e, seen := t.entries.LoadOrStore(id, func() *entry[T] {
		return &entry[T]{pending: true}
	})
	e.occ.Count++
	if !seen {
		return Key{ID: id}, Unseen, e.info
	}
	if e.pending {
		return Key{ID: id}, Pending, e.info
	}
	return Key{ID: id, Height: e.occ.Height}, Seen, e.info
}

// Finish records the height and the information of an instance after its first visit.
func (t *Table[T]) Finish(key Key, info T) Key {
	e, ok := t.entries.Load(key.ID)
	if !ok {
		return key
	}
	e.occ.Height = key.Height
	e.pending = false
	e.info = info
	return key
}

// Freeze returns the occurrence map of all the instances entered in the table.
func (t *Table[T]) Freeze() *OccMap {
	occs := ordered.NewMap[ID, Occ]()
	for id, e := range t.entries.Iter() {
		occs.Store(id, e.occ)
	}
	return &OccMap{occs: occs}
}
