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
	"fmt"
	"slices"

	"github.com/gx-org/arrlang/base/stringseq"
	"github.com/gx-org/arrlang/build/fmterr"
	"github.com/gx-org/arrlang/internal/stable"
)

// candidate is a shared node waiting for its binding.
type candidate[N any] struct {
	key stable.Key
	// count is the number of occurrences found so far.
	count int
	// def is the concrete definition of the node, if it has been found.
	def     N
	defined bool
}

func (c candidate[N]) String() string {
	def := ""
	if c.defined {
		def = "*"
	}
	return fmt.Sprintf("%s%s:%d", c.key, def, c.count)
}

// candidates is a list of candidates ordered by stable.Key.Before.
// A node always comes before its subterms.
type candidates[N any] []candidate[N]

func refCandidate[N any](key stable.Key) candidates[N] {
	return candidates[N]{{key: key, count: 1}}
}

func defCandidate[N any](key stable.Key, def N) candidates[N] {
	return candidates[N]{{key: key, count: 1, def: def, defined: true}}
}

// merge two ordered lists.
// Candidates for the same node are combined in a single candidate.
func merge[N any](x, y candidates[N]) candidates[N] {
	if len(x) == 0 {
		return y
	}
	if len(y) == 0 {
		return x
	}
	out := make(candidates[N], 0, len(x)+len(y))
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		cx, cy := x[i], y[j]
		switch {
		case cx.key.Same(cy.key):
			cx.count += cy.count
			if !cx.defined {
				cx.def, cx.defined = cy.def, cy.defined
			}
			out = append(out, cx)
			i++
			j++
		case cx.key.Before(cy.key):
			out = append(out, cx)
			i++
		default:
			out = append(out, cy)
			j++
		}
	}
	out = append(out, x[i:]...)
	return append(out, y[j:]...)
}

// extract removes the longest run of complete candidates at the front of the list.
// A candidate is complete when all the occurrences of its node have been found.
// The first candidate of the run must be bound innermost.
func (cs candidates[N]) extract(occ *stable.OccMap) (run, rest candidates[N], err error) {
	n := 0
	for ; n < len(cs); n++ {
		c := cs[n]
		want := occ.Count(c.key.ID)
		if c.count > want {
			return nil, nil, fmterr.Internalf("node %s found %d times but counted %d times", c.key, c.count, want)
		}
		if c.count < want {
			break
		}
		if !c.defined {
			return nil, nil, fmterr.Internalf("node %s has no concrete definition", c.key)
		}
	}
	return cs[:n], cs[n:], nil
}

func (cs candidates[N]) String() string {
	return "[" + stringseq.JoinStringer(slices.Values(cs), " ") + "]"
}
