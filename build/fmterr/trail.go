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

package fmterr

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Trail records where a traversal is in a tree.
// Each step is pushed when the traversal enters a node and popped
// when it leaves it. Errors built from the trail are prefixed with
// the path from the root to the current node.
type Trail struct {
	steps []string
}

// Push a new step in the trail.
func (t *Trail) Push(format string, a ...any) {
	t.steps = append(t.steps, fmt.Sprintf(format, a...))
}

// Pop removes the last step of the trail.
func (t *Trail) Pop() {
	t.steps = t.steps[:len(t.steps)-1]
}

// Depth returns the number of steps in the trail.
func (t *Trail) Depth() int {
	return len(t.steps)
}

func pathString(steps []string) string {
	if len(steps) == 0 {
		return "<root>"
	}
	return strings.Join(steps, "/")
}

// String returns the path from the root as a string.
func (t *Trail) String() string {
	return pathString(t.steps)
}

// trailError is an error located at a step of a traversal.
type trailError struct {
	steps []string
	err   error
}

// Wrap prefixes an error with the trail.
// The steps are kept in the error and listed when the error is printed with %+v.
func (t *Trail) Wrap(err error) error {
	if err == nil {
		return nil
	}
	return trailError{steps: slices.Clone(t.steps), err: err}
}

// Internalf returns an internal error at the current position of the trail.
func (t *Trail) Internalf(format string, a ...any) error {
	return Internal(t.Wrap(errors.Errorf(format, a...)))
}

// Userf returns a user error of a given kind at the current position of the trail.
func (t *Trail) Userf(kind error, format string, a ...any) error {
	return User(kind, t.Wrap(errors.Errorf(format, a...)))
}

// Steps returns the steps from the root to the node where err occurred.
// It returns false if err has not been built from a trail.
func Steps(err error) ([]string, bool) {
	var located trailError
	if !errors.As(err, &located) {
		return nil, false
	}
	return located.steps, true
}

func (err trailError) Error() string {
	return pathString(err.steps) + ": " + err.err.Error()
}

func (err trailError) Unwrap() error {
	return err.err
}

func (err trailError) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}
