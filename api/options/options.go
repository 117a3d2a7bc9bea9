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

// Package options specifies options for converting programs.
package options

import (
	"github.com/gx-org/arrlang/api/trace"
	"github.com/xyproto/env/v2"
)

// Environment variables overriding the default options.
const (
	// EnvNoAccSharing disables sharing recovery for array computations.
	EnvNoAccSharing = "ARRLANG_NO_ACC_SHARING"
	// EnvNoExpSharing disables sharing recovery for scalar expressions.
	EnvNoExpSharing = "ARRLANG_NO_EXP_SHARING"
	// EnvNoFloating keeps array computations nested in scalar expressions.
	EnvNoFloating = "ARRLANG_NO_FLOATING"
)

type (
	// Options of a conversion.
	Options struct {
		// AccSharing recovers the sharing of array computations.
		// If false, shared array computations are duplicated.
		AccSharing bool
		// ExpSharing recovers the sharing of scalar expressions.
		// If false, shared scalar expressions are duplicated.
		ExpSharing bool
		// Floating binds every array computation nested in a scalar expression
		// outside of that expression, even if it is not shared.
		Floating bool
		// Trace, if not nil, is called for every node visited
		// while counting occurrences.
		Trace trace.Callback
	}

	// Option modifies the options of a conversion.
	Option func(*Options)
)

// Default returns the default options.
// All features are enabled unless disabled by an environment variable.
func Default() *Options {
	return &Options{
		AccSharing: !env.Bool(EnvNoAccSharing),
		ExpSharing: !env.Bool(EnvNoExpSharing),
		Floating:   !env.Bool(EnvNoFloating),
	}
}

// New returns the default options modified by a list of options.
func New(opts ...Option) *Options {
	o := Default()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithAccSharing enables or disables sharing recovery for array computations.
func WithAccSharing(enable bool) Option {
	return func(o *Options) {
		o.AccSharing = enable
	}
}

// WithExpSharing enables or disables sharing recovery for scalar expressions.
func WithExpSharing(enable bool) Option {
	return func(o *Options) {
		o.ExpSharing = enable
	}
}

// WithFloating enables or disables floating array computations out of scalar expressions.
func WithFloating(enable bool) Option {
	return func(o *Options) {
		o.Floating = enable
	}
}

// WithTrace sets a callback called for every visited node.
func WithTrace(cb trace.Callback) Option {
	return func(o *Options) {
		o.Trace = cb
	}
}
