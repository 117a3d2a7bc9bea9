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

	"github.com/pkg/errors"
)

var (
	// ErrInternal matches all errors caused by a bug in the conversion.
	ErrInternal = errors.New("internal error")

	// ErrCyclicDefinition matches a value defined in terms of itself.
	ErrCyclicDefinition = errors.New("cyclic definition")

	// ErrEscapingVariable matches a function parameter used outside of its function,
	// typically by an array computation nested in a scalar function.
	ErrEscapingVariable = errors.New("variable used outside of its scope")

	// ErrIllTyped matches an expression whose children have unexpected types.
	ErrIllTyped = errors.New("ill-typed expression")
)

type (
	internalError struct {
		err error
	}

	userError struct {
		kind error
		err  error
	}
)

// Internal marks an error as internal.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInternal) {
		return err
	}
	return internalError{err: err}
}

// Internalf returns a formatted internal error.
func Internalf(format string, a ...any) error {
	return Internal(errors.Errorf(format, a...))
}

func (err internalError) Error() string {
	return fmt.Sprintf("arrlang internal error. This is a bug. Please report it. Error:\n%s", err.err.Error())
}

func (err internalError) Is(target error) bool {
	return target == ErrInternal
}

func (err internalError) Unwrap() error {
	return err.err
}

func (err internalError) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}

// User marks an error as a user error of a given kind.
// kind is one of the sentinel errors of this package.
func User(kind, err error) error {
	if err == nil {
		return nil
	}
	return userError{kind: kind, err: err}
}

// Userf returns a formatted user error of a given kind.
func Userf(kind error, format string, a ...any) error {
	return User(kind, errors.Errorf(format, a...))
}

func (err userError) Error() string {
	return err.kind.Error() + ": " + err.err.Error()
}

func (err userError) Is(target error) bool {
	return target == err.kind
}

func (err userError) Unwrap() error {
	return err.err
}

func (err userError) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}
