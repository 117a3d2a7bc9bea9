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

// Package irkind defines element kinds and types for the array language IR.
package irkind

import "github.com/gx-org/backend/dtype"

// Kind of a scalar element.
type Kind uint

// DefaultInt is the kind used for shape dimensions and sizes.
const DefaultInt = Int64

// Kind of data supported by the language.
const (
	Invalid = Kind(dtype.Invalid)

	Bool     = Kind(dtype.Bool)
	Int32    = Kind(dtype.Int32)
	Int64    = Kind(dtype.Int64)
	Uint32   = Kind(dtype.Uint32)
	Uint64   = Kind(dtype.Uint64)
	Bfloat16 = Kind(dtype.Bfloat16)
	Float32  = Kind(dtype.Float32)
	Float64  = Kind(dtype.Float64)
)

// String returns a string representation of a kind.
func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Bfloat16:
		return "bfloat16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return "invalid"
}

// DType converts a kind into a backend data type.
func (k Kind) DType() dtype.DataType {
	if k >= Kind(dtype.MaxDataType) {
		return dtype.Invalid
	}
	return dtype.DataType(k)
}

// FromDType returns the kind of a backend data type.
// Data types without a matching kind return Invalid.
func FromDType(dt dtype.DataType) Kind {
	k := Kind(dt)
	if k.String() == "invalid" {
		return Invalid
	}
	return k
}

// KindGeneric returns the kind of a Go type.
// If the type is not supported, an invalid kind is returned.
func KindGeneric[T dtype.GoDataType]() Kind {
	return FromDType(dtype.Generic[T]())
}

// KindFromString returns a kind given its name.
func KindFromString(ident string) Kind {
	switch ident {
	case "bool":
		return Bool
	case "bfloat16":
		return Bfloat16
	case "float32":
		return Float32
	case "float64":
		return Float64
	case "int32":
		return Int32
	case "int64":
		return Int64
	case "uint32":
		return Uint32
	case "uint64":
		return Uint64
	default:
		return Invalid
	}
}

// IsIntegerKind return true if kind is an integer.
func IsIntegerKind(kind Kind) bool {
	switch kind {
	case Int32, Int64, Uint32, Uint64:
		return true
	}
	return false
}

// IsFloatKind returns true if kind is a float.
func IsFloatKind(kind Kind) bool {
	switch kind {
	case Bfloat16, Float32, Float64:
		return true
	}
	return false
}

// IsNumericKind returns true if arithmetic is defined on the kind.
func IsNumericKind(kind Kind) bool {
	return IsIntegerKind(kind) || IsFloatKind(kind)
}
