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

// Package scalar defines the element types a kernel can operate on.
//
// Types shared with the backend are aliased to their
// [github.com/gx-org/backend/dtype] value so that the two can be
// converted without a lookup table.
package scalar

import "github.com/gx-org/backend/dtype"

// Type of a scalar element.
type Type uint

// Element types supported by kernels.
const (
	Invalid = Type(dtype.Invalid)

	I32 = Type(dtype.Int32)
	U32 = Type(dtype.Uint32)
	F32 = Type(dtype.Float32)
	F64 = Type(dtype.Float64)

	// F16 is an IEEE 754 half precision float.
	// The backend has no half type so F16 lives above its data types.
	F16 = Type(iota + dtype.MaxDataType)
)

// All returns all valid element types.
func All() []Type {
	return []Type{F16, F32, F64, U32, I32}
}

// String returns the name of the element type.
func (t Type) String() string {
	switch t {
	case F16:
		return "half"
	case F32:
		return "float32"
	case F64:
		return "float64"
	case U32:
		return "uint32"
	case I32:
		return "int32"
	}
	return "invalid"
}

// IsValid returns true if the type is one of the supported element types.
func (t Type) IsValid() bool {
	switch t {
	case F16, F32, F64, U32, I32:
		return true
	}
	return false
}

// DType converts an element type to a backend data type.
// F16 has no backend equivalent and returns dtype.Invalid.
func (t Type) DType() dtype.DataType {
	if t == F16 || !t.IsValid() {
		return dtype.Invalid
	}
	return dtype.DataType(t)
}

// Sizeof returns the number of bytes occupied by one element.
func (t Type) Sizeof() int {
	switch t {
	case F16:
		return 2
	case F32, F64, U32, I32:
		return dtype.Sizeof(t.DType())
	}
	return 0
}

// IsFloat returns true if the type is a floating point type.
func (t Type) IsFloat() bool {
	switch t {
	case F16, F32, F64:
		return true
	}
	return false
}

// IsInteger returns true if the type is an integer type.
func (t Type) IsInteger() bool {
	return t == U32 || t == I32
}

// FromDType returns the element type for a backend data type.
// It returns Invalid if the data type is not supported by kernels.
func FromDType(dt dtype.DataType) Type {
	t := Type(dt)
	if t == F16 || !t.IsValid() {
		return Invalid
	}
	return t
}

// GoType is the set of Go types with an element type.
// Half precision floats have no Go equivalent.
type GoType interface {
	float32 | float64 | int32 | uint32
}

// Generic returns the element type of a Go type.
func Generic[T GoType]() Type {
	return FromDType(dtype.Generic[T]())
}
