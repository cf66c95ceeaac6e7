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

package ir

import (
	"fmt"

	"github.com/gx-org/tensoru/scalar"
)

// Type of a register: either a scalar or a vector of scalars.
// A vector register holds the address of its first element.
type Type struct {
	// Elem is the type of the scalar or of the vector elements.
	Elem scalar.Type
	// Len is the number of elements of a vector.
	Len int
	// Vector is true if the register points to Len elements.
	Vector bool
}

// Scalar returns a scalar type.
func Scalar(elem scalar.Type) Type {
	return Type{Elem: elem}
}

// Vector returns the type of a vector of n elements.
func Vector(elem scalar.Type, n int) Type {
	return Type{Elem: elem, Len: n, Vector: true}
}

// IndexType is the type of loop indices.
func IndexType() Type {
	return Scalar(scalar.U32)
}

// String representation of the type.
func (t Type) String() string {
	if t.Vector {
		return fmt.Sprintf("[%d]%s", t.Len, t.Elem)
	}
	return t.Elem.String()
}
