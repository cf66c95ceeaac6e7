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

package interp

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/gx-org/tensoru/scalar"
)

// memory is the content of a buffer bound to a vector argument.
type memory interface {
	len() int
	load(i int) value
	store(i int, v value)
}

type typedMemory[T scalar.GoType] struct {
	float bool
	vals  []T
}

func newTypedMemory[T scalar.GoType](elem scalar.Type, data []byte) *typedMemory[T] {
	var vals []T
	if len(data) > 0 {
		vals = unsafe.Slice((*T)(unsafe.Pointer(&data[0])), len(data)/elem.Sizeof())
	}
	return &typedMemory[T]{float: elem.IsFloat(), vals: vals}
}

func (m *typedMemory[T]) len() int {
	return len(m.vals)
}

func (m *typedMemory[T]) load(i int) value {
	if m.float {
		return floatValue(float64(m.vals[i]))
	}
	return intValue(int64(m.vals[i]))
}

func (m *typedMemory[T]) store(i int, v value) {
	if m.float {
		m.vals[i] = T(v.f)
		return
	}
	m.vals[i] = T(v.i)
}

func newMemory(elem scalar.Type, data []byte) (memory, error) {
	switch elem {
	case scalar.F32:
		return newTypedMemory[float32](elem, data), nil
	case scalar.F64:
		return newTypedMemory[float64](elem, data), nil
	case scalar.I32:
		return newTypedMemory[int32](elem, data), nil
	case scalar.U32:
		return newTypedMemory[uint32](elem, data), nil
	case scalar.F16:
		return nil, errors.Errorf("half precision floats are not supported")
	}
	return nil, errors.Errorf("element type %s not supported", elem)
}
