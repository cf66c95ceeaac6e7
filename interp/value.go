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
	"go/token"
	"strconv"

	"github.com/pkg/errors"
	"github.com/gx-org/tensoru/scalar"
	"golang.org/x/exp/constraints"
)

// value is a number computed by a kernel.
// Integers are stored in i and floating point numbers in f.
type value struct {
	float bool
	i     int64
	f     float64
}

func intValue(i int64) value {
	return value{i: i}
}

func floatValue(f float64) value {
	return value{float: true, f: f}
}

func (v value) toFloat() float64 {
	if v.float {
		return v.f
	}
	return float64(v.i)
}

func (v value) toInt() int64 {
	if v.float {
		return int64(v.f)
	}
	return v.i
}

func (v value) String() string {
	if v.float {
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return strconv.FormatInt(v.i, 10)
}

// convert a value to the type of a register, as an assignment in C would.
func convert(v value, t scalar.Type) (value, error) {
	switch t {
	case scalar.F32:
		return floatValue(float64(float32(v.toFloat()))), nil
	case scalar.F64:
		return floatValue(v.toFloat()), nil
	case scalar.I32:
		return intValue(int64(int32(v.toInt()))), nil
	case scalar.U32:
		return intValue(int64(uint32(v.toInt()))), nil
	case scalar.F16:
		return value{}, errors.Errorf("half precision floats are not supported")
	}
	return value{}, errors.Errorf("cannot convert %s to %s", v, t)
}

func apply[T constraints.Integer | constraints.Float](op token.Token, x, y T) T {
	switch op {
	case token.ADD:
		return x + y
	case token.SUB:
		return x - y
	case token.MUL:
		return x * y
	case token.QUO:
		return x / y
	}
	panic(errors.Errorf("operator %s not supported", op))
}

// binary applies an operator to two values.
// The result is a float if one of the operand is a float.
// Integer divisions are truncated.
func binary(op token.Token, x, y value) (value, error) {
	if x.float || y.float {
		return floatValue(apply(op, x.toFloat(), y.toFloat())), nil
	}
	if op == token.QUO && y.i == 0 {
		return value{}, errors.Errorf("integer division by zero")
	}
	return intValue(apply(op, x.i, y.i)), nil
}
