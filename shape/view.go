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

// Package shape describes how the elements of a tensor are laid out in a flat buffer.
//
// A [View] maps a multi-dimensional logical index to a buffer offset
// with a shape and a stride per axis. Strides are counted in elements, not bytes.
// Axes of length 1 always have a stride of 0.
package shape

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// View of a buffer as a multi-dimensional array.
// A view is immutable.
type View struct {
	shape      []int
	strides    []int
	contiguous bool
}

// rowMajorStrides returns the strides of a contiguous layout of a shape.
func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return fixUnitStrides(shape, strides)
}

// fixUnitStrides sets the stride of all the axes of length 1 to 0.
func fixUnitStrides(shape, strides []int) []int {
	for i, n := range shape {
		if n == 1 {
			strides[i] = 0
		}
	}
	return strides
}

func product(shape []int) int {
	size := 1
	for _, n := range shape {
		size *= n
	}
	return size
}

// FromShape returns a contiguous row-major view of a shape.
func FromShape(shape []int) *View {
	shape = slices.Clone(shape)
	return &View{
		shape:      shape,
		strides:    rowMajorStrides(shape),
		contiguous: true,
	}
}

// New returns a view given a shape and the stride of each axis.
func New(shape, strides []int) (*View, error) {
	if len(shape) != len(strides) {
		return nil, errors.Wrapf(ErrRankMismatch, "got %d strides for a shape of rank %d: expected rank %d", len(strides), len(shape), len(shape))
	}
	shape = slices.Clone(shape)
	strides = fixUnitStrides(shape, slices.Clone(strides))
	return &View{
		shape:      shape,
		strides:    strides,
		contiguous: slices.Equal(strides, rowMajorStrides(shape)),
	}, nil
}

// Shape returns the length of each axis.
func (v *View) Shape() []int {
	return slices.Clone(v.shape)
}

// Strides returns the stride of each axis.
func (v *View) Strides() []int {
	return slices.Clone(v.strides)
}

// Rank returns the number of axes.
func (v *View) Rank() int {
	return len(v.shape)
}

// Size returns the number of elements in the view.
func (v *View) Size() int {
	return product(v.shape)
}

// StorageSize returns the number of elements spanned by the view in its buffer,
// that is one more than the largest offset the view can address.
func (v *View) StorageSize() int {
	if v.Size() == 0 {
		return 0
	}
	last := 0
	for i, n := range v.shape {
		last += (n - 1) * v.strides[i]
	}
	return last + 1
}

// IsContiguous returns true if the strides are the row-major strides of the shape.
func (v *View) IsContiguous() bool {
	return v.contiguous
}

// Equal returns true if two views have the same shape and strides.
func (v *View) Equal(other *View) bool {
	return slices.Equal(v.shape, other.shape) && slices.Equal(v.strides, other.strides)
}

// IndexingExpr returns the expression addressing an element of a buffer given
// the name of the variable indexing each axis.
func (v *View) IndexingExpr(buffer string, indices []string) (string, error) {
	if len(indices) != len(v.shape) {
		return "", errors.Wrapf(ErrRankMismatch, "got %d indices for a view of rank %d: expected rank %d", len(indices), len(v.shape), len(v.shape))
	}
	var offset strings.Builder
	offset.WriteString("0")
	for i, index := range indices {
		fmt.Fprintf(&offset, " + %s * %d", index, v.strides[i])
	}
	return fmt.Sprintf("%s[%s]", buffer, offset.String()), nil
}

func checkPermutation(rank int, permutation []int) error {
	if len(permutation) != rank {
		return errors.Wrapf(ErrInvalidPermutation, "permutation %v has %d axes: expected a bijection on [0,%d)", permutation, len(permutation), rank)
	}
	seen := make([]bool, rank)
	for _, axis := range permutation {
		if axis < 0 || axis >= rank {
			return errors.Wrapf(ErrInvalidPermutation, "axis %d in permutation %v out of range: expected a bijection on [0,%d)", axis, permutation, rank)
		}
		if seen[axis] {
			return errors.Wrapf(ErrInvalidPermutation, "axis %d repeated in permutation %v: expected a bijection on [0,%d)", axis, permutation, rank)
		}
		seen[axis] = true
	}
	return nil
}

// PermuteAxes returns a view where axis i is the axis permutation[i] of v.
// No data is moved: only the shape and the strides are reordered.
func (v *View) PermuteAxes(permutation []int) (*View, error) {
	if err := checkPermutation(len(v.shape), permutation); err != nil {
		return nil, err
	}
	shape := make([]int, len(permutation))
	strides := make([]int, len(permutation))
	for i, axis := range permutation {
		shape[i] = v.shape[axis]
		strides[i] = v.strides[axis]
	}
	return New(shape, strides)
}

// InversePermutation returns the permutation undoing a permutation.
func InversePermutation(permutation []int) ([]int, error) {
	if err := checkPermutation(len(permutation), permutation); err != nil {
		return nil, err
	}
	inv := make([]int, len(permutation))
	for i, axis := range permutation {
		inv[axis] = i
	}
	return inv, nil
}

// Reshape returns a view of the same buffer with a new shape.
//
// The view is returned unchanged if the shape does not change.
// Otherwise, only contiguous views can be reshaped: ok is false
// if the data needs to be copied into a contiguous buffer first.
// Non-contiguous views are rejected even when a stride rewrite could
// express the new shape.
func (v *View) Reshape(newShape []int) (rv *View, ok bool, err error) {
	if slices.Equal(v.shape, newShape) {
		return v, true, nil
	}
	if got, want := product(newShape), v.Size(); got != want {
		return nil, false, errors.Wrapf(ErrSizeMismatch, "cannot reshape %v into %v: expected size %d but got %d", v.shape, newShape, want, got)
	}
	if !v.contiguous {
		return nil, false, nil
	}
	return FromShape(newShape), true, nil
}

// String representation of the view.
func (v *View) String() string {
	return fmt.Sprintf("View{shape: %v, strides: %v}", v.shape, v.strides)
}
