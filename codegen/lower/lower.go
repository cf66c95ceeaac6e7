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

// Package lower builds kernels from views on tensor buffers.
package lower

import (
	"go/token"
	"slices"

	"github.com/pkg/errors"
	"github.com/gx-org/tensoru/codegen/ir"
	"github.com/gx-org/tensoru/scalar"
	"github.com/gx-org/tensoru/shape"
)

// Offset returns the expression computing the offset of an element in a buffer
// given the registers indexing each axis of a view.
func Offset(view *shape.View, indices []ir.Declaration) (ir.Expr, error) {
	if len(indices) != view.Rank() {
		return nil, errors.Wrapf(shape.ErrRankMismatch, "got %d indices for %s: expected rank %d", len(indices), view, view.Rank())
	}
	strides := view.Strides()
	offset := ir.Imm(0)
	for i, index := range indices {
		offset = ir.Add(offset, ir.Mul(ir.Load(index), ir.Imm(float64(strides[i]))))
	}
	return offset, nil
}

// loops opens one loop per axis of a shape, the first axis being the outermost.
// It returns the innermost block and the index of each loop.
func loops(block *ir.BlockBuilder, axes []int) (*ir.BlockBuilder, []ir.Declaration) {
	indices := make([]ir.Declaration, len(axes))
	for i, n := range axes {
		indices[i], block = block.NewRange(ir.Range{End: n})
	}
	return block, indices
}

// Materialize returns a kernel copying the elements of a view into a contiguous buffer.
//
// The input argument is the buffer the view points into and the output a
// contiguous buffer of the same shape. The kernel is used to reshape views
// that cannot be reshaped without moving data.
func Materialize(name string, elem scalar.Type, view *shape.View) (*ir.Kernel, error) {
	kb := ir.NewKernelBuilder(name)
	in := kb.AddInput(ir.Vector(elem, view.StorageSize()))
	out := kb.AddOutput(ir.Vector(elem, view.Size()))
	root := kb.NewBlock()
	body, indices := loops(root, view.Shape())
	src, err := Offset(view, indices)
	if err != nil {
		return nil, err
	}
	dst, err := Offset(shape.FromShape(view.Shape()), indices)
	if err != nil {
		return nil, err
	}
	body.Affect(ir.AtRef(out, dst), ir.At(in, src))
	return kb.Finalize(root), nil
}

// Binary returns a kernel applying an arithmetic operator to each pair of elements of two views.
// The result is written to a contiguous buffer.
func Binary(name string, elem scalar.Type, op token.Token, x, y *shape.View) (*ir.Kernel, error) {
	if !ir.IsArithmetic(op) {
		return nil, errors.Errorf("operator %s not supported", op)
	}
	if !slices.Equal(x.Shape(), y.Shape()) {
		return nil, errors.Wrapf(shape.ErrSizeMismatch, "cannot apply %s to %s and %s: expected shape %v", op, x, y, x.Shape())
	}
	kb := ir.NewKernelBuilder(name)
	xArg := kb.AddInput(ir.Vector(elem, x.StorageSize()))
	yArg := kb.AddInput(ir.Vector(elem, y.StorageSize()))
	out := kb.AddOutput(ir.Vector(elem, x.Size()))
	root := kb.NewBlock()
	body, indices := loops(root, x.Shape())
	xOffset, err := Offset(x, indices)
	if err != nil {
		return nil, err
	}
	yOffset, err := Offset(y, indices)
	if err != nil {
		return nil, err
	}
	dst, err := Offset(shape.FromShape(x.Shape()), indices)
	if err != nil {
		return nil, err
	}
	value := &ir.BinaryExpr{
		Op: op,
		X:  ir.At(xArg, xOffset),
		Y:  ir.At(yArg, yOffset),
	}
	body.Affect(ir.AtRef(out, dst), value)
	return kb.Finalize(root), nil
}
