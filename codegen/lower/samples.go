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

package lower

import (
	"github.com/gx-org/tensoru/codegen/ir"
	"github.com/gx-org/tensoru/scalar"
)

// Copy returns a kernel copying n float32 from its input to its output.
func Copy(n int) *ir.Kernel {
	kb := ir.NewKernelBuilder("copy")
	in := kb.AddInput(ir.Vector(scalar.F32, n))
	out := kb.AddOutput(ir.Vector(scalar.F32, n))
	root := kb.NewBlock()
	i, body := root.NewRange(ir.Range{End: n})
	body.Affect(ir.AtRef(out, ir.Load(i)), ir.At(in, ir.Load(i)))
	return kb.Finalize(root)
}

// VectorAdd returns a kernel adding two vectors of n float32.
func VectorAdd(n int) *ir.Kernel {
	kb := ir.NewKernelBuilder("vector_add")
	x := kb.AddInput(ir.Vector(scalar.F32, n))
	y := kb.AddInput(ir.Vector(scalar.F32, n))
	out := kb.AddOutput(ir.Vector(scalar.F32, n))
	root := kb.NewBlock()
	i, body := root.NewRange(ir.Range{End: n})
	sum := body.Define(ir.Scalar(scalar.F32), ir.Add(ir.At(x, ir.Load(i)), ir.At(y, ir.Load(i))))
	body.Affect(ir.AtRef(out, ir.Load(i)), ir.Load(sum))
	return kb.Finalize(root)
}

// SimpleReduce returns a kernel summing n float32 into the single element of its output.
func SimpleReduce(n int) *ir.Kernel {
	kb := ir.NewKernelBuilder("reduce")
	in := kb.AddInput(ir.Vector(scalar.F32, n))
	out := kb.AddOutput(ir.Vector(scalar.F32, 1))
	root := kb.NewBlock()
	acc := root.Define(ir.Scalar(scalar.F32), ir.Imm(0))
	i, body := root.NewRange(ir.Range{End: n})
	body.Affect(ir.Reg(acc), ir.Add(ir.Load(acc), ir.At(in, ir.Load(i))))
	root.Affect(ir.AtRef(out, ir.Imm(0)), ir.Load(acc))
	return kb.Finalize(root)
}
