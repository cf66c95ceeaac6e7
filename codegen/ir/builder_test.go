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

package ir_test

import (
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/tensoru/codegen/ir"
	"github.com/gx-org/tensoru/scalar"
)

func collectRegs(block *ir.Block, regs []ir.RegID) []ir.RegID {
	for _, stmt := range block.Stmts {
		switch stmtT := stmt.(type) {
		case *ir.DefineStmt:
			regs = append(regs, stmtT.Decl.Reg)
		case *ir.RangeStmt:
			regs = append(regs, stmtT.Index.Reg)
			regs = collectRegs(stmtT.Body, regs)
		}
	}
	return regs
}

func TestRegistersAreUnique(t *testing.T) {
	kb := ir.NewKernelBuilder("nested")
	in := kb.AddInput(ir.Vector(scalar.F32, 16))
	out := kb.AddOutput(ir.Vector(scalar.F32, 16))
	root := kb.NewBlock()
	i, outer := root.NewRange(ir.Range{End: 4})
	j, inner := outer.NewRange(ir.Range{End: 4})
	offset := inner.Define(ir.IndexType(), ir.Add(ir.Mul(ir.Load(i), ir.Imm(4)), ir.Load(j)))
	val := inner.Define(ir.Scalar(scalar.F32), ir.At(in, ir.Load(offset)))
	inner.Affect(ir.AtRef(out, ir.Load(offset)), ir.Load(val))
	k := kb.Finalize(root)

	got := []ir.RegID{in.Reg, out.Reg}
	got = collectRegs(k.Body, got)
	want := []ir.RegID{0, 1, 2, 3, 4, 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected registers (-want +got):\n%s", diff)
	}
	if err := ir.Validate(k); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestKernelStructure(t *testing.T) {
	kb := ir.NewKernelBuilder("copy")
	in := kb.AddInput(ir.Vector(scalar.F32, 8))
	out := kb.AddOutput(ir.Vector(scalar.F32, 8))
	root := kb.NewBlock()
	i, body := root.NewRange(ir.Range{End: 8})
	body.Affect(ir.AtRef(out, ir.Load(i)), ir.At(in, ir.Load(i)))
	k := kb.Finalize(root)

	if k.Name != "copy" {
		t.Errorf("got name %q but want %q", k.Name, "copy")
	}
	if diff := cmp.Diff([]ir.Declaration{in}, k.Inputs()); diff != "" {
		t.Errorf("unexpected inputs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ir.Declaration{out}, k.Outputs()); diff != "" {
		t.Errorf("unexpected outputs (-want +got):\n%s", diff)
	}
	if !in.Const || out.Const {
		t.Errorf("got input const=%v output const=%v", in.Const, out.Const)
	}
	if len(k.Body.Stmts) != 1 {
		t.Fatalf("got %d statements but want 1", len(k.Body.Stmts))
	}
	rng, ok := k.Body.Stmts[0].(*ir.RangeStmt)
	if !ok {
		t.Fatalf("got statement %T but want %T", k.Body.Stmts[0], rng)
	}
	if rng.Index.Const {
		t.Errorf("loop index %s should be assignable", rng.Index)
	}
	if rng.Index.Type != ir.IndexType() {
		t.Errorf("got index type %s but want %s", rng.Index.Type, ir.IndexType())
	}
	if rng.Range.Len() != 8 {
		t.Errorf("got range length %d but want 8", rng.Range.Len())
	}
	if len(rng.Body.Stmts) != 1 {
		t.Errorf("got %d statements in the loop body but want 1", len(rng.Body.Stmts))
	}
	want := `kernel copy(r0 const [8]float32, r1 [8]float32) {
	for r2 in 0..8 {
		r1[r2] = r0[r2]
	}
}`
	if got := k.String(); got != want {
		t.Errorf("got:\n%s\nbut want:\n%s", got, want)
	}
}

func TestEmptyKernel(t *testing.T) {
	kb := ir.NewKernelBuilder("empty")
	k := kb.Finalize(kb.NewBlock())
	if len(k.Args) != 0 || len(k.Body.Stmts) != 0 {
		t.Errorf("got %s but want an empty kernel", k)
	}
}

func expectMisuse(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("%s: no panic", name)
			return
		}
		if _, ok := r.(*ir.MisuseError); !ok {
			t.Errorf("%s: got panic value %T(%v) but want %T", name, r, r, &ir.MisuseError{})
		}
	}()
	f()
}

func TestMisuse(t *testing.T) {
	kb := ir.NewKernelBuilder("used")
	root := kb.NewBlock()
	kb.Finalize(root)
	expectMisuse(t, "Define after Finalize", func() {
		root.Define(ir.Scalar(scalar.F32), ir.Imm(1))
	})
	expectMisuse(t, "Affect after Finalize", func() {
		root.Affect(ir.Reg(ir.Declaration{}), ir.Imm(1))
	})
	expectMisuse(t, "NewRange after Finalize", func() {
		root.NewRange(ir.Range{End: 1})
	})
	expectMisuse(t, "AddInput after Finalize", func() {
		kb.AddInput(ir.Vector(scalar.F32, 1))
	})
	expectMisuse(t, "NewBlock after Finalize", func() {
		kb.NewBlock()
	})
	expectMisuse(t, "Finalize twice", func() {
		kb.Finalize(root)
	})

	late := ir.NewKernelBuilder("late")
	late.AddInput(ir.Vector(scalar.F32, 1))
	late.NewBlock().Define(ir.Scalar(scalar.F32), ir.Imm(0))
	expectMisuse(t, "AddOutput after Define", func() {
		late.AddOutput(ir.Vector(scalar.F32, 1))
	})
	if got := len(late.Args()); got != 1 {
		t.Errorf("got %d arguments but want 1", got)
	}

	other := ir.NewKernelBuilder("other")
	expectMisuse(t, "Finalize with a foreign block", func() {
		other.Finalize(ir.NewKernelBuilder("foreign").NewBlock())
	})
	// The builder is still usable after a failed Finalize.
	other.Finalize(other.NewBlock())
}

func TestConcurrentDefinitions(t *testing.T) {
	const numGoroutines = 8
	const numDefs = 100
	kb := ir.NewKernelBuilder("concurrent")
	root := kb.NewBlock()
	blocks := make([]*ir.BlockBuilder, numGoroutines)
	for i := range blocks {
		_, blocks[i] = root.NewRange(ir.Range{End: 1})
	}
	var wg sync.WaitGroup
	for _, block := range blocks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range numDefs {
				block.Define(ir.Scalar(scalar.F32), ir.Imm(0))
			}
		}()
	}
	wg.Wait()
	k := kb.Finalize(root)

	regs := collectRegs(k.Body, nil)
	sort.Slice(regs, func(i, j int) bool { return regs[i] < regs[j] })
	if len(regs) != numGoroutines*(numDefs+1) {
		t.Fatalf("got %d registers but want %d", len(regs), numGoroutines*(numDefs+1))
	}
	for i, reg := range regs {
		if reg != ir.RegID(i) {
			t.Fatalf("register %d: got %s: registers are not unique", i, reg)
		}
	}
	if err := ir.Validate(k); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFinalizeSnapshot(t *testing.T) {
	kb := ir.NewKernelBuilder("snapshot")
	out := kb.AddOutput(ir.Scalar(scalar.F32))
	root := kb.NewBlock()
	root.Affect(ir.Reg(out), ir.Imm(1))
	k := kb.Finalize(root)
	before := k.String()
	expectMisuse(t, "Affect after Finalize", func() {
		root.Affect(ir.Reg(out), ir.Imm(2))
	})
	if after := k.String(); after != before {
		t.Errorf("kernel changed after Finalize:\n%s\nbut want:\n%s", after, before)
	}
}
