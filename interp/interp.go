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

// Package interp runs kernels on the host by walking their statements.
//
// Values follow the rules of C: an arithmetic operation is computed on floats
// if one of its operands is a float, integer divisions are truncated, and
// values are converted to the type of the register or of the vector they
// are assigned to.
// The interpreter is slow: it is meant to check the result of generated kernels.
package interp

import (
	"github.com/pkg/errors"
	"github.com/gx-org/tensoru/codegen/ir"
	"github.com/gx-org/tensoru/device"
)

type frame struct {
	parent  *frame
	vars    map[ir.RegID]value
	vectors map[ir.RegID]memory
}

func newFrame(parent *frame) *frame {
	return &frame{
		parent:  parent,
		vars:    make(map[ir.RegID]value),
		vectors: make(map[ir.RegID]memory),
	}
}

func (fr *frame) find(id ir.RegID) (*frame, bool) {
	for ; fr != nil; fr = fr.parent {
		if _, ok := fr.vars[id]; ok {
			return fr, true
		}
	}
	return nil, false
}

func (fr *frame) load(id ir.RegID) (value, error) {
	owner, ok := fr.find(id)
	if !ok {
		return value{}, errors.Errorf("register %s undefined", id)
	}
	return owner.vars[id], nil
}

func (fr *frame) assign(decl ir.Declaration, v value) error {
	owner, ok := fr.find(decl.Reg)
	if !ok {
		return errors.Errorf("register %s undefined", decl.Reg)
	}
	converted, err := convert(v, decl.Type.Elem)
	if err != nil {
		return err
	}
	owner.vars[decl.Reg] = converted
	return nil
}

func (fr *frame) define(decl ir.Declaration, v value) error {
	converted, err := convert(v, decl.Type.Elem)
	if err != nil {
		return err
	}
	fr.vars[decl.Reg] = converted
	return nil
}

func (fr *frame) vector(decl ir.Declaration) (memory, error) {
	for f := fr; f != nil; f = f.parent {
		if mem, ok := f.vectors[decl.Reg]; ok {
			return mem, nil
		}
	}
	return nil, errors.Errorf("register %s is not bound to a buffer", decl.Reg)
}

type interpreter struct {
	kernel *ir.Kernel
}

// Run a kernel given the buffers of its arguments.
//
// Each argument is bound to a buffer in order. A vector argument reads and writes
// the elements of its buffer. A scalar argument is bound to a buffer of a single
// element read when the kernel starts.
func Run(k *ir.Kernel, args []*device.Buffer) error {
	if err := ir.Validate(k); err != nil {
		return err
	}
	if len(k.Args) != len(args) {
		return errors.Errorf("kernel %s has %d arguments but got %d buffers", k.Name, len(k.Args), len(args))
	}
	seen := make(map[*device.Buffer]bool)
	for i, buf := range args {
		if buf == nil {
			return errors.Errorf("kernel %s: argument %d: no buffer", k.Name, i)
		}
		if seen[buf] {
			return errors.Errorf("kernel %s: argument %d: buffer bound more than once", k.Name, i)
		}
		seen[buf] = true
	}
	root := newFrame(nil)
	for i, arg := range k.Args {
		buf := args[i]
		data := buf.Acquire()
		defer buf.Release()
		if err := bind(root, arg, buf, data); err != nil {
			return errors.WithMessagef(err, "kernel %s: argument %d", k.Name, i)
		}
	}
	itrp := &interpreter{kernel: k}
	if err := itrp.block(root, k.Body); err != nil {
		return errors.WithMessagef(err, "kernel %s", k.Name)
	}
	return nil
}

func bind(fr *frame, arg ir.Declaration, buf *device.Buffer, data []byte) error {
	if data == nil && buf.Len() > 0 {
		return device.ErrFreed
	}
	if buf.Elem() != arg.Type.Elem {
		return errors.Errorf("cannot bind a buffer of %s to %s", buf.Elem(), arg)
	}
	want := 1
	if arg.Type.Vector {
		want = arg.Type.Len
	}
	if buf.Len() != want {
		return errors.Wrapf(device.ErrLength, "cannot bind a buffer of %d elements to %s", buf.Len(), arg)
	}
	mem, err := newMemory(arg.Type.Elem, data)
	if err != nil {
		return err
	}
	if arg.Type.Vector {
		fr.vectors[arg.Reg] = mem
		return nil
	}
	return fr.define(arg, mem.load(0))
}

func (itrp *interpreter) block(parent *frame, block *ir.Block) error {
	fr := newFrame(parent)
	for _, stmt := range block.Stmts {
		if err := itrp.stmt(fr, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (itrp *interpreter) stmt(fr *frame, stmt ir.Stmt) error {
	switch stmtT := stmt.(type) {
	case *ir.DefineStmt:
		v, err := itrp.expr(fr, stmtT.Value)
		if err != nil {
			return err
		}
		return fr.define(stmtT.Decl, v)
	case *ir.AffectStmt:
		v, err := itrp.expr(fr, stmtT.Value)
		if err != nil {
			return err
		}
		return itrp.store(fr, stmtT.Dst, v)
	case *ir.RangeStmt:
		return itrp.rangeStmt(fr, stmtT)
	}
	return errors.Errorf("statement %T not supported", stmt)
}

func (itrp *interpreter) rangeStmt(fr *frame, stmt *ir.RangeStmt) error {
	loop := newFrame(fr)
	for i := stmt.Range.Start; i < stmt.Range.End; i++ {
		if err := loop.define(stmt.Index, intValue(int64(i))); err != nil {
			return err
		}
		if err := itrp.block(loop, stmt.Body); err != nil {
			return err
		}
	}
	return nil
}

func (itrp *interpreter) element(fr *frame, base ir.Declaration, offset ir.Expr) (memory, int, error) {
	mem, err := fr.vector(base)
	if err != nil {
		return nil, 0, err
	}
	off, err := itrp.expr(fr, offset)
	if err != nil {
		return nil, 0, err
	}
	if off.float {
		return nil, 0, errors.Errorf("offset %s of %s is not an integer", off, base.Reg)
	}
	if off.i < 0 || off.i >= int64(mem.len()) {
		return nil, 0, errors.Errorf("offset %d out of range [0,%d) of %s", off.i, mem.len(), base.Reg)
	}
	return mem, int(off.i), nil
}

func (itrp *interpreter) store(fr *frame, dst ir.LValue, v value) error {
	switch dstT := dst.(type) {
	case *ir.RegLValue:
		return fr.assign(dstT.Decl, v)
	case *ir.IndexLValue:
		mem, i, err := itrp.element(fr, dstT.Base, dstT.Offset)
		if err != nil {
			return err
		}
		converted, err := convert(v, dstT.Base.Type.Elem)
		if err != nil {
			return err
		}
		mem.store(i, converted)
		return nil
	}
	return errors.Errorf("assignment to %T not supported", dst)
}

func (itrp *interpreter) expr(fr *frame, expr ir.Expr) (value, error) {
	switch exprT := expr.(type) {
	case *ir.LoadExpr:
		return fr.load(exprT.Decl.Reg)
	case *ir.ImmediateExpr:
		if exprT.IsInt() {
			return intValue(int64(exprT.Val)), nil
		}
		return floatValue(exprT.Val), nil
	case *ir.IndexExpr:
		mem, i, err := itrp.element(fr, exprT.Base, exprT.Offset)
		if err != nil {
			return value{}, err
		}
		return mem.load(i), nil
	case *ir.BinaryExpr:
		x, err := itrp.expr(fr, exprT.X)
		if err != nil {
			return value{}, err
		}
		y, err := itrp.expr(fr, exprT.Y)
		if err != nil {
			return value{}, err
		}
		v, err := binary(exprT.Op, x, y)
		if err != nil {
			return value{}, errors.WithMessagef(err, "in %s", exprT)
		}
		return v, nil
	}
	return value{}, errors.Errorf("expression %T not supported", expr)
}
