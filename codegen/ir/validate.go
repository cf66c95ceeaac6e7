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
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type scope struct {
	parent *scope
	decls  map[RegID]Declaration
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, decls: make(map[RegID]Declaration)}
}

func (s *scope) find(id RegID) (Declaration, bool) {
	for ; s != nil; s = s.parent {
		if decl, ok := s.decls[id]; ok {
			return decl, true
		}
	}
	return Declaration{}, false
}

type validator struct {
	kernel string
	errs   error
	seen   map[RegID]bool
}

func (v *validator) appendf(format string, a ...any) {
	v.errs = multierr.Append(v.errs, errors.Errorf("kernel %q: "+format, append([]any{v.kernel}, a...)...))
}

func (v *validator) declare(s *scope, decl Declaration) {
	if v.seen[decl.Reg] {
		v.appendf("register %s declared more than once", decl.Reg)
	}
	v.seen[decl.Reg] = true
	s.decls[decl.Reg] = decl
}

// use checks that a register referenced by an expression is visible.
func (v *validator) use(s *scope, ref Declaration) (Declaration, bool) {
	decl, ok := s.find(ref.Reg)
	if !ok {
		v.appendf("register %s used outside of its scope", ref.Reg)
		return ref, false
	}
	if decl != ref {
		v.appendf("register %s used as %s but declared as %s", ref.Reg, ref, decl)
	}
	return decl, true
}

func (v *validator) vector(s *scope, base Declaration) (Declaration, bool) {
	decl, ok := v.use(s, base)
	if !ok {
		return decl, false
	}
	if !decl.Type.Vector {
		v.appendf("register %s of type %s cannot be indexed", decl.Reg, decl.Type)
		return decl, false
	}
	return decl, true
}

func (v *validator) expr(s *scope, expr Expr) {
	switch exprT := expr.(type) {
	case nil:
		v.appendf("missing expression")
	case *LoadExpr:
		decl, ok := v.use(s, exprT.Decl)
		if ok && decl.Type.Vector {
			v.appendf("vector register %s cannot be loaded as a value", decl.Reg)
		}
	case *ImmediateExpr:
		if math.IsNaN(exprT.Val) || math.IsInf(exprT.Val, 0) {
			v.appendf("immediate %s is not a finite number", exprT.Literal())
		}
	case *IndexExpr:
		v.vector(s, exprT.Base)
		v.expr(s, exprT.Offset)
	case *BinaryExpr:
		if !IsArithmetic(exprT.Op) {
			v.appendf("operator %s not supported", exprT.Op)
		}
		v.expr(s, exprT.X)
		v.expr(s, exprT.Y)
	default:
		v.appendf("expression %T not supported", expr)
	}
}

func (v *validator) lvalue(s *scope, lv LValue) {
	switch lvT := lv.(type) {
	case nil:
		v.appendf("missing assignment destination")
	case *RegLValue:
		decl, ok := v.use(s, lvT.Decl)
		if ok && decl.Const {
			v.appendf("cannot assign to const register %s", decl.Reg)
		}
	case *IndexLValue:
		decl, ok := v.vector(s, lvT.Base)
		if ok && decl.Const {
			v.appendf("cannot store through const register %s", decl.Reg)
		}
		v.expr(s, lvT.Offset)
	default:
		v.appendf("assignment destination %T not supported", lv)
	}
}

func (v *validator) stmt(s *scope, stmt Stmt) {
	switch stmtT := stmt.(type) {
	case *DefineStmt:
		v.expr(s, stmtT.Value)
		v.declare(s, stmtT.Decl)
	case *AffectStmt:
		v.lvalue(s, stmtT.Dst)
		v.expr(s, stmtT.Value)
	case *RangeStmt:
		if stmtT.Range.Start < 0 {
			v.appendf("range %s of %s starts below 0", stmtT.Range, stmtT.Index.Reg)
		}
		if stmtT.Range.End < stmtT.Range.Start {
			v.appendf("range %s of %s ends before it starts", stmtT.Range, stmtT.Index.Reg)
		}
		body := newScope(s)
		v.declare(body, stmtT.Index)
		if stmtT.Body == nil {
			v.appendf("range over %s has no body", stmtT.Index.Reg)
			return
		}
		v.block(body, stmtT.Body)
	default:
		v.appendf("statement %T not supported", stmt)
	}
}

func (v *validator) block(s *scope, block *Block) {
	for _, stmt := range block.Stmts {
		v.stmt(s, stmt)
	}
}

// Validate checks that a kernel is well-formed.
// It reports registers used outside of their scope or declared twice,
// invalid indexing or loads of vectors, writes to const registers,
// ranges starting below 0, and immediates that are not finite.
// Use multierr.Errors to list all the errors.
func Validate(k *Kernel) error {
	v := &validator{kernel: k.Name, seen: make(map[RegID]bool)}
	args := newScope(nil)
	for _, arg := range k.Args {
		v.declare(args, arg)
	}
	if k.Body == nil {
		v.appendf("no body")
		return v.errs
	}
	v.block(newScope(args), k.Body)
	return v.errs
}
