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

// Package crender renders kernels into C-like procedures.
//
// A kernel is rendered as:
//
//	void <name>(<args>) {
//		<statements>
//	}
//
// Vector registers are pointers to their first element and
// vector elements are accessed with pointer arithmetic.
package crender

import (
	"fmt"
	"strings"

	gxfmt "github.com/gx-org/tensoru/base/fmt"
	"github.com/gx-org/tensoru/codegen/ir"
	"github.com/gx-org/tensoru/codegen/render"
	"github.com/gx-org/tensoru/scalar"
)

// Renderer renders kernels into C-like source code.
type Renderer struct{}

var _ render.Target = (*Renderer)(nil)

// New returns a C renderer.
func New() *Renderer {
	return &Renderer{}
}

// Name of the target language.
func (*Renderer) Name() string {
	return "c"
}

// Render a kernel as a C procedure.
func (*Renderer) Render(k *ir.Kernel) string {
	var s strings.Builder
	fmt.Fprintf(&s, "void %s(%s) ", k.Name, gxfmt.Join(k.Args, Declaration, ", "))
	appendBlock(&s, 0, k.Body)
	s.WriteString("\n")
	return s.String()
}

// Render a kernel as a C procedure.
func Render(k *ir.Kernel) string {
	return New().Render(k)
}

// Keyword returns the C keyword of a scalar type.
func Keyword(t scalar.Type) string {
	switch t {
	case scalar.F16:
		return "half"
	case scalar.F32:
		return "float"
	case scalar.F64:
		return "double"
	case scalar.U32:
		return "unsigned int"
	case scalar.I32:
		return "int"
	}
	return fmt.Sprintf("/* invalid type %s */", t)
}

// Type returns the C type of a register type.
func Type(t ir.Type) string {
	kw := Keyword(t.Elem)
	if t.Vector {
		return kw + "*"
	}
	return kw
}

// Declaration returns the C declaration of a register.
func Declaration(d ir.Declaration) string {
	decl := Type(d.Type) + " " + d.Reg.String()
	if d.Const {
		return "const " + decl
	}
	return decl
}

func element(base ir.Declaration, offset ir.Expr) string {
	return fmt.Sprintf("*(%s + %s)", base.Reg, Expr(offset))
}

// Expr returns the C source code of an expression.
// Binary expressions are parenthesized.
func Expr(expr ir.Expr) string {
	switch exprT := expr.(type) {
	case *ir.LoadExpr:
		return exprT.Decl.Reg.String()
	case *ir.ImmediateExpr:
		return exprT.Literal()
	case *ir.IndexExpr:
		return element(exprT.Base, exprT.Offset)
	case *ir.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", Expr(exprT.X), exprT.Op, Expr(exprT.Y))
	}
	return fmt.Sprintf("/* expression %T not supported */", expr)
}

// LValue returns the C source code of an assignable location.
func LValue(lv ir.LValue) string {
	switch lvT := lv.(type) {
	case *ir.RegLValue:
		return lvT.Decl.Reg.String()
	case *ir.IndexLValue:
		return element(lvT.Base, lvT.Offset)
	}
	return fmt.Sprintf("/* location %T not supported */", lv)
}

func appendStmt(s *strings.Builder, depth int, stmt ir.Stmt) {
	s.WriteString(gxfmt.Tabs(depth))
	switch stmtT := stmt.(type) {
	case *ir.DefineStmt:
		fmt.Fprintf(s, "%s = %s;", Declaration(stmtT.Decl), Expr(stmtT.Value))
	case *ir.AffectStmt:
		fmt.Fprintf(s, "%s = %s;", LValue(stmtT.Dst), Expr(stmtT.Value))
	case *ir.RangeStmt:
		index := stmtT.Index.Reg
		fmt.Fprintf(s, "for (%s = %d; %s < %d; %s++) ",
			Declaration(stmtT.Index), stmtT.Range.Start,
			index, stmtT.Range.End,
			index)
		appendBlock(s, depth, stmtT.Body)
	default:
		fmt.Fprintf(s, "/* statement %T not supported */", stmt)
	}
	s.WriteString("\n")
}

func appendBlock(s *strings.Builder, depth int, block *ir.Block) {
	s.WriteString("{\n")
	if block != nil {
		for _, stmt := range block.Stmts {
			appendStmt(s, depth+1, stmt)
		}
	}
	s.WriteString(gxfmt.Tabs(depth))
	s.WriteString("}")
}
