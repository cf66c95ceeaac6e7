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

// Package ir is a register based intermediate representation of kernels.
//
// A kernel is a list of arguments and a block of statements.
// Statements define registers, assign values to registers or to vector
// elements, and loop over integer ranges. Kernels are assembled with a
// [KernelBuilder] which guarantees that registers are unique.
//
// A register can only be read where it has been declared: kernel arguments
// are visible everywhere, a loop index only in the body of its loop, and a
// defined register in the statements following its definition in the same
// block or in nested blocks.
package ir

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"

	gxfmt "github.com/gx-org/tensoru/base/fmt"
)

// RegID identifies a register in a kernel.
type RegID uint32

// String returns the name of the register.
func (id RegID) String() string {
	return "r" + strconv.FormatUint(uint64(id), 10)
}

// Declaration of a register.
type Declaration struct {
	Reg  RegID
	Type Type
	// Const is true if the register cannot be assigned to.
	// For vectors, the elements cannot be written either.
	Const bool
}

// String representation of the declaration.
func (d Declaration) String() string {
	qual := ""
	if d.Const {
		qual = "const "
	}
	return fmt.Sprintf("%s %s%s", d.Reg, qual, d.Type)
}

// ----------------------------------------------------------------------------
// Types of node in the tree.
type (
	// Node in the tree.
	Node interface {
		// node marks a structure as a node structure.
		// It prevents external implementations of the interface.
		node()
	}

	// Expr is an expression computing a value.
	Expr interface {
		Node
		exprNode()
		String() string
	}

	// LValue is a location a value can be assigned to.
	LValue interface {
		Node
		lvalueNode()
		String() string
	}

	// Stmt is a statement in a block.
	Stmt interface {
		Node
		stmtNode()
		String() string
	}
)

// ----------------------------------------------------------------------------
// Expressions.
type (
	// LoadExpr reads the value of a register.
	LoadExpr struct {
		Decl Declaration
	}

	// ImmediateExpr is a literal number.
	ImmediateExpr struct {
		Val float64
	}

	// IndexExpr reads the element of a vector register at an offset.
	// The offset is counted in elements.
	IndexExpr struct {
		Base   Declaration
		Offset Expr
	}

	// BinaryExpr applies an arithmetic operator to two expressions.
	// Op is one of token.ADD, token.SUB, token.MUL, or token.QUO.
	BinaryExpr struct {
		Op   token.Token
		X, Y Expr
	}
)

func (*LoadExpr) node()          {}
func (*LoadExpr) exprNode()      {}
func (*ImmediateExpr) node()     {}
func (*ImmediateExpr) exprNode() {}
func (*IndexExpr) node()         {}
func (*IndexExpr) exprNode()     {}
func (*BinaryExpr) node()        {}
func (*BinaryExpr) exprNode()    {}

func (e *LoadExpr) String() string {
	return e.Decl.Reg.String()
}

// Literal returns the text of the number.
// Integral values are written without a fractional part.
func (e *ImmediateExpr) Literal() string {
	return strconv.FormatFloat(e.Val, 'g', -1, 64)
}

// IsInt returns true if the immediate value is an integer.
func (e *ImmediateExpr) IsInt() bool {
	return e.Val == float64(int64(e.Val))
}

func (e *ImmediateExpr) String() string {
	return e.Literal()
}

func (e *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", e.Base.Reg, e.Offset)
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.X, e.Op, e.Y)
}

// Load returns an expression reading a register.
func Load(d Declaration) Expr {
	return &LoadExpr{Decl: d}
}

// Imm returns a literal number.
func Imm(v float64) Expr {
	return &ImmediateExpr{Val: v}
}

// At returns an expression reading a vector element.
func At(base Declaration, offset Expr) Expr {
	return &IndexExpr{Base: base, Offset: offset}
}

// Add returns x + y.
func Add(x, y Expr) Expr {
	return &BinaryExpr{Op: token.ADD, X: x, Y: y}
}

// Sub returns x - y.
func Sub(x, y Expr) Expr {
	return &BinaryExpr{Op: token.SUB, X: x, Y: y}
}

// Mul returns x * y.
func Mul(x, y Expr) Expr {
	return &BinaryExpr{Op: token.MUL, X: x, Y: y}
}

// Div returns x / y.
func Div(x, y Expr) Expr {
	return &BinaryExpr{Op: token.QUO, X: x, Y: y}
}

// IsArithmetic returns true if op is an operator supported by BinaryExpr.
func IsArithmetic(op token.Token) bool {
	switch op {
	case token.ADD, token.SUB, token.MUL, token.QUO:
		return true
	}
	return false
}

// ----------------------------------------------------------------------------
// Assignable locations.
type (
	// RegLValue is a register.
	RegLValue struct {
		Decl Declaration
	}

	// IndexLValue is the element of a vector register at an offset.
	IndexLValue struct {
		Base   Declaration
		Offset Expr
	}
)

func (*RegLValue) node()         {}
func (*RegLValue) lvalueNode()   {}
func (*IndexLValue) node()       {}
func (*IndexLValue) lvalueNode() {}

func (lv *RegLValue) String() string {
	return lv.Decl.Reg.String()
}

func (lv *IndexLValue) String() string {
	return fmt.Sprintf("%s[%s]", lv.Base.Reg, lv.Offset)
}

// Reg returns a register as a location to assign to.
func Reg(d Declaration) LValue {
	return &RegLValue{Decl: d}
}

// AtRef returns a vector element as a location to assign to.
func AtRef(base Declaration, offset Expr) LValue {
	return &IndexLValue{Base: base, Offset: offset}
}

// ----------------------------------------------------------------------------
// Statements.
type (
	// Range is a half-open interval of integers [Start, End).
	Range struct {
		Start, End int
	}

	// RangeStmt executes its body for each value of its index in a range.
	// The index is only visible in the body.
	RangeStmt struct {
		Index Declaration
		Range Range
		Body  *Block
	}

	// DefineStmt declares a new register initialized with a value.
	DefineStmt struct {
		Decl  Declaration
		Value Expr
	}

	// AffectStmt assigns a value to a location.
	AffectStmt struct {
		Dst   LValue
		Value Expr
	}

	// Block is a sequence of statements executed in order.
	Block struct {
		Stmts []Stmt
	}
)

func (*RangeStmt) node()      {}
func (*RangeStmt) stmtNode()  {}
func (*DefineStmt) node()     {}
func (*DefineStmt) stmtNode() {}
func (*AffectStmt) node()     {}
func (*AffectStmt) stmtNode() {}
func (*Block) node()          {}

// Len returns the number of iterations in the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

func (s *RangeStmt) String() string {
	return fmt.Sprintf("for %s in %s %s", s.Index.Reg, s.Range, s.Body)
}

func (s *DefineStmt) String() string {
	return fmt.Sprintf("%s := %s", s.Decl, s.Value)
}

func (s *AffectStmt) String() string {
	return fmt.Sprintf("%s = %s", s.Dst, s.Value)
}

func (b *Block) String() string {
	var s strings.Builder
	s.WriteString("{\n")
	for _, stmt := range b.Stmts {
		s.WriteString(gxfmt.Indent(stmt.String() + "\n"))
	}
	s.WriteString("}")
	return s.String()
}

// Kernel is a finalized kernel.
// A kernel is immutable: it must not be modified once built.
type Kernel struct {
	Name string
	// Args are the inputs followed by the outputs, in declaration order.
	Args []Declaration
	Body *Block
}

// Inputs returns the const arguments of the kernel.
func (k *Kernel) Inputs() []Declaration {
	var ins []Declaration
	for _, arg := range k.Args {
		if arg.Const {
			ins = append(ins, arg)
		}
	}
	return ins
}

// Outputs returns the arguments the kernel can write to.
func (k *Kernel) Outputs() []Declaration {
	var outs []Declaration
	for _, arg := range k.Args {
		if !arg.Const {
			outs = append(outs, arg)
		}
	}
	return outs
}

func (k *Kernel) String() string {
	return fmt.Sprintf("kernel %s(%s) %s", k.Name, gxfmt.Join(k.Args, Declaration.String, ", "), k.Body)
}
