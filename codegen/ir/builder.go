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
	"fmt"
	"slices"
	"sync"
)

// MisuseError is the value a builder panics with when it is used incorrectly,
// for example after the kernel has been finalized.
type MisuseError struct {
	Op  string
	Msg string
}

func (err *MisuseError) Error() string {
	return fmt.Sprintf("kernel builder misuse in %s: %s", err.Op, err.Msg)
}

// KernelBuilder builds a kernel.
//
// All the registers of a kernel, including registers declared in nested
// blocks, are allocated from a single counter owned by the kernel builder.
// The builder and its blocks can be used from multiple goroutines.
// A builder can only build one kernel.
type KernelBuilder struct {
	mut       sync.Mutex
	name      string
	next      RegID
	args      []Declaration
	finalized bool
}

// NewKernelBuilder returns a builder for a kernel given its name.
func NewKernelBuilder(name string) *KernelBuilder {
	return &KernelBuilder{name: name}
}

// lock the builder for an operation.
// Panics if the kernel has already been finalized.
func (kb *KernelBuilder) lock(op string) {
	kb.mut.Lock()
	if kb.finalized {
		kb.mut.Unlock()
		panic(&MisuseError{Op: op, Msg: fmt.Sprintf("kernel %q has already been finalized", kb.name)})
	}
}

// alloc returns the next register. The builder must be locked.
func (kb *KernelBuilder) alloc() RegID {
	id := kb.next
	kb.next++
	return id
}

// Name of the kernel being built.
func (kb *KernelBuilder) Name() string {
	return kb.name
}

func (kb *KernelBuilder) addArg(op string, t Type, isConst bool) Declaration {
	kb.lock(op)
	defer kb.mut.Unlock()
	if int(kb.next) != len(kb.args) {
		panic(&MisuseError{Op: op, Msg: fmt.Sprintf("arguments of kernel %q must be declared before any other register", kb.name)})
	}
	decl := Declaration{Reg: kb.alloc(), Type: t, Const: isConst}
	kb.args = append(kb.args, decl)
	return decl
}

// AddInput declares a read-only argument of the kernel.
// Arguments are declared before any block statement so that the register
// of an argument is its position in the argument list.
func (kb *KernelBuilder) AddInput(t Type) Declaration {
	return kb.addArg("AddInput", t, true)
}

// AddOutput declares an argument the kernel writes to.
// As for inputs, outputs are declared before any block statement.
func (kb *KernelBuilder) AddOutput(t Type) Declaration {
	return kb.addArg("AddOutput", t, false)
}

// Args returns the arguments declared so far.
func (kb *KernelBuilder) Args() []Declaration {
	kb.mut.Lock()
	defer kb.mut.Unlock()
	return slices.Clone(kb.args)
}

// NewBlock returns a new empty block.
func (kb *KernelBuilder) NewBlock() *BlockBuilder {
	kb.lock("NewBlock")
	defer kb.mut.Unlock()
	return &BlockBuilder{kb: kb}
}

// Finalize returns the kernel with root as its body.
// The builder and all its blocks cannot be used after this call.
func (kb *KernelBuilder) Finalize(root *BlockBuilder) *Kernel {
	kb.lock("Finalize")
	defer kb.mut.Unlock()
	if root == nil || root.kb != kb {
		panic(&MisuseError{Op: "Finalize", Msg: fmt.Sprintf("root block does not belong to kernel %q", kb.name)})
	}
	kb.finalized = true
	return &Kernel{
		Name: kb.name,
		Args: slices.Clone(kb.args),
		Body: root.build(),
	}
}

type blockItem struct {
	stmt Stmt
	// body of a range statement.
	body *BlockBuilder
}

// BlockBuilder appends statements to a block.
// Statements can only be appended: nothing is ever removed.
type BlockBuilder struct {
	kb    *KernelBuilder
	items []blockItem
}

// Define appends a statement declaring a new register initialized to the value of an expression.
// It returns the declaration of the new register.
func (b *BlockBuilder) Define(t Type, value Expr) Declaration {
	b.kb.lock("Define")
	defer b.kb.mut.Unlock()
	decl := Declaration{Reg: b.kb.alloc(), Type: t}
	b.items = append(b.items, blockItem{stmt: &DefineStmt{Decl: decl, Value: value}})
	return decl
}

// Affect appends a statement assigning the value of an expression to a location.
func (b *BlockBuilder) Affect(dst LValue, value Expr) {
	b.kb.lock("Affect")
	defer b.kb.mut.Unlock()
	b.items = append(b.items, blockItem{stmt: &AffectStmt{Dst: dst, Value: value}})
}

// NewRange appends a loop over a range.
// It returns the declaration of the loop index and the block of the loop body.
func (b *BlockBuilder) NewRange(r Range) (Declaration, *BlockBuilder) {
	b.kb.lock("NewRange")
	defer b.kb.mut.Unlock()
	index := Declaration{Reg: b.kb.alloc(), Type: IndexType()}
	body := &BlockBuilder{kb: b.kb}
	b.items = append(b.items, blockItem{
		stmt: &RangeStmt{Index: index, Range: r},
		body: body,
	})
	return index, body
}

// build a snapshot of the block. The kernel builder must be locked.
func (b *BlockBuilder) build() *Block {
	stmts := make([]Stmt, len(b.items))
	for i, item := range b.items {
		if item.body == nil {
			stmts[i] = item.stmt
			continue
		}
		rng := *item.stmt.(*RangeStmt)
		rng.Body = item.body.build()
		stmts[i] = &rng
	}
	return &Block{Stmts: stmts}
}
