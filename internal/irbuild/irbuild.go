// Package irbuild drives AST -> structured CFG + SSA construction (spec
// §2), the one direct collaborator between the astiface contract and the
// ir/ssa core. Builder mirrors the teacher's stateful bytecode Compiler
// (internal/compiler/compiler.go): each Visit method emits into whatever
// block/sequence is currently open, the same way VisitBinaryExpr/VisitIfExpr
// write into the compiler's open chunk, except here "emitting" means
// appending ir.Instructions via package ssa rather than writing bytecode.
package irbuild

import (
	"fmt"

	"octoir/internal/astiface"
	"octoir/internal/ir"
	"octoir/internal/irerr"
	"octoir/internal/irtype"
	"octoir/internal/opcode"
	"octoir/internal/ssa"
)

// Builder implements astiface.Visitor. The zero value is not usable; build
// one with New.
type Builder struct {
	astiface.NopVisitor

	fn    *ir.Function
	seq   *ir.Sequence // the sequence statements are currently appended to
	block *ir.Block    // the open block within seq that instructions append to
	ntemp int
	err   *irerr.CompileException
}

func New(name string) *Builder {
	return &Builder{fn: ir.NewFunction(name)}
}

// Build declares params plus the implicit return slot (arg 0, §6.3), lowers
// body into fn's structured tree, and returns the finished function or the
// first compile error encountered.
func (b *Builder) Build(params []string, body []astiface.Node) (*ir.Function, error) {
	ret := b.fn.DeclareVariable("return")
	b.fn.Args = append(b.fn.Args, ret)
	for _, p := range params {
		b.fn.Args = append(b.fn.Args, b.fn.DeclareVariable(p))
	}

	b.seq = ir.NewSequence(b.fn)
	b.fn.SetBody(b.seq)
	b.buildStmts(body)
	if b.err != nil {
		return nil, b.err
	}
	return b.fn, nil
}

func (b *Builder) fail(e *irerr.CompileException) {
	if b.err == nil {
		b.err = e
	}
}

type scope struct {
	seq   *ir.Sequence
	block *ir.Block
}

func (b *Builder) pushScope(seq *ir.Sequence) scope {
	saved := scope{seq: b.seq, block: b.block}
	b.seq = seq
	return saved
}

func (b *Builder) popScope(saved scope) {
	b.seq = saved.seq
	b.block = saved.block
}

// openBlock opens a fresh straight-line block at the end of the current
// sequence; called once on scope entry and again after every fork/loop so
// later statements in the same sequence land in a block whose sole
// predecessor is that construct's own leaves.
func (b *Builder) openBlock() {
	nb := ir.NewBlock(b.seq)
	b.seq.Append(nb)
	b.block = nb
}

func (b *Builder) buildStmts(stmts []astiface.Node) {
	b.openBlock()
	for _, s := range stmts {
		b.visitStmt(s)
		if b.err != nil {
			return
		}
	}
}

func (b *Builder) visitStmt(n astiface.Node) {
	if b.err != nil || n == nil {
		return
	}
	n.Accept(b)
}

func (b *Builder) visitExpr(n astiface.Node) ir.Operand {
	if b.err != nil || n == nil {
		return nil
	}
	v := n.Accept(b)
	op, _ := v.(ir.Operand)
	return op
}

// evalInBlock evaluates n with block temporarily current, for contexts
// (fork conditions, loop conditions/updates) that live outside the
// sequence's normal straight-line flow.
func (b *Builder) evalInBlock(block *ir.Block, n astiface.Node) ir.Operand {
	saved := b.block
	b.block = block
	op := b.visitExpr(n)
	b.block = saved
	return op
}

func (b *Builder) newTemp(t irtype.Type) *ir.Variable {
	b.ntemp++
	v := b.fn.DeclareVariable(fmt.Sprintf("%%t%d", b.ntemp))
	v.Type = t
	return v
}

func operandType(op ir.Operand) irtype.Type {
	switch t := op.(type) {
	case *ir.Use:
		if t.Timeline == nil || t.Timeline.Def == nil {
			return irtype.Any
		}
		return t.Timeline.Def.Var.Type
	case ir.Constant:
		return t.Type
	default:
		return irtype.Any
	}
}

func lastDef(block *ir.Block) *ir.Def {
	if len(block.Body) == 0 {
		return nil
	}
	return block.Body[len(block.Body)-1].Def
}

// ensureTrailingValue guarantees block's last instruction is the one
// carrying op's value, materialising a plain identifier/constant read with
// an explicit assign when it isn't already: the JIT backend reads a fork's
// or loop condition's branch test off the condition block's final def
// (internal/jit/llvmjit terminate/lastValue), not off a named variable.
func (b *Builder) ensureTrailingValue(block *ir.Block, op ir.Operand) {
	if op == nil {
		return
	}
	if use, ok := op.(*ir.Use); ok && use.Timeline.Def != nil && use.Timeline.Def == lastDef(block) {
		return
	}
	temp := b.newTemp(operandType(op))
	def := &ir.Def{Var: temp, ID: temp.NextDefID()}
	ssa.Append(block, opcode.Assign, def, []ir.Operand{op})
}

var comparisonOps = map[string]opcode.Opcode{
	"eq": opcode.Eq, "ne": opcode.Ne,
	"lt": opcode.Lt, "le": opcode.Le,
	"gt": opcode.Gt, "ge": opcode.Ge,
}

var logicalBinOps = map[string]opcode.Opcode{
	"land": opcode.Land, "lor": opcode.Lor,
}

var arithOps = map[string]opcode.Opcode{
	"add": opcode.Add, "sub": opcode.Sub, "mul": opcode.Mul,
	"div": opcode.Div, "mod": opcode.Mod, "rem": opcode.Rem,
}

var bitwiseOps = map[string]opcode.Opcode{
	"band": opcode.Band, "bor": opcode.Bor, "bxor": opcode.Bxor,
	"bshiftl": opcode.Bshiftl, "bashiftr": opcode.Bashiftr, "blshiftr": opcode.Blshiftr,
}

func opcodeForBinary(op string) (opcode.Opcode, bool) {
	if o, ok := comparisonOps[op]; ok {
		return o, true
	}
	if o, ok := logicalBinOps[op]; ok {
		return o, true
	}
	if o, ok := arithOps[op]; ok {
		return o, true
	}
	if o, ok := bitwiseOps[op]; ok {
		return o, true
	}
	return 0, false
}

func isBoolResult(op string) bool {
	_, cmp := comparisonOps[op]
	_, log := logicalBinOps[op]
	return cmp || log
}

var unaryOps = map[string]opcode.Opcode{
	"neg": opcode.Neg, "lnot": opcode.Lnot, "bnot": opcode.Bnot,
}

var typeByName = map[string]irtype.Type{
	"void": irtype.Void, "single": irtype.Single, "double": irtype.Double, "long double": irtype.LongDouble,
	"int8": irtype.Int8, "int16": irtype.Int16, "int32": irtype.Int32, "int64": irtype.Int64,
	"uint8": irtype.Uint8, "uint16": irtype.Uint16, "uint32": irtype.Uint32, "uint64": irtype.Uint64,
	"char": irtype.Char, "wchar": irtype.Wchar, "char16": irtype.Char16, "char32": irtype.Char32,
	"bool": irtype.Bool,
}

func (b *Builder) VisitIdentifier(n *astiface.Identifier) any {
	v, ok := b.fn.LookupVariable(n.Name)
	if !ok {
		b.fail(irerr.New(irerr.UninitialisedUse, irerr.Location{}, "read of %q before any assignment reaches this point", n.Name))
		return nil
	}
	use := ssa.ReadVar(b.block, v, b.block.BodyLen())
	if use.Timeline.Def == nil {
		b.fail(irerr.New(irerr.UninitialisedUse, irerr.Location{}, "read of %q before any assignment reaches this point", n.Name))
		return nil
	}
	return use
}

func (b *Builder) VisitConstant(n *astiface.Constant) any {
	t, ok := typeByName[n.Type]
	if !ok {
		b.fail(irerr.New(irerr.TypeConflict, irerr.Location{}, "irbuild: unknown constant type %q", n.Type))
		return nil
	}
	return ir.Constant{Type: t, Bytes: n.Bytes}
}

func (b *Builder) VisitBinary(n *astiface.Binary) any {
	left := b.visitExpr(n.Left)
	if b.err != nil {
		return nil
	}
	right := b.visitExpr(n.Right)
	if b.err != nil {
		return nil
	}
	op, ok := opcodeForBinary(n.Op)
	if !ok {
		b.fail(irerr.New(irerr.InternalInvariantViolated, irerr.Location{}, "irbuild: unknown binary operator %q", n.Op))
		return nil
	}
	rt := irtype.Lca(operandType(left), operandType(right))
	if isBoolResult(n.Op) {
		rt = irtype.Bool
	}
	temp := b.newTemp(rt)
	def := &ir.Def{Var: temp, ID: temp.NextDefID()}
	ssa.Append(b.block, op, def, []ir.Operand{left, right})
	return ssa.ReadVar(b.block, temp, b.block.BodyLen())
}

func (b *Builder) VisitUnary(n *astiface.Unary) any {
	operand := b.visitExpr(n.Operand)
	if b.err != nil {
		return nil
	}
	op, ok := unaryOps[n.Op]
	if !ok {
		b.fail(irerr.New(irerr.InternalInvariantViolated, irerr.Location{}, "irbuild: unknown unary operator %q", n.Op))
		return nil
	}
	rt := operandType(operand)
	if n.Op == "lnot" {
		rt = irtype.Bool
	}
	temp := b.newTemp(rt)
	def := &ir.Def{Var: temp, ID: temp.NextDefID()}
	ssa.Append(b.block, op, def, []ir.Operand{operand})
	return ssa.ReadVar(b.block, temp, b.block.BodyLen())
}

func (b *Builder) VisitAssignment(n *astiface.Assignment) any {
	op := b.visitExpr(n.Value)
	if b.err != nil {
		return nil
	}
	v := b.fn.DeclareVariable(n.Name)
	if v.Type == irtype.Any {
		v.Type = operandType(op)
	}
	def := &ir.Def{Var: v, ID: v.NextDefID()}
	ssa.Append(b.block, opcode.Assign, def, []ir.Operand{op})
	return nil
}

func (b *Builder) VisitReturn(n *astiface.Return) any {
	if n.Value == nil {
		return nil
	}
	op := b.visitExpr(n.Value)
	if b.err != nil {
		return nil
	}
	ret := b.fn.Args[0]
	def := &ir.Def{Var: ret, ID: ret.NextDefID()}
	ssa.Append(b.block, opcode.Assign, def, []ir.Operand{op})
	return nil
}

func (b *Builder) VisitBlock(n *astiface.Block) any {
	for _, s := range n.Stmts {
		b.visitStmt(s)
		if b.err != nil {
			return nil
		}
	}
	return nil
}

func (b *Builder) VisitIf(n *astiface.If) any {
	fork := ir.NewFork(b.seq)
	b.seq.Append(fork)

	condOp := b.evalInBlock(&fork.Condition, n.Cond)
	if b.err != nil {
		return nil
	}
	b.ensureTrailingValue(&fork.Condition, condOp)

	b.buildCase(fork, n.Then)
	b.buildCase(fork, n.Else)

	b.openBlock()
	return nil
}

// buildCase lowers one fork case into its own sequence, even a nil/empty
// one (§4.4: a fork's cases all converge at the fork's own successor, so an
// absent else is just a case with no instructions).
func (b *Builder) buildCase(fork *ir.Fork, stmts []astiface.Node) {
	seq := ir.NewSequence(fork)
	fork.AddCase(seq)
	saved := b.pushScope(seq)
	b.buildStmts(stmts)
	b.popScope(saved)
}

func (b *Builder) VisitWhile(n *astiface.While) any {
	loop := ir.NewLoop(b.seq)
	b.seq.Append(loop)

	loop.SetStart(ir.NewBlock(loop))

	condOp := b.evalInBlock(loop.Condition, n.Cond)
	if b.err != nil {
		return nil
	}
	b.ensureTrailingValue(loop.Condition, condOp)

	bodySeq := ir.NewSequence(loop)
	loop.SetBody(bodySeq)
	saved := b.pushScope(bodySeq)
	b.buildStmts(n.Body)
	b.popScope(saved)

	loop.SetUpdate(ir.NewBlock(loop))
	loop.SetAfter(ir.NewBlock(loop))

	ssa.SealLoop(loop)
	b.openBlock()
	return nil
}

func (b *Builder) VisitFor(n *astiface.For) any {
	loop := ir.NewLoop(b.seq)
	b.seq.Append(loop)

	start := ir.NewBlock(loop)
	loop.SetStart(start)

	lowOp := b.evalInBlock(start, n.Low)
	if b.err != nil {
		return nil
	}
	v := b.fn.DeclareVariable(n.Var)
	v.Type = operandType(lowOp)
	lowDef := &ir.Def{Var: v, ID: v.NextDefID()}
	ssa.Append(start, opcode.Assign, lowDef, []ir.Operand{lowOp})

	highOp := b.evalInBlock(start, n.High)
	if b.err != nil {
		return nil
	}
	highVar := b.newTemp(operandType(highOp))
	highDef := &ir.Def{Var: highVar, ID: highVar.NextDefID()}
	ssa.Append(start, opcode.Assign, highDef, []ir.Operand{highOp})

	curUse := ssa.ReadVar(loop.Condition, v, 0)
	highUse := ssa.ReadVar(loop.Condition, highVar, 0)
	condVar := b.newTemp(irtype.Bool)
	condDef := &ir.Def{Var: condVar, ID: condVar.NextDefID()}
	ssa.Append(loop.Condition, opcode.Lt, condDef, []ir.Operand{curUse, highUse})

	bodySeq := ir.NewSequence(loop)
	loop.SetBody(bodySeq)
	saved := b.pushScope(bodySeq)
	b.buildStmts(n.Body)
	b.popScope(saved)

	update := ir.NewBlock(loop)
	loop.SetUpdate(update)
	var stepOperand ir.Operand
	if n.Step != nil {
		stepOperand = b.evalInBlock(update, n.Step)
		if b.err != nil {
			return nil
		}
	} else {
		stepOperand = ir.Constant{Type: v.Type, Bytes: []byte{1}}
	}
	stepCurUse := ssa.ReadVar(update, v, 0)
	nextDef := &ir.Def{Var: v, ID: v.NextDefID()}
	ssa.Append(update, opcode.Add, nextDef, []ir.Operand{stepCurUse, stepOperand})

	loop.SetAfter(ir.NewBlock(loop))
	ssa.SealLoop(loop)
	b.openBlock()
	return nil
}
