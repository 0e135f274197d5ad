// Package astiface is the builder-facing contract spec.md treats as an
// external collaborator (§1, §6.4): AST parsing and lexing live outside
// this module entirely. What lives here is the shape a real parser's nodes
// must implement to drive internal/irbuild, grounded in the teacher's
// parser/ast.go Expr/ExprVisitor double-dispatch pattern, generalised to
// the closed node-kind list §6.4 names.
package astiface

// Node is any AST node a builder can walk.
type Node interface {
	Accept(v Visitor) any
}

// Visitor double-dispatches over every node kind §6.4 names. Real visitors
// embed NopVisitor and override only the kinds they care about: every
// unimplemented node is then a NOP acceptor, the stable extension point
// §6.4 requires.
type Visitor interface {
	VisitAssignment(*Assignment) any
	VisitIdentifier(*Identifier) any
	VisitConstant(*Constant) any
	VisitBinary(*Binary) any
	VisitUnary(*Unary) any
	VisitIf(*If) any
	VisitSwitch(*Switch) any
	VisitWhile(*While) any
	VisitDoUntil(*DoUntil) any
	VisitFor(*For) any
	VisitTryCatch(*TryCatch) any
	VisitUnwindProtect(*UnwindProtect) any
	VisitFunctionDef(*FunctionDef) any
	VisitBreak(*Break) any
	VisitContinue(*Continue) any
	VisitReturn(*Return) any
	VisitBlock(*Block) any
}

// NopVisitor implements Visitor with a NOP for every kind. Embed it and
// override only the methods a concrete visitor needs.
type NopVisitor struct{}

func (NopVisitor) VisitAssignment(*Assignment) any         { return nil }
func (NopVisitor) VisitIdentifier(*Identifier) any         { return nil }
func (NopVisitor) VisitConstant(*Constant) any             { return nil }
func (NopVisitor) VisitBinary(*Binary) any                 { return nil }
func (NopVisitor) VisitUnary(*Unary) any                   { return nil }
func (NopVisitor) VisitIf(*If) any                         { return nil }
func (NopVisitor) VisitSwitch(*Switch) any                 { return nil }
func (NopVisitor) VisitWhile(*While) any                   { return nil }
func (NopVisitor) VisitDoUntil(*DoUntil) any                { return nil }
func (NopVisitor) VisitFor(*For) any                       { return nil }
func (NopVisitor) VisitTryCatch(*TryCatch) any             { return nil }
func (NopVisitor) VisitUnwindProtect(*UnwindProtect) any   { return nil }
func (NopVisitor) VisitFunctionDef(*FunctionDef) any       { return nil }
func (NopVisitor) VisitBreak(*Break) any                   { return nil }
func (NopVisitor) VisitContinue(*Continue) any             { return nil }
func (NopVisitor) VisitReturn(*Return) any                 { return nil }
func (NopVisitor) VisitBlock(*Block) any                   { return nil }

// Assignment: name = value.
type Assignment struct {
	Name  string
	Value Node
}

func (a *Assignment) Accept(v Visitor) any { return v.VisitAssignment(a) }

// Identifier: a bare variable reference.
type Identifier struct {
	Name string
}

func (i *Identifier) Accept(v Visitor) any { return v.VisitIdentifier(i) }

// Constant: a literal of a known IR type, raw-encoded the same way
// staticir.StaticConstant carries its bytes.
type Constant struct {
	Type  string // parser-facing type tag; irbuild maps it onto irtype.Type
	Bytes []byte
}

func (c *Constant) Accept(v Visitor) any { return v.VisitConstant(c) }

// Binary: left `op` right, op one of the opcode.Opcode names §6.1 lists
// (add, sub, eq, land, band, ...).
type Binary struct {
	Op    string
	Left  Node
	Right Node
}

func (b *Binary) Accept(v Visitor) any { return v.VisitBinary(b) }

// Unary: `op` operand (neg, lnot, bnot).
type Unary struct {
	Op      string
	Operand Node
}

func (u *Unary) Accept(v Visitor) any { return v.VisitUnary(u) }

// If: cond, then-branch statements, optional else-branch statements.
type If struct {
	Cond Node
	Then []Node
	Else []Node
}

func (i *If) Accept(v Visitor) any { return v.VisitIf(i) }

// Switch: subject plus ordered (match-value, body) cases and an optional
// default body, a structural generality astiface carries for contract
// completeness; irbuild does not lower it (not exercised by any spec.md
// end-to-end scenario).
type Switch struct {
	Subject Node
	Cases   []SwitchCase
	Default []Node
}

type SwitchCase struct {
	Match Node
	Body  []Node
}

func (s *Switch) Accept(v Visitor) any { return v.VisitSwitch(s) }

// While: cond checked before each iteration.
type While struct {
	Cond Node
	Body []Node
}

func (w *While) Accept(v Visitor) any { return v.VisitWhile(w) }

// DoUntil: body runs at least once, loop continues while Cond is false.
type DoUntil struct {
	Body []Node
	Cond Node
}

func (d *DoUntil) Accept(v Visitor) any { return v.VisitDoUntil(d) }

// For: counted iteration over [Low, High) by Step, binding Var each pass.
type For struct {
	Var  string
	Low  Node
	High Node
	Step Node
	Body []Node
}

func (f *For) Accept(v Visitor) any { return v.VisitFor(f) }

// TryCatch, UnwindProtect: exception-handling forms the opcode/IR model
// has no lowering for in this module's scope (no exception edges in the
// structured component tree, §3.2); astiface carries the node shape for
// contract completeness and irbuild's NOP default leaves them unlowered.
type TryCatch struct {
	Try     []Node
	Catch   []Node
	CatchID string
}

func (t *TryCatch) Accept(v Visitor) any { return v.VisitTryCatch(t) }

type UnwindProtect struct {
	Body    []Node
	Cleanup []Node
}

func (u *UnwindProtect) Accept(v Visitor) any { return v.VisitUnwindProtect(u) }

// FunctionDef: name, parameter names, body statements.
type FunctionDef struct {
	Name   string
	Params []string
	Body   []Node
}

func (f *FunctionDef) Accept(v Visitor) any { return v.VisitFunctionDef(f) }

type Break struct{}

func (b *Break) Accept(v Visitor) any { return v.VisitBreak(b) }

type Continue struct{}

func (c *Continue) Accept(v Visitor) any { return v.VisitContinue(c) }

// Return: optional value (absent for a bare `return` in void context).
type Return struct {
	Value Node
}

func (r *Return) Accept(v Visitor) any { return v.VisitReturn(r) }

// Block: an ordered list of statements sharing one lexical scope. Not a
// §6.4-named kind on its own, but every compound body (then/else/loop
// bodies) is one, so it is visited like any other node rather than special
// cased by callers.
type Block struct {
	Stmts []Node
}

func (b *Block) Accept(v Visitor) any { return v.VisitBlock(b) }
