// Package opcode defines the closed set of IR instruction opcodes and their
// static metadata (arity, whether the instruction produces a def, whether
// the opcode is an abstract base used only for "is-a" queries).
package opcode

// Opcode identifies an instruction kind. The set is closed: nothing outside
// this file adds a member.
type Opcode uint

const (
	Phi Opcode = iota
	Assign
	Call
	Fetch
	Convert
	Terminate

	Branch // abstract base of Cbranch/Ucbranch
	Cbranch
	Ucbranch

	Relation // abstract base of Eq..Ge
	Eq
	Ne
	Lt
	Le
	Gt
	Ge

	Arithmetic // abstract base of Add..Neg
	Add
	Sub
	Mul
	Div
	Mod
	Rem
	Neg

	Logical // abstract base of Land/Lor/Lnot
	Land
	Lor
	Lnot

	Bitwise // abstract base of Band..Bnot
	Band
	Bor
	Bxor
	Bshiftl
	Bashiftr
	Blshiftr
	Bnot
)

// Arity describes how many operands an instruction of a given opcode takes.
// NAry covers phi, call, and the abstract bases, none of which have a single
// fixed operand count.
type Arity int

const (
	NAry    Arity = -1
	Nullary Arity = 0
	Unary   Arity = 1
	Binary  Arity = 2
	Ternary Arity = 3
)

// Meta is the static attribute record for one opcode.
type Meta struct {
	Name     string
	Opcode   Opcode
	Arity    Arity
	HasDef   bool
	Abstract bool
	Base     Opcode
	hasBase  bool
}

var table = map[Opcode]Meta{
	Phi:       {Name: "phi", Opcode: Phi, Arity: NAry, HasDef: true},
	Assign:    {Name: "assign", Opcode: Assign, Arity: Unary, HasDef: true},
	Call:      {Name: "call", Opcode: Call, Arity: NAry, HasDef: true},
	Fetch:     {Name: "fetch", Opcode: Fetch, Arity: Nullary, HasDef: true},
	Convert:   {Name: "convert", Opcode: Convert, Arity: Unary, HasDef: true},
	Terminate: {Name: "terminate", Opcode: Terminate, Arity: Nullary, HasDef: false},

	Branch:   {Name: "branch", Opcode: Branch, Arity: NAry, HasDef: false, Abstract: true},
	Cbranch:  base(Branch, "cbranch", Binary, false),
	Ucbranch: base(Branch, "ucbranch", Unary, false),

	Relation: {Name: "relation", Opcode: Relation, Arity: NAry, HasDef: true, Abstract: true},
	Eq:       base(Relation, "eq", Binary, true),
	Ne:       base(Relation, "ne", Binary, true),
	Lt:       base(Relation, "lt", Binary, true),
	Le:       base(Relation, "le", Binary, true),
	Gt:       base(Relation, "gt", Binary, true),
	Ge:       base(Relation, "ge", Binary, true),

	Arithmetic: {Name: "arithmetic", Opcode: Arithmetic, Arity: NAry, HasDef: true, Abstract: true},
	Add:        base(Arithmetic, "add", Binary, true),
	Sub:        base(Arithmetic, "sub", Binary, true),
	Mul:        base(Arithmetic, "mul", Binary, true),
	Div:        base(Arithmetic, "div", Binary, true),
	Mod:        base(Arithmetic, "mod", Binary, true),
	Rem:        base(Arithmetic, "rem", Binary, true),
	Neg:        base(Arithmetic, "neg", Unary, true),

	Logical: {Name: "logical", Opcode: Logical, Arity: NAry, HasDef: true, Abstract: true},
	Land:    base(Logical, "land", Binary, true),
	Lor:     base(Logical, "lor", Binary, true),
	Lnot:    base(Logical, "lnot", Unary, true),

	Bitwise:  {Name: "bitwise", Opcode: Bitwise, Arity: NAry, HasDef: true, Abstract: true},
	Band:     base(Bitwise, "band", Binary, true),
	Bor:      base(Bitwise, "bor", Binary, true),
	Bxor:     base(Bitwise, "bxor", Binary, true),
	Bshiftl:  base(Bitwise, "bshiftl", Binary, true),
	Bashiftr: base(Bitwise, "bashiftr", Binary, true),
	Blshiftr: base(Bitwise, "blshiftr", Binary, true),
	Bnot:     base(Bitwise, "bnot", Unary, true),
}

func base(b Opcode, name string, arity Arity, hasDef bool) Meta {
	return Meta{Name: name, Arity: arity, HasDef: hasDef, Base: b, hasBase: true}
}

// Of returns the metadata for op. It panics on an opcode outside the closed
// set, which can only happen from hand-built Opcode values.
func Of(op Opcode) Meta {
	m, ok := table[op]
	if !ok {
		panic("opcode: unknown opcode")
	}
	m.Opcode = op
	return m
}

// HasDef reports whether an instruction with this opcode produces a def.
func HasDef(op Opcode) bool { return Of(op).HasDef }

// ArityOf reports the fixed operand count, or NAry if the opcode is variadic.
func ArityOf(op Opcode) Arity { return Of(op).Arity }

// IsA walks base_opcode links to answer "is op a descendant of base?",
// e.g. IsA(Add, Arithmetic) == true.
func IsA(op, base Opcode) bool {
	for {
		if op == base {
			return true
		}
		m := table[op]
		if !m.hasBase {
			return false
		}
		op = m.Base
	}
}

// String returns the opcode's closed-table name.
func (op Opcode) String() string {
	return Of(op).Name
}
