// Package ir implements the structured-CFG data model: variables, defs,
// uses, instructions, def-timelines, and the block/sequence/fork/loop/
// function component tree (spec §3, §4.1–§4.4). It holds the raw data and
// bookkeeping only; the incremental SSA algorithm that mutates it lives in
// package ssa, which imports ir rather than the reverse.
package ir

import "octoir/internal/irtype"

// Variable is owned by a Function and identified by name. It tracks the
// count of def ids issued to it so every Def it produces gets a unique,
// monotonically increasing id.
type Variable struct {
	Name    string
	Type    irtype.Type // inferred type; irtype.Any if unconstrained
	numDefs int
}

// NextDefID allocates and returns the next def id for this variable.
func (v *Variable) NextDefID() int {
	id := v.numDefs
	v.numDefs++
	return id
}

// NumDefs reports how many defs have been issued to this variable so far.
func (v *Variable) NumDefs() int { return v.numDefs }

// Def is a logical SSA name (variable, def_id), produced by exactly one
// instruction with HasDef == true. Def ids are unique within Variable and
// monotonically assigned by Variable.NextDefID.
type Def struct {
	Var   *Variable
	ID    int
	Instr *Instruction // the instruction that produced this def
}
