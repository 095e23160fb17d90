// Package wam implements the first layer of a Warren Abstract Machine, able to
// unify a single query term against a single program term.
//
// Terms are compiled into flat sequences of register-machine instructions. A
// query is compiled into put/set instructions that build the term on the heap,
// and a program into get/unify instructions that match against whatever is
// already on the heap, building new structure only where it finds an unbound
// variable.
//
// The heap is an append-only array of tagged cells, addressed by index:
//
//	#0: STR #1      a structure whose functor is at #1
//	#1: f/2         the functor descriptor, followed by its args
//	#2: REF #2      an unbound variable points to itself
//	#3: REF #5      a bound variable points to another cell
//
// Registers hold heap addresses, so a register refers to a value that may be
// further bound during execution and must be dereferenced before inspection.
//
// Learn more in "Warren’s Abstract Machine: A tutorial reconstruction", Hassan Aït-Kaci
package wam

import (
	"fmt"

	"github.com/brunokim/l0/logic"
)

// ---- Address types

// Addr is the index of a cell in the machine's heap.
type Addr int

// RegAddr is the index of a machine register.
type RegAddr int

func (a Addr) String() string    { return fmt.Sprintf("#%d", a) }
func (a RegAddr) String() string { return fmt.Sprintf("X%d", a) }

// ---- Heap cells

// Cell represents a tagged value stored in the heap.
type Cell interface {
	fmt.Stringer
	isCell()
}

// Ref is a variable cell. It's unbound when pointing to its own address.
type Ref struct {
	Addr Addr
}

// Str is a structure cell, pointing to the functor cell of the structure.
// The functor is followed by as many cells as its arity, one for each arg.
type Str struct {
	Addr Addr
}

// Functor represents a functor's name and arity. Within the heap it's the
// descriptor cell placed right after a Str.
type Functor struct {
	Name  string
	Arity int
}

func (c Ref) isCell()     {}
func (c Str) isCell()     {}
func (c Functor) isCell() {}

func (c Ref) String() string { return fmt.Sprintf("REF %v", c.Addr) }
func (c Str) String() string { return fmt.Sprintf("STR %v", c.Addr) }

func (f Functor) String() string {
	return fmt.Sprintf("%s/%d", logic.FormatAtom(f.Name), f.Arity)
}

// ---- Instructions

//go:generate stringer -type=Opcode -linecomment

// Opcode identifies the operation of an instruction.
type Opcode int

const (
	OpPutStructure  Opcode = iota // put_structure
	OpSetVariable                 // set_variable
	OpSetValue                    // set_value
	OpGetStructure                // get_structure
	OpUnifyVariable               // unify_variable
	OpUnifyValue                  // unify_value
)

// Instruction represents an instruction of the abstract machine.
type Instruction interface {
	fmt.Stringer
	Opcode() Opcode
	isInstruction()
}

// PutStructure instruction: put_structure <f/n>, <reg X>
type PutStructure struct {
	Functor Functor
	Reg     RegAddr
}

// SetVariable instruction: set_variable <reg X>
type SetVariable struct {
	Reg RegAddr
}

// SetValue instruction: set_value <reg X>
type SetValue struct {
	Reg RegAddr
}

// GetStructure instruction: get_structure <f/n>, <reg X>
type GetStructure struct {
	Functor Functor
	Reg     RegAddr
}

// UnifyVariable instruction: unify_variable <reg X>
type UnifyVariable struct {
	Reg RegAddr
}

// UnifyValue instruction: unify_value <reg X>
type UnifyValue struct {
	Reg RegAddr
}

func (i PutStructure) isInstruction()  {}
func (i SetVariable) isInstruction()   {}
func (i SetValue) isInstruction()      {}
func (i GetStructure) isInstruction()  {}
func (i UnifyVariable) isInstruction() {}
func (i UnifyValue) isInstruction()    {}

func (i PutStructure) Opcode() Opcode  { return OpPutStructure }
func (i SetVariable) Opcode() Opcode   { return OpSetVariable }
func (i SetValue) Opcode() Opcode      { return OpSetValue }
func (i GetStructure) Opcode() Opcode  { return OpGetStructure }
func (i UnifyVariable) Opcode() Opcode { return OpUnifyVariable }
func (i UnifyValue) Opcode() Opcode    { return OpUnifyValue }

func (i PutStructure) String() string {
	return fmt.Sprintf("put_structure %v, %v", i.Functor, i.Reg)
}

func (i SetVariable) String() string {
	return fmt.Sprintf("set_variable %v", i.Reg)
}

func (i SetValue) String() string {
	return fmt.Sprintf("set_value %v", i.Reg)
}

func (i GetStructure) String() string {
	return fmt.Sprintf("get_structure %v, %v", i.Functor, i.Reg)
}

func (i UnifyVariable) String() string {
	return fmt.Sprintf("unify_variable %v", i.Reg)
}

func (i UnifyValue) String() string {
	return fmt.Sprintf("unify_value %v", i.Reg)
}

// register returns the register referenced by an instruction.
func register(instr Instruction) RegAddr {
	switch i := instr.(type) {
	case PutStructure:
		return i.Reg
	case SetVariable:
		return i.Reg
	case SetValue:
		return i.Reg
	case GetStructure:
		return i.Reg
	case UnifyVariable:
		return i.Reg
	case UnifyValue:
		return i.Reg
	default:
		panic(fmt.Sprintf("wam.register: unhandled type %T (%v)", instr, instr))
	}
}

// NumRegisters returns the size of the register file required to run code.
func NumRegisters(code []Instruction) int {
	var n int
	for _, instr := range code {
		if r := int(register(instr)) + 1; r > n {
			n = r
		}
	}
	return n
}

// ---- Machine

//go:generate stringer -type=UnificationMode

// UnificationMode is an enum for the current machine's read or write unification approach.
type UnificationMode int

const (
	Read UnificationMode = iota
	Write
)

// Machine represents an abstract machine state.
type Machine struct {
	// Heap cells, addressed by their index. The heap only grows, and a cell is
	// only rewritten when an unbound Ref is bound.
	Heap []Cell

	// Register file of the current run. It's provided by the caller of Run.
	Reg []Addr

	// Read or write mode for structure args.
	Mode UnificationMode

	// Address of the next structure arg to read, in read mode.
	S Addr

	// Whether the last unification or structure match failed.
	Fail bool

	// File to append debug information, one JSON object per line.
	DebugFilename string

	// Push-down list of addresses pending unification.
	pdl []Addr

	// Reason of the last failure.
	failReason string

	// Debugging info: current run and instruction.
	runID string
	step  int
	instr Instruction
}

// NewMachine returns a machine with an empty heap.
func NewMachine() *Machine {
	return &Machine{}
}
