package wam

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

func logger() commonlog.Logger {
	return commonlog.GetLogger("l0.wam")
}

// FailError is returned by Run when an instruction fails.
type FailError struct {
	// Position of the failed instruction within the code.
	Pos int
	// Failed instruction.
	Instr Instruction
	// Description of the mismatch.
	Reason string
}

func (err *FailError) Error() string {
	return fmt.Sprintf("%v (instruction %d): %s", err.Instr, err.Pos, err.Reason)
}

type handler func(m *Machine, instr Instruction)

var handlers = [...]handler{
	OpPutStructure:  func(m *Machine, instr Instruction) { m.putStructure(instr.(PutStructure)) },
	OpSetVariable:   func(m *Machine, instr Instruction) { m.setVariable(instr.(SetVariable)) },
	OpSetValue:      func(m *Machine, instr Instruction) { m.setValue(instr.(SetValue)) },
	OpGetStructure:  func(m *Machine, instr Instruction) { m.getStructure(instr.(GetStructure)) },
	OpUnifyVariable: func(m *Machine, instr Instruction) { m.unifyVariable(instr.(UnifyVariable)) },
	OpUnifyValue:    func(m *Machine, instr Instruction) { m.unifyValue(instr.(UnifyValue)) },
}

// Run executes code against the register file reg, stopping at the first
// instruction that fails.
//
// The fail flag is cleared at the start. On failure, the flag remains set and
// a *FailError is returned. Heap cells written before the failure are kept.
//
// It panics if reg is smaller than the registers referenced by code.
func (m *Machine) Run(code []Instruction, reg []Addr) error {
	if n := NumRegisters(code); len(reg) < n {
		panic(fmt.Sprintf("wam.Machine.Run: code needs %d registers, got %d", n, len(reg)))
	}
	m.Reg = reg
	m.Fail = false
	m.failReason = ""
	m.runID = uuid.New().String()
	f := m.debugInit(code)
	defer m.debugClose(f)
	for i, instr := range code {
		m.step, m.instr = i, instr
		logger().Debugf("%d: %v", i, instr)
		m.Execute(instr)
		m.debugWrite(f)
		if m.Fail {
			return &FailError{Pos: i, Instr: instr, Reason: m.failReason}
		}
	}
	return nil
}

// RunCode executes compiled code on a fresh register file, and returns it.
func (m *Machine) RunCode(code *Code) ([]Addr, error) {
	reg := make([]Addr, code.NumRegisters)
	err := m.Run(code.Instructions, reg)
	return reg, err
}

// Execute runs a single instruction against the current register file.
func (m *Machine) Execute(instr Instruction) {
	handlers[instr.Opcode()](m, instr)
}

// ---- Instruction handlers

func (m *Machine) putStructure(instr PutStructure) {
	// Place a new structure during query building. Its args are set next.
	m.setReg(instr.Reg, m.newStr(instr.Functor))
}

func (m *Machine) setVariable(instr SetVariable) {
	// Place a newly-seen var as an unbound ref during query building.
	m.setReg(instr.Reg, m.newRef())
}

func (m *Machine) setValue(instr SetValue) {
	// Copy an already-seen cell to the heap during query building.
	m.push(m.cell(m.reg(instr.Reg)))
}

func (m *Machine) getStructure(instr GetStructure) {
	// If the register holds a ref, build the struct on the heap and bind them.
	// If it holds a struct with the same functor, read its args next.
	a := m.Deref(m.reg(instr.Reg))
	switch c := m.cell(a).(type) {
	case Ref:
		h := m.newStr(instr.Functor)
		m.Bind(a, h)
		m.Mode = Write
	case Str:
		if fn := m.cell(c.Addr); fn != instr.Functor {
			m.fail("expected %v, got %v", instr.Functor, fn)
			return
		}
		m.S = c.Addr + 1
		m.Mode = Read
	default:
		m.fail("expected %v, got %v", instr.Functor, c)
	}
}

func (m *Machine) unifyVariable(instr UnifyVariable) {
	// In read mode, place the current struct arg into register.
	// In write mode, place an unbound ref in the heap.
	switch m.Mode {
	case Read:
		m.setReg(instr.Reg, m.S)
	case Write:
		m.setReg(instr.Reg, m.newRef())
	}
	m.S++
}

func (m *Machine) unifyValue(instr UnifyValue) {
	// In read mode, unify register with the current struct arg.
	// In write mode, copy the register cell to the heap.
	switch m.Mode {
	case Read:
		m.Unify(m.reg(instr.Reg), m.S)
	case Write:
		m.push(m.cell(m.reg(instr.Reg)))
	}
	m.S++
}

// ---- Debugging

func (m *Machine) debugInit(code []Instruction) io.WriteCloser {
	if m.DebugFilename == "" {
		return nil
	}
	f, err := os.OpenFile(m.DebugFilename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger().Errorf("failed to open debug file: %v", err)
		return nil
	}
	data, err := json.Marshal(map[string]interface{}{
		"RunID": m.runID,
		"Code":  code,
	})
	if err != nil {
		logger().Errorf("failed to marshal code: %v", err)
		return f
	}
	f.Write(data)
	f.Write([]byte{'\n'})
	return f
}

func (m *Machine) debugClose(f io.WriteCloser) {
	if f == nil {
		return
	}
	if err := f.Close(); err != nil {
		logger().Errorf("failed to close debug file: %v", err)
	}
}

func (m *Machine) debugWrite(f io.WriteCloser) {
	if f == nil {
		return
	}
	data, err := json.Marshal(m)
	if err != nil {
		logger().Errorf("failed to marshal machine: %v", err)
		return
	}
	f.Write(data)
	f.Write([]byte{'\n'})
}
