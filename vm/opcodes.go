package vm

import "fmt"

// Opcode identifies an instruction; it is the two lowest decimal digits of
// an instruction word.
type Opcode int

const (
	OpAdd         Opcode = 1  // dest := p0 + p1
	OpMultiply    Opcode = 2  // dest := p0 * p1
	OpInput       Opcode = 3  // dest := next input value
	OpOutput      Opcode = 4  // output p0
	OpJumpIfTrue  Opcode = 5  // if p0 != 0 { ip := p1 }
	OpJumpIfFalse Opcode = 6  // if p0 == 0 { ip := p1 }
	OpLessThan    Opcode = 7  // dest := p0 < p1
	OpEquals      Opcode = 8  // dest := p0 == p1
	OpHalt        Opcode = 99 // stop
)

// executionFunc performs one decoded instruction. It reports whether it
// replaced the instruction pointer; when it did not, the machine advances
// by the instruction width.
type executionFunc func(m *Machine, in *Instruction) (jumped bool, err error)

// operation is one entry of the opcode table.
type operation struct {
	name    string
	params  int // parameter count, 0..MaxParams
	dest    int // index of the destination parameter, -1 if none
	execute executionFunc
	halts   bool
}

// width is the instruction length in cells, opcode word included.
func (op *operation) width() int {
	return 1 + op.params
}

// instructionSet maps opcodes to their parameter layout and behaviour.
// Extending the instruction set means adding an entry here.
var instructionSet = map[Opcode]*operation{
	OpAdd:         {name: "ADD", params: 3, dest: 2, execute: opAdd},
	OpMultiply:    {name: "MUL", params: 3, dest: 2, execute: opMultiply},
	OpInput:       {name: "IN", params: 1, dest: 0, execute: opInput},
	OpOutput:      {name: "OUT", params: 1, dest: -1, execute: opOutput},
	OpJumpIfTrue:  {name: "JT", params: 2, dest: -1, execute: opJumpIfTrue},
	OpJumpIfFalse: {name: "JF", params: 2, dest: -1, execute: opJumpIfFalse},
	OpLessThan:    {name: "LT", params: 3, dest: 2, execute: opLessThan},
	OpEquals:      {name: "EQ", params: 3, dest: 2, execute: opEquals},
	OpHalt:        {name: "HALT", params: 0, dest: -1, halts: true},
}

// OpcodeInfo describes an opcode for tooling such as the disassembler.
type OpcodeInfo struct {
	Name   string
	Params int
	Dest   int // destination parameter index, -1 if none
}

// GetOpcodeInfo returns metadata for op. ok is false for unknown opcodes.
func GetOpcodeInfo(op Opcode) (info OpcodeInfo, ok bool) {
	o, ok := instructionSet[op]
	if !ok {
		return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(%d)", int(op)), Dest: -1}, false
	}
	return OpcodeInfo{Name: o.name, Params: o.params, Dest: o.dest}, true
}

func (op Opcode) String() string {
	info, _ := GetOpcodeInfo(op)
	return info.Name
}

func opAdd(m *Machine, in *Instruction) (bool, error) {
	return false, m.binary(in, func(a, b int) int { return a + b })
}

func opMultiply(m *Machine, in *Instruction) (bool, error) {
	return false, m.binary(in, func(a, b int) int { return a * b })
}

func opLessThan(m *Machine, in *Instruction) (bool, error) {
	return false, m.binary(in, func(a, b int) int { return boolToInt(a < b) })
}

func opEquals(m *Machine, in *Instruction) (bool, error) {
	return false, m.binary(in, func(a, b int) int { return boolToInt(a == b) })
}

func opInput(m *Machine, in *Instruction) (bool, error) {
	v, err := m.io.Input()
	if err != nil {
		return false, stateFault("input", err)
	}
	return false, m.store(in, 0, v)
}

func opOutput(m *Machine, in *Instruction) (bool, error) {
	v, err := m.load(in, 0)
	if err != nil {
		return false, err
	}
	if err := m.io.Output(v); err != nil {
		return false, stateFault("output", err)
	}
	return false, nil
}

func opJumpIfTrue(m *Machine, in *Instruction) (bool, error) {
	return m.jumpIf(in, func(v int) bool { return v != 0 })
}

func opJumpIfFalse(m *Machine, in *Instruction) (bool, error) {
	return m.jumpIf(in, func(v int) bool { return v == 0 })
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
