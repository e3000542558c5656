package vm

import "fmt"

// MaxParams is the largest parameter count the instruction format can
// carry a mode digit for.
const MaxParams = 3

// Mode is a parameter addressing mode.
type Mode int

const (
	ModePosition  Mode = 0 // parameter is an address
	ModeImmediate Mode = 1 // parameter is the value
)

func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Word  int
	Op    Opcode
	Modes [MaxParams]Mode

	op *operation
}

// Params returns the parameter count of the decoded opcode.
func (in *Instruction) Params() int {
	return in.op.params
}

// Width returns the instruction length in cells.
func (in *Instruction) Width() int {
	return in.op.width()
}

// Decode splits an instruction word into opcode and parameter modes. Only
// the mode digits of the opcode's declared parameters are examined; each
// must be 0 or 1. Failures are returned as *Fault with Kind FaultOpcode and
// an unknown IP.
func Decode(word int) (Instruction, error) {
	in := Instruction{Word: word}
	if word < 0 {
		return in, &Fault{Kind: FaultOpcode, IP: -1, Word: word, Msg: "negative instruction word"}
	}

	in.Op = Opcode(word % 100)
	op, ok := instructionSet[in.Op]
	if !ok {
		return in, &Fault{Kind: FaultOpcode, IP: -1, Word: word, Msg: fmt.Sprintf("opcode %d", int(in.Op))}
	}
	in.op = op

	digits := word / 100
	for i := 0; i < op.params; i++ {
		d := digits % 10
		digits /= 10
		if d != int(ModePosition) && d != int(ModeImmediate) {
			return in, &Fault{Kind: FaultOpcode, IP: -1, Word: word, Msg: fmt.Sprintf("mode digit %d for parameter %d", d, i)}
		}
		in.Modes[i] = Mode(d)
	}
	return in, nil
}
