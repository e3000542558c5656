package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of prog.
func Disassemble(prog Program) string {
	return DisassembleWithName(prog, "")
}

// DisassembleWithName returns a listing with a name header. Words that do
// not decode, or whose operands run past the end of the program, are
// listed as DATA one cell at a time.
func DisassembleWithName(prog Program, name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; %d cells\n\n", len(prog)))

	addr := 0
	for addr < len(prog) {
		line, n := disassembleInstruction(prog, addr)
		sb.WriteString(fmt.Sprintf("%04d  %s\n", addr, line))
		addr += n
	}
	return sb.String()
}

// disassembleInstruction formats the instruction at addr and returns its
// length in cells.
func disassembleInstruction(prog Program, addr int) (string, int) {
	in, err := Decode(prog[addr])
	if err != nil || addr+in.Width() > len(prog) {
		return fmt.Sprintf("DATA %d", prog[addr]), 1
	}

	operands := make([]string, in.Params())
	for i := range operands {
		v := prog[addr+1+i]
		if in.Modes[i] == ModeImmediate && i != in.op.dest {
			operands[i] = fmt.Sprintf("#%d", v)
		} else {
			operands[i] = fmt.Sprintf("[%d]", v)
		}
	}
	if len(operands) == 0 {
		return in.op.name, 1
	}
	return fmt.Sprintf("%-4s %s", in.op.name, strings.Join(operands, ", ")), in.Width()
}
