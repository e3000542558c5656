// Package vm implements the intcode virtual machine.
//
// This package contains:
//   - Program store and the comma-separated program text parser
//   - Instruction decoder (decimal opcode and parameter-mode digits)
//   - Opcode table driving the execution loop
//   - Machine (single-step interpreter) and Engine (run-to-halt entry point)
//   - I/O handler interface plus console, scripted and phase-setting adapters
//   - Disassembler
//
// # Instruction Format
//
// An instruction word is read as a decimal number. The two lowest digits
// select the opcode; each higher digit gives the addressing mode of one
// parameter, starting with parameter 0 at the hundreds digit:
//
//	1002  ->  opcode 02 (multiply), p0 position, p1 immediate, p2 position
//
// Mode 0 (position) treats the parameter as an address to dereference,
// mode 1 (immediate) uses it literally. Destination parameters are always
// addresses whatever their mode digit says. At most three parameters are
// encodable and opcodes are limited to two digits; the format is fixed and
// existing programs depend on the exact digit positions.
//
// # Faults
//
// Execution stops on the halt instruction or on the first fault. Faults are
// reported as *Fault values whose Kind is one of FaultAddress, FaultOpcode or
// FaultState. Memory writes performed before the fault are not rolled back.
package vm
