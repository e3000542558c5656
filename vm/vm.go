package vm

import (
	"errors"
	"sync/atomic"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("intcode.vm")

// State is the lifecycle state of a Machine.
type State int

const (
	StateReady State = iota
	StateHalted
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateHalted:
		return "halted"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Machine executes one program. It owns the instruction pointer and mutates
// the program it was given in place. A Machine is not safe for concurrent
// use.
type Machine struct {
	mem   Program
	ip    int
	io    IOHandler
	state State
	steps uint64
	err   error

	// Trace logs every executed instruction at debug level.
	Trace bool
}

// NewMachine creates a machine positioned at address 0 of prog.
func NewMachine(prog Program, io IOHandler) *Machine {
	return &Machine{mem: prog, io: io}
}

// Memory returns the program store. It aliases the program passed to
// NewMachine.
func (m *Machine) Memory() Program { return m.mem }

// IP returns the current instruction pointer.
func (m *Machine) IP() int { return m.ip }

// State returns the lifecycle state.
func (m *Machine) State() State { return m.state }

// Halted reports whether the machine reached a halt instruction.
func (m *Machine) Halted() bool { return m.state == StateHalted }

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() uint64 { return m.steps }

// Err returns the fault that stopped the machine, if any.
func (m *Machine) Err() error { return m.err }

// Step executes a single instruction. It returns true once the machine has
// halted. Stepping a halted or faulted machine is a FaultState.
func (m *Machine) Step() (halted bool, err error) {
	switch m.state {
	case StateHalted:
		return true, m.fail(stateFault("machine already halted", nil))
	case StateFaulted:
		return false, &Fault{Kind: FaultState, IP: m.ip, Msg: "machine faulted", Err: m.err}
	}

	word, err := m.read(m.ip)
	if err != nil {
		return false, m.fail(err)
	}
	in, err := Decode(word)
	if err != nil {
		return false, m.fail(err)
	}

	if m.Trace && log.AllowLevel(commonlog.Debug) {
		log.Debugf("[%04d] %-4s %v", m.ip, in.Op, m.mem[m.ip+1:min(m.ip+in.Width(), len(m.mem))])
	}

	if in.op.halts {
		m.state = StateHalted
		m.steps++
		log.Debugf("halted at ip=%d after %d steps", m.ip, m.steps)
		return true, nil
	}

	jumped, err := in.op.execute(m, &in)
	if err != nil {
		return false, m.fail(err)
	}
	if !jumped {
		m.ip += in.Width()
	}
	m.steps++
	return false, nil
}

// Run steps until the machine halts or faults.
func (m *Machine) Run() error {
	for {
		halted, err := m.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// fail records err as the machine's terminal fault, filling in the
// instruction pointer and word when the fault does not carry them.
func (m *Machine) fail(err error) error {
	var f *Fault
	if errors.As(err, &f) && f.IP < 0 {
		f.IP = m.ip
		if m.ip >= 0 && m.ip < len(m.mem) {
			f.Word = m.mem[m.ip]
		}
	}
	if m.state != StateHalted {
		m.state = StateFaulted
		m.err = err
	}
	log.Debugf("fault: %v", err)
	return err
}

func (m *Machine) read(addr int) (int, error) {
	if addr < 0 || addr >= len(m.mem) {
		return 0, addressFault(addr)
	}
	return m.mem[addr], nil
}

func (m *Machine) write(addr, v int) error {
	if addr < 0 || addr >= len(m.mem) {
		return addressFault(addr)
	}
	m.mem[addr] = v
	return nil
}

// load resolves parameter i of the current instruction according to its mode.
func (m *Machine) load(in *Instruction, i int) (int, error) {
	raw, err := m.read(m.ip + 1 + i)
	if err != nil {
		return 0, err
	}
	if in.Modes[i] == ModeImmediate {
		return raw, nil
	}
	return m.read(raw)
}

// store writes v to the address held in parameter i. The mode digit of a
// destination parameter is ignored.
func (m *Machine) store(in *Instruction, i, v int) error {
	addr, err := m.read(m.ip + 1 + i)
	if err != nil {
		return err
	}
	return m.write(addr, v)
}

func (m *Machine) binary(in *Instruction, fn func(a, b int) int) error {
	a, err := m.load(in, 0)
	if err != nil {
		return err
	}
	b, err := m.load(in, 1)
	if err != nil {
		return err
	}
	return m.store(in, 2, fn(a, b))
}

func (m *Machine) jumpIf(in *Instruction, cond func(int) bool) (bool, error) {
	v, err := m.load(in, 0)
	if err != nil {
		return false, err
	}
	if !cond(v) {
		return false, nil
	}
	target, err := m.load(in, 1)
	if err != nil {
		return false, err
	}
	if target < 0 || target >= len(m.mem) {
		return false, addressFault(target)
	}
	m.ip = target
	return true, nil
}

// Engine runs programs against a fixed I/O handler.
type Engine struct {
	io      IOHandler
	running atomic.Bool

	// Trace enables per-instruction debug logging for every run.
	Trace bool
}

// New creates an Engine that performs I/O through io.
func New(io IOHandler) *Engine {
	return &Engine{io: io}
}

// Run executes prog from address 0 until it halts or faults, mutating prog
// in place. The handler is called once per input or output instruction, in
// execution order. An Engine runs one program at a time; a second
// concurrent Run is a FaultState.
func (e *Engine) Run(prog Program) error {
	if !e.running.CompareAndSwap(false, true) {
		return stateFault("engine is already running", nil)
	}
	defer e.running.Store(false)

	m := NewMachine(prog, e.io)
	m.Trace = e.Trace
	return m.Run()
}

// Run executes prog with io on a fresh Engine.
func Run(prog Program, io IOHandler) error {
	return New(io).Run(prog)
}
