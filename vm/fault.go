package vm

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by errors.Is against *Fault and *ParseError values.
var (
	ErrAddress = errors.New("invalid address")
	ErrOpcode  = errors.New("unrecognized opcode")
	ErrState   = errors.New("invalid machine state")
	ErrParse   = errors.New("malformed program text")
)

// FaultKind classifies a runtime fault.
type FaultKind int

const (
	// FaultAddress: a parameter or destination resolved outside program bounds.
	FaultAddress FaultKind = iota + 1
	// FaultOpcode: the instruction word does not decode.
	FaultOpcode
	// FaultState: the operation is not valid in the machine's current state.
	FaultState
)

func (k FaultKind) String() string {
	switch k {
	case FaultAddress:
		return "address fault"
	case FaultOpcode:
		return "opcode fault"
	case FaultState:
		return "state fault"
	default:
		return fmt.Sprintf("FaultKind(%d)", int(k))
	}
}

func (k FaultKind) sentinel() error {
	switch k {
	case FaultAddress:
		return ErrAddress
	case FaultOpcode:
		return ErrOpcode
	default:
		return ErrState
	}
}

// Fault is a runtime error that aborted execution.
type Fault struct {
	Kind FaultKind
	IP   int    // instruction pointer of the faulting instruction, -1 if unknown
	Word int    // raw instruction word at IP
	Addr int    // offending address for FaultAddress
	Msg  string // short detail
	Err  error  // underlying cause (e.g. an I/O handler error)
}

func (f *Fault) Error() string {
	msg := f.Kind.String()
	if f.IP >= 0 {
		msg = fmt.Sprintf("%s at ip=%d (word %d)", msg, f.IP, f.Word)
	}
	if f.Msg != "" {
		msg += ": " + f.Msg
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Is reports whether target is the sentinel for this fault's kind.
func (f *Fault) Is(target error) bool {
	return target == f.Kind.sentinel()
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// IsFault reports whether err is a *Fault of the given kind.
func IsFault(err error, kind FaultKind) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

func addressFault(addr int) *Fault {
	return &Fault{Kind: FaultAddress, IP: -1, Addr: addr, Msg: fmt.Sprintf("address %d", addr)}
}

func stateFault(msg string, cause error) *Fault {
	return &Fault{Kind: FaultState, IP: -1, Msg: msg, Err: cause}
}

// ParseError reports a token in program text that is not an integer.
type ParseError struct {
	Line, Column int
	Token        string
	Err          error
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("parse error at %d:%d: bad token %q: %v", e.Line, e.Column, e.Token, e.Err)
	}
	return fmt.Sprintf("parse error at %d:%d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
