package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// IOHandler is the capability a machine uses for its input and output
// instructions. Blocking, buffering and any derived state are entirely the
// handler's business; the machine only calls Input once per input
// instruction and Output once per output instruction.
type IOHandler interface {
	// Input returns the next input value.
	Input() (int, error)
	// Output accepts one output value.
	Output(v int) error
}

// ErrInputExhausted is returned by scripted handlers with no values left.
var ErrInputExhausted = errors.New("input exhausted")

// Console reads one integer per line from r and writes one value per line
// to w. Input blocks until a full line is available.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	Prompt string // written to out before each read when non-empty
}

// NewConsole returns a console handler over r and w.
func NewConsole(r io.Reader, w io.Writer) *Console {
	return &Console{in: bufio.NewReader(r), out: w}
}

func (c *Console) Input() (int, error) {
	if c.Prompt != "" {
		fmt.Fprint(c.out, c.Prompt)
	}
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return 0, fmt.Errorf("reading input: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("parsing input: %w", err)
	}
	return v, nil
}

func (c *Console) Output(v int) error {
	_, err := fmt.Fprintln(c.out, v)
	return err
}

// Scripted feeds a fixed sequence of inputs and records every output.
type Scripted struct {
	Inputs  []int
	Outputs []int
	pos     int
}

// NewScripted returns a handler that supplies inputs in order.
func NewScripted(inputs ...int) *Scripted {
	return &Scripted{Inputs: inputs}
}

func (s *Scripted) Input() (int, error) {
	if s.pos >= len(s.Inputs) {
		return 0, ErrInputExhausted
	}
	v := s.Inputs[s.pos]
	s.pos++
	return v, nil
}

func (s *Scripted) Output(v int) error {
	s.Outputs = append(s.Outputs, v)
	return nil
}

// Phased returns its phase setting on the first read and Signal on every
// later read. It seeds one pipeline stage with its configuration and then
// relays a running value.
type Phased struct {
	Phase  int
	Signal int

	reads   int
	last    int
	emitted bool
}

func (p *Phased) Input() (int, error) {
	p.reads++
	if p.reads == 1 {
		return p.Phase, nil
	}
	return p.Signal, nil
}

func (p *Phased) Output(v int) error {
	p.last = v
	p.emitted = true
	return nil
}

// Last returns the most recent output value and whether there was one.
func (p *Phased) Last() (int, bool) {
	return p.last, p.emitted
}

// IOFuncs adapts a pair of functions to IOHandler. A nil function fails
// with FaultState when the machine calls it.
type IOFuncs struct {
	In  func() (int, error)
	Out func(int) error
}

func (f IOFuncs) Input() (int, error) {
	if f.In == nil {
		return 0, errors.New("no input attached")
	}
	return f.In()
}

func (f IOFuncs) Output(v int) error {
	if f.Out == nil {
		return errors.New("no output attached")
	}
	return f.Out(v)
}
