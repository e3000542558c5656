package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestConsoleEcho(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("42\n-7\n"), &out)

	if err := Run(Program{3, 0, 4, 0, 3, 0, 4, 0, 99}, c); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.String() != "42\n-7\n" {
		t.Errorf("output = %q, want %q", out.String(), "42\n-7\n")
	}
}

func TestConsolePromptAndTrailingLine(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("  5  "), &out)
	c.Prompt = "> "

	v, err := c.Input()
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if v != 5 {
		t.Errorf("Input() = %d, want 5", v)
	}
	if out.String() != "> " {
		t.Errorf("prompt output = %q", out.String())
	}

	if _, err := c.Input(); err == nil {
		t.Error("expected error at EOF")
	}
}

func TestConsoleBadInput(t *testing.T) {
	c := NewConsole(strings.NewReader("abc\n"), &bytes.Buffer{})
	err := Run(Program{3, 0, 99}, c)
	if !IsFault(err, FaultState) {
		t.Errorf("err = %v, want state fault", err)
	}
}

func TestScripted(t *testing.T) {
	s := NewScripted(1, 2)
	for _, want := range []int{1, 2} {
		v, err := s.Input()
		if err != nil || v != want {
			t.Errorf("Input() = %d, %v; want %d", v, err, want)
		}
	}
	if _, err := s.Input(); !errors.Is(err, ErrInputExhausted) {
		t.Errorf("err = %v, want ErrInputExhausted", err)
	}
}

func TestPhased(t *testing.T) {
	p := &Phased{Phase: 3, Signal: 10}
	if _, ok := p.Last(); ok {
		t.Error("Last() reported a value before any output")
	}
	for i, want := range []int{3, 10, 10} {
		v, _ := p.Input()
		if v != want {
			t.Errorf("read %d = %d, want %d", i, v, want)
		}
	}
	_ = p.Output(1)
	_ = p.Output(2)
	if v, ok := p.Last(); !ok || v != 2 {
		t.Errorf("Last() = %d, %v; want 2, true", v, ok)
	}
}

func TestIOFuncsUnattached(t *testing.T) {
	if err := Run(Program{3, 0, 99}, IOFuncs{}); !IsFault(err, FaultState) {
		t.Errorf("input err = %v, want state fault", err)
	}
	if err := Run(Program{104, 0, 99}, IOFuncs{}); !IsFault(err, FaultState) {
		t.Errorf("output err = %v, want state fault", err)
	}
}
