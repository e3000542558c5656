package vm

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Program is the unified code and data store of one machine. Cells are
// addressed from 0 and mutated in place during execution.
type Program []int

// programText is the grammar of the textual program form:
// signed decimal integers separated by commas.
type programText struct {
	Cells []*programCell `parser:"@@ ( \",\" @@ )*"`
}

type programCell struct {
	Pos   lexer.Position
	Value string `parser:"@Int"`
}

var programLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var programParser = participle.MustBuild[programText](
	participle.Lexer(programLexer),
	participle.Elide("Whitespace"),
)

// ParseProgram parses comma-separated program text. Whitespace and newlines
// around values are ignored. Any token that is not an integer yields a
// *ParseError; nothing is returned partially.
func ParseProgram(text string) (Program, error) {
	ast, err := programParser.ParseString("", text)
	if err != nil {
		return nil, toParseError(text, err)
	}
	if len(ast.Cells) == 0 {
		return nil, &ParseError{Line: 1, Column: 1, Err: errors.New("empty program")}
	}

	prog := make(Program, len(ast.Cells))
	for i, c := range ast.Cells {
		v, err := strconv.Atoi(c.Value)
		if err != nil {
			return nil, &ParseError{Line: c.Pos.Line, Column: c.Pos.Column, Token: c.Value, Err: err}
		}
		prog[i] = v
	}
	return prog, nil
}

// MustParseProgram is like ParseProgram but panics on error. Intended for
// literal programs embedded in code and tests.
func MustParseProgram(text string) Program {
	p, err := ParseProgram(text)
	if err != nil {
		panic(err)
	}
	return p
}

// ReadProgramFile loads and parses a program text file.
func ReadProgramFile(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	p, err := ParseProgram(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func toParseError(text string, err error) *ParseError {
	pe := &ParseError{Err: errors.New("invalid program text")}

	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		pe.Line, pe.Column = pos.Line, pos.Column
		pe.Token = tokenAt(text, pos.Offset)
		pe.Err = errors.New(perr.Message())
		return pe
	}
	pe.Err = err
	return pe
}

// tokenAt returns the run of non-separator characters starting at offset.
func tokenAt(text string, offset int) string {
	if offset < 0 || offset >= len(text) {
		return ""
	}
	end := strings.IndexFunc(text[offset:], func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if end < 0 {
		return text[offset:]
	}
	if end == 0 {
		return text[offset : offset+1]
	}
	return text[offset : offset+end]
}

// Clone returns an independent copy of the program.
func (p Program) Clone() Program {
	c := make(Program, len(p))
	copy(c, p)
	return c
}

// String renders the program in its textual form.
func (p Program) String() string {
	var sb strings.Builder
	for i, v := range p {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// Hash returns the SHA-256 of the textual form, used to identify a program
// across runs.
func (p Program) Hash() [32]byte {
	return sha256.Sum256([]byte(p.String()))
}

// Patch stores noun and verb into cells 1 and 2.
func (p Program) Patch(noun, verb int) error {
	if len(p) < 3 {
		return addressFault(2)
	}
	p[1] = noun
	p[2] = verb
	return nil
}
