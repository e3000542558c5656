// intcode CLI - runs, inspects and searches intcode programs
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/intcode/manifest"
	"github.com/chazu/intcode/vm"
)

// options holds the parsed command line.
type options struct {
	dir       string
	verbosity int
	trace     bool

	disasm bool
	noun   int
	verb   int
	target int
	limit  int

	amp      bool
	feedback bool
	seed     int

	paint      bool
	startWhite bool

	arcade      bool
	freePlay    bool
	interactive bool

	record  bool
	history int

	program string

	// set records the flags given explicitly on the command line.
	set map[string]bool
}

func (o *options) isSet(name string) bool { return o.set[name] }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("intcode", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.dir, "C", ".", "Directory to search for intcode.toml")
	fs.IntVar(&o.verbosity, "v", -1, "Log verbosity (0 notice, 1 info, 2 debug); overrides [log] verbosity")
	fs.BoolVar(&o.trace, "trace", false, "Log every executed instruction (needs -v 2)")
	fs.BoolVar(&o.disasm, "disasm", false, "Print a disassembly listing and exit")
	fs.IntVar(&o.noun, "noun", 0, "Patch cell 1 before running")
	fs.IntVar(&o.verb, "verb", 0, "Patch cell 2 before running")
	fs.IntVar(&o.target, "search-target", 0, "Search nouns and verbs for a run leaving this value in cell 0")
	fs.IntVar(&o.limit, "search-limit", 100, "Exclusive upper bound for searched nouns and verbs")
	fs.BoolVar(&o.amp, "amp", false, "Search phase permutations of an amplifier network")
	fs.BoolVar(&o.feedback, "feedback", false, "Connect amplifiers in a feedback ring")
	fs.IntVar(&o.seed, "seed", 0, "Initial amplifier input")
	fs.BoolVar(&o.paint, "paint", false, "Drive the hull-painting robot")
	fs.BoolVar(&o.startWhite, "start-white", false, "Start the robot on a white panel")
	fs.BoolVar(&o.arcade, "arcade", false, "Drive the arcade cabinet")
	fs.BoolVar(&o.freePlay, "free-play", false, "Patch cell 0 to 2 before starting the arcade")
	fs.BoolVar(&o.interactive, "interactive", false, "Read arcade joystick moves from stdin")
	fs.BoolVar(&o.record, "record", false, "Store the result in the results ledger")
	fs.IntVar(&o.history, "history", 0, "List the N most recent ledger results and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: intcode [options] [program-file]\n\n")
		fmt.Fprintf(stderr, "Runs an intcode program. Without a program file, [program] path from intcode.toml is used.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  intcode prog.txt                      # Run with console I/O\n")
		fmt.Fprintf(stderr, "  intcode -disasm prog.txt               # Print a listing\n")
		fmt.Fprintf(stderr, "  intcode -noun 12 -verb 2 prog.txt      # Patch and print cell 0\n")
		fmt.Fprintf(stderr, "  intcode -search-target 19690720 prog.txt\n")
		fmt.Fprintf(stderr, "  intcode -amp -feedback -record amp.txt # Best feedback signal, stored\n")
		fmt.Fprintf(stderr, "  intcode -paint -start-white robot.txt  # Paint and render the hull\n")
		fmt.Fprintf(stderr, "  intcode -arcade -free-play game.txt    # Play the arcade to the end\n")
		fmt.Fprintf(stderr, "  intcode -history 10                    # Recent ledger results\n")
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return nil, fmt.Errorf("expected at most one program file, got %d", fs.NArg())
	}
	o.program = fs.Arg(0)
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	if o.isSet("noun") != o.isSet("verb") {
		return nil, fmt.Errorf("-noun and -verb must be given together")
	}
	return &o, nil
}

// run is main without the process exit.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	m, err := manifest.FindAndLoad(o.dir)
	if err != nil {
		return err
	}
	if m == nil {
		m = manifest.Default()
		m.Dir, _ = filepath.Abs(o.dir)
	}

	configureLogging(m, o)

	r := &runner{opts: o, man: m, stdin: stdin, stdout: stdout}
	defer r.close()

	if o.history > 0 {
		return r.showHistory(ctx)
	}

	prog, name, err := loadProgram(m, o)
	if err != nil {
		return err
	}
	r.prog, r.name = prog, name

	switch {
	case o.disasm:
		_, err = io.WriteString(stdout, vm.DisassembleWithName(prog, name))
		return err
	case o.isSet("search-target"):
		return r.searchNounVerb(ctx)
	case o.amp:
		return r.searchAmplifiers(ctx)
	case o.paint:
		return r.paintHull(ctx)
	case o.arcade:
		return r.playArcade(ctx)
	default:
		return r.runProgram(ctx)
	}
}

func configureLogging(m *manifest.Manifest, o *options) {
	verbosity := m.Log.Verbosity
	if o.verbosity >= 0 {
		verbosity = o.verbosity
	}
	var path *string
	if p := m.LogPath(); p != "" {
		path = &p
	}
	commonlog.Configure(verbosity, path)
}

// loadProgram reads the program named on the command line, falling back to
// the manifest's [program] path.
func loadProgram(m *manifest.Manifest, o *options) (vm.Program, string, error) {
	path := o.program
	if path == "" {
		path = m.ProgramPath()
	}
	if path == "" {
		return nil, "", fmt.Errorf("no program file given and no [program] path in %s", manifest.FileName)
	}
	prog, err := vm.ReadProgramFile(path)
	if err != nil {
		return nil, "", err
	}
	return prog, filepath.Base(path), nil
}
