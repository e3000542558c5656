package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chazu/intcode/devices"
	"github.com/chazu/intcode/manifest"
	"github.com/chazu/intcode/pipeline"
	"github.com/chazu/intcode/store"
	"github.com/chazu/intcode/vm"
)

// runner carries what every mode needs.
type runner struct {
	opts   *options
	man    *manifest.Manifest
	stdin  io.Reader
	stdout io.Writer

	prog vm.Program
	name string

	ledger *store.Store
}

func (r *runner) close() {
	if r.ledger != nil {
		r.ledger.Close()
	}
}

func (r *runner) openLedger() (*store.Store, error) {
	if r.ledger == nil {
		s, err := store.Open(r.man.StorePath())
		if err != nil {
			return nil, err
		}
		r.ledger = s
	}
	return r.ledger, nil
}

// save stores a result when -record is set.
func (r *runner) save(ctx context.Context, mode string, signal int, detail store.Detail) error {
	if !r.opts.record {
		return nil
	}
	s, err := r.openLedger()
	if err != nil {
		return err
	}
	hash := r.prog.Hash()
	rec, err := s.Save(ctx, store.Record{
		ProgramHash: hex.EncodeToString(hash[:]),
		Mode:        mode,
		Signal:      signal,
		Detail:      detail,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(r.stdout, "recorded %s\n", rec.ID)
	return nil
}

// patch returns the noun and verb from the flags or the manifest.
func (r *runner) patch() (noun, verb int, ok bool) {
	if r.opts.isSet("noun") {
		return r.opts.noun, r.opts.verb, true
	}
	if p := r.man.Program; p.Noun != nil && p.Verb != nil {
		return *p.Noun, *p.Verb, true
	}
	return 0, 0, false
}

func (r *runner) execute(prog vm.Program, h vm.IOHandler) (*vm.Machine, error) {
	m := vm.NewMachine(prog, h)
	m.Trace = r.opts.trace
	return m, m.Run()
}

func (r *runner) runProgram(ctx context.Context) error {
	prog := r.prog.Clone()
	noun, verb, patched := r.patch()
	if patched {
		if err := prog.Patch(noun, verb); err != nil {
			return err
		}
	}

	console := vm.NewConsole(r.stdin, r.stdout)
	var outputs []int
	capture := vm.IOFuncs{
		In: console.Input,
		Out: func(v int) error {
			outputs = append(outputs, v)
			return console.Output(v)
		},
	}

	m, err := r.execute(prog, capture)
	if err != nil {
		return err
	}

	detail := store.Detail{Outputs: outputs, Steps: int(m.Steps())}
	signal := prog[0]
	if patched {
		detail.Noun, detail.Verb = &noun, &verb
		fmt.Fprintln(r.stdout, prog[0])
		return r.save(ctx, store.ModeNounVerb, signal, detail)
	}
	if len(outputs) > 0 {
		signal = outputs[len(outputs)-1]
	}
	return r.save(ctx, store.ModeRun, signal, detail)
}

func (r *runner) searchNounVerb(ctx context.Context) error {
	nv, err := vm.SearchNounVerb(r.prog, r.opts.target, r.opts.limit)
	if err != nil {
		return fmt.Errorf("searching for %d: %w", r.opts.target, err)
	}
	fmt.Fprintf(r.stdout, "noun=%d verb=%d answer=%d\n", nv.Noun, nv.Verb, nv.Answer())
	return r.save(ctx, store.ModeNounVerb, r.opts.target, store.Detail{Noun: &nv.Noun, Verb: &nv.Verb})
}

// pipelineConfig merges the flags over the manifest's [pipeline] section.
func (r *runner) pipelineConfig() pipeline.Config {
	feedback := r.opts.feedback || r.man.Pipeline.Feedback
	lo, hi := r.man.PhaseRange(feedback)
	seed := r.man.Pipeline.Seed
	if r.opts.isSet("seed") {
		seed = r.opts.seed
	}
	return pipeline.Config{PhaseLo: lo, PhaseHi: hi, Feedback: feedback, Seed: seed}
}

func (r *runner) searchAmplifiers(ctx context.Context) error {
	cfg := r.pipelineConfig()
	res, err := pipeline.Search(ctx, r.prog, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.stdout, "signal=%d phases=%v\n", res.Signal, res.Phases)

	mode := store.ModeChain
	if cfg.Feedback {
		mode = store.ModeFeedback
	}
	return r.save(ctx, mode, res.Signal, store.Detail{Phases: res.Phases, Tried: res.Tried})
}

func (r *runner) paintHull(ctx context.Context) error {
	start := devices.Black
	if r.opts.startWhite {
		start = devices.White
	}
	robot := devices.NewHullRobot(start)
	m, err := r.execute(r.prog.Clone(), robot)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.stdout, "painted %d panels\n", robot.Painted())
	io.WriteString(r.stdout, robot.Render())
	return r.save(ctx, store.ModePaint, robot.Painted(), store.Detail{Steps: int(m.Steps())})
}

func (r *runner) playArcade(ctx context.Context) error {
	prog := r.prog.Clone()
	if r.opts.freePlay {
		if len(prog) == 0 {
			return fmt.Errorf("free play: program is empty")
		}
		prog[0] = 2
	}

	cabinet := devices.NewArcade()
	if r.opts.interactive {
		cabinet.Joystick = devices.NewConsoleJoystick(r.stdin, r.stdout)
		cabinet.Frames = r.stdout
	}
	m, err := r.execute(prog, cabinet)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.stdout, "blocks=%d score=%d\n", cabinet.BlockCount(), cabinet.Score())
	return r.save(ctx, store.ModeArcade, cabinet.Score(), store.Detail{Steps: int(m.Steps())})
}

func (r *runner) showHistory(ctx context.Context) error {
	s, err := r.openLedger()
	if err != nil {
		return err
	}

	// Limit to the named program when one is available.
	hash := ""
	if prog, _, err := loadProgram(r.man, r.opts); err == nil {
		sum := prog.Hash()
		hash = hex.EncodeToString(sum[:])
	}

	recs, err := s.List(ctx, hash, r.opts.history)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(r.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROGRAM\tMODE\tSIGNAL\tDETAIL\tCREATED")
	for _, rec := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			rec.ID, shortHash(rec.ProgramHash), rec.Mode, rec.Signal,
			describe(rec.Detail), rec.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func describe(d store.Detail) string {
	switch {
	case len(d.Phases) > 0:
		return fmt.Sprintf("phases=%v tried=%d", d.Phases, d.Tried)
	case d.Noun != nil && d.Verb != nil:
		return fmt.Sprintf("noun=%d verb=%d", *d.Noun, *d.Verb)
	case d.Steps > 0:
		return fmt.Sprintf("steps=%d", d.Steps)
	default:
		return "-"
	}
}
