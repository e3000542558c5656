package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/chazu/intcode/vm"
)

// Config selects the network topology and phase range of a search.
type Config struct {
	PhaseLo  int  // lowest phase value, inclusive
	PhaseHi  int  // highest phase value, inclusive
	Feedback bool // closed ring instead of open chain
	Seed     int  // initial value fed to the first stage
}

// ChainConfig is the open-chain search over phases 0..4.
var ChainConfig = Config{PhaseLo: 0, PhaseHi: 4}

// FeedbackConfig is the feedback-ring search over phases 5..9.
var FeedbackConfig = Config{PhaseLo: 5, PhaseHi: 9, Feedback: true}

// Stages returns the number of stages implied by the phase range.
func (c Config) Stages() int {
	return c.PhaseHi - c.PhaseLo + 1
}

// Result is the best phase assignment found by a search.
type Result struct {
	Phases []int
	Signal int
	Tried  int // number of assignments run
}

// Run evaluates one phase assignment under c.
func (c Config) Run(ctx context.Context, prog vm.Program, phases []int) (int, error) {
	if c.Feedback {
		return RunRing(ctx, prog, phases, c.Seed)
	}
	return RunChain(prog, phases, c.Seed)
}

// Search runs the network once for every permutation of the phase range
// and keeps the assignment with the largest terminal signal. The first
// failing assignment aborts the search.
func Search(ctx context.Context, prog vm.Program, c Config) (Result, error) {
	if c.PhaseHi < c.PhaseLo {
		return Result{}, fmt.Errorf("phase range %d..%d: %w", c.PhaseLo, c.PhaseHi, ErrNoStages)
	}

	var best Result
	found := false
	for _, phases := range Permutations(PhaseRange(c.PhaseLo, c.PhaseHi)) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		signal, err := c.Run(ctx, prog, phases)
		if err != nil {
			return Result{}, fmt.Errorf("phases %v: %w", phases, err)
		}
		best.Tried++
		if !found || signal > best.Signal {
			best.Phases = slices.Clone(phases)
			best.Signal = signal
			found = true
		}
	}

	log.Infof("searched %d phase assignments (feedback=%v): best %v -> %d",
		best.Tried, c.Feedback, best.Phases, best.Signal)
	return best, nil
}

// MaxSignal searches the open chain over phases 0..4 with seed 0.
func MaxSignal(ctx context.Context, prog vm.Program) (Result, error) {
	return Search(ctx, prog, ChainConfig)
}

// MaxFeedbackSignal searches the feedback ring over phases 5..9 with seed 0.
func MaxFeedbackSignal(ctx context.Context, prog vm.Program) (Result, error) {
	return Search(ctx, prog, FeedbackConfig)
}

// PhaseRange returns lo, lo+1, ..., hi.
func PhaseRange(lo, hi int) []int {
	if hi < lo {
		return nil
	}
	r := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		r = append(r, v)
	}
	return r
}

// Permutations returns every ordering of values using Heap's algorithm.
// The input slice is not modified.
func Permutations(values []int) [][]int {
	a := slices.Clone(values)
	n := len(a)
	if n == 0 {
		return nil
	}

	out := [][]int{slices.Clone(a)}
	c := make([]int, n)
	for i := 0; i < n; {
		if c[i] < i {
			if i%2 == 0 {
				a[0], a[i] = a[i], a[0]
			} else {
				a[c[i]], a[i] = a[i], a[c[i]]
			}
			out = append(out, slices.Clone(a))
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
	return out
}
