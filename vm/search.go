package vm

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by searches that exhaust their space.
var ErrNotFound = errors.New("no matching configuration")

// NounVerb is a patch of program cells 1 and 2.
type NounVerb struct {
	Noun, Verb int
}

// Answer combines the pair as 100*noun + verb.
func (nv NounVerb) Answer() int {
	return 100*nv.Noun + nv.Verb
}

// RunPatched runs a copy of prog with cells 1 and 2 replaced and returns
// the final value of cell 0. Programs that use input or output are given a
// handler with no inputs.
func RunPatched(prog Program, nv NounVerb) (int, error) {
	p := prog.Clone()
	if err := p.Patch(nv.Noun, nv.Verb); err != nil {
		return 0, err
	}
	if err := Run(p, NewScripted()); err != nil {
		return 0, err
	}
	return p[0], nil
}

// SearchNounVerb tries every noun and verb in [0, limit) and returns the
// first pair whose run leaves target in cell 0. Faulting configurations are
// skipped.
func SearchNounVerb(prog Program, target, limit int) (NounVerb, error) {
	if len(prog) < 3 {
		return NounVerb{}, addressFault(2)
	}
	for noun := 0; noun < limit; noun++ {
		for verb := 0; verb < limit; verb++ {
			nv := NounVerb{noun, verb}
			out, err := RunPatched(prog, nv)
			if err != nil {
				log.Debugf("noun=%d verb=%d: %v", noun, verb, err)
				continue
			}
			if out == target {
				return nv, nil
			}
		}
	}
	return NounVerb{}, fmt.Errorf("target %d: %w", target, ErrNotFound)
}
