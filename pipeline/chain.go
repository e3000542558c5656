package pipeline

import (
	"github.com/tliron/commonlog"

	"github.com/chazu/intcode/vm"
)

var log = commonlog.GetLogger("intcode.pipeline")

// RunChain runs one stage per phase as an open chain: stage k reads its
// phase and then the previous stage's last output, starting from input.
// Each stage runs to completion before the next starts. The last stage's
// final output is returned.
func RunChain(prog vm.Program, phases []int, input int) (int, error) {
	if len(phases) == 0 {
		return 0, ErrNoStages
	}

	signal := input
	for i, phase := range phases {
		io := &vm.Phased{Phase: phase, Signal: signal}
		if err := vm.Run(prog.Clone(), io); err != nil {
			return 0, &StageError{Stage: i, Phase: phase, Err: err}
		}
		out, ok := io.Last()
		if !ok {
			return 0, &StageError{Stage: i, Phase: phase, Err: ErrNoOutput}
		}
		log.Debugf("chain stage %d phase %d: %d -> %d", i, phase, signal, out)
		signal = out
	}
	return signal, nil
}
