package pipeline

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/intcode/vm"
)

// Ring is a feedback network built before any stage starts: queue k is the
// input of stage k and the output of stage k-1, with the last stage feeding
// queue 0.
type Ring struct {
	prog   vm.Program
	phases []int
	queues []*Queue

	last    int
	emitted bool
	ran     atomic.Bool
}

// NewRing builds the queue graph for len(phases) stages and injects each
// stage's phase followed by seed on the first stage's queue.
func NewRing(prog vm.Program, phases []int, seed int) (*Ring, error) {
	if len(phases) == 0 {
		return nil, ErrNoStages
	}

	r := &Ring{prog: prog, phases: phases, queues: make([]*Queue, len(phases))}
	for i := range r.queues {
		r.queues[i] = NewQueue()
	}
	for i, phase := range phases {
		if err := r.queues[i].Push(phase); err != nil {
			return nil, err
		}
	}
	if err := r.queues[0].Push(seed); err != nil {
		return nil, err
	}
	return r, nil
}

// Run starts one goroutine per stage and waits for all of them. A Ring is
// single-use; a second call returns ErrRingUsed.
//
// A stage that stops closes its outbound queue, so its downstream neighbour
// drains what is buffered and then stops too. When the first stage halts the
// shutdown travels round the ring and Run returns the last value the final
// stage emitted. The first stage failure cancels the context the other
// stages block on and is returned as a *StageError. A ring in which no stage
// ever halts blocks Run until ctx is done.
func (r *Ring) Run(ctx context.Context) (int, error) {
	if !r.ran.CompareAndSwap(false, true) {
		return 0, ErrRingUsed
	}

	n := len(r.phases)
	g, gctx := errgroup.WithContext(ctx)

	for i, phase := range r.phases {
		in, out := r.queues[i], r.queues[(i+1)%n]
		io := NewQueueIO(gctx, in, out)
		var handler vm.IOHandler = io
		if i == n-1 {
			// Only this goroutine writes last/emitted; Wait orders the read.
			handler = &tap{QueueIO: io, observe: func(v int) {
				r.last = v
				r.emitted = true
			}}
		}

		g.Go(func() error {
			defer out.Close()

			err := vm.Run(r.prog.Clone(), handler)
			switch {
			case err == nil:
				log.Debugf("ring stage %d halted", i)
				return nil
			case errors.Is(err, ErrQueueClosed):
				log.Debugf("ring stage %d stopped: upstream finished", i)
				return nil
			default:
				log.Debugf("ring stage %d faulted: %v", i, err)
				return &StageError{Stage: i, Phase: phase, Err: err}
			}
		})
	}

	err := g.Wait()
	r.closeAll()
	if err != nil {
		return 0, err
	}
	if !r.emitted {
		return 0, &StageError{Stage: n - 1, Phase: r.phases[n-1], Err: ErrNoOutput}
	}
	return r.last, nil
}

func (r *Ring) closeAll() {
	for _, q := range r.queues {
		q.Close()
	}
}

// RunRing builds and runs a feedback ring in one call.
func RunRing(ctx context.Context, prog vm.Program, phases []int, seed int) (int, error) {
	r, err := NewRing(prog, phases, seed)
	if err != nil {
		return 0, err
	}
	return r.Run(ctx)
}
