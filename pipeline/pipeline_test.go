package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chazu/intcode/vm"
)

const (
	chainProgA = "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0"
	chainProgB = "3,23,3,24,1002,24,10,24,1002,23,-1,23,101,5,23,23,1,24,23,23,4,23,99,0,0"
	chainProgC = "3,31,3,32,1002,32,10,32,1001,31,-2,31,1007,31,0,33,1002,33,7,33,1,33,31,31,1,32,31,31,4,31,99,0,0,0"

	ringProgA = "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5"
	ringProgB = "3,52,1001,52,-5,52,3,53,1,52,56,54,1007,54,5,55,1005,55,26,1001,54,-5,54,1105,1,12,1,53,54,53,1008,54,0,55,1001,55,1,55,2,53,55,53,4,53,1001,56,-1,56,1005,56,6,99,0,0,0,0,10"
)

// relayProgram reads its phase, then for rounds iterations reads a signal
// and emits signal+phase.
func relayProgram(rounds int) vm.Program {
	p := make(vm.Program, 33)
	copy(p, vm.Program{
		3, 30, // IN [30]            phase
		3, 31, // IN [31]            signal
		1, 30, 31, 31, // ADD [30], [31] -> [31]
		4, 31, // OUT [31]
		1001, 32, -1, 32, // ADD [32], #-1 -> [32]
		1005, 32, 2, // JT [32], #2
		99,
	})
	p[32] = rounds
	return p
}

// phaseRoundsProgram reads its phase, then for phase iterations reads a
// signal and emits signal+phase. Stages with small phases halt first.
func phaseRoundsProgram() vm.Program {
	p := make(vm.Program, 33)
	copy(p, vm.Program{
		3, 30, // IN [30]            phase
		1001, 30, 0, 32, // ADD [30], #0 -> [32]
		3, 31, // IN [31]            signal
		1, 30, 31, 31, // ADD [30], [31] -> [31]
		4, 31, // OUT [31]
		1001, 32, -1, 32, // ADD [32], #-1 -> [32]
		1005, 32, 6, // JT [32], #6
		99,
	})
	return p
}

// ============ Open Chain ============

func TestRunChain(t *testing.T) {
	t.Parallel()

	cases := []struct {
		prog   string
		phases []int
		want   int
	}{
		{chainProgA, []int{4, 3, 2, 1, 0}, 43210},
		{chainProgB, []int{0, 1, 2, 3, 4}, 54321},
		{chainProgC, []int{1, 0, 4, 3, 2}, 65210},
	}
	for _, tc := range cases {
		got, err := RunChain(vm.MustParseProgram(tc.prog), tc.phases, 0)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
}

func TestRunChainDoesNotMutateProgram(t *testing.T) {
	t.Parallel()

	prog := vm.MustParseProgram(chainProgA)
	before := prog.String()
	_, err := RunChain(prog, []int{0, 1, 2, 3, 4}, 0)
	require.NoError(t, err)
	require.Equal(t, before, prog.String())
}

func TestRunChainErrors(t *testing.T) {
	t.Parallel()

	_, err := RunChain(vm.Program{99}, nil, 0)
	require.ErrorIs(t, err, ErrNoStages)

	_, err = RunChain(vm.Program{3, 0, 3, 0, 99}, []int{1, 2}, 0)
	require.ErrorIs(t, err, ErrNoOutput)
	var se *StageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 0, se.Stage)

	_, err = RunChain(vm.Program{3, 2, 0, 0, 4, 0, 99}, []int{3, 77}, 5)
	require.ErrorIs(t, err, vm.ErrOpcode)
	require.True(t, errors.As(err, &se))
	require.Equal(t, 1, se.Stage)
	require.Equal(t, 77, se.Phase)
}

// ============ Feedback Ring ============

func TestRunRingRelay(t *testing.T) {
	t.Parallel()

	got, err := RunRing(context.Background(), relayProgram(3), []int{1, 2}, 0)
	require.NoError(t, err)
	require.Equal(t, 9, got)

	got, err = RunRing(context.Background(), relayProgram(3), []int{2, 1}, 0)
	require.NoError(t, err)
	require.Equal(t, 9, got)

	got, err = RunRing(context.Background(), relayProgram(3), []int{1, 2}, 10)
	require.NoError(t, err)
	require.Equal(t, 19, got)

	got, err = RunRing(context.Background(), relayProgram(1), []int{5}, 1)
	require.NoError(t, err)
	require.Equal(t, 6, got)
}

func TestRunRingFeedbackExamples(t *testing.T) {
	t.Parallel()

	got, err := RunRing(context.Background(), vm.MustParseProgram(ringProgA), []int{9, 8, 7, 6, 5}, 0)
	require.NoError(t, err)
	require.Equal(t, 139629729, got)

	got, err = RunRing(context.Background(), vm.MustParseProgram(ringProgB), []int{9, 7, 8, 5, 6}, 0)
	require.NoError(t, err)
	require.Equal(t, 18216, got)
}

func TestRunRingEndsWhenFirstStageHalts(t *testing.T) {
	t.Parallel()

	type result struct {
		signal int
		err    error
	}
	done := make(chan result, 1)
	go func() {
		// Stage 0 halts after one round; stage 1 still wants a second
		// input that will never come.
		got, err := RunRing(context.Background(), phaseRoundsProgram(), []int{1, 2}, 0)
		done <- result{got, err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.Equal(t, 3, res.signal)
	case <-time.After(5 * time.Second):
		t.Fatal("ring did not return after the first stage halted")
	}
}

func TestRunRingLaterStageHaltsFirst(t *testing.T) {
	t.Parallel()

	// Stage 1 halts after one round while stage 0 waits for the fed-back
	// signal; the closed queues must still unwind stage 0.
	got, err := RunRing(context.Background(), phaseRoundsProgram(), []int{3, 1}, 0)
	require.NoError(t, err)
	require.Equal(t, 4, got)
}

func TestRingSingleUse(t *testing.T) {
	t.Parallel()

	r, err := NewRing(relayProgram(1), []int{5}, 1)
	require.NoError(t, err)

	got, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, got)

	_, err = r.Run(context.Background())
	require.ErrorIs(t, err, ErrRingUsed)
}

func TestRunRingStageFaultUnblocksSiblings(t *testing.T) {
	t.Parallel()

	// Phase 3 makes the stage read twice and block; phase 77 faults as
	// soon as the phase is stored into the instruction stream.
	prog := vm.Program{3, 2, 0, 0, 3, 0, 99}

	done := make(chan error, 1)
	go func() {
		_, err := RunRing(context.Background(), prog, []int{3, 77}, 0)
		done <- err
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, vm.ErrOpcode)
		var se *StageError
		require.True(t, errors.As(err, &se))
		require.Equal(t, 1, se.Stage)
	case <-time.After(5 * time.Second):
		t.Fatal("ring did not return after a stage fault")
	}
}

func TestRunRingContextDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := RunRing(ctx, vm.Program{3, 0, 3, 0, 3, 0, 99}, []int{1, 2}, 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, vm.IsFault(err, vm.FaultState))
}

func TestRunRingNoStages(t *testing.T) {
	t.Parallel()

	_, err := RunRing(context.Background(), vm.Program{99}, nil, 0)
	require.ErrorIs(t, err, ErrNoStages)
}

// ============ Search ============

func TestMaxSignal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		prog   string
		phases []int
		signal int
	}{
		{chainProgA, []int{4, 3, 2, 1, 0}, 43210},
		{chainProgB, []int{0, 1, 2, 3, 4}, 54321},
		{chainProgC, []int{1, 0, 4, 3, 2}, 65210},
	}
	for _, tc := range cases {
		res, err := MaxSignal(context.Background(), vm.MustParseProgram(tc.prog))
		require.NoError(t, err)
		require.Equal(t, tc.signal, res.Signal)
		require.Equal(t, tc.phases, res.Phases)
		require.Equal(t, 120, res.Tried)
	}
}

func TestMaxFeedbackSignal(t *testing.T) {
	t.Parallel()

	res, err := MaxFeedbackSignal(context.Background(), vm.MustParseProgram(ringProgA))
	require.NoError(t, err)
	require.Equal(t, 139629729, res.Signal)
	require.Equal(t, []int{9, 8, 7, 6, 5}, res.Phases)

	res, err = MaxFeedbackSignal(context.Background(), vm.MustParseProgram(ringProgB))
	require.NoError(t, err)
	require.Equal(t, 18216, res.Signal)
	require.Equal(t, []int{9, 7, 8, 5, 6}, res.Phases)
}

func TestSearchRelayRing(t *testing.T) {
	t.Parallel()

	res, err := Search(context.Background(), relayProgram(3), Config{PhaseLo: 1, PhaseHi: 2, Feedback: true})
	require.NoError(t, err)
	require.Equal(t, 9, res.Signal)
	require.Equal(t, 2, res.Tried)
}

func TestSearchAbortsOnFault(t *testing.T) {
	t.Parallel()

	_, err := Search(context.Background(), vm.Program{77}, ChainConfig)
	require.ErrorIs(t, err, vm.ErrOpcode)

	_, err = Search(context.Background(), vm.Program{99}, Config{PhaseLo: 3, PhaseHi: 1})
	require.ErrorIs(t, err, ErrNoStages)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Search(ctx, vm.MustParseProgram(chainProgA), ChainConfig)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPermutations(t *testing.T) {
	t.Parallel()

	values := PhaseRange(0, 4)
	require.Equal(t, []int{0, 1, 2, 3, 4}, values)

	perms := Permutations(values)
	require.Len(t, perms, 120)
	require.Equal(t, []int{0, 1, 2, 3, 4}, values)

	seen := make(map[[5]int]bool)
	for _, p := range perms {
		require.Len(t, p, 5)
		var key [5]int
		copy(key[:], p)
		require.False(t, seen[key], "duplicate permutation %v", p)
		seen[key] = true

		var mask int
		for _, v := range p {
			mask |= 1 << v
		}
		require.Equal(t, 0b11111, mask)
	}

	require.Nil(t, Permutations(nil))
	require.Equal(t, [][]int{{7}}, Permutations([]int{7}))
	require.Nil(t, PhaseRange(2, 1))
}
