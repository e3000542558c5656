package pipeline

import "context"

// QueueIO is an I/O handler backed by two queues: input pops from In,
// output pushes to Out. Input blocks the calling machine until its upstream
// neighbour produces a value or ctx is done.
type QueueIO struct {
	ctx context.Context
	In  *Queue
	Out *Queue
}

// NewQueueIO links a handler to its inbound and outbound queues.
func NewQueueIO(ctx context.Context, in, out *Queue) *QueueIO {
	return &QueueIO{ctx: ctx, In: in, Out: out}
}

func (q *QueueIO) Input() (int, error) {
	return q.In.Pop(q.ctx)
}

func (q *QueueIO) Output(v int) error {
	return q.Out.Push(v)
}

// tap reports every output of a stage before forwarding it.
type tap struct {
	*QueueIO
	observe func(int)
}

func (t *tap) Output(v int) error {
	t.observe(v)
	return t.QueueIO.Output(v)
}
