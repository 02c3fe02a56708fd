// Package machine implements the dual-stack interpreter.
//
// A Machine owns an Outside stack of concrete field elements and an Inside
// stack of circuit wires. Execute runs a program from start to end, or to
// the first failing op.
package machine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cronokirby/strix/internal/strix/core"
	"github.com/cronokirby/strix/internal/strix/kernel"
)

// Backend is the circuit builder behind the Inside stack. It mirrors the
// field operations, returning new wires instead of values.
type Backend[F, W any] interface {
	// Constant injects a field element into the circuit.
	Constant(v F) W
	Add(a, b W) W
	Neg(a W) W
	Mul(a, b W) W
	// TryInv inverts a, asserting that it is nonzero. Errors wrapping
	// core.ErrZeroInverse mean a is known to be zero.
	TryInv(a W) (W, error)
}

// Extractor is implemented by backends that can reveal witness values.
// Moving from Inside to Outside requires it.
type Extractor[F, W any] interface {
	WitnessValue(w W) (F, bool)
}

// State is the lifecycle of an execution.
type State int

const (
	Running State = iota
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Step describes an op that executed successfully.
type Step struct {
	Index   int
	Op      kernel.Op
	Outside int // stack depths after the op
	Inside  int
}

// Result holds the final stacks of a completed execution, bottom to top.
type Result[F, W any] struct {
	Outside []F
	Inside  []W
	Steps   int
	State   State
}

type options struct {
	log       *zap.Logger
	stepLimit int
	tracer    func(Step)
}

// Option configures a Machine.
type Option func(*options)

// WithLogger logs each executed op at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithStepLimit rejects programs longer than n ops. Zero means no limit.
func WithStepLimit(n int) Option {
	return func(o *options) {
		o.stepLimit = n
	}
}

// WithTracer calls fn after every successful op.
func WithTracer(fn func(Step)) Option {
	return func(o *options) {
		o.tracer = fn
	}
}

// Machine executes programs against a field and a circuit backend.
// A Machine holds no per-execution state, so Execute may be called
// repeatedly; each call works on fresh copies of the initial stacks.
type Machine[F, W any] struct {
	field   core.Arithmetic[F]
	backend Backend[F, W]
	opts    options
}

// New creates a machine.
func New[F, W any](field core.Arithmetic[F], backend Backend[F, W], opts ...Option) *Machine[F, W] {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Machine[F, W]{field: field, backend: backend, opts: o}
}

// Execute runs p with the given initial stacks, listed bottom to top.
// The input slices are never modified.
//
// On failure the returned error is an *ExecError naming the failing op;
// nothing else about the execution is observable.
func (m *Machine[F, W]) Execute(p kernel.Program, outside []F, inside []W) (*Result[F, W], error) {
	if m.opts.stepLimit > 0 && p.Len() > m.opts.stepLimit {
		return nil, fmt.Errorf("%w: %d ops, limit %d", ErrProgramTooLong, p.Len(), m.opts.stepLimit)
	}

	r := &run[F, W]{
		m:        m,
		outside:  NewStack(kernel.Outside, outside),
		inside:   NewStack(kernel.Inside, inside),
		outArith: outsideArith[F]{field: m.field},
		inArith:  insideArith[F, W]{field: m.field, backend: m.backend},
		state:    Running,
	}
	for i := 0; i < p.Len(); i++ {
		op := p.At(i)
		if err := r.step(op); err != nil {
			r.state = Failed
			m.opts.log.Debug("execution failed",
				zap.Int("index", i),
				zap.Stringer("op", op),
				zap.Error(err),
			)
			return nil, &ExecError{Index: i, Op: op, Err: err}
		}
		m.opts.log.Debug("step",
			zap.Int("index", i),
			zap.Stringer("op", op),
			zap.Int("outside", r.outside.Len()),
			zap.Int("inside", r.inside.Len()),
		)
		if m.opts.tracer != nil {
			m.opts.tracer(Step{Index: i, Op: op, Outside: r.outside.Len(), Inside: r.inside.Len()})
		}
	}
	r.state = Completed

	return &Result[F, W]{
		Outside: r.outside.Elements(),
		Inside:  r.inside.Elements(),
		Steps:   p.Len(),
		State:   r.state,
	}, nil
}

// Execute runs p on a fresh machine with default options.
func Execute[F, W any](field core.Arithmetic[F], backend Backend[F, W], p kernel.Program, outside []F, inside []W) (*Result[F, W], error) {
	return New(field, backend).Execute(p, outside, inside)
}

// run is the state of a single execution.
type run[F, W any] struct {
	m        *Machine[F, W]
	outside  *Stack[F]
	inside   *Stack[W]
	outArith arith[F]
	inArith  arith[W]
	state    State
}

func (r *run[F, W]) step(op kernel.Op) error {
	if err := op.Validate(); err != nil {
		return err
	}
	switch op.Kind {
	case kernel.OpStack:
		if op.Stack == kernel.Outside {
			return applyStackOp(r.outside, r.outArith, op.StackOp)
		}
		return applyStackOp(r.inside, r.inArith, op.StackOp)
	case kernel.OpMove:
		return r.move(operand(op.N), op.From, op.To)
	}
	return nil
}

// move transfers the top n elements, converting them when the stacks
// differ. A move of zero elements never converts anything.
func (r *run[F, W]) move(n int, from, to kernel.WhichStack) error {
	dir := Direction{From: from, To: to}
	switch {
	case from == to && from == kernel.Outside:
		return r.outside.require(n)
	case from == to:
		return r.inside.require(n)

	case from == kernel.Outside:
		vs, err := r.outside.PopN(n)
		if err != nil {
			return err
		}
		ws := make([]W, len(vs))
		for i, v := range vs {
			ws[i] = r.m.backend.Constant(v)
		}
		r.inside.PushN(ws)
		return nil

	default:
		ws, err := r.inside.PopN(n)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		ext, ok := r.m.backend.(Extractor[F, W])
		if !ok {
			return &ConversionUnsupportedError{Direction: dir, Reason: "backend cannot expose witness values"}
		}
		vs := make([]F, len(ws))
		for i, w := range ws {
			v, ok := ext.WitnessValue(w)
			if !ok {
				return &ConversionUnsupportedError{Direction: dir, Reason: fmt.Sprintf("no witness value for wire %v", w)}
			}
			vs[i] = v
		}
		r.outside.PushN(vs)
		return nil
	}
}
