// Package batch executes many independent programs in parallel.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/blake3"

	"github.com/cronokirby/strix/internal/strix/circuit"
	"github.com/cronokirby/strix/internal/strix/core"
	"github.com/cronokirby/strix/internal/strix/kernel"
	"github.com/cronokirby/strix/internal/strix/machine"
)

// DefaultCacheSize is the number of decoded programs kept by default.
const DefaultCacheSize = 128

// Job is a single program execution.
type Job[F any] struct {
	Name string
	// Program is executed unless Encoded is set.
	Program kernel.Program
	// Encoded is either a bare encoding or a STRX container.
	Encoded []byte

	Outside []F
	// Public and Private are allocated as circuit inputs and form the
	// initial Inside stack, public wires at the bottom.
	Public  []F
	Private []F
}

// Result is the outcome of one Job.
type Result[F any] struct {
	Name    string
	Digest  kernel.Digest
	Outside []F
	Inside  []circuit.Wire
	Circuit *circuit.Circuit[F]
	// Err is set when the job could not be decoded, failed to execute, or
	// produced an unsatisfied circuit.
	Err error
}

type config struct {
	workers   int
	cacheSize int
	stepLimit int
	failFast  bool
	mode      circuit.Mode
	log       *zap.Logger
}

// Option configures a Runner.
type Option func(*config)

// WithWorkers bounds the number of concurrent executions.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithCacheSize sets the number of decoded programs to keep.
func WithCacheSize(n int) Option {
	return func(c *config) { c.cacheSize = n }
}

// WithStepLimit is passed on to every machine.
func WithStepLimit(n int) Option {
	return func(c *config) { c.stepLimit = n }
}

// WithFailFast stops scheduling jobs after the first failure, and makes Run
// return that failure.
func WithFailFast(yes bool) Option {
	return func(c *config) { c.failFast = yes }
}

// WithMode sets the circuit mode of every job.
func WithMode(m circuit.Mode) Option {
	return func(c *config) { c.mode = m }
}

// WithMachineLogger sets the logger used for per-op tracing. Without it,
// each job traces to the logger carried by its context.
func WithMachineLogger(log *zap.Logger) Option {
	return func(c *config) { c.log = log }
}

// Runner executes jobs. It is safe for concurrent use.
type Runner[F any] struct {
	field core.Arithmetic[F]
	cfg   config
	cache *lru.Cache[[32]byte, kernel.Program]
}

// NewRunner creates a Runner over field.
func NewRunner[F any](field core.Arithmetic[F], opts ...Option) (*Runner[F], error) {
	cfg := config{
		workers:   runtime.GOMAXPROCS(0),
		cacheSize: DefaultCacheSize,
		mode:      circuit.Prover,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		return nil, fmt.Errorf("batch: workers must be positive, got %d", cfg.workers)
	}
	cache, err := lru.New[[32]byte, kernel.Program](cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	return &Runner[F]{field: field, cfg: cfg, cache: cache}, nil
}

// Run executes jobs and returns one Result per job, in order.
//
// Cancelling ctx stops scheduling; jobs that never started report the
// context error. Without fail-fast, Run only returns an error if ctx was
// cancelled.
func (r *Runner[F]) Run(ctx context.Context, jobs []Job[F]) ([]Result[F], error) {
	parent := ctx
	results := make([]Result[F], len(jobs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.workers)
	for i := range jobs {
		job := jobs[i]
		if err := ctx.Err(); err != nil {
			results[i] = Result[F]{Name: job.Name, Err: err}
			continue
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result[F]{Name: job.Name, Err: err}
				return nil
			}
			res := r.RunJob(ctx, job)
			results[i] = res
			if res.Err == nil {
				logctx.Debug(ctx, "job completed", zap.String("job", job.Name), zap.Stringer("digest", res.Digest))
				return nil
			}
			logctx.Error(ctx, "job failed", zap.String("job", job.Name), zap.Error(res.Err))
			if r.cfg.failFast {
				return fmt.Errorf("job %q: %w", job.Name, res.Err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, parent.Err()
}

// RunJob executes a single job on the calling goroutine.
func (r *Runner[F]) RunJob(ctx context.Context, job Job[F]) Result[F] {
	res := Result[F]{Name: job.Name}
	prog := job.Program
	if job.Encoded != nil {
		p, err := r.Decode(job.Encoded)
		if err != nil {
			res.Err = err
			return res
		}
		prog = p
	}
	res.Digest = kernel.ComputeDigest(prog)

	c := circuit.New[F](r.field, r.cfg.mode)
	inside := make([]circuit.Wire, 0, len(job.Public)+len(job.Private))
	for _, v := range job.Public {
		inside = append(inside, c.AllocatePublic(v))
	}
	for _, v := range job.Private {
		inside = append(inside, c.AllocatePrivate(v))
	}
	res.Circuit = c

	log := r.cfg.log
	if log == nil {
		log = logctx.FromContext(ctx)
	}
	m := machine.New[F, circuit.Wire](r.field, c,
		machine.WithLogger(log.With(zap.String("job", job.Name))),
		machine.WithStepLimit(r.cfg.stepLimit),
	)
	out, err := m.Execute(prog, job.Outside, inside)
	if err != nil {
		res.Err = err
		return res
	}
	res.Outside, res.Inside = out.Outside, out.Inside

	if c.Mode() == circuit.Prover {
		if err := c.Verify(); err != nil {
			res.Err = err
		}
	}
	return res
}

// Decode decodes a bare encoding or a STRX container, caching the result
// under the BLAKE3 hash of data.
func (r *Runner[F]) Decode(data []byte) (kernel.Program, error) {
	key := blake3.Sum256(data)
	if p, ok := r.cache.Get(key); ok {
		return p, nil
	}
	var (
		p   kernel.Program
		err error
	)
	if kernel.IsFile(data) {
		p, err = kernel.UnmarshalFile(data)
	} else {
		p, err = kernel.Decode(data)
	}
	if err != nil {
		return kernel.Program{}, err
	}
	r.cache.Add(key, p)
	return p, nil
}

// CacheLen returns the number of cached programs.
func (r *Runner[F]) CacheLen() int {
	return r.cache.Len()
}

// Failed returns the results that carry an error.
func Failed[F any](results []Result[F]) []Result[F] {
	var out []Result[F]
	for _, res := range results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Errors joins the errors of all failed results.
func Errors[F any](results []Result[F]) error {
	var errs []error
	for _, res := range Failed(results) {
		errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
	}
	return errors.Join(errs...)
}
