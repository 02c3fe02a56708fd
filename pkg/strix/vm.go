package strix

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/cronokirby/strix/internal/strix/batch"
	"github.com/cronokirby/strix/internal/strix/circuit"
	"github.com/cronokirby/strix/internal/strix/core"
)

// VM executes programs under a fixed configuration. It is safe for
// concurrent use.
type VM interface {
	// Execute runs a single program.
	Execute(ctx context.Context, program Program, in Inputs) (*ExecutionResult, error)

	// ExecuteBatch runs independent jobs concurrently. Per-job failures are
	// reported in the results. The error is set when ctx is cancelled, or in
	// fail-fast mode when a job fails; jobs that never ran then carry
	// context.Canceled.
	ExecuteBatch(ctx context.Context, jobs []Job) ([]JobResult, error)

	// Field returns the field elements live in.
	Field() *Field
}

// Inputs are the initial stacks of an execution, listed bottom to top.
// Public and Private become circuit inputs on the Inside stack, public
// first.
type Inputs struct {
	Outside []*big.Int
	Public  []*big.Int
	Private []*big.Int
}

// Job is one entry of a batch. Encoded, if set, takes precedence over
// Program and may be a bare encoding or a checksummed container.
type Job struct {
	Name    string
	Program Program
	Encoded []byte
	Inputs  Inputs
}

// ExecutionResult holds the final state of a successful execution.
type ExecutionResult struct {
	Outside []*FieldElement
	Inside  []Wire
	// InsideValues are the witness values of Inside, nil in setup mode.
	InsideValues []*FieldElement
	Circuit      *Circuit
	Digest       Digest
}

// JobResult is the outcome of one Job.
type JobResult struct {
	Name   string
	Result *ExecutionResult
	Err    error
}

type vmImpl struct {
	field  *core.Field
	config *Config
	runner *batch.Runner[*FieldElement]
}

// NewVM creates a VM with the given configuration.
func NewVM(config *Config) (VM, error) {
	if err := config.Validate(); err != nil {
		return nil, newError(ErrInvalidConfig, "invalid configuration", err)
	}
	field, err := core.ParseField(config.FieldModulus)
	if err != nil {
		return nil, newError(ErrFieldCreation, "failed to create field", err)
	}
	mode, _ := circuit.ParseMode(config.Mode)
	runner, err := batch.NewRunner[*FieldElement](field,
		batch.WithMode(mode),
		batch.WithWorkers(config.Workers),
		batch.WithCacheSize(config.CacheSize),
		batch.WithStepLimit(config.StepLimit),
		batch.WithFailFast(config.FailFast),
	)
	if err != nil {
		return nil, newError(ErrInvalidConfig, "failed to create runner", err)
	}
	return &vmImpl{field: field, config: config.Clone(), runner: runner}, nil
}

func (v *vmImpl) Field() *Field {
	return v.field
}

func (v *vmImpl) Execute(ctx context.Context, program Program, in Inputs) (*ExecutionResult, error) {
	job, err := v.job(Job{Program: program, Inputs: in})
	if err != nil {
		return nil, err
	}
	return v.result(v.runner.RunJob(ctx, job))
}

func (v *vmImpl) ExecuteBatch(ctx context.Context, jobs []Job) ([]JobResult, error) {
	out := make([]JobResult, len(jobs))
	internal := make([]batch.Job[*FieldElement], 0, len(jobs))
	index := make([]int, 0, len(jobs))
	for i, j := range jobs {
		out[i].Name = j.Name
		job, err := v.job(j)
		if err != nil {
			out[i].Err = err
			continue
		}
		internal = append(internal, job)
		index = append(index, i)
	}

	results, err := v.runner.Run(ctx, internal)
	for k, res := range results {
		i := index[k]
		out[i].Result, out[i].Err = v.result(res)
	}
	if err != nil && ctx.Err() == nil {
		err = wrapError(err)
	}
	return out, err
}

func (v *vmImpl) job(j Job) (batch.Job[*FieldElement], error) {
	var err error
	job := batch.Job[*FieldElement]{Name: j.Name, Program: j.Program, Encoded: j.Encoded}
	if job.Outside, err = v.elements("outside", j.Inputs.Outside); err != nil {
		return job, err
	}
	if job.Public, err = v.elements("public", j.Inputs.Public); err != nil {
		return job, err
	}
	if job.Private, err = v.elements("private", j.Inputs.Private); err != nil {
		return job, err
	}
	return job, nil
}

// elements converts inputs, rejecting values outside [0, p).
func (v *vmImpl) elements(what string, values []*big.Int) ([]*FieldElement, error) {
	out := make([]*FieldElement, len(values))
	for i, x := range values {
		if x == nil || x.Sign() < 0 || x.Cmp(v.field.Modulus()) >= 0 {
			return nil, newError(ErrInvalidInput, fmt.Sprintf("%s input %d out of range", what, i), nil)
		}
		out[i] = v.field.NewElement(x)
	}
	return out, nil
}

func (v *vmImpl) result(res batch.Result[*FieldElement]) (*ExecutionResult, error) {
	if res.Err != nil {
		if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
			return nil, res.Err
		}
		return nil, wrapError(res.Err)
	}
	out := &ExecutionResult{
		Outside: res.Outside,
		Inside:  res.Inside,
		Circuit: res.Circuit,
		Digest:  res.Digest,
	}
	if res.Circuit.Mode() == circuit.Prover {
		out.InsideValues = make([]*FieldElement, len(res.Inside))
		for i, w := range res.Inside {
			out.InsideValues[i], _ = res.Circuit.WitnessValue(w)
		}
	}
	return out, nil
}
