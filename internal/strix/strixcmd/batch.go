package strixcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"go.brendoncarroll.net/star"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"github.com/cronokirby/strix/internal/strix/kernel"
	"github.com/cronokirby/strix/pkg/strix"
)

var dirParam = star.Param[string]{
	Name:  "dir",
	Parse: star.ParseString,
}

var batchCmd = star.Command{
	Metadata: star.Metadata{
		Short: "execute every program in a directory concurrently",
	},
	Flags: []star.IParam{modulusParam, modeParam, stepLimitParam, workersParam, failFastParam, logLevelParam,
		outsideParam, publicParam, privateParam,
	},
	Pos: []star.IParam{dirParam},
	F: func(c star.Context) error {
		ctx, done, err := setupCmd(c)
		if err != nil {
			return err
		}
		defer done()
		cfg := vmConfig(c).
			WithWorkers(load(c, workersParam)).
			WithFailFast(load(c, failFastParam))
		vm, err := strix.NewVM(cfg)
		if err != nil {
			return err
		}
		in := strix.Inputs{
			Outside: outsideParam.LoadAll(c),
			Public:  publicParam.LoadAll(c),
			Private: privateParam.LoadAll(c),
		}
		jobs, err := loadJobs(dirParam.Load(c), in)
		if err != nil {
			return err
		}
		logctx.Info(ctx, "running batch", zap.Int("jobs", len(jobs)))

		results, err := vm.ExecuteBatch(ctx, jobs)
		failed := printResults(c, results)
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d programs failed", failed, len(results))
		}
		return nil
	},
}

// printResults writes one line per result and returns the number of
// failures.
func printResults(c star.Context, results []strix.JobResult) int {
	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			c.Printf("FAIL %s: %v\n", res.Name, res.Err)
			continue
		}
		c.Printf("OK   %s %v outside=%s inside=%s\n", res.Name, res.Result.Digest,
			formatElements(res.Result.Outside), formatElements(res.Result.Inside))
	}
	return failed
}

// loadJobs reads every regular file in dir. Binary containers are decoded
// by the VM; anything else is parsed as assembly.
func loadJobs(dir string, in strix.Inputs) ([]strix.Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var jobs []strix.Job
	for _, ent := range entries {
		if !ent.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, ent.Name()))
		if err != nil {
			return nil, err
		}
		job := strix.Job{Name: ent.Name(), Inputs: in}
		if kernel.IsFile(data) {
			job.Encoded = data
		} else if job.Program, err = kernel.Parse(string(data)); err != nil {
			return nil, fmt.Errorf("%s: %w", ent.Name(), err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
