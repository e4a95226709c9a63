package minima

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/minimaproject/minima/internal/common/linalg"
	"github.com/minimaproject/minima/internal/common/logging"
	"github.com/minimaproject/minima/internal/common/minimaerrors"
	"github.com/minimaproject/minima/internal/common/optimisation"
	"github.com/minimaproject/minima/internal/minima/metrics"
)

// RunSuiteFiles globs patterns for benchmark files, runs each match, and
// prints a summary. A failing benchmark doesn't stop the rest of the suite;
// failures are collected and returned together.
func (a *App) RunSuiteFiles(ctx context.Context, patterns []string) error {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return errors.WithStack(err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return errors.WithStack(&minimaerrors.ErrNotFound{
			Type:  "benchmark file",
			Value: strings.Join(patterns, ", "),
		})
	}

	var result *multierror.Error
	numSuccesses := 0
	numFailures := 0
	start := time.Now()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, errors.WithStack(err))
			break
		}
		fileStart := time.Now()
		err := a.RunSuiteFile(ctx, file)
		fmt.Fprintf(a.Out, "\nRuntime: %s\n", time.Since(fileStart))
		if err != nil {
			numFailures++
			logging.WithStacktrace(log.WithField("file", file), err).Error("benchmark failed")
			fmt.Fprintf(a.Out, "BENCHMARK FAILED: %s\n", err)
			result = multierror.Append(result, err)
		} else {
			numSuccesses++
			fmt.Fprint(a.Out, "BENCHMARK SUCCEEDED\n")
		}
	}

	fmt.Fprintf(a.Out, "\n======= SUMMARY =======\n")
	fmt.Fprintf(a.Out, "Ran %d benchmark(s) in %s\n", numSuccesses+numFailures, time.Since(start))
	fmt.Fprintf(a.Out, "Successes: %d\n", numSuccesses)
	fmt.Fprintf(a.Out, "Failures: %d\n", numFailures)
	return result.ErrorOrNil()
}

// RunSuiteFile loads the benchmark in path and runs it.
func (a *App) RunSuiteFile(ctx context.Context, path string) error {
	benchmark, err := BenchmarkFromFile(path)
	if err != nil {
		return err
	}
	return a.RunBenchmark(ctx, benchmark)
}

// RunBenchmark generates the benchmark's problem, runs its optimiser on it,
// and checks that the run stopped with the expected status. Diverged runs are
// restarted from a fresh starting point with halved step sizes, up to the
// benchmark's retry budget.
func (a *App) RunBenchmark(ctx context.Context, benchmark *Benchmark) error {
	seed := benchmark.Seed
	if seed == 0 {
		drawn, err := a.drawSeed()
		if err != nil {
			return err
		}
		seed = drawn
	}
	random := rand.New(rand.NewSource(seed))

	f, err := newProblem(&benchmark.Problem, benchmark.Dimension, random)
	if err != nil {
		return err
	}

	entry := log.WithField("benchmark", benchmark.Name)
	entry.WithField("seed", seed).Info("starting benchmark run")

	spec := benchmark.Optimiser
	reporter := optimisation.Reporters{
		metrics.SweepReporter{Benchmark: benchmark.Name},
		optimisation.LogReporter{Entry: entry},
	}
	var result optimisation.Result
	start := time.Now()
	err = retry.Do(
		func() error {
			optimiser, err := newOptimiser(&spec, random, reporter)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			iterate := linalg.RandomNormalVecDense(benchmark.Dimension, random)
			result, err = optimiser.Optimize(ctx, f, iterate)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if result.Status == optimisation.StatusDiverged {
				spec.StepSize /= 2
				spec.Eta /= 2
				entry.WithField("sweeps", result.Sweeps).Warn("run diverged")
				return errors.Errorf("benchmark %s diverged after %d sweep(s)", benchmark.Name, result.Sweeps)
			}
			return nil
		},
		retry.Attempts(benchmark.Retries+1),
		retry.LastErrorOnly(true),
	)
	duration := time.Since(start)
	if err != nil && result.Status != optimisation.StatusDiverged {
		return err
	}
	metrics.RecordRun(benchmark.Name, result.Status, duration)

	fmt.Fprintf(a.Out, "%s: %s after %d sweep(s), objective %v, runtime %s\n",
		benchmark.Name, result.Status, result.Sweeps, result.Objective, duration)

	if want := benchmark.wantStatus(); result.Status != want {
		return errors.Errorf("benchmark %s stopped with status %s, want %s", benchmark.Name, result.Status, want)
	}
	return nil
}
