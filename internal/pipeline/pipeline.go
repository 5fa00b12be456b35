// Package pipeline fans one annotation run out over a bounded worker
// pool. Each unit of work is one sequence/model pair with its fully
// materialized detector input; workers run the detector set and the
// verdict rule, and results are delivered to the caller in input
// order regardless of which worker finished first.
package pipeline

import (
	"context"
	"sync"

	"github.com/ncbi/vadr-sub007/internal/alert"
	"github.com/ncbi/vadr-sub007/internal/detect"
	"github.com/ncbi/vadr-sub007/internal/verdict"
)

// Config controls the annotation pipeline.
type Config struct {
	Threads int // number of worker goroutines (>=1)

	Detect detect.Config
	Alerts *alert.Options
}

// Unit is one sequence's worth of work.
type Unit struct {
	SeqID   string
	ModelID string
	Input   detect.Input
}

// ForEachVerdict runs the detectors over every unit and streams the
// verdicts to visit in input order. It returns the first error
// encountered, including context cancellation.
func ForEachVerdict(
	ctx context.Context,
	cfg Config,
	units []Unit,
	visit func(verdict.Result) error,
) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	opts := cfg.Alerts
	if opts == nil {
		opts = alert.DefaultOptions()
	}

	type job struct {
		idx  int
		unit Unit
	}
	type done struct {
		idx int
		res verdict.Result
	}
	jobs := make(chan job, cfg.Threads*2)
	results := make(chan done, cfg.Threads*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					alerts := detect.Run(j.unit.Input, cfg.Detect, opts)
					res := verdict.Decide(j.unit.SeqID, j.unit.ModelID, alerts, j.unit.Input.Map, opts)

					select {
					case results <- done{idx: j.idx, res: res}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	// Collector: reorder out-of-order completions back to input order
	var (
		cerr    error
		cwg     sync.WaitGroup
		pending = make(map[int]verdict.Result)
		next    = 0
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for d := range results {
			if cerr != nil {
				continue
			}
			pending[d.idx] = d.res
			for {
				res, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if err := visit(res); err != nil && cerr == nil {
					cerr = err
				}
			}
		}
	}()

	// Feeder
	var ferr error
feed:
	for i, u := range units {
		select {
		case jobs <- job{idx: i, unit: u}:
		case <-ctx.Done():
			ferr = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if ferr != nil {
		return ferr
	}
	if cerr != nil {
		return cerr
	}
	return ctx.Err()
}
