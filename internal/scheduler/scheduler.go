// Package scheduler implements the Contest Scheduler (C8): running
// Directory Pipelines for a list of contests up to a configured
// parallelism, merging their call->count maps, and applying XSCP
// top-percent truncation.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/semaphore"

	"github.com/N7DR/drscp/internal/contest"
	"github.com/N7DR/drscp/internal/pipeline"
	"github.com/N7DR/drscp/internal/qso"
)

// Config carries the scheduler-wide knobs threaded down to every pipeline.
type Config struct {
	Parallelism int // MAX_PARALLEL; must be >= 1
	TLLimit     int
	CutoffLimit int
	Diagnostics func(line string)
	Trace       string
	TraceFunc   func(pass string, q qso.QSO)
}

// Run runs one Directory Pipeline per contest, at most Config.Parallelism
// concurrently, and returns the merged call->appearance-count map. The
// first pipeline error encountered is returned once every pipeline has
// finished or been canceled.
func Run(ctx context.Context, contests []contest.Params, cfg Config) (map[string]int, error) {
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}

	sem := semaphore.NewWeighted(int64(cfg.Parallelism))
	var mu sync.Mutex
	total := make(map[string]int)

	var wg sync.WaitGroup
	errs := make(chan error, len(contests))

	for _, c := range contests {
		if err := sem.Acquire(ctx, 1); err != nil {
			errs <- err
			break
		}
		wg.Add(1)
		go func(c contest.Params) {
			defer wg.Done()
			defer sem.Release(1)

			counts, err := pipeline.Run(c, pipeline.Config{
				TLLimit:     cfg.TLLimit,
				CutoffLimit: cfg.CutoffLimit,
				Diagnostics: cfg.Diagnostics,
				Trace:       cfg.Trace,
				TraceFunc:   cfg.TraceFunc,
			})
			if err != nil {
				errs <- fmt.Errorf("contest %s: %w", c.Dir, err)
				return
			}

			mu.Lock()
			for call, n := range counts {
				total[call] += n
			}
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return total, nil
}

// TopPercent returns the subset of counts whose count is high enough that
// the retained calls account for at least pct% of the total appearance
// mass, never splitting a tie: if any call with count k is retained,
// every call with count >= k is retained (§4.8, §8 scenario 6). pct=100
// returns every call.
func TopPercent(counts map[string]int, pct int) map[string]int {
	if pct >= 100 || len(counts) == 0 {
		return counts
	}

	calls := maps.Keys(counts)
	slices.SortFunc(calls, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return strings.Compare(a, b)
	})

	var grandTotal int
	for _, n := range counts {
		grandTotal += n
	}
	// ceil(pct% of grandTotal): the running total the retained calls must reach.
	threshold := (grandTotal*pct + 99) / 100

	var running int
	cutoffCount := 0
	for _, call := range calls {
		if running >= threshold {
			break
		}
		running += counts[call]
		cutoffCount = counts[call]
	}

	result := make(map[string]int)
	for call, n := range counts {
		if n >= cutoffCount {
			result[call] = n
		}
	}
	return result
}
