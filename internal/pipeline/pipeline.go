// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"runtime"
	"sync"
)

// Config controls the worker pool.
type Config struct {
	Workers   int // number of worker goroutines; <=0 means runtime.NumCPU()
	ChunkSize int // units per job; <=0 means 1
}

// Worker processes one unit. A Worker is only ever called from the
// goroutine it was created for, so it may hold unsynchronised state.
type Worker[T, R any] func(ctx context.Context, unit T) (R, error)

// Normalize fills in the defaults.
func (c Config) Normalize() Config {
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}
	if c.ChunkSize < 1 {
		c.ChunkSize = 1
	}
	return c
}

// Run splits units into chunks of cfg.ChunkSize, processes them on
// cfg.Workers goroutines (each with its own Worker from newWorker) and
// returns one result per unit, in input order. It blocks until every chunk
// is done. On the first error (including context cancellation) no further
// chunks are scheduled and no results are returned.
func Run[T, R any](
	ctx context.Context,
	cfg Config,
	units []T,
	newWorker func() Worker[T, R],
) ([]R, error) {
	cfg = cfg.Normalize()
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		idx   int
		units []T
	}
	type result struct {
		idx int
		out []R
		err error
	}
	jobs := make(chan job, cfg.Workers*2)
	results := make(chan result, cfg.Workers*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func() {
			defer wg.Done()
			work := newWorker()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					res := result{idx: j.idx, out: make([]R, 0, len(j.units))}
					for _, u := range j.units {
						r, err := work(ctx, u)
						if err != nil {
							res.err = err
							break
						}
						res.out = append(res.out, r)
					}
					select {
					case results <- res:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	// Collector: merges chunks strictly in index order.
	var (
		cerr   error
		cwg    sync.WaitGroup
		merged = make([]R, 0, len(units))
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		pending := make(map[int][]R)
		next := 0
		for res := range results {
			if cerr != nil {
				continue
			}
			if res.err != nil {
				cerr = res.err
				cancel()
				continue
			}
			pending[res.idx] = res.out
			for {
				out, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				merged = append(merged, out...)
			}
		}
	}()

	// Feed work
feed:
	for i, idx := 0, 0; i < len(units); i, idx = i+cfg.ChunkSize, idx+1 {
		end := min(i+cfg.ChunkSize, len(units))
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{idx: idx, units: units[i:end]}:
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if cerr != nil {
		return nil, cerr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return merged, nil
}
