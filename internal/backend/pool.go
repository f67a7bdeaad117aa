package backend

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool runs tasks on a bounded set of worker goroutines.
// The first task error cancels the remaining ones.
type Pool struct {
	workers int
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

func (p *Pool) Name() string {
	return fmt.Sprintf("pool-%d", p.workers)
}

// Workers returns the parallelism of the pool.
func (p *Pool) Workers() int {
	return p.workers
}

func (p *Pool) Run(ctx context.Context, tasks []Task) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return task(ctx)
		})
	}
	return g.Wait()
}
