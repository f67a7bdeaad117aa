package backend

import (
	"context"
)

// Sequential runs tasks one by one on the calling goroutine.
type Sequential struct {
}

func NewSequential() *Sequential {
	return &Sequential{}
}

func (s *Sequential) Name() string {
	return "sequential"
}

func (s *Sequential) Run(ctx context.Context, tasks []Task) error {
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task(ctx); err != nil {
			return err
		}
	}
	return nil
}
