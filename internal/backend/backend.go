package backend

import (
	"context"
)

// Task is a single unit of work, typically one candidate evaluation.
// Tasks write their outcome into pre-assigned slots,
// so backends are free to execute them in any order.
type Task func(ctx context.Context) error

// Backend executes a batch of tasks.
// The dispatch mechanics belong to the backend implementation :
// the callers make no scheduling decisions.
type Backend interface {
	Name() string
	Run(ctx context.Context, tasks []Task) error
}
