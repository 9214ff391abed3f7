// Package enrich drives the per-identifier query plan: pages of identifiers
// come in, and for each identifier the groups of the plan run one after
// another while the queries inside a group run concurrently.
package enrich

import (
	"context"
)

// Task is one query of a group, already instantiated for its identifier.
// Run must return exactly once; its error is reported, never retried.
type Task struct {
	Name string
	Run  func(ctx context.Context) ([]byte, error)
}

// Outcome is what a task reported.
type Outcome struct {
	Name string
	Body []byte
	Err  error
}

type completion struct {
	index   int
	outcome Outcome
}

// RunGroup starts every task in order, each in its own goroutine, and returns
// once every one of them has reported. Completion order does not matter; the
// outcomes are returned in dispatch order.
func RunGroup(ctx context.Context, tasks []Task) []Outcome {
	events := make(chan completion, len(tasks))
	pending := make(map[int]struct{}, len(tasks))

	for i, task := range tasks {
		pending[i] = struct{}{}
		go func() {
			body, err := task.Run(ctx)
			events <- completion{index: i, outcome: Outcome{Name: task.Name, Body: body, Err: err}}
		}()
	}

	outcomes := make([]Outcome, len(tasks))
	for len(pending) > 0 {
		ev := <-events
		delete(pending, ev.index)
		outcomes[ev.index] = ev.outcome
	}
	return outcomes
}
