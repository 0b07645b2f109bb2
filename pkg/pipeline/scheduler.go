package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// PageFunc observes page completions of one document. done counts terminal
// pages so far. It may be called from several workers at once.
type PageFunc func(source string, done, total int)

// Scheduler runs the pages of one document on a fixed pool of workers.
type Scheduler struct {
	Executor *Executor
	Workers  int
	OnPage   PageFunc
}

// Run processes every page of doc and returns one terminal result per page,
// indexed by page. It returns only after all pages are terminal.
//
// ctx is consulted before a worker starts a task, never during one: a page
// already running finishes its attempts. Tasks not started once ctx is done
// are marked Failed with the context error.
func (s *Scheduler) Run(ctx context.Context, doc Document) []PageResult {
	total := doc.PageCount
	results := make([]PageResult, total)
	if total <= 0 {
		return results
	}

	queue := make(chan *PageTask, total)
	for i := 0; i < total; i++ {
		queue <- &PageTask{Index: i, State: Pending}
	}
	close(queue)

	workers := s.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	workers = min(workers, total)

	var done atomic.Int64
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for task := range queue {
				if err := ctx.Err(); err != nil {
					task.State = Failed
					results[task.Index] = PageResult{
						Index: task.Index,
						State: Failed,
						Err:   fmt.Errorf("page %d not started: %w", task.Index+1, err),
					}
				} else {
					results[task.Index] = s.Executor.Execute(ctx, doc, task)
				}
				n := done.Add(1)
				if s.OnPage != nil {
					s.OnPage(doc.Source, int(n), total)
				}
			}
			return nil
		})
	}
	// Workers never return errors; page failures are carried in results.
	_ = g.Wait()
	return results
}
