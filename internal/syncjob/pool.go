package syncjob

import (
	"context"
	"sync"
)

// Job is one unit of fan-out work, named for failure reporting.
type Job struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Result pairs a job with its outcome.
type Result struct {
	Name string
	Err  error
}

// RunPool executes jobs with at most workers goroutines. One job failing
// never stops the others; every result is returned. A cancelled context
// fails the jobs not yet started instead of running them.
func RunPool(ctx context.Context, workers int, jobs []Job) []Result {
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan Job)
	results := make([]Result, 0, len(jobs))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				var err error
				if ctx.Err() != nil {
					err = ctx.Err()
				} else {
					err = job.Fn(ctx)
				}
				mu.Lock()
				results = append(results, Result{Name: job.Name, Err: err})
				mu.Unlock()
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()

	return results
}
