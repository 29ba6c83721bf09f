package worker

import (
	"context"
	"fmt"
	"sync"
)

// Job is a unit of work run by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job
type Result interface {
	GetError() error
}

// FailedResult stands in for a job that panicked or never ran
type FailedResult struct {
	Err error
}

// GetError returns the failure
func (r *FailedResult) GetError() error {
	return r.Err
}

type task struct {
	index int
	job   Job
}

// Pool runs jobs on a fixed number of goroutines. Results are returned in
// submission order regardless of completion order.
type Pool struct {
	workers    int
	jobQueue   chan task
	collector  *ResultCollector
	submitted  int
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool with the given number of workers (minimum 1)
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:   workers,
		jobQueue:  make(chan task, workers*2),
		collector: NewResultCollector(),
	}
}

// Start launches the workers; jobs see a context derived from ctx
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancelFunc = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.collector.Add(t.index, p.run(t.job))
		}
	}
}

// run executes one job; a panic is recorded as that job's result only
func (p *Pool) run(job Job) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = &FailedResult{Err: fmt.Errorf("job panicked: %v", r)}
		}
	}()
	return job.Execute(p.ctx)
}

// Submit queues a job. It returns false if the pool has been shut down.
// Submit must be called from a single goroutine.
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- task{index: p.submitted, job: job}:
		p.submitted++
		return true
	}
}

// Wait closes the queue, waits for in-flight jobs and returns one result per submitted
// job in submission order. Jobs skipped because the context ended get a FailedResult.
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	err := p.ctx.Err()
	p.cancelFunc()
	if err == nil {
		err = context.Canceled
	}
	return p.collector.Results(p.submitted, err)
}

// Shutdown cancels running jobs and stops the workers
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeQueue()
}

func (p *Pool) closeQueue() {
	p.closeOnce.Do(func() {
		close(p.jobQueue)
	})
}

// Run executes jobs on a fresh pool and returns their results in input order
func Run(ctx context.Context, workers int, jobs []Job) []Result {
	pool := NewPool(workers)
	pool.Start(ctx)
	for _, job := range jobs {
		pool.Submit(job)
	}
	return pool.Wait()
}

// ResultCollector gathers results from concurrent workers by index
type ResultCollector struct {
	results map[int]Result
	mu      sync.Mutex
}

// NewResultCollector creates an empty collector
func NewResultCollector() *ResultCollector {
	return &ResultCollector{
		results: make(map[int]Result),
	}
}

// Add records the result for index (thread-safe)
func (c *ResultCollector) Add(index int, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[index] = result
}

// Results returns n results ordered by index; indexes never recorded get a FailedResult with missing
func (c *ResultCollector) Results(n int, missing error) []Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Result, n)
	for i := range out {
		if r, ok := c.results[i]; ok {
			out[i] = r
			continue
		}
		out[i] = &FailedResult{Err: fmt.Errorf("job not run: %w", missing)}
	}
	return out
}

// Len returns how many results have been recorded
func (c *ResultCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}
