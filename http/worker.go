package http

import "sync"

// Job is one unit of work handed to the pool.
type Job func()

// Pool runs submitted jobs on a fixed set of worker goroutines. Submit
// blocks until a worker is free, so pending connections wait in the
// listener backlog instead of piling up in memory.
type Pool struct {
	jobs chan Job
	wg   sync.WaitGroup
}

// NewPool starts size workers. A size below one is raised to one.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}

	pool := &Pool{jobs: make(chan Job)}
	pool.wg.Add(size)
	for i := 0; i < size; i++ {
		go pool.worker()
	}
	return pool
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Submit blocks until a worker accepts job.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

// Close stops accepting jobs and waits for the in-flight ones to finish.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
