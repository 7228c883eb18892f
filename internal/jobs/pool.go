package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
)

var (
	// ErrQueueFull is returned by Submit when no queue slot is free
	ErrQueueFull = errors.New("task queue is full")
	// ErrPoolStopped is returned by Submit after Stop
	ErrPoolStopped = errors.New("task pool is stopped")
)

// Task is a unit of background work.
type Task func(ctx context.Context)

// Pool runs submitted tasks on a fixed number of workers fed by a bounded
// queue. Submit never blocks.
type Pool struct {
	tasks   chan Task
	workers int

	mu      sync.RWMutex
	stopped bool
	started bool
	wg      sync.WaitGroup
}

// NewPool creates a Pool with the given worker count and queue capacity
func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		tasks:   make(chan Task, queueSize),
		workers: workers,
	}
}

// Start launches the workers. Tasks receive ctx, which should not be tied to
// any single request.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	log.Printf("Task pool started with %d workers", p.workers)
	for w := 1; w <= p.workers; w++ {
		p.wg.Add(1)
		go func(w int) {
			defer p.wg.Done()
			for task := range p.tasks {
				p.run(ctx, w, task)
			}
		}(w)
	}
}

func (p *Pool) run(ctx context.Context, worker int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Task pool: worker %d recovered from panic: %v", worker, r)
		}
	}()
	task(ctx)
}

// Submit queues task without blocking.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop rejects new tasks, lets the workers drain the queue and waits for them.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	log.Println("Task pool shutdown complete")
}
