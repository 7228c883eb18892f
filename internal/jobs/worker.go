package jobs

import (
	"context"
	"log"
	"time"
)

// JobProcessor is one round of periodic background work.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// ProcessorFunc adapts a function to JobProcessor.
type ProcessorFunc func(ctx context.Context) error

func (f ProcessorFunc) ProcessJobs(ctx context.Context) error { return f(ctx) }

// Worker runs a JobProcessor once at start and then every interval.
// Rounds never overlap; a slow round delays the next tick.
type Worker struct {
	name      string
	processor JobProcessor
	interval  time.Duration
}

func NewWorker(name string, processor JobProcessor, interval time.Duration) *Worker {
	return &Worker{name: name, processor: processor, interval: interval}
}

// Run blocks until ctx is done. Processor errors are logged and do not stop
// the loop, so Run always returns nil.
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("%s worker started, interval %v", w.name, w.interval)
	defer log.Printf("%s worker stopped", w.name)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		if err := w.processor.ProcessJobs(ctx); err != nil && ctx.Err() == nil {
			log.Printf("%s worker: %v", w.name, err)
		}
		timer.Reset(w.interval)
	}
}
