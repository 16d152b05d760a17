// Package worker runs background jobs on a fixed set of goroutines.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by SubmitJob when no queue slot is free.
var ErrQueueFull = errors.New("worker: job queue full")

// ErrStopped is returned by SubmitJob after Stop.
var ErrStopped = errors.New("worker: dispatcher stopped")

// Job is a unit of background work.
type Job interface {
	ID() string
	Execute(ctx context.Context) error
}

// Worker pulls jobs from the dispatcher's pool of job channels.
type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	quit       chan struct{}
	wg         *sync.WaitGroup
	log        *logrus.Logger
}

// NewWorker creates a Worker registered against workerPool.
func NewWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup, log *logrus.Logger) Worker {
	return Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		quit:       make(chan struct{}),
		wg:         wg,
		log:        log,
	}
}

// Start makes the Worker listen for jobs until ctx is done or Stop is called.
func (w Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			// Offer this worker's channel to the dispatcher.
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-w.quit:
				return
			case <-ctx.Done():
				return
			}

			select {
			case job := <-w.JobChannel:
				w.run(ctx, job)
			case <-w.quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (w Worker) run(ctx context.Context, job Job) {
	entry := w.log.WithFields(logrus.Fields{"worker": w.ID, "job": job.ID()})
	entry.Debug("Started job")
	defer func() {
		if r := recover(); r != nil {
			entry.Errorf("Job panicked: %v", r)
		}
	}()
	if err := job.Execute(ctx); err != nil {
		entry.Errorf("Error processing job: %v", err)
		return
	}
	entry.Debug("Finished job")
}

// Stop signals the worker to exit once its current job is done.
func (w Worker) Stop() {
	close(w.quit)
}

// Dispatcher owns a queue of jobs and a fixed set of workers.
type Dispatcher struct {
	MaxWorkers int
	WorkerPool chan chan Job
	JobQueue   chan Job
	Workers    []Worker

	wg      sync.WaitGroup
	quit    chan struct{}
	done    chan struct{}
	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	log     *logrus.Logger
}

// NewDispatcher creates a Dispatcher with maxWorkers workers and room for
// jobQueueSize pending jobs.
func NewDispatcher(maxWorkers, jobQueueSize int, log *logrus.Logger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if jobQueueSize < 1 {
		jobQueueSize = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		MaxWorkers: maxWorkers,
		WorkerPool: make(chan chan Job, maxWorkers),
		JobQueue:   make(chan Job, jobQueueSize),
		Workers:    make([]Worker, 0, maxWorkers),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the workers and the dispatch loop. Jobs receive a context
// derived from ctx that is cancelled by Stop.
func (d *Dispatcher) Run(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.log.WithField("workers", d.MaxWorkers).Info("Dispatcher starting")
	for i := 1; i <= d.MaxWorkers; i++ {
		worker := NewWorker(i, d.WorkerPool, &d.wg, d.log)
		d.Workers = append(d.Workers, worker)
		worker.Start(ctx)
	}
	go d.dispatch(ctx)
}

// dispatch hands queued jobs to the next idle worker, in order.
func (d *Dispatcher) dispatch(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case job := <-d.JobQueue:
			select {
			case jobChannel := <-d.WorkerPool:
				select {
				case jobChannel <- job:
				case <-ctx.Done():
					d.drop(job)
					return
				}
			case <-d.quit:
				d.drop(job)
				return
			case <-ctx.Done():
				d.drop(job)
				return
			}
		case <-d.quit:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) drop(job Job) {
	d.log.WithField("job", job.ID()).Warn("Dispatcher stopping, job dropped")
}

// SubmitJob queues job without blocking.
func (d *Dispatcher) SubmitJob(job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	select {
	case d.JobQueue <- job:
		d.log.WithField("job", job.ID()).Debug("Job submitted")
		return nil
	default:
		d.log.WithField("job", job.ID()).Warn("Job queue full, job not submitted")
		return ErrQueueFull
	}
}

// Stop stops accepting jobs, lets running jobs finish and waits for every
// worker to exit. Jobs still queued are dropped.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	close(d.quit)
	if d.cancel != nil {
		<-d.done
	}
	for _, worker := range d.Workers {
		worker.Stop()
	}
	d.wg.Wait()
	if d.cancel != nil {
		d.cancel()
	}
	d.log.Info("Dispatcher stopped")
}
