// Package inproc runs tasks inside the process, for local mode and tests.
package inproc

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"catering/internal/core/ports"
	"catering/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

// ErrDispatcherStopped is returned by Enqueue once Run has returned.
var ErrDispatcherStopped = errors.New("in-process dispatcher is stopped")

const (
	MinWorkers = 1
	MaxWorkers = 128
)

var _ ports.TaskDispatcher = (*Dispatcher)(nil)

// Dispatcher is a priority task queue drained by a bounded pool of workers.
// Higher priority queues are always drained first. Delayed tasks, redelivered
// ones included, are held in timers and lost on shutdown.
type Dispatcher struct {
	workers int
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[ports.Queue][]ports.Task
	timers  map[*time.Timer]struct{}
	stopped bool
	wake    chan struct{}
}

// NewDispatcher creates a dispatcher running at most workers tasks at once.
func NewDispatcher(workers int, logger *slog.Logger) (*Dispatcher, error) {
	if workers < MinWorkers || workers > MaxWorkers {
		return nil, errs.NewValueIsOutOfRangeError("workers", workers, MinWorkers, MaxWorkers)
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	return &Dispatcher{
		workers: workers,
		logger:  logger.With("component", "inproc_dispatcher"),
		pending: make(map[ports.Queue][]ports.Task),
		timers:  make(map[*time.Timer]struct{}),
		wake:    make(chan struct{}, workers),
	}, nil
}

// Enqueue queues task, or schedules it after delay. It never blocks.
func (d *Dispatcher) Enqueue(_ context.Context, task ports.Task, queue ports.Queue, delay time.Duration) error {
	if err := task.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrDispatcherStopped
	}
	if delay <= 0 {
		d.pushLocked(task, queue)
		return nil
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.timers, timer)
		if !d.stopped {
			d.pushLocked(task, queue)
		}
	})
	d.timers[timer] = struct{}{}
	return nil
}

// Run executes queued tasks with handler until ctx is done.
func (d *Dispatcher) Run(ctx context.Context, handler ports.TaskHandler) error {
	if handler == nil {
		return errs.NewValueIsRequiredError("handler")
	}

	d.logger.Info("starting", "workers", d.workers)

	g, ctx := errgroup.WithContext(ctx)
	for range d.workers {
		g.Go(func() error {
			d.work(ctx, handler)
			return nil
		})
	}
	err := g.Wait()

	d.mu.Lock()
	d.stopped = true
	for timer := range d.timers {
		timer.Stop()
	}
	dropped := len(d.timers)
	for _, tasks := range d.pending {
		dropped += len(tasks)
	}
	d.timers = nil
	d.pending = nil
	d.mu.Unlock()

	d.logger.Info("stopped", "dropped_tasks", dropped)
	return err
}

// Pending reports how many tasks wait for a worker, delayed ones included.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.timers)
	for _, tasks := range d.pending {
		n += len(tasks)
	}
	return n
}

func (d *Dispatcher) work(ctx context.Context, handler ports.TaskHandler) {
	for {
		task, ok := d.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-d.wake:
				continue
			}
		}
		if ctx.Err() != nil {
			return
		}
		d.run(ctx, handler, task)
	}
}

func (d *Dispatcher) run(ctx context.Context, handler ports.TaskHandler, task ports.Task) {
	logger := d.logger.With("task_id", task.ID, "worker", task.Worker, "order_id", task.OrderID, "attempt", task.Attempt)

	err := handler.Handle(ctx, task)
	switch {
	case err == nil:
	case errs.IsAlarm(err):
		logger.Error("task failed", "error", err, "alarm", true)
	default:
		logger.Warn("task failed", "error", err)
	}
}

func (d *Dispatcher) pushLocked(task ports.Task, queue ports.Queue) {
	d.pending[queue] = append(d.pending[queue], task)
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) pop() (ports.Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, q := range ports.Queues() {
		if tasks := d.pending[q]; len(tasks) > 0 {
			d.pending[q] = tasks[1:]
			return tasks[0], true
		}
	}
	return ports.Task{}, false
}
