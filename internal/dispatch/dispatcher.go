// Package dispatch runs best-effort side effects (analytics, identity links)
// after the request that produced them has committed.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/metrics"
	"golang.org/x/time/rate"
)

// TaskFunc is one unit of side-effect work.
type TaskFunc func(ctx context.Context) error

// Enqueuer accepts fire-and-forget tasks. Enqueue never blocks and reports
// whether the task was accepted.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, fn TaskFunc) bool
}

type task struct {
	name string
	ctx  context.Context
	fn   TaskFunc
}

// Dispatcher is a bounded worker pool with an outbound rate limit.
type Dispatcher struct {
	queue   chan task
	workers int
	timeout time.Duration
	limiter *rate.Limiter
	metrics *metrics.DispatchMetrics
	logg    *logger.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	runCtx context.Context
	cancel context.CancelFunc
}

// New builds a dispatcher. Call Start before enqueueing.
func New(cfg config.DispatcherConfig, m *metrics.DispatchMetrics, logg *logger.Logger) (*Dispatcher, error) {
	if cfg.Workers <= 0 {
		return nil, errors.New("dispatcher requires at least one worker")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	runCtx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		queue:   make(chan task, queueSize),
		workers: cfg.Workers,
		timeout: cfg.TaskTimeout,
		limiter: rate.NewLimiter(limit, burst),
		metrics: m,
		logg:    logg,
		runCtx:  runCtx,
		cancel:  cancel,
	}, nil
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

// Enqueue schedules fn. The task keeps ctx values (request id, user id) but
// not its cancellation, so it outlives the request. Tasks are dropped when
// the queue is full or the dispatcher is shutting down.
func (d *Dispatcher) Enqueue(ctx context.Context, name string, fn TaskFunc) bool {
	if fn == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.metrics.IncDropped(name)
		return false
	}

	select {
	case d.queue <- task{name: name, ctx: context.WithoutCancel(ctx), fn: fn}:
		d.metrics.SetQueueDepth(len(d.queue))
		return true
	default:
		d.metrics.IncDropped(name)
		d.logg.Warn(d.logg.WithField(ctx, "task", name), "dispatch queue full, task dropped")
		return false
	}
}

// Shutdown stops accepting tasks and drains the queue. If ctx expires first
// the remaining tasks are cancelled and ctx's error is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	defer d.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return fmt.Errorf("dispatcher drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for t := range d.queue {
		d.metrics.SetQueueDepth(len(d.queue))
		if err := d.limiter.Wait(d.runCtx); err != nil {
			d.metrics.IncDropped(t.name)
			continue
		}
		_ = d.run(t)
	}
}

func (d *Dispatcher) run(t task) (err error) {
	ctx, cancel := d.taskContext(t.ctx)
	defer cancel()
	logCtx := d.logg.WithField(ctx, "task", t.name)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.name, r)
		}
		d.metrics.ObserveDuration(t.name, time.Since(start))
		if err != nil {
			d.metrics.IncFailure(t.name)
			d.logg.Error(logCtx, "dispatched task failed", err)
			return
		}
		d.metrics.IncSuccess(t.name)
	}()

	return t.fn(logCtx)
}

func (d *Dispatcher) taskContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := context.WithCancel(parent)
	unlink := context.AfterFunc(d.runCtx, stop)
	if d.timeout > 0 {
		timed, cancel := context.WithTimeout(ctx, d.timeout)
		return timed, func() {
			cancel()
			unlink()
			stop()
		}
	}
	return ctx, func() {
		unlink()
		stop()
	}
}

// Inline runs tasks on the caller's goroutine. It is used when the worker pool
// is disabled. Errors are logged and never returned.
type Inline struct {
	Logger *logger.Logger
}

func (i Inline) Enqueue(ctx context.Context, name string, fn TaskFunc) bool {
	if fn == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if r := recover(); r != nil && i.Logger != nil {
			i.Logger.Error(i.Logger.WithField(ctx, "task", name), "inline task panicked", fmt.Errorf("%v", r))
		}
	}()
	if err := fn(context.WithoutCancel(ctx)); err != nil && i.Logger != nil {
		i.Logger.Error(i.Logger.WithField(ctx, "task", name), "inline task failed", err)
	}
	return true
}
