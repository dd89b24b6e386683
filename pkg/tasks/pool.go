package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrQueueFull is returned by Submit when the pool's buffer is full.
	ErrQueueFull = errors.New("task queue is full")
	// ErrPoolClosed is returned by Submit after Shutdown.
	ErrPoolClosed = errors.New("task pool is closed")
)

type PoolConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	TaskTimeout time.Duration
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 30 * time.Second
	}
	return c
}

// Pool is a bounded in-process worker pool. Failed tasks are retried with
// exponential backoff up to MaxAttempts and then dropped with an error log.
type Pool struct {
	handler Handler
	cfg     PoolConfig
	logger  *slog.Logger

	queue  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var _ Submitter = (*Pool)(nil)

// NewPool starts cfg.Workers workers.
func NewPool(handler Handler, cfg PoolConfig, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		handler: handler,
		cfg:     cfg,
		logger:  logger,
		queue:   make(chan Task, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

// Submit enqueues task without waiting for a free worker.
func (p *Pool) Submit(_ context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. If ctx expires
// first, in-flight retries are abandoned and ctx's error is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	logger := p.logger.With("task_id", task.ID, "kind", task.Kind)
	for {
		task.Attempt++
		err := p.attempt(task)
		if err == nil {
			return
		}
		if IsPermanent(err) || task.Attempt >= p.cfg.MaxAttempts {
			logger.Error("task failed, dropping", "attempt", task.Attempt, "error", err)
			return
		}

		wait := Backoff(p.cfg.BaseBackoff, p.cfg.MaxBackoff, task.Attempt)
		logger.Warn("task failed, retrying", "attempt", task.Attempt, "backoff", wait.String(), "error", err)
		select {
		case <-time.After(wait):
		case <-p.ctx.Done():
			logger.Error("task abandoned on shutdown", "attempt", task.Attempt)
			return
		}
	}
}

func (p *Pool) attempt(task Task) (err error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.TaskTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panicked", "task_id", task.ID, "panic", r)
			err = Permanent(errors.New("task panicked"))
		}
	}()
	return p.handler.Handle(ctx, task)
}

// Backoff returns base doubled per completed attempt, capped at ceiling.
func Backoff(base, ceiling time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	return d
}
