package dispatch

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Pool runs callbacks on a bounded set of workers so a slow hotkey or
// word-listener callback cannot stall the dispatch goroutine.
type Pool struct {
	mu      sync.Mutex
	queue   chan func()
	running atomic.Bool
	wg      sync.WaitGroup

	queueSize   int
	workerCount int
	log         zerolog.Logger
	metrics     *Metrics
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolSize sets the callback queue capacity.
func WithPoolSize(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// WithPoolWorkers sets the number of worker goroutines.
func WithPoolWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.workerCount = n
		}
	}
}

// WithPoolLogger sets the logger used for callback panics.
func WithPoolLogger(log zerolog.Logger) PoolOption {
	return func(p *Pool) { p.log = log }
}

// WithPoolMetrics shares a metrics collector with the pool.
func WithPoolMetrics(m *Metrics) PoolOption {
	return func(p *Pool) { p.metrics = m }
}

// NewPool creates a callback pool. Call Start before submitting.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		queueSize:   256,
		workerCount: 4,
		log:         zerolog.Nop(),
		metrics:     NewMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start spawns the workers. Idempotent while running.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return
	}
	p.queue = make(chan func(), p.queueSize)
	p.running.Store(true)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop drains the queue and waits for workers, or returns early when
// the context is cancelled.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		return ErrPoolNotRunning
	}
	p.running.Store(false)
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit hands a callback to the pool. Returns ErrPoolFull when the
// queue is at capacity rather than blocking the dispatch goroutine.
// The mutex orders Submit against Stop closing the queue.
func (p *Pool) Submit(fn func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running.Load() {
		return ErrPoolNotRunning
	}

	select {
	case p.queue <- fn:
		p.metrics.RecordCallback()
		return nil
	default:
		p.metrics.RecordDropped()
		return ErrPoolFull
	}
}

// worker executes callbacks with panic recovery.
func (p *Pool) worker() {
	defer p.wg.Done()
	for fn := range p.queue {
		p.run(fn)
	}
}

func (p *Pool) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("callback panicked")
		}
	}()
	fn()
}
