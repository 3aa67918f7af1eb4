package writequeue

import (
	"context"
	"sync"
	"time"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
)

// Queue coalesces rapid writes per key and flushes the latest value once
// the key has been quiet for the debounce interval, or unconditionally once
// the oldest pending write reaches the max-wait bound. Response edits are
// frequent and small; coalescing them keeps one write per burst while
// bounding staleness.
type Queue[V any] struct {
	log      *logger.Logger
	debounce time.Duration
	maxWait  time.Duration
	tick     time.Duration
	flush    func(ctx context.Context, key string, value V)

	mu      sync.Mutex
	pending map[string]*pendingWrite[V]
	cancel  context.CancelFunc
	done    chan struct{}
}

type pendingWrite[V any] struct {
	value   V
	firstAt time.Time
	lastAt  time.Time
}

type Options struct {
	Debounce time.Duration // default 1s
	MaxWait  time.Duration // default 5s
	Tick     time.Duration // sweep interval, default 100ms
}

func New[V any](log *logger.Logger, opts Options, flush func(ctx context.Context, key string, value V)) *Queue[V] {
	if opts.Debounce <= 0 {
		opts.Debounce = time.Second
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 5 * time.Second
	}
	if opts.Tick <= 0 {
		opts.Tick = 100 * time.Millisecond
	}
	return &Queue[V]{
		log:      log.With("component", "writequeue"),
		debounce: opts.Debounce,
		maxWait:  opts.MaxWait,
		tick:     opts.Tick,
		flush:    flush,
		pending:  map[string]*pendingWrite[V]{},
	}
}

func (q *Queue[V]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.done = make(chan struct{})
	go q.sweepLoop(ctx)
}

// Stop flushes everything still pending and halts the sweep loop.
func (q *Queue[V]) Stop(ctx context.Context) {
	q.mu.Lock()
	cancel := q.cancel
	done := q.done
	q.cancel = nil
	q.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	q.FlushAll(ctx)
}

// Enqueue records the latest value for the key, replacing any pending one.
func (q *Queue[V]) Enqueue(key string, value V) {
	now := time.Now()
	q.mu.Lock()
	defer q.mu.Unlock()
	if p, ok := q.pending[key]; ok {
		p.value = value
		p.lastAt = now
		return
	}
	q.pending[key] = &pendingWrite[V]{value: value, firstAt: now, lastAt: now}
}

// Flush writes the key's pending value immediately, if any.
func (q *Queue[V]) Flush(ctx context.Context, key string) {
	q.mu.Lock()
	p, ok := q.pending[key]
	if ok {
		delete(q.pending, key)
	}
	q.mu.Unlock()
	if ok {
		q.flush(ctx, key, p.value)
	}
}

func (q *Queue[V]) FlushAll(ctx context.Context) {
	q.mu.Lock()
	batch := q.pending
	q.pending = map[string]*pendingWrite[V]{}
	q.mu.Unlock()
	for key, p := range batch {
		q.flush(ctx, key, p.value)
	}
}

func (q *Queue[V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue[V]) sweepLoop(ctx context.Context) {
	defer close(q.done)
	ticker := time.NewTicker(q.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.sweep(ctx)
		}
	}
}

func (q *Queue[V]) sweep(ctx context.Context) {
	now := time.Now()
	var due []struct {
		key   string
		value V
	}
	q.mu.Lock()
	for key, p := range q.pending {
		if now.Sub(p.lastAt) >= q.debounce || now.Sub(p.firstAt) >= q.maxWait {
			due = append(due, struct {
				key   string
				value V
			}{key, p.value})
			delete(q.pending, key)
		}
	}
	q.mu.Unlock()
	for _, d := range due {
		q.flush(ctx, d.key, d.value)
	}
}
