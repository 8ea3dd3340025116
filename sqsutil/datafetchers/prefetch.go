package datafetchers

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotFetched is returned before the first successful refresh.
	ErrNotFetched = errors.New("no value has been fetched yet")
	// ErrClosed is returned once the fetcher was closed.
	ErrClosed = errors.New("fetcher is closed")
)

// Fetcher serves a value refreshed in the background.
type Fetcher[T any] interface {
	// Get returns the last fetched value and when it was fetched.
	Get() (T, time.Time, error)
	GetRefetchInterval() time.Duration
}

// UpdateFunc produces a fresh value. The context is cancelled when the fetcher closes.
type UpdateFunc[T any] func(ctx context.Context) (T, error)

// Option configures an IntervalFetcher.
type Option func(*options)

type options struct {
	timeout time.Duration
	onError func(error)
}

// WithUpdateTimeout bounds every refresh. Defaults to the refresh interval.
func WithUpdateTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithErrorHandler is called with every failed refresh.
func WithErrorHandler(onError func(error)) Option {
	return func(o *options) {
		o.onError = onError
	}
}

// IntervalFetcher refreshes a value at a fixed interval. A failed refresh keeps
// the previous value, which then ages until a refresh succeeds.
type IntervalFetcher[T any] struct {
	updateFn UpdateFunc[T]
	interval time.Duration
	opts     options

	mutex       sync.RWMutex
	value       T
	lastFetched time.Time
	closed      bool

	ctx    context.Context
	cancel context.CancelFunc

	firstResult     chan struct{}
	firstResultOnce sync.Once
}

// NewIntervalFetcher starts refreshing immediately and then every interval.
// Panics on a non-positive interval.
func NewIntervalFetcher[T any](updateFn UpdateFunc[T], interval time.Duration, opts ...Option) *IntervalFetcher[T] {
	if interval <= 0 {
		panic("interval must be greater than 0")
	}

	o := options{timeout: interval}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := &IntervalFetcher[T]{
		updateFn:    updateFn,
		interval:    interval,
		opts:        o,
		ctx:         ctx,
		cancel:      cancel,
		firstResult: make(chan struct{}),
	}

	go f.run()

	return f
}

func (f *IntervalFetcher[T]) run() {
	f.refresh()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.refresh()
		case <-f.ctx.Done():
			return
		}
	}
}

func (f *IntervalFetcher[T]) refresh() {
	ctx, cancel := context.WithTimeout(f.ctx, f.opts.timeout)
	defer cancel()

	value, err := f.updateFn(ctx)
	if err != nil {
		if f.opts.onError != nil && f.ctx.Err() == nil {
			f.opts.onError(err)
		}
		return
	}

	f.mutex.Lock()
	f.value = value
	f.lastFetched = time.Now()
	f.mutex.Unlock()

	f.firstResultOnce.Do(func() { close(f.firstResult) })
}

// Get implements Fetcher.
func (f *IntervalFetcher[T]) Get() (T, time.Time, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	var zero T
	if f.closed {
		return zero, time.Time{}, ErrClosed
	}
	if f.lastFetched.IsZero() {
		return zero, time.Time{}, ErrNotFetched
	}

	return f.value, f.lastFetched, nil
}

// IsStale returns true if the value is older than twice the refresh interval.
func (f *IntervalFetcher[T]) IsStale(lastFetched time.Time) bool {
	return time.Since(lastFetched) > 2*f.interval
}

// WaitUntilFirstResult blocks until the first successful refresh or until ctx is done.
func (f *IntervalFetcher[T]) WaitUntilFirstResult(ctx context.Context) error {
	select {
	case <-f.firstResult:
		return nil
	case <-f.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops refreshing and cancels an in-flight refresh. Safe to call more than once.
func (f *IntervalFetcher[T]) Close() {
	f.mutex.Lock()
	f.closed = true
	f.mutex.Unlock()

	f.cancel()
}

// GetRefetchInterval implements Fetcher.
func (f *IntervalFetcher[T]) GetRefetchInterval() time.Duration {
	return f.interval
}
