package usecase

import "context"

// future is the result of a call started ahead of the step that needs it.
type future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func startFuture[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *future[T] {
	f := &future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn(ctx)
	}()
	return f
}

func resolvedFuture[T any](value T) *future[T] {
	f := &future[T]{done: make(chan struct{}), value: value}
	close(f.done)
	return f
}

// await blocks until the result is available or ctx is done.
// A result that is already available is returned even if ctx is done.
func (f *future[T]) await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
