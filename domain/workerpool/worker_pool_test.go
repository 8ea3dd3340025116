package workerpool_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/baseswapfi/sor/domain/workerpool"
)

func TestDispatcherRunPreservesOrder(t *testing.T) {
	const numJobs = 20

	jobs := make([]Job[int], numJobs)
	for i := 0; i < numJobs; i++ {
		i := i
		jobs[i] = Job[int]{
			Task: func(ctx context.Context) (int, error) {
				// Later jobs finish first.
				time.Sleep(time.Duration(numJobs-i) * time.Millisecond)
				return i * 2, nil
			},
		}
	}

	results := NewDispatcher[int](4).Run(context.Background(), jobs)

	require.Len(t, results, numJobs)
	for i, result := range results {
		require.NoError(t, result.Err)
		require.Equal(t, i*2, result.Result)
	}
}

func TestDispatcherRunBoundsConcurrency(t *testing.T) {
	const maxWorkers = 3

	var (
		inFlight    atomic.Int32
		maxInFlight atomic.Int32
	)

	jobs := make([]Job[struct{}], 12)
	for i := range jobs {
		jobs[i] = Job[struct{}]{
			Task: func(ctx context.Context) (struct{}, error) {
				current := inFlight.Add(1)
				for {
					observed := maxInFlight.Load()
					if current <= observed || maxInFlight.CompareAndSwap(observed, current) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				inFlight.Add(-1)
				return struct{}{}, nil
			},
		}
	}

	NewDispatcher[struct{}](maxWorkers).Run(context.Background(), jobs)

	require.LessOrEqual(t, maxInFlight.Load(), int32(maxWorkers))
}

func TestDispatcherRunErrors(t *testing.T) {
	expectedErr := errors.New("job failed")

	jobs := []Job[string]{
		{Task: func(ctx context.Context) (string, error) { return "ok", nil }},
		{Task: func(ctx context.Context) (string, error) { return "", expectedErr }},
	}

	results := NewDispatcher[string](2).Run(context.Background(), jobs)

	require.NoError(t, results[0].Err)
	require.Equal(t, "ok", results[0].Result)
	require.ErrorIs(t, results[1].Err, expectedErr)
}

func TestDispatcherRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	jobs := make([]Job[int], 5)
	for i := range jobs {
		jobs[i] = Job[int]{
			Task: func(ctx context.Context) (int, error) {
				ran.Add(1)
				return 1, ctx.Err()
			},
		}
	}

	results := NewDispatcher[int](1).Run(ctx, jobs)

	require.Len(t, results, 5)
	for _, result := range results {
		require.ErrorIs(t, result.Err, context.Canceled)
	}
}
