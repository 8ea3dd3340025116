package datafetchers

import (
	"fmt"
	"time"
)

// MapFetcher is a Fetcher of a keyed value set.
type MapFetcher[K comparable, V any] interface {
	Fetcher[map[K]V]

	// GetByKey returns the value of key, when the set was fetched and whether it is stale.
	GetByKey(key K) (V, time.Time, bool, error)
}

// KeyNotFoundError is returned for a key absent from the fetched set.
type KeyNotFoundError[K comparable] struct {
	Key K
}

func (e KeyNotFoundError[K]) Error() string {
	return fmt.Sprintf("key %v not found", e.Key)
}

// MapIntervalFetcher refreshes a keyed value set at a fixed interval.
type MapIntervalFetcher[K comparable, V any] struct {
	*IntervalFetcher[map[K]V]
}

var _ MapFetcher[string, int] = (*MapIntervalFetcher[string, int])(nil)

// NewMapFetcher starts a MapIntervalFetcher.
func NewMapFetcher[K comparable, V any](updateFn UpdateFunc[map[K]V], interval time.Duration, opts ...Option) *MapIntervalFetcher[K, V] {
	return &MapIntervalFetcher[K, V]{
		IntervalFetcher: NewIntervalFetcher(updateFn, interval, opts...),
	}
}

// GetByKey implements MapFetcher. The staleness flag is set on errors too.
func (f *MapIntervalFetcher[K, V]) GetByKey(key K) (V, time.Time, bool, error) {
	var zero V

	values, lastFetched, err := f.Get()
	if err != nil {
		return zero, lastFetched, true, err
	}

	stale := f.IsStale(lastFetched)

	value, ok := values[key]
	if !ok {
		return zero, lastFetched, stale, KeyNotFoundError[K]{Key: key}
	}

	return value, lastFetched, stale, nil
}
