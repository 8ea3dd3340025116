package mocks

import (
	"time"

	"github.com/baseswapfi/sor/sqsutil/datafetchers"
)

// MapFetcherMock serves Values, fetched at FetchedAt, unless a function field is set.
type MapFetcherMock[K comparable, V any] struct {
	Values    map[K]V
	FetchedAt time.Time
	Stale     bool
	Interval  time.Duration

	GetFn      func() (map[K]V, time.Time, error)
	GetByKeyFn func(key K) (V, time.Time, bool, error)
}

var _ datafetchers.MapFetcher[string, int] = (*MapFetcherMock[string, int])(nil)

// Get implements datafetchers.MapFetcher.
func (m *MapFetcherMock[K, V]) Get() (map[K]V, time.Time, error) {
	if m.GetFn != nil {
		return m.GetFn()
	}
	if m.Values == nil {
		return nil, time.Time{}, datafetchers.ErrNotFetched
	}
	return m.Values, m.FetchedAt, nil
}

// GetByKey implements datafetchers.MapFetcher.
func (m *MapFetcherMock[K, V]) GetByKey(key K) (V, time.Time, bool, error) {
	if m.GetByKeyFn != nil {
		return m.GetByKeyFn(key)
	}

	var zero V
	values, fetchedAt, err := m.Get()
	if err != nil {
		return zero, fetchedAt, true, err
	}

	value, ok := values[key]
	if !ok {
		return zero, fetchedAt, m.Stale, datafetchers.KeyNotFoundError[K]{Key: key}
	}
	return value, fetchedAt, m.Stale, nil
}

// GetRefetchInterval implements datafetchers.MapFetcher.
func (m *MapFetcherMock[K, V]) GetRefetchInterval() time.Duration {
	return m.Interval
}
