package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baseswapfi/sor/domain/cache"
)

func TestCache_SetGet(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		value          interface{}
		ttl            time.Duration
		advance        time.Duration
		expectedExists bool
	}{
		{
			name:           "no expiration",
			key:            "key1",
			value:          "value1",
			ttl:            cache.NoExpiration,
			advance:        time.Hour,
			expectedExists: true,
		},
		{
			name:           "not yet expired",
			key:            "key2",
			value:          2,
			ttl:            time.Minute,
			advance:        time.Second,
			expectedExists: true,
		},
		{
			name:           "expired",
			key:            "key3",
			value:          "value3",
			ttl:            time.Minute,
			advance:        2 * time.Minute,
			expectedExists: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Unix(1_700_000_000, 0)
			c := cache.New().WithNowFn(func() time.Time { return now })

			c.Set(tt.key, tt.value, tt.ttl)

			now = now.Add(tt.advance)

			value, exists := c.Get(tt.key)
			require.Equal(t, tt.expectedExists, exists)
			if tt.expectedExists {
				require.Equal(t, tt.value, value)
			} else {
				require.Nil(t, value)
				require.Equal(t, 0, c.Len())
			}
		})
	}
}

func TestCache_DeleteAndCleanUp(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := cache.New().WithNowFn(func() time.Time { return now })

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, cache.NoExpiration)
	c.Set("c", 3, time.Hour)

	c.Delete("c")
	_, exists := c.Get("c")
	require.False(t, exists)

	now = now.Add(2 * time.Minute)
	c.CleanUp()

	require.Equal(t, 1, c.Len())
	value, exists := c.Get("b")
	require.True(t, exists)
	require.Equal(t, 2, value)
}

func TestCache_Concurrent(t *testing.T) {
	c := cache.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key%d", i%5)
			c.Set(key, i, time.Minute)
			_, _ = c.Get(key)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 5, c.Len())
}

func TestCache_ReadDuringWriteOfOtherKey(t *testing.T) {
	c := cache.New()
	c.Set("route", 1, cache.NoExpiration)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				c.Set(fmt.Sprintf("other%d", i%10), i, time.Minute)
			}
		}
	}()

	for i := 0; i < 1_000; i++ {
		value, exists := c.Get("route")
		require.True(t, exists)
		require.Equal(t, 1, value)
	}
	close(stop)
	wg.Wait()
}

func TestCache_ExpiredEvictionKeepsNewerValue(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := cache.New().WithNowFn(func() time.Time { return now })

	c.Set("a", 1, time.Minute)
	now = now.Add(2 * time.Minute)
	c.Set("a", 2, time.Minute)

	c.CleanUp()
	value, exists := c.Get("a")
	require.True(t, exists)
	require.Equal(t, 2, value)
}
