package usecase

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
)

const latestBlockLabel = "latest"

const poolCacheShards = 16

// PoolCache is the shared snapshot store of the caching pool providers.
// It is safe for concurrent use. Keys are spread over independently locked
// LRU shards so lookups of one pool do not wait on writes of another.
type PoolCache struct {
	shards [poolCacheShards]*expirable.LRU[string, domain.PoolI]
}

// NewPoolCache returns a bounded pool cache whose entries expire after ttl.
func NewPoolCache(size int, ttl time.Duration) *PoolCache {
	shardSize := max(size/poolCacheShards, 1)

	c := &PoolCache{}
	for i := range c.shards {
		c.shards[i] = expirable.NewLRU[string, domain.PoolI](shardSize, nil, ttl)
	}
	return c
}

// Get returns the cached pool for key.
func (c *PoolCache) Get(key string) (domain.PoolI, bool) {
	return c.shard(key).Get(key)
}

// Add stores pool under key, evicting the oldest entry of its shard when full.
func (c *PoolCache) Add(key string, pool domain.PoolI) {
	c.shard(key).Add(key, pool)
}

// Len returns the number of unexpired entries.
func (c *PoolCache) Len() int {
	n := 0
	for _, shard := range c.shards {
		n += shard.Len()
	}
	return n
}

func (c *PoolCache) shard(key string) *expirable.LRU[string, domain.PoolI] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%poolCacheShards]
}

type cachingPoolProvider struct {
	mvc.PoolProvider
	cache *PoolCache
}

var _ mvc.PoolProvider = &cachingPoolProvider{}

// NewCachingPoolProvider decorates provider with the cache. Only pairs missing
// from the cache are fetched from the wrapped provider.
func NewCachingPoolProvider(provider mvc.PoolProvider, cache *PoolCache) mvc.PoolProvider {
	return &cachingPoolProvider{
		PoolProvider: provider,
		cache:        cache,
	}
}

// GetPools implements mvc.PoolProvider.
func (c *cachingPoolProvider) GetPools(ctx context.Context, pairs []domain.TokenPair, blockNumber *uint64) (domain.PoolAccessor, error) {
	protocol := c.GetProtocol()
	protocolLabel := protocol.String()

	result := make([]domain.PoolI, 0, len(pairs))
	missing := make([]domain.TokenPair, 0, len(pairs))
	for _, pair := range pairs {
		address, _, _ := c.GetPoolAddress(pair.TokenA, pair.TokenB, pair.Fee)

		pool, ok := c.cache.Get(formatPoolCacheKey(protocol, address, blockNumber))
		if ok {
			domain.PoolCacheHitsCounter.WithLabelValues(protocolLabel).Inc()
			result = append(result, pool)
			continue
		}

		domain.PoolCacheMissesCounter.WithLabelValues(protocolLabel).Inc()
		missing = append(missing, pair)
	}

	if len(missing) > 0 {
		fetched, err := c.PoolProvider.GetPools(ctx, missing, blockNumber)
		if err != nil {
			return nil, err
		}

		for _, pool := range fetched.GetAllPools() {
			c.cache.Add(formatPoolCacheKey(protocol, pool.GetAddress(), blockNumber), pool)
			result = append(result, pool)
		}
	}

	return NewPoolAccessor(result), nil
}

func formatPoolCacheKey(protocol domain.Protocol, address common.Address, blockNumber *uint64) string {
	block := latestBlockLabel
	if blockNumber != nil {
		block = strconv.FormatUint(*blockNumber, 10)
	}
	return fmt.Sprintf("%s|%s|%s", protocol, strings.ToLower(address.Hex()), block)
}
