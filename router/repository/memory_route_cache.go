package routerrepo

import (
	"context"
	"time"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/cache"
	"github.com/baseswapfi/sor/domain/mvc"
)

type memoryRouteCachingProvider struct {
	cache  *cache.Cache
	modes  cacheModes
	expiry time.Duration
}

var _ mvc.RouteCachingProvider = &memoryRouteCachingProvider{}

// NewMemoryRouteCachingProvider creates a route cache local to the process.
func NewMemoryRouteCachingProvider(c *cache.Cache, config domain.RouteCacheConfig) (mvc.RouteCachingProvider, error) {
	modes, err := newCacheModes(config)
	if err != nil {
		return nil, err
	}

	return &memoryRouteCachingProvider{
		cache:  c,
		modes:  modes,
		expiry: expiry(config),
	}, nil
}

// GetCacheMode implements mvc.RouteCachingProvider.
func (p *memoryRouteCachingProvider) GetCacheMode(_ domain.ChainID, amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType, _ []domain.Protocol) domain.CacheMode {
	return p.modes.get(amount, quoteToken, tradeType)
}

// GetCachedRoute implements mvc.RouteCachingProvider.
func (p *memoryRouteCachingProvider) GetCachedRoute(_ context.Context, key domain.RouteCacheKey) (*domain.CachedRoutes, bool, error) {
	value, ok := p.cache.Get(key.String())
	if !ok {
		return nil, false, nil
	}

	cached, ok := value.(domain.CachedRoutes)
	if !ok {
		return nil, false, domain.RouteCacheDecodeError{Key: key.String(), Err: domain.ErrUnexpectedCacheValue}
	}

	return &cached, true, nil
}

// SetCachedRoute implements mvc.RouteCachingProvider.
// The entry is stored by value so that later mutations by the caller are not observed.
func (p *memoryRouteCachingProvider) SetCachedRoute(_ context.Context, key domain.RouteCacheKey, cachedRoutes *domain.CachedRoutes) error {
	p.cache.Set(key.String(), cloneCachedRoutes(cachedRoutes), p.expiry)
	return nil
}

func cloneCachedRoutes(c *domain.CachedRoutes) domain.CachedRoutes {
	clone := *c
	clone.Protocols = append([]domain.Protocol(nil), c.Protocols...)
	clone.Routes = make([]domain.CachedRoute, len(c.Routes))
	for i, r := range c.Routes {
		clone.Routes[i] = domain.CachedRoute{
			Protocol:      r.Protocol,
			PoolAddresses: append(r.PoolAddresses[:0:0], r.PoolAddresses...),
			TokenPath:     append(r.TokenPath[:0:0], r.TokenPath...),
			Fees:          append(r.Fees[:0:0], r.Fees...),
			PoolProtocols: append(r.PoolProtocols[:0:0], r.PoolProtocols...),
		}
	}
	return clone
}
