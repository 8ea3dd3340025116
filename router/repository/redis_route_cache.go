package routerrepo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/json"
	"github.com/baseswapfi/sor/domain/mvc"
)

const (
	keySeparator = "~"

	routerPrefix = "sor" + keySeparator
	routesPrefix = routerPrefix + "r" + keySeparator
)

type redisRouteCachingProvider struct {
	client redis.Cmdable
	modes  cacheModes
	expiry time.Duration
}

var _ mvc.RouteCachingProvider = &redisRouteCachingProvider{}

// NewRedisRouteCachingProvider creates a route cache shared by every router process
// connected to the same redis instance.
func NewRedisRouteCachingProvider(client redis.Cmdable, config domain.RouteCacheConfig) (mvc.RouteCachingProvider, error) {
	modes, err := newCacheModes(config)
	if err != nil {
		return nil, err
	}

	return &redisRouteCachingProvider{
		client: client,
		modes:  modes,
		expiry: expiry(config),
	}, nil
}

// GetCacheMode implements mvc.RouteCachingProvider.
func (p *redisRouteCachingProvider) GetCacheMode(_ domain.ChainID, amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType, _ []domain.Protocol) domain.CacheMode {
	return p.modes.get(amount, quoteToken, tradeType)
}

// GetCachedRoute implements mvc.RouteCachingProvider.
// Returns false and no error if the key is absent or expired.
func (p *redisRouteCachingProvider) GetCachedRoute(ctx context.Context, key domain.RouteCacheKey) (*domain.CachedRoutes, bool, error) {
	bz, err := p.client.Get(ctx, routesKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	cached, err := decodeCachedRoutes(key, bz)
	if err != nil {
		return nil, false, err
	}

	return cached, true, nil
}

// SetCachedRoute implements mvc.RouteCachingProvider.
func (p *redisRouteCachingProvider) SetCachedRoute(ctx context.Context, key domain.RouteCacheKey, cachedRoutes *domain.CachedRoutes) error {
	bz, err := json.Marshal(cachedRoutes)
	if err != nil {
		return err
	}

	return p.client.Set(ctx, routesKey(key), bz, p.expiry).Err()
}

func routesKey(key domain.RouteCacheKey) string {
	return routesPrefix + key.String()
}

func decodeCachedRoutes(key domain.RouteCacheKey, bz []byte) (*domain.CachedRoutes, error) {
	var cached domain.CachedRoutes
	if err := json.Unmarshal(bz, &cached); err != nil {
		return nil, domain.RouteCacheDecodeError{Key: key.String(), Err: err}
	}
	return &cached, nil
}
