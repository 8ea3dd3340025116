package routerrepo

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baseswapfi/sor/domain"
)

const (
	// BackendMemory keeps routes in process memory.
	BackendMemory = "memory"
	// BackendRedis keeps routes in a shared redis instance.
	BackendRedis = "redis"

	defaultExpiry = 5 * time.Minute
)

// cacheModes resolves the cache mode of a trade from the configured
// default and the per pair overrides.
type cacheModes struct {
	defaultMode domain.CacheMode
	overrides   map[string]domain.CacheMode
}

func newCacheModes(config domain.RouteCacheConfig) (cacheModes, error) {
	defaultMode, err := domain.ParseCacheMode(config.Mode)
	if err != nil {
		return cacheModes{}, err
	}

	overrides := make(map[string]domain.CacheMode, len(config.ModeOverrides))
	for pair, modeStr := range config.ModeOverrides {
		mode, err := domain.ParseCacheMode(modeStr)
		if err != nil {
			return cacheModes{}, fmt.Errorf("override %s: %w", pair, err)
		}
		overrides[strings.ToLower(pair)] = mode
	}

	return cacheModes{
		defaultMode: defaultMode,
		overrides:   overrides,
	}, nil
}

func (m cacheModes) get(amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType) domain.CacheMode {
	tokenIn, tokenOut := amount.Token.Address, quoteToken.Address
	if tradeType == domain.TradeTypeExactOutput {
		tokenIn, tokenOut = tokenOut, tokenIn
	}

	if mode, ok := m.overrides[PairKey(tokenIn, tokenOut)]; ok {
		return mode
	}
	return m.defaultMode
}

// PairKey formats the key of a mode override.
func PairKey(tokenIn, tokenOut common.Address) string {
	return strings.ToLower(tokenIn.Hex()) + "|" + strings.ToLower(tokenOut.Hex())
}

func expiry(config domain.RouteCacheConfig) time.Duration {
	if config.ExpirySeconds <= 0 {
		return defaultExpiry
	}
	return time.Duration(config.ExpirySeconds) * time.Second
}
