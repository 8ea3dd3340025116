package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// CacheMode controls how the router consults the route cache.
type CacheMode int

const (
	// CacheModeWriteOnly computes fresh routes and stores the winner.
	CacheModeWriteOnly CacheMode = iota
	// CacheModeReadVerify computes fresh routes, compares them to the cached
	// routes for divergence and serves the fresh result.
	CacheModeReadVerify
	// CacheModeTrustCache skips route discovery when a fresh enough entry exists.
	CacheModeTrustCache
)

func (m CacheMode) String() string {
	switch m {
	case CacheModeReadVerify:
		return "read-verify"
	case CacheModeTrustCache:
		return "trust-cache"
	default:
		return "write-only"
	}
}

// ParseCacheMode parses a cache mode name.
func ParseCacheMode(s string) (CacheMode, error) {
	switch strings.ToLower(s) {
	case "", "write-only":
		return CacheModeWriteOnly, nil
	case "read-verify":
		return CacheModeReadVerify, nil
	case "trust-cache":
		return CacheModeTrustCache, nil
	default:
		return 0, fmt.Errorf("invalid cache mode %q", s)
	}
}

// CachedRoute is the topology of one route. Amount splits are never cached.
type CachedRoute struct {
	Protocol      Protocol         `json:"protocol"`
	PoolAddresses []common.Address `json:"pools"`
	TokenPath     []common.Address `json:"tokenPath"`
	Fees          []FeeAmount      `json:"fees"`
	PoolProtocols []Protocol       `json:"poolProtocols"`
}

// CachedRoutes is a route cache entry.
type CachedRoutes struct {
	ChainID      ChainID        `json:"chainId"`
	TokenIn      common.Address `json:"tokenIn"`
	TokenOut     common.Address `json:"tokenOut"`
	TradeType    TradeType      `json:"tradeType"`
	Protocols    []Protocol     `json:"protocols"`
	AmountBucket int            `json:"amountBucket"`
	Routes       []CachedRoute  `json:"routes"`
	BlockNumber  uint64         `json:"blockNumber"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// ID returns the route identity of the cached topology.
func (c CachedRoute) ID() string {
	return RouteID(c.PoolAddresses)
}

// IsFresh returns true if the entry is younger than maxAge.
func (c *CachedRoutes) IsFresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(c.CreatedAt) <= maxAge
}

// RouteCacheKey is the identity of a route cache entry.
type RouteCacheKey struct {
	ChainID      ChainID
	TokenIn      common.Address
	TokenOut     common.Address
	TradeType    TradeType
	Protocols    []Protocol
	AmountBucket int
}

// String formats the key as chain|in|out|tradeType|protocols|bucket.
// Protocols are sorted so that the key is independent of their order.
func (k RouteCacheKey) String() string {
	protocols := make([]string, 0, len(k.Protocols))
	for _, p := range k.Protocols {
		protocols = append(protocols, p.String())
	}
	sort.Strings(protocols)

	return fmt.Sprintf("%d|%s|%s|%s|%s|%d",
		k.ChainID,
		strings.ToLower(k.TokenIn.Hex()),
		strings.ToLower(k.TokenOut.Hex()),
		k.TradeType,
		strings.Join(protocols, ","),
		k.AmountBucket,
	)
}

// RouteCacheConfig configures the route cache.
type RouteCacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string `mapstructure:"backend"`
	// Mode is the default cache mode.
	Mode string `mapstructure:"mode"`
	// ModeOverrides maps "tokenIn|tokenOut" (lowercase hex) to a mode.
	ModeOverrides map[string]string `mapstructure:"mode-overrides"`

	ExpirySeconds       int `mapstructure:"expiry-seconds"`
	MaxStalenessSeconds int `mapstructure:"max-staleness-seconds"`
}

// RouteID identifies a route topology by its ordered lowercase pool addresses.
func RouteID(poolAddresses []common.Address) string {
	ids := make([]string, len(poolAddresses))
	for i, address := range poolAddresses {
		ids[i] = strings.ToLower(address.Hex())
	}
	return strings.Join(ids, "-")
}
