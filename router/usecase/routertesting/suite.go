package routertesting

import (
	"context"
	"time"

	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/stretchr/testify/suite"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mocks"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
	routerusecase "github.com/baseswapfi/sor/router/usecase"
)

type RouterTestHelper struct {
	suite.Suite
}

var (
	DefaultPoolSelection = domain.ProtocolPoolSelection{
		TopN:                  10,
		TopNDirectSwaps:       2,
		TopNTokenInOut:        4,
		TopNSecondHop:         2,
		TopNWithEachBaseToken: 2,
		TopNWithBaseToken:     6,
	}

	DefaultRouterConfig = domain.RouterConfig{
		MaxSwapsPerPath:     3,
		MinSplits:           1,
		MaxSplits:           3,
		DistributionPercent: 25,
		SplitPreFilterSize:  5,
		MaxCandidateRoutes:  100,
		V2PoolSelection:     DefaultPoolSelection,
		V3PoolSelection:     DefaultPoolSelection,
	}

	DefaultGasPrice = domain.GasPrice{GasPriceWei: osmomath.NewInt(1_000_000)}

	DefaultBlockNumber = uint64(1_000)
)

// DefaultRoutingConfig returns the request config derived from DefaultRouterConfig.
func DefaultRoutingConfig() domain.RoutingConfig {
	config, err := DefaultRouterConfig.DefaultRoutingConfig()
	if err != nil {
		panic(err)
	}
	return config
}

// MockRouterState is the mocked world a router under test runs against.
type MockRouterState struct {
	V3Pools []domain.PoolI
	V2Pools []domain.PoolI

	// Quote answers every quote request of every protocol.
	Quote QuoteFunc
	// GasCost is charged in the quote token for every route.
	GasCost int64

	// QuoteProviders overrides the quote provider of a protocol.
	QuoteProviders map[domain.Protocol]mvc.QuoteProvider

	Tokens []domain.Token
}

// NewRouterDependencies wires mocks serving the state.
func (s *RouterTestHelper) NewRouterDependencies(state MockRouterState) routerusecase.RouterDependencies {
	candidates := map[domain.Protocol][]domain.CandidatePool{}
	for _, pool := range state.V3Pools {
		candidates[domain.ProtocolV3] = append(candidates[domain.ProtocolV3], CandidateFromPool(pool))
	}
	for _, pool := range state.V2Pools {
		candidates[domain.ProtocolV2] = append(candidates[domain.ProtocolV2], CandidateFromPool(pool))
	}

	tokens := state.Tokens
	if len(tokens) == 0 {
		tokens = []domain.Token{TokenA, TokenB, TokenC, TokenD, WETH, USDC}
	}

	gasModelFactory := mocks.WithGasModel(ConstantGasModel(state.GasCost))

	protocols := make(map[domain.Protocol]routerusecase.ProtocolProviders, len(domain.AllProtocols))
	for _, protocol := range domain.AllProtocols {
		quoteProvider, ok := state.QuoteProviders[protocol]
		if !ok {
			quoteProvider = NewQuoteProviderMock(state.Quote)
		}
		protocols[protocol] = routerusecase.ProtocolProviders{
			QuoteProvider:   quoteProvider,
			GasModelFactory: gasModelFactory,
		}
	}

	return routerusecase.RouterDependencies{
		CandidatePoolProvider: mocks.WithCandidatePools(candidates),
		TokenProvider:         mocks.WithTokens(tokens...),
		V3PoolProvider:        NewPoolProviderMock(domain.ProtocolV3, state.V3Pools...),
		V2PoolProvider:        NewPoolProviderMock(domain.ProtocolV2, state.V2Pools...),
		GasPriceProvider:      mocks.WithGasPrice(DefaultGasPrice),
		BlockNumberProvider:   mocks.WithBlockNumber(DefaultBlockNumber),
		Protocols:             protocols,
	}
}

// NewRouter returns a router on Base over the mocked state.
func (s *RouterTestHelper) NewRouter(state MockRouterState, opts ...routerusecase.RouterOption) mvc.RouterUsecase {
	return routerusecase.NewRouterUsecase(domain.ChainBase, DefaultRouterConfig, s.NewRouterDependencies(state), &log.NoOpLogger{}, opts...)
}

// NewMemoryRouteCache returns a route cache mock backed by a map, always in the given mode.
func NewMemoryRouteCache(mode domain.CacheMode) *MemoryRouteCache {
	return &MemoryRouteCache{mode: mode, entries: map[string]*domain.CachedRoutes{}}
}

// MemoryRouteCache records writes so that tests can inspect them.
type MemoryRouteCache struct {
	mode    domain.CacheMode
	entries map[string]*domain.CachedRoutes
	Writes  int
}

var _ mvc.RouteCachingProvider = &MemoryRouteCache{}

func (c *MemoryRouteCache) GetCacheMode(domain.ChainID, domain.CurrencyAmount, domain.Token, domain.TradeType, []domain.Protocol) domain.CacheMode {
	return c.mode
}

func (c *MemoryRouteCache) GetCachedRoute(ctx context.Context, key domain.RouteCacheKey) (*domain.CachedRoutes, bool, error) {
	entry, ok := c.entries[key.String()]
	return entry, ok, nil
}

func (c *MemoryRouteCache) SetCachedRoute(ctx context.Context, key domain.RouteCacheKey, cachedRoutes *domain.CachedRoutes) error {
	c.Writes++
	c.entries[key.String()] = cachedRoutes
	return nil
}

// Entries returns the number of stored keys.
func (c *MemoryRouteCache) Entries() int {
	return len(c.entries)
}

// FixedNow returns a clock frozen at t.
func FixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
