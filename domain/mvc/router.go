package mvc

import (
	"context"

	"github.com/baseswapfi/sor/domain"
)

// RouterUsecase finds the best swap plan for a trade.
type RouterUsecase interface {
	// Route returns the best plan to trade amount against quoteToken.
	// For exact-in trades amount is the input and quoteToken the output, and
	// vice versa for exact-out. Returns nil without an error when no route exists.
	Route(ctx context.Context, amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType, swapOptions *domain.SwapOptions, config *domain.RoutingConfig) (*domain.SwapRoute, error)

	// GetConfig returns the process level router configuration.
	GetConfig() domain.RouterConfig
}

// QuoteProvider fetches quotes for many (route, amount) pairs of one protocol.
// Results are aligned with the requested routes and amounts. Failed pairs carry a nil quote.
type QuoteProvider interface {
	GetQuotesManyExactIn(ctx context.Context, amountIns []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error)
	GetQuotesManyExactOut(ctx context.Context, amountOuts []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error)
}

// GasModelFactory builds the gas model of a protocol for a request.
type GasModelFactory interface {
	BuildGasModel(ctx context.Context, params domain.GasModelParams) (domain.GasModel, error)
}

// RouteCachingProvider stores winning route topologies.
type RouteCachingProvider interface {
	// GetCacheMode returns the mode to use for the given trade.
	GetCacheMode(chainID domain.ChainID, amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType, protocols []domain.Protocol) domain.CacheMode

	// GetCachedRoute returns the cached routes for the key, if present.
	GetCachedRoute(ctx context.Context, key domain.RouteCacheKey) (*domain.CachedRoutes, bool, error)

	// SetCachedRoute stores the entry. Writing the same entry twice is idempotent.
	SetCachedRoute(ctx context.Context, key domain.RouteCacheKey, cachedRoutes *domain.CachedRoutes) error
}
