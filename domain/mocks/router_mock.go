package mocks

import (
	"context"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
)

var (
	_ mvc.RouterUsecase        = &RouterUsecaseMock{}
	_ mvc.QuoteProvider        = &QuoteProviderMock{}
	_ mvc.GasModelFactory      = &GasModelFactoryMock{}
	_ mvc.RouteCachingProvider = &RouteCachingProviderMock{}
	_ domain.GasModel          = &GasModelMock{}
)

// RouterUsecaseMock is a mock implementation of the RouterUsecase interface
type RouterUsecaseMock struct {
	RouteFunc     func(ctx context.Context, amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType, swapOptions *domain.SwapOptions, config *domain.RoutingConfig) (*domain.SwapRoute, error)
	GetConfigFunc func() domain.RouterConfig
}

// Route implements mvc.RouterUsecase.
func (m *RouterUsecaseMock) Route(ctx context.Context, amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType, swapOptions *domain.SwapOptions, config *domain.RoutingConfig) (*domain.SwapRoute, error) {
	if m.RouteFunc != nil {
		return m.RouteFunc(ctx, amount, quoteToken, tradeType, swapOptions, config)
	}
	panic("unimplemented")
}

// GetConfig implements mvc.RouterUsecase.
func (m *RouterUsecaseMock) GetConfig() domain.RouterConfig {
	if m.GetConfigFunc != nil {
		return m.GetConfigFunc()
	}
	panic("unimplemented")
}

// QuoteProviderMock is a mock implementation of mvc.QuoteProvider.
type QuoteProviderMock struct {
	GetQuotesManyExactInFunc  func(ctx context.Context, amountIns []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error)
	GetQuotesManyExactOutFunc func(ctx context.Context, amountOuts []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error)
}

// GetQuotesManyExactIn implements mvc.QuoteProvider.
func (m *QuoteProviderMock) GetQuotesManyExactIn(ctx context.Context, amountIns []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error) {
	if m.GetQuotesManyExactInFunc != nil {
		return m.GetQuotesManyExactInFunc(ctx, amountIns, routes, blockNumber)
	}
	panic("unimplemented")
}

// GetQuotesManyExactOut implements mvc.QuoteProvider.
func (m *QuoteProviderMock) GetQuotesManyExactOut(ctx context.Context, amountOuts []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error) {
	if m.GetQuotesManyExactOutFunc != nil {
		return m.GetQuotesManyExactOutFunc(ctx, amountOuts, routes, blockNumber)
	}
	panic("unimplemented")
}

// GasModelFactoryMock is a mock implementation of mvc.GasModelFactory.
type GasModelFactoryMock struct {
	BuildGasModelFunc func(ctx context.Context, params domain.GasModelParams) (domain.GasModel, error)
}

// BuildGasModel implements mvc.GasModelFactory.
func (m *GasModelFactoryMock) BuildGasModel(ctx context.Context, params domain.GasModelParams) (domain.GasModel, error) {
	if m.BuildGasModelFunc != nil {
		return m.BuildGasModelFunc(ctx, params)
	}
	panic("unimplemented")
}

// WithGasModel returns a factory always building the given model.
func WithGasModel(gasModel domain.GasModel) *GasModelFactoryMock {
	return &GasModelFactoryMock{
		BuildGasModelFunc: func(ctx context.Context, params domain.GasModelParams) (domain.GasModel, error) {
			return gasModel, nil
		},
	}
}

// GasModelMock is a mock implementation of domain.GasModel.
type GasModelMock struct {
	EstimateGasCostFunc func(route *domain.RouteWithValidQuote) (domain.GasCost, error)
}

// EstimateGasCost implements domain.GasModel.
func (m *GasModelMock) EstimateGasCost(route *domain.RouteWithValidQuote) (domain.GasCost, error) {
	if m.EstimateGasCostFunc != nil {
		return m.EstimateGasCostFunc(route)
	}
	panic("unimplemented")
}

// RouteCachingProviderMock is a mock implementation of mvc.RouteCachingProvider.
type RouteCachingProviderMock struct {
	GetCacheModeFunc   func(chainID domain.ChainID, amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType, protocols []domain.Protocol) domain.CacheMode
	GetCachedRouteFunc func(ctx context.Context, key domain.RouteCacheKey) (*domain.CachedRoutes, bool, error)
	SetCachedRouteFunc func(ctx context.Context, key domain.RouteCacheKey, cachedRoutes *domain.CachedRoutes) error
}

// GetCacheMode implements mvc.RouteCachingProvider.
func (m *RouteCachingProviderMock) GetCacheMode(chainID domain.ChainID, amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType, protocols []domain.Protocol) domain.CacheMode {
	if m.GetCacheModeFunc != nil {
		return m.GetCacheModeFunc(chainID, amount, quoteToken, tradeType, protocols)
	}
	panic("unimplemented")
}

// GetCachedRoute implements mvc.RouteCachingProvider.
func (m *RouteCachingProviderMock) GetCachedRoute(ctx context.Context, key domain.RouteCacheKey) (*domain.CachedRoutes, bool, error) {
	if m.GetCachedRouteFunc != nil {
		return m.GetCachedRouteFunc(ctx, key)
	}
	panic("unimplemented")
}

// SetCachedRoute implements mvc.RouteCachingProvider.
func (m *RouteCachingProviderMock) SetCachedRoute(ctx context.Context, key domain.RouteCacheKey, cachedRoutes *domain.CachedRoutes) error {
	if m.SetCachedRouteFunc != nil {
		return m.SetCachedRouteFunc(ctx, key, cachedRoutes)
	}
	panic("unimplemented")
}
