package usecase

import (
	"time"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
)

// ProtocolProviders are the quoting collaborators of one protocol.
type ProtocolProviders struct {
	QuoteProvider   mvc.QuoteProvider
	GasModelFactory mvc.GasModelFactory
}

// RouterDependencies are the collaborators required by the router.
type RouterDependencies struct {
	CandidatePoolProvider mvc.CandidatePoolProvider
	TokenProvider         mvc.TokenProvider
	V3PoolProvider        mvc.PoolProvider
	V2PoolProvider        mvc.PoolProvider
	GasPriceProvider      mvc.GasPriceProvider
	BlockNumberProvider   mvc.BlockNumberProvider

	// Protocols lists the quotable protocols. A protocol without providers is disabled.
	Protocols map[domain.Protocol]ProtocolProviders
}

// RouterOption configures optional collaborators of the router.
type RouterOption func(*routerUseCaseImpl)

// WithRouteCache enables the route cache. Trusted entries older than maxStaleness are ignored.
func WithRouteCache(routeCache mvc.RouteCachingProvider, maxStaleness time.Duration) RouterOption {
	return func(r *routerUseCaseImpl) {
		r.routeCache = routeCache
		r.routeCacheMaxStaleness = maxStaleness
	}
}

// WithSimulator enables simulation of plans requested with a simulation address.
func WithSimulator(simulator mvc.Simulator) RouterOption {
	return func(r *routerUseCaseImpl) {
		r.simulator = simulator
	}
}

// WithSwapCalldataBuilder enables building method parameters for requests with a recipient.
func WithSwapCalldataBuilder(builder mvc.SwapCalldataBuilder) RouterOption {
	return func(r *routerUseCaseImpl) {
		r.calldataBuilder = builder
	}
}

// WithL1GasDataProvider enables L1 fee estimation on chains with L1 settlement fees.
func WithL1GasDataProvider(provider mvc.L1GasDataProvider) RouterOption {
	return func(r *routerUseCaseImpl) {
		r.l1GasDataProvider = provider
	}
}

// WithNowFn sets the clock used for route cache freshness.
func WithNowFn(nowFn func() time.Time) RouterOption {
	return func(r *routerUseCaseImpl) {
		r.nowFn = nowFn
	}
}

// NewRouterUsecase returns the router of the chain.
func NewRouterUsecase(chainID domain.ChainID, config domain.RouterConfig, deps RouterDependencies, logger log.Logger, opts ...RouterOption) mvc.RouterUsecase {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}

	r := &routerUseCaseImpl{
		chainID: chainID,
		config:  config,
		deps:    deps,
		logger:  logger,
		nowFn:   time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// GetConfig implements mvc.RouterUsecase.
func (r *routerUseCaseImpl) GetConfig() domain.RouterConfig {
	return r.config
}

// configuredProtocols returns the protocols with providers, in priority order.
func (r *routerUseCaseImpl) configuredProtocols() []domain.Protocol {
	protocols := make([]domain.Protocol, 0, len(domain.AllProtocols))
	for _, protocol := range domain.AllProtocols {
		if r.isConfigured(protocol) {
			protocols = append(protocols, protocol)
		}
	}
	return protocols
}

func (r *routerUseCaseImpl) isConfigured(protocol domain.Protocol) bool {
	providers, ok := r.deps.Protocols[protocol]
	if !ok || providers.QuoteProvider == nil || providers.GasModelFactory == nil {
		return false
	}

	switch protocol {
	case domain.ProtocolV3:
		return r.deps.V3PoolProvider != nil
	case domain.ProtocolV2:
		return r.deps.V2PoolProvider != nil
	default:
		return r.deps.V3PoolProvider != nil && r.deps.V2PoolProvider != nil
	}
}

func (r *routerUseCaseImpl) poolProvider(protocol domain.Protocol) mvc.PoolProvider {
	if protocol == domain.ProtocolV2 {
		return r.deps.V2PoolProvider
	}
	return r.deps.V3PoolProvider
}
