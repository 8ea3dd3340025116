package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/domain/slices"
	"github.com/baseswapfi/sor/log"
	poolsusecase "github.com/baseswapfi/sor/pools/usecase"
	"github.com/baseswapfi/sor/router/usecase/gasmodel"
	"github.com/baseswapfi/sor/router/usecase/route"
)

const (
	tracerName = "sor-router"

	defaultMaxCandidateRoutes = 100
)

var tracer = otel.Tracer(tracerName)

type routerUseCaseImpl struct {
	chainID domain.ChainID
	config  domain.RouterConfig
	deps    RouterDependencies
	logger  log.Logger
	nowFn   func() time.Time

	routeCache             mvc.RouteCachingProvider
	routeCacheMaxStaleness time.Duration
	simulator              mvc.Simulator
	calldataBuilder        mvc.SwapCalldataBuilder
	l1GasDataProvider      mvc.L1GasDataProvider

	// lastGasPrice is served when the gas price misses the routing deadline.
	lastGasPrice atomic.Pointer[domain.GasPrice]
}

var _ mvc.RouterUsecase = &routerUseCaseImpl{}

// routeRequest is a validated request with its quoting grid.
type routeRequest struct {
	amount     domain.CurrencyAmount
	quoteToken domain.Token
	tokenIn    domain.Token
	tokenOut   domain.Token
	tradeType  domain.TradeType
	config     domain.RoutingConfig
	protocols  []domain.Protocol

	// percents and amounts are aligned. Percents whose amount rounds to zero are skipped.
	percents []int
	amounts  []domain.CurrencyAmount
}

// chainState holds the request wide chain reads started ahead of quoting.
type chainState struct {
	gasPrice    *future[domain.GasPrice]
	blockNumber *future[uint64]
	l1GasData   *future[*domain.L1GasData]
}

// Route implements mvc.RouterUsecase.
func (r *routerUseCaseImpl) Route(ctx context.Context, amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType, swapOptions *domain.SwapOptions, config *domain.RoutingConfig) (*domain.SwapRoute, error) {
	ctx, span := tracer.Start(ctx, "routerUseCaseImpl.Route")
	defer span.End()

	req, err := r.newRouteRequest(amount, quoteToken, tradeType, config)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("token_in", req.tokenIn.Key()),
		attribute.String("token_out", req.tokenOut.Key()),
		attribute.String("trade_type", req.tradeType.String()),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fetchCtx := ctx
	if req.config.Timeout > 0 {
		var cancelFetch context.CancelFunc
		fetchCtx, cancelFetch = context.WithTimeout(ctx, req.config.Timeout)
		defer cancelFetch()
	}

	state := r.startChainState(fetchCtx, req.config.BlockNumber)

	cacheMode, cacheKey, cached := r.getCachedRoutes(ctx, req)

	var cachedPlan *future[[]*domain.RouteWithValidQuote]
	if cacheMode == domain.CacheModeReadVerify && cached != nil {
		cachedPlan = startFuture(ctx, func(ctx context.Context) ([]*domain.RouteWithValidQuote, error) {
			candidates, err := r.getCachedRouteCandidates(ctx, fetchCtx, req, state, cached)
			if err != nil {
				return nil, err
			}
			return getBestSwapRoute(req.amount, candidates, req.tradeType, req.config), nil
		})
	}

	var (
		plan      []*domain.RouteWithValidQuote
		fromCache bool
	)
	if cacheMode == domain.CacheModeTrustCache && cached != nil {
		candidates, err := r.getCachedRouteCandidates(ctx, fetchCtx, req, state, cached)
		if err != nil {
			r.logger.Debug("failed to quote cached routes, computing fresh routes", zap.String("key", cacheKey.String()), zap.Error(err))
		} else {
			plan = getBestSwapRoute(req.amount, candidates, req.tradeType, req.config)
			fromCache = plan != nil
		}
	}

	if plan == nil {
		candidates, err := r.getRouteCandidates(ctx, fetchCtx, req, state)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		plan = getBestSwapRoute(req.amount, candidates, req.tradeType, req.config)
		if plan == nil {
			r.logger.Debug("no route found", zap.Stringer("token_in", req.tokenIn), zap.Stringer("token_out", req.tokenOut))
			return nil, nil
		}
	}

	gasPrice, err := r.awaitGasPrice(fetchCtx, state)
	if err != nil {
		return nil, err
	}

	blockNumber, err := state.blockNumber.await(fetchCtx)
	if err != nil {
		r.logger.Debug("failed to fetch block number", zap.Error(err))
	}

	if cachedPlan != nil {
		r.verifyCachedRoutes(fetchCtx, cacheKey, cachedPlan, plan)
	}

	if r.routeCache != nil && !fromCache {
		entry := newCachedRoutes(cacheKey, plan, blockNumber, r.nowFn())
		if err := r.routeCache.SetCachedRoute(ctx, cacheKey, entry); err != nil {
			r.logger.Warn("failed to write route cache", zap.String("key", cacheKey.String()), zap.Error(err))
		}
	}

	swapRoute := buildSwapRoute(req, plan, gasPrice, blockNumber)

	if swapOptions != nil {
		r.finalizeSwapRoute(ctx, swapRoute, *swapOptions)
	}

	return swapRoute, nil
}

// newRouteRequest validates the request before any remote work.
func (r *routerUseCaseImpl) newRouteRequest(amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType, config *domain.RoutingConfig) (*routeRequest, error) {
	if !domain.IsSupportedChain(r.chainID) {
		return nil, domain.UnsupportedChainError{ChainID: r.chainID}
	}

	if tradeType != domain.TradeTypeExactInput && tradeType != domain.TradeTypeExactOutput {
		return nil, domain.InvalidTradeTypeError{TradeType: fmt.Sprintf("%d", tradeType)}
	}

	if !amount.IsPositive() {
		return nil, domain.InvalidAmountError{Amount: amount.String()}
	}

	for _, token := range []domain.Token{amount.Token, quoteToken} {
		if token.IsZero() {
			return nil, domain.InvalidTokenError{Address: token.Address.Hex()}
		}
		if token.ChainID != r.chainID {
			return nil, domain.ChainMismatchError{Expected: r.chainID, Actual: token.ChainID}
		}
	}

	if amount.Token.Equals(quoteToken) {
		return nil, domain.SameTokenError{Token: quoteToken}
	}

	var routingConfig domain.RoutingConfig
	if config != nil {
		routingConfig = *config
	} else {
		var err error
		routingConfig, err = r.config.DefaultRoutingConfig()
		if err != nil {
			return nil, err
		}
	}

	if err := routingConfig.Validate(); err != nil {
		return nil, err
	}

	protocols, err := r.requestProtocols(routingConfig.Protocols, tradeType)
	if err != nil {
		return nil, err
	}

	req := &routeRequest{
		amount:     amount,
		quoteToken: quoteToken,
		tokenIn:    amount.Token,
		tokenOut:   quoteToken,
		tradeType:  tradeType,
		config:     routingConfig,
		protocols:  protocols,
	}
	if tradeType == domain.TradeTypeExactOutput {
		req.tokenIn, req.tokenOut = quoteToken, amount.Token
	}

	for percent := routingConfig.DistributionPercent; percent <= fullPercent; percent += routingConfig.DistributionPercent {
		partial := amount.Percent(percent)
		if partial.IsZero() {
			continue
		}
		req.percents = append(req.percents, percent)
		req.amounts = append(req.amounts, partial)
	}

	return req, nil
}

// requestProtocols resolves the requested protocols against the configured ones.
// Mixed routes are quoted for exact input only.
func (r *routerUseCaseImpl) requestProtocols(requested []domain.Protocol, tradeType domain.TradeType) ([]domain.Protocol, error) {
	var protocols []domain.Protocol
	if len(requested) == 0 {
		protocols = r.configuredProtocols()
	} else {
		for _, protocol := range slices.Unique(requested) {
			if !r.isConfigured(protocol) {
				return nil, domain.InvalidProtocolError{Protocol: protocol.String()}
			}
			protocols = append(protocols, protocol)
		}
	}

	if tradeType == domain.TradeTypeExactOutput {
		filtered := make([]domain.Protocol, 0, len(protocols))
		for _, protocol := range protocols {
			if protocol != domain.ProtocolMixed {
				filtered = append(filtered, protocol)
			}
		}
		protocols = filtered
	}

	if len(protocols) == 0 {
		return nil, domain.InvalidRoutingConfigError{Reason: "no protocol is enabled for the trade"}
	}

	return protocols, nil
}

func (r *routerUseCaseImpl) startChainState(ctx context.Context, blockNumber *uint64) *chainState {
	state := &chainState{
		gasPrice: startFuture(ctx, r.deps.GasPriceProvider.GetGasPrice),
	}

	if blockNumber != nil {
		state.blockNumber = resolvedFuture(*blockNumber)
	} else {
		state.blockNumber = startFuture(ctx, r.deps.BlockNumberProvider.BlockNumber)
	}

	if r.l1GasDataProvider == nil || !domain.HasL1Fee(r.chainID) {
		state.l1GasData = resolvedFuture[*domain.L1GasData](nil)
		return state
	}

	state.l1GasData = startFuture(ctx, func(ctx context.Context) (*domain.L1GasData, error) {
		data, err := r.l1GasDataProvider.GetL1GasData(ctx)
		if err != nil {
			r.logger.Warn("failed to fetch L1 gas data, ignoring L1 fees", zap.Error(err))
			return nil, nil
		}
		return &data, nil
	})

	return state
}

// getCachedRoutes returns the cache mode of the request, its cache key and the cached entry if usable.
func (r *routerUseCaseImpl) getCachedRoutes(ctx context.Context, req *routeRequest) (domain.CacheMode, domain.RouteCacheKey, *domain.CachedRoutes) {
	key := domain.RouteCacheKey{
		ChainID:      r.chainID,
		TokenIn:      req.tokenIn.Address,
		TokenOut:     req.tokenOut.Address,
		TradeType:    req.tradeType,
		Protocols:    req.protocols,
		AmountBucket: domain.AmountBucket(req.amount),
	}

	if r.routeCache == nil {
		return domain.CacheModeWriteOnly, key, nil
	}

	mode := r.routeCache.GetCacheMode(r.chainID, req.amount, req.quoteToken, req.tradeType, req.protocols)
	if mode == domain.CacheModeWriteOnly {
		return mode, key, nil
	}

	cached, found, err := r.routeCache.GetCachedRoute(ctx, key)
	if err != nil {
		r.logger.Warn("failed to read route cache", zap.String("key", key.String()), zap.Error(err))
		found = false
	}

	if found && mode == domain.CacheModeTrustCache && r.routeCacheMaxStaleness > 0 && !cached.IsFresh(r.nowFn(), r.routeCacheMaxStaleness) {
		found = false
	}

	if !found || len(cached.Routes) == 0 {
		domain.RouteCacheMissesCounter.WithLabelValues(mode.String()).Inc()
		return mode, key, nil
	}

	domain.RouteCacheHitsCounter.WithLabelValues(mode.String()).Inc()
	return mode, key, cached
}

// getRouteCandidates discovers and quotes the routes of every requested protocol concurrently.
// Failed protocols are excluded from the request.
func (r *routerUseCaseImpl) getRouteCandidates(ctx, fetchCtx context.Context, req *routeRequest, state *chainState) ([]*routeCandidate, error) {
	results := make([][]*routeCandidate, len(req.protocols))
	errs := make([]error, len(req.protocols))

	var g errgroup.Group
	for i, protocol := range req.protocols {
		i, protocol := i, protocol
		g.Go(func() error {
			routes, err := r.discoverRoutes(fetchCtx, protocol, req)
			if err == nil {
				results[i], err = r.quoteRoutes(ctx, fetchCtx, protocol, routes, req, state)
			}
			errs[i] = err
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return r.joinProtocolResults(ctx, fetchCtx, req.protocols, results, errs)
}

// joinProtocolResults merges the candidates of the protocols that succeeded.
// When every protocol failed the request fails as unavailable, unless every
// failure is the routing deadline expiring, which means no route.
func (r *routerUseCaseImpl) joinProtocolResults(ctx, fetchCtx context.Context, protocols []domain.Protocol, results [][]*routeCandidate, errs []error) ([]*routeCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		candidates     []*routeCandidate
		failures       []error
		deadlineMisses int
	)
	for i, protocol := range protocols {
		if errs[i] == nil {
			candidates = append(candidates, results[i]...)
			continue
		}

		var fetchErr domain.ProtocolFetchError
		if !errors.As(errs[i], &fetchErr) {
			fetchErr = domain.ProtocolFetchError{Protocol: protocol, Err: errs[i]}
		}

		domain.ProtocolFetchErrorsCounter.WithLabelValues(protocol.String()).Inc()

		if isDeadlineMiss(fetchCtx, errs[i]) {
			deadlineMisses++
			r.logger.Warn("protocol missed the routing deadline", zap.Stringer("protocol", protocol), zap.Error(errs[i]))
		} else {
			r.logger.Warn("excluding protocol from request", zap.Stringer("protocol", protocol), zap.Error(errs[i]))
		}

		failures = append(failures, fetchErr)
	}

	if len(protocols) > 0 && len(failures) == len(protocols) {
		if deadlineMisses == len(failures) {
			return nil, nil
		}
		return nil, domain.UpstreamUnavailableError{Errors: failures}
	}

	return candidates, nil
}

// isDeadlineMiss reports whether err comes from the routing deadline rather than an upstream failure.
func isDeadlineMiss(fetchCtx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && errors.Is(fetchCtx.Err(), context.DeadlineExceeded)
}

// awaitGasPrice waits for the gas price of the request. When the routing deadline
// expires first, the last gas price seen is served instead.
func (r *routerUseCaseImpl) awaitGasPrice(fetchCtx context.Context, state *chainState) (domain.GasPrice, error) {
	gasPrice, err := state.gasPrice.await(fetchCtx)
	if err == nil {
		r.lastGasPrice.Store(&gasPrice)
		return gasPrice, nil
	}

	if last := r.lastGasPrice.Load(); last != nil && isDeadlineMiss(fetchCtx, err) {
		r.logger.Warn("gas price missed the routing deadline, using the last known price", zap.Error(err))
		return *last, nil
	}

	return domain.GasPrice{}, fmt.Errorf("fetching gas price: %w", err)
}

// poolProtocols returns the pool protocols a route protocol is built from.
func poolProtocols(protocol domain.Protocol) []domain.Protocol {
	if protocol == domain.ProtocolMixed {
		return []domain.Protocol{domain.ProtocolV3, domain.ProtocolV2}
	}
	return []domain.Protocol{protocol}
}

// discoverRoutes selects candidate pools, fetches their state and enumerates the routes of the protocol.
func (r *routerUseCaseImpl) discoverRoutes(ctx context.Context, protocol domain.Protocol, req *routeRequest) ([]domain.Route, error) {
	ctx, span := tracer.Start(ctx, "routerUseCaseImpl.discoverRoutes", trace.WithAttributes(attribute.String("protocol", protocol.String())))
	defer span.End()

	candidatePools, err := r.deps.CandidatePoolProvider.GetCandidatePools(ctx, protocol)
	if err != nil {
		return nil, domain.ProtocolFetchError{Protocol: protocol, Err: err}
	}

	baseTokens := domain.BaseTokens(r.chainID)
	baseAddresses := make([]common.Address, 0, len(baseTokens))
	for _, token := range baseTokens {
		baseAddresses = append(baseAddresses, token.Address)
	}

	grouped := poolsusecase.GroupCandidatePools(candidatePools)

	selected := make(map[domain.Protocol][]domain.CandidatePool)
	tokenAddresses := make([]common.Address, 0)
	seenTokens := map[common.Address]struct{}{
		req.tokenIn.Address:  {},
		req.tokenOut.Address: {},
	}
	for _, poolProtocol := range poolProtocols(protocol) {
		pools := selectCandidatePools(grouped[poolProtocol], req.tokenIn.Address, req.tokenOut.Address, baseAddresses, req.config.PoolSelection(poolProtocol))
		selected[poolProtocol] = pools

		for _, pool := range pools {
			for _, address := range []common.Address{pool.Token0, pool.Token1} {
				if _, ok := seenTokens[address]; ok {
					continue
				}
				seenTokens[address] = struct{}{}
				tokenAddresses = append(tokenAddresses, address)
			}
		}
	}

	tokens, err := r.deps.TokenProvider.GetTokens(ctx, tokenAddresses, req.config.BlockNumber)
	if err != nil {
		return nil, domain.ProtocolFetchError{Protocol: protocol, Err: fmt.Errorf("fetching tokens: %w", err)}
	}

	resolve := func(address common.Address) (domain.Token, bool) {
		switch address {
		case req.tokenIn.Address:
			return req.tokenIn, true
		case req.tokenOut.Address:
			return req.tokenOut, true
		default:
			return tokens.GetTokenByAddress(address)
		}
	}

	var pools []domain.PoolI
	for _, poolProtocol := range poolProtocols(protocol) {
		pairs := make([]domain.TokenPair, 0, len(selected[poolProtocol]))
		for _, candidate := range selected[poolProtocol] {
			tokenA, okA := resolve(candidate.Token0)
			tokenB, okB := resolve(candidate.Token1)
			if !okA || !okB {
				continue
			}
			pairs = append(pairs, domain.TokenPair{TokenA: tokenA, TokenB: tokenB, Fee: candidate.Fee})
		}

		if len(pairs) == 0 {
			continue
		}

		accessor, err := r.poolProvider(poolProtocol).GetPools(ctx, pairs, req.config.BlockNumber)
		if err != nil {
			return nil, domain.ProtocolFetchError{Protocol: protocol, Err: fmt.Errorf("fetching %s pools: %w", poolProtocol, err)}
		}
		pools = append(pools, accessor.GetAllPools()...)
	}

	sortPools(pools)

	maxRoutes := req.config.MaxCandidateRoutes
	if maxRoutes <= 0 {
		maxRoutes = defaultMaxCandidateRoutes
	}

	routes := computeAllRoutes(pools, req.tokenIn, req.tokenOut, req.config.MaxSwapsPerPath, maxRoutes, protocol, r.logger)

	span.SetAttributes(attribute.Int("pools", len(pools)), attribute.Int("routes", len(routes)))

	return routes, nil
}

// sortPools orders pools by protocol priority, then by liquidity descending, then by address.
func sortPools(pools []domain.PoolI) {
	sort.SliceStable(pools, func(i, j int) bool {
		a, b := pools[i], pools[j]
		if a.GetProtocol() != b.GetProtocol() {
			return a.GetProtocol().Priority() < b.GetProtocol().Priority()
		}
		if aLiquidity, bLiquidity := a.GetLiquidity(), b.GetLiquidity(); !aLiquidity.Equal(bLiquidity) {
			return aLiquidity.GT(bLiquidity)
		}
		return a.GetAddress().Cmp(b.GetAddress()) < 0
	})
}

// quoteRoutes quotes every route at every percent of the grid and applies the protocol gas model.
// Quotes completed before the fetch deadline are kept.
func (r *routerUseCaseImpl) quoteRoutes(ctx, fetchCtx context.Context, protocol domain.Protocol, routes []domain.Route, req *routeRequest, state *chainState) ([]*routeCandidate, error) {
	if len(routes) == 0 {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "routerUseCaseImpl.quoteRoutes", trace.WithAttributes(attribute.String("protocol", protocol.String())))
	defer span.End()

	providers := r.deps.Protocols[protocol]

	var (
		results []domain.RouteWithQuotes
		err     error
	)
	if req.tradeType == domain.TradeTypeExactInput {
		results, err = providers.QuoteProvider.GetQuotesManyExactIn(fetchCtx, req.amounts, routes, req.config.BlockNumber)
	} else {
		results, err = providers.QuoteProvider.GetQuotesManyExactOut(fetchCtx, req.amounts, routes, req.config.BlockNumber)
	}
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil || len(results) == 0 {
			return nil, domain.ProtocolFetchError{Protocol: protocol, Err: err}
		}
		r.logger.Warn("quote deadline exceeded, using completed quotes", zap.Stringer("protocol", protocol), zap.Error(err))
	}

	gasPrice, err := r.awaitGasPrice(fetchCtx, state)
	if err != nil {
		return nil, err
	}

	l1GasData, err := state.l1GasData.await(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("fetching L1 gas data: %w", err)
	}

	gasModel, err := providers.GasModelFactory.BuildGasModel(fetchCtx, domain.GasModelParams{
		ChainID:     r.chainID,
		GasPriceWei: gasPrice.GasPriceWei,
		QuoteToken:  req.quoteToken,
		BlockNumber: req.config.BlockNumber,
		L1GasData:   l1GasData,
	})
	if err != nil {
		return nil, fmt.Errorf("building %s gas model: %w", protocol, err)
	}

	candidates := make([]*routeCandidate, 0, len(results))
	for _, result := range results {
		candidate := newRouteCandidate(result.Route)
		for i, quote := range result.Quotes {
			if i >= len(req.percents) || !quote.HasQuote() {
				continue
			}

			routeWithQuote := &domain.RouteWithValidQuote{
				Route:                       result.Route,
				Protocol:                    result.Route.GetProtocol(),
				TradeType:                   req.tradeType,
				Percent:                     req.percents[i],
				Amount:                      req.amounts[i],
				RawQuote:                    domain.NewCurrencyAmount(req.quoteToken, quote.Quote),
				SqrtPriceX96AfterList:       quote.SqrtPriceX96AfterList,
				InitializedTicksCrossedList: quote.InitializedTicksCrossedList,
				QuoterGasEstimate:           quote.GasEstimate,
			}

			if err := gasmodel.ApplyGasModel(routeWithQuote, gasModel); err != nil {
				r.logger.Debug("dropping quote without gas estimate", zap.String("route", result.Route.ID()), zap.Error(err))
				continue
			}

			candidate.quotes[req.percents[i]] = routeWithQuote
		}

		if len(candidate.quotes) > 0 {
			candidates = append(candidates, candidate)
		}
	}

	span.SetAttributes(attribute.Int("quoted_routes", len(candidates)))

	return candidates, nil
}

// getCachedRouteCandidates requotes the cached topologies instead of discovering routes.
func (r *routerUseCaseImpl) getCachedRouteCandidates(ctx, fetchCtx context.Context, req *routeRequest, state *chainState, cached *domain.CachedRoutes) ([]*routeCandidate, error) {
	routesByProtocol, err := r.rebuildCachedRoutes(fetchCtx, req, cached)
	if err != nil {
		return nil, err
	}

	protocols := make([]domain.Protocol, 0, len(routesByProtocol))
	for _, protocol := range req.protocols {
		if len(routesByProtocol[protocol]) > 0 {
			protocols = append(protocols, protocol)
		}
	}
	if len(protocols) == 0 {
		return nil, errors.New("no cached route matches the requested protocols")
	}

	results := make([][]*routeCandidate, len(protocols))
	errs := make([]error, len(protocols))

	var g errgroup.Group
	for i, protocol := range protocols {
		i, protocol := i, protocol
		g.Go(func() error {
			results[i], errs[i] = r.quoteRoutes(ctx, fetchCtx, protocol, routesByProtocol[protocol], req, state)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return r.joinProtocolResults(ctx, fetchCtx, protocols, results, errs)
}

// rebuildCachedRoutes fetches the current state of the cached pools and rebuilds their routes.
// Any cached pool that cannot be found fails the rebuild.
func (r *routerUseCaseImpl) rebuildCachedRoutes(ctx context.Context, req *routeRequest, cached *domain.CachedRoutes) (map[domain.Protocol][]domain.Route, error) {
	var tokenAddresses []common.Address
	for _, cachedRoute := range cached.Routes {
		hops := len(cachedRoute.PoolAddresses)
		if hops == 0 || len(cachedRoute.TokenPath) != hops+1 || len(cachedRoute.Fees) != hops || len(cachedRoute.PoolProtocols) != hops {
			return nil, fmt.Errorf("malformed cached route %s", cachedRoute.ID())
		}
		tokenAddresses = append(tokenAddresses, cachedRoute.TokenPath...)
	}

	tokens, err := r.deps.TokenProvider.GetTokens(ctx, slices.Unique(tokenAddresses), req.config.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("fetching tokens: %w", err)
	}

	paths := make([][]domain.Token, len(cached.Routes))
	pairs := make(map[domain.Protocol][]domain.TokenPair)
	for i, cachedRoute := range cached.Routes {
		path := make([]domain.Token, len(cachedRoute.TokenPath))
		for j, address := range cachedRoute.TokenPath {
			token, ok := tokens.GetTokenByAddress(address)
			if !ok {
				return nil, domain.InvalidTokenError{Address: address.Hex()}
			}
			path[j] = token
		}
		paths[i] = path

		for j, poolProtocol := range cachedRoute.PoolProtocols {
			pairs[poolProtocol] = append(pairs[poolProtocol], domain.TokenPair{TokenA: path[j], TokenB: path[j+1], Fee: cachedRoute.Fees[j]})
		}
	}

	accessors := make(map[domain.Protocol]domain.PoolAccessor, len(pairs))
	for poolProtocol, protocolPairs := range pairs {
		provider := r.poolProvider(poolProtocol)
		if provider == nil {
			return nil, domain.InvalidProtocolError{Protocol: poolProtocol.String()}
		}

		accessor, err := provider.GetPools(ctx, protocolPairs, req.config.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("fetching %s pools: %w", poolProtocol, err)
		}
		accessors[poolProtocol] = accessor
	}

	routesByProtocol := make(map[domain.Protocol][]domain.Route)
	for i, cachedRoute := range cached.Routes {
		pools := make([]domain.PoolI, len(cachedRoute.PoolAddresses))
		for j, address := range cachedRoute.PoolAddresses {
			pool, ok := accessors[cachedRoute.PoolProtocols[j]].GetPoolByAddress(address)
			if !ok {
				return nil, domain.PoolNotFoundError{Address: address.Hex()}
			}
			pools[j] = pool
		}

		rebuilt, err := route.New(pools, req.tokenIn, req.tokenOut)
		if err != nil {
			return nil, err
		}
		if rebuilt.GetProtocol() != cachedRoute.Protocol || !sameTokenPath(rebuilt.GetTokenPath(), paths[i]) {
			return nil, fmt.Errorf("cached route %s no longer matches its topology", cachedRoute.ID())
		}

		routesByProtocol[cachedRoute.Protocol] = append(routesByProtocol[cachedRoute.Protocol], rebuilt)
	}

	return routesByProtocol, nil
}

// verifyCachedRoutes compares the requoted cached plan with the fresh plan. A divergence
// in topology or in gas adjusted quote is logged and counted.
func (r *routerUseCaseImpl) verifyCachedRoutes(fetchCtx context.Context, key domain.RouteCacheKey, cachedPlan *future[[]*domain.RouteWithValidQuote], plan []*domain.RouteWithValidQuote) {
	requoted, err := cachedPlan.await(fetchCtx)
	if err != nil || requoted == nil {
		domain.RouteCacheDivergenceCounter.Inc()
		r.logger.Info("cached routes could not be requoted", zap.String("key", key.String()), zap.Error(err))
		return
	}

	cachedIDs, freshIDs := sortedPlanRouteIDs(requoted), sortedPlanRouteIDs(plan)
	cachedQuote, freshQuote := gasAdjustedQuote(requoted), gasAdjustedQuote(plan)

	if equalStrings(cachedIDs, freshIDs) && cachedQuote.Equal(freshQuote) {
		return
	}

	domain.RouteCacheDivergenceCounter.Inc()
	r.logger.Info("cached routes diverged from fresh routes",
		zap.String("key", key.String()),
		zap.Strings("cached", cachedIDs),
		zap.Strings("fresh", freshIDs),
		zap.Stringer("cached_quote_gas_adjusted", cachedQuote),
		zap.Stringer("fresh_quote_gas_adjusted", freshQuote),
	)
}

func sortedPlanRouteIDs(plan []*domain.RouteWithValidQuote) []string {
	ids := make([]string, 0, len(plan))
	for _, routeWithQuote := range plan {
		ids = append(ids, routeWithQuote.Route.ID())
	}
	sort.Strings(ids)
	return ids
}

func gasAdjustedQuote(plan []*domain.RouteWithValidQuote) osmomath.Int {
	total := osmomath.ZeroInt()
	for _, routeWithQuote := range plan {
		total = total.Add(routeWithQuote.QuoteAdjustedForGas.Amount)
	}
	return total
}

func sameTokenPath(a, b []domain.Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// newCachedRoutes converts the plan topologies into a cache entry.
func newCachedRoutes(key domain.RouteCacheKey, plan []*domain.RouteWithValidQuote, blockNumber uint64, now time.Time) *domain.CachedRoutes {
	routes := make([]domain.CachedRoute, 0, len(plan))
	for _, routeWithQuote := range plan {
		pools := routeWithQuote.Route.GetPools()

		cachedRoute := domain.CachedRoute{
			Protocol:      routeWithQuote.Route.GetProtocol(),
			PoolAddresses: routeWithQuote.Route.GetPoolAddresses(),
			TokenPath:     make([]common.Address, 0, len(pools)+1),
			Fees:          make([]domain.FeeAmount, 0, len(pools)),
			PoolProtocols: make([]domain.Protocol, 0, len(pools)),
		}
		for _, token := range routeWithQuote.Route.GetTokenPath() {
			cachedRoute.TokenPath = append(cachedRoute.TokenPath, token.Address)
		}
		for _, pool := range pools {
			cachedRoute.Fees = append(cachedRoute.Fees, pool.GetFee())
			cachedRoute.PoolProtocols = append(cachedRoute.PoolProtocols, pool.GetProtocol())
		}

		routes = append(routes, cachedRoute)
	}

	sort.Slice(routes, func(i, j int) bool {
		return routes[i].ID() < routes[j].ID()
	})

	return &domain.CachedRoutes{
		ChainID:      key.ChainID,
		TokenIn:      key.TokenIn,
		TokenOut:     key.TokenOut,
		TradeType:    key.TradeType,
		Protocols:    key.Protocols,
		AmountBucket: key.AmountBucket,
		Routes:       routes,
		BlockNumber:  blockNumber,
		CreatedAt:    now,
	}
}

// buildSwapRoute aggregates the plan quotes and gas costs.
func buildSwapRoute(req *routeRequest, plan []*domain.RouteWithValidQuote, gasPrice domain.GasPrice, blockNumber uint64) *domain.SwapRoute {
	swapRoute := &domain.SwapRoute{
		TradeType:                  req.tradeType,
		Amount:                     req.amount,
		Quote:                      domain.ZeroAmount(req.quoteToken),
		QuoteGasAdjusted:           domain.ZeroAmount(req.quoteToken),
		EstimatedGasUsed:           osmomath.ZeroInt(),
		EstimatedGasUsedQuoteToken: domain.ZeroAmount(req.quoteToken),
		EstimatedGasUsedUSD:        domain.ZeroAmount(plan[0].GasCostInUSD.Token),
		GasPriceWei:                gasPrice.GasPriceWei,
		Routes:                     plan,
		BlockNumber:                blockNumber,
	}

	for _, routeWithQuote := range plan {
		swapRoute.Quote = swapRoute.Quote.Add(routeWithQuote.RawQuote)
		swapRoute.QuoteGasAdjusted = swapRoute.QuoteGasAdjusted.Add(routeWithQuote.QuoteAdjustedForGas)
		swapRoute.EstimatedGasUsed = swapRoute.EstimatedGasUsed.Add(routeWithQuote.GasEstimate)
		swapRoute.EstimatedGasUsedQuoteToken = swapRoute.EstimatedGasUsedQuoteToken.Add(routeWithQuote.GasCostInToken)
		if routeWithQuote.GasCostInUSD.Token.Equals(swapRoute.EstimatedGasUsedUSD.Token) {
			swapRoute.EstimatedGasUsedUSD = swapRoute.EstimatedGasUsedUSD.Add(routeWithQuote.GasCostInUSD)
		}
	}

	return swapRoute
}

// finalizeSwapRoute builds the method parameters and simulates the plan when requested.
// Failures degrade the response instead of failing it.
func (r *routerUseCaseImpl) finalizeSwapRoute(ctx context.Context, swapRoute *domain.SwapRoute, swapOptions domain.SwapOptions) {
	if r.calldataBuilder != nil && swapOptions.Recipient != (common.Address{}) {
		methodParameters, err := r.calldataBuilder.BuildMethodParameters(swapRoute, swapOptions)
		if err != nil {
			r.logger.Warn("failed to build method parameters", zap.Error(err))
		} else {
			swapRoute.MethodParameters = methodParameters
		}
	}

	if r.simulator == nil || swapOptions.SimulateFromAddress == nil {
		return
	}

	ctx, span := tracer.Start(ctx, "routerUseCaseImpl.simulate")
	defer span.End()

	status, err := r.simulator.Simulate(ctx, *swapOptions.SimulateFromAddress, swapOptions, swapRoute)
	if err != nil {
		r.logger.Warn("failed to simulate swap route", zap.String("simulator", r.simulator.Name()), zap.Error(err))
		status = domain.SimulationStatusNotSupported
	}

	swapRoute.SimulationStatus = status
	domain.SimulationStatusCounter.WithLabelValues(status.String()).Inc()
}
