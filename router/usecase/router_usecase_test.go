package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mocks"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
	"github.com/baseswapfi/sor/router/usecase"
	"github.com/baseswapfi/sor/router/usecase/routertesting"
)

var (
	directRoute = routertesting.MustNewRoute(tokenA, tokenB, poolAB)
	twoHopRoute = routertesting.MustNewRoute(tokenA, tokenB, poolAC, poolCB)
	v2Route     = routertesting.MustNewRoute(tokenA, tokenB, pairAB)

	errUpstream = errors.New("upstream is down")
)

// defaultState prices the direct V3 route best, then the two hop route, then the V2 pair.
func defaultState() routertesting.MockRouterState {
	return routertesting.MockRouterState{
		V3Pools: []domain.PoolI{poolAB, poolAC, poolCB},
		V2Pools: []domain.PoolI{pairAB},
		Quote: routertesting.ByRouteID(map[string]func(osmomath.Int) osmomath.Int{
			directRoute.ID(): routertesting.LinearQuote(1, 1),
			twoHopRoute.ID(): routertesting.LinearQuote(9, 10),
			v2Route.ID():     routertesting.LinearQuote(1, 2),
		}),
		GasCost: 1,
	}
}

func failingQuoteProvider(err error) *mocks.QuoteProviderMock {
	getQuotes := func(ctx context.Context, amounts []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error) {
		return nil, err
	}
	return &mocks.QuoteProviderMock{
		GetQuotesManyExactInFunc:  getQuotes,
		GetQuotesManyExactOutFunc: getQuotes,
	}
}

func (s *RouterTestSuite) TestRoute_ExactInput() {
	router := s.NewRouter(defaultState())

	amount := routertesting.Amount(tokenA, 1000)
	swapRoute, err := router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, nil)
	s.Require().NoError(err)
	s.Require().NotNil(swapRoute)

	s.Require().Len(swapRoute.Routes, 1)
	s.Require().Equal(directRoute.ID(), swapRoute.Routes[0].Route.ID())
	s.Require().Equal(100, swapRoute.Routes[0].Percent)
	s.Require().Equal(amount, swapRoute.Routes[0].Amount)

	s.Require().Equal(domain.TradeTypeExactInput, swapRoute.TradeType)
	s.Require().Equal(routertesting.Amount(tokenB, 1000), swapRoute.Quote)
	s.Require().Equal(routertesting.Amount(tokenB, 999), swapRoute.QuoteGasAdjusted)
	s.Require().Equal(osmomath.NewInt(100_000), swapRoute.EstimatedGasUsed)
	s.Require().Equal(routertesting.Amount(tokenB, 1), swapRoute.EstimatedGasUsedQuoteToken)
	s.Require().Equal(routertesting.Amount(routertesting.USDC, 1), swapRoute.EstimatedGasUsedUSD)
	s.Require().Equal(routertesting.DefaultGasPrice.GasPriceWei, swapRoute.GasPriceWei)
	s.Require().Equal(routertesting.DefaultBlockNumber, swapRoute.BlockNumber)
	s.Require().Equal(domain.SimulationStatusNotSupported, swapRoute.SimulationStatus)
	s.Require().Nil(swapRoute.MethodParameters)
}

func (s *RouterTestSuite) TestRoute_ExactOutput() {
	state := defaultState()
	state.Quote = routertesting.ByRouteID(map[string]func(osmomath.Int) osmomath.Int{
		directRoute.ID(): routertesting.LinearQuote(1, 1),
		twoHopRoute.ID(): routertesting.LinearQuote(11, 10),
		v2Route.ID():     routertesting.LinearQuote(2, 1),
	})

	var mixedCalls atomic.Int32
	mixed := routertesting.NewQuoteProviderMock(state.Quote)
	mixed.GetQuotesManyExactOutFunc = func(ctx context.Context, amounts []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error) {
		mixedCalls.Add(1)
		return nil, errUpstream
	}
	state.QuoteProviders = map[domain.Protocol]mvc.QuoteProvider{domain.ProtocolMixed: mixed}

	router := s.NewRouter(state)

	// Exact output: 1000 B out, quoted in A.
	amount := routertesting.Amount(tokenB, 1000)
	swapRoute, err := router.Route(context.Background(), amount, tokenA, domain.TradeTypeExactOutput, nil, nil)
	s.Require().NoError(err)
	s.Require().NotNil(swapRoute)

	s.Require().Len(swapRoute.Routes, 1)
	s.Require().Equal(directRoute.ID(), swapRoute.Routes[0].Route.ID())
	s.Require().Equal(amount, swapRoute.Routes[0].Amount)
	s.Require().Equal(routertesting.Amount(tokenA, 1000), swapRoute.Quote)
	s.Require().Equal(routertesting.Amount(tokenA, 1001), swapRoute.QuoteGasAdjusted)

	s.Require().Zero(mixedCalls.Load())
}

func (s *RouterTestSuite) TestRoute_Splits() {
	state := defaultState()
	state.Quote = routertesting.ByRouteID(map[string]func(osmomath.Int) osmomath.Int{
		directRoute.ID(): routertesting.ConcaveQuote(1000),
		twoHopRoute.ID(): routertesting.ConcaveQuote(1000),
	})

	router := s.NewRouter(state)

	amount := routertesting.Amount(tokenA, 1000)
	swapRoute, err := router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, nil)
	s.Require().NoError(err)

	s.Require().Len(swapRoute.Routes, 2)
	s.Require().ElementsMatch([]string{directRoute.ID(), twoHopRoute.ID()}, planIDs(swapRoute.Routes))
	s.Require().Equal(amount.Amount, planAllocated(swapRoute.Routes))

	total := osmomath.ZeroInt()
	for _, r := range swapRoute.Routes {
		total = total.Add(r.RawQuote.Amount)
	}
	s.Require().Equal(total, swapRoute.Quote.Amount)
	s.Require().Equal(osmomath.NewInt(200_000), swapRoute.EstimatedGasUsed)
}

func (s *RouterTestSuite) TestRoute_ProtocolFailures() {
	s.Run("failed protocol is excluded", func() {
		state := defaultState()
		state.QuoteProviders = map[domain.Protocol]mvc.QuoteProvider{
			domain.ProtocolV3: failingQuoteProvider(errUpstream),
		}

		before := testutil.ToFloat64(domain.ProtocolFetchErrorsCounter.WithLabelValues(domain.ProtocolV3.String()))

		swapRoute, err := s.NewRouter(state).Route(context.Background(), routertesting.Amount(tokenA, 1000), tokenB, domain.TradeTypeExactInput, nil, nil)
		s.Require().NoError(err)
		s.Require().Equal([]string{v2Route.ID()}, planIDs(swapRoute.Routes))

		after := testutil.ToFloat64(domain.ProtocolFetchErrorsCounter.WithLabelValues(domain.ProtocolV3.String()))
		s.Require().Equal(before+1, after)
	})

	s.Run("every protocol failed", func() {
		deps := s.NewRouterDependencies(defaultState())
		deps.CandidatePoolProvider = &mocks.CandidatePoolProviderMock{
			GetCandidatePoolsFunc: func(ctx context.Context, protocol domain.Protocol) ([]domain.CandidatePool, error) {
				return nil, errUpstream
			},
		}
		router := usecase.NewRouterUsecase(domain.ChainBase, routertesting.DefaultRouterConfig, deps, &log.NoOpLogger{})

		swapRoute, err := router.Route(context.Background(), routertesting.Amount(tokenA, 1000), tokenB, domain.TradeTypeExactInput, nil, nil)
		s.Require().Nil(swapRoute)

		var upstreamErr domain.UpstreamUnavailableError
		s.Require().ErrorAs(err, &upstreamErr)
		s.Require().Len(upstreamErr.Errors, 3)
		s.Require().ErrorIs(err, errUpstream)
		s.Require().Equal(http.StatusServiceUnavailable, domain.GetStatusCode(err))
	})
}

func (s *RouterTestSuite) TestRoute_NoRoute() {
	router := s.NewRouter(defaultState())

	swapRoute, err := router.Route(context.Background(), routertesting.Amount(tokenA, 1000), tokenD, domain.TradeTypeExactInput, nil, nil)
	s.Require().NoError(err)
	s.Require().Nil(swapRoute)
}

func (s *RouterTestSuite) TestRoute_InvalidInput() {
	scrollToken := domain.NewToken(domain.ChainScroll, "0x000000000000000000000000000000000000000e", 18, "EEE", "Token E")

	invalidDistribution := routertesting.DefaultRoutingConfig()
	invalidDistribution.DistributionPercent = 30

	unknownProtocol := routertesting.DefaultRoutingConfig()
	unknownProtocol.Protocols = []domain.Protocol{domain.Protocol(7)}

	tests := map[string]struct {
		amount     domain.CurrencyAmount
		quoteToken domain.Token
		tradeType  domain.TradeType
		config     *domain.RoutingConfig

		expectedErr error
	}{
		"zero amount": {
			amount:      routertesting.Amount(tokenA, 0),
			quoteToken:  tokenB,
			expectedErr: domain.InvalidAmountError{},
		},
		"same token": {
			amount:      routertesting.Amount(tokenA, 10),
			quoteToken:  tokenA,
			expectedErr: domain.SameTokenError{},
		},
		"token of another chain": {
			amount:      routertesting.Amount(tokenA, 10),
			quoteToken:  scrollToken,
			expectedErr: domain.ChainMismatchError{},
		},
		"zero address token": {
			amount:      routertesting.Amount(tokenA, 10),
			quoteToken:  domain.Token{ChainID: domain.ChainBase},
			expectedErr: domain.InvalidTokenError{},
		},
		"invalid trade type": {
			amount:      routertesting.Amount(tokenA, 10),
			quoteToken:  tokenB,
			tradeType:   domain.TradeType(5),
			expectedErr: domain.InvalidTradeTypeError{},
		},
		"distribution percent does not divide 100": {
			amount:      routertesting.Amount(tokenA, 10),
			quoteToken:  tokenB,
			config:      &invalidDistribution,
			expectedErr: domain.InvalidRoutingConfigError{},
		},
		"unknown protocol": {
			amount:      routertesting.Amount(tokenA, 10),
			quoteToken:  tokenB,
			config:      &unknownProtocol,
			expectedErr: domain.InvalidProtocolError{},
		},
	}

	for name, tc := range tests {
		s.Run(name, func() {
			var candidateCalls atomic.Int32
			deps := s.NewRouterDependencies(defaultState())
			deps.CandidatePoolProvider = &mocks.CandidatePoolProviderMock{
				GetCandidatePoolsFunc: func(ctx context.Context, protocol domain.Protocol) ([]domain.CandidatePool, error) {
					candidateCalls.Add(1)
					return nil, nil
				},
			}
			router := usecase.NewRouterUsecase(domain.ChainBase, routertesting.DefaultRouterConfig, deps, &log.NoOpLogger{})

			swapRoute, err := router.Route(context.Background(), tc.amount, tc.quoteToken, tc.tradeType, nil, tc.config)
			s.Require().Nil(swapRoute)
			s.Require().Error(err)
			s.Require().IsType(tc.expectedErr, err)
			s.Require().True(domain.IsInvalidInput(err))
			s.Require().Equal(http.StatusBadRequest, domain.GetStatusCode(err))

			s.Require().Zero(candidateCalls.Load())
		})
	}
}

func (s *RouterTestSuite) TestRoute_UnsupportedChain() {
	router := usecase.NewRouterUsecase(domain.ChainID(1), routertesting.DefaultRouterConfig, s.NewRouterDependencies(defaultState()), &log.NoOpLogger{})

	_, err := router.Route(context.Background(), routertesting.Amount(tokenA, 10), tokenB, domain.TradeTypeExactInput, nil, nil)
	s.Require().ErrorAs(err, &domain.UnsupportedChainError{})
}

func (s *RouterTestSuite) TestRoute_ProtocolSubset() {
	config := routertesting.DefaultRoutingConfig()
	config.Protocols = []domain.Protocol{domain.ProtocolV2}

	swapRoute, err := s.NewRouter(defaultState()).Route(context.Background(), routertesting.Amount(tokenA, 1000), tokenB, domain.TradeTypeExactInput, nil, &config)
	s.Require().NoError(err)
	s.Require().Equal([]string{v2Route.ID()}, planIDs(swapRoute.Routes))
}

func (s *RouterTestSuite) TestRoute_Deadline() {
	blocking := func(partial bool) *mocks.QuoteProviderMock {
		getQuotes := func(ctx context.Context, amounts []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error) {
			<-ctx.Done()
			if !partial {
				return nil, ctx.Err()
			}

			// Only the full amount of the first route completed.
			results := make([]domain.RouteWithQuotes, len(routes))
			for i, r := range routes {
				results[i] = domain.RouteWithQuotes{Route: r, Quotes: make([]domain.AmountQuote, len(amounts))}
			}
			results[0].Quotes[len(amounts)-1] = domain.AmountQuote{
				Amount:      amounts[len(amounts)-1],
				Quote:       amounts[len(amounts)-1].Amount,
				GasEstimate: osmomath.NewInt(100_000),
			}
			return results, ctx.Err()
		}
		return &mocks.QuoteProviderMock{GetQuotesManyExactInFunc: getQuotes, GetQuotesManyExactOutFunc: getQuotes}
	}

	config := routertesting.DefaultRoutingConfig()
	config.Timeout = 50 * time.Millisecond

	s.Run("timed out protocol is excluded", func() {
		state := defaultState()
		state.QuoteProviders = map[domain.Protocol]mvc.QuoteProvider{domain.ProtocolV3: blocking(false)}

		start := time.Now()
		swapRoute, err := s.NewRouter(state).Route(context.Background(), routertesting.Amount(tokenA, 1000), tokenB, domain.TradeTypeExactInput, nil, &config)
		s.Require().NoError(err)
		s.Require().Less(time.Since(start), 5*time.Second)
		s.Require().Equal([]string{v2Route.ID()}, planIDs(swapRoute.Routes))
	})

	s.Run("completed quotes are used", func() {
		state := defaultState()
		state.QuoteProviders = map[domain.Protocol]mvc.QuoteProvider{domain.ProtocolV3: blocking(true)}

		swapRoute, err := s.NewRouter(state).Route(context.Background(), routertesting.Amount(tokenA, 1000), tokenB, domain.TradeTypeExactInput, nil, &config)
		s.Require().NoError(err)
		s.Require().Equal([]string{directRoute.ID()}, planIDs(swapRoute.Routes))
	})

	s.Run("every protocol timed out", func() {
		state := defaultState()
		state.QuoteProviders = map[domain.Protocol]mvc.QuoteProvider{
			domain.ProtocolV3: blocking(false),
			domain.ProtocolV2: blocking(false),
		}

		timedOut := config
		timedOut.Protocols = []domain.Protocol{domain.ProtocolV3, domain.ProtocolV2}

		swapRoute, err := s.NewRouter(state).Route(context.Background(), routertesting.Amount(tokenA, 1000), tokenB, domain.TradeTypeExactInput, nil, &timedOut)
		s.Require().NoError(err)
		s.Require().Nil(swapRoute)
	})

	s.Run("gas price is bounded by the deadline", func() {
		var slow atomic.Bool
		deps := s.NewRouterDependencies(defaultState())
		deps.GasPriceProvider = &mocks.GasPriceProviderMock{
			GetGasPriceFunc: func(ctx context.Context) (domain.GasPrice, error) {
				if !slow.Load() {
					return routertesting.DefaultGasPrice, nil
				}
				select {
				case <-time.After(2 * time.Second):
					return routertesting.DefaultGasPrice, nil
				case <-ctx.Done():
					return domain.GasPrice{}, ctx.Err()
				}
			},
		}
		router := usecase.NewRouterUsecase(domain.ChainBase, routertesting.DefaultRouterConfig, deps, &log.NoOpLogger{})
		amount := routertesting.Amount(tokenA, 1000)

		// No gas price was ever seen, so nothing can be priced in time.
		slow.Store(true)
		start := time.Now()
		swapRoute, err := router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, &config)
		s.Require().NoError(err)
		s.Require().Nil(swapRoute)
		s.Require().Less(time.Since(start), time.Second)

		slow.Store(false)
		swapRoute, err = router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, &config)
		s.Require().NoError(err)
		s.Require().NotNil(swapRoute)

		// The last known price is served once the node is slow again.
		slow.Store(true)
		start = time.Now()
		swapRoute, err = router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, &config)
		s.Require().NoError(err)
		s.Require().NotNil(swapRoute)
		s.Require().Less(time.Since(start), time.Second)
		s.Require().Equal(routertesting.DefaultGasPrice.GasPriceWei, swapRoute.GasPriceWei)
	})

	s.Run("cancelled request", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		swapRoute, err := s.NewRouter(defaultState()).Route(ctx, routertesting.Amount(tokenA, 1000), tokenB, domain.TradeTypeExactInput, nil, nil)
		s.Require().Nil(swapRoute)
		s.Require().ErrorIs(err, context.Canceled)
	})
}

func (s *RouterTestSuite) TestRoute_RouteCache() {
	amount := routertesting.Amount(tokenA, 1000)
	now := time.Unix(1_700_000_000, 0)

	countingDeps := func(calls *atomic.Int32) usecase.RouterDependencies {
		deps := s.NewRouterDependencies(defaultState())
		candidates := deps.CandidatePoolProvider
		deps.CandidatePoolProvider = &mocks.CandidatePoolProviderMock{
			GetCandidatePoolsFunc: func(ctx context.Context, protocol domain.Protocol) ([]domain.CandidatePool, error) {
				calls.Add(1)
				return candidates.GetCandidatePools(ctx, protocol)
			},
		}
		return deps
	}

	s.Run("write only is idempotent", func() {
		cache := routertesting.NewMemoryRouteCache(domain.CacheModeWriteOnly)
		router := s.NewRouter(defaultState(), usecase.WithRouteCache(cache, time.Minute), usecase.WithNowFn(routertesting.FixedNow(now)))

		first, err := router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, nil)
		s.Require().NoError(err)
		second, err := router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, nil)
		s.Require().NoError(err)

		s.Require().Equal(planIDs(first.Routes), planIDs(second.Routes))
		s.Require().Equal(2, cache.Writes)
		s.Require().Equal(1, cache.Entries())
	})

	s.Run("trust cache skips discovery", func() {
		var calls atomic.Int32
		cache := routertesting.NewMemoryRouteCache(domain.CacheModeTrustCache)
		router := usecase.NewRouterUsecase(domain.ChainBase, routertesting.DefaultRouterConfig, countingDeps(&calls), &log.NoOpLogger{},
			usecase.WithRouteCache(cache, time.Minute), usecase.WithNowFn(routertesting.FixedNow(now)))

		first, err := router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, nil)
		s.Require().NoError(err)
		discoveryCalls := calls.Load()
		s.Require().Positive(discoveryCalls)

		second, err := router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, nil)
		s.Require().NoError(err)

		s.Require().Equal(discoveryCalls, calls.Load())
		s.Require().Equal(planIDs(first.Routes), planIDs(second.Routes))
		s.Require().Equal(first.Quote, second.Quote)
		s.Require().Equal(1, cache.Writes)
	})

	s.Run("stale trusted entry is rediscovered", func() {
		var calls atomic.Int32
		clock := now
		cache := routertesting.NewMemoryRouteCache(domain.CacheModeTrustCache)
		router := usecase.NewRouterUsecase(domain.ChainBase, routertesting.DefaultRouterConfig, countingDeps(&calls), &log.NoOpLogger{},
			usecase.WithRouteCache(cache, time.Minute), usecase.WithNowFn(func() time.Time { return clock }))

		_, err := router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, nil)
		s.Require().NoError(err)
		discoveryCalls := calls.Load()

		clock = now.Add(2 * time.Minute)

		_, err = router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, nil)
		s.Require().NoError(err)
		s.Require().Equal(2*discoveryCalls, calls.Load())
		s.Require().Equal(2, cache.Writes)
	})

	readVerify := func(cachedRoute domain.CachedRoute) (*routertesting.MemoryRouteCache, domain.RouteCacheKey) {
		cache := routertesting.NewMemoryRouteCache(domain.CacheModeReadVerify)
		key := domain.RouteCacheKey{
			ChainID:      domain.ChainBase,
			TokenIn:      tokenA.Address,
			TokenOut:     tokenB.Address,
			TradeType:    domain.TradeTypeExactInput,
			Protocols:    domain.AllProtocols,
			AmountBucket: domain.AmountBucket(amount),
		}
		s.Require().NoError(cache.SetCachedRoute(context.Background(), key, &domain.CachedRoutes{
			Routes:    []domain.CachedRoute{cachedRoute},
			CreatedAt: now,
		}))
		return cache, key
	}

	// recordingState records the routes quoted by each V2 quote request.
	recordingState := func(quoted *[][]string, mu *sync.Mutex) routertesting.MockRouterState {
		state := defaultState()
		v2Quotes := routertesting.NewQuoteProviderMock(state.Quote)
		record := func(routes []domain.Route) {
			ids := make([]string, len(routes))
			for i, r := range routes {
				ids[i] = r.ID()
			}
			mu.Lock()
			defer mu.Unlock()
			*quoted = append(*quoted, ids)
		}
		state.QuoteProviders = map[domain.Protocol]mvc.QuoteProvider{
			domain.ProtocolV2: &mocks.QuoteProviderMock{
				GetQuotesManyExactInFunc: func(ctx context.Context, amounts []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error) {
					record(routes)
					return v2Quotes.GetQuotesManyExactIn(ctx, amounts, routes, blockNumber)
				},
			},
		}
		return state
	}

	s.Run("read verify requotes the cached routes and records divergence", func() {
		cache, key := readVerify(domain.CachedRoute{
			Protocol:      domain.ProtocolV2,
			PoolAddresses: []common.Address{pairAB.GetAddress()},
			TokenPath:     []common.Address{tokenA.Address, tokenB.Address},
			Fees:          []domain.FeeAmount{domain.V2FeeAmount},
			PoolProtocols: []domain.Protocol{domain.ProtocolV2},
		})

		var (
			mu     sync.Mutex
			quoted [][]string
		)

		before := testutil.ToFloat64(domain.RouteCacheDivergenceCounter)

		router := s.NewRouter(recordingState(&quoted, &mu), usecase.WithRouteCache(cache, time.Minute), usecase.WithNowFn(routertesting.FixedNow(now)))
		swapRoute, err := router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, nil)
		s.Require().NoError(err)

		// The fresh result is served.
		s.Require().Equal([]string{directRoute.ID()}, planIDs(swapRoute.Routes))
		s.Require().Equal(before+1, testutil.ToFloat64(domain.RouteCacheDivergenceCounter))

		// Fresh discovery and the cached topology were both quoted.
		mu.Lock()
		s.Require().ElementsMatch([][]string{{v2Route.ID()}, {v2Route.ID()}}, quoted)
		mu.Unlock()

		// And the fresh result replaces the entry.
		cached, found, err := cache.GetCachedRoute(context.Background(), key)
		s.Require().NoError(err)
		s.Require().True(found)
		s.Require().Equal(directRoute.ID(), cached.Routes[0].ID())
	})

	s.Run("read verify agreeing with the fresh plan", func() {
		cache, _ := readVerify(domain.CachedRoute{
			Protocol:      domain.ProtocolV3,
			PoolAddresses: []common.Address{poolAB.GetAddress()},
			TokenPath:     []common.Address{tokenA.Address, tokenB.Address},
			Fees:          []domain.FeeAmount{poolAB.GetFee()},
			PoolProtocols: []domain.Protocol{domain.ProtocolV3},
		})

		before := testutil.ToFloat64(domain.RouteCacheDivergenceCounter)

		router := s.NewRouter(defaultState(), usecase.WithRouteCache(cache, time.Minute), usecase.WithNowFn(routertesting.FixedNow(now)))
		swapRoute, err := router.Route(context.Background(), amount, tokenB, domain.TradeTypeExactInput, nil, nil)
		s.Require().NoError(err)

		s.Require().Equal([]string{directRoute.ID()}, planIDs(swapRoute.Routes))
		s.Require().Equal(before, testutil.ToFloat64(domain.RouteCacheDivergenceCounter))
	})
}

func (s *RouterTestSuite) TestRoute_SwapOptions() {
	from := common.HexToAddress("0x00000000000000000000000000000000000000f1")
	swapOptions := &domain.SwapOptions{
		Recipient:           common.HexToAddress("0x00000000000000000000000000000000000000f2"),
		SlippageTolerance:   osmomath.MustNewDecFromStr("0.005"),
		Deadline:            time.Unix(1_800_000_000, 0),
		SimulateFromAddress: &from,
	}

	builder := &mocks.SwapCalldataBuilderMock{
		BuildMethodParametersFunc: func(swapRoute *domain.SwapRoute, swapOptions domain.SwapOptions) (*domain.MethodParameters, error) {
			return &domain.MethodParameters{To: common.HexToAddress("0x00000000000000000000000000000000000000aa"), Calldata: []byte{0x01}, Value: osmomath.ZeroInt()}, nil
		},
	}

	tests := map[string]struct {
		simulator *mocks.SimulatorMock

		expectedStatus domain.SimulationStatus
	}{
		"simulation succeeded": {
			simulator:      mocks.WithSimulationResult("test", domain.SimulationStatusSucceeded, nil),
			expectedStatus: domain.SimulationStatusSucceeded,
		},
		"simulation verdict": {
			simulator:      mocks.WithSimulationResult("test", domain.SimulationStatusInsufficientBalance, nil),
			expectedStatus: domain.SimulationStatusInsufficientBalance,
		},
		"simulation error is not supported": {
			simulator:      mocks.WithSimulationResult("test", domain.SimulationStatusFailed, domain.ErrNoSimulatorAvailable),
			expectedStatus: domain.SimulationStatusNotSupported,
		},
	}

	for name, tc := range tests {
		s.Run(name, func() {
			router := s.NewRouter(defaultState(), usecase.WithSimulator(tc.simulator), usecase.WithSwapCalldataBuilder(builder))

			swapRoute, err := router.Route(context.Background(), routertesting.Amount(tokenA, 1000), tokenB, domain.TradeTypeExactInput, swapOptions, nil)
			s.Require().NoError(err)

			s.Require().NotNil(swapRoute.MethodParameters)
			s.Require().Equal([]byte{0x01}, swapRoute.MethodParameters.Calldata)
			s.Require().Equal(tc.expectedStatus, swapRoute.SimulationStatus)
			s.Require().Equal(1, tc.simulator.Calls)
		})
	}

	s.Run("no simulation without a simulation address", func() {
		simulator := mocks.WithSimulationResult("test", domain.SimulationStatusSucceeded, nil)
		router := s.NewRouter(defaultState(), usecase.WithSimulator(simulator), usecase.WithSwapCalldataBuilder(builder))

		options := *swapOptions
		options.SimulateFromAddress = nil

		swapRoute, err := router.Route(context.Background(), routertesting.Amount(tokenA, 1000), tokenB, domain.TradeTypeExactInput, &options, nil)
		s.Require().NoError(err)
		s.Require().Equal(domain.SimulationStatusNotSupported, swapRoute.SimulationStatus)
		s.Require().Zero(simulator.Calls)
	})
}
