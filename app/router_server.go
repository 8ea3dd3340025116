package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/baseswapfi/sor/chain"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/cache"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
	"github.com/baseswapfi/sor/middleware"
	poolsusecase "github.com/baseswapfi/sor/pools/usecase"
	routerhttpdelivery "github.com/baseswapfi/sor/router/delivery/http"
	routerrepo "github.com/baseswapfi/sor/router/repository"
	routerusecase "github.com/baseswapfi/sor/router/usecase"
	"github.com/baseswapfi/sor/router/usecase/gasmodel"
	"github.com/baseswapfi/sor/router/usecase/quoteprovider"
	simulationusecase "github.com/baseswapfi/sor/simulation/usecase"
	systemhttpdelivery "github.com/baseswapfi/sor/system/delivery/http"
	tokenshttpdelivery "github.com/baseswapfi/sor/tokens/delivery/http"
	tokensusecase "github.com/baseswapfi/sor/tokens/usecase"
)

const candidatePoolsWaitTimeout = 30 * time.Second

// RouterServer defines an interface for the smart order router server.
// It wires chain access, pool and token data, the router usecase and
// exposes the HTTP endpoints.
type RouterServer interface {
	GetRouterUsecase() mvc.RouterUsecase
	GetTokenProvider() mvc.TokenProvider
	GetLogger() log.Logger
	Shutdown(context.Context) error
	Start(context.Context) error
}

type routerServer struct {
	routerUsecase mvc.RouterUsecase
	tokenProvider mvc.TokenProvider
	redisClient   *redis.Client
	closeFns      []func()
	e             *echo.Echo
	address       string
	logger        log.Logger
}

var _ RouterServer = &routerServer{}

// GetRouterUsecase implements RouterServer.
func (s *routerServer) GetRouterUsecase() mvc.RouterUsecase {
	return s.routerUsecase
}

// GetTokenProvider implements RouterServer.
func (s *routerServer) GetTokenProvider() mvc.TokenProvider {
	return s.tokenProvider
}

// GetLogger implements RouterServer.
func (s *routerServer) GetLogger() log.Logger {
	return s.logger
}

// Shutdown implements RouterServer.
func (s *routerServer) Shutdown(ctx context.Context) error {
	err := s.e.Shutdown(ctx)
	for _, closeFn := range s.closeFns {
		closeFn()
	}
	if s.redisClient != nil {
		err = errors.Join(err, s.redisClient.Close())
	}
	return err
}

// Start implements RouterServer.
func (s *routerServer) Start(context.Context) error {
	s.logger.Info("Starting router server", zap.String("address", s.address))
	err := s.e.Start(s.address)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// NewRouterServer creates a new router server.
func NewRouterServer(ctx context.Context, config domain.Config, logger log.Logger) (RouterServer, error) {
	if config.Chain == nil || config.Router == nil {
		return nil, errors.New("chain and router config are required")
	}
	if config.Pools == nil {
		config.Pools = DefaultConfig.Pools
	}

	chainID := domain.ChainID(config.Chain.ChainID)
	if !domain.IsSupportedChain(chainID) {
		return nil, domain.UnsupportedChainError{ChainID: chainID}
	}
	if config.Chain.MulticallAddress == "" {
		return nil, errors.New("chain.multicall-address is required")
	}

	// Setup echo server
	e := echo.New()
	middleware := middleware.InitMiddleware(config.CORS, logger)
	e.Use(middleware.CORS)
	e.Use(middleware.InstrumentMiddleware)
	e.Use(middleware.TraceWithParamsMiddleware("sor"))

	chainClient, err := chain.Dial(ctx, config.Chain.RPCEndpoint, chain.ClientConfig{
		ChainID:          chainID,
		MulticallAddress: common.HexToAddress(config.Chain.MulticallAddress),
		GasOracleAddress: common.HexToAddress(config.Chain.GasOracleAddress),
		MaxBatchGasLimit: config.Router.OnChainQuote.MaxBatchGasLimit,
	})
	if err != nil {
		return nil, err
	}

	// If fails, it means that the node is not reachable
	latestBlock, err := chainClient.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain node is not reachable: %w", err)
	}
	logger.Info("Connected to chain", zap.Stringer("chain", chainID), zap.Uint64("block", latestBlock))

	redisClient, err := newRedisClient(ctx, config.Redis, logger)
	if err != nil {
		return nil, err
	}

	// Pools
	poolCacheExpiry := time.Duration(config.Pools.CacheExpirySeconds) * time.Second
	gasLimitPerCall := config.Router.OnChainQuote.GasLimitPerCall

	v3PoolProvider := poolsusecase.NewCachingPoolProvider(
		poolsusecase.NewV3PoolProvider(chainClient, poolsusecase.ProviderConfig{
			FactoryAddress:  common.HexToAddress(config.Chain.V3FactoryAddress),
			InitCodeHash:    common.HexToHash(config.Chain.V3InitCodeHash),
			MulticallChunk:  config.Pools.MulticallChunk,
			GasLimitPerCall: gasLimitPerCall,
		}, logger),
		poolsusecase.NewPoolCache(config.Pools.CacheSize, poolCacheExpiry),
	)
	v2PoolProvider := poolsusecase.NewCachingPoolProvider(
		poolsusecase.NewV2PoolProvider(chainClient, poolsusecase.ProviderConfig{
			FactoryAddress:  common.HexToAddress(config.Chain.V2FactoryAddress),
			InitCodeHash:    common.HexToHash(config.Chain.V2InitCodeHash),
			MulticallChunk:  config.Pools.MulticallChunk,
			GasLimitPerCall: gasLimitPerCall,
		}, logger),
		poolsusecase.NewPoolCache(config.Pools.CacheSize, poolCacheExpiry),
	)

	candidatePoolProvider := poolsusecase.NewCandidatePoolProvider(
		config.Pools.CandidatePoolsURL,
		time.Duration(config.Pools.CandidatePoolsRefreshSec)*time.Second,
		logger,
	)

	waitCtx, cancelWait := context.WithTimeout(ctx, candidatePoolsWaitTimeout)
	if err := candidatePoolProvider.WaitUntilFirstResult(waitCtx); err != nil {
		logger.Warn("candidate pools are not loaded yet, routes will be empty until they are", zap.Error(err))
	}
	cancelWait()

	// Tokens
	tokenProvider := tokensusecase.NewTokenProvider(chainID, chainClient, tokensusecase.TokenProviderConfig{
		MulticallChunk:  config.Pools.MulticallChunk,
		GasLimitPerCall: gasLimitPerCall,
		CacheSize:       config.Pools.CacheSize,
		CacheExpiry:     time.Hour,
	}, logger)

	gasPriceProvider := chain.NewPrefetchedGasPriceProvider(chainClient, time.Duration(config.Chain.GasPriceRefreshMs)*time.Millisecond, logger)

	// Quote providers and gas models per protocol. A protocol without a quoter is disabled.
	protocols := map[domain.Protocol]routerusecase.ProtocolProviders{
		domain.ProtocolV2: {
			QuoteProvider:   quoteprovider.NewV2QuoteProvider(logger),
			GasModelFactory: gasmodel.NewGasModelFactory(domain.ProtocolV2, v3PoolProvider, v2PoolProvider, logger),
		},
	}
	if config.Chain.QuoterV2Address != "" {
		protocols[domain.ProtocolV3] = routerusecase.ProtocolProviders{
			QuoteProvider:   quoteprovider.NewOnChainQuoteProvider(domain.ProtocolV3, common.HexToAddress(config.Chain.QuoterV2Address), chainClient, config.Router.OnChainQuote, logger),
			GasModelFactory: gasmodel.NewGasModelFactory(domain.ProtocolV3, v3PoolProvider, v2PoolProvider, logger),
		}
	}
	if config.Chain.MixedQuoterAddress != "" {
		protocols[domain.ProtocolMixed] = routerusecase.ProtocolProviders{
			QuoteProvider:   quoteprovider.NewOnChainQuoteProvider(domain.ProtocolMixed, common.HexToAddress(config.Chain.MixedQuoterAddress), chainClient, config.Router.OnChainQuote, logger),
			GasModelFactory: gasmodel.NewGasModelFactory(domain.ProtocolMixed, v3PoolProvider, v2PoolProvider, logger),
		}
	}

	routerOptions, err := newRouterOptions(chainID, config, chainClient, redisClient, logger)
	if err != nil {
		return nil, err
	}

	routerUsecase := routerusecase.NewRouterUsecase(chainID, *config.Router, routerusecase.RouterDependencies{
		CandidatePoolProvider: candidatePoolProvider,
		TokenProvider:         tokenProvider,
		V3PoolProvider:        v3PoolProvider,
		V2PoolProvider:        v2PoolProvider,
		GasPriceProvider:      gasPriceProvider,
		BlockNumberProvider:   chainClient,
		Protocols:             protocols,
	}, logger, routerOptions...)

	// HTTP handlers
	var redisCmdable redis.Cmdable
	if redisClient != nil {
		redisCmdable = redisClient
	}
	systemhttpdelivery.NewSystemHandler(e, config, logger, chainClient, redisCmdable)
	tokenshttpdelivery.NewTokensHandler(e, tokenProvider, logger)
	routerhttpdelivery.NewRouterHandler(e, routerUsecase, tokenProvider, logger)

	return &routerServer{
		routerUsecase: routerUsecase,
		tokenProvider: tokenProvider,
		redisClient:   redisClient,
		closeFns:      []func(){candidatePoolProvider.Close, gasPriceProvider.Close},
		e:             e,
		address:       config.ServerAddress,
		logger:        logger,
	}, nil
}

// newRedisClient creates a redis client and ensures that it is up.
// Returns nil when redis is not configured.
func newRedisClient(ctx context.Context, config *domain.RedisConfig, logger log.Logger) (*redis.Client, error) {
	if config == nil || config.Address == "" {
		return nil, nil
	}

	logger.Info("Pinging redis", zap.String("redis_address", config.Address))
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis is not reachable: %w", err)
	}

	return redisClient, nil
}

// newRouterOptions wires the optional collaborators of the router from the config.
func newRouterOptions(chainID domain.ChainID, config domain.Config, chainClient chain.Client, redisClient *redis.Client, logger log.Logger) ([]routerusecase.RouterOption, error) {
	var options []routerusecase.RouterOption

	if config.RouteCache != nil {
		routeCache, err := newRouteCache(*config.RouteCache, redisClient)
		if err != nil {
			return nil, err
		}
		maxStaleness := time.Duration(config.RouteCache.MaxStalenessSeconds) * time.Second
		options = append(options, routerusecase.WithRouteCache(routeCache, maxStaleness))
	}

	if config.Chain.SwapRouterAddress != "" {
		builder := chain.NewSwapRouterCalldataBuilder(common.HexToAddress(config.Chain.SwapRouterAddress))
		options = append(options, routerusecase.WithSwapCalldataBuilder(builder))
	}

	if config.Simulation != nil && config.Simulation.Enabled {
		simulator := simulationusecase.NewFallbackSimulator(chainID, logger,
			simulationusecase.NewTenderlySimulator(*config.Simulation),
			simulationusecase.NewEthEstimateGasSimulator(chainClient, config.Simulation.EstimateGasMultiplier),
		)
		options = append(options, routerusecase.WithSimulator(simulator))
	}

	if domain.HasL1Fee(chainID) {
		options = append(options, routerusecase.WithL1GasDataProvider(chainClient))
	}

	return options, nil
}

func newRouteCache(config domain.RouteCacheConfig, redisClient *redis.Client) (mvc.RouteCachingProvider, error) {
	switch config.Backend {
	case "", routerrepo.BackendMemory:
		return routerrepo.NewMemoryRouteCachingProvider(cache.New(), config)
	case routerrepo.BackendRedis:
		if redisClient == nil {
			return nil, errors.New("redis route cache requires a redis config")
		}
		return routerrepo.NewRedisRouteCachingProvider(redisClient, config)
	default:
		return nil, fmt.Errorf("unknown route cache backend %q", config.Backend)
	}
}
