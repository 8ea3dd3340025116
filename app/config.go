package main

import (
	"github.com/baseswapfi/sor/domain"
)

// DefaultConfig defines the default config for the router server.
var DefaultConfig = domain.Config{
	ServerAddress:             ":9092",
	ServerTimeoutDurationSecs: 10,

	LoggerFilename:     "sor.log",
	LoggerIsProduction: true,
	LoggerLevel:        "info",

	Chain: &domain.ChainConfig{
		ChainID:     uint64(domain.ChainBase),
		RPCEndpoint: "https://mainnet.base.org",
		// OP stack gas price oracle predeploy.
		GasOracleAddress:  "0x420000000000000000000000000000000000000F",
		GasPriceRefreshMs: 2000,
	},

	Router: &domain.RouterConfig{
		MaxSwapsPerPath:     3,
		MinSplits:           1,
		MaxSplits:           3,
		DistributionPercent: 5,
		SplitPreFilterSize:  5,
		MaxCandidateRoutes:  100,
		QuoteTimeoutMs:      5000,

		V2PoolSelection: domain.ProtocolPoolSelection{
			TopN:                  3,
			TopNDirectSwaps:       1,
			TopNTokenInOut:        5,
			TopNSecondHop:         2,
			TopNWithEachBaseToken: 2,
			TopNWithBaseToken:     5,
		},
		V3PoolSelection: domain.ProtocolPoolSelection{
			TopN:                  2,
			TopNDirectSwaps:       2,
			TopNTokenInOut:        3,
			TopNSecondHop:         1,
			TopNWithEachBaseToken: 3,
			TopNWithBaseToken:     5,
		},

		OnChainQuote: domain.OnChainQuoteConfig{
			MultiCallChunk:   50,
			GasLimitPerCall:  1_000_000,
			MaxBatchGasLimit: 150_000_000,
			MaxConcurrency:   8,
			Retries:          2,
			MinBackoffMs:     50,
			MaxBackoffMs:     500,
		},
	},

	Pools: &domain.PoolsConfig{
		CandidatePoolsURL:        "candidate_pools.json",
		CandidatePoolsRefreshSec: 600, // 10 minutes
		CacheSize:                10_000,
		CacheExpirySeconds:       15,
		MulticallChunk:           100,
	},

	RouteCache: &domain.RouteCacheConfig{
		Backend:             "memory",
		Mode:                "write-only",
		ExpirySeconds:       300, // 5 minutes
		MaxStalenessSeconds: 60,
	},

	Simulation: &domain.SimulationConfig{
		TenderlyTimeoutSecs:   10,
		EstimateGasMultiplier: 120,
	},

	CORS: &domain.CORSConfig{
		AllowedHeaders: "Origin, Accept, Content-Type, X-Requested-With, X-Server-Time, Accept-Encoding, sentry-trace, baggage",
		AllowedMethods: "HEAD, GET, OPTIONS",
		AllowedOrigin:  "*",
	},

	OTEL: &domain.OTELConfig{
		SampleRate:      1,
		Environment:     "dev",
		QuoteSampleRate: 0.1,
	},
}

// cloneConfig copies the config sections so that unmarshalling into the
// copy leaves the source untouched.
func cloneConfig(config domain.Config) domain.Config {
	clone := config
	if config.Chain != nil {
		chainConfig := *config.Chain
		clone.Chain = &chainConfig
	}
	if config.Router != nil {
		routerConfig := *config.Router
		routerConfig.Protocols = append([]string(nil), config.Router.Protocols...)
		clone.Router = &routerConfig
	}
	if config.Pools != nil {
		poolsConfig := *config.Pools
		clone.Pools = &poolsConfig
	}
	if config.RouteCache != nil {
		routeCacheConfig := *config.RouteCache
		routeCacheConfig.ModeOverrides = make(map[string]string, len(config.RouteCache.ModeOverrides))
		for pair, mode := range config.RouteCache.ModeOverrides {
			routeCacheConfig.ModeOverrides[pair] = mode
		}
		clone.RouteCache = &routeCacheConfig
	}
	if config.Redis != nil {
		redisConfig := *config.Redis
		clone.Redis = &redisConfig
	}
	if config.Simulation != nil {
		simulationConfig := *config.Simulation
		clone.Simulation = &simulationConfig
	}
	if config.CORS != nil {
		corsConfig := *config.CORS
		clone.CORS = &corsConfig
	}
	if config.OTEL != nil {
		otelConfig := *config.OTEL
		clone.OTEL = &otelConfig
	}
	return clone
}
