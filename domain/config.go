package domain

// Config defines the config for the router server.
type Config struct {
	// Defines the web server configuration.
	ServerAddress             string `mapstructure:"server-address"`
	ServerTimeoutDurationSecs int    `mapstructure:"timeout-duration-secs"`

	// Defines the logger configuration.
	LoggerFilename     string `mapstructure:"logger-filename"`
	LoggerIsProduction bool   `mapstructure:"logger-is-production"`
	LoggerLevel        string `mapstructure:"logger-level"`

	Chain *ChainConfig `mapstructure:"chain"`

	// Router encapsulates the router config.
	Router *RouterConfig `mapstructure:"router"`

	// Pools encapsulates the pools config.
	Pools *PoolsConfig `mapstructure:"pools"`

	RouteCache *RouteCacheConfig `mapstructure:"route-cache"`

	Redis *RedisConfig `mapstructure:"redis"`

	Simulation *SimulationConfig `mapstructure:"simulation"`

	CORS *CORSConfig `mapstructure:"cors"`

	OTEL *OTELConfig `mapstructure:"otel"`
}

// ChainConfig holds the chain endpoint and contract addresses.
type ChainConfig struct {
	ChainID     uint64 `mapstructure:"chain-id"`
	RPCEndpoint string `mapstructure:"rpc-endpoint"`

	MulticallAddress   string `mapstructure:"multicall-address"`
	QuoterV2Address    string `mapstructure:"quoter-v2-address"`
	MixedQuoterAddress string `mapstructure:"mixed-quoter-address"`
	SwapRouterAddress  string `mapstructure:"swap-router-address"`
	GasOracleAddress   string `mapstructure:"gas-price-oracle-address"`

	V2FactoryAddress  string `mapstructure:"v2-factory-address"`
	V2InitCodeHash    string `mapstructure:"v2-init-code-hash"`
	V3FactoryAddress  string `mapstructure:"v3-factory-address"`
	V3InitCodeHash    string `mapstructure:"v3-init-code-hash"`
	GasPriceRefreshMs int    `mapstructure:"gas-price-refresh-ms"`
}

// PoolsConfig configures pool data access.
type PoolsConfig struct {
	// CandidatePoolsURL points to a JSON list of candidate pools (URL or file path).
	CandidatePoolsURL        string `mapstructure:"candidate-pools-url"`
	CandidatePoolsRefreshSec int    `mapstructure:"candidate-pools-refresh-secs"`

	CacheSize          int `mapstructure:"cache-size"`
	CacheExpirySeconds int `mapstructure:"cache-expiry-seconds"`

	// MulticallChunk is the number of pools fetched per batched call.
	MulticallChunk int `mapstructure:"multicall-chunk"`
}

// RedisConfig configures the shared redis instance.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CORSConfig encapsulates the CORS configuration.
type CORSConfig struct {
	AllowedHeaders string `mapstructure:"allowed-headers"`
	AllowedMethods string `mapstructure:"allowed-methods"`
	AllowedOrigin  string `mapstructure:"allowed-origin"`
}

// OTELConfig encapsulates the OTEL configuration.
type OTELConfig struct {
	DSN                string  `mapstructure:"dsn"`
	SampleRate         float64 `mapstructure:"sample-rate"`
	EnableTracing      bool    `mapstructure:"enable-tracing"`
	ProfilesSampleRate float64 `mapstructure:"profiles-sample-rate"`
	Environment        string  `mapstructure:"environment"`
	QuoteSampleRate    float64 `mapstructure:"quote-sample-rate"`
}
