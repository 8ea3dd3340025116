package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/baseswapfi/sor/docs"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
)

// SystemHandler serves the operational endpoints of the router.
type SystemHandler struct {
	logger        log.Logger
	redisClient   redis.Cmdable
	blockProvider mvc.BlockNumberProvider
	config        domain.Config
}

// HealthStatus is the body of a successful healthcheck.
type HealthStatus struct {
	ChainID           uint64 `json:"chain_id,omitempty"`
	ChainStatus       string `json:"chain_status"`
	RedisStatus       string `json:"redis_status"`
	ChainLatestHeight uint64 `json:"chain_latest_height"`
}

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version   string `json:"version"`
	Revision  string `json:"revision,omitempty"`
	GoVersion string `json:"go_version"`
}

const (
	versionFlag = "version="

	statusRunning  = "running"
	statusDisabled = "disabled"

	redactedValue = "***"
)

var errNoVersion = errors.New("no version string found")

// NewSystemHandler registers the healthcheck, config, version, metrics, swagger and pprof endpoints.
// redisClient is nil when no redis backed component is configured.
func NewSystemHandler(e *echo.Echo, config domain.Config, logger log.Logger, bp mvc.BlockNumberProvider, redisClient redis.Cmdable) {
	handler := &SystemHandler{
		logger:        logger,
		redisClient:   redisClient,
		blockProvider: bp,
		config:        config,
	}

	// Mutex and block profiles are too expensive for production.
	if !config.LoggerIsProduction {
		runtime.SetMutexProfileFraction(2)
		runtime.SetBlockProfileRate(2)
	}

	debugGroup := e.Group("/debug/pprof")
	debugGroup.GET("/*", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	for name, profileHandler := range map[string]http.HandlerFunc{
		"cmdline": pprof.Cmdline,
		"profile": pprof.Profile,
		"symbol":  pprof.Symbol,
		"trace":   pprof.Trace,
	} {
		debugGroup.GET("/"+name, echo.WrapHandler(profileHandler))
	}

	e.GET("/healthcheck", handler.GetHealthStatus)
	e.GET("/config", handler.GetConfig)
	e.GET("/version", handler.GetVersion)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("doc.json")))
}

// GetConfig returns the config of the router service with secrets redacted.
func (h *SystemHandler) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, redactConfig(h.config))
}

// GetVersion returns the version stamped at build time through -ldflags,
// falling back to the module version.
func (h *SystemHandler) GetVersion(c echo.Context) error {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return c.JSON(http.StatusInternalServerError, domain.ResponseError{Message: "failed to read build info"})
	}

	return c.JSON(http.StatusOK, versionFromBuildInfo(buildInfo))
}

func versionFromBuildInfo(buildInfo *debug.BuildInfo) VersionInfo {
	info := VersionInfo{
		Version:   buildInfo.Main.Version,
		GoVersion: buildInfo.GoVersion,
	}

	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "-ldflags":
			if version, err := extractVersion(setting.Value); err == nil {
				info.Version = version
			}
		case "vcs.revision":
			info.Revision = setting.Value
		}
	}

	return info
}

// extractVersion returns the value of the first version= assignment in ldflags.
func extractVersion(ldflags string) (string, error) {
	_, afterFlag, found := strings.Cut(ldflags, versionFlag)
	if !found {
		return "", errNoVersion
	}

	version, _, _ := strings.Cut(afterFlag, " ")
	return version, nil
}

// GetHealthStatus checks the chain node and, when configured, redis.
// Either dependency failing yields 503.
func (h *SystemHandler) GetHealthStatus(c echo.Context) error {
	status := HealthStatus{
		ChainStatus: statusRunning,
		RedisStatus: statusDisabled,
	}
	if h.config.Chain != nil {
		status.ChainID = h.config.Chain.ChainID
	}

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		latestBlock, err := h.blockProvider.BlockNumber(ctx)
		if err != nil {
			h.logger.Error("Error checking chain node status", zap.Error(err))
			return errors.New("error connecting to the chain node")
		}
		status.ChainLatestHeight = latestBlock
		return nil
	})

	if h.redisClient != nil {
		status.RedisStatus = statusRunning
		g.Go(func() error {
			return h.pingRedis(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, domain.ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, status)
}

func (h *SystemHandler) pingRedis(ctx context.Context) error {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.logger.Error("Error connecting to Redis", zap.Error(err))
		return errors.New("error connecting to redis")
	}
	return nil
}

func redactConfig(config domain.Config) domain.Config {
	if config.Redis != nil {
		redisConfig := *config.Redis
		if redisConfig.Password != "" {
			redisConfig.Password = redactedValue
		}
		config.Redis = &redisConfig
	}
	if config.Simulation != nil {
		simulationConfig := *config.Simulation
		if simulationConfig.TenderlyAccessKey != "" {
			simulationConfig.TenderlyAccessKey = redactedValue
		}
		config.Simulation = &simulationConfig
	}
	return config
}
