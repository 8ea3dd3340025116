package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/baseswapfi/sor/domain"
	sorlog "github.com/baseswapfi/sor/log"
)

const shutdownTimeout = 10 * time.Second

// @title           Smart Order Router API
// @version         1.0
func main() {
	configPath := flag.String("config", "config.json", "config file location")
	hostName := flag.String("host", "sor", "the name of the host")
	isDebug := flag.Bool("debug", false, "debug mode")
	flag.Parse()

	if err := run(*configPath, *hostName, *isDebug); err != nil {
		log.Fatal(err)
	}
}

// run serves until SIGINT or SIGTERM and then shuts the server down.
func run(configPath, hostName string, isDebug bool) error {
	if isDebug {
		log.Println("Service RUN on DEBUG mode")
	}

	config, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if config.OTEL != nil && config.OTEL.DSN != "" {
		shutdownTelemetry, err := initTelemetry(config.OTEL, hostName, isDebug)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			shutdownTelemetry(ctx)
		}()
	}

	logger, err := sorlog.NewLogger(config.LoggerIsProduction, config.LoggerFilename, config.LoggerLevel)
	if err != nil {
		return fmt.Errorf("error while creating logger: %w", err)
	}
	logger.Info("Starting smart order router", zap.String("config", configPath), zap.String("host", hostName))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	routerServer, err := NewRouterServer(ctx, config, logger)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- routerServer.Start(ctx)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down smart order router")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := routerServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown router server", zap.Error(err))
		return err
	}

	logger.Info("Smart order router stopped")
	return nil
}

// loadConfig reads the config file on top of DefaultConfig.
// Keys present in the file can be overridden with a SOR_ prefixed environment
// variable, e.g. SOR_CHAIN_RPC_ENDPOINT.
func loadConfig(configPath string) (domain.Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("sor")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return domain.Config{}, err
		}
		log.Printf("config file %s not found, using defaults", configPath)
	}

	config := cloneConfig(DefaultConfig)
	if err := v.Unmarshal(&config); err != nil {
		return domain.Config{}, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return config, nil
}
