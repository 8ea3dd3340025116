package chain

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
	"github.com/baseswapfi/sor/sqsutil/datafetchers"
)

// PrefetchedGasPriceProvider serves the gas price refreshed in the background
// and falls back to a direct read when the prefetched value is missing or stale.
type PrefetchedGasPriceProvider struct {
	source  mvc.GasPriceProvider
	fetcher *datafetchers.IntervalFetcher[domain.GasPrice]
}

var _ mvc.GasPriceProvider = &PrefetchedGasPriceProvider{}

// NewPrefetchedGasPriceProvider starts refreshing the gas price from source at the interval.
func NewPrefetchedGasPriceProvider(source mvc.GasPriceProvider, interval time.Duration, logger log.Logger) *PrefetchedGasPriceProvider {
	return &PrefetchedGasPriceProvider{
		source: source,
		fetcher: datafetchers.NewIntervalFetcher(source.GetGasPrice, interval,
			datafetchers.WithErrorHandler(func(err error) {
				logger.Error("failed to prefetch gas price", zap.Error(err))
			}),
		),
	}
}

// GetGasPrice implements mvc.GasPriceProvider.
func (p *PrefetchedGasPriceProvider) GetGasPrice(ctx context.Context) (domain.GasPrice, error) {
	gasPrice, lastFetched, err := p.fetcher.Get()
	if err == nil && !p.fetcher.IsStale(lastFetched) {
		return gasPrice, nil
	}

	return p.source.GetGasPrice(ctx)
}

// Close stops the background refresh.
func (p *PrefetchedGasPriceProvider) Close() {
	p.fetcher.Close()
}
