package quoteprovider

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
)

type v2QuoteProvider struct {
	logger log.Logger
}

var _ mvc.QuoteProvider = &v2QuoteProvider{}

// NewV2QuoteProvider returns a provider computing constant-product quotes locally
// from the reserves of the fetched pools.
func NewV2QuoteProvider(logger log.Logger) mvc.QuoteProvider {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}
	return &v2QuoteProvider{logger: logger}
}

// GetQuotesManyExactIn implements mvc.QuoteProvider.
func (p *v2QuoteProvider) GetQuotesManyExactIn(ctx context.Context, amountIns []domain.CurrencyAmount, routes []domain.Route, _ *uint64) ([]domain.RouteWithQuotes, error) {
	return p.getQuotes(ctx, amountIns, routes, domain.TradeTypeExactInput)
}

// GetQuotesManyExactOut implements mvc.QuoteProvider.
func (p *v2QuoteProvider) GetQuotesManyExactOut(ctx context.Context, amountOuts []domain.CurrencyAmount, routes []domain.Route, _ *uint64) ([]domain.RouteWithQuotes, error) {
	return p.getQuotes(ctx, amountOuts, routes, domain.TradeTypeExactOutput)
}

func (p *v2QuoteProvider) getQuotes(ctx context.Context, amounts []domain.CurrencyAmount, routes []domain.Route, tradeType domain.TradeType) ([]domain.RouteWithQuotes, error) {
	results := NewEmptyRouteWithQuotes(routes, amounts)

	for i, r := range routes {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		for j, amount := range amounts {
			var (
				quote domain.CurrencyAmount
				err   error
			)
			if tradeType == domain.TradeTypeExactInput {
				quote, err = quoteExactIn(r, amount)
			} else {
				quote, err = quoteExactOut(r, amount)
			}
			if err != nil {
				p.logger.Debug("v2 quote failed", zap.String("route", r.ID()), zap.Stringer("amount", amount), zap.Error(err))
				domain.QuoteFailuresCounter.WithLabelValues(domain.ProtocolV2.String()).Inc()
				continue
			}

			results[i].Quotes[j].Quote = quote.Amount
		}
	}

	return results, nil
}

func quoteExactIn(r domain.Route, amountIn domain.CurrencyAmount) (domain.CurrencyAmount, error) {
	current := amountIn
	for _, pool := range r.GetPools() {
		localPool, ok := pool.(domain.LocalQuotablePool)
		if !ok {
			return domain.CurrencyAmount{}, fmt.Errorf("pool %s cannot be quoted locally", pool.GetAddress().Hex())
		}

		next, err := localPool.GetOutputAmount(current)
		if err != nil {
			return domain.CurrencyAmount{}, err
		}
		current = next
	}
	return current, nil
}

func quoteExactOut(r domain.Route, amountOut domain.CurrencyAmount) (domain.CurrencyAmount, error) {
	pools := r.GetPools()
	current := amountOut
	for i := len(pools) - 1; i >= 0; i-- {
		localPool, ok := pools[i].(domain.LocalQuotablePool)
		if !ok {
			return domain.CurrencyAmount{}, fmt.Errorf("pool %s cannot be quoted locally", pools[i].GetAddress().Hex())
		}

		next, err := localPool.GetInputAmount(current)
		if err != nil {
			return domain.CurrencyAmount{}, err
		}
		current = next
	}
	return current, nil
}
