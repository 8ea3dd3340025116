package routertesting

import (
	"context"

	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mocks"
)

// QuoteFunc quotes amount along the route. Returning false marks the quote as failed.
type QuoteFunc func(r domain.Route, amount osmomath.Int) (osmomath.Int, bool)

// NewQuoteProviderMock returns a quote provider answering every (route, amount) pair with fn.
// Exact-in and exact-out use the same function.
func NewQuoteProviderMock(fn QuoteFunc) *mocks.QuoteProviderMock {
	getQuotes := func(ctx context.Context, amounts []domain.CurrencyAmount, routes []domain.Route, blockNumber *uint64) ([]domain.RouteWithQuotes, error) {
		results := make([]domain.RouteWithQuotes, len(routes))
		for i, r := range routes {
			quotes := make([]domain.AmountQuote, len(amounts))
			for j, amount := range amounts {
				quotes[j] = domain.AmountQuote{Amount: amount}
				if q, ok := fn(r, amount.Amount); ok {
					quotes[j].Quote = q
					quotes[j].GasEstimate = osmomath.NewInt(100_000)
				}
			}
			results[i] = domain.RouteWithQuotes{Route: r, Quotes: quotes}
		}
		return results, nil
	}

	return &mocks.QuoteProviderMock{
		GetQuotesManyExactInFunc:  getQuotes,
		GetQuotesManyExactOutFunc: getQuotes,
	}
}

// ConcaveQuote models a pool with price 1 and the given depth: out = x * depth / (x + depth).
// Splitting an amount over two such routes always yields more than either alone.
func ConcaveQuote(depth int64) func(amount osmomath.Int) osmomath.Int {
	d := osmomath.NewInt(depth)
	return func(amount osmomath.Int) osmomath.Int {
		return amount.Mul(d).Quo(amount.Add(d))
	}
}

// LinearQuote returns amount * numerator / denominator.
func LinearQuote(numerator, denominator int64) func(amount osmomath.Int) osmomath.Int {
	return func(amount osmomath.Int) osmomath.Int {
		return amount.MulRaw(numerator).QuoRaw(denominator)
	}
}

// ByRouteID dispatches to per route quote functions. Routes without a function fail.
func ByRouteID(fns map[string]func(amount osmomath.Int) osmomath.Int) QuoteFunc {
	return func(r domain.Route, amount osmomath.Int) (osmomath.Int, bool) {
		fn, ok := fns[r.ID()]
		if !ok {
			return osmomath.Int{}, false
		}
		q := fn(amount)
		if !q.IsPositive() {
			return osmomath.Int{}, false
		}
		return q, true
	}
}

// ConstantGasModel charges the same gas cost in the quote token to every route.
func ConstantGasModel(gasCost int64) *mocks.GasModelMock {
	return &mocks.GasModelMock{
		EstimateGasCostFunc: func(r *domain.RouteWithValidQuote) (domain.GasCost, error) {
			quoteToken := r.QuoteToken()
			return domain.GasCost{
				GasEstimate:    osmomath.NewInt(100_000),
				GasCostInToken: domain.NewCurrencyAmount(quoteToken, osmomath.NewInt(gasCost)),
				GasCostInUSD:   domain.NewCurrencyAmount(USDC, osmomath.NewInt(gasCost)),
			}, nil
		},
	}
}
