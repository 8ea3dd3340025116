package usecase

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/log"
)

type (
	RouterUseCaseImpl = routerUseCaseImpl

	RouteCandidate = routeCandidate
)

const DefaultSplitPreFilterSize = defaultSplitPreFilterSize

func ComputeAllRoutes(pools []domain.PoolI, tokenIn, tokenOut domain.Token, maxHops, maxRoutes int, protocol domain.Protocol, logger log.Logger) []domain.Route {
	return computeAllRoutes(pools, tokenIn, tokenOut, maxHops, maxRoutes, protocol, logger)
}

func SelectCandidatePools(candidates []domain.CandidatePool, tokenIn, tokenOut common.Address, baseTokens []common.Address, selection domain.ProtocolPoolSelection) []domain.CandidatePool {
	return selectCandidatePools(candidates, tokenIn, tokenOut, baseTokens, selection)
}

func GetBestSwapRoute(amount domain.CurrencyAmount, candidates []*RouteCandidate, tradeType domain.TradeType, config domain.RoutingConfig) []*domain.RouteWithValidQuote {
	return getBestSwapRoute(amount, candidates, tradeType, config)
}

func ForEachCombination(n, k int, fn func(indices []int)) {
	forEachCombination(n, k, fn)
}

// NewQuotedCandidate quotes the route at every percent of the grid with quoteFn.
// Percents where quoteFn returns a non positive amount are left unquoted.
// Gas adjusted quotes are raw minus gasCost for exact-in and raw plus gasCost for exact-out.
func NewQuotedCandidate(r domain.Route, amount domain.CurrencyAmount, quoteToken domain.Token, tradeType domain.TradeType, distributionPercent int, gasCost int64, quoteFn func(osmomath.Int) osmomath.Int) *RouteCandidate {
	candidate := newRouteCandidate(r)
	gas := osmomath.NewInt(gasCost)
	for percent := distributionPercent; percent <= fullPercent; percent += distributionPercent {
		partial := amount.Percent(percent)
		raw := quoteFn(partial.Amount)
		if !raw.IsPositive() {
			continue
		}

		adjusted := raw.Sub(gas)
		if tradeType == domain.TradeTypeExactOutput {
			adjusted = raw.Add(gas)
		} else if adjusted.IsNegative() {
			adjusted = osmomath.ZeroInt()
		}

		candidate.quotes[percent] = &domain.RouteWithValidQuote{
			Route:               r,
			Protocol:            r.GetProtocol(),
			TradeType:           tradeType,
			Percent:             percent,
			Amount:              partial,
			RawQuote:            domain.NewCurrencyAmount(quoteToken, raw),
			QuoteAdjustedForGas: domain.NewCurrencyAmount(quoteToken, adjusted),
			GasEstimate:         osmomath.NewInt(100_000),
			GasCostInToken:      domain.NewCurrencyAmount(quoteToken, gas),
		}
	}
	return candidate
}

func (c *RouteCandidate) Quotes() map[int]*domain.RouteWithValidQuote {
	return c.quotes
}
