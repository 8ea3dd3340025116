package gasmodel

import (
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
)

// tokenPricer converts amounts of the wrapped native token into the quote token
// and into the USD reference token at the mid price of the deepest pool between them.
type tokenPricer struct {
	native     domain.Token
	quoteToken domain.Token
	usdToken   domain.Token

	// nil when the target is the native token itself or no pool exists.
	nativeQuotePool domain.PoolI
	nativeUSDPool   domain.PoolI
}

func newTokenPricer(native, quoteToken, usdToken domain.Token, v3Pools, v2Pools domain.PoolAccessor) *tokenPricer {
	p := &tokenPricer{
		native:     native,
		quoteToken: quoteToken,
		usdToken:   usdToken,
	}
	if !quoteToken.Equals(native) {
		p.nativeQuotePool = deepestPool(native, quoteToken, v3Pools, v2Pools)
	}
	if !usdToken.Equals(native) {
		p.nativeUSDPool = deepestPool(native, usdToken, v3Pools, v2Pools)
	}
	return p
}

// deepestPool returns the V3 pool with the highest liquidity between a and b.
// The V2 pair is used only when no V3 pool exists since the liquidity metrics
// of both protocols are not comparable.
func deepestPool(a, b domain.Token, v3Pools, v2Pools domain.PoolAccessor) domain.PoolI {
	var best domain.PoolI
	if v3Pools != nil {
		for _, fee := range domain.V3FeeTiers {
			pool, ok := v3Pools.GetPool(a, b, fee)
			if !ok {
				continue
			}
			if best == nil || pool.GetLiquidity().GT(best.GetLiquidity()) {
				best = pool
			}
		}
	}
	if best != nil || v2Pools == nil {
		return best
	}

	pool, ok := v2Pools.GetPool(a, b, domain.V2FeeAmount)
	if !ok {
		return nil
	}
	return pool
}

// toQuote converts a wei amount of the native token into the quote token.
func (p *tokenPricer) toQuote(wei osmomath.Int) (domain.CurrencyAmount, error) {
	return convert(p.native, p.quoteToken, p.nativeQuotePool, wei)
}

// toUSD converts a wei amount of the native token into the USD reference token.
func (p *tokenPricer) toUSD(wei osmomath.Int) (domain.CurrencyAmount, error) {
	return convert(p.native, p.usdToken, p.nativeUSDPool, wei)
}

// convert prices the native amount in the target token. Without a pool the cost
// cannot be priced and is reported as zero.
func convert(native, target domain.Token, pool domain.PoolI, wei osmomath.Int) (domain.CurrencyAmount, error) {
	if target.Equals(native) {
		return domain.NewCurrencyAmount(native, wei), nil
	}
	if pool == nil {
		return domain.ZeroAmount(target), nil
	}
	return pool.MidPriceQuote(domain.NewCurrencyAmount(native, wei))
}
