package domain

import (
	"github.com/osmosis-labs/osmosis/osmomath"
)

// AmountQuote is the result of quoting one amount along one route.
// A nil Quote means the quote failed; it is kept in place so that
// results stay aligned with the requested amounts.
type AmountQuote struct {
	// Amount is the input for exact-in quotes and the output for exact-out quotes.
	Amount CurrencyAmount
	// Quote is the output for exact-in quotes and the required input for exact-out quotes.
	Quote osmomath.Int

	SqrtPriceX96AfterList       []osmomath.Int
	InitializedTicksCrossedList []uint32
	GasEstimate                 osmomath.Int
}

// HasQuote returns true if the quote succeeded with a positive result.
func (q AmountQuote) HasQuote() bool {
	return !q.Quote.IsNil() && q.Quote.IsPositive()
}

// TotalInitializedTicksCrossed sums the ticks crossed over all hops.
func (q AmountQuote) TotalInitializedTicksCrossed() uint32 {
	total := uint32(0)
	for _, ticks := range q.InitializedTicksCrossedList {
		total += ticks
	}
	return total
}

// RouteWithQuotes holds the quotes of a route for every requested amount, in request order.
type RouteWithQuotes struct {
	Route  Route
	Quotes []AmountQuote
}

// RouteWithValidQuote is a route priced for one allocation of the trade.
type RouteWithValidQuote struct {
	Route     Route     `json:"route"`
	Protocol  Protocol  `json:"protocol"`
	TradeType TradeType `json:"tradeType"`
	Percent   int       `json:"percent"`

	// Amount allocated to this route. Input for exact-in, output for exact-out.
	Amount CurrencyAmount `json:"amount"`
	// RawQuote is the quote before gas.
	RawQuote CurrencyAmount `json:"quote"`
	// QuoteAdjustedForGas is RawQuote minus gas (exact-in) or plus gas (exact-out).
	QuoteAdjustedForGas CurrencyAmount `json:"quoteGasAdjusted"`

	GasEstimate    osmomath.Int   `json:"gasEstimate"`
	GasCostInToken CurrencyAmount `json:"gasCostInToken"`
	GasCostInUSD   CurrencyAmount `json:"gasCostInUSD"`

	// L1 settlement costs included in GasCostInToken, if any.
	GasCostL1QuoteToken CurrencyAmount `json:"gasCostL1QuoteToken"`

	SqrtPriceX96AfterList       []osmomath.Int `json:"sqrtPriceX96AfterList,omitempty"`
	InitializedTicksCrossedList []uint32       `json:"initializedTicksCrossedList,omitempty"`
	QuoterGasEstimate           osmomath.Int   `json:"quoterGasEstimate"`
}

// QuoteToken is the token the quote is denominated in.
func (r *RouteWithValidQuote) QuoteToken() Token {
	return r.RawQuote.Token
}

// IsBetterAdjustedQuote returns true if a is strictly better than b for the trade type.
// Exact-in prefers higher output, exact-out prefers lower input.
func IsBetterAdjustedQuote(tradeType TradeType, a, b osmomath.Int) bool {
	if tradeType == TradeTypeExactOutput {
		return a.LT(b)
	}
	return a.GT(b)
}
