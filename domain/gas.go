package domain

import (
	"github.com/osmosis-labs/osmosis/osmomath"
)

// GasPrice is the execution gas price in wei of the native token.
type GasPrice struct {
	GasPriceWei osmomath.Int
}

// GasCost is the output of a gas model for one route.
type GasCost struct {
	GasEstimate    osmomath.Int
	GasCostInToken CurrencyAmount
	GasCostInUSD   CurrencyAmount
}

// L1ToL2GasCosts are the L1 settlement costs of a set of routes.
type L1ToL2GasCosts struct {
	GasUsedL1           osmomath.Int
	GasCostL1USD        CurrencyAmount
	GasCostL1QuoteToken CurrencyAmount
}

// GasModel estimates the execution gas cost of a priced route
// in the route's quote token and in USD.
type GasModel interface {
	EstimateGasCost(route *RouteWithValidQuote) (GasCost, error)
}

// L1GasFeeCalculator is optionally implemented by gas models on chains with L1 settlement fees.
type L1GasFeeCalculator interface {
	CalculateL1GasFees(routes []*RouteWithValidQuote) (L1ToL2GasCosts, error)
}

// L1GasData are the settlement fee parameters of an L2 chain.
type L1GasData struct {
	L1BaseFeeWei osmomath.Int
	// Overhead is the fixed L1 gas added per transaction.
	Overhead osmomath.Int
	// Scalar is applied as Scalar / 1e6.
	Scalar osmomath.Int
}

// GasModelParams holds the inputs to build a gas model for a request.
type GasModelParams struct {
	ChainID     ChainID
	GasPriceWei osmomath.Int
	QuoteToken  Token
	BlockNumber *uint64
	L1GasData   *L1GasData
}
