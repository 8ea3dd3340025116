package mvc

import (
	"context"

	"github.com/baseswapfi/sor/domain"
)

// MulticallProvider executes batches of simulated calls against chain state.
type MulticallProvider interface {
	// CallMany executes the calls at the given block (latest when nil) and returns the
	// block number the calls ran at with one result per call, in request order.
	CallMany(ctx context.Context, calls []domain.Call, blockNumber *uint64) (uint64, []domain.CallResult, error)
}

// GasPriceProvider returns the current execution gas price.
type GasPriceProvider interface {
	GetGasPrice(ctx context.Context) (domain.GasPrice, error)
}

// BlockNumberProvider returns the latest block number.
type BlockNumberProvider interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// L1GasDataProvider returns the L1 settlement fee parameters of the chain.
type L1GasDataProvider interface {
	GetL1GasData(ctx context.Context) (domain.L1GasData, error)
}
