package mocks

import (
	"context"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
)

var (
	_ mvc.MulticallProvider   = &MulticallProviderMock{}
	_ mvc.GasPriceProvider    = &GasPriceProviderMock{}
	_ mvc.BlockNumberProvider = &BlockNumberProviderMock{}
	_ mvc.L1GasDataProvider   = &L1GasDataProviderMock{}
)

// MulticallProviderMock is a mock implementation of mvc.MulticallProvider.
type MulticallProviderMock struct {
	CallManyFunc func(ctx context.Context, calls []domain.Call, blockNumber *uint64) (uint64, []domain.CallResult, error)
}

// CallMany implements mvc.MulticallProvider.
func (m *MulticallProviderMock) CallMany(ctx context.Context, calls []domain.Call, blockNumber *uint64) (uint64, []domain.CallResult, error) {
	if m.CallManyFunc != nil {
		return m.CallManyFunc(ctx, calls, blockNumber)
	}
	panic("unimplemented")
}

// GasPriceProviderMock is a mock implementation of mvc.GasPriceProvider.
type GasPriceProviderMock struct {
	GetGasPriceFunc func(ctx context.Context) (domain.GasPrice, error)
}

// GetGasPrice implements mvc.GasPriceProvider.
func (m *GasPriceProviderMock) GetGasPrice(ctx context.Context) (domain.GasPrice, error) {
	if m.GetGasPriceFunc != nil {
		return m.GetGasPriceFunc(ctx)
	}
	panic("unimplemented")
}

// WithGasPrice returns a mock always serving the given price.
func WithGasPrice(gasPrice domain.GasPrice) *GasPriceProviderMock {
	return &GasPriceProviderMock{
		GetGasPriceFunc: func(ctx context.Context) (domain.GasPrice, error) {
			return gasPrice, nil
		},
	}
}

// BlockNumberProviderMock is a mock implementation of mvc.BlockNumberProvider.
type BlockNumberProviderMock struct {
	BlockNumberFunc func(ctx context.Context) (uint64, error)
}

// BlockNumber implements mvc.BlockNumberProvider.
func (m *BlockNumberProviderMock) BlockNumber(ctx context.Context) (uint64, error) {
	if m.BlockNumberFunc != nil {
		return m.BlockNumberFunc(ctx)
	}
	panic("unimplemented")
}

// WithBlockNumber returns a mock always serving the given block number.
func WithBlockNumber(blockNumber uint64) *BlockNumberProviderMock {
	return &BlockNumberProviderMock{
		BlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return blockNumber, nil
		},
	}
}

// L1GasDataProviderMock is a mock implementation of mvc.L1GasDataProvider.
type L1GasDataProviderMock struct {
	GetL1GasDataFunc func(ctx context.Context) (domain.L1GasData, error)
}

// GetL1GasData implements mvc.L1GasDataProvider.
func (m *L1GasDataProviderMock) GetL1GasData(ctx context.Context) (domain.L1GasData, error) {
	if m.GetL1GasDataFunc != nil {
		return m.GetL1GasDataFunc(ctx)
	}
	panic("unimplemented")
}
