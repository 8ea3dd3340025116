package mocks

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
)

var (
	_ mvc.PoolProvider          = &PoolProviderMock{}
	_ mvc.CandidatePoolProvider = &CandidatePoolProviderMock{}
)

// PoolProviderMock is a mock implementation of mvc.PoolProvider.
type PoolProviderMock struct {
	Protocol           domain.Protocol
	GetPoolsFunc       func(ctx context.Context, pairs []domain.TokenPair, blockNumber *uint64) (domain.PoolAccessor, error)
	GetPoolAddressFunc func(tokenA, tokenB domain.Token, fee domain.FeeAmount) (common.Address, domain.Token, domain.Token)
}

// GetPools implements mvc.PoolProvider.
func (m *PoolProviderMock) GetPools(ctx context.Context, pairs []domain.TokenPair, blockNumber *uint64) (domain.PoolAccessor, error) {
	if m.GetPoolsFunc != nil {
		return m.GetPoolsFunc(ctx, pairs, blockNumber)
	}
	panic("unimplemented")
}

// GetPoolAddress implements mvc.PoolProvider.
func (m *PoolProviderMock) GetPoolAddress(tokenA, tokenB domain.Token, fee domain.FeeAmount) (common.Address, domain.Token, domain.Token) {
	if m.GetPoolAddressFunc != nil {
		return m.GetPoolAddressFunc(tokenA, tokenB, fee)
	}
	panic("unimplemented")
}

// GetProtocol implements mvc.PoolProvider.
func (m *PoolProviderMock) GetProtocol() domain.Protocol {
	return m.Protocol
}

// CandidatePoolProviderMock is a mock implementation of mvc.CandidatePoolProvider.
type CandidatePoolProviderMock struct {
	GetCandidatePoolsFunc func(ctx context.Context, protocol domain.Protocol) ([]domain.CandidatePool, error)
}

// GetCandidatePools implements mvc.CandidatePoolProvider.
func (m *CandidatePoolProviderMock) GetCandidatePools(ctx context.Context, protocol domain.Protocol) ([]domain.CandidatePool, error) {
	if m.GetCandidatePoolsFunc != nil {
		return m.GetCandidatePoolsFunc(ctx, protocol)
	}
	panic("unimplemented")
}

// WithCandidatePools returns a mock serving the given candidates per protocol.
// Mixed is served the union of V3 and V2 candidates.
func WithCandidatePools(candidates map[domain.Protocol][]domain.CandidatePool) *CandidatePoolProviderMock {
	return &CandidatePoolProviderMock{
		GetCandidatePoolsFunc: func(ctx context.Context, protocol domain.Protocol) ([]domain.CandidatePool, error) {
			if protocol == domain.ProtocolMixed {
				union := append([]domain.CandidatePool{}, candidates[domain.ProtocolV3]...)
				return append(union, candidates[domain.ProtocolV2]...), nil
			}
			return candidates[protocol], nil
		},
	}
}
