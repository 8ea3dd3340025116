package mvc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baseswapfi/sor/domain"
)

// PoolProvider fetches pool snapshots of one protocol.
type PoolProvider interface {
	// GetPools fetches the pools of the given pairs. Pairs without a pool
	// or whose state could not be read are absent from the accessor.
	GetPools(ctx context.Context, pairs []domain.TokenPair, blockNumber *uint64) (domain.PoolAccessor, error)

	// GetPoolAddress derives the pool address of a pair and returns the sorted tokens.
	GetPoolAddress(tokenA, tokenB domain.Token, fee domain.FeeAmount) (common.Address, domain.Token, domain.Token)

	GetProtocol() domain.Protocol
}

// CandidatePoolProvider lists the pool universe of a protocol with its ranking metric.
type CandidatePoolProvider interface {
	GetCandidatePools(ctx context.Context, protocol domain.Protocol) ([]domain.CandidatePool, error)
}
