package usecase

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/baseswapfi/sor/domain"
)

type poolAccessor struct {
	pools     []domain.PoolI
	byKey     map[string]domain.PoolI
	byAddress map[common.Address]domain.PoolI
}

var _ domain.PoolAccessor = &poolAccessor{}

// NewPoolAccessor indexes the pools by address and by (token0, token1, fee).
// When two pools share an address the last one wins.
func NewPoolAccessor(pools []domain.PoolI) domain.PoolAccessor {
	accessor := &poolAccessor{
		pools:     make([]domain.PoolI, 0, len(pools)),
		byKey:     make(map[string]domain.PoolI, len(pools)),
		byAddress: make(map[common.Address]domain.PoolI, len(pools)),
	}

	for _, pool := range pools {
		if _, ok := accessor.byAddress[pool.GetAddress()]; !ok {
			accessor.pools = append(accessor.pools, pool)
		}
		accessor.byAddress[pool.GetAddress()] = pool
		accessor.byKey[domain.PoolKey(pool.GetToken0(), pool.GetToken1(), pool.GetFee())] = pool
	}

	return accessor
}

// GetPool implements domain.PoolAccessor.
func (a *poolAccessor) GetPool(tokenA, tokenB domain.Token, fee domain.FeeAmount) (domain.PoolI, bool) {
	pool, ok := a.byKey[domain.PoolKey(tokenA, tokenB, fee)]
	return pool, ok
}

// GetPoolByAddress implements domain.PoolAccessor.
func (a *poolAccessor) GetPoolByAddress(address common.Address) (domain.PoolI, bool) {
	pool, ok := a.byAddress[address]
	return pool, ok
}

// GetAllPools implements domain.PoolAccessor.
func (a *poolAccessor) GetAllPools() []domain.PoolI {
	pools := make([]domain.PoolI, 0, len(a.byAddress))
	for _, pool := range a.pools {
		pools = append(pools, a.byAddress[pool.GetAddress()])
	}
	return pools
}
