package routertesting

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mocks"
	poolsusecase "github.com/baseswapfi/sor/pools/usecase"
	"github.com/baseswapfi/sor/router/usecase/pools"
	"github.com/baseswapfi/sor/router/usecase/route"
)

var (
	TokenA = domain.NewToken(domain.ChainBase, "0x000000000000000000000000000000000000000a", 18, "AAA", "Token A")
	TokenB = domain.NewToken(domain.ChainBase, "0x000000000000000000000000000000000000000b", 18, "BBB", "Token B")
	TokenC = domain.NewToken(domain.ChainBase, "0x000000000000000000000000000000000000000c", 18, "CCC", "Token C")
	TokenD = domain.NewToken(domain.ChainBase, "0x000000000000000000000000000000000000000d", 18, "DDD", "Token D")

	WETH = domain.WETHBase
	USDC = domain.USDCBase

	// Q96 is the sqrt price of a 1:1 pool.
	Q96 = osmomath.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 96))
)

// PoolAddress returns a deterministic pool address for the index.
func PoolAddress(index int) common.Address {
	return common.HexToAddress(fmt.Sprintf("0x%040x", 0x1000+index))
}

// NewV3Pool returns a 1:1 priced concentrated liquidity pool.
func NewV3Pool(index int, tokenA, tokenB domain.Token, fee domain.FeeAmount, liquidity int64) *pools.V3Pool {
	return pools.NewV3Pool(PoolAddress(index), tokenA, tokenB, fee, Q96, osmomath.NewInt(liquidity), 0)
}

// NewV2Pool returns a constant-product pair with the given reserves of tokenA and tokenB.
func NewV2Pool(index int, tokenA, tokenB domain.Token, reserveA, reserveB int64) *pools.V2Pool {
	return pools.NewV2Pool(PoolAddress(index), tokenA, tokenB, osmomath.NewInt(reserveA), osmomath.NewInt(reserveB))
}

// MustNewRoute builds a route from input to output over the pools, panicking on error.
func MustNewRoute(input, output domain.Token, routePools ...domain.PoolI) domain.Route {
	r, err := route.New(routePools, input, output)
	if err != nil {
		panic(err)
	}
	return r
}

// Amount returns value units of token.
func Amount(token domain.Token, value int64) domain.CurrencyAmount {
	return domain.NewCurrencyAmount(token, osmomath.NewInt(value))
}

// CandidateFromPool converts a fetched pool into its candidate metadata.
func CandidateFromPool(pool domain.PoolI) domain.CandidatePool {
	return domain.CandidatePool{
		Protocol:  pool.GetProtocol(),
		Address:   pool.GetAddress(),
		Token0:    pool.GetToken0().Address,
		Token1:    pool.GetToken1().Address,
		Fee:       pool.GetFee(),
		Liquidity: pool.GetLiquidity(),
	}
}

// NewPoolProviderMock returns a pool provider serving the requested pairs from the given pools.
// Pairs without a matching pool are absent from the accessor.
func NewPoolProviderMock(protocol domain.Protocol, available ...domain.PoolI) *mocks.PoolProviderMock {
	all := poolsusecase.NewPoolAccessor(available)
	return &mocks.PoolProviderMock{
		Protocol: protocol,
		GetPoolsFunc: func(ctx context.Context, pairs []domain.TokenPair, blockNumber *uint64) (domain.PoolAccessor, error) {
			found := make([]domain.PoolI, 0, len(pairs))
			for _, pair := range pairs {
				fee := pair.Fee
				if protocol == domain.ProtocolV2 {
					fee = domain.V2FeeAmount
				}
				if pool, ok := all.GetPool(pair.TokenA, pair.TokenB, fee); ok {
					found = append(found, pool)
				}
			}
			return poolsusecase.NewPoolAccessor(found), nil
		},
	}
}
