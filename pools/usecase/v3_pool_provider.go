package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"
	"go.uber.org/zap"

	"github.com/baseswapfi/sor/chain"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
	"github.com/baseswapfi/sor/router/usecase/pools"
)

type v3PoolProvider struct {
	multicall mvc.MulticallProvider
	config    ProviderConfig
	logger    log.Logger
}

var _ mvc.PoolProvider = &v3PoolProvider{}

// NewV3PoolProvider returns a provider reading concentrated liquidity pool state.
func NewV3PoolProvider(multicall mvc.MulticallProvider, config ProviderConfig, logger log.Logger) mvc.PoolProvider {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}
	return &v3PoolProvider{
		multicall: multicall,
		config:    config,
		logger:    logger,
	}
}

// GetProtocol implements mvc.PoolProvider.
func (p *v3PoolProvider) GetProtocol() domain.Protocol {
	return domain.ProtocolV3
}

// GetPoolAddress implements mvc.PoolProvider.
func (p *v3PoolProvider) GetPoolAddress(tokenA, tokenB domain.Token, fee domain.FeeAmount) (common.Address, domain.Token, domain.Token) {
	token0, token1 := domain.SortTokens(tokenA, tokenB)
	return ComputeV3PoolAddress(p.config.FactoryAddress, p.config.InitCodeHash, token0, token1, fee), token0, token1
}

// GetPools implements mvc.PoolProvider.
// Two calls are issued per pool: slot0 and liquidity. Pools that are not
// deployed or not initialized are dropped.
func (p *v3PoolProvider) GetPools(ctx context.Context, pairs []domain.TokenPair, blockNumber *uint64) (domain.PoolAccessor, error) {
	type poolInfo struct {
		address        common.Address
		token0, token1 domain.Token
		fee            domain.FeeAmount
	}

	seen := make(map[common.Address]struct{}, len(pairs))
	infos := make([]poolInfo, 0, len(pairs))
	for _, pair := range pairs {
		if pair.TokenA.Equals(pair.TokenB) {
			continue
		}
		address, token0, token1 := p.GetPoolAddress(pair.TokenA, pair.TokenB, pair.Fee)
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		infos = append(infos, poolInfo{address: address, token0: token0, token1: token1, fee: pair.Fee})
	}

	if len(infos) == 0 {
		return NewPoolAccessor(nil), nil
	}

	slot0Data, err := chain.V3PoolABI.Pack("slot0")
	if err != nil {
		return nil, err
	}
	liquidityData, err := chain.V3PoolABI.Pack("liquidity")
	if err != nil {
		return nil, err
	}

	calls := make([]domain.Call, 0, 2*len(infos))
	for _, info := range infos {
		calls = append(calls,
			domain.Call{Target: info.address, CallData: slot0Data, GasLimit: p.config.GasLimitPerCall},
			domain.Call{Target: info.address, CallData: liquidityData, GasLimit: p.config.GasLimitPerCall},
		)
	}

	// Keep the two calls of a pool in the same chunk.
	chunk := p.config.MulticallChunk
	if chunk > 0 && chunk%2 != 0 {
		chunk++
	}

	_, results, err := chain.CallManyChunked(ctx, p.multicall, calls, chunk, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch v3 pool state: %w", err)
	}

	result := make([]domain.PoolI, 0, len(infos))
	for i, info := range infos {
		sqrtPriceX96, tick, err := decodeSlot0(results[2*i])
		if err != nil {
			p.logger.Debug("dropping v3 pool", zap.String("pool", info.address.Hex()), zap.Error(err))
			continue
		}
		liquidity, err := decodeLiquidity(results[2*i+1])
		if err != nil {
			p.logger.Debug("dropping v3 pool", zap.String("pool", info.address.Hex()), zap.Error(err))
			continue
		}
		if sqrtPriceX96.IsZero() {
			p.logger.Debug("dropping uninitialized v3 pool", zap.String("pool", info.address.Hex()))
			continue
		}

		result = append(result, pools.NewV3Pool(info.address, info.token0, info.token1, info.fee, sqrtPriceX96, liquidity, tick))
	}

	return NewPoolAccessor(result), nil
}

func decodeSlot0(result domain.CallResult) (osmomath.Int, int64, error) {
	if !result.Success {
		return osmomath.Int{}, 0, fmt.Errorf("slot0 reverted")
	}

	out, err := chain.V3PoolABI.Unpack("slot0", result.ReturnData)
	if err != nil {
		return osmomath.Int{}, 0, err
	}
	if len(out) < 2 {
		return osmomath.Int{}, 0, fmt.Errorf("slot0 returned %d values", len(out))
	}

	sqrtPriceX96, ok := out[0].(*big.Int)
	if !ok {
		return osmomath.Int{}, 0, fmt.Errorf("unexpected sqrtPriceX96 type %T", out[0])
	}
	tick, ok := out[1].(*big.Int)
	if !ok {
		return osmomath.Int{}, 0, fmt.Errorf("unexpected tick type %T", out[1])
	}

	return osmomath.NewIntFromBigInt(sqrtPriceX96), tick.Int64(), nil
}

func decodeLiquidity(result domain.CallResult) (osmomath.Int, error) {
	if !result.Success {
		return osmomath.Int{}, fmt.Errorf("liquidity reverted")
	}

	out, err := chain.V3PoolABI.Unpack("liquidity", result.ReturnData)
	if err != nil {
		return osmomath.Int{}, err
	}
	if len(out) < 1 {
		return osmomath.Int{}, fmt.Errorf("liquidity returned no values")
	}

	liquidity, ok := out[0].(*big.Int)
	if !ok {
		return osmomath.Int{}, fmt.Errorf("unexpected liquidity type %T", out[0])
	}

	return osmomath.NewIntFromBigInt(liquidity), nil
}
