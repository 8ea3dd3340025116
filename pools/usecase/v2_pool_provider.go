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

// ProviderConfig holds the parameters shared by the on-chain pool providers.
type ProviderConfig struct {
	FactoryAddress common.Address
	InitCodeHash   common.Hash
	// MulticallChunk is the number of calls per batch.
	MulticallChunk int
	// GasLimitPerCall bounds each state read.
	GasLimitPerCall uint64
}

type v2PoolProvider struct {
	multicall mvc.MulticallProvider
	config    ProviderConfig
	logger    log.Logger
}

var _ mvc.PoolProvider = &v2PoolProvider{}

// NewV2PoolProvider returns a provider reading constant-product pair reserves.
func NewV2PoolProvider(multicall mvc.MulticallProvider, config ProviderConfig, logger log.Logger) mvc.PoolProvider {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}
	return &v2PoolProvider{
		multicall: multicall,
		config:    config,
		logger:    logger,
	}
}

// GetProtocol implements mvc.PoolProvider.
func (p *v2PoolProvider) GetProtocol() domain.Protocol {
	return domain.ProtocolV2
}

// GetPoolAddress implements mvc.PoolProvider.
func (p *v2PoolProvider) GetPoolAddress(tokenA, tokenB domain.Token, _ domain.FeeAmount) (common.Address, domain.Token, domain.Token) {
	token0, token1 := domain.SortTokens(tokenA, tokenB)
	return ComputeV2PairAddress(p.config.FactoryAddress, p.config.InitCodeHash, token0, token1), token0, token1
}

// GetPools implements mvc.PoolProvider.
// Pairs that do not exist or have an empty reserve are dropped.
func (p *v2PoolProvider) GetPools(ctx context.Context, pairs []domain.TokenPair, blockNumber *uint64) (domain.PoolAccessor, error) {
	type pairInfo struct {
		address        common.Address
		token0, token1 domain.Token
	}

	seen := make(map[common.Address]struct{}, len(pairs))
	infos := make([]pairInfo, 0, len(pairs))
	for _, pair := range pairs {
		if pair.TokenA.Equals(pair.TokenB) {
			continue
		}
		address, token0, token1 := p.GetPoolAddress(pair.TokenA, pair.TokenB, domain.V2FeeAmount)
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		infos = append(infos, pairInfo{address: address, token0: token0, token1: token1})
	}

	if len(infos) == 0 {
		return NewPoolAccessor(nil), nil
	}

	callData, err := chain.V2PairABI.Pack("getReserves")
	if err != nil {
		return nil, err
	}

	calls := make([]domain.Call, len(infos))
	for i, info := range infos {
		calls[i] = domain.Call{
			Target:   info.address,
			CallData: callData,
			GasLimit: p.config.GasLimitPerCall,
		}
	}

	_, results, err := chain.CallManyChunked(ctx, p.multicall, calls, p.config.MulticallChunk, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch v2 reserves: %w", err)
	}

	result := make([]domain.PoolI, 0, len(infos))
	for i, info := range infos {
		reserve0, reserve1, err := decodeReserves(results[i])
		if err != nil {
			p.logger.Debug("dropping v2 pair", zap.String("pair", info.address.Hex()), zap.Error(err))
			continue
		}
		if reserve0.IsZero() || reserve1.IsZero() {
			p.logger.Debug("dropping v2 pair with empty reserves", zap.String("pair", info.address.Hex()))
			continue
		}

		result = append(result, pools.NewV2Pool(info.address, info.token0, info.token1, reserve0, reserve1))
	}

	return NewPoolAccessor(result), nil
}

func decodeReserves(result domain.CallResult) (osmomath.Int, osmomath.Int, error) {
	if !result.Success {
		return osmomath.Int{}, osmomath.Int{}, fmt.Errorf("getReserves reverted")
	}

	out, err := chain.V2PairABI.Unpack("getReserves", result.ReturnData)
	if err != nil {
		return osmomath.Int{}, osmomath.Int{}, err
	}
	if len(out) < 2 {
		return osmomath.Int{}, osmomath.Int{}, fmt.Errorf("getReserves returned %d values", len(out))
	}

	reserve0, ok0 := out[0].(*big.Int)
	reserve1, ok1 := out[1].(*big.Int)
	if !ok0 || !ok1 {
		return osmomath.Int{}, osmomath.Int{}, fmt.Errorf("unexpected getReserves output types %T, %T", out[0], out[1])
	}

	return osmomath.NewIntFromBigInt(reserve0), osmomath.NewIntFromBigInt(reserve1), nil
}
