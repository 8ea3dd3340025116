package usecase_test

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmosis-labs/osmosis/osmomath"
	"github.com/stretchr/testify/require"

	"github.com/baseswapfi/sor/chain"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mocks"
	"github.com/baseswapfi/sor/pools/usecase"
	"github.com/baseswapfi/sor/router/usecase/pools"
)

var (
	tokenA = domain.NewToken(domain.ChainBase, "0x0000000000000000000000000000000000000001", 18, "AAA", "")
	tokenB = domain.NewToken(domain.ChainBase, "0x0000000000000000000000000000000000000002", 18, "BBB", "")
	tokenC = domain.NewToken(domain.ChainBase, "0x0000000000000000000000000000000000000003", 6, "CCC", "")

	providerConfig = usecase.ProviderConfig{
		FactoryAddress:  common.HexToAddress("0x00000000000000000000000000000000000000ff"),
		InitCodeHash:    common.HexToHash("0x01"),
		MulticallChunk:  2,
		GasLimitPerCall: 100_000,
	}
)

// fakeMulticall answers calls from a map of target to response.
// Targets without a response behave like accounts without code.
func fakeMulticall(responses map[common.Address]func(callData []byte) domain.CallResult, numCalls *atomic.Int32) *mocks.MulticallProviderMock {
	return &mocks.MulticallProviderMock{
		CallManyFunc: func(ctx context.Context, calls []domain.Call, blockNumber *uint64) (uint64, []domain.CallResult, error) {
			if numCalls != nil {
				numCalls.Add(1)
			}
			results := make([]domain.CallResult, len(calls))
			for i, call := range calls {
				respond, ok := responses[call.Target]
				if !ok {
					results[i] = domain.CallResult{Success: true}
					continue
				}
				results[i] = respond(call.CallData)
			}
			return 100, results, nil
		},
	}
}

func reservesResponse(t *testing.T, reserve0, reserve1 int64) func([]byte) domain.CallResult {
	return func([]byte) domain.CallResult {
		data, err := chain.V2PairABI.Methods["getReserves"].Outputs.Pack(big.NewInt(reserve0), big.NewInt(reserve1), uint32(0))
		require.NoError(t, err)
		return domain.CallResult{Success: true, ReturnData: data}
	}
}

func v3StateResponse(t *testing.T, sqrtPriceX96 *big.Int, liquidity int64) func([]byte) domain.CallResult {
	slot0Selector := chain.V3PoolABI.Methods["slot0"].ID
	return func(callData []byte) domain.CallResult {
		if string(callData[:4]) == string(slot0Selector) {
			data, err := chain.V3PoolABI.Methods["slot0"].Outputs.Pack(sqrtPriceX96, big.NewInt(-5), uint16(0), uint16(1), uint16(1), uint8(0), true)
			require.NoError(t, err)
			return domain.CallResult{Success: true, ReturnData: data}
		}
		data, err := chain.V3PoolABI.Methods["liquidity"].Outputs.Pack(big.NewInt(liquidity))
		require.NoError(t, err)
		return domain.CallResult{Success: true, ReturnData: data}
	}
}

func TestV2PoolProvider_GetPools(t *testing.T) {
	provider := usecase.NewV2PoolProvider(nil, providerConfig, nil)
	abAddress, _, _ := provider.GetPoolAddress(tokenA, tokenB, domain.V2FeeAmount)
	bcAddress, _, _ := provider.GetPoolAddress(tokenB, tokenC, domain.V2FeeAmount)
	acAddress, _, _ := provider.GetPoolAddress(tokenA, tokenC, domain.V2FeeAmount)

	multicall := fakeMulticall(map[common.Address]func([]byte) domain.CallResult{
		abAddress: reservesResponse(t, 1_000_000, 2_000_000),
		// Empty reserve.
		bcAddress: reservesResponse(t, 0, 2_000_000),
		// acAddress is not deployed.
	}, nil)

	provider = usecase.NewV2PoolProvider(multicall, providerConfig, nil)

	accessor, err := provider.GetPools(context.Background(), []domain.TokenPair{
		{TokenA: tokenB, TokenB: tokenA},
		{TokenA: tokenA, TokenB: tokenB}, // duplicate
		{TokenA: tokenB, TokenB: tokenC},
		{TokenA: tokenA, TokenB: tokenC},
	}, nil)
	require.NoError(t, err)

	all := accessor.GetAllPools()
	require.Len(t, all, 1)

	pool, ok := accessor.GetPool(tokenB, tokenA, domain.V2FeeAmount)
	require.True(t, ok)
	require.Equal(t, abAddress, pool.GetAddress())
	require.Equal(t, domain.ProtocolV2, pool.GetProtocol())

	v2Pool, ok := pool.(*pools.V2Pool)
	require.True(t, ok)
	require.Equal(t, osmomath.NewInt(1_000_000), v2Pool.Reserve0)
	require.Equal(t, osmomath.NewInt(2_000_000), v2Pool.Reserve1)

	_, ok = accessor.GetPoolByAddress(acAddress)
	require.False(t, ok)
}

func TestV3PoolProvider_GetPools(t *testing.T) {
	provider := usecase.NewV3PoolProvider(nil, providerConfig, nil)
	lowAddress, _, _ := provider.GetPoolAddress(tokenA, tokenB, domain.FeeLow)
	mediumAddress, _, _ := provider.GetPoolAddress(tokenA, tokenB, domain.FeeMedium)
	highAddress, _, _ := provider.GetPoolAddress(tokenA, tokenB, domain.FeeHigh)

	q96 := new(big.Int).Lsh(big.NewInt(1), 96)

	multicall := fakeMulticall(map[common.Address]func([]byte) domain.CallResult{
		lowAddress: v3StateResponse(t, q96, 5_000),
		// Not initialized.
		mediumAddress: v3StateResponse(t, big.NewInt(0), 0),
		highAddress: func([]byte) domain.CallResult {
			return domain.CallResult{Success: false}
		},
	}, nil)

	provider = usecase.NewV3PoolProvider(multicall, usecase.ProviderConfig{
		FactoryAddress:  providerConfig.FactoryAddress,
		InitCodeHash:    providerConfig.InitCodeHash,
		MulticallChunk:  3, // rounded up to keep slot0 and liquidity together
		GasLimitPerCall: 100_000,
	}, nil)

	pairs := make([]domain.TokenPair, 0, len(domain.V3FeeTiers))
	for _, fee := range domain.V3FeeTiers {
		pairs = append(pairs, domain.TokenPair{TokenA: tokenA, TokenB: tokenB, Fee: fee})
	}

	accessor, err := provider.GetPools(context.Background(), pairs, nil)
	require.NoError(t, err)
	require.Len(t, accessor.GetAllPools(), 1)

	pool, ok := accessor.GetPool(tokenA, tokenB, domain.FeeLow)
	require.True(t, ok)
	require.Equal(t, osmomath.NewInt(5_000), pool.GetLiquidity())

	v3Pool, ok := pool.(*pools.V3Pool)
	require.True(t, ok)
	require.Equal(t, int64(-5), v3Pool.Tick)
}

func TestCachingPoolProvider(t *testing.T) {
	provider := usecase.NewV2PoolProvider(nil, providerConfig, nil)
	abAddress, _, _ := provider.GetPoolAddress(tokenA, tokenB, domain.V2FeeAmount)
	bcAddress, _, _ := provider.GetPoolAddress(tokenB, tokenC, domain.V2FeeAmount)

	var numCalls atomic.Int32
	multicall := fakeMulticall(map[common.Address]func([]byte) domain.CallResult{
		abAddress: reservesResponse(t, 1_000, 1_000),
		bcAddress: reservesResponse(t, 3_000, 4_000),
	}, &numCalls)

	cache := usecase.NewPoolCache(100, time.Minute)
	caching := usecase.NewCachingPoolProvider(usecase.NewV2PoolProvider(multicall, providerConfig, nil), cache)
	require.Equal(t, domain.ProtocolV2, caching.GetProtocol())

	ctx := context.Background()

	accessor, err := caching.GetPools(ctx, []domain.TokenPair{{TokenA: tokenA, TokenB: tokenB}}, nil)
	require.NoError(t, err)
	require.Len(t, accessor.GetAllPools(), 1)
	require.Equal(t, int32(1), numCalls.Load())

	// Cached pair is served without a remote call, the new pair is fetched.
	accessor, err = caching.GetPools(ctx, []domain.TokenPair{{TokenA: tokenA, TokenB: tokenB}, {TokenA: tokenC, TokenB: tokenB}}, nil)
	require.NoError(t, err)
	require.Len(t, accessor.GetAllPools(), 2)
	require.Equal(t, int32(2), numCalls.Load())

	accessor, err = caching.GetPools(ctx, []domain.TokenPair{{TokenA: tokenA, TokenB: tokenB}, {TokenA: tokenC, TokenB: tokenB}}, nil)
	require.NoError(t, err)
	require.Len(t, accessor.GetAllPools(), 2)
	require.Equal(t, int32(2), numCalls.Load())

	// A block pin is a different snapshot.
	block := uint64(42)
	_, err = caching.GetPools(ctx, []domain.TokenPair{{TokenA: tokenA, TokenB: tokenB}}, &block)
	require.NoError(t, err)
	require.Equal(t, int32(3), numCalls.Load())
}

func TestCachingPoolProvider_Expiry(t *testing.T) {
	provider := usecase.NewV2PoolProvider(nil, providerConfig, nil)
	abAddress, _, _ := provider.GetPoolAddress(tokenA, tokenB, domain.V2FeeAmount)

	var numCalls atomic.Int32
	multicall := fakeMulticall(map[common.Address]func([]byte) domain.CallResult{
		abAddress: reservesResponse(t, 1_000, 1_000),
	}, &numCalls)

	caching := usecase.NewCachingPoolProvider(usecase.NewV2PoolProvider(multicall, providerConfig, nil), usecase.NewPoolCache(10, 20*time.Millisecond))

	pairs := []domain.TokenPair{{TokenA: tokenA, TokenB: tokenB}}
	_, err := caching.GetPools(context.Background(), pairs, nil)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = caching.GetPools(context.Background(), pairs, nil)
	require.NoError(t, err)
	require.Equal(t, int32(2), numCalls.Load())
}

func TestPoolCache_DistinctKeys(t *testing.T) {
	cache := usecase.NewPoolCache(1_000, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		i := i
		wg.Add(2)
		key := fmt.Sprintf("V2|0x%040x|latest", i)
		go func() {
			defer wg.Done()
			cache.Add(key, nil)
		}()
		go func() {
			defer wg.Done()
			_, _ = cache.Get(fmt.Sprintf("V3|0x%040x|latest", i))
		}()
	}
	wg.Wait()

	require.Equal(t, 64, cache.Len())
	for i := 0; i < 64; i++ {
		_, ok := cache.Get(fmt.Sprintf("V2|0x%040x|latest", i))
		require.True(t, ok)
	}
}
